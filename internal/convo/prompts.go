package convo

// Spoken lines for the receptionist. Kept in one place so the state machine
// reads as transitions, not string soup.

const (
	greetingLine  = "Hi, thanks for calling! How can I help you today?"
	changeLine    = "No problem, what should I change?"
	reconfirmLine = "Just say yes or no. Is that correct?"
	closingLine   = "You're all set. We'll text you a recap shortly. Thanks for calling, goodbye!"
	goodbyeLine   = "Thanks for calling, goodbye!"
	fallbackAsk   = "Got it. Anything else I should note?"
)

func askForField(field string) string {
	switch field {
	case "service":
		return "Sure, I can help with that. What service do you need?"
	case "location":
		return "And what's the address or location?"
	case "preferred_time":
		return "When would work best for you?"
	case "vehicle_or_item":
		return "What vehicle or item is this for?"
	case "caller_name":
		return "Can I get your name?"
	default:
		return fallbackAsk
	}
}

func confirmPrompt(summary string) string {
	if summary == "" {
		return "Let me make sure I have your request down. Is that correct?"
	}
	return "Let me make sure I have this right: " + summary + ". Is that correct?"
}
