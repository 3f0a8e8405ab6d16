package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

// RuleExtractor is the deterministic strategy: no network, no model.
// It classifies intent from keywords, pulls out the obvious scheduling
// phrases, and banks the raw utterance into notes so nothing the caller
// said is lost. It never returns an error.
type RuleExtractor struct{}

var servicePhraseRe = regexp.MustCompile(
	`(?:i need|i want|i'd like|i would like)(?: to (?:book|get|schedule))?(?: a| an| some| my| the)?\s+(.+?)(?:\s+at\s|\s+tomorrow|\s+today|\s+tonight|\s+next\s|\s+this\s|[.!?,]|$)`)

var timeKeywords = []string{
	"tomorrow", "today", "tonight", "this morning", "this afternoon",
	"this evening", "this weekend", "next ", "monday", "tuesday",
	"wednesday", "thursday", "friday", "saturday", "sunday", "noon",
}

func (RuleExtractor) Extract(ctx context.Context, prior session.CollectedData, speech string) (session.ExtractedFields, error) {
	speech = strings.TrimSpace(speech)
	out := session.ExtractedFields{}
	if speech == "" {
		return out, nil
	}
	out.Notes = &speech

	lower := strings.ToLower(speech)
	// Index math below slices the original string; bail to the lowered one
	// if case folding changed byte offsets (non-ASCII input).
	src := speech
	if len(lower) != len(speech) {
		src = lower
	}

	if in := classifyIntent(lower); in != "" {
		s := string(in)
		out.Intent = &s
	}

	timeIdx := -1
	for _, kw := range timeKeywords {
		if i := strings.Index(lower, kw); i >= 0 && (timeIdx < 0 || i < timeIdx) {
			timeIdx = i
		}
	}
	if timeIdx >= 0 {
		t := strings.TrimRight(strings.TrimSpace(src[timeIdx:]), " .,!?")
		if t != "" {
			out.PreferredTime = &t
		}
	}

	if loc := extractAddress(lower, src, timeIdx); loc != "" {
		out.Location = &loc
	}

	if out.Intent != nil {
		switch session.Intent(*out.Intent) {
		case session.IntentBooking, session.IntentServiceRequest:
			if m := servicePhraseRe.FindStringSubmatch(lower); len(m) == 2 {
				svc := strings.TrimSpace(m[1])
				if svc != "" {
					out.Service = &svc
				}
			}
		}
	}

	return out, nil
}

func classifyIntent(lower string) session.Intent {
	switch {
	case containsAny(lower, "book", "appointment", "schedule", "reserve"):
		return session.IntentBooking
	case containsAny(lower, "price", "cost", "how much", "quote"):
		return session.IntentPricing
	case containsAny(lower, "hours", "open", "close", "closing", "opening"):
		return session.IntentHours
	case containsAny(lower, "need", "fix", "repair", "broken", "service", "help with"):
		return session.IntentServiceRequest
	default:
		return ""
	}
}

// extractAddress looks for "at <something starting with a digit>", which
// covers street addresses. The phrase ends where a time phrase begins.
func extractAddress(lower, src string, timeIdx int) string {
	search := 0
	for {
		i := strings.Index(lower[search:], " at ")
		if i < 0 {
			return ""
		}
		start := search + i + len(" at ")
		if start >= len(src) {
			return ""
		}
		if c := src[start]; c >= '0' && c <= '9' {
			end := len(src)
			if timeIdx > start {
				end = timeIdx
			}
			if end <= start {
				return ""
			}
			return strings.TrimRight(strings.TrimSpace(src[start:end]), " .,!?")
		}
		search = start
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
