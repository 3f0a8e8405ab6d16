package convo

import (
	"context"
	"strings"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/extract"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/logger"
)

// Controller is the per-turn state machine. Each webhook delivery is one
// turn: the controller consults the extractor, merges what was stated into
// the session, decides the next spoken line and whether the call ends.
//
// The controller mutates sess in place; persisting the result is the
// caller's job. It never returns an error: any internal failure degrades to
// the rule-based extractor and a coherent spoken reply.

type Decision struct {
	// Reply is what the receptionist says next.
	Reply string
	// EndCall hangs up after Reply instead of gathering more speech.
	EndCall bool
	// SendRecap asks the notifier to fire. The notifier's guard makes a
	// repeated request a no-op.
	SendRecap bool
}

type Controller struct {
	extractor extract.Extractor
	fallback  extract.RuleExtractor
}

// New builds a controller around the given extraction strategy.
// A nil extractor means rule-based extraction only.
func New(ex extract.Extractor) *Controller {
	if ex == nil {
		ex = extract.RuleExtractor{}
	}
	return &Controller{extractor: ex}
}

func (c *Controller) Advance(ctx context.Context, sess *session.CallSession, speech string) Decision {
	if sess.State == "" {
		sess.State = session.StateCollect
	}
	if sess.Status == "" {
		sess.Status = session.CallStatusInProgress
	}

	speech = strings.TrimSpace(speech)

	// No speech captured: re-issue the current state's standard prompt
	// without any state change. On the very first turn this is the
	// opening greeting. Twilio ends the call itself after repeated
	// silence, so the controller never counts silences.
	if speech == "" {
		return c.reprompt(sess)
	}

	sess.AppendTranscript(speech)

	switch sess.State {
	case session.StateCollect:
		return c.collectTurn(ctx, sess, speech)
	case session.StateConfirm:
		return c.confirmTurn(sess, speech)
	default: // done is terminal; a late delivery is an idempotent no-op
		return Decision{Reply: goodbyeLine, EndCall: true}
	}
}

func (c *Controller) collectTurn(ctx context.Context, sess *session.CallSession, speech string) Decision {
	fields, err := c.extractor.Extract(ctx, sess.CollectedData, speech)
	if err != nil {
		logger.From(ctx).Warn("extraction failed, using rule fallback", "call_id", sess.CallID, "err", err)
		fields, _ = c.fallback.Extract(ctx, sess.CollectedData, speech)
	}
	sess.CollectedData = sess.CollectedData.Merge(fields)

	if sess.CollectedData.ReadyToConfirm() {
		sess.State = session.StateConfirm
		return Decision{Reply: confirmPrompt(sess.CollectedData.Summary())}
	}
	return Decision{Reply: askForField(sess.CollectedData.NextMissingField())}
}

func (c *Controller) confirmTurn(sess *session.CallSession, speech string) Decision {
	switch classifyConfirmation(speech) {
	case confirmYes:
		// The recap fires only after the caller affirms, so the text
		// message always carries the confirmed summary, never one the
		// caller went on to correct.
		sess.State = session.StateDone
		sess.Status = session.CallStatusHandled
		return Decision{Reply: closingLine, EndCall: true, SendRecap: true}
	case confirmNo:
		// Regress to collect; already-captured fields stay as they are
		// and the next turn's extraction overwrites whatever the caller
		// corrects.
		sess.State = session.StateCollect
		return Decision{Reply: changeLine}
	default:
		// Neither a clear yes nor a clear no: re-prompt without
		// re-reading the whole summary.
		return Decision{Reply: reconfirmLine}
	}
}

func (c *Controller) reprompt(sess *session.CallSession) Decision {
	switch sess.State {
	case session.StateConfirm:
		return Decision{Reply: confirmPrompt(sess.CollectedData.Summary())}
	case session.StateDone:
		return Decision{Reply: goodbyeLine, EndCall: true}
	default:
		if sess.Transcript == "" {
			return Decision{Reply: greetingLine}
		}
		return Decision{Reply: askForField(sess.CollectedData.NextMissingField())}
	}
}

type confirmation int

const (
	confirmAmbiguous confirmation = iota
	confirmYes
	confirmNo
)

var affirmTokens = map[string]bool{"yes": true, "yeah": true, "yep": true, "correct": true, "right": true}
var negateTokens = map[string]bool{"no": true, "nope": true, "nah": true, "incorrect": true}

func classifyConfirmation(speech string) confirmation {
	s := strings.ToLower(strings.TrimSpace(speech))
	// Judge by the leading word so "no, make it 4pm" reads as a rejection.
	first := s
	if i := strings.IndexAny(s, " ,"); i >= 0 {
		first = s[:i]
	}
	first = strings.TrimRight(first, ".,!?")
	switch {
	case affirmTokens[first]:
		return confirmYes
	case negateTokens[first]:
		return confirmNo
	default:
		return confirmAmbiguous
	}
}
