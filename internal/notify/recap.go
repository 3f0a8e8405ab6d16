package notify

import (
	"context"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/audit"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/logger"
)

// MessageSender sends one outbound text message and returns the provider's
// message id. The Twilio adapter in internal/telephony implements it.
type MessageSender interface {
	SendSMS(ctx context.Context, to, body string) (sid string, err error)
}

// RecapNotifier sends the one-shot recap text once a conversation reaches
// its confirmation. At-most-once is enforced by the store's atomic claim on
// the session's sms_sent guard, not by read-then-write.
//
// Failures never propagate: the voice webhook must acknowledge fast no
// matter what happens downstream.
type RecapNotifier struct {
	store    session.Store
	sender   MessageSender
	events   *audit.Service
	disabled bool
}

func NewRecapNotifier(store session.Store, sender MessageSender, events *audit.Service, disabled bool) *RecapNotifier {
	return &RecapNotifier{store: store, sender: sender, events: events, disabled: disabled}
}

// Send dispatches the recap for sess if it has not been sent yet.
// No-ops, in order: messaging disabled (guard untouched), no destination
// number, guard already claimed by an earlier or concurrent delivery.
func (n *RecapNotifier) Send(ctx context.Context, sess session.CallSession) {
	log := logger.From(ctx)

	if n.disabled || n.sender == nil {
		return
	}
	if sess.FromNumber == "" {
		log.Debug("recap skipped, no destination number", "call_id", sess.CallID)
		return
	}

	claimed, err := n.store.ClaimRecap(ctx, sess.CallID)
	if err != nil {
		log.Error("recap claim failed", "call_id", sess.CallID, "err", err)
		return
	}
	if !claimed {
		return
	}

	sid, err := n.sender.SendSMS(ctx, sess.FromNumber, recapBody(sess.CollectedData))
	if err != nil {
		// Release the claim so a later delivery can still send; no
		// synchronous retry inside the webhook budget.
		log.Error("recap send failed", "call_id", sess.CallID, "err", err)
		if relErr := n.store.ReleaseRecap(ctx, sess.CallID); relErr != nil {
			log.Error("recap claim release failed", "call_id", sess.CallID, "err", relErr)
		}
		if n.events != nil {
			_ = n.events.LogRecapFailed(ctx, sess.CallID, err.Error())
		}
		return
	}

	if err := n.store.SetRecapSID(ctx, sess.CallID, sid); err != nil {
		log.Error("recap sid persist failed", "call_id", sess.CallID, "sid", sid, "err", err)
	}
	if n.events != nil {
		_ = n.events.LogRecapSent(ctx, sess.CallID, sid)
	}
	log.Info("recap sent", "call_id", sess.CallID, "sid", sid)
}

func recapBody(d session.CollectedData) string {
	summary := d.Summary()
	if summary == "" {
		return "Thanks for calling! We captured your request; some details may be missing. We'll follow up shortly."
	}
	return "Thanks for calling! Here's what we have: " + summary + ". We'll follow up shortly."
}
