package telephony

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/audit"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/convo"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/notify"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/logger"
)

// WebhookHandlers glues the Twilio boundary to the conversation core.
//
// Each delivery is stateless: load the session by CallSid, advance the
// state machine, merge-write the session back, answer with TwiML. Internal
// failures degrade to a coherent spoken reply; Twilio always gets a fast
// 200 with something to say.

const apologyLine = "I'm sorry, something went wrong on our end. Please call back later. Goodbye."

type WebhookHandlers struct {
	Store      session.Store
	Controller *convo.Controller
	Notifier   *notify.RecapNotifier

	// Verifier nil means signature verification is disabled (local dev
	// only; production config requires the auth token).
	Verifier *SignatureVerifier

	// Deduper filters retried deliveries of the same speech turn.
	Deduper *session.TurnDeduper

	// Events records call-lifecycle audit entries; nil disables.
	Events *audit.Service

	// VoiceActionURL is the path <Gather> posts back to.
	VoiceActionURL string

	Now func() time.Time
}

func (h *WebhookHandlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *WebhookHandlers) actionURL() string {
	if h.VoiceActionURL != "" {
		return h.VoiceActionURL
	}
	return "/webhooks/twilio/voice"
}

// HandleVoiceTurn processes one conversation turn.
func (h *WebhookHandlers) HandleVoiceTurn(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Verifier != nil && !h.Verifier.Verify(c.Request) {
		// Unverified payloads are never processed as caller data; the
		// caller still hears a coherent goodbye.
		log.Warn("twilio signature verification failed", "path", c.Request.URL.Path)
		h.speakAndHangup(c, apologyLine)
		return
	}

	form, err := ParseVoiceTurn(c.Request)
	if err != nil {
		log.Warn("voice webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if form.CallSid == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "CallSid required"})
		return
	}

	log = log.With("call_id", form.CallSid)
	// Downstream layers pull the request logger from context.
	ctx := logger.With(c.Request.Context(), log)

	sess, err := h.Store.Get(ctx, form.CallSid)
	existed := err == nil
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		// Best effort: run the turn against a fresh record rather than
		// stranding the caller. State may be rebuilt on the next turn.
		log.Error("session load failed", "err", err)
	}
	if !existed {
		sess = session.CallSession{
			CallID:    form.CallSid,
			State:     session.StateCollect,
			Status:    session.CallStatusInProgress,
			StartedAt: h.now(),
		}
	}
	if form.From != "" {
		sess.FromNumber = form.From
	}
	if form.To != "" {
		sess.ToNumber = form.To
	}

	speech := form.SpeechResult
	if speech != "" && !h.Deduper.FirstDelivery(ctx, form.CallSid, sess.TranscriptTurns(), speech) {
		// Retried delivery: the original already advanced the state, so
		// re-issue the current prompt instead of replaying the turn.
		log.Info("duplicate turn delivery")
		speech = ""
	}

	decision := h.Controller.Advance(ctx, &sess, speech)

	if err := h.Store.Upsert(ctx, sess); err != nil {
		// Logged, not retried; the spoken reply still goes out.
		log.Error("session persist failed", "err", err)
	}

	if decision.SendRecap && h.Notifier != nil {
		h.Notifier.Send(ctx, sess)
	}

	reply := VoiceReply{
		Say:       decision.Reply,
		Gather:    !decision.EndCall,
		ActionURL: h.actionURL(),
	}
	// A silent caller on an existing call already burned one prompt; let
	// the next silence fall through to a goodbye instead of looping.
	if existed && form.SpeechResult == "" {
		reply.SilenceGoodbye = "It seems we got disconnected. Thanks for calling, goodbye!"
	}

	twiml, err := RenderVoiceTwiML(reply)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		h.speakAndHangup(c, apologyLine)
		return
	}
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}

// HandleStatusCallback applies call-status updates. This channel only owns
// status, duration and ended_at; it never touches collected data, so an
// interleaved voice-turn write cannot be clobbered.
func (h *WebhookHandlers) HandleStatusCallback(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Verifier != nil && !h.Verifier.Verify(c.Request) {
		log.Warn("twilio signature verification failed", "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return
	}

	form, err := ParseStatusCallback(c.Request)
	if err != nil {
		log.Warn("status callback parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if form.CallSid == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "CallSid required"})
		return
	}

	status := MapCallStatus(form.CallStatus)
	var endedAt *time.Time
	if status.Terminal() {
		t := h.now()
		endedAt = &t
	}

	if err := h.Store.UpdateCallStatus(c.Request.Context(), form.CallSid, status, form.CallDuration, endedAt); err != nil {
		log.Error("status update failed", "call_id", form.CallSid, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "status update failed"})
		return
	}
	if status.Terminal() && h.Events != nil {
		_ = h.Events.LogCallEnded(c.Request.Context(), form.CallSid, string(status), form.CallDuration)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandlers) speakAndHangup(c *gin.Context, line string) {
	twiml, err := RenderVoiceTwiML(VoiceReply{Say: line})
	if err != nil {
		c.String(http.StatusOK, "")
		return
	}
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}
