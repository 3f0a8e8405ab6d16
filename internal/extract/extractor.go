package extract

import (
	"context"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

// Extractor maps (prior accumulated data, new raw speech) to the fields the
// caller explicitly stated in this turn. Implementations must never invent
// values the caller did not say.
//
// Two strategies exist: an AI-assisted one and a deterministic rule-based
// one. The conversation controller selects at construction time and falls
// back to the rule strategy whenever the AI one errors, so extraction can
// never fail a call.
type Extractor interface {
	Extract(ctx context.Context, prior session.CollectedData, speech string) (session.ExtractedFields, error)
}
