package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/utils"
)

// TurnDeduper marks each (call, turn, utterance) triple as seen so a retried
// webhook delivery does not double-append the transcript or re-run
// extraction. The turn position is part of the key: a caller repeating the
// same words later in the call is a new turn, not a retry.
//
// Best effort: with no redis client, or on redis errors, every delivery is
// treated as the first one. That degrades to the tolerable imprecision of
// appending a duplicate transcript line, never to dropping a real turn.
type TurnDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTurnDeduper(rdb *redis.Client) *TurnDeduper {
	return &TurnDeduper{rdb: rdb, ttl: time.Hour}
}

// FirstDelivery reports whether the turn at position turn has not been
// delivered before.
func (d *TurnDeduper) FirstDelivery(ctx context.Context, callID string, turn int, speech string) bool {
	if d == nil || d.rdb == nil || callID == "" || speech == "" {
		return true
	}
	ok, err := utils.ClaimOnce(ctx, d.rdb, turnKey(callID, turn, speech), d.ttl)
	if err != nil {
		return true
	}
	return ok
}

func turnKey(callID string, turn int, speech string) string {
	sum := sha256.Sum256([]byte(speech))
	return "turn:" + callID + ":" + strconv.Itoa(turn) + ":" + hex.EncodeToString(sum[:8])
}
