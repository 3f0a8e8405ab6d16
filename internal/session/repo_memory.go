package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and early development.
// Merge semantics mirror the Postgres implementation.

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]CallSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]CallSession{}}
}

func (s *MemoryStore) Get(ctx context.Context, callID string) (CallSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[callID]
	if !ok {
		return CallSession{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, sess CallSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[sess.CallID]
	if !ok {
		if sess.StartedAt.IsZero() {
			sess.StartedAt = time.Now().UTC()
		}
		sess.UpdatedAt = time.Now().UTC()
		s.sessions[sess.CallID] = sess
		return nil
	}

	if sess.FromNumber != "" {
		cur.FromNumber = sess.FromNumber
	}
	if sess.ToNumber != "" {
		cur.ToNumber = sess.ToNumber
	}
	if sess.Status != "" {
		cur.Status = sess.Status
	}
	if sess.State != "" {
		cur.State = sess.State
	}
	cur.CollectedData = mergeCollected(cur.CollectedData, sess.CollectedData)
	if sess.Transcript != "" {
		cur.Transcript = sess.Transcript
	}
	if sess.DurationSeconds > 0 {
		cur.DurationSeconds = sess.DurationSeconds
	}
	if sess.EndedAt != nil {
		cur.EndedAt = sess.EndedAt
	}
	cur.UpdatedAt = time.Now().UTC()
	s.sessions[sess.CallID] = cur
	return nil
}

func (s *MemoryStore) UpdateCallStatus(ctx context.Context, callID string, status CallStatus, durationSeconds int, endedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[callID]
	if !ok {
		cur = CallSession{CallID: callID, State: StateCollect, StartedAt: time.Now().UTC()}
	}
	if status != "" {
		cur.Status = status
	}
	if durationSeconds > 0 {
		cur.DurationSeconds = durationSeconds
	}
	if endedAt != nil {
		cur.EndedAt = endedAt
	}
	cur.UpdatedAt = time.Now().UTC()
	s.sessions[callID] = cur
	return nil
}

func (s *MemoryStore) ClaimRecap(ctx context.Context, callID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[callID]
	if !ok {
		return false, ErrNotFound
	}
	if cur.SMSSent {
		return false, nil
	}
	cur.SMSSent = true
	cur.UpdatedAt = time.Now().UTC()
	s.sessions[callID] = cur
	return true, nil
}

func (s *MemoryStore) ReleaseRecap(ctx context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[callID]
	if !ok {
		return ErrNotFound
	}
	cur.SMSSent = false
	s.sessions[callID] = cur
	return nil
}

func (s *MemoryStore) SetRecapSID(ctx context.Context, callID, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[callID]
	if !ok {
		return ErrNotFound
	}
	cur.SMSSID = sid
	s.sessions[callID] = cur
	return nil
}

// List returns sessions updated within [from, to), newest last. Used by the
// reporting repository.
func (s *MemoryStore) List(ctx context.Context, from, to time.Time) ([]CallSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CallSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !sess.StartedAt.IsZero() {
			if sess.StartedAt.Before(from) || !sess.StartedAt.Before(to) {
				continue
			}
		}
		out = append(out, sess)
	}
	return out, nil
}

func mergeCollected(prev, next CollectedData) CollectedData {
	out := prev
	if next.Intent != "" && !(next.Intent == IntentOther && prev.Intent != "") {
		out.Intent = next.Intent
	}
	if next.CallerName != "" {
		out.CallerName = next.CallerName
	}
	if next.Service != "" {
		out.Service = next.Service
	}
	if next.VehicleOrItem != "" {
		out.VehicleOrItem = next.VehicleOrItem
	}
	if next.Location != "" {
		out.Location = next.Location
	}
	if next.PreferredTime != "" {
		out.PreferredTime = next.PreferredTime
	}
	// Notes arrive already accumulated by CollectedData.Merge, so a
	// non-empty value is the newest full snapshot.
	if next.Notes != "" {
		out.Notes = next.Notes
	}
	return out
}
