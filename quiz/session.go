package quiz

import (
	"context"
	"sync"
	"time"
)

// Session is one user's quiz visit. ActiveID == 0 means idle.
type Session struct {
	Asked     map[int64]struct{}
	ActiveID  int64
	Answered  bool
	TouchedAt time.Time
}

func (s Session) Idle() bool { return s.ActiveID == 0 }

// ClaimResult is the outcome of recording an answer against the session.
type ClaimResult int

const (
	ClaimOK ClaimResult = iota
	ClaimAlreadyAnswered
	ClaimStale
)

// SessionStore is a cache of visit state; losing it only causes earlier repeats.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Reset(ctx context.Context, userID int64) error
	// Activate moves an idle or answered session to a new unanswered question.
	Activate(ctx context.Context, userID, questionID int64) error
	// Claim marks questionID answered if it is the active, unanswered question.
	Claim(ctx context.Context, userID, questionID int64) (ClaimResult, error)
	// Release undoes a Claim whose persistence failed, so the answer can be retried.
	Release(ctx context.Context, userID, questionID int64) error
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionStore{sessions: make(map[int64]*Session), now: now}
}

func (m *MemorySessionStore) session(userID int64) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{Asked: make(map[int64]struct{})}
		m.sessions[userID] = s
	}
	s.TouchedAt = m.now()
	return s
}

func (m *MemorySessionStore) Get(_ context.Context, userID int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Session{Asked: map[int64]struct{}{}}, nil
	}
	out := *s
	out.Asked = make(map[int64]struct{}, len(s.Asked))
	for id := range s.Asked {
		out.Asked[id] = struct{}{}
	}
	return out, nil
}

func (m *MemorySessionStore) Reset(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &Session{Asked: make(map[int64]struct{}), TouchedAt: m.now()}
	return nil
}

func (m *MemorySessionStore) Activate(_ context.Context, userID, questionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(userID)
	if !s.Idle() && !s.Answered {
		return ErrAnswerPending
	}
	s.Asked[questionID] = struct{}{}
	s.ActiveID = questionID
	s.Answered = false
	return nil
}

func (m *MemorySessionStore) Claim(_ context.Context, userID, questionID int64) (ClaimResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(userID)
	if !s.Idle() && s.Answered {
		return ClaimAlreadyAnswered, nil
	}
	if s.ActiveID != questionID {
		return ClaimStale, nil
	}
	s.Answered = true
	return ClaimOK, nil
}

func (m *MemorySessionStore) Release(_ context.Context, userID, questionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok && s.ActiveID == questionID {
		s.Answered = false
	}
	return nil
}

// Sweep drops sessions untouched for longer than maxIdle and returns how many were removed.
func (m *MemorySessionStore) Sweep(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	removed := 0
	for id, s := range m.sessions {
		if s.TouchedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
