package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps live browsing sessions in process memory. Nothing is
// persisted: ending a session, idling past the TTL or restarting the process
// discards its cart.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	notifier Notifier
}

type Option func(*SessionStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *SessionStore) { s.notifier = n }
}

func NewSessionStore(ttl time.Duration, opts ...Option) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SessionStore) Start() *Session {
	sess := newSession(uuid.NewString(), s.now(), s.notifier)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a live session and refreshes its idle timer. A session idle
// past the TTL is dropped and reported as missing.
func (s *SessionStore) Get(id string) (*Session, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// End discards a session. It reports whether the session existed.
func (s *SessionStore) End(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every idle session and returns how many it removed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.idleSince()) > s.ttl
}

// Run sweeps on every tick until ctx is done.
func (s *SessionStore) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
