// Package session tracks which account each client is logged in as.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTTL = 10 * time.Minute

// ErrNoSession is returned for unknown or expired tokens.
var ErrNoSession = errors.New("no active session")

// Session is the state of one logged-in client.
type Session struct {
	Token     string
	Username  string
	Sorted    bool
	CreatedAt time.Time
	LastSeen  time.Time
}

// Manager keeps sessions in memory. Sessions expire after ttl without activity.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager returns a session manager. A non-positive ttl falls back to ten minutes.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session for username and returns a copy of it.
func (m *Manager) Create(username string) Session {
	now := m.now()
	s := &Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		LastSeen:  now,
	}

	m.mu.Lock()
	m.sweep(now)
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return *s
}

// Get returns the session for token and marks it as active.
func (m *Manager) Get(token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(token)
	if err != nil {
		return Session{}, err
	}
	return *s, nil
}

// ToggleSort flips the sort mode of the session and returns the updated session.
func (m *Manager) ToggleSort(token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(token)
	if err != nil {
		return Session{}, err
	}
	s.Sorted = !s.Sorted
	return *s, nil
}

// RevokeUser ends every session of username and returns how many were ended.
func (m *Manager) RevokeUser(username string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for token, s := range m.sessions {
		if s.Username == username {
			delete(m.sessions, token)
			n++
		}
	}
	return n
}

// lookup must be called with mu held.
func (m *Manager) lookup(token string) (*Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	now := m.now()
	if m.expired(s, now) {
		delete(m.sessions, token)
		return nil, ErrNoSession
	}
	s.LastSeen = now
	return s, nil
}

// sweep drops every expired session. It must be called with mu held.
func (m *Manager) sweep(now time.Time) {
	for token, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, token)
		}
	}
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return now.Sub(s.LastSeen) > m.ttl
}
