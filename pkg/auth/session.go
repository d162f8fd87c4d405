// Package auth issues bearer sessions and gates requests by role. Every
// authorization check happens before any provider, model or database work
// is started on behalf of the request.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"equity_research/pkg/model"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("insufficient role")
)

// Session is one issued bearer token.
type Session struct {
	Token     string     `json:"token"`
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Allows reports whether the session's role satisfies the requirement.
// Admins satisfy every requirement.
func (s *Session) Allows(required model.Role) bool {
	if s.Role == model.RoleAdmin {
		return true
	}
	return s.Role == required
}

// SessionStore issues and resolves sessions.
type SessionStore interface {
	Issue(user *model.User) *Session
	Lookup(token string) (*Session, bool)
	Revoke(token string)
}

const defaultSessionTTL = 24 * time.Hour

// MemorySessionStore keeps sessions in process memory. Tokens are random
// UUIDs; expiry is checked on lookup.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (s *MemorySessionStore) Issue(user *model.User) *Session {
	session := &Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
	return session
}

func (s *MemorySessionStore) Lookup(token string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		s.Revoke(token)
		return nil, false
	}
	return session, true
}

func (s *MemorySessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
