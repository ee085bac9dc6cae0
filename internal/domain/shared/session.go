package shared

import (
	"sync"
	"time"
)

// UserID is the stable identifier handed to us by the identity provider.
type UserID string

// IsValid reports whether the identifier is usable.
func (u UserID) IsValid() bool {
	return u != ""
}

// String returns the string representation of the user ID.
func (u UserID) String() string {
	return string(u)
}

// Session holds the process-wide auth/user context with an explicit lifecycle:
// initialized empty on boot, populated once the identity provider resolves,
// torn down on sign-out. Core components receive it as an injected dependency;
// "no user yet" is a valid transient state and callers must suspend
// user-scoped operations until Resolved reports true.
type Session struct {
	mu         sync.RWMutex
	userID     UserID
	resolvedAt time.Time
}

// NewSession creates an unresolved session.
func NewSession() *Session {
	return &Session{}
}

// Resolve records the user identifier supplied by the identity provider.
func (s *Session) Resolve(userID UserID) error {
	if !userID.IsValid() {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.resolvedAt = time.Now().UTC()
	return nil
}

// UserID returns the resolved user identifier, or ErrNoUser while the
// identity provider has not resolved yet.
func (s *Session) UserID() (UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.userID.IsValid() {
		return "", ErrNoUser
	}
	return s.userID, nil
}

// Resolved reports whether a user identifier is available.
func (s *Session) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID.IsValid()
}

// Clear tears the session down on sign-out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.resolvedAt = time.Time{}
}
