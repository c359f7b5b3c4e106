// ABOUTME: Session type binding an opaque id to credentials and account context.
// ABOUTME: Mutable fields are guarded per session, not by the manager's lock.

package session

import (
	"sync"
	"time"

	"github.com/admesh/ads-gateway/internal/platform"
)

// Session is one authenticated caller's server-side state.
// All fields except the guarded ones are immutable after creation.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	creds platform.Credentials

	mu                sync.Mutex
	selectedAccountID string
	lastAccessedAt    time.Time
}

// Credentials returns the platform credentials bound to this session.
func (s *Session) Credentials() platform.Credentials {
	return s.creds
}

// SelectedAccount returns the currently selected ad account id, or "" if none.
func (s *Session) SelectedAccount() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedAccountID
}

// LastAccessedAt returns the time of the most recent lookup of this session.
func (s *Session) LastAccessedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessedAt
}

func (s *Session) setSelectedAccount(accountID string) {
	s.mu.Lock()
	s.selectedAccountID = accountID
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccessedAt = now
	s.mu.Unlock()
}
