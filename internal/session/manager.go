// ABOUTME: Session manager enforcing credential validation and capacity caps.
// ABOUTME: Creates, looks up, mutates, and destroys in-memory sessions.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/admesh/ads-gateway/internal/platform"
)

// ErrNotFound indicates the session id is unknown. Expired and never-issued
// ids are deliberately indistinguishable.
var ErrNotFound = errors.New("session not found")

// ErrValidationFailed indicates the platform rejected the submitted credentials.
var ErrValidationFailed = errors.New("credential validation failed")

// ErrCapacityExceeded indicates the concurrent-session cap has been reached.
var ErrCapacityExceeded = errors.New("session capacity exceeded")

// ErrAccountNotAccessible indicates the account is not visible to the
// session's credentials.
var ErrAccountNotAccessible = errors.New("ad account not accessible")

// API is the slice of the platform client the manager needs.
type API interface {
	Me(ctx context.Context) (*platform.User, error)
	ListAdAccounts(ctx context.Context) ([]platform.AdAccount, error)
}

// APIFactory builds a platform API client bound to the given credentials.
type APIFactory func(platform.Credentials) API

// Config holds configuration for the session Manager.
type Config struct {
	API            APIFactory
	MaxConnections int
	Logger         *slog.Logger
}

// Manager owns the session map and its lifecycle rules.
type Manager struct {
	api      APIFactory
	maxConns int
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager with the given configuration.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.API == nil {
		return nil, errors.New("api factory is required")
	}
	if cfg.MaxConnections < 1 {
		return nil, errors.New("max connections must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		api:      cfg.API,
		maxConns: cfg.MaxConnections,
		logger:   logger,
		sessions: make(map[string]*Session),
	}, nil
}

// Create validates the credentials against the platform and, on success,
// stores and returns a new session. The capacity cap is checked before the
// validation round trip so full gateways reject cheaply.
func (m *Manager) Create(ctx context.Context, creds platform.Credentials) (*Session, error) {
	if m.ActiveCount() >= m.maxConns {
		return nil, ErrCapacityExceeded
	}

	if err := checkCredentialFields(creds); err != nil {
		return nil, err
	}

	user, err := m.api(creds).Me(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: access token rejected by platform", ErrValidationFailed)
		}
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
		creds:     creds,
	}
	sess.lastAccessedAt = now

	m.mu.Lock()
	// Re-check under the write lock: concurrent Create calls may have filled
	// the remaining capacity during the validation round trip.
	if len(m.sessions) >= m.maxConns {
		m.mu.Unlock()
		return nil, ErrCapacityExceeded
	}
	m.sessions[sess.ID] = sess
	active := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		"session_id", sess.ID,
		"user_id", user.ID,
		"active_sessions", active,
	)

	return sess, nil
}

// Get returns the session for the given id. The second return value is false
// for unknown ids; lookups never fail any other way. A hit updates the
// session's last-access time.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if ok {
		sess.touch(time.Now())
	}
	return sess, ok
}

// SetSelectedAccount re-validates that accountID is visible to the session's
// credentials, then records it as the session's account context.
// The selected account is left unchanged on any failure.
func (m *Manager) SetSelectedAccount(ctx context.Context, sessionID, accountID string) error {
	sess, ok := m.Get(sessionID)
	if !ok {
		return ErrNotFound
	}

	accounts, err := m.api(sess.Credentials()).ListAdAccounts(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	for _, account := range accounts {
		if account.ID == accountID {
			sess.setSelectedAccount(accountID)
			m.logger.Info("account selected", "session_id", sessionID, "account_id", accountID)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrAccountNotAccessible, accountID)
}

// Delete removes a session. Reports whether it existed.
func (m *Manager) Delete(sessionID string) bool {
	m.mu.Lock()
	_, existed := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if existed {
		m.logger.Info("session destroyed", "session_id", sessionID)
	}
	return existed
}

// ActiveCount returns the number of currently held sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// MaxConnections returns the configured session cap.
func (m *Manager) MaxConnections() int {
	return m.maxConns
}

// checkCredentialFields rejects structurally incomplete credentials before
// any network traffic, naming the missing field without echoing any values.
func checkCredentialFields(creds platform.Credentials) error {
	switch {
	case creds.AppID == "":
		return fmt.Errorf("%w: appId is required", ErrValidationFailed)
	case creds.AppSecret == "":
		return fmt.Errorf("%w: appSecret is required", ErrValidationFailed)
	case creds.AccessToken == "":
		return fmt.Errorf("%w: accessToken is required", ErrValidationFailed)
	}
	return nil
}
