// Package auth resolves the session identity once per run. With a
// Provider it signs in (custom token first, anonymous as fallback) and
// ends Ready; without one, or when every sign-in fails, it ends Degraded
// with a random local identity that is never linked to remote data.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/logging"
)

// ErrAuthFailure wraps the last sign-in error.
var ErrAuthFailure = errors.New("authentication failed")

// State is a position in the one-way resolution state machine.
type State int

const (
	StateUnresolved State = iota
	StateAuthenticating
	StateReady
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Provider is the remote identity provider.
type Provider interface {
	SignInAnonymously(ctx context.Context) (string, error)
	SignInWithCustomToken(ctx context.Context, token string) (string, error)
	// OnAuthStateChanged registers fn for identity changes; "" means signed
	// out. The returned func unregisters it.
	OnAuthStateChanged(fn func(uid string)) func()
}

// Notifier shows a user-visible message.
type Notifier interface {
	Error(msg string)
}

// Result is the outcome of Resolve.
type Result struct {
	State    State
	Identity string
	Err      error
}

// Synchronized reports whether the remote cart may be used.
func (r Result) Synchronized() bool {
	return r.State == StateReady
}

// Manager owns the session identity.
type Manager struct {
	provider Provider
	notifier Notifier
	log      logrus.FieldLogger
	newID    func() string

	once   sync.Once
	result Result

	mu       sync.RWMutex
	state    State
	identity string
	unsub    func()
}

// NewManager builds a Manager. A nil provider means no remote identity
// provider is configured.
func NewManager(provider Provider, notifier Notifier, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		provider: provider,
		notifier: notifier,
		log:      log,
		newID:    func() string { return "local-" + uuid.NewString() },
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns the identity and whether it is Ready for synchronized
// writes. Degraded identities report false.
func (m *Manager) Identity() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity, m.state == StateReady
}

// Resolve runs the state machine. Only the first call does any work; later
// calls return the same Result.
func (m *Manager) Resolve(ctx context.Context, token string) Result {
	m.once.Do(func() {
		m.result = m.resolve(ctx, token)
	})
	return m.result
}

// Close drops the provider subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (m *Manager) resolve(ctx context.Context, token string) Result {
	if m.provider == nil {
		m.log.Info("no identity provider configured, using a local identity")
		return m.degrade(nil)
	}

	m.setState(StateAuthenticating, "")
	unsub := m.provider.OnAuthStateChanged(m.onStateChanged)
	m.mu.Lock()
	m.unsub = unsub
	m.mu.Unlock()

	var err error
	if token != "" {
		var uid string
		uid, err = m.provider.SignInWithCustomToken(ctx, token)
		if err == nil {
			return m.ready(uid)
		}
		m.log.WithError(err).Warn("custom token sign-in failed, trying anonymous sign-in")
	}

	uid, anonErr := m.provider.SignInAnonymously(ctx)
	if anonErr == nil {
		return m.ready(uid)
	}
	err = errors.Join(err, anonErr)
	m.log.WithError(err).Error("sign-in failed, continuing without a synchronized cart")
	if m.notifier != nil {
		m.notifier.Error("Sign-in failed. Your cart will only be saved on this device.")
	}
	return m.degrade(fmt.Errorf("%w: %w", ErrAuthFailure, err))
}

func (m *Manager) ready(uid string) Result {
	m.setState(StateReady, uid)
	m.log.WithField("uid", uid).Info("signed in")
	return Result{State: StateReady, Identity: uid}
}

func (m *Manager) degrade(err error) Result {
	uid := m.newID()
	m.setState(StateDegraded, uid)
	return Result{State: StateDegraded, Identity: uid, Err: err}
}

func (m *Manager) setState(state State, uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.identity = uid
}

// onStateChanged only logs: the transition to Ready happens once and there
// is no re-authentication flow.
func (m *Manager) onStateChanged(uid string) {
	if uid == "" {
		m.log.Warn("identity provider reported sign-out")
		return
	}
	m.log.WithField("uid", uid).Debug("identity provider state changed")
}
