package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taiglo/internal/client/client"
	"github.com/dmitrijs2005/taiglo/internal/client/credentials"
	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/logging"
)

const (
	loginFailed         = "login failed"
	registrationFailed  = "registration failed"
	profileUpdateFailed = "profile update failed"
)

// AuthAPI is the slice of the backend the manager talks to.
// *client.Client satisfies it.
type AuthAPI interface {
	Me(ctx context.Context, token string) (models.Identity, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error)
	UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (models.Identity, error)
}

type listener struct {
	id int
	fn func(State)
}

// Manager is the single owner of the session state and credential.
type Manager struct {
	api    AuthAPI
	store  credentials.Store
	logger logging.Logger

	// notifyMu serializes a transition together with its notifications so
	// listeners observe transitions in the order they were applied.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	state     State
	token     string
	loading   bool
	listeners []listener
	nextID    int

	initOnce sync.Once
	ready    chan struct{}
}

// New returns a Manager in the Unauthenticated state with Loading set until
// Initialize completes.
func New(api AuthAPI, store credentials.Store, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		api:     api,
		store:   store,
		logger:  logger.With("component", "session"),
		state:   Unauthenticated{},
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Initialize restores the session from the stored credential. It runs once;
// later calls return immediately. A credential the backend does not accept
// is removed and the session stays Unauthenticated without reporting an
// error.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		defer close(m.ready)
		m.initialize(ctx)
	})
}

func (m *Manager) initialize(ctx context.Context) {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "reading stored credential", "error", err)
		token = ""
	}

	if token == "" {
		m.transition(Unauthenticated{}, "", true)
		return
	}

	m.transition(Verifying{}, token, false)

	id, err := m.api.Me(ctx, token)
	if err != nil {
		// Any failure discards the credential, including a verification the
		// user cancelled. The clear must outlive that cancellation.
		m.logger.Info(ctx, "stored credential rejected", "error", err)
		if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
			m.logger.Error(ctx, "clearing stored credential", "error", err)
		}
		m.transition(Unauthenticated{}, "", true)
		return
	}

	m.transition(Authenticated{Identity: id}, token, true)
}

// Login exchanges email and password for a credential. On failure the state
// is left as it was.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Debug(ctx, "login rejected", "error", err)
		return Result{Error: client.RejectionMessage(err, loginFailed)}
	}
	return m.establish(ctx, resp, loginFailed)
}

// Register creates an account and signs in with it. Password confirmation
// and strength checks are the caller's job.
func (m *Manager) Register(ctx context.Context, fields ProfileFields) Result {
	resp, err := m.api.Register(ctx, fields)
	if err != nil {
		m.logger.Debug(ctx, "registration rejected", "error", err)
		return Result{Error: client.RejectionMessage(err, registrationFailed)}
	}
	return m.establish(ctx, resp, registrationFailed)
}

func (m *Manager) establish(ctx context.Context, resp *models.AuthResponse, fallback string) Result {
	if resp == nil || resp.AccessToken == "" {
		return Result{Error: fallback}
	}
	if err := m.store.Save(ctx, resp.AccessToken); err != nil {
		m.logger.Error(ctx, "persisting credential", "error", err)
		return Result{Error: fmt.Sprintf("%s: %v", fallback, err)}
	}
	m.transition(Authenticated{Identity: resp.User}, resp.AccessToken, false)
	return Result{Success: true}
}

// Logout discards the stored credential and ends the session. It makes no
// network call and cannot fail.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "clearing stored credential", "error", err)
	}
	m.transition(Unauthenticated{}, "", false)
}

// UpdateProfile sends the changed fields with the stored credential and
// replaces the identity with the one the backend returns. The current state
// is not checked first. A failed update leaves the session untouched, even
// when the backend says the credential is no longer valid.
func (m *Manager) UpdateProfile(ctx context.Context, upd ProfileUpdate) Result {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "reading stored credential", "error", err)
		token = ""
	}

	id, err := m.api.UpdateProfile(ctx, token, upd)
	if err != nil {
		m.logger.Debug(ctx, "profile update rejected", "error", err)
		return Result{Error: client.RejectionMessage(err, profileUpdateFailed)}
	}

	m.transition(Authenticated{Identity: id}, token, false)
	return Result{Success: true}
}

// transition applies the new state and then calls every listener in
// subscription order before returning.
func (m *Manager) transition(next State, token string, settle bool) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	m.state = next
	m.token = token
	if settle {
		m.loading = false
	}
	ls := make([]listener, len(m.listeners))
	copy(ls, m.listeners)
	m.mu.Unlock()

	m.logger.Debug(context.Background(), "session state changed", "state", next.String())

	for _, l := range ls {
		l.fn(next)
	}
}

// Subscribe registers fn to be called after every transition. Listeners
// may read from the manager but must not call Login, Register, Logout,
// UpdateProfile or Initialize. The returned function removes fn.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns the signed-in identity. ok is false unless the state is
// Authenticated.
func (m *Manager) Identity() (id Identity, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, isAuth := m.state.(Authenticated); isAuth {
		return a.Identity, true
	}
	return Identity{}, false
}

// Token returns the credential of the current session, or "" when there is
// none. It makes Manager a client.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Loading reports whether Initialize has yet to settle.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Ready is closed once Initialize has settled.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

var _ client.TokenSource = (*Manager)(nil)
