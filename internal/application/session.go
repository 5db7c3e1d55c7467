package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
)

const (
	// defaultVerifyTimeout bounds the authoritative who-am-I check so a dead
	// backend cannot hang the bootstrap.
	defaultVerifyTimeout = 10 * time.Second
	// sessionCacheTTL matches the backend session cookie lifetime.
	sessionCacheTTL = 7 * 24 * time.Hour
)

// AuthAPI is the slice of the backend client the session manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (domain.User, error)
	Signup(ctx context.Context, email, password, fullName string) error
	ExchangeIdentity(ctx context.Context, token domain.IdentityToken) (domain.User, error)
	Me(ctx context.Context) (domain.User, error)
	Logout(ctx context.Context) error
	UpdateAvatar(ctx context.Context, avatar string) (string, error)
	Credential() string
	SetCredential(credential string)
}

// SessionManager is the single source of truth for the current identity. It
// hydrates optimistically from the local cache, confirms against the backend
// once per load, and gates session-bound commands.
type SessionManager struct {
	api      AuthAPI
	cache    ports.SessionCache
	provider ports.IdentityProvider
	clock    ports.Clock

	verifyTimeout time.Duration

	mu       sync.RWMutex
	user     domain.User
	signedIn bool
	loaded   bool
	onChange func(domain.User, bool)

	bootstrapOnce sync.Once
	bootstrapErr  error
}

func NewSessionManager(api AuthAPI, cache ports.SessionCache, provider ports.IdentityProvider, clock ports.Clock) *SessionManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionManager{
		api:           api,
		cache:         cache,
		provider:      provider,
		clock:         clock,
		verifyTimeout: defaultVerifyTimeout,
	}
}

// SetVerifyTimeout overrides the who-am-I timeout. Zero keeps the default.
func (m *SessionManager) SetVerifyTimeout(d time.Duration) {
	if d > 0 {
		m.verifyTimeout = d
	}
}

func (m *SessionManager) SetOnChange(fn func(domain.User, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Bootstrap hydrates the identity from the local cache for an instant answer,
// then performs one authoritative server check. Any failure of the check,
// including timeout, clears both the in-memory identity and the cache. It
// runs its work exactly once; later calls return the first outcome.
func (m *SessionManager) Bootstrap(ctx context.Context) error {
	m.bootstrapOnce.Do(func() {
		m.bootstrapErr = m.bootstrap(ctx)
	})
	return m.bootstrapErr
}

func (m *SessionManager) bootstrap(ctx context.Context) error {
	if cached, err := m.cache.Load(ctx); err == nil && !cached.Expired(m.clock.Now()) {
		m.api.SetCredential(cached.Credential)
		m.setUser(cached.User, true, false)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, m.verifyTimeout)
	defer cancel()

	user, err := m.api.Me(verifyCtx)
	if err != nil {
		m.clearLocal(ctx)
		m.markLoaded()
		return fmt.Errorf("verify session: %w", err)
	}

	m.adopt(ctx, user)
	m.markLoaded()
	return nil
}

func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	user, err := m.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	m.adopt(ctx, user)
	return nil
}

// Signup registers the account but does not authenticate; callers follow with
// an explicit Login.
func (m *SessionManager) Signup(ctx context.Context, email, password, fullName string) error {
	if err := m.api.Signup(ctx, email, password, fullName); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// LoginWithProvider obtains an identity token from the third-party flow and
// exchanges it for a backend session. No partial state is committed on
// failure.
func (m *SessionManager) LoginWithProvider(ctx context.Context) error {
	if m.provider == nil {
		return fmt.Errorf("no identity provider configured")
	}

	token, err := m.provider.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("provider login: %w", err)
	}

	user, err := m.api.ExchangeIdentity(ctx, token)
	if err != nil {
		return fmt.Errorf("exchange identity token: %w", err)
	}

	m.adopt(ctx, user)
	return nil
}

// Logout invalidates the backend and provider sessions. Local state is
// cleared no matter what fails; the client must never stay stuck signed in.
func (m *SessionManager) Logout(ctx context.Context) error {
	err := m.api.Logout(ctx)
	if m.provider != nil {
		_ = m.provider.SignOut(ctx)
	}

	m.clearLocal(ctx)

	if err != nil {
		return fmt.Errorf("backend logout: %w", err)
	}
	return nil
}

// UpdateAvatar merges only the returned avatar field into the identity.
func (m *SessionManager) UpdateAvatar(ctx context.Context, imageData string) error {
	current, err := m.Require()
	if err != nil {
		return err
	}

	avatar, err := m.api.UpdateAvatar(ctx, imageData)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}

	current.Avatar = avatar
	m.adopt(ctx, current)
	return nil
}

func (m *SessionManager) Current() (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.signedIn
}

func (m *SessionManager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Require returns the identity or ErrNotSignedIn. Protected commands gate on
// it the way protected routes gate on the session.
func (m *SessionManager) Require() (domain.User, error) {
	user, ok := m.Current()
	if !ok {
		return domain.User{}, domain.ErrNotSignedIn
	}
	return user, nil
}

func (m *SessionManager) adopt(ctx context.Context, user domain.User) {
	m.setUser(user, true, true)

	// Cache write failures are not fatal: the cache only exists to avoid a
	// loading flash on the next run.
	_ = m.cache.Save(ctx, domain.CachedSession{
		User:       user,
		Credential: m.api.Credential(),
		ExpiresAt:  m.clock.Now().Add(sessionCacheTTL),
	})
}

func (m *SessionManager) clearLocal(ctx context.Context) {
	m.setUser(domain.User{}, false, true)
	m.api.SetCredential("")
	_ = m.cache.Clear(ctx)
}

func (m *SessionManager) setUser(user domain.User, signedIn, notify bool) {
	m.mu.Lock()
	m.user = user
	m.signedIn = signedIn
	fn := m.onChange
	m.mu.Unlock()

	if notify && fn != nil {
		fn(user, signedIn)
	}
}

func (m *SessionManager) markLoaded() {
	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()
}
