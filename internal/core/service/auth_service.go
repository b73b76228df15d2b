package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
	"github.com/99minutos/backoffice/internal/pkg/metrics"
)

const (
	// DefaultVerifyInterval is how often the backend is asked whether the
	// session is still valid.
	DefaultVerifyInterval = time.Minute

	msgLoginFailed   = "Login failed"
	msgUnreachable   = "Unable to reach the server. Please try again."
	msgMissingFields = "Username and password are required"
	msgInvalidRole   = "Please choose a valid account type"
)

// AuthService owns the authentication state of the console. There is exactly
// one per process: it is built by the command root and injected everywhere
// else. It is the only writer of the session store.
//
// Every state mutation bumps a generation counter. Operations that cross the
// network capture the generation first and drop their result when it changed
// meanwhile, so a late answer can never undo a newer login or logout.
type AuthService struct {
	client    ports.SessionClient
	transport ports.TransportFactory
	store     *SessionStore
	interval  time.Duration
	log       zerolog.Logger

	mu       sync.RWMutex
	state    domain.AuthState
	gen      uint64
	pending  *domain.Identity
	loginErr string
	task     *PeriodicTask

	ready     chan struct{}
	readyOnce sync.Once

	httpOnce   sync.Once
	httpClient *http.Client
}

var _ ports.AuthService = (*AuthService)(nil)
var _ ports.Invalidator = (*AuthService)(nil)

// Option customises an AuthService.
type Option func(*AuthService)

// WithVerifyInterval overrides DefaultVerifyInterval. Non-positive values are ignored.
func WithVerifyInterval(d time.Duration) Option {
	return func(s *AuthService) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTransport sets the factory behind HTTPClient.
func WithTransport(tf ports.TransportFactory) Option {
	return func(s *AuthService) { s.transport = tf }
}

// NewAuthService returns a service in the Loading state. Call Start to load
// the stored identity and begin periodic verification.
func NewAuthService(client ports.SessionClient, store *SessionStore, log zerolog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		client:   client,
		store:    store,
		interval: DefaultVerifyInterval,
		log:      log,
		state:    domain.LoadingState(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport != nil {
		// Bind before Start so a 401 on the first verification is scoped too.
		s.HTTPClient()
	}
	metrics.SetAuthState(s.state.Status.String())
	return s
}

// Start rehydrates the stored identity and schedules verification: once
// immediately, then every interval. Calling Start twice has no effect.
func (s *AuthService) Start(ctx context.Context) {
	stored, found := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		return
	}

	if s.state.Status == domain.StatusLoading {
		if found {
			s.pending = stored
		} else {
			s.gen++
			s.setStateLocked(domain.AnonymousState())
			s.markReady()
		}
	}

	s.task = StartPeriodic(ctx, s.interval, func(ctx context.Context) {
		_ = s.Verify(ctx)
	})
	s.log.Info().Dur("interval", s.interval).Bool("stored_identity", found).Msg("session verification started")
}

// Stop cancels periodic verification and waits for it to finish.
func (s *AuthService) Stop() {
	s.mu.Lock()
	task := s.task
	s.task = nil
	s.mu.Unlock()

	if task != nil {
		task.Stop()
		s.log.Info().Msg("session verification stopped")
	}
}

// Ready is closed once the first verification settled the Loading state.
func (s *AuthService) Ready() <-chan struct{} {
	return s.ready
}

// Verify asks the backend whether the current session is still valid and
// applies the answer unless the state changed while the request was in flight.
func (s *AuthService) Verify(ctx context.Context) error {
	s.mu.RLock()
	status, gen, pending := s.state.Status, s.gen, s.pending
	s.mu.RUnlock()

	if status == domain.StatusAnonymous || (status == domain.StatusLoading && pending == nil) {
		metrics.SessionVerificationsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	res, err := s.client.VerifySession(ctx)
	if err != nil && ctx.Err() != nil {
		// Shutting down; an aborted request says nothing about the session.
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		metrics.SessionVerificationsTotal.WithLabelValues("stale").Inc()
		s.log.Debug().Uint64("generation", gen).Uint64("current", s.gen).Msg("discarding stale verification")
		return nil
	}

	switch {
	case err != nil:
		metrics.SessionVerificationsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("session verification failed")
		s.clearLocked(ctx, "verify_error")
		return err
	case !res.Valid:
		metrics.SessionVerificationsTotal.WithLabelValues("invalid").Inc()
		s.log.Info().Msg("session no longer valid")
		s.clearLocked(ctx, "verify_invalid")
		return nil
	}

	if res.ExpiringSoon {
		metrics.SessionVerificationsTotal.WithLabelValues("expiring").Inc()
		s.log.Warn().Msg("session will expire soon")
	} else {
		metrics.SessionVerificationsTotal.WithLabelValues("valid").Inc()
	}

	if s.state.Status == domain.StatusLoading && s.pending != nil {
		s.gen++
		s.setStateLocked(domain.AuthenticatedState(*s.pending))
		s.pending = nil
		s.markReady()
		s.log.Info().Str("username", s.state.Identity.Username).Msg("stored session restored")
	}
	return nil
}

// Login hashes the password, authenticates against the backend and, on
// success, replaces the current identity. A failed attempt leaves the state
// untouched.
func (s *AuthService) Login(ctx context.Context, username, password string, role domain.Role) ports.LoginResult {
	s.mu.RLock()
	startGen := s.gen
	s.mu.RUnlock()

	if strings.TrimSpace(username) == "" || password == "" {
		return s.loginFailed(startGen, msgMissingFields, "rejected")
	}
	if !role.Valid() {
		return s.loginFailed(startGen, msgInvalidRole, "rejected")
	}

	id, err := s.client.Login(ctx, username, HashPassword(password), role)
	if err != nil {
		msg, result := loginFailure(err)
		s.log.Info().Err(err).Str("username", username).Str("role", role.String()).Msg("login failed")
		return s.loginFailed(startGen, msg, result)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.pending = nil
	s.loginErr = ""
	s.setStateLocked(domain.AuthenticatedState(*id))
	if err := s.store.Save(context.WithoutCancel(ctx), *id); err != nil {
		s.log.Warn().Err(err).Msg("identity not persisted")
	}
	s.markReady()

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", id.Username).Str("role", id.Role.String()).Msg("login succeeded")
	return ports.LoginResult{Success: true}
}

// loginFailed records msg as the sign-in error unless another state change
// (typically a newer successful login) happened since the attempt started.
func (s *AuthService) loginFailed(startGen uint64, msg, result string) ports.LoginResult {
	metrics.LoginsTotal.WithLabelValues(result).Inc()
	s.mu.Lock()
	if s.gen == startGen {
		s.loginErr = msg
	}
	s.mu.Unlock()
	return ports.LoginResult{Success: false, Message: msg}
}

func loginFailure(err error) (string, string) {
	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		return msgLoginFailed, "protocol_error"
	}
	switch ae.Kind {
	case domain.KindTransport:
		return msgUnreachable, "transport_error"
	case domain.KindRejected:
		if ae.Message != "" {
			return ae.Message, "rejected"
		}
		return msgLoginFailed, "rejected"
	default:
		return msgLoginFailed, "protocol_error"
	}
}

// Logout clears local state first and then tells the backend. It never fails:
// a backend error is logged and ignored.
func (s *AuthService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.clearLocked(ctx, "logout")
	s.loginErr = ""
	s.mu.Unlock()

	if err := s.client.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("logout request failed")
	}
}

// Invalidate forces the anonymous state regardless of generation.
func (s *AuthService) Invalidate(reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidateLocked(reason)
}

// Generation returns the current state generation.
func (s *AuthService) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// InvalidateGeneration clears the session only if no state change happened
// since gen was read. It reports whether the session was cleared.
func (s *AuthService) InvalidateGeneration(gen uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.log.Debug().Str("reason", reason).Msg("ignoring invalidation from an older session")
		return false
	}
	return s.invalidateLocked(reason)
}

func (s *AuthService) invalidateLocked(reason string) bool {
	if s.state.Status == domain.StatusAnonymous {
		return false
	}
	s.log.Info().Str("reason", reason).Msg("session invalidated")
	s.clearLocked(context.Background(), reason)
	return true
}

// clearLocked moves to Anonymous and removes the stored identity.
func (s *AuthService) clearLocked(ctx context.Context, reason string) {
	if s.state.Status != domain.StatusAnonymous || s.pending != nil {
		metrics.SessionInvalidationsTotal.WithLabelValues(reason).Inc()
	}
	s.gen++
	s.pending = nil
	s.setStateLocked(domain.AnonymousState())
	s.store.Clear(context.WithoutCancel(ctx))
	s.markReady()
}

func (s *AuthService) setStateLocked(st domain.AuthState) {
	s.state = st
	metrics.SetAuthState(st.Status.String())
}

func (s *AuthService) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// IsAuthenticated reports whether an identity is currently signed in.
func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated()
}

// CurrentIdentity returns a copy of the signed-in identity.
func (s *AuthService) CurrentIdentity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.Authenticated() {
		return domain.Identity{}, false
	}
	return s.state.Identity.Clone(), true
}

// State returns a snapshot of the auth state.
func (s *AuthService) State() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Authenticated() {
		return domain.AuthenticatedState(*s.state.Identity)
	}
	return domain.AuthState{Status: s.state.Status}
}

// LastLoginError is the message of the most recent failed login, cleared by
// a successful login or a logout.
func (s *AuthService) LastLoginError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginErr
}

// HTTPClient returns the shared client for resource requests.
func (s *AuthService) HTTPClient() *http.Client {
	s.httpOnce.Do(func() {
		if s.transport == nil {
			s.log.Warn().Msg("no transport configured, resource requests will not invalidate the session")
			s.httpClient = &http.Client{}
			return
		}
		s.httpClient = s.transport.NewHTTPClient(s)
	})
	return s.httpClient
}
