package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/data/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RefreshFunc exchanges a refresh token for a new session.
type RefreshFunc func(ctx context.Context, current *entity.Session) (*entity.Session, error)

// SessionManager owns the authenticated session for the process. It is
// established on login, cleared on logout, and cleared when the backend
// rejects the token and a refresh does not help.
type SessionManager struct {
	mu      sync.RWMutex
	current *entity.Session
	refresh RefreshFunc
	onClear []func(ctx context.Context, previous *entity.Session)

	repo  repository.SessionRepository
	group singleflight.Group
	now   func() time.Time
	log   *zap.Logger
}

func NewSessionManager(repo repository.SessionRepository, now func() time.Time, log *zap.Logger) *SessionManager {
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		repo: repo,
		now:  now,
		log:  log.With(zap.String("service", "session")),
	}
}

// SetRefresher installs the token refresh call. Without one an expired
// session is simply cleared.
func (m *SessionManager) SetRefresher(fn RefreshFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = fn
}

// OnClear registers fn to run after a session ends, whatever ended it.
func (m *SessionManager) OnClear(fn func(ctx context.Context, previous *entity.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClear = append(m.onClear, fn)
}

// Restore loads the persisted session, if any.
func (m *SessionManager) Restore(ctx context.Context) error {
	session, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if session == nil {
		return nil
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	m.log.Debug("Session restored",
		zap.String("user_id", session.UserID),
		zap.String("role", string(session.Role)),
	)
	return nil
}

// Establish makes session current and persists it. A missing expiry is
// taken from the token's exp claim.
func (m *SessionManager) Establish(ctx context.Context, session *entity.Session) error {
	if session == nil || session.AccessToken == "" {
		return apperror.Malformed("establish session", errors.New("missing access token"))
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = tokenExpiry(session.AccessToken)
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	if err := m.repo.Save(ctx, session); err != nil {
		// the in-memory session still works for this process
		m.log.Warn("Session not persisted", zap.Error(err))
	}

	m.log.Info("Session established",
		zap.String("user_id", session.UserID),
		zap.String("nic", session.NIC),
		zap.String("role", string(session.Role)),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return nil
}

// Clear drops the session from memory and from the cache.
func (m *SessionManager) Clear(ctx context.Context) {
	m.mu.Lock()
	previous := m.current
	m.current = nil
	hooks := m.onClear
	m.mu.Unlock()

	if err := m.repo.Clear(ctx); err != nil {
		m.log.Warn("Persisted session not cleared", zap.Error(err))
	}

	if previous == nil {
		return
	}
	for _, fn := range hooks {
		fn(ctx, previous)
	}
	m.log.Info("Session cleared", zap.String("user_id", previous.UserID))
}

// Current returns a copy of the session, or nil.
func (m *SessionManager) Current() *entity.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil
	}
	session := *m.current
	return &session
}

// AccessToken lets the outbound transport attach the bearer header.
func (m *SessionManager) AccessToken(context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || m.current.AccessToken == "" {
		return "", false
	}
	return m.current.AccessToken, true
}

// Require returns a usable session. An expired one is refreshed once; when
// that fails the session is cleared and ErrNotAuthenticated returned.
func (m *SessionManager) Require(ctx context.Context) (*entity.Session, error) {
	session := m.Current()
	if session == nil {
		return nil, apperror.ErrNotAuthenticated
	}
	if session.Valid(m.now()) {
		return session, nil
	}

	m.log.Warn("Session expired, refreshing",
		zap.String("user_id", session.UserID),
		zap.Time("expires_at", session.ExpiresAt),
	)

	// concurrent callers share one refresh
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.refreshSession(ctx, session)
	})
	if err != nil {
		m.log.Warn("Session refresh failed, forcing logout", zap.Error(err))
		m.Clear(ctx)
		return nil, fmt.Errorf("refresh session: %w", apperror.ErrNotAuthenticated)
	}
	return v.(*entity.Session), nil
}

// Renew refreshes the session even when it has not expired. Only a backend
// 401 ends the session; other failures leave it in place.
func (m *SessionManager) Renew(ctx context.Context) (*entity.Session, error) {
	session := m.Current()
	if session == nil {
		return nil, apperror.ErrNotAuthenticated
	}

	v, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.refreshSession(ctx, session)
	})
	if err != nil {
		return nil, m.Observe(ctx, fmt.Errorf("renew session: %w", err))
	}
	return v.(*entity.Session), nil
}

func (m *SessionManager) refreshSession(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	m.mu.RLock()
	refresh := m.refresh
	m.mu.RUnlock()

	if refresh == nil || session.RefreshToken == "" {
		return nil, errors.New("no refresh token")
	}

	renewed, err := refresh(ctx, session)
	if err != nil {
		return nil, err
	}
	if renewed.Role == "" {
		renewed.Role = session.Role
	}
	if renewed.NIC == "" {
		renewed.NIC = session.NIC
	}
	if renewed.RefreshToken == "" {
		renewed.RefreshToken = session.RefreshToken
	}

	if err := m.Establish(ctx, renewed); err != nil {
		return nil, err
	}
	return m.Current(), nil
}

// Observe inspects the result of an authenticated call. A backend 401 ends
// the session so every screen sends the user back to login.
func (m *SessionManager) Observe(ctx context.Context, err error) error {
	if err != nil && errors.Is(err, apperror.ErrNotAuthenticated) {
		m.log.Warn("Backend rejected session, forcing logout")
		m.Clear(ctx)
	}
	return err
}

// tokenExpiry reads the exp claim without verifying the signature.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
