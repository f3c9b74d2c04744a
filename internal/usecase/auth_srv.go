package usecase

import (
	"context"
	"fmt"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"

	"go.uber.org/zap"
)

type AuthService interface {
	LoginOwner(ctx context.Context, req *request.OwnerLoginRequest) (*entity.Session, error)
	LoginUser(ctx context.Context, req *request.UserLoginRequest) (*entity.Session, error)
	Refresh(ctx context.Context) (*entity.Session, error)
	Logout(ctx context.Context) error
	RegisterOwner(ctx context.Context, req *request.RegisterOwnerRequest) (*entity.Owner, error)
	Current() *entity.Session
}

type authService struct {
	api      adaptor.AuthAPI
	sessions *SessionManager
	log      *zap.Logger
}

func NewAuthService(api adaptor.AuthAPI, sessions *SessionManager, log *zap.Logger) AuthService {
	s := &authService{
		api:      api,
		sessions: sessions,
		log:      log.With(zap.String("service", "auth")),
	}
	sessions.SetRefresher(s.exchange)
	return s
}

func (s *authService) LoginOwner(ctx context.Context, req *request.OwnerLoginRequest) (*entity.Session, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Owner login validation failed", zap.Error(err))
		return nil, err
	}

	resp, err := s.api.LoginOwner(ctx, *req)
	if err != nil {
		s.log.Warn("Owner login failed", zap.String("nic", req.NIC), zap.Error(err))
		return nil, fmt.Errorf("login owner %s: %w", req.NIC, err)
	}

	session := resp.ToSession(entity.RoleEVOwner)
	if session.NIC == "" {
		session.NIC = req.NIC
	}

	if err := s.sessions.Establish(ctx, session); err != nil {
		return nil, fmt.Errorf("login owner %s: %w", req.NIC, err)
	}
	return s.sessions.Current(), nil
}

func (s *authService) LoginUser(ctx context.Context, req *request.UserLoginRequest) (*entity.Session, error) {
	if err := validate(req); err != nil {
		s.log.Warn("User login validation failed", zap.Error(err))
		return nil, err
	}

	resp, err := s.api.LoginUser(ctx, *req)
	if err != nil {
		s.log.Warn("User login failed", zap.String("email", req.Email), zap.Error(err))
		return nil, fmt.Errorf("login user %s: %w", req.Email, err)
	}

	session := resp.ToSession(entity.RoleOperator)
	if session.Email == "" {
		session.Email = req.Email
	}

	if err := s.sessions.Establish(ctx, session); err != nil {
		return nil, fmt.Errorf("login user %s: %w", req.Email, err)
	}
	return s.sessions.Current(), nil
}

// Refresh renews the current session before it expires.
func (s *authService) Refresh(ctx context.Context) (*entity.Session, error) {
	return s.sessions.Renew(ctx)
}

func (s *authService) exchange(ctx context.Context, current *entity.Session) (*entity.Session, error) {
	resp, err := s.api.Refresh(ctx, request.RefreshTokenRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return resp.ToSession(current.Role), nil
}

// Logout always clears the local session, even when the backend call fails.
func (s *authService) Logout(ctx context.Context) error {
	current := s.sessions.Current()
	if current == nil {
		return nil
	}

	err := s.api.Logout(ctx, request.LogoutRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		s.log.Warn("Backend logout failed, clearing local session anyway",
			zap.String("user_id", current.UserID),
			zap.Error(err),
		)
	}

	s.sessions.Clear(ctx)

	s.log.Info("Logged out", zap.String("user_id", current.UserID))
	return nil
}

func (s *authService) RegisterOwner(ctx context.Context, req *request.RegisterOwnerRequest) (*entity.Owner, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}

	resp, err := s.api.RegisterOwner(ctx, *req)
	if err != nil {
		s.log.Warn("Owner registration failed", zap.String("nic", req.NIC), zap.Error(err))
		return nil, fmt.Errorf("register owner %s: %w", req.NIC, err)
	}

	owner := resp.ToEntity()
	s.log.Info("Owner registered", zap.String("nic", owner.NIC))
	return &owner, nil
}

func (s *authService) Current() *entity.Session {
	return s.sessions.Current()
}
