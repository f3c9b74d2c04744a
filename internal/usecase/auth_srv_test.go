package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginOwner_EstablishesAndPersistsSession(t *testing.T) {
	f := newFixture(t)

	f.auth.LoginOwnerFunc = func(ctx context.Context, req request.OwnerLoginRequest) (*response.LoginResponse, error) {
		assert.Equal(t, ownerNIC, req.NIC)
		return &response.LoginResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    "2026-03-01T09:00:00Z",
			User:         response.UserResponse{ID: "u1", FullName: "Nimal Perera", Role: "EVOwner"},
		}, nil
	}

	session, err := f.svc.Auth.LoginOwner(context.Background(), &request.OwnerLoginRequest{NIC: ownerNIC, Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, ownerNIC, session.NIC)
	assert.Equal(t, entity.RoleEVOwner, session.Role)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), session.ExpiresAt.UTC())

	persisted, err := f.repo.Session.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "access", persisted.AccessToken)

	token, ok := f.svc.Sessions.AccessToken(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "access", token)
}

func TestLoginOwner_ExpiryFromToken(t *testing.T) {
	f := newFixture(t)
	exp := f.now.Add(2 * time.Hour).Truncate(time.Second)

	f.auth.LoginOwnerFunc = func(ctx context.Context, req request.OwnerLoginRequest) (*response.LoginResponse, error) {
		return &response.LoginResponse{AccessToken: signedToken(t, exp), RefreshToken: "refresh"}, nil
	}

	session, err := f.svc.Auth.LoginOwner(context.Background(), &request.OwnerLoginRequest{NIC: ownerNIC, Password: "secret"})
	require.NoError(t, err)
	assert.True(t, exp.Equal(session.ExpiresAt))
}

func TestLoginOwner_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth.LoginOwner(context.Background(), &request.OwnerLoginRequest{NIC: ownerNIC})
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))
	assert.Nil(t, f.svc.Sessions.Current())
}

func TestLoginOwner_Rejected(t *testing.T) {
	f := newFixture(t)

	f.auth.LoginOwnerFunc = func(ctx context.Context, req request.OwnerLoginRequest) (*response.LoginResponse, error) {
		return nil, &apperror.ServerError{Status: 400, Message: "Invalid NIC or password"}
	}

	_, err := f.svc.Auth.LoginOwner(context.Background(), &request.OwnerLoginRequest{NIC: ownerNIC, Password: "wrong"})
	assert.Equal(t, "Invalid NIC or password", apperror.UserMessage(err))
	assert.Nil(t, f.svc.Sessions.Current())
}

func TestLoginUser_Operator(t *testing.T) {
	f := newFixture(t)

	f.auth.LoginUserFunc = func(ctx context.Context, req request.UserLoginRequest) (*response.LoginResponse, error) {
		return &response.LoginResponse{
			AccessToken: "access",
			User:        response.UserResponse{ID: "op1", Role: "Operator"},
		}, nil
	}

	session, err := f.svc.Auth.LoginUser(context.Background(), &request.UserLoginRequest{Email: "op@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, session.IsOperator())
	assert.Equal(t, "op@example.com", session.Email)
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)
	require.NoError(t, f.cache.Upsert(context.Background(), &entity.Booking{
		Base:     entity.Base{ID: "b1"},
		OwnerNIC: ownerNIC,
		Status:   entity.BookingStatusApproved,
	}))

	f.auth.LogoutFunc = func(ctx context.Context, req request.LogoutRequest) error {
		assert.Equal(t, "refresh", req.RefreshToken)
		return &apperror.NetworkError{Op: "logout", Err: errors.New("offline")}
	}

	require.NoError(t, f.svc.Auth.Logout(context.Background()))
	assert.Nil(t, f.svc.Auth.Current())

	persisted, err := f.repo.Session.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, persisted)

	cached, err := f.cache.FindByOwner(context.Background(), ownerNIC)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestLogout_WithoutSession(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.Auth.Logout(context.Background()))
}

func TestRefresh_KeepsSessionOnNetworkFailure(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)

	f.auth.RefreshFunc = func(ctx context.Context, req request.RefreshTokenRequest) (*response.LoginResponse, error) {
		return nil, &apperror.NetworkError{Op: "refresh", Err: errors.New("offline")}
	}

	_, err := f.svc.Auth.Refresh(context.Background())
	assert.Equal(t, apperror.KindNetwork, apperror.Kind(err))
	assert.NotNil(t, f.svc.Sessions.Current())
}

func TestRefresh_UnauthorizedEndsSession(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)

	f.auth.RefreshFunc = func(ctx context.Context, req request.RefreshTokenRequest) (*response.LoginResponse, error) {
		return nil, apperror.ErrNotAuthenticated
	}

	_, err := f.svc.Auth.Refresh(context.Background())
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)
	assert.Nil(t, f.svc.Sessions.Current())
}

func TestRestoreSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Session.Save(context.Background(), &entity.Session{
		UserID:      "u1",
		NIC:         ownerNIC,
		Role:        entity.RoleEVOwner,
		AccessToken: "stored",
	}))

	require.NoError(t, f.svc.Sessions.Restore(context.Background()))
	session, err := f.svc.Sessions.Require(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored", session.AccessToken)
}

func TestRegisterOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth.RegisterOwner(context.Background(), &request.RegisterOwnerRequest{NIC: "123"})
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))

	f.auth.RegisterFunc = func(ctx context.Context, req request.RegisterOwnerRequest) (*response.OwnerResponse, error) {
		return &response.OwnerResponse{NIC: req.NIC, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}, nil
	}

	owner, err := f.svc.Auth.RegisterOwner(context.Background(), &request.RegisterOwnerRequest{
		NIC:       ownerNIC,
		FirstName: "Nimal",
		LastName:  "Perera",
		Email:     "nimal@example.com",
		Password:  "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, ownerNIC, owner.NIC)
	assert.Equal(t, "Perera", owner.LastName)
}
