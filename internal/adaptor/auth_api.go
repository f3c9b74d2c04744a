package adaptor

import (
	"context"
	"net/http"

	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"
	"evcharge-client/pkg/utils"
)

type AuthAPI interface {
	LoginOwner(ctx context.Context, req request.OwnerLoginRequest) (*response.LoginResponse, error)
	LoginUser(ctx context.Context, req request.UserLoginRequest) (*response.LoginResponse, error)
	Refresh(ctx context.Context, req request.RefreshTokenRequest) (*response.LoginResponse, error)
	Logout(ctx context.Context, req request.LogoutRequest) error
	RegisterOwner(ctx context.Context, req request.RegisterOwnerRequest) (*response.OwnerResponse, error)
}

type authAPI struct {
	client *Client
}

func NewAuthAPI(client *Client) AuthAPI {
	return &authAPI{client: client}
}

func (a *authAPI) LoginOwner(ctx context.Context, req request.OwnerLoginRequest) (*response.LoginResponse, error) {
	env, err := a.client.do(utils.WithoutAuth(ctx), "owner login", http.MethodPost, "auth/login/evowner", req)
	if err != nil {
		return nil, err
	}
	return decodeData[response.LoginResponse]("owner login", env)
}

func (a *authAPI) LoginUser(ctx context.Context, req request.UserLoginRequest) (*response.LoginResponse, error) {
	env, err := a.client.do(utils.WithoutAuth(ctx), "user login", http.MethodPost, "auth/login", req)
	if err != nil {
		return nil, err
	}
	return decodeData[response.LoginResponse]("user login", env)
}

func (a *authAPI) Refresh(ctx context.Context, req request.RefreshTokenRequest) (*response.LoginResponse, error) {
	env, err := a.client.do(utils.WithoutAuth(ctx), "refresh token", http.MethodPost, "auth/refresh", req)
	if err != nil {
		return nil, err
	}
	return decodeData[response.LoginResponse]("refresh token", env)
}

func (a *authAPI) Logout(ctx context.Context, req request.LogoutRequest) error {
	_, err := a.client.do(ctx, "logout", http.MethodPost, "auth/logout", req)
	return err
}

func (a *authAPI) RegisterOwner(ctx context.Context, req request.RegisterOwnerRequest) (*response.OwnerResponse, error) {
	env, err := a.client.do(utils.WithoutAuth(ctx), "register owner", http.MethodPost, "evowners/register", req)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		// some deployments answer registration with only a message
		return &response.OwnerResponse{NIC: req.NIC, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone}, nil
	}
	return decodeData[response.OwnerResponse]("register owner", env)
}
