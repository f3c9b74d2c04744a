package mockserver

import (
	"encoding/json"
	"net/http"

	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"
	"evcharge-client/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// decodeRequest decodes and validates the body, answering 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", utils.FieldMessages(validationErrors))
		return false
	}
	return true
}

func (s *Server) loginResponse(userID string, user response.UserResponse, role entity.UserRole) (*response.LoginResponse, error) {
	access, err := s.issueToken(userID, user.NIC, role)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	s.mu.Lock()
	s.refreshTokens[refresh] = userID
	s.mu.Unlock()

	return &response.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    utils.FormatISO(s.opts.Now().Add(s.opts.TokenTTL)),
		User:         user,
	}, nil
}

// loginOwner handles POST /api/auth/login/evowner
func (s *Server) loginOwner(w http.ResponseWriter, r *http.Request) {
	var req request.OwnerLoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	s.mu.Lock()
	o, ok := s.owners[req.NIC]
	s.mu.Unlock()
	if !ok || o.password != req.Password {
		s.log.Warn("Owner login rejected", zap.String("nic", req.NIC))
		utils.ResponseBadRequest(w, "Invalid NIC or password", nil)
		return
	}

	resp, err := s.loginResponse(o.NIC, response.UserResponse{
		ID:       o.NIC,
		NIC:      o.NIC,
		Email:    o.Email,
		Role:     "EVOwner",
		FullName: o.FirstName + " " + o.LastName,
	}, entity.RoleEVOwner)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// loginUser handles POST /api/auth/login
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req request.UserLoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	s.mu.Lock()
	op, ok := s.operators[req.Email]
	s.mu.Unlock()
	if !ok || op.password != req.Password {
		s.log.Warn("User login rejected", zap.String("email", req.Email))
		utils.ResponseBadRequest(w, "Invalid email or password", nil)
		return
	}

	resp, err := s.loginResponse(op.id, response.UserResponse{
		ID:       op.id,
		Email:    op.email,
		Role:     "Operator",
		FullName: op.name,
	}, entity.RoleOperator)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// refresh handles POST /api/auth/refresh. Refresh tokens are single use.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshTokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	s.mu.Lock()
	userID, ok := s.refreshTokens[req.RefreshToken]
	delete(s.refreshTokens, req.RefreshToken)
	o, isOwner := s.owners[userID]
	var op *operator
	for _, candidate := range s.operators {
		if candidate.id == userID {
			op = candidate
		}
	}
	s.mu.Unlock()

	if !ok {
		utils.ResponseUnauthorized(w, "Invalid refresh token")
		return
	}

	var (
		resp *response.LoginResponse
		err  error
	)
	switch {
	case isOwner:
		resp, err = s.loginResponse(userID, response.UserResponse{
			ID: userID, NIC: o.NIC, Email: o.Email, Role: "EVOwner", FullName: o.FirstName + " " + o.LastName,
		}, entity.RoleEVOwner)
	case op != nil:
		resp, err = s.loginResponse(userID, response.UserResponse{
			ID: userID, Email: op.email, Role: "Operator", FullName: op.name,
		}, entity.RoleOperator)
	default:
		utils.ResponseUnauthorized(w, "Unknown user")
		return
	}
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "Token refreshed", resp)
}

// logout handles POST /api/auth/logout (protected)
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req request.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		s.mu.Lock()
		delete(s.refreshTokens, req.RefreshToken)
		s.mu.Unlock()
	}

	utils.ResponseSuccess(w, "Logged out", nil)
}

// registerOwner handles POST /api/evowners/register
func (s *Server) registerOwner(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterOwnerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.owners[req.NIC]; exists {
		utils.ResponseBadRequest(w, "An EV owner with this NIC already exists", nil)
		return
	}

	o := &owner{
		Owner: entity.Owner{
			NIC:       req.NIC,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
		},
		password: req.Password,
	}
	s.owners[req.NIC] = o

	s.log.Info("Owner registered", zap.String("nic", req.NIC))
	utils.ResponseCreated(w, "Registration successful", response.OwnerResponse{
		NIC:       o.NIC,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Phone:     o.Phone,
	})
}
