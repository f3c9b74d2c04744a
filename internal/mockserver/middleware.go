package mockserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"evcharge-client/internal/data/entity"
	"evcharge-client/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type principalKey struct{}

// principal is the caller identified by the access token.
type principal struct {
	UserID string
	NIC    string
	Role   entity.UserRole
}

func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

type tokenClaims struct {
	NIC  string `json:"nic,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID, nic string, role entity.UserRole) (string, error) {
	now := s.opts.Now()
	claims := tokenClaims{
		NIC:  nic,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
}

func (s *Server) parseToken(raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.opts.Secret, nil
		},
		jwt.WithTimeFunc(s.opts.Now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// authenticate validates the bearer token and stores the caller in the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.ResponseUnauthorized(w, "Missing authorization token")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
			return
		}

		claims, err := s.parseToken(parts[1])
		if err != nil {
			s.log.Warn("Invalid or expired token", zap.Error(err))
			utils.ResponseUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal{
			UserID: claims.Subject,
			NIC:    claims.NIC,
			Role:   entity.UserRole(claims.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok {
			utils.ResponseUnauthorized(w, "Authentication required")
			return
		}
		if p.Role != entity.RoleOperator {
			utils.ResponseForbidden(w, "Operator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.log.Debug("Mock request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
		)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				utils.ResponseInternalError(w, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
