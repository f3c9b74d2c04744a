package middleware

import (
	"context"
	"net/http"

	"evcharge-client/pkg/utils"

	"go.uber.org/zap"
)

// TokenSource supplies the current access token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// Bearer attaches "Authorization: Bearer <token>" unless the request is marked exempt.
func Bearer(tokens TokenSource, logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if utils.IsAuthSkipped(r.Context()) {
				return next.RoundTrip(r)
			}

			token, ok := tokens.AccessToken(r.Context())
			if !ok {
				// the backend answers 401 and the caller handles it
				logger.Debug("No access token for authenticated request", zap.String("path", r.URL.Path))
				return next.RoundTrip(r)
			}

			// RoundTrippers must not modify the caller's request
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}
