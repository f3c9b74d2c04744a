package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Recover turns a panic inside the transport chain into an ordinary error.
func Recover(logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (resp *http.Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("PANIC recovered in transport",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Stack("stack"),
					)
					resp = nil
					err = fmt.Errorf("transport panic: %v", rec)
				}
			}()
			return next.RoundTrip(r)
		})
	}
}
