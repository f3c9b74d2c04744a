package middleware

import (
	"net/http"
	"time"

	"evcharge-client/pkg/utils"

	"go.uber.org/zap"
)

// Logger logs every outbound request with its outcome.
func Logger(logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(r)

			duration := time.Since(start)
			requestID, _ := utils.GetRequestIDFromContext(r.Context())

			if err != nil {
				logger.Warn("API request failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestID),
					zap.Duration("duration", duration),
					zap.Error(err),
				)
				return nil, err
			}

			logger.Debug("API request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", resp.StatusCode),
				zap.Int64("bytes", resp.ContentLength),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
			)
			return resp, nil
		})
	}
}
