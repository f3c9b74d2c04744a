package middleware

import (
	"net/http"

	"evcharge-client/pkg/utils"
)

// RequestID sets X-Request-ID, reusing one already present in the context.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			id, ok := utils.GetRequestIDFromContext(r.Context())
			if !ok {
				id = utils.NewRequestID()
			}

			ctx := utils.WithRequestID(r.Context(), id)
			r = r.Clone(ctx)
			r.Header.Set("X-Request-ID", id)
			r.Header.Set("Accept", "application/json")
			return next.RoundTrip(r)
		})
	}
}
