package utils

import (
	"context"
)

type contextKey string

const (
	SkipAuthKey  contextKey = "skip_auth"
	RequestIDKey contextKey = "request_id"
)

// WithoutAuth marks a request as exempt from the bearer header (login, refresh, register).
func WithoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, SkipAuthKey, true)
}

func IsAuthSkipped(ctx context.Context) bool {
	skip, ok := ctx.Value(SkipAuthKey).(bool)
	return ok && skip
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok && id != ""
}
