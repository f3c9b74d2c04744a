package utils

import (
	"github.com/google/uuid"
)

// NewRequestID returns the correlation id sent as X-Request-ID.
func NewRequestID() string {
	return uuid.New().String()
}

// NewScanID identifies one operator scan session in logs.
func NewScanID() string {
	return uuid.New().String()
}
