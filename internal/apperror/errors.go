package apperror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"evcharge-client/pkg/utils"
)

var (
	// ErrNotAuthenticated means there is no usable session. Callers must send the user to login.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMalformedResponse means the backend answered with something the client cannot read.
	ErrMalformedResponse = errors.New("malformed response")
)

// NetworkError is a transport-level failure: DNS, timeout, refused connection, bad gateway.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is an application-level rejection. Message is shown to the user verbatim.
type ServerError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *ServerError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("server rejected request: %s (%s)", e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("server rejected request: %s", e.Message)
}

// ValidationError is a local rejection raised before any network call.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

// Malformed wraps ErrMalformedResponse with detail.
func Malformed(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
}

type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindNetwork    ErrorKind = "network"
	KindServer     ErrorKind = "server"
	KindMalformed  ErrorKind = "malformed"
	KindValidation ErrorKind = "validation"
	KindCancelled  ErrorKind = "cancelled"
	KindUnknown    ErrorKind = "unknown"
)

// Kind classifies err into the taxonomy.
func Kind(err error) ErrorKind {
	var (
		netErr *NetworkError
		srvErr *ServerError
		valErr *ValidationError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return KindAuth
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &srvErr):
		return KindServer
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// Retryable reports whether offering a retry makes sense.
func Retryable(err error) bool {
	switch Kind(err) {
	case KindNetwork, KindMalformed, KindServer:
		return true
	}
	return false
}

// UserMessage is the text shown to the user for err.
func UserMessage(err error) string {
	var (
		srvErr *ServerError
		valErr *ValidationError
	)

	switch Kind(err) {
	case KindAuth:
		return "Your session has expired. Please log in again."
	case KindValidation:
		errors.As(err, &valErr)
		return valErr.Error()
	case KindServer:
		errors.As(err, &srvErr)
		if srvErr.Message != "" {
			return srvErr.Message
		}
		return "The request was rejected."
	case KindNetwork:
		return "Network error. Check your connection and try again."
	case KindMalformed:
		return "Something went wrong reading the server response. Please try again."
	case KindCancelled:
		return "Request cancelled."
	}
	if err == nil {
		return ""
	}
	return "Something went wrong. Please try again."
}
