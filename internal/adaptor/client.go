package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/dto/response"
	"evcharge-client/pkg/middleware"
	"evcharge-client/pkg/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

// Client speaks the backend's JSON envelope protocol.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *zap.Logger
}

// NewClient builds the shared HTTP client. base is the innermost transport;
// nil means http.DefaultTransport.
func NewClient(cfg utils.APIConfig, tokens middleware.TokenSource, base http.RoundTripper, log *zap.Logger) (*Client, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse API base url: %w", err)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	log = log.With(zap.String("adaptor", "api"))

	transport := middleware.Chain(base,
		middleware.Recover(log),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.RateLimit(middleware.NewLimiter(cfg.RateLimitPerSec, cfg.RateBurst)),
		middleware.Bearer(tokens, log),
	)

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   cfg.Timeout,
		},
		log: log,
	}, nil
}

// endpoint resolves an already escaped relative path against the base URL.
func (c *Client) endpoint(path string) string {
	ref := &url.URL{Path: path}
	if unescaped, err := url.PathUnescape(path); err == nil {
		ref = &url.URL{Path: unescaped, RawPath: path}
	}
	return c.baseURL.ResolveReference(ref).String()
}

// do sends one request and classifies the outcome:
//   - transport failure or a non-2xx status without a message: NetworkError
//   - 401: ErrNotAuthenticated
//   - non-2xx with an envelope message, or success=false: ServerError
//   - a 2xx body that is not an envelope: ErrMalformedResponse
func (c *Client) do(ctx context.Context, op, method, path string, body any) (*response.Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperror.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &apperror.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w", op, apperror.ErrNotAuthenticated)
	}

	var env response.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.Message != "" {
			return nil, &apperror.ServerError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
		}
		return nil, &apperror.NetworkError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if decodeErr != nil {
		c.log.Warn("Unreadable response envelope", zap.String("op", op), zap.Error(decodeErr))
		return nil, apperror.Malformed(op, decodeErr)
	}

	if !env.Success {
		return nil, &apperror.ServerError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}

	return &env, nil
}

// decodeData decodes env.Data into T. Missing data is malformed.
func decodeData[T any](op string, env *response.Envelope) (*T, error) {
	if !env.HasData() {
		return nil, apperror.Malformed(op, errors.New("missing data"))
	}

	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, apperror.Malformed(op, err)
	}
	return &out, nil
}

// decodeList splits a list payload into raw items so callers can convert them
// one by one. A null list is an empty list.
func decodeList(op string, env *response.Envelope) ([]json.RawMessage, error) {
	if !env.HasData() {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, apperror.Malformed(op, err)
	}
	return items, nil
}

func pathID(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
