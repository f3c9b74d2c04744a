package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"evcharge-client/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticTokens struct {
	token string
}

func (s staticTokens) AccessToken(context.Context) (string, bool) {
	return s.token, s.token != ""
}

func recordingTransport(seen *[]*http.Request) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		*seen = append(*seen, r)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
}

func TestChain_FirstIsOutermost(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	var seen []*http.Request
	rt := Chain(recordingTransport(&seen), mark("a"), mark("b"), mark("c"))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://backend/api/x", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Len(t, seen, 1)
}

func TestBearer(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		skip   bool
		header string
	}{
		{name: "attaches token", token: "abc", header: "Bearer abc"},
		{name: "no token", token: "", header: ""},
		{name: "exempt request", token: "abc", skip: true, header: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []*http.Request
			rt := Chain(recordingTransport(&seen), Bearer(staticTokens{token: tt.token}, zap.NewNop()))

			req := httptest.NewRequest(http.MethodGet, "http://backend/api/bookings", nil)
			if tt.skip {
				req = req.WithContext(utils.WithoutAuth(req.Context()))
			}

			_, err := rt.RoundTrip(req)
			require.NoError(t, err)
			require.Len(t, seen, 1)
			assert.Equal(t, tt.header, seen[0].Header.Get("Authorization"))
			// the caller's request is left untouched
			assert.Empty(t, req.Header.Get("Authorization"))
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen []*http.Request
	rt := Chain(recordingTransport(&seen), RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://backend/api/x", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.NotEmpty(t, seen[0].Header.Get("X-Request-ID"))
	assert.Equal(t, "application/json", seen[0].Header.Get("Accept"))

	req = req.WithContext(utils.WithRequestID(context.Background(), "fixed-id"))
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", seen[1].Header.Get("X-Request-ID"))
}

func TestRecover(t *testing.T) {
	panicking := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		panic("boom")
	})

	core, logs := observer.New(zapcore.ErrorLevel)
	rt := Chain(panicking, Recover(zap.New(core)))

	resp, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://backend/api/x", nil))
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "boom"))
	assert.Equal(t, 1, logs.Len())
}

func TestLogger_WarnsOnFailure(t *testing.T) {
	failing := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	core, logs := observer.New(zapcore.WarnLevel)
	rt := Chain(failing, Logger(zap.New(core)))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodPost, "http://backend/api/bookings", nil))
	require.Error(t, err)

	entries := logs.FilterMessage("API request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/bookings", entries[0].ContextMap()["path"])
}

func TestRateLimit_HonoursContext(t *testing.T) {
	var seen []*http.Request
	rt := Chain(recordingTransport(&seen), RateLimit(NewLimiter(1, 1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "http://backend/api/x", nil).WithContext(ctx)
	_, err := rt.RoundTrip(req)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, seen)
}

func TestNewLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow())
	}
}
