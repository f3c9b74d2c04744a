package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/repository"
	"evcharge-client/internal/mockserver"
	"evcharge-client/internal/wire"
	"evcharge-client/pkg/database"
	"evcharge-client/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestApp(t *testing.T) *wire.App {
	t.Helper()
	log := zaptest.NewLogger(t)

	backend := mockserver.New(mockserver.Options{AutoApprove: true}, log)
	backend.Seed()
	ts := httptest.NewServer(backend.Router())
	t.Cleanup(ts.Close)

	config := &utils.Config{
		API:     utils.APIConfig{BaseURL: ts.URL + "/api/", Timeout: 5 * time.Second},
		Cache:   utils.CacheConfig{Driver: "sqlite", DSN: "file:cmd_" + t.Name() + "?mode=memory&cache=shared"},
		Booking: utils.BookingConfig{AdvanceNotice: 12 * time.Hour},
		QR:      utils.QRConfig{Size: 256},
	}

	db, err := database.InitDB(config.Cache, log, repository.Models()...)
	require.NoError(t, err)

	app, err := wire.Wiring(context.Background(), config, db, log)
	require.NoError(t, err)
	return app
}

func execute(app *wire.App, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), app, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("list bookings: %w", apperror.ErrNotAuthenticated)))
	assert.Equal(t, 1, ExitCode(&apperror.ServerError{Message: "nope"}))
}

func TestNotLoggedInExitsWithTwo(t *testing.T) {
	app := newTestApp(t)

	code, _, stderr := execute(app, "bookings", "list")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "session expired, please log in")
}

func TestOwnerFlow(t *testing.T) {
	app := newTestApp(t)

	code, stdout, stderr := execute(app, "login", "owner", "--nic", "991234567V", "--password", "password")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Nimal Perera")

	code, stdout, _ = execute(app, "stations")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Colombo Fort Supercharger")

	start := time.Now().Add(48 * time.Hour).Format(displayLayout)
	code, stdout, stderr = execute(app, "bookings", "create", "--station", "st-1", "--start", start, "--duration", "60")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Approved")
	assert.Contains(t, stdout, "LKR 900.00")

	code, stdout, _ = execute(app, "bookings", "upcoming")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "bk-1")
	assert.Contains(t, stdout, "Colombo Fort Supercharger")

	code, _, stderr = execute(app, "bookings", "create", "--station", "st-1", "--start", time.Now().Add(time.Hour).Format(displayLayout))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "12 hours")

	code, stdout, _ = execute(app, "logout")
	require.Equal(t, 0, code)
	assert.Equal(t, "Logged out.", strings.TrimSpace(stdout))
}

func TestScanRequiresInput(t *testing.T) {
	app := newTestApp(t)

	code, _, stderr := execute(app, "operator", "scan")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Payload")
}
