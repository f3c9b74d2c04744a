// internal/wire/wire.go
package wire

import (
	"context"
	"net/http"
	"time"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/data/repository"
	"evcharge-client/internal/mockserver"
	"evcharge-client/internal/usecase"
	"evcharge-client/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds every dependency the commands need.
type App struct {
	Config     *utils.Config
	Repository *repository.Repository
	API        *adaptor.API
	Service    *usecase.Service
	Log        *zap.Logger
}

type options struct {
	now       func() time.Time
	transport http.RoundTripper
}

type Option func(*options)

// WithClock replaces time.Now for expiry and advance-notice checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTransport sets the innermost HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// Wiring builds the cache repositories, restores any persisted session and
// connects the services to the backend API.
func Wiring(ctx context.Context, config *utils.Config, db *gorm.DB, logger *zap.Logger, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	repo := repository.NewRepository(db, logger)

	// the session manager is the API client's token source
	sessions := usecase.NewSessionManager(repo.Session, o.now, logger)
	if err := sessions.Restore(ctx); err != nil {
		logger.Warn("Persisted session not restored", zap.Error(err))
	}

	api, err := adaptor.NewAPI(config.API, sessions, o.transport, logger)
	if err != nil {
		return nil, err
	}

	service := usecase.NewService(api, sessions, repo, config, o.now, logger)

	return &App{
		Config:     config,
		Repository: repo,
		API:        api,
		Service:    service,
		Log:        logger,
	}, nil
}

// MockRouter builds the fake backend used for local development.
func MockRouter(config *utils.Config, logger *zap.Logger) *chi.Mux {
	srv := mockserver.New(mockserver.Options{
		AdvanceNotice: config.Booking.AdvanceNotice,
		AutoApprove:   true,
	}, logger)
	srv.Seed()

	return srv.Router()
}
