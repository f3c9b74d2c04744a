package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"evcharge-client/internal/wire"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// APIServer serves route on port until ctx is done.
func APIServer(ctx context.Context, route *chi.Mux, port string, log *zap.Logger) error {
	addr := fmt.Sprintf(":%s", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           route,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Mock backend running", zap.String("addr", "http://localhost"+addr+"/api/"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newMockCommand(app *wire.App) *cobra.Command {
	var port string

	mock := &cobra.Command{
		Use:   "mock",
		Short: "Run an in-memory backend with demo data for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Mock backend on http://localhost:%s/api/ (owner 991234567V, operator operator@example.com, password \"password\")\n", port)
			return APIServer(cmd.Context(), wire.MockRouter(app.Config, app.Log), port, app.Log)
		},
	}

	mock.Flags().StringVar(&port, "port", "5000", "listen port")
	return mock
}
