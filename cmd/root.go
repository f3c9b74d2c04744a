package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/wire"
	"evcharge-client/pkg/async"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitNotAuthned = 2
)

// NewRootCommand builds the evcharge command tree over app.
func NewRootCommand(app *wire.App) *cobra.Command {
	root := &cobra.Command{
		Use:           "evcharge",
		Short:         "Book EV charging slots and check in vehicles at stations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newRegisterCommand(app),
		newWhoAmICommand(app),
		newStationsCommand(app),
		newBookingsCommand(app),
		newQRCommand(app),
		newOperatorCommand(app),
		newMockCommand(app),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, app *wire.App, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	app.Log.Debug("Command failed", zap.Error(err))

	code := ExitCode(err)
	switch {
	case code == exitNotAuthned:
		fmt.Fprintln(stderr, "session expired, please log in")
	case apperror.Kind(err) == apperror.KindUnknown:
		fmt.Fprintln(stderr, "error:", err)
	default:
		fmt.Fprintln(stderr, apperror.UserMessage(err))
	}
	return code
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, apperror.ErrNotAuthenticated):
		return exitNotAuthned
	default:
		return exitFailure
	}
}

// run executes fn on its own goroutine and waits for it. Interrupting the
// command closes the scope so a late result is discarded.
func run[T any](cmd *cobra.Command, fn func(ctx context.Context) (T, error)) (T, error) {
	scope := async.NewScope(cmd.Context())
	defer scope.Close()

	task := async.Go(scope.Context(), fn)
	return task.Await(scope.Context())
}

func requireArg(args []string, name string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", apperror.NewValidationError(name, "This field is required")
	}
	return args[0], nil
}
