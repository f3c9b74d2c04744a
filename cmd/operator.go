package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/usecase"
	"evcharge-client/internal/wire"

	"github.com/spf13/cobra"
)

func newOperatorCommand(app *wire.App) *cobra.Command {
	operator := &cobra.Command{
		Use:   "operator",
		Short: "Station operator check-in and charging sessions",
	}

	operator.AddCommand(
		newScanCommand(app),
		newTransitionCommand(app, "start", "Start the charging session of a verified booking", app.Service.Charging.Start),
		newTransitionCommand(app, "complete", "Complete a charging session", app.Service.Charging.Complete),
	)
	return operator
}

func newScanCommand(app *wire.App) *cobra.Command {
	var image string

	scan := &cobra.Command{
		Use:   "scan [payload]",
		Short: "Verify a scanned booking code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := app.Service.Scanner.NewSession()
			session.Begin(true)

			var (
				out usecase.ScanOutcome
				err error
			)
			switch {
			case image != "":
				f, openErr := os.Open(image)
				if openErr != nil {
					return fmt.Errorf("open image: %w", openErr)
				}
				defer f.Close()
				out, err = run(cmd, func(ctx context.Context) (usecase.ScanOutcome, error) {
					return session.SubmitImage(ctx, f)
				})
			case len(args) == 1:
				out, err = run(cmd, func(ctx context.Context) (usecase.ScanOutcome, error) {
					return session.Submit(ctx, args[0])
				})
			default:
				return apperror.NewValidationError("Payload", "Pass the scanned text or --image")
			}

			printScan(cmd.OutOrStdout(), out)
			return err
		},
	}

	scan.Flags().StringVar(&image, "image", "", "PNG or JPEG containing the code")
	return scan
}

func printScan(w io.Writer, out usecase.ScanOutcome) {
	switch out.State {
	case usecase.ScanVerified:
		fmt.Fprintln(w, "VERIFIED")
		if out.Booking != nil {
			printBooking(w, out.Booking)
		}
	case usecase.ScanRejected:
		fmt.Fprintf(w, "REJECTED: %s\n", out.Reason)
	default:
		fmt.Fprintf(w, "Scan %s\n", out.State)
	}
}

func newTransitionCommand(app *wire.App, use, short string, call func(ctx context.Context, id string) (*entity.Booking, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <bookingId>",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireArg(args, "BookingID")
			if err != nil {
				return err
			}

			booking, err := run(cmd, func(ctx context.Context) (*entity.Booking, error) {
				return call(ctx, id)
			})
			if err != nil {
				return err
			}

			printBooking(cmd.OutOrStdout(), booking)
			if booking.Status == entity.BookingStatusInProgress {
				elapsed := usecase.ElapsedSince(booking.UpdatedAt, time.Now())
				fmt.Fprintf(cmd.OutOrStdout(), "Charging for %s\n", elapsed)
			}
			return nil
		},
	}
}
