package cmd

import (
	"context"
	"fmt"
	"os"

	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/wire"

	"github.com/spf13/cobra"
)

func newQRCommand(app *wire.App) *cobra.Command {
	qr := &cobra.Command{
		Use:   "qr",
		Short: "Show the check-in code of an approved booking",
	}

	show := &cobra.Command{
		Use:   "show <bookingId>",
		Short: "Print the code in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := findBooking(cmd, app, args)
			if err != nil {
				return err
			}

			art, err := app.Service.QR.RenderTerminal(booking)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), art)
			printBooking(cmd.OutOrStdout(), booking)
			return nil
		},
	}

	var (
		output string
		size   int
	)
	png := &cobra.Command{
		Use:   "png <bookingId>",
		Short: "Write the code as a PNG image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := findBooking(cmd, app, args)
			if err != nil {
				return err
			}

			data, err := app.Service.QR.RenderPNG(booking, size)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("booking-%s.png", booking.ID)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write qr image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "QR code written to %s\n", path)
			return nil
		},
	}
	png.Flags().StringVarP(&output, "output", "o", "", "output file (default booking-<id>.png)")
	png.Flags().IntVar(&size, "size", 0, "image size in pixels (default QR_SIZE)")

	qr.AddCommand(show, png)
	return qr
}

func findBooking(cmd *cobra.Command, app *wire.App, args []string) (*entity.Booking, error) {
	id, err := requireArg(args, "BookingID")
	if err != nil {
		return nil, err
	}
	return run(cmd, func(ctx context.Context) (*entity.Booking, error) {
		return app.Service.Booking.FindBooking(ctx, id)
	})
}
