package cmd

import (
	"context"
	"fmt"

	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/wire"
	"evcharge-client/pkg/utils"

	"github.com/spf13/cobra"
)

func newBookingsCommand(app *wire.App) *cobra.Command {
	bookings := &cobra.Command{
		Use:   "bookings",
		Short: "Manage your charging reservations",
	}

	list := func(use, short string, fetch func(ctx context.Context) ([]*entity.Booking, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				result, err := run(cmd, fetch)
				if err != nil {
					return err
				}
				printBookings(cmd.OutOrStdout(), result)
				return nil
			},
		}
	}

	bookings.AddCommand(
		list("list", "All bookings", app.Service.Booking.ListBookings),
		list("upcoming", "Bookings still ahead", app.Service.Booking.UpcomingBookings),
		list("history", "Past and finished bookings", app.Service.Booking.BookingHistory),
		list("cached", "Bookings from the local cache, without calling the backend", app.Service.Booking.CachedBookings),
		newDashboardCommand(app),
		newCreateBookingCommand(app),
		newUpdateBookingCommand(app),
		newCancelBookingCommand(app),
		newEstimateCommand(app),
	)
	return bookings
}

func newDashboardCommand(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Upcoming bookings and history side by side",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := run(cmd, app.Service.Booking.Dashboard)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Upcoming")
			printBookings(out, dash.Upcoming)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "History")
			printBookings(out, dash.History)
			return nil
		},
	}
}

func newCreateBookingCommand(app *wire.App) *cobra.Command {
	var (
		req   request.CreateBookingRequest
		start string
	)

	create := &cobra.Command{
		Use:   "create",
		Short: "Reserve a charging slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseStart(start)
			if err != nil {
				return err
			}
			req.StartTime = t

			booking, err := run(cmd, func(ctx context.Context) (*entity.Booking, error) {
				return app.Service.Booking.CreateBooking(ctx, &req)
			})
			if err != nil {
				return err
			}
			printBooking(cmd.OutOrStdout(), booking)
			return nil
		},
	}

	flags := create.Flags()
	flags.StringVar(&req.StationID, "station", "", "charging station id")
	flags.StringVar(&start, "start", "", "start time, "+displayLayout)
	flags.IntVar(&req.DurationMinutes, "duration", 60, "duration in minutes")
	flags.StringVar(&req.Notes, "notes", "", "optional notes for the operator")
	return create
}

func newUpdateBookingCommand(app *wire.App) *cobra.Command {
	var (
		start    string
		duration int
		notes    string
	)

	update := &cobra.Command{
		Use:   "update <bookingId>",
		Short: "Change the time, duration or notes of a booking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireArg(args, "BookingID")
			if err != nil {
				return err
			}

			var req request.UpdateBookingRequest
			if cmd.Flags().Changed("start") {
				t, err := parseStart(start)
				if err != nil {
					return err
				}
				req.StartTime = &t
			}
			if cmd.Flags().Changed("duration") {
				req.DurationMinutes = &duration
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
			}

			booking, err := run(cmd, func(ctx context.Context) (*entity.Booking, error) {
				return app.Service.Booking.UpdateBooking(ctx, id, &req)
			})
			if err != nil {
				return err
			}
			printBooking(cmd.OutOrStdout(), booking)
			return nil
		},
	}

	flags := update.Flags()
	flags.StringVar(&start, "start", "", "new start time, "+displayLayout)
	flags.IntVar(&duration, "duration", 0, "new duration in minutes")
	flags.StringVar(&notes, "notes", "", "new notes")
	return update
}

func newCancelBookingCommand(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <bookingId>",
		Short: "Cancel a booking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireArg(args, "BookingID")
			if err != nil {
				return err
			}

			ok, err := run(cmd, func(ctx context.Context) (bool, error) {
				return app.Service.Booking.CancelBooking(ctx, id)
			})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "The booking was not cancelled.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s cancelled.\n", id)
			return nil
		},
	}
}

func newEstimateCommand(app *wire.App) *cobra.Command {
	var (
		stationID string
		duration  int
	)

	estimate := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of a booking before making it",
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := run(cmd, func(ctx context.Context) (*entity.BookingEstimate, error) {
				return app.Service.Booking.EstimateCost(ctx, stationID, duration)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Estimated cost: %s (%d min at %s/h). The final amount is set by the station.\n",
				utils.FormatAmount(est.Amount), est.DurationMinutes, utils.FormatAmount(est.PricePerHour))
			return nil
		},
	}

	estimate.Flags().StringVar(&stationID, "station", "", "charging station id")
	estimate.Flags().IntVar(&duration, "duration", 60, "duration in minutes")
	return estimate
}
