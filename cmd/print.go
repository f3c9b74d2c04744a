package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/pkg/utils"
)

const displayLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printBookings(w io.Writer, bookings []*entity.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(w, "No bookings.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATION\tSTART\tDURATION\tAMOUNT\tSTATUS")
	for _, b := range bookings {
		station := b.StationName
		if station == "" {
			station = b.StationID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dm\t%s\t%s\n",
			b.ID,
			station,
			b.StartTime.Local().Format(displayLayout),
			b.DurationMinutes,
			utils.FormatAmount(b.TotalAmount),
			b.Status.Label(),
		)
	}
	tw.Flush()
}

func printBooking(w io.Writer, b *entity.Booking) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Booking:\t%s\n", b.ID)
	fmt.Fprintf(tw, "Station:\t%s %s\n", b.StationID, b.StationName)
	fmt.Fprintf(tw, "Start:\t%s\n", b.StartTime.Local().Format(displayLayout))
	fmt.Fprintf(tw, "End:\t%s\n", b.EndTime().Local().Format(displayLayout))
	fmt.Fprintf(tw, "Amount:\t%s\n", utils.FormatAmount(b.TotalAmount))
	fmt.Fprintf(tw, "Status:\t%s\n", b.Status.Label())
	if b.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", b.Notes)
	}
	tw.Flush()
}

func printStations(w io.Writer, stations []*entity.ChargingStation) {
	if len(stations) == 0 {
		fmt.Fprintln(w, "No stations.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCITY\tSLOTS\tPRICE/H\tDISTANCE\tHOURS")
	for _, s := range stations {
		distance := "-"
		if s.DistanceKm != nil {
			distance = fmt.Sprintf("%.1f km", *s.DistanceKm)
		}
		slots := fmt.Sprintf("%d/%d", s.AvailableSlots, s.TotalSlots)
		if !s.IsActive {
			slots = "closed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.Name,
			s.Location.City,
			slots,
			utils.FormatAmount(s.PricePerHour),
			distance,
			s.OperatingHours,
		)
	}
	tw.Flush()
}

func printSession(w io.Writer, s *entity.Session) {
	who := s.FullName
	if who == "" {
		who = strings.TrimSpace(s.Email + " " + s.NIC)
	}
	fmt.Fprintf(w, "Logged in as %s (%s)", who, s.Role)
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(w, ", session valid until %s", s.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Fprintln(w)
}

// parseStart reads a local wall-clock time as typed by the user.
func parseStart(value string) (time.Time, error) {
	t, err := time.ParseInLocation(displayLayout, value, time.Local)
	if err != nil {
		return time.Time{}, apperror.NewValidationError("Start", fmt.Sprintf("Use the format %q", displayLayout))
	}
	return t, nil
}
