package entity

import (
	"time"
)

// Booking is one reservation of a charging slot. Status and TotalAmount are server-owned.
type Booking struct {
	Base
	OwnerNIC        string
	StationID       string
	StationName     string
	StationAddress  string
	StartTime       time.Time
	DurationMinutes int
	TotalAmount     float64
	Status          BookingStatus
	QRCode          string
	Notes           string
}

func (b *Booking) EndTime() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

func (b *Booking) CanBeModified() bool {
	return !b.IsDraft() && b.Status.CanBeModified()
}

func (b *Booking) CanBeCancelled() bool {
	return !b.IsDraft() && b.Status.CanBeCancelled()
}

func (b *Booking) CanShowQRCode() bool {
	return !b.IsDraft() && b.Status.CanShowQRCode()
}

// BookingEstimate is a display-only cost shown before submission.
// It is never sent to the backend and never replaces Booking.TotalAmount.
type BookingEstimate struct {
	StationID       string
	PricePerHour    float64
	DurationMinutes int
	Amount          float64
}

func NewBookingEstimate(station *ChargingStation, durationMinutes int) BookingEstimate {
	return BookingEstimate{
		StationID:       station.ID,
		PricePerHour:    station.PricePerHour,
		DurationMinutes: durationMinutes,
		Amount:          station.PricePerHour * float64(durationMinutes) / 60,
	}
}
