package request

import (
	"time"

	"evcharge-client/pkg/utils"
)

// CreateBookingRequest is the owner's booking form. The owner NIC is never part
// of the form; it comes from the session when the wire body is built.
type CreateBookingRequest struct {
	StationID       string `validate:"required"`
	StartTime       time.Time
	DurationMinutes int    `validate:"gt=0"`
	Notes           string `validate:"max=500"`
}

type CreateBookingBody struct {
	EVOwnerNIC          string `json:"evOwnerNIC"`
	ChargingStationID   string `json:"chargingStationId"`
	ReservationDateTime string `json:"reservationDateTime"`
	Duration            int    `json:"duration"`
	Notes               string `json:"notes,omitempty"`
}

func (r CreateBookingRequest) Body(ownerNIC string) CreateBookingBody {
	return CreateBookingBody{
		EVOwnerNIC:          ownerNIC,
		ChargingStationID:   r.StationID,
		ReservationDateTime: utils.FormatISO(r.StartTime),
		Duration:            r.DurationMinutes,
		Notes:               r.Notes,
	}
}

// UpdateBookingRequest is a partial update; nil fields stay unchanged on the server.
type UpdateBookingRequest struct {
	StartTime       *time.Time
	DurationMinutes *int    `validate:"omitempty,gt=0"`
	Notes           *string `validate:"omitempty,max=500"`
}

func (r UpdateBookingRequest) Empty() bool {
	return r.StartTime == nil && r.DurationMinutes == nil && r.Notes == nil
}

type UpdateBookingBody struct {
	ReservationDateTime *string `json:"reservationDateTime,omitempty"`
	Duration            *int    `json:"duration,omitempty"`
	Notes               *string `json:"notes,omitempty"`
}

func (r UpdateBookingRequest) Body() UpdateBookingBody {
	body := UpdateBookingBody{
		Duration: r.DurationMinutes,
		Notes:    r.Notes,
	}
	if r.StartTime != nil {
		formatted := utils.FormatISO(*r.StartTime)
		body.ReservationDateTime = &formatted
	}
	return body
}

type VerifyQRRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	QRCode    string `json:"qrCode,omitempty"`
}
