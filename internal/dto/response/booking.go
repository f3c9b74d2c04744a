package response

import (
	"fmt"

	"evcharge-client/internal/data/entity"
	"evcharge-client/pkg/utils"
)

type BookingResponse struct {
	ID                     string               `json:"id"`
	EVOwnerNIC             string               `json:"evOwnerNIC"`
	ChargingStationID      string               `json:"chargingStationId"`
	ChargingStationName    string               `json:"chargingStationName"`
	ChargingStationAddress string               `json:"chargingStationAddress"`
	ReservationDateTime    string               `json:"reservationDateTime"`
	Duration               int                  `json:"duration"`
	TotalAmount            float64              `json:"totalAmount"`
	Status                 entity.BookingStatus `json:"status"`
	QRCode                 string               `json:"qrCode"`
	Notes                  string               `json:"notes"`
	CreatedAt              string               `json:"createdAt"`
	UpdatedAt              string               `json:"updatedAt"`
}

// ToEntity converts the wire booking. A missing id or an unreadable
// reservation time makes the item unusable and is reported as an error.
func (r BookingResponse) ToEntity() (*entity.Booking, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("booking without id")
	}

	start, err := utils.ParseISO(r.ReservationDateTime)
	if err != nil {
		return nil, fmt.Errorf("booking %s reservationDateTime: %w", r.ID, err)
	}

	created, err := utils.ParseOptionalISO(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("booking %s createdAt: %w", r.ID, err)
	}

	updated, err := utils.ParseOptionalISO(r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("booking %s updatedAt: %w", r.ID, err)
	}

	return &entity.Booking{
		Base: entity.Base{
			ID:        r.ID,
			CreatedAt: created,
			UpdatedAt: updated,
		},
		OwnerNIC:        r.EVOwnerNIC,
		StationID:       r.ChargingStationID,
		StationName:     r.ChargingStationName,
		StationAddress:  r.ChargingStationAddress,
		StartTime:       start,
		DurationMinutes: r.Duration,
		TotalAmount:     r.TotalAmount,
		Status:          r.Status,
		QRCode:          r.QRCode,
		Notes:           r.Notes,
	}, nil
}

// BookingToResponse is the inverse of ToEntity, used by the fake backend.
func BookingToResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                     b.ID,
		EVOwnerNIC:             b.OwnerNIC,
		ChargingStationID:      b.StationID,
		ChargingStationName:    b.StationName,
		ChargingStationAddress: b.StationAddress,
		ReservationDateTime:    utils.FormatISO(b.StartTime),
		Duration:               b.DurationMinutes,
		TotalAmount:            b.TotalAmount,
		Status:                 b.Status,
		QRCode:                 b.QRCode,
		Notes:                  b.Notes,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = utils.FormatISO(b.CreatedAt)
	}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = utils.FormatISO(b.UpdatedAt)
	}
	return resp
}

// VerifyQRResponse is what the backend returns for a scanned booking.
type VerifyQRResponse struct {
	IsValid bool             `json:"isValid"`
	Message string           `json:"message"`
	Booking *BookingResponse `json:"booking"`
}
