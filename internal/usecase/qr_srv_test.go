package usecase

import (
	"bytes"
	"testing"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func approvedBooking() *entity.Booking {
	return &entity.Booking{
		Base:            entity.Base{ID: "b-42"},
		OwnerNIC:        "991234567V",
		StationID:       "st-9",
		StartTime:       time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC),
		DurationMinutes: 45,
		Status:          entity.BookingStatusApproved,
	}
}

func newTestQRService(allowPending bool) QRService {
	clock := func() time.Time { return time.Date(2026, 5, 30, 9, 0, 0, 0, time.UTC) }
	return NewQRService(allowPending, 256, clock, zap.NewNop())
}

func TestQR_RoundTrip(t *testing.T) {
	svc := newTestQRService(false)
	booking := approvedBooking()

	text, err := svc.EncodePayload(booking)
	require.NoError(t, err)

	payload, err := svc.DecodePayload(text)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, payload.BookingID)
	assert.Equal(t, booking.StationID, payload.StationID)
	assert.Equal(t, booking.Status, payload.BookingStatus())
	assert.Equal(t, booking.OwnerNIC, payload.OwnerNIC)
	assert.Equal(t, "2026-06-01", payload.Date)
	assert.Equal(t, "14:30", payload.Time)
	assert.Equal(t, 45, payload.Duration)
	assert.Empty(t, payload.MissingFields())
}

func TestQR_PNGDecodesBack(t *testing.T) {
	svc := newTestQRService(false)
	booking := approvedBooking()

	png, err := svc.RenderPNG(booking, 0)
	require.NoError(t, err)

	text, err := svc.DecodeImage(bytes.NewReader(png))
	require.NoError(t, err)

	payload, err := svc.DecodePayload(text)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, payload.BookingID)
	assert.Equal(t, booking.StationID, payload.StationID)
}

func TestQR_Terminal(t *testing.T) {
	out, err := newTestQRService(false).RenderTerminal(approvedBooking())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestQR_Eligibility(t *testing.T) {
	tests := []struct {
		name         string
		status       entity.BookingStatus
		draft        bool
		allowPending bool
		wantErr      bool
	}{
		{name: "approved", status: entity.BookingStatusApproved},
		{name: "pending refused", status: entity.BookingStatusPending, wantErr: true},
		{name: "pending with relaxation", status: entity.BookingStatusPending, allowPending: true},
		{name: "completed refused even relaxed", status: entity.BookingStatusCompleted, allowPending: true, wantErr: true},
		{name: "cancelled refused", status: entity.BookingStatusCancelled, wantErr: true},
		{name: "draft refused", status: entity.BookingStatusApproved, draft: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := approvedBooking()
			booking.Status = tt.status
			if tt.draft {
				booking.ID = ""
			}

			_, err := newTestQRService(tt.allowPending).BuildPayload(booking)
			if tt.wantErr {
				assert.Equal(t, apperror.KindValidation, apperror.Kind(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestQR_DecodeImageRejectsNonImage(t *testing.T) {
	_, err := newTestQRService(false).DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
