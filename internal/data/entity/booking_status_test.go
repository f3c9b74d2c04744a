package entity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseWireValue_Known(t *testing.T) {
	for _, status := range AllBookingStatuses() {
		assert.Equal(t, status, ParseWireValue(status.WireValue()))
	}
}

func TestParseWireValue_UnknownFallsBackToPending(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	codes := []int64{0, 7, -1, 99, math.MaxInt64, math.MinInt64, 1 << 32}
	for _, code := range codes {
		assert.Equal(t, BookingStatusPending, ParseWireValue(code))
	}
	assert.Equal(t, len(codes), logs.FilterMessage("Unknown booking status code, defaulting to PENDING").Len())
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		label string
		want  BookingStatus
	}{
		{"approved", BookingStatusApproved},
		{"Approved", BookingStatusApproved},
		{" APPROVED ", BookingStatusApproved},
		{"in progress", BookingStatusInProgress},
		{"INPROGRESS", BookingStatusInProgress},
		{"In_Progress", BookingStatusInProgress},
		{"canceled", BookingStatusCancelled},
		{"No Show", BookingStatusNoShow},
		{"4", BookingStatusCompleted},
		{"mystery", BookingStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLabel(tt.label))
		})
	}
}

func TestParseLabel_PendingAnyCase(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	for _, label := range []string{"PENDING", "Pending", "pending"} {
		assert.Equal(t, BookingStatusPending, ParseLabel(label), label)
	}
	assert.Zero(t, logs.Len(), "known labels must not take the fallback path")
}

func TestLabelAndName(t *testing.T) {
	assert.Equal(t, "Approved", BookingStatusApproved.Label())
	assert.Equal(t, "APPROVED", BookingStatusApproved.String())
	assert.Equal(t, "In Progress", BookingStatusInProgress.Label())
	assert.Equal(t, "Unknown", BookingStatus(42).Label())
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		status    BookingStatus
		modify    bool
		cancel    bool
		showQR    bool
		terminal  bool
		relaxedQR bool
	}{
		{BookingStatusPending, true, true, false, false, true},
		{BookingStatusApproved, true, true, true, false, true},
		{BookingStatusInProgress, false, false, false, false, false},
		{BookingStatusCompleted, false, false, false, true, false},
		{BookingStatusCancelled, false, false, false, true, false},
		{BookingStatusNoShow, false, false, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.modify, tt.status.CanBeModified())
			assert.Equal(t, tt.cancel, tt.status.CanBeCancelled())
			assert.Equal(t, tt.showQR, tt.status.CanShowQRCode())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.relaxedQR, tt.status.CanShowQRCodeRelaxed())
		})
	}
}

func TestBookingStatusJSON(t *testing.T) {
	var s BookingStatus
	require.NoError(t, json.Unmarshal([]byte(`2`), &s))
	assert.Equal(t, BookingStatusApproved, s)

	require.NoError(t, json.Unmarshal([]byte(`"Completed"`), &s))
	assert.Equal(t, BookingStatusCompleted, s)

	require.NoError(t, json.Unmarshal([]byte(`{"weird":true}`), &s))
	assert.Equal(t, BookingStatusPending, s)

	data, err := json.Marshal(BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "5", string(data))
}

func TestBookingDraft(t *testing.T) {
	draft := &Booking{Status: BookingStatusApproved}
	assert.True(t, draft.IsDraft())
	assert.False(t, draft.CanShowQRCode())
	assert.False(t, draft.CanBeCancelled())

	saved := &Booking{Base: Base{ID: "b1"}, Status: BookingStatusApproved}
	assert.True(t, saved.CanShowQRCode())
}
