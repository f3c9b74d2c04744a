package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// BookingStatus mirrors the backend's numeric status codes.
type BookingStatus int

const (
	BookingStatusPending    BookingStatus = 1
	BookingStatusApproved   BookingStatus = 2
	BookingStatusInProgress BookingStatus = 3
	BookingStatusCompleted  BookingStatus = 4
	BookingStatusCancelled  BookingStatus = 5
	BookingStatusNoShow     BookingStatus = 6
)

var statusLog atomic.Pointer[zap.Logger]

func init() {
	statusLog.Store(zap.NewNop())
}

// SetLogger sets the logger used for status parsing diagnostics.
func SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	statusLog.Store(log.With(zap.String("component", "booking_status")))
}

var statusNames = map[BookingStatus]string{
	BookingStatusPending:    "PENDING",
	BookingStatusApproved:   "APPROVED",
	BookingStatusInProgress: "IN_PROGRESS",
	BookingStatusCompleted:  "COMPLETED",
	BookingStatusCancelled:  "CANCELLED",
	BookingStatusNoShow:     "NO_SHOW",
}

var statusLabels = map[BookingStatus]string{
	BookingStatusPending:    "Pending",
	BookingStatusApproved:   "Approved",
	BookingStatusInProgress: "In Progress",
	BookingStatusCompleted:  "Completed",
	BookingStatusCancelled:  "Cancelled",
	BookingStatusNoShow:     "No Show",
}

// aliases are matched after upper-casing and trimming
var statusAliases = map[string]BookingStatus{
	"PENDING":     BookingStatusPending,
	"APPROVED":    BookingStatusApproved,
	"CONFIRMED":   BookingStatusApproved,
	"IN_PROGRESS": BookingStatusInProgress,
	"INPROGRESS":  BookingStatusInProgress,
	"IN PROGRESS": BookingStatusInProgress,
	"IN-PROGRESS": BookingStatusInProgress,
	"ACTIVE":      BookingStatusInProgress,
	"COMPLETED":   BookingStatusCompleted,
	"CANCELLED":   BookingStatusCancelled,
	"CANCELED":    BookingStatusCancelled,
	"NO_SHOW":     BookingStatusNoShow,
	"NOSHOW":      BookingStatusNoShow,
	"NO SHOW":     BookingStatusNoShow,
	"NO-SHOW":     BookingStatusNoShow,
}

// AllBookingStatuses returns every known status in wire-code order.
func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusApproved,
		BookingStatusInProgress,
		BookingStatusCompleted,
		BookingStatusCancelled,
		BookingStatusNoShow,
	}
}

// ParseWireValue maps a backend status code to a BookingStatus.
// Unknown codes fall back to PENDING so newer backend statuses never break the client.
func ParseWireValue(code int64) BookingStatus {
	status := BookingStatus(code)
	if int64(status) == code && status.Valid() {
		return status
	}

	statusLog.Load().Warn("Unknown booking status code, defaulting to PENDING",
		zap.Int64("code", code))
	return BookingStatusPending
}

// ParseLabel maps a status name or display label to a BookingStatus, case-insensitively.
func ParseLabel(text string) BookingStatus {
	key := strings.ToUpper(strings.TrimSpace(text))
	if status, ok := statusAliases[key]; ok {
		return status
	}

	// numeric codes sometimes arrive as strings
	if code, err := strconv.ParseInt(key, 10, 64); err == nil {
		return ParseWireValue(code)
	}

	statusLog.Load().Warn("Unknown booking status label, defaulting to PENDING",
		zap.String("label", text))
	return BookingStatusPending
}

func (s BookingStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// WireValue is the backend's canonical representation.
func (s BookingStatus) WireValue() int64 {
	return int64(s)
}

func (s BookingStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("BookingStatus(%d)", int(s))
}

// Label is the human readable form shown to users.
func (s BookingStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// IsTerminal reports whether no further transitions can happen.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

func (s BookingStatus) CanBeModified() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

func (s BookingStatus) CanBeCancelled() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

// CanShowQRCode is true only for approved bookings.
func (s BookingStatus) CanShowQRCode() bool {
	return s == BookingStatusApproved
}

// CanShowQRCodeRelaxed also admits PENDING bookings. Only used when QR_ALLOW_PENDING is set.
func (s BookingStatus) CanShowQRCodeRelaxed() bool {
	return s == BookingStatusApproved || s == BookingStatusPending
}

func (s BookingStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(s))
}

// UnmarshalJSON accepts the numeric code or a string alias. It never fails on unknown values.
func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var code int64
	if err := json.Unmarshal(data, &code); err == nil {
		*s = ParseWireValue(code)
		return nil
	}

	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*s = ParseLabel(label)
		return nil
	}

	statusLog.Load().Warn("Unreadable booking status value, defaulting to PENDING",
		zap.ByteString("raw", data))
	*s = BookingStatusPending
	return nil
}
