package usecase

import "errors"

var (
	ErrStationNotFound = errors.New("station not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrScanInProgress  = errors.New("verification already in progress")
)
