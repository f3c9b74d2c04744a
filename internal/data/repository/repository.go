package repository

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Repository struct {
	Booking BookingRepository
	Station StationRepository
	Session SessionRepository
}

func NewRepository(db *gorm.DB, log *zap.Logger) *Repository {
	return &Repository{
		Booking: NewBookingRepository(db, log),
		Station: NewStationRepository(db, log),
		Session: NewSessionRepository(db, log),
	}
}
