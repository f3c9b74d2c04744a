package usecase

import (
	"context"
	"fmt"
	"time"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/response"

	"go.uber.org/zap"
)

// ChargingSessionService is the operator's start and complete steps. Each
// returns the booking as the server confirmed it; nothing is assumed locally.
type ChargingSessionService interface {
	Start(ctx context.Context, bookingID string) (*entity.Booking, error)
	Complete(ctx context.Context, bookingID string) (*entity.Booking, error)
}

type chargingSessionService struct {
	api      adaptor.BookingAPI
	sessions *SessionManager
	mirror   *bookingMirror
	log      *zap.Logger
}

func NewChargingSessionService(api adaptor.BookingAPI, sessions *SessionManager, mirror *bookingMirror, log *zap.Logger) ChargingSessionService {
	return &chargingSessionService{
		api:      api,
		sessions: sessions,
		mirror:   mirror,
		log:      log.With(zap.String("service", "charging_session")),
	}
}

func (s *chargingSessionService) Start(ctx context.Context, bookingID string) (*entity.Booking, error) {
	return s.transition(ctx, "start session", bookingID, s.api.Start)
}

func (s *chargingSessionService) Complete(ctx context.Context, bookingID string) (*entity.Booking, error) {
	return s.transition(ctx, "complete session", bookingID, s.api.Complete)
}

func (s *chargingSessionService) transition(
	ctx context.Context,
	op, bookingID string,
	call func(ctx context.Context, id string) (*response.BookingResponse, error),
) (*entity.Booking, error) {
	if bookingID == "" {
		return nil, apperror.NewValidationError("BookingID", "This field is required")
	}
	if _, err := s.sessions.Require(ctx); err != nil {
		return nil, err
	}

	dto, err := call(ctx, bookingID)
	if err != nil {
		s.log.Warn("Session transition failed",
			zap.String("op", op),
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
		return nil, s.sessions.Observe(ctx, fmt.Errorf("%s %s: %w", op, bookingID, err))
	}

	booking, err := dto.ToEntity()
	if err != nil {
		return nil, apperror.Malformed(op, err)
	}

	s.mirror.record(ctx, booking)

	s.log.Info("Session transition confirmed",
		zap.String("op", op),
		zap.String("booking_id", booking.ID),
		zap.String("status", booking.Status.String()),
	)
	return booking, nil
}

// ElapsedSince is a display helper for an active session. It is derived
// from the server's start time and carries no energy or progress data.
func ElapsedSince(start, now time.Time) time.Duration {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return now.Sub(start).Truncate(time.Second)
}
