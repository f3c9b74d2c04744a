package usecase

import (
	"context"
	"time"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/data/repository"
	"evcharge-client/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Sessions *SessionManager
	Auth     AuthService
	Station  StationService
	Booking  BookingService
	QR       QRService
	Scanner  *Scanner
	Charging ChargingSessionService
}

// NewService builds every service over one API client and one cache.
// now is the clock used for expiry and advance-notice checks; nil means time.Now.
func NewService(api *adaptor.API, sessions *SessionManager, repo *repository.Repository, config *utils.Config, now func() time.Time, log *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}

	mirror := newBookingMirror(repo.Booking, log)
	sessions.OnClear(func(ctx context.Context, previous *entity.Session) {
		mirror.forget(ctx, previous.NIC)
	})
	stations := NewStationService(api.Station, repo.Station, sessions, now, log)
	qr := NewQRService(config.QR.AllowPending, config.QR.Size, now, log)

	return &Service{
		Sessions: sessions,
		Auth:     NewAuthService(api.Auth, sessions, log),
		Station:  stations,
		Booking:  NewBookingService(api.Booking, stations, repo.Booking, mirror, sessions, config.Booking.AdvanceNotice, now, log),
		QR:       qr,
		Scanner:  NewScanner(api.Booking, qr, sessions, mirror, config.Scan.DebounceWindow, log),
		Charging: NewChargingSessionService(api.Booking, sessions, mirror, log),
	}
}
