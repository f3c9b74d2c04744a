package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/data/repository"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error)
	ListBookings(ctx context.Context) ([]*entity.Booking, error)
	UpcomingBookings(ctx context.Context) ([]*entity.Booking, error)
	BookingHistory(ctx context.Context) ([]*entity.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*entity.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (bool, error)
	EstimateCost(ctx context.Context, stationID string, durationMinutes int) (*entity.BookingEstimate, error)
	CachedBookings(ctx context.Context) ([]*entity.Booking, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Latest(bookingID string) (*entity.Booking, bool)
	FindBooking(ctx context.Context, bookingID string) (*entity.Booking, error)
}

// Dashboard is the owner's home screen: upcoming and past bookings.
type Dashboard struct {
	Upcoming []*entity.Booking
	History  []*entity.Booking
}

type bookingService struct {
	api           adaptor.BookingAPI
	stations      StationService
	repo          repository.BookingRepository
	mirror        *bookingMirror
	sessions      *SessionManager
	advanceNotice time.Duration
	now           func() time.Time
	log           *zap.Logger
}

func NewBookingService(
	api adaptor.BookingAPI,
	stations StationService,
	repo repository.BookingRepository,
	mirror *bookingMirror,
	sessions *SessionManager,
	advanceNotice time.Duration,
	now func() time.Time,
	log *zap.Logger,
) BookingService {
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		api:           api,
		stations:      stations,
		repo:          repo,
		mirror:        mirror,
		sessions:      sessions,
		advanceNotice: advanceNotice,
		now:           now,
		log:           log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error) {
	// local rules run before any network call
	if err := validate(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}
	if err := s.checkAdvanceNotice(req.StartTime); err != nil {
		s.log.Warn("Create booking rejected locally", zap.Error(err))
		return nil, err
	}

	session, err := s.ownerSession(ctx)
	if err != nil {
		return nil, err
	}

	dto, err := s.api.Create(ctx, req.Body(session.NIC))
	if err != nil {
		s.log.Warn("Create booking failed",
			zap.String("nic", session.NIC),
			zap.String("station_id", req.StationID),
			zap.Error(err),
		)
		return nil, s.sessions.Observe(ctx, fmt.Errorf("create booking: %w", err))
	}

	booking, err := dto.ToEntity()
	if err != nil {
		return nil, apperror.Malformed("create booking", err)
	}

	s.mirror.record(ctx, booking)

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("nic", session.NIC),
		zap.String("station_id", booking.StationID),
		zap.String("status", booking.Status.String()),
	)
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context) ([]*entity.Booking, error) {
	return s.list(ctx, adaptor.ListAll)
}

func (s *bookingService) UpcomingBookings(ctx context.Context) ([]*entity.Booking, error) {
	return s.list(ctx, adaptor.ListUpcoming)
}

func (s *bookingService) BookingHistory(ctx context.Context) ([]*entity.Booking, error) {
	return s.list(ctx, adaptor.ListHistory)
}

// list always uses the session owner; callers cannot name another NIC.
func (s *bookingService) list(ctx context.Context, scope adaptor.ListScope) ([]*entity.Booking, error) {
	session, err := s.ownerSession(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.api.ListByOwner(ctx, session.NIC, scope)
	if err != nil {
		return nil, s.sessions.Observe(ctx, fmt.Errorf("list bookings: %w", err))
	}

	bookings := s.convertList(items, scope)
	s.mirror.record(ctx, bookings...)
	return bookings, nil
}

// convertList drops items that fail to decode or convert and logs each one.
func (s *bookingService) convertList(items []json.RawMessage, scope adaptor.ListScope) []*entity.Booking {
	bookings := make([]*entity.Booking, 0, len(items))

	for i, item := range items {
		var dto response.BookingResponse
		if err := json.Unmarshal(item, &dto); err != nil {
			s.log.Warn("Skipping malformed booking",
				zap.String("scope", string(scope)),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		booking, err := dto.ToEntity()
		if err != nil {
			s.log.Warn("Skipping malformed booking",
				zap.String("scope", string(scope)),
				zap.Int("index", i),
				zap.String("booking_id", dto.ID),
				zap.Error(err),
			)
			continue
		}
		bookings = append(bookings, booking)
	}

	if skipped := len(items) - len(bookings); skipped > 0 {
		s.log.Warn("Booking list partially decoded",
			zap.Int("received", len(items)),
			zap.Int("skipped", skipped),
		)
	}
	return bookings
}

func (s *bookingService) UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*entity.Booking, error) {
	if bookingID == "" {
		return nil, apperror.NewValidationError("BookingID", "This field is required")
	}
	if req.Empty() {
		return nil, apperror.NewValidationError("Booking", "Nothing to update")
	}
	if err := validate(req); err != nil {
		s.log.Warn("Update booking validation failed", zap.Error(err))
		return nil, err
	}

	cached := s.ownedCached(ctx, bookingID)
	if cached != nil && !cached.Status.CanBeModified() {
		return nil, apperror.NewValidationError("Status",
			fmt.Sprintf("A %s booking can no longer be modified", cached.Status.Label()))
	}

	// a new time must respect the notice window; so must the current one when only details change
	switch {
	case req.StartTime != nil:
		if err := s.checkAdvanceNotice(*req.StartTime); err != nil {
			s.log.Warn("Update booking rejected locally", zap.String("booking_id", bookingID), zap.Error(err))
			return nil, err
		}
	case cached != nil:
		if err := s.checkAdvanceNotice(cached.StartTime); err != nil {
			s.log.Warn("Update booking rejected locally", zap.String("booking_id", bookingID), zap.Error(err))
			return nil, err
		}
	}

	if _, err := s.ownerSession(ctx); err != nil {
		return nil, err
	}

	dto, err := s.api.Update(ctx, bookingID, req.Body())
	if err != nil {
		s.log.Warn("Update booking failed", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, s.sessions.Observe(ctx, fmt.Errorf("update booking %s: %w", bookingID, err))
	}

	booking, err := dto.ToEntity()
	if err != nil {
		return nil, apperror.Malformed("update booking", err)
	}

	s.mirror.record(ctx, booking)

	s.log.Info("Booking updated",
		zap.String("booking_id", booking.ID),
		zap.String("status", booking.Status.String()),
	)
	return booking, nil
}

// CancelBooking treats "already cancelled" as success.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (bool, error) {
	if bookingID == "" {
		return false, apperror.NewValidationError("BookingID", "This field is required")
	}

	if _, err := s.ownerSession(ctx); err != nil {
		return false, err
	}

	ok, err := s.api.Cancel(ctx, bookingID)
	if err != nil {
		if alreadyCancelled(err) {
			s.log.Info("Booking was already cancelled", zap.String("booking_id", bookingID))
			s.markCancelled(ctx, bookingID)
			return true, nil
		}

		s.log.Warn("Cancel booking failed", zap.String("booking_id", bookingID), zap.Error(err))
		return false, s.sessions.Observe(ctx, fmt.Errorf("cancel booking %s: %w", bookingID, err))
	}

	if ok {
		s.markCancelled(ctx, bookingID)
		s.log.Info("Booking cancelled", zap.String("booking_id", bookingID))
	}
	return ok, nil
}

func alreadyCancelled(err error) bool {
	var srvErr *apperror.ServerError
	if !errors.As(err, &srvErr) {
		return false
	}

	msg := strings.ToLower(srvErr.Message)
	return strings.Contains(msg, "already cancel")
}

// ownedCached returns the cached copy of bookingID if it belongs to the
// current session's owner.
func (s *bookingService) ownedCached(ctx context.Context, bookingID string) *entity.Booking {
	session := s.sessions.Current()
	if session == nil || session.NIC == "" {
		return nil
	}
	return s.mirror.cached(ctx, bookingID, session.NIC)
}

// markCancelled reflects the server's confirmation in the mirror.
func (s *bookingService) markCancelled(ctx context.Context, bookingID string) {
	cached := s.ownedCached(ctx, bookingID)
	if cached == nil {
		return
	}
	cached.Status = entity.BookingStatusCancelled
	cached.UpdatedAt = s.now().UTC()
	s.mirror.record(ctx, cached)
}

// EstimateCost is a display-only figure; the confirmed total comes from the server.
func (s *bookingService) EstimateCost(ctx context.Context, stationID string, durationMinutes int) (*entity.BookingEstimate, error) {
	if durationMinutes <= 0 {
		return nil, apperror.NewValidationError("DurationMinutes", "Must be greater than 0")
	}

	station, err := s.stations.FindStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("estimate cost: %w", err)
	}

	estimate := entity.NewBookingEstimate(station, durationMinutes)
	return &estimate, nil
}

// CachedBookings reads the local mirror without touching the network.
func (s *bookingService) CachedBookings(ctx context.Context) ([]*entity.Booking, error) {
	session := s.sessions.Current()
	if session == nil || session.NIC == "" {
		return nil, apperror.ErrNotAuthenticated
	}

	bookings, err := s.repo.FindByOwner(ctx, session.NIC)
	if err != nil {
		return nil, fmt.Errorf("cached bookings: %w", err)
	}
	return bookings, nil
}

// Dashboard fetches upcoming and history concurrently.
func (s *bookingService) Dashboard(ctx context.Context) (*Dashboard, error) {
	// resolve the session once so an expired token is refreshed a single time
	if _, err := s.ownerSession(ctx); err != nil {
		return nil, err
	}

	var dash Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		upcoming, err := s.UpcomingBookings(gctx)
		dash.Upcoming = upcoming
		return err
	})
	g.Go(func() error {
		history, err := s.BookingHistory(gctx)
		dash.History = history
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (s *bookingService) Latest(bookingID string) (*entity.Booking, bool) {
	return s.mirror.current(bookingID)
}

// FindBooking refreshes the owner's bookings and returns bookingID. When the
// backend cannot be reached the cached copy is returned instead.
func (s *bookingService) FindBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	if bookingID == "" {
		return nil, apperror.NewValidationError("BookingID", "This field is required")
	}

	bookings, err := s.list(ctx, adaptor.ListAll)
	if err != nil {
		if apperror.Kind(err) != apperror.KindNetwork {
			return nil, err
		}
		cached := s.ownedCached(ctx, bookingID)
		if cached == nil {
			return nil, err
		}
		s.log.Warn("Backend unreachable, using cached booking",
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
		return cached, nil
	}

	for _, b := range bookings {
		if b.ID == bookingID {
			return b, nil
		}
	}
	return nil, fmt.Errorf("find booking %s: %w", bookingID, ErrBookingNotFound)
}

func (s *bookingService) checkAdvanceNotice(start time.Time) error {
	earliest := s.now().Add(s.advanceNotice)
	if start.Before(earliest) {
		return apperror.NewValidationError("StartTime",
			fmt.Sprintf("Bookings must be made at least %s in advance", formatNotice(s.advanceNotice)))
	}
	return nil
}

// ownerSession requires a session that carries an owner NIC.
func (s *bookingService) ownerSession(ctx context.Context) (*entity.Session, error) {
	session, err := s.sessions.Require(ctx)
	if err != nil {
		return nil, err
	}
	if session.NIC == "" {
		return nil, apperror.NewValidationError("Account", "An EV owner account is required")
	}
	return session, nil
}

func formatNotice(d time.Duration) string {
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
