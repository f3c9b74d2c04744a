package usecase

import (
	"context"
	"sync"

	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/data/repository"
	"evcharge-client/pkg/async"

	"go.uber.org/zap"
)

// bookingMirror records every booking the server returns: into the local
// cache, and into a per-booking holder that keeps the last response observed.
type bookingMirror struct {
	repo repository.BookingRepository
	log  *zap.Logger

	mu     sync.Mutex
	latest map[string]*async.Latest[entity.Booking]
}

func newBookingMirror(repo repository.BookingRepository, log *zap.Logger) *bookingMirror {
	return &bookingMirror{
		repo:   repo,
		log:    log.With(zap.String("service", "booking_mirror")),
		latest: make(map[string]*async.Latest[entity.Booking]),
	}
}

func (m *bookingMirror) holder(id string) *async.Latest[entity.Booking] {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.latest[id]
	if !ok {
		h = &async.Latest[entity.Booking]{}
		m.latest[id] = h
	}
	return h
}

// record logs cache failures instead of returning them.
func (m *bookingMirror) record(ctx context.Context, bookings ...*entity.Booking) {
	for _, b := range bookings {
		if b == nil || b.IsDraft() {
			continue
		}
		m.holder(b.ID).Observe(nil, *b)
	}

	if err := m.repo.Upsert(ctx, bookings...); err != nil {
		m.log.Warn("Booking cache not updated", zap.Error(err), zap.Int("count", len(bookings)))
	}
}

// current returns the last server response observed for id.
func (m *bookingMirror) current(id string) (*entity.Booking, bool) {
	m.mu.Lock()
	h, ok := m.latest[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	b, ok := h.Get()
	if !ok {
		return nil, false
	}
	return &b, true
}

// cached looks up the local mirror first and the cache second. Bookings of
// any owner other than nic are treated as absent.
func (m *bookingMirror) cached(ctx context.Context, id, nic string) *entity.Booking {
	b, ok := m.current(id)
	if !ok {
		var err error
		b, err = m.repo.FindByID(ctx, id)
		if err != nil {
			m.log.Warn("Booking cache lookup failed", zap.Error(err), zap.String("booking_id", id))
			return nil
		}
	}

	if b == nil || b.OwnerNIC != nic {
		return nil
	}
	return b
}

// forget drops every observed booking and the cached rows of nic.
func (m *bookingMirror) forget(ctx context.Context, nic string) {
	m.mu.Lock()
	m.latest = make(map[string]*async.Latest[entity.Booking])
	m.mu.Unlock()

	if nic == "" {
		return
	}
	if err := m.repo.DeleteByOwner(ctx, nic); err != nil {
		m.log.Warn("Booking cache not cleared", zap.Error(err), zap.String("nic", nic))
	}
}
