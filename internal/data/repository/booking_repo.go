package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evcharge-client/internal/data/entity"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingRepository is the local booking mirror. Writes are last-write-wins.
type BookingRepository interface {
	Upsert(ctx context.Context, bookings ...*entity.Booking) error
	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	FindByOwner(ctx context.Context, nic string) ([]*entity.Booking, error)
	DeleteByOwner(ctx context.Context, nic string) error
}

type bookingRepository struct {
	db  *gorm.DB
	now func() time.Time
	log *zap.Logger
}

func NewBookingRepository(db *gorm.DB, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		now: time.Now,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Upsert(ctx context.Context, bookings ...*entity.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	cachedAt := r.now().UTC()
	rows := make([]BookingRow, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || b.IsDraft() {
			continue
		}
		rows = append(rows, bookingToRow(b, cachedAt))
	}
	if len(rows) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		r.log.Error("Failed to upsert cached bookings",
			zap.Error(err),
			zap.Int("count", len(rows)),
		)
		return fmt.Errorf("upsert cached bookings: %w", err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	var row BookingRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cached booking",
			zap.Error(err),
			zap.String("booking_id", id),
		)
		return nil, fmt.Errorf("find cached booking %s: %w", id, err)
	}

	return row.toEntity(), nil
}

func (r *bookingRepository) FindByOwner(ctx context.Context, nic string) ([]*entity.Booking, error) {
	var rows []BookingRow
	err := r.db.WithContext(ctx).
		Where("owner_nic = ?", nic).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		r.log.Error("Failed to list cached bookings",
			zap.Error(err),
			zap.String("owner_nic", nic),
		)
		return nil, fmt.Errorf("list cached bookings for %s: %w", nic, err)
	}

	bookings := make([]*entity.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.toEntity())
	}
	return bookings, nil
}

// DeleteByOwner drops an owner's mirror, used on logout.
func (r *bookingRepository) DeleteByOwner(ctx context.Context, nic string) error {
	err := r.db.WithContext(ctx).Where("owner_nic = ?", nic).Delete(&BookingRow{}).Error
	if err != nil {
		r.log.Error("Failed to clear cached bookings",
			zap.Error(err),
			zap.String("owner_nic", nic),
		)
		return fmt.Errorf("clear cached bookings for %s: %w", nic, err)
	}
	return nil
}
