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

const sessionSlot = 1

type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	Load(ctx context.Context) (*entity.Session, error)
	Clear(ctx context.Context) error
}

type sessionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSessionRepository(db *gorm.DB, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) Save(ctx context.Context, session *entity.Session) error {
	row := SessionRow{
		Slot:         sessionSlot,
		UserID:       session.UserID,
		NIC:          session.NIC,
		Email:        session.Email,
		FullName:     session.FullName,
		Role:         string(session.Role),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt.UTC(),
		SavedAt:      time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		r.log.Error("Failed to save session",
			zap.Error(err),
			zap.String("user_id", session.UserID),
		)
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// Load returns nil when no session was saved.
func (r *sessionRepository) Load(ctx context.Context) (*entity.Session, error) {
	var row SessionRow
	err := r.db.WithContext(ctx).Where("slot = ?", sessionSlot).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to load session", zap.Error(err))
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &entity.Session{
		UserID:       row.UserID,
		NIC:          row.NIC,
		Email:        row.Email,
		FullName:     row.FullName,
		Role:         entity.UserRole(row.Role),
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresAt:    row.ExpiresAt,
	}, nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("slot = ?", sessionSlot).Delete(&SessionRow{}).Error; err != nil {
		r.log.Error("Failed to clear session", zap.Error(err))
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
