package repository

import (
	"context"
	"fmt"

	"evcharge-client/internal/data/entity"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StationRepository interface {
	Upsert(ctx context.Context, stations ...*entity.ChargingStation) error
	List(ctx context.Context) ([]*entity.ChargingStation, error)
}

type stationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStationRepository(db *gorm.DB, log *zap.Logger) StationRepository {
	return &stationRepository{
		db:  db,
		log: log.With(zap.String("repository", "station")),
	}
}

func (r *stationRepository) Upsert(ctx context.Context, stations ...*entity.ChargingStation) error {
	if len(stations) == 0 {
		return nil
	}

	rows := make([]StationRow, 0, len(stations))
	for _, s := range stations {
		rows = append(rows, stationToRow(s))
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		r.log.Error("Failed to upsert cached stations",
			zap.Error(err),
			zap.Int("count", len(rows)),
		)
		return fmt.Errorf("upsert cached stations: %w", err)
	}

	return nil
}

func (r *stationRepository) List(ctx context.Context) ([]*entity.ChargingStation, error) {
	var rows []StationRow
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		r.log.Error("Failed to list cached stations", zap.Error(err))
		return nil, fmt.Errorf("list cached stations: %w", err)
	}

	stations := make([]*entity.ChargingStation, 0, len(rows))
	for _, row := range rows {
		stations = append(stations, row.toEntity())
	}
	return stations, nil
}
