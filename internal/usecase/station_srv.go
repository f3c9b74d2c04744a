package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/data/repository"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"

	"go.uber.org/zap"
)

type StationService interface {
	ListStations(ctx context.Context) ([]*entity.ChargingStation, error)
	NearbyStations(ctx context.Context, req *request.NearbyStationsRequest) ([]*entity.ChargingStation, error)
	CachedStations(ctx context.Context) ([]*entity.ChargingStation, error)
	FindStation(ctx context.Context, id string) (*entity.ChargingStation, error)
}

type stationService struct {
	api      adaptor.StationAPI
	repo     repository.StationRepository
	sessions *SessionManager
	now      func() time.Time
	log      *zap.Logger
}

func NewStationService(api adaptor.StationAPI, repo repository.StationRepository, sessions *SessionManager, now func() time.Time, log *zap.Logger) StationService {
	if now == nil {
		now = time.Now
	}
	return &stationService{
		api:      api,
		repo:     repo,
		sessions: sessions,
		now:      now,
		log:      log.With(zap.String("service", "station")),
	}
}

func (s *stationService) ListStations(ctx context.Context) ([]*entity.ChargingStation, error) {
	if _, err := s.sessions.Require(ctx); err != nil {
		return nil, err
	}

	items, err := s.api.List(ctx)
	if err != nil {
		return nil, s.sessions.Observe(ctx, fmt.Errorf("list stations: %w", err))
	}

	stations := s.convert("list stations", items)
	s.mirror(ctx, stations)
	return stations, nil
}

func (s *stationService) NearbyStations(ctx context.Context, req *request.NearbyStationsRequest) ([]*entity.ChargingStation, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Nearby stations validation failed", zap.Error(err))
		return nil, err
	}
	if _, err := s.sessions.Require(ctx); err != nil {
		return nil, err
	}

	items, err := s.api.Nearby(ctx, *req)
	if err != nil {
		return nil, s.sessions.Observe(ctx, fmt.Errorf("nearby stations: %w", err))
	}

	stations := s.convert("nearby stations", items)
	s.mirror(ctx, stations)
	return stations, nil
}

func (s *stationService) CachedStations(ctx context.Context) ([]*entity.ChargingStation, error) {
	stations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("cached stations: %w", err)
	}
	return stations, nil
}

// FindStation prefers the cache and fetches the station list on a miss.
func (s *stationService) FindStation(ctx context.Context, id string) (*entity.ChargingStation, error) {
	if cached, err := s.repo.List(ctx); err == nil {
		for _, st := range cached {
			if st.ID == id {
				return st, nil
			}
		}
	}

	stations, err := s.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range stations {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, fmt.Errorf("find station %s: %w", id, ErrStationNotFound)
}

// convert skips and logs items that do not decode.
func (s *stationService) convert(op string, items []json.RawMessage) []*entity.ChargingStation {
	fetchedAt := s.now().UTC()
	stations := make([]*entity.ChargingStation, 0, len(items))

	for i, item := range items {
		var dto response.StationResponse
		if err := json.Unmarshal(item, &dto); err != nil {
			s.log.Warn("Skipping malformed station", zap.String("op", op), zap.Int("index", i), zap.Error(err))
			continue
		}

		station, err := dto.ToEntity(fetchedAt)
		if err != nil {
			s.log.Warn("Skipping malformed station", zap.String("op", op), zap.Int("index", i), zap.Error(err))
			continue
		}
		stations = append(stations, station)
	}

	return stations
}

func (s *stationService) mirror(ctx context.Context, stations []*entity.ChargingStation) {
	if err := s.repo.Upsert(ctx, stations...); err != nil {
		s.log.Warn("Station cache not updated", zap.Error(err))
	}
}
