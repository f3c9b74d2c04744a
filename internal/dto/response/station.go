package response

import (
	"fmt"
	"time"

	"evcharge-client/internal/data/entity"
)

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Province  string  `json:"province"`
}

type StationResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Location       LocationResponse `json:"location"`
	TotalSlots     int              `json:"totalSlots"`
	AvailableSlots int              `json:"availableSlots"`
	PricePerHour   float64          `json:"pricePerHour"`
	OperatingHours string           `json:"operatingHours"`
	Amenities      []string         `json:"amenities"`
	IsActive       bool             `json:"isActive"`
	Distance       *float64         `json:"distance,omitempty"`
}

func (r StationResponse) ToEntity(fetchedAt time.Time) (*entity.ChargingStation, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("station without id")
	}

	return &entity.ChargingStation{
		ID:   r.ID,
		Name: r.Name,
		Location: entity.Location{
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
			Address:   r.Location.Address,
			City:      r.Location.City,
			Province:  r.Location.Province,
		},
		TotalSlots:     r.TotalSlots,
		AvailableSlots: r.AvailableSlots,
		PricePerHour:   r.PricePerHour,
		OperatingHours: r.OperatingHours,
		Amenities:      r.Amenities,
		IsActive:       r.IsActive,
		DistanceKm:     r.Distance,
		FetchedAt:      fetchedAt,
	}, nil
}

func StationToResponse(s *entity.ChargingStation) StationResponse {
	return StationResponse{
		ID:   s.ID,
		Name: s.Name,
		Location: LocationResponse{
			Latitude:  s.Location.Latitude,
			Longitude: s.Location.Longitude,
			Address:   s.Location.Address,
			City:      s.Location.City,
			Province:  s.Location.Province,
		},
		TotalSlots:     s.TotalSlots,
		AvailableSlots: s.AvailableSlots,
		PricePerHour:   s.PricePerHour,
		OperatingHours: s.OperatingHours,
		Amenities:      s.Amenities,
		IsActive:       s.IsActive,
		Distance:       s.DistanceKm,
	}
}
