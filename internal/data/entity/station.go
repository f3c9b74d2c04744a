package entity

import "time"

type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
	City      string
	Province  string
}

// ChargingStation is a read-only mirror of a backend station.
// AvailableSlots is a point-in-time snapshot taken at FetchedAt.
type ChargingStation struct {
	ID             string
	Name           string
	Location       Location
	TotalSlots     int
	AvailableSlots int
	PricePerHour   float64
	OperatingHours string
	Amenities      []string
	IsActive       bool
	DistanceKm     *float64
	FetchedAt      time.Time
}

func (s *ChargingStation) HasAvailability() bool {
	return s.IsActive && s.AvailableSlots > 0
}
