package repository

import (
	"time"

	"evcharge-client/internal/data/entity"
)

// BookingRow mirrors one booking in the local cache.
type BookingRow struct {
	ID              string `gorm:"primaryKey"`
	OwnerNIC        string `gorm:"index"`
	StationID       string
	StationName     string
	StationAddress  string
	StartTime       time.Time `gorm:"index"`
	DurationMinutes int
	TotalAmount     float64
	Status          int
	QRCode          string
	Notes           string
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
	CachedAt        time.Time
}

func (BookingRow) TableName() string { return "cached_bookings" }

func bookingToRow(b *entity.Booking, cachedAt time.Time) BookingRow {
	return BookingRow{
		ID:              b.ID,
		OwnerNIC:        b.OwnerNIC,
		StationID:       b.StationID,
		StationName:     b.StationName,
		StationAddress:  b.StationAddress,
		StartTime:       b.StartTime.UTC(),
		DurationMinutes: b.DurationMinutes,
		TotalAmount:     b.TotalAmount,
		Status:          int(b.Status.WireValue()),
		QRCode:          b.QRCode,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		CachedAt:        cachedAt,
	}
}

func (r BookingRow) toEntity() *entity.Booking {
	return &entity.Booking{
		Base: entity.Base{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		OwnerNIC:        r.OwnerNIC,
		StationID:       r.StationID,
		StationName:     r.StationName,
		StationAddress:  r.StationAddress,
		StartTime:       r.StartTime.UTC(),
		DurationMinutes: r.DurationMinutes,
		TotalAmount:     r.TotalAmount,
		Status:          entity.ParseWireValue(int64(r.Status)),
		QRCode:          r.QRCode,
		Notes:           r.Notes,
	}
}

// StationRow mirrors one charging station snapshot.
type StationRow struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Latitude       float64
	Longitude      float64
	Address        string
	City           string
	Province       string
	TotalSlots     int
	AvailableSlots int
	PricePerHour   float64
	OperatingHours string
	Amenities      []string `gorm:"serializer:json"`
	IsActive       bool
	DistanceKm     *float64
	FetchedAt      time.Time
}

func (StationRow) TableName() string { return "cached_stations" }

func stationToRow(s *entity.ChargingStation) StationRow {
	return StationRow{
		ID:             s.ID,
		Name:           s.Name,
		Latitude:       s.Location.Latitude,
		Longitude:      s.Location.Longitude,
		Address:        s.Location.Address,
		City:           s.Location.City,
		Province:       s.Location.Province,
		TotalSlots:     s.TotalSlots,
		AvailableSlots: s.AvailableSlots,
		PricePerHour:   s.PricePerHour,
		OperatingHours: s.OperatingHours,
		Amenities:      s.Amenities,
		IsActive:       s.IsActive,
		DistanceKm:     s.DistanceKm,
		FetchedAt:      s.FetchedAt.UTC(),
	}
}

func (r StationRow) toEntity() *entity.ChargingStation {
	return &entity.ChargingStation{
		ID:   r.ID,
		Name: r.Name,
		Location: entity.Location{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Address:   r.Address,
			City:      r.City,
			Province:  r.Province,
		},
		TotalSlots:     r.TotalSlots,
		AvailableSlots: r.AvailableSlots,
		PricePerHour:   r.PricePerHour,
		OperatingHours: r.OperatingHours,
		Amenities:      r.Amenities,
		IsActive:       r.IsActive,
		DistanceKm:     r.DistanceKm,
		FetchedAt:      r.FetchedAt.UTC(),
	}
}

// SessionRow is the single persisted login. The CLI keeps one session per cache.
type SessionRow struct {
	Slot         int `gorm:"primaryKey;autoIncrement:false"`
	UserID       string
	NIC          string
	Email        string
	FullName     string
	Role         string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	SavedAt      time.Time
}

func (SessionRow) TableName() string { return "cached_session" }

// Models lists every table the cache migrates.
func Models() []any {
	return []any{&BookingRow{}, &StationRow{}, &SessionRow{}}
}
