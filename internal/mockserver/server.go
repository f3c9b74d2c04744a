// Package mockserver is an in-memory stand-in for the charging backend. It
// speaks the same envelope protocol and is used by end-to-end tests and the
// "mock" command for local development.
package mockserver

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"evcharge-client/internal/data/entity"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Options struct {
	// Secret signs issued access tokens.
	Secret []byte
	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration
	// AdvanceNotice is the minimum lead time for a reservation.
	AdvanceNotice time.Duration
	// AutoApprove makes new bookings APPROVED instead of PENDING.
	AutoApprove bool
	Now         func() time.Time
}

type owner struct {
	entity.Owner
	password string
}

type operator struct {
	id       string
	email    string
	name     string
	password string
}

// Server holds the fake backend state. All methods are safe for concurrent use.
type Server struct {
	opts Options
	log  *zap.Logger

	mu            sync.Mutex
	owners        map[string]*owner
	operators     map[string]*operator
	stations      map[string]*entity.ChargingStation
	bookings      map[string]*entity.Booking
	refreshTokens map[string]string
	listOverride  map[string]json.RawMessage
	sequence      int

	requests atomic.Int64
}

func New(opts Options, log *zap.Logger) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("mock-backend-secret")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.AdvanceNotice == 0 {
		opts.AdvanceNotice = 12 * time.Hour
	}

	return &Server{
		opts:          opts,
		log:           log.With(zap.String("component", "mockserver")),
		owners:        make(map[string]*owner),
		operators:     make(map[string]*operator),
		stations:      make(map[string]*entity.ChargingStation),
		bookings:      make(map[string]*entity.Booking),
		refreshTokens: make(map[string]string),
		listOverride:  make(map[string]json.RawMessage),
	}
}

// Router returns the chi router serving the backend routes under /api.
func (s *Server) Router() *chi.Mux {
	return s.routes()
}

// Requests is the number of requests served so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) AddOwner(o entity.Owner, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[o.NIC] = &owner{Owner: o, password: password}
}

func (s *Server) AddOperator(id, email, name, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operators[email] = &operator{id: id, email: email, name: name, password: password}
}

func (s *Server) AddStation(st entity.ChargingStation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[st.ID] = &st
}

func (s *Server) AddBooking(b entity.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = &b
}

// Booking returns a copy of the stored booking.
func (s *Server) Booking(id string) (entity.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return entity.Booking{}, false
	}
	return *b, true
}

// OverrideList makes the owner booking list endpoints for nic answer with raw
// instead of the stored bookings.
func (s *Server) OverrideList(nic string, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listOverride[nic] = raw
}

func (s *Server) nextID(prefix string) string {
	s.sequence++
	return prefix + "-" + strconv.Itoa(s.sequence)
}

func (s *Server) ownerBookings(nic string) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range s.bookings {
		if b.OwnerNIC == nic {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Seed loads a small demo data set: one owner, one operator and three stations.
func (s *Server) Seed() {
	s.AddOwner(entity.Owner{
		NIC:       "991234567V",
		FirstName: "Nimal",
		LastName:  "Perera",
		Email:     "nimal@example.com",
		Phone:     "0771234567",
	}, "password")
	s.AddOperator("op-1", "operator@example.com", "Station Operator", "password")

	stations := []entity.ChargingStation{
		{
			ID:   "st-1",
			Name: "Colombo Fort Supercharger",
			Location: entity.Location{
				Latitude: 6.9344, Longitude: 79.8428,
				Address: "Olcott Mawatha", City: "Colombo", Province: "Western",
			},
			TotalSlots: 6, AvailableSlots: 4, PricePerHour: 900,
			OperatingHours: "06:00-22:00", Amenities: []string{"Cafe", "WiFi"}, IsActive: true,
		},
		{
			ID:   "st-2",
			Name: "Kandy Lake Charging Hub",
			Location: entity.Location{
				Latitude: 7.2906, Longitude: 80.6337,
				Address: "Dalada Veediya", City: "Kandy", Province: "Central",
			},
			TotalSlots: 4, AvailableSlots: 1, PricePerHour: 750,
			OperatingHours: "24h", Amenities: []string{"Restroom"}, IsActive: true,
		},
		{
			ID:   "st-3",
			Name: "Galle Face Green",
			Location: entity.Location{
				Latitude: 6.9271, Longitude: 79.8449,
				Address: "Galle Road", City: "Colombo", Province: "Western",
			},
			TotalSlots: 2, AvailableSlots: 0, PricePerHour: 1100,
			OperatingHours: "08:00-20:00", IsActive: false,
		},
	}
	for _, st := range stations {
		s.AddStation(st)
	}
}
