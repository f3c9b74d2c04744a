package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/data/repository"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"
	"evcharge-client/pkg/utils"

	"go.uber.org/zap"
)

// fakeBookingAPI counts every call so tests can assert nothing hit the network.
type fakeBookingAPI struct {
	calls atomic.Int32

	CreateFunc   func(ctx context.Context, body request.CreateBookingBody) (*response.BookingResponse, error)
	ListFunc     func(ctx context.Context, nic string, scope adaptor.ListScope) ([]json.RawMessage, error)
	UpdateFunc   func(ctx context.Context, id string, body request.UpdateBookingBody) (*response.BookingResponse, error)
	CancelFunc   func(ctx context.Context, id string) (bool, error)
	VerifyFunc   func(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error)
	StartFunc    func(ctx context.Context, id string) (*response.BookingResponse, error)
	CompleteFunc func(ctx context.Context, id string) (*response.BookingResponse, error)
}

func (f *fakeBookingAPI) Calls() int { return int(f.calls.Load()) }

func (f *fakeBookingAPI) Create(ctx context.Context, body request.CreateBookingBody) (*response.BookingResponse, error) {
	f.calls.Add(1)
	return f.CreateFunc(ctx, body)
}

func (f *fakeBookingAPI) ListByOwner(ctx context.Context, nic string, scope adaptor.ListScope) ([]json.RawMessage, error) {
	f.calls.Add(1)
	return f.ListFunc(ctx, nic, scope)
}

func (f *fakeBookingAPI) Update(ctx context.Context, id string, body request.UpdateBookingBody) (*response.BookingResponse, error) {
	f.calls.Add(1)
	return f.UpdateFunc(ctx, id, body)
}

func (f *fakeBookingAPI) Cancel(ctx context.Context, id string) (bool, error) {
	f.calls.Add(1)
	return f.CancelFunc(ctx, id)
}

func (f *fakeBookingAPI) VerifyQR(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
	f.calls.Add(1)
	return f.VerifyFunc(ctx, req)
}

func (f *fakeBookingAPI) Start(ctx context.Context, id string) (*response.BookingResponse, error) {
	f.calls.Add(1)
	return f.StartFunc(ctx, id)
}

func (f *fakeBookingAPI) Complete(ctx context.Context, id string) (*response.BookingResponse, error) {
	f.calls.Add(1)
	return f.CompleteFunc(ctx, id)
}

type fakeAuthAPI struct {
	LoginOwnerFunc func(ctx context.Context, req request.OwnerLoginRequest) (*response.LoginResponse, error)
	LoginUserFunc  func(ctx context.Context, req request.UserLoginRequest) (*response.LoginResponse, error)
	RefreshFunc    func(ctx context.Context, req request.RefreshTokenRequest) (*response.LoginResponse, error)
	LogoutFunc     func(ctx context.Context, req request.LogoutRequest) error
	RegisterFunc   func(ctx context.Context, req request.RegisterOwnerRequest) (*response.OwnerResponse, error)
}

func (f *fakeAuthAPI) LoginOwner(ctx context.Context, req request.OwnerLoginRequest) (*response.LoginResponse, error) {
	return f.LoginOwnerFunc(ctx, req)
}

func (f *fakeAuthAPI) LoginUser(ctx context.Context, req request.UserLoginRequest) (*response.LoginResponse, error) {
	return f.LoginUserFunc(ctx, req)
}

func (f *fakeAuthAPI) Refresh(ctx context.Context, req request.RefreshTokenRequest) (*response.LoginResponse, error) {
	return f.RefreshFunc(ctx, req)
}

func (f *fakeAuthAPI) Logout(ctx context.Context, req request.LogoutRequest) error {
	return f.LogoutFunc(ctx, req)
}

func (f *fakeAuthAPI) RegisterOwner(ctx context.Context, req request.RegisterOwnerRequest) (*response.OwnerResponse, error) {
	return f.RegisterFunc(ctx, req)
}

type fakeStationAPI struct {
	ListFunc   func(ctx context.Context) ([]json.RawMessage, error)
	NearbyFunc func(ctx context.Context, req request.NearbyStationsRequest) ([]json.RawMessage, error)
}

func (f *fakeStationAPI) List(ctx context.Context) ([]json.RawMessage, error) {
	return f.ListFunc(ctx)
}

func (f *fakeStationAPI) Nearby(ctx context.Context, req request.NearbyStationsRequest) ([]json.RawMessage, error) {
	return f.NearbyFunc(ctx, req)
}

type memBookingRepo struct {
	mu   sync.Mutex
	rows map[string]entity.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{rows: make(map[string]entity.Booking)}
}

func (r *memBookingRepo) Upsert(_ context.Context, bookings ...*entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bookings {
		if b != nil && !b.IsDraft() {
			r.rows[b.ID] = *b
		}
	}
	return nil
}

func (r *memBookingRepo) FindByID(_ context.Context, id string) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memBookingRepo) FindByOwner(_ context.Context, nic string) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.rows {
		if b.OwnerNIC == nic {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memBookingRepo) DeleteByOwner(_ context.Context, nic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.rows {
		if b.OwnerNIC == nic {
			delete(r.rows, id)
		}
	}
	return nil
}

type memStationRepo struct {
	mu   sync.Mutex
	rows map[string]entity.ChargingStation
}

func (r *memStationRepo) Upsert(_ context.Context, stations ...*entity.ChargingStation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = make(map[string]entity.ChargingStation)
	}
	for _, s := range stations {
		r.rows[s.ID] = *s
	}
	return nil
}

func (r *memStationRepo) List(context.Context) ([]*entity.ChargingStation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChargingStation
	for _, s := range r.rows {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

type memSessionRepo struct {
	mu      sync.Mutex
	session *entity.Session
}

func (r *memSessionRepo) Save(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.session = &copied
	return nil
}

func (r *memSessionRepo) Load(context.Context) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil, nil
	}
	copied := *r.session
	return &copied, nil
}

func (r *memSessionRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = nil
	return nil
}

// fixture wires services over fakes with a fixed clock.
type fixture struct {
	now      time.Time
	bookings *fakeBookingAPI
	auth     *fakeAuthAPI
	stations *fakeStationAPI
	repo     *repository.Repository
	cache    *memBookingRepo
	svc      *Service
}

const ownerNIC = "991234567V"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLog(t, zap.NewNop())
}

func newFixtureWithLog(t *testing.T, log *zap.Logger) *fixture {
	t.Helper()

	f := &fixture{
		now:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		bookings: &fakeBookingAPI{},
		auth:     &fakeAuthAPI{},
		stations: &fakeStationAPI{},
		cache:    newMemBookingRepo(),
	}
	f.repo = &repository.Repository{
		Booking: f.cache,
		Station: &memStationRepo{},
		Session: &memSessionRepo{},
	}

	clock := func() time.Time { return f.now }
	sessions := NewSessionManager(f.repo.Session, clock, log)
	api := &adaptor.API{Auth: f.auth, Booking: f.bookings, Station: f.stations}

	cfg := &utils.Config{
		Booking: utils.BookingConfig{AdvanceNotice: 12 * time.Hour},
		QR:      utils.QRConfig{Size: 128},
		Scan:    utils.ScanConfig{DebounceWindow: 3 * time.Second},
	}
	f.svc = NewService(api, sessions, f.repo, cfg, clock, log)
	return f
}

func (f *fixture) loginOwner(t *testing.T) {
	t.Helper()
	err := f.svc.Sessions.Establish(context.Background(), &entity.Session{
		UserID:       "u1",
		NIC:          ownerNIC,
		Role:         entity.RoleEVOwner,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    f.now.Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) loginOperator(t *testing.T) {
	t.Helper()
	err := f.svc.Sessions.Establish(context.Background(), &entity.Session{
		UserID:      "op1",
		Email:       "operator@example.com",
		Role:        entity.RoleOperator,
		AccessToken: "access",
		ExpiresAt:   f.now.Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func bookingDTO(id string, status entity.BookingStatus, start time.Time) *response.BookingResponse {
	return &response.BookingResponse{
		ID:                  id,
		EVOwnerNIC:          ownerNIC,
		ChargingStationID:   "st-1",
		ChargingStationName: "Colombo Fort",
		ReservationDateTime: utils.FormatISO(start),
		Duration:            60,
		TotalAmount:         1200,
		Status:              status,
	}
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
