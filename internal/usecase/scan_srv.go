package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"evcharge-client/internal/adaptor"
	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/pkg/utils"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ScanState int

const (
	ScanIdle ScanState = iota
	ScanScanning
	ScanPayloadDecoded
	ScanVerifying
	ScanVerified
	ScanRejected
)

var scanStateNames = map[ScanState]string{
	ScanIdle:           "Idle",
	ScanScanning:       "Scanning",
	ScanPayloadDecoded: "PayloadDecoded",
	ScanVerifying:      "Verifying",
	ScanVerified:       "Verified",
	ScanRejected:       "Rejected",
}

func (s ScanState) String() string {
	if name, ok := scanStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ScanState(%d)", int(s))
}

// ScanOutcome is a snapshot of a scan session after an event.
type ScanOutcome struct {
	State              ScanState
	Payload            *entity.QRPayload
	Booking            *entity.Booking
	Reason             string
	PermissionRequired bool
	// Ignored is set when the event did not trigger any action, such as a
	// second decode in the same session.
	Ignored bool
}

const invalidCodeReason = "Not a valid booking code"

// Scanner creates operator scan sessions and shares state across them:
// recently seen payloads and in-flight verifications.
type Scanner struct {
	api      adaptor.BookingAPI
	qr       QRService
	sessions *SessionManager
	mirror   *bookingMirror
	recent   *cache.Cache
	inflight singleflight.Group
	log      *zap.Logger
}

func NewScanner(api adaptor.BookingAPI, qr QRService, sessions *SessionManager, mirror *bookingMirror, debounce time.Duration, log *zap.Logger) *Scanner {
	s := &Scanner{
		api:      api,
		qr:       qr,
		sessions: sessions,
		mirror:   mirror,
		log:      log.With(zap.String("service", "scanner")),
	}
	if debounce > 0 {
		s.recent = cache.New(debounce, 2*debounce)
	}
	return s
}

// seen reports whether key was decoded within the debounce window, and
// starts a new window when it was not.
func (s *Scanner) seen(key string) bool {
	if s.recent == nil {
		return false
	}
	return s.recent.Add(key, struct{}{}, cache.DefaultExpiration) != nil
}

func (s *Scanner) forget(key string) {
	if s.recent != nil {
		s.recent.Delete(key)
	}
}

func (s *Scanner) NewSession() *ScanSession {
	id := utils.NewScanID()
	return &ScanSession{
		id:      id,
		scanner: s,
		log:     s.log.With(zap.String("scan_id", id)),
	}
}

// ScanSession walks Idle → Scanning → PayloadDecoded → Verifying →
// Verified | Rejected. Only the first decode in a session is acted on.
type ScanSession struct {
	mu      sync.Mutex
	id      string
	state   ScanState
	payload *entity.QRPayload
	booking *entity.Booking
	reason  string

	scanner *Scanner
	log     *zap.Logger
}

func (ss *ScanSession) ID() string {
	return ss.id
}

func (ss *ScanSession) State() ScanState {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.state
}

func (ss *ScanSession) snapshot() ScanOutcome {
	return ScanOutcome{
		State:   ss.state,
		Payload: ss.payload,
		Booking: ss.booking,
		Reason:  ss.reason,
	}
}

func (ss *ScanSession) clear() {
	ss.state = ScanIdle
	ss.payload = nil
	ss.booking = nil
	ss.reason = ""
}

// Begin starts scanning. Without camera permission the session stays Idle
// and the outcome asks for permission.
func (ss *ScanSession) Begin(permissionGranted bool) ScanOutcome {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	switch ss.state {
	case ScanVerified, ScanRejected:
		ss.clear()
	case ScanScanning, ScanPayloadDecoded, ScanVerifying:
		out := ss.snapshot()
		out.Ignored = true
		return out
	}

	if !permissionGranted {
		ss.log.Info("Camera permission denied")
		out := ss.snapshot()
		out.PermissionRequired = true
		return out
	}

	ss.state = ScanScanning
	ss.log.Debug("Scanning started")
	return ss.snapshot()
}

// Submit handles one decoded code. Local checks reject without a network
// call; otherwise the backend decides.
func (ss *ScanSession) Submit(ctx context.Context, raw string) (ScanOutcome, error) {
	ss.mu.Lock()
	if ss.state != ScanScanning {
		out := ss.snapshot()
		out.Ignored = true
		ss.mu.Unlock()
		return out, nil
	}

	key := strings.TrimSpace(raw)
	if ss.scanner.seen(key) {
		ss.log.Debug("Duplicate decode suppressed")
		out := ss.snapshot()
		out.Ignored = true
		ss.mu.Unlock()
		return out, nil
	}

	ss.state = ScanPayloadDecoded
	payload, err := ss.scanner.qr.DecodePayload(key)
	if err != nil {
		ss.reject(invalidCodeReason)
		ss.log.Warn("Scanned code is not a booking payload", zap.Error(err))
		out := ss.snapshot()
		ss.mu.Unlock()
		return out, nil
	}
	ss.payload = payload

	if missing := payload.MissingFields(); len(missing) > 0 {
		ss.reject(fmt.Sprintf("%s (missing %s)", invalidCodeReason, strings.Join(missing, ", ")))
		ss.log.Warn("Scanned payload incomplete", zap.Strings("missing", missing))
		out := ss.snapshot()
		ss.mu.Unlock()
		return out, nil
	}

	if status := payload.BookingStatus(); status != entity.BookingStatusApproved {
		ss.reject(fmt.Sprintf("Booking is %s; only approved bookings can be checked in", status.Label()))
		ss.log.Info("Scanned booking not approved",
			zap.String("booking_id", payload.BookingID),
			zap.String("status", status.String()),
		)
		out := ss.snapshot()
		ss.mu.Unlock()
		return out, nil
	}

	ss.state = ScanVerifying
	ss.mu.Unlock()

	ss.log.Info("Verifying booking", zap.String("booking_id", payload.BookingID))
	booking, reason, err := ss.scanner.verify(ctx, payload.BookingID, key)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err != nil {
		// let the operator rescan the same code right away
		ss.scanner.forget(key)
		ss.reject(apperror.UserMessage(err))
		return ss.snapshot(), err
	}
	if booking == nil {
		ss.reject(reason)
		return ss.snapshot(), nil
	}

	ss.state = ScanVerified
	ss.booking = booking
	ss.reason = reason
	ss.log.Info("Booking verified",
		zap.String("booking_id", booking.ID),
		zap.String("status", booking.Status.String()),
	)
	return ss.snapshot(), nil
}

// SubmitImage decodes a QR code from a picture and submits its text. An
// image without a readable code leaves the session scanning.
func (ss *ScanSession) SubmitImage(ctx context.Context, r io.Reader) (ScanOutcome, error) {
	text, err := ss.scanner.qr.DecodeImage(r)
	if err != nil {
		ss.mu.Lock()
		out := ss.snapshot()
		ss.mu.Unlock()
		return out, fmt.Errorf("scan image: %w", err)
	}
	return ss.Submit(ctx, text)
}

// Abandon returns to Idle. It is refused once verification has started.
func (ss *ScanSession) Abandon() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.state == ScanVerifying {
		return ErrScanInProgress
	}
	ss.clear()
	ss.log.Debug("Scan abandoned")
	return nil
}

// Reset returns a finished session to Idle.
func (ss *ScanSession) Reset() error {
	return ss.Abandon()
}

func (ss *ScanSession) reject(reason string) {
	ss.state = ScanRejected
	ss.reason = reason
}

// verify asks the backend about bookingID. Concurrent verifications of the
// same booking share one request. A nil booking with a nil error is a
// rejection whose reason is returned.
func (s *Scanner) verify(ctx context.Context, bookingID, raw string) (*entity.Booking, string, error) {
	type result struct {
		booking *entity.Booking
		reason  string
	}

	v, err, shared := s.inflight.Do(bookingID, func() (any, error) {
		if _, err := s.sessions.Require(ctx); err != nil {
			return nil, err
		}

		resp, err := s.api.VerifyQR(ctx, request.VerifyQRRequest{BookingID: bookingID, QRCode: raw})
		if err != nil {
			var srvErr *apperror.ServerError
			if errors.As(err, &srvErr) {
				return result{reason: apperror.UserMessage(err)}, nil
			}
			return nil, s.sessions.Observe(ctx, fmt.Errorf("verify booking %s: %w", bookingID, err))
		}

		if !resp.IsValid || resp.Booking == nil {
			reason := resp.Message
			if reason == "" {
				reason = "Booking could not be verified"
			}
			return result{reason: reason}, nil
		}

		booking, err := resp.Booking.ToEntity()
		if err != nil {
			return nil, apperror.Malformed("verify qr", err)
		}
		s.mirror.record(ctx, booking)
		return result{booking: booking, reason: resp.Message}, nil
	})
	if err != nil {
		return nil, "", err
	}
	if shared {
		s.log.Debug("Verification shared with concurrent scan", zap.String("booking_id", bookingID))
	}

	res := v.(result)
	return res.booking, res.reason, nil
}
