package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadText(t *testing.T, p entity.QRPayload) string {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return string(data)
}

func validPayload() entity.QRPayload {
	return entity.QRPayload{
		BookingID: "b1",
		OwnerNIC:  ownerNIC,
		StationID: "st-1",
		Date:      "2026-03-02",
		Time:      "09:00",
		Duration:  60,
		Status:    "APPROVED",
	}
}

func TestScan_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	session := f.svc.Scanner.NewSession()

	out := session.Begin(false)
	assert.True(t, out.PermissionRequired)
	assert.Equal(t, ScanIdle, out.State)

	out = session.Begin(true)
	assert.Equal(t, ScanScanning, out.State)
}

func TestScan_MissingStationIDRejectedWithoutNetwork(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	p := validPayload()
	p.StationID = ""

	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	out, err := session.Submit(context.Background(), payloadText(t, p))
	require.NoError(t, err)
	assert.Equal(t, ScanRejected, out.State)
	assert.Contains(t, out.Reason, "Not a valid booking code")
	assert.Contains(t, out.Reason, "stationId")
	assert.Equal(t, 0, f.bookings.Calls())
}

func TestScan_GarbageRejected(t *testing.T) {
	f := newFixture(t)
	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	out, err := session.Submit(context.Background(), "https://example.com/not-a-booking")
	require.NoError(t, err)
	assert.Equal(t, ScanRejected, out.State)
	assert.Equal(t, 0, f.bookings.Calls())
}

func TestScan_NonApprovedRejectedLocally(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	p := validPayload()
	p.Status = "PENDING"

	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	out, err := session.Submit(context.Background(), payloadText(t, p))
	require.NoError(t, err)
	assert.Equal(t, ScanRejected, out.State)
	assert.Contains(t, out.Reason, "Pending")
	assert.Equal(t, 0, f.bookings.Calls())
}

func TestScan_Verified(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)
	start := f.now.Add(time.Hour)

	f.bookings.VerifyFunc = func(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
		assert.Equal(t, "b1", req.BookingID)
		return &response.VerifyQRResponse{
			IsValid: true,
			Message: "Booking verified",
			Booking: bookingDTO("b1", entity.BookingStatusApproved, start),
		}, nil
	}

	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	out, err := session.Submit(context.Background(), payloadText(t, validPayload()))
	require.NoError(t, err)
	assert.Equal(t, ScanVerified, out.State)
	require.NotNil(t, out.Booking)
	assert.Equal(t, "b1", out.Booking.ID)

	// a second decode in the same session does nothing
	out, err = session.Submit(context.Background(), payloadText(t, validPayload()))
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.Equal(t, ScanVerified, out.State)
	assert.Equal(t, 1, f.bookings.Calls())
}

func TestScan_ServerOverridesLocalCheck(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	f.bookings.VerifyFunc = func(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
		return nil, &apperror.ServerError{Status: 200, Message: "Booking was cancelled by the owner"}
	}

	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	out, err := session.Submit(context.Background(), payloadText(t, validPayload()))
	require.NoError(t, err)
	assert.Equal(t, ScanRejected, out.State)
	assert.Equal(t, "Booking was cancelled by the owner", out.Reason)
}

func TestScan_InvalidVerdict(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	f.bookings.VerifyFunc = func(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
		return &response.VerifyQRResponse{IsValid: false, Message: "QR code expired"}, nil
	}

	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	out, err := session.Submit(context.Background(), payloadText(t, validPayload()))
	require.NoError(t, err)
	assert.Equal(t, ScanRejected, out.State)
	assert.Equal(t, "QR code expired", out.Reason)
}

func TestScan_DebounceAcrossSessions(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	p := validPayload()
	p.StationID = ""
	text := payloadText(t, p)

	first := f.svc.Scanner.NewSession()
	first.Begin(true)
	out, err := first.Submit(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, ScanRejected, out.State)

	second := f.svc.Scanner.NewSession()
	second.Begin(true)
	out, err = second.Submit(context.Background(), text)
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.Equal(t, ScanScanning, out.State)
}

func TestScan_NetworkFailureAllowsRescan(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	attempts := 0
	f.bookings.VerifyFunc = func(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
		attempts++
		if attempts == 1 {
			return nil, &apperror.NetworkError{Op: "verify qr", Err: errors.New("connection reset")}
		}
		return &response.VerifyQRResponse{IsValid: true, Booking: bookingDTO("b1", entity.BookingStatusApproved, f.now)}, nil
	}

	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	out, err := session.Submit(context.Background(), payloadText(t, validPayload()))
	assert.Equal(t, apperror.KindNetwork, apperror.Kind(err))
	assert.Equal(t, ScanRejected, out.State)

	require.NoError(t, session.Reset())
	session.Begin(true)
	out, err = session.Submit(context.Background(), payloadText(t, validPayload()))
	require.NoError(t, err)
	assert.Equal(t, ScanVerified, out.State)
}

func TestScan_AbandonRefusedWhileVerifying(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.bookings.VerifyFunc = func(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
		close(entered)
		<-release
		return &response.VerifyQRResponse{IsValid: false, Message: "nope"}, nil
	}

	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = session.Submit(context.Background(), payloadText(t, validPayload()))
	}()

	<-entered
	assert.Equal(t, ScanVerifying, session.State())
	assert.ErrorIs(t, session.Abandon(), ErrScanInProgress)

	close(release)
	wg.Wait()
	assert.Equal(t, ScanRejected, session.State())
	assert.NoError(t, session.Abandon())
	assert.Equal(t, ScanIdle, session.State())
}

func TestScan_AbandonBeforeVerifying(t *testing.T) {
	f := newFixture(t)
	session := f.svc.Scanner.NewSession()
	session.Begin(true)

	require.NoError(t, session.Abandon())
	assert.Equal(t, ScanIdle, session.State())

	out, err := session.Submit(context.Background(), payloadText(t, validPayload()))
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.Equal(t, 0, f.bookings.Calls())
}

func TestScan_ConcurrentVerificationsShareRequest(t *testing.T) {
	f := newFixture(t)
	f.loginOperator(t)

	release := make(chan struct{})
	f.bookings.VerifyFunc = func(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
		<-release
		return &response.VerifyQRResponse{IsValid: true, Booking: bookingDTO("b1", entity.BookingStatusApproved, f.now)}, nil
	}

	// two payload variants for the same booking so the debounce does not swallow the second
	a := validPayload()
	b := validPayload()
	b.GeneratedAt = 1

	sessions := []*ScanSession{f.svc.Scanner.NewSession(), f.svc.Scanner.NewSession()}
	texts := []string{payloadText(t, a), payloadText(t, b)}

	var wg sync.WaitGroup
	results := make([]ScanOutcome, 2)
	for i := range sessions {
		sessions[i].Begin(true)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = sessions[i].Submit(context.Background(), texts[i])
		}(i)
	}

	require.Eventually(t, func() bool {
		return sessions[0].State() == ScanVerifying && sessions[1].State() == ScanVerifying
	}, time.Second, time.Millisecond)
	// give the second verification time to join the first
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, ScanVerified, results[0].State)
	assert.Equal(t, ScanVerified, results[1].State)
	assert.Equal(t, 1, f.bookings.Calls())
}
