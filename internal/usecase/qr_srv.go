package usecase

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	qrDateLayout = "2006-01-02"
	qrTimeLayout = "15:04"
)

// QRService turns a booking into a scannable code and back. Payloads are
// plain JSON and unsigned; only the backend verify call is authoritative.
type QRService interface {
	BuildPayload(booking *entity.Booking) (*entity.QRPayload, error)
	EncodePayload(booking *entity.Booking) (string, error)
	RenderPNG(booking *entity.Booking, size int) ([]byte, error)
	RenderTerminal(booking *entity.Booking) (string, error)
	DecodePayload(raw string) (*entity.QRPayload, error)
	DecodeImage(r io.Reader) (string, error)
}

type qrService struct {
	allowPending bool
	defaultSize  int
	now          func() time.Time
	log          *zap.Logger
}

func NewQRService(allowPending bool, defaultSize int, now func() time.Time, log *zap.Logger) QRService {
	if now == nil {
		now = time.Now
	}
	if defaultSize <= 0 {
		defaultSize = 256
	}
	return &qrService{
		allowPending: allowPending,
		defaultSize:  defaultSize,
		now:          now,
		log:          log.With(zap.String("service", "qr")),
	}
}

func (s *qrService) canShow(booking *entity.Booking) bool {
	if booking.IsDraft() {
		return false
	}
	if s.allowPending {
		return booking.Status.CanShowQRCodeRelaxed()
	}
	return booking.Status.CanShowQRCode()
}

func (s *qrService) BuildPayload(booking *entity.Booking) (*entity.QRPayload, error) {
	if booking == nil || booking.IsDraft() {
		return nil, apperror.NewValidationError("Booking", "The booking has not been confirmed yet")
	}
	if !s.canShow(booking) {
		return nil, apperror.NewValidationError("Status",
			fmt.Sprintf("No QR code for a %s booking", booking.Status.Label()))
	}

	return &entity.QRPayload{
		BookingID:   booking.ID,
		OwnerNIC:    booking.OwnerNIC,
		StationID:   booking.StationID,
		Date:        booking.StartTime.Format(qrDateLayout),
		Time:        booking.StartTime.Format(qrTimeLayout),
		Duration:    booking.DurationMinutes,
		Status:      booking.Status.String(),
		GeneratedAt: s.now().UnixMilli(),
	}, nil
}

func (s *qrService) EncodePayload(booking *entity.Booking) (string, error) {
	payload, err := s.BuildPayload(booking)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return string(data), nil
}

func (s *qrService) RenderPNG(booking *entity.Booking, size int) ([]byte, error) {
	text, err := s.EncodePayload(booking)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = s.defaultSize
	}

	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}

	s.log.Debug("QR rendered", zap.String("booking_id", booking.ID), zap.Int("size", size))
	return png, nil
}

func (s *qrService) RenderTerminal(booking *entity.Booking) (string, error) {
	text, err := s.EncodePayload(booking)
	if err != nil {
		return "", err
	}

	code, err := qrcode.New(text, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	return code.ToSmallString(false), nil
}

// DecodePayload parses scanned text. It does not check required fields.
func (s *qrService) DecodePayload(raw string) (*entity.QRPayload, error) {
	var payload entity.QRPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decode qr payload: %w", err)
	}
	return &payload, nil
}

// DecodeImage extracts the text of the first QR code found in a PNG or JPEG.
func (s *qrService) DecodeImage(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("read qr image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("prepare qr image: %w", err)
	}

	result, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("find qr code: %w", err)
	}
	return result.GetText(), nil
}
