package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"
	"evcharge-client/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) noticeMessage() string {
	return fmt.Sprintf("Bookings must be made at least %d hours in advance", int(s.opts.AdvanceNotice.Hours()))
}

// canAccess reports whether p may see bookings of nic.
func canAccess(p principal, nic string) bool {
	return p.Role == entity.RoleOperator || p.NIC == nic
}

// createBooking handles POST /api/bookings (protected)
func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var body request.CreateBookingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if !canAccess(p, body.EVOwnerNIC) {
		utils.ResponseForbidden(w, "Cannot book for another owner")
		return
	}

	start, err := utils.ParseISO(body.ReservationDateTime)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid reservation date", nil)
		return
	}
	if body.Duration <= 0 {
		utils.ResponseBadRequest(w, "Validation failed", []string{"duration: Must be greater than 0"})
		return
	}
	if start.Before(s.opts.Now().Add(s.opts.AdvanceNotice)) {
		utils.ResponseRejected(w, s.noticeMessage(), nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	station, ok := s.stations[body.ChargingStationID]
	if !ok {
		utils.ResponseNotFound(w, "Charging station not found")
		return
	}
	if !station.IsActive {
		utils.ResponseRejected(w, "Charging station is not active", nil)
		return
	}

	now := s.opts.Now()
	status := entity.BookingStatusPending
	if s.opts.AutoApprove {
		status = entity.BookingStatusApproved
	}

	booking := &entity.Booking{
		Base: entity.Base{
			ID:        s.nextID("bk"),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerNIC:        body.EVOwnerNIC,
		StationID:       station.ID,
		StationName:     station.Name,
		StationAddress:  station.Location.Address,
		StartTime:       start,
		DurationMinutes: body.Duration,
		TotalAmount:     station.PricePerHour * float64(body.Duration) / 60,
		Status:          status,
		Notes:           body.Notes,
	}
	booking.QRCode = "QR-" + booking.ID
	s.bookings[booking.ID] = booking

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("nic", booking.OwnerNIC),
	)
	utils.ResponseCreated(w, "Booking created", response.BookingToResponse(booking))
}

// listOwnerBookings handles GET /api/bookings/evowner/{nic}[/{scope}] (protected)
func (s *Server) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	nic := chi.URLParam(r, "nic")
	scope := chi.URLParam(r, "scope")

	if !canAccess(p, nic) {
		utils.ResponseForbidden(w, "Cannot view bookings of another owner")
		return
	}
	if scope != "" && scope != "upcoming" && scope != "history" {
		utils.ResponseNotFound(w, "Unknown booking list")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.listOverride[nic]; ok {
		utils.ResponseSuccess(w, "success", raw)
		return
	}

	now := s.opts.Now()
	out := make([]response.BookingResponse, 0)
	for _, b := range s.ownerBookings(nic) {
		upcoming := !b.StartTime.Before(now) && !b.IsTerminal()
		switch {
		case scope == "upcoming" && !upcoming:
			continue
		case scope == "history" && upcoming:
			continue
		}
		out = append(out, response.BookingToResponse(b))
	}

	utils.ResponseSuccess(w, "success", out)
}

// updateBooking handles PUT /api/bookings/{id} (protected)
func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id := chi.URLParam(r, "id")

	var body request.UpdateBookingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok || !canAccess(p, booking.OwnerNIC) {
		utils.ResponseNotFound(w, "Booking not found")
		return
	}
	if !booking.Status.CanBeModified() {
		utils.ResponseRejected(w, fmt.Sprintf("A %s booking cannot be modified", booking.Status.Label()), nil)
		return
	}

	updated := *booking
	if body.ReservationDateTime != nil {
		start, err := utils.ParseISO(*body.ReservationDateTime)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid reservation date", nil)
			return
		}
		if start.Before(s.opts.Now().Add(s.opts.AdvanceNotice)) {
			utils.ResponseRejected(w, s.noticeMessage(), nil)
			return
		}
		updated.StartTime = start
	}
	if body.Duration != nil {
		if *body.Duration <= 0 {
			utils.ResponseBadRequest(w, "Validation failed", []string{"duration: Must be greater than 0"})
			return
		}
		updated.DurationMinutes = *body.Duration
	}
	if body.Notes != nil {
		updated.Notes = *body.Notes
	}
	if station, ok := s.stations[updated.StationID]; ok {
		updated.TotalAmount = station.PricePerHour * float64(updated.DurationMinutes) / 60
	}
	updated.UpdatedAt = s.opts.Now()
	s.bookings[id] = &updated

	utils.ResponseSuccess(w, "Booking updated", response.BookingToResponse(&updated))
}

// cancelBooking handles DELETE /api/bookings/{id} (protected)
func (s *Server) cancelBooking(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok || !canAccess(p, booking.OwnerNIC) {
		utils.ResponseNotFound(w, "Booking not found")
		return
	}
	if booking.Status == entity.BookingStatusCancelled {
		utils.ResponseRejected(w, "Booking is already cancelled", nil)
		return
	}
	if !booking.Status.CanBeCancelled() {
		utils.ResponseRejected(w, fmt.Sprintf("A %s booking cannot be cancelled", booking.Status.Label()), nil)
		return
	}

	booking.Status = entity.BookingStatusCancelled
	booking.UpdatedAt = s.opts.Now()

	s.log.Info("Booking cancelled", zap.String("booking_id", id))
	utils.ResponseSuccess(w, "Booking cancelled", true)
}

// verifyQR handles POST /api/bookings/verify-qr (operator)
func (s *Server) verifyQR(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyQRRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[req.BookingID]
	if !ok {
		utils.ResponseSuccess(w, "success", response.VerifyQRResponse{IsValid: false, Message: "Booking not found"})
		return
	}
	if booking.Status != entity.BookingStatusApproved {
		utils.ResponseSuccess(w, "success", response.VerifyQRResponse{
			IsValid: false,
			Message: fmt.Sprintf("Booking is %s", booking.Status.Label()),
		})
		return
	}

	dto := response.BookingToResponse(booking)
	utils.ResponseSuccess(w, "success", response.VerifyQRResponse{
		IsValid: true,
		Message: "Booking verified",
		Booking: &dto,
	})
}

// startSession handles PATCH /api/bookings/{id}/start (operator)
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, chi.URLParam(r, "id"), entity.BookingStatusApproved, entity.BookingStatusInProgress, "Charging session started")
}

// completeSession handles PATCH /api/bookings/{id}/complete (operator)
func (s *Server) completeSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, chi.URLParam(r, "id"), entity.BookingStatusInProgress, entity.BookingStatusCompleted, "Charging session completed")
}

func (s *Server) transition(w http.ResponseWriter, id string, from, to entity.BookingStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		utils.ResponseNotFound(w, "Booking not found")
		return
	}
	if booking.Status != from {
		utils.ResponseRejected(w, fmt.Sprintf("Booking is %s, expected %s", booking.Status.Label(), from.Label()), nil)
		return
	}

	booking.Status = to
	booking.UpdatedAt = s.opts.Now()

	s.log.Info(message, zap.String("booking_id", id))
	utils.ResponseSuccess(w, message, response.BookingToResponse(booking))
}
