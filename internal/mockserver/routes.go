package mockserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.countRequests)
	r.Use(s.recoverer)

	r.Route("/api", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Post("/auth/login/evowner", s.loginOwner)
		r.Post("/auth/login", s.loginUser)
		r.Post("/auth/refresh", s.refresh)
		r.Post("/evowners/register", s.registerOwner)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/logout", s.logout)

			r.Get("/chargingstations", s.listStations)
			r.Post("/chargingstations/nearby", s.nearbyStations)

			r.Post("/bookings", s.createBooking)
			r.Get("/bookings/evowner/{nic}", s.listOwnerBookings)
			r.Get("/bookings/evowner/{nic}/{scope}", s.listOwnerBookings)
			r.Put("/bookings/{id}", s.updateBooking)
			r.Delete("/bookings/{id}", s.cancelBooking)

			// operator only
			r.Group(func(r chi.Router) {
				r.Use(requireOperator)

				r.Post("/bookings/verify-qr", s.verifyQR)
				r.Patch("/bookings/{id}/start", s.startSession)
				r.Patch("/bookings/{id}/complete", s.completeSession)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
