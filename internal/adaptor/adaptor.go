package adaptor

import (
	"net/http"

	"evcharge-client/pkg/middleware"
	"evcharge-client/pkg/utils"

	"go.uber.org/zap"
)

// API groups the backend endpoints behind one shared client.
type API struct {
	Auth    AuthAPI
	Booking BookingAPI
	Station StationAPI
}

func NewAPI(cfg utils.APIConfig, tokens middleware.TokenSource, base http.RoundTripper, log *zap.Logger) (*API, error) {
	client, err := NewClient(cfg, tokens, base, log)
	if err != nil {
		return nil, err
	}

	return &API{
		Auth:    NewAuthAPI(client),
		Booking: NewBookingAPI(client),
		Station: NewStationAPI(client),
	}, nil
}
