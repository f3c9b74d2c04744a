package request

type NearbyStationsRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	RadiusKm  float64 `json:"radiusKm" validate:"gt=0,lte=500"`
}
