package mockserver

import (
	"math"
	"net/http"
	"sort"

	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"
	"evcharge-client/pkg/utils"
)

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// listStations handles GET /api/chargingstations (protected)
func (s *Server) listStations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]response.StationResponse, 0, len(s.stations))
	for _, st := range s.stations {
		out = append(out, response.StationToResponse(st))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	utils.ResponseSuccess(w, "success", out)
}

// nearbyStations handles POST /api/chargingstations/nearby (protected).
// Results are ordered nearest first.
func (s *Server) nearbyStations(w http.ResponseWriter, r *http.Request) {
	var req request.NearbyStationsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	s.mu.Lock()
	out := make([]response.StationResponse, 0)
	for _, st := range s.stations {
		distance := haversineKm(req.Latitude, req.Longitude, st.Location.Latitude, st.Location.Longitude)
		if distance > req.RadiusKm {
			continue
		}
		resp := response.StationToResponse(st)
		d := math.Round(distance*100) / 100
		resp.Distance = &d
		out = append(out, resp)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	utils.ResponseSuccess(w, "success", out)
}
