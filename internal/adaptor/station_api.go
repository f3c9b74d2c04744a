package adaptor

import (
	"context"
	"encoding/json"
	"net/http"

	"evcharge-client/internal/dto/request"
)

type StationAPI interface {
	List(ctx context.Context) ([]json.RawMessage, error)
	Nearby(ctx context.Context, req request.NearbyStationsRequest) ([]json.RawMessage, error)
}

type stationAPI struct {
	client *Client
}

func NewStationAPI(client *Client) StationAPI {
	return &stationAPI{client: client}
}

func (a *stationAPI) List(ctx context.Context) ([]json.RawMessage, error) {
	env, err := a.client.do(ctx, "list stations", http.MethodGet, "chargingstations", nil)
	if err != nil {
		return nil, err
	}
	return decodeList("list stations", env)
}

func (a *stationAPI) Nearby(ctx context.Context, req request.NearbyStationsRequest) ([]json.RawMessage, error) {
	env, err := a.client.do(ctx, "nearby stations", http.MethodPost, "chargingstations/nearby", req)
	if err != nil {
		return nil, err
	}
	return decodeList("nearby stations", env)
}
