package adaptor

import (
	"context"
	"encoding/json"
	"net/http"

	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/dto/response"
)

// ListScope selects one of the owner booking lists.
type ListScope string

const (
	ListAll      ListScope = ""
	ListUpcoming ListScope = "upcoming"
	ListHistory  ListScope = "history"
)

type BookingAPI interface {
	Create(ctx context.Context, body request.CreateBookingBody) (*response.BookingResponse, error)
	ListByOwner(ctx context.Context, nic string, scope ListScope) ([]json.RawMessage, error)
	Update(ctx context.Context, id string, body request.UpdateBookingBody) (*response.BookingResponse, error)
	Cancel(ctx context.Context, id string) (bool, error)
	VerifyQR(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error)
	Start(ctx context.Context, id string) (*response.BookingResponse, error)
	Complete(ctx context.Context, id string) (*response.BookingResponse, error)
}

type bookingAPI struct {
	client *Client
}

func NewBookingAPI(client *Client) BookingAPI {
	return &bookingAPI{client: client}
}

func (a *bookingAPI) Create(ctx context.Context, body request.CreateBookingBody) (*response.BookingResponse, error) {
	env, err := a.client.do(ctx, "create booking", http.MethodPost, "bookings", body)
	if err != nil {
		return nil, err
	}
	return decodeData[response.BookingResponse]("create booking", env)
}

func (a *bookingAPI) ListByOwner(ctx context.Context, nic string, scope ListScope) ([]json.RawMessage, error) {
	path := pathID("bookings/evowner/%s", nic)
	if scope != ListAll {
		path += "/" + string(scope)
	}

	op := "list bookings"
	if scope != ListAll {
		op = "list " + string(scope) + " bookings"
	}

	env, err := a.client.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(op, env)
}

func (a *bookingAPI) Update(ctx context.Context, id string, body request.UpdateBookingBody) (*response.BookingResponse, error) {
	env, err := a.client.do(ctx, "update booking", http.MethodPut, pathID("bookings/%s", id), body)
	if err != nil {
		return nil, err
	}
	return decodeData[response.BookingResponse]("update booking", env)
}

// Cancel reports the server's verdict. A bare success envelope counts as true.
func (a *bookingAPI) Cancel(ctx context.Context, id string) (bool, error) {
	env, err := a.client.do(ctx, "cancel booking", http.MethodDelete, pathID("bookings/%s", id), nil)
	if err != nil {
		return false, err
	}

	var ok bool
	if env.HasData() && json.Unmarshal(env.Data, &ok) == nil {
		return ok, nil
	}
	return true, nil
}

func (a *bookingAPI) VerifyQR(ctx context.Context, req request.VerifyQRRequest) (*response.VerifyQRResponse, error) {
	env, err := a.client.do(ctx, "verify qr", http.MethodPost, "bookings/verify-qr", req)
	if err != nil {
		return nil, err
	}
	return decodeData[response.VerifyQRResponse]("verify qr", env)
}

func (a *bookingAPI) Start(ctx context.Context, id string) (*response.BookingResponse, error) {
	env, err := a.client.do(ctx, "start session", http.MethodPatch, pathID("bookings/%s/start", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[response.BookingResponse]("start session", env)
}

func (a *bookingAPI) Complete(ctx context.Context, id string) (*response.BookingResponse, error) {
	env, err := a.client.do(ctx, "complete session", http.MethodPatch, pathID("bookings/%s/complete", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[response.BookingResponse]("complete session", env)
}
