package client

import (
	"context"
	"fmt"
	"net/url"
)

type SpaceClient struct {
	httpClient *HttpClient
}

func NewSpaceClient(httpClient *HttpClient) *SpaceClient {
	return &SpaceClient{httpClient: httpClient}
}

func (c *SpaceClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/spaces", body)
}

func (c *SpaceClient) GetByID(ctx context.Context, id int64) (*Response, error) {
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/spaces/id/%d", id))
}

func (c *SpaceClient) GetAll(ctx context.Context, limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/spaces?limit=%d&offset=%d", limit, offset))
}

func (c *SpaceClient) Update(ctx context.Context, id int64, body any) (*Response, error) {
	return c.httpClient.PATCH(ctx, fmt.Sprintf("/api/v1/spaces/id/%d", id), body)
}

func (c *SpaceClient) Delete(ctx context.Context, id int64) (*Response, error) {
	return c.httpClient.DELETE(ctx, fmt.Sprintf("/api/v1/spaces/id/%d", id))
}

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(httpClient *HttpClient) *ReservationClient {
	return &ReservationClient{httpClient: httpClient}
}

func (c *ReservationClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/reservations", body)
}

func (c *ReservationClient) GetByID(ctx context.Context, id int64) (*Response, error) {
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/reservations/id/%d", id))
}

func (c *ReservationClient) GetAll(ctx context.Context, limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/reservations?limit=%d&offset=%d", limit, offset))
}

func (c *ReservationClient) Mine(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/reservations/mine")
}

func (c *ReservationClient) ForSpace(ctx context.Context, spaceID int64) (*Response, error) {
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/spaces/id/%d/reservations", spaceID))
}

func (c *ReservationClient) Search(ctx context.Context, spaceID int64, title string) (*Response, error) {
	q := url.Values{}
	q.Set("title", title)
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/spaces/id/%d/reservations/search?%s", spaceID, q.Encode()))
}

func (c *ReservationClient) Update(ctx context.Context, id int64, body any) (*Response, error) {
	return c.httpClient.PATCH(ctx, fmt.Sprintf("/api/v1/reservations/id/%d", id), body)
}

func (c *ReservationClient) Delete(ctx context.Context, id int64) (*Response, error) {
	return c.httpClient.DELETE(ctx, fmt.Sprintf("/api/v1/reservations/id/%d", id))
}

func (c *ReservationClient) Pay(ctx context.Context, id int64) (*Response, error) {
	return c.httpClient.POST(ctx, fmt.Sprintf("/api/v1/reservations/id/%d/pay", id), nil)
}

func (c *ReservationClient) Cancel(ctx context.Context, id int64) (*Response, error) {
	return c.httpClient.POST(ctx, fmt.Sprintf("/api/v1/reservations/id/%d/cancel", id), nil)
}
