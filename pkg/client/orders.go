package client

import (
	"context"
	"fmt"
	"net/url"

	"tunestudio/pkg/model"
)

const ordersPath = "/api/v1/orders"

type OrdersClient struct {
	httpClient *HttpClient
}

func NewOrdersClient(baseURL string) *OrdersClient {
	return &OrdersClient{httpClient: NewHttpClient(baseURL)}
}

func (c *OrdersClient) Create(ctx context.Context, in *model.Order) (*model.Order, error) {
	resp, err := expect(c.httpClient.POST(ctx, ordersPath, in))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Order](resp)
}

type OrderListOptions struct {
	Status   string
	ClientID string
	Limit    int
	Offset   int64
}

func (c *OrdersClient) List(ctx context.Context, opts OrderListOptions) ([]model.Order, *Metadata, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.ClientID != "" {
		q.Set("client_id", opts.ClientID)
	}
	q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	q.Set("offset", fmt.Sprintf("%d", opts.Offset))

	resp, err := expect(c.httpClient.GET(ctx, ordersPath+"?"+q.Encode()))
	if err != nil {
		return nil, nil, err
	}
	return decodePage[model.Order](resp)
}

func (c *OrdersClient) Get(ctx context.Context, id string) (*model.Order, error) {
	resp, err := expect(c.httpClient.GET(ctx, ordersPath+"/id/"+url.PathEscape(id)))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Order](resp)
}

func (c *OrdersClient) Update(ctx context.Context, id string, update *model.OrderUpdate) (*model.Order, error) {
	resp, err := expect(c.httpClient.PATCH(ctx, ordersPath+"/id/"+url.PathEscape(id), update))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Order](resp)
}

func (c *OrdersClient) Delete(ctx context.Context, id string) error {
	_, err := expect(c.httpClient.DELETE(ctx, ordersPath+"/id/"+url.PathEscape(id)))
	return err
}
