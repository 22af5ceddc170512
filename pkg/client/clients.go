package client

import (
	"context"
	"fmt"
	"net/url"

	"tunestudio/pkg/model"
)

const clientsPath = "/api/v1/clients"

type ClientsClient struct {
	httpClient *HttpClient
}

func NewClientsClient(baseURL string) *ClientsClient {
	return &ClientsClient{httpClient: NewHttpClient(baseURL)}
}

func (c *ClientsClient) Create(ctx context.Context, in *model.Client) (*model.Client, error) {
	resp, err := expect(c.httpClient.POST(ctx, clientsPath, in))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Client](resp)
}

func (c *ClientsClient) List(ctx context.Context, limit int, offset int64) ([]model.Client, *Metadata, error) {
	path := fmt.Sprintf("%s?limit=%d&offset=%d", clientsPath, limit, offset)
	resp, err := expect(c.httpClient.GET(ctx, path))
	if err != nil {
		return nil, nil, err
	}
	return decodePage[model.Client](resp)
}

func (c *ClientsClient) GetByID(ctx context.Context, id string) (*model.Client, error) {
	resp, err := expect(c.httpClient.GET(ctx, clientsPath+"/id/"+url.PathEscape(id)))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Client](resp)
}

// GetByPhone accepts the phone in any form the server can normalize.
func (c *ClientsClient) GetByPhone(ctx context.Context, phone string) (*model.Client, error) {
	resp, err := expect(c.httpClient.GET(ctx, clientsPath+"/phone/"+url.PathEscape(phone)))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Client](resp)
}

func (c *ClientsClient) Search(ctx context.Context, query string) ([]model.Client, error) {
	q := url.Values{}
	q.Set("q", query)
	resp, err := expect(c.httpClient.GET(ctx, clientsPath+"/search?"+q.Encode()))
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Client](resp)
}

func (c *ClientsClient) Update(ctx context.Context, id string, update *model.ClientUpdate) (*model.Client, error) {
	resp, err := expect(c.httpClient.PATCH(ctx, clientsPath+"/id/"+url.PathEscape(id), update))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Client](resp)
}

func (c *ClientsClient) Delete(ctx context.Context, id string) error {
	_, err := expect(c.httpClient.DELETE(ctx, clientsPath+"/id/"+url.PathEscape(id)))
	return err
}
