package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"

	"tunestudio/pkg/model"
)

const callbacksPath = "/api/v1/callbacks"

type CallbacksClient struct {
	httpClient *HttpClient
	secret     string
}

// NewCallbacksClient returns a client that signs submissions with secret the
// same way the marketing site does. An empty secret sends unsigned requests.
func NewCallbacksClient(baseURL, secret string) *CallbacksClient {
	return &CallbacksClient{
		httpClient: NewHttpClient(baseURL),
		secret:     secret,
	}
}

func (c *CallbacksClient) Create(ctx context.Context, in *model.CallbackRequest) (*model.CallbackRequest, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal callback request: %w", err)
	}

	headers := map[string]string{}
	if c.secret != "" {
		headers[HeaderSiteSignature] = sign(body, c.secret)
	}

	resp, err := expect(c.httpClient.POSTRaw(ctx, callbacksPath, body, headers))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.CallbackRequest](resp)
}

// List returns callback requests, optionally filtered by status.
func (c *CallbacksClient) List(ctx context.Context, status string, limit int, offset int64) ([]model.CallbackRequest, *Metadata, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	resp, err := expect(c.httpClient.GET(ctx, callbacksPath+"?"+q.Encode()))
	if err != nil {
		return nil, nil, err
	}
	return decodePage[model.CallbackRequest](resp)
}

func (c *CallbacksClient) GetByID(ctx context.Context, id string) (*model.CallbackRequest, error) {
	resp, err := expect(c.httpClient.GET(ctx, callbacksPath+"/id/"+url.PathEscape(id)))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.CallbackRequest](resp)
}

func (c *CallbacksClient) UpdateStatus(ctx context.Context, id, status string) (*model.CallbackRequest, error) {
	path := callbacksPath + "/id/" + url.PathEscape(id) + "/status"
	resp, err := expect(c.httpClient.PATCH(ctx, path, model.CallbackStatusUpdate{Status: status}))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.CallbackRequest](resp)
}

func (c *CallbacksClient) Delete(ctx context.Context, id string) error {
	_, err := expect(c.httpClient.DELETE(ctx, callbacksPath+"/id/"+url.PathEscape(id)))
	return err
}

// sign must stay in step with middleware.Sign on the server.
func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
