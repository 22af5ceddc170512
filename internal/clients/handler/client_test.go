package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	apperrors "tunestudio/pkg/errors"
	httputil "tunestudio/pkg/http"
	"tunestudio/pkg/logger"
	"tunestudio/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockClientService struct {
	createFunc     func(ctx context.Context, c *model.Client) error
	getByIDFunc    func(ctx context.Context, id string) (*model.Client, error)
	getByPhoneFunc func(ctx context.Context, raw string) (*model.Client, error)
	getAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Client, int64, error)
	updateFunc     func(ctx context.Context, id string, u *model.ClientUpdate) (*model.Client, error)
	deleteFunc     func(ctx context.Context, id string) error
	searchFunc     func(ctx context.Context, q string) ([]*model.Client, error)
}

func (m *mockClientService) Create(ctx context.Context, c *model.Client) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	return nil
}

func (m *mockClientService) GetByID(ctx context.Context, id string) (*model.Client, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Client{ID: id}, nil
}

func (m *mockClientService) GetByPhone(ctx context.Context, raw string) (*model.Client, error) {
	if m.getByPhoneFunc != nil {
		return m.getByPhoneFunc(ctx, raw)
	}
	return nil, nil
}

func (m *mockClientService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Client, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Client{}, 0, nil
}

func (m *mockClientService) Update(ctx context.Context, id string, u *model.ClientUpdate) (*model.Client, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, u)
	}
	return &model.Client{ID: id}, nil
}

func (m *mockClientService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockClientService) Search(ctx context.Context, q string) ([]*model.Client, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, q)
	}
	return []*model.Client{}, nil
}

func newRouter(svc *mockClientService) *httprouter.Router {
	router := httprouter.New()
	NewClientHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate(t *testing.T) {
	svc := &mockClientService{
		createFunc: func(ctx context.Context, c *model.Client) error {
			c.ID = "65a1f0c2e4b0a1b2c3d4e5f6"
			c.Phone = "+7 (929) 123-45-67"
			return nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(`{"name":"Anna","phone":"89291234567"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data model.Client `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Phone != "+7 (929) 123-45-67" {
		t.Errorf("phone = %q", body.Data.Phone)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	router := newRouter(&mockClientService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(`{"name":`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCreate_ConflictPassesThrough(t *testing.T) {
	svc := &mockClientService{
		createFunc: func(ctx context.Context, c *model.Client) error {
			return apperrors.Conflict("Client with this phone already exists")
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(`{"name":"Anna","phone":"89291234567"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body httputil.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != apperrors.CodeConflict {
		t.Errorf("code = %q", body.Code)
	}
}

func TestGetAll_InvalidQueryParameters(t *testing.T) {
	called := false
	svc := &mockClientService{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Client, int64, error) {
			called = true
			return nil, 0, nil
		},
	}
	router := newRouter(svc)

	for _, q := range []string{"?limit=abc", "?offset=xyz"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clients"+q, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
	if called {
		t.Error("service must not be called for invalid pagination")
	}
}

func TestGetAll_Paginated(t *testing.T) {
	svc := &mockClientService{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Client, int64, error) {
			return []*model.Client{{ID: "1"}, {ID: "2"}}, 7, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients?limit=2&offset=4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body httputil.PaginatedResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 7 || body.Limit != 2 || body.Offset != 4 {
		t.Errorf("unexpected page metadata: %+v", body)
	}
}

func TestGetByPhone_PassesRawValue(t *testing.T) {
	var got string
	svc := &mockClientService{
		getByPhoneFunc: func(ctx context.Context, raw string) (*model.Client, error) {
			got = raw
			return &model.Client{ID: "1", Phone: "+7 (929) 123-45-67"}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/phone/"+url.PathEscape("8 (929) 123-45-67"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != "8 (929) 123-45-67" {
		t.Errorf("service got %q", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockClientService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
			return nil, apperrors.NotFoundWithID("Client", id)
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/id/65a1f0c2e4b0a1b2c3d4e5f6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	var updatedName string
	svc := &mockClientService{
		updateFunc: func(ctx context.Context, id string, u *model.ClientUpdate) (*model.Client, error) {
			updatedName = u.Name
			return &model.Client{ID: id, Name: u.Name}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/clients/id/65a1f0c2e4b0a1b2c3d4e5f6", strings.NewReader(`{"name":"Anna Smirnova"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH expected 200, got %d", w.Code)
	}
	if updatedName != "Anna Smirnova" {
		t.Errorf("service got name %q", updatedName)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/clients/id/65a1f0c2e4b0a1b2c3d4e5f6", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE expected 204, got %d", w.Code)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	var got string
	svc := &mockClientService{
		searchFunc: func(ctx context.Context, q string) ([]*model.Client, error) {
			got = q
			return []*model.Client{}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/clients/search?q="+url.QueryEscape("8 929"), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if got != "8 929" {
		t.Errorf("service got %q", got)
	}
}
