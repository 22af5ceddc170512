package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "tunestudio/pkg/errors"
	"tunestudio/pkg/logger"
	"tunestudio/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockCallbackService struct {
	created      *model.CallbackRequest
	gotStatus    string
	updateStatus func(ctx context.Context, id string, u *model.CallbackStatusUpdate) (*model.CallbackRequest, error)
}

func (m *mockCallbackService) Create(ctx context.Context, cb *model.CallbackRequest) error {
	cb.ID = "65a1f0c2e4b0a1b2c3d4e5f6"
	m.created = cb
	return nil
}

func (m *mockCallbackService) GetByID(ctx context.Context, id string) (*model.CallbackRequest, error) {
	return nil, apperrors.NotFoundWithID("Callback request", id)
}

func (m *mockCallbackService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.CallbackRequest, int64, error) {
	m.gotStatus = status
	return []*model.CallbackRequest{}, 0, nil
}

func (m *mockCallbackService) UpdateStatus(ctx context.Context, id string, u *model.CallbackStatusUpdate) (*model.CallbackRequest, error) {
	if m.updateStatus != nil {
		return m.updateStatus(ctx, id, u)
	}
	return &model.CallbackRequest{ID: id, Status: u.Status}, nil
}

func (m *mockCallbackService) Delete(ctx context.Context, id string) error {
	return nil
}

func newRouter(svc *mockCallbackService) *httprouter.Router {
	router := httprouter.New()
	NewCallbackHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate(t *testing.T) {
	svc := &mockCallbackService{}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, CreatePath, strings.NewReader(`{"name":"Oleg","phone":"89291234567","message":"hi"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if svc.created == nil || svc.created.Phone != "89291234567" {
		t.Errorf("service got %+v", svc.created)
	}
}

func TestGetAll_LowercasesStatus(t *testing.T) {
	svc := &mockCallbackService{}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/callbacks?status=%20NEW%20", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.gotStatus != "new" {
		t.Errorf("status = %q", svc.gotStatus)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := &mockCallbackService{
		updateStatus: func(ctx context.Context, id string, u *model.CallbackStatusUpdate) (*model.CallbackRequest, error) {
			if u.Status == model.CallbackStatusNew {
				return nil, apperrors.InvalidTransition("Callback request", model.CallbackStatusClosed, u.Status)
			}
			return &model.CallbackRequest{ID: id, Status: u.Status}, nil
		},
	}
	router := newRouter(svc)

	tests := []struct {
		body string
		want int
	}{
		{body: `{"status":"Contacted"}`, want: http.StatusOK},
		{body: `{"status":"new"}`, want: http.StatusConflict},
		{body: `{"status":`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/callbacks/id/65a1f0c2e4b0a1b2c3d4e5f6/status", strings.NewReader(tt.body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.body, tt.want, w.Code)
		}
	}
}

func TestGetByIDAndDelete(t *testing.T) {
	router := newRouter(&mockCallbackService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/callbacks/id/65a1f0c2e4b0a1b2c3d4e5f6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET expected 404, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/callbacks/id/65a1f0c2e4b0a1b2c3d4e5f6", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE expected 204, got %d", w.Code)
	}
}
