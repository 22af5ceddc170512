package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tunestudio/pkg/model"
)

func TestCallbacksClientCreateSignsBody(t *testing.T) {
	const secret = "form-secret"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/callbacks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		if got, want := r.Header.Get(HeaderSiteSignature), hex.EncodeToString(mac.Sum(nil)); got != want {
			t.Errorf("signature = %q, want %q", got, want)
		}

		var cb model.CallbackRequest
		if err := json.Unmarshal(body, &cb); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		cb.ID = "65f0c0ffee0000000000abcd"
		cb.Status = model.CallbackStatusNew

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": cb})
	}))
	defer server.Close()

	c := NewCallbacksClient(server.URL, secret)
	got, err := c.Create(context.Background(), &model.CallbackRequest{Name: "Ivan", Phone: "+7 (929) 123-45-67"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.ID != "65f0c0ffee0000000000abcd" || got.Status != model.CallbackStatusNew {
		t.Errorf("Create() = %+v", got)
	}
}

func TestCallbacksClientUnsignedWithoutSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sig := r.Header.Get(HeaderSiteSignature); sig != "" {
			t.Errorf("unexpected signature %q", sig)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"name":"Ivan"}}`))
	}))
	defer server.Close()

	if _, err := NewCallbacksClient(server.URL, "").Create(context.Background(), &model.CallbackRequest{Name: "Ivan"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestClientsClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Client with id 'x' not found","code":"NOT_FOUND"}`))
	}))
	defer server.Close()

	_, err := NewClientsClient(server.URL).GetByID(context.Background(), "x")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", statusErr.StatusCode)
	}
	if statusErr.Message != "Client with id 'x' not found" {
		t.Errorf("message = %q", statusErr.Message)
	}
}

func TestClientsClientGetByPhone(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":{"name":"Ivan","phone":"+7 (929) 123-45-67"}}`))
	}))
	defer server.Close()

	got, err := NewClientsClient(server.URL).GetByPhone(context.Background(), "+7 (929) 123-45-67")
	if err != nil {
		t.Fatalf("GetByPhone() error = %v", err)
	}
	if got.Phone != "+7 (929) 123-45-67" {
		t.Errorf("phone = %q", got.Phone)
	}
	if gotPath != "/api/v1/clients/phone/+7 (929) 123-45-67" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestOrdersClientListQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "pending" || q.Get("client_id") != "abc" || q.Get("limit") != "5" || q.Get("offset") != "10" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":[{"number":"ORD-1A2B3C4D"}],"total_count":11,"limit":5,"offset":10}`))
	}))
	defer server.Close()

	orders, meta, err := NewOrdersClient(server.URL).List(context.Background(), OrderListOptions{
		Status:   "pending",
		ClientID: "abc",
		Limit:    5,
		Offset:   10,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(orders) != 1 || orders[0].Number != "ORD-1A2B3C4D" {
		t.Errorf("orders = %+v", orders)
	}
	if meta.TotalCount != 11 || meta.Limit != 5 || meta.Offset != 10 {
		t.Errorf("metadata = %+v", meta)
	}
}
