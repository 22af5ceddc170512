package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	clientserrors "tunestudio/internal/clients/errors"
	"tunestudio/internal/clients/validator"
	"tunestudio/pkg/config"
	mongotx "tunestudio/pkg/db/mongo"
	apperrors "tunestudio/pkg/errors"
	"tunestudio/pkg/kafka"
	"tunestudio/pkg/logger"
	"tunestudio/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockClientRepository struct {
	createFunc      func(ctx context.Context, c *model.Client) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Client, error)
	findByPhoneFunc func(ctx context.Context, phone string) (*model.Client, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Client, error)
	countFunc       func(ctx context.Context) (int64, error)
	updateFunc      func(ctx context.Context, id string, c *model.Client) error
	deleteFunc      func(ctx context.Context, id string) error
	searchFunc      func(ctx context.Context, name, digits string, limit int) ([]*model.Client, error)
}

func (m *mockClientRepository) Create(ctx context.Context, c *model.Client) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	c.ID = "65a1f0c2e4b0a1b2c3d4e5f6"
	return nil
}

func (m *mockClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", clientserrors.ErrNotFound, id)
}

func (m *mockClientRepository) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	if m.findByPhoneFunc != nil {
		return m.findByPhoneFunc(ctx, phone)
	}
	return nil, fmt.Errorf("%w: %s", clientserrors.ErrNotFound, phone)
}

func (m *mockClientRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Client, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Client{}, nil
}

func (m *mockClientRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockClientRepository) Update(ctx context.Context, id string, c *model.Client) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, c)
	}
	return nil
}

func (m *mockClientRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockClientRepository) Search(ctx context.Context, name, digits string, limit int) ([]*model.Client, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, name, digits, limit)
	}
	return []*model.Client{}, nil
}

func (m *mockClientRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Log:          logger.Discard(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		ClientTopic:  "studio.clients",
	}
}

func newTestService(repo *mockClientRepository, events kafka.Publisher) ClientService {
	return NewClientService(repo, validator.NewClientValidator(), events, testConfig())
}

func requireAppError(t *testing.T, err error, status int) {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError with status %d, got %v", status, err)
	}
	if appErr.StatusCode() != status {
		t.Fatalf("expected status %d, got %d (%s)", status, appErr.StatusCode(), appErr.Message)
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_CanonicalizesPhoneAndDerivesLocale(t *testing.T) {
	var stored *model.Client
	repo := &mockClientRepository{
		createFunc: func(ctx context.Context, c *model.Client) error {
			stored = c
			c.ID = "65a1f0c2e4b0a1b2c3d4e5f6"
			return nil
		},
	}
	events := &recordingPublisher{}
	svc := newTestService(repo, events)

	c := &model.Client{
		Name:  "  ivan   petrov ",
		Phone: "8 929 123 45 67",
		Email: "Ivan@Example.RU",
	}
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("expected repository Create to be called")
	}
	if stored.Phone != "+7 (929) 123-45-67" {
		t.Errorf("phone = %q, want display form", stored.Phone)
	}
	if stored.PhoneDigits != "79291234567" {
		t.Errorf("phone digits = %q", stored.PhoneDigits)
	}
	if stored.Email != "ivan@example.ru" {
		t.Errorf("email = %q", stored.Email)
	}
	if stored.Region != "RU" || stored.TimeZone != "Europe/Moscow" {
		t.Errorf("locale = %q/%q, want RU/Europe/Moscow", stored.Region, stored.TimeZone)
	}

	if len(events.messages) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.messages))
	}
	if events.messages[0].Topic != "studio.clients" {
		t.Errorf("event topic = %q", events.messages[0].Topic)
	}
	if string(events.messages[0].Key) != "65a1f0c2e4b0a1b2c3d4e5f6" {
		t.Errorf("event key = %q", events.messages[0].Key)
	}
}

func TestCreate_DuplicatePhoneIsConflict(t *testing.T) {
	var lookedUp string
	repo := &mockClientRepository{
		findByPhoneFunc: func(ctx context.Context, phone string) (*model.Client, error) {
			lookedUp = phone
			return &model.Client{ID: "65a1f0c2e4b0a1b2c3d4e5aa", Phone: phone}, nil
		},
		createFunc: func(ctx context.Context, c *model.Client) error {
			t.Fatal("Create must not be called for a duplicate phone")
			return nil
		},
	}
	events := &recordingPublisher{}
	svc := newTestService(repo, events)

	err := svc.Create(context.Background(), &model.Client{Name: "Anna", Phone: "+7 929 123-45-67"})
	requireAppError(t, err, http.StatusConflict)

	if lookedUp != "+7 (929) 123-45-67" {
		t.Errorf("duplicate lookup used %q, want display form", lookedUp)
	}
	if len(events.messages) != 0 {
		t.Error("no event expected for a rejected client")
	}
}

func TestCreate_EquivalentSpellingsCollide(t *testing.T) {
	stored := map[string]*model.Client{}
	repo := &mockClientRepository{
		findByPhoneFunc: func(ctx context.Context, phone string) (*model.Client, error) {
			if c, ok := stored[phone]; ok {
				return c, nil
			}
			return nil, clientserrors.ErrNotFound
		},
		createFunc: func(ctx context.Context, c *model.Client) error {
			c.ID = "65a1f0c2e4b0a1b2c3d4e5f6"
			stored[c.Phone] = c
			return nil
		},
	}
	svc := newTestService(repo, nil)

	if err := svc.Create(context.Background(), &model.Client{Name: "Anna", Phone: "89291234567"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	for _, spelling := range []string{"9291234567", "+7 (929) 123-45-67", "7-929-123-45-67"} {
		err := svc.Create(context.Background(), &model.Client{Name: "Anna", Phone: spelling})
		requireAppError(t, err, http.StatusConflict)
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *model.Client
	}{
		{name: "missing name", client: &model.Client{Phone: "89291234567"}},
		{name: "short number", client: &model.Client{Name: "Anna", Phone: "12345"}},
		{name: "foreign number", client: &model.Client{Name: "Anna", Phone: "+44 20 7123 4567"}},
		{name: "region mismatch", client: &model.Client{Name: "Anna", Phone: "89291234567", Region: "KZ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockClientRepository{}, nil)
			err := svc.Create(context.Background(), tt.client)
			requireAppError(t, err, http.StatusUnprocessableEntity)
		})
	}
}

func TestCreate_RepositoryFailureIsInternal(t *testing.T) {
	repo := &mockClientRepository{
		createFunc: func(ctx context.Context, c *model.Client) error {
			return errors.New("connection reset")
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Create(context.Background(), &model.Client{Name: "Anna", Phone: "89291234567"})
	requireAppError(t, err, http.StatusInternalServerError)
}

// ────────────────────────────────────────────────
// Lookups
// ────────────────────────────────────────────────

func TestGetByPhone(t *testing.T) {
	repo := &mockClientRepository{
		findByPhoneFunc: func(ctx context.Context, phone string) (*model.Client, error) {
			if phone == "+7 (929) 123-45-67" {
				return &model.Client{ID: "1", Phone: phone}, nil
			}
			return nil, clientserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, nil)

	c, err := svc.GetByPhone(context.Background(), "8 (929) 123-45-67")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "1" {
		t.Errorf("got client %q", c.ID)
	}

	_, err = svc.GetByPhone(context.Background(), "+7 (999) 000-00-00")
	requireAppError(t, err, http.StatusNotFound)

	_, err = svc.GetByPhone(context.Background(), "123")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		repo   error
		status int
	}{
		{name: "not found", repo: fmt.Errorf("%w: x", clientserrors.ErrNotFound), status: http.StatusNotFound},
		{name: "invalid id", repo: fmt.Errorf("%w: x", clientserrors.ErrInvalidID), status: http.StatusBadRequest},
		{name: "other", repo: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockClientRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
					return nil, tt.repo
				},
			}
			_, err := newTestService(repo, nil).GetByID(context.Background(), "x")
			requireAppError(t, err, tt.status)
		})
	}

	_, err := newTestService(&mockClientRepository{}, nil).GetByID(context.Background(), "")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestGetAll_NormalizesPagination(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	repo := &mockClientRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			time.Sleep(5 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Client, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.Client{{ID: "1"}}, nil
		},
	}
	svc := newTestService(repo, nil)

	clients, count, err := svc.GetAll(context.Background(), 1000, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 || len(clients) != 1 {
		t.Errorf("got %d clients, count %d", len(clients), count)
	}
	if gotLimit != config.DefaultPaginationLimit || gotOffset != 0 {
		t.Errorf("repository got limit=%d offset=%d", gotLimit, gotOffset)
	}
}

func TestGetAll_CountFailure(t *testing.T) {
	repo := &mockClientRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("count failed")
		},
	}
	_, _, err := newTestService(repo, nil).GetAll(context.Background(), 10, 0)
	requireAppError(t, err, http.StatusInternalServerError)
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func existingClient() *model.Client {
	return &model.Client{
		ID:          "65a1f0c2e4b0a1b2c3d4e5f6",
		Name:        "Anna",
		Phone:       "+7 (929) 123-45-67",
		PhoneDigits: "79291234567",
		Region:      "RU",
		TimeZone:    "Europe/Moscow",
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpdate_MergesAndRederivesLocale(t *testing.T) {
	var saved *model.Client
	repo := &mockClientRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
			return existingClient(), nil
		},
		updateFunc: func(ctx context.Context, id string, c *model.Client) error {
			saved = c
			return nil
		},
	}
	svc := newTestService(repo, nil)

	notes := "  prefers   morning visits "
	updated, err := svc.Update(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6", &model.ClientUpdate{
		Phone: "87012345678",
		Notes: &notes,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || updated != saved {
		t.Fatal("expected the merged client to be saved and returned")
	}
	if saved.Phone != "+7 (701) 234-56-78" {
		t.Errorf("phone = %q", saved.Phone)
	}
	if saved.Region != "KZ" {
		t.Errorf("region = %q, want KZ", saved.Region)
	}
	if saved.Name != "Anna" {
		t.Errorf("name should be untouched, got %q", saved.Name)
	}
	if !saved.CreatedAt.Equal(existingClient().CreatedAt) {
		t.Error("created_at must be preserved")
	}
}

func TestUpdate_PhoneTakenByAnotherClient(t *testing.T) {
	repo := &mockClientRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
			return existingClient(), nil
		},
		findByPhoneFunc: func(ctx context.Context, phone string) (*model.Client, error) {
			return &model.Client{ID: "65a1f0c2e4b0a1b2c3d4e5aa", Phone: phone}, nil
		},
		updateFunc: func(ctx context.Context, id string, c *model.Client) error {
			t.Fatal("Update must not be called when the phone is taken")
			return nil
		},
	}

	_, err := newTestService(repo, nil).Update(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6", &model.ClientUpdate{
		Phone: "9001112233",
	})
	requireAppError(t, err, http.StatusConflict)
}

func TestUpdate_SamePhoneSkipsDuplicateCheck(t *testing.T) {
	repo := &mockClientRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
			return existingClient(), nil
		},
		findByPhoneFunc: func(ctx context.Context, phone string) (*model.Client, error) {
			t.Fatal("phone lookup not expected")
			return nil, nil
		},
	}

	_, err := newTestService(repo, nil).Update(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6", &model.ClientUpdate{
		Phone: "8 929 123 45 67",
		Name:  "Anna Smirnova",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ────────────────────────────────────────────────
// Delete / Search
// ────────────────────────────────────────────────

func TestDelete_NotFound(t *testing.T) {
	repo := &mockClientRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return fmt.Errorf("%w: %s", clientserrors.ErrNotFound, id)
		},
	}
	err := newTestService(repo, nil).Delete(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6")
	requireAppError(t, err, http.StatusNotFound)
}

func TestSearch_RoutesQueryByShape(t *testing.T) {
	tests := []struct {
		query      string
		wantName   string
		wantDigits string
	}{
		{query: "8 929 12", wantDigits: "792912"},
		{query: "+7 (929)", wantDigits: "7929"},
		{query: "  Petrov ", wantName: "Petrov"},
		{query: "BMW X5 2019", wantName: "BMW X5 2019"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var gotName, gotDigits string
			repo := &mockClientRepository{
				searchFunc: func(ctx context.Context, name, digits string, limit int) ([]*model.Client, error) {
					gotName, gotDigits = name, digits
					return []*model.Client{}, nil
				},
			}
			if _, err := newTestService(repo, nil).Search(context.Background(), tt.query); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotName != tt.wantName || gotDigits != tt.wantDigits {
				t.Errorf("Search(%q) -> name=%q digits=%q, want name=%q digits=%q",
					tt.query, gotName, gotDigits, tt.wantName, tt.wantDigits)
			}
		})
	}

	_, err := newTestService(&mockClientRepository{}, nil).Search(context.Background(), "   ")
	requireAppError(t, err, http.StatusBadRequest)
}
