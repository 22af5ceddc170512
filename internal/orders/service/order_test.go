package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	clientserrors "tunestudio/internal/clients/errors"
	orderserrors "tunestudio/internal/orders/errors"
	"tunestudio/internal/orders/repository"
	"tunestudio/internal/orders/validator"
	"tunestudio/pkg/config"
	"tunestudio/pkg/contracts"
	apperrors "tunestudio/pkg/errors"
	"tunestudio/pkg/kafka"
	"tunestudio/pkg/logger"
	"tunestudio/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	orderID  = "65a1f0c2e4b0a1b2c3d4e5f6"
	clientID = "65a1f0c2e4b0a1b2c3d4e5aa"
)

type mockOrderRepository struct {
	created  []*model.Order
	stored   *model.Order
	updated  *model.Order
	expected string

	createFunc func(ctx context.Context, o *model.Order) error
	updateFunc func(ctx context.Context, id, expectedStatus string, o *model.Order) error
	countFunc  func(ctx context.Context, f repository.Filter) (int64, error)
	findAll    func(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Order, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, o *model.Order) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, o); err != nil {
			return err
		}
	}
	o.ID = orderID
	cp := *o
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	if m.stored == nil {
		return nil, fmt.Errorf("%w: %s", orderserrors.ErrNotFound, id)
	}
	cp := *m.stored
	return &cp, nil
}

func (m *mockOrderRepository) FindAll(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Order, error) {
	if m.findAll != nil {
		return m.findAll(ctx, f, limit, offset)
	}
	return []*model.Order{}, nil
}

func (m *mockOrderRepository) Count(ctx context.Context, f repository.Filter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, f)
	}
	return 0, nil
}

func (m *mockOrderRepository) Update(ctx context.Context, id, expectedStatus string, o *model.Order) error {
	m.expected = expectedStatus
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, expectedStatus, o)
	}
	m.updated = o
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id string) error {
	return nil
}

type mockClients struct {
	byID    map[string]*model.Client
	byPhone map[string]*model.Client
	err     error
}

func (m *mockClients) FindByID(ctx context.Context, id string) (*model.Client, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", clientserrors.ErrNotFound, id)
}

func (m *mockClients) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.byPhone[phone]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", clientserrors.ErrNotFound, phone)
}

type recordingPublisher struct {
	messages []kafka.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func knownClient() *model.Client {
	return &model.Client{
		ID:    clientID,
		Name:  "Anna",
		Phone: "+7 (929) 123-45-67",
		Cars:  []model.Car{{Make: "VW", Model: "Golf GTI", Year: 2018}},
	}
}

func newTestService(repo *mockOrderRepository, events kafka.Publisher) *orderService {
	c := knownClient()
	clients := &mockClients{
		byID:    map[string]*model.Client{c.ID: c},
		byPhone: map[string]*model.Client{c.Phone: c},
	}
	cfg := &config.Config{
		Log:                  logger.Discard(),
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		OrderTopic:           "studio.orders",
		DefaultOrderCurrency: "RUB",
	}
	return NewOrderService(repo, clients, validator.NewOrderValidator(), events, cfg).(*orderService)
}

func requireStatus(t *testing.T, err error, status int) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, status, appErr.StatusCode(), appErr.Message)
	return appErr
}

func TestNewNumber(t *testing.T) {
	re := regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewNumber()
		assert.Regexp(t, re, n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestCreate_ResolvesClientByPhone(t *testing.T) {
	repo := &mockOrderRepository{}
	svc := newTestService(repo, nil)

	o := &model.Order{
		ClientPhone: "8 929 123 45 67",
		Items: []model.OrderItem{
			{Service: "  Stage 1 ECU remap ", Price: 25000},
			{Service: "Dyno run", Price: 5000},
		},
		Total:  1,
		Status: model.OrderStatusDone,
	}
	require.NoError(t, svc.Create(context.Background(), o))

	assert.Equal(t, clientID, o.ClientID)
	assert.Equal(t, "+7 (929) 123-45-67", o.ClientPhone)
	assert.Equal(t, int64(30000), o.Total)
	assert.Equal(t, "RUB", o.Currency)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, "Stage 1 ECU remap", o.Items[0].Service)
	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, o.Number)

	require.NotNil(t, o.Car, "single client car should be used by default")
	assert.Equal(t, "Golf GTI", o.Car.Model)
}

func TestCreate_ResolvesClientByID(t *testing.T) {
	svc := newTestService(&mockOrderRepository{}, nil)

	o := &model.Order{
		ClientID: clientID,
		Currency: "usd",
		Items:    []model.OrderItem{{Service: "Chip tuning", Price: 100}},
	}
	require.NoError(t, svc.Create(context.Background(), o))
	assert.Equal(t, "+7 (929) 123-45-67", o.ClientPhone)
	assert.Equal(t, "USD", o.Currency)
}

func TestCreate_ClientResolutionErrors(t *testing.T) {
	tests := []struct {
		name   string
		order  model.Order
		status int
	}{
		{
			name:   "neither id nor phone",
			order:  model.Order{Items: []model.OrderItem{{Service: "Dyno", Price: 1}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown phone",
			order:  model.Order{ClientPhone: "+7 900 000 00 00", Items: []model.OrderItem{{Service: "Dyno", Price: 1}}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "garbage phone",
			order:  model.Order{ClientPhone: "12-34", Items: []model.OrderItem{{Service: "Dyno", Price: 1}}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown id",
			order:  model.Order{ClientID: "65a1f0c2e4b0a1b2c3d4e5bb", Items: []model.OrderItem{{Service: "Dyno", Price: 1}}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "no items",
			order:  model.Order{ClientID: clientID},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepository{}
			err := newTestService(repo, nil).Create(context.Background(), &tt.order)
			requireStatus(t, err, tt.status)
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreate_RegeneratesNumberOnCollision(t *testing.T) {
	calls := 0
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *model.Order) error {
			calls++
			if calls == 1 {
				return fmt.Errorf("%w: %s", orderserrors.ErrDuplicateNumber, o.Number)
			}
			return nil
		},
	}
	svc := newTestService(repo, nil)
	numbers := []string{"ORD-AAAAAAAA", "ORD-BBBBBBBB"}
	svc.newNumber = func() string {
		n := numbers[0]
		numbers = numbers[1:]
		return n
	}

	o := &model.Order{ClientID: clientID, Items: []model.OrderItem{{Service: "Dyno", Price: 1}}}
	require.NoError(t, svc.Create(context.Background(), o))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "ORD-BBBBBBBB", o.Number)
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *model.Order) error {
			return orderserrors.ErrDuplicateNumber
		},
	}
	err := newTestService(repo, nil).Create(context.Background(), &model.Order{
		ClientID: clientID,
		Items:    []model.OrderItem{{Service: "Dyno", Price: 1}},
	})
	requireStatus(t, err, http.StatusInternalServerError)
}

func storedOrder(status string) *model.Order {
	return &model.Order{
		ID:          orderID,
		Number:      "ORD-1A2B3C4D",
		ClientID:    clientID,
		ClientPhone: "+7 (929) 123-45-67",
		Items:       []model.OrderItem{{Service: "Stage 1", Price: 25000}},
		Total:       25000,
		Currency:    "RUB",
		Status:      status,
	}
}

func TestUpdate_StatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		status   int
	}{
		{model.OrderStatusPending, model.OrderStatusInProgress, http.StatusOK},
		{model.OrderStatusPending, model.OrderStatusCancelled, http.StatusOK},
		{model.OrderStatusInProgress, model.OrderStatusDone, http.StatusOK},
		{model.OrderStatusInProgress, model.OrderStatusCancelled, http.StatusOK},
		{model.OrderStatusPending, model.OrderStatusDone, http.StatusConflict},
		{model.OrderStatusInProgress, model.OrderStatusPending, http.StatusConflict},
		{model.OrderStatusDone, model.OrderStatusCancelled, http.StatusConflict},
		{model.OrderStatusCancelled, model.OrderStatusPending, http.StatusConflict},
		{model.OrderStatusPending, "shipped", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			events := &recordingPublisher{}
			repo := &mockOrderRepository{stored: storedOrder(tt.from)}
			o, err := newTestService(repo, events).Update(context.Background(), orderID, &model.OrderUpdate{Status: tt.to})

			if tt.status != http.StatusOK {
				requireStatus(t, err, tt.status)
				assert.Nil(t, repo.updated)
				assert.Empty(t, events.messages)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, o.Status)
			assert.Equal(t, tt.from, repo.expected, "update must be conditional on the old status")

			require.Len(t, events.messages, 1)
			msg := events.messages[0]
			assert.Equal(t, "studio.orders", msg.Topic)
			assert.Equal(t, contracts.EventOrderStatusChanged, msg.Headers[kafka.HeaderEventType])

			var payload contracts.OrderStatusChanged
			require.NoError(t, json.Unmarshal(msg.Value, &payload))
			assert.Equal(t, tt.from, payload.From)
			assert.Equal(t, tt.to, payload.To)
			assert.Equal(t, "ORD-1A2B3C4D", payload.Number)
		})
	}
}

func TestUpdate_ItemsRecalculateTotal(t *testing.T) {
	events := &recordingPublisher{}
	repo := &mockOrderRepository{stored: storedOrder(model.OrderStatusInProgress)}

	items := []model.OrderItem{
		{Service: "Stage 2", Price: 45000},
		{Service: "Downpipe", Price: 30000},
	}
	o, err := newTestService(repo, events).Update(context.Background(), orderID, &model.OrderUpdate{Items: &items})
	require.NoError(t, err)

	assert.Equal(t, int64(75000), o.Total)
	assert.Equal(t, model.OrderStatusInProgress, o.Status)
	assert.Empty(t, events.messages, "no status change, no event")
}

func TestUpdate_TerminalOrderIsFrozen(t *testing.T) {
	repo := &mockOrderRepository{stored: storedOrder(model.OrderStatusDone)}
	comment := "late note"

	_, err := newTestService(repo, nil).Update(context.Background(), orderID, &model.OrderUpdate{Comment: &comment})
	requireStatus(t, err, http.StatusConflict)

	o, err := newTestService(repo, nil).Update(context.Background(), orderID, &model.OrderUpdate{Status: "DONE"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDone, o.Status)
	assert.Nil(t, repo.updated)
}

func TestUpdate_ConcurrentStatusChange(t *testing.T) {
	repo := &mockOrderRepository{
		stored: storedOrder(model.OrderStatusPending),
		updateFunc: func(ctx context.Context, id, expectedStatus string, o *model.Order) error {
			return fmt.Errorf("%w: %s", orderserrors.ErrStatusChanged, id)
		},
	}
	_, err := newTestService(repo, nil).Update(context.Background(), orderID, &model.OrderUpdate{Status: model.OrderStatusInProgress})
	requireStatus(t, err, http.StatusConflict)
}

func TestUpdate_NotFound(t *testing.T) {
	_, err := newTestService(&mockOrderRepository{}, nil).Update(context.Background(), orderID, &model.OrderUpdate{})
	requireStatus(t, err, http.StatusNotFound)
}

func TestGetAll(t *testing.T) {
	var seen repository.Filter
	repo := &mockOrderRepository{
		countFunc: func(ctx context.Context, f repository.Filter) (int64, error) {
			return 2, nil
		},
		findAll: func(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Order, error) {
			seen = f
			return []*model.Order{storedOrder(model.OrderStatusPending)}, nil
		},
	}
	svc := newTestService(repo, nil)

	filter := repository.Filter{Status: model.OrderStatusPending, ClientID: clientID}
	orders, total, err := svc.GetAll(context.Background(), filter, 10, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, filter, seen)

	_, _, err = svc.GetAll(context.Background(), repository.Filter{Status: "lost"}, 10, 0)
	requireStatus(t, err, http.StatusBadRequest)

	repo.countFunc = func(ctx context.Context, f repository.Filter) (int64, error) {
		return 0, errors.New("boom")
	}
	_, _, err = svc.GetAll(context.Background(), repository.Filter{}, 10, 0)
	requireStatus(t, err, http.StatusInternalServerError)
}
