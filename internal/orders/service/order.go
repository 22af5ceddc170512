package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	clientserrors "tunestudio/internal/clients/errors"
	orderserrors "tunestudio/internal/orders/errors"
	"tunestudio/internal/orders/repository"
	"tunestudio/internal/orders/validator"
	"tunestudio/pkg/config"
	"tunestudio/pkg/contracts"
	apperrors "tunestudio/pkg/errors"
	"tunestudio/pkg/kafka"
	"tunestudio/pkg/model"
	"tunestudio/pkg/phone"
	"tunestudio/pkg/sanitizer"
	"tunestudio/pkg/validation"

	"github.com/google/uuid"
)

const (
	NumberPrefix = "ORD-"

	createAttempts = 3
)

// ClientLookup resolves the client an order belongs to. The clients
// repository satisfies it.
type ClientLookup interface {
	FindByID(ctx context.Context, id string) (*model.Client, error)
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)
}

type OrderService interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Order, int64, error)
	Update(ctx context.Context, id string, updates *model.OrderUpdate) (*model.Order, error)
	Delete(ctx context.Context, id string) error
}

type orderService struct {
	repo      repository.OrderRepository
	clients   ClientLookup
	validator *validator.OrderValidator
	events    kafka.Publisher
	cfg       *config.Config

	newNumber func() string
}

func NewOrderService(
	repo repository.OrderRepository,
	clients ClientLookup,
	validator *validator.OrderValidator,
	events kafka.Publisher,
	cfg *config.Config,
) OrderService {
	return &orderService{
		repo:      repo,
		clients:   clients,
		validator: validator,
		events:    events,
		cfg:       cfg,
		newNumber: NewNumber,
	}
}

// NewNumber returns a short human-friendly order number such as ORD-1A2B3C4D.
func NewNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return NumberPrefix + strings.ToUpper(id[:8])
}

func (s *orderService) Create(ctx context.Context, o *model.Order) error {
	client, err := s.resolveClient(ctx, o)
	if err != nil {
		return err
	}

	o.ClientID = client.ID
	o.ClientPhone = client.Phone
	if o.Car == nil && len(client.Cars) == 1 {
		car := client.Cars[0]
		o.Car = &car
	}
	s.sanitize(o)

	o.Currency = strings.ToUpper(strings.TrimSpace(o.Currency))
	if o.Currency == "" {
		o.Currency = s.cfg.DefaultOrderCurrency
	}
	o.Status = model.OrderStatusPending
	o.Total = o.CalculateTotal()

	for attempt := 1; ; attempt++ {
		o.Number = s.newNumber()

		if err := s.validator.Validate(o); err != nil {
			s.cfg.Log.Warn("Order validation failed",
				"client_id", o.ClientID,
				"error", err,
			)
			return validationError(err)
		}

		err := s.repo.Create(ctx, o)
		if err == nil {
			break
		}
		if errors.Is(err, orderserrors.ErrDuplicateNumber) && attempt < createAttempts {
			s.cfg.Log.Warn("Order number collision, regenerating", "number", o.Number, "attempt", attempt)
			continue
		}
		s.cfg.Log.Error("Failed to create order",
			"client_id", o.ClientID,
			"error", err,
		)
		return apperrors.Internal("Failed to create order", err)
	}

	s.cfg.Log.Info("Order created successfully",
		"id", o.ID,
		"number", o.Number,
		"client_id", o.ClientID,
		"total", o.Total,
		"currency", o.Currency,
	)

	return nil
}

// resolveClient finds the order's client by ID, or by phone when no ID was
// given. The phone may be in any spelling the formatter accepts.
func (s *orderService) resolveClient(ctx context.Context, o *model.Order) (*model.Client, error) {
	var (
		client *model.Client
		err    error
		field  string
	)

	switch {
	case strings.TrimSpace(o.ClientID) != "":
		field = "client_id"
		client, err = s.clients.FindByID(ctx, strings.TrimSpace(o.ClientID))
	case strings.TrimSpace(o.ClientPhone) != "":
		field = "client_phone"
		formatted := sanitizer.NormalizePhone(o.ClientPhone)
		if !phone.IsCanonical(phone.Normalize(formatted)) {
			return nil, apperrors.Validation("Order validation failed", map[string]any{
				"fields": map[string]any{"client_phone": "must be a valid phone number"},
			})
		}
		client, err = s.clients.FindByPhone(ctx, formatted)
	default:
		return nil, apperrors.InvalidInput("Either client_id or client_phone is required")
	}

	if err != nil {
		if errors.Is(err, clientserrors.ErrNotFound) || errors.Is(err, clientserrors.ErrInvalidID) {
			return nil, apperrors.Validation("Order validation failed", map[string]any{
				"fields": map[string]any{field: "does not match any client"},
			})
		}
		s.cfg.Log.Error("Failed to resolve order client",
			"field", field,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve client", err)
	}
	return client, nil
}

func (s *orderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Order ID cannot be empty")
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Failed to retrieve order", id, err)
	}
	return o, nil
}

func (s *orderService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Order, int64, error) {
	if filter.Status != "" && !validator.IsKnownStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown order status: %s", filter.Status))
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var orders []*model.Order
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count orders", "error", err)
			errCount = apperrors.Internal("Failed to count orders", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		orders, err = s.repo.FindAll(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get orders",
				"status", filter.Status,
				"client_id", filter.ClientID,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve orders", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return orders, count, nil
}

func (s *orderService) Update(ctx context.Context, id string, updates *model.OrderUpdate) (*model.Order, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Order ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Failed to check order existence", id, err)
	}

	updates.Status = strings.ToLower(strings.TrimSpace(updates.Status))
	statusChange := updates.Status != "" && updates.Status != existing.Status

	if validator.IsTerminal(existing.Status) {
		if statusChange {
			return nil, apperrors.InvalidTransition("Order", existing.Status, updates.Status)
		}
		if updates.Items != nil || updates.Car != nil || updates.Comment != nil {
			return nil, apperrors.Conflict(fmt.Sprintf("Order %s is %s and can no longer be changed", existing.Number, existing.Status))
		}
		return existing, nil
	}

	if statusChange && !validator.CanTransition(existing.Status, updates.Status) {
		if !validator.IsKnownStatus(updates.Status) {
			return nil, apperrors.Validation("Order validation failed", map[string]any{
				"fields": map[string]any{"status": "must be one of: pending, in_progress, done, cancelled"},
			})
		}
		return nil, apperrors.InvalidTransition("Order", existing.Status, updates.Status)
	}

	merged := mergeOrderUpdates(existing, updates)
	s.sanitize(merged)
	merged.Total = merged.CalculateTotal()

	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Order validation failed",
			"id", id,
			"error", err,
		)
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, id, existing.Status, merged); err != nil {
		if errors.Is(err, orderserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Order was modified concurrently, retry the update")
		}
		return nil, s.mapRepoError("Failed to update order", id, err)
	}

	s.cfg.Log.Info("Order updated successfully",
		"id", id,
		"number", merged.Number,
		"status", merged.Status,
		"total", merged.Total,
	)

	if statusChange {
		s.publishStatusChanged(ctx, existing.Status, merged)
	}

	return merged, nil
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Order ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError("Failed to delete order", id, err)
	}

	s.cfg.Log.Info("Order deleted successfully", "id", id)
	return nil
}

func (s *orderService) publishStatusChanged(ctx context.Context, from string, o *model.Order) {
	err := contracts.Publish(ctx, s.events, s.cfg.OrderTopic, contracts.EventOrderStatusChanged, o.ID, contracts.OrderStatusChanged{
		OrderID:     o.ID,
		Number:      o.Number,
		ClientPhone: o.ClientPhone,
		From:        from,
		To:          o.Status,
		ChangedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.cfg.Log.Error("Failed to publish order event",
			"id", o.ID,
			"event", contracts.EventOrderStatusChanged,
			"error", err,
		)
	}
}

func (s *orderService) mapRepoError(msg, id string, err error) error {
	switch {
	case errors.Is(err, orderserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Order", id)
	case errors.Is(err, orderserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid order ID format")
	}
	s.cfg.Log.Error(msg,
		"id", id,
		"error", err,
	)
	return apperrors.Internal(msg, err)
}

func (s *orderService) sanitize(o *model.Order) {
	o.Items = sanitizer.NormalizeOrderItems(o.Items)
	o.Comment = sanitizer.NormalizeText(o.Comment)
	if o.Car != nil {
		o.Car.Make = sanitizer.NormalizeName(o.Car.Make)
		o.Car.Model = sanitizer.NormalizeName(o.Car.Model)
		o.Car.VIN = sanitizer.NormalizeVIN(o.Car.VIN)
	}
}

func mergeOrderUpdates(existing *model.Order, updates *model.OrderUpdate) *model.Order {
	merged := *existing

	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Items != nil {
		merged.Items = *updates.Items
	}
	if updates.Car != nil {
		car := *updates.Car
		merged.Car = &car
	}
	if updates.Comment != nil {
		merged.Comment = *updates.Comment
	}

	return &merged
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Order validation failed", verrs.Details())
	}
	return apperrors.Validation("Order validation failed", map[string]any{
		"error": err.Error(),
	})
}
