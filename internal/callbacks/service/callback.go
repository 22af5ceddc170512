package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	callbackserrors "tunestudio/internal/callbacks/errors"
	"tunestudio/internal/callbacks/repository"
	"tunestudio/internal/callbacks/validator"
	clientserrors "tunestudio/internal/clients/errors"
	"tunestudio/pkg/config"
	"tunestudio/pkg/contracts"
	apperrors "tunestudio/pkg/errors"
	"tunestudio/pkg/kafka"
	"tunestudio/pkg/model"
	"tunestudio/pkg/phone"
	"tunestudio/pkg/sanitizer"
	"tunestudio/pkg/validation"
)

// ClientFinder resolves a stored client by phone in display form. The clients
// repository satisfies it.
type ClientFinder interface {
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)
}

type CallbackService interface {
	Create(ctx context.Context, cb *model.CallbackRequest) error
	GetByID(ctx context.Context, id string) (*model.CallbackRequest, error)
	GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.CallbackRequest, int64, error)
	UpdateStatus(ctx context.Context, id string, update *model.CallbackStatusUpdate) (*model.CallbackRequest, error)
	Delete(ctx context.Context, id string) error
}

type callbackService struct {
	repo      repository.CallbackRepository
	clients   ClientFinder
	validator *validator.CallbackValidator
	events    kafka.Publisher
	cfg       *config.Config
}

func NewCallbackService(
	repo repository.CallbackRepository,
	clients ClientFinder,
	validator *validator.CallbackValidator,
	events kafka.Publisher,
	cfg *config.Config,
) CallbackService {
	return &callbackService{
		repo:      repo,
		clients:   clients,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

func (s *callbackService) Create(ctx context.Context, cb *model.CallbackRequest) error {
	cb.Name = sanitizer.NormalizeName(cb.Name)
	cb.Phone = sanitizer.NormalizePhone(cb.Phone)
	cb.Message = sanitizer.NormalizeText(cb.Message)
	if cb.Source == "" {
		cb.Source = model.CallbackSourceSite
	}
	cb.Status = model.CallbackStatusNew
	cb.ClientID = ""

	if err := s.validator.Validate(cb); err != nil {
		s.cfg.Log.Warn("Callback request validation failed",
			"phone", cb.Phone,
			"source", cb.Source,
			"error", err,
		)
		return validationError(err)
	}

	s.linkClient(ctx, cb)

	if err := s.repo.Create(ctx, cb); err != nil {
		s.cfg.Log.Error("Failed to create callback request",
			"phone", cb.Phone,
			"error", err,
		)
		return apperrors.Internal("Failed to create callback request", err)
	}

	s.cfg.Log.Info("Callback request created",
		"id", cb.ID,
		"phone", cb.Phone,
		"source", cb.Source,
		"client_id", cb.ClientID,
	)

	err := contracts.Publish(ctx, s.events, s.cfg.CallbackTopic, contracts.EventCallbackRequested, phone.Normalize(cb.Phone), contracts.CallbackRequested{
		CallbackID: cb.ID,
		Name:       cb.Name,
		Phone:      cb.Phone,
		Message:    cb.Message,
		Source:     cb.Source,
		ClientID:   cb.ClientID,
		CreatedAt:  cb.CreatedAt,
	}, contracts.EventHeader{Key: contracts.HeaderCallbackSource, Value: cb.Source})
	if err != nil {
		s.cfg.Log.Error("Failed to publish callback event",
			"id", cb.ID,
			"event", contracts.EventCallbackRequested,
			"error", err,
		)
	}

	return nil
}

// linkClient attaches the ID of a known client with the same phone. Lookup
// failures are logged and leave the request unlinked.
func (s *callbackService) linkClient(ctx context.Context, cb *model.CallbackRequest) {
	if s.clients == nil {
		return
	}
	c, err := s.clients.FindByPhone(ctx, cb.Phone)
	if err != nil {
		if !errors.Is(err, clientserrors.ErrNotFound) {
			s.cfg.Log.Warn("Client lookup for callback request failed",
				"phone", cb.Phone,
				"error", err,
			)
		}
		return
	}
	cb.ClientID = c.ID
}

func (s *callbackService) GetByID(ctx context.Context, id string) (*model.CallbackRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Callback request ID cannot be empty")
	}

	cb, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Failed to retrieve callback request", id, err)
	}
	return cb, nil
}

func (s *callbackService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.CallbackRequest, int64, error) {
	if status != "" && !validator.IsKnownStatus(status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown callback status: %s", status))
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var results []*model.CallbackRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.Count(ctx, status)
		if err != nil {
			s.cfg.Log.Error("Failed to count callback requests", "status", status, "error", err)
			errCount = apperrors.Internal("Failed to count callback requests", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		results, err = s.repo.FindAll(ctx, status, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get callback requests",
				"status", status,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve callback requests", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return results, count, nil
}

// UpdateStatus applies a lifecycle transition. Setting the current status
// again is a no-op.
func (s *callbackService) UpdateStatus(ctx context.Context, id string, update *model.CallbackStatusUpdate) (*model.CallbackRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Callback request ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		return nil, validationError(err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Failed to retrieve callback request", id, err)
	}

	if current.Status == update.Status {
		return current, nil
	}
	if !validator.CanTransition(current.Status, update.Status) {
		return nil, apperrors.InvalidTransition("Callback request", current.Status, update.Status)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, update.Status)
	if err != nil {
		if errors.Is(err, callbackserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Callback request was modified concurrently, retry the update")
		}
		return nil, s.mapRepoError("Failed to update callback request status", id, err)
	}

	s.cfg.Log.Info("Callback request status updated",
		"id", id,
		"from", current.Status,
		"to", updated.Status,
	)

	return updated, nil
}

func (s *callbackService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Callback request ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError("Failed to delete callback request", id, err)
	}

	s.cfg.Log.Info("Callback request deleted", "id", id)
	return nil
}

func (s *callbackService) mapRepoError(msg, id string, err error) error {
	switch {
	case errors.Is(err, callbackserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Callback request", id)
	case errors.Is(err, callbackserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid callback request ID format")
	}
	s.cfg.Log.Error(msg,
		"id", id,
		"error", err,
	)
	return apperrors.Internal(msg, err)
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Callback request validation failed", verrs.Details())
	}
	return apperrors.Validation("Callback request validation failed", map[string]any{
		"error": err.Error(),
	})
}
