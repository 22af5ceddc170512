package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	clientserrors "tunestudio/internal/clients/errors"
	"tunestudio/internal/clients/repository"
	"tunestudio/internal/clients/validator"
	"tunestudio/pkg/config"
	"tunestudio/pkg/contracts"
	apperrors "tunestudio/pkg/errors"
	"tunestudio/pkg/kafka"
	"tunestudio/pkg/locale"
	"tunestudio/pkg/model"
	"tunestudio/pkg/phone"
	"tunestudio/pkg/sanitizer"
	"tunestudio/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

const searchLimit = 20

type ClientService interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	GetByPhone(ctx context.Context, rawPhone string) (*model.Client, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Client, int64, error)
	Update(ctx context.Context, id string, updates *model.ClientUpdate) (*model.Client, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*model.Client, error)
}

type clientService struct {
	repo      repository.ClientRepository
	validator *validator.ClientValidator
	events    kafka.Publisher
	cfg       *config.Config
}

// NewClientService wires the service. events may be nil when event publishing
// is disabled.
func NewClientService(
	repo repository.ClientRepository,
	validator *validator.ClientValidator,
	events kafka.Publisher,
	cfg *config.Config,
) ClientService {
	return &clientService{
		repo:      repo,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

func (s *clientService) Create(ctx context.Context, c *model.Client) error {
	s.sanitize(c)
	s.applyDefaults(c)

	if err := s.validator.Validate(c); err != nil {
		s.cfg.Log.Warn("Client validation failed",
			"name", c.Name,
			"phone", c.Phone,
			"error", err,
		)
		return validationError(err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByPhone(sessCtx, c.Phone)
		if err == nil {
			return duplicatePhone(existing)
		}
		if !errors.Is(err, clientserrors.ErrNotFound) {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}

		if err := s.repo.Create(sessCtx, c); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if errors.Is(err, clientserrors.ErrDuplicatePhone) {
			return apperrors.Conflict("Client with this phone already exists")
		}
		s.cfg.Log.Error("Failed to create client",
			"name", c.Name,
			"phone", c.Phone,
			"error", err,
		)
		return apperrors.Internal("Failed to create client", err)
	}

	s.cfg.Log.Info("Client created successfully",
		"id", c.ID,
		"phone", c.Phone,
		"region", c.Region,
	)

	s.publishCreated(ctx, c)

	return nil
}

func (s *clientService) GetByID(ctx context.Context, id string) (*model.Client, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Client ID cannot be empty")
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Failed to retrieve client", id, err)
	}
	return c, nil
}

func (s *clientService) GetByPhone(ctx context.Context, rawPhone string) (*model.Client, error) {
	if rawPhone == "" {
		return nil, apperrors.InvalidInput("Phone number cannot be empty")
	}
	if !phone.IsCanonical(phone.Normalize(rawPhone)) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Invalid phone number: %s", rawPhone))
	}

	formatted := sanitizer.NormalizePhone(rawPhone)
	c, err := s.repo.FindByPhone(ctx, formatted)
	if err != nil {
		if errors.Is(err, clientserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Client with phone " + formatted)
		}
		s.cfg.Log.Error("Failed to get client by phone",
			"phone", formatted,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve client by phone", err)
	}
	return c, nil
}

func (s *clientService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Client, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var clients []*model.Client
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count clients", "error", err)
			errCount = apperrors.Internal("Failed to count clients", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		clients, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all clients",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve clients", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return clients, count, nil
}

func (s *clientService) Update(ctx context.Context, id string, updates *model.ClientUpdate) (*model.Client, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Client ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Failed to check client existence", id, err)
	}

	s.sanitizeUpdate(updates)
	merged := mergeClientUpdates(existing, updates)

	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Client validation failed",
			"id", id,
			"phone", merged.Phone,
			"error", err,
		)
		return nil, validationError(err)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if merged.Phone != existing.Phone {
			other, err := s.repo.FindByPhone(sessCtx, merged.Phone)
			if err == nil && other.ID != id {
				return duplicatePhone(other)
			}
			if err != nil && !errors.Is(err, clientserrors.ErrNotFound) {
				return fmt.Errorf("failed to check for duplicates: %w", err)
			}
		}
		return s.repo.Update(sessCtx, id, merged)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		if errors.Is(err, clientserrors.ErrDuplicatePhone) {
			return nil, apperrors.Conflict("Client with this phone already exists")
		}
		return nil, s.mapRepoError("Failed to update client", id, err)
	}

	s.cfg.Log.Info("Client updated successfully",
		"id", id,
		"phone", merged.Phone,
	)

	return merged, nil
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Client ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError("Failed to delete client", id, err)
	}

	s.cfg.Log.Info("Client deleted successfully", "id", id)

	return nil
}

func (s *clientService) Search(ctx context.Context, query string) ([]*model.Client, error) {
	name, digits := sanitizer.NormalizeSearchQuery(query)
	if name == "" && digits == "" {
		return nil, apperrors.InvalidInput("Search query cannot be empty")
	}

	results, err := s.repo.Search(ctx, name, digits, searchLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to search clients",
			"query", query,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search clients", err)
	}

	s.cfg.Log.Debug("Clients search completed",
		"name", name,
		"digits", digits,
		"results_count", len(results),
	)

	return results, nil
}

func (s *clientService) mapRepoError(msg, id string, err error) error {
	switch {
	case errors.Is(err, clientserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Client", id)
	case errors.Is(err, clientserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid client ID format")
	}
	s.cfg.Log.Error(msg,
		"id", id,
		"error", err,
	)
	return apperrors.Internal(msg, err)
}

func (s *clientService) publishCreated(ctx context.Context, c *model.Client) {
	err := contracts.Publish(ctx, s.events, s.cfg.ClientTopic, contracts.EventClientCreated, c.ID, contracts.ClientCreated{
		ClientID:  c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Region:    c.Region,
		CreatedAt: c.CreatedAt,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to publish client event",
			"id", c.ID,
			"event", contracts.EventClientCreated,
			"error", err,
		)
	}
}

func (s *clientService) sanitize(c *model.Client) {
	c.Name = sanitizer.NormalizeName(c.Name)
	c.Phone = sanitizer.NormalizePhone(c.Phone)
	c.Email = sanitizer.NormalizeEmail(c.Email)
	c.Cars = sanitizer.NormalizeCars(c.Cars)
	c.Notes = sanitizer.NormalizeText(c.Notes)
	c.PhoneDigits = phone.Normalize(c.Phone)
}

func (s *clientService) sanitizeUpdate(updates *model.ClientUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Phone != "" {
		updates.Phone = sanitizer.NormalizePhone(updates.Phone)
	}
	if updates.Email != nil {
		normalized := sanitizer.NormalizeEmail(*updates.Email)
		updates.Email = &normalized
	}
	if updates.Cars != nil {
		normalized := sanitizer.NormalizeCars(*updates.Cars)
		updates.Cars = &normalized
	}
	if updates.Notes != nil {
		normalized := sanitizer.NormalizeText(*updates.Notes)
		updates.Notes = &normalized
	}
}

// applyDefaults derives region and time zone from the phone when the caller
// left them empty.
func (s *clientService) applyDefaults(c *model.Client) {
	if c.Region == "" {
		if country := locale.InferCountryFromPhone(c.Phone); country != nil {
			c.Region = country.Code
		}
	}
	if c.TimeZone == "" {
		c.TimeZone = locale.InferTimezoneFromPhone(c.Phone)
	}
}

func mergeClientUpdates(existing *model.Client, updates *model.ClientUpdate) *model.Client {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Phone != "" && updates.Phone != existing.Phone {
		merged.Phone = updates.Phone
		merged.PhoneDigits = phone.Normalize(updates.Phone)
		merged.Region = ""
		if country := locale.InferCountryFromPhone(updates.Phone); country != nil {
			merged.Region = country.Code
		}
		merged.TimeZone = locale.InferTimezoneFromPhone(updates.Phone)
	}
	if updates.Email != nil {
		merged.Email = *updates.Email
	}
	if updates.Cars != nil {
		merged.Cars = *updates.Cars
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}

func duplicatePhone(existing *model.Client) error {
	return apperrors.Conflict(fmt.Sprintf(
		"Client with phone %s already exists (id: %s)",
		existing.Phone,
		existing.ID,
	)).WithDetails(map[string]any{"existing_id": existing.ID})
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Client validation failed", verrs.Details())
	}
	return apperrors.Validation("Client validation failed", map[string]any{
		"error": err.Error(),
	})
}
