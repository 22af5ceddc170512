package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	clientserrors "tunestudio/internal/clients/errors"
	"tunestudio/pkg/config"
	mongotx "tunestudio/pkg/db/mongo"
	"tunestudio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "clients"
)

type mongoClientRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id string) (*model.Client, error)
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Client, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, c *model.Client) error
	Delete(ctx context.Context, id string) error

	// Search matches a case-insensitive name fragment or a prefix of the
	// canonical phone digits. Exactly one of name and digits is set.
	Search(ctx context.Context, name, digits string, limit int) ([]*model.Client, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoClientRepository(cfg *config.Config) ClientRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClientRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves a SessionContext untouched; wrapping it would detach the
// operation from the running transaction.
func (r *mongoClientRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoClientRepository) Create(ctx context.Context, c *model.Client) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	c.CreatedAt = now
	c.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", clientserrors.ErrDuplicatePhone, c.Phone)
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}

	return nil
}

func (r *mongoClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", clientserrors.ErrInvalidID, id)
	}

	var c model.Client
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", clientserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &c, nil
}

// FindByPhone expects phone in display form, the same form Create stores.
func (r *mongoClientRepository) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var c model.Client
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", clientserrors.ErrNotFound, phone)
		}
		return nil, fmt.Errorf("failed to find client by phone [%s]: %w", phone, err)
	}
	return &c, nil
}

func (r *mongoClientRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer cursor.Close(ctx)

	clients := []*model.Client{}
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %w", err)
	}

	return clients, nil
}

func (r *mongoClientRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return count, nil
}

func (r *mongoClientRepository) Update(ctx context.Context, id string, c *model.Client) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", clientserrors.ErrInvalidID, id)
	}

	c.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":         c.Name,
			"phone":        c.Phone,
			"phone_digits": c.PhoneDigits,
			"email":        c.Email,
			"cars":         c.Cars,
			"notes":        c.Notes,
			"region":       c.Region,
			"time_zone":    c.TimeZone,
			"updated_at":   c.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", clientserrors.ErrDuplicatePhone, c.Phone)
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", clientserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", clientserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", clientserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoClientRepository) Search(ctx context.Context, name, digits string, limit int) ([]*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var filter bson.M
	if digits != "" {
		filter = bson.M{"phone_digits": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(digits)}}
	} else {
		filter = bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}}
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	defer cursor.Close(ctx)

	results := []*model.Client{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	return results, nil
}

func (r *mongoClientRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
