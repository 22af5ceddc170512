package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	orderserrors "tunestudio/internal/orders/errors"
	"tunestudio/pkg/config"
	"tunestudio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "orders"
)

// Filter narrows order listings. Empty fields match everything.
type Filter struct {
	Status   string
	ClientID string
}

func (f Filter) toBSON() bson.M {
	m := bson.M{}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.ClientID != "" {
		m["client_id"] = f.ClientID
	}
	return m
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Order, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Update replaces the mutable fields of an order whose stored status is
	// still expectedStatus.
	Update(ctx context.Context, id, expectedStatus string, o *model.Order) error
	Delete(ctx context.Context, id string) error
}

type mongoOrderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOrderRepository(cfg *config.Config) OrderRepository {
	return &mongoOrderRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	o.CreatedAt = now
	o.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, o)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", orderserrors.ErrDuplicateNumber, o.Number)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", orderserrors.ErrInvalidID, id)
	}

	var o model.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", orderserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &o, nil
}

func (r *mongoOrderRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []*model.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (r *mongoOrderRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *mongoOrderRepository) Update(ctx context.Context, id, expectedStatus string, o *model.Order) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", orderserrors.ErrInvalidID, id)
	}

	o.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"status":     o.Status,
			"items":      o.Items,
			"total":      o.Total,
			"car":        o.Car,
			"comment":    o.Comment,
			"updated_at": o.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": expectedStatus}, update)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", orderserrors.ErrStatusChanged, id)
	}
	return nil
}

func (r *mongoOrderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", orderserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", orderserrors.ErrNotFound, id)
	}
	return nil
}
