package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	callbackserrors "tunestudio/internal/callbacks/errors"
	"tunestudio/pkg/config"
	"tunestudio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "callback_requests"
)

type CallbackRepository interface {
	Create(ctx context.Context, cb *model.CallbackRequest) error
	FindByID(ctx context.Context, id string) (*model.CallbackRequest, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.CallbackRequest, error)
	Count(ctx context.Context, status string) (int64, error)
	// UpdateStatus moves a request from one status to another. It fails with
	// ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id, from, to string) (*model.CallbackRequest, error)
	Delete(ctx context.Context, id string) error
}

type mongoCallbackRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCallbackRepository(cfg *config.Config) CallbackRepository {
	return &mongoCallbackRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func statusFilter(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

func (r *mongoCallbackRepository) Create(ctx context.Context, cb *model.CallbackRequest) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	cb.CreatedAt = now
	cb.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, cb)
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		cb.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCallbackRepository) FindByID(ctx context.Context, id string) (*model.CallbackRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", callbackserrors.ErrInvalidID, id)
	}

	var cb model.CallbackRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&cb); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", callbackserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find callback request: %w", err)
	}
	return &cb, nil
}

func (r *mongoCallbackRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.CallbackRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, statusFilter(status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query callback requests: %w", err)
	}
	defer cursor.Close(ctx)

	results := []*model.CallbackRequest{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode callback requests: %w", err)
	}
	return results, nil
}

func (r *mongoCallbackRepository) Count(ctx context.Context, status string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, statusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count callback requests: %w", err)
	}
	return count, nil
}

func (r *mongoCallbackRepository) UpdateStatus(ctx context.Context, id, from, to string) (*model.CallbackRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", callbackserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var cb model.CallbackRequest
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cb)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", callbackserrors.ErrStatusChanged, id)
		}
		return nil, fmt.Errorf("failed to update callback request status: %w", err)
	}
	return &cb, nil
}

func (r *mongoCallbackRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", callbackserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete callback request: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", callbackserrors.ErrNotFound, id)
	}
	return nil
}
