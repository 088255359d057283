package repository

import (
	"context"
	"fmt"
	"time"

	"tokenfolio/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StrategyRepository interface {
	Add(ctx context.Context, s domain.Strategy) (*domain.Strategy, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]domain.Strategy, error)
	// DeleteByIDForWallet removes the strategy matching both id and owner and
	// returns the removed record. A wrong owner and a missing id are the same
	// NotFoundError so callers cannot probe other wallets' strategies.
	DeleteByIDForWallet(ctx context.Context, strategyID, walletAddress string) (*domain.Strategy, error)
	EnsureIndexes(ctx context.Context) error
}

type strategyRepositoryHandler struct {
	Collection *mongo.Collection
}

func NewStrategyRepository(db *mongo.Database) StrategyRepository {
	return strategyRepositoryHandler{
		Collection: db.Collection("strategies"),
	}
}

func (h strategyRepositoryHandler) EnsureIndexes(ctx context.Context) error {
	_, err := h.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "walletAddress", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create strategy indexes: %w", err)
	}
	return nil
}

func (h strategyRepositoryHandler) Add(ctx context.Context, s domain.Strategy) (*domain.Strategy, error) {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	result, err := h.Collection.InsertOne(ctx, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.DuplicateKeyError{Key: s.ID}
		}
		return nil, fmt.Errorf("failed to insert strategy: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		s.MongoID = oid
	}

	return &s, nil
}

func (h strategyRepositoryHandler) ListByWallet(ctx context.Context, walletAddress string) ([]domain.Strategy, error) {
	filter := bson.M{
		"walletAddress": domain.NormalizeAddress(walletAddress),
		"isActive":      true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	defer cursor.Close(ctx)

	out := []domain.Strategy{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode strategies: %w", err)
	}

	return out, nil
}

func (h strategyRepositoryHandler) DeleteByIDForWallet(ctx context.Context, strategyID, walletAddress string) (*domain.Strategy, error) {
	filter := bson.M{
		"id":            strategyID,
		"walletAddress": domain.NormalizeAddress(walletAddress),
	}

	deleted := domain.Strategy{}
	err := h.Collection.FindOneAndDelete(ctx, filter).Decode(&deleted)
	if err == mongo.ErrNoDocuments {
		return nil, domain.NotFoundError{Entity: "strategy"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete strategy: %w", err)
	}

	return &deleted, nil
}
