package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type APIRequest struct {
	RequestID    string    `bson:"requestId"`
	UserAddress  *string   `bson:"userAddress,omitempty"`
	IPAddress    *string   `bson:"ipAddress,omitempty"`
	Method       string    `bson:"method"`
	Route        string    `bson:"route"`
	RequestBody  *string   `bson:"requestBody,omitempty"`
	StatusCode   *int      `bson:"statusCode,omitempty"`
	ResponseBody *string   `bson:"responseBody,omitempty"`
	DurationMs   *int64    `bson:"durationMs,omitempty"`
	StartTs      time.Time `bson:"startTs"`
}

type ApiRequestRepository interface {
	Add(ctx context.Context, ar APIRequest) (*APIRequest, error)
	Update(ctx context.Context, ar APIRequest) error
}

func NewApiRequestRepository(db *mongo.Database) ApiRequestRepository {
	return apiRequestRepositoryHandler{
		Collection: db.Collection("api_requests"),
	}
}

type apiRequestRepositoryHandler struct {
	Collection *mongo.Collection
}

func (h apiRequestRepositoryHandler) Add(ctx context.Context, ar APIRequest) (*APIRequest, error) {
	ar.RequestID = uuid.NewString()

	_, err := h.Collection.InsertOne(ctx, ar)
	if err != nil {
		return nil, fmt.Errorf("failed to insert API request: %w", err)
	}

	return &ar, nil
}

func (h apiRequestRepositoryHandler) Update(ctx context.Context, ar APIRequest) error {
	update := bson.M{"$set": bson.M{
		"statusCode":   ar.StatusCode,
		"responseBody": ar.ResponseBody,
		"durationMs":   ar.DurationMs,
	}}

	_, err := h.Collection.UpdateOne(ctx, bson.M{"requestId": ar.RequestID}, update)
	if err != nil {
		return fmt.Errorf("failed to update API request: %w", err)
	}

	return nil
}
