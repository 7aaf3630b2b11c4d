package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

// MongoAccountRepository implements AccountRepository using MongoDB
type MongoAccountRepository struct {
	collection *mongo.Collection
}

// NewMongoAccountRepository creates a new MongoDB account repository
func NewMongoAccountRepository(db *mongo.Database) ports.AccountRepository {
	return &MongoAccountRepository{
		collection: db.Collection("accounts"),
	}
}

// Upsert creates the account for an external identity if absent and returns
// the stored row either way.
func (r *MongoAccountRepository) Upsert(ctx context.Context, externalID string) (*domain.Account, error) {
	now := time.Now()
	filter := bson.M{"externalId": externalID}
	update := bson.M{
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"externalId": externalID,
			"createdAt":  now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var account domain.Account
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	return &account, nil
}

// GetByExternalID retrieves an account by external identity, nil when absent.
func (r *MongoAccountRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	var account domain.Account
	err := r.collection.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}
