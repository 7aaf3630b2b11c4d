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

// MongoSiteRepository implements SiteRepository using MongoDB
type MongoSiteRepository struct {
	collection *mongo.Collection
}

// NewMongoSiteRepository creates a new MongoDB site repository
func NewMongoSiteRepository(db *mongo.Database) ports.SiteRepository {
	return &MongoSiteRepository{
		collection: db.Collection("sites"),
	}
}

// Save upserts the connected store keyed by account id. Reconnecting the same
// account replaces the stored site rather than creating a second row.
func (r *MongoSiteRepository) Save(ctx context.Context, site *domain.Site) error {
	now := time.Now()
	filter := bson.M{"accountId": site.AccountID}
	update := bson.M{
		"$set": bson.M{
			"domain":      site.Domain,
			"storeUrl":    site.StoreURL,
			"name":        site.Name,
			"accessToken": site.AccessToken,
			"active":      site.Active,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"accountId": site.AccountID,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(site); err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}

	return nil
}

// GetByAccountID retrieves the account's connected store, nil when none.
func (r *MongoSiteRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Site, error) {
	var site domain.Site
	err := r.collection.FindOne(ctx, bson.M{"accountId": accountID}).Decode(&site)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return &site, nil
}

// Disconnect clears the stored token and unsets the active flag. The site row
// and its pages survive so a reconnect picks up the same history.
func (r *MongoSiteRepository) Disconnect(ctx context.Context, siteID string) error {
	update := bson.M{"$set": bson.M{
		"accessToken": "",
		"active":      false,
		"updatedAt":   time.Now(),
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": siteID}, update)
	if err != nil {
		return fmt.Errorf("failed to disconnect site: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "site"}
	}

	return nil
}
