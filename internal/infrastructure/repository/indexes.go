package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the repositories rely on. It runs
// at startup and is idempotent.
//
// The unique keys back the write paths directly: page upserts key on
// (siteId, shopifyId, type), version inserts on (pageId, version), keyword
// upserts on (siteId, keyword), and each account holds at most one site.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"accounts": {
			{Keys: bson.D{{Key: "externalId", Value: 1}}, Options: unique},
		},
		"sites": {
			{Keys: bson.D{{Key: "accountId", Value: 1}}, Options: unique},
		},
		"pages": {
			{Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "shopifyId", Value: 1}, {Key: "type", Value: 1}}, Options: unique},
		},
		"content_versions": {
			{Keys: bson.D{{Key: "pageId", Value: 1}, {Key: "version", Value: 1}}, Options: unique},
		},
		"keywords": {
			{Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "keyword", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "source", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}

	return nil
}
