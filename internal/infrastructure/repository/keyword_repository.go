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

// MongoKeywordRepository implements KeywordRepository using MongoDB
type MongoKeywordRepository struct {
	collection *mongo.Collection
}

// NewMongoKeywordRepository creates a new MongoDB keyword repository
func NewMongoKeywordRepository(db *mongo.Database) ports.KeywordRepository {
	return &MongoKeywordRepository{
		collection: db.Collection("keywords"),
	}
}

// InsertIfAbsent stores the keyword unless (siteId, keyword) already exists.
// The existing row's source is left untouched; it reports whether a new row
// was created.
func (r *MongoKeywordRepository) InsertIfAbsent(ctx context.Context, kw *domain.Keyword) (bool, error) {
	filter := bson.M{"siteId": kw.SiteID, "keyword": kw.Keyword}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"siteId":    kw.SiteID,
			"keyword":   kw.Keyword,
			"source":    kw.Source,
			"createdAt": time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("failed to insert keyword: %w", err)
	}

	return res.UpsertedCount > 0, nil
}

// ListBySite retrieves a page of a site's keywords, optionally filtered by
// source, with the unpaginated total.
func (r *MongoKeywordRepository) ListBySite(ctx context.Context, siteID, source string, limit, offset int) ([]*domain.Keyword, int, error) {
	filter := bson.M{"siteId": siteID}
	if source != "" {
		filter["source"] = source
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count keywords: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer cursor.Close(ctx)

	var keywords []*domain.Keyword
	for cursor.Next(ctx) {
		var kw domain.Keyword
		if err := cursor.Decode(&kw); err != nil {
			return nil, 0, fmt.Errorf("failed to decode keyword: %w", err)
		}
		keywords = append(keywords, &kw)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}

	return keywords, int(total), nil
}

// CountBySource groups a site's keywords by source key.
func (r *MongoKeywordRepository) CountBySource(ctx context.Context, siteID string) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"siteId": siteID}}},
		{{Key: "$group", Value: bson.M{"_id": "$source", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count keywords by source: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int)
	for cursor.Next(ctx) {
		var row struct {
			Source string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode keyword count: %w", err)
		}
		counts[row.Source] = row.Count
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return counts, nil
}

// Delete removes a keyword by id.
func (r *MongoKeywordRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Resource: "keyword"}
	}

	return nil
}
