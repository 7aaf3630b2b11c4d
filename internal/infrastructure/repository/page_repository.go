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

// MongoPageRepository implements PageRepository using MongoDB
type MongoPageRepository struct {
	collection *mongo.Collection
}

// NewMongoPageRepository creates a new MongoDB page repository
func NewMongoPageRepository(db *mongo.Database) ports.PageRepository {
	return &MongoPageRepository{
		collection: db.Collection("pages"),
	}
}

// Upsert inserts or refreshes a page keyed by (siteId, shopifyId, type).
// Re-syncing updates the catalog fields in place and never duplicates rows or
// resets the version counter.
func (r *MongoPageRepository) Upsert(ctx context.Context, page *domain.Page) error {
	now := time.Now()
	filter := bson.M{
		"siteId":    page.SiteID,
		"shopifyId": page.ShopifyID,
		"type":      page.Type,
	}
	update := bson.M{
		"$set": bson.M{
			"title":       page.Title,
			"url":         page.URL,
			"lastUpdated": page.LastUpdated,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"_id":             uuid.NewString(),
			"siteId":          page.SiteID,
			"shopifyId":       page.ShopifyID,
			"type":            page.Type,
			"trackingEnabled": false,
			"versionSeq":      0,
			"createdAt":       now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}

	return nil
}

// GetByID retrieves a page by id, nil when absent.
func (r *MongoPageRepository) GetByID(ctx context.Context, id string) (*domain.Page, error) {
	var page domain.Page
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&page)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return &page, nil
}

// ListBySite retrieves a site's pages, optionally filtered to a set of types.
func (r *MongoPageRepository) ListBySite(ctx context.Context, siteID string, types []domain.PageType) ([]*domain.Page, error) {
	filter := bson.M{"siteId": siteID}
	if len(types) > 0 {
		filter["type"] = bson.M{"$in": types}
	}
	opts := options.Find().SetSort(bson.D{{Key: "type", Value: 1}, {Key: "title", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer cursor.Close(ctx)

	var pages []*domain.Page
	for cursor.Next(ctx) {
		var page domain.Page
		if err := cursor.Decode(&page); err != nil {
			return nil, fmt.Errorf("failed to decode page: %w", err)
		}
		pages = append(pages, &page)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return pages, nil
}

// CountBySiteAndType counts a site's pages of one type.
func (r *MongoPageRepository) CountBySiteAndType(ctx context.Context, siteID string, t domain.PageType) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"siteId": siteID, "type": t})
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}

	return int(count), nil
}

// NextVersion atomically increments and returns the page's version counter.
// Concurrent callers each receive a distinct number.
func (r *MongoPageRepository) NextVersion(ctx context.Context, pageID string) (int, error) {
	update := bson.M{
		"$inc": bson.M{"versionSeq": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var page domain.Page
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": pageID}, update, opts).Decode(&page)
	if err == mongo.ErrNoDocuments {
		return 0, &domain.NotFoundError{Resource: "page"}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to advance page version: %w", err)
	}

	return page.VersionSeq, nil
}

// SetTrackingEnabled marks a page as carrying published content.
func (r *MongoPageRepository) SetTrackingEnabled(ctx context.Context, pageID string) error {
	update := bson.M{"$set": bson.M{"trackingEnabled": true, "updatedAt": time.Now()}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": pageID}, update)
	if err != nil {
		return fmt.Errorf("failed to enable tracking: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "page"}
	}

	return nil
}
