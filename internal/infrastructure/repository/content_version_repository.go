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

// MongoContentVersionRepository implements ContentVersionRepository using MongoDB
type MongoContentVersionRepository struct {
	collection *mongo.Collection
}

// NewMongoContentVersionRepository creates a new MongoDB content version repository
func NewMongoContentVersionRepository(db *mongo.Database) ports.ContentVersionRepository {
	return &MongoContentVersionRepository{
		collection: db.Collection("content_versions"),
	}
}

// Insert appends a new content snapshot. Snapshots are never rewritten.
func (r *MongoContentVersionRepository) Insert(ctx context.Context, v *domain.ContentVersion) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("failed to insert content version: %w", err)
	}

	return nil
}

// Latest returns the highest-version snapshot for a page, nil when none exist.
func (r *MongoContentVersionRepository) Latest(ctx context.Context, pageID string) (*domain.ContentVersion, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})

	var v domain.ContentVersion
	err := r.collection.FindOne(ctx, bson.M{"pageId": pageID}, opts).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest content version: %w", err)
	}

	return &v, nil
}

// CountByPage counts the snapshots stored for a page.
func (r *MongoContentVersionRepository) CountByPage(ctx context.Context, pageID string) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"pageId": pageID})
	if err != nil {
		return 0, fmt.Errorf("failed to count content versions: %w", err)
	}

	return int(count), nil
}

// MarkPublished stamps a snapshot with the publish time and returns the
// updated row.
func (r *MongoContentVersionRepository) MarkPublished(ctx context.Context, versionID string) (*domain.ContentVersion, error) {
	update := bson.M{"$set": bson.M{"publishedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v domain.ContentVersion
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": versionID}, update, opts).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, &domain.NotFoundError{Resource: "content version"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark content version published: %w", err)
	}

	return &v, nil
}
