package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/princinho/streamcatalog/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const MovieRequestsCollection = "movie_requests"

type MongoRequestStore struct {
	col *mongo.Collection
}

func NewMongoRequestStore(db *mongo.Database) *MongoRequestStore {
	return &MongoRequestStore{col: db.Collection(MovieRequestsCollection)}
}

func (s *MongoRequestStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create movie request indexes: %w", err)
	}
	return nil
}

func (s *MongoRequestStore) List(ctx context.Context, userID string) ([]models.MovieRequest, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find movie requests: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.MovieRequest, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode movie requests: %w", err)
	}
	return items, nil
}

func (s *MongoRequestStore) Insert(ctx context.Context, req models.MovieRequest) (models.MovieRequest, error) {
	if req.ID.IsZero() {
		req.ID = bson.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, req); err != nil {
		return models.MovieRequest{}, fmt.Errorf("insert movie request: %w", err)
	}
	return req, nil
}

// Resolve moves a pending request to its terminal status. The pending status
// is part of the update filter, so of two concurrent resolvers only one matches.
func (s *MongoRequestStore) Resolve(ctx context.Context, id string, res Resolution) (models.MovieRequest, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.MovieRequest{}, ErrRequestNotFound
	}

	set := bson.M{
		"status":     res.Status,
		"resolvedBy": res.ResolvedBy,
		"resolvedAt": res.At,
		"updatedAt":  res.At,
	}
	if res.Status == models.MovieRequestStatusRejected {
		set["rejectionReason"] = res.Reason
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.MovieRequest
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": models.MovieRequestStatusPending},
		bson.M{"$set": set},
		opts,
	).Decode(&updated)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.MovieRequest{}, fmt.Errorf("resolve movie request: %w", err)
	}

	// Nothing pending matched: tell a missing request apart from a resolved one.
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.MovieRequest{}, fmt.Errorf("lookup movie request: %w", err)
	}
	if n == 0 {
		return models.MovieRequest{}, ErrRequestNotFound
	}
	return models.MovieRequest{}, ErrRequestResolved
}

func (s *MongoRequestStore) Counts(ctx context.Context) (RequestCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return RequestCounts{}, fmt.Errorf("aggregate movie requests: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.MovieRequestStatus `bson:"_id"`
		Count  int64                     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return RequestCounts{}, fmt.Errorf("decode movie request counts: %w", err)
	}

	var counts RequestCounts
	for _, r := range rows {
		counts.add(r.Status, r.Count)
	}
	return counts, nil
}

func (c *RequestCounts) add(status models.MovieRequestStatus, n int64) {
	switch status {
	case models.MovieRequestStatusPending:
		c.Pending += n
	case models.MovieRequestStatusApproved:
		c.Approved += n
	case models.MovieRequestStatusRejected:
		c.Rejected += n
	}
	c.Total += n
}
