package database

import (
	"context"
	"fmt"
	"time"

	"github.com/princinho/streamcatalog/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const RevokedUsersCollection = "revoked_users"

type MongoRevocationStore struct {
	col *mongo.Collection
}

func NewMongoRevocationStore(db *mongo.Database) *MongoRevocationStore {
	return &MongoRevocationStore{col: db.Collection(RevokedUsersCollection)}
}

// EnsureIndexes lets the server expire entries once no token they could
// block is still valid.
func (s *MongoRevocationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create revocation ttl index: %w", err)
	}
	return nil
}

func (s *MongoRevocationStore) Revoke(ctx context.Context, entry models.RevokedUser) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": entry.UserID}, entry, opts); err != nil {
		return fmt.Errorf("revoke user %s: %w", entry.UserID, err)
	}
	return nil
}

func (s *MongoRevocationStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("clear revocation %s: %w", userID, err)
	}
	return nil
}

// IsRevoked checks expiresAt itself because the TTL monitor runs lazily.
func (s *MongoRevocationStore) IsRevoked(ctx context.Context, userID string, now time.Time) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{
		"_id":       userID,
		"expiresAt": bson.M{"$gt": now},
	})
	if err != nil {
		return false, fmt.Errorf("check revocation %s: %w", userID, err)
	}
	return n > 0, nil
}
