package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/princinho/streamcatalog/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const UsersCollection = "users"

type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection(UsersCollection)}
}

func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoUserStore) Insert(ctx context.Context, user models.User) (models.User, error) {
	var existing models.User
	err := s.col.FindOne(ctx, bson.M{"$or": []bson.M{
		{"username": user.Username},
		{"email": user.Email},
	}}).Decode(&existing)
	switch {
	case err == nil:
		if existing.Username == user.Username {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, ErrEmailTaken
	case !errors.Is(err, mongo.ErrNoDocuments):
		return models.User{}, fmt.Errorf("lookup existing user: %w", err)
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if IsDuplicateKey(err) {
			return models.User{}, duplicateUserError(err)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *MongoUserStore) EnsureAdmin(ctx context.Context, admin models.User) (bool, error) {
	filter := bson.M{"username": admin.Username}
	update := bson.M{
		"$setOnInsert": bson.M{
			"username":     admin.Username,
			"email":        admin.Email,
			"passwordHash": admin.PasswordHash,
			"role":         models.RoleAdmin,
			"isBanned":     false,
			"createdAt":    admin.CreatedAt,
		},
	}
	opts := options.UpdateOne().SetUpsert(true)

	res, err := s.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if IsDuplicateKey(err) {
			return false, duplicateUserError(err)
		}
		return false, fmt.Errorf("seed admin upsert failed: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func (s *MongoUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *MongoUserStore) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"passwordHash": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) SetBanned(ctx context.Context, id string, banned bool, adminID string, at time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	res, err := s.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"isBanned":  banned,
		"updatedBy": adminID,
		"updatedAt": at,
	}})
	if err != nil {
		return fmt.Errorf("update ban flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) Rename(ctx context.Context, id, username string, at time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}

	taken, err := s.col.CountDocuments(ctx, bson.M{"username": username, "_id": bson.M{"$ne": oid}})
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken > 0 {
		return ErrUsernameTaken
	}

	res, err := s.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"username":  username,
		"updatedAt": at,
	}})
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("rename user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) SetPassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	res, err := s.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"passwordHash": passwordHash,
		"updatedAt":    at,
	}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) Counts(ctx context.Context) (UserCounts, error) {
	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return UserCounts{}, fmt.Errorf("count users: %w", err)
	}
	banned, err := s.col.CountDocuments(ctx, bson.M{"isBanned": true})
	if err != nil {
		return UserCounts{}, fmt.Errorf("count banned users: %w", err)
	}
	return UserCounts{Total: total, Banned: banned}, nil
}

// duplicateUserError picks the violated unique index from the server message.
func duplicateUserError(err error) error {
	if strings.Contains(err.Error(), "email") {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}
