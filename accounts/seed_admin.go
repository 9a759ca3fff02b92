package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/princinho/streamcatalog/models"
	"github.com/princinho/streamcatalog/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// SeedAdmin makes sure the bootstrap admin exists. An existing account with
// the same username is left untouched, including its password.
func (s *Service) SeedAdmin(ctx context.Context, username, email, password string) (bool, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || password == "" {
		return false, fmt.Errorf("missing ADMIN_USERNAME or ADMIN_PASSWORD")
	}
	if email == "" {
		email = username + "@admin.local"
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	created, err := s.users.EnsureAdmin(ctx, models.User{
		ID:           bson.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return created, nil
}
