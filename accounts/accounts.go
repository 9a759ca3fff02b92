// Package accounts implements signup, authentication and the admin and
// self-service mutations on user records.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/models"
	"github.com/princinho/streamcatalog/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrBanned            = errors.New("account is banned")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrImmutableAccount  = errors.New("this account cannot be modified")
)

type Service struct {
	users       database.UserStore
	revocations database.RevocationStore
	// revokeFor is how long a ban or delete blocks already-issued tokens;
	// it must cover the longest token lifetime.
	revokeFor time.Duration
	now       func() time.Time
}

func NewService(users database.UserStore, revocations database.RevocationStore, revokeFor time.Duration) *Service {
	return &Service{
		users:       users,
		revocations: revocations,
		revokeFor:   revokeFor,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateUser(ctx context.Context, username, email, rawPassword string) (models.User, error) {
	hash, err := utils.HashPassword(rawPassword)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           bson.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsBanned:     false,
		CreatedAt:    s.now(),
	}
	return s.users.Insert(ctx, user)
}

func (s *Service) Authenticate(ctx context.Context, username, rawPassword string) (models.Principal, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return models.Principal{}, err
	}
	if err := utils.CheckPassword(user.PasswordHash, rawPassword); err != nil {
		return models.Principal{}, ErrInvalidCredential
	}
	if user.IsBanned {
		return models.Principal{}, ErrBanned
	}
	return user.Principal(), nil
}

func (s *Service) Profile(ctx context.Context, id string) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Rename changes the caller's own username and returns the updated record.
func (s *Service) Rename(ctx context.Context, id, newUsername string) (models.User, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return models.User{}, ErrImmutableAccount
	}
	if err := s.users.Rename(ctx, id, strings.TrimSpace(newUsername), s.now()); err != nil {
		return models.User{}, err
	}
	return s.users.FindByID(ctx, id)
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := utils.CheckPassword(user.PasswordHash, current); err != nil {
		return ErrInvalidCredential
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, id, hash, s.now())
}

// SetBanned flips the ban flag. Banning also denylists the user's tokens;
// unbanning lifts the denylist entry.
func (s *Service) SetBanned(ctx context.Context, id string, banned bool, adminID string) error {
	now := s.now()
	if err := s.users.SetBanned(ctx, id, banned, adminID, now); err != nil {
		return err
	}
	if s.revocations == nil {
		return nil
	}
	if banned {
		return s.revocations.Revoke(ctx, models.RevokedUser{
			UserID:    id,
			Reason:    "banned",
			RevokedAt: now,
			ExpiresAt: now.Add(s.revokeFor),
		})
	}
	return s.revocations.Clear(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if s.revocations == nil {
		return nil
	}
	now := s.now()
	return s.revocations.Revoke(ctx, models.RevokedUser{
		UserID:    id,
		Reason:    "deleted",
		RevokedAt: now,
		ExpiresAt: now.Add(s.revokeFor),
	})
}

func (s *Service) Counts(ctx context.Context) (database.UserCounts, error) {
	return s.users.Counts(ctx)
}
