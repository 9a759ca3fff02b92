package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string        `bson:"username" json:"username"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Role         Role          `bson:"role" json:"role"`
	IsBanned     bool          `bson:"isBanned" json:"isBanned"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    *time.Time    `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	UpdatedBy    string        `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// Principal is the identity carried by a verified token.
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (u User) Principal() Principal {
	return Principal{
		UserID:   u.ID.Hex(),
		Username: u.Username,
		Role:     u.Role,
	}
}

// RevokedUser is a denylist entry. Tokens whose userId matches are refused
// until ExpiresAt, which is set to the longest token lifetime.
type RevokedUser struct {
	UserID    string    `bson:"_id" json:"userId"`
	Reason    string    `bson:"reason" json:"reason"`
	RevokedAt time.Time `bson:"revokedAt" json:"revokedAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}
