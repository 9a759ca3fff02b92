package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type MovieRequestStatus string

const (
	MovieRequestStatusPending  MovieRequestStatus = "pending"
	MovieRequestStatusApproved MovieRequestStatus = "approved"
	MovieRequestStatusRejected MovieRequestStatus = "rejected"
)

const DefaultRejectionReason = "Aucune raison fournie"

// CanTransitionTo reports whether next may follow s. Only pending requests
// move, and approved/rejected are terminal.
func (s MovieRequestStatus) CanTransitionTo(next MovieRequestStatus) bool {
	if s != MovieRequestStatusPending {
		return false
	}
	return next == MovieRequestStatusApproved || next == MovieRequestStatusRejected
}

type MovieRequest struct {
	ID              bson.ObjectID      `bson:"_id" json:"id"`
	Title           string             `bson:"title" json:"title"`
	ImdbLink        string             `bson:"imdbLink" json:"imdbLink"`
	Comment         string             `bson:"comment,omitempty" json:"comment,omitempty"`
	UserID          string             `bson:"userId" json:"userId"`
	Username        string             `bson:"username" json:"username"`
	Status          MovieRequestStatus `bson:"status" json:"status"`
	ResolvedBy      string             `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt      *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	RejectionReason string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
