package database

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

var (
	ErrUserNotFound    = kindError(ErrNotFound, "user not found")
	ErrMovieNotFound   = kindError(ErrNotFound, "movie not found")
	ErrRequestNotFound = kindError(ErrNotFound, "movie request not found")

	ErrUsernameTaken   = kindError(ErrConflict, "username already exists")
	ErrEmailTaken      = kindError(ErrConflict, "email already exists")
	ErrRequestResolved = kindError(ErrConflict, "movie request has already been resolved")
)

type storeError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &storeError{kind: kind, msg: msg}
}

func (e *storeError) Error() string { return e.msg }
func (e *storeError) Unwrap() error { return e.kind }

func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	return strings.Contains(err.Error(), "E11000 duplicate key error")
}
