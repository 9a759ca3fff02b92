package database

import (
	"context"
	"math"
	"time"

	"github.com/princinho/streamcatalog/models"
)

type UserStore interface {
	Insert(ctx context.Context, user models.User) (models.User, error)
	// EnsureAdmin inserts the admin only if no user holds its username.
	EnsureAdmin(ctx context.Context, admin models.User) (bool, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetBanned(ctx context.Context, id string, banned bool, adminID string, at time.Time) error
	Rename(ctx context.Context, id, username string, at time.Time) error
	SetPassword(ctx context.Context, id, passwordHash string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (UserCounts, error)
}

type UserCounts struct {
	Total  int64 `json:"total"`
	Banned int64 `json:"banned"`
}

// MovieFilter carries the catalog query options. Page and Limit are already
// clamped by the caller.
type MovieFilter struct {
	Genre  string
	Type   string
	Search string
	Page   int
	Limit  int
}

// Skip saturates at math.MaxInt64 instead of overflowing.
func (f MovieFilter) Skip() int64 {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	pages, limit := int64(f.Page-1), int64(f.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

type MovieStore interface {
	List(ctx context.Context, filter MovieFilter) ([]models.Movie, int64, error)
	Get(ctx context.Context, id string) (models.Movie, error)
	Insert(ctx context.Context, movie models.Movie) (models.Movie, error)
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (MovieCounts, error)
}

type MovieCounts struct {
	Total  int64 `json:"total"`
	Films  int64 `json:"films"`
	Series int64 `json:"series"`
}

// Resolution is the terminal state applied to a pending movie request.
type Resolution struct {
	Status     models.MovieRequestStatus
	ResolvedBy string
	Reason     string
	At         time.Time
}

type RequestStore interface {
	// List returns every request when userID is empty, otherwise only that user's.
	List(ctx context.Context, userID string) ([]models.MovieRequest, error)
	Insert(ctx context.Context, req models.MovieRequest) (models.MovieRequest, error)
	Resolve(ctx context.Context, id string, res Resolution) (models.MovieRequest, error)
	Counts(ctx context.Context) (RequestCounts, error)
}

type RequestCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

type RevocationStore interface {
	Revoke(ctx context.Context, entry models.RevokedUser) error
	Clear(ctx context.Context, userID string) error
	IsRevoked(ctx context.Context, userID string, now time.Time) (bool, error)
}

// Stores bundles one implementation of every store.
type Stores struct {
	Users       UserStore
	Movies      MovieStore
	Requests    RequestStore
	Revocations RevocationStore
}
