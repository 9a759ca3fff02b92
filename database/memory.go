package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/princinho/streamcatalog/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// In-memory stores back STORE_DRIVER=memory and the handler tests. They follow
// the same error contract as the Mongo stores.

func NewMemoryStores() Stores {
	return Stores{
		Users:       NewMemoryUserStore(),
		Movies:      NewMemoryMovieStore(),
		Requests:    NewMemoryRequestStore(),
		Revocations: NewMemoryRevocationStore(),
	}
}

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[bson.ObjectID]models.User)}
}

func (s *MemoryUserStore) Insert(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUniqueLocked(user); err != nil {
		return models.User{}, err
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUserStore) checkUniqueLocked(user models.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	return nil
}

func (s *MemoryUserStore) EnsureAdmin(_ context.Context, admin models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == admin.Username {
			return false, nil
		}
	}
	if err := s.checkUniqueLocked(admin); err != nil {
		return false, err
	}
	if admin.ID.IsZero() {
		admin.ID = bson.NewObjectID()
	}
	admin.Role = models.RoleAdmin
	admin.IsBanned = false
	s.users[admin.ID] = admin
	return true, nil
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrUserNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[oid]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		u.PasswordHash = ""
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryUserStore) SetBanned(_ context.Context, id string, banned bool, adminID string, at time.Time) error {
	return s.update(id, func(u *models.User) error {
		u.IsBanned = banned
		u.UpdatedBy = adminID
		u.UpdatedAt = &at
		return nil
	})
}

func (s *MemoryUserStore) Rename(_ context.Context, id, username string, at time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for other, u := range s.users {
		if other != oid && u.Username == username {
			return ErrUsernameTaken
		}
	}
	u, ok := s.users[oid]
	if !ok {
		return ErrUserNotFound
	}
	u.Username = username
	u.UpdatedAt = &at
	s.users[oid] = u
	return nil
}

func (s *MemoryUserStore) SetPassword(_ context.Context, id, passwordHash string, at time.Time) error {
	return s.update(id, func(u *models.User) error {
		u.PasswordHash = passwordHash
		u.UpdatedAt = &at
		return nil
	})
}

func (s *MemoryUserStore) update(id string, fn func(*models.User) error) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[oid]
	if !ok {
		return ErrUserNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	s.users[oid] = u
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[oid]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, oid)
	return nil
}

func (s *MemoryUserStore) Counts(_ context.Context) (UserCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := UserCounts{Total: int64(len(s.users))}
	for _, u := range s.users {
		if u.IsBanned {
			counts.Banned++
		}
	}
	return counts, nil
}

type MemoryMovieStore struct {
	mu     sync.RWMutex
	movies []models.Movie // insertion order
}

func NewMemoryMovieStore() *MemoryMovieStore {
	return &MemoryMovieStore{}
}

func (s *MemoryMovieStore) matches(m models.Movie, f MovieFilter) bool {
	if genre := strings.TrimSpace(f.Genre); genre != "" && !m.Genre.Contains(genre) {
		return false
	}
	if typ := strings.TrimSpace(f.Type); typ != "" && string(m.Type) != typ {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(m.Title), q) && !strings.Contains(strings.ToLower(m.Description), q) {
			return false
		}
	}
	return true
}

func (s *MemoryMovieStore) List(_ context.Context, f MovieFilter) ([]models.Movie, int64, error) {
	s.mu.RLock()
	matched := make([]models.Movie, 0)
	for i := len(s.movies) - 1; i >= 0; i-- {
		if s.matches(s.movies[i], f) {
			matched = append(matched, s.movies[i])
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := f.Skip()
	if start < 0 || start >= total {
		return []models.Movie{}, total, nil
	}
	end := total
	if f.Limit > 0 && start+int64(f.Limit) < total {
		end = start + int64(f.Limit)
	}
	return matched[start:end], total, nil
}

func (s *MemoryMovieStore) Get(_ context.Context, id string) (models.Movie, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.Movie{}, ErrMovieNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.movies {
		if m.ID == oid {
			return m, nil
		}
	}
	return models.Movie{}, ErrMovieNotFound
}

func (s *MemoryMovieStore) Insert(_ context.Context, movie models.Movie) (models.Movie, error) {
	if movie.ID.IsZero() {
		movie.ID = bson.NewObjectID()
	}
	s.mu.Lock()
	s.movies = append(s.movies, movie)
	s.mu.Unlock()
	return movie, nil
}

func (s *MemoryMovieStore) Delete(_ context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrMovieNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.movies {
		if m.ID == oid {
			s.movies = append(s.movies[:i], s.movies[i+1:]...)
			return nil
		}
	}
	return ErrMovieNotFound
}

func (s *MemoryMovieStore) Counts(_ context.Context) (MovieCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := MovieCounts{Total: int64(len(s.movies))}
	for _, m := range s.movies {
		switch m.Type {
		case models.MovieTypeFilm:
			counts.Films++
		case models.MovieTypeSeries:
			counts.Series++
		}
	}
	return counts, nil
}

type MemoryRequestStore struct {
	mu       sync.Mutex
	requests []models.MovieRequest
}

func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{}
}

func (s *MemoryRequestStore) List(_ context.Context, userID string) ([]models.MovieRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MovieRequest, 0)
	for i := len(s.requests) - 1; i >= 0; i-- {
		r := s.requests[i]
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryRequestStore) Insert(_ context.Context, req models.MovieRequest) (models.MovieRequest, error) {
	if req.ID.IsZero() {
		req.ID = bson.NewObjectID()
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return req, nil
}

func (s *MemoryRequestStore) Resolve(_ context.Context, id string, res Resolution) (models.MovieRequest, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.MovieRequest{}, ErrRequestNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.requests {
		r := &s.requests[i]
		if r.ID != oid {
			continue
		}
		if !r.Status.CanTransitionTo(res.Status) {
			return models.MovieRequest{}, ErrRequestResolved
		}
		at := res.At
		r.Status = res.Status
		r.ResolvedBy = res.ResolvedBy
		r.ResolvedAt = &at
		r.UpdatedAt = at
		if res.Status == models.MovieRequestStatusRejected {
			r.RejectionReason = res.Reason
		}
		return *r, nil
	}
	return models.MovieRequest{}, ErrRequestNotFound
}

func (s *MemoryRequestStore) Counts(_ context.Context) (RequestCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counts RequestCounts
	for _, r := range s.requests {
		counts.add(r.Status, 1)
	}
	return counts, nil
}

type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]models.RevokedUser
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]models.RevokedUser)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, entry models.RevokedUser) error {
	s.mu.Lock()
	s.entries[entry.UserID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryRevocationStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, userID string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	return ok && e.ExpiresAt.After(now), nil
}
