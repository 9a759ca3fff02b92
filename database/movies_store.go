package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/princinho/streamcatalog/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const MoviesCollection = "movies"

type MongoMovieStore struct {
	col *mongo.Collection
}

func NewMongoMovieStore(db *mongo.Database) *MongoMovieStore {
	return &MongoMovieStore{col: db.Collection(MoviesCollection)}
}

func (s *MongoMovieStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create movie indexes: %w", err)
	}
	return nil
}

// movieListFilter builds the query document. A genre equality match hits both
// array fields (membership) and legacy single-string fields.
func movieListFilter(f MovieFilter) bson.M {
	filter := bson.M{}
	if genre := strings.TrimSpace(f.Genre); genre != "" {
		filter["genre"] = genre
	}
	if typ := strings.TrimSpace(f.Type); typ != "" {
		filter["type"] = typ
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		escaped := regexp.QuoteMeta(q)
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": escaped, "$options": "i"}},
			{"description": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}
	return filter
}

func (s *MongoMovieStore) List(ctx context.Context, f MovieFilter) ([]models.Movie, int64, error) {
	filter := movieListFilter(f)

	opts := options.Find().
		SetSkip(f.Skip()).
		SetLimit(int64(f.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find movies: %w", err)
	}
	defer cursor.Close(ctx)

	movies := make([]models.Movie, 0)
	for cursor.Next(ctx) {
		var m models.Movie
		if err := cursor.Decode(&m); err != nil {
			return nil, 0, fmt.Errorf("decode movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("movie cursor: %w", err)
	}

	// Total count for pagination UI
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}
	return movies, total, nil
}

func (s *MongoMovieStore) Get(ctx context.Context, id string) (models.Movie, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.Movie{}, ErrMovieNotFound
	}
	var m models.Movie
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Movie{}, ErrMovieNotFound
		}
		return models.Movie{}, fmt.Errorf("find movie: %w", err)
	}
	return m, nil
}

func (s *MongoMovieStore) Insert(ctx context.Context, movie models.Movie) (models.Movie, error) {
	if movie.ID.IsZero() {
		movie.ID = bson.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, movie); err != nil {
		return models.Movie{}, fmt.Errorf("insert movie: %w", err)
	}
	return movie, nil
}

func (s *MongoMovieStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrMovieNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func (s *MongoMovieStore) Counts(ctx context.Context) (MovieCounts, error) {
	var counts MovieCounts
	var err error
	if counts.Total, err = s.col.CountDocuments(ctx, bson.M{}); err != nil {
		return MovieCounts{}, fmt.Errorf("count movies: %w", err)
	}
	if counts.Films, err = s.col.CountDocuments(ctx, bson.M{"type": models.MovieTypeFilm}); err != nil {
		return MovieCounts{}, fmt.Errorf("count films: %w", err)
	}
	if counts.Series, err = s.col.CountDocuments(ctx, bson.M{"type": models.MovieTypeSeries}); err != nil {
		return MovieCounts{}, fmt.Errorf("count series: %w", err)
	}
	return counts, nil
}
