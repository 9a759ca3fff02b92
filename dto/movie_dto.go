package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/princinho/streamcatalog/models"
)

// Year accepts 2021 as well as "2021".
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = Year(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("releaseYear must be a number")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("releaseYear must be a number")
	}
	*y = Year(n)
	return nil
}

type EpisodeDTO struct {
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl"`
	Description string `json:"description"`
}

type CreateMovieDTO struct {
	Title        string        `json:"title"`
	Type         string        `json:"type"`
	Duration     string        `json:"duration"`
	Description  string        `json:"description"`
	Genre        models.Genres `json:"genre"`
	ReleaseYear  Year          `json:"releaseYear"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	VideoURL     string        `json:"videoUrl"`
	Episodes     []EpisodeDTO  `json:"episodes"`
}

func (d *CreateMovieDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Type = strings.TrimSpace(d.Type)
	d.Duration = strings.TrimSpace(d.Duration)
	d.Description = strings.TrimSpace(d.Description)
	d.ThumbnailURL = strings.TrimSpace(d.ThumbnailURL)
	d.VideoURL = strings.TrimSpace(d.VideoURL)
	for i := range d.Episodes {
		d.Episodes[i].Title = strings.TrimSpace(d.Episodes[i].Title)
		d.Episodes[i].VideoURL = strings.TrimSpace(d.Episodes[i].VideoURL)
		d.Episodes[i].Description = strings.TrimSpace(d.Episodes[i].Description)
	}
}

// Validate checks the common required fields, then the film or série shape.
func (d CreateMovieDTO) Validate() error {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Type == "" {
		missing = append(missing, "type")
	}
	if d.Duration == "" {
		missing = append(missing, "duration")
	}
	if d.Description == "" {
		missing = append(missing, "description")
	}
	if len(d.Genre) == 0 {
		missing = append(missing, "genre")
	}
	if d.ReleaseYear <= 0 {
		missing = append(missing, "releaseYear")
	}
	if d.ThumbnailURL == "" {
		missing = append(missing, "thumbnailUrl")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	switch models.MovieType(d.Type) {
	case models.MovieTypeFilm:
		if d.VideoURL == "" {
			return errors.New("videoUrl is required for a film")
		}
	case models.MovieTypeSeries:
		if len(d.Episodes) == 0 {
			return errors.New("episodes are required for a série")
		}
		for i, ep := range d.Episodes {
			if ep.VideoURL == "" || ep.Description == "" {
				return fmt.Errorf("episode %d: videoUrl and description are required", i+1)
			}
		}
	default:
		return fmt.Errorf("type must be %q or %q", models.MovieTypeFilm, models.MovieTypeSeries)
	}
	return nil
}

// Movie maps the payload onto a catalog entry. Film payloads drop episodes
// and série payloads drop the top-level video link.
func (d CreateMovieDTO) Movie() models.Movie {
	m := models.Movie{
		Title:        d.Title,
		Type:         models.MovieType(d.Type),
		Duration:     d.Duration,
		Description:  d.Description,
		Genre:        d.Genre,
		ReleaseYear:  int(d.ReleaseYear),
		ThumbnailURL: d.ThumbnailURL,
	}
	if m.Type == models.MovieTypeFilm {
		m.VideoURL = d.VideoURL
		return m
	}
	m.Episodes = make([]models.Episode, 0, len(d.Episodes))
	for _, ep := range d.Episodes {
		m.Episodes = append(m.Episodes, models.Episode{
			Title:       ep.Title,
			VideoURL:    ep.VideoURL,
			Description: ep.Description,
		})
	}
	return m
}
