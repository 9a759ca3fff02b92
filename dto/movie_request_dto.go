package dto

import (
	"errors"
	"strings"
)

type CreateMovieRequestDTO struct {
	Title    string `json:"title"`
	ImdbLink string `json:"imdbLink"`
	Comment  string `json:"comment"`
}

func (d *CreateMovieRequestDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.ImdbLink = strings.TrimSpace(d.ImdbLink)
	d.Comment = strings.TrimSpace(d.Comment)
}

func (d CreateMovieRequestDTO) Validate() error {
	if d.Title == "" || d.ImdbLink == "" {
		return errors.New("title and imdbLink are required")
	}
	if !strings.Contains(d.ImdbLink, "imdb.com") {
		return errors.New("imdbLink must be an imdb.com link")
	}
	return nil
}

type RejectMovieRequestDTO struct {
	Reason string `json:"reason"`
}
