package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type MovieType string

const (
	MovieTypeFilm   MovieType = "film"
	MovieTypeSeries MovieType = "série"
)

func (t MovieType) Valid() bool {
	return t == MovieTypeFilm || t == MovieTypeSeries
}

type Episode struct {
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	VideoURL    string `bson:"videoUrl" json:"videoUrl"`
	Description string `bson:"description" json:"description"`
}

type Movie struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string        `bson:"title" json:"title"`
	Slug         string        `bson:"slug" json:"slug"`
	Type         MovieType     `bson:"type" json:"type"`
	Duration     string        `bson:"duration" json:"duration"`
	Description  string        `bson:"description" json:"description"`
	Genre        Genres        `bson:"genre" json:"genre"`
	ReleaseYear  int           `bson:"releaseYear" json:"releaseYear"`
	ThumbnailURL string        `bson:"thumbnailUrl" json:"thumbnailUrl"`
	VideoURL     string        `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Episodes     []Episode     `bson:"episodes,omitempty" json:"episodes,omitempty"`
	CreatedBy    string        `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Thumbnail describes an uploaded cover image.
type Thumbnail struct {
	URL        string    `json:"url"`
	ObjectName string    `json:"objectName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}
