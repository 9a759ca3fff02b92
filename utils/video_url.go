package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/princinho/streamcatalog/models"
)

var (
	driveFilePath  = regexp.MustCompile(`^(?:https?://)?(?:www\.)?drive\.google\.com/file/d/([A-Za-z0-9_-]+)`)
	driveFileQuery = regexp.MustCompile(`^(?:https?://)?(?:www\.)?drive\.google\.com/(?:open|uc)\?(?:[^#]*&)?id=([A-Za-z0-9_-]+)`)
)

const drivePreviewURL = "https://drive.google.com/file/d/%s/preview"

// EmbeddableVideoURL rewrites a Google Drive file link into its player
// preview URL. Other links are returned unchanged. The result is a fixed
// point: rewriting a preview URL yields the same string.
func EmbeddableVideoURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := driveFilePath.FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf(drivePreviewURL, m[1])
	}
	if m := driveFileQuery.FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf(drivePreviewURL, m[1])
	}
	return raw
}

// EmbeddableMovie returns a copy of m with every video link rewritten.
// Stored documents keep their original links.
func EmbeddableMovie(m models.Movie) models.Movie {
	m.VideoURL = EmbeddableVideoURL(m.VideoURL)
	if len(m.Episodes) > 0 {
		episodes := make([]models.Episode, len(m.Episodes))
		for i, ep := range m.Episodes {
			ep.VideoURL = EmbeddableVideoURL(ep.VideoURL)
			episodes[i] = ep
		}
		m.Episodes = episodes
	}
	return m
}
