package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func GenerateSlug(name string) string {
	// Normalize accents
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue // remove accent marks
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// PageLimits bounds list queries.
type PageLimits struct {
	Default int
	Max     int
}

// Clamp resolves page and limit query values. Missing or invalid values fall
// back to page 1 and the default limit; limits above Max are capped.
func (l PageLimits) Clamp(pageStr, limitStr string) (page, limit int) {
	def := l.Default
	if def < 1 {
		def = 20
	}
	page = ParseIntDefault(pageStr, 1)
	limit = ParseIntDefault(limitStr, def)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if l.Max > 0 && limit > l.Max {
		limit = l.Max
	}
	// (page-1)*limit must stay representable.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}
