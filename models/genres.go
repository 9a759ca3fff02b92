package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Genres is an ordered set of genre names. Legacy documents and some clients
// send a single string; both shapes decode into the same value.
type Genres []string

// NewGenres trims names, drops blanks and keeps the first occurrence of each.
func NewGenres(names ...string) Genres {
	seen := make(map[string]struct{}, len(names))
	out := make(Genres, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (g Genres) Contains(name string) bool {
	for _, n := range g {
		if n == name {
			return true
		}
	}
	return false
}

func (g *Genres) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*g = NewGenres(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("genre must be a string or an array of strings")
	}
	*g = NewGenres(many...)
	return nil
}

func (g *Genres) UnmarshalBSONValue(typ byte, data []byte) error {
	raw := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch raw.Type {
	case bson.TypeNull, bson.TypeUndefined:
		*g = Genres{}
		return nil
	case bson.TypeString:
		s, _ := raw.StringValueOK()
		*g = NewGenres(s)
		return nil
	case bson.TypeArray:
		var many []string
		if err := raw.Unmarshal(&many); err != nil {
			return fmt.Errorf("decode genre array: %w", err)
		}
		*g = NewGenres(many...)
		return nil
	default:
		return fmt.Errorf("cannot decode genre from BSON type %s", raw.Type)
	}
}
