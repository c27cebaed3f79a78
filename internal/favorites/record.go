package favorites

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handsomefox/reelscout/internal/tmdb"
)

var ErrInvalidRecord = errors.New("invalid record")

// Record is one saved title. Optional fields stay nil when the catalog did
// not provide them.
type Record struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	PosterPath  *string        `json:"poster_path"`
	VoteAverage *float64       `json:"vote_average"`
	ReleaseDate *string        `json:"release_date"`
	VoteCount   int            `json:"vote_count"`
	Type        tmdb.MediaType `json:"type,omitempty"`
}

// Key identifies a record. The same numeric id exists for movies and shows.
type Key struct {
	ID   int64
	Type tmdb.MediaType
}

func KeyOf(id int64, kind tmdb.MediaType) Key {
	if kind == "" {
		kind = tmdb.Movie
	}
	return Key{ID: id, Type: kind}
}

func (r *Record) Key() Key { return KeyOf(r.ID, r.Type) }

func (r *Record) Rating() float64 {
	if r.VoteAverage == nil {
		return 0
	}
	return *r.VoteAverage
}

// Year is the release year, 0 when the date is missing or malformed.
func (r *Record) Year() int {
	if r.ReleaseDate == nil {
		return 0
	}
	if y := tmdb.ParseYear(firstN(*r.ReleaseDate, 4)); y != nil {
		return *y
	}
	return 0
}

func (r *Record) normalize() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidRecord)
	}
	if r.Type == "" {
		r.Type = tmdb.Movie
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: type %q", ErrInvalidRecord, r.Type)
	}
	return nil
}

func firstN(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) < n {
		return s
	}
	return s[:n]
}
