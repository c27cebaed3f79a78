// Package catalog aggregates TMDB listings: request deduplication, combined
// movie+TV search, categories and incremental paging sessions.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"github.com/handsomefox/reelscout/internal/tmdb"
)

// Source is the upstream catalog. *tmdb.Client satisfies it.
type Source interface {
	PopularMovies(ctx context.Context, page int) (tmdb.Page, error)
	NowPlaying(ctx context.Context, page int) (tmdb.Page, error)
	TopRated(ctx context.Context, page int) (tmdb.Page, error)
	Upcoming(ctx context.Context, page int) (tmdb.Page, error)
	PopularTV(ctx context.Context, page int) (tmdb.Page, error)
	OnTheAir(ctx context.Context, page int) (tmdb.Page, error)
	Trending(ctx context.Context, kind tmdb.MediaType, window tmdb.TrendingWindow, page int) (tmdb.Page, error)
	Search(ctx context.Context, query string, kind tmdb.MediaType, page int) (tmdb.Page, error)
	Discover(ctx context.Context, kind tmdb.MediaType, filters tmdb.DiscoverFilters, page int) (tmdb.Page, error)
	ByGenre(ctx context.Context, genreID, page int) (tmdb.Page, error)
	Details(ctx context.Context, id int64, kind tmdb.MediaType) (*tmdb.Detail, error)
	Recommendations(ctx context.Context, id int64, kind tmdb.MediaType, page int) (tmdb.Page, error)
	Genres(ctx context.Context, kind tmdb.MediaType) ([]tmdb.Genre, error)
}

// Kind selects the search namespace.
type Kind string

const (
	All    Kind = "all"
	Movies Kind = "movie"
	Shows  Kind = "tv"
)

func ParseKind(raw string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case Movies:
		return Movies
	case Shows:
		return Shows
	default:
		return All
	}
}

// Service fronts a Source. Identical concurrent calls share one upstream
// request. Pages it returns may be shared between callers and must be
// treated as read-only.
type Service struct {
	src   Source
	group singleflight.Group
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// sharedCallTimeout bounds a deduplicated upstream call, which outlives any
// single caller.
const sharedCallTimeout = 30 * time.Second

// dedupe runs fn once for concurrent callers of key. fn gets a context that
// keeps ctx's values but not its cancellation, so one caller going away does
// not fail the others; each caller still stops waiting when its own ctx ends.
func dedupe[T any](ctx context.Context, s *Service, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	key = tmdb.LanguageFrom(ctx, "") + "|" + key
	ch := s.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return fn(shared)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func clamp(p tmdb.Page) tmdb.Page {
	p.TotalPages = min(p.TotalPages, tmdb.MaxPages)
	return p
}

// Search runs a title search. For All the movie and TV searches run
// concurrently and are merged by popularity.
func (s *Service) Search(ctx context.Context, query string, kind Kind, page int) (tmdb.Page, error) {
	query = strings.TrimSpace(query)
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("search:%s:%d:%s", kind, page, query)
	return dedupe(ctx, s, key, func(ctx context.Context) (tmdb.Page, error) {
		switch kind {
		case Movies, Shows:
			p, err := s.src.Search(ctx, query, tmdb.MediaType(kind), page)
			if err != nil {
				return tmdb.Page{}, err
			}
			return clamp(p), nil
		default:
			return s.searchAll(ctx, query, page)
		}
	})
}

func (s *Service) searchAll(ctx context.Context, query string, page int) (tmdb.Page, error) {
	var movies, shows tmdb.Page

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		movies, err = s.src.Search(ctx, query, tmdb.Movie, page)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		shows, err = s.src.Search(ctx, query, tmdb.TV, page)
		return err
	})
	if err := p.Wait(); err != nil {
		return tmdb.Page{}, err
	}
	return clamp(MergeByPopularity(movies, shows, page)), nil
}

func (s *Service) Trending(ctx context.Context, kind tmdb.MediaType, window tmdb.TrendingWindow, page int) (tmdb.Page, error) {
	key := fmt.Sprintf("trending:%s:%s:%d", kind, window, page)
	return dedupe(ctx, s, key, func(ctx context.Context) (tmdb.Page, error) {
		p, err := s.src.Trending(ctx, kind, window, page)
		return clamp(p), err
	})
}

func (s *Service) Discover(ctx context.Context, kind tmdb.MediaType, filters tmdb.DiscoverFilters, page int) (tmdb.Page, error) {
	key := fmt.Sprintf("discover:%s:%d:%s", kind, page, filtersKey(filters))
	return dedupe(ctx, s, key, func(ctx context.Context) (tmdb.Page, error) {
		p, err := s.src.Discover(ctx, kind, filters, page)
		return clamp(p), err
	})
}

func (s *Service) ByGenre(ctx context.Context, genreID, page int) (tmdb.Page, error) {
	key := fmt.Sprintf("genre:%d:%d", genreID, page)
	return dedupe(ctx, s, key, func(ctx context.Context) (tmdb.Page, error) {
		p, err := s.src.ByGenre(ctx, genreID, page)
		return clamp(p), err
	})
}

func (s *Service) Details(ctx context.Context, id int64, kind tmdb.MediaType) (*tmdb.Detail, error) {
	key := fmt.Sprintf("details:%s:%d", kind, id)
	return dedupe(ctx, s, key, func(ctx context.Context) (*tmdb.Detail, error) {
		return s.src.Details(ctx, id, kind)
	})
}

func (s *Service) Recommendations(ctx context.Context, id int64, kind tmdb.MediaType, page int) (tmdb.Page, error) {
	key := fmt.Sprintf("recommendations:%s:%d:%d", kind, id, page)
	return dedupe(ctx, s, key, func(ctx context.Context) (tmdb.Page, error) {
		p, err := s.src.Recommendations(ctx, id, kind, page)
		return clamp(p), err
	})
}

func (s *Service) Genres(ctx context.Context, kind tmdb.MediaType) ([]tmdb.Genre, error) {
	return dedupe(ctx, s, "genres:"+string(kind), func(ctx context.Context) ([]tmdb.Genre, error) {
		return s.src.Genres(ctx, kind)
	})
}

// Category returns one page of a fixed category listing.
func (s *Service) Category(ctx context.Context, slug string, page int) (tmdb.Page, error) {
	c, ok := LookupCategory(slug)
	if !ok {
		return tmdb.Page{}, fmt.Errorf("%w: %q", ErrUnknownCategory, slug)
	}
	key := fmt.Sprintf("category:%s:%d", c.Slug, page)
	return dedupe(ctx, s, key, func(ctx context.Context) (tmdb.Page, error) {
		p, err := c.fetch(ctx, s.src, page)
		return clamp(p), err
	})
}

// CategorySearch searches within the namespace of a category.
func (s *Service) CategorySearch(ctx context.Context, slug, query string, page int) (tmdb.Page, error) {
	c, ok := LookupCategory(slug)
	if !ok {
		return tmdb.Page{}, fmt.Errorf("%w: %q", ErrUnknownCategory, slug)
	}
	return s.Search(ctx, query, Kind(c.Kind), page)
}

func filtersKey(f tmdb.DiscoverFilters) string {
	var b strings.Builder
	b.WriteString(f.Genres)
	b.WriteByte('|')
	b.WriteString(f.Sort)
	b.WriteByte('|')
	b.WriteString(f.OriginalLanguage)
	for _, v := range []*int{f.Year, f.YearFrom, f.YearTo, f.MinVotes} {
		b.WriteByte('|')
		if v != nil {
			fmt.Fprintf(&b, "%d", *v)
		}
	}
	b.WriteByte('|')
	if f.MinRating != nil {
		fmt.Fprintf(&b, "%.1f", *f.MinRating)
	}
	return b.String()
}
