package catalog

import (
	"context"
	"errors"

	"github.com/handsomefox/reelscout/internal/tmdb"
)

var ErrUnknownCategory = errors.New("unknown category")

const animationGenreID = "16"

type Category struct {
	Slug  string
	Title string
	Kind  tmdb.MediaType

	fetch func(ctx context.Context, src Source, page int) (tmdb.Page, error)
}

var categories = []Category{
	{
		Slug: "trending", Title: "Trending Movies", Kind: tmdb.Movie,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.Trending(ctx, tmdb.Movie, tmdb.Day, page)
		},
	},
	{
		Slug: "popular", Title: "Popular Movies", Kind: tmdb.Movie,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.PopularMovies(ctx, page)
		},
	},
	{
		Slug: "now-playing", Title: "Now Playing", Kind: tmdb.Movie,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.NowPlaying(ctx, page)
		},
	},
	{
		Slug: "top-rated", Title: "Top Rated Movies", Kind: tmdb.Movie,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.TopRated(ctx, page)
		},
	},
	{
		Slug: "upcoming", Title: "Upcoming Movies", Kind: tmdb.Movie,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.Upcoming(ctx, page)
		},
	},
	{
		Slug: "tv-shows", Title: "TV Shows", Kind: tmdb.TV,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.PopularTV(ctx, page)
		},
	},
	{
		Slug: "on-the-air", Title: "On The Air", Kind: tmdb.TV,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.OnTheAir(ctx, page)
		},
	},
	{
		Slug: "anime", Title: "Anime Movies", Kind: tmdb.Movie,
		fetch: func(ctx context.Context, src Source, page int) (tmdb.Page, error) {
			return src.Discover(ctx, tmdb.Movie, tmdb.DiscoverFilters{
				Genres:           animationGenreID,
				OriginalLanguage: "ja",
				Sort:             "popularity.desc",
			}, page)
		},
	},
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func LookupCategory(slug string) (Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}
