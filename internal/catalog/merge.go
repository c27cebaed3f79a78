package catalog

import (
	"cmp"
	"slices"

	"github.com/handsomefox/reelscout/internal/tmdb"
)

// MergeByPopularity combines one page of movie results with one page of TV
// results. Items are tagged with their media type, concatenated movies
// first, then stably sorted by popularity descending so equal scores keep
// concatenation order. Totals follow the larger source: pages is the max
// and results the sum, so paging continues after the smaller side runs dry.
func MergeByPopularity(movies, shows tmdb.Page, page int) tmdb.Page {
	out := make([]tmdb.Item, 0, len(movies.Results)+len(shows.Results))
	for _, it := range movies.Results {
		it.MediaType = tmdb.Movie
		out = append(out, it)
	}
	for _, it := range shows.Results {
		it.MediaType = tmdb.TV
		out = append(out, it)
	}
	slices.SortStableFunc(out, func(a, b tmdb.Item) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})

	return tmdb.Page{
		Results:      out,
		Page:         page,
		TotalPages:   max(movies.TotalPages, shows.TotalPages),
		TotalResults: movies.TotalResults + shows.TotalResults,
	}
}
