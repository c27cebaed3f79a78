package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type TrendingWindow string

const (
	Day  TrendingWindow = "day"
	Week TrendingWindow = "week"
)

type DiscoverFilters struct {
	Genres           string
	Year             *int
	YearFrom         *int
	YearTo           *int
	MinRating        *float64
	MinVotes         *int
	Sort             string
	OriginalLanguage string
}

var discoverSorts = map[string]bool{
	"popularity.desc":           true,
	"popularity.asc":            true,
	"vote_average.desc":         true,
	"vote_average.asc":          true,
	"vote_count.desc":           true,
	"primary_release_date.desc": true,
	"primary_release_date.asc":  true,
	"first_air_date.desc":       true,
	"first_air_date.asc":        true,
	"revenue.desc":              true,
	"original_title.asc":        true,
	"original_name.asc":         true,
}

func (c *Client) PopularMovies(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "/movie/popular", Movie, nil, page)
}

func (c *Client) NowPlaying(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "/movie/now_playing", Movie, nil, page)
}

func (c *Client) TopRated(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "/movie/top_rated", Movie, nil, page)
}

func (c *Client) Upcoming(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "/movie/upcoming", Movie, nil, page)
}

func (c *Client) PopularTV(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "/tv/popular", TV, nil, page)
}

func (c *Client) OnTheAir(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "/tv/on_the_air", TV, nil, page)
}

// Trending lists trending titles. kind may be Movie, TV or empty for both.
func (c *Client) Trending(ctx context.Context, kind MediaType, window TrendingWindow, page int) (Page, error) {
	if window != Day && window != Week {
		window = Day
	}
	segment := "all"
	if kind != "" {
		if !kind.Valid() {
			return Page{}, ErrInvalidMediaType
		}
		segment = string(kind)
	}
	return c.list(ctx, fmt.Sprintf("/trending/%s/%s", segment, window), kind, nil, page)
}

// Search runs a title search in one namespace. An empty query yields an empty page.
func (c *Client) Search(ctx context.Context, query string, kind MediaType, page int) (Page, error) {
	if !kind.Valid() {
		return Page{}, ErrInvalidMediaType
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{}, nil
	}
	values := url.Values{}
	values.Set("query", query)
	values.Set("include_adult", "false")
	return c.list(ctx, "/search/"+string(kind), kind, values, page)
}

func (c *Client) Recommendations(ctx context.Context, id int64, kind MediaType, page int) (Page, error) {
	if !kind.Valid() {
		return Page{}, ErrInvalidMediaType
	}
	return c.list(ctx, fmt.Sprintf("/%s/%d/recommendations", kind, id), kind, nil, page)
}

func (c *Client) ByGenre(ctx context.Context, genreID, page int) (Page, error) {
	return c.Discover(ctx, Movie, DiscoverFilters{Genres: strconv.Itoa(genreID)}, page)
}

func (c *Client) Discover(ctx context.Context, kind MediaType, filters DiscoverFilters, page int) (Page, error) {
	if !kind.Valid() {
		return Page{}, ErrInvalidMediaType
	}
	values := url.Values{}
	values.Set("include_adult", "false")
	sort := strings.TrimSpace(filters.Sort)
	if !discoverSorts[sort] {
		sort = "popularity.desc"
	}
	values.Set("sort_by", sort)
	if g := strings.TrimSpace(filters.Genres); g != "" {
		values.Set("with_genres", g)
	}
	if lang := strings.TrimSpace(filters.OriginalLanguage); lang != "" {
		values.Set("with_original_language", strings.ToLower(lang))
	}
	if filters.MinRating != nil {
		values.Set("vote_average.gte", strconv.FormatFloat(*filters.MinRating, 'f', 1, 64))
	}
	if filters.MinVotes != nil {
		values.Set("vote_count.gte", strconv.Itoa(*filters.MinVotes))
	}
	yearKey := "primary_release_year"
	dateFromKey := "primary_release_date.gte"
	dateToKey := "primary_release_date.lte"
	if kind == TV {
		yearKey = "first_air_date_year"
		dateFromKey = "first_air_date.gte"
		dateToKey = "first_air_date.lte"
	}
	if filters.Year != nil {
		values.Set(yearKey, strconv.Itoa(*filters.Year))
	}
	if filters.YearFrom != nil {
		values.Set(dateFromKey, fmt.Sprintf("%04d-01-01", *filters.YearFrom))
	}
	if filters.YearTo != nil {
		values.Set(dateToKey, fmt.Sprintf("%04d-12-31", *filters.YearTo))
	}
	return c.list(ctx, "/discover/"+string(kind), kind, values, page)
}

func (c *Client) Details(ctx context.Context, id int64, kind MediaType) (*Detail, error) {
	if !kind.Valid() {
		return nil, ErrInvalidMediaType
	}
	values := url.Values{}
	values.Set("append_to_response", "credits,videos,similar")

	var payload rawDetail
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, id), values, &payload); err != nil {
		return nil, err
	}
	it, _ := payload.item(kind)
	detail := &Detail{
		Item:             it,
		Tagline:          payload.Tagline,
		Status:           payload.Status,
		Homepage:         payload.Homepage,
		Runtime:          payload.Runtime,
		NumberOfSeasons:  payload.NumberOfSeasons,
		NumberOfEpisodes: payload.NumberOfEpisodes,
		Credits: Credits{
			Cast: payload.Credits.Cast,
			Crew: payload.Credits.Crew,
		},
		Videos:  payload.Videos.Results,
		Similar: payload.Similar.page(kind),
	}
	if detail.Runtime == 0 && len(payload.EpisodeRunTime) > 0 {
		detail.Runtime = payload.EpisodeRunTime[0]
	}
	return detail, nil
}

func (c *Client) Genres(ctx context.Context, kind MediaType) ([]Genre, error) {
	if !kind.Valid() {
		return nil, ErrInvalidMediaType
	}
	var payload struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/"+string(kind)+"/list", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

func (c *Client) list(ctx context.Context, path string, override MediaType, values url.Values, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if values == nil {
		values = url.Values{}
	}
	values.Set("page", strconv.Itoa(page))

	var payload rawPage
	if err := c.get(ctx, path, values, &payload); err != nil {
		return Page{}, err
	}
	out := payload.page(override)
	if out.Page == 0 {
		out.Page = page
	}
	return out, nil
}
