package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/reelscout/internal/catalog"
	"github.com/handsomefox/reelscout/internal/tmdb"
)

func (h *Handler) writePage(w http.ResponseWriter, page tmdb.Page, err error) error {
	if err != nil {
		return catalogError(err)
	}
	writeJSON(w, http.StatusOK, h.toPageView(&page))
	return nil
}

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, categoryViews())
	return nil
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) error {
	page, err := pageParam(r)
	if err != nil {
		return err
	}
	slug := chi.URLParam(r, "slug")
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		res, err := h.catalog.CategorySearch(r.Context(), slug, q, page)
		return h.writePage(w, res, err)
	}
	res, err := h.catalog.Category(r.Context(), slug, page)
	return h.writePage(w, res, err)
}

func (h *Handler) getTrending(w http.ResponseWriter, r *http.Request) error {
	page, err := pageParam(r)
	if err != nil {
		return err
	}
	var kind tmdb.MediaType
	switch raw := strings.ToLower(chi.URLParam(r, "kind")); raw {
	case "all":
	case string(tmdb.Movie), string(tmdb.TV):
		kind = tmdb.MediaType(raw)
	default:
		return badRequest("type must be all, movie or tv")
	}
	window := tmdb.TrendingWindow(strings.ToLower(chi.URLParam(r, "window")))
	if window != tmdb.Day && window != tmdb.Week {
		return badRequest("window must be day or week")
	}
	res, err := h.catalog.Trending(r.Context(), kind, window, page)
	return h.writePage(w, res, err)
}

func (h *Handler) getSearch(w http.ResponseWriter, r *http.Request) error {
	page, err := pageParam(r)
	if err != nil {
		return err
	}
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		query = strings.TrimSpace(q.Get("query"))
	}
	res, err := h.catalog.Search(r.Context(), query, catalog.ParseKind(q.Get("type")), page)
	return h.writePage(w, res, err)
}

func (h *Handler) getDiscover(w http.ResponseWriter, r *http.Request) error {
	page, err := pageParam(r)
	if err != nil {
		return err
	}
	q := r.URL.Query()

	kind := tmdb.Movie
	if raw := strings.ToLower(strings.TrimSpace(q.Get("type"))); raw != "" {
		kind = tmdb.MediaType(raw)
		if !kind.Valid() {
			return badRequest("type must be movie or tv")
		}
	}

	filters := tmdb.DiscoverFilters{
		Genres:           strings.TrimSpace(q.Get("genre")),
		Sort:             strings.TrimSpace(q.Get("sort")),
		OriginalLanguage: strings.TrimSpace(q.Get("original_language")),
	}
	ints := []struct {
		name string
		dst  **int
	}{
		{"year", &filters.Year},
		{"year_from", &filters.YearFrom},
		{"year_to", &filters.YearTo},
		{"min_votes", &filters.MinVotes},
	}
	for _, p := range ints {
		v, err := optionalInt(q.Get(p.name))
		if err != nil {
			return badRequest(p.name + " must be an integer")
		}
		*p.dst = v
	}
	if filters.MinRating, err = optionalFloat(q.Get("min_rating")); err != nil {
		return badRequest("min_rating must be a number")
	}

	res, err := h.catalog.Discover(r.Context(), kind, filters, page)
	return h.writePage(w, res, err)
}

func (h *Handler) getGenres(w http.ResponseWriter, r *http.Request) error {
	kind, err := kindParam(r, "kind")
	if err != nil {
		return err
	}
	genres, err := h.catalog.Genres(r.Context(), kind)
	if err != nil {
		return catalogError(err)
	}
	if genres == nil {
		genres = []tmdb.Genre{}
	}
	writeJSON(w, http.StatusOK, genres)
	return nil
}

func (h *Handler) getByGenre(w http.ResponseWriter, r *http.Request) error {
	page, err := pageParam(r)
	if err != nil {
		return err
	}
	genreID, err := strconv.Atoi(chi.URLParam(r, "genreID"))
	if err != nil || genreID <= 0 {
		return badRequest("bad genre id")
	}
	res, err := h.catalog.ByGenre(r.Context(), genreID, page)
	return h.writePage(w, res, err)
}

func (h *Handler) getDetails(w http.ResponseWriter, r *http.Request) error {
	kind, err := kindParam(r, "kind")
	if err != nil {
		return err
	}
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest(err.Error())
	}
	detail, err := h.catalog.Details(r.Context(), id, kind)
	if err != nil {
		return catalogError(err)
	}
	writeJSON(w, http.StatusOK, h.toDetailView(detail))
	return nil
}

func (h *Handler) getRecommendations(w http.ResponseWriter, r *http.Request) error {
	kind, err := kindParam(r, "kind")
	if err != nil {
		return err
	}
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest(err.Error())
	}
	page, err := pageParam(r)
	if err != nil {
		return err
	}
	res, err := h.catalog.Recommendations(r.Context(), id, kind, page)
	return h.writePage(w, res, err)
}
