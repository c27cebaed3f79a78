// Package handlers wires HTTP routing and API handlers.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/reelscout/internal/catalog"
	"github.com/handsomefox/reelscout/internal/chat"
	"github.com/handsomefox/reelscout/internal/env"
	"github.com/handsomefox/reelscout/internal/favorites"
	"github.com/handsomefox/reelscout/internal/prefs"
	"github.com/handsomefox/reelscout/internal/tmdb"
)

type Handler struct {
	catalog   *catalog.Service
	sessions  *catalog.Sessions
	chat      *chat.Proxy
	favorites *favorites.Store
	watchlist *favorites.Store
	prefs     *prefs.Store
	imageBase string
	env       env.Environment
}

type Config struct {
	Catalog   *catalog.Service
	Sessions  *catalog.Sessions
	Chat      *chat.Proxy
	Favorites *favorites.Store
	Watchlist *favorites.Store
	Prefs     *prefs.Store
	ImageBase string
	Env       env.Environment
}

func New(cfg *Config) (*Handler, error) {
	switch {
	case cfg.Catalog == nil:
		return nil, errors.New("catalog service is required")
	case cfg.Sessions == nil:
		return nil, errors.New("sessions are required")
	case cfg.Chat == nil:
		return nil, errors.New("chat proxy is required")
	case cfg.Favorites == nil || cfg.Watchlist == nil:
		return nil, errors.New("favorites and watchlist stores are required")
	case cfg.Prefs == nil:
		return nil, errors.New("prefs store is required")
	}

	imageBase := strings.TrimSpace(cfg.ImageBase)
	if imageBase == "" {
		imageBase = tmdb.DefaultImageBase
	}

	return &Handler{
		catalog:   cfg.Catalog,
		sessions:  cfg.Sessions,
		chat:      cfg.Chat,
		favorites: cfg.Favorites,
		watchlist: cfg.Watchlist,
		prefs:     cfg.Prefs,
		imageBase: imageBase,
		env:       cfg.Env,
	}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Method(http.MethodGet, "/healthz", Adapt(h.getHealth))

	r.Group(func(r chi.Router) {
		r.Use(h.MiddlewareProfile)
		r.Use(MiddlewareLanguage)

		r.Method(http.MethodGet, "/config", Adapt(h.getConfig))
		r.Method(http.MethodPost, "/profile/reset", Adapt(h.postProfileReset))

		r.Route("/catalog", func(r chi.Router) {
			r.Method(http.MethodGet, "/categories", Adapt(h.getCategories))
			r.Method(http.MethodGet, "/categories/{slug}", Adapt(h.getCategory))
			r.Method(http.MethodGet, "/trending/{kind}/{window}", Adapt(h.getTrending))
			r.Method(http.MethodGet, "/search", Adapt(h.getSearch))
			r.Method(http.MethodGet, "/discover", Adapt(h.getDiscover))
			r.Method(http.MethodGet, "/genres/{kind}", Adapt(h.getGenres))
			r.Method(http.MethodGet, "/genre/{genreID:[0-9]+}", Adapt(h.getByGenre))

			r.Route("/{kind}/{id:[0-9]+}", func(r chi.Router) {
				r.Method(http.MethodGet, "/", Adapt(h.getDetails))
				r.Method(http.MethodGet, "/recommendations", Adapt(h.getRecommendations))
			})
		})

		r.Route("/browse/{feed}", func(r chi.Router) {
			r.Method(http.MethodGet, "/", Adapt(h.getBrowse))
			r.Method(http.MethodPost, "/reset", Adapt(h.postBrowseReset))
			r.Method(http.MethodPost, "/more", Adapt(h.postBrowseMore))
		})

		r.Route("/favorites", h.collectionRoutes(h.favorites))
		r.Route("/watchlist", h.collectionRoutes(h.watchlist))

		r.Route("/recent-searches", func(r chi.Router) {
			r.Method(http.MethodGet, "/", Adapt(h.getRecentSearches))
			r.Method(http.MethodPost, "/", Adapt(h.postRecentSearch))
			r.Method(http.MethodDelete, "/", Adapt(h.deleteRecentSearches))
		})

		r.Method(http.MethodGet, "/preferences/theme", Adapt(h.getTheme))
		r.Method(http.MethodPut, "/preferences/theme", Adapt(h.putTheme))

		r.Method(http.MethodPost, "/chat", Adapt(h.postChat))
	})
}

func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

type categoryView struct {
	Slug  string         `json:"slug"`
	Title string         `json:"title"`
	Type  tmdb.MediaType `json:"type"`
}

type configResponse struct {
	Profile     string         `json:"profile"`
	ImageBase   string         `json:"image_base"`
	ImageSizes  []string       `json:"image_sizes"`
	Languages   []string       `json:"languages"`
	Categories  []categoryView `json:"categories"`
	ChatEnabled bool           `json:"chat_enabled"`
	Theme       prefs.Theme    `json:"theme"`
}

func categoryViews() []categoryView {
	cats := catalog.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Slug: c.Slug, Title: c.Title, Type: c.Kind})
	}
	return out
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, &configResponse{
		Profile:   profileOf(r),
		ImageBase: h.imageBase,
		ImageSizes: []string{
			string(tmdb.W92), string(tmdb.W154), string(tmdb.W185), string(tmdb.W342),
			string(tmdb.W500), string(tmdb.W780), string(tmdb.W1280), string(tmdb.Original),
		},
		Languages:   tmdb.SupportedLanguages,
		Categories:  categoryViews(),
		ChatEnabled: h.chat.Configured(),
		Theme:       h.prefs.Theme(r.Context(), profileOf(r)),
	})
	return nil
}

// postProfileReset drops the profile cookie; the next request gets a fresh
// profile with empty collections.
func (h *Handler) postProfileReset(w http.ResponseWriter, r *http.Request) error {
	h.clearProfileCookie(w)
	w.WriteHeader(http.StatusNoContent)
	return nil
}
