package handlers

import (
	"errors"
	"net/http"

	"github.com/handsomefox/reelscout/internal/prefs"
)

type recentSearchesResponse struct {
	Searches []string `json:"searches"`
}

func (h *Handler) getRecentSearches(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, &recentSearchesResponse{Searches: h.prefs.RecentSearches(r.Context(), profileOf(r))})
	return nil
}

func (h *Handler) postRecentSearch(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &req); err != nil {
		return badRequest("bad request")
	}
	list, err := h.prefs.AddRecentSearch(r.Context(), profileOf(r), req.Query)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, &recentSearchesResponse{Searches: list})
	return nil
}

func (h *Handler) deleteRecentSearches(w http.ResponseWriter, r *http.Request) error {
	if err := h.prefs.ClearRecentSearches(r.Context(), profileOf(r)); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, &recentSearchesResponse{Searches: []string{}})
	return nil
}

type themeBody struct {
	Theme prefs.Theme `json:"theme"`
}

func (h *Handler) getTheme(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, &themeBody{Theme: h.prefs.Theme(r.Context(), profileOf(r))})
	return nil
}

func (h *Handler) putTheme(w http.ResponseWriter, r *http.Request) error {
	var req themeBody
	if err := decodeJSON(r, &req); err != nil {
		return badRequest("bad request")
	}
	if err := h.prefs.SetTheme(r.Context(), profileOf(r), req.Theme); err != nil {
		if errors.Is(err, prefs.ErrInvalidTheme) {
			return badRequest(err.Error())
		}
		return err
	}
	writeJSON(w, http.StatusOK, &req)
	return nil
}
