package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/reelscout/internal/catalog"
	"github.com/handsomefox/reelscout/internal/logger"
)

func (h *Handler) pager(r *http.Request) (*catalog.Pager, error) {
	feed := chi.URLParam(r, "feed")
	p, err := h.sessions.Pager(profileOf(r), feed)
	if errors.Is(err, catalog.ErrUnknownCategory) {
		return nil, notFound("unknown feed")
	}
	return p, err
}

func (h *Handler) getBrowse(w http.ResponseWriter, r *http.Request) error {
	p, err := h.pager(r)
	if err != nil {
		return err
	}
	snap := p.Snapshot()
	writeJSON(w, http.StatusOK, h.toSnapshotView(&snap))
	return nil
}

type resetRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// postBrowseReset starts a new session for the feed. A submitted search is
// also remembered in the profile's recent searches.
func (h *Handler) postBrowseReset(w http.ResponseWriter, r *http.Request) error {
	p, err := h.pager(r)
	if err != nil {
		return err
	}

	var req resetRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("bad request")
	}
	q := catalog.Query{Text: strings.TrimSpace(req.Query), Kind: catalog.ParseKind(req.Type)}

	if chi.URLParam(r, "feed") == catalog.SearchFeed && q.Text != "" {
		if _, err := h.prefs.AddRecentSearch(r.Context(), profileOf(r), q.Text); err != nil {
			slog.Warn("browse: remember search failed", logger.Error(err))
		}
	}

	snap := p.Reset(q)
	writeJSON(w, http.StatusOK, h.toSnapshotView(&snap))
	return nil
}

func (h *Handler) postBrowseMore(w http.ResponseWriter, r *http.Request) error {
	p, err := h.pager(r)
	if err != nil {
		return err
	}

	snap, err := p.LoadMore(r.Context())
	switch {
	case err == nil, errors.Is(err, catalog.ErrExhausted):
	case errors.Is(err, catalog.ErrBusy):
		return conflict("a page is already loading")
	case errors.Is(err, catalog.ErrStale):
		return conflict("the session was reset while loading")
	default:
		return catalogError(err)
	}
	writeJSON(w, http.StatusOK, h.toSnapshotView(&snap))
	return nil
}
