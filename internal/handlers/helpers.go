package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/reelscout/internal/catalog"
	"github.com/handsomefox/reelscout/internal/tmdb"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", slog.Any("err", err))
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected trailing json")
		}
		return err
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("bad id")
	}
	return id, nil
}

func kindParam(r *http.Request, name string) (tmdb.MediaType, error) {
	kind := tmdb.MediaType(strings.ToLower(chi.URLParam(r, name)))
	if !kind.Valid() {
		return "", badRequest("type must be movie or tv")
	}
	return kind, nil
}

// pageParam reads ?page, defaulting to 1 and capping at the upstream limit.
func pageParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, badRequest("page must be a positive integer")
	}
	if page > tmdb.MaxPages {
		return 0, badRequest("page must be at most " + strconv.Itoa(tmdb.MaxPages))
	}
	return page, nil
}

func optionalInt(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func badRequest(msg string) error { return &Error{Status: http.StatusBadRequest, Message: msg} }
func notFound(msg string) error   { return &Error{Status: http.StatusNotFound, Message: msg} }
func conflict(msg string) error   { return &Error{Status: http.StatusConflict, Message: msg} }

// catalogError maps failures of the catalog layer onto responses. Upstream
// problems are reported as 502 with the upstream status in Code.
func catalogError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrUnknownCategory):
		return notFound("unknown category")
	case errors.Is(err, tmdb.ErrInvalidMediaType):
		return badRequest("type must be movie or tv")
	case tmdb.IsUnauthorized(err):
		return &Error{
			Status:  http.StatusBadGateway,
			Message: "catalog unauthorized: check TMDB credentials",
			Code:    http.StatusUnauthorized,
		}
	case tmdb.StatusCode(err) == http.StatusNotFound:
		return notFound("not found")
	case tmdb.StatusCode(err) != 0:
		return &Error{Status: http.StatusBadGateway, Message: "catalog request failed", Code: tmdb.StatusCode(err)}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Message: "catalog timed out"}
	default:
		slog.Warn("catalog unavailable", slog.Any("err", err))
		return &Error{Status: http.StatusBadGateway, Message: "catalog unavailable"}
	}
}

func optionalString(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}
