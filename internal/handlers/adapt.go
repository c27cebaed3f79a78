package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/handsomefox/reelscout/internal/logger"
)

type HandlerWithErr func(w http.ResponseWriter, r *http.Request) error

// Error is an error with a response status. Code carries an upstream status
// when the failure came from a dependency.
type Error struct {
	Status  int
	Message string
	Code    int
}

func (e *Error) Error() string {
	return e.Message + " code=" + strconv.FormatInt(int64(e.Status), 10)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

func Adapt(h HandlerWithErr) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			var statusErr *Error
			if errors.As(err, &statusErr) {
				if statusErr.Status >= http.StatusInternalServerError {
					slog.Warn("request failed",
						slog.String("path", r.URL.Path),
						slog.Int("status", statusErr.Status),
						slog.Int("upstream", statusErr.Code))
				}
				writeJSON(w, statusErr.Status, &errorResponse{Error: statusErr.Message, Code: statusErr.Code})
				return
			}
			slog.Error("request failed", slog.String("path", r.URL.Path), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, &errorResponse{Error: "internal error"})
		}
	})
}
