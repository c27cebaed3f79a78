package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/handsomefox/reelscout/internal/tmdb"
)

type profileKey struct{}

// MiddlewareProfile makes sure every request belongs to a profile, issuing a
// new profile cookie on first contact.
func (h *Handler) MiddlewareProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := profileFrom(r)
		if !ok {
			profile = uuid.NewString()
			h.setProfileCookie(w, profile)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey{}, profile)))
	})
}

func profileOf(r *http.Request) string {
	p, _ := r.Context().Value(profileKey{}).(string)
	return p
}

// MiddlewareLanguage picks the catalog language from ?language or
// Accept-Language. Without either the client default applies.
func MiddlewareLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := strings.TrimSpace(r.URL.Query().Get("language"))
		if lang == "" && r.Header.Get("Accept-Language") != "" {
			lang = tmdb.MatchLanguage(r.Header.Get("Accept-Language"))
		}
		if lang == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(tmdb.WithLanguage(r.Context(), lang)))
	})
}
