package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	profileCookieName = "reelscout_profile"
	profileCookieDays = 365

	// ProfileHeader lets non-browser clients pick a profile explicitly.
	ProfileHeader = "X-Profile-ID"
)

// profileFrom returns the profile id presented by the request, if any.
func profileFrom(r *http.Request) (string, bool) {
	if v := r.Header.Get(ProfileHeader); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id.String(), true
		}
	}
	c, err := r.Cookie(profileCookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (h *Handler) setProfileCookie(w http.ResponseWriter, value string) {
	expiration := time.Now().Add(time.Hour * 24 * profileCookieDays)
	http.SetCookie(w, &http.Cookie{
		Name:     profileCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiration,
		MaxAge:   int((time.Hour * 24 * profileCookieDays).Seconds()),
		HttpOnly: true,
		SameSite: h.env.CookieSameSite(),
		Secure:   h.env.CookieSecure(),
	})
}

func (h *Handler) clearProfileCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     profileCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: h.env.CookieSameSite(),
		Secure:   h.env.CookieSecure(),
	})
}
