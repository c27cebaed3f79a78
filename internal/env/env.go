// Package env tells local runs from production ones.
package env

import "net/http"

type Environment string

const (
	Local      Environment = "local"
	Production Environment = "production"

	Key string = "ENV"
)

func (e Environment) Valid() bool {
	switch e {
	case Local, Production:
		return true
	}
	return false
}

func Parse(raw string) Environment {
	e := Environment(raw)
	if !e.Valid() {
		return Local
	}
	return e
}

// CookieSameSite is None in production, where the frontend may be served
// from another origin, and Lax locally.
func (e Environment) CookieSameSite() http.SameSite {
	if e == Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// CookieSecure reports whether cookies need the Secure flag.
func (e Environment) CookieSecure() bool {
	return e == Production
}
