package env

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	assert.Equal(t, Production, Parse("production"))
	assert.Equal(t, Local, Parse("staging"))
	assert.Equal(t, Local, Parse(""))
}

func TestCookieFlags(t *testing.T) {
	assert.True(t, Production.CookieSecure())
	assert.Equal(t, http.SameSiteNoneMode, Production.CookieSameSite())
	assert.False(t, Local.CookieSecure())
	assert.Equal(t, http.SameSiteLaxMode, Local.CookieSameSite())
}
