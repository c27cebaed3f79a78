package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/reelscout/internal/catalog"
	"github.com/handsomefox/reelscout/internal/chat"
	"github.com/handsomefox/reelscout/internal/env"
	"github.com/handsomefox/reelscout/internal/favorites"
	"github.com/handsomefox/reelscout/internal/kv"
	"github.com/handsomefox/reelscout/internal/prefs"
	"github.com/handsomefox/reelscout/internal/tmdb"
)

const profileA = "6f1c2b8e-6a53-4a7a-9a57-0d4f3c0b1a11"

type harness struct {
	router   http.Handler
	language atomic.Value
}

func fakeTMDB(t *testing.T, hs *harness) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hs.language.Store(r.URL.Query().Get("language"))
		page := r.URL.Query().Get("page")
		switch r.URL.Path {
		case "/movie/popular":
			_, _ = w.Write([]byte(`{"page":` + page + `,"total_pages":2,"total_results":40,"results":[
				{"id":` + page + `,"title":"Popular ` + page + `","poster_path":"/p.jpg","release_date":"2020-01-01","popularity":5}
			]}`))
		case "/search/movie":
			_, _ = w.Write([]byte(`{"page":1,"total_pages":3,"total_results":25,"results":[
				{"id":10,"title":"Q movie","popularity":3,"poster_path":null}
			]}`))
		case "/search/tv":
			_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"total_results":5,"results":[
				{"id":10,"name":"Q show","popularity":9}
			]}`))
		case "/movie/top_rated":
			w.WriteHeader(http.StatusUnauthorized)
		case "/movie/603":
			_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix","runtime":136,"backdrop_path":"/b.jpg",
				"genres":[{"id":28,"name":"Action"}],
				"credits":{"cast":[{"id":6384,"name":"Keanu Reeves","character":"Neo","profile_path":"/k.jpg"}],"crew":[]},
				"videos":{"results":[{"key":"abc","site":"YouTube","type":"Trailer"}]},
				"similar":{"page":1,"total_pages":1,"results":[{"id":604,"title":"Reloaded"}]}}`))
		case "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fakeChat(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Messages[len(req.Messages)-1].Content == "unauthorized" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Try Heat."}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	hs := &harness{}
	upstream := fakeTMDB(t, hs)
	chatSrv := fakeChat(t)

	store, err := kv.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := catalog.NewService(tmdb.New("key", "", tmdb.WithBaseURL(upstream.URL), tmdb.WithRetry(1, 0)))
	h, err := New(&Config{
		Catalog:   svc,
		Sessions:  catalog.NewSessions(svc, time.Hour),
		Chat:      chat.New(chat.Config{APIKey: "k", BaseURL: chatSrv.URL}),
		Favorites: favorites.New(store, favorites.FavoritesKey),
		Watchlist: favorites.New(store, favorites.WatchlistKey),
		Prefs:     prefs.New(store),
		Env:       env.Local,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	hs.router = r
	return hs
}

func (hs *harness) do(t *testing.T, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(ProfileHeader, profileA)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileCookieIssuedOnce(t *testing.T) {
	hs := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/preferences/theme", nil)
	rec := httptest.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, profileCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/preferences/theme", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies())
}

func TestCategoryPage(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/catalog/categories/popular?page=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page := decode[pageView](t, rec)
	require.Len(t, page.Results, 1)
	it := page.Results[0]
	assert.Equal(t, tmdb.Movie, it.MediaType)
	require.NotNil(t, it.PosterURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", *it.PosterURL)
	assert.Nil(t, it.BackdropURL)
	assert.Equal(t, "2020", it.Year)
	assert.True(t, page.HasMore)

	rec = hs.do(t, http.MethodGet, "/api/catalog/categories/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = hs.do(t, http.MethodGet, "/api/catalog/categories/popular?page=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCombinedSearch(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/catalog/search?q=Q&type=all", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page := decode[pageView](t, rec)
	assert.Equal(t, 30, page.TotalResults)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Results, 2)
	assert.Equal(t, tmdb.TV, page.Results[0].MediaType)
	assert.Equal(t, tmdb.Movie, page.Results[1].MediaType)
	assert.Nil(t, page.Results[1].PosterPath)
}

func TestUpstreamUnauthorizedIsDistinguished(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/catalog/categories/top-rated", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	body := decode[errorResponse](t, rec)
	assert.Equal(t, http.StatusUnauthorized, body.Code)
	assert.Contains(t, body.Error, "unauthorized")
}

func TestDetails(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/catalog/movie/603", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	d := decode[detailView](t, rec)
	assert.Equal(t, "The Matrix", d.Title)
	assert.Equal(t, 136, d.Runtime)
	require.Len(t, d.Cast, 1)
	require.NotNil(t, d.Cast[0].ProfileURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/k.jpg", *d.Cast[0].ProfileURL)
	require.NotNil(t, d.BackdropURL)
	assert.Len(t, d.Videos, 1)
	assert.Len(t, d.Similar.Results, 1)

	assert.Equal(t, http.StatusNotFound, hs.do(t, http.MethodGet, "/api/catalog/movie/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, hs.do(t, http.MethodGet, "/api/catalog/person/1", "").Code)
}

func TestLanguageFromAcceptLanguage(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/catalog/genres/movie", "", "Accept-Language", "ar-EG,ar;q=0.9")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ar-SA", hs.language.Load())
	assert.Equal(t, "ar-SA", rec.Header().Get("Content-Language"))
}

func TestBrowseSession(t *testing.T) {
	hs := newHarness(t)

	rec := hs.do(t, http.MethodPost, "/api/browse/popular/more", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[snapshotView](t, rec)
	assert.Equal(t, 1, snap.Page)
	assert.True(t, snap.HasMore)

	rec = hs.do(t, http.MethodPost, "/api/browse/popular/more", "")
	snap = decode[snapshotView](t, rec)
	require.Len(t, snap.Results, 2)
	assert.Equal(t, "Popular 1", snap.Results[0].Title)
	assert.Equal(t, "Popular 2", snap.Results[1].Title)
	assert.False(t, snap.HasMore)

	rec = hs.do(t, http.MethodPost, "/api/browse/popular/more", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[snapshotView](t, rec).Results, 2)

	rec = hs.do(t, http.MethodPost, "/api/browse/popular/reset", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[snapshotView](t, rec).Results)

	assert.Equal(t, http.StatusNotFound, hs.do(t, http.MethodGet, "/api/browse/nope", "").Code)
}

func TestSearchSessionRemembersQuery(t *testing.T) {
	hs := newHarness(t)

	rec := hs.do(t, http.MethodPost, "/api/browse/search/reset", `{"query":"Q","type":"all"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = hs.do(t, http.MethodPost, "/api/browse/search/more", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[snapshotView](t, rec)
	assert.Equal(t, "Q", snap.Query)
	assert.Equal(t, "all", snap.Type)
	assert.Equal(t, 30, snap.TotalResults)

	rec = hs.do(t, http.MethodGet, "/api/recent-searches", "")
	assert.Equal(t, []string{"Q"}, decode[recentSearchesResponse](t, rec).Searches)
}

func TestFavoritesFlow(t *testing.T) {
	hs := newHarness(t)
	matrix := `{"id":603,"title":"The Matrix","poster_path":"/m.jpg","vote_average":8.2,"release_date":"1999-03-31","vote_count":100}`

	rec := hs.do(t, http.MethodPost, "/api/favorites", matrix)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = hs.do(t, http.MethodPost, "/api/favorites", matrix)
	list := decode[collectionView](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, tmdb.Movie, list.Items[0].Type)
	require.NotNil(t, list.Items[0].PosterURL)

	rec = hs.do(t, http.MethodPost, "/api/favorites", `{"id":603,"title":"Same id show","type":"tv"}`)
	assert.Equal(t, 2, decode[collectionView](t, rec).Count)

	m := decode[membershipResponse](t, hs.do(t, http.MethodGet, "/api/favorites/movie/603", ""))
	assert.True(t, m.Saved)
	require.NotNil(t, m.Item)
	assert.Equal(t, "The Matrix", m.Item.Title)

	rec = hs.do(t, http.MethodGet, "/api/favorites?sort=title&q=matr", "")
	list = decode[collectionView](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "The Matrix", list.Items[0].Title)

	rec = hs.do(t, http.MethodDelete, "/api/favorites/tv/603", "")
	assert.Equal(t, 1, decode[collectionView](t, rec).Count)

	rec = hs.do(t, http.MethodDelete, "/api/favorites", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = hs.do(t, http.MethodDelete, "/api/favorites?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[collectionView](t, hs.do(t, http.MethodGet, "/api/favorites", "")).Count)

	rec = hs.do(t, http.MethodPost, "/api/favorites", `{"id":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = hs.do(t, http.MethodPost, "/api/favorites", `{"id":1,"rating":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWatchlistToggleIsSeparate(t *testing.T) {
	hs := newHarness(t)

	rec := hs.do(t, http.MethodPost, "/api/watchlist/toggle", `{"id":1396,"title":"Breaking Bad","type":"tv"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tog := decode[toggleResponse](t, rec)
	assert.True(t, tog.Added)
	assert.Equal(t, 1, tog.Count)

	assert.Equal(t, 0, decode[collectionView](t, hs.do(t, http.MethodGet, "/api/favorites", "")).Count)

	rec = hs.do(t, http.MethodPost, "/api/watchlist/toggle", `{"id":1396,"title":"Breaking Bad","type":"tv"}`)
	tog = decode[toggleResponse](t, rec)
	assert.False(t, tog.Added)
	assert.Equal(t, 0, tog.Count)
}

func TestTheme(t *testing.T) {
	hs := newHarness(t)

	assert.Equal(t, prefs.Dark, decode[themeBody](t, hs.do(t, http.MethodGet, "/api/preferences/theme", "")).Theme)
	rec := hs.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"light"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, prefs.Light, decode[themeBody](t, hs.do(t, http.MethodGet, "/api/preferences/theme", "")).Theme)

	rec = hs.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"neon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecentSearchesEndpoints(t *testing.T) {
	hs := newHarness(t)
	for _, q := range []string{"a", "b", "a"} {
		rec := hs.do(t, http.MethodPost, "/api/recent-searches", `{"query":"`+q+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := hs.do(t, http.MethodGet, "/api/recent-searches", "")
	assert.Equal(t, []string{"a", "b"}, decode[recentSearchesResponse](t, rec).Searches)

	rec = hs.do(t, http.MethodDelete, "/api/recent-searches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[recentSearchesResponse](t, hs.do(t, http.MethodGet, "/api/recent-searches", "")).Searches)
}

func TestChat(t *testing.T) {
	hs := newHarness(t)

	rec := hs.do(t, http.MethodPost, "/api/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message is required", decode[errorResponse](t, rec).Error)

	rec = hs.do(t, http.MethodPost, "/api/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hs.do(t, http.MethodPost, "/api/chat", `{"message":"something like Heat?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Try Heat.", decode[chatResponse](t, rec).Response)

	rec = hs.do(t, http.MethodPost, "/api/chat", `{"message":"unauthorized"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chat.ReplyInvalidKey, decode[chatResponse](t, rec).Response)
}

func TestFavoritesEventStream(t *testing.T) {
	hs := newHarness(t)
	srv := httptest.NewServer(hs.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/favorites/events", http.NoBody)
	require.NoError(t, err)
	req.Header.Set(ProfileHeader, profileA)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	next := func() map[string]any {
		for {
			line, err := events.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var v map[string]any
				require.NoError(t, json.Unmarshal([]byte(data), &v))
				return v
			}
		}
	}

	first := next()
	assert.Equal(t, "snapshot", first["op"])
	assert.EqualValues(t, 0, first["count"])

	add := httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(`{"id":5,"title":"x"}`))
	add.Header.Set(ProfileHeader, profileA)
	hs.router.ServeHTTP(httptest.NewRecorder(), add)

	second := next()
	assert.Equal(t, "add", second["op"])
	assert.EqualValues(t, 1, second["count"])
}

func TestSPA(t *testing.T) {
	static := fstest.MapFS{
		"index.html":    {Data: []byte("<html>app</html>")},
		"assets/app.js": {Data: []byte("console.log(1)")},
	}
	h, err := SPA(static)
	require.NoError(t, err)

	for path, want := range map[string]string{
		"/":              "<html>app</html>",
		"/movie/603":     "<html>app</html>",
		"/assets/app.js": "console.log(1)",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err = SPA(fstest.MapFS{})
	require.Error(t, err)
}
