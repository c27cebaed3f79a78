package prefs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/reelscout/internal/kv"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := kv.OpenRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st), mr
}

func TestRecentSearchesMoveToFront(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, q := range []string{"alien", "heat", "alien"} {
		_, err := s.AddRecentSearch(ctx, "p", q)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alien", "heat"}, s.RecentSearches(ctx, "p"))
}

func TestRecentSearchesCappedAtFive(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for i := range 8 {
		_, err := s.AddRecentSearch(ctx, "p", fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"q7", "q6", "q5", "q4", "q3"}, s.RecentSearches(ctx, "p"))
}

func TestRecentSearchesIgnoreBlankAndMatchExactly(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.AddRecentSearch(ctx, "p", "Alien")
	require.NoError(t, err)
	list, err := s.AddRecentSearch(ctx, "p", "   ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien"}, list)

	list, err = s.AddRecentSearch(ctx, "p", "alien")
	require.NoError(t, err)
	assert.Equal(t, []string{"alien", "Alien"}, list)

	require.NoError(t, s.ClearRecentSearches(ctx, "p"))
	assert.Empty(t, s.RecentSearches(ctx, "p"))
}

func TestCorruptRecentSearchesReadEmpty(t *testing.T) {
	s, mr := newStore(t)
	require.NoError(t, mr.Set("reelscout:p:recent-searches", "oops"))
	assert.Empty(t, s.RecentSearches(context.Background(), "p"))
}

func TestTheme(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	assert.Equal(t, Dark, s.Theme(ctx, "p"))
	require.NoError(t, s.SetTheme(ctx, "p", Light))
	assert.Equal(t, Light, s.Theme(ctx, "p"))
	require.ErrorIs(t, s.SetTheme(ctx, "p", "sepia"), ErrInvalidTheme)
	assert.Equal(t, Light, s.Theme(ctx, "p"))
}

type flakyKV struct {
	kv.Store
	failGet bool
}

func (f *flakyKV) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("connection reset")
	}
	return f.Store.Get(ctx, namespace, key)
}

func TestAddRecentSearchKeepsHistoryOnReadFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	backend, err := kv.OpenRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	flaky := &flakyKV{Store: backend}
	s := New(flaky)
	ctx := context.Background()
	for _, q := range []string{"a", "b", "c", "d"} {
		_, err := s.AddRecentSearch(ctx, "p", q)
		require.NoError(t, err)
	}

	flaky.failGet = true
	_, err = s.AddRecentSearch(ctx, "p", "e")
	require.Error(t, err)

	flaky.failGet = false
	assert.Equal(t, []string{"d", "c", "b", "a"}, s.RecentSearches(ctx, "p"))
}

func TestAddRecentSearchReplacesCorruptHistory(t *testing.T) {
	s, mr := newStore(t)
	require.NoError(t, mr.Set("reelscout:p:recent-searches", "oops"))

	list, err := s.AddRecentSearch(context.Background(), "p", "heat")
	require.NoError(t, err)
	assert.Equal(t, []string{"heat"}, list)
}
