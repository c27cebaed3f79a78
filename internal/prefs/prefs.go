// Package prefs stores small per-profile preferences: recent searches and
// the UI theme.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/handsomefox/reelscout/internal/kv"
	"github.com/handsomefox/reelscout/internal/logger"
)

const (
	RecentSearchesKey = "recent-searches"
	ThemeKey          = "theme"

	MaxRecentSearches = 5
)

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

var ErrInvalidTheme = errors.New("theme must be dark or light")

func (t Theme) Valid() bool { return t == Dark || t == Light }

type Store struct {
	kv kv.Store
	mu sync.Mutex
}

func New(st kv.Store) *Store {
	return &Store{kv: st}
}

// RecentSearches returns the most recent queries, newest first.
func (s *Store) RecentSearches(ctx context.Context, profile string) []string {
	list, err := s.loadSearches(ctx, profile)
	if err != nil {
		slog.Warn("prefs: read recent searches failed", slog.String("profile", profile), logger.Error(err))
		return []string{}
	}
	return list
}

// AddRecentSearch moves query to the front, dropping an exact duplicate and
// anything past MaxRecentSearches. Blank queries are ignored.
func (s *Store) AddRecentSearch(ctx context.Context, profile, query string) ([]string, error) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadSearches(ctx, profile)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
			return nil, err
		}
		slog.Warn("prefs: discarding corrupt recent searches", slog.String("profile", profile), logger.Error(err))
		list = []string{}
	}
	if query == "" {
		return list, nil
	}

	next := make([]string, 0, MaxRecentSearches)
	next = append(next, query)
	for _, q := range list {
		if q != query && len(next) < MaxRecentSearches {
			next = append(next, q)
		}
	}
	if slices.Equal(next, list) {
		return next, nil
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode recent searches: %w", err)
	}
	if err := s.kv.Put(ctx, profile, RecentSearchesKey, raw); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Store) ClearRecentSearches(ctx context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, profile, RecentSearchesKey)
}

func (s *Store) loadSearches(ctx context.Context, profile string) ([]string, error) {
	raw, err := s.kv.Get(ctx, profile, RecentSearchesKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode recent searches: %w", err)
	}
	if len(list) > MaxRecentSearches {
		list = list[:MaxRecentSearches]
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// Theme returns the stored theme, Dark when unset or unreadable.
func (s *Store) Theme(ctx context.Context, profile string) Theme {
	raw, err := s.kv.Get(ctx, profile, ThemeKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			slog.Warn("prefs: read theme failed", slog.String("profile", profile), logger.Error(err))
		}
		return Dark
	}
	var t Theme
	if err := json.Unmarshal(raw, &t); err != nil || !t.Valid() {
		return Dark
	}
	return t
}

func (s *Store) SetTheme(ctx context.Context, profile string, t Theme) error {
	if !t.Valid() {
		return ErrInvalidTheme
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, profile, ThemeKey, raw)
}
