// Package favorites keeps per-profile title collections (favorites and the
// watchlist) in a kv.Store and notifies subscribers of every change.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/handsomefox/reelscout/internal/kv"
	"github.com/handsomefox/reelscout/internal/logger"
	"github.com/handsomefox/reelscout/internal/tmdb"
)

const (
	FavoritesKey = "favorites"
	WatchlistKey = "watchlist"
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
)

// Change is published after every successful write. Records is the new
// collection and must not be modified.
type Change struct {
	Profile string   `json:"profile"`
	Key     string   `json:"key"`
	Op      Op       `json:"op"`
	Records []Record `json:"records"`
}

// Store is one named collection. Reads never fail: a missing, unreadable or
// corrupt collection is reported as empty.
type Store struct {
	kv  kv.Store
	key string

	mu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]chan Change
	nextID int
}

func New(st kv.Store, key string) *Store {
	return &Store{kv: st, key: key, subs: make(map[int]chan Change)}
}

func (s *Store) Name() string { return s.key }

func (s *Store) List(ctx context.Context, profile string) []Record {
	recs, err := s.load(ctx, profile)
	if err != nil {
		slog.Warn("favorites: read failed, using empty collection",
			slog.String("key", s.key), slog.String("profile", profile), logger.Error(err))
		return []Record{}
	}
	return recs
}

func (s *Store) Get(ctx context.Context, profile string, id int64, kind tmdb.MediaType) (Record, bool) {
	want := KeyOf(id, kind)
	for _, r := range s.List(ctx, profile) {
		if r.Key() == want {
			return r, true
		}
	}
	return Record{}, false
}

func (s *Store) IsFavorite(ctx context.Context, profile string, id int64, kind tmdb.MediaType) bool {
	_, ok := s.Get(ctx, profile, id, kind)
	return ok
}

// Add inserts rec unless a record with the same key exists.
func (s *Store) Add(ctx context.Context, profile string, rec Record) ([]Record, error) {
	if err := rec.normalize(); err != nil {
		return nil, err
	}
	return s.update(ctx, profile, func(recs []Record) ([]Record, Op, bool) {
		if slices.ContainsFunc(recs, func(r Record) bool { return r.Key() == rec.Key() }) {
			return recs, OpAdd, false
		}
		return append(recs, rec), OpAdd, true
	})
}

func (s *Store) Remove(ctx context.Context, profile string, id int64, kind tmdb.MediaType) ([]Record, error) {
	want := KeyOf(id, kind)
	return s.update(ctx, profile, func(recs []Record) ([]Record, Op, bool) {
		out := slices.DeleteFunc(recs, func(r Record) bool { return r.Key() == want })
		return out, OpRemove, len(out) != len(recs)
	})
}

// Toggle removes rec if present, otherwise adds it. It reports whether the
// record is present afterwards.
func (s *Store) Toggle(ctx context.Context, profile string, rec Record) (bool, []Record, error) {
	if err := rec.normalize(); err != nil {
		return false, nil, err
	}
	added := false
	recs, err := s.update(ctx, profile, func(recs []Record) ([]Record, Op, bool) {
		if i := slices.IndexFunc(recs, func(r Record) bool { return r.Key() == rec.Key() }); i >= 0 {
			return slices.Delete(recs, i, i+1), OpRemove, true
		}
		added = true
		return append(recs, rec), OpAdd, true
	})
	if err != nil {
		return false, nil, err
	}
	return added, recs, nil
}

func (s *Store) Clear(ctx context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, profile, s.key); err != nil {
		slog.Error("favorites: clear failed",
			slog.String("key", s.key), slog.String("profile", profile), logger.Error(err))
		return err
	}
	s.publish(Change{Profile: profile, Key: s.key, Op: OpClear, Records: []Record{}})
	return nil
}

// update runs fn on a private copy of the collection and persists the result
// when fn reports a change.
func (s *Store) update(ctx context.Context, profile string, fn func([]Record) ([]Record, Op, bool)) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx, profile)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
			return nil, err
		}
		slog.Warn("favorites: discarding corrupt collection",
			slog.String("key", s.key), slog.String("profile", profile), logger.Error(err))
		recs = []Record{}
	}

	next, op, changed := fn(recs)
	if !changed {
		return slices.Clone(next), nil
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.kv.Put(ctx, profile, s.key, raw); err != nil {
		slog.Error("favorites: write failed",
			slog.String("key", s.key), slog.String("profile", profile), logger.Error(err))
		return nil, err
	}

	s.publish(Change{Profile: profile, Key: s.key, Op: op, Records: slices.Clone(next)})
	return slices.Clone(next), nil
}

func (s *Store) load(ctx context.Context, profile string) ([]Record, error) {
	raw, err := s.kv.Get(ctx, profile, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// Subscribe registers a listener. A full channel drops the change instead of
// blocking the writer. cancel closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(c Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
