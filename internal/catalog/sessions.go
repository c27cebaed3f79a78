package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/handsomefox/reelscout/internal/tmdb"
)

// SearchFeed is the feed name of free-text search sessions; every other feed
// is a category slug.
const SearchFeed = "search"

type sessionKey struct {
	profile string
	feed    string
}

type sessionEntry struct {
	pager    *Pager
	lastSeen time.Time
}

// Sessions keeps one Pager per (profile, feed) in memory.
type Sessions struct {
	svc  *Service
	idle time.Duration
	now  func() time.Time

	mu     sync.Mutex
	pagers map[sessionKey]*sessionEntry
}

func NewSessions(svc *Service, idle time.Duration) *Sessions {
	return &Sessions{
		svc:    svc,
		idle:   idle,
		now:    time.Now,
		pagers: make(map[sessionKey]*sessionEntry),
	}
}

// Pager returns the pager for profile and feed, creating it on first use.
func (s *Sessions) Pager(profile, feed string) (*Pager, error) {
	fetch, err := s.fetchFor(feed)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{profile: profile, feed: feed}
	entry, ok := s.pagers[key]
	if !ok {
		entry = &sessionEntry{pager: NewPager(fetch, Query{Kind: All})}
		s.pagers[key] = entry
	}
	entry.lastSeen = s.now()
	return entry.pager, nil
}

func (s *Sessions) fetchFor(feed string) (FetchFunc, error) {
	if feed == SearchFeed {
		return func(ctx context.Context, q Query, page int) (tmdb.Page, error) {
			return s.svc.Search(ctx, q.Text, q.Kind, page)
		}, nil
	}
	if _, ok := LookupCategory(feed); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, feed)
	}
	return func(ctx context.Context, q Query, page int) (tmdb.Page, error) {
		if q.Text != "" {
			return s.svc.CategorySearch(ctx, feed, q.Text, page)
		}
		return s.svc.Category(ctx, feed, page)
	}, nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pagers)
}

// Run evicts idle sessions every minute until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sessions) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, entry := range s.pagers {
		if now.Sub(entry.lastSeen) > s.idle {
			delete(s.pagers, key)
		}
	}
}
