package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/handsomefox/reelscout/internal/tmdb"
)

var (
	ErrBusy      = errors.New("a page is already loading")
	ErrExhausted = errors.New("no more pages")
	ErrStale     = errors.New("session changed while the page was loading")
)

type Query struct {
	Text string `json:"query"`
	Kind Kind   `json:"type"`
}

// FetchFunc loads one page for a query.
type FetchFunc func(ctx context.Context, q Query, page int) (tmdb.Page, error)

type Snapshot struct {
	Query        Query
	Page         int
	Items        []tmdb.Item
	TotalPages   int
	TotalResults int
	HasMore      bool
	Loading      bool
}

// Pager accumulates pages 1..N of one query in order. Reset starts a new
// session; fetches started by an earlier session are discarded on arrival.
type Pager struct {
	fetch FetchFunc

	mu           sync.Mutex
	query        Query
	generation   uint64
	page         int
	totalPages   int
	totalResults int
	items        []tmdb.Item
	loading      bool
}

func NewPager(fetch FetchFunc, q Query) *Pager {
	return &Pager{fetch: fetch, query: q}
}

// Reset clears the accumulated list and rewinds to before page 1. It does
// not cancel an outstanding fetch.
func (p *Pager) Reset(q Query) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.query = q
	p.generation++
	p.page = 0
	p.totalPages = 0
	p.totalResults = 0
	p.items = nil
	p.loading = false
	return p.snapshotLocked()
}

// LoadMore fetches the next page and folds it into the list.
func (p *Pager) LoadMore(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.loading {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, ErrBusy
	}
	if p.page > 0 && !p.hasMoreLocked() {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, ErrExhausted
	}
	next := p.page + 1
	gen := p.generation
	q := p.query
	p.loading = true
	p.mu.Unlock()

	res, err := p.fetch(ctx, q, next)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return p.snapshotLocked(), ErrStale
	}
	p.loading = false
	if err != nil {
		return p.snapshotLocked(), err
	}

	res.Page = next
	p.items = Accumulate(p.items, res)
	p.page = next
	p.totalPages = res.TotalPages
	p.totalResults = res.TotalResults
	return p.snapshotLocked(), nil
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMoreLocked()
}

func (p *Pager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pager) hasMoreLocked() bool {
	return HasMore(p.page, p.totalPages)
}

func (p *Pager) snapshotLocked() Snapshot {
	return Snapshot{
		Query:        p.query,
		Page:         p.page,
		Items:        slices.Clone(p.items),
		TotalPages:   p.totalPages,
		TotalResults: p.totalResults,
		HasMore:      p.hasMoreLocked(),
		Loading:      p.loading,
	}
}

// HasMore reports whether another page exists after current. TMDB never
// serves past page 500 whatever total_pages claims.
func HasMore(current, totalPages int) bool {
	return current > 0 && current < min(totalPages, tmdb.MaxPages)
}

// Accumulate folds page into acc: page 1 replaces, later pages append.
// acc is never modified.
func Accumulate(acc []tmdb.Item, page tmdb.Page) []tmdb.Item {
	if page.Page <= 1 {
		return slices.Clone(page.Results)
	}
	out := make([]tmdb.Item, 0, len(acc)+len(page.Results))
	out = append(out, acc...)
	return append(out, page.Results...)
}
