package summary

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fieldside/rdysl/internal/parse"
)

// DefaultTTL is how long a snapshot stays valid before Get re-scrapes.
const DefaultTTL = 30 * time.Minute

// ErrNoCachedData is returned by CachedOnly when no scrape has succeeded yet.
var ErrNoCachedData = errors.New("no cached data available")

// ScrapeFunc produces the raw records a snapshot is built from. The engine
// owns when it runs; callers own what it does.
type ScrapeFunc func(ctx context.Context) ([]parse.RawRecord, error)

// Mirror receives each new snapshot after it is installed. Used to push the
// latest summary into Redis so cached-only readers in other processes can
// see it; mirror failures are logged, never fatal.
type Mirror interface {
	StoreSnapshot(ctx context.Context, snap *Snapshot) error
}

// Engine is the TTL cache in front of the scraper. It replaces the
// module-level cachedData/lastCacheTime globals of the original system with
// an owned instance: construct one per process and pass it to callers.
type Engine struct {
	scrape ScrapeFunc
	ttl    time.Duration

	mu   sync.RWMutex
	snap *Snapshot

	group     singleflight.Group
	mirror    Mirror
	onRefresh func(*Snapshot)
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMirror attaches a snapshot mirror.
func WithMirror(m Mirror) Option {
	return func(e *Engine) { e.mirror = m }
}

// WithRefreshHook registers a callback invoked after each successful refresh.
func WithRefreshHook(fn func(*Snapshot)) Option {
	return func(e *Engine) { e.onRefresh = fn }
}

// NewEngine creates a cache engine. A ttl of 0 uses DefaultTTL.
func NewEngine(scrape ScrapeFunc, ttl time.Duration, opts ...Option) *Engine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	e := &Engine{
		scrape: scrape,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Get returns the current snapshot, scraping first if the cache is expired,
// empty, or forceRefresh is set. Concurrent callers that all see an expired
// cache collapse into one underlying scrape.
func (e *Engine) Get(ctx context.Context, forceRefresh bool) (*Snapshot, error) {
	if !forceRefresh {
		if snap := e.validSnapshot(); snap != nil {
			return snap, nil
		}
	}
	return e.Refresh(ctx)
}

// Refresh always re-scrapes and installs the result wholesale. Concurrent
// refreshes share a single scrape via the flight group.
func (e *Engine) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := e.group.Do("refresh", func() (interface{}, error) {
		records, err := e.scrape(ctx)
		if err != nil {
			return nil, err
		}

		snap := Aggregate(records, e.now())

		e.mu.Lock()
		e.snap = snap
		e.mu.Unlock()

		if e.mirror != nil {
			if err := e.mirror.StoreSnapshot(ctx, snap); err != nil {
				log.Printf("⚠️  Failed to mirror snapshot: %v", err)
			}
		}
		if e.onRefresh != nil {
			e.onRefresh(snap)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// CachedOnly returns the current snapshot regardless of age, or
// ErrNoCachedData when nothing has been scraped yet.
func (e *Engine) CachedOnly() (*Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return nil, ErrNoCachedData
	}
	return e.snap, nil
}

// validSnapshot returns the snapshot if it exists and is within TTL.
func (e *Engine) validSnapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return nil
	}
	if e.now().Sub(e.snap.LastUpdated) >= e.ttl {
		return nil
	}
	return e.snap
}
