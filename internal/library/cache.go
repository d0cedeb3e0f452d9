package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Source identifies which catalog a snapshot came from.
type Source string

const (
	SourceSeries Source = "series"
	SourceMovie  Source = "movie"
)

// Item is one catalog entry as held in a snapshot. Series fill
// Status/Network, movies fill Studio.
type Item struct {
	Title   string   `json:"title"`
	Year    int      `json:"year,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Status  string   `json:"status,omitempty"`
	Network string   `json:"network,omitempty"`
	Studio  string   `json:"studio,omitempty"`
}

// Snapshot is a point-in-time copy of one catalog. The zero value is the
// empty, never-fetched state.
type Snapshot struct {
	Items     []Item
	FetchedAt time.Time
}

// Summary is the sampled per-source digest fed to the candidate generator.
type Summary struct {
	SampledSeries []Item `json:"sampled_tv_shows"`
	SampledMovies []Item `json:"sampled_movies"`
}

// Lister is the full-catalog listing capability of one source.
type Lister interface {
	List(ctx context.Context) ([]Item, error)
}

// Config holds snapshot cache settings.
type Config struct {
	TTL        time.Duration
	SampleSize int
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:        15 * time.Minute,
		SampleSize: 120,
	}
}

type slot struct {
	mu       sync.Mutex
	lister   Lister
	snapshot Snapshot
}

// Cache holds one time-limited snapshot per source. Each slot's refresh is
// serialized by its own mutex; concurrent readers of an expired slot wait
// for the single in-flight fetch.
type Cache struct {
	series *slot
	movies *slot
	ttl    time.Duration
	sample int
	now    func() time.Time
	logger zerolog.Logger
}

// NewCache creates a snapshot cache over the two catalog sources.
func NewCache(cfg Config, series, movies Lister, logger zerolog.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 120
	}
	return &Cache{
		series: &slot{lister: series},
		movies: &slot{lister: movies},
		ttl:    cfg.TTL,
		sample: cfg.SampleSize,
		now:    time.Now,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

// TTL returns the configured default snapshot age limit.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) slotFor(source Source) *slot {
	if source == SourceSeries {
		return c.series
	}
	return c.movies
}

// Get returns the snapshot for a source, refetching through the source's
// Lister when the cached one is older than maxAge or absent. A failed fetch
// never replaces existing data: the previous snapshot is served stale when
// one exists, otherwise an empty snapshot is returned and the next call
// retries.
func (c *Cache) Get(ctx context.Context, source Source, maxAge time.Duration) Snapshot {
	s := c.slotFor(source)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.snapshot.FetchedAt.IsZero() && c.now().Sub(s.snapshot.FetchedAt) < maxAge {
		return s.snapshot
	}

	c.fetchLocked(ctx, s, source)
	return s.snapshot
}

// fetchLocked replaces a slot's snapshot wholesale. On failure the slot is
// left untouched. Must be called with s.mu held.
func (c *Cache) fetchLocked(ctx context.Context, s *slot, source Source) error {
	items, err := s.lister.List(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Str("source", string(source)).Msg("snapshot refresh failed")
		return err
	}

	s.snapshot = Snapshot{Items: items, FetchedAt: c.now()}
	c.logger.Debug().Str("source", string(source)).Int("items", len(items)).Msg("snapshot refreshed")
	return nil
}

// Clear unconditionally resets both sources to the never-fetched state,
// forcing the next access to refetch.
func (c *Cache) Clear() {
	for _, s := range []*slot{c.series, c.movies} {
		s.mu.Lock()
		s.snapshot = Snapshot{}
		s.mu.Unlock()
	}
	c.logger.Info().Msg("snapshot cache cleared")
}

// Refresh forces a refetch of both sources regardless of age. Used by the
// scheduled warm task.
func (c *Cache) Refresh(ctx context.Context) error {
	var errs []error
	for _, source := range []Source{SourceSeries, SourceMovie} {
		s := c.slotFor(source)
		s.mu.Lock()
		err := c.fetchLocked(ctx, s, source)
		s.mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
		}
	}
	return errors.Join(errs...)
}

// Summary samples the head of both snapshots for the generator prompt.
func (c *Cache) Summary(ctx context.Context) Summary {
	return Summary{
		SampledSeries: c.sampleOf(c.Get(ctx, SourceSeries, c.ttl).Items),
		SampledMovies: c.sampleOf(c.Get(ctx, SourceMovie, c.ttl).Items),
	}
}

func (c *Cache) sampleOf(items []Item) []Item {
	if len(items) > c.sample {
		items = items[:c.sample]
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
