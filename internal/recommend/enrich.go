package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultEnrichWorkers = 5
	defaultEnrichTimeout = 60 * time.Second
)

// CatalogLookup is the free-text search capability of one catalog service.
type CatalogLookup interface {
	Lookup(ctx context.Context, term string) ([]CatalogRecord, error)
}

// EnricherConfig controls enrichment concurrency and per-lookup deadlines.
type EnricherConfig struct {
	Workers int
	Timeout time.Duration
}

// Enricher decorates candidates with catalog identifiers and ratings by
// querying the lookup service matching each candidate's declared kind.
type Enricher struct {
	series  CatalogLookup
	movies  CatalogLookup
	workers int
	timeout time.Duration
	logger  zerolog.Logger
}

// NewEnricher creates an enricher backed by the given lookup services.
func NewEnricher(cfg EnricherConfig, series, movies CatalogLookup, logger zerolog.Logger) *Enricher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultEnrichWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultEnrichTimeout
	}
	return &Enricher{
		series:  series,
		movies:  movies,
		workers: cfg.Workers,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "enricher").Logger(),
	}
}

// SearchTerm builds the catalog query for a candidate: "Title (Year)" when a
// year is known, otherwise the bare title.
func SearchTerm(title string, year int) string {
	if year > 0 {
		return fmt.Sprintf("%s (%d)", title, year)
	}
	return title
}

// Enrich looks up every candidate concurrently and returns a slice of the
// same length and order. Each lookup runs under its own deadline; failed and
// empty lookups leave the candidate without identifier or rating but never
// remove it.
func (e *Enricher) Enrich(ctx context.Context, candidates []Candidate) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)

	p := pool.New().WithMaxGoroutines(e.workers)
	for i := range out {
		p.Go(func() {
			e.enrichOne(ctx, &out[i])
		})
	}
	p.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, c *Candidate) {
	c.ResolvedKind = ClassifyKind(c.Kind)
	if strings.TrimSpace(c.Title) == "" {
		return
	}

	lookup := e.movies
	if c.ResolvedKind == KindSeries {
		lookup = e.series
	}
	if lookup == nil {
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	records, err := lookup.Lookup(lookupCtx, SearchTerm(c.Title, c.Year))
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("title", c.Title).
			Str("kind", string(c.ResolvedKind)).
			Msg("Catalog lookup failed")
		return
	}
	if len(records) == 0 {
		e.logger.Debug().
			Str("title", c.Title).
			Str("kind", string(c.ResolvedKind)).
			Msg("No catalog match")
		return
	}

	c.ID = records[0].ID
	c.Rating = records[0].Rating
}
