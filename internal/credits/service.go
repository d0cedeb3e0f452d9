// Package credits aggregates a person's filmography from the metadata source
// and resolves each entry against the media catalogs.
package credits

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/recomarr/recomarr/internal/recommend"
	"github.com/recomarr/recomarr/internal/tmdb"
)

const (
	// minEpisodeCount is the appearance floor for episodic credits; below it
	// an entry is treated as a guest spot.
	minEpisodeCount = 3

	defaultLimit = 10
	maxLimit     = 50

	defaultWorkers = 5
	defaultTimeout = 60 * time.Second
)

// PersonSource resolves people and their combined filmographies.
type PersonSource interface {
	SearchPerson(ctx context.Context, name string) (*tmdb.Person, error)
	CombinedCredits(ctx context.Context, personID int64) ([]tmdb.Credit, error)
}

// CatalogResolver resolves one title against a catalog.
type CatalogResolver interface {
	Lookup(ctx context.Context, term string) ([]recommend.CatalogRecord, error)
}

// Broadcaster interface for sending events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// HistoryRecorder persists completed credit searches.
type HistoryRecorder interface {
	RecordCreditSearch(ctx context.Context, person string, results int)
}

// Credit is one filmography entry resolved against a catalog.
type Credit struct {
	Title      string
	Year       int
	Kind       recommend.MediaKind
	Character  string
	Popularity float64
	VoteCount  int
	ID         string
	Rating     float64
}

// Config controls resolution concurrency and per-lookup deadlines.
type Config struct {
	Workers int
	Timeout time.Duration
}

// Service aggregates filmographies. Catalog resolution runs on its own
// bounded pool with the same discipline as enrichment but tuned and failing
// independently of it.
type Service struct {
	people      PersonSource
	series      CatalogResolver
	movies      CatalogResolver
	deny        recommend.Denylist
	workers     int
	timeout     time.Duration
	broadcaster Broadcaster
	history     HistoryRecorder
	logger      zerolog.Logger
}

// NewService creates a credit aggregation service.
func NewService(cfg Config, people PersonSource, series, movies CatalogResolver, deny recommend.Denylist, logger zerolog.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Service{
		people:  people,
		series:  series,
		movies:  movies,
		deny:    deny,
		workers: cfg.Workers,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "credits").Logger(),
	}
}

// SetBroadcaster sets the WebSocket broadcaster for real-time events.
func (s *Service) SetBroadcaster(broadcaster Broadcaster) {
	s.broadcaster = broadcaster
}

// SetHistory sets the recorder for the request activity log.
func (s *Service) SetHistory(history HistoryRecorder) {
	s.history = history
}

// Aggregate returns up to limit catalog-resolved filmography entries for the
// best person match, ordered by popularity. Twice the limit is resolved so
// lookup misses can be backfilled from the next entries in order. A name
// that matches nobody yields an empty result, not an error.
func (s *Service) Aggregate(ctx context.Context, personName string, limit int) ([]Credit, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	startTime := time.Now()
	s.broadcastStarted(personName, limit)

	person, err := s.people.SearchPerson(ctx, personName)
	if err != nil {
		if errors.Is(err, tmdb.ErrPersonNotFound) {
			s.logger.Info().Str("person", personName).Msg("No matching person")
			s.broadcastCompleted(personName, 0, time.Since(startTime))
			return []Credit{}, nil
		}
		return nil, fmt.Errorf("person search failed: %w", err)
	}

	raw, err := s.people.CombinedCredits(ctx, person.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credits: %w", err)
	}

	screened := s.screen(raw)
	sortByPopularity(screened)
	if pick := 2 * limit; len(screened) > pick {
		screened = screened[:pick]
	}

	resolved := s.resolve(ctx, screened)

	out := make([]Credit, 0, limit)
	for _, credit := range resolved {
		if credit == nil {
			continue
		}
		out = append(out, *credit)
		if len(out) == limit {
			break
		}
	}

	elapsed := time.Since(startTime)
	if s.history != nil {
		s.history.RecordCreditSearch(ctx, person.Name, len(out))
	}
	s.broadcastCompleted(person.Name, len(out), elapsed)

	s.logger.Info().
		Str("person", person.Name).
		Int("rawCredits", len(raw)).
		Int("screened", len(screened)).
		Int("returned", len(out)).
		Dur("elapsed", elapsed).
		Msg("Credits aggregated")

	return out, nil
}

// screen drops non-substantive entries: credits without a named role, and
// episodic credits that match the denylist or fall under the appearance
// floor.
func (s *Service) screen(raw []tmdb.Credit) []tmdb.Credit {
	out := make([]tmdb.Credit, 0, len(raw))
	for _, credit := range raw {
		if strings.TrimSpace(credit.Character) == "" {
			continue
		}
		if credit.MediaType == "tv" {
			if s.deny.Matches(credit.DisplayTitle()) {
				continue
			}
			if credit.EpisodeCount < minEpisodeCount {
				continue
			}
		}
		out = append(out, credit)
	}
	return out
}

func sortByPopularity(credits []tmdb.Credit) {
	sort.SliceStable(credits, func(i, j int) bool {
		if credits[i].Popularity != credits[j].Popularity {
			return credits[i].Popularity > credits[j].Popularity
		}
		return credits[i].VoteCount > credits[j].VoteCount
	})
}

// resolve looks up every screened credit concurrently, writing results by
// index so output order matches the sorted input. Unresolved entries stay
// nil.
func (s *Service) resolve(ctx context.Context, credits []tmdb.Credit) []*Credit {
	out := make([]*Credit, len(credits))

	p := pool.New().WithMaxGoroutines(s.workers)
	for i := range credits {
		p.Go(func() {
			out[i] = s.resolveOne(ctx, credits[i])
		})
	}
	p.Wait()

	return out
}

func (s *Service) resolveOne(ctx context.Context, credit tmdb.Credit) *Credit {
	kind := recommend.KindMovie
	resolver := s.movies
	if credit.MediaType == "tv" {
		kind = recommend.KindSeries
		resolver = s.series
	}
	if resolver == nil {
		return nil
	}

	title := credit.DisplayTitle()
	year := credit.Year()

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := resolver.Lookup(lookupCtx, recommend.SearchTerm(title, year))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("title", title).
			Str("kind", string(kind)).
			Msg("Credit resolution failed")
		return nil
	}
	if len(records) == 0 {
		s.logger.Debug().
			Str("title", title).
			Str("kind", string(kind)).
			Msg("Credit has no catalog match")
		return nil
	}

	return &Credit{
		Title:      title,
		Year:       year,
		Kind:       kind,
		Character:  credit.Character,
		Popularity: credit.Popularity,
		VoteCount:  credit.VoteCount,
		ID:         records[0].ID,
		Rating:     records[0].Rating,
	}
}

func (s *Service) broadcastStarted(person string, limit int) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(EventCreditsStarted, CreditsStartedPayload{
		Person: person,
		Limit:  limit,
	})
}

func (s *Service) broadcastCompleted(person string, results int, elapsed time.Duration) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(EventCreditsCompleted, CreditsCompletedPayload{
		Person:    person,
		Results:   results,
		ElapsedMs: elapsed.Milliseconds(),
	})
}
