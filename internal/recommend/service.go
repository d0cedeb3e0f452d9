package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/library"
)

// CandidateSource produces raw candidates from a prompt and a library
// summary.
type CandidateSource interface {
	Generate(ctx context.Context, summary json.RawMessage, prompt, mediaType string) ([]Candidate, error)
}

// LibraryView is the cache surface the service consumes.
type LibraryView interface {
	SnapshotSource
	Summary(ctx context.Context) library.Summary
	Clear()
}

// Broadcaster interface for sending events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// HistoryRecorder persists completed requests for the activity log.
type HistoryRecorder interface {
	RecordRecommendation(ctx context.Context, prompt, mediaType string, results int)
}

// Service orchestrates the recommendation pipeline: generate candidates,
// enrich them against the catalogs, then filter against the library.
type Service struct {
	source      CandidateSource
	enricher    *Enricher
	filter      *Filter
	libraryView LibraryView
	broadcaster Broadcaster
	history     HistoryRecorder
	logger      zerolog.Logger
}

// NewService creates a recommendation service.
func NewService(source CandidateSource, enricher *Enricher, filter *Filter, libraryView LibraryView, logger zerolog.Logger) *Service {
	return &Service{
		source:      source,
		enricher:    enricher,
		filter:      filter,
		libraryView: libraryView,
		logger:      logger.With().Str("component", "recommend").Logger(),
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

// Request is a recommendation request.
type Request struct {
	Prompt    string
	MediaType string
}

// Recommend runs the full pipeline for one request and returns the surviving
// candidates in generation order.
func (s *Service) Recommend(ctx context.Context, req Request) ([]Candidate, error) {
	startTime := time.Now()

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "both"
	}

	s.broadcastStarted(req.Prompt, mediaType)

	summary := s.libraryView.Summary(ctx)
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode library summary: %w", err)
	}

	s.logger.Info().
		Str("mediaType", mediaType).
		Int("sampledSeries", len(summary.SampledSeries)).
		Int("sampledMovies", len(summary.SampledMovies)).
		Msg("Requesting recommendations")

	candidates, err := s.source.Generate(ctx, summaryJSON, req.Prompt, mediaType)
	if err != nil {
		return nil, fmt.Errorf("candidate generation failed: %w", err)
	}

	enriched := s.enricher.Enrich(ctx, candidates)
	final := s.filter.Apply(ctx, enriched)

	elapsed := time.Since(startTime)

	if s.history != nil {
		s.history.RecordRecommendation(ctx, req.Prompt, mediaType, len(final))
	}
	s.broadcastCompleted(mediaType, len(candidates), len(final), elapsed)

	s.logger.Info().
		Int("generated", len(candidates)).
		Int("returned", len(final)).
		Dur("elapsed", elapsed).
		Msg("Recommendations ready")

	return final, nil
}

// ClearCache drops both library snapshots so the next request refetches.
func (s *Service) ClearCache() {
	s.libraryView.Clear()
	s.logger.Info().Msg("Library snapshots cleared")
}

// LibrarySummary returns the sampled library summary used for generation.
func (s *Service) LibrarySummary(ctx context.Context) library.Summary {
	return s.libraryView.Summary(ctx)
}

func (s *Service) broadcastStarted(prompt, mediaType string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(EventRecommendStarted, RecommendStartedPayload{
		Prompt:    prompt,
		MediaType: mediaType,
	})
}

func (s *Service) broadcastCompleted(mediaType string, generated, returned int, elapsed time.Duration) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(EventRecommendCompleted, RecommendCompletedPayload{
		MediaType: mediaType,
		Generated: generated,
		Returned:  returned,
		ElapsedMs: elapsed.Milliseconds(),
	})
}
