// Package collection adds accepted recommendations to the Sonarr and Radarr
// collections.
package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/arr"
	"github.com/recomarr/recomarr/internal/config"
	"github.com/recomarr/recomarr/internal/recommend"
)

// ErrNoMatch means the catalog lookup returned nothing to add.
var ErrNoMatch = errors.New("no catalog match for title")

// Broadcaster interface for sending events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// HistoryRecorder persists completed additions for the activity log.
type HistoryRecorder interface {
	RecordAddition(ctx context.Context, title, service string, alreadyExists bool)
}

// Request describes one title to add.
type Request struct {
	Title string
	Year  int
	Kind  recommend.MediaKind
	Mode  string
}

// Result reports the outcome of an addition.
type Result struct {
	Title         string `json:"title"`
	Service       string `json:"service"`
	Added         bool   `json:"added"`
	AlreadyExists bool   `json:"already_exists"`
}

// Service adds titles to the collections, resolving per-instance defaults
// (root folder and profiles) from the remote application with configured
// fallbacks.
type Service struct {
	sonarr      *arr.Client
	radarr      *arr.Client
	sonarrCfg   config.ArrConfig
	radarrCfg   config.ArrConfig
	broadcaster Broadcaster
	history     HistoryRecorder
	logger      zerolog.Logger
}

// NewService creates a collection service.
func NewService(sonarr, radarr *arr.Client, sonarrCfg, radarrCfg config.ArrConfig, logger zerolog.Logger) *Service {
	return &Service{
		sonarr:    sonarr,
		radarr:    radarr,
		sonarrCfg: sonarrCfg,
		radarrCfg: radarrCfg,
		logger:    logger.With().Str("component", "collection").Logger(),
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

// Add looks the title up in the matching catalog, applies defaults to the
// first match, and submits it. A title the collection already holds counts
// as success.
func (s *Service) Add(ctx context.Context, req Request) (*Result, error) {
	mode := req.Mode
	if mode == "" {
		mode = "download"
	}
	download := mode == "download"

	var (
		result *Result
		err    error
	)
	if req.Kind == recommend.KindSeries {
		result, err = s.addSeries(ctx, req.Title, req.Year, download)
	} else {
		result, err = s.addMovie(ctx, req.Title, req.Year, download)
	}
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		s.history.RecordAddition(ctx, result.Title, result.Service, result.AlreadyExists)
	}
	s.broadcastAdded(result, mode)

	s.logger.Info().
		Str("title", result.Title).
		Str("service", result.Service).
		Bool("alreadyExists", result.AlreadyExists).
		Bool("download", download).
		Msg("Title added to collection")

	return result, nil
}

func (s *Service) addSeries(ctx context.Context, title string, year int, download bool) (*Result, error) {
	term := recommend.SearchTerm(title, year)
	results, err := s.sonarr.LookupSeries(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("series lookup failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, term)
	}

	payload, err := results[0].Payload()
	if err != nil {
		return nil, fmt.Errorf("failed to build series payload: %w", err)
	}

	rootPath, qualityID, languageID := s.sonarrDefaults(ctx)
	payload["rootFolderPath"] = rootPath
	payload["qualityProfileId"] = qualityID
	payload["languageProfileId"] = languageID
	payload["monitored"] = true
	payload["addOptions"] = map[string]any{
		"searchForMissingEpisodes":     download,
		"searchForCutoffUnmetEpisodes": download,
	}

	result := &Result{Title: results[0].Title, Service: arr.ServiceSonarr.AppName()}
	if err := s.sonarr.AddSeries(ctx, payload); err != nil {
		if errors.Is(err, arr.ErrAlreadyExists) {
			result.AlreadyExists = true
			return result, nil
		}
		return nil, fmt.Errorf("failed to add series: %w", err)
	}
	result.Added = true
	return result, nil
}

func (s *Service) addMovie(ctx context.Context, title string, year int, download bool) (*Result, error) {
	term := recommend.SearchTerm(title, year)
	results, err := s.radarr.LookupMovies(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("movie lookup failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, term)
	}

	payload, err := results[0].Payload()
	if err != nil {
		return nil, fmt.Errorf("failed to build movie payload: %w", err)
	}

	rootPath, qualityID := s.radarrDefaults(ctx)
	payload["rootFolderPath"] = rootPath
	payload["qualityProfileId"] = qualityID
	payload["monitored"] = true
	payload["addOptions"] = map[string]any{
		"searchForMovie": download,
	}

	result := &Result{Title: results[0].Title, Service: arr.ServiceRadarr.AppName()}
	if err := s.radarr.AddMovie(ctx, payload); err != nil {
		if errors.Is(err, arr.ErrAlreadyExists) {
			result.AlreadyExists = true
			return result, nil
		}
		return nil, fmt.Errorf("failed to add movie: %w", err)
	}
	result.Added = true
	return result, nil
}

// sonarrDefaults resolves the add-time defaults from the remote instance,
// preferring its first root folder and profiles, then the configured
// fallbacks.
func (s *Service) sonarrDefaults(ctx context.Context) (string, int, int) {
	rootPath := s.sonarrCfg.RootFolder
	if roots, err := s.sonarr.RootFolders(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load Sonarr root folders")
	} else if len(roots) > 0 {
		rootPath = roots[0].Path
	}

	qualityID := profileOr(nil, s.sonarrCfg.QualityProfileID)
	if profiles, err := s.sonarr.QualityProfiles(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load Sonarr quality profiles")
	} else {
		qualityID = profileOr(profiles, s.sonarrCfg.QualityProfileID)
	}

	languageID := profileOr(nil, s.sonarrCfg.LanguageProfileID)
	if profiles, err := s.sonarr.LanguageProfiles(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load Sonarr language profiles")
	} else {
		languageID = profileOr(profiles, s.sonarrCfg.LanguageProfileID)
	}

	return rootPath, qualityID, languageID
}

func (s *Service) radarrDefaults(ctx context.Context) (string, int) {
	rootPath := s.radarrCfg.RootFolder
	if roots, err := s.radarr.RootFolders(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load Radarr root folders")
	} else if len(roots) > 0 {
		rootPath = roots[0].Path
	}

	qualityID := profileOr(nil, s.radarrCfg.QualityProfileID)
	if profiles, err := s.radarr.QualityProfiles(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load Radarr quality profiles")
	} else {
		qualityID = profileOr(profiles, s.radarrCfg.QualityProfileID)
	}

	return rootPath, qualityID
}

// profileOr picks the first profile's ID, then the configured fallback, then
// profile 1.
func profileOr(profiles []arr.Profile, fallback int) int {
	if len(profiles) > 0 {
		return profiles[0].ID
	}
	if fallback > 0 {
		return fallback
	}
	return 1
}

func (s *Service) broadcastAdded(result *Result, mode string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(EventCollectionAdded, CollectionAddedPayload{
		Title:         result.Title,
		Service:       result.Service,
		Mode:          mode,
		AlreadyExists: result.AlreadyExists,
	})
}
