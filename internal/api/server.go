// Package api assembles the services and exposes them over HTTP.
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/arr"
	"github.com/recomarr/recomarr/internal/collection"
	"github.com/recomarr/recomarr/internal/config"
	"github.com/recomarr/recomarr/internal/credits"
	"github.com/recomarr/recomarr/internal/generator"
	"github.com/recomarr/recomarr/internal/history"
	"github.com/recomarr/recomarr/internal/library"
	"github.com/recomarr/recomarr/internal/recommend"
	"github.com/recomarr/recomarr/internal/scheduler"
	"github.com/recomarr/recomarr/internal/tmdb"
	"github.com/recomarr/recomarr/internal/websocket"
)

// Server handles HTTP requests for the Recomarr API.
type Server struct {
	echo   *echo.Echo
	hub    *websocket.Hub
	logger zerolog.Logger
	cfg    *config.Config

	sonarr    *arr.Client
	radarr    *arr.Client
	tmdb      *tmdb.Client
	generator *generator.Client

	libraryCache      *library.Cache
	recommendService  *recommend.Service
	creditsService    *credits.Service
	collectionService *collection.Service
	historyService    *history.Service

	scheduler *scheduler.Scheduler
}

// NewServer wires the pipeline together and sets up routing.
func NewServer(db *sql.DB, hub *websocket.Hub, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		hub:    hub,
		logger: logger,
		cfg:    cfg,
	}

	s.sonarr = arr.NewClient(arr.ServiceSonarr, cfg.Sonarr, logger)
	s.radarr = arr.NewClient(arr.ServiceRadarr, cfg.Radarr, logger)
	s.tmdb = tmdb.NewClient(cfg.TMDB, logger)
	s.generator = generator.NewClient(cfg.Generator, logger)

	s.libraryCache = library.NewCache(
		library.Config{
			TTL:        cfg.Cache.TTL(),
			SampleSize: cfg.Cache.SampleSize,
		},
		&library.SeriesLister{Client: s.sonarr},
		&library.MovieLister{Client: s.radarr},
		logger,
	)

	seriesLookup := recommend.SeriesLookup{Client: s.sonarr}
	movieLookup := recommend.MovieLookup{Client: s.radarr}

	enricher := recommend.NewEnricher(
		recommend.EnricherConfig{
			Workers: cfg.Enrichment.Workers,
			Timeout: cfg.Enrichment.Timeout(),
		},
		seriesLookup, movieLookup, logger,
	)

	filterDeny := recommend.LoadDenylistFile(cfg.Exclusions.FilterFile, recommend.DefaultFilterPatterns, logger)
	filter := recommend.NewFilter(s.libraryCache, filterDeny, logger)

	s.recommendService = recommend.NewService(
		recommend.GeneratorSource{Client: s.generator},
		enricher, filter, s.libraryCache, logger,
	)
	s.recommendService.SetBroadcaster(hub)

	creditsDeny := recommend.LoadDenylistFile(cfg.Exclusions.CreditsFile, recommend.DefaultCreditsPatterns, logger)
	s.creditsService = credits.NewService(
		credits.Config{
			Workers: cfg.Enrichment.Workers,
			Timeout: cfg.Enrichment.Timeout(),
		},
		s.tmdb, seriesLookup, movieLookup, creditsDeny, logger,
	)
	s.creditsService.SetBroadcaster(hub)

	s.collectionService = collection.NewService(s.sonarr, s.radarr, cfg.Sonarr, cfg.Radarr, logger)
	s.collectionService.SetBroadcaster(hub)

	if db != nil {
		s.historyService = history.NewService(db, logger)
		s.recommendService.SetHistory(s.historyService)
		s.creditsService.SetHistory(s.historyService)
		s.collectionService.SetHistory(s.historyService)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// SetScheduler exposes the task list and manual trigger endpoints. Must be
// called before Start.
func (s *Server) SetScheduler(sched *scheduler.Scheduler) {
	s.scheduler = sched
	h := newSchedulerHandler(sched)
	g := s.echo.Group("/api/v1/scheduler")
	g.GET("/tasks", h.ListTasks)
	g.GET("/tasks/:id", h.GetTask)
	g.POST("/tasks/:id/run", h.RunTask)
}

// LibraryCache returns the snapshot cache for scheduler wiring.
func (s *Server) LibraryCache() *library.Cache {
	return s.libraryCache
}

// HistoryService returns the history service for scheduler wiring. Nil when
// the server was built without a database.
func (s *Server) HistoryService() *history.Service {
	return s.historyService
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	recommendHandlers := recommend.NewHandlers(s.recommendService, s.logger)
	recommendHandlers.RegisterRoutes(api)

	creditsHandlers := credits.NewHandlers(s.creditsService, s.logger)
	creditsHandlers.RegisterRoutes(api)

	collectionHandlers := collection.NewHandlers(s.collectionService, s.logger)
	collectionHandlers.RegisterRoutes(api)

	if s.historyService != nil {
		historyHandlers := history.NewHandlers(s.historyService)
		historyHandlers.RegisterRoutes(api.Group("/history"))
	}
}

// WarmSnapshots fetches both library snapshots once. Used at startup behind
// the network retry wrapper so a late-starting Sonarr or Radarr doesn't
// abort the boot.
func (s *Server) WarmSnapshots(ctx context.Context) error {
	return s.libraryCache.Refresh(ctx)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance (for the websocket route and
// static frontend).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// serviceStatus is one upstream's connectivity summary.
type serviceStatus struct {
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
	Error      string `json:"error,omitempty"`
}

func probe(ctx context.Context, configured bool, test func(context.Context) error) serviceStatus {
	st := serviceStatus{Configured: configured}
	if !configured {
		return st
	}
	if err := test(ctx); err != nil {
		st.Error = err.Error()
		return st
	}
	st.Reachable = true
	return st
}

// getStatus reports version and upstream connectivity.
// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	ctx := c.Request().Context()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":   config.Version,
		"wsClients": s.hub.ClientCount(),
		"services": map[string]serviceStatus{
			"sonarr":    probe(ctx, s.sonarr.IsConfigured(), s.sonarr.Test),
			"radarr":    probe(ctx, s.radarr.IsConfigured(), s.radarr.Test),
			"tmdb":      probe(ctx, s.tmdb.IsConfigured(), s.tmdb.Test),
			"generator": probe(ctx, s.generator.IsConfigured(), s.generator.Test),
		},
	})
}
