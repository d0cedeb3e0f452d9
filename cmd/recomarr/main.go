package main

import (
	"context"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/recomarr/recomarr/internal/api"
	"github.com/recomarr/recomarr/internal/config"
	"github.com/recomarr/recomarr/internal/database"
	"github.com/recomarr/recomarr/internal/logger"
	"github.com/recomarr/recomarr/internal/scheduler"
	"github.com/recomarr/recomarr/internal/scheduler/tasks"
	"github.com/recomarr/recomarr/internal/startup"
	"github.com/recomarr/recomarr/internal/websocket"
	"github.com/recomarr/recomarr/web"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting Recomarr")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hub := websocket.NewHub()
	go hub.Run()

	server := api.NewServer(db.Conn(), hub, cfg, log.Logger)

	// Warm the library snapshots; Sonarr/Radarr may still be booting.
	retryCfg := startup.DefaultRetryConfig()
	err = startup.WithRetry(
		context.Background(),
		"library snapshot warm-up",
		retryCfg,
		func() error { return server.WarmSnapshots(context.Background()) },
		log.Logger,
	)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot warm-up failed, continuing with empty snapshots")
	}

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterSnapshotRefreshTask(sched, server.LibraryCache(), hub); err != nil {
		log.Error().Err(err).Msg("failed to register snapshot refresh task")
	}
	if err := tasks.RegisterHistoryCleanupTask(sched, server.HistoryService(), cfg.History.RetentionDays); err != nil {
		log.Error().Err(err).Msg("failed to register history cleanup task")
	}
	server.SetScheduler(sched)
	sched.Start()
	defer sched.Stop()

	server.Echo().GET("/ws", hub.HandleWebSocket)

	if distFS, err := web.DistFS(); err == nil {
		registerFrontendHandler(server.Echo(), distFS)
	} else {
		log.Warn().Err(err).Msg("frontend assets unavailable")
	}

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}

// registerFrontendHandler serves the embedded frontend with an index.html
// fallback for client-side routes.
func registerFrontendHandler(e *echo.Echo, distFS fs.FS) {
	fileServer := http.FileServer(http.FS(distFS))

	e.GET("/*", func(c echo.Context) error {
		path := c.Request().URL.Path

		if strings.HasPrefix(path, "/api/") || path == "/ws" {
			return echo.ErrNotFound
		}

		if path != "/" {
			cleanPath := strings.TrimPrefix(path, "/")
			if file, err := distFS.Open(cleanPath); err == nil {
				file.Close()
				fileServer.ServeHTTP(c.Response(), c.Request())
				return nil
			}
		}

		indexFile, err := distFS.Open("index.html")
		if err != nil {
			return echo.ErrNotFound
		}
		defer indexFile.Close()

		return c.Stream(http.StatusOK, "text/html; charset=utf-8", indexFile)
	})
}
