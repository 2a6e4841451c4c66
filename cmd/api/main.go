package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"mansio/internal/http/handlers"
	httpapi "mansio/internal/http/httpapi"
	"mansio/internal/infra"
	"mansio/internal/media"
	"mansio/internal/pipeline"
	"mansio/internal/processing"
	"mansio/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger, logCloser, err := infra.NewLogger(cfg.AppEnv, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()

	// Media trees (uploads + processed for both kinds)
	store, err := storage.NewStore(cfg.MediaRoot)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize media store")
	}

	// Reclaim staging leftovers from a previous unclean shutdown.
	sweep := store.SweepStale(cfg.StagingMaxAge, logger)
	if len(sweep.Removed) > 0 {
		logger.Info().Int("count", len(sweep.Removed)).Msg("removed stale staged files")
	}

	// Transform collaborators (ffmpeg subprocess)
	workDir := filepath.Join(cfg.MediaRoot, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create transform work directory")
	}
	ffmpeg := processing.NewFFmpeg(workDir)

	wm := media.NewWatermark(cfg.WatermarkUser, cfg.WatermarkTimestamp)
	p := pipeline.New(store, ffmpeg, ffmpeg, ffmpeg, wm, logger)

	app := handlers.NewApp(p, logger, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(app, logger, cfg.CORSOrigins, cfg.MediaRoot)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
