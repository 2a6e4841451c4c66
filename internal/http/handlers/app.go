package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"mansio/internal/media"
	"mansio/internal/pipeline"
)

// MediaPipeline is the slice of the pipeline the handlers need; the concrete
// implementation is injected at startup.
type MediaPipeline interface {
	EnhanceImage(ctx context.Context, up pipeline.Upload) (pipeline.Artifact, error)
	EnhanceVideo(ctx context.Context, up pipeline.Upload) (pipeline.Artifact, error)
	StitchVideos(ctx context.Context, ups []pipeline.Upload) (pipeline.Artifact, error)
}

// App is the handler container; one instance serves all requests.
type App struct {
	Pipeline       MediaPipeline
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

func NewApp(p MediaPipeline, logger zerolog.Logger, maxUploadBytes int64) *App {
	return &App{Pipeline: p, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"status": "error", "message": message})
}

// pipelineError maps the error taxonomy onto HTTP statuses: validation
// failures are the client's to fix, everything else is a 500.
func (a *App) pipelineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if media.KindOf(err) == media.ErrValidation {
		status = http.StatusBadRequest
	}
	a.error(w, status, err.Error())
}
