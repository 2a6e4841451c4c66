package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mansio/internal/http/handlers"
	"mansio/internal/middleware"
)

// NewRouter assembles the HTTP surface: the three media endpoints, health,
// and the static file server over the published artifacts.
func NewRouter(app *handlers.App, logger zerolog.Logger, corsOrigins []string, mediaRoot string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(corsOrigins),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/enhance", func(r chi.Router) {
		r.Post("/image/", app.EnhanceImage)
		r.Post("/video/", app.EnhanceVideo)
	})
	r.Post("/stitch/videos/", app.StitchVideos)

	// Published artifacts are addressable under /static.
	fs := http.StripPrefix("/static/", http.FileServer(http.Dir(mediaRoot)))
	r.Get("/static/*", fs.ServeHTTP)

	return r
}
