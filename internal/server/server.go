// Package server implements the TrackStore HTTP server and route multiplexer.
package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trackstore/trackstore/internal/config"
	"github.com/trackstore/trackstore/internal/handlers"
	"github.com/trackstore/trackstore/internal/ingest"
	"github.com/trackstore/trackstore/internal/metadata"
	"github.com/trackstore/trackstore/internal/song"
)

// Server is the TrackStore HTTP server. It routes incoming requests to the
// resource and song handlers.
type Server struct {
	cfg        *config.Config
	router     chi.Router
	api        huma.API
	records    metadata.Store
	resource   *handlers.ResourceHandler
	song       *handlers.SongHandler
	httpServer *http.Server
}

// HealthBody is the JSON body returned by the health check endpoint.
type HealthBody struct {
	Status string `json:"status" example:"ok" doc:"Health status"`
}

// HealthOutput is the Huma output struct for the health check endpoint.
type HealthOutput struct {
	Body HealthBody
}

// New creates a new Server with the given configuration and wires up all
// routes on the Chi router with Huma API.
func New(cfg *config.Config, records metadata.Store, ing *ingest.Service, songs *song.Service) *Server {
	router := chi.NewMux()

	humaConfig := huma.DefaultConfig("TrackStore API", "1.0.0")
	humaConfig.DocsPath = "/docs"
	humaConfig.OpenAPIPath = "/openapi"
	api := humachi.New(router, humaConfig)

	s := &Server{
		cfg:      cfg,
		router:   router,
		api:      api,
		records:  records,
		resource: handlers.NewResourceHandler(ing, cfg.Server.MaxUploadSize),
		song:     handlers.NewSongHandler(songs),
	}

	s.registerRoutes()
	return s
}

// ListenAndServe starts the HTTP server on the given address.
// Middleware chain: metricsMiddleware -> commonHeaders -> router.
func (s *Server) ListenAndServe(addr string) error {
	var handler http.Handler = s.router
	handler = commonHeaders(handler)
	handler = metricsMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server, waiting for in-flight
// requests to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the fully wired route multiplexer. Test helper.
func (s *Server) Handler() http.Handler {
	return s.router
}

// registerRoutes configures all routes on the Chi router.
// Huma routes (/health, /docs, /openapi.json) and /metrics are registered
// alongside the REST endpoints.
func (s *Server) registerRoutes() {
	// Register /health via Huma for auto-OpenAPI documentation. The check
	// fails when the metadata store is unreachable.
	huma.Register(s.api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the TrackStore server.",
		Tags:        []string{"System"},
	}, func(ctx context.Context, input *struct{}) (*HealthOutput, error) {
		if err := s.records.Ping(ctx); err != nil {
			return nil, huma.Error503ServiceUnavailable("metadata store unreachable", err)
		}
		return &HealthOutput{Body: HealthBody{Status: "ok"}}, nil
	})

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/resources", func(r chi.Router) {
		r.Post("/", s.resource.Upload)
		r.Delete("/", s.resource.Delete)
		r.Get("/{id}", s.resource.Get)
		r.Get("/{id}/info", s.resource.Info)
	})

	s.router.Route("/songs", func(r chi.Router) {
		r.Post("/", s.song.Create)
		r.Delete("/", s.song.Delete)
		r.Get("/{id}", s.song.Get)
	})
}
