package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fieldside/rdysl/internal/cache"
	"github.com/fieldside/rdysl/internal/summary"
)

// Server is the REST API in front of the cache engine.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates the REST API server. redisCache may be nil; the
// cached-only endpoint then serves from the in-process engine alone.
func NewServer(port string, engine *summary.Engine, redisCache *cache.RedisCache) *Server {
	handler := NewHandler(engine, redisCache)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/callups", handler.GetCallups).Methods("GET")
	api.HandleFunc("/callups/cached", handler.GetCachedCallups).Methods("GET")
	api.HandleFunc("/callups/refresh", handler.RefreshCallups).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
