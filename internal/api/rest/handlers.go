package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fieldside/rdysl/internal/cache"
	"github.com/fieldside/rdysl/internal/summary"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	engine     *summary.Engine
	redisCache *cache.RedisCache
}

// NewHandler creates a new handler.
func NewHandler(engine *summary.Engine, redisCache *cache.RedisCache) *Handler {
	return &Handler{
		engine:     engine,
		redisCache: redisCache,
	}
}

// scrapeResponse is the caller-visible envelope. A scrape failure is a
// structured {success: false} payload, never a raw error crossing the
// boundary.
type scrapeResponse struct {
	Success      bool                    `json:"success"`
	Summary      []summary.PlayerSummary `json:"summary,omitempty"`
	TotalRecords int                     `json:"totalRecords,omitempty"`
	LastUpdated  *time.Time              `json:"lastUpdated,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

func snapshotResponse(snap *summary.Snapshot, search string) scrapeResponse {
	players := summary.Filter(snap.Players, search)
	updated := snap.LastUpdated
	return scrapeResponse{
		Success:      true,
		Summary:      players,
		TotalRecords: snap.TotalRecords,
		LastUpdated:  &updated,
	}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":  "healthy",
		"service": "rdysl",
	}
	if h.redisCache != nil {
		if err := h.redisCache.HealthCheck(r.Context()); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "connected"
		}
	}
	respondJSON(w, http.StatusOK, status)
}

// GetCallups returns the callup summary, scraping if the cache is expired or
// ?refresh=true is set. ?search= filters by player name.
func (h *Handler) GetCallups(w http.ResponseWriter, r *http.Request) {
	forceRefresh := r.URL.Query().Get("refresh") == "true"
	search := r.URL.Query().Get("search")

	snap, err := h.engine.Get(r.Context(), forceRefresh)
	if err != nil {
		respondJSON(w, http.StatusBadGateway, scrapeResponse{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, snapshotResponse(snap, search))
}

// RefreshCallups always re-scrapes.
func (h *Handler) RefreshCallups(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Refresh(r.Context())
	if err != nil {
		respondJSON(w, http.StatusBadGateway, scrapeResponse{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, snapshotResponse(snap, ""))
}

// GetCachedCallups serves only cached data and never triggers a scrape.
// Falls back to the Redis mirror when this process has no snapshot yet.
func (h *Handler) GetCachedCallups(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.CachedOnly()
	if errors.Is(err, summary.ErrNoCachedData) && h.redisCache != nil {
		snap, err = h.redisCache.LoadSnapshot(r.Context())
		if err == nil && snap == nil {
			err = summary.ErrNoCachedData
		}
	}
	if err != nil {
		respondJSON(w, http.StatusNotFound, scrapeResponse{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, snapshotResponse(snap, r.URL.Query().Get("search")))
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
