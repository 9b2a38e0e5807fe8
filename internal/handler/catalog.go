package handler

import (
	"net/http"

	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/eventbus"
)

// CatalogHandler exposes the loaded catalog and composition statistics.
type CatalogHandler struct {
	catalog *catalog.Catalog
	stats   *eventbus.StatsConsumer
	dropped func() int
}

// NewCatalogHandler creates a new CatalogHandler. stats and dropped may be
// nil, in which case GET /v1/stats reports zero counts.
func NewCatalogHandler(c *catalog.Catalog, stats *eventbus.StatsConsumer, dropped func() int) *CatalogHandler {
	return &CatalogHandler{catalog: c, stats: stats, dropped: dropped}
}

// GetCatalog handles GET /v1/catalog.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

type statsResponse struct {
	eventbus.Stats
	DroppedEvents int `json:"dropped_events"`
}

// GetStats handles GET /v1/stats.
func (h *CatalogHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	var resp statsResponse
	if h.stats != nil {
		resp.Stats = h.stats.Snapshot()
	} else {
		resp.Stats = eventbus.NewStatsConsumer().Snapshot()
	}
	if h.dropped != nil {
		resp.DroppedEvents = h.dropped()
	}
	writeJSON(w, http.StatusOK, resp)
}
