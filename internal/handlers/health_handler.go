package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finsight/internal/sources"
)

// HealthHandler reports the health of the service and its data sources.
type HealthHandler struct {
	registry *sources.Registry
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(registry *sources.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// SourceHealth is the health report for one data source.
type SourceHealth struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the overall health report.
type HealthResponse struct {
	Status  string         `json:"status"`
	Sources []SourceHealth `json:"sources"`
}

// Health checks each registered data source and reports per-source status.
// The overall status degrades to "degraded" if any source is down, but the
// endpoint itself always returns 200 while the process is serving.
// @Summary     Health check
// @Description Report service health and per-source reachability
// @Tags        health
// @Produce     json
// @Success     200 {object} HealthResponse "Health report"
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	for _, src := range h.registry.All() {
		health := SourceHealth{Name: src.Name(), Status: "ok"}
		if err := src.HealthCheck(c.Request.Context()); err != nil {
			health.Status = "down"
			health.Error = err.Error()
			resp.Status = "degraded"
		}
		resp.Sources = append(resp.Sources, health)
	}
	c.JSON(http.StatusOK, resp)
}
