package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"finsight/internal/sources"
)

type stubSource struct {
	name      string
	healthErr error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) HealthCheck(_ context.Context) error { return s.healthErr }

func (s *stubSource) FetchFundamentals(_ context.Context, ticker string) (*sources.Snapshot, error) {
	return &sources.Snapshot{Ticker: ticker, SourceLabel: s.name}, nil
}

func setupHealthRouter(handler *HealthHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", handler.Health)
	return r
}

func TestHealthHandler_Health(t *testing.T) {
	t.Run("all_sources_healthy", func(t *testing.T) {
		registry := sources.NewRegistry(
			&stubSource{name: "SEC EDGAR"},
			&stubSource{name: "Yahoo Finance"},
		)
		r := setupHealthRouter(NewHealthHandler(registry))

		rec := doRequest(r, "GET", "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["status"] != "ok" {
			t.Errorf("expected status ok, got %v", result["status"])
		}
		srcs := result["sources"].([]interface{})
		if len(srcs) != 2 {
			t.Errorf("expected 2 source reports, got %d", len(srcs))
		}
	})

	t.Run("degraded_when_a_source_is_down", func(t *testing.T) {
		registry := sources.NewRegistry(
			&stubSource{name: "SEC EDGAR"},
			&stubSource{name: "Alpha Vantage", healthErr: fmt.Errorf("api key not configured")},
		)
		r := setupHealthRouter(NewHealthHandler(registry))

		rec := doRequest(r, "GET", "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 even when degraded, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["status"] != "degraded" {
			t.Errorf("expected status degraded, got %v", result["status"])
		}
		srcs := result["sources"].([]interface{})
		down := srcs[1].(map[string]interface{})
		if down["status"] != "down" || down["error"] == "" {
			t.Errorf("expected down source with error, got %v", down)
		}
	})
}
