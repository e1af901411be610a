// Package sources defines the data source interface for fetching company
// fundamentals and the adapters that normalize SEC EDGAR, Yahoo Finance and
// Alpha Vantage responses into one snapshot shape.
package sources

import (
	"context"

	"finsight/internal/fundamentals"
)

// Snapshot is a normalized fundamentals fetch result. Record holds the
// latest reported period; Previous holds the prior fiscal period when the
// upstream exposes one, for growth-rate computation. MarketPrice is set only
// by sources that also quote market data.
type Snapshot struct {
	Ticker      string              `json:"ticker"`
	Record      fundamentals.Record `json:"record"`
	Previous    fundamentals.Record `json:"previous,omitempty"`
	MarketPrice *float64            `json:"market_price,omitempty"`
	AsOfDate    string              `json:"as_of_date,omitempty"`
	SourceLabel string              `json:"source_label"`
}

// Source fetches fundamentals for a ticker from one upstream provider.
//
// FetchFundamentals returns errors.ErrTickerNotFound when the upstream
// definitively has no data for the ticker, and a wrapped errors.ErrUpstream
// for network failures, malformed responses and upstream rate limits.
// Partial data is not an error: a snapshot may carry any subset of the
// concept vocabulary.
type Source interface {
	// Name returns the source's display name (e.g., "SEC EDGAR").
	Name() string

	// FetchFundamentals fetches the latest fundamentals snapshot for a ticker.
	FetchFundamentals(ctx context.Context, ticker string) (*Snapshot, error)

	// HealthCheck verifies the upstream is reachable and credentials are valid.
	HealthCheck(ctx context.Context) error
}

// Registry is an explicit, ordered table of sources constructed at startup.
// The first source is the primary one used for fetches; the rest are kept
// for health reporting and future failover.
type Registry struct {
	sources []Source
}

// NewRegistry builds a registry from sources in priority order.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// Primary returns the highest-priority source, or nil for an empty registry.
func (r *Registry) Primary() Source {
	if len(r.sources) == 0 {
		return nil
	}
	return r.sources[0]
}

// All returns the registered sources in priority order.
func (r *Registry) All() []Source {
	return r.sources
}

// ByName returns the source with the given display name.
func (r *Registry) ByName(name string) (Source, bool) {
	for _, s := range r.sources {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}
