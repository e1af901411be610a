package services

import (
	"context"

	"finsight/internal/calc"
	"finsight/internal/fundamentals"
)

// CompanyOverview aggregates everything known about one ticker from a single
// fetch: raw fundamentals, derived ratios and per-share metrics, and growth
// rates when a prior period was available. Ticker is always normalized.
type CompanyOverview struct {
	Ticker          string              `json:"ticker"`
	Fundamentals    fundamentals.Record `json:"fundamentals"`
	Ratios          *calc.RatioSet      `json:"ratios,omitempty"`
	PerShareMetrics *calc.PerShareSet   `json:"per_share_metrics,omitempty"`
	GrowthRates     *calc.GrowthSet     `json:"growth_rates,omitempty"`
	AsOfDate        string              `json:"as_of_date,omitempty"`
	Source          string              `json:"source"`
}

// TickerRatios is the ratios-only view of a company.
type TickerRatios struct {
	Ticker   string        `json:"ticker"`
	AsOfDate string        `json:"as_of_date,omitempty"`
	Ratios   calc.RatioSet `json:"ratios"`
	Source   string        `json:"source"`
}

// BatchReport merges the outcomes of a multi-ticker request. Companies holds
// only the tickers whose assembly succeeded, in completion order;
// Successful + Failed always equals Requested.
type BatchReport struct {
	Companies  []CompanyOverview `json:"companies"`
	Requested  int               `json:"requested"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
}

// CompanyServicer defines the contract for company data aggregation.
type CompanyServicer interface {
	GetOverview(ctx context.Context, ticker string) (*CompanyOverview, error)
	GetRatios(ctx context.Context, ticker string) (*TickerRatios, error)
	GetBatch(ctx context.Context, tickers []string, includeRatios bool) (*BatchReport, error)
}
