package services

import (
	"context"
	"sync"

	"finsight/internal/calc"
	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
	"finsight/internal/sources"
	"finsight/internal/validator"
)

// MaxBatchSize caps the number of tickers in one batch request.
const MaxBatchSize = 20

// companyService assembles company overviews from the primary data source.
type companyService struct {
	registry *sources.Registry
}

// NewCompanyService creates a new CompanyServicer backed by a source registry.
func NewCompanyService(registry *sources.Registry) CompanyServicer {
	return &companyService{registry: registry}
}

// GetOverview fetches fundamentals once for a ticker and derives ratios,
// per-share metrics and, when a prior period is available, growth rates.
// Missing fundamentals degrade into not-computable metrics; only a failed
// fetch fails the overview.
func (s *companyService) GetOverview(ctx context.Context, ticker string) (*CompanyOverview, error) {
	normalized, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.registry.Primary().FetchFundamentals(ctx, normalized)
	if err != nil {
		return nil, err
	}

	overview := assembleOverview(normalized, snapshot, true)

	logger.Get().Infow("company overview generated",
		"ticker", normalized,
		"source", snapshot.SourceLabel,
		"concepts", snapshot.Record.Len(),
	)
	return overview, nil
}

// GetRatios fetches fundamentals once and returns only the ratio set,
// stamped with the fetch's as-of date and source label.
func (s *companyService) GetRatios(ctx context.Context, ticker string) (*TickerRatios, error) {
	normalized, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.registry.Primary().FetchFundamentals(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &TickerRatios{
		Ticker:   normalized,
		AsOfDate: snapshot.AsOfDate,
		Ratios:   calc.Ratios(snapshot.Record, snapshot.MarketPrice),
		Source:   snapshot.SourceLabel,
	}, nil
}

// GetBatch assembles overviews for up to MaxBatchSize tickers concurrently.
// Validation happens before any fetch; after that, per-ticker failures are
// absorbed into the failed count and never abort the batch. Duplicate
// tickers are processed independently and the output order follows
// completion, not input.
func (s *companyService) GetBatch(ctx context.Context, tickers []string, includeRatios bool) (*BatchReport, error) {
	if len(tickers) == 0 {
		return nil, apperrors.ErrEmptyBatch
	}
	if len(tickers) > MaxBatchSize {
		return nil, apperrors.ErrBatchTooLarge
	}

	normalized := make([]string, len(tickers))
	for i, ticker := range tickers {
		n, err := normalizeTicker(ticker)
		if err != nil {
			return nil, err
		}
		normalized[i] = n
	}

	report := &BatchReport{Requested: len(normalized)}
	source := s.registry.Primary()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, ticker := range normalized {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			snapshot, err := source.FetchFundamentals(ctx, ticker)
			if err != nil {
				logger.Get().Warnw("batch ticker failed",
					"ticker", ticker,
					"error", err.Error(),
				)
				mu.Lock()
				report.Failed++
				mu.Unlock()
				return
			}

			overview := assembleOverview(ticker, snapshot, includeRatios)

			mu.Lock()
			report.Companies = append(report.Companies, *overview)
			report.Successful++
			mu.Unlock()
		}(ticker)
	}
	wg.Wait()

	logger.Get().Infow("batch companies fetched",
		"requested", report.Requested,
		"successful", report.Successful,
		"failed", report.Failed,
	)
	return report, nil
}

// assembleOverview merges a snapshot with its derived metrics. The as-of
// date and source label come verbatim from the fetch.
func assembleOverview(ticker string, snapshot *sources.Snapshot, includeRatios bool) *CompanyOverview {
	overview := &CompanyOverview{
		Ticker:       ticker,
		Fundamentals: snapshot.Record,
		AsOfDate:     snapshot.AsOfDate,
		Source:       snapshot.SourceLabel,
	}

	if !includeRatios {
		return overview
	}

	ratios := calc.Ratios(snapshot.Record, snapshot.MarketPrice)
	perShare := calc.PerShare(snapshot.Record)
	overview.Ratios = &ratios
	overview.PerShareMetrics = &perShare

	if snapshot.Previous != nil {
		growth := calc.Growth(snapshot.Record, snapshot.Previous)
		overview.GrowthRates = &growth
	}

	return overview
}

// normalizeTicker trims, uppercases and validates a ticker symbol.
func normalizeTicker(ticker string) (string, error) {
	normalized := validator.NormalizeTicker(ticker)
	if normalized == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidTicker, "Ticker is required")
	}
	if !validator.ValidTicker(normalized) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidTicker, "Invalid ticker: "+ticker)
	}
	return normalized, nil
}
