package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	apperrors "finsight/internal/errors"
	"finsight/internal/fundamentals"
	"finsight/internal/sources"
	"finsight/internal/testutil"
)

// mockSource implements sources.Source with a per-ticker fetch function and
// an atomic call counter.
type mockSource struct {
	fetchFn    func(ctx context.Context, ticker string) (*sources.Snapshot, error)
	fetchCalls atomic.Int64
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) HealthCheck(_ context.Context) error { return nil }

func (m *mockSource) FetchFundamentals(ctx context.Context, ticker string) (*sources.Snapshot, error) {
	m.fetchCalls.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, ticker)
	}
	return testSnapshot(ticker), nil
}

// testSnapshot builds a snapshot with enough fundamentals to compute the
// seed-fixture ratios, plus a prior period for growth.
func testSnapshot(ticker string) *sources.Snapshot {
	cite := fundamentals.Citation{Source: "mock", AsOfDate: "2023-12-31"}
	return &sources.Snapshot{
		Ticker: ticker,
		Record: fundamentals.Record{
			fundamentals.Revenue:            {Value: 100, Citation: cite},
			fundamentals.NetIncome:          {Value: 20, Citation: cite},
			fundamentals.TotalAssets:        {Value: 200, Citation: cite},
			fundamentals.ShareholdersEquity: {Value: 50, Citation: cite},
		},
		Previous: fundamentals.Record{
			fundamentals.Revenue:   {Value: 80, Citation: cite},
			fundamentals.NetIncome: {Value: 10, Citation: cite},
		},
		AsOfDate:    "2023-12-31",
		SourceLabel: "mock",
	}
}

func newTestService(src sources.Source) CompanyServicer {
	return NewCompanyService(sources.NewRegistry(src))
}

func tickerList(n int) []string {
	tickers := make([]string, n)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("T%d", i)
	}
	return tickers
}

func TestGetOverview(t *testing.T) {
	t.Run("assembles_fundamentals_ratios_and_growth", func(t *testing.T) {
		svc := newTestService(&mockSource{})

		overview, err := svc.GetOverview(context.Background(), "aapl")
		testutil.AssertNoError(t, err)

		if overview.Ticker != "AAPL" {
			t.Errorf("expected normalized ticker AAPL, got %s", overview.Ticker)
		}
		if overview.AsOfDate != "2023-12-31" {
			t.Errorf("expected as-of date from fetch, got %s", overview.AsOfDate)
		}
		if overview.Source != "mock" {
			t.Errorf("expected source label from fetch, got %s", overview.Source)
		}
		if overview.Ratios == nil {
			t.Fatal("expected ratios to be present")
		}
		if pm, ok := overview.Ratios.ProfitMargin.Value(); !ok || pm != 0.20 {
			t.Errorf("expected profit_margin 0.20, got %v (%v)", pm, ok)
		}
		if overview.PerShareMetrics == nil {
			t.Fatal("expected per-share metrics to be present")
		}
		if overview.GrowthRates == nil {
			t.Fatal("expected growth rates when a prior period exists")
		}
		if g, ok := overview.GrowthRates.NetIncomeGrowth.Value(); !ok || g != 1.0 {
			t.Errorf("expected net income growth 1.0, got %v (%v)", g, ok)
		}
	})

	t.Run("no_growth_without_prior_period", func(t *testing.T) {
		svc := newTestService(&mockSource{
			fetchFn: func(_ context.Context, ticker string) (*sources.Snapshot, error) {
				snap := testSnapshot(ticker)
				snap.Previous = nil
				return snap, nil
			},
		})

		overview, err := svc.GetOverview(context.Background(), "AAPL")
		testutil.AssertNoError(t, err)
		if overview.GrowthRates != nil {
			t.Error("expected no growth rates without a prior period")
		}
	})

	t.Run("partial_fundamentals_degrade_not_fail", func(t *testing.T) {
		svc := newTestService(&mockSource{
			fetchFn: func(_ context.Context, ticker string) (*sources.Snapshot, error) {
				return &sources.Snapshot{
					Ticker: ticker,
					Record: fundamentals.Record{
						fundamentals.Revenue: {Value: 100},
					},
					SourceLabel: "mock",
				}, nil
			},
		})

		overview, err := svc.GetOverview(context.Background(), "AAPL")
		testutil.AssertNoError(t, err)
		if overview.Ratios.ProfitMargin.Valid() {
			t.Error("expected profit_margin not computable without netIncome")
		}
	})

	t.Run("propagates_not_found", func(t *testing.T) {
		svc := newTestService(&mockSource{
			fetchFn: func(_ context.Context, _ string) (*sources.Snapshot, error) {
				return nil, apperrors.ErrTickerNotFound
			},
		})

		_, err := svc.GetOverview(context.Background(), "NOPE")
		testutil.AssertAppError(t, err, "TICKER_NOT_FOUND")
	})

	t.Run("rejects_invalid_ticker_before_fetch", func(t *testing.T) {
		src := &mockSource{}
		svc := newTestService(src)

		_, err := svc.GetOverview(context.Background(), "not a ticker!")
		testutil.AssertAppError(t, err, "INVALID_TICKER")
		if calls := src.fetchCalls.Load(); calls != 0 {
			t.Errorf("expected 0 fetch calls, got %d", calls)
		}
	})
}

func TestGetRatios(t *testing.T) {
	svc := newTestService(&mockSource{})

	result, err := svc.GetRatios(context.Background(), " msft ")
	testutil.AssertNoError(t, err)

	if result.Ticker != "MSFT" {
		t.Errorf("expected normalized ticker MSFT, got %s", result.Ticker)
	}
	if roe, ok := result.Ratios.ROE.Value(); !ok || roe != 0.40 {
		t.Errorf("expected roe 0.40, got %v (%v)", roe, ok)
	}
	if result.Source != "mock" {
		t.Errorf("expected source label from fetch, got %s", result.Source)
	}
}

func TestGetBatch(t *testing.T) {
	t.Run("rejects_21_tickers_before_any_fetch", func(t *testing.T) {
		src := &mockSource{}
		svc := newTestService(src)

		_, err := svc.GetBatch(context.Background(), tickerList(21), true)
		testutil.AssertAppError(t, err, "BATCH_TOO_LARGE")
		if calls := src.fetchCalls.Load(); calls != 0 {
			t.Errorf("expected 0 fetch calls, got %d", calls)
		}
	})

	t.Run("accepts_20_tickers", func(t *testing.T) {
		src := &mockSource{}
		svc := newTestService(src)

		report, err := svc.GetBatch(context.Background(), tickerList(20), true)
		testutil.AssertNoError(t, err)
		if report.Requested != 20 || report.Successful != 20 || report.Failed != 0 {
			t.Errorf("unexpected report: %+v", report)
		}
		if calls := src.fetchCalls.Load(); calls != 20 {
			t.Errorf("expected 20 fetch calls, got %d", calls)
		}
	})

	t.Run("rejects_empty_batch", func(t *testing.T) {
		svc := newTestService(&mockSource{})
		_, err := svc.GetBatch(context.Background(), nil, true)
		testutil.AssertAppError(t, err, "EMPTY_BATCH")
	})

	t.Run("absorbs_per_ticker_failures", func(t *testing.T) {
		svc := newTestService(&mockSource{
			fetchFn: func(_ context.Context, ticker string) (*sources.Snapshot, error) {
				if ticker == "B" {
					return nil, apperrors.ErrTickerNotFound
				}
				return testSnapshot(ticker), nil
			},
		})

		report, err := svc.GetBatch(context.Background(), []string{"A", "B", "C"}, true)
		testutil.AssertNoError(t, err)

		if report.Requested != 3 || report.Successful != 2 || report.Failed != 1 {
			t.Fatalf("unexpected report counts: %+v", report)
		}
		got := map[string]bool{}
		for _, company := range report.Companies {
			got[company.Ticker] = true
		}
		if !got["A"] || !got["C"] || got["B"] {
			t.Errorf("expected companies A and C only, got %v", got)
		}
	})

	t.Run("all_failed_is_a_valid_outcome", func(t *testing.T) {
		svc := newTestService(&mockSource{
			fetchFn: func(_ context.Context, _ string) (*sources.Snapshot, error) {
				return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("connection refused"))
			},
		})

		report, err := svc.GetBatch(context.Background(), []string{"A", "B"}, true)
		testutil.AssertNoError(t, err)
		if report.Requested != 2 || report.Successful != 0 || report.Failed != 2 {
			t.Errorf("unexpected report counts: %+v", report)
		}
		if len(report.Companies) != 0 {
			t.Errorf("expected no companies, got %d", len(report.Companies))
		}
	})

	t.Run("duplicates_processed_independently", func(t *testing.T) {
		src := &mockSource{}
		svc := newTestService(src)

		report, err := svc.GetBatch(context.Background(), []string{"AAPL", "AAPL"}, true)
		testutil.AssertNoError(t, err)
		if report.Requested != 2 || report.Successful != 2 {
			t.Errorf("unexpected report counts: %+v", report)
		}
		if calls := src.fetchCalls.Load(); calls != 2 {
			t.Errorf("expected 2 fetch calls, got %d", calls)
		}
	})

	t.Run("include_ratios_false_skips_computation", func(t *testing.T) {
		svc := newTestService(&mockSource{})

		report, err := svc.GetBatch(context.Background(), []string{"AAPL"}, false)
		testutil.AssertNoError(t, err)
		if len(report.Companies) != 1 {
			t.Fatalf("expected 1 company, got %d", len(report.Companies))
		}
		company := report.Companies[0]
		if company.Ratios != nil || company.PerShareMetrics != nil || company.GrowthRates != nil {
			t.Error("expected no derived metrics with include_ratios=false")
		}
		if company.Fundamentals.Len() == 0 {
			t.Error("expected fundamentals to still be fetched")
		}
	})

	t.Run("normalizes_tickers", func(t *testing.T) {
		svc := newTestService(&mockSource{})

		report, err := svc.GetBatch(context.Background(), []string{" aapl "}, true)
		testutil.AssertNoError(t, err)
		if report.Companies[0].Ticker != "AAPL" {
			t.Errorf("expected normalized ticker, got %s", report.Companies[0].Ticker)
		}
	})
}
