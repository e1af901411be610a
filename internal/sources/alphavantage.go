package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "finsight/internal/errors"
	"finsight/internal/fundamentals"
)

const (
	alphaVantageBaseURL     = "https://www.alphavantage.co/query"
	alphaVantageSourceLabel = "Alpha Vantage"
)

// AlphaVantageSource fetches fundamentals from the Alpha Vantage statement
// endpoints. The free tier allows 25 requests/day, so this source is meant
// to sit behind the snapshot cache.
type AlphaVantageSource struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string // overridable for tests
}

// NewAlphaVantageSource creates a new Alpha Vantage source.
func NewAlphaVantageSource(httpClient *http.Client, apiKey string) *AlphaVantageSource {
	return &AlphaVantageSource{httpClient: httpClient, apiKey: apiKey, baseURL: alphaVantageBaseURL}
}

// Name returns the source's display name.
func (s *AlphaVantageSource) Name() string { return alphaVantageSourceLabel }

// avReport is one fiscal year of either statement. Alpha Vantage reports
// every figure as a string, with "None" for missing values.
type avReport map[string]string

type avStatementResponse struct {
	Symbol        string     `json:"symbol"`
	AnnualReports []avReport `json:"annualReports"`

	// Error surfaces: free-tier throttling and bad requests.
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// avIncomeFields maps concepts to INCOME_STATEMENT report keys.
var avIncomeFields = map[fundamentals.Concept]string{
	fundamentals.Revenue:         "totalRevenue",
	fundamentals.NetIncome:       "netIncome",
	fundamentals.CostOfRevenue:   "costOfRevenue",
	fundamentals.GrossProfit:     "grossProfit",
	fundamentals.OperatingIncome: "operatingIncome",
}

// avBalanceFields maps concepts to BALANCE_SHEET report keys.
var avBalanceFields = map[fundamentals.Concept]string{
	fundamentals.TotalAssets:        "totalAssets",
	fundamentals.CurrentAssets:      "totalCurrentAssets",
	fundamentals.CurrentLiabilities: "totalCurrentLiabilities",
	fundamentals.ShareholdersEquity: "totalShareholderEquity",
	fundamentals.TotalDebt:          "shortLongTermDebtTotal",
	fundamentals.CashAndEquivalents: "cashAndCashEquivalentsAtCarryingValue",
	fundamentals.Inventory:          "inventory",
	fundamentals.SharesBasic:        "commonStockSharesOutstanding",
}

// FetchFundamentals fetches the two most recent annual income statements and
// balance sheets for a ticker.
func (s *AlphaVantageSource) FetchFundamentals(ctx context.Context, ticker string) (*Snapshot, error) {
	income, err := s.fetchStatement(ctx, "INCOME_STATEMENT", ticker)
	if err != nil {
		return nil, err
	}
	balance, err := s.fetchStatement(ctx, "BALANCE_SHEET", ticker)
	if err != nil {
		return nil, err
	}

	if len(income.AnnualReports) == 0 && len(balance.AnnualReports) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Alpha Vantage has no data for "+ticker)
	}

	current := make(fundamentals.Record)
	previous := make(fundamentals.Record)
	asOf := ""

	if len(income.AnnualReports) > 0 {
		asOf = mergeAVReport(current, income.AnnualReports[0], avIncomeFields)
	}
	if len(balance.AnnualReports) > 0 {
		if end := mergeAVReport(current, balance.AnnualReports[0], avBalanceFields); end > asOf {
			asOf = end
		}
	}
	if len(income.AnnualReports) > 1 {
		mergeAVReport(previous, income.AnnualReports[1], avIncomeFields)
	}
	if len(balance.AnnualReports) > 1 {
		mergeAVReport(previous, balance.AnnualReports[1], avBalanceFields)
	}

	if len(current) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Alpha Vantage has no fundamentals for "+ticker)
	}
	if len(previous) == 0 {
		previous = nil
	}

	return &Snapshot{
		Ticker:      ticker,
		Record:      current,
		Previous:    previous,
		AsOfDate:    asOf,
		SourceLabel: alphaVantageSourceLabel,
	}, nil
}

// HealthCheck verifies the API key is accepted.
func (s *AlphaVantageSource) HealthCheck(ctx context.Context) error {
	if s.apiKey == "" {
		return apperrors.WithMessage(apperrors.ErrUpstream, "Alpha Vantage API key is not configured")
	}
	_, err := s.fetchStatement(ctx, "INCOME_STATEMENT", "IBM")
	return err
}

func (s *AlphaVantageSource) fetchStatement(ctx context.Context, function, ticker string) (*avStatementResponse, error) {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", ticker)
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("unexpected status %d from Alpha Vantage", resp.StatusCode))
	}

	var statement avStatementResponse
	if err := json.NewDecoder(resp.Body).Decode(&statement); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("decoding %s: %w", function, err))
	}

	// The API answers throttling and bad keys with 200 plus a prose field.
	if statement.Note != "" || statement.Information != "" {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("alpha vantage throttled: %s%s", statement.Note, statement.Information))
	}
	if statement.ErrorMessage != "" {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Alpha Vantage has no data for "+ticker)
	}

	return &statement, nil
}

// mergeAVReport copies parseable report fields into a record and returns the
// report's fiscal date.
func mergeAVReport(rec fundamentals.Record, report avReport, fields map[fundamentals.Concept]string) string {
	end := report["fiscalDateEnding"]
	for concept, key := range fields {
		raw, present := report[key]
		if !present || raw == "" || raw == "None" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		rec[concept] = fundamentals.Datum{
			Value:    value,
			Citation: fundamentals.Citation{Source: alphaVantageSourceLabel, AsOfDate: end},
		}
	}
	return end
}
