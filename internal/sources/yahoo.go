package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "finsight/internal/errors"
	"finsight/internal/fundamentals"
)

const (
	yahooBaseURL     = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
	yahooModules     = "price,defaultKeyStatistics,incomeStatementHistory,balanceSheetHistory"
	yahooSourceLabel = "Yahoo Finance"
	yahooUA          = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// YahooSource fetches fundamentals and a market quote from the Yahoo
// Finance quoteSummary API.
type YahooSource struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewYahooSource creates a new Yahoo Finance source.
func NewYahooSource(httpClient *http.Client) *YahooSource {
	return &YahooSource{httpClient: httpClient, baseURL: yahooBaseURL}
}

// Name returns the source's display name.
func (s *YahooSource) Name() string { return yahooSourceLabel }

// yahooValue is Yahoo's {raw, fmt} number wrapper.
type yahooValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// yahooStatement is one fiscal period of either statement history module.
type yahooStatement struct {
	EndDate                 yahooValue `json:"endDate"`
	TotalRevenue            yahooValue `json:"totalRevenue"`
	NetIncome               yahooValue `json:"netIncome"`
	CostOfRevenue           yahooValue `json:"costOfRevenue"`
	GrossProfit             yahooValue `json:"grossProfit"`
	OperatingIncome         yahooValue `json:"operatingIncome"`
	TotalAssets             yahooValue `json:"totalAssets"`
	TotalCurrentAssets      yahooValue `json:"totalCurrentAssets"`
	TotalCurrentLiabilities yahooValue `json:"totalCurrentLiabilities"`
	TotalStockholderEquity  yahooValue `json:"totalStockholderEquity"`
	LongTermDebt            yahooValue `json:"longTermDebt"`
	ShortLongTermDebt       yahooValue `json:"shortLongTermDebt"`
	Cash                    yahooValue `json:"cash"`
	Inventory               yahooValue `json:"inventory"`
}

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice yahooValue `json:"regularMarketPrice"`
			} `json:"price"`
			DefaultKeyStatistics struct {
				SharesOutstanding yahooValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			IncomeStatementHistory struct {
				Statements []yahooStatement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			BalanceSheetHistory struct {
				Statements []yahooStatement `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals fetches the latest annual statements plus the current
// market price for a ticker.
func (s *YahooSource) FetchFundamentals(ctx context.Context, ticker string) (*Snapshot, error) {
	url := fmt.Sprintf("%s/%s?modules=%s", s.baseURL, ticker, yahooModules)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Yahoo Finance has no data for "+ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("unexpected status %d from Yahoo Finance", resp.StatusCode))
	}

	var summary yahooQuoteSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("decoding quoteSummary: %w", err))
	}

	if e := summary.QuoteSummary.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Yahoo Finance has no data for "+ticker)
		}
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("yahoo error %s: %s", e.Code, e.Description))
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Yahoo Finance has no data for "+ticker)
	}

	result := summary.QuoteSummary.Result[0]
	income := result.IncomeStatementHistory.Statements
	balance := result.BalanceSheetHistory.Statements

	current := make(fundamentals.Record)
	previous := make(fundamentals.Record)
	asOf := ""

	if len(income) > 0 {
		asOf = mergeYahooStatement(current, income[0], incomeConcepts)
	}
	if len(balance) > 0 {
		if end := mergeYahooStatement(current, balance[0], balanceConcepts); end > asOf {
			asOf = end
		}
	}
	if len(income) > 1 {
		mergeYahooStatement(previous, income[1], incomeConcepts)
	}
	if len(balance) > 1 {
		mergeYahooStatement(previous, balance[1], balanceConcepts)
	}

	if shares := result.DefaultKeyStatistics.SharesOutstanding.Raw; shares != nil {
		current[fundamentals.SharesBasic] = fundamentals.Datum{
			Value:    *shares,
			Citation: fundamentals.Citation{Source: yahooSourceLabel, AsOfDate: asOf},
		}
	}

	if len(current) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Yahoo Finance has no fundamentals for "+ticker)
	}
	if len(previous) == 0 {
		previous = nil
	}

	return &Snapshot{
		Ticker:      ticker,
		Record:      current,
		Previous:    previous,
		MarketPrice: result.Price.RegularMarketPrice.Raw,
		AsOfDate:    asOf,
		SourceLabel: yahooSourceLabel,
	}, nil
}

// HealthCheck probes the quoteSummary endpoint with a liquid symbol.
func (s *YahooSource) HealthCheck(ctx context.Context) error {
	_, err := s.FetchFundamentals(ctx, "AAPL")
	return err
}

// yahooField extracts one statement field.
type yahooField func(st yahooStatement) yahooValue

var incomeConcepts = map[fundamentals.Concept]yahooField{
	fundamentals.Revenue:         func(st yahooStatement) yahooValue { return st.TotalRevenue },
	fundamentals.NetIncome:       func(st yahooStatement) yahooValue { return st.NetIncome },
	fundamentals.CostOfRevenue:   func(st yahooStatement) yahooValue { return st.CostOfRevenue },
	fundamentals.GrossProfit:     func(st yahooStatement) yahooValue { return st.GrossProfit },
	fundamentals.OperatingIncome: func(st yahooStatement) yahooValue { return st.OperatingIncome },
}

var balanceConcepts = map[fundamentals.Concept]yahooField{
	fundamentals.TotalAssets:        func(st yahooStatement) yahooValue { return st.TotalAssets },
	fundamentals.CurrentAssets:      func(st yahooStatement) yahooValue { return st.TotalCurrentAssets },
	fundamentals.CurrentLiabilities: func(st yahooStatement) yahooValue { return st.TotalCurrentLiabilities },
	fundamentals.ShareholdersEquity: func(st yahooStatement) yahooValue { return st.TotalStockholderEquity },
	fundamentals.TotalDebt:          func(st yahooStatement) yahooValue { return st.LongTermDebt },
	fundamentals.CashAndEquivalents: func(st yahooStatement) yahooValue { return st.Cash },
	fundamentals.Inventory:          func(st yahooStatement) yahooValue { return st.Inventory },
}

// mergeYahooStatement copies present statement fields into a record and
// returns the statement's end date.
func mergeYahooStatement(rec fundamentals.Record, st yahooStatement, fields map[fundamentals.Concept]yahooField) string {
	end := st.EndDate.Fmt
	for concept, field := range fields {
		if raw := field(st).Raw; raw != nil {
			rec[concept] = fundamentals.Datum{
				Value:    *raw,
				Citation: fundamentals.Citation{Source: yahooSourceLabel, AsOfDate: end},
			}
		}
	}
	return end
}
