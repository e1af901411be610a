package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	apperrors "finsight/internal/errors"
	"finsight/internal/fundamentals"
)

const (
	edgarTickerIndexURL  = "https://www.sec.gov/files/company_tickers.json"
	edgarCompanyFactsURL = "https://data.sec.gov/api/xbrl/companyfacts/CIK%010d.json"
	edgarSourceLabel     = "SEC EDGAR"

	// SEC fair-access guidance caps automated clients at 10 requests/second.
	edgarRequestsPerSecond = 10
)

// edgarConceptTags maps each vocabulary concept to us-gaap taxonomy tags, in
// fallback order. Filers report under different tags depending on taxonomy
// vintage, so the first tag present wins.
var edgarConceptTags = map[fundamentals.Concept][]string{
	fundamentals.Revenue: {
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"SalesRevenueNet",
	},
	fundamentals.NetIncome:          {"NetIncomeLoss"},
	fundamentals.TotalAssets:        {"Assets"},
	fundamentals.CurrentAssets:      {"AssetsCurrent"},
	fundamentals.CurrentLiabilities: {"LiabilitiesCurrent"},
	fundamentals.ShareholdersEquity: {
		"StockholdersEquity",
		"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
	},
	fundamentals.TotalDebt: {
		"DebtLongtermAndShorttermCombinedAmount",
		"LongTermDebt",
		"LongTermDebtNoncurrent",
	},
	fundamentals.CashAndEquivalents: {
		"CashAndCashEquivalentsAtCarryingValue",
		"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
	},
	fundamentals.CostOfRevenue: {
		"CostOfRevenue",
		"CostOfGoodsAndServicesSold",
		"CostOfGoodsSold",
	},
	fundamentals.GrossProfit:     {"GrossProfit"},
	fundamentals.OperatingIncome: {"OperatingIncomeLoss"},
	fundamentals.Inventory:       {"InventoryNet"},
	fundamentals.SharesDiluted:   {"WeightedAverageNumberOfDilutedSharesOutstanding"},
	fundamentals.SharesBasic:     {"WeightedAverageNumberOfSharesOutstandingBasic"},
}

// annualForms are the filing forms accepted as annual observations.
var annualForms = map[string]bool{"10-K": true, "10-K/A": true, "20-F": true}

// EDGARSource fetches fundamentals from the SEC EDGAR companyfacts API.
type EDGARSource struct {
	httpClient      *http.Client
	userAgent       string
	limiter         *rate.Limiter
	tickerIndexURL  string // overridable for tests
	companyFactsURL string // format string with one CIK verb, overridable for tests

	mu          sync.Mutex
	cikByTicker map[string]int
}

// NewEDGARSource creates an SEC EDGAR source. userAgent must identify the
// application with a contact address per SEC fair-access policy.
func NewEDGARSource(httpClient *http.Client, userAgent string) *EDGARSource {
	return &EDGARSource{
		httpClient:      httpClient,
		userAgent:       userAgent,
		limiter:         rate.NewLimiter(rate.Limit(edgarRequestsPerSecond), edgarRequestsPerSecond),
		tickerIndexURL:  edgarTickerIndexURL,
		companyFactsURL: edgarCompanyFactsURL,
	}
}

// Name returns the source's display name.
func (s *EDGARSource) Name() string { return edgarSourceLabel }

// HealthCheck verifies the ticker index is reachable.
func (s *EDGARSource) HealthCheck(ctx context.Context) error {
	resp, err := s.get(ctx, s.tickerIndexURL)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// edgarTickerEntry is one row of the SEC company_tickers.json index.
type edgarTickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// edgarFacts is the companyfacts response, restricted to what we read.
type edgarFacts struct {
	EntityName string                               `json:"entityName"`
	Facts      map[string]map[string]edgarFactGroup `json:"facts"`
}

type edgarFactGroup struct {
	Units map[string][]edgarObservation `json:"units"`
}

type edgarObservation struct {
	End   string  `json:"end"`
	Value float64 `json:"val"`
	Form  string  `json:"form"`
	FP    string  `json:"fp"`
	Accn  string  `json:"accn"`
}

// FetchFundamentals resolves the ticker to a CIK and maps the filer's
// us-gaap facts into the concept vocabulary, keeping the two most recent
// annual periods.
func (s *EDGARSource) FetchFundamentals(ctx context.Context, ticker string) (*Snapshot, error) {
	cik, err := s.resolveCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	resp, err := s.get(ctx, fmt.Sprintf(s.companyFactsURL, cik))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var facts edgarFacts
	if err := json.NewDecoder(resp.Body).Decode(&facts); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("decoding companyfacts: %w", err))
	}

	gaap := facts.Facts["us-gaap"]
	if len(gaap) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "No us-gaap facts for ticker "+ticker)
	}

	current := make(fundamentals.Record)
	previous := make(fundamentals.Record)
	asOf := ""

	for concept, tags := range edgarConceptTags {
		latest, prior, ok := latestAnnualPair(gaap, tags)
		if !ok {
			continue
		}
		current[concept] = fundamentals.Datum{
			Value:    latest.Value,
			Citation: fundamentals.Citation{Source: edgarSourceLabel, FilingRef: latest.Accn, AsOfDate: latest.End},
		}
		if latest.End > asOf {
			asOf = latest.End
		}
		if prior != nil {
			previous[concept] = fundamentals.Datum{
				Value:    prior.Value,
				Citation: fundamentals.Citation{Source: edgarSourceLabel, FilingRef: prior.Accn, AsOfDate: prior.End},
			}
		}
	}

	if len(current) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrTickerNotFound, "No annual fundamentals for ticker "+ticker)
	}
	if len(previous) == 0 {
		previous = nil
	}

	return &Snapshot{
		Ticker:      ticker,
		Record:      current,
		Previous:    previous,
		AsOfDate:    asOf,
		SourceLabel: edgarSourceLabel,
	}, nil
}

// latestAnnualPair returns the most recent annual observation for the first
// tag that has any, plus the latest observation from an earlier fiscal year
// when one exists.
func latestAnnualPair(gaap map[string]edgarFactGroup, tags []string) (latest edgarObservation, prior *edgarObservation, ok bool) {
	for _, tag := range tags {
		group, present := gaap[tag]
		if !present {
			continue
		}
		observations := annualObservations(group)
		if len(observations) == 0 {
			continue
		}
		latest = observations[0]
		for i := 1; i < len(observations); i++ {
			if fiscalYear(observations[i].End) < fiscalYear(latest.End) {
				p := observations[i]
				return latest, &p, true
			}
		}
		return latest, nil, true
	}
	return edgarObservation{}, nil, false
}

// annualObservations flattens a fact's units into annual-filing observations
// sorted by period end, newest first. USD is preferred, then share counts.
func annualObservations(group edgarFactGroup) []edgarObservation {
	var observations []edgarObservation
	for _, unit := range []string{"USD", "shares"} {
		for _, obs := range group.Units[unit] {
			if annualForms[obs.Form] && obs.FP == "FY" && obs.End != "" {
				observations = append(observations, obs)
			}
		}
		if len(observations) > 0 {
			break
		}
	}
	sort.Slice(observations, func(i, j int) bool {
		return observations[i].End > observations[j].End
	})
	return observations
}

// fiscalYear extracts the year from an ISO period end date.
func fiscalYear(end string) string {
	if len(end) >= 4 {
		return end[:4]
	}
	return end
}

// resolveCIK maps a ticker to its SEC CIK, loading and caching the full
// ticker index on first use.
func (s *EDGARSource) resolveCIK(ctx context.Context, ticker string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cikByTicker == nil {
		resp, err := s.get(ctx, s.tickerIndexURL)
		if err != nil {
			return 0, err
		}
		defer func() { _ = resp.Body.Close() }()

		var index map[string]edgarTickerEntry
		if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("decoding ticker index: %w", err))
		}

		s.cikByTicker = make(map[string]int, len(index))
		for _, entry := range index {
			s.cikByTicker[strings.ToUpper(entry.Ticker)] = entry.CIK
		}
	}

	cik, found := s.cikByTicker[ticker]
	if !found {
		return 0, apperrors.WithMessage(apperrors.ErrTickerNotFound, "Ticker "+ticker+" is not listed with the SEC")
	}
	return cik, nil
}

// get performs a rate-limited GET with the configured User-Agent.
func (s *EDGARSource) get(ctx context.Context, url string) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, apperrors.ErrTickerNotFound
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url))
	}
	return resp, nil
}
