// Package calc derives financial ratios, per-share metrics and growth rates
// from a fundamentals record. Every function here is pure and total: missing
// operands and zero denominators yield NotComputable metrics, never errors.
package calc

import (
	"math"

	"finsight/internal/fundamentals"
)

// Reasons attached to NotComputable metrics.
const (
	reasonMissingOperand  = "missing operand"
	reasonZeroDenominator = "zero denominator"
	reasonNoMarketPrice   = "no market price"
	reasonNonPositiveEPS  = "eps not positive"
	reasonNonPositiveBVPS = "book value per share not positive"
	reasonNoShareCount    = "no share count"
)

// RatioSet holds every ratio in the fixed vocabulary. All fields are always
// populated; callers never need to special-case a missing key. Ratios are
// decimal fractions (0.21 means 21%), not percentages.
type RatioSet struct {
	ProfitMargin    Metric `json:"profit_margin"`
	GrossMargin     Metric `json:"gross_margin"`
	OperatingMargin Metric `json:"operating_margin"`
	ROA             Metric `json:"roa"`
	ROE             Metric `json:"roe"`
	PERatio         Metric `json:"pe_ratio"`
	PBRatio         Metric `json:"pb_ratio"`
	EPSDiluted      Metric `json:"eps_diluted"`
	CurrentRatio    Metric `json:"current_ratio"`
	QuickRatio      Metric `json:"quick_ratio"`
	DebtToEquity    Metric `json:"debt_to_equity"`
	DebtToAssets    Metric `json:"debt_to_assets"`
	AssetTurnover   Metric `json:"asset_turnover"`
}

// PerShareSet holds fundamentals normalized by share count. Diluted shares
// are preferred, basic shares are the fallback for everything except diluted
// EPS, which requires the diluted count by definition.
type PerShareSet struct {
	EPSDiluted        Metric `json:"eps_diluted"`
	BookValuePerShare Metric `json:"book_value_per_share"`
	RevenuePerShare   Metric `json:"revenue_per_share"`
	CashPerShare      Metric `json:"cash_per_share"`
}

// GrowthSet holds year-over-year growth rates between two periods, as
// decimal fractions of the prior period's magnitude.
type GrowthSet struct {
	RevenueGrowth            Metric `json:"revenue_growth"`
	NetIncomeGrowth          Metric `json:"net_income_growth"`
	TotalAssetsGrowth        Metric `json:"total_assets_growth"`
	ShareholdersEquityGrowth Metric `json:"shareholders_equity_growth"`
}

// Ratios computes the full ratio set for a record. marketPrice is optional;
// without it the valuation ratios (P/E, P/B) are not computable. Negative
// denominators are not suppressed: ROE over negative equity is reported as
// the (negative) quotient the formula produces.
func Ratios(rec fundamentals.Record, marketPrice *float64) RatioSet {
	revenue, hasRevenue := rec.Value(fundamentals.Revenue)
	netIncome, hasNetIncome := rec.Value(fundamentals.NetIncome)
	totalAssets, hasTotalAssets := rec.Value(fundamentals.TotalAssets)
	equity, hasEquity := rec.Value(fundamentals.ShareholdersEquity)
	currentAssets, hasCurrentAssets := rec.Value(fundamentals.CurrentAssets)
	currentLiabilities, hasCurrentLiabilities := rec.Value(fundamentals.CurrentLiabilities)
	totalDebt, hasTotalDebt := rec.Value(fundamentals.TotalDebt)
	sharesDiluted, hasSharesDiluted := rec.Value(fundamentals.SharesDiluted)

	var rs RatioSet

	rs.ProfitMargin = divide(netIncome, hasNetIncome, revenue, hasRevenue)
	gp, hasGP := grossProfit(rec)
	rs.GrossMargin = divide(gp, hasGP, revenue, hasRevenue)
	rs.OperatingMargin = divideConcept(rec, fundamentals.OperatingIncome, revenue, hasRevenue)
	rs.ROA = divide(netIncome, hasNetIncome, totalAssets, hasTotalAssets)
	rs.ROE = divide(netIncome, hasNetIncome, equity, hasEquity)

	rs.EPSDiluted = divide(netIncome, hasNetIncome, sharesDiluted, hasSharesDiluted)

	rs.CurrentRatio = divide(currentAssets, hasCurrentAssets, currentLiabilities, hasCurrentLiabilities)
	rs.QuickRatio = quickRatio(rec, currentAssets, hasCurrentAssets, currentLiabilities, hasCurrentLiabilities)

	rs.DebtToEquity = divide(totalDebt, hasTotalDebt, equity, hasEquity)
	rs.DebtToAssets = divide(totalDebt, hasTotalDebt, totalAssets, hasTotalAssets)
	rs.AssetTurnover = divide(revenue, hasRevenue, totalAssets, hasTotalAssets)

	rs.PERatio = peRatio(marketPrice, rs.EPSDiluted)
	rs.PBRatio = pbRatio(marketPrice, bookValuePerShare(rec))

	return rs
}

// PerShare computes per-share metrics. If neither diluted nor basic share
// count is present, every metric is not computable.
func PerShare(rec fundamentals.Record) PerShareSet {
	var ps PerShareSet

	netIncome, hasNetIncome := rec.Value(fundamentals.NetIncome)
	sharesDiluted, hasSharesDiluted := rec.Value(fundamentals.SharesDiluted)
	ps.EPSDiluted = divide(netIncome, hasNetIncome, sharesDiluted, hasSharesDiluted)

	shares, hasShares := shareCount(rec)
	if !hasShares {
		ps.BookValuePerShare = NotComputable(reasonNoShareCount)
		ps.RevenuePerShare = NotComputable(reasonNoShareCount)
		ps.CashPerShare = NotComputable(reasonNoShareCount)
		return ps
	}

	ps.BookValuePerShare = divideConcept(rec, fundamentals.ShareholdersEquity, shares, true)
	ps.RevenuePerShare = divideConcept(rec, fundamentals.Revenue, shares, true)
	ps.CashPerShare = divideConcept(rec, fundamentals.CashAndEquivalents, shares, true)
	return ps
}

// Growth computes year-over-year growth rates between two fundamentals
// records. The denominator is the absolute value of the prior period, so a
// swing from -100 to 100 reads as +2.0 rather than -2.0.
func Growth(current, previous fundamentals.Record) GrowthSet {
	return GrowthSet{
		RevenueGrowth:            growthRate(current, previous, fundamentals.Revenue),
		NetIncomeGrowth:          growthRate(current, previous, fundamentals.NetIncome),
		TotalAssetsGrowth:        growthRate(current, previous, fundamentals.TotalAssets),
		ShareholdersEquityGrowth: growthRate(current, previous, fundamentals.ShareholdersEquity),
	}
}

// divide applies the uniform division policy: missing operand or zero
// denominator yields NotComputable, everything else the rounded quotient.
func divide(numerator float64, hasNumerator bool, denominator float64, hasDenominator bool) Metric {
	if !hasNumerator || !hasDenominator {
		return NotComputable(reasonMissingOperand)
	}
	if denominator == 0 {
		return NotComputable(reasonZeroDenominator)
	}
	return Computed(round4(numerator / denominator))
}

// divideConcept divides a record concept by an already-extracted denominator.
func divideConcept(rec fundamentals.Record, numerator fundamentals.Concept, denominator float64, hasDenominator bool) Metric {
	n, ok := rec.Value(numerator)
	return divide(n, ok, denominator, hasDenominator)
}

// grossProfit resolves gross profit, deriving revenue - costOfRevenue when
// the concept is not reported directly.
func grossProfit(rec fundamentals.Record) (float64, bool) {
	if gp, ok := rec.Value(fundamentals.GrossProfit); ok {
		return gp, true
	}
	revenue, hasRevenue := rec.Value(fundamentals.Revenue)
	cost, hasCost := rec.Value(fundamentals.CostOfRevenue)
	if hasRevenue && hasCost {
		return revenue - cost, true
	}
	return 0, false
}

// quickRatio subtracts inventory from current assets when inventory is
// known; otherwise it degrades to the current ratio.
func quickRatio(rec fundamentals.Record, currentAssets float64, hasCurrentAssets bool, currentLiabilities float64, hasCurrentLiabilities bool) Metric {
	numerator := currentAssets
	if inventory, ok := rec.Value(fundamentals.Inventory); ok && hasCurrentAssets {
		numerator = currentAssets - inventory
	}
	return divide(numerator, hasCurrentAssets, currentLiabilities, hasCurrentLiabilities)
}

// peRatio requires a market price and a positive diluted EPS; a negative
// P/E is meaningless and reported as not computable.
func peRatio(marketPrice *float64, eps Metric) Metric {
	if marketPrice == nil {
		return NotComputable(reasonNoMarketPrice)
	}
	epsValue, ok := eps.Value()
	if !ok || epsValue <= 0 {
		return NotComputable(reasonNonPositiveEPS)
	}
	return divide(*marketPrice, true, epsValue, true)
}

// pbRatio requires a market price and a positive book value per share.
func pbRatio(marketPrice *float64, bvps Metric) Metric {
	if marketPrice == nil {
		return NotComputable(reasonNoMarketPrice)
	}
	bvpsValue, ok := bvps.Value()
	if !ok || bvpsValue <= 0 {
		return NotComputable(reasonNonPositiveBVPS)
	}
	return divide(*marketPrice, true, bvpsValue, true)
}

// bookValuePerShare is equity over the preferred share count.
func bookValuePerShare(rec fundamentals.Record) Metric {
	shares, hasShares := shareCount(rec)
	return divideConcept(rec, fundamentals.ShareholdersEquity, shares, hasShares)
}

// shareCount prefers the diluted share count and falls back to basic.
func shareCount(rec fundamentals.Record) (float64, bool) {
	if shares, ok := rec.Value(fundamentals.SharesDiluted); ok {
		return shares, true
	}
	if shares, ok := rec.Value(fundamentals.SharesBasic); ok {
		return shares, true
	}
	return 0, false
}

func growthRate(current, previous fundamentals.Record, concept fundamentals.Concept) Metric {
	currentValue, hasCurrent := current.Value(concept)
	previousValue, hasPrevious := previous.Value(concept)
	if !hasCurrent || !hasPrevious {
		return NotComputable(reasonMissingOperand)
	}
	if previousValue == 0 {
		return NotComputable(reasonZeroDenominator)
	}
	return Computed(round4((currentValue - previousValue) / math.Abs(previousValue)))
}

// round4 rounds to four decimal places, matching the documented response
// precision.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
