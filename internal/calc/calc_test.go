package calc

import (
	"encoding/json"
	"testing"

	"finsight/internal/fundamentals"
)

// record builds a fundamentals record from plain values, with a shared test
// citation.
func record(values map[fundamentals.Concept]float64) fundamentals.Record {
	rec := make(fundamentals.Record, len(values))
	for concept, value := range values {
		rec[concept] = fundamentals.Datum{
			Value:    value,
			Citation: fundamentals.Citation{Source: "test"},
		}
	}
	return rec
}

func assertComputed(t *testing.T, name string, m Metric, want float64) {
	t.Helper()
	got, ok := m.Value()
	if !ok {
		t.Fatalf("%s: expected computed value %v, got not computable (%s)", name, want, m.Reason())
	}
	if got != want {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func assertNotComputable(t *testing.T, name string, m Metric) {
	t.Helper()
	if m.Valid() {
		value, _ := m.Value()
		t.Errorf("%s: expected not computable, got %v", name, value)
	}
}

func ratioMetrics(rs RatioSet) map[string]Metric {
	return map[string]Metric{
		"profit_margin":    rs.ProfitMargin,
		"gross_margin":     rs.GrossMargin,
		"operating_margin": rs.OperatingMargin,
		"roa":              rs.ROA,
		"roe":              rs.ROE,
		"pe_ratio":         rs.PERatio,
		"pb_ratio":         rs.PBRatio,
		"eps_diluted":      rs.EPSDiluted,
		"current_ratio":    rs.CurrentRatio,
		"quick_ratio":      rs.QuickRatio,
		"debt_to_equity":   rs.DebtToEquity,
		"debt_to_assets":   rs.DebtToAssets,
		"asset_turnover":   rs.AssetTurnover,
	}
}

func TestRatios_Totality(t *testing.T) {
	t.Run("empty_record_every_key_present", func(t *testing.T) {
		rs := Ratios(fundamentals.Record{}, nil)

		for name, m := range ratioMetrics(rs) {
			assertNotComputable(t, name, m)
		}

		// Every vocabulary key must appear in the serialized form, as null.
		data, err := json.Marshal(rs)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out map[string]*float64
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		for _, key := range []string{
			"profit_margin", "gross_margin", "operating_margin", "roa", "roe",
			"pe_ratio", "pb_ratio", "eps_diluted", "current_ratio", "quick_ratio",
			"debt_to_equity", "debt_to_assets", "asset_turnover",
		} {
			value, present := out[key]
			if !present {
				t.Errorf("expected key %q in serialized ratio set", key)
			}
			if value != nil {
				t.Errorf("expected %q to be null for empty record, got %v", key, *value)
			}
		}
	})
}

func TestRatios_ZeroDenominator(t *testing.T) {
	rs := Ratios(record(map[fundamentals.Concept]float64{
		fundamentals.Revenue:   0,
		fundamentals.NetIncome: 100,
	}), nil)

	assertNotComputable(t, "profit_margin", rs.ProfitMargin)
	if rs.ProfitMargin.Reason() != "zero denominator" {
		t.Errorf("expected zero denominator reason, got %q", rs.ProfitMargin.Reason())
	}
}

func TestRatios_MissingFieldDegradesPartially(t *testing.T) {
	rs := Ratios(record(map[fundamentals.Concept]float64{
		fundamentals.Revenue:     100,
		fundamentals.TotalAssets: 400,
	}), nil)

	// netIncome absent: profit margin is out, but asset turnover still works.
	assertNotComputable(t, "profit_margin", rs.ProfitMargin)
	assertComputed(t, "asset_turnover", rs.AssetTurnover, 0.25)
}

func TestRatios_KnownValues(t *testing.T) {
	rs := Ratios(record(map[fundamentals.Concept]float64{
		fundamentals.Revenue:            100,
		fundamentals.NetIncome:          20,
		fundamentals.TotalAssets:        200,
		fundamentals.ShareholdersEquity: 50,
	}), nil)

	assertComputed(t, "profit_margin", rs.ProfitMargin, 0.20)
	assertComputed(t, "roa", rs.ROA, 0.10)
	assertComputed(t, "roe", rs.ROE, 0.40)
}

func TestRatios_GrossMarginDerivedFromCostOfRevenue(t *testing.T) {
	t.Run("direct_gross_profit_preferred", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.Revenue:     200,
			fundamentals.GrossProfit: 80,
			// A conflicting costOfRevenue must not override the reported figure.
			fundamentals.CostOfRevenue: 150,
		}), nil)
		assertComputed(t, "gross_margin", rs.GrossMargin, 0.40)
	})

	t.Run("derived_when_absent", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.Revenue:       200,
			fundamentals.CostOfRevenue: 150,
		}), nil)
		assertComputed(t, "gross_margin", rs.GrossMargin, 0.25)
	})

	t.Run("not_computable_without_either", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.Revenue: 200,
		}), nil)
		assertNotComputable(t, "gross_margin", rs.GrossMargin)
	})
}

func TestRatios_QuickRatio(t *testing.T) {
	t.Run("subtracts_inventory_when_known", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.CurrentAssets:      300,
			fundamentals.Inventory:          100,
			fundamentals.CurrentLiabilities: 200,
		}), nil)
		assertComputed(t, "quick_ratio", rs.QuickRatio, 1.0)
		assertComputed(t, "current_ratio", rs.CurrentRatio, 1.5)
	})

	t.Run("equals_current_ratio_without_inventory", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.CurrentAssets:      300,
			fundamentals.CurrentLiabilities: 200,
		}), nil)
		assertComputed(t, "quick_ratio", rs.QuickRatio, 1.5)
		assertComputed(t, "current_ratio", rs.CurrentRatio, 1.5)
	})
}

func TestRatios_ValuationGates(t *testing.T) {
	price := 150.0

	t.Run("pe_requires_market_price", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.NetIncome:     100,
			fundamentals.SharesDiluted: 50,
		}), nil)
		assertNotComputable(t, "pe_ratio", rs.PERatio)
	})

	t.Run("pe_computed_for_positive_eps", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.NetIncome:     100,
			fundamentals.SharesDiluted: 50,
		}), &price)
		// eps = 2, pe = 75.
		assertComputed(t, "eps_diluted", rs.EPSDiluted, 2.0)
		assertComputed(t, "pe_ratio", rs.PERatio, 75.0)
	})

	t.Run("pe_not_computable_for_negative_eps", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.NetIncome:     -100,
			fundamentals.SharesDiluted: 50,
		}), &price)
		assertComputed(t, "eps_diluted", rs.EPSDiluted, -2.0)
		assertNotComputable(t, "pe_ratio", rs.PERatio)
	})

	t.Run("pb_requires_positive_book_value", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.ShareholdersEquity: -500,
			fundamentals.SharesDiluted:      50,
		}), &price)
		assertNotComputable(t, "pb_ratio", rs.PBRatio)
	})

	t.Run("pb_computed", func(t *testing.T) {
		rs := Ratios(record(map[fundamentals.Concept]float64{
			fundamentals.ShareholdersEquity: 500,
			fundamentals.SharesDiluted:      50,
		}), &price)
		// bvps = 10, pb = 15.
		assertComputed(t, "pb_ratio", rs.PBRatio, 15.0)
	})
}

// Negative shareholders' equity is not specially suppressed: the literal
// formula runs and the ratio comes out negative. This pins the current
// behavior so any future policy change is deliberate.
func TestRatios_NegativeEquity(t *testing.T) {
	rs := Ratios(record(map[fundamentals.Concept]float64{
		fundamentals.NetIncome:          100,
		fundamentals.TotalDebt:          300,
		fundamentals.ShareholdersEquity: -50,
	}), nil)

	assertComputed(t, "roe", rs.ROE, -2.0)
	assertComputed(t, "debt_to_equity", rs.DebtToEquity, -6.0)
}

func TestRatios_Idempotence(t *testing.T) {
	rec := record(map[fundamentals.Concept]float64{
		fundamentals.Revenue:            394328000000,
		fundamentals.NetIncome:          99803000000,
		fundamentals.TotalAssets:        352755000000,
		fundamentals.ShareholdersEquity: 50672000000,
		fundamentals.TotalDebt:          123930000000,
		fundamentals.SharesDiluted:      15908118000,
	})

	first := Ratios(rec, nil)
	second := Ratios(rec, nil)
	if first != second {
		t.Errorf("expected identical ratio sets for identical input:\n%+v\n%+v", first, second)
	}
}

// Fiscal 2022 Apple fixture, end to end through the calculator.
func TestRatios_EndToEnd(t *testing.T) {
	rec := record(map[fundamentals.Concept]float64{
		fundamentals.Revenue:            394328000000,
		fundamentals.NetIncome:          99803000000,
		fundamentals.TotalAssets:        352755000000,
		fundamentals.ShareholdersEquity: 50672000000,
		fundamentals.TotalDebt:          123930000000,
		fundamentals.SharesDiluted:      15908118000,
	})

	rs := Ratios(rec, nil)

	assertComputed(t, "profit_margin", rs.ProfitMargin, 0.2531)
	assertComputed(t, "roa", rs.ROA, 0.2829)
	assertComputed(t, "roe", rs.ROE, 1.9696)
	assertComputed(t, "debt_to_equity", rs.DebtToEquity, 2.4457)
	assertComputed(t, "eps_diluted", rs.EPSDiluted, 6.2737)
	assertComputed(t, "asset_turnover", rs.AssetTurnover, 1.1179)
	assertComputed(t, "debt_to_assets", rs.DebtToAssets, 0.3513)
}

func TestPerShare(t *testing.T) {
	t.Run("diluted_preferred", func(t *testing.T) {
		ps := PerShare(record(map[fundamentals.Concept]float64{
			fundamentals.NetIncome:          100,
			fundamentals.ShareholdersEquity: 500,
			fundamentals.Revenue:            1000,
			fundamentals.CashAndEquivalents: 250,
			fundamentals.SharesDiluted:      50,
			fundamentals.SharesBasic:        40,
		}))
		assertComputed(t, "eps_diluted", ps.EPSDiluted, 2.0)
		assertComputed(t, "book_value_per_share", ps.BookValuePerShare, 10.0)
		assertComputed(t, "revenue_per_share", ps.RevenuePerShare, 20.0)
		assertComputed(t, "cash_per_share", ps.CashPerShare, 5.0)
	})

	t.Run("basic_fallback", func(t *testing.T) {
		ps := PerShare(record(map[fundamentals.Concept]float64{
			fundamentals.NetIncome:          100,
			fundamentals.ShareholdersEquity: 500,
			fundamentals.SharesBasic:        40,
		}))
		// Diluted EPS stays unavailable; other metrics use the basic count.
		assertNotComputable(t, "eps_diluted", ps.EPSDiluted)
		assertComputed(t, "book_value_per_share", ps.BookValuePerShare, 12.5)
	})

	t.Run("no_share_count", func(t *testing.T) {
		ps := PerShare(record(map[fundamentals.Concept]float64{
			fundamentals.NetIncome:          100,
			fundamentals.ShareholdersEquity: 500,
		}))
		assertNotComputable(t, "eps_diluted", ps.EPSDiluted)
		assertNotComputable(t, "book_value_per_share", ps.BookValuePerShare)
		assertNotComputable(t, "revenue_per_share", ps.RevenuePerShare)
		assertNotComputable(t, "cash_per_share", ps.CashPerShare)
	})
}

func TestGrowth(t *testing.T) {
	t.Run("year_over_year", func(t *testing.T) {
		current := record(map[fundamentals.Concept]float64{
			fundamentals.Revenue:   115,
			fundamentals.NetIncome: 30,
		})
		previous := record(map[fundamentals.Concept]float64{
			fundamentals.Revenue:   100,
			fundamentals.NetIncome: 20,
		})
		gs := Growth(current, previous)
		assertComputed(t, "revenue_growth", gs.RevenueGrowth, 0.15)
		assertComputed(t, "net_income_growth", gs.NetIncomeGrowth, 0.50)
		assertNotComputable(t, "total_assets_growth", gs.TotalAssetsGrowth)
	})

	t.Run("negative_prior_period_uses_magnitude", func(t *testing.T) {
		current := record(map[fundamentals.Concept]float64{fundamentals.NetIncome: 100})
		previous := record(map[fundamentals.Concept]float64{fundamentals.NetIncome: -100})
		gs := Growth(current, previous)
		assertComputed(t, "net_income_growth", gs.NetIncomeGrowth, 2.0)
	})

	t.Run("zero_prior_period", func(t *testing.T) {
		current := record(map[fundamentals.Concept]float64{fundamentals.Revenue: 100})
		previous := record(map[fundamentals.Concept]float64{fundamentals.Revenue: 0})
		gs := Growth(current, previous)
		assertNotComputable(t, "revenue_growth", gs.RevenueGrowth)
	})
}

func TestMetric_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{A: Computed(1.25), B: NotComputable("missing operand")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":1.25,"b":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}
