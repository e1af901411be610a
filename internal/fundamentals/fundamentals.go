// Package fundamentals defines the closed vocabulary of financial statement
// concepts and the immutable record type that data source adapters normalize
// into. A concept absent from a record means "unknown", never zero.
package fundamentals

// Concept identifies a single financial statement line item.
type Concept string

const (
	Revenue            Concept = "revenue"
	NetIncome          Concept = "netIncome"
	TotalAssets        Concept = "totalAssets"
	CurrentAssets      Concept = "currentAssets"
	CurrentLiabilities Concept = "currentLiabilities"
	ShareholdersEquity Concept = "shareholdersEquity"
	TotalDebt          Concept = "totalDebt"
	CashAndEquivalents Concept = "cashAndEquivalents"
	CostOfRevenue      Concept = "costOfRevenue"
	GrossProfit        Concept = "grossProfit"
	OperatingIncome    Concept = "operatingIncome"
	Inventory          Concept = "inventory"
	SharesDiluted      Concept = "sharesDiluted"
	SharesBasic        Concept = "sharesBasic"
)

// Concepts lists every recognized concept, in statement order.
var Concepts = []Concept{
	Revenue,
	NetIncome,
	TotalAssets,
	CurrentAssets,
	CurrentLiabilities,
	ShareholdersEquity,
	TotalDebt,
	CashAndEquivalents,
	CostOfRevenue,
	GrossProfit,
	OperatingIncome,
	Inventory,
	SharesDiluted,
	SharesBasic,
}

var conceptSet = func() map[Concept]struct{} {
	m := make(map[Concept]struct{}, len(Concepts))
	for _, c := range Concepts {
		m[c] = struct{}{}
	}
	return m
}()

// ParseConcept converts a raw concept name to a Concept. Unrecognized names
// are rejected so that adapter typos surface at the boundary instead of
// silently producing unusable records.
func ParseConcept(name string) (Concept, bool) {
	c := Concept(name)
	_, ok := conceptSet[c]
	return c, ok
}

// Citation records where a value came from.
type Citation struct {
	Source    string `json:"source"`
	FilingRef string `json:"filing_ref,omitempty"`
	AsOfDate  string `json:"as_of_date,omitempty"`
}

// Datum is a single reported value with its citation.
type Datum struct {
	Value    float64  `json:"value"`
	Citation Citation `json:"citation"`
}

// Record maps concepts to reported values. Records are constructed fresh per
// fetch and treated as immutable once returned.
type Record map[Concept]Datum

// Value returns the numeric value for a concept and whether it is present.
func (r Record) Value(c Concept) (float64, bool) {
	d, ok := r[c]
	return d.Value, ok
}

// Has reports whether a concept is present in the record.
func (r Record) Has(c Concept) bool {
	_, ok := r[c]
	return ok
}

// Len returns the number of populated concepts.
func (r Record) Len() int { return len(r) }
