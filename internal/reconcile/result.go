package reconcile

import "garimpeiro/internal/fiscal"

// Observation values explain where a row's final status came from.
const (
	ObservedInXML    = "xml"
	ObservedInLedger = "ledger"
)

// SummaryRow describes one audit bucket.
type SummaryRow struct {
	Family fiscal.Family `json:"family"`
	Series string        `json:"series"`
	First  int           `json:"first"`
	Last   int           `json:"last"`
	Count  int           `json:"count"`
	Value  fiscal.Amount `json:"value"`
}

// GapRow is one number missing from a bucket's sequence.
type GapRow struct {
	Family  fiscal.Family `json:"family"`
	Series  string        `json:"series"`
	Missing int           `json:"missing"`
}

// LedgerRow is one numbered unit of the full ledger. Void declarations
// contribute one row per number in their range.
type LedgerRow struct {
	OwnEmission bool          `json:"own_emission"`
	Family      fiscal.Family `json:"family"`
	Series      string        `json:"series"`
	Number      int           `json:"number"`
	Key         string        `json:"key"`
	Status      fiscal.Status `json:"status"`
	Value       fiscal.Amount `json:"value"`
	Observation string        `json:"observation"`
}

// DocumentRow lists one own-emission document in the status tables.
type DocumentRow struct {
	Family      fiscal.Family `json:"family"`
	Series      string        `json:"series"`
	Number      int           `json:"number"`
	Key         string        `json:"key"`
	Value       fiscal.Amount `json:"value"`
	Observation string        `json:"observation"`
}

// Divergence records a Normal document that the ledger reports as cancelled.
type Divergence struct {
	Key    string        `json:"key"`
	Number int           `json:"number"`
	Prior  fiscal.Status `json:"prior"`
	Final  fiscal.Status `json:"final"`
}

// Result holds every derived table.
type Result struct {
	Summary     []SummaryRow  `json:"summary"`
	Gaps        []GapRow      `json:"gaps"`
	GapsOmitted int           `json:"gaps_omitted,omitempty"`
	Cancelled   []DocumentRow `json:"cancelled"`
	Voided      []DocumentRow `json:"voided"`
	Authorized  []DocumentRow `json:"authorized"`
	Ledger      []LedgerRow   `json:"ledger"`
	Divergences []Divergence  `json:"divergences"`

	// Documents holds the surviving record per identity key, in first-seen
	// order, with Status already reflecting the ledger.
	Documents []fiscal.Document `json:"-"`
}

// Counts summarizes the status tables.
type Counts struct {
	Authorized  int `json:"authorized"`
	Cancelled   int `json:"cancelled"`
	Voided      int `json:"voided"`
	Gaps        int `json:"gaps"`
	GapsOmitted int `json:"gaps_omitted,omitempty"`
	Divergences int `json:"divergences"`
}

// Counts returns the size of each status table.
func (r Result) Counts() Counts {
	return Counts{
		Authorized:  len(r.Authorized),
		Cancelled:   len(r.Cancelled),
		Voided:      len(r.Voided),
		Gaps:        len(r.Gaps),
		GapsOmitted: r.GapsOmitted,
		Divergences: len(r.Divergences),
	}
}

// Total returns the value of all authorized own-emission documents.
func (r Result) Total() fiscal.Amount {
	var total fiscal.Amount
	for _, row := range r.Summary {
		total += row.Value
	}
	return total
}
