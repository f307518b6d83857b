package reconcile

import (
	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/ledger"
)

// Reconcile computes the audit tables for records. lookup may be nil.
func Reconcile(records []fiscal.Document, lookup ledger.Lookup) Result {
	survivors := Deduplicate(records)

	var res Result
	buckets := newBucketSet()
	for _, doc := range survivors {
		final, observation := finalStatus(doc, lookup)
		if doc.Status == fiscal.StatusNormal && final == fiscal.StatusCancelled {
			res.Divergences = append(res.Divergences, Divergence{
				Key:    doc.IdentityKey,
				Number: doc.Number,
				Prior:  doc.Status,
				Final:  final,
			})
		}

		value := doc.Value
		if final != fiscal.StatusNormal {
			value = 0
		}

		for _, n := range doc.Numbers() {
			res.Ledger = append(res.Ledger, LedgerRow{
				OwnEmission: doc.OwnEmission,
				Family:      doc.Family,
				Series:      doc.Series,
				Number:      n,
				Key:         doc.IdentityKey,
				Status:      final,
				Value:       value,
				Observation: observation,
			})
		}

		if doc.OwnEmission {
			buckets.add(doc, final, value)
			res.appendStatusRows(doc, final, value, observation)
		}

		resolved := doc
		resolved.Status = final
		resolved.Value = value
		res.Documents = append(res.Documents, resolved)
	}

	res.Summary, res.Gaps, res.GapsOmitted = buckets.tables()
	return res
}

// Deduplicate keeps one record per identity key. The first record seen
// wins unless a later record is Cancelled or Voided, which replaces it.
// Survivors are returned in order of first appearance of their key.
func Deduplicate(records []fiscal.Document) []fiscal.Document {
	index := make(map[string]int, len(records))
	out := make([]fiscal.Document, 0, len(records))
	for _, doc := range records {
		if doc.IdentityKey == "" {
			continue
		}
		idx, seen := index[doc.IdentityKey]
		if !seen {
			index[doc.IdentityKey] = len(out)
			out = append(out, doc)
			continue
		}
		if doc.Status.Terminal() {
			out[idx] = doc
		}
	}
	return out
}

func finalStatus(doc fiscal.Document, lookup ledger.Lookup) (fiscal.Status, string) {
	if lookup != nil && lookup.IsCancelled(doc.IdentityKey) && doc.Status != fiscal.StatusCancelled {
		return fiscal.StatusCancelled, ObservedInLedger
	}
	return doc.Status, ObservedInXML
}

func (r *Result) appendStatusRows(doc fiscal.Document, final fiscal.Status, value fiscal.Amount, observation string) {
	row := DocumentRow{
		Family:      doc.Family,
		Series:      doc.Series,
		Number:      doc.Number,
		Key:         doc.IdentityKey,
		Value:       value,
		Observation: observation,
	}
	switch final {
	case fiscal.StatusNormal:
		r.Authorized = append(r.Authorized, row)
	case fiscal.StatusCancelled:
		r.Cancelled = append(r.Cancelled, row)
	case fiscal.StatusVoided:
		for _, n := range doc.Numbers() {
			row.Number = n
			r.Voided = append(r.Voided, row)
		}
	}
}
