// Package reconcile derives the audit tables from the accumulated document
// corpus and an optional authenticity ledger.
//
// Reconcile is a pure function: it holds no state between calls and never
// mutates its inputs, so running it twice over the same corpus and ledger
// produces identical results. Every call recomputes every table from
// scratch:
//
//   - Deduplicate by identity key. The first record seen wins unless a later
//     one is Cancelled or Voided.
//   - Apply the ledger: a key the authority reports as cancelled ends up
//     Cancelled, and a divergence is recorded when the document said Normal.
//   - Expand void ranges to one row per number.
//   - Accumulate own-emission numbers and Normal values per family and series,
//     then derive summary rows and numbering gaps.
package reconcile
