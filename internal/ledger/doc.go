// Package ledger loads the authenticity ledger: an external spreadsheet that
// maps access keys to the status reported by the tax authority.
//
// Only two columns matter. They are located by header name when configured
// headers are present in the first row, falling back to the positional
// layout of the authority's export (key in column A, status in column F).
// Rows whose key does not normalize to exactly 44 characters are dropped
// silently; a ledger where nothing validates yields ErrNoValidKeys.
package ledger
