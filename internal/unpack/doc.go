// Package unpack flattens uploaded inputs into the fiscal XML files they
// contain.
//
// Inputs are either bare XML documents or zip containers that may nest other
// containers to any depth. Expansion is lazy: Expand returns an iterator that
// re-walks the input on every range, so callers can stop early and restart
// without leftover state. Corrupt or oversized members are skipped and
// reported through the optional OnSkip callback; they never abort the batch.
package unpack
