// Package ingest runs one batch: it walks the operator's inputs, expands
// archives, classifies every leaf document against the reference taxpayer,
// and appends the accepted records to the corpus.
//
// A batch is sequential and holds the corpus write lock for its whole
// duration. Rejected files are counted and logged at debug level only.
package ingest
