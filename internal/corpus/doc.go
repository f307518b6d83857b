// Package corpus persists the operator session: every accepted document from
// every batch, in arrival order, backed by SQLite.
//
// The corpus is append-only. Deduplication and status resolution belong to
// the reconciliation engine, which always receives the full list from
// Documents. Batches record each scan or add run with its counters so the
// status command can show how the corpus grew.
//
// Writers take the file lock returned by Lock so two CLI invocations never
// append concurrently; readers rely on SQLite WAL isolation.
package corpus
