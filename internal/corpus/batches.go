package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind separates the initial run from incremental additions.
type Kind string

const (
	KindScan Kind = "garimpo"
	KindAdd  Kind = "add"
)

// Stats are the counters recorded when a batch finishes.
type Stats struct {
	Inputs   int `json:"inputs"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Skipped  int `json:"skipped"`
}

// Batch describes one ingest run.
type Batch struct {
	ID           string     `json:"id"`
	Kind         Kind       `json:"kind"`
	Taxpayer     string     `json:"taxpayer,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Stats        Stats      `json:"stats"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Finished reports whether the batch recorded a completion time.
func (b Batch) Finished() bool {
	return b.FinishedAt != nil
}

// BeginBatch records the start of a run and returns its identifier.
func (s *Store) BeginBatch(ctx context.Context, kind Kind, taxpayer string) (string, error) {
	id := uuid.NewString()
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO batches (id, kind, taxpayer, started_at) VALUES (?, ?, ?, ?)`,
		id,
		kind,
		nullableString(taxpayer),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}
	return id, nil
}

// FinishBatch stores the counters of a run. runErr, when set, is kept as
// the batch error message.
func (s *Store) FinishBatch(ctx context.Context, id string, stats Stats, runErr error) error {
	var message string
	if runErr != nil {
		message = runErr.Error()
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE batches
         SET finished_at = ?, inputs = ?, accepted = ?, rejected = ?, skipped = ?, error_message = ?
         WHERE id = ?`,
		nullableTime(&now),
		stats.Inputs,
		stats.Accepted,
		stats.Rejected,
		stats.Skipped,
		nullableString(message),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish batch: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("finish batch %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Batches returns every batch ordered by start time.
func (s *Store) Batches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT id, kind, taxpayer, started_at, finished_at, inputs, accepted, rejected, skipped, error_message
         FROM batches ORDER BY started_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			b           Batch
			kind        string
			taxpayer    sql.NullString
			startedRaw  string
			finishedRaw sql.NullString
			message     sql.NullString
		)
		if err := rows.Scan(&b.ID, &kind, &taxpayer, &startedRaw, &finishedRaw,
			&b.Stats.Inputs, &b.Stats.Accepted, &b.Stats.Rejected, &b.Stats.Skipped, &message); err != nil {
			return nil, err
		}
		b.Kind = Kind(kind)
		b.Taxpayer = taxpayer.String
		b.ErrorMessage = message.String
		if started, err := parseTimeString(startedRaw); err == nil {
			b.StartedAt = started
		}
		if finishedRaw.Valid {
			if finished, err := parseTimeString(finishedRaw.String); err == nil {
				b.FinishedAt = &finished
			}
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// LastBatch returns the most recent batch, or nil when there is none.
func (s *Store) LastBatch(ctx context.Context) (*Batch, error) {
	batches, err := s.Batches(ctx)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}
	last := batches[len(batches)-1]
	return &last, nil
}

var errNoBatch = errors.New("batch id is required")
