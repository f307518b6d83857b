package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"garimpeiro/internal/fiscal"
)

const documentColumns = "identity_key, file_name, family, series, number, range_first, range_last, status, value_cents, direction, year, month, issue_date, issuer_id, issuer_name, counterparty_id, counterparty_name, own_emission, storage_path, content"

// Append stores an accepted document under batchID.
func (s *Store) Append(ctx context.Context, batchID string, doc fiscal.Document) error {
	if batchID == "" {
		return errNoBatch
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("append document: %w", err)
	}

	var first, last any
	if doc.VoidRange != nil {
		first, last = doc.VoidRange.First, doc.VoidRange.Last
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO documents (batch_id, `+documentColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID,
		doc.IdentityKey,
		doc.FileName,
		doc.Family,
		doc.Series,
		doc.Number,
		first,
		last,
		doc.Status,
		int64(doc.Value),
		doc.Direction,
		nullableString(doc.Year),
		nullableString(doc.Month),
		nullableString(doc.IssueDate),
		nullableString(doc.IssuerID),
		nullableString(doc.IssuerName),
		nullableString(doc.CounterpartyID),
		nullableString(doc.CounterpartyName),
		boolToInt(doc.OwnEmission),
		doc.StoragePath,
		doc.Content,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Documents returns the whole corpus in insertion order. Raw content is only
// loaded when withContent is set.
func (s *Store) Documents(ctx context.Context, withContent bool) ([]fiscal.Document, error) {
	columns := documentColumns
	if !withContent {
		columns = documentColumns[:len(documentColumns)-len(", content")] + ", NULL"
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+columns+` FROM documents ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []fiscal.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Taxpayers returns the distinct taxpayers of the batches that hold
// documents, in first-seen order.
func (s *Store) Taxpayers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT COALESCE(b.taxpayer, '') AS taxpayer, MIN(d.seq) AS first_seq
         FROM documents d JOIN batches b ON b.id = d.batch_id
         GROUP BY COALESCE(b.taxpayer, '')
         ORDER BY first_seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list corpus taxpayers: %w", err)
	}
	defer rows.Close()

	var taxpayers []string
	for rows.Next() {
		var (
			taxpayer string
			firstSeq int64
		)
		if err := rows.Scan(&taxpayer, &firstSeq); err != nil {
			return nil, err
		}
		taxpayers = append(taxpayers, taxpayer)
	}
	return taxpayers, rows.Err()
}

// Reset removes every document and batch.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM documents`)
	if err != nil {
		return 0, fmt.Errorf("clear documents: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if _, err := s.execWithRetry(ctx, `DELETE FROM batches`); err != nil {
		return 0, fmt.Errorf("clear batches: %w", err)
	}
	return removed, nil
}

func scanDocument(scanner interface{ Scan(dest ...any) error }) (fiscal.Document, error) {
	var (
		doc              fiscal.Document
		family           string
		status           string
		direction        string
		first            sql.NullInt64
		last             sql.NullInt64
		cents            int64
		year             sql.NullString
		month            sql.NullString
		issueDate        sql.NullString
		issuerID         sql.NullString
		issuerName       sql.NullString
		counterpartyID   sql.NullString
		counterpartyName sql.NullString
		own              int
		content          []byte
	)
	if err := scanner.Scan(
		&doc.IdentityKey,
		&doc.FileName,
		&family,
		&doc.Series,
		&doc.Number,
		&first,
		&last,
		&status,
		&cents,
		&direction,
		&year,
		&month,
		&issueDate,
		&issuerID,
		&issuerName,
		&counterpartyID,
		&counterpartyName,
		&own,
		&doc.StoragePath,
		&content,
	); err != nil {
		return fiscal.Document{}, err
	}

	parsedStatus, err := fiscal.ParseStatus(status)
	if err != nil {
		return fiscal.Document{}, fmt.Errorf("document %s: %w", doc.IdentityKey, err)
	}
	doc.Family = fiscal.ParseFamily(family)
	doc.Status = parsedStatus
	doc.Direction = fiscal.ParseDirection(direction)
	doc.Value = fiscal.Amount(cents)
	if first.Valid && last.Valid {
		doc.VoidRange = &fiscal.Range{First: int(first.Int64), Last: int(last.Int64)}
	}
	doc.Year = year.String
	doc.Month = month.String
	doc.IssueDate = issueDate.String
	doc.IssuerID = issuerID.String
	doc.IssuerName = issuerName.String
	doc.CounterpartyID = counterpartyID.String
	doc.CounterpartyName = counterpartyName.String
	doc.OwnEmission = own != 0
	doc.Content = content
	return doc, nil
}
