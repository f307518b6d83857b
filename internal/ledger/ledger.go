package ledger

import (
	"errors"
	"strings"

	"garimpeiro/internal/textutil"
)

// KeyLength is the length of a canonical access key.
const KeyLength = 44

// Positional defaults and the status marker that flags a cancellation.
const (
	DefaultKeyIndex     = 0
	DefaultStatusIndex  = 5
	DefaultCancelMarker = "CANCEL"
)

// ErrNoValidKeys indicates that no ledger row carried a usable access key.
var ErrNoValidKeys = errors.New("ledger has no valid access keys")

// Lookup answers whether the authority reports a key as cancelled.
type Lookup interface {
	IsCancelled(key string) bool
}

// Ledger maps access keys to folded status labels.
type Ledger struct {
	entries map[string]string
	order   []string
	marker  string

	// Dropped counts rows rejected during loading.
	Dropped int
}

// New returns an empty ledger that flags statuses containing marker.
func New(marker string) *Ledger {
	marker = textutil.FoldUpper(marker)
	if marker == "" {
		marker = DefaultCancelMarker
	}
	return &Ledger{entries: make(map[string]string), marker: marker}
}

// NormalizeKey trims raw, cuts a trailing decimal fragment left by numeric
// spreadsheet cells, and reports whether the result is a full access key.
func NormalizeKey(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	if idx := strings.IndexByte(key, '.'); idx >= 0 {
		key = key[:idx]
	}
	return key, len(key) == KeyLength
}

// NormalizeStatus folds a free-text status to accent-free upper case.
func NormalizeStatus(raw string) string {
	return textutil.FoldUpper(raw)
}

// Set records a row. It returns false and counts the row as dropped when the
// key is invalid. Later rows for the same key replace earlier ones.
func (l *Ledger) Set(rawKey, rawStatus string) bool {
	key, ok := NormalizeKey(rawKey)
	if !ok {
		l.Dropped++
		return false
	}
	if _, exists := l.entries[key]; !exists {
		l.order = append(l.order, key)
	}
	l.entries[key] = NormalizeStatus(rawStatus)
	return true
}

// Status returns the folded status recorded for key.
func (l *Ledger) Status(key string) (string, bool) {
	if l == nil {
		return "", false
	}
	status, ok := l.entries[key]
	return status, ok
}

// IsCancelled reports whether key is present with a cancellation status.
func (l *Ledger) IsCancelled(key string) bool {
	status, ok := l.Status(key)
	return ok && strings.Contains(status, l.marker)
}

// Len returns the number of distinct valid keys.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Keys returns the valid keys in first-seen order.
func (l *Ledger) Keys() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.order...)
}

// CancelledCount returns how many keys carry a cancellation status.
func (l *Ledger) CancelledCount() int {
	count := 0
	for _, key := range l.Keys() {
		if l.IsCancelled(key) {
			count++
		}
	}
	return count
}
