package corpus

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another process is writing to the corpus.
var ErrLocked = errors.New("corpus is locked by another process")

// Lock takes the exclusive write lock without blocking. The returned
// function releases it.
func (s *Store) Lock() (func() error, error) {
	lock := flock.New(s.lock)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire corpus lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, s.lock)
	}
	return lock.Unlock, nil
}
