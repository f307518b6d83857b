package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Written describes a file produced by WriteAtomic.
type Written struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// WriteAtomic streams write's output into a temporary file next to dst and
// renames it into place once write succeeds, so readers never observe a
// partial file. The digest is computed while writing.
func WriteAtomic(dst string, mode os.FileMode, write func(io.Writer) error) (Written, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return Written{}, err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	hasher := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(tmp, hasher)}
	if err := write(counter); err != nil {
		return Written{}, err
	}
	if err := tmp.Sync(); err != nil {
		return Written{}, err
	}
	if err := tmp.Close(); err != nil {
		return Written{}, err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return Written{}, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return Written{}, err
	}
	committed = true

	return Written{
		Path:   dst,
		Size:   counter.n,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
