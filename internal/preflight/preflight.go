package preflight

import (
	"fmt"
	"strings"

	"garimpeiro/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Optional bool
}

// RunAll executes the preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckTaxpayer(cfg),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckWritableTarget("Export directory", cfg.Paths.ExportDir),
	}
}

// FirstFailure returns the first required check that did not pass.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return r, true
		}
	}
	return Result{}, false
}

// Error converts a failed result into an error suitable for command output.
func (r Result) Error() error {
	if r.Passed {
		return nil
	}
	return fmt.Errorf("preflight %s: %s", strings.ToLower(r.Name), r.Detail)
}
