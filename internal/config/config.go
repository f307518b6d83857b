package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Taxpayer identifies the reference taxpayer whose own emissions are audited.
type Taxpayer struct {
	CNPJ string `toml:"cnpj"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ExportDir string `toml:"export_dir"`
}

// Classifier contains document classification settings.
type Classifier struct {
	HeadBytes int `toml:"head_bytes"`
}

// Unpacker contains archive expansion limits.
type Unpacker struct {
	MaxDepth      int      `toml:"max_depth"`
	MaxEntryBytes int64    `toml:"max_entry_bytes"`
	SkipFolders   []string `toml:"skip_folders"`
}

// Ledger describes the layout of authenticity ledger spreadsheets.
type Ledger struct {
	KeyHeader    string `toml:"key_header"`
	StatusHeader string `toml:"status_header"`
	KeyIndex     int    `toml:"key_index"`
	StatusIndex  int    `toml:"status_index"`
	Sheet        string `toml:"sheet"`
	CancelMarker string `toml:"cancel_marker"`
}

// Ingest contains batch processing settings.
type Ingest struct {
	// ReleaseEvery returns freed memory to the OS after this many accepted
	// documents. Zero disables the release.
	ReleaseEvery int `toml:"release_every"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Garimpeiro.
//
// Configuration sections by subsystem:
//   - Taxpayer: reference CNPJ used to separate own emissions
//   - Paths: corpus database, logs, and export destinations
//   - Classifier: head window decoded per document
//   - Unpacker: nesting and size limits for archives
//   - Ledger: column layout of authenticity spreadsheets
//   - Ingest: memory release cadence during large batches
//   - Logging: log format, level, and retention
type Config struct {
	Taxpayer   Taxpayer   `toml:"taxpayer"`
	Paths      Paths      `toml:"paths"`
	Classifier Classifier `toml:"classifier"`
	Unpacker   Unpacker   `toml:"unpacker"`
	Ledger     Ledger     `toml:"ledger"`
	Ingest     Ingest     `toml:"ingest"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("garimpeiro.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The export
// directory is created on demand by the export command.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the corpus database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "corpus.db")
}

// LockPath returns the file lock guarding corpus writes.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "corpus.lock")
}

// LogFilePath returns the CLI log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "garimpeiro.log")
}

// RequireTaxpayer reports ErrTaxpayerRequired when no reference CNPJ is set.
func (c *Config) RequireTaxpayer() error {
	if strings.TrimSpace(c.Taxpayer.CNPJ) == "" {
		return ErrTaxpayerRequired
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
