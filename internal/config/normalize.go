package config

import (
	"fmt"
	"os"
	"strings"

	"garimpeiro/internal/textutil"
)

func (c *Config) normalize() error {
	c.normalizeTaxpayer()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeUnpacker()
	c.normalizeLedger()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTaxpayer() {
	if strings.TrimSpace(c.Taxpayer.CNPJ) == "" {
		if value, ok := os.LookupEnv(taxpayerEnv); ok {
			c.Taxpayer.CNPJ = value
		}
	}
	c.Taxpayer.CNPJ = textutil.DigitsOnly(c.Taxpayer.CNPJ)
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeUnpacker() {
	folders := make([]string, 0, len(c.Unpacker.SkipFolders))
	seen := make(map[string]struct{}, len(c.Unpacker.SkipFolders))
	for _, folder := range c.Unpacker.SkipFolders {
		folder = strings.Trim(strings.TrimSpace(folder), "/")
		if folder == "" {
			continue
		}
		if _, exists := seen[folder]; exists {
			continue
		}
		seen[folder] = struct{}{}
		folders = append(folders, folder)
	}
	c.Unpacker.SkipFolders = folders
}

func (c *Config) normalizeLedger() {
	c.Ledger.KeyHeader = strings.TrimSpace(c.Ledger.KeyHeader)
	c.Ledger.StatusHeader = strings.TrimSpace(c.Ledger.StatusHeader)
	c.Ledger.Sheet = strings.TrimSpace(c.Ledger.Sheet)
	c.Ledger.CancelMarker = strings.TrimSpace(c.Ledger.CancelMarker)
	if c.Ledger.CancelMarker == "" {
		c.Ledger.CancelMarker = defaultCancelMarker
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// OverrideTaxpayer replaces the reference CNPJ, as the --cnpj flag does, and
// revalidates it.
func (c *Config) OverrideTaxpayer(cnpj string) error {
	c.Taxpayer.CNPJ = textutil.DigitsOnly(cnpj)
	return c.validateTaxpayer()
}
