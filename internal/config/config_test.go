package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"garimpeiro/internal/config"
)

func TestLoadDefaultConfigUsesEnvCNPJAndExpandsPaths(t *testing.T) {
	t.Setenv("GARIMPEIRO_CNPJ", "12.345.678/0001-90")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Taxpayer.CNPJ != "12345678000190" {
		t.Fatalf("expected digits-only CNPJ from env, got %q", cfg.Taxpayer.CNPJ)
	}

	wantData := filepath.Join(tempHome, ".local", "share", "garimpeiro")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "corpus.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Classifier.HeadBytes != 45000 || cfg.Unpacker.MaxDepth != 25 {
		t.Fatalf("unexpected limits: head=%d depth=%d", cfg.Classifier.HeadBytes, cfg.Unpacker.MaxDepth)
	}
	if cfg.Ledger.KeyIndex != 0 || cfg.Ledger.StatusIndex != 5 || cfg.Ledger.CancelMarker != "CANCEL" {
		t.Fatalf("unexpected ledger defaults: %+v", cfg.Ledger)
	}
	if len(cfg.Unpacker.SkipFolders) != 1 || cfg.Unpacker.SkipFolders[0] != "__MACOSX" {
		t.Fatalf("unexpected skip folders: %v", cfg.Unpacker.SkipFolders)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("GARIMPEIRO_CNPJ", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "garimpeiro.toml")

	type payload struct {
		Taxpayer struct {
			CNPJ string `toml:"cnpj"`
		} `toml:"taxpayer"`
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Unpacker struct {
			MaxDepth    int      `toml:"max_depth"`
			SkipFolders []string `toml:"skip_folders"`
		} `toml:"unpacker"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Taxpayer.CNPJ = "98765432000110"
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Unpacker.MaxDepth = 3
	custom.Unpacker.SkipFolders = []string{" __MACOSX/ ", "__MACOSX", "", "thumbs"}
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Taxpayer.CNPJ != "98765432000110" {
		t.Fatalf("unexpected CNPJ: %q", cfg.Taxpayer.CNPJ)
	}
	if cfg.Paths.DataDir != custom.Paths.DataDir {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Unpacker.MaxDepth != 3 {
		t.Fatalf("unexpected max depth: %d", cfg.Unpacker.MaxDepth)
	}
	if strings.Join(cfg.Unpacker.SkipFolders, ",") != "__MACOSX,thumbs" {
		t.Fatalf("unexpected skip folders: %v", cfg.Unpacker.SkipFolders)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.Classifier.HeadBytes != 45000 {
		t.Fatalf("expected untouched sections to keep defaults, got %d", cfg.Classifier.HeadBytes)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("GARIMPEIRO_CNPJ", "")
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short cnpj", "[taxpayer]\ncnpj = \"1234\"\n", "taxpayer.cnpj"},
		{"zero depth", "[unpacker]\nmax_depth = 0\n", "unpacker.max_depth"},
		{"negative head", "[classifier]\nhead_bytes = -1\n", "classifier.head_bytes"},
		{"same columns", "[ledger]\nkey_index = 2\nstatus_index = 2\n", "must differ"},
		{"negative release", "[ingest]\nrelease_every = -5\n", "ingest.release_every"},
		{"bad toml", "[taxpayer\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "garimpeiro.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireTaxpayer(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireTaxpayer(); !errors.Is(err, config.ErrTaxpayerRequired) {
		t.Fatalf("expected ErrTaxpayerRequired, got %v", err)
	}
	cfg.Taxpayer.CNPJ = "12345678000190"
	if err := cfg.RequireTaxpayer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleLoadsCleanly(t *testing.T) {
	t.Setenv("GARIMPEIRO_CNPJ", "")
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	defaults := config.Default()
	if cfg.Ledger.StatusHeader != defaults.Ledger.StatusHeader || cfg.Ingest.ReleaseEvery != defaults.Ingest.ReleaseEvery {
		t.Fatalf("sample drifted from defaults: %+v %+v", cfg.Ledger, cfg.Ingest)
	}
	if cfg.Unpacker.MaxEntryBytes != defaults.Unpacker.MaxEntryBytes {
		t.Fatalf("sample max_entry_bytes = %d, want %d", cfg.Unpacker.MaxEntryBytes, defaults.Unpacker.MaxEntryBytes)
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/dados")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "dados") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestOverrideTaxpayer(t *testing.T) {
	cfg := config.Default()
	if err := cfg.OverrideTaxpayer("12.345.678/0001-90"); err != nil {
		t.Fatalf("OverrideTaxpayer: %v", err)
	}
	if cfg.Taxpayer.CNPJ != "12345678000190" {
		t.Fatalf("cnpj = %q", cfg.Taxpayer.CNPJ)
	}
	if err := cfg.OverrideTaxpayer("123"); err == nil {
		t.Fatal("expected error for short cnpj")
	}
}
