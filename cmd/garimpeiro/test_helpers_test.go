package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"garimpeiro/internal/config"
	"garimpeiro/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	inputDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("GARIMPEIRO_CNPJ", "")

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(base, "garimpeiro.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		inputDir:   filepath.Join(base, "inputs"),
	}
}

// writeInvoices stores fixtures as bare documents under the input directory.
func (e *cliTestEnv) writeInvoices(t *testing.T, invoices ...testsupport.Invoice) {
	t.Helper()
	for _, inv := range invoices {
		testsupport.WriteBytes(t, filepath.Join(e.inputDir, inv.FileName()), inv.XML())
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[taxpayer]\ncnpj = %q\n\n[paths]\ndata_dir = %q\nlog_dir = %q\nexport_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Taxpayer.CNPJ,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.ExportDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
