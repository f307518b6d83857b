package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"garimpeiro/internal/report"
	"garimpeiro/internal/testsupport"
)

func standardInvoices() []testsupport.Invoice {
	return []testsupport.Invoice{
		{Number: 1, Value: "100.00"},
		{Number: 2, Value: "50.00"},
		{Number: 4, Value: "75.00"},
		{Number: 9, Value: "999.00", IssuerCNPJ: testsupport.ThirdPartyCNPJ, RecipientCNPJ: testsupport.TaxpayerCNPJ},
	}
}

func TestScanReportExport(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeInvoices(t, standardInvoices()...)

	out, _, err := runCLI(t, []string{"scan", env.inputDir}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Accepted: 4")
	requireContains(t, out, "Autorizadas: 3")
	requireContains(t, out, "225.00")

	out, _, err = runCLI(t, []string{"report", "--table", "buracos", "--format", "csv"}, env.configPath)
	if err != nil {
		t.Fatalf("report gaps: %v", err)
	}
	requireContains(t, out, "NF-e,1,3")

	out, _, err = runCLI(t, []string{"report", "--format", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("report json: %v", err)
	}
	var payload struct {
		Counts struct {
			Authorized int `json:"authorized"`
			Gaps       int `json:"gaps"`
		} `json:"counts"`
		Total  json.Number `json:"total"`
		Ledger []any       `json:"ledger"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode report json: %v\n%s", err, out)
	}
	if payload.Counts.Authorized != 3 || payload.Counts.Gaps != 1 || payload.Total.String() != "225.00" || len(payload.Ledger) != 4 {
		t.Fatalf("unexpected report payload: %+v", payload)
	}

	exportDir := filepath.Join(env.baseDir, "export")
	out, _, err = runCLI(t, []string{"export", "--dir", exportDir}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range []string{report.WorkbookName, report.OrganizedArchiveName, report.FlatArchiveName} {
		if _, err := os.Stat(filepath.Join(exportDir, name)); err != nil {
			t.Fatalf("missing export %s: %v", name, err)
		}
		requireContains(t, out, name)
	}
}

func TestScanRefusesNonEmptyCorpus(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeInvoices(t, standardInvoices()[:1]...)

	if _, _, err := runCLI(t, []string{"scan", env.inputDir}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}
	_, _, err := runCLI(t, []string{"scan", env.inputDir}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "use add or reset") {
		t.Fatalf("expected non-empty corpus error, got %v", err)
	}

	out, _, err := runCLI(t, []string{"add", "--json", env.inputDir}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var payload batchOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode add json: %v", err)
	}
	if payload.Batch.Stats.Accepted != 1 || payload.Counts.Authorized != 1 {
		t.Fatalf("unexpected add payload: %+v", payload)
	}
}

func TestValidateAndReportWithLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	invoices := standardInvoices()
	env.writeInvoices(t, invoices...)
	if _, _, err := runCLI(t, []string{"scan", env.inputDir}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	ledgerPath := filepath.Join(env.baseDir, "autenticidade.csv")
	content := "Chave de Acesso;Emitente;Situação\n" +
		invoices[0].Key() + ";EMPRESA;Autorizada\n" +
		invoices[1].Key() + ";EMPRESA;Cancelada\n" +
		"123;EMPRESA;Cancelada\n"
	if err := os.WriteFile(ledgerPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"validate", ledgerPath}, env.configPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "Valid keys: 2  Cancelled: 1  Dropped rows: 1")
	requireContains(t, out, "Divergences: 1")
	requireContains(t, out, invoices[1].Key())

	out, _, err = runCLI(t, []string{"report", "--ledger", ledgerPath}, env.configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "Canceladas: 1")
	requireContains(t, out, "Divergencias: 1")
	requireContains(t, out, "175.00")
}

func TestValidateRejectsLedgerWithoutKeys(t *testing.T) {
	env := setupCLITestEnv(t)
	ledgerPath := filepath.Join(env.baseDir, "vazio.csv")
	if err := os.WriteFile(ledgerPath, []byte("a,b,c,d,e,f\n1,2,3,4,5,6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, []string{"validate", ledgerPath}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no valid access keys") {
		t.Fatalf("expected no valid keys error, got %v", err)
	}
}

func TestValidateRequiresLedgerPath(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"validate", "  "}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "ledger path is required") {
		t.Fatalf("expected ledger path error, got %v", err)
	}
}

func TestReportUnknownTableAndFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"report", "--table", "nope"}, env.configPath); err == nil {
		t.Fatal("expected unknown table error")
	}
	if _, _, err := runCLI(t, []string{"report", "--format", "yaml"}, env.configPath); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestReportAllTablesMarkdown(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeInvoices(t, standardInvoices()...)
	if _, _, err := runCLI(t, []string{"scan", env.inputDir}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}
	out, _, err := runCLI(t, []string{"report", "--table", "all", "--format", "markdown"}, env.configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "| Documento |")
	requireContains(t, out, "| Origem |")
	requireContains(t, out, "TERCEIROS")
}

func TestExportEmptyCorpus(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"export"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "corpus is empty") {
		t.Fatalf("expected empty corpus error, got %v", err)
	}
}

func TestResetAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeInvoices(t, standardInvoices()...)
	if _, _, err := runCLI(t, []string{"scan", env.inputDir}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Documents:")
	requireContains(t, out, "[INFO] 4")
	requireContains(t, out, "garimpo")

	if _, _, err := runCLI(t, []string{"reset"}, env.configPath); err == nil {
		t.Fatal("reset without --yes should fail")
	}
	out, _, err = runCLI(t, []string{"reset", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	requireContains(t, out, "Removed 4 documents")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status json: %v", err)
	}
	var status statusOutput
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Documents != 0 || status.Batches != 0 || status.ConfigPath != env.configPath {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestCNPJFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"--cnpj", "123", "status"}, env.configPath); err == nil || !strings.Contains(err.Error(), "--cnpj") {
		t.Fatalf("expected --cnpj error, got %v", err)
	}

	// With the third party as reference, only its invoice is an own emission.
	env.writeInvoices(t, standardInvoices()...)
	out, _, err := runCLI(t, []string{"--cnpj", "98.765.432/0001-10", "scan", env.inputDir}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Autorizadas: 1")
	requireContains(t, out, "999.00")

	_, _, err = runCLI(t, []string{"add", env.inputDir}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "another taxpayer") {
		t.Fatalf("expected taxpayer mismatch on add, got %v", err)
	}
}

func TestScanRequiresTaxpayer(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Taxpayer.CNPJ = ""
	writeTestConfig(t, env.configPath, env.cfg)
	env.writeInvoices(t, standardInvoices()[:1]...)

	_, _, err := runCLI(t, []string{"scan", env.inputDir}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "taxpayer cnpj") {
		t.Fatalf("expected taxpayer preflight error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
}
