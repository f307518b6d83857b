package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const (
	keyA = "35240112345678000190550010000000011000000010"
	keyB = "35240112345678000190550010000000021000000020"
	keyC = "35240112345678000190550010000000031000000030"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{keyA, keyA, true},
		{"  " + keyA + " ", keyA, true},
		{keyA + ".0", keyA, true},
		{keyA[:43], keyA[:43], false},
		{"", "", false},
		{"3.524011234567800E+43", "3", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeKey(tt.raw)
		if got != tt.want || ok != tt.valid {
			t.Errorf("NormalizeKey(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.valid)
		}
	}
}

func TestFromRowsPositional(t *testing.T) {
	rows := [][]string{
		{"Chave", "b", "c", "d", "e", "Status"},
		{keyA, "", "", "", "", "Autorizada"},
		{keyB + ".0", "", "", "", "", "Cancelamento homologado"},
		{"123", "", "", "", "", "Cancelada"},
		{keyC},
	}
	l, err := FromRows(rows, Columns{KeyIndex: 0, StatusIndex: 5})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	if l.Dropped != 3 {
		t.Fatalf("Dropped = %d, want 3 (header, short key, short row)", l.Dropped)
	}
	if l.IsCancelled(keyA) {
		t.Fatal("authorized key reported cancelled")
	}
	if !l.IsCancelled(keyB) {
		t.Fatal("expected cancelled key")
	}
	if l.IsCancelled(keyC) {
		t.Fatal("absent key reported cancelled")
	}
	if status, _ := l.Status(keyB); status != "CANCELAMENTO HOMOLOGADO" {
		t.Fatalf("Status = %q", status)
	}
	if l.CancelledCount() != 1 {
		t.Fatalf("CancelledCount = %d", l.CancelledCount())
	}
}

func TestFromRowsNamedHeaders(t *testing.T) {
	rows := [][]string{
		{"SITUACAO", "Emitente", "chave de acesso"},
		{"Cancelada", "X", keyA},
		{"Autorizada", "Y", keyB},
	}
	l, err := FromRows(rows, DefaultColumns())
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	if !l.IsCancelled(keyA) || l.IsCancelled(keyB) {
		t.Fatalf("unexpected statuses: %v", l.Keys())
	}
	if l.Dropped != 0 {
		t.Fatalf("Dropped = %d, want header consumed", l.Dropped)
	}
}

func TestFromRowsNoValidKeys(t *testing.T) {
	rows := [][]string{{"a", "b", "c", "d", "e", "f"}, {"1", "", "", "", "", "x"}}
	if _, err := FromRows(rows, DefaultColumns()); !errors.Is(err, ErrNoValidKeys) {
		t.Fatalf("err = %v, want ErrNoValidKeys", err)
	}
	if _, err := FromRows(nil, DefaultColumns()); !errors.Is(err, ErrNoValidKeys) {
		t.Fatalf("err = %v, want ErrNoValidKeys for empty input", err)
	}
}

func TestNilLedgerLookup(t *testing.T) {
	var l *Ledger
	if l.IsCancelled(keyA) || l.Len() != 0 {
		t.Fatal("nil ledger should be empty")
	}
}

func TestCustomMarker(t *testing.T) {
	l := New("denegada")
	l.Set(keyA, "Uso Denegado")
	l.Set(keyB, "Denegada")
	if l.IsCancelled(keyA) || !l.IsCancelled(keyB) {
		t.Fatal("marker not applied")
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	content := "\xef\xbb\xbfChave de Acesso;Número;Série;Emissão;Valor;Situação\n" +
		keyA + ";1;1;01/01/2024;100,00;Autorizada\n" +
		keyB + ";2;1;01/01/2024;50,00;Cancelada\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, err := Load(path, DefaultColumns())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Len() != 2 || !l.IsCancelled(keyB) {
		t.Fatalf("unexpected ledger: len=%d", l.Len())
	}
}

func TestLoadWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xlsx")

	f := excelize.NewFile()
	rows := [][]any{
		{"Chave", "Numero", "Serie", "Emissao", "Valor", "Status"},
		{keyA, 1, 1, "2024-01-01", 100.0, "Autorizada"},
		{keyC, 3, 1, "2024-01-01", 10.0, "CANCELADA"},
	}
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	l, err := Load(path, Columns{KeyIndex: 0, StatusIndex: 5})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Len() != 2 || !l.IsCancelled(keyC) || l.IsCancelled(keyA) {
		t.Fatalf("unexpected ledger contents: %v", l.Keys())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "ledger.pdf"), DefaultColumns()); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.xlsx"), DefaultColumns()); err == nil {
		t.Fatal("expected error for missing workbook")
	}
	bad := filepath.Join(dir, "bad.xlsx")
	if err := os.WriteFile(bad, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(bad, DefaultColumns()); err == nil {
		t.Fatal("expected error for corrupt workbook")
	}
}
