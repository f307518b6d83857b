package main

import (
	"strings"
	"testing"

	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/report"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", formatTable, false},
		{"TABLE", formatTable, false},
		{"csv", formatCSV, false},
		{"md", formatMarkdown, false},
		{"json", formatJSON, false},
		{"xml", "", true},
	}
	for _, tc := range tests {
		got, err := parseFormat(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("parseFormat(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Data directory", statusOK, "/tmp (read/write ok)", false)
	if !strings.HasPrefix(line, "  Data directory:") || !strings.HasSuffix(line, "[OK] /tmp (read/write ok)") {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("Batches", statusError, "", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
}

func TestReportAlignments(t *testing.T) {
	table := report.Table{
		Header: []string{"Documento", "Série", "Início", "Valor"},
		Rows:   [][]any{{"NF-e", "1", 1, fiscal.Amount(100)}},
	}
	got := reportAlignments(table)
	want := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("alignments = %v, want %v", got, want)
		}
	}
	if csv := renderReportTable(formatCSV, table); !strings.Contains(csv, "NF-e,1,1,1.00") {
		t.Fatalf("csv = %q", csv)
	}
}
