package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/report"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// Output formats accepted by --format.
const (
	formatTable    = "table"
	formatCSV      = "csv"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

func parseFormat(value string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(value)); format {
	case "", formatTable:
		return formatTable, nil
	case formatCSV, formatMarkdown, formatJSON:
		return format, nil
	case "md":
		return formatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use table, csv, markdown, or json)", value)
	}
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return renderTableAs(formatTable, headers, rows, aligns)
}

func renderTableAs(format string, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	switch format {
	case formatCSV:
		return tw.RenderCSV()
	case formatMarkdown:
		return tw.RenderMarkdown()
	default:
		return tw.Render()
	}
}

// reportAlignments right-aligns numeric and amount columns, judged by the
// first row of the table.
func reportAlignments(t report.Table) []columnAlignment {
	aligns := make([]columnAlignment, len(t.Header))
	if len(t.Rows) == 0 {
		return aligns
	}
	for i, cell := range t.Rows[0] {
		if i >= len(aligns) {
			break
		}
		switch cell.(type) {
		case int, fiscal.Amount:
			aligns[i] = alignRight
		}
	}
	return aligns
}

func renderReportTable(format string, t report.Table) string {
	return renderTableAs(format, t.Header, t.Strings(), reportAlignments(t))
}
