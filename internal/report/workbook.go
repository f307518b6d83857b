package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/reconcile"
)

// amountFormat is the built-in "#,##0.00" number format.
const amountFormat = 4

// WriteWorkbook writes the audit workbook. The divergences sheet is only
// present when the ledger overrode at least one document.
func WriteWorkbook(w io.Writer, res reconcile.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return fmt.Errorf("workbook style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("workbook style: %w", err)
	}

	first := true
	for _, table := range Tables(res) {
		if table.Name == TableDivergences && len(table.Rows) == 0 {
			continue
		}
		if first {
			if err := f.SetSheetName("Sheet1", table.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(table.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", table.Name, err)
		}
		if err := writeSheet(f, table, headerStyle, amountStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", table.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, table Table, headerStyle, amountStyle int) error {
	sheet := table.Name
	if err := f.SetSheetRow(sheet, "A1", &table.Header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(table.Header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			if amount, ok := cell.(fiscal.Amount); ok {
				cells[j] = amount.Float64()
				continue
			}
			cells[j] = cell
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	if len(table.Rows) > 0 {
		for col, cell := range table.Rows[0] {
			if _, ok := cell.(fiscal.Amount); !ok {
				continue
			}
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return err
			}
			if err := f.SetColStyle(sheet, name, amountStyle); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
