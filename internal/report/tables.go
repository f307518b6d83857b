package report

import (
	"fmt"
	"strconv"

	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/reconcile"
	"garimpeiro/internal/textutil"
)

// Table names double as workbook sheet names.
const (
	TableSummary     = "Resumo"
	TableLedger      = "Geral"
	TableGaps        = "Buracos"
	TableCancelled   = "Canceladas"
	TableVoided      = "Inutilizadas"
	TableAuthorized  = "Autorizadas"
	TableDivergences = "Divergencias"
)

// Table is one rendered result table. Cells hold string, int, bool, or
// fiscal.Amount values so writers can keep numeric types.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Names lists the tables in rendering order.
func Names() []string {
	return []string{TableSummary, TableLedger, TableGaps, TableCancelled, TableVoided, TableAuthorized, TableDivergences}
}

// Tables renders every table of res, in Names order.
func Tables(res reconcile.Result) []Table {
	return []Table{
		summaryTable(res.Summary),
		ledgerTable(res.Ledger),
		gapsTable(res.Gaps),
		cancelledTable(res.Cancelled),
		voidedTable(res.Voided),
		authorizedTable(res.Authorized),
		divergencesTable(res.Divergences),
	}
}

// Find returns the table whose name matches ignoring case and accents.
func Find(tables []Table, name string) (Table, bool) {
	for _, t := range tables {
		if textutil.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Table{}, false
}

// Strings formats every cell for text output.
func (t Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = FormatCell(cell)
		}
		out[i] = cells
	}
	return out
}

// FormatCell renders a table cell as text.
func FormatCell(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case fiscal.Amount:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// StatusLabel is the operator-facing label of a final status.
func StatusLabel(s fiscal.Status) string {
	switch s {
	case fiscal.StatusCancelled:
		return "CANCELADA"
	case fiscal.StatusVoided:
		return "INUTILIZADA"
	case fiscal.StatusCorrectionLetter:
		return "CARTA DE CORREÇÃO"
	default:
		return "AUTORIZADA"
	}
}

// ObservationLabel explains where a final status came from.
func ObservationLabel(observation string) string {
	if observation == reconcile.ObservedInLedger {
		return "Via Autenticidade"
	}
	return "XML"
}

func originLabel(own bool) string {
	if own {
		return "EMISSÃO PRÓPRIA"
	}
	return "TERCEIROS"
}

func summaryTable(rows []reconcile.SummaryRow) Table {
	t := Table{Name: TableSummary, Header: []string{"Documento", "Série", "Início", "Fim", "Quantidade", "Valor Contábil (R$)"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Family.String(), r.Series, r.First, r.Last, r.Count, r.Value})
	}
	return t
}

func ledgerTable(rows []reconcile.LedgerRow) Table {
	t := Table{Name: TableLedger, Header: []string{"Origem", "Modelo", "Série", "Nota", "Chave", "Status Final", "Valor", "Obs"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			originLabel(r.OwnEmission), r.Family.String(), r.Series, r.Number, r.Key,
			StatusLabel(r.Status), r.Value, ObservationLabel(r.Observation),
		})
	}
	return t
}

func gapsTable(rows []reconcile.GapRow) Table {
	t := Table{Name: TableGaps, Header: []string{"Tipo", "Série", "Nº Faltante"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Family.String(), r.Series, r.Missing})
	}
	return t
}

func cancelledTable(rows []reconcile.DocumentRow) Table {
	t := Table{Name: TableCancelled, Header: []string{"Modelo", "Série", "Nota", "Chave", "Obs"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Family.String(), r.Series, r.Number, r.Key, ObservationLabel(r.Observation)})
	}
	return t
}

func voidedTable(rows []reconcile.DocumentRow) Table {
	t := Table{Name: TableVoided, Header: []string{"Modelo", "Série", "Nota"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Family.String(), r.Series, r.Number})
	}
	return t
}

func authorizedTable(rows []reconcile.DocumentRow) Table {
	t := Table{Name: TableAuthorized, Header: []string{"Modelo", "Série", "Nota", "Valor", "Chave"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Family.String(), r.Series, r.Number, r.Value, r.Key})
	}
	return t
}

func divergencesTable(rows []reconcile.Divergence) Table {
	t := Table{Name: TableDivergences, Header: []string{"Chave", "Nota", "Status XML", "Status Real"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Key, r.Number, StatusLabel(r.Prior), StatusLabel(r.Final)})
	}
	return t
}
