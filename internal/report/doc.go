// Package report renders reconciliation results for operators.
//
// Tables turns a reconcile.Result into named, typed tables whose headers
// match the audit workbook the accounting team already uses. The same tables
// feed the terminal renderers, the xlsx workbook, and the JSON output. The
// package also builds the two document archives: one organized by storage
// path and one flat.
package report
