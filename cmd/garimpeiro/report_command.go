package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/logging"
	"garimpeiro/internal/reconcile"
	"garimpeiro/internal/report"
)

const allTables = "all"

type reportOutput struct {
	Counts reconcile.Counts `json:"counts"`
	Total  fiscal.Amount    `json:"total"`
	reconcile.Result
}

type tableOutput struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	var ledgerPath string
	var format string
	var tableName string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reconcile the corpus and print the audit tables",
		Long: "Reconcile the corpus and print the audit tables.\n\n" +
			"Tables: " + strings.Join(report.Names(), ", ") + " (or \"all\").",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				result, _, err := reconcileCorpus(ctx, cmd, cfg, store, ledgerPath, false)
				if err != nil {
					return err
				}
				return renderReport(cmd, result, outputFormat, tableName)
			})
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Authenticity ledger (.xlsx or .csv) used to override statuses")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, csv, markdown, json")
	cmd.Flags().StringVarP(&tableName, "table", "t", "", "Table to print (default: summary with counts)")
	return cmd
}

// reconcileCorpus loads every corpus record, the optional ledger, and runs
// the engine. It also returns the raw records; content is only loaded when
// archives will be written.
func reconcileCorpus(ctx *commandContext, cmd *cobra.Command, cfg *config.Config, store *corpus.Store, ledgerPath string, withContent bool) (reconcile.Result, []fiscal.Document, error) {
	docs, err := store.Documents(cmd.Context(), withContent)
	if err != nil {
		return reconcile.Result{}, nil, err
	}
	if strings.TrimSpace(ledgerPath) == "" {
		return reconcile.Reconcile(docs, nil), docs, nil
	}
	l, err := loadLedger(cfg, ledgerPath)
	if err != nil {
		return reconcile.Result{}, nil, err
	}
	ctx.loggerFor(cmd).Info("ledger loaded",
		logging.String("path", ledgerPath),
		logging.Int("keys", l.Len()),
		logging.Int("cancelled", l.CancelledCount()),
		logging.Int("dropped", l.Dropped),
	)
	return reconcile.Reconcile(docs, l), docs, nil
}

func renderReport(cmd *cobra.Command, result reconcile.Result, format, tableName string) error {
	out := cmd.OutOrStdout()
	tables := report.Tables(result)
	name := strings.TrimSpace(tableName)

	if format == formatJSON {
		switch {
		case name == "" || strings.EqualFold(name, allTables):
			return writeJSON(cmd, reportOutput{Counts: result.Counts(), Total: result.Total(), Result: result})
		default:
			table, ok := report.Find(tables, name)
			if !ok {
				return unknownTable(name)
			}
			return writeJSON(cmd, tableOutput{Name: table.Name, Header: table.Header, Rows: table.Strings()})
		}
	}

	switch {
	case name == "":
		summary, _ := report.Find(tables, report.TableSummary)
		if format == formatTable {
			printCounts(out, result)
		}
		fmt.Fprintln(out, renderReportTable(format, summary))
	case strings.EqualFold(name, allTables):
		colorize := shouldColorize(out)
		for i, table := range tables {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if format == formatTable {
				for _, line := range renderSectionHeader(table.Name, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			fmt.Fprintln(out, renderReportTable(format, table))
		}
	default:
		table, ok := report.Find(tables, name)
		if !ok {
			return unknownTable(name)
		}
		fmt.Fprintln(out, renderReportTable(format, table))
	}
	return nil
}

func unknownTable(name string) error {
	return fmt.Errorf("unknown table %q (available: %s, %s)", name, strings.Join(report.Names(), ", "), allTables)
}
