package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/ingest"
	"garimpeiro/internal/preflight"
	"garimpeiro/internal/reconcile"
	"garimpeiro/internal/report"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return newBatchCommand(ctx, corpus.KindScan,
		"scan <paths...>",
		"Start a new corpus from XML files, ZIP archives, or folders",
	)
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return newBatchCommand(ctx, corpus.KindAdd,
		"add <paths...>",
		"Add more documents to the current corpus",
	)
}

type batchOutput struct {
	Batch   ingest.Summary         `json:"batch"`
	Counts  reconcile.Counts       `json:"counts"`
	Summary []reconcile.SummaryRow `json:"summary"`
}

func newBatchCommand(ctx *commandContext, kind corpus.Kind, use, short string) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				if failed, ok := preflight.FirstFailure(preflight.RunAll(cfg)); ok {
					return failed.Error()
				}

				summary, err := ingest.New(cfg, store, ctx.loggerFor(cmd)).Run(cmd.Context(), ingest.Options{
					Inputs: args,
					Kind:   kind,
				})
				if err != nil {
					return err
				}

				docs, err := store.Documents(cmd.Context(), false)
				if err != nil {
					return err
				}
				result := reconcile.Reconcile(docs, nil)

				if jsonOut {
					return writeJSON(cmd, batchOutput{Batch: summary, Counts: result.Counts(), Summary: result.Summary})
				}
				out := cmd.OutOrStdout()
				printBatchSummary(out, summary)
				printCounts(out, result)
				table, _ := report.Find(report.Tables(result), report.TableSummary)
				fmt.Fprintln(out, renderReportTable(formatTable, table))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printBatchSummary(out io.Writer, summary ingest.Summary) {
	fmt.Fprintf(out, "Batch %s (%s) finished in %s\n", summary.BatchID, summary.Kind, summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Inputs: %d  Accepted: %d  Rejected: %d  Skipped: %d\n",
		summary.Stats.Inputs, summary.Stats.Accepted, summary.Stats.Rejected, summary.Stats.Skipped)
}

func printCounts(out io.Writer, result reconcile.Result) {
	counts := result.Counts()
	fmt.Fprintf(out, "Autorizadas: %d  Canceladas: %d  Inutilizadas: %d  Buracos: %d  Valor: %s\n",
		counts.Authorized, counts.Cancelled, counts.Voided, counts.Gaps, result.Total())
	if counts.GapsOmitted > 0 {
		fmt.Fprintf(out, "Buracos omitidos: %d (lista limitada a %d)\n", counts.GapsOmitted, reconcile.MaxGapRows)
	}
	if counts.Divergences > 0 {
		fmt.Fprintf(out, "Divergencias: %d\n", counts.Divergences)
	}
}
