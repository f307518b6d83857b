package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/reconcile"
	"garimpeiro/internal/report"
)

type validateOutput struct {
	Path        string                 `json:"path"`
	Keys        int                    `json:"keys"`
	Cancelled   int                    `json:"cancelled"`
	Dropped     int                    `json:"dropped"`
	Divergences []reconcile.Divergence `json:"divergences"`
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "validate <ledger>",
		Short: "Cross-check the corpus against an authenticity ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				l, err := loadLedger(cfg, args[0])
				if err != nil {
					return err
				}
				docs, err := store.Documents(cmd.Context(), false)
				if err != nil {
					return err
				}
				result := reconcile.Reconcile(docs, l)

				if jsonOut {
					return writeJSON(cmd, validateOutput{
						Path:        args[0],
						Keys:        l.Len(),
						Cancelled:   l.CancelledCount(),
						Dropped:     l.Dropped,
						Divergences: result.Divergences,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ledger: %s\n", args[0])
				fmt.Fprintf(out, "Valid keys: %d  Cancelled: %d  Dropped rows: %d\n", l.Len(), l.CancelledCount(), l.Dropped)
				if len(docs) == 0 {
					fmt.Fprintln(out, "Corpus is empty; run scan to compare documents")
					return nil
				}
				if len(result.Divergences) == 0 {
					fmt.Fprintln(out, "No divergences: every authorized document is also authorized in the ledger")
					return nil
				}
				fmt.Fprintf(out, "Divergences: %d\n", len(result.Divergences))
				table, _ := report.Find(report.Tables(result), report.TableDivergences)
				fmt.Fprintln(out, renderReportTable(formatTable, table))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
