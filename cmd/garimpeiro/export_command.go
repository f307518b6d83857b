package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/fileutil"
	"garimpeiro/internal/logging"
	"garimpeiro/internal/report"
)

var errEmptyCorpus = errors.New("corpus is empty; run scan first")

func newExportCommand(ctx *commandContext) *cobra.Command {
	var ledgerPath string
	var dir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the audit workbook and the document archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				target := strings.TrimSpace(dir)
				if target == "" {
					target = cfg.Paths.ExportDir
				}
				target, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve export directory: %w", err)
				}

				result, docs, err := reconcileCorpus(ctx, cmd, cfg, store, ledgerPath, true)
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					return errEmptyCorpus
				}

				exported, err := report.Export(target, result, docs)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				logging.NewComponentLogger(ctx.loggerFor(cmd), "export").Info("export written",
					logging.String("dir", target),
					logging.Int("organized_entries", exported.OrganizedEntries),
					logging.Int("flat_entries", exported.FlatEntries),
					logging.String(logging.FieldEventType, "export_written"),
				)

				if jsonOut {
					return writeJSON(cmd, exported)
				}
				rows := [][]string{
					writtenRow(exported.Workbook, ""),
					writtenRow(exported.Organized, strconv.Itoa(exported.OrganizedEntries)),
					writtenRow(exported.Flat, strconv.Itoa(exported.FlatEntries)),
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"File", "Entries", "Bytes", "SHA-256"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Authenticity ledger (.xlsx or .csv) applied to the workbook")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Destination directory (default paths.export_dir)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func writtenRow(w fileutil.Written, entries string) []string {
	return []string{w.Path, entries, strconv.FormatInt(w.Size, 10), w.SHA256}
}
