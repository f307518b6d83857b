package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/preflight"
)

type statusOutput struct {
	ConfigPath string             `json:"config_path"`
	Database   string             `json:"database"`
	Documents  int                `json:"documents"`
	Batches    int                `json:"batches"`
	LastBatch  *corpus.Batch      `json:"last_batch,omitempty"`
	Checks     []preflight.Result `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration readiness and corpus contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				count, err := store.Count(cmd.Context())
				if err != nil {
					return err
				}
				batches, err := store.Batches(cmd.Context())
				if err != nil {
					return err
				}
				status := statusOutput{
					ConfigPath: ctx.configPath,
					Database:   store.Path(),
					Documents:  count,
					Batches:    len(batches),
					Checks:     preflight.RunAll(cfg),
				}
				if len(batches) > 0 {
					status.LastBatch = &batches[len(batches)-1]
				}

				if jsonOut {
					return writeJSON(cmd, status)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderStatus(status, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderStatus(status statusOutput, colorize bool) string {
	var lines []string
	lines = append(lines, renderSectionHeader("Checks", colorize)...)
	for _, check := range status.Checks {
		kind := statusOK
		switch {
		case !check.Passed && check.Optional:
			kind = statusWarn
		case !check.Passed:
			kind = statusError
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Corpus", colorize)...)
	lines = append(lines, renderStatusLine("Config", statusInfo, status.ConfigPath, colorize))
	lines = append(lines, renderStatusLine("Database", statusInfo, status.Database, colorize))
	lines = append(lines, renderStatusLine("Documents", statusInfo, fmt.Sprintf("%d", status.Documents), colorize))
	lines = append(lines, renderStatusLine("Batches", statusInfo, fmt.Sprintf("%d", status.Batches), colorize))
	if last := status.LastBatch; last != nil {
		kind, detail := statusOK, describeBatch(*last)
		switch {
		case last.ErrorMessage != "":
			kind = statusError
		case !last.Finished():
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine("Last batch", kind, detail, colorize))
	}
	return strings.Join(lines, "\n") + "\n"
}

func describeBatch(b corpus.Batch) string {
	parts := []string{
		string(b.Kind),
		b.StartedAt.Local().Format(time.DateTime),
		fmt.Sprintf("accepted %d, rejected %d, skipped %d", b.Stats.Accepted, b.Stats.Rejected, b.Stats.Skipped),
	}
	switch {
	case b.ErrorMessage != "":
		parts = append(parts, "error: "+b.ErrorMessage)
	case !b.Finished():
		parts = append(parts, "unfinished")
	}
	return strings.Join(parts, " | ")
}
