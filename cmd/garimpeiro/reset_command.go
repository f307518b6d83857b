package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/logging"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every document and batch from the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("reset removes the whole corpus; pass --yes to confirm")
			}
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				unlock, err := store.Lock()
				if err != nil {
					return err
				}
				defer unlock()

				removed, err := store.Reset(cmd.Context())
				if err != nil {
					return err
				}
				logging.NewComponentLogger(ctx.loggerFor(cmd), "corpus").Info("corpus reset",
					logging.Int64("removed", removed),
					logging.String(logging.FieldEventType, "corpus_reset"),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d documents\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm the reset")
	return cmd
}
