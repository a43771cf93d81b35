package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stashbatch/internal/journal"
	"stashbatch/internal/notifications"
	"stashbatch/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one batch run against the current tagger page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if skipConfirm {
				cfg.Runner.RequireConfirmation = false
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			bridge, err := ctx.bridge()
			if err != nil {
				return err
			}
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}

			return ctx.withJournal(func(store *journal.Store) error {
				controller := runner.NewWithRecorder(cfg, bridge, catalog, store, notifications.NewService(cfg), logger)

				out := cmd.OutOrStdout()
				if err := controller.Start(cmd.Context()); err != nil {
					if errors.Is(err, runner.ErrDeclined) {
						fmt.Fprintln(out, "Run declined")
						return nil
					}
					return err
				}

				runs, err := store.ListRuns(cmd.Context(), 1)
				if err != nil || len(runs) == 0 {
					fmt.Fprintln(out, "Run complete")
					return nil
				}
				last := runs[0]
				fmt.Fprintf(out, "Run %s %s: %d/%d items processed\n", shortID(last.ID), last.Status, last.Processed, last.Total)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip the pre-run confirmation prompt")
	return cmd
}
