package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stashbatch/internal/resolver"
)

func newCompleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Create missing tagger entries on the current page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
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

			completer := resolver.NewCompleter(cfg, bridge, catalog, logger)
			created, err := completer.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if created == 0 {
				fmt.Fprintln(out, "No missing entries found")
				return nil
			}
			fmt.Fprintf(out, "Created %d missing entries\n", created)
			return nil
		},
	}
}
