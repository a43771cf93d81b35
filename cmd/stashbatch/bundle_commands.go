package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stashbatch/internal/bundle"
)

func newBundleCommand(ctx *commandContext) *cobra.Command {
	bundleCmd := &cobra.Command{
		Use:   "bundle",
		Short: "Package plugin sources into distributable archives",
	}

	bundleCmd.AddCommand(newBundleBuildCommand(ctx))
	bundleCmd.AddCommand(newBundleListCommand(ctx))

	return bundleCmd
}

func newBundleBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build plugin archives and write the source index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(cfg.Bundle.SourceDirs) == 0 {
				return fmt.Errorf("no bundle source directories configured; set bundle.source_dirs")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			builder := bundle.NewBuilder(cfg, logger)
			entries, err := builder.Build(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No plugin manifests found")
				return nil
			}
			fmt.Fprintln(out, renderTable(bundleHeaders(), bundleRows(entries)))
			fmt.Fprintf(out, "Index written to %s\n", builder.IndexPath())
			return nil
		},
	}
}

func newBundleListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries in the generated source index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			builder := bundle.NewBuilder(cfg, logger)
			entries, err := bundle.LoadIndex(builder.IndexPath())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Index is empty; run `stashbatch bundle build` first")
				return nil
			}
			fmt.Fprintln(out, renderTable(bundleHeaders(), bundleRows(entries)))
			return nil
		},
	}
}

func bundleHeaders() []string {
	return []string{"ID", "Name", "Version", "Date", "Requires"}
}

func bundleRows(entries []bundle.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		requires := "-"
		if len(entry.Requires) > 0 {
			requires = strings.Join(entry.Requires, ", ")
		}
		rows = append(rows, []string{entry.ID, entry.Name, entry.Version, entry.Date, requires})
	}
	return rows
}
