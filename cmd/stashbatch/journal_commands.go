package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stashbatch/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded batch runs",
	}

	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalShowCommand(ctx))

	return journalCmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				headers := []string{"Run", "Started", "Status", "Processed", "Duration"}
				fmt.Fprintln(out, renderTable(headers, runRows(runs), 3, 4))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func newJournalShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show actions and tag resolutions for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				detail, err := store.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				printRunDetail(cmd, detail)
				return nil
			})
		},
	}
}

func printRunDetail(cmd *cobra.Command, detail *journal.RunDetail) {
	out := cmd.OutOrStdout()
	run := detail.Run

	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "  Started:   %s\n", run.StartedAt.Local().Format(time.RFC1123))
	if run.Finished() {
		fmt.Fprintf(out, "  Finished:  %s\n", run.FinishedAt.Local().Format(time.RFC1123))
		fmt.Fprintf(out, "  Duration:  %s\n", formatDuration(run.FinishedAt.Sub(run.StartedAt)))
	}
	fmt.Fprintf(out, "  Status:    %s\n", run.Status)
	fmt.Fprintf(out, "  Queued:    %d creates, %d tag links\n", run.Creates, run.Links)
	fmt.Fprintf(out, "  Processed: %d/%d\n", run.Processed, run.Total)

	if len(detail.Actions) > 0 {
		fmt.Fprintln(out)
		headers := []string{"Kind", "Target", "Result", "At"}
		rows := make([][]string, 0, len(detail.Actions))
		for _, action := range detail.Actions {
			rows = append(rows, []string{
				action.Kind,
				action.Ref,
				resultLabel(action.Error),
				action.CreatedAt.Local().Format(time.TimeOnly),
			})
		}
		fmt.Fprintln(out, renderTable(headers, rows))
	}

	if len(detail.Resolutions) > 0 {
		fmt.Fprintln(out)
		headers := []string{"Tag", "Entity", "Result", "At"}
		rows := make([][]string, 0, len(detail.Resolutions))
		for _, res := range detail.Resolutions {
			entity := res.EntityID
			if entity == "" {
				entity = "-"
			}
			rows = append(rows, []string{
				res.Name,
				entity,
				resultLabel(res.Error),
				res.CreatedAt.Local().Format(time.TimeOnly),
			})
		}
		fmt.Fprintln(out, renderTable(headers, rows))
	}
}

func runRows(runs []journal.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.Finished() {
			duration = formatDuration(run.FinishedAt.Sub(run.StartedAt))
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status,
			fmt.Sprintf("%d/%d", run.Processed, run.Total),
			duration,
		})
	}
	return rows
}

func resultLabel(errText string) string {
	if strings.TrimSpace(errText) == "" {
		return "ok"
	}
	return errText
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}
