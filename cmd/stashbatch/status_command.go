package main

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"stashbatch/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity to the catalog and browser bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
			kind, detail := probeDaemonLock(cfg.LockPath())
			fmt.Fprintln(out, renderStatusLine("Daemon", kind, detail, colorize))

			if !preflight.AllPassed(results) {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}

// probeDaemonLock inspects the daemon lock file. A held lock means a daemon
// instance is running; a free or absent lock means it is not.
func probeDaemonLock(lockPath string) (statusKind, string) {
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		return statusInfo, "not running"
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return statusError, "lock state unknown"
	}
	if !ok {
		return statusOK, "running"
	}
	lock.Unlock()
	return statusInfo, "not running"
}
