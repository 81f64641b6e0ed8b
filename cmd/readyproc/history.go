package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/giantswarm/readyproc/internal/fileutil"
	"github.com/giantswarm/readyproc/internal/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs recorded with --history-db",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyDB    string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVar(&historyDB, "history-db", "", "SQLite database written by run --history-db")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list, newest first")
	_ = historyCmd.MarkFlagRequired("history-db")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("limit must be greater than 0, got %d", historyLimit)
	}
	path, err := fileutil.NormalizePath(historyDB)
	if err != nil {
		return fmt.Errorf("history db: %w", err)
	}
	return listRuns(cmd.Context(), cmd.OutOrStdout(), path, historyLimit)
}

// listRuns prints the newest limit runs of the ledger at path.
func listRuns(ctx context.Context, w io.Writer, path string, limit int) error {
	// Opening would create an empty ledger; listing must not.
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no run history at %s", path)
		}
		return err
	}

	store, err := history.Open(ctx, path, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing history db failed", "path", path, "error", err)
		}
	}()

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	return printRuns(w, runs)
}

func printRuns(w io.Writer, runs []history.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tPID\tOUTCOME\tEXIT\tREADY AFTER\tREFERENCE\tCOMMAND")
	for _, r := range runs {
		exit := "-"
		switch {
		case r.EndedAt.IsZero():
		case r.Signal != "":
			exit = r.Signal
		default:
			exit = strconv.Itoa(r.ExitCode)
		}
		readyAfter := "-"
		if !r.ReadyAt.IsZero() {
			readyAfter = r.ReadyAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		ref := r.Reference
		if ref == "" {
			ref = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.PID, r.Outcome, exit, readyAfter, ref, r.Command)
	}
	return tw.Flush()
}
