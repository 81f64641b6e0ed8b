package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giantswarm/readyproc"
	"github.com/spf13/cobra"
)

// stopSlack is added to the stop timeout to bound Stop as a whole, which
// may still need to force-kill and drain the tree after the grace period.
const stopSlack = 15 * time.Second

var errExitedAfterReady = errors.New("process exited after becoming ready")

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- command...]",
	Short: "Run a command until interrupted",
	Long: "Start the command, print \"ready (pid N)\" once a stdout line matches --wait-for, " +
		"then wait for SIGINT or SIGTERM and stop the whole process tree. " +
		"If the process exits on its own, readyproc exits with a non-zero status.",
	Example: `  readyproc run --wait-for 'Listening on' -- npm run dev
  readyproc run --config e2e.yaml --save-log-to ~/logs/server.log`,
	RunE: runRun,
}

var (
	runFlags   runConfig
	configPath string
)

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.Command, "command", readyproc.DefaultCommand, "Shell command to run (arguments after -- take precedence)")
	f.StringVar(&runFlags.WaitFor, "wait-for", "", "Regular expression matched against each stdout line (required)")
	f.StringVar(&runFlags.SaveLogTo, "save-log-to", "", "Write a transcript of all output to this file")
	f.StringVar(&runFlags.Reference, "reference", "", "Label written into the transcript header")
	f.StringVar(&runFlags.Dir, "dir", "", "Working directory of the process (default: current directory)")
	f.DurationVar(&runFlags.StopTimeout, "stop-timeout", readyproc.DefaultStopTimeout, "Grace period between SIGTERM and SIGKILL")
	f.StringVar(&runFlags.HistoryDB, "history-db", "", "Record the run in this SQLite database")
	f.StringVar(&configPath, "config", "", "YAML file providing defaults for the flags above")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig(runFlags, cmd.Flags(), configPath, args)
	if err != nil {
		return err
	}
	opts, err := cfg.options()
	if err != nil {
		return err
	}
	ctrl, err := readyproc.New(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			slog.Warn("closing controller failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, ctrl, cmd.OutOrStdout(), cfg.StopTimeout)
}

// serve starts ctrl and keeps the process running until ctx ends (then
// stops it and returns nil) or the process exits on its own.
func serve(ctx context.Context, ctrl readyproc.Controller, out io.Writer, stopTimeout time.Duration) error {
	if err := ctrl.Start(ctx); err != nil {
		var pe *readyproc.PrematureExitError
		if errors.As(err, &pe) {
			return &exitError{code: prematureExitCode(pe), err: err}
		}
		if ctx.Err() != nil {
			slog.Info("interrupted before the process became ready")
			if stopErr := stopProcess(ctrl, stopTimeout); stopErr != nil {
				return errors.Join(err, stopErr)
			}
		}
		return err
	}

	fmt.Fprintf(out, "ready (pid %d)\n", ctrl.PID())

	exited := ctrl.Exited()
	if exited == nil {
		return &exitError{code: 1, err: errExitedAfterReady}
	}
	select {
	case <-ctx.Done():
		slog.Info("received signal, stopping process tree", "pid", ctrl.PID())
		return stopProcess(ctrl, stopTimeout)
	case <-exited:
		return &exitError{code: 1, err: errExitedAfterReady}
	}
}

func stopProcess(ctrl readyproc.Controller, stopTimeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout+stopSlack)
	defer cancel()
	if err := ctrl.Stop(ctx); err != nil && !errors.Is(err, readyproc.ErrNothingToStop) {
		return fmt.Errorf("stop process: %w", err)
	}
	return nil
}

// prematureExitCode passes the child's exit code on. A child that exited
// with 0 or was killed by a signal still failed to become ready, so 1 is
// used instead.
func prematureExitCode(pe *readyproc.PrematureExitError) int {
	if pe.ExitCode > 0 {
		return pe.ExitCode
	}
	return 1
}
