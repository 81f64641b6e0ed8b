package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/giantswarm/readyproc"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "readyproc",
	Short: "Run a test-support process and wait until it is ready",
	Long: "Start a command through the shell, wait for a line on its stdout that matches a pattern, " +
		"keep it running until interrupted and then stop it together with all of its children.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setupLogging(cmd.ErrOrStderr(), debug)
	},
}

var debug bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level, including every line of process output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitError makes main exit with a specific status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	readyproc.SetLogger(logger.With("component", "readyproc"))
}
