package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/giantswarm/readyproc"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// runConfig is the resolved configuration of the run command.
type runConfig struct {
	Command     string
	WaitFor     string
	SaveLogTo   string
	Reference   string
	Dir         string
	StopTimeout time.Duration
	HistoryDB   string
}

// fileConfig is the YAML form of runConfig. Durations are strings such as
// "15s" so that the file stays readable.
type fileConfig struct {
	Command     string `yaml:"command"`
	WaitFor     string `yaml:"waitFor"`
	SaveLogTo   string `yaml:"saveLogTo"`
	Reference   string `yaml:"reference"`
	Dir         string `yaml:"dir"`
	StopTimeout string `yaml:"stopTimeout"`
	HistoryDB   string `yaml:"historyDB"`
}

// loadFileConfig reads a YAML config file. Unknown keys are rejected so
// that typos do not silently fall back to defaults. An empty file is valid.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// applyFileConfig copies non-empty file values into cfg, skipping those
// whose flag was set explicitly on the command line.
func applyFileConfig(cfg *runConfig, fc fileConfig, changed map[string]bool) error {
	setString := func(flag, value string, dst *string) {
		if value != "" && !changed[flag] {
			*dst = value
		}
	}
	setString("command", fc.Command, &cfg.Command)
	setString("wait-for", fc.WaitFor, &cfg.WaitFor)
	setString("save-log-to", fc.SaveLogTo, &cfg.SaveLogTo)
	setString("reference", fc.Reference, &cfg.Reference)
	setString("dir", fc.Dir, &cfg.Dir)
	setString("history-db", fc.HistoryDB, &cfg.HistoryDB)

	if fc.StopTimeout != "" && !changed["stop-timeout"] {
		d, err := time.ParseDuration(fc.StopTimeout)
		if err != nil {
			return fmt.Errorf("stopTimeout: %w", err)
		}
		cfg.StopTimeout = d
	}
	return nil
}

// changedFlags returns the names of the flags set on the command line.
func changedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// resolveRunConfig layers the config file under the flags. Arguments after
// "--" form the command line and take precedence over both.
func resolveRunConfig(flags runConfig, fs *pflag.FlagSet, cfgPath string, args []string) (runConfig, error) {
	cfg := flags
	if cfgPath != "" {
		fc, err := loadFileConfig(cfgPath)
		if err != nil {
			return runConfig{}, fmt.Errorf("load config: %w", err)
		}
		if err := applyFileConfig(&cfg, fc, changedFlags(fs)); err != nil {
			return runConfig{}, fmt.Errorf("load config: %w", err)
		}
	}
	if len(args) > 0 {
		cfg.Command = strings.Join(args, " ")
	}
	return cfg, nil
}

// options converts cfg into controller options. The ready pattern is
// passed through even when empty so that New reports it.
func (c runConfig) options() ([]readyproc.Option, error) {
	if c.StopTimeout <= 0 {
		return nil, fmt.Errorf("stop timeout must be greater than 0, got %s", c.StopTimeout)
	}

	opts := []readyproc.Option{
		readyproc.WithWaitForPattern(c.WaitFor),
		readyproc.WithStopTimeout(c.StopTimeout),
		readyproc.WithReference(c.Reference),
	}
	if c.Command != "" {
		opts = append(opts, readyproc.WithCommand(c.Command))
	}
	if c.SaveLogTo != "" {
		opts = append(opts, readyproc.WithSaveLogTo(c.SaveLogTo))
	}
	if c.Dir != "" {
		opts = append(opts, readyproc.WithDir(c.Dir))
	}
	if c.HistoryDB != "" {
		opts = append(opts, readyproc.WithHistoryDB(c.HistoryDB))
	}
	return opts, nil
}
