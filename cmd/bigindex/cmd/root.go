// Package cmd provides the CLI commands for bigindex.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/bigindex/internal/config"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/logging"
	"github.com/Aman-CERP/bigindex/pkg/version"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	dir        string
	configFile string
	env        string
	debug      bool

	loggingCleanup func()
}

// NewRootCmd creates the root command for the bigindex CLI.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "bigindex",
		Short: "Full-text indexing for record stores",
		Long: `bigindex keeps search indexes (SQLite FTS5 or Bleve) in sync with
primary record stores (Badger, SQLite, PostgreSQL).

Models, their fields and their repositories are declared in .bigindex.yaml.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("bigindex version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&g.dir, "dir", "C", "", "Project directory (default: nearest directory with .bigindex.yaml)")
	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Configuration file (default: <dir>/.bigindex.yaml)")
	cmd.PersistentFlags().StringVar(&g.env, "env", "", "Environment to use (overrides BIGINDEX_ENV)")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to ~/.bigindex/logs/")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return g.startLogging() }
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		g.stopLogging()
		return nil
	}

	cmd.AddCommand(newRebuildCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
	}
	return err
}

func (g *globalFlags) startLogging() error {
	if !g.debug {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	g.loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("debug_logging_enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Short()))
	return nil
}

func (g *globalFlags) stopLogging() {
	if g.loggingCleanup != nil {
		g.loggingCleanup()
		g.loggingCleanup = nil
	}
}

// loadConfig finds the project directory and loads its configuration.
func (g *globalFlags) loadConfig() (string, *config.Config, error) {
	dir := g.dir
	if dir == "" {
		root, err := config.FindProjectRoot(".")
		if err != nil {
			return "", nil, err
		}
		dir = root
	}
	cfg, err := config.LoadWith(dir, config.Options{File: g.configFile, Env: g.env})
	if err != nil {
		return "", nil, err
	}
	return dir, cfg, nil
}

// logger returns the command logger: the debug logger when --debug is set,
// stderr at the configured level otherwise.
func (g *globalFlags) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	if g.debug {
		return slog.Default()
	}
	lc := logging.DefaultConfig()
	lc.Level = cfg.LogLevel
	return logging.New(cmd.ErrOrStderr(), lc)
}
