// Command rsidscan examines the revision history embedded in DOCX files.
//
// Usage:
//
//	rsidscan analyze [flags] <file.docx>...
//	rsidscan watch [dir...]
//	rsidscan history [--fingerprint fp] [--limit n]
//	rsidscan schema
//	rsidscan config init|show
//	rsidscan version
//
// Exit codes: 0 on success, 1 on failure, 2 on usage errors and 3 when
// --fail-on-detect is set and a document is flagged.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZanMander/Forensic-linguistics/internal/config"
	"github.com/ZanMander/Forensic-linguistics/internal/logging"
)

var (
	// Version information (set at build time)
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitDetected = 3
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

// exitCode maps an Execute error to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra reports unknown subcommands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitFailure
}

func main() {
	err := newRootCmd(os.Stdout, os.Stderr).Execute()
	var ee *exitError
	if err != nil && (!errors.As(err, &ee) || ee.err != nil) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// cli is the state shared by every subcommand of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string

	cfg *config.Config
	log *logging.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "rsidscan",
		Short:         "Revision forensics for DOCX documents",
		Long:          "rsidscan reads the RSID revision marks, tracked changes and metadata of DOCX files\nand reports how a document was composed.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.log != nil {
				return c.log.Close()
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: exitUsage, err: err}
	})

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: platform config dir)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		c.analyzeCmd(),
		c.watchCmd(),
		c.historyCmd(),
		c.schemaCmd(),
		c.configCmd(),
		c.versionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.logLevel != "" {
		if _, err := logging.ParseLevel(c.logLevel); err != nil {
			return usageErrorf("invalid --log-level: %v", err)
		}
		cfg.Logging.Level = c.logLevel
	}

	logCfg, err := cfg.LoggerConfig()
	if err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	var log *logging.Logger
	switch cfg.Logging.Output {
	case "file", "both":
		if log, err = logging.New(logCfg); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
	case "stdout":
		log = logging.NewWithWriter(logCfg, c.stdout)
	default:
		log = logging.NewWithWriter(logCfg, c.stderr)
	}
	logging.SetDefault(log)

	c.cfg = cfg
	c.log = log
	return nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs,
		// No config is needed to print the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.stdout, "rsidscan %s (commit: %s, built: %s)\n", version, commit, buildTime)
			return nil
		},
	}
}

// minArgs and noArgs report argument errors with the usage exit code.
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErrorf("%s requires at least %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("%s takes no arguments, got %q", cmd.CommandPath(), args)
	}
	return nil
}
