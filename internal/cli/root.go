// Package cli implements the board command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/internal/paths"
	"github.com/mesh-intelligence/kanban/internal/store"
	"github.com/mesh-intelligence/kanban/pkg/kanban"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// sysError marks failures of the environment (storage, filesystem) as
// opposed to bad input.
type sysError struct{ err error }

func (e sysError) Error() string { return e.err.Error() }
func (e sysError) Unwrap() error { return e.err }

func systemErr(err error) error {
	if err == nil {
		return nil
	}
	return sysError{err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}

// app carries the global flags and the state resolved from them. Each
// NewRootCmd call gets its own.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool

	settings settings
	log      *log.Logger
	stderr   io.Writer
}

// NewRootCmd creates the "board" command with its global flags and
// subcommands. Diagnostics go to stderr.
func NewRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}
	root := &cobra.Command{
		Use:           "board",
		Short:         "A single-user kanban board",
		Long:          "board keeps tasks in an ordered pipeline of columns and persists the\nboard to a configurable blob store after every change.",
		Version:       kanban.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $"+paths.EnvConfigDir+" or the platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: config data_dir, $"+paths.EnvDataDir+" or the platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newMoveCmd(a),
		newAdvanceCmd(a),
		newStageCmd(a),
		newReopenCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newSearchCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemErr(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return systemErr(err)
	}
	s, err := readSettings(v, a.dataDir)
	if err != nil {
		return err
	}
	a.settings = s
	a.log = newLogger(a.stderr, s.logLevel, a.verbose)
	a.log.WithFields(log.Fields{"config_dir": configDir, "data_dir": s.board.DataDir, "backend": s.board.Backend}).Debug("configuration loaded")
	return nil
}

// withStore opens the configured store, runs fn and closes the store.
func (a *app) withStore(ctx context.Context, fn func(*store.Store) error) error {
	s, err := kanban.Open(ctx, a.settings.board, a.log)
	if err != nil {
		return systemErr(err)
	}
	runErr := fn(s)
	if err := s.Close(context.WithoutCancel(ctx)); err != nil {
		a.log.WithError(err).Warn("closing store")
	}
	return runErr
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return exitCode(err)
}

// Execute runs the CLI against the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
