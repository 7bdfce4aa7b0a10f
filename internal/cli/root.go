// Package cli implements the fluidnet command line.
package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"fluidnet/internal/config"
	"fluidnet/internal/ui"
)

var version = "0.3.0"

// ExitError carries a process exit status out of a command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status for an error returned by Execute
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// app is the state shared by every command of one invocation
type app struct {
	configPath string
	cfg        *config.Config
	cfgSource  string
}

func (a *app) loadConfig() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if a.configPath != "" {
		cfg, path, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgSource = path
	return nil
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fluidnet",
		Short: "fluidnet, a fluid network diagram editor",
		Long: ui.Brand.Sprint("fluidnet") + " assembles fluid networks from pumps, pipes and valves\n" +
			ui.Subtle.Sprint("and sends them to a remote solver for flow and pressure results"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			return a.loadConfig()
		},
	}
	root.SetVersionTemplate("fluidnet {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search $FLUIDNET_CONFIG, ./fluidnet.yaml, XDG dirs)")

	root.AddCommand(
		serveCmd(a),
		catalogCmd(a),
		solveCmd(a),
		exportCmd(a),
		solvesCmd(a),
		tuiCmd(a),
		configCmd(a),
	)
	return root
}

// Execute runs the command line
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		var ee *ExitError
		if !errors.As(err, &ee) || ee.Err != nil {
			ui.Bad.Fprintf(root.ErrOrStderr(), "fluidnet: %v\n", err)
		}
	}
	return err
}
