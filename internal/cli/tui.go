package cli

import (
	"context"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"fluidnet/internal/service"
	"fluidnet/internal/tui"
)

func tuiCmd(a *app) *cobra.Command {
	var (
		solverURL string
		noJournal bool
		logFile   string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit and solve a diagram in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("solver") {
				cfg.Solver.URL = solverURL
			}
			if noJournal {
				cfg.Journal.Disabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// the alternate screen owns the terminal
			if logFile != "" {
				f, err := tea.LogToFile(logFile, "fluidnet")
				if err != nil {
					return err
				}
				defer f.Close()
			} else {
				log.SetOutput(io.Discard)
			}

			journal, err := openJournal(a)
			if err != nil {
				return err
			}
			if journal != nil {
				defer journal.Close()
			}
			client, err := cfg.NewSolverClient()
			if err != nil {
				return err
			}

			bus := service.NewEventBus()
			session := service.NewSession(service.Options{
				Solver:         client,
				Journal:        journal,
				Bus:            bus,
				NotifyDuration: cfg.Notification.Duration.Duration(),
			})
			defer session.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			p := tea.NewProgram(tui.New(ctx, session, bus), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&solverURL, "solver", "", "Solver endpoint URL (overrides solver.url)")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record solve attempts")
	cmd.Flags().StringVar(&logFile, "log", "", "Write logs to this file")
	return cmd
}
