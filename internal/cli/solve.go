package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fluidnet/internal/domain"
	"fluidnet/internal/solver"
	"fluidnet/internal/ui"
	"fluidnet/internal/watcher"
)

// Exit statuses of the solve command
const (
	exitFailed   = 1
	exitMarginal = 2
)

func solveCmd(a *app) *cobra.Command {
	var (
		format    string
		solverURL string
		asJSON    bool
		record    bool
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "solve <file>",
		Short: "Send a diagram file to the solver",
		Long: `Send a saved diagram (JSON request body, YAML or XML export) to the
solver and print the outcome and per-port results.

Exit status is 0 on success, 2 when the solution did not converge and 1 on
any failure. With --watch the file is solved again on every save until
interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("solver") {
				a.cfg.Solver.URL = solverURL
			}
			client, err := a.cfg.NewSolverClient()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			run := func() (domain.Severity, error) {
				d, err := readDiagram(args[0], format)
				if err != nil {
					return domain.SeverityError, err
				}

				started := time.Now()
				resp, err := client.Solve(ctx, d)
				if err != nil {
					log.Printf("Solve failed: %v", err)
				}
				outcome := solver.Classify(resp, err)

				if record {
					recordCLISolve(a, d, outcome, started, err != nil)
				}
				return outcome.Severity, printOutcome(cmd.OutOrStdout(), outcome, asJSON)
			}

			if watch {
				return watchAndSolve(ctx, cmd.OutOrStdout(), args[0], run)
			}

			severity, err := run()
			if err != nil {
				return err
			}
			switch severity {
			case domain.SeveritySuccess:
				return nil
			case domain.SeverityWarning:
				return &ExitError{Code: exitMarginal}
			}
			return &ExitError{Code: exitFailed}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: json, yaml or xml (default: from extension)")
	cmd.Flags().StringVar(&solverURL, "solver", "", "Solver endpoint URL (overrides solver.url)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outcome as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "Record the attempt in the solve journal")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Solve again whenever the file changes")
	return cmd
}

func printOutcome(out io.Writer, outcome solver.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	ui.Notification(out, domain.Notification{Message: outcome.Message, Severity: outcome.Severity})
	if outcome.ShowsResults() && len(outcome.Result) > 0 {
		fmt.Fprintln(out)
		ui.Table(out, []string{"PORT", "VALUE"}, resultRows(outcome.Result))
	}
	return nil
}

// watchAndSolve runs solve once and again after every change to path.
// Unreadable or invalid files are reported and watching continues.
func watchAndSolve(ctx context.Context, out io.Writer, path string, solve func() (domain.Severity, error)) error {
	report := func() {
		if _, err := solve(); err != nil {
			ui.Bad.Fprintf(out, "  %v\n", err)
		}
		ui.Subtle.Fprintf(out, "  Watching %s, ctrl+c to stop\n", path)
	}
	report()

	err := watcher.New(path, report).Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func resultRows(result map[string]string) [][]string {
	ports := make([]string, 0, len(result))
	for p := range result {
		ports = append(ports, p)
	}
	sort.Strings(ports)

	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		rows = append(rows, []string{p, result[p]})
	}
	return rows
}

func recordCLISolve(a *app, d domain.Diagram, outcome solver.Outcome, started time.Time, unreachable bool) {
	journal, err := openJournal(a)
	if err != nil {
		log.Printf("Failed to open journal: %v", err)
		return
	}
	if journal == nil {
		return
	}
	defer journal.Close()

	digest := ""
	if body, err := solver.EncodeRequest(d); err == nil {
		digest = solver.RequestDigest(body)
	}

	overlays := 0
	if outcome.ShowsResults() {
		overlays = len(outcome.Result)
	}
	rec := &domain.SolveRecord{
		ID:            uuid.NewString(),
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Status:        outcome.Status,
		Severity:      outcome.Severity,
		Message:       outcome.Message,
		Unreachable:   unreachable,
		Components:    d.Len(),
		Connections:   d.ConnectionCount(),
		Overlays:      overlays,
		RequestDigest: digest,
		Result:        outcome.Result,
	}
	if err := journal.RecordSolve(context.Background(), rec); err != nil {
		log.Printf("Failed to journal solve: %v", err)
	}
}
