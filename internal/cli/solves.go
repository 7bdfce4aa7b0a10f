package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fluidnet/internal/domain"
	"fluidnet/internal/ui"
)

func solvesCmd(a *app) *cobra.Command {
	var (
		limit int
		last  bool
	)

	cmd := &cobra.Command{
		Use:   "solves",
		Short: "List recorded solve attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := openJournal(a)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if journal == nil {
				ui.Warn.Fprintln(out, "  Solve journal is disabled")
				return nil
			}
			defer journal.Close()

			if last {
				rec, err := journal.LastSolve(cmd.Context())
				if err != nil {
					return err
				}
				if rec == nil {
					ui.Subtle.Fprintln(out, "  No solves recorded")
					return nil
				}
				printRecord(out, rec)
				return nil
			}

			records, err := journal.ListSolves(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				ui.Subtle.Fprintln(out, "  No solves recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				msg := strings.SplitN(r.Message, "\n", 2)[0]
				rows = append(rows, []string{
					r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					shortID(r.ID),
					ui.Icon(r.Severity) + " " + string(r.Status),
					fmt.Sprintf("%d/%d", r.Components, r.Connections),
					fmt.Sprint(r.Overlays),
					r.Duration().Round(time.Millisecond).String(),
					msg,
				})
			}
			ui.Table(out, []string{"FINISHED", "ID", "STATUS", "COMP/CONN", "OVERLAYS", "TOOK", "MESSAGE"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&last, "last", false, "Show the most recent attempt with its port values")
	return cmd
}

func printRecord(out io.Writer, rec *domain.SolveRecord) {
	fmt.Fprintf(out, "  ID:       %s\n", rec.ID)
	fmt.Fprintf(out, "  Finished: %s (took %s)\n", rec.FinishedAt.Local().Format("2006-01-02 15:04:05"), rec.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "  Diagram:  %d components, %d connections, request %s\n", rec.Components, rec.Connections, shortID(rec.RequestDigest))
	ui.Notification(out, domain.Notification{Message: rec.Message, Severity: rec.Severity})
	if len(rec.Result) > 0 {
		fmt.Fprintln(out)
		ui.Table(out, []string{"PORT", "VALUE"}, resultRows(rec.Result))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
