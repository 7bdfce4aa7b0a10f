package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fluidnet/internal/catalog"
	"fluidnet/internal/ui"
)

func catalogCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the component types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			specs := catalog.Default().Specs()

			rows := make([][]string, 0, len(specs))
			for _, s := range specs {
				ids := make([]string, 0, len(s.Parameters))
				for _, p := range s.Parameters {
					ids = append(ids, p.ID)
				}
				params := strings.Join(ids, ", ")
				if params == "" {
					params = "-"
				}
				rows = append(rows, []string{s.Name, fmt.Sprint(s.Inlets), fmt.Sprint(s.Outlets), params})
			}
			ui.Table(out, []string{"TYPE", "INLETS", "OUTLETS", "PARAMETERS"}, rows)

			if !verbose {
				return nil
			}
			for _, s := range specs {
				if len(s.Parameters) == 0 {
					continue
				}
				fmt.Fprintln(out)
				ui.Info.Fprintln(out, "  "+s.Name)
				for _, p := range s.Parameters {
					fmt.Fprintf(out, "    %-16s %-26s default %q\n", p.ID, p.Label, p.Fallback)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show parameter labels and defaults")
	return cmd
}
