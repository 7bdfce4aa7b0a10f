package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fluidnet/internal/codec"
)

func exportCmd(a *app) *cobra.Command {
	var (
		from   string
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a diagram file between formats",
		Long: `Read a diagram and write it as json (the solve request body), yaml or
xml (the tag-based diagnostic rendering).

  fluidnet export loop.json --format xml
  fluidnet export loop.yaml --format json -o loop.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(args[0], from)
			if err != nil {
				return err
			}
			c, err := codec.ForFormat(to)
			if err != nil {
				return fmt.Errorf("%w (supported: %s)", err, strings.Join(codec.Formats(), ", "))
			}

			if output == "" || output == "-" {
				return c.Export(d, cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := c.Export(d, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Input format (default: from extension)")
	cmd.Flags().StringVarP(&to, "format", "f", "json", "Output format: json, yaml or xml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
