package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SergeiSkv/rulecheck/gosrc"
	"github.com/SergeiSkv/rulecheck/program"
)

var (
	lowerFormat string
	lowerOutput string
)

var lowerCmd = &cobra.Command{
	Use:   "lower [patterns...]",
	Short: "Write the program model of Go packages",
	Long: `Type-checks Go packages and writes the program model the analyzers run on.
The documents can be edited and analyzed again with "rulecheck model.yaml".
Several packages are written as a stream of documents in the same format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := program.ParseFormat(lowerFormat)
		if err != nil {
			return err
		}

		units, err := gosrc.Load(cmd.Context(), args, gosrc.LoadConfig{Tests: withTests})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if lowerOutput != "" && lowerOutput != "-" {
			file, err := os.Create(lowerOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer func() { _ = file.Close() }()
			out = file
		}

		return writeUnits(out, units, format)
	},
}

func init() {
	lowerCmd.Flags().StringVar(&lowerFormat, "format", string(program.FormatYAML), "Output format: yaml, json or msgpack")
	lowerCmd.Flags().StringVarP(&lowerOutput, "output", "o", "", "Output file (default stdout)")
	lowerCmd.Flags().BoolVar(&withTests, "tests", false, "Also lower test files")
}

func writeUnits(w io.Writer, units []*program.Unit, format program.Format) error {
	for i, unit := range units {
		if i > 0 && format == program.FormatYAML {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if err := program.Encode(w, unit, format); err != nil {
			return fmt.Errorf("failed to encode %s: %w", unit.Name, err)
		}
		slog.Debug("Unit written", "unit", unit.Name, "types", len(unit.Types), "functions", len(unit.Functions))
	}
	return nil
}
