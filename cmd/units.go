package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/recipemark/recipemark/unit"
)

// NewUnitsCmd creates the units subcommand: list the known units of the
// bundled table or a custom one.
func NewUnitsCmd(reader FileReader) *cobra.Command {
	var (
		system    string
		unitsPath string
	)

	cmd := &cobra.Command{
		Use:          "units",
		Short:        "List the known units",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, err := loadConverter(reader, unitsPath)
			if err != nil {
				return err
			}

			var filter unit.System
			switch strings.ToLower(system) {
			case "":
			case "metric":
				filter = unit.Metric
			case "imperial":
				filter = unit.Imperial
			default:
				return fmt.Errorf("unknown system %q, expected \"metric\" or \"imperial\"", system)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSYMBOL\tQUANTITY\tSYSTEM")
			for _, u := range conv.Units() {
				if system != "" && u.System != filter {
					continue
				}
				sys := string(u.System)
				if sys == "" {
					sys = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Name(), u.Symbol(), u.Quantity, sys)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "only list metric or imperial units")
	cmd.Flags().StringVar(&unitsPath, "units", "", "units file to use instead of the bundled table")
	return cmd
}
