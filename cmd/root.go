// Package cmd implements the recipemark CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recipemark/recipemark/parser"
	"github.com/recipemark/recipemark/unit"
)

// NewRootCmd creates the root recipemark command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recipemark",
		Short:         "recipemark - parse, scale, and aggregate recipe markup",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.AddCommand(NewParseCmd(osFileReader{}))
	root.AddCommand(NewShoppingListCmd(osFileReader{}))
	root.AddCommand(NewUnitsCmd(osFileReader{}))
	return root
}

func rootRunE(_ *cobra.Command, _ []string) error {
	return nil
}

// FileReader abstracts input loading so tests can inject in-memory
// documents.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// resolveExtensions turns --extensions values into a flag set. Accepted
// values are "default", "all", "none", and the kebab-case extension names,
// combined left to right.
func resolveExtensions(names []string) (parser.Extensions, error) {
	if len(names) == 0 {
		return parser.DefaultExtensions, nil
	}
	var exts parser.Extensions
	for _, name := range names {
		switch strings.ToLower(name) {
		case "default":
			exts |= parser.DefaultExtensions
		case "all":
			exts |= parser.AllExtensions
		case "none":
			exts = parser.NoExtensions
		default:
			e, ok := parser.ParseExtension(name)
			if !ok {
				return 0, fmt.Errorf("unknown extension %q", name)
			}
			exts |= e
		}
	}
	return exts, nil
}

// loadConverter builds the unit converter: the bundled table, or the given
// file layered on a fresh builder.
func loadConverter(reader FileReader, unitsPath string) (*unit.Converter, error) {
	if unitsPath == "" {
		return unit.Bundled()
	}
	data, err := reader.ReadFile(unitsPath)
	if err != nil {
		return nil, fmt.Errorf("reading units file: %w", err)
	}
	file, err := unit.ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing units file: %w", err)
	}
	builder := unit.NewBuilder()
	if err := builder.AddFile(file); err != nil {
		return nil, fmt.Errorf("loading units file: %w", err)
	}
	return builder.Build()
}
