package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	recipemark "github.com/recipemark/recipemark"
)

// NewParseCmd creates the parse subcommand: parse one document, optionally
// scale it, and print the model. Diagnostics render to stderr; the exit
// code is non-zero only when no model could be produced.
func NewParseCmd(reader FileReader) *cobra.Command {
	var (
		scale      float64
		servings   uint32
		yamlOut    bool
		extensions []string
		unitsPath  string
	)

	cmd := &cobra.Command{
		Use:          "parse [file]",
		Short:        "Parse a recipe and output its model",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := readInput(cmd, reader, args)
			if err != nil {
				return err
			}

			exts, err := resolveExtensions(extensions)
			if err != nil {
				return err
			}
			conv, err := loadConverter(reader, unitsPath)
			if err != nil {
				return err
			}

			p := recipemark.New(exts, conv)
			recipe, rep, parseErr := p.Parse(src)
			if renderErr := rep.Render(cmd.ErrOrStderr(), src, name); renderErr != nil {
				return renderErr
			}
			if parseErr != nil {
				return fmt.Errorf("parsing %s: %w", name, parseErr)
			}

			switch {
			case servings != 0:
				scaled, scaleRep := recipemark.ScaleToServings(recipe, servings)
				if err := scaleRep.Render(cmd.ErrOrStderr(), src, name); err != nil {
					return err
				}
				recipe = scaled
			case scale != 1:
				scaled, scaleRep := recipemark.Scale(recipe, scale)
				if err := scaleRep.Render(cmd.ErrOrStderr(), src, name); err != nil {
					return err
				}
				recipe = scaled
			}

			return writeModel(cmd.OutOrStdout(), recipe, yamlOut)
		},
	}

	cmd.Flags().Float64Var(&scale, "scale", 1, "multiply every quantity by this factor")
	cmd.Flags().Uint32Var(&servings, "servings", 0, "scale to this serving count using the servings metadata")
	cmd.Flags().BoolVar(&yamlOut, "yaml", false, "output YAML instead of JSON")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil,
		"extension set: default, all, none, or kebab-case extension names")
	cmd.Flags().StringVar(&unitsPath, "units", "", "units file to use instead of the bundled table")
	return cmd
}

// readInput loads the document from the file argument or stdin.
func readInput(cmd *cobra.Command, reader FileReader, args []string) (src, name string, err error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := reader.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading recipe: %w", err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

func writeModel(w io.Writer, v any, yamlOut bool) error {
	if yamlOut {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
