package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	recipemark "github.com/recipemark/recipemark"
	"github.com/recipemark/recipemark/aisle"
	"github.com/recipemark/recipemark/shopping"
	"github.com/recipemark/recipemark/unit"
)

// NewShoppingListCmd creates the shopping-list subcommand: parse every
// recipe, aggregate their ingredients, and print the grouped list.
func NewShoppingListCmd(reader FileReader) *cobra.Command {
	var (
		aislePath  string
		jsonOut    bool
		extensions []string
		unitsPath  string
	)

	cmd := &cobra.Command{
		Use:          "shopping-list <files...>",
		Short:        "Aggregate ingredients across recipes into a shopping list",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exts, err := resolveExtensions(extensions)
			if err != nil {
				return err
			}
			conv, err := loadConverter(reader, unitsPath)
			if err != nil {
				return err
			}
			p := recipemark.New(exts, conv)

			// Recipes parse concurrently; aggregation below keeps the
			// argument order so output stays deterministic.
			recipes := make([]*recipemark.Recipe, len(args))
			var g errgroup.Group
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					data, err := reader.ReadFile(path)
					if err != nil {
						return fmt.Errorf("reading recipe: %w", err)
					}
					src := string(data)
					recipe, rep, err := p.Parse(src)
					if err != nil {
						return fmt.Errorf("parsing %s: %w", path, err)
					}
					if rep.HasErrors() || rep.HasWarnings() {
						if err := rep.Render(cmd.ErrOrStderr(), src, path); err != nil {
							return err
						}
					}
					recipes[i] = recipe
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			list := shopping.NewList(conv)
			for _, recipe := range recipes {
				list.AddRecipe(recipe)
			}

			if aislePath == "" {
				return writeEntries(cmd, list.Entries(), conv, jsonOut)
			}

			data, err := reader.ReadFile(aislePath)
			if err != nil {
				return fmt.Errorf("reading aisle configuration: %w", err)
			}
			conf, rep := aisle.Parse(string(data))
			if err := rep.Render(cmd.ErrOrStderr(), string(data), aislePath); err != nil {
				return err
			}
			return writeCategorized(cmd, list.Categorize(conf), conv, jsonOut)
		},
	}

	cmd.Flags().StringVar(&aislePath, "aisle", "", "aisle configuration for categorization")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON instead of plain text")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil,
		"extension set: default, all, none, or kebab-case extension names")
	cmd.Flags().StringVar(&unitsPath, "units", "", "units file to use instead of the bundled table")
	return cmd
}

func writeEntries(cmd *cobra.Command, entries []shopping.Entry, conv *unit.Converter, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, entry := range entries {
		if err := printEntry(cmd, entry, conv); err != nil {
			return err
		}
	}
	return nil
}

func writeCategorized(cmd *cobra.Command, list shopping.CategorizedList, conv *unit.Converter, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	for i, cat := range list.Categories {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", cat.Category)
		for _, entry := range cat.Entries {
			if err := printEntry(cmd, entry, conv); err != nil {
				return err
			}
		}
	}
	if len(list.Other) > 0 {
		if len(list.Categories) > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "[other]")
		for _, entry := range list.Other {
			if err := printEntry(cmd, entry, conv); err != nil {
				return err
			}
		}
	}
	return nil
}

func printEntry(cmd *cobra.Command, entry shopping.Entry, conv *unit.Converter) error {
	display := entry.Quantity.Display(conv)
	if display == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), entry.Name)
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", entry.Name, display)
	return err
}
