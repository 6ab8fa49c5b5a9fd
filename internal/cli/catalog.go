package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mcp-meal-generator/internal/models"
)

func newCatalogCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the loaded catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := root.openRepository()
			if err != nil {
				return err
			}
			defer closeRepo()

			cat := repo.Catalog()
			out := cmd.OutOrStdout()
			if root.jsonOutput {
				return writeJSON(out, cat)
			}

			for _, category := range models.Categories {
				fmt.Fprintf(out, "%-8s %d\n", category, cat.Count(category))
				if category == models.CategoryProtein {
					for _, p := range cat.Proteins {
						marker := "non-meat"
						if p.IsMeatBased {
							marker = "meat"
						}
						fmt.Fprintf(out, "  - %s (%s)\n", p.Name, marker)
					}
					continue
				}
				names := cat.Names(category)
				if len(names) > 0 {
					fmt.Fprintf(out, "  - %s\n", strings.Join(names, "\n  - "))
				}
			}
			return nil
		},
	}
}
