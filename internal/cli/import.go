package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mcp-meal-generator/internal/models"
	"mcp-meal-generator/internal/storage"
)

func newImportCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the catalog from --data-dir and store it in the --db-path SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.dbPath == "" {
				return errors.New("import requires --db-path")
			}

			files, err := storage.NewFileRepository(root.dataDir)
			if err != nil {
				return err
			}

			db, err := storage.CreateSQLiteRepository(root.dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ImportCatalog(files.Catalog()); err != nil {
				return fmt.Errorf("failed to import catalog: %w", err)
			}

			cat := db.Catalog()
			counts := make(map[models.Category]int, len(models.Categories))
			for _, category := range models.Categories {
				counts[category] = cat.Count(category)
			}

			out := cmd.OutOrStdout()
			if root.jsonOutput {
				return writeJSON(out, map[string]interface{}{
					"db_path": root.dbPath,
					"counts":  counts,
				})
			}
			fmt.Fprintf(out, "Imported catalog into %s\n", root.dbPath)
			for _, category := range models.Categories {
				fmt.Fprintf(out, "  %-8s %d\n", category, counts[category])
			}
			return nil
		},
	}
}
