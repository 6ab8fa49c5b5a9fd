package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"mcp-meal-generator/internal/generator"
	"mcp-meal-generator/internal/models"
)

type generateOptions struct {
	extra bool
	soup  bool
	meat  bool
	count int
	seed  uint64
	name  string
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a randomly generated meal",
		Example: `  meal-generator generate --soup --meat
  meal-generator generate --count 5 --seed 42 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", opts.count)
			}

			repo, closeRepo, err := root.openRepository()
			if err != nil {
				return err
			}
			defer closeRepo()

			genOpts := []generator.Option{generator.WithMealName(opts.name)}
			if opts.seed != 0 {
				genOpts = append(genOpts, generator.WithChooser(rand.New(rand.NewPCG(opts.seed, opts.seed))))
			}
			gen := generator.New(repo, genOpts...)

			meals := make([]*models.MealResponse, 0, opts.count)
			for i := 0; i < opts.count; i++ {
				meal, err := gen.Generate(generator.Options{
					IncludeExtra: opts.extra,
					IncludeSoup:  opts.soup,
					WithMeat:     opts.meat,
				})
				if err != nil {
					return err
				}
				meals = append(meals, models.NewMealResponse(meal))
			}

			out := cmd.OutOrStdout()
			if root.jsonOutput {
				if opts.count == 1 {
					return writeJSON(out, meals[0])
				}
				return writeJSON(out, meals)
			}
			for i, meal := range meals {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, meal.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.extra, "extra", false, "Include an extra item")
	cmd.Flags().BoolVar(&opts.soup, "soup", false, "Include a soup")
	cmd.Flags().BoolVar(&opts.meat, "meat", false, "Use a meat-based protein (non-meat otherwise)")
	cmd.Flags().IntVar(&opts.count, "count", 1, "Number of meals to generate")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible output (0 picks a random seed)")
	cmd.Flags().StringVar(&opts.name, "name", generator.DefaultMealName, "Name given to generated meals")

	return cmd
}
