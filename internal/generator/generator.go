// Package generator assembles random meals from a catalog repository.
package generator

import (
	"fmt"
	"math/rand/v2"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/models"
	"mcp-meal-generator/internal/storage"
)

// DefaultMealName is the placeholder name given to generated meals.
const DefaultMealName = "meal1"

// Chooser picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

// globalChooser draws from the goroutine-safe top-level math/rand/v2 source.
type globalChooser struct{}

func (globalChooser) IntN(n int) int {
	return rand.IntN(n)
}

// Options selects which optional components to include and the protein kind.
type Options struct {
	IncludeExtra bool
	IncludeSoup  bool
	WithMeat     bool
}

type Generator struct {
	repo     storage.Repository
	chooser  Chooser
	mealName string
}

type Option func(*Generator)

// WithChooser replaces the random source. A chooser shared between
// goroutines must be safe for concurrent use.
func WithChooser(c Chooser) Option {
	return func(g *Generator) {
		g.chooser = c
	}
}

// WithMealName overrides DefaultMealName.
func WithMealName(name string) Option {
	return func(g *Generator) {
		g.mealName = name
	}
}

func New(repo storage.Repository, opts ...Option) *Generator {
	g := &Generator{
		repo:     repo,
		chooser:  globalChooser{},
		mealName: DefaultMealName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate draws one salad, one carb, an optional extra, an optional soup
// and one protein matching opts.WithMeat, each uniformly at random. All
// draws come from the same catalog snapshot.
func (g *Generator) Generate(opts Options) (*models.Meal, error) {
	cat := g.repo.Catalog()

	salad, err := choose(g.chooser, cat.Salads, models.CategorySalad, nil)
	if err != nil {
		return nil, err
	}
	carb, err := choose(g.chooser, cat.Carbs, models.CategoryCarb, nil)
	if err != nil {
		return nil, err
	}

	meal := &models.Meal{
		Name:  g.mealName,
		Salad: salad,
		Carb:  carb,
	}

	if opts.IncludeExtra {
		extra, err := choose(g.chooser, cat.Extras, models.CategoryExtra, nil)
		if err != nil {
			return nil, err
		}
		meal.Extra = &extra
	}
	if opts.IncludeSoup {
		soup, err := choose(g.chooser, cat.Soups, models.CategorySoup, nil)
		if err != nil {
			return nil, err
		}
		meal.Soup = &soup
	}

	proteins := FilterProteins(cat.Proteins, opts.WithMeat)
	meal.Protein, err = choose(g.chooser, proteins, models.CategoryProtein, map[string]any{
		"with_meat": opts.WithMeat,
		"available": len(cat.Proteins),
	})
	if err != nil {
		return nil, err
	}

	return meal, nil
}

func choose[T any](c Chooser, items []T, category models.Category, extra map[string]any) (T, error) {
	var zero T
	if len(items) == 0 {
		ctx := map[string]any{"category": string(category)}
		for k, v := range extra {
			ctx[k] = v
		}
		return zero, apperrors.NewWithContext(apperrors.ErrCodeEmptySelection,
			fmt.Sprintf("no %s available to choose from", describeCategory(category, extra)), ctx)
	}
	return items[c.IntN(len(items))], nil
}

func describeCategory(category models.Category, extra map[string]any) string {
	if category != models.CategoryProtein {
		return string(category)
	}
	if meat, _ := extra["with_meat"].(bool); meat {
		return "meat-based protein"
	}
	return "non-meat protein"
}
