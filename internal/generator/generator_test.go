package generator

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/models"
	"mcp-meal-generator/internal/storage"
)

// sequenceChooser replays fixed indexes, wrapping each into range.
type sequenceChooser struct {
	picks []int
	calls []int
}

func (s *sequenceChooser) IntN(n int) int {
	s.calls = append(s.calls, n)
	if len(s.picks) == 0 {
		return 0
	}
	v := s.picks[0]
	s.picks = s.picks[1:]
	return v % n
}

func scenarioCatalog() *models.Catalog {
	return &models.Catalog{
		Salads:   []models.Salad{{Name: "Caesar"}},
		Carbs:    []models.Carb{{Name: "Rice"}},
		Soups:    []models.Soup{{Name: "Tomato"}},
		Extras:   []models.Extra{},
		Proteins: []models.Protein{{Name: "Tofu", IsMeatBased: false}, {Name: "Chicken", IsMeatBased: true}},
	}
}

func richCatalog() *models.Catalog {
	return &models.Catalog{
		Salads:   []models.Salad{{Name: "Caesar"}, {Name: "Greek"}, {Name: "Waldorf"}},
		Carbs:    []models.Carb{{Name: "Rice"}, {Name: "Potatoes"}},
		Soups:    []models.Soup{{Name: "Tomato"}, {Name: "Minestrone"}},
		Extras:   []models.Extra{{Name: "Bread"}, {Name: "Olives"}},
		Proteins: mixedProteins,
	}
}

func TestGenerate_SoupWithMeat(t *testing.T) {
	g := New(storage.NewMemoryRepository(scenarioCatalog()))

	meal, err := g.Generate(Options{IncludeSoup: true, WithMeat: true})
	require.NoError(t, err)

	assert.Equal(t, DefaultMealName, meal.Name)
	assert.Equal(t, "Caesar", meal.Salad.Name)
	assert.Equal(t, "Rice", meal.Carb.Name)
	require.NotNil(t, meal.Soup)
	assert.Equal(t, "Tomato", meal.Soup.Name)
	assert.Nil(t, meal.Extra)
	assert.Equal(t, models.Protein{Name: "Chicken", IsMeatBased: true}, meal.Protein)
}

func TestGenerate_PlainNonMeat(t *testing.T) {
	g := New(storage.NewMemoryRepository(scenarioCatalog()))

	meal, err := g.Generate(Options{})
	require.NoError(t, err)

	assert.Equal(t, "Caesar", meal.Salad.Name)
	assert.Equal(t, "Rice", meal.Carb.Name)
	assert.Nil(t, meal.Soup)
	assert.Nil(t, meal.Extra)
	assert.Equal(t, "Tofu", meal.Protein.Name)
}

func TestGenerate_NoNonMeatProtein(t *testing.T) {
	cat := scenarioCatalog()
	cat.Proteins = []models.Protein{{Name: "Beef", IsMeatBased: true}}
	g := New(storage.NewMemoryRepository(cat))

	meal, err := g.Generate(Options{})
	require.Error(t, err)
	assert.Nil(t, meal)
	assert.True(t, errors.Is(err, apperrors.ErrEmptySelection))

	var se *apperrors.StructuredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "protein", se.Context["category"])
	assert.Equal(t, false, se.Context["with_meat"])
	assert.Contains(t, se.Message, "non-meat protein")
}

func TestGenerate_NoMeatProtein(t *testing.T) {
	cat := scenarioCatalog()
	cat.Proteins = []models.Protein{{Name: "Tofu"}}
	g := New(storage.NewMemoryRepository(cat))

	_, err := g.Generate(Options{WithMeat: true})
	assert.True(t, errors.Is(err, apperrors.ErrEmptySelection))
}

func TestGenerate_EmptyCategories(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Catalog)
		opts     Options
		category string
	}{
		{"salads", func(c *models.Catalog) { c.Salads = nil }, Options{}, "salad"},
		{"carbs", func(c *models.Catalog) { c.Carbs = nil }, Options{}, "carb"},
		{"extras requested", func(c *models.Catalog) {}, Options{IncludeExtra: true}, "extra"},
		{"soups requested", func(c *models.Catalog) { c.Soups = nil }, Options{IncludeSoup: true}, "soup"},
		{"proteins", func(c *models.Catalog) { c.Proteins = nil }, Options{WithMeat: true}, "protein"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := scenarioCatalog()
			tt.mutate(cat)
			g := New(storage.NewMemoryRepository(cat))

			meal, err := g.Generate(tt.opts)
			require.Error(t, err)
			assert.Nil(t, meal)

			var se *apperrors.StructuredError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, apperrors.ErrCodeEmptySelection, se.Code)
			assert.Equal(t, tt.category, se.Context["category"])
		})
	}
}

func TestGenerate_EmptyOptionalCategoriesIgnoredWhenNotRequested(t *testing.T) {
	cat := scenarioCatalog()
	cat.Soups = nil
	g := New(storage.NewMemoryRepository(cat))

	_, err := g.Generate(Options{WithMeat: true})
	assert.NoError(t, err)
}

func TestGenerate_DrawOrder(t *testing.T) {
	chooser := &sequenceChooser{picks: []int{2, 1, 1, 0, 1}}
	g := New(storage.NewMemoryRepository(richCatalog()), WithChooser(chooser), WithMealName("lunch"))

	meal, err := g.Generate(Options{IncludeExtra: true, IncludeSoup: true, WithMeat: true})
	require.NoError(t, err)

	// salad, carb, extra, soup, then the filtered protein list.
	assert.Equal(t, []int{3, 2, 2, 2, 2}, chooser.calls)
	assert.Equal(t, "lunch", meal.Name)
	assert.Equal(t, "Waldorf", meal.Salad.Name)
	assert.Equal(t, "Potatoes", meal.Carb.Name)
	assert.Equal(t, "Olives", meal.Extra.Name)
	assert.Equal(t, "Tomato", meal.Soup.Name)
	assert.Equal(t, "Beef", meal.Protein.Name)
}

func TestGenerate_SeededIsReproducible(t *testing.T) {
	repo := storage.NewMemoryRepository(richCatalog())
	opts := Options{IncludeExtra: true, IncludeSoup: true}

	a := New(repo, WithChooser(rand.New(rand.NewPCG(7, 11))))
	b := New(repo, WithChooser(rand.New(rand.NewPCG(7, 11))))

	for i := 0; i < 20; i++ {
		ma, err := a.Generate(opts)
		require.NoError(t, err)
		mb, err := b.Generate(opts)
		require.NoError(t, err)
		assert.Equal(t, ma, mb)
	}
}

func TestGenerate_Properties(t *testing.T) {
	g := New(storage.NewMemoryRepository(richCatalog()), WithChooser(rand.New(rand.NewPCG(1, 2))))

	for i := 0; i < 200; i++ {
		opts := Options{IncludeExtra: i%2 == 0, IncludeSoup: i%3 == 0, WithMeat: i%5 < 2}

		meal, err := g.Generate(opts)
		require.NoError(t, err)

		assert.NotEmpty(t, meal.Salad.Name)
		assert.NotEmpty(t, meal.Carb.Name)
		assert.NotEmpty(t, meal.Protein.Name)
		assert.Equal(t, opts.WithMeat, meal.Protein.IsMeatBased)
		assert.Equal(t, opts.IncludeExtra, meal.Extra != nil)
		assert.Equal(t, opts.IncludeSoup, meal.Soup != nil)
	}
}

func TestGenerate_ConcurrentCallers(t *testing.T) {
	g := New(storage.NewMemoryRepository(richCatalog()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(meat bool) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				meal, err := g.Generate(Options{WithMeat: meat, IncludeSoup: true})
				if assert.NoError(t, err) {
					assert.Equal(t, meat, meal.Protein.IsMeatBased)
				}
			}
		}(i%2 == 0)
	}
	wg.Wait()
}
