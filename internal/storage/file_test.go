package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/models"
)

// writeFixture writes name -> content into a fresh temp directory.
func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// baseFiles is a small catalog in the bare-string record form.
func baseFiles() map[string]string {
	return map[string]string{
		"salad.json":   `["Caesar", "Greek"]`,
		"carb.json":    `[{"name": "Rice"}, "Potatoes"]`,
		"soup.json":    `["Tomato"]`,
		"extra.json":   `[]`,
		"protein.json": `[{"name": "Tofu", "meat_base": false}, {"name": "Chicken", "meat_base": true}]`,
	}
}

func TestNewFileRepository_JSON(t *testing.T) {
	repo, err := NewFileRepository(writeFixture(t, baseFiles()))
	require.NoError(t, err)

	assert.Equal(t, []models.Salad{{Name: "Caesar"}, {Name: "Greek"}}, repo.SaladItems())
	assert.Equal(t, []models.Carb{{Name: "Rice"}, {Name: "Potatoes"}}, repo.CarbItems())
	assert.Equal(t, []models.Soup{{Name: "Tomato"}}, repo.SoupItems())
	assert.Empty(t, repo.ExtraItems())
	assert.Equal(t, []models.Protein{
		{Name: "Tofu", IsMeatBased: false},
		{Name: "Chicken", IsMeatBased: true},
	}, repo.ProteinItems())

	// No meal file is fine; the meal list is legacy data.
	assert.Empty(t, repo.MealItems())
}

func TestNewFileRepository_JSONCAndYAML(t *testing.T) {
	files := map[string]string{
		"salad.jsonc": `[
			// house salads
			"Caesar",
			"Waldorf", /* trailing comma below */
		]`,
		"carb.yaml": "- Rice\n- name: Quinoa\n",
		"soup.yml":  "- Tomato\n",
		"extra.json": `["Bread"]`,
		"protein.yaml": "- name: Lentils\n  meat_base: false\n" +
			"- name: Beef\n  is_meat_based: true\n",
	}

	repo, err := NewFileRepository(writeFixture(t, files))
	require.NoError(t, err)

	assert.Equal(t, []string{"Caesar", "Waldorf"}, repo.Catalog().Names(models.CategorySalad))
	assert.Equal(t, []string{"Rice", "Quinoa"}, repo.Catalog().Names(models.CategoryCarb))
	assert.Equal(t, []models.Protein{
		{Name: "Lentils", IsMeatBased: false},
		{Name: "Beef", IsMeatBased: true},
	}, repo.ProteinItems())
}

func TestNewFileRepository_ResolvesMeals(t *testing.T) {
	files := baseFiles()
	files["meal.json"] = `[
		{"name": "monday", "protein": "Chicken", "carb": "Rice", "salad": "Caesar", "soup": "Tomato"}
	]`

	repo, err := NewFileRepository(writeFixture(t, files))
	require.NoError(t, err)

	meals := repo.MealItems()
	require.Len(t, meals, 1)
	assert.Equal(t, "monday", meals[0].Name)
	assert.Equal(t, models.Protein{Name: "Chicken", IsMeatBased: true}, meals[0].Protein)
	require.NotNil(t, meals[0].Soup)
	assert.Equal(t, "Tomato", meals[0].Soup.Name)
	assert.Nil(t, meals[0].Extra)
}

func TestNewFileRepository_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(files map[string]string)
		want   error
	}{
		{
			name:   "missing category file",
			mutate: func(f map[string]string) { delete(f, "soup.json") },
			want:   apperrors.ErrLoad,
		},
		{
			name:   "malformed json",
			mutate: func(f map[string]string) { f["carb.json"] = `["Rice"` },
			want:   apperrors.ErrLoad,
		},
		{
			name:   "not a list",
			mutate: func(f map[string]string) { f["salad.json"] = `{"name": "Caesar"}` },
			want:   apperrors.ErrLoad,
		},
		{
			name:   "wrong record type",
			mutate: func(f map[string]string) { f["salad.json"] = `[42]` },
			want:   apperrors.ErrLoad,
		},
		{
			name:   "wrong field type",
			mutate: func(f map[string]string) { f["protein.json"] = `[{"name": "Tofu", "meat_base": "no"}]` },
			want:   apperrors.ErrLoad,
		},
		{
			name:   "missing name",
			mutate: func(f map[string]string) { f["extra.json"] = `[{"label": "Bread"}]` },
			want:   apperrors.ErrValidation,
		},
		{
			name:   "protein without meat indicator",
			mutate: func(f map[string]string) { f["protein.json"] = `[{"name": "Tofu"}]` },
			want:   apperrors.ErrValidation,
		},
		{
			name: "meal references unknown component",
			mutate: func(f map[string]string) {
				f["meal.json"] = `[{"name": "m", "protein": "Duck", "carb": "Rice", "salad": "Caesar"}]`
			},
			want: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := baseFiles()
			tt.mutate(files)

			repo, err := NewFileRepository(writeFixture(t, files))
			require.Error(t, err)
			assert.Nil(t, repo, "no partial catalog may be returned")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNewFileRepository_MissingDirectory(t *testing.T) {
	_, err := NewFileRepository(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrLoad))
}

func TestNewFileRepositoryFromPaths(t *testing.T) {
	dir := writeFixture(t, baseFiles())
	paths := Paths{
		Salad:   filepath.Join(dir, "salad.json"),
		Carb:    filepath.Join(dir, "carb.json"),
		Soup:    filepath.Join(dir, "soup.json"),
		Extra:   filepath.Join(dir, "extra.json"),
		Protein: filepath.Join(dir, "protein.json"),
	}

	repo, err := NewFileRepositoryFromPaths(paths)
	require.NoError(t, err)
	assert.Len(t, repo.SaladItems(), 2)

	// An explicit meal path must exist.
	paths.Meal = filepath.Join(dir, "meal.json")
	_, err = NewFileRepositoryFromPaths(paths)
	assert.True(t, errors.Is(err, apperrors.ErrLoad))

	paths.Meal = ""
	paths.Carb = ""
	_, err = NewFileRepositoryFromPaths(paths)
	assert.True(t, errors.Is(err, apperrors.ErrLoad))
}

func TestFileRepository_AccessorsReturnCopies(t *testing.T) {
	repo, err := NewFileRepository(writeFixture(t, baseFiles()))
	require.NoError(t, err)

	salads := repo.SaladItems()
	salads[0].Name = "mutated"

	assert.Equal(t, "Caesar", repo.SaladItems()[0].Name)
}

func TestFileRepository_Reload(t *testing.T) {
	dir := writeFixture(t, baseFiles())
	repo, err := NewFileRepository(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.json"), []byte(`["Bread", "Olives"]`), 0o644))
	require.NoError(t, repo.Reload())
	assert.Equal(t, []string{"Bread", "Olives"}, repo.Catalog().Names(models.CategoryExtra))

	// A broken source must leave the previous snapshot in place.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "protein.json"), []byte(`[{"name": "Tofu"}]`), 0o644))
	err = repo.Reload()
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Len(t, repo.ProteinItems(), 2)
	assert.Len(t, repo.ExtraItems(), 2)
}

func TestFileRepository_ConcurrentReload(t *testing.T) {
	repo, err := NewFileRepository(writeFixture(t, baseFiles()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Reload())
		}()
		go func() {
			defer wg.Done()
			cat := repo.Catalog()
			assert.Len(t, cat.Salads, 2)
			assert.Len(t, cat.Proteins, 2)
		}()
	}
	wg.Wait()
}

func TestMemoryRepository(t *testing.T) {
	src := &models.Catalog{
		Salads:   []models.Salad{{Name: "Caesar"}},
		Proteins: []models.Protein{{Name: "Tofu"}},
	}
	repo := NewMemoryRepository(src)
	src.Salads[0].Name = "changed"

	assert.Equal(t, []models.Salad{{Name: "Caesar"}}, repo.SaladItems())
	assert.Empty(t, repo.CarbItems())

	empty := NewMemoryRepository(nil)
	assert.NotNil(t, empty.Catalog())
	assert.Empty(t, empty.ProteinItems())
}
