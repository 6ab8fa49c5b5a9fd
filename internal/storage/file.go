// internal/storage/file.go
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/models"
)

// Extensions probed, in order, when locating a category file in a directory.
var Extensions = []string{".json", ".jsonc", ".yaml", ".yml"}

// Paths locates one data file per category. Meal is optional.
type Paths struct {
	Salad   string
	Carb    string
	Soup    string
	Extra   string
	Protein string
	Meal    string
}

func (p Paths) get(category models.Category) string {
	switch category {
	case models.CategorySalad:
		return p.Salad
	case models.CategoryCarb:
		return p.Carb
	case models.CategorySoup:
		return p.Soup
	case models.CategoryExtra:
		return p.Extra
	case models.CategoryProtein:
		return p.Protein
	case models.CategoryMeal:
		return p.Meal
	}
	return ""
}

func (p *Paths) set(category models.Category, path string) {
	switch category {
	case models.CategorySalad:
		p.Salad = path
	case models.CategoryCarb:
		p.Carb = path
	case models.CategorySoup:
		p.Soup = path
	case models.CategoryExtra:
		p.Extra = path
	case models.CategoryProtein:
		p.Protein = path
	case models.CategoryMeal:
		p.Meal = path
	}
}

// PathsFromDir finds <dir>/<category>.<ext> for every category. A missing
// meal file leaves Paths.Meal empty; any other missing file is a load error.
func PathsFromDir(dir string) (Paths, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Paths{}, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
			"catalog directory not found", err, map[string]any{"dir": dir})
	}
	if !info.IsDir() {
		return Paths{}, apperrors.NewWithContext(apperrors.ErrCodeLoad,
			"catalog location is not a directory", map[string]any{"dir": dir})
	}

	var paths Paths
	for _, category := range models.Categories {
		path, ok := probe(dir, string(category))
		if !ok && category != models.CategoryMeal {
			return Paths{}, apperrors.NewWithContext(apperrors.ErrCodeLoad,
				fmt.Sprintf("no %s data file in %s", category, dir),
				map[string]any{"category": string(category), "extensions": Extensions})
		}
		paths.set(category, path)
	}
	return paths, nil
}

func probe(dir, base string) (string, bool) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, base+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// FileRepository loads the catalog from JSON, JSONC or YAML files.
type FileRepository struct {
	snapshot
	mu    sync.Mutex // serializes Reload
	dir   string
	paths Paths
}

// NewFileRepository loads every category from dir.
func NewFileRepository(dir string) (*FileRepository, error) {
	paths, err := PathsFromDir(dir)
	if err != nil {
		return nil, err
	}
	repo := &FileRepository{dir: dir, paths: paths}
	if err := repo.Reload(); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewFileRepositoryFromPaths loads every category from explicit paths.
// All paths except Meal are required.
func NewFileRepositoryFromPaths(paths Paths) (*FileRepository, error) {
	repo := &FileRepository{paths: paths}
	if err := repo.Reload(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Reload re-reads every file and swaps in the new catalog. On error the
// previous catalog stays in place.
func (r *FileRepository) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := r.paths
	if r.dir != "" {
		var err error
		if paths, err = PathsFromDir(r.dir); err != nil {
			return err
		}
	}

	cat, err := loadCatalogFiles(paths)
	if err != nil {
		return err
	}

	r.paths = paths
	r.store(cat)
	slog.Info("catalog loaded",
		"source", "file",
		"salads", len(cat.Salads),
		"carbs", len(cat.Carbs),
		"soups", len(cat.Soups),
		"extras", len(cat.Extras),
		"proteins", len(cat.Proteins),
		"meals", len(cat.Meals),
	)
	return nil
}

func loadCatalogFiles(paths Paths) (*models.Catalog, error) {
	raws := make(map[models.Category][]json.RawMessage, len(models.Categories))
	for _, category := range models.Categories {
		path := paths.get(category)
		if path == "" {
			if category == models.CategoryMeal {
				continue
			}
			return nil, apperrors.NewWithContext(apperrors.ErrCodeLoad,
				fmt.Sprintf("no path configured for %s data", category),
				map[string]any{"category": string(category)})
		}
		records, err := readRecords(path)
		if err != nil {
			return nil, err
		}
		raws[category] = records
	}

	cat := &models.Catalog{}
	var err error
	if cat.Salads, err = decodeComponents(models.CategorySalad, paths.Salad, raws, func(n string) models.Salad { return models.Salad{Name: n} }); err != nil {
		return nil, err
	}
	if cat.Carbs, err = decodeComponents(models.CategoryCarb, paths.Carb, raws, func(n string) models.Carb { return models.Carb{Name: n} }); err != nil {
		return nil, err
	}
	if cat.Soups, err = decodeComponents(models.CategorySoup, paths.Soup, raws, func(n string) models.Soup { return models.Soup{Name: n} }); err != nil {
		return nil, err
	}
	if cat.Extras, err = decodeComponents(models.CategoryExtra, paths.Extra, raws, func(n string) models.Extra { return models.Extra{Name: n} }); err != nil {
		return nil, err
	}
	if cat.Proteins, err = decodeProteins(paths.Protein, raws[models.CategoryProtein]); err != nil {
		return nil, err
	}

	if paths.Meal != "" {
		recs, err := decodeMealRecords(paths.Meal, raws[models.CategoryMeal])
		if err != nil {
			return nil, err
		}
		if cat.Meals, err = resolveMeals(cat, paths.Meal, recs); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func decodeComponents[T any](category models.Category, source string, raws map[models.Category][]json.RawMessage, build func(string) T) ([]T, error) {
	names, err := decodeNames(category, source, raws[category])
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(names))
	for _, n := range names {
		items = append(items, build(n))
	}
	return items, nil
}

// readRecords reads a file holding a top-level list and returns its raw
// elements. YAML is normalized to JSON first.
func readRecords(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
			"failed to read data file", err, map[string]any{"path": path})
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
				"failed to parse YAML data file", err, map[string]any{"path": path})
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
				"failed to normalize YAML data file", err, map[string]any{"path": path})
		}
	default:
		// JSON and JSONC both go through the comment and trailing-comma stripper.
		data = jsonc.ToJSON(data)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
			"data file must contain a list of records", err, map[string]any{"path": path})
	}
	return records, nil
}
