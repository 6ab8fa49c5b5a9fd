// internal/storage/repository.go
package storage

import (
	"slices"
	"sync/atomic"

	"mcp-meal-generator/internal/models"
)

// Repository exposes a loaded catalog. Implementations load once at
// construction and are read-only afterwards, so they are safe for
// concurrent readers.
type Repository interface {
	// Catalog returns the current snapshot. The snapshot must not be modified.
	Catalog() *models.Catalog
	SaladItems() []models.Salad
	CarbItems() []models.Carb
	SoupItems() []models.Soup
	ExtraItems() []models.Extra
	ProteinItems() []models.Protein
	MealItems() []models.Meal
}

// Reloader is implemented by repositories whose source can be re-read
// while the process is running.
type Reloader interface {
	Reload() error
}

// snapshot holds the current catalog behind an atomic pointer. A reload
// builds a complete catalog first and then swaps it in, so readers see
// either the old catalog or the new one.
type snapshot struct {
	current atomic.Pointer[models.Catalog]
}

func (s *snapshot) store(c *models.Catalog) {
	s.current.Store(c)
}

func (s *snapshot) Catalog() *models.Catalog {
	return s.current.Load()
}

func (s *snapshot) SaladItems() []models.Salad {
	return slices.Clone(s.current.Load().Salads)
}

func (s *snapshot) CarbItems() []models.Carb {
	return slices.Clone(s.current.Load().Carbs)
}

func (s *snapshot) SoupItems() []models.Soup {
	return slices.Clone(s.current.Load().Soups)
}

func (s *snapshot) ExtraItems() []models.Extra {
	return slices.Clone(s.current.Load().Extras)
}

func (s *snapshot) ProteinItems() []models.Protein {
	return slices.Clone(s.current.Load().Proteins)
}

func (s *snapshot) MealItems() []models.Meal {
	return slices.Clone(s.current.Load().Meals)
}

// MemoryRepository serves a catalog built in code.
type MemoryRepository struct {
	snapshot
}

// NewMemoryRepository copies cat so later changes by the caller are not observed.
func NewMemoryRepository(cat *models.Catalog) *MemoryRepository {
	if cat == nil {
		cat = &models.Catalog{}
	}
	cp := &models.Catalog{
		Salads:   slices.Clone(cat.Salads),
		Carbs:    slices.Clone(cat.Carbs),
		Soups:    slices.Clone(cat.Soups),
		Extras:   slices.Clone(cat.Extras),
		Proteins: slices.Clone(cat.Proteins),
		Meals:    slices.Clone(cat.Meals),
	}
	repo := &MemoryRepository{}
	repo.store(cp)
	return repo
}
