// internal/server/tools.go
package server

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/generator"
	"mcp-meal-generator/internal/models"
	"mcp-meal-generator/internal/storage"
)

type toolHandler func(*protocol.CallToolRequest) (*protocol.CallToolResult, error)

type GenerateMealParams struct {
	IncludeExtra bool `json:"include_extra" description:"Whether to add an extra item to the meal"`
	IncludeSoup  bool `json:"include_soup" description:"Whether to add a soup to the meal"`
	WithMeat     bool `json:"with_meat" description:"Pick a meat-based protein when true, a non-meat one otherwise"`
}

type ListCatalogParams struct {
	Category string `json:"category,omitempty" description:"Restrict the listing to one category (salad, carb, soup, extra, protein, meal)"`
}

// CatalogCategory is the list_catalog payload for a single category.
type CatalogCategory struct {
	Category models.Category `json:"category"`
	Items    interface{}     `json:"items"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	// Convert the Arguments map to JSON bytes, then unmarshal to target
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to marshal arguments", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to unmarshal parameters", err)
	}

	return nil
}

// handleGenerateMeal draws one random meal.
func (s *MealServer) handleGenerateMeal(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GenerateMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	meal, err := s.generator.Generate(generator.Options{
		IncludeExtra: params.IncludeExtra,
		IncludeSoup:  params.IncludeSoup,
		WithMeat:     params.WithMeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate meal: %w", err)
	}

	return s.createJSONResponse(models.NewMealResponse(meal))
}

// handleListCatalog returns the whole catalog or one category of it.
func (s *MealServer) handleListCatalog(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ListCatalogParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Category == "" {
		return s.createJSONResponse(s.repo.Catalog())
	}

	category := models.Category(params.Category)
	if !slices.Contains(models.Categories, category) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown category %q", params.Category),
			map[string]any{"categories": models.Categories})
	}

	return s.createJSONResponse(CatalogCategory{
		Category: category,
		Items:    s.categoryItems(category),
	})
}

func (s *MealServer) categoryItems(category models.Category) interface{} {
	switch category {
	case models.CategorySalad:
		return s.repo.SaladItems()
	case models.CategoryCarb:
		return s.repo.CarbItems()
	case models.CategorySoup:
		return s.repo.SoupItems()
	case models.CategoryExtra:
		return s.repo.ExtraItems()
	case models.CategoryProtein:
		return s.repo.ProteinItems()
	default:
		return s.repo.MealItems()
	}
}

// handleReloadCatalog re-reads the catalog source when the repository supports it.
func (s *MealServer) handleReloadCatalog(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	reloader, ok := s.repo.(storage.Reloader)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "catalog source does not support reload")
	}

	if err := reloader.Reload(); err != nil {
		return nil, fmt.Errorf("failed to reload catalog: %w", err)
	}

	cat := s.repo.Catalog()
	counts := make(map[models.Category]int, len(models.Categories))
	for _, category := range models.Categories {
		counts[category] = cat.Count(category)
	}
	return s.createJSONResponse(map[string]interface{}{
		"reloaded": true,
		"counts":   counts,
	})
}

func (s *MealServer) registerTools() {
	s.tools = map[string]toolHandler{
		"generate_meal":  s.handleGenerateMeal,
		"list_catalog":   s.handleListCatalog,
		"reload_catalog": s.handleReloadCatalog,
	}
}
