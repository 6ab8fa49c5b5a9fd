package generator

import "mcp-meal-generator/internal/models"

// FilterProteins returns the proteins whose IsMeatBased equals wantMeat, in
// their original order. The result never aliases items.
func FilterProteins(items []models.Protein, wantMeat bool) []models.Protein {
	filtered := make([]models.Protein, 0, len(items))
	for _, p := range items {
		if p.IsMeatBased == wantMeat {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
