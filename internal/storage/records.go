// internal/storage/records.go
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/models"
)

// componentObject is the object form of a salad, carb, soup or extra record.
// The bare string form is handled before decoding into it.
type componentObject struct {
	Name *string `json:"name"`
}

// proteinRecord accepts "meat_base" plus two aliases for the meat indicator.
type proteinRecord struct {
	Name        *string `json:"name"`
	MeatBase    *bool   `json:"meat_base"`
	IsMeatBased *bool   `json:"is_meat_based"`
	Meat        *bool   `json:"meat"`
}

func (p proteinRecord) meatBased() (bool, bool) {
	for _, v := range []*bool{p.MeatBase, p.IsMeatBased, p.Meat} {
		if v != nil {
			return *v, true
		}
	}
	return false, false
}

// mealRecord references its components by name.
type mealRecord struct {
	Name    *string `json:"name"`
	Protein *string `json:"protein"`
	Carb    *string `json:"carb"`
	Salad   *string `json:"salad"`
	Extra   *string `json:"extra,omitempty"`
	Soup    *string `json:"soup,omitempty"`
}

func recordContext(category models.Category, source string, index int) map[string]any {
	return map[string]any{
		"category": string(category),
		"source":   source,
		"index":    index,
	}
}

// decodeNames decodes salad, carb, soup and extra records into their names.
func decodeNames(category models.Category, source string, raws []json.RawMessage) ([]string, error) {
	names := make([]string, 0, len(raws))
	for i, raw := range raws {
		raw = bytes.TrimSpace(raw)
		var name string
		switch {
		case len(raw) > 0 && raw[0] == '"':
			if err := json.Unmarshal(raw, &name); err != nil {
				return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
					fmt.Sprintf("malformed %s record", category), err, recordContext(category, source, i))
			}
		case len(raw) > 0 && raw[0] == '{':
			var obj componentObject
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
					fmt.Sprintf("malformed %s record", category), err, recordContext(category, source, i))
			}
			if obj.Name != nil {
				name = *obj.Name
			}
		default:
			return nil, apperrors.NewWithContext(apperrors.ErrCodeLoad,
				fmt.Sprintf("%s record must be a string or an object, got %s", category, string(raw)),
				recordContext(category, source, i))
		}
		if name == "" {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeValidation,
				fmt.Sprintf("%s record is missing a name", category), recordContext(category, source, i))
		}
		names = append(names, name)
	}
	return names, nil
}

func decodeProteins(source string, raws []json.RawMessage) ([]models.Protein, error) {
	proteins := make([]models.Protein, 0, len(raws))
	for i, raw := range raws {
		var rec proteinRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
				"malformed protein record", err, recordContext(models.CategoryProtein, source, i))
		}
		protein, err := validateProtein(rec)
		if err != nil {
			err.Context = recordContext(models.CategoryProtein, source, i)
			return nil, err
		}
		proteins = append(proteins, protein)
	}
	return proteins, nil
}

func validateProtein(rec proteinRecord) (models.Protein, *apperrors.StructuredError) {
	if rec.Name == nil || *rec.Name == "" {
		return models.Protein{}, apperrors.New(apperrors.ErrCodeValidation, "protein record is missing a name")
	}
	meat, ok := rec.meatBased()
	if !ok {
		return models.Protein{}, apperrors.New(apperrors.ErrCodeValidation,
			fmt.Sprintf("protein %q is missing the meat_base indicator", *rec.Name))
	}
	return models.Protein{Name: *rec.Name, IsMeatBased: meat}, nil
}

func decodeMealRecords(source string, raws []json.RawMessage) ([]mealRecord, error) {
	recs := make([]mealRecord, 0, len(raws))
	for i, raw := range raws {
		var rec mealRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
				"malformed meal record", err, recordContext(models.CategoryMeal, source, i))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// resolveMeals turns name references into components of cat. Every
// reference must name an item that exists in the matching category.
func resolveMeals(cat *models.Catalog, source string, recs []mealRecord) ([]models.Meal, error) {
	salads := indexByName(cat.Salads, func(s models.Salad) string { return s.Name })
	carbs := indexByName(cat.Carbs, func(c models.Carb) string { return c.Name })
	soups := indexByName(cat.Soups, func(s models.Soup) string { return s.Name })
	extras := indexByName(cat.Extras, func(e models.Extra) string { return e.Name })
	proteins := indexByName(cat.Proteins, func(p models.Protein) string { return p.Name })

	meals := make([]models.Meal, 0, len(recs))
	for i, rec := range recs {
		ctx := recordContext(models.CategoryMeal, source, i)
		if rec.Name == nil || *rec.Name == "" {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeValidation, "meal record is missing a name", ctx)
		}
		meal := models.Meal{Name: *rec.Name}

		var err error
		if meal.Protein, err = lookup(proteins, models.CategoryProtein, rec.Protein, ctx); err != nil {
			return nil, err
		}
		if meal.Carb, err = lookup(carbs, models.CategoryCarb, rec.Carb, ctx); err != nil {
			return nil, err
		}
		if meal.Salad, err = lookup(salads, models.CategorySalad, rec.Salad, ctx); err != nil {
			return nil, err
		}
		if rec.Extra != nil {
			extra, err := lookup(extras, models.CategoryExtra, rec.Extra, ctx)
			if err != nil {
				return nil, err
			}
			meal.Extra = &extra
		}
		if rec.Soup != nil {
			soup, err := lookup(soups, models.CategorySoup, rec.Soup, ctx)
			if err != nil {
				return nil, err
			}
			meal.Soup = &soup
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

func indexByName[T any](items []T, name func(T) string) map[string]T {
	idx := make(map[string]T, len(items))
	for _, item := range items {
		if _, dup := idx[name(item)]; !dup {
			idx[name(item)] = item
		}
	}
	return idx
}

func lookup[T any](idx map[string]T, category models.Category, ref *string, ctx map[string]any) (T, error) {
	var zero T
	if ref == nil || *ref == "" {
		return zero, apperrors.NewWithContext(apperrors.ErrCodeValidation,
			fmt.Sprintf("meal record is missing its %s", category), ctx)
	}
	item, ok := idx[*ref]
	if !ok {
		return zero, apperrors.NewWithContext(apperrors.ErrCodeValidation,
			fmt.Sprintf("meal references unknown %s %q", category, *ref), ctx)
	}
	return item, nil
}

// toMealRecords is the inverse of resolveMeals, used when persisting a catalog.
func toMealRecords(meals []models.Meal) []mealRecord {
	recs := make([]mealRecord, 0, len(meals))
	for _, m := range meals {
		rec := mealRecord{
			Name:    strPtr(m.Name),
			Protein: strPtr(m.Protein.Name),
			Carb:    strPtr(m.Carb.Name),
			Salad:   strPtr(m.Salad.Name),
		}
		if m.Extra != nil {
			rec.Extra = strPtr(m.Extra.Name)
		}
		if m.Soup != nil {
			rec.Soup = strPtr(m.Soup.Name)
		}
		recs = append(recs, rec)
	}
	return recs
}

func strPtr(s string) *string {
	return &s
}

// validateCatalog applies the load-time checks to a catalog built in code.
func validateCatalog(cat *models.Catalog, source string) error {
	for _, category := range []models.Category{models.CategorySalad, models.CategoryCarb, models.CategorySoup, models.CategoryExtra} {
		for i, name := range cat.Names(category) {
			if name == "" {
				return apperrors.NewWithContext(apperrors.ErrCodeValidation,
					fmt.Sprintf("%s record is missing a name", category), recordContext(category, source, i))
			}
		}
	}
	for i, p := range cat.Proteins {
		if p.Name == "" {
			return apperrors.NewWithContext(apperrors.ErrCodeValidation,
				"protein record is missing a name", recordContext(models.CategoryProtein, source, i))
		}
	}
	if _, err := resolveMeals(cat, source, toMealRecords(cat.Meals)); err != nil {
		return err
	}
	return nil
}
