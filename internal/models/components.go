// internal/models/components.go
package models

// Category names a class of meal component.
type Category string

const (
	CategorySalad   Category = "salad"
	CategoryCarb    Category = "carb"
	CategorySoup    Category = "soup"
	CategoryExtra   Category = "extra"
	CategoryProtein Category = "protein"
	CategoryMeal    Category = "meal"
)

// Categories lists every category in load order. Meals come last because
// they reference the other categories by name.
var Categories = []Category{
	CategorySalad,
	CategoryCarb,
	CategorySoup,
	CategoryExtra,
	CategoryProtein,
	CategoryMeal,
}

type Salad struct {
	Name string `json:"name"`
}

type Carb struct {
	Name string `json:"name"`
}

type Soup struct {
	Name string `json:"name"`
}

type Extra struct {
	Name string `json:"name"`
}

type Protein struct {
	Name        string `json:"name"`
	IsMeatBased bool   `json:"is_meat_based"`
}

// Catalog is one loaded snapshot of every category. A Catalog is never
// modified after it has been handed to a repository.
type Catalog struct {
	Salads   []Salad   `json:"salads"`
	Carbs    []Carb    `json:"carbs"`
	Soups    []Soup    `json:"soups"`
	Extras   []Extra   `json:"extras"`
	Proteins []Protein `json:"proteins"`
	Meals    []Meal    `json:"meals,omitempty"`
}

// Count returns the number of items loaded for a category.
func (c *Catalog) Count(category Category) int {
	switch category {
	case CategorySalad:
		return len(c.Salads)
	case CategoryCarb:
		return len(c.Carbs)
	case CategorySoup:
		return len(c.Soups)
	case CategoryExtra:
		return len(c.Extras)
	case CategoryProtein:
		return len(c.Proteins)
	case CategoryMeal:
		return len(c.Meals)
	}
	return 0
}

// Names returns the item names for a category in source order.
func (c *Catalog) Names(category Category) []string {
	var names []string
	switch category {
	case CategorySalad:
		for _, s := range c.Salads {
			names = append(names, s.Name)
		}
	case CategoryCarb:
		for _, s := range c.Carbs {
			names = append(names, s.Name)
		}
	case CategorySoup:
		for _, s := range c.Soups {
			names = append(names, s.Name)
		}
	case CategoryExtra:
		for _, s := range c.Extras {
			names = append(names, s.Name)
		}
	case CategoryProtein:
		for _, s := range c.Proteins {
			names = append(names, s.Name)
		}
	case CategoryMeal:
		for _, s := range c.Meals {
			names = append(names, s.Name)
		}
	}
	return names
}
