// internal/models/meal.go
package models

import (
	"fmt"
	"strings"
)

// Meal names one item per category. Extra and Soup are nil unless requested.
type Meal struct {
	Name    string  `json:"name"`
	Protein Protein `json:"protein"`
	Carb    Carb    `json:"carb"`
	Salad   Salad   `json:"salad"`
	Extra   *Extra  `json:"extra,omitempty"`
	Soup    *Soup   `json:"soup,omitempty"`
}

// Describe renders the meal as display text, one present component per line.
func (m *Meal) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.Name)
	if m.Soup != nil {
		fmt.Fprintf(&b, "  Soup:    %s\n", m.Soup.Name)
	}
	fmt.Fprintf(&b, "  Salad:   %s\n", m.Salad.Name)
	kind := "non-meat"
	if m.Protein.IsMeatBased {
		kind = "meat"
	}
	fmt.Fprintf(&b, "  Protein: %s (%s)\n", m.Protein.Name, kind)
	fmt.Fprintf(&b, "  Carb:    %s\n", m.Carb.Name)
	if m.Extra != nil {
		fmt.Fprintf(&b, "  Extra:   %s\n", m.Extra.Name)
	}
	return b.String()
}

// MealResponse is the wire form returned to tool callers.
type MealResponse struct {
	Meal
	Description string `json:"description"`
}

// NewMealResponse pairs a meal with its rendered description.
func NewMealResponse(m *Meal) *MealResponse {
	return &MealResponse{
		Meal:        *m,
		Description: m.Describe(),
	}
}
