package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	meal := &Meal{
		Name:    "meal1",
		Protein: Protein{Name: "Chicken", IsMeatBased: true},
		Carb:    Carb{Name: "Rice"},
		Salad:   Salad{Name: "Caesar"},
		Soup:    &Soup{Name: "Tomato"},
	}

	want := "meal1\n" +
		"  Soup:    Tomato\n" +
		"  Salad:   Caesar\n" +
		"  Protein: Chicken (meat)\n" +
		"  Carb:    Rice\n"
	assert.Equal(t, want, meal.Describe())
}

func TestDescribeOmitsAbsentComponents(t *testing.T) {
	meal := &Meal{
		Name:    "meal1",
		Protein: Protein{Name: "Tofu"},
		Carb:    Carb{Name: "Rice"},
		Salad:   Salad{Name: "Caesar"},
	}

	out := meal.Describe()
	assert.Contains(t, out, "Tofu (non-meat)")
	assert.NotContains(t, out, "Soup:")
	assert.NotContains(t, out, "Extra:")
}

func TestMealResponseJSON(t *testing.T) {
	meal := &Meal{
		Name:    "meal1",
		Protein: Protein{Name: "Tofu"},
		Carb:    Carb{Name: "Rice"},
		Salad:   Salad{Name: "Caesar"},
		Extra:   &Extra{Name: "Bread"},
	}

	data, err := json.Marshal(NewMealResponse(meal))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "meal1", decoded["name"])
	assert.Equal(t, map[string]any{"name": "Bread"}, decoded["extra"])
	assert.NotContains(t, decoded, "soup")
	assert.Equal(t, meal.Describe(), decoded["description"])
}

func TestCatalogCountAndNames(t *testing.T) {
	cat := &Catalog{
		Salads:   []Salad{{Name: "Caesar"}, {Name: "Greek"}},
		Proteins: []Protein{{Name: "Tofu"}},
	}

	assert.Equal(t, 2, cat.Count(CategorySalad))
	assert.Equal(t, 0, cat.Count(CategorySoup))
	assert.Equal(t, []string{"Caesar", "Greek"}, cat.Names(CategorySalad))
	assert.Equal(t, []string{"Tofu"}, cat.Names(CategoryProtein))
	assert.Nil(t, cat.Names(CategoryExtra))
}
