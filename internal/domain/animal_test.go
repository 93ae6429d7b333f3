package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAnimalCategory(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{name: "single", values: []string{"perro"}, expected: "perro"},
		{name: "precedence", values: []string{"gato", "perro"}, expected: "perro-gato"},
		{name: "already merged", values: []string{"perro-gato", "gato"}, expected: "perro-gato"},
		{name: "duplicates", values: []string{"gato", "gato"}, expected: "gato"},
		{name: "blank ignored", values: []string{"", "gato", " "}, expected: "gato"},
		{name: "unknown kept last", values: []string{"ave", "gato"}, expected: "gato-ave"},
		{name: "nothing", values: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeAnimalCategory(tt.values...))
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	assert.Equal(t, 19, catalog.Len())
	assert.Len(t, catalog.ForAnimal(AnimalDog), 10)
	assert.Len(t, catalog.ForAnimal(AnimalCat), 9)
	assert.Equal(t, []AnimalType{AnimalDog, AnimalCat}, catalog.Animals())

	food, ok := catalog.LookupByID("catg15475")
	assert.True(t, ok)
	assert.Equal(t, "Alimento-para-perros", food.Slug)
	assert.True(t, food.IsFood())

	_, ok = catalog.LookupByID("CAT000")
	assert.False(t, ok)

	categories := catalog.Categories()
	categories[0].Label = "mutated"
	assert.Equal(t, FoodCategoryLabel, catalog.Categories()[0].Label)
}
