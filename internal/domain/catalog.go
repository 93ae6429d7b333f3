package domain

import "strings"

// FoodCategoryLabel is the only category whose products get a considered weight.
const FoodCategoryLabel = "Alimentos"

// CategoryDescriptor identifies one listing the traversal paginates.
type CategoryDescriptor struct {
	ID     string     `json:"category_id"`
	Animal AnimalType `json:"animal_type"`
	Label  string     `json:"category_label"`
	Slug   string     `json:"category_slug"`
}

func (c CategoryDescriptor) IsFood() bool {
	return c.Label == FoodCategoryLabel
}

// Catalog is an immutable, ordered set of category descriptors.
type Catalog struct {
	categories []CategoryDescriptor
	byID       map[string]CategoryDescriptor
}

func NewCatalog(categories []CategoryDescriptor) *Catalog {
	c := &Catalog{
		categories: make([]CategoryDescriptor, len(categories)),
		byID:       make(map[string]CategoryDescriptor, len(categories)),
	}
	copy(c.categories, categories)
	for _, category := range categories {
		key := strings.ToUpper(category.ID)
		if _, exists := c.byID[key]; !exists {
			c.byID[key] = category
		}
	}
	return c
}

// Categories returns a copy of the descriptors in traversal order.
func (c *Catalog) Categories() []CategoryDescriptor {
	out := make([]CategoryDescriptor, len(c.categories))
	copy(out, c.categories)
	return out
}

// ForAnimal returns the descriptors of one animal in traversal order.
func (c *Catalog) ForAnimal(animal AnimalType) []CategoryDescriptor {
	var out []CategoryDescriptor
	for _, category := range c.categories {
		if category.Animal == animal {
			out = append(out, category)
		}
	}
	return out
}

// Animals returns the animals present in the catalog, ordered by AnimalTypes
// first and then by first appearance.
func (c *Catalog) Animals() []AnimalType {
	present := make(map[AnimalType]struct{})
	var order []AnimalType
	for _, category := range c.categories {
		if _, ok := present[category.Animal]; !ok {
			present[category.Animal] = struct{}{}
			order = append(order, category.Animal)
		}
	}

	out := make([]AnimalType, 0, len(order))
	for _, animal := range AnimalTypes {
		if _, ok := present[animal]; ok {
			out = append(out, animal)
			delete(present, animal)
		}
	}
	for _, animal := range order {
		if _, ok := present[animal]; ok {
			out = append(out, animal)
		}
	}
	return out
}

// LookupByID resolves a category id case-insensitively.
func (c *Catalog) LookupByID(id string) (CategoryDescriptor, bool) {
	category, ok := c.byID[strings.ToUpper(strings.TrimSpace(id))]
	return category, ok
}

func (c *Catalog) Len() int {
	return len(c.categories)
}

var defaultCategories = []CategoryDescriptor{
	{ID: "CATG15475", Animal: AnimalDog, Label: "Alimentos", Slug: "Alimento-para-perros"},
	{ID: "CAT14110477", Animal: AnimalDog, Label: "Platos", Slug: "Platos--dispensadores-y-botellas"},
	{ID: "CATG15478", Animal: AnimalDog, Label: "Antiparasitarios", Slug: "Antiparasitarios"},
	{ID: "CATG15476", Animal: AnimalDog, Label: "Camas", Slug: "Camas-y-colchones-para-perro"},
	{ID: "CATG15477", Animal: AnimalDog, Label: "Casas", Slug: "Casas-para-perros"},
	{ID: "CAT12500467", Animal: AnimalDog, Label: "Jaulas y transporte", Slug: "Jaulas-y-transporte-para-perros"},
	{ID: "CAT14110481", Animal: AnimalDog, Label: "Arnes", Slug: "Arnes--Collares-y-Correas"},
	{ID: "CATG15481", Animal: AnimalDog, Label: "Peluqueria canina", Slug: "Peluqueria-canina"},
	{ID: "CAT12500465", Animal: AnimalDog, Label: "Juguetes y entrenamiento", Slug: "Juguetes-y-entrenamiento-para-perro"},
	{ID: "CAT12500466", Animal: AnimalDog, Label: "Ropa y accesorios", Slug: "Ropa-y-accesorios-para-perros"},

	{ID: "CATG15470", Animal: AnimalCat, Label: "Alimentos", Slug: "Alimento-para-Gatos"},
	{ID: "CATG33635", Animal: AnimalCat, Label: "Platos", Slug: "Platos-para-gatos"},
	{ID: "CATG15472", Animal: AnimalCat, Label: "Arena", Slug: "Arena"},
	{ID: "CATG33754", Animal: AnimalCat, Label: "Areneros", Slug: "Areneros"},
	{ID: "CATG14641", Animal: AnimalCat, Label: "Camas", Slug: "Camas-para-gatos"},
	{ID: "CATG33636", Animal: AnimalCat, Label: "Rascadores", Slug: "Rascadores-para-gato"},
	{ID: "CATG14643", Animal: AnimalCat, Label: "Juguetes", Slug: "Juguetes-y-entretencion-para-gatos"},
	{ID: "CATG14640", Animal: AnimalCat, Label: "Arneses y collares", Slug: "Arneses-y-collares"},
	{ID: "CATG14642", Animal: AnimalCat, Label: "Higiene y cuidado", Slug: "Higiene-y-cuidados-para-gatos"},
}

// DefaultCatalog returns the pet categories of the Falabella Peru storefront.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultCategories)
}
