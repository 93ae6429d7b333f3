package domain

import "strings"

type AnimalType string

func (a AnimalType) String() string {
	return string(a)
}

const (
	AnimalDog AnimalType = "perro"
	AnimalCat AnimalType = "gato"
)

// AnimalTypes is the traversal order and also the precedence used when a SKU
// is attributed to more than one animal.
var AnimalTypes = []AnimalType{
	AnimalDog,
	AnimalCat,
}

func (a AnimalType) DisplayName() string {
	switch a {
	case AnimalDog:
		return "Dogs"
	case AnimalCat:
		return "Cats"
	default:
		return "Unknown"
	}
}

const animalSeparator = "-"

// MergeAnimalCategory combines animal attributions ("perro", "gato",
// "perro-gato") into a single composite value ordered by AnimalTypes.
// Values outside AnimalTypes are appended after the known ones in first-seen order.
func MergeAnimalCategory(values ...string) string {
	seen := make(map[string]struct{})
	var unknown []string

	for _, value := range values {
		for _, part := range strings.Split(value, animalSeparator) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			if !isKnownAnimal(part) {
				unknown = append(unknown, part)
			}
		}
	}

	merged := make([]string, 0, len(seen))
	for _, animal := range AnimalTypes {
		if _, ok := seen[animal.String()]; ok {
			merged = append(merged, animal.String())
		}
	}
	merged = append(merged, unknown...)

	return strings.Join(merged, animalSeparator)
}

func isKnownAnimal(value string) bool {
	for _, animal := range AnimalTypes {
		if animal.String() == value {
			return true
		}
	}
	return false
}
