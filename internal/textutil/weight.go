package textutil

import (
	"regexp"
	"strings"
)

var weightPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|gr|g)`)

// ExtractWeight returns the first weight mentioned in text as "<value> <unit>"
// with unit kg or g, or nil when there is none.
func ExtractWeight(text string) *string {
	m := weightPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	value := strings.ReplaceAll(m[1], ",", ".")
	unit := strings.ToLower(m[2])
	if unit == "gr" {
		unit = "g"
	}

	weight := value + " " + unit
	return &weight
}
