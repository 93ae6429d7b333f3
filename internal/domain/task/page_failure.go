package task

import "sagafalabella/scraper/internal/domain"

const PageFailureTaskType = "PageFailureTask"

// PageFailureTask records a listing page whose fetch ended a category early.
type PageFailureTask struct {
	Failure
	Animal       domain.AnimalType `json:"animal"`
	CategoryID   string            `json:"category_id"`
	CategorySlug string            `json:"category_slug"`
	PageNumber   int               `json:"page_number"`
}

func (t *PageFailureTask) TaskType() string {
	return PageFailureTaskType
}

func (t *PageFailureTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
