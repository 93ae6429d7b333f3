package task

const DetailFailureTaskType = "DetailFailureTask"

// DetailFailureTask records a product page that could not be read.
type DetailFailureTask struct {
	Failure
	SKU       string `json:"sku"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
}

func (t *DetailFailureTask) TaskType() string {
	return DetailFailureTaskType
}

func (t *DetailFailureTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
