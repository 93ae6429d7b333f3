package task

import (
	"encoding/json"
	"time"
)

// Task is a journal entry describing work that did not complete.
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// Failure carries the fields shared by every journaled failure.
type Failure struct {
	RunID      string    `json:"run_id"`
	Error      string    `json:"error"`
	StatusCode int       `json:"status_code,omitempty"`
	FailedAt   time.Time `json:"failed_at"`
}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task interface{}) ([]byte, error) {
	return json.Marshal(task)
}

func UnmarshalTask[T any](data []byte) (T, error) {
	var t T
	err := json.Unmarshal(data, &t)
	return t, err
}

// TaskTypes lists every journaled task type.
var TaskTypes = []string{
	PageFailureTaskType,
	DetailFailureTaskType,
}
