package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// TaskResponse wraps a single task together with a confirmation message.
type TaskResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

// DeleteResponse carries the snapshot of a removed task.
type DeleteResponse struct {
	Message     string       `json:"message"`
	DeletedTask *domain.Task `json:"deletedTask"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Services  interface{} `json:"services,omitempty"`
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e ErrorResponse) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
