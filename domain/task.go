package domain

import (
	"strings"
	"time"
)

// MaxDescriptionLength is the upper bound, in characters, of a task description.
const MaxDescriptionLength = 500

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	StatusPending  TaskStatus = "pending"
	StatusComplete TaskStatus = "complete"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusComplete
}

// Toggle flips pending and complete.
func (s TaskStatus) Toggle() TaskStatus {
	if s == StatusComplete {
		return StatusPending
	}
	return StatusComplete
}

// ParseTaskStatus accepts only the exact enum values.
func ParseTaskStatus(value string) (TaskStatus, bool) {
	status := TaskStatus(value)
	return status, status.Valid()
}

// Task represents a to-do item.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskInput is the client-supplied payload for create and update requests.
// A nil Description means the field was absent or not a string.
// A nil Status means the field was absent, null or empty.
type TaskInput struct {
	Description *string
	Status      *string
}

// SortColumn is a column tasks may be ordered by.
type SortColumn string

const (
	SortCreatedAt   SortColumn = "created_at"
	SortUpdatedAt   SortColumn = "updated_at"
	SortDescription SortColumn = "description"
	SortStatus      SortColumn = "status"
)

// SortOrder is the ordering direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// ResolveSortColumn returns the column for value, falling back to created_at.
func ResolveSortColumn(value string) SortColumn {
	switch col := SortColumn(value); col {
	case SortCreatedAt, SortUpdatedAt, SortDescription, SortStatus:
		return col
	default:
		return SortCreatedAt
	}
}

// ResolveSortOrder treats anything other than a case-insensitive "ASC" as DESC.
func ResolveSortOrder(value string) SortOrder {
	if strings.ToUpper(value) == string(OrderAsc) {
		return OrderAsc
	}
	return OrderDesc
}

// ResolveStatusFilter returns the status to filter on, or "" for no filter.
func ResolveStatusFilter(value string) TaskStatus {
	if status, ok := ParseTaskStatus(value); ok {
		return status
	}
	return ""
}

// ListQuery describes a task listing.
type ListQuery struct {
	Status TaskStatus
	Sort   SortColumn
	Order  SortOrder
}

// Normalize returns a copy of q with the listing fallbacks applied.
func (q ListQuery) Normalize() ListQuery {
	return ListQuery{
		Status: ResolveStatusFilter(string(q.Status)),
		Sort:   ResolveSortColumn(string(q.Sort)),
		Order:  ResolveSortOrder(string(q.Order)),
	}
}
