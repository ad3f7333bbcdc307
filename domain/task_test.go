package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSortColumn(t *testing.T) {
	tests := []struct {
		in   string
		want SortColumn
	}{
		{"created_at", SortCreatedAt},
		{"updated_at", SortUpdatedAt},
		{"description", SortDescription},
		{"status", SortStatus},
		{"", SortCreatedAt},
		{"id; DROP TABLE tasks", SortCreatedAt},
		{"CREATED_AT", SortCreatedAt},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSortColumn(tt.in))
		})
	}
}

func TestResolveSortOrder(t *testing.T) {
	assert.Equal(t, OrderAsc, ResolveSortOrder("ASC"))
	assert.Equal(t, OrderAsc, ResolveSortOrder("asc"))
	assert.Equal(t, OrderAsc, ResolveSortOrder("aSc"))
	assert.Equal(t, OrderDesc, ResolveSortOrder("DESC"))
	assert.Equal(t, OrderDesc, ResolveSortOrder(""))
	assert.Equal(t, OrderDesc, ResolveSortOrder("ascending"))
}

func TestResolveStatusFilter(t *testing.T) {
	assert.Equal(t, StatusPending, ResolveStatusFilter("pending"))
	assert.Equal(t, StatusComplete, ResolveStatusFilter("complete"))
	assert.Equal(t, TaskStatus(""), ResolveStatusFilter("bogus"))
	assert.Equal(t, TaskStatus(""), ResolveStatusFilter("Pending"))
	assert.Equal(t, TaskStatus(""), ResolveStatusFilter(""))
}

func TestTaskStatusToggle(t *testing.T) {
	assert.Equal(t, StatusComplete, StatusPending.Toggle())
	assert.Equal(t, StatusPending, StatusComplete.Toggle())
	assert.Equal(t, StatusPending, StatusPending.Toggle().Toggle())
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Status: "bogus", Sort: "priority", Order: "up"}.Normalize()
	assert.Equal(t, ListQuery{Status: "", Sort: SortCreatedAt, Order: OrderDesc}, q)
}

func TestIsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", NotFoundError("abc"))
	assert.True(t, IsDomainError(wrapped, ErrCodeNotFound))
	assert.True(t, errors.Is(wrapped, ErrTaskNotFound))
	assert.False(t, IsDomainError(wrapped, ErrCodeInternal))

	vErr := &ValidationError{Details: []string{"Description cannot be empty"}}
	assert.True(t, IsDomainError(vErr, ErrCodeInvalid))
	assert.True(t, IsDomainError(ConstraintError(errors.New("check failed")), ErrCodeConstraint))
	assert.False(t, IsDomainError(errors.New("plain"), ErrCodeInvalid))
}
