package bolt

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
)

func setupTestRepo(t *testing.T) *taskRepository {
	t.Helper()

	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "tasks.bolt"), nil, Bucket)
	require.NoError(t, err)

	repo := NewTaskRepository(db).(*taskRepository)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestTaskRepository_CRUD(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := &domain.Task{ID: uuid.NewString(), Description: "Buy milk", Status: domain.StatusPending}
	require.NoError(t, repo.Insert(ctx, task))
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	found, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Description)

	time.Sleep(time.Millisecond)
	updated, err := repo.Update(ctx, task.ID, "Buy milk", domain.StatusComplete)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, updated.Status)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	assert.True(t, updated.CreatedAt.Equal(task.CreatedAt))

	deleted, err := repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, deleted.Status)

	_, err = repo.Get(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = repo.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = repo.Update(ctx, task.ID, "x", domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskRepository_Constraints(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	err := repo.Insert(ctx, &domain.Task{ID: uuid.NewString(), Description: strings.Repeat("a", 501), Status: domain.StatusPending})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConstraint), "got %v", err)

	err = repo.Insert(ctx, &domain.Task{ID: uuid.NewString(), Description: "ok", Status: "archived"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConstraint), "got %v", err)

	task := &domain.Task{ID: uuid.NewString(), Description: "ok", Status: domain.StatusPending}
	require.NoError(t, repo.Insert(ctx, task))
	err = repo.Insert(ctx, &domain.Task{ID: task.ID, Description: "dup", Status: domain.StatusPending})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConstraint), "got %v", err)

	_, err = repo.Update(ctx, task.ID, "ok", "archived")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConstraint), "got %v", err)
}

func TestTaskRepository_List(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	a := &domain.Task{ID: "a", Description: "zulu", Status: domain.StatusPending}
	b := &domain.Task{ID: "b", Description: "alpha", Status: domain.StatusComplete}
	c := &domain.Task{ID: "c", Description: "mike", Status: domain.StatusPending}
	for _, task := range []*domain.Task{a, b, c} {
		require.NoError(t, repo.Insert(ctx, task))
	}

	ids := func(tasks []domain.Task) string {
		var sb strings.Builder
		for _, task := range tasks {
			sb.WriteString(task.ID)
		}
		return sb.String()
	}

	tests := []struct {
		name  string
		query domain.ListQuery
		want  string
	}{
		{"defaults", domain.ListQuery{}, "cba"},
		{"created ascending", domain.ListQuery{Order: "asc"}, "abc"},
		{"description ascending", domain.ListQuery{Sort: domain.SortDescription, Order: domain.OrderAsc}, "bca"},
		{"status descending with id tie-break", domain.ListQuery{Sort: domain.SortStatus}, "cab"},
		{"pending only", domain.ListQuery{Status: domain.StatusPending}, "ca"},
		{"invalid status ignored", domain.ListQuery{Status: "bogus"}, "cba"},
		{"unknown column", domain.ListQuery{Sort: "priority", Order: domain.OrderAsc}, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(tasks))
		})
	}
}
