package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository is the durable store for task rows. Implementations enforce
// the description length and status constraints on their own and own the
// created_at/updated_at bookkeeping.
type TaskRepository interface {
	Insert(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, query domain.ListQuery) ([]domain.Task, error)
	Update(ctx context.Context, id, description string, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, id string) (*domain.Task, error)
	Ping(ctx context.Context) error
	Close() error
}
