package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const taskColumns = `id, description, status, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Insert(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (id, description, status, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Description,
		string(task.Status),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return classify(err)
	}

	return nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, q domain.ListQuery) ([]domain.Task, error) {
	q = q.Normalize()

	// Sort and Order come from fixed whitelists after Normalize.
	query := fmt.Sprintf(`
	SELECT %s
	FROM tasks
	WHERE ($1 = '' OR status = $1)
	ORDER BY %s %s, id %s
	`, taskColumns, q.Sort, q.Order, q.Order)

	rows, err := r.pool.Query(ctx, query, string(q.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, id, description string, status domain.TaskStatus) (*domain.Task, error) {
	query := `
	UPDATE tasks
	SET description = $2,
		status = $3,
		updated_at = GREATEST(clock_timestamp(), created_at)
	WHERE id = $1
	RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query, id, description, string(status))
	task, err := scanTask(row)
	if err != nil {
		return nil, classify(err)
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	query := `DELETE FROM tasks WHERE id = $1 RETURNING ` + taskColumns
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *taskRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var status string

	if err := row.Scan(
		&task.ID,
		&task.Description,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

// SQLSTATE codes raised by the tasks table constraints.
const (
	pgNotNullViolation = "23502"
	pgUniqueViolation  = "23505"
	pgCheckViolation   = "23514"
)

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgNotNullViolation, pgUniqueViolation, pgCheckViolation:
			return domain.ConstraintError(err)
		}
	}
	return err
}
