package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Bucket holds one JSON document per task, keyed by id.
const Bucket = "tasks"

type taskRepository struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// NewTaskRepository returns a BoltDB-backed implementation of TaskRepository.
// The bucket must already exist.
func NewTaskRepository(db *bolt.DB) repository.TaskRepository {
	return &taskRepository{
		db:     db,
		bucket: []byte(Bucket),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *taskRepository) Insert(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	if err := repository.CheckTaskConstraints(task.Description, task.Status); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	row := *task
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt

	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b.Get([]byte(row.ID)) != nil {
			return domain.ConstraintError(fmt.Errorf("task %s already exists", row.ID))
		}
		return put(b, &row)
	})
	if err != nil {
		return err
	}

	task.CreatedAt = row.CreatedAt
	task.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task *domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		task, err = get(tx.Bucket(r.bucket), id)
		return err
	})
	return task, err
}

func (r *taskRepository) List(ctx context.Context, query domain.ListQuery) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = query.Normalize()

	tasks := make([]domain.Task, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if query.Status != "" && task.Status != query.Status {
				return nil
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sortTasks(tasks, query.Sort, query.Order)
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id, description string, status domain.TaskStatus) (*domain.Task, error) {
	if err := repository.CheckTaskConstraints(description, status); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated *domain.Task
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		task, err := get(b, id)
		if err != nil {
			return err
		}

		task.Description = description
		task.Status = status
		task.UpdatedAt = r.now()
		if task.UpdatedAt.Before(task.CreatedAt) {
			task.UpdatedAt = task.CreatedAt
		}
		if err := put(b, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	return updated, err
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var snapshot *domain.Task
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		task, err := get(b, id)
		if err != nil {
			return err
		}
		if err := b.Delete([]byte(id)); err != nil {
			return err
		}
		snapshot = task
		return nil
	})
	return snapshot, err
}

func (r *taskRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

func (r *taskRepository) Close() error {
	return r.db.Close()
}

func get(b *bolt.Bucket, id string) (*domain.Task, error) {
	raw := b.Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func put(b *bolt.Bucket, task *domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return b.Put([]byte(task.ID), payload)
}

func sortTasks(tasks []domain.Task, column domain.SortColumn, order domain.SortOrder) {
	compare := func(a, b domain.Task) int {
		switch column {
		case domain.SortUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case domain.SortDescription:
			return strings.Compare(a.Description, b.Description)
		case domain.SortStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		c := compare(tasks[i], tasks[j])
		if c == 0 {
			c = strings.Compare(tasks[i].ID, tasks[j].ID)
		}
		if order == domain.OrderAsc {
			return c < 0
		}
		return c > 0
	})
}
