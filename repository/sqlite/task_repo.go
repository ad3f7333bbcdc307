package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type taskRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTaskRepository returns a sqlite-backed implementation of TaskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db, now: storeClock}
}

func storeClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (r *taskRepository) Insert(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	now := r.now()
	row := taskRow{
		ID:          task.ID,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return classify(err)
	}

	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *taskRepository) get(tx *gorm.DB, id string) (*domain.Task, error) {
	var row taskRow
	if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *taskRepository) List(ctx context.Context, query domain.ListQuery) ([]domain.Task, error) {
	query = query.Normalize()

	tx := r.db.WithContext(ctx).Model(&taskRow{})
	if query.Status != "" {
		tx = tx.Where("status = ?", string(query.Status))
	}
	// Sort and Order come from fixed whitelists after Normalize.
	tx = tx.Order(fmt.Sprintf("%s %s", query.Sort, query.Order)).Order("id " + string(query.Order))

	var rows []taskRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, *row.toDomain())
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id, description string, status domain.TaskStatus) (*domain.Task, error) {
	var updated *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&taskRow{}).Where("id = ?", id).Updates(map[string]interface{}{
			"description": description,
			"status":      string(status),
			"updated_at":  gorm.Expr("MAX(?, created_at)", r.now()),
		})
		if result.Error != nil {
			return classify(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}

		task, err := r.get(tx, id)
		if err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	var snapshot *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := r.get(tx, id)
		if err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&taskRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}
		snapshot = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *taskRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return domain.ConstraintError(err)
	}
	return err
}
