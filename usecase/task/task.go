package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// Failure messages returned to clients when the store misbehaves.
const (
	MsgListFailed       = "Failed to retrieve tasks"
	MsgGetFailed        = "Failed to retrieve task"
	MsgCreateFailed     = "Failed to create task"
	MsgCreateReadFailed = "Task created but failed to retrieve"
	MsgUpdateFailed     = "Failed to update task"
	MsgUpdateReadFailed = "Task updated but failed to retrieve"
	MsgDeleteFailed     = "Failed to delete task"
)

// ListFilters echoes the listing parameters that were actually applied.
type ListFilters struct {
	Status domain.TaskStatus `json:"status,omitempty"`
	Sort   domain.SortColumn `json:"sort"`
	Order  domain.SortOrder  `json:"order"`
}

// TaskList is the result of ListTasks.
type TaskList struct {
	Tasks   []domain.Task `json:"tasks"`
	Total   int           `json:"total"`
	Filters ListFilters   `json:"filters"`
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	newID  func() string
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
		newID:  uuid.NewString,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, status, sort, order string) (*TaskList, error) {
	query := domain.ListQuery{
		Status: domain.TaskStatus(status),
		Sort:   domain.SortColumn(sort),
		Order:  domain.SortOrder(order),
	}.Normalize()

	tasks, err := uc.tasks.List(ctx, query)
	if err != nil {
		return nil, uc.storeError(ctx, MsgListFailed, "", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	return &TaskList{
		Tasks: tasks,
		Total: len(tasks),
		Filters: ListFilters{
			Status: query.Status,
			Sort:   query.Sort,
			Order:  query.Order,
		},
	}, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := uc.tasks.Get(ctx, id)
	if err != nil {
		return nil, uc.storeError(ctx, MsgGetFailed, id, err)
	}
	return task, nil
}

// CreateTask validates input, stores a new task and returns it as read back
// from the store, so timestamps are always the store's.
func (uc *UseCase) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	valid, err := Validate(input)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          uc.newID(),
		Description: valid.Description,
		Status:      valid.Status,
	}
	if err := uc.tasks.Insert(ctx, task); err != nil {
		return nil, uc.storeError(ctx, MsgCreateFailed, task.ID, err)
	}

	created, err := uc.tasks.Get(ctx, task.ID)
	if err != nil {
		return nil, uc.storeError(ctx, MsgCreateReadFailed, task.ID, err)
	}
	return created, nil
}

// UpdateTask overwrites description and status of an existing task. A missing
// task is reported before anything is written.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, input domain.TaskInput) (*domain.Task, error) {
	valid, err := Validate(input)
	if err != nil {
		return nil, err
	}

	if _, err := uc.tasks.Get(ctx, id); err != nil {
		return nil, uc.storeError(ctx, MsgGetFailed, id, err)
	}

	if _, err := uc.tasks.Update(ctx, id, valid.Description, valid.Status); err != nil {
		return nil, uc.storeError(ctx, MsgUpdateFailed, id, err)
	}

	updated, err := uc.tasks.Get(ctx, id)
	if err != nil {
		return nil, uc.storeError(ctx, MsgUpdateReadFailed, id, err)
	}
	return updated, nil
}

// DeleteTask removes a task and returns it as it was before deletion.
func (uc *UseCase) DeleteTask(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uc.tasks.Get(ctx, id); err != nil {
		return nil, uc.storeError(ctx, MsgGetFailed, id, err)
	}

	deleted, err := uc.tasks.Delete(ctx, id)
	if err != nil {
		return nil, uc.storeError(ctx, MsgDeleteFailed, id, err)
	}
	return deleted, nil
}

// ToggleStatus flips pending and complete through UpdateTask.
func (uc *UseCase) ToggleStatus(ctx context.Context, id string) (*domain.Task, error) {
	current, err := uc.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	description := current.Description
	status := string(current.Status.Toggle())
	return uc.UpdateTask(ctx, id, domain.TaskInput{
		Description: &description,
		Status:      &status,
	})
}

// storeError classifies a repository error. Internal causes are logged and
// replaced by an opaque message.
func (uc *UseCase) storeError(ctx context.Context, message, id string, err error) error {
	log := logger.WithRequestID(ctx, uc.logger)

	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return domain.NotFoundError(id)
	case domain.IsDomainError(err, domain.ErrCodeConstraint):
		log.Warn("store rejected task", zap.String("task_id", id), zap.Error(err))
		return err
	default:
		log.Error("task store failure",
			zap.String("operation", message),
			zap.String("task_id", id),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, message, err)
	}
}
