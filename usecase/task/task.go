package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	return uc.tasks.ListByOwner(ctx, uid)
}

func (uc *UseCase) GetTask(ctx context.Context, id, uid string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id, uid)
}

func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	return uc.tasks.Create(ctx, task)
}

func (uc *UseCase) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.ID == "" {
		return nil, domain.ErrMissingTaskID
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id, uid string) error {
	if id == "" {
		return domain.ErrMissingTaskID
	}
	return uc.tasks.Delete(ctx, id, uid)
}
