package sync

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
	"github.com/tasknest/backend/usecase"
)

// UseCase reconciles batches of offline task mutations against the store.
// Items are processed sequentially and independently: a failing item aborts
// the remainder of its batch but never rolls back previously applied ones.
type UseCase struct {
	tasks   repository.TaskRepository
	journal usecase.MutationJournal
	logger  *zap.Logger
}

func New(tasks repository.TaskRepository, journal usecase.MutationJournal, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:   tasks,
		journal: journal,
		logger:  logger,
	}
}

// ApplyUpserts applies a client upsert batch on behalf of uid and returns the
// post-write rows of every applied item. Draft items lose their client id and
// receive a server-assigned identity; known items go through the store's
// atomic conflict-resolving upsert, where a stale updatedAt is a no-op. On a
// mid-batch failure the rows applied so far are returned alongside the error.
func (uc *UseCase) ApplyUpserts(ctx context.Context, uid string, items []domain.SyncItem) ([]domain.Task, error) {
	applied := make([]domain.Task, 0, len(items))

	for _, item := range items {
		task := item.Task
		// Ownership comes from the authenticated caller, never the payload.
		task.UID = uid

		var (
			stored *domain.Task
			err    error
		)
		if item.IsDraft() {
			task.ID = ""
			stored, err = uc.tasks.Create(ctx, &task)
		} else {
			if task.ID == "" {
				return applied, domain.ErrMissingTaskID
			}
			stored, err = uc.tasks.Upsert(ctx, &task)
		}
		if err != nil {
			uc.logger.Error("sync upsert failed",
				zap.String("uid", uid),
				zap.String("task_id", task.ID),
				zap.Error(err))
			return applied, err
		}

		if uc.journal != nil {
			if err := uc.journal.RecordUpsert(uid, stored.ID); err != nil {
				uc.logger.Warn("journal write failed", zap.String("task_id", stored.ID), zap.Error(err))
			}
		}
		applied = append(applied, *stored)
	}

	return applied, nil
}

// ApplyDeletes removes the identified rows owned by uid and echoes every
// processed id. Deleting an id with no backing row is a success, which keeps
// client retries idempotent. A missing id is rejected before the store is
// touched.
func (uc *UseCase) ApplyDeletes(ctx context.Context, uid string, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" {
			return deleted, domain.ErrMissingTaskID
		}

		if err := uc.tasks.Delete(ctx, id, uid); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
			uc.logger.Error("sync delete failed",
				zap.String("uid", uid),
				zap.String("task_id", id),
				zap.Error(err))
			return deleted, err
		}

		if uc.journal != nil {
			if err := uc.journal.RecordDelete(uid, id); err != nil {
				uc.logger.Warn("journal write failed", zap.String("task_id", id), zap.Error(err))
			}
		}
		deleted = append(deleted, id)
	}

	return deleted, nil
}
