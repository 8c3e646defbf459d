package repository

import (
	"context"
	"time"

	"github.com/tasknest/backend/domain"
)

// Window is a closed time range used by the temporal ring queries.
type Window struct {
	Start time.Time
	End   time.Time
}

type TaskRepository interface {
	GetByID(ctx context.Context, id, uid string) (*domain.Task, error)
	ListByOwner(ctx context.Context, uid string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id, uid string) error

	// Upsert atomically inserts the row or, on id conflict, overwrites the
	// mutable field subset when the incoming updatedAt is strictly newer and
	// the row belongs to the same owner. It always returns the post-write row.
	Upsert(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// DueWithin returns up to limit tasks due inside the window, ordered by
	// absolute distance between dueAt and ref.
	DueWithin(ctx context.Context, uid string, w Window, ref time.Time, limit int) ([]domain.Task, error)

	// ClosestToTimeOfDay returns the single task due inside the window whose
	// time of day is nearest to ref's time of day, or nil when the window is
	// empty.
	ClosestToTimeOfDay(ctx context.Context, uid string, w Window, ref time.Time) (*domain.Task, error)
}
