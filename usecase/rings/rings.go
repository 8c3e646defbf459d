package rings

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

// todayLimit caps ring 1; rings 2 and 3 select a single task per window.
const todayLimit = 3

// lookbackDays and lookbackWeeks define the seven windows sampled around now:
// today, the three preceding days and the same weekday of the three preceding
// weeks.
var (
	lookbackDays  = []int{-1, -2, -3}
	lookbackWeeks = []int{-7, -14, -21}
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

// ComputeRings assembles the temporal context sample for uid relative to now.
// The seven window queries run concurrently and share no mutable state; any
// sub-query failure fails the whole computation. Callers that favour
// availability should map the error to EmptyRings themselves, which keeps the
// failure observable here while preserving the best-effort contract outward.
func (uc *UseCase) ComputeRings(ctx context.Context, uid string, now time.Time) (*domain.TemporalRings, error) {
	g, gctx := errgroup.WithContext(ctx)

	var today []domain.Task
	recent := make([]*domain.Task, len(lookbackDays))
	weekly := make([]*domain.Task, len(lookbackWeeks))

	g.Go(func() error {
		var err error
		today, err = uc.tasks.DueWithin(gctx, uid, DayWindow(now), now, todayLimit)
		return err
	})

	for i, offset := range lookbackDays {
		i, offset := i, offset
		g.Go(func() error {
			var err error
			recent[i], err = uc.tasks.ClosestToTimeOfDay(gctx, uid, DayWindow(now.AddDate(0, 0, offset)), now)
			return err
		})
	}

	for i, offset := range lookbackWeeks {
		i, offset := i, offset
		g.Go(func() error {
			var err error
			weekly[i], err = uc.tasks.ClosestToTimeOfDay(gctx, uid, DayWindow(now.AddDate(0, 0, offset)), now)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		uc.logger.Warn("temporal ring query failed", zap.String("uid", uid), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "temporal ring computation failed", err)
	}

	rings := domain.EmptyRings()
	rings.Ring1 = append(rings.Ring1, today...)
	for _, task := range recent {
		if task != nil {
			rings.Ring2 = append(rings.Ring2, *task)
		}
	}
	for _, task := range weekly {
		if task != nil {
			rings.Ring3 = append(rings.Ring3, *task)
		}
	}
	return rings, nil
}

// DayWindow returns the closed [00:00:00.000, 23:59:59.999] range of t's
// calendar day in t's location.
func DayWindow(t time.Time) repository.Window {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return repository.Window{
		Start: start,
		End:   start.AddDate(0, 0, 1).Add(-time.Millisecond),
	}
}
