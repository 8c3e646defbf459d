package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

// fakeTaskRepo mimics the store contract the Postgres repository implements:
// keyed on id, ownership enforced through the (id, uid) predicate, and an
// upsert whose conflict path applies only strictly newer same-owner writes.
type fakeTaskRepo struct {
	rows map[string]domain.Task

	createErr   error
	upsertErrID string
	deleteErrID string

	deleteCalls int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{rows: make(map[string]domain.Task)}
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id, uid string) (*domain.Task, error) {
	row, ok := f.rows[id]
	if !ok || row.UID != uid {
		return nil, domain.ErrTaskNotFound
	}
	copied := row
	return &copied, nil
}

func (f *fakeTaskRepo) ListByOwner(_ context.Context, uid string) ([]domain.Task, error) {
	var out []domain.Task
	for _, row := range f.rows {
		if row.UID == uid {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}
	f.rows[task.ID] = *task
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	row, ok := f.rows[task.ID]
	if !ok || row.UID != task.UID {
		return domain.ErrTaskNotFound
	}
	f.rows[task.ID] = *task
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id, uid string) error {
	f.deleteCalls++
	if id == f.deleteErrID && f.deleteErrID != "" {
		return errors.New("connection reset")
	}
	row, ok := f.rows[id]
	if !ok || row.UID != uid {
		return domain.ErrTaskNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTaskRepo) Upsert(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if f.upsertErrID != "" && task.ID == f.upsertErrID {
		return nil, errors.New("connection reset")
	}
	stored, exists := f.rows[task.ID]
	if !exists {
		return f.Create(context.Background(), task)
	}
	if stored.UID != task.UID || !task.UpdatedAt.After(stored.UpdatedAt) {
		if stored.UID != task.UID {
			return nil, domain.ErrTaskNotFound
		}
		copied := stored
		return &copied, nil
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.HexColour = task.HexColour
	stored.DueAt = task.DueAt
	stored.DoneAt = task.DoneAt
	stored.UpdatedAt = task.UpdatedAt
	f.rows[task.ID] = stored
	copied := stored
	return &copied, nil
}

func (f *fakeTaskRepo) DueWithin(context.Context, string, repository.Window, time.Time, int) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskRepo) ClosestToTimeOfDay(context.Context, string, repository.Window, time.Time) (*domain.Task, error) {
	return nil, nil
}

func ptr[T any](v T) *T { return &v }

func TestApplyUpserts_DraftGetsFreshIdentity(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)
	applied, err := uc.ApplyUpserts(context.Background(), "user-a", []domain.SyncItem{
		{Task: domain.Task{ID: "client-temp-1", Title: "Buy milk", DueAt: due}},
	})

	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.NotEqual(t, "client-temp-1", applied[0].ID, "client-supplied id must be discarded for drafts")
	assert.NotEmpty(t, applied[0].ID)
	assert.Equal(t, "user-a", applied[0].UID)
	assert.Len(t, repo.rows, 1)
}

func TestApplyUpserts_DoneAtMarksExistingRow(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)
	ctx := context.Background()
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)

	// First sync: pending creation, no doneAt.
	first, err := uc.ApplyUpserts(ctx, "user-a", []domain.SyncItem{
		{Task: domain.Task{Title: "Buy milk", DueAt: due, UpdatedAt: due}},
	})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assigned := first[0].ID

	// Re-sync of the same logical item, now completed and carrying the
	// assigned id: must update in place, not duplicate.
	done := due.Add(5 * time.Minute)
	second, err := uc.ApplyUpserts(ctx, "user-a", []domain.SyncItem{
		{Task: domain.Task{ID: assigned, Title: "Buy milk", DueAt: due, DoneAt: &done, UpdatedAt: done}},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, assigned, second[0].ID)
	require.NotNil(t, second[0].DoneAt)
	assert.Len(t, repo.rows, 1, "completion re-sync must not create a second row")
}

func TestApplyUpserts_ExplicitDraftFlagOverridesHeuristic(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)
	ctx := context.Background()
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)

	seed, err := repo.Create(ctx, &domain.Task{ID: "t1", UID: "user-a", Title: "Journal", DueAt: due, UpdatedAt: due})
	require.NoError(t, err)

	// doneAt is absent, which the heuristic would read as "new", but the
	// client says this is a known row.
	applied, err := uc.ApplyUpserts(ctx, "user-a", []domain.SyncItem{
		{
			Task:  domain.Task{ID: seed.ID, Title: "Journal, revised", DueAt: due, UpdatedAt: due.Add(time.Minute)},
			Draft: ptr(false),
		},
	})
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, seed.ID, applied[0].ID)
	assert.Equal(t, "Journal, revised", applied[0].Title)
	assert.Len(t, repo.rows, 1)
}

func TestApplyUpserts_ResubmissionIsIdempotent(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)
	ctx := context.Background()
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)
	done := due.Add(time.Hour)

	item := domain.SyncItem{
		Task: domain.Task{ID: "t1", Title: "Water plants", DueAt: due, DoneAt: &done, UpdatedAt: due},
	}

	_, err := uc.ApplyUpserts(ctx, "user-a", []domain.SyncItem{item})
	require.NoError(t, err)

	item.Task.UpdatedAt = due.Add(time.Minute)
	applied, err := uc.ApplyUpserts(ctx, "user-a", []domain.SyncItem{item})
	require.NoError(t, err)
	require.Len(t, applied, 1)

	assert.Len(t, repo.rows, 1, "re-submission must not duplicate rows")
	assert.Equal(t, "Water plants", applied[0].Title)
	assert.Equal(t, due.Add(time.Minute), applied[0].UpdatedAt)
}

func TestApplyUpserts_GreaterUpdatedAtWinsRegardlessOfOrder(t *testing.T) {
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)
	done := due.Add(time.Hour)
	older := due
	newer := due.Add(10 * time.Minute)

	deviceA := domain.SyncItem{Task: domain.Task{ID: "t1", Title: "from device A", DueAt: due, DoneAt: &done, UpdatedAt: newer}}
	deviceB := domain.SyncItem{Task: domain.Task{ID: "t1", Title: "from device B", DueAt: due, DoneAt: &done, UpdatedAt: older}}

	orders := map[string][]domain.SyncItem{
		"newer first": {deviceA, deviceB},
		"older first": {deviceB, deviceA},
	}

	for name, batch := range orders {
		t.Run(name, func(t *testing.T) {
			repo := newFakeTaskRepo()
			uc := New(repo, nil, nil)

			applied, err := uc.ApplyUpserts(context.Background(), "user-a", batch)
			require.NoError(t, err)
			require.Len(t, applied, 2)

			stored := repo.rows["t1"]
			assert.Equal(t, "from device A", stored.Title, "row with greater updatedAt must win")
			assert.Equal(t, newer, stored.UpdatedAt)
		})
	}
}

func TestApplyUpserts_StaleWriteReturnsStoredRow(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)
	ctx := context.Background()
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)
	done := due.Add(time.Hour)

	_, err := repo.Create(ctx, &domain.Task{ID: "t1", UID: "user-a", Title: "current", DueAt: due, UpdatedAt: due})
	require.NoError(t, err)

	applied, err := uc.ApplyUpserts(ctx, "user-a", []domain.SyncItem{
		{Task: domain.Task{ID: "t1", Title: "stale", DueAt: due, DoneAt: &done, UpdatedAt: due.Add(-time.Hour)}},
	})
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "current", applied[0].Title, "stale mutation must not overwrite and must echo the stored row")
}

func TestApplyUpserts_MissingIDOnKnownItem(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)
	done := due.Add(time.Hour)

	applied, err := uc.ApplyUpserts(context.Background(), "user-a", []domain.SyncItem{
		{Task: domain.Task{Title: "no id", DueAt: due, DoneAt: &done, UpdatedAt: due}},
	})
	assert.ErrorIs(t, err, domain.ErrMissingTaskID)
	assert.Empty(t, applied)
	assert.Empty(t, repo.rows, "validation failures must not touch the store")
}

func TestApplyUpserts_PartialFailureKeepsAppliedItems(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.upsertErrID = "t2"
	uc := New(repo, nil, nil)
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)
	done := due.Add(time.Hour)

	applied, err := uc.ApplyUpserts(context.Background(), "user-a", []domain.SyncItem{
		{Task: domain.Task{ID: "t1", Title: "first", DueAt: due, DoneAt: &done, UpdatedAt: due}},
		{Task: domain.Task{ID: "t2", Title: "second", DueAt: due, DoneAt: &done, UpdatedAt: due}},
		{Task: domain.Task{ID: "t3", Title: "third", DueAt: due, DoneAt: &done, UpdatedAt: due}},
	})

	require.Error(t, err)
	require.Len(t, applied, 1, "items before the failure stay committed")
	assert.Equal(t, "t1", applied[0].ID)
	_, thirdStored := repo.rows["t3"]
	assert.False(t, thirdStored, "items after the failure are not applied")
}

func TestApplyDeletes_NonExistentIDIsSuccess(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	deleted, err := uc.ApplyDeletes(context.Background(), "user-a", []string{"ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, deleted)
}

func TestApplyDeletes_EmptyIDRejectedBeforeStore(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	deleted, err := uc.ApplyDeletes(context.Background(), "user-a", []string{""})
	assert.ErrorIs(t, err, domain.ErrMissingTaskID)
	assert.Empty(t, deleted)
	assert.Zero(t, repo.deleteCalls)
}

func TestApplyDeletes_ScopedToOwner(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)
	ctx := context.Background()
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, &domain.Task{ID: "t1", UID: "user-b", Title: "not yours", DueAt: due})
	require.NoError(t, err)

	deleted, err := uc.ApplyDeletes(ctx, "user-a", []string{"t1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, deleted, "processed ids are echoed verbatim")
	assert.Len(t, repo.rows, 1, "another user's row must survive")
}

func TestApplyDeletes_PartialFailureReturnsProcessedIDs(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.deleteErrID = "t2"
	uc := New(repo, nil, nil)
	ctx := context.Background()
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)

	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := repo.Create(ctx, &domain.Task{ID: id, UID: "user-a", Title: id, DueAt: due})
		require.NoError(t, err)
	}

	deleted, err := uc.ApplyDeletes(ctx, "user-a", []string{"t1", "t2", "t3"})
	require.Error(t, err)
	assert.Equal(t, []string{"t1"}, deleted)
	_, stillThere := repo.rows["t3"]
	assert.True(t, stillThere)
}

type countingJournal struct {
	upserts int
	deletes int
	err     error
}

func (j *countingJournal) RecordUpsert(string, string) error { j.upserts++; return j.err }
func (j *countingJournal) RecordDelete(string, string) error { j.deletes++; return j.err }

func TestJournalFailureNeverFailsBatch(t *testing.T) {
	repo := newFakeTaskRepo()
	jrn := &countingJournal{err: errors.New("disk full")}
	uc := New(repo, jrn, nil)
	ctx := context.Background()
	due := time.Date(2025, 4, 22, 8, 0, 0, 0, time.UTC)

	applied, err := uc.ApplyUpserts(ctx, "user-a", []domain.SyncItem{
		{Task: domain.Task{Title: "Buy milk", DueAt: due}},
	})
	require.NoError(t, err)
	assert.Len(t, applied, 1)
	assert.Equal(t, 1, jrn.upserts)

	deleted, err := uc.ApplyDeletes(ctx, "user-a", []string{applied[0].ID})
	require.NoError(t, err)
	assert.Len(t, deleted, 1)
	assert.Equal(t, 1, jrn.deletes)
}
