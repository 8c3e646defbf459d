package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, uid, title, description, hex_colour, due_at, done_at, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id, uid string) (*domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1 AND uid = $2
	`
	row := r.pool.QueryRow(ctx, query, id, uid)
	return scanTask(row)
}

func (r *taskRepository) ListByOwner(ctx context.Context, uid string) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE uid = $1
	ORDER BY due_at ASC
	`
	rows, err := r.pool.Query(ctx, query, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, uid, title, description, hex_colour, due_at, done_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), COALESCE($9, NOW()))
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UID,
		task.Title,
		task.Description,
		task.HexColour,
		task.DueAt,
		task.DoneAt,
		nullTime(task.CreatedAt),
		nullTime(task.UpdatedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $3,
		description = $4,
		hex_colour = $5,
		due_at = $6,
		done_at = $7,
		updated_at = NOW()
	WHERE id = $1 AND uid = $2
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UID,
		task.Title,
		task.Description,
		task.HexColour,
		task.DueAt,
		task.DoneAt,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id, uid string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND uid = $2`
	tag, err := r.pool.Exec(ctx, query, id, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Upsert resolves id conflicts in a single round trip. The conflict path
// overwrites only the mutable field subset and only when the incoming row is
// strictly newer and owned by the same user; created_at and uid survive every
// conflict. A stale or foreign write applies nothing and the stored row is
// returned unchanged.
func (r *taskRepository) Upsert(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, uid, title, description, hex_colour, due_at, done_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), COALESCE($9, NOW()))
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		description = EXCLUDED.description,
		hex_colour = EXCLUDED.hex_colour,
		due_at = EXCLUDED.due_at,
		done_at = EXCLUDED.done_at,
		updated_at = EXCLUDED.updated_at
	WHERE tasks.uid = EXCLUDED.uid
	  AND tasks.updated_at < EXCLUDED.updated_at
	RETURNING ` + taskColumns + `
	`

	row := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UID,
		task.Title,
		task.Description,
		task.HexColour,
		task.DueAt,
		task.DoneAt,
		nullTime(task.CreatedAt),
		nullTime(task.UpdatedAt),
	)

	stored, err := scanTask(row)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return nil, err
	}

	// The conflict guard rejected the write; surface the authoritative row.
	return r.GetByID(ctx, task.ID, task.UID)
}

func (r *taskRepository) DueWithin(ctx context.Context, uid string, w repository.Window, ref time.Time, limit int) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE uid = $1
	  AND due_at BETWEEN $2 AND $3
	ORDER BY ABS(EXTRACT(EPOCH FROM (due_at - $4::timestamptz)))
	LIMIT $5
	`
	rows, err := r.pool.Query(ctx, query, uid, w.Start, w.End, ref, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) ClosestToTimeOfDay(ctx context.Context, uid string, w repository.Window, ref time.Time) (*domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE uid = $1
	  AND due_at BETWEEN $2 AND $3
	ORDER BY ABS(EXTRACT(EPOCH FROM (due_at::time - $4::time)))
	LIMIT 1
	`
	row := r.pool.QueryRow(ctx, query, uid, w.Start, w.End, ref)
	task, err := scanTask(row)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return nil, nil
	}
	return task, err
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var done *time.Time

	if err := row.Scan(
		&task.ID,
		&task.UID,
		&task.Title,
		&task.Description,
		&task.HexColour,
		&task.DueAt,
		&done,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DoneAt = done
	return &task, nil
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
