package transport

import (
	"time"

	"github.com/tasknest/backend/domain"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskRequest is the wire shape of a task mutation. Timestamps travel as
// RFC3339 strings and are coerced before anything reaches the store.
type TaskRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	HexColour   string `json:"hexColour"`
	DueAt       string `json:"dueAt"`
	DoneAt      string `json:"doneAt"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ToDomain coerces the wire payload into a domain task. An unparseable or
// missing dueAt is a validation failure; doneAt is null-safe.
func (r TaskRequest) ToDomain() (domain.Task, error) {
	dueAt, err := parseTime(r.DueAt)
	if err != nil || dueAt.IsZero() {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid dueAt", err)
	}

	doneAt, err := parseOptionalTime(r.DoneAt)
	if err != nil {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid doneAt", err)
	}
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid createdAt", err)
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid updatedAt", err)
	}

	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		HexColour:   r.HexColour,
		DueAt:       dueAt,
		DoneAt:      doneAt,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// SyncTaskRequest carries one upsert batch element. PendingUpdate and
// PendingDelete are client-side queue bookkeeping accepted on the wire and
// dropped here; Draft explicitly marks a not-yet-acknowledged creation.
type SyncTaskRequest struct {
	TaskRequest
	Draft         *bool `json:"draft,omitempty"`
	PendingUpdate bool  `json:"pendingUpdate,omitempty"`
	PendingDelete bool  `json:"pendingDelete,omitempty"`
}

// ToItem strips the bookkeeping fields and yields the reconciler's input.
func (r SyncTaskRequest) ToItem() (domain.SyncItem, error) {
	task, err := r.TaskRequest.ToDomain()
	if err != nil {
		return domain.SyncItem{}, err
	}
	return domain.SyncItem{
		Task:  task,
		Draft: r.Draft,
	}, nil
}

// SyncDeleteRequest identifies one row of a delete batch.
type SyncDeleteRequest struct {
	ID string `json:"id"`
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
