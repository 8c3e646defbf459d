package domain

import "time"

// Task is the sole persisted entity of the task list. The JSON tags are the
// wire contract shared by clients and the suggestion consumer.
type Task struct {
	ID          string     `json:"id"`
	UID         string     `json:"uid"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	HexColour   string     `json:"hexColour,omitempty"`
	DueAt       time.Time  `json:"dueAt"`
	DoneAt      *time.Time `json:"doneAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Task) IsDone() bool {
	return t != nil && t.DoneAt != nil
}

// SyncItem is one element of a client-submitted upsert batch. Draft marks a
// not-yet-acknowledged client-side creation; when the client omits the flag
// the reconciler falls back to inferring draft state from DoneAt absence.
type SyncItem struct {
	Task  Task
	Draft *bool
}

// IsDraft reports whether the item is a brand-new task whose client-supplied
// id must be discarded in favour of a server-assigned one.
func (i SyncItem) IsDraft() bool {
	if i.Draft != nil {
		return *i.Draft
	}
	return i.Task.DoneAt == nil
}
