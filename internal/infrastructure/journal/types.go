package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	OperationUpsert = "upsert"
	OperationDelete = "delete"
)

// Entry records one reconciled sync mutation. The journal is an append-only
// audit trail for telemetry; it is never replayed against the store.
type Entry struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	TaskID    string    `json:"taskId"`
	Operation string    `json:"operation"`
	AppliedAt time.Time `json:"appliedAt"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.AppliedAt.IsZero() {
		e.AppliedAt = time.Now()
	}
}

// buildKey orders entries chronologically so pruning scans oldest first.
func buildKey(e Entry) string {
	return fmt.Sprintf("%020d:%s", e.AppliedAt.UnixNano(), e.ID)
}
