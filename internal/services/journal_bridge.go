package services

import (
	"github.com/tasknest/backend/internal/infrastructure/journal"
	"github.com/tasknest/backend/usecase"
)

// JournalBridge adapts the BoltDB journal store to the use-case port.
type JournalBridge struct {
	store *journal.Store
}

func NewJournalBridge(store *journal.Store) *JournalBridge {
	return &JournalBridge{store: store}
}

func (b *JournalBridge) RecordUpsert(uid, taskID string) error {
	return b.append(uid, taskID, journal.OperationUpsert)
}

func (b *JournalBridge) RecordDelete(uid, taskID string) error {
	return b.append(uid, taskID, journal.OperationDelete)
}

func (b *JournalBridge) append(uid, taskID, operation string) error {
	if b == nil || b.store == nil {
		return nil
	}
	return b.store.Append(journal.Entry{
		UID:       uid,
		TaskID:    taskID,
		Operation: operation,
	})
}

var _ usecase.MutationJournal = (*JournalBridge)(nil)
