package usecase

// MutationJournal records applied sync mutations for local observability.
// Recording is best-effort and must never influence reconciliation outcomes.
type MutationJournal interface {
	RecordUpsert(uid, taskID string) error
	RecordDelete(uid, taskID string) error
}
