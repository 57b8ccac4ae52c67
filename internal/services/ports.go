package services

import (
	"context"

	"fintrack/internal/core"
)

// Store is the persistence contract the services run against. Both the
// SQLite repository and the in-memory store implement it.
//
// UpdateStatus must be atomic: the row changes only if its current
// status is one of the expected ones, so concurrent transitions on the
// same transaction resolve to a single winner.
type Store interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetByIDAndOwner(ctx context.Context, ownerID, id int64) (core.Transaction, error)
	ListByOwnerAndDateRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error)
	ListReservedByOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error)
	ListReservedByOwnerAndDateRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error)
	UpdateStatus(ctx context.Context, ownerID, id int64, from []core.TransactionStatus, to core.TransactionStatus) (core.Transaction, error)
}

// EventPublisher hands transaction lifecycle events to the async
// notification pipeline. Publishing is best-effort: a failure is
// logged, never surfaced to the caller, and the store's notify sweep
// redelivers later.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id, ownerID int64, event string) error
}
