// Package services orchestrates the transaction lifecycle and the
// derived monthly views on top of a Store.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// LedgerService owns the transaction state machine: creation plus the
// two legal transitions of reserved transactions.
type LedgerService struct {
	store  Store
	events EventPublisher
}

func NewLedgerService(store Store, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// CreateTransactionInput carries the raw caller-supplied fields. Type,
// amount and date arrive as strings and are validated here, so every
// malformed value surfaces as an ErrInvalidArgument kind.
type CreateTransactionInput struct {
	Type        string
	Amount      string
	Category    string
	Description string
	Date        string
	Reserved    bool
}

// Create validates the input and persists a new transaction. A
// non-reserved transaction is born completed; a reserved one pending.
func (s *LedgerService) Create(ctx context.Context, ownerID int64, in CreateTransactionInput) (core.Transaction, error) {
	typ, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	t, err := core.NewTransaction(ownerID, typ, amount, in.Category, in.Description, date, in.Reserved)
	if err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, saved.ID, ownerID, amqp.EventCreated)
	return saved, nil
}

// Complete realizes a reserved pending transaction. Any other prior
// state fails with ErrInvalidState and leaves the record untouched.
func (s *LedgerService) Complete(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	t, err := s.store.GetByIDAndOwner(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if !t.CanComplete() {
		return core.Transaction{}, fmt.Errorf("%w: only pending reserved transactions can be completed", core.ErrInvalidState)
	}

	// The store re-checks the status atomically, so a racing transition
	// on the same id leaves exactly one winner.
	updated, err := s.store.UpdateStatus(ctx, ownerID, id, []core.TransactionStatus{core.Pending}, core.Completed)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, id, ownerID, amqp.EventCompleted)
	return updated, nil
}

// Revert cancels a reserved transaction. Both pending and completed
// reserved transactions may be reverted; reverted is terminal.
func (s *LedgerService) Revert(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	t, err := s.store.GetByIDAndOwner(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if !t.CanRevert() {
		return core.Transaction{}, fmt.Errorf("%w: transaction cannot be reverted", core.ErrInvalidState)
	}

	updated, err := s.store.UpdateStatus(ctx, ownerID, id,
		[]core.TransactionStatus{core.Pending, core.Completed}, core.Reverted)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, id, ownerID, amqp.EventReverted)
	return updated, nil
}

// ListByMonth returns every transaction dated inside the month,
// regardless of status or reservation.
func (s *LedgerService) ListByMonth(ctx context.Context, ownerID int64, month core.Month) ([]core.Transaction, error) {
	set, err := s.store.ListByOwnerAndDateRange(ctx, ownerID, month.Start(), month.End())
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", month, err)
	}
	return set, nil
}

// ListReserved returns the owner's reserved transactions, optionally
// restricted to one month.
func (s *LedgerService) ListReserved(ctx context.Context, ownerID int64, month *core.Month) ([]core.Transaction, error) {
	if month != nil {
		set, err := s.store.ListReservedByOwnerAndDateRange(ctx, ownerID, month.Start(), month.End())
		if err != nil {
			return nil, fmt.Errorf("list reserved transactions for %s: %w", month, err)
		}
		return set, nil
	}
	set, err := s.store.ListReservedByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reserved transactions: %w", err)
	}
	return set, nil
}

func (s *LedgerService) publish(ctx context.Context, id, ownerID int64, event string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, id, ownerID, event); err != nil {
		// The record is already saved; the notify sweep picks it up.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "owner_id", ownerID, "event", event, "error", err)
	}
}
