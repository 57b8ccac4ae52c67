// Package worker delivers transaction lifecycle notifications. Events
// normally arrive over AMQP; a periodic sweep over the store's pending
// rows recovers anything a lost message left behind.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// NotificationStore is the slice of the store the worker needs.
type NotificationStore interface {
	GetByIDAndOwner(ctx context.Context, ownerID, id int64) (core.Transaction, error)
	ListPendingNotifications(ctx context.Context, limit int) ([]storage.PendingNotification, error)
	MarkNotified(ctx context.Context, id int64) error
	MarkNotifyError(ctx context.Context, id int64) error
}

// Notifier delivers one event about a transaction to its owner.
type Notifier interface {
	Notify(ctx context.Context, event string, t core.Transaction) error
}

// NotifyWorker consumes lifecycle events and marks each transaction's
// notify state according to the delivery outcome.
type NotifyWorker struct {
	store     NotificationStore
	notifier  Notifier
	batchSize int
}

func NewNotifyWorker(store NotificationStore, notifier Notifier, batchSize int) *NotifyWorker {
	return &NotifyWorker{
		store:     store,
		notifier:  notifier,
		batchSize: batchSize,
	}
}

// HandleEventMessage processes one AMQP lifecycle event. A returned
// error makes the consumer requeue the delivery.
func (w *NotifyWorker) HandleEventMessage(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		"owner_id", msg.OwnerID,
		"event", msg.Event)

	return w.deliver(ctx, msg.ID, msg.OwnerID, msg.Event)
}

// ProcessPendingNotifications sweeps transactions whose last event has
// not been delivered yet. This is the backup path for lost AMQP
// messages; failed rows are marked and skipped, not retried in place.
func (w *NotifyWorker) ProcessPendingNotifications(ctx context.Context) error {
	pending, err := w.store.ListPendingNotifications(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending notifications: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending notifications", "count", len(pending))

	for _, p := range pending {
		if err := w.deliver(ctx, p.ID, p.OwnerID, p.Event); err != nil {
			slog.ErrorContext(ctx, "Failed to deliver pending notification",
				"id", p.ID, "event", p.Event, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck drains a larger pending batch once at worker start, to
// recover from downtime before the periodic sweep kicks in.
func (w *NotifyWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingNotifications(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending notifications for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending notifications found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending notifications on startup, processing...",
		"count", len(pending))

	delivered := 0
	failed := 0
	for _, p := range pending {
		if err := w.deliver(ctx, p.ID, p.OwnerID, p.Event); err != nil {
			slog.ErrorContext(ctx, "Failed to deliver notification during startup",
				"id", p.ID, "event", p.Event, "error", err)
			failed++
			continue
		}
		delivered++
	}

	slog.InfoContext(ctx, "Startup notification check completed",
		"total", len(pending),
		"delivered", delivered,
		"errors", failed)

	return nil
}

func (w *NotifyWorker) deliver(ctx context.Context, id, ownerID int64, event string) error {
	t, err := w.store.GetByIDAndOwner(ctx, ownerID, id)
	if err != nil {
		if markErr := w.store.MarkNotifyError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark notify error", "id", id, "error", markErr)
		}
		return fmt.Errorf("load transaction %d: %w", id, err)
	}

	if err := w.notifier.Notify(ctx, event, t); err != nil {
		if markErr := w.store.MarkNotifyError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark notify error", "id", id, "error", markErr)
		}
		return fmt.Errorf("notify owner %d: %w", ownerID, err)
	}

	if err := w.store.MarkNotified(ctx, id); err != nil {
		// Delivery worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as notified", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Delivered transaction notification",
		"id", id,
		"owner_id", ownerID,
		"event", event)

	return nil
}

// LogNotifier writes notifications to the structured log. It stands in
// for a real delivery channel (mail, push) in dev and tests.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, event string, t core.Transaction) error {
	slog.InfoContext(ctx, "Transaction notification",
		"event", event,
		"id", t.ID,
		"owner_id", t.OwnerID,
		"type", t.Type,
		"amount", core.FormatAmount(t.Amount),
		"category", t.Category,
		"status", t.Status)
	return nil
}
