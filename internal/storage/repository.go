// Package storage persists transactions in SQLite. Amounts are stored
// as integer cents so no precision is ever lost; dates as 2006-01-02
// text so range queries compare lexicographically.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// Notify states for the event hand-off sweep.
const (
	NotifyPending = "pending"
	NotifySent    = "sent"
	NotifyError   = "error"
)

// PendingNotification is the minimal record the notify worker needs to
// re-deliver a missed transaction event.
type PendingNotification struct {
	ID      int64
	OwnerID int64
	Event   string
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, owner_id, type, amount_cents, category, description, tx_date, reserved, status, created_at"

// CreateTransaction inserts the record and returns it with the
// generated id and creation timestamp filled in.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	createdAt := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner_id, type, amount_cents, category, description, tx_date, reserved, status, created_at, last_event, notify_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'created', ?)`,
		t.OwnerID, string(t.Type), core.AmountToCents(t.Amount), t.Category, t.Description,
		t.Date.String(), t.Reserved, string(t.Status), createdAt.Format(time.RFC3339), NotifyPending)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	t.ID = id
	t.CreatedAt = createdAt

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner_id", t.OwnerID,
		"type", t.Type,
		"amount", core.FormatAmount(t.Amount),
		"reserved", t.Reserved,
		"status", t.Status)

	return t, nil
}

// GetByIDAndOwner loads one transaction scoped to its owner. A record
// owned by someone else is indistinguishable from a missing one.
func (r *SQLiteRepository) GetByIDAndOwner(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND owner_id = ?", id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// ListByOwnerAndDateRange returns the owner's transactions dated inside
// the inclusive range, ascending by date then id.
func (r *SQLiteRepository) ListByOwnerAndDateRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE owner_id = ? AND tx_date >= ? AND tx_date <= ?
		 ORDER BY tx_date, id`,
		ownerID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions by date range: %w", err)
	}
	return collectTransactions(rows)
}

// ListReservedByOwner returns all reserved transactions for the owner.
func (r *SQLiteRepository) ListReservedByOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE owner_id = ? AND reserved = 1
		 ORDER BY tx_date, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reserved transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListReservedByOwnerAndDateRange restricts reserved transactions to
// the inclusive date range.
func (r *SQLiteRepository) ListReservedByOwnerAndDateRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE owner_id = ? AND reserved = 1 AND tx_date >= ? AND tx_date <= ?
		 ORDER BY tx_date, id`,
		ownerID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list reserved transactions by date range: %w", err)
	}
	return collectTransactions(rows)
}

// UpdateStatus performs the status transition as one conditional
// update: the row must currently hold one of the expected statuses or
// nothing changes. Two racing transitions on the same id therefore
// resolve to exactly one winner; the loser sees ErrInvalidState.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, ownerID, id int64, from []core.TransactionStatus, to core.TransactionStatus) (core.Transaction, error) {
	placeholders := make([]string, len(from))
	args := []any{string(to), string(to)}
	for i, s := range from {
		placeholders[i] = "?"
		args = append(args, string(s))
	}
	args = append(args, id, ownerID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ?, last_event = ?, notify_state = 'pending'
		 WHERE status IN (`+strings.Join(placeholders, ", ")+`) AND id = ? AND owner_id = ?`,
		args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}

	t, getErr := r.GetByIDAndOwner(ctx, ownerID, id)
	if affected == 0 {
		if errors.Is(getErr, core.ErrNotFound) {
			return core.Transaction{}, core.ErrNotFound
		}
		if getErr != nil {
			return core.Transaction{}, getErr
		}
		return core.Transaction{}, fmt.Errorf("%w: status is %s", core.ErrInvalidState, t.Status)
	}
	if getErr != nil {
		return core.Transaction{}, getErr
	}

	slog.InfoContext(ctx, "Transaction status updated",
		"id", id,
		"owner_id", ownerID,
		"status", t.Status)

	return t, nil
}

// ListPendingNotifications returns transactions whose latest lifecycle
// event has not been handed to the notifier yet.
func (r *SQLiteRepository) ListPendingNotifications(ctx context.Context, limit int) ([]PendingNotification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, last_event FROM transactions
		 WHERE notify_state = ? ORDER BY id LIMIT ?`, NotifyPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	defer rows.Close()

	var out []PendingNotification
	for rows.Next() {
		var p PendingNotification
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Event); err != nil {
			return nil, fmt.Errorf("scan pending notification: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkNotified records that the latest event for the transaction was
// delivered.
func (r *SQLiteRepository) MarkNotified(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET notify_state = ? WHERE id = ?", NotifySent, id); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// MarkNotifyError flags a delivery failure for the periodic sweep.
func (r *SQLiteRepository) MarkNotifyError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET notify_state = ? WHERE id = ?", NotifyError, id); err != nil {
		return fmt.Errorf("mark notify error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with notify error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		typ        string
		cents      int64
		dateStr    string
		status     string
		createdStr string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &typ, &cents, &t.Category, &t.Description, &dateStr, &t.Reserved, &status, &createdStr)
	if err != nil {
		return core.Transaction{}, err
	}

	t.Type = core.TransactionType(typ)
	t.Amount = core.AmountFromCents(cents)
	t.Status = core.TransactionStatus(status)

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	t.Date = date

	createdAt, err := time.Parse(time.RFC3339, createdStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored timestamp %q: %w", createdStr, err)
	}
	t.CreatedAt = createdAt

	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
