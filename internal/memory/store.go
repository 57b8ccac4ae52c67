// Package memory is an in-process transaction store with the same
// semantics as the SQLite repository, including the conditional status
// update. It backs unit tests and the dev backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type record struct {
	tx          core.Transaction
	lastEvent   string
	notifyState string
}

type Store struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*record
}

func NewStore() *Store {
	return &Store{
		nextID: 1,
		byID:   make(map[int64]*record),
	}
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	t.CreatedAt = time.Now().UTC()
	s.byID[t.ID] = &record{tx: t, lastEvent: "created", notifyState: storage.NotifyPending}
	return t, nil
}

func (s *Store) GetByIDAndOwner(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.tx.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}
	return rec.tx, nil
}

func (s *Store) ListByOwnerAndDateRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error) {
	return s.list(func(t core.Transaction) bool {
		return t.OwnerID == ownerID && inRange(t.Date, start, end)
	}), nil
}

func (s *Store) ListReservedByOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return s.list(func(t core.Transaction) bool {
		return t.OwnerID == ownerID && t.Reserved
	}), nil
}

func (s *Store) ListReservedByOwnerAndDateRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error) {
	return s.list(func(t core.Transaction) bool {
		return t.OwnerID == ownerID && t.Reserved && inRange(t.Date, start, end)
	}), nil
}

// UpdateStatus applies the transition under the store lock, so two
// racing calls on the same id serialize and only one passes the status
// precondition.
func (s *Store) UpdateStatus(ctx context.Context, ownerID, id int64, from []core.TransactionStatus, to core.TransactionStatus) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.tx.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}

	matched := false
	for _, st := range from {
		if rec.tx.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return core.Transaction{}, fmt.Errorf("%w: status is %s", core.ErrInvalidState, rec.tx.Status)
	}

	rec.tx.Status = to
	rec.lastEvent = string(to)
	rec.notifyState = storage.NotifyPending
	return rec.tx, nil
}

func (s *Store) ListPendingNotifications(ctx context.Context, limit int) ([]storage.PendingNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.byID))
	for id, rec := range s.byID {
		if rec.notifyState == storage.NotifyPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []storage.PendingNotification
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		rec := s.byID[id]
		out = append(out, storage.PendingNotification{ID: id, OwnerID: rec.tx.OwnerID, Event: rec.lastEvent})
	}
	return out, nil
}

func (s *Store) MarkNotified(ctx context.Context, id int64) error {
	return s.setNotifyState(id, storage.NotifySent)
}

func (s *Store) MarkNotifyError(ctx context.Context, id int64) error {
	return s.setNotifyState(id, storage.NotifyError)
}

func (s *Store) setNotifyState(id int64, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	rec.notifyState = state
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) list(keep func(core.Transaction) bool) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, rec := range s.byID {
		if keep(rec.tx) {
			out = append(out, rec.tx)
		}
	}
	// Same order as the SQL store: date ascending, then id.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func inRange(d, start, end core.Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}
