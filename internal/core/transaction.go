package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Pending   TransactionStatus = "pending"
	Completed TransactionStatus = "completed"
	Reverted  TransactionStatus = "reverted"
)

type (
	TransactionType   string
	TransactionStatus string

	// Transaction is a single dated money record owned by one user.
	// Fields are immutable after creation; the only state that ever
	// changes is Status, and only through the store's conditional update.
	Transaction struct {
		ID          int64
		OwnerID     int64
		Type        TransactionType
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        Date
		Reserved    bool
		Status      TransactionStatus
		CreatedAt   time.Time
	}
)

// Error kinds. Everything a caller can recover from is one of these
// three; the field-level sentinels below all wrap ErrInvalidArgument so
// boundaries can match on the kind with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("transaction not found")
	ErrInvalidState    = errors.New("invalid transaction state")

	ErrInvalidType     = fmt.Errorf("%w: invalid transaction type", ErrInvalidArgument)
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrInvalidArgument)
	ErrInvalidDate     = fmt.Errorf("%w: invalid date", ErrInvalidArgument)
	ErrInvalidMonth    = fmt.Errorf("%w: invalid month", ErrInvalidArgument)
	ErrEmptyCategory   = fmt.Errorf("%w: empty category", ErrInvalidArgument)
	ErrLongDescription = fmt.Errorf("%w: description too long (max 200 characters)", ErrInvalidArgument)
)

// ParseTransactionType normalizes and validates a type string.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

// InitialStatus returns the status a new transaction is created with.
// Non-reserved transactions are realized immediately; reserved ones
// stay pending until completed or reverted.
func InitialStatus(reserved bool) TransactionStatus {
	if reserved {
		return Pending
	}
	return Completed
}

// NewTransaction builds an unpersisted transaction, validating every
// caller-supplied field. ID and CreatedAt are assigned by the store.
func NewTransaction(ownerID int64, typ TransactionType, amount decimal.Decimal, category, description string, date Date, reserved bool) (Transaction, error) {
	t := Transaction{
		OwnerID:     ownerID,
		Type:        typ,
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		Date:        date,
		Reserved:    reserved,
		Status:      InitialStatus(reserved),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrLongDescription
	}
	return nil
}

// CanComplete reports whether the pending→completed transition is legal.
func (t Transaction) CanComplete() bool {
	return t.Reserved && t.Status == Pending
}

// CanRevert reports whether the transition to reverted is legal. Both
// pending and already-completed reserved transactions may be reverted;
// reverted is terminal.
func (t Transaction) CanRevert() bool {
	return t.Reserved && t.Status != Reverted
}
