package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/memory"
)

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(ctx context.Context, id, ownerID int64, event string) error {
	p.events = append(p.events, event)
	return p.err
}

func mustCreate(t *testing.T, svc *LedgerService, ownerID int64, in CreateTransactionInput) core.Transaction {
	t.Helper()
	tx, err := svc.Create(context.Background(), ownerID, in)
	if err != nil {
		t.Fatalf("Create(%+v) error = %v", in, err)
	}
	return tx
}

func TestLedgerCreateStatus(t *testing.T) {
	svc := NewLedgerService(memory.NewStore(), nil)

	plain := mustCreate(t, svc, 1, CreateTransactionInput{
		Type: "expense", Amount: "12.50", Category: "Food", Date: "2026-08-03",
	})
	if plain.Status != core.Completed {
		t.Errorf("non-reserved status = %s, want %s", plain.Status, core.Completed)
	}

	reserved := mustCreate(t, svc, 1, CreateTransactionInput{
		Type: "expense", Amount: "99.00", Category: "Travel", Date: "2026-08-04", Reserved: true,
	})
	if reserved.Status != core.Pending {
		t.Errorf("reserved status = %s, want %s", reserved.Status, core.Pending)
	}
	if reserved.ID == plain.ID {
		t.Error("expected distinct ids")
	}
}

func TestLedgerCreateInvalidInput(t *testing.T) {
	svc := NewLedgerService(memory.NewStore(), nil)

	tests := []struct {
		name string
		in   CreateTransactionInput
	}{
		{"bad type", CreateTransactionInput{Type: "transfer", Amount: "1.00", Category: "X", Date: "2026-08-01"}},
		{"negative amount", CreateTransactionInput{Type: "expense", Amount: "-5.00", Category: "X", Date: "2026-08-01"}},
		{"bad amount", CreateTransactionInput{Type: "expense", Amount: "ten", Category: "X", Date: "2026-08-01"}},
		{"bad date", CreateTransactionInput{Type: "expense", Amount: "1.00", Category: "X", Date: "03/08/2026"}},
		{"empty category", CreateTransactionInput{Type: "expense", Amount: "1.00", Category: "  ", Date: "2026-08-01"}},
		{"long description", CreateTransactionInput{Type: "expense", Amount: "1.00", Category: "X", Description: strings.Repeat("a", 256), Date: "2026-08-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.in)
			if !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("Create error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestLedgerCompleteAndRevert(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.NewStore(), pub)
	ctx := context.Background()

	reserved := mustCreate(t, svc, 1, CreateTransactionInput{
		Type: "expense", Amount: "50.00", Category: "Food", Date: "2026-08-05", Reserved: true,
	})

	completed, err := svc.Complete(ctx, 1, reserved.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completed.Status != core.Completed {
		t.Errorf("status after complete = %s, want %s", completed.Status, core.Completed)
	}

	// Completing twice must fail and leave the record untouched.
	if _, err := svc.Complete(ctx, 1, reserved.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("second Complete error = %v, want ErrInvalidState", err)
	}

	reverted, err := svc.Revert(ctx, 1, reserved.ID)
	if err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	if reverted.Status != core.Reverted {
		t.Errorf("status after revert = %s, want %s", reverted.Status, core.Reverted)
	}

	// Reverted is terminal.
	if _, err := svc.Revert(ctx, 1, reserved.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("Revert after revert error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.Complete(ctx, 1, reserved.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("Complete after revert error = %v, want ErrInvalidState", err)
	}

	want := []string{"created", "completed", "reverted"}
	if !reflect.DeepEqual(pub.events, want) {
		t.Errorf("published events = %v, want %v", pub.events, want)
	}
}

func TestLedgerTransitionsRejectNonReserved(t *testing.T) {
	svc := NewLedgerService(memory.NewStore(), nil)
	ctx := context.Background()

	plain := mustCreate(t, svc, 1, CreateTransactionInput{
		Type: "income", Amount: "100.00", Category: "Salary", Date: "2026-08-01",
	})

	if _, err := svc.Complete(ctx, 1, plain.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("Complete non-reserved error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.Revert(ctx, 1, plain.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("Revert non-reserved error = %v, want ErrInvalidState", err)
	}
}

func TestLedgerTransitionsWrongOwner(t *testing.T) {
	svc := NewLedgerService(memory.NewStore(), nil)
	ctx := context.Background()

	reserved := mustCreate(t, svc, 1, CreateTransactionInput{
		Type: "expense", Amount: "10.00", Category: "Food", Date: "2026-08-01", Reserved: true,
	})

	if _, err := svc.Complete(ctx, 2, reserved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Complete wrong owner error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Revert(ctx, 2, reserved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Revert wrong owner error = %v, want ErrNotFound", err)
	}
}

func TestLedgerPublishFailureDoesNotFailCreate(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewLedgerService(memory.NewStore(), pub)

	tx := mustCreate(t, svc, 1, CreateTransactionInput{
		Type: "expense", Amount: "5.00", Category: "Food", Date: "2026-08-01",
	})
	if tx.ID == 0 {
		t.Error("expected transaction to be persisted despite publish failure")
	}
}

func TestLedgerListByMonthAndReserved(t *testing.T) {
	svc := NewLedgerService(memory.NewStore(), nil)
	ctx := context.Background()

	mustCreate(t, svc, 1, CreateTransactionInput{Type: "expense", Amount: "1.00", Category: "A", Date: "2026-07-31"})
	aug := mustCreate(t, svc, 1, CreateTransactionInput{Type: "expense", Amount: "2.00", Category: "B", Date: "2026-08-10", Reserved: true})
	mustCreate(t, svc, 1, CreateTransactionInput{Type: "expense", Amount: "3.00", Category: "C", Date: "2026-09-01", Reserved: true})
	mustCreate(t, svc, 2, CreateTransactionInput{Type: "expense", Amount: "4.00", Category: "D", Date: "2026-08-10"})

	month, _ := core.ParseMonth("2026-08")

	set, err := svc.ListByMonth(ctx, 1, month)
	if err != nil {
		t.Fatalf("ListByMonth() error = %v", err)
	}
	if len(set) != 1 || set[0].ID != aug.ID {
		t.Errorf("ListByMonth() = %v, want only id %d", set, aug.ID)
	}

	all, err := svc.ListReserved(ctx, 1, nil)
	if err != nil {
		t.Fatalf("ListReserved() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListReserved(nil month) len = %d, want 2", len(all))
	}

	scoped, err := svc.ListReserved(ctx, 1, &month)
	if err != nil {
		t.Fatalf("ListReserved(month) error = %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != aug.ID {
		t.Errorf("ListReserved(month) = %v, want only id %d", scoped, aug.ID)
	}
}

func TestDashboardSummary(t *testing.T) {
	store := memory.NewStore()
	ledger := NewLedgerService(store, nil)
	dash := NewDashboardService(store)
	ctx := context.Background()

	mustCreate(t, ledger, 1, CreateTransactionInput{Type: "income", Amount: "1000.00", Category: "Salary", Date: "2026-08-01"})
	mustCreate(t, ledger, 1, CreateTransactionInput{Type: "expense", Amount: "600.00", Category: "Rent", Date: "2026-08-02"})
	mustCreate(t, ledger, 1, CreateTransactionInput{Type: "expense", Amount: "200.00", Category: "Food", Date: "2026-08-03", Reserved: true})

	month, _ := core.ParseMonth("2026-08")

	sum, err := dash.Summary(ctx, 1, month)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if got := core.FormatAmount(sum.TotalIncome); got != "1000.00" {
		t.Errorf("TotalIncome = %s, want 1000.00", got)
	}
	if got := core.FormatAmount(sum.TotalExpense); got != "600.00" {
		t.Errorf("TotalExpense = %s, want 600.00", got)
	}
	if got := core.FormatAmount(sum.Balance); got != "400.00" {
		t.Errorf("Balance = %s, want 400.00", got)
	}
	if got := core.FormatAmount(sum.ReservedBalance); got != "-200.00" {
		t.Errorf("ReservedBalance = %s, want -200.00", got)
	}
	if len(sum.DailyTrend) != month.Days() {
		t.Errorf("DailyTrend len = %d, want %d", len(sum.DailyTrend), month.Days())
	}
	// Pending reserved spend must not appear in the breakdown.
	if len(sum.CategoryBreakdown) != 1 || sum.CategoryBreakdown[0].Category != "Rent" {
		t.Errorf("CategoryBreakdown = %v, want only Rent", sum.CategoryBreakdown)
	}

	again, err := dash.Summary(ctx, 1, month)
	if err != nil {
		t.Fatalf("second Summary() error = %v", err)
	}
	if !reflect.DeepEqual(sum, again) {
		t.Error("Summary is not idempotent across identical calls")
	}
}

func TestInsightServiceComparesMonths(t *testing.T) {
	store := memory.NewStore()
	ledger := NewLedgerService(store, nil)
	svc := NewInsightService(store)
	ctx := context.Background()

	// July: savings rate 10%. August: savings rate 40%.
	mustCreate(t, ledger, 1, CreateTransactionInput{Type: "income", Amount: "1000.00", Category: "Salary", Date: "2026-07-01"})
	mustCreate(t, ledger, 1, CreateTransactionInput{Type: "expense", Amount: "900.00", Category: "Rent", Date: "2026-07-02"})
	mustCreate(t, ledger, 1, CreateTransactionInput{Type: "income", Amount: "1000.00", Category: "Salary", Date: "2026-08-01"})
	mustCreate(t, ledger, 1, CreateTransactionInput{Type: "expense", Amount: "600.00", Category: "Rent", Date: "2026-08-02"})

	month, _ := core.ParseMonth("2026-08")

	got, err := svc.Insights(ctx, 1, month)
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if rate := core.FormatAmount(got.SavingsRate); rate != "40.00" {
		t.Errorf("SavingsRate = %s, want 40.00", rate)
	}
	if got.MonthOverMonth != insights.MessageImproved {
		t.Errorf("MonthOverMonth = %q, want %q", got.MonthOverMonth, insights.MessageImproved)
	}
}

func TestReportExport(t *testing.T) {
	store := memory.NewStore()
	ledger := NewLedgerService(store, nil)
	svc := NewReportService(store)
	ctx := context.Background()

	mustCreate(t, ledger, 1, CreateTransactionInput{
		Type: "expense", Amount: "12.50", Category: "Food", Description: "lunch", Date: "2026-08-03",
	})

	month, _ := core.ParseMonth("2026-08")

	csv, err := svc.Export(ctx, 1, month, "csv")
	if err != nil {
		t.Fatalf("Export(csv) error = %v", err)
	}
	if csv.Filename != "transactions-2026-08.csv" {
		t.Errorf("csv filename = %q", csv.Filename)
	}
	if csv.ContentType != "text/csv; charset=utf-8" {
		t.Errorf("csv content type = %q", csv.ContentType)
	}
	if !strings.Contains(string(csv.Data), "2026-08-03,expense,Food,12.50,lunch,completed") {
		t.Errorf("csv body missing row: %q", csv.Data)
	}

	doc, err := svc.Export(ctx, 1, month, "document")
	if err != nil {
		t.Fatalf("Export(document) error = %v", err)
	}
	if doc.Filename != "transactions-2026-08.txt" {
		t.Errorf("document filename = %q", doc.Filename)
	}
	if !strings.Contains(string(doc.Data), "Transaction Report - 2026-08") {
		t.Errorf("document body missing title: %q", doc.Data)
	}

	// Empty format defaults to CSV.
	def, err := svc.Export(ctx, 1, month, "")
	if err != nil {
		t.Fatalf("Export(default) error = %v", err)
	}
	if def.Filename != csv.Filename {
		t.Errorf("default filename = %q, want %q", def.Filename, csv.Filename)
	}

	if _, err := svc.Export(ctx, 1, month, "xlsx"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Export(xlsx) error = %v, want ErrInvalidArgument", err)
	}
}
