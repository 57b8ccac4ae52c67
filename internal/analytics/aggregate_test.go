package analytics

import (
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(typ core.TransactionType, amount string, category string, date core.Date, reserved bool, status core.TransactionStatus) core.Transaction {
	return core.Transaction{
		Type:     typ,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     date,
		Reserved: reserved,
		Status:   status,
	}
}

func TestSumByTypeStatus(t *testing.T) {
	d := core.NewDate(2026, 8, 10)
	set := []core.Transaction{
		tx(core.Income, "1000.00", "Salary", d, false, core.Completed),
		tx(core.Income, "50.50", "Gift", d, false, core.Completed),
		tx(core.Expense, "600.00", "Food", d, false, core.Completed),
		tx(core.Expense, "200.00", "Travel", d, true, core.Pending),
	}

	cases := []struct {
		name   string
		typ    core.TransactionType
		status core.TransactionStatus
		want   string
	}{
		{"completed income", core.Income, core.Completed, "1050.50"},
		{"completed expense", core.Expense, core.Completed, "600.00"},
		{"pending expense", core.Expense, core.Pending, "200.00"},
		{"reverted income", core.Income, core.Reverted, "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SumByTypeStatus(set, tc.typ, tc.status)
			if core.FormatAmount(got) != tc.want {
				t.Errorf("got %s, want %s", core.FormatAmount(got), tc.want)
			}
		})
	}

	if got := SumByTypeStatus(nil, core.Income, core.Completed); core.FormatAmount(got) != "0.00" {
		t.Errorf("empty set sum = %s, want 0.00", core.FormatAmount(got))
	}
}

func TestBalanceExcludesPendingReserved(t *testing.T) {
	d := core.NewDate(2026, 8, 3)
	set := []core.Transaction{
		tx(core.Income, "1000.00", "Salary", d, false, core.Completed),
		tx(core.Expense, "600.00", "Food", d, false, core.Completed),
		tx(core.Expense, "200.00", "Rent", d, true, core.Pending),
	}

	if got := core.FormatAmount(Balance(set)); got != "400.00" {
		t.Errorf("Balance = %s, want 400.00", got)
	}
	if got := core.FormatAmount(ReservedBalance(set)); got != "-200.00" {
		t.Errorf("ReservedBalance = %s, want -200.00", got)
	}
}

func TestDailyTrendEmptyMonth(t *testing.T) {
	month := core.Month{Year: 2026, Month: 2}
	points := DailyTrend(month, nil)
	if len(points) != 28 {
		t.Fatalf("got %d points, want 28", len(points))
	}
	for i, p := range points {
		if !p.Income.IsZero() || !p.Expense.IsZero() {
			t.Errorf("day %d not zero: income=%s expense=%s", i+1, p.Income, p.Expense)
		}
		if want := month.Day(i + 1); p.Date != want {
			t.Errorf("day %d date = %s, want %s", i+1, p.Date, want)
		}
	}
}

func TestDailyTrend(t *testing.T) {
	month := core.Month{Year: 2026, Month: 8}
	set := []core.Transaction{
		tx(core.Income, "1000.00", "Salary", month.Day(1), false, core.Completed),
		tx(core.Expense, "20.00", "Food", month.Day(5), false, core.Completed),
		tx(core.Expense, "30.00", "Food", month.Day(5), false, core.Completed),
		// Pending and reverted records never reach the trend.
		tx(core.Expense, "99.00", "Food", month.Day(5), true, core.Pending),
		tx(core.Expense, "77.00", "Food", month.Day(6), true, core.Reverted),
	}
	points := DailyTrend(month, set)
	if len(points) != 31 {
		t.Fatalf("got %d points, want 31", len(points))
	}
	if got := core.FormatAmount(points[0].Income); got != "1000.00" {
		t.Errorf("day 1 income = %s", got)
	}
	if got := core.FormatAmount(points[4].Expense); got != "50.00" {
		t.Errorf("day 5 expense = %s", got)
	}
	if !points[5].Expense.IsZero() {
		t.Errorf("day 6 expense = %s, want zero", points[5].Expense)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	d := core.NewDate(2026, 8, 12)
	set := []core.Transaction{
		tx(core.Expense, "100.00", "Food", d, false, core.Completed),
		tx(core.Expense, "300.00", "Rent", d, false, core.Completed),
		tx(core.Expense, "50.00", "Food", d, false, core.Completed),
		tx(core.Expense, "150.00", "Travel", d, false, core.Completed),
		tx(core.Expense, "150.00", "Hobby", d, false, core.Completed),
		tx(core.Income, "900.00", "Salary", d, false, core.Completed),
		tx(core.Expense, "400.00", "Food", d, true, core.Pending),
	}

	got := CategoryBreakdown(set)
	if len(got) != 4 {
		t.Fatalf("got %d categories: %+v", len(got), got)
	}

	// Descending by total; Travel/Hobby tie keeps first-seen order.
	wantOrder := []string{"Rent", "Travel", "Hobby", "Food"}
	sum := decimal.Zero
	for i, w := range wantOrder {
		if got[i].Category != w {
			t.Errorf("rank %d = %s, want %s", i, got[i].Category, w)
		}
		if i > 0 && got[i].Total.GreaterThan(got[i-1].Total) {
			t.Errorf("breakdown not non-increasing at rank %d", i)
		}
		sum = sum.Add(got[i].Total)
	}
	if want := SumByTypeStatus(set, core.Expense, core.Completed); !sum.Equal(want) {
		t.Errorf("category totals sum to %s, want %s", sum, want)
	}
}

func TestCategoryPercentOfExpense(t *testing.T) {
	d := core.NewDate(2026, 8, 12)
	set := []core.Transaction{
		tx(core.Expense, "600.00", "Food", d, false, core.Completed),
		tx(core.Expense, "300.00", "Rent", d, false, core.Completed),
		tx(core.Expense, "100.00", "Fun", d, false, core.Completed),
	}

	got := CategoryPercentOfExpense(set)
	if len(got) != 3 {
		t.Fatalf("got %d entries", len(got))
	}
	want := map[string]string{"Food": "60.00", "Rent": "30.00", "Fun": "10.00"}
	for _, p := range got {
		if w := want[p.Category]; core.FormatAmount(p.Percent) != w {
			t.Errorf("%s = %s, want %s", p.Category, core.FormatAmount(p.Percent), w)
		}
	}
}

func TestCategoryPercentZeroExpense(t *testing.T) {
	if got := CategoryPercentOfExpense(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}
