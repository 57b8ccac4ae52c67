package insights

import (
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(typ core.TransactionType, amount, category string, status core.TransactionStatus) core.Transaction {
	return core.Transaction{
		Type:     typ,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     core.NewDate(2026, 8, 10),
		Status:   status,
	}
}

func month(income, expense string) []core.Transaction {
	return []core.Transaction{
		tx(core.Income, income, "Salary", core.Completed),
		tx(core.Expense, expense, "Food", core.Completed),
	}
}

func TestBuildScenario(t *testing.T) {
	// One completed income of 1000.00 and one completed expense of
	// 600.00 in category Food.
	current := month("1000.00", "600.00")

	got := Build(current, nil)

	if rate := core.FormatAmount(got.SavingsRate); rate != "40.00" {
		t.Errorf("SavingsRate = %s, want 40.00", rate)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Category != "Food" {
		t.Fatalf("Warnings = %+v, want single Food warning", got.Warnings)
	}
	if pct := core.FormatAmount(got.Warnings[0].Percent); pct != "100.00" {
		t.Errorf("Food warning percent = %s, want 100.00", pct)
	}
	// round(60 + 40/2 - 100/2) = 30
	if got.HealthScore != 30 {
		t.Errorf("HealthScore = %d, want 30", got.HealthScore)
	}
	// Rate 40 vs previous 0: improved.
	if got.MonthOverMonth != MessageImproved {
		t.Errorf("MonthOverMonth = %q", got.MonthOverMonth)
	}
	// Rate is >= 20, so only the category suggestion applies.
	if len(got.Suggestions) != 1 || got.Suggestions[0] != "Reduce spend in Food" {
		t.Errorf("Suggestions = %v", got.Suggestions)
	}
}

func TestMonthOverMonth(t *testing.T) {
	tests := []struct {
		name     string
		current  []core.Transaction
		previous []core.Transaction
		want     string
	}{
		{"improved", month("1000.00", "600.00"), month("1000.00", "700.00"), MessageImproved},
		{"declined", month("1000.00", "700.00"), month("1000.00", "600.00"), MessageDeclined},
		{"unchanged", month("1000.00", "600.00"), month("2000.00", "1200.00"), MessageUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.current, tt.previous)
			if got.MonthOverMonth != tt.want {
				t.Errorf("got %q, want %q", got.MonthOverMonth, tt.want)
			}
		})
	}
}

func TestLowSavingsSuggestion(t *testing.T) {
	// Rate 10.00 < 20 triggers the savings suggestion ahead of the
	// category one.
	got := Build(month("1000.00", "900.00"), nil)
	if len(got.Suggestions) != 2 {
		t.Fatalf("Suggestions = %v", got.Suggestions)
	}
	if got.Suggestions[0] != SuggestionRaiseSavings {
		t.Errorf("first suggestion = %q", got.Suggestions[0])
	}
	if got.Suggestions[1] != "Reduce spend in Food" {
		t.Errorf("second suggestion = %q", got.Suggestions[1])
	}
}

func TestNoIncomeZeroRate(t *testing.T) {
	set := []core.Transaction{tx(core.Expense, "50.00", "Food", core.Completed)}
	got := Build(set, nil)
	if !got.SavingsRate.IsZero() {
		t.Errorf("SavingsRate = %s, want 0", got.SavingsRate)
	}
	if got.MonthOverMonth != MessageUnchanged {
		t.Errorf("MonthOverMonth = %q", got.MonthOverMonth)
	}
	// round(60 + 0 - 100/2) = 10
	if got.HealthScore != 10 {
		t.Errorf("HealthScore = %d, want 10", got.HealthScore)
	}
}

func TestEmptyMonths(t *testing.T) {
	got := Build(nil, nil)
	if !got.SavingsRate.IsZero() || len(got.Warnings) != 0 {
		t.Errorf("unexpected result: %+v", got)
	}
	if got.HealthScore != 60 {
		t.Errorf("HealthScore = %d, want 60", got.HealthScore)
	}
	// Zero rate is below 20, so the savings suggestion still fires.
	if len(got.Suggestions) != 1 || got.Suggestions[0] != SuggestionRaiseSavings {
		t.Errorf("Suggestions = %v", got.Suggestions)
	}
	if got.MonthOverMonth != MessageUnchanged {
		t.Errorf("MonthOverMonth = %q", got.MonthOverMonth)
	}
}

func TestWarningsSortedDescending(t *testing.T) {
	d := core.NewDate(2026, 8, 1)
	set := []core.Transaction{
		{Type: core.Income, Amount: decimal.RequireFromString("100.00"), Category: "Salary", Date: d, Status: core.Completed},
		{Type: core.Expense, Amount: decimal.RequireFromString("45.00"), Category: "Rent", Date: d, Status: core.Completed},
		{Type: core.Expense, Amount: decimal.RequireFromString("55.00"), Category: "Food", Date: d, Status: core.Completed},
	}
	got := Build(set, nil)
	if len(got.Warnings) != 2 {
		t.Fatalf("Warnings = %+v", got.Warnings)
	}
	if got.Warnings[0].Category != "Food" || got.Warnings[1].Category != "Rent" {
		t.Errorf("warning order = %+v", got.Warnings)
	}
}
