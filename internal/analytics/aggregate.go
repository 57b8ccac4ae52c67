// Package analytics computes aggregate views over an in-memory set of
// transactions: type/status sums, daily trend series and category
// breakdowns. Every function is pure and never fails on empty input;
// an empty set yields exact zeros, not errors.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// TrendPoint is one calendar day of completed income and expense.
type TrendPoint struct {
	Date    core.Date
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategoryAmount is a completed-expense total for one category.
type CategoryAmount struct {
	Category string
	Total    decimal.Decimal
}

// CategoryPercent is a category's share of total completed expense.
type CategoryPercent struct {
	Category string
	Percent  decimal.Decimal
}

// SumByTypeStatus sums amounts over records matching type and status.
func SumByTypeStatus(set []core.Transaction, typ core.TransactionType, status core.TransactionStatus) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range set {
		if t.Type == typ && t.Status == status {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// SumReservedByTypeStatus is SumByTypeStatus restricted to reserved records.
func SumReservedByTypeStatus(set []core.Transaction, typ core.TransactionType, status core.TransactionStatus) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range set {
		if t.Reserved && t.Type == typ && t.Status == status {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// Balance is completed income minus completed expense.
func Balance(set []core.Transaction) decimal.Decimal {
	return SumByTypeStatus(set, core.Income, core.Completed).
		Sub(SumByTypeStatus(set, core.Expense, core.Completed))
}

// ReservedBalance is pending reserved income minus pending reserved
// expense. Pending reserved money is tracked apart from completed
// totals and never mixed into Balance.
func ReservedBalance(set []core.Transaction) decimal.Decimal {
	return SumReservedByTypeStatus(set, core.Income, core.Pending).
		Sub(SumReservedByTypeStatus(set, core.Expense, core.Pending))
}

// DailyTrend returns one point per calendar day of the month, ascending,
// counting only completed records. Idle days contribute zeros, so the
// slice length always equals the number of days in the month.
func DailyTrend(month core.Month, set []core.Transaction) []TrendPoint {
	incomeByDay := make(map[core.Date]decimal.Decimal)
	expenseByDay := make(map[core.Date]decimal.Decimal)
	for _, t := range set {
		if t.Status != core.Completed {
			continue
		}
		switch t.Type {
		case core.Income:
			incomeByDay[t.Date] = incomeByDay[t.Date].Add(t.Amount)
		case core.Expense:
			expenseByDay[t.Date] = expenseByDay[t.Date].Add(t.Amount)
		}
	}

	points := make([]TrendPoint, 0, month.Days())
	for day := 1; day <= month.Days(); day++ {
		d := month.Day(day)
		p := TrendPoint{Date: d, Income: decimal.Zero, Expense: decimal.Zero}
		if v, ok := incomeByDay[d]; ok {
			p.Income = v
		}
		if v, ok := expenseByDay[d]; ok {
			p.Expense = v
		}
		points = append(points, p)
	}
	return points
}

// CategoryBreakdown groups completed expenses by category, sorted
// descending by total. Ties keep first-seen category order, which makes
// the ranking stable across repeated calls on the same set.
func CategoryBreakdown(set []core.Transaction) []CategoryAmount {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, t := range set {
		if t.Type != core.Expense || t.Status != core.Completed {
			continue
		}
		if _, ok := totals[t.Category]; !ok {
			order = append(order, t.Category)
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryAmount{Category: cat, Total: totals[cat]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// CategoryPercentOfExpense converts the breakdown into percentages of
// total completed expense, half-up to two decimals. A zero expense
// total divides by one instead of zero.
func CategoryPercentOfExpense(set []core.Transaction) []CategoryPercent {
	total := SumByTypeStatus(set, core.Expense, core.Completed)
	breakdown := CategoryBreakdown(set)

	out := make([]CategoryPercent, 0, len(breakdown))
	for _, b := range breakdown {
		out = append(out, CategoryPercent{
			Category: b.Category,
			Percent:  core.Percent(b.Total, total),
		})
	}
	return out
}
