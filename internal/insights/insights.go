// Package insights derives the savings-rate heuristic from two months
// of transactions. The rules are fixed thresholds, not a model: the
// output is deterministic given the two input sets, and the health
// score constants are a tested contract that must not drift.
package insights

import (
	"math"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// Month-over-month messages. Exactly one of these is always set.
const (
	MessageImproved  = "Savings rate improved vs last month"
	MessageDeclined  = "Savings rate declined vs last month"
	MessageUnchanged = "Savings rate unchanged vs last month"
)

// SuggestionRaiseSavings is appended whenever the savings rate sits
// below the 20% threshold.
const SuggestionRaiseSavings = "Increase savings rate above 20%"

// warningThreshold is the share of total expense above which a category
// earns an overspend warning.
var warningThreshold = decimal.New(40, 0)

// Warning flags a category consuming an outsized share of expense.
type Warning struct {
	Category string
	Percent  decimal.Decimal
}

// Insights is the fixed-shape heuristic result.
type Insights struct {
	SavingsRate    decimal.Decimal
	HealthScore    int
	MonthOverMonth string
	Warnings       []Warning
	Suggestions    []string
}

// Build computes insights from the current and previous month sets.
func Build(current, previous []core.Transaction) Insights {
	income := analytics.SumByTypeStatus(current, core.Income, core.Completed)
	expense := analytics.SumByTypeStatus(current, core.Expense, core.Completed)
	rate := savingsRate(income, expense)

	warnings := overspendWarnings(current)

	prevIncome := analytics.SumByTypeStatus(previous, core.Income, core.Completed)
	prevExpense := analytics.SumByTypeStatus(previous, core.Expense, core.Completed)
	prevRate := savingsRate(prevIncome, prevExpense)

	var mom string
	switch rate.Cmp(prevRate) {
	case 1:
		mom = MessageImproved
	case -1:
		mom = MessageDeclined
	default:
		mom = MessageUnchanged
	}

	var suggestions []string
	if rate.LessThan(decimal.New(20, 0)) {
		suggestions = append(suggestions, SuggestionRaiseSavings)
	}
	if len(warnings) > 0 {
		suggestions = append(suggestions, "Reduce spend in "+warnings[0].Category)
	}

	topWarn := decimal.Zero
	if len(warnings) > 0 {
		topWarn = warnings[0].Percent
	}

	return Insights{
		SavingsRate:    rate,
		HealthScore:    healthScore(rate, topWarn),
		MonthOverMonth: mom,
		Warnings:       warnings,
		Suggestions:    suggestions,
	}
}

// savingsRate is max(0, income-expense)*100/income, half-up to two
// decimals, or zero when there is no income.
func savingsRate(income, expense decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	savings := income.Sub(expense)
	if savings.IsNegative() {
		savings = decimal.Zero
	}
	return savings.Mul(decimal.New(100, 0)).DivRound(income, 2)
}

// overspendWarnings keeps categories above the 40% share threshold,
// highest share first. CategoryPercentOfExpense already sorts
// descending, so filtering preserves the order.
func overspendWarnings(set []core.Transaction) []Warning {
	var out []Warning
	for _, p := range analytics.CategoryPercentOfExpense(set) {
		if p.Percent.GreaterThan(warningThreshold) {
			out = append(out, Warning{Category: p.Category, Percent: p.Percent})
		}
	}
	return out
}

// healthScore is clamp(0, 100, round(60 + rate/2 - topWarn/2)). The 60
// baseline and the halved weights are part of the engine's contract.
func healthScore(rate, topWarn decimal.Decimal) int {
	raw := 60 + rate.InexactFloat64()/2 - topWarn.InexactFloat64()/2
	score := int(math.Round(raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
