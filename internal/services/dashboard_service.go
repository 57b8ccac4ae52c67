package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// Summary is the monthly dashboard payload.
type Summary struct {
	Month             core.Month
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Balance           decimal.Decimal
	ReservedBalance   decimal.Decimal
	DailyTrend        []analytics.TrendPoint
	CategoryBreakdown []analytics.CategoryAmount
}

// DashboardService derives the monthly summary from one store fetch.
type DashboardService struct {
	store Store
}

func NewDashboardService(store Store) *DashboardService {
	return &DashboardService{store: store}
}

// Summary aggregates the owner's month: completed totals and balance,
// the pending reserved balance, the per-day trend and the category
// breakdown. Calling it twice without intervening mutations yields
// identical results.
func (s *DashboardService) Summary(ctx context.Context, ownerID int64, month core.Month) (Summary, error) {
	set, err := s.store.ListByOwnerAndDateRange(ctx, ownerID, month.Start(), month.End())
	if err != nil {
		return Summary{}, fmt.Errorf("load month %s: %w", month, err)
	}

	totalIncome := analytics.SumByTypeStatus(set, core.Income, core.Completed)
	totalExpense := analytics.SumByTypeStatus(set, core.Expense, core.Completed)

	return Summary{
		Month:             month,
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		Balance:           totalIncome.Sub(totalExpense),
		ReservedBalance:   analytics.ReservedBalance(set),
		DailyTrend:        analytics.DailyTrend(month, set),
		CategoryBreakdown: analytics.CategoryBreakdown(set),
	}, nil
}
