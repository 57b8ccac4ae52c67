package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/insights"
)

// InsightService feeds the current and previous month into the
// heuristic.
type InsightService struct {
	store Store
}

func NewInsightService(store Store) *InsightService {
	return &InsightService{store: store}
}

func (s *InsightService) Insights(ctx context.Context, ownerID int64, month core.Month) (insights.Insights, error) {
	current, err := s.store.ListByOwnerAndDateRange(ctx, ownerID, month.Start(), month.End())
	if err != nil {
		return insights.Insights{}, fmt.Errorf("load month %s: %w", month, err)
	}

	prev := month.Prev()
	previous, err := s.store.ListByOwnerAndDateRange(ctx, ownerID, prev.Start(), prev.End())
	if err != nil {
		return insights.Insights{}, fmt.Errorf("load month %s: %w", prev, err)
	}

	return insights.Build(current, previous), nil
}
