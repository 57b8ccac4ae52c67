package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// Export is a rendered report blob with download metadata.
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ReportService renders a month of transactions for download.
type ReportService struct {
	store Store
}

func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

// Export renders the month in the requested format. The set includes
// every status and reservation flag, in store order.
func (s *ReportService) Export(ctx context.Context, ownerID int64, month core.Month, format string) (Export, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return Export{}, err
	}

	set, err := s.store.ListByOwnerAndDateRange(ctx, ownerID, month.Start(), month.End())
	if err != nil {
		return Export{}, fmt.Errorf("load month %s: %w", month, err)
	}

	out := Export{Filename: report.Filename(month, f)}
	switch f {
	case report.FormatDocument:
		out.Data = report.Document(month, set)
		out.ContentType = "text/plain; charset=utf-8"
	default:
		out.Data = report.CSV(set)
		out.ContentType = "text/csv; charset=utf-8"
	}
	return out, nil
}
