package report

import (
	"fmt"
	"strings"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// Page geometry in points, mirroring an A4 sheet. Vertical space is
// consumed per line; a new page begins when the cursor would drop
// below the break threshold.
const (
	pageHeight     = 842
	pageMargin     = 40
	titleLead      = 28
	summaryLead    = 18
	headerLead     = 16
	rowLead        = 14
	breakThreshold = pageMargin + 50
)

const columnHeader = "Date          Type      Category        Amount       Status    Description"

// Document renders the month's transactions as a paginated plain-text
// report: a title, completed income/expense/balance summary lines, a
// fixed-width column header and one row per transaction. Continuation
// pages repeat the column header but not the title or summaries.
// Pages are separated by a form feed.
func Document(month core.Month, set []core.Transaction) []byte {
	totalIncome := analytics.SumByTypeStatus(set, core.Income, core.Completed)
	totalExpense := analytics.SumByTypeStatus(set, core.Expense, core.Completed)
	balance := totalIncome.Sub(totalExpense)

	var sb strings.Builder
	y := pageHeight - pageMargin

	writeLine := func(line string, lead int) {
		sb.WriteString(line)
		sb.WriteByte('\n')
		y -= lead
	}

	writeLine("Transaction Report - "+month.String(), titleLead)
	writeLine("Total Income: "+core.FormatAmount(totalIncome), summaryLead)
	writeLine("Total Expense: "+core.FormatAmount(totalExpense), summaryLead)
	writeLine("Balance: "+core.FormatAmount(balance), titleLead)
	writeLine(columnHeader, headerLead)

	for _, t := range set {
		if y < breakThreshold {
			sb.WriteString("\f")
			y = pageHeight - pageMargin
			writeLine(columnHeader, headerLead)
		}
		writeLine(row(t), rowLead)
	}
	return []byte(sb.String())
}

func row(t core.Transaction) string {
	return fmt.Sprintf("%-12s %-8s %-14s %-11s %-9s %s",
		t.Date.String(),
		string(t.Type),
		truncate(t.Category, 14),
		core.FormatAmount(t.Amount),
		string(t.Status),
		truncate(t.Description, 60))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
