// Package report renders a month of transactions into exportable
// blobs: a delimited text export and a paginated plain-text document.
package report

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const csvHeader = "Date,Type,Category,Amount,Description,Status"

// CSV renders the set as delimited text with a fixed header row. Rows
// keep the store's order. Fields containing a comma, quote or newline
// are quoted with internal quotes doubled.
func CSV(set []core.Transaction) []byte {
	var sb strings.Builder
	sb.WriteString(csvHeader)
	sb.WriteByte('\n')
	for _, t := range set {
		sb.WriteString(escapeField(t.Date.String()))
		sb.WriteByte(',')
		sb.WriteString(escapeField(string(t.Type)))
		sb.WriteByte(',')
		sb.WriteString(escapeField(t.Category))
		sb.WriteByte(',')
		sb.WriteString(core.FormatAmount(t.Amount))
		sb.WriteByte(',')
		sb.WriteString(escapeField(t.Description))
		sb.WriteByte(',')
		sb.WriteString(escapeField(string(t.Status)))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func escapeField(s string) string {
	needsQuotes := strings.ContainsAny(s, ",\"\n\r")
	escaped := strings.ReplaceAll(s, `"`, `""`)
	if needsQuotes {
		return `"` + escaped + `"`
	}
	return escaped
}

// Filename suggests the download name for an export of the month.
func Filename(month core.Month, format Format) string {
	switch format {
	case FormatDocument:
		return "transactions-" + month.String() + ".txt"
	default:
		return "transactions-" + month.String() + ".csv"
	}
}

// Format selects an export rendering.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatDocument Format = "document"
)

// ParseFormat validates an export format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatDocument:
		return FormatDocument, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", core.ErrInvalidArgument, s)
	}
}
