// Package export renders transactions as CSV.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/duo-finance/backend/internal/filter"
	"github.com/duo-finance/backend/internal/types"
	"github.com/shopspring/decimal"
)

// Header is the first line of every export.
var Header = []string{"Date", "Merchant", "Category", "Amount", "Type", "Added By", "Notes"}

const (
	uncategorized = "Uncategorized"
	unknownUser   = "Unknown"
)

// Row is one exported transaction.
type Row struct {
	Date     types.Date
	Merchant string
	Category string
	Amount   decimal.Decimal
	IsJoint  bool
	AddedBy  string
	Notes    string
}

// Fields returns the escaped CSV fields of the row.
func (r Row) Fields() []string {
	category := r.Category
	if category == "" {
		category = uncategorized
	}

	addedBy := r.AddedBy
	if addedBy == "" {
		addedBy = unknownUser
	}

	kind := "Personal"
	if r.IsJoint {
		kind = "Joint"
	}

	return []string{
		r.Date.String(),
		Escape(r.Merchant),
		Escape(category),
		r.Amount.StringFixed(2),
		kind,
		Escape(addedBy),
		Escape(r.Notes),
	}
}

// Escape quotes a field if it contains a comma, a quote or a line break.
// Quotes inside the field are doubled.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}

	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Render returns the CSV document. Lines are separated by a newline, the
// last line has none.
func Render(rows []Row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Header, ","))

	for _, r := range rows {
		lines = append(lines, strings.Join(r.Fields(), ","))
	}

	return strings.Join(lines, "\n")
}

// Write renders the rows to w.
func Write(w io.Writer, rows []Row) error {
	_, err := io.WriteString(w, Render(rows))
	return err
}

// Filename returns the name of the export file for a type and date range.
func Filename(t filter.Type, start, end types.Date) string {
	if t == "" || t == filter.TypeAll {
		return fmt.Sprintf("duo-transactions-%s-to-%s.csv", start, end)
	}

	return fmt.Sprintf("duo-transactions-%s-%s-to-%s.csv", t, start, end)
}
