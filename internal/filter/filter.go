// Package filter selects transactions by search text, date range, category,
// type and amount.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Range is a named date range.
type Range string

const (
	RangeThisMonth   Range = "this-month"
	RangeLastMonth   Range = "last-month"
	RangeLast3Months Range = "last-3-months"
	RangeLast6Months Range = "last-6-months"
	RangeThisYear    Range = "this-year"
	RangeCustom      Range = "custom"
	RangeAllTime     Range = "all-time"
)

var ranges = map[Range]string{
	RangeThisMonth:   "This Month",
	RangeLastMonth:   "Last Month",
	RangeLast3Months: "Last 3 Months",
	RangeLast6Months: "Last 6 Months",
	RangeThisYear:    "This Year",
	RangeCustom:      "Custom Range",
	RangeAllTime:     "All Time",
}

// Type restricts transactions to joint or personal ones.
type Type string

const (
	TypeAll      Type = "all"
	TypePersonal Type = "personal"
	TypeJoint    Type = "joint"
)

var (
	ErrUnknownRange = errors.New("unknown date range")
	ErrUnknownType  = errors.New("unknown transaction type, use one of all, personal, joint")
)

// Transaction is the part of a transaction the filter looks at.
type Transaction struct {
	Amount       decimal.Decimal
	Date         types.Date
	IsJoint      bool
	CategoryID   *uuid.UUID
	MerchantName string
	Description  string
}

// State describes which transactions to show. The zero value shows the
// transactions of the current month.
type State struct {
	Search     string
	Range      Range
	StartDate  types.Date
	EndDate    types.Date
	CategoryID *uuid.UUID
	Type       Type
	AmountMin  decimal.NullDecimal
	AmountMax  decimal.NullDecimal
}

// Default returns the default filter state.
func Default() State {
	return State{
		Range: RangeThisMonth,
		Type:  TypeAll,
	}
}

func (s State) dateRange() Range {
	if s.Range == "" {
		return RangeThisMonth
	}
	return s.Range
}

func (s State) transactionType() Type {
	if s.Type == "" {
		return TypeAll
	}
	return s.Type
}

// Validate checks the range and type of the state.
func (s State) Validate() error {
	if _, ok := ranges[s.dateRange()]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownRange, s.Range)
	}

	switch s.transactionType() {
	case TypeAll, TypePersonal, TypeJoint:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
	}

	return nil
}

// Bounds resolves the date range relative to now. Empty bounds are open.
//
// Presets end today, except for last month which ends on its last day. A
// custom range only applies when both of its bounds are set.
func (s State) Bounds(now time.Time) (types.Date, types.Date) {
	current := types.MonthOf(now)
	today := types.DateOf(now)

	switch s.dateRange() {
	case RangeThisMonth:
		return current.FirstDay(), today
	case RangeLastMonth:
		last := current.AddDate(0, -1)
		return last.FirstDay(), last.LastDay()
	case RangeLast3Months:
		return current.AddDate(0, -2).FirstDay(), today
	case RangeLast6Months:
		return current.AddDate(0, -5).FirstDay(), today
	case RangeThisYear:
		return types.NewMonth(now.Year(), time.January).FirstDay(), today
	case RangeCustom:
		if s.StartDate.IsZero() || s.EndDate.IsZero() {
			return "", ""
		}
		return s.StartDate, s.EndDate
	default:
		return "", ""
	}
}

// Matches reports whether the transaction passes every active filter.
func (s State) Matches(t Transaction, now time.Time) bool {
	if search := strings.ToLower(strings.TrimSpace(s.Search)); search != "" {
		if !strings.Contains(strings.ToLower(t.MerchantName), search) && !strings.Contains(strings.ToLower(t.Description), search) {
			return false
		}
	}

	from, until := s.Bounds(now)
	if !t.Date.Between(from, until) {
		return false
	}

	if s.CategoryID != nil {
		if t.CategoryID == nil || *t.CategoryID != *s.CategoryID {
			return false
		}
	}

	switch s.transactionType() {
	case TypePersonal:
		if t.IsJoint {
			return false
		}
	case TypeJoint:
		if !t.IsJoint {
			return false
		}
	}

	amount := t.Amount.Abs()
	if s.AmountMin.Valid && amount.LessThan(s.AmountMin.Decimal) {
		return false
	}

	if s.AmountMax.Valid && amount.GreaterThan(s.AmountMax.Decimal) {
		return false
	}

	return true
}

// HasActiveFilters reports whether anything other than the default
// state is selected.
func (s State) HasActiveFilters() bool {
	return strings.TrimSpace(s.Search) != "" ||
		s.dateRange() != RangeThisMonth ||
		s.CategoryID != nil ||
		s.transactionType() != TypeAll ||
		s.AmountMin.Valid ||
		s.AmountMax.Valid
}

// Label returns a human readable name for the date range.
func (s State) Label() string {
	if label, ok := ranges[s.dateRange()]; ok {
		return label
	}

	return ranges[RangeAllTime]
}
