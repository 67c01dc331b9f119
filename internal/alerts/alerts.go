// Package alerts evaluates monthly budgets against the spending of a
// household.
//
// Evaluation is pure. Deduplication of notifications across repeated
// evaluations is handled by a Checker backed by a Store.
package alerts

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultThreshold is the warning threshold in percent for budgets
// without a configured one.
const DefaultThreshold = 80

// Level is the outcome of evaluating a budget.
type Level string

const (
	LevelNone     Level = "ok"
	LevelWarning  Level = "warning"
	LevelExceeded Level = "exceeded"
)

// Severity maps the level to the severity shown to users.
func (l Level) Severity() string {
	switch l {
	case LevelExceeded:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "info"
	}
}

var hundred = decimal.NewFromInt(100)

// Budget is a monthly budget. A budget without a category limits the
// total spending of the household.
type Budget struct {
	ID             uuid.UUID
	CategoryID     *uuid.UUID
	Name           string
	MonthlyLimit   decimal.Decimal
	AlertThreshold int
}

// IsTotal reports whether the budget limits the household total.
func (b Budget) IsTotal() bool {
	return b.CategoryID == nil || *b.CategoryID == uuid.Nil
}

// Threshold returns the warning threshold, DefaultThreshold if unset.
func (b Budget) Threshold() int {
	if b.AlertThreshold <= 0 {
		return DefaultThreshold
	}

	return b.AlertThreshold
}

// valid reports whether the budget can be evaluated at all.
func (b Budget) valid() bool {
	return b.ID != uuid.Nil && !b.MonthlyLimit.IsNegative()
}

// Spending is the spending of a household in the current period.
type Spending struct {
	Total      decimal.Decimal
	ByCategory map[uuid.UUID]decimal.Decimal
}

// For returns the spending that counts against a budget. Categories
// without spending count as zero.
func (s Spending) For(b Budget) decimal.Decimal {
	if b.IsTotal() {
		return s.Total
	}

	if spent, ok := s.ByCategory[*b.CategoryID]; ok {
		return spent
	}

	return decimal.Zero
}

// Alert is the evaluation result for one budget.
type Alert struct {
	Budget     Budget
	Level      Level
	Spent      decimal.Decimal
	Percentage decimal.Decimal
}

// Percentage returns the share of the limit that has been spent, in
// percent. A zero limit yields zero.
func Percentage(spent, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		return decimal.Zero
	}

	return spent.Mul(hundred).Div(limit)
}

// Status evaluates a budget and always returns the result, including
// LevelNone.
func Status(b Budget, s Spending) Alert {
	spent := s.For(b)
	pct := Percentage(spent, b.MonthlyLimit)

	level := LevelNone
	if pct.GreaterThanOrEqual(hundred) {
		level = LevelExceeded
	} else if pct.GreaterThanOrEqual(decimal.NewFromInt(int64(b.Threshold()))) {
		level = LevelWarning
	}

	return Alert{
		Budget:     b,
		Level:      level,
		Spent:      spent,
		Percentage: pct,
	}
}

// Evaluate returns the alert for a budget. The boolean is false when the
// budget has not reached its threshold or cannot be evaluated.
func Evaluate(b Budget, s Spending) (Alert, bool) {
	if !b.valid() {
		return Alert{}, false
	}

	a := Status(b, s)
	return a, a.Level != LevelNone
}

// EvaluateAll evaluates all budgets. Budgets that cannot be evaluated are
// skipped.
func EvaluateAll(budgets []Budget, s Spending) []Alert {
	var result []Alert
	for _, b := range budgets {
		if a, ok := Evaluate(b, s); ok {
			result = append(result, a)
		}
	}

	return result
}

// WholePercentage returns the percentage rounded down to an integer.
func (a Alert) WholePercentage() int {
	return int(a.Percentage.Floor().IntPart())
}
