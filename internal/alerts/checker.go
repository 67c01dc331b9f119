package alerts

import (
	"context"
	"fmt"

	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
)

// Key identifies one budget in one month of one household.
type Key struct {
	HouseholdID uuid.UUID
	BudgetID    uuid.UUID
	Month       types.Month
}

func (k Key) String() string {
	return fmt.Sprintf("%s-%s-%s", k.HouseholdID, k.BudgetID, k.Month)
}

// Store keeps the highest whole percentage a budget has been alerted at
// in a month.
type Store interface {
	// LastPercentage returns the recorded percentage, 0 if there is none.
	LastPercentage(ctx context.Context, key Key) (int, error)

	// Record stores the percentage for the key.
	Record(ctx context.Context, key Key, percentage int) error
}

// Tiers returns the percentages at which a budget alerts, highest first.
func Tiers(threshold int) []int {
	return []int{100, 90, threshold}
}

// Crossed reports whether the percentage reaches a tier that the last
// alerted percentage had not reached.
func Crossed(percentage, last, threshold int) bool {
	for _, tier := range Tiers(threshold) {
		if percentage >= tier && last < tier {
			return true
		}
	}

	return false
}

// Checker evaluates budgets and only reports alerts for newly crossed tiers.
type Checker struct {
	Store Store
}

// Check returns the alerts that need to be sent for the household in the
// month and records them in the store.
//
// An alert at 82% is not repeated at 85%, but fires again when 90% or
// 100% is reached.
func (c Checker) Check(ctx context.Context, householdID uuid.UUID, month types.Month, budgets []Budget, s Spending) ([]Alert, error) {
	var fire []Alert

	for _, a := range EvaluateAll(budgets, s) {
		key := Key{
			HouseholdID: householdID,
			BudgetID:    a.Budget.ID,
			Month:       month,
		}

		last, err := c.Store.LastPercentage(ctx, key)
		if err != nil {
			return fire, fmt.Errorf("could not read alert state for budget %s: %w", a.Budget.ID, err)
		}

		current := a.WholePercentage()
		if !Crossed(current, last, a.Budget.Threshold()) {
			continue
		}

		if current > last {
			err = c.Store.Record(ctx, key, current)
			if err != nil {
				return fire, fmt.Errorf("could not record alert state for budget %s: %w", a.Budget.ID, err)
			}
		}

		fire = append(fire, a)
	}

	return fire, nil
}
