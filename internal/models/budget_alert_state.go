package models

import (
	"context"

	"github.com/duo-finance/backend/internal/alerts"
	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetAlertState is the highest whole percentage a budget has been
// alerted at in a month.
type BudgetAlertState struct {
	DefaultModel
	HouseholdID    uuid.UUID   `gorm:"index"`
	BudgetID       uuid.UUID   `gorm:"uniqueIndex:alert_state_budget_month"`
	Month          types.Month `gorm:"uniqueIndex:alert_state_budget_month"`
	LastPercentage int
}

func (s BudgetAlertState) Self() string {
	return "Budget Alert State"
}

// AlertStore keeps the alert state of budgets in the database so that
// restarts do not repeat alerts.
type AlertStore struct {
	DB *gorm.DB
}

var _ alerts.Store = AlertStore{}

func (s AlertStore) LastPercentage(ctx context.Context, key alerts.Key) (int, error) {
	var state BudgetAlertState
	err := s.DB.WithContext(ctx).
		Where("budget_id = ? AND month = ?", key.BudgetID, key.Month).
		Limit(1).
		Find(&state).Error
	if err != nil {
		return 0, err
	}

	return state.LastPercentage, nil
}

func (s AlertStore) Record(ctx context.Context, key alerts.Key, percentage int) error {
	state := BudgetAlertState{
		HouseholdID:    key.HouseholdID,
		BudgetID:       key.BudgetID,
		Month:          key.Month,
		LastPercentage: percentage,
	}

	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "budget_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_percentage", "updated_at"}),
	}).Create(&state).Error
}
