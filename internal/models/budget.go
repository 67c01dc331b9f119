package models

import (
	"github.com/duo-finance/backend/internal/alerts"
	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotalBudgetName is the name of the budget for the household total.
const TotalBudgetName = "Total Household"

// Budget is a monthly spending limit for a household, either for the total
// spending or for one category.
type Budget struct {
	DefaultModel
	HouseholdID    uuid.UUID       `json:"householdId" gorm:"uniqueIndex:budget_household_category" example:"f6a1b5e7-0c2e-4a8b-8e3c-5a9d2b1c7e44"`
	Household      Household       `json:"-"`
	CategoryID     *uuid.UUID      `json:"categoryId" gorm:"uniqueIndex:budget_household_category" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"` // Empty for the household total
	Category       *Category       `json:"-"`
	MonthlyLimit   decimal.Decimal `json:"monthlyLimit" gorm:"type:DECIMAL(20,8)" swaggertype:"string" example:"2000"`
	AlertThreshold int             `json:"alertThreshold" example:"80"` // Warning threshold in percent
}

func (b Budget) Self() string {
	return "Budget"
}

// BeforeSave validates the limit and threshold.
func (b *Budget) BeforeSave(_ *gorm.DB) error {
	if b.CategoryID != nil && *b.CategoryID == uuid.Nil {
		b.CategoryID = nil
	}

	if b.AlertThreshold == 0 {
		b.AlertThreshold = alerts.DefaultThreshold
	}

	if b.MonthlyLimit.IsNegative() {
		return ErrBudgetLimitNegative
	}

	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return ErrBudgetThresholdRange
	}

	return nil
}

// Name returns the name of the category the budget limits, "Category" if it
// is unknown and TotalBudgetName for the household total.
func (b Budget) Name() string {
	if b.CategoryID == nil {
		return TotalBudgetName
	}

	if b.Category == nil || b.Category.Name == "" {
		return "Category"
	}

	return b.Category.Name
}

// Alerts returns the budget as evaluated by the alerts package.
func (b Budget) Alerts() alerts.Budget {
	return alerts.Budget{
		ID:             b.ID,
		CategoryID:     b.CategoryID,
		Name:           b.Name(),
		MonthlyLimit:   b.MonthlyLimit,
		AlertThreshold: b.AlertThreshold,
	}
}

// HouseholdBudgets returns the budgets of a household with their categories.
func HouseholdBudgets(db *gorm.DB, householdID uuid.UUID) ([]Budget, error) {
	var budgets []Budget
	err := db.
		Preload("Category").
		Where(&Budget{HouseholdID: householdID}).
		Order("category_id IS NOT NULL, created_at ASC").
		Find(&budgets).Error

	return budgets, err
}

// UpsertBudget creates the budget for the household and category or updates
// the limit and threshold of the existing one.
func UpsertBudget(db *gorm.DB, budget Budget) (Budget, error) {
	var existing Budget

	q := db.Where(&Budget{HouseholdID: budget.HouseholdID})
	if budget.CategoryID == nil || *budget.CategoryID == uuid.Nil {
		q = q.Where("category_id IS NULL")
	} else {
		q = q.Where("category_id = ?", budget.CategoryID)
	}

	err := q.Limit(1).Find(&existing).Error
	if err != nil {
		return Budget{}, err
	}

	if existing.ID == uuid.Nil {
		err = db.Create(&budget).Error
		return budget, err
	}

	existing.MonthlyLimit = budget.MonthlyLimit
	existing.AlertThreshold = budget.AlertThreshold
	err = db.Save(&existing).Error
	return existing, err
}

// Spending sums up the spending of the household in the month, in total and
// per category.
func Spending(db *gorm.DB, householdID uuid.UUID, month types.Month) (alerts.Spending, error) {
	var transactions []Transaction
	err := db.
		Where(&Transaction{HouseholdID: householdID}).
		Where("date >= ? AND date <= ?", month.FirstDay(), month.LastDay()).
		Find(&transactions).Error
	if err != nil {
		return alerts.Spending{}, err
	}

	spending := alerts.Spending{
		Total:      decimal.Zero,
		ByCategory: make(map[uuid.UUID]decimal.Decimal),
	}

	for _, t := range transactions {
		spending.Total = spending.Total.Add(t.Amount)
		if t.CategoryID != nil {
			spending.ByCategory[*t.CategoryID] = spending.ByCategory[*t.CategoryID].Add(t.Amount)
		}
	}

	return spending, nil
}

// DeleteBudget deletes the budget and its alert states.
func DeleteBudget(db *gorm.DB, budget Budget) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().Where(&BudgetAlertState{BudgetID: budget.ID}).Delete(&BudgetAlertState{}).Error
		if err != nil {
			return err
		}

		return tx.Unscoped().Delete(&budget).Error
	})
}
