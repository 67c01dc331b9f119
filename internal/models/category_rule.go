package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRule assigns a category to transactions whose merchant name
// matches a glob pattern.
type CategoryRule struct {
	DefaultModel
	HouseholdID uuid.UUID `json:"householdId" gorm:"index" example:"f6a1b5e7-0c2e-4a8b-8e3c-5a9d2b1c7e44"`
	Household   Household `json:"-"`
	CategoryID  uuid.UUID `json:"categoryId" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"`
	Category    Category  `json:"-"`
	Priority    uint      `json:"priority" example:"3"`
	Match       string    `json:"match" example:"*whole foods*"`
}

func (r CategoryRule) Self() string {
	return "Category Rule"
}

func (r *CategoryRule) BeforeSave(_ *gorm.DB) error {
	r.Match = strings.TrimSpace(r.Match)
	if r.Match == "" {
		return ErrCategoryRuleMatchEmpty
	}

	if r.CategoryID == uuid.Nil {
		return ErrCategoryRuleCategory
	}

	return nil
}

// HouseholdCategoryRules returns the rules of the household, highest
// priority first.
func HouseholdCategoryRules(db *gorm.DB, householdID uuid.UUID) ([]CategoryRule, error) {
	var rules []CategoryRule
	err := db.
		Where(&CategoryRule{HouseholdID: householdID}).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error

	return rules, err
}
