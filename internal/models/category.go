package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups transactions. Default categories have no household and
// are shared by all households.
type Category struct {
	DefaultModel
	HouseholdID *uuid.UUID `json:"householdId" gorm:"uniqueIndex:category_household_name" example:"f6a1b5e7-0c2e-4a8b-8e3c-5a9d2b1c7e44"`
	Household   Household  `json:"-"`
	Name        string     `json:"name" gorm:"uniqueIndex:category_household_name" example:"Groceries"`
	Icon        string     `json:"icon" example:"🛒"`
	Color       string     `json:"color" example:"#22c55e"`
	IsDefault   bool       `json:"isDefault" example:"false"`
}

func (c Category) Self() string {
	return "Category"
}

// BeforeSave trims whitespace and validates the name.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)
	c.Color = strings.TrimSpace(c.Color)

	if c.Name == "" {
		return ErrCategoryNameMissing
	}

	if c.HouseholdID != nil && *c.HouseholdID == uuid.Nil {
		c.HouseholdID = nil
	}

	return nil
}

// EditableBy reports whether members of the household may change the category.
func (c Category) EditableBy(householdID uuid.UUID) bool {
	return !c.IsDefault && c.HouseholdID != nil && *c.HouseholdID == householdID
}

// VisibleTo reports whether members of the household can use the category.
func (c Category) VisibleTo(householdID uuid.UUID) bool {
	return c.HouseholdID == nil || *c.HouseholdID == householdID
}

// DefaultCategories are created when the database is migrated.
var DefaultCategories = []Category{
	{Name: "Groceries", Icon: "🛒", Color: "#22c55e"},
	{Name: "Dining Out", Icon: "🍽️", Color: "#f97316"},
	{Name: "Transportation", Icon: "🚗", Color: "#3b82f6"},
	{Name: "Shopping", Icon: "🛍️", Color: "#ec4899"},
	{Name: "Bills & Utilities", Icon: "💡", Color: "#eab308"},
	{Name: "Entertainment", Icon: "🎬", Color: "#a855f7"},
	{Name: "Healthcare", Icon: "🏥", Color: "#ef4444"},
	{Name: "Travel", Icon: "✈️", Color: "#06b6d4"},
	{Name: "Personal Care", Icon: "💆", Color: "#f472b6"},
	{Name: "Other", Icon: "📦", Color: "#6b7280"},
}

// seedDefaultCategories creates all default categories that do not exist yet.
func seedDefaultCategories(db *gorm.DB) error {
	for _, category := range DefaultCategories {
		var count int64
		err := db.Model(&Category{}).Where("household_id IS NULL AND name = ?", category.Name).Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			continue
		}

		category.IsDefault = true
		err = db.Create(&category).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// HouseholdCategories returns the default categories and the categories of
// the household, ordered by name.
func HouseholdCategories(db *gorm.DB, householdID uuid.UUID) ([]Category, error) {
	var categories []Category
	err := db.
		Where("household_id IS NULL OR household_id = ?", householdID).
		Order("is_default DESC, name ASC").
		Find(&categories).Error

	return categories, err
}

// CategoryNameTaken reports whether a category visible to the household
// already has the name, ignoring case. The category with the ID exclude is
// not considered.
func CategoryNameTaken(db *gorm.DB, householdID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Category{}).
		Where("household_id IS NULL OR household_id = ?", householdID).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Where("id != ?", exclude).
		Count(&count).Error

	return count > 0, err
}

// DeleteCategory permanently deletes the category with its rules and
// budget. Its transactions are moved to reassignTo, or are uncategorized
// if it is nil.
func DeleteCategory(db *gorm.DB, category Category, reassignTo *uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Transaction{}).
			Where("category_id = ?", category.ID).
			UpdateColumn("category_id", reassignTo).Error
		if err != nil {
			return err
		}

		err = tx.Unscoped().Where("category_id = ?", category.ID).Delete(&CategoryRule{}).Error
		if err != nil {
			return err
		}

		var budgets []Budget
		err = tx.Unscoped().Where("category_id = ?", category.ID).Find(&budgets).Error
		if err != nil {
			return err
		}

		for _, b := range budgets {
			err = tx.Unscoped().Where("budget_id = ?", b.ID).Delete(&BudgetAlertState{}).Error
			if err != nil {
				return err
			}
		}

		err = tx.Unscoped().Where("category_id = ?", category.ID).Delete(&Budget{}).Error
		if err != nil {
			return err
		}

		return tx.Unscoped().Delete(&category).Error
	})
}
