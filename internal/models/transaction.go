package models

import (
	"strings"

	"github.com/duo-finance/backend/internal/filter"
	"github.com/duo-finance/backend/internal/settlement"
	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Source is where a transaction came from.
type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// Transaction is an expense recorded by a member of a household.
type Transaction struct {
	DefaultModel
	HouseholdID  uuid.UUID       `json:"householdId" gorm:"index:transaction_household_date" example:"f6a1b5e7-0c2e-4a8b-8e3c-5a9d2b1c7e44"`
	Household    Household       `json:"-"`
	UserID       uuid.UUID       `json:"userId" gorm:"index" example:"0b3a7e4c-1f6d-4e5a-9c8b-2d7f6a5e4b31"`
	User         User            `json:"-"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" swaggertype:"string" example:"14.03"`
	Date         types.Date      `json:"date" gorm:"index:transaction_household_date;type:varchar(10)" swaggertype:"string" example:"2024-05-13"` // Calendar date, compared as a string
	MerchantName string          `json:"merchantName" example:"Whole Foods"`
	Description  string          `json:"description" example:"WHOLEFDS MKT 10234"`
	CategoryID   *uuid.UUID      `json:"categoryId" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"`
	Category     *Category       `json:"-"`
	IsJoint      bool            `json:"isJoint" example:"true"`
	IsHidden     bool            `json:"isHidden" example:"false"`
	Source       Source          `json:"source" example:"manual"`
}

func (t Transaction) Self() string {
	return "Transaction"
}

// BeforeSave
//   - trims whitespace from string fields
//   - validates amount, merchant and date
//   - defaults the description to the merchant name
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.MerchantName = strings.TrimSpace(t.MerchantName)
	t.Description = strings.TrimSpace(t.Description)

	// Ensure that the Category ID is nil and not a pointer to a nil UUID
	if t.CategoryID != nil && *t.CategoryID == uuid.Nil {
		t.CategoryID = nil
	}

	if !t.Amount.IsPositive() {
		return ErrTransactionAmount
	}

	if t.MerchantName == "" {
		return ErrTransactionMerchant
	}

	if t.Date.IsZero() {
		return ErrTransactionDate
	}

	date, err := types.ParseDate(t.Date.String())
	if err != nil {
		return err
	}
	t.Date = date

	if t.Description == "" {
		t.Description = t.MerchantName
	}

	switch t.Source {
	case "":
		t.Source = SourceManual
	case SourceManual, SourceImport:
	default:
		return ErrTransactionSource
	}

	return nil
}

// FilterTransaction returns the fields the transaction filter works on.
func (t Transaction) FilterTransaction() filter.Transaction {
	return filter.Transaction{
		Amount:       t.Amount,
		Date:         t.Date,
		IsJoint:      t.IsJoint,
		CategoryID:   t.CategoryID,
		MerchantName: t.MerchantName,
		Description:  t.Description,
	}
}

// HouseholdTransactions returns the visible transactions of the household
// between from and until, newest first. Empty bounds are open.
func HouseholdTransactions(db *gorm.DB, householdID uuid.UUID, from, until types.Date) ([]Transaction, error) {
	q := db.
		Where(&Transaction{HouseholdID: householdID}).
		Where("is_hidden = ?", false)

	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}

	if !until.IsZero() {
		q = q.Where("date <= ?", until)
	}

	var transactions []Transaction
	err := q.Order("date DESC, created_at DESC").Find(&transactions).Error
	return transactions, err
}

// JointExpenses returns the joint expenses of the household in the month.
func JointExpenses(db *gorm.DB, householdID uuid.UUID, month types.Month) ([]settlement.Expense, error) {
	var transactions []Transaction
	err := db.
		Where(&Transaction{HouseholdID: householdID}).
		Where("is_joint = ? AND date >= ? AND date <= ?", true, month.FirstDay(), month.LastDay()).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	expenses := make([]settlement.Expense, 0, len(transactions))
	for _, t := range transactions {
		expenses = append(expenses, settlement.Expense{UserID: t.UserID, Amount: t.Amount})
	}

	return expenses, nil
}
