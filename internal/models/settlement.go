package models

import (
	"errors"
	"time"

	"github.com/duo-finance/backend/internal/settlement"
	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settlement is the frozen settlement of the joint spending of a household
// in one month.
type Settlement struct {
	DefaultModel
	HouseholdID uuid.UUID       `json:"householdId" gorm:"uniqueIndex:settlement_household_month"`
	Household   Household       `json:"-"`
	Month       types.Month     `json:"month" gorm:"uniqueIndex:settlement_household_month" swaggertype:"string" example:"2024-05-01"`
	TotalJoint  decimal.Decimal `json:"totalJoint" gorm:"type:DECIMAL(20,8)" swaggertype:"string" example:"150"`
	UserAID     uuid.UUID       `json:"userAId" gorm:"column:user_a_id"`
	UserAPaid   decimal.Decimal `json:"userAPaid" gorm:"column:user_a_paid;type:DECIMAL(20,8)" swaggertype:"string" example:"100"`
	UserBID     uuid.UUID       `json:"userBId" gorm:"column:user_b_id"`
	UserBPaid   decimal.Decimal `json:"userBPaid" gorm:"column:user_b_paid;type:DECIMAL(20,8)" swaggertype:"string" example:"50"`
	SettledAt   *time.Time      `json:"settledAt" example:"2024-06-02T08:15:00Z"`
	SettledBy   *uuid.UUID      `json:"settledBy"`
}

func (s Settlement) Self() string {
	return "Settlement"
}

// IsSettled reports whether the month has been marked as settled.
func (s Settlement) IsSettled() bool {
	return s.SettledAt != nil
}

// Snapshot returns the frozen values of the settlement.
func (s Settlement) Snapshot() settlement.Snapshot {
	return settlement.Snapshot{
		Month:      s.Month,
		TotalJoint: s.TotalJoint,
		UserA:      s.UserAID,
		UserAPaid:  s.UserAPaid,
		UserB:      s.UserBID,
		UserBPaid:  s.UserBPaid,
	}
}

// FindSettlement returns the settlement of the household for the month. The
// boolean is false if the month has no settlement.
func FindSettlement(db *gorm.DB, householdID uuid.UUID, month types.Month) (Settlement, bool, error) {
	var s Settlement
	err := db.
		Where("household_id = ? AND month = ?", householdID, month).
		Limit(1).
		Find(&s).Error
	if err != nil {
		return Settlement{}, false, err
	}

	return s, s.ID != uuid.Nil, nil
}

// Settle persists the snapshot as the settlement of the household for its
// month. An existing settlement for the month is overwritten.
func Settle(db *gorm.DB, householdID, settledBy uuid.UUID, snapshot settlement.Snapshot, now time.Time) (Settlement, error) {
	if err := snapshot.Validate(); err != nil {
		return Settlement{}, err
	}

	settledAt := now.UTC()
	s := Settlement{
		HouseholdID: householdID,
		Month:       snapshot.Month,
		TotalJoint:  snapshot.TotalJoint,
		UserAID:     snapshot.UserA,
		UserAPaid:   snapshot.UserAPaid,
		UserBID:     snapshot.UserB,
		UserBPaid:   snapshot.UserBPaid,
		SettledAt:   &settledAt,
		SettledBy:   &settledBy,
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "household_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_joint", "user_a_id", "user_a_paid", "user_b_id", "user_b_paid", "settled_at", "settled_by", "updated_at", "deleted_at"}),
	}).Create(&s).Error
	if err != nil {
		return Settlement{}, err
	}

	stored, ok, err := FindSettlement(db, householdID, snapshot.Month)
	if err != nil {
		return Settlement{}, err
	}
	if !ok {
		return Settlement{}, errors.New("settlement could not be read after saving")
	}

	return stored, nil
}

// SettlementHistory returns the most recent settled months before the month.
func SettlementHistory(db *gorm.DB, householdID uuid.UUID, before types.Month, limit int) ([]Settlement, error) {
	var settlements []Settlement
	err := db.
		Where("household_id = ? AND month < ? AND settled_at IS NOT NULL", householdID, before).
		Order("month DESC").
		Limit(limit).
		Find(&settlements).Error

	return settlements, err
}
