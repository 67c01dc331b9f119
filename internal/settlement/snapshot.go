package settlement

import (
	"errors"

	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMonthMissing    = errors.New("the month of the settlement must be set")
	ErrNegativePayment = errors.New("the amount a member paid must not be negative")
)

// Snapshot is the data that is frozen when a month is marked as settled.
type Snapshot struct {
	Month      types.Month
	TotalJoint decimal.Decimal
	UserA      uuid.UUID
	UserAPaid  decimal.Decimal
	UserB      uuid.UUID
	UserBPaid  decimal.Decimal
}

// Validate checks a snapshot before it is persisted.
func (s Snapshot) Validate() error {
	if s.Month.IsZero() {
		return ErrMonthMissing
	}

	if err := validateMembers(s.UserA, s.UserB); err != nil {
		return err
	}

	if s.TotalJoint.IsNegative() {
		return ErrNegativeTotal
	}

	if s.UserAPaid.IsNegative() || s.UserBPaid.IsNegative() {
		return ErrNegativePayment
	}

	return nil
}

// Result returns the settlement computed from the snapshot.
func (s Snapshot) Result() (Result, error) {
	return FromSnapshot(s.UserA, s.UserB, s.TotalJoint, s.UserAPaid)
}

// SnapshotOf returns the snapshot for a computed result.
func SnapshotOf(month types.Month, r Result) Snapshot {
	return Snapshot{
		Month:      month,
		TotalJoint: r.JointTotal,
		UserA:      r.UserA,
		UserAPaid:  r.ContributionA,
		UserB:      r.UserB,
		UserBPaid:  r.ContributionB,
	}
}
