// Package settlement computes who owes whom for the joint spending of a
// two-member household in one month.
//
// The split is strictly bilateral: every joint expense is shared evenly
// between member A and member B.
package settlement

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMemberMissing      = errors.New("settling requires two household members")
	ErrMembersNotDistinct = errors.New("the two members of a settlement must be different users")
	ErrNegativeTotal      = errors.New("the joint total must not be negative")
)

// Epsilon is the smallest balance that is not considered settled.
var Epsilon = decimal.New(1, -2)

var two = decimal.NewFromInt(2)

// Expense is a joint expense paid by one member.
type Expense struct {
	UserID uuid.UUID
	Amount decimal.Decimal
}

// Result is the settlement of one month, seen from member A.
type Result struct {
	UserA         uuid.UUID       `json:"userAId"`
	UserB         uuid.UUID       `json:"userBId"`
	JointTotal    decimal.Decimal `json:"jointTotal"`
	ContributionA decimal.Decimal `json:"userAPaid"`
	ContributionB decimal.Decimal `json:"userBPaid"`
	FairShare     decimal.Decimal `json:"fairShare"`

	// Balance is positive when A paid more than the fair share and
	// B owes A, negative when A owes B.
	Balance decimal.Decimal `json:"balance"`
}

// Calculate sums up the joint expenses for members a and b.
//
// Expenses of users other than a are attributed to b.
func Calculate(expenses []Expense, a, b uuid.UUID) (Result, error) {
	if err := validateMembers(a, b); err != nil {
		return Result{}, err
	}

	total := decimal.Zero
	contributionA := decimal.Zero

	for _, e := range expenses {
		total = total.Add(e.Amount)
		if e.UserID == a {
			contributionA = contributionA.Add(e.Amount)
		}
	}

	return newResult(a, b, total, contributionA)
}

// FromSnapshot rebuilds the result of a month that has been settled.
func FromSnapshot(a, b uuid.UUID, total, paidA decimal.Decimal) (Result, error) {
	if err := validateMembers(a, b); err != nil {
		return Result{}, err
	}

	return newResult(a, b, total, paidA)
}

func newResult(a, b uuid.UUID, total, contributionA decimal.Decimal) (Result, error) {
	if total.IsNegative() {
		return Result{}, ErrNegativeTotal
	}

	fairShare := total.Div(two)

	return Result{
		UserA:         a,
		UserB:         b,
		JointTotal:    total,
		ContributionA: contributionA,
		ContributionB: total.Sub(contributionA),
		FairShare:     fairShare,
		Balance:       contributionA.Sub(fairShare),
	}, nil
}

func validateMembers(a, b uuid.UUID) error {
	if a == uuid.Nil || b == uuid.Nil {
		return ErrMemberMissing
	}

	if a == b {
		return ErrMembersNotDistinct
	}

	return nil
}

// SquaredUp reports whether the balance is below one cent in either
// direction. A squared up month has nothing left to settle.
func (r Result) SquaredUp() bool {
	return r.Balance.Abs().LessThan(Epsilon)
}

// Owed returns the absolute amount the debtor owes the creditor, zero
// when squared up.
func (r Result) Owed() decimal.Decimal {
	if r.SquaredUp() {
		return decimal.Zero
	}

	return r.Balance.Abs()
}

// Debtor returns the member who owes money, uuid.Nil when squared up.
func (r Result) Debtor() uuid.UUID {
	switch {
	case r.SquaredUp():
		return uuid.Nil
	case r.Balance.IsPositive():
		return r.UserB
	default:
		return r.UserA
	}
}

// Creditor returns the member who is owed money, uuid.Nil when squared up.
func (r Result) Creditor() uuid.UUID {
	switch {
	case r.SquaredUp():
		return uuid.Nil
	case r.Balance.IsPositive():
		return r.UserA
	default:
		return r.UserB
	}
}

// For returns the result from the point of view of the given member.
// Viewed from B, contributions swap and the balance changes sign.
func (r Result) For(userID uuid.UUID) Result {
	if userID != r.UserB {
		return r
	}

	return Result{
		UserA:         r.UserB,
		UserB:         r.UserA,
		JointTotal:    r.JointTotal,
		ContributionA: r.ContributionB,
		ContributionB: r.ContributionA,
		FairShare:     r.FairShare,
		Balance:       r.Balance.Neg(),
	}
}

// Shares returns the contribution of A and B in percent of the joint
// total. Both are zero for an empty month.
func (r Result) Shares() (decimal.Decimal, decimal.Decimal) {
	if r.JointTotal.IsZero() {
		return decimal.Zero, decimal.Zero
	}

	hundred := decimal.NewFromInt(100)
	a := r.ContributionA.Div(r.JointTotal).Mul(hundred).Round(2)
	b := r.ContributionB.Div(r.JointTotal).Mul(hundred).Round(2)
	return a, b
}
