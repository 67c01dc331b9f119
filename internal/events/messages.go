package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
)

// RoutingKey is the routing key of household activity messages.
const RoutingKey = "household.activity"

// Reason is the change that caused an activity message.
type Reason string

const (
	ReasonTransactionCreated Reason = "transaction.created"
	ReasonTransactionUpdated Reason = "transaction.updated"
	ReasonTransactionToggled Reason = "transaction.toggled"
	ReasonTransactionDeleted Reason = "transaction.deleted"
	ReasonBudgetChanged      Reason = "budget.changed"
)

var (
	ErrHouseholdMissing = errors.New("the activity message has no household")
	ErrMonthMissing     = errors.New("the activity message has no month")
)

// ActivityMessage announces that the spending of a household in a month
// changed and its budgets need to be checked. It only carries identifiers,
// consumers read the current state from the database.
type ActivityMessage struct {
	HouseholdID uuid.UUID   `json:"householdId"`
	Month       types.Month `json:"month"`
	Reason      Reason      `json:"reason"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewActivityMessage returns a message for the household and month.
func NewActivityMessage(householdID uuid.UUID, month types.Month, reason Reason) ActivityMessage {
	return ActivityMessage{
		HouseholdID: householdID,
		Month:       month,
		Reason:      reason,
		Timestamp:   time.Now(),
	}
}

// Validate checks that the message identifies a household and month.
func (m ActivityMessage) Validate() error {
	if m.HouseholdID == uuid.Nil {
		return ErrHouseholdMissing
	}

	if m.Month.IsZero() {
		return ErrMonthMissing
	}

	return nil
}

// ToJSON converts the message to JSON bytes
func (m ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON decodes and validates a message.
func ActivityMessageFromJSON(data []byte) (ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ActivityMessage{}, err
	}

	return msg, msg.Validate()
}
