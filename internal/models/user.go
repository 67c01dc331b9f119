package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationPreferences control which push notifications a user receives.
type NotificationPreferences struct {
	PushEnabled    bool `json:"pushEnabled" gorm:"default:true" example:"true"`    // Master switch for all push notifications
	NewTransaction bool `json:"newTransaction" gorm:"default:true" example:"true"` // Notify when the partner adds an expense
	ToggleChange   bool `json:"toggleChange" gorm:"default:true" example:"true"`   // Notify when the partner marks an expense joint or personal
	BudgetAlert    bool `json:"budgetAlert" gorm:"default:true" example:"true"`    // Notify when a budget reaches its threshold
}

// DefaultNotificationPreferences has every notification enabled.
var DefaultNotificationPreferences = NotificationPreferences{
	PushEnabled:    true,
	NewTransaction: true,
	ToggleChange:   true,
	BudgetAlert:    true,
}

// Kind is a type of push notification.
type Kind string

const (
	KindNewTransaction Kind = "new_transaction"
	KindToggleChange   Kind = "toggle_change"
	KindBudgetAlert    Kind = "budget_alert"
)

// Allows reports whether a notification of the kind may be sent.
func (p NotificationPreferences) Allows(kind Kind) bool {
	if !p.PushEnabled {
		return false
	}

	switch kind {
	case KindNewTransaction:
		return p.NewTransaction
	case KindToggleChange:
		return p.ToggleChange
	case KindBudgetAlert:
		return p.BudgetAlert
	}

	return false
}

// User is a person using duo. Users are authenticated upstream, the ID is
// passed to the backend with every request.
type User struct {
	DefaultModel
	FullName              string                  `json:"fullName" example:"Alex Doe"`
	Email                 string                  `json:"email" gorm:"uniqueIndex" example:"alex@example.com"`
	HouseholdID           *uuid.UUID              `json:"householdId" gorm:"index" example:"f6a1b5e7-0c2e-4a8b-8e3c-5a9d2b1c7e44"`
	OnboardingCompletedAt *time.Time              `json:"onboardingCompletedAt" example:"2024-05-01T10:00:00Z"`
	Notifications         NotificationPreferences `json:"notifications" gorm:"embedded;embeddedPrefix:notify_"`
}

func (u User) Self() string {
	return "User"
}

// BeforeSave trims and validates the user.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.FullName = strings.TrimSpace(u.FullName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if u.Email == "" {
		return ErrUserEmailMissing
	}

	if u.HouseholdID != nil && *u.HouseholdID == uuid.Nil {
		u.HouseholdID = nil
	}

	return nil
}

// DisplayName is the name shown to the partner: the first word of the full
// name, the local part of the email address or "Partner".
func (u User) DisplayName() string {
	if fields := strings.Fields(u.FullName); len(fields) > 0 {
		return fields[0]
	}

	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}

	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return u.Email
	}

	return "Partner"
}

// ActorName is the name used when the user is mentioned in a notification.
func (u User) ActorName() string {
	if u.FullName != "" {
		return u.FullName
	}

	return u.DisplayName()
}
