package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushSubscription is a browser push subscription of a user.
type PushSubscription struct {
	DefaultModel
	UserID   uuid.UUID `json:"userId" gorm:"uniqueIndex:subscription_user_endpoint"`
	User     User      `json:"-"`
	Endpoint string    `json:"endpoint" gorm:"uniqueIndex:subscription_user_endpoint"`
	P256dh   string    `json:"p256dh" gorm:"column:p256dh"`
	Auth     string    `json:"auth"`
}

func (s PushSubscription) Self() string {
	return "Push Subscription"
}

func (s *PushSubscription) BeforeSave(_ *gorm.DB) error {
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	if s.Endpoint == "" || s.P256dh == "" || s.Auth == "" {
		return ErrSubscriptionIncomplete
	}

	return nil
}

// SavePushSubscription creates the subscription or updates the keys of an
// existing subscription for the same user and endpoint.
func SavePushSubscription(db *gorm.DB, s PushSubscription) (PushSubscription, error) {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "updated_at", "deleted_at"}),
	}).Create(&s).Error
	if err != nil {
		return PushSubscription{}, err
	}

	var stored PushSubscription
	err = db.Where(&PushSubscription{UserID: s.UserID, Endpoint: s.Endpoint}).First(&stored).Error
	return stored, err
}

// UserPushSubscriptions returns all subscriptions of a user.
func UserPushSubscriptions(db *gorm.DB, userID uuid.UUID) ([]PushSubscription, error) {
	var subscriptions []PushSubscription
	err := db.Where(&PushSubscription{UserID: userID}).Find(&subscriptions).Error
	return subscriptions, err
}
