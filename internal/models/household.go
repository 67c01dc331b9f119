package models

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	// InviteCodePrefix is the fixed start of every invite code.
	InviteCodePrefix = "JOIN-"

	// inviteCodeAlphabet omits characters that are easily confused, like O and 0.
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength   = 6
	inviteCodeAttempts = 5

	// MaxMembers is the number of members a household can have.
	MaxMembers = 2
)

// Household is a group of at most two users sharing their finances.
type Household struct {
	DefaultModel
	Name           string `json:"name" example:"The Does"`
	InviteCode     string `json:"inviteCode" gorm:"uniqueIndex" example:"JOIN-7KX2QM"`
	ShowSettlement bool   `json:"showSettlement" gorm:"default:true" example:"true"` // Show the settlement of joint expenses on the dashboard
}

func (h Household) Self() string {
	return "Household"
}

// BeforeSave trims and validates the name.
func (h *Household) BeforeSave(_ *gorm.DB) error {
	h.Name = strings.TrimSpace(h.Name)
	if utf8.RuneCountInString(h.Name) < 2 {
		return ErrHouseholdNameTooShort
	}

	h.InviteCode = NormalizeInviteCode(h.InviteCode)
	return nil
}

// NewInviteCode returns a random invite code.
func NewInviteCode() (string, error) {
	var b strings.Builder
	b.WriteString(InviteCodePrefix)

	size := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}

	return b.String(), nil
}

// NormalizeInviteCode trims and uppercases an invite code as entered by a user.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Members returns the members of the household ordered by the time they joined.
func (h Household) Members(db *gorm.DB) ([]User, error) {
	var members []User
	err := db.Where(&User{HouseholdID: &h.ID}).Order("created_at ASC, id ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// CreateHousehold creates a new household with a unique invite code and
// makes the user its first member.
func CreateHousehold(db *gorm.DB, user *User, name string) (Household, error) {
	if user.HouseholdID != nil {
		return Household{}, ErrAlreadyInHousehold
	}

	var household Household
	err := db.Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
			code, err := NewInviteCode()
			if err != nil {
				return err
			}

			household = Household{Name: name, InviteCode: code, ShowSettlement: true}
			err = tx.Create(&household).Error
			if errors.Is(err, ErrInviteCodeNotUnique) {
				continue
			}
			if err != nil {
				return err
			}

			return tx.Model(user).Update("household_id", household.ID).Error
		}

		return ErrInviteCodeGeneration
	})
	if err != nil {
		return Household{}, err
	}

	user.HouseholdID = &household.ID
	return household, nil
}

// HouseholdByInviteCode looks up a household by its invite code.
func HouseholdByInviteCode(db *gorm.DB, code string) (Household, error) {
	code = NormalizeInviteCode(code)
	if !strings.HasPrefix(code, InviteCodePrefix) {
		return Household{}, ErrInviteCodeInvalid
	}

	var household Household
	err := db.Where(&Household{InviteCode: code}).First(&household).Error
	if errors.Is(err, ErrResourceNotFound) {
		return Household{}, ErrInviteCodeInvalid
	}

	return household, err
}

// JoinHousehold adds the user to the household with the invite code.
func JoinHousehold(db *gorm.DB, user *User, code string) (Household, error) {
	if user.HouseholdID != nil {
		return Household{}, ErrAlreadyInHousehold
	}

	var household Household
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		household, err = HouseholdByInviteCode(tx, code)
		if err != nil {
			return err
		}

		var count int64
		err = tx.Model(&User{}).Where(&User{HouseholdID: &household.ID}).Count(&count).Error
		if err != nil {
			return err
		}

		if count >= MaxMembers {
			return ErrHouseholdFull
		}

		return tx.Model(user).Update("household_id", household.ID).Error
	})
	if err != nil {
		return Household{}, err
	}

	user.HouseholdID = &household.ID
	return household, nil
}

// Partner returns the other member of the user's household. The boolean is
// false if the user has no partner yet.
func Partner(db *gorm.DB, user User) (User, bool, error) {
	if user.HouseholdID == nil {
		return User{}, false, ErrNotInHousehold
	}

	var partner User
	err := db.
		Where(&User{HouseholdID: user.HouseholdID}).
		Where("id != ?", user.ID).
		First(&partner).Error
	if errors.Is(err, ErrResourceNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}

	return partner, true, nil
}
