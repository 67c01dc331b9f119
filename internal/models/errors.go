package models

import (
	"errors"
	"fmt"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
	ErrNotUnique        = errors.New("a resource with these values already exists")
	ErrForbidden        = errors.New("you are not allowed to modify this resource")
)

// Uniqueness errors, all of them wrap ErrNotUnique.
var (
	ErrCategoryNameNotUnique    = fmt.Errorf("%w: the category name must be unique for the household", ErrNotUnique)
	ErrEmailNotUnique           = fmt.Errorf("%w: there already is a user with this email address", ErrNotUnique)
	ErrInviteCodeNotUnique      = fmt.Errorf("%w: the invite code is already in use", ErrNotUnique)
	ErrBudgetNotUnique          = fmt.Errorf("%w: there already is a budget for this category", ErrNotUnique)
	ErrSettlementMonthNotUnique = fmt.Errorf("%w: the month has already been settled", ErrNotUnique)
	ErrSubscriptionNotUnique    = fmt.Errorf("%w: the push subscription is already registered", ErrNotUnique)
	ErrAlertStateMonthNotUnique = fmt.Errorf("%w: alert state for the budget and month already exists", ErrNotUnique)
)

// Validation errors
var (
	ErrHouseholdNameTooShort  = errors.New("the household name must be at least 2 characters long")
	ErrAlreadyInHousehold     = errors.New("you are already a member of a household")
	ErrNotInHousehold         = errors.New("you are not a member of a household")
	ErrHouseholdFull          = errors.New("this household already has two members")
	ErrInviteCodeInvalid      = errors.New("the invite code is not valid")
	ErrInviteCodeGeneration   = errors.New("could not generate a unique invite code, please try again")
	ErrUserEmailMissing       = errors.New("the email address of the user must be set")
	ErrCategoryNameMissing    = errors.New("the category name must be set")
	ErrCategoryRuleMatchEmpty = errors.New("the match of a category rule must not be empty")
	ErrCategoryRuleCategory   = errors.New("the category of a category rule must be set")
	ErrTransactionAmount      = errors.New("the amount of a transaction must be positive")
	ErrTransactionMerchant    = errors.New("the merchant name of a transaction must be set")
	ErrTransactionDate        = errors.New("the date of a transaction must be set")
	ErrTransactionSource      = errors.New("the source of a transaction must be manual or import")
	ErrBudgetLimitNegative    = errors.New("the monthly limit of a budget must not be negative")
	ErrBudgetThresholdRange   = errors.New("the alert threshold of a budget must be between 1 and 100")
	ErrSubscriptionIncomplete = errors.New("a push subscription needs an endpoint and the p256dh and auth keys")
)
