package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/duo-finance/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the HTTP status for an error.
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrResourceNotFound), errors.Is(err, models.ErrInviteCodeInvalid):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotUnique), errors.Is(err, models.ErrHouseholdFull), errors.Is(err, models.ErrAlreadyInHousehold):
		return http.StatusConflict
	}

	return http.StatusBadRequest
}

var errUnauthorized = errors.New("the X-Duo-User header must contain the ID of a registered user")

// Cleanup errors
var (
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
)

// User errors
var (
	errUserRegistered = fmt.Errorf("%w: this user is already registered", models.ErrNotUnique)
)

// Category errors
var (
	errCategoryNotVisible = errors.New("the category does not exist or belongs to another household")
	errReassignToSelf     = errors.New("transactions cannot be reassigned to the category that is deleted")
)

// Transaction errors
var (
	errIsJointMissing     = errors.New("the isJoint field must be set")
	errExportRangeMissing = errors.New("the start and end query parameters must be set")
	errExportRangeOrder   = errors.New("the start of the export must not be after the end")
	errCategorizeTooMany  = errors.New("at most 50 transactions can be categorized at once")
)
