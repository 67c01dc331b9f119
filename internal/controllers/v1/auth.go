package v1

import (
	"errors"

	"github.com/duo-finance/backend/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHeader carries the ID of the user authenticated by the gateway.
const UserHeader = "X-Duo-User"

const userKey = "duo-user"

// headerUserID returns the user ID from the request header.
func headerUserID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.GetHeader(UserHeader))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errUnauthorized
	}

	return id, nil
}

// RequireUser loads the user of the request and aborts with 401 for
// missing or unknown users.
func RequireUser(c *gin.Context) {
	id, err := headerUserID(c)
	if err != nil {
		c.AbortWithStatusJSON(status(err), httpError{Error: err.Error()})
		return
	}

	var user models.User
	err = models.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		err = errUnauthorized
	}
	if err != nil {
		c.AbortWithStatusJSON(status(err), httpError{Error: err.Error()})
		return
	}

	if hub := sentry.GetHubFromContext(c.Request.Context()); hub != nil {
		hub.Scope().SetUser(sentry.User{ID: user.ID.String()})
	}

	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) models.User {
	return c.MustGet(userKey).(models.User)
}

// currentHousehold returns the household of the user of the request.
func currentHousehold(c *gin.Context) (uuid.UUID, error) {
	user := currentUser(c)
	if user.HouseholdID == nil {
		return uuid.Nil, models.ErrNotInHousehold
	}

	return *user.HouseholdID, nil
}

// RequireHousehold aborts for users that are not a member of a household.
func RequireHousehold(c *gin.Context) {
	if _, err := currentHousehold(c); err != nil {
		c.AbortWithStatusJSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Next()
}

// householdID returns the household of the request. It must only be used
// behind RequireHousehold.
func householdID(c *gin.Context) uuid.UUID {
	id, _ := currentHousehold(c)
	return id
}
