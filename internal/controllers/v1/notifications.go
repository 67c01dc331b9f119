package v1

import (
	"errors"
	"net/http"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

type PreferencesResponse struct {
	Error *string                         `json:"error" example:"the request body must not be empty"` // The error, if any occurred
	Data  *models.NotificationPreferences `json:"data"`                                               // Notification preferences of the user
}

// SubscriptionKeys are the keys of a push subscription as sent by the browser.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" example:"BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA_0QTpQtUbVlUls0VJXg7A8u-Ts1XbjhazAkj7I99e8QcYP7DkM"` // Public key of the browser
	Auth   string `json:"auth" example:"tBHItJI5svbpez7KI4CCXg"`                                                                    // Authentication secret
}

// SubscriptionCreate is a push subscription as returned by PushManager.subscribe().
type SubscriptionCreate struct {
	Endpoint string           `json:"endpoint" example:"https://fcm.googleapis.com/fcm/send/c1KrmpTuRm4"` // Push service endpoint
	Keys     SubscriptionKeys `json:"keys"`                                                               // Keys of the subscription
}

// SubscriptionDelete selects the subscription to remove.
type SubscriptionDelete struct {
	Endpoint string `json:"endpoint" example:"https://fcm.googleapis.com/fcm/send/c1KrmpTuRm4"` // Push service endpoint. Without it, all subscriptions of the user are removed.
}

type SubscriptionResponse struct {
	Error *string                  `json:"error" example:"a push subscription needs an endpoint and the p256dh and auth keys"` // The error, if any occurred
	Data  *models.PushSubscription `json:"data"`                                                                               // The stored subscription
}

// RegisterNotificationRoutes registers the routes for notification settings
// with the RouterGroup that is passed.
func RegisterNotificationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/preferences", OptionsNotificationPreferences)
		r.OPTIONS("/subscriptions", OptionsNotificationSubscriptions)
	}

	authed := r.Group("", RequireUser)
	{
		authed.GET("/preferences", GetNotificationPreferences)
		authed.PATCH("/preferences", UpdateNotificationPreferences)
		authed.POST("/subscriptions", CreateSubscription)
		authed.DELETE("/subscriptions", DeleteSubscriptions)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Notifications
// @Success		204
// @Router			/v1/notifications/preferences [options]
func OptionsNotificationPreferences(c *gin.Context) {
	httputil.OptionsGetPatch(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Notifications
// @Success		204
// @Router			/v1/notifications/subscriptions [options]
func OptionsNotificationSubscriptions(c *gin.Context) {
	httputil.OptionsPostDelete(c)
}

// @Summary		Get notification preferences
// @Description	Returns the notification preferences of the current user
// @Tags			Notifications
// @Produce		json
// @Success		200	{object}	PreferencesResponse
// @Failure		401	{object}	httpError
// @Router			/v1/notifications/preferences [get]
func GetNotificationPreferences(c *gin.Context) {
	preferences := currentUser(c).Notifications
	c.JSON(http.StatusOK, PreferencesResponse{Data: &preferences})
}

// @Summary		Update notification preferences
// @Description	Updates the notification preferences of the current user. Only values to be updated need to be specified.
// @Tags			Notifications
// @Accept			json
// @Produce		json
// @Success		200			{object}	PreferencesResponse
// @Failure		400			{object}	PreferencesResponse
// @Failure		401			{object}	httpError
// @Failure		500			{object}	PreferencesResponse
// @Param			preferences	body		models.NotificationPreferences	true	"Preferences"
// @Router			/v1/notifications/preferences [patch]
func UpdateNotificationPreferences(c *gin.Context) {
	user := currentUser(c)

	updateFields, err := httputil.GetBodyFields(c, models.NotificationPreferences{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PreferencesResponse{Error: &s})
		return
	}

	var data models.NotificationPreferences
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PreferencesResponse{Error: &s})
		return
	}

	if slices.Contains(updateFields, "PushEnabled") {
		user.Notifications.PushEnabled = data.PushEnabled
	}

	if slices.Contains(updateFields, "NewTransaction") {
		user.Notifications.NewTransaction = data.NewTransaction
	}

	if slices.Contains(updateFields, "ToggleChange") {
		user.Notifications.ToggleChange = data.ToggleChange
	}

	if slices.Contains(updateFields, "BudgetAlert") {
		user.Notifications.BudgetAlert = data.BudgetAlert
	}

	err = models.DB.Save(&user).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PreferencesResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, PreferencesResponse{Data: &user.Notifications})
}

// @Summary		Subscribe to push notifications
// @Description	Stores a push subscription of the current user. Subscribing the same endpoint again updates its keys.
// @Tags			Notifications
// @Accept			json
// @Produce		json
// @Success		201				{object}	SubscriptionResponse
// @Failure		400				{object}	SubscriptionResponse
// @Failure		401				{object}	httpError
// @Failure		500				{object}	SubscriptionResponse
// @Param			subscription	body		SubscriptionCreate	true	"Subscription"
// @Router			/v1/notifications/subscriptions [post]
func CreateSubscription(c *gin.Context) {
	var data SubscriptionCreate
	err := httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SubscriptionResponse{Error: &s})
		return
	}

	subscription, err := models.SavePushSubscription(models.DB, models.PushSubscription{
		UserID:   currentUser(c).ID,
		Endpoint: data.Endpoint,
		P256dh:   data.Keys.P256dh,
		Auth:     data.Keys.Auth,
	})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SubscriptionResponse{Error: &s})
		return
	}

	c.JSON(http.StatusCreated, SubscriptionResponse{Data: &subscription})
}

// @Summary		Unsubscribe from push notifications
// @Description	Removes the push subscription with the endpoint. Without a body, all subscriptions of the current user are removed.
// @Tags			Notifications
// @Accept			json
// @Success		204
// @Failure		400				{object}	httpError
// @Failure		401				{object}	httpError
// @Failure		500				{object}	httpError
// @Param			subscription	body		SubscriptionDelete	false	"Subscription"
// @Router			/v1/notifications/subscriptions [delete]
func DeleteSubscriptions(c *gin.Context) {
	var data SubscriptionDelete
	err := httputil.BindData(c, &data)
	if err != nil && !errors.Is(err, httputil.ErrRequestBodyEmpty) {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	q := models.DB.Unscoped().Where(&models.PushSubscription{UserID: currentUser(c).ID})
	if data.Endpoint != "" {
		q = q.Where("endpoint = ?", data.Endpoint)
	}

	err = q.Delete(&models.PushSubscription{}).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
