package v1

import (
	"net/http"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

type UserEditable struct {
	FullName string `json:"fullName" example:"Alex Doe"`      // Full name of the user
	Email    string `json:"email" example:"alex@example.com"` // Email address, unique across all users
}

type UserResponse struct {
	Data  *models.User `json:"data"`                                                          // Data for the user
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// RegisterUserRoutes registers the routes for users with
// the RouterGroup that is passed.
func RegisterUserRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsUserList)
		r.POST("", CreateUser)
	}

	// Current user
	{
		r.OPTIONS("/me", OptionsUserMe)
		r.OPTIONS("/me/onboarding", OptionsUserOnboarding)

		me := r.Group("/me", RequireUser)
		me.GET("", GetMe)
		me.PATCH("", UpdateMe)
		me.POST("/onboarding", CompleteOnboarding)
		me.DELETE("/onboarding", ResetOnboarding)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Users
// @Success		204
// @Router			/v1/users [options]
func OptionsUserList(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Users
// @Success		204
// @Router			/v1/users/me [options]
func OptionsUserMe(c *gin.Context) {
	httputil.OptionsGetPatch(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Users
// @Success		204
// @Router			/v1/users/me/onboarding [options]
func OptionsUserOnboarding(c *gin.Context) {
	httputil.OptionsPostDelete(c)
}

// @Summary		Register user
// @Description	Registers the user authenticated by the gateway. The ID is taken from the X-Duo-User header.
// @Tags			Users
// @Accept			json
// @Produce		json
// @Success		201		{object}	UserResponse
// @Failure		400		{object}	UserResponse
// @Failure		401		{object}	UserResponse
// @Failure		409		{object}	UserResponse
// @Failure		500		{object}	UserResponse
// @Param			user	body		UserEditable	true	"User"
// @Router			/v1/users [post]
func CreateUser(c *gin.Context) {
	id, err := headerUserID(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	var editable UserEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	var count int64
	err = models.DB.Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err == nil && count > 0 {
		err = errUserRegistered
	}
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	user := models.User{
		DefaultModel:  models.DefaultModel{ID: id},
		FullName:      editable.FullName,
		Email:         editable.Email,
		Notifications: models.DefaultNotificationPreferences,
	}

	err = models.DB.Create(&user).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	c.JSON(http.StatusCreated, UserResponse{Data: &user})
}

// @Summary		Get current user
// @Description	Returns the user of the request
// @Tags			Users
// @Produce		json
// @Success		200	{object}	UserResponse
// @Failure		401	{object}	httpError
// @Router			/v1/users/me [get]
func GetMe(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, UserResponse{Data: &user})
}

// @Summary		Update current user
// @Description	Updates the name or email address of the user of the request. Only values to be updated need to be specified.
// @Tags			Users
// @Accept			json
// @Produce		json
// @Success		200		{object}	UserResponse
// @Failure		400		{object}	UserResponse
// @Failure		401		{object}	httpError
// @Failure		409		{object}	UserResponse
// @Failure		500		{object}	UserResponse
// @Param			user	body		UserEditable	true	"User"
// @Router			/v1/users/me [patch]
func UpdateMe(c *gin.Context) {
	user := currentUser(c)

	updateFields, err := httputil.GetBodyFields(c, UserEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	var data UserEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	if slices.Contains(updateFields, "FullName") {
		user.FullName = data.FullName
	}

	if slices.Contains(updateFields, "Email") {
		user.Email = data.Email
	}

	err = models.DB.Save(&user).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, UserResponse{Data: &user})
}

// @Summary		Complete onboarding
// @Description	Marks the onboarding of the user of the request as completed
// @Tags			Users
// @Produce		json
// @Success		200	{object}	UserResponse
// @Failure		401	{object}	httpError
// @Failure		500	{object}	UserResponse
// @Router			/v1/users/me/onboarding [post]
func CompleteOnboarding(c *gin.Context) {
	user := currentUser(c)

	completed := now().UTC()
	user.OnboardingCompletedAt = &completed
	saveUser(c, user)
}

// @Summary		Reset onboarding
// @Description	Resets the onboarding of the user of the request so that it is shown again
// @Tags			Users
// @Produce		json
// @Success		200	{object}	UserResponse
// @Failure		401	{object}	httpError
// @Failure		500	{object}	UserResponse
// @Router			/v1/users/me/onboarding [delete]
func ResetOnboarding(c *gin.Context) {
	user := currentUser(c)

	user.OnboardingCompletedAt = nil
	saveUser(c, user)
}

func saveUser(c *gin.Context, user models.User) {
	err := models.DB.Save(&user).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, UserResponse{Data: &user})
}
