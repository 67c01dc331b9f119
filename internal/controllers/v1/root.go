package v1

import (
	"net/http"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Users         string `json:"users" example:"https://example.com/api/v1/users"`                  // URL of the user endpoint
	Households    string `json:"households" example:"https://example.com/api/v1/households"`        // URL of the household endpoint
	Categories    string `json:"categories" example:"https://example.com/api/v1/categories"`        // URL of category list endpoint
	CategoryRules string `json:"categoryRules" example:"https://example.com/api/v1/category-rules"` // URL of category rule list endpoint
	Transactions  string `json:"transactions" example:"https://example.com/api/v1/transactions"`    // URL of transaction list endpoint
	Budgets       string `json:"budgets" example:"https://example.com/api/v1/budgets"`              // URL of budget list endpoint
	Settlements   string `json:"settlements" example:"https://example.com/api/v1/settlements"`      // URL of the settlement endpoint
	Notifications string `json:"notifications" example:"https://example.com/api/v1/notifications"`  // URL of the notification endpoint
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is passed.
func RegisterRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsV1)
		r.GET("", GetV1)
		r.DELETE("", RequireUser, RequireHousehold, Cleanup)
	}

	RegisterUserRoutes(r.Group("/users"))
	RegisterHouseholdRoutes(r.Group("/households"))
	RegisterCategoryRoutes(r.Group("/categories"))
	RegisterCategoryRuleRoutes(r.Group("/category-rules"))
	RegisterTransactionRoutes(r.Group("/transactions"))
	RegisterBudgetRoutes(r.Group("/budgets"))
	RegisterSettlementRoutes(r.Group("/settlements"))
	RegisterNotificationRoutes(r.Group("/notifications"))
}

// @Summary		v1 API
// @Description	Returns general information about the v1 API
// @Tags			v1
// @Success		200	{object}	Response
// @Router			/v1 [get]
func GetV1(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Users:         url + "/v1/users",
			Households:    url + "/v1/households",
			Categories:    url + "/v1/categories",
			CategoryRules: url + "/v1/category-rules",
			Transactions:  url + "/v1/transactions",
			Budgets:       url + "/v1/budgets",
			Settlements:   url + "/v1/settlements",
			Notifications: url + "/v1/notifications",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			v1
// @Success		204
// @Router			/v1 [options]
func OptionsV1(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// @Summary		Delete household
// @Description	Permanently deletes the household of the user with its members and all of its resources. Other households are not touched.
// @Tags			v1
// @Security		DuoUser
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		401		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
// @Router			/v1 [delete]
func Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errCleanupConfirmation.Error(),
		})
		return
	}

	id := householdID(c)

	// Use a transaction so that we can roll back if errors happen
	tx := models.DB.Begin()

	members := tx.Model(&models.User{}).Select("id").Where("household_id = ?", id)

	// Resources are deleted before the resources they reference
	deletes := []struct {
		model any
		query string
		arg   any
	}{
		{&models.PushSubscription{}, "user_id IN (?)", members},
		{&models.BudgetAlertState{}, "household_id = ?", id},
		{&models.Settlement{}, "household_id = ?", id},
		{&models.Budget{}, "household_id = ?", id},
		{&models.Transaction{}, "household_id = ?", id},
		{&models.CategoryRule{}, "household_id = ?", id},
		{&models.Category{}, "household_id = ?", id},
		{&models.User{}, "household_id = ?", id},
		{&models.Household{}, "id = ?", id},
	}

	for _, d := range deletes {
		err := tx.Unscoped().Where(d.query, d.arg).Delete(d.model).Error
		if err != nil {
			c.JSON(status(err), httpError{
				Error: err.Error(),
			})
			tx.Rollback()
			return
		}
	}

	tx.Commit()
	c.JSON(http.StatusNoContent, nil)
}
