package v1

import (
	"fmt"
	"net/http"

	"github.com/duo-finance/backend/internal/alerts"
	"github.com/duo-finance/backend/internal/events"
	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetEditable struct {
	CategoryID     *uuid.UUID      `json:"categoryId" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"` // Category to limit, empty for the household total
	MonthlyLimit   decimal.Decimal `json:"monthlyLimit" swaggertype:"string" example:"400"`           // Monthly limit, must not be negative
	AlertThreshold int             `json:"alertThreshold" example:"80"`                               // Warning threshold in percent, 1 to 100. Defaults to 80.
}

// model returns the database resource for the API representation of the editable fields
func (editable BudgetEditable) model(householdID uuid.UUID) models.Budget {
	return models.Budget{
		HouseholdID:    householdID,
		CategoryID:     editable.CategoryID,
		MonthlyLimit:   editable.MonthlyLimit,
		AlertThreshold: editable.AlertThreshold,
	}
}

type BudgetLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/budgets/550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // The budget itself
}

// Budget is the representation of a Budget in API v1.
type Budget struct {
	models.Budget
	Name  string      `json:"name" example:"Groceries"` // Name of the category, "Total Household" for the household total
	Links BudgetLinks `json:"links"`
}

// newBudget returns the API v1 representation of the resource
func newBudget(c *gin.Context, model models.Budget) Budget {
	url := c.GetString(string(models.DBContextURL))

	return Budget{
		Budget: model,
		Name:   model.Name(),
		Links: BudgetLinks{
			Self: fmt.Sprintf("%s/v1/budgets/%s", url, model.ID),
		},
	}
}

type BudgetListResponse struct {
	Data  []Budget `json:"data"`                                                          // List of budgets
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BudgetResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Budget `json:"data"`                                                          // Data for the budget
}

// BudgetStatus is the spending against a budget in a month.
type BudgetStatus struct {
	Budget     Budget          `json:"budget"`                                         // The budget
	Spent      decimal.Decimal `json:"spent" swaggertype:"string" example:"342.10"`    // Amount spent in the month
	Remaining  decimal.Decimal `json:"remaining" swaggertype:"string" example:"57.90"` // Amount left, negative when the limit is exceeded
	Percentage decimal.Decimal `json:"percentage" swaggertype:"string" example:"85.5"` // Share of the limit that has been spent
	Level      alerts.Level    `json:"level" example:"warning"`                        // One of ok, warning, exceeded
	Severity   string          `json:"severity" example:"warning"`                     // One of info, warning, error
}

type BudgetStatusResponse struct {
	Error *string        `json:"error" example:"\"2024-13\" is not a valid month, use the YYYY-MM format"` // The error, if any occurred
	Month *types.Month   `json:"month" swaggertype:"string" example:"2024-05"`                             // The month the spending was summed up for
	Data  []BudgetStatus `json:"data"`                                                                     // Status of every budget of the household
}

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func RegisterBudgetRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsBudgetList)
		r.OPTIONS("/status", OptionsBudgetStatus)
		r.OPTIONS("/:id", OptionsBudgetDetail)
	}

	authed := r.Group("", RequireUser, RequireHousehold)

	// Root group
	{
		authed.GET("", GetBudgets)
		authed.POST("", UpsertBudget)
		authed.GET("/status", GetBudgetStatus)
	}

	// Budget with ID
	{
		authed.GET("/:id", GetBudget)
		authed.DELETE("/:id", DeleteBudget)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets [options]
func OptionsBudgetList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets/status [options]
func OptionsBudgetStatus(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budgets/{id} [options]
func OptionsBudgetDetail(c *gin.Context) {
	if !resourceExists(c, models.Budget{}) {
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Set budget
// @Description	Creates the budget for the category or the household total. If one already exists, its limit and threshold are updated.
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		401		{object}	httpError
// @Failure		500		{object}	BudgetResponse
// @Param			budget	body		BudgetEditable	true	"Budget"
// @Router			/v1/budgets [post]
func UpsertBudget(c *gin.Context) {
	var editable BudgetEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &s})
		return
	}

	budget := editable.model(householdID(c))

	err = checkCategory(budget.HouseholdID, budget.CategoryID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &s})
		return
	}

	budget, err = models.UpsertBudget(models.DB, budget)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &s})
		return
	}

	// Reload to get the category for the name
	err = models.DB.Preload("Category").Where("id = ?", budget.ID).First(&budget).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &s})
		return
	}

	services.Dispatcher.SpendingChanged(c.Request.Context(), budget.HouseholdID, events.ReasonBudgetChanged)

	data := newBudget(c, budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// @Summary		Get budgets
// @Description	Returns the budgets of the household, the household total first
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetListResponse
// @Failure		401	{object}	httpError
// @Failure		500	{object}	BudgetListResponse
// @Router			/v1/budgets [get]
func GetBudgets(c *gin.Context) {
	budgets, err := models.HouseholdBudgets(models.DB, householdID(c))
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetListResponse{Error: &s})
		return
	}

	data := make([]Budget, 0, len(budgets))
	for _, budget := range budgets {
		data = append(data, newBudget(c, budget))
	}

	c.JSON(http.StatusOK, BudgetListResponse{Data: data})
}

// @Summary		Get budget
// @Description	Returns a specific budget
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	httpError
// @Failure		401	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/budgets/{id} [get]
func GetBudget(c *gin.Context) {
	budget, ok := householdResource[models.Budget](c)
	if !ok {
		return
	}

	if budget.CategoryID != nil {
		var category models.Category
		if err := models.DB.Where("id = ?", budget.CategoryID).First(&category).Error; err == nil {
			budget.Category = &category
		}
	}

	data := newBudget(c, budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// @Summary		Delete budget
// @Description	Deletes a budget and its alert history
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		401	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/budgets/{id} [delete]
func DeleteBudget(c *gin.Context) {
	budget, ok := householdResource[models.Budget](c)
	if !ok {
		return
	}

	err := models.DeleteBudget(models.DB, budget)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Get budget status
// @Description	Returns the spending against every budget of the household in the month
// @Tags			Budgets
// @Produce		json
// @Success		200		{object}	BudgetStatusResponse
// @Failure		400		{object}	BudgetStatusResponse
// @Failure		401		{object}	httpError
// @Failure		500		{object}	BudgetStatusResponse
// @Param			month	query		string	false	"The month in YYYY-MM format. Defaults to the current month."
// @Router			/v1/budgets/status [get]
func GetBudgetStatus(c *gin.Context) {
	var q QueryMonth
	err := c.ShouldBindQuery(&q)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, BudgetStatusResponse{Error: &s})
		return
	}

	month := q.Month
	if month.IsZero() {
		month = types.MonthOf(now())
	}

	hid := householdID(c)
	budgets, err := models.HouseholdBudgets(models.DB, hid)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetStatusResponse{Error: &s})
		return
	}

	spending, err := models.Spending(models.DB, hid, month)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetStatusResponse{Error: &s})
		return
	}

	data := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		a := alerts.Status(budget.Alerts(), spending)

		data = append(data, BudgetStatus{
			Budget:     newBudget(c, budget),
			Spent:      a.Spent,
			Remaining:  budget.MonthlyLimit.Sub(a.Spent),
			Percentage: a.Percentage.Round(1),
			Level:      a.Level,
			Severity:   a.Level.Severity(),
		})
	}

	c.JSON(http.StatusOK, BudgetStatusResponse{Month: &month, Data: data})
}
