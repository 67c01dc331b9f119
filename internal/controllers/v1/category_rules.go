package v1

import (
	"fmt"
	"net/http"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

type CategoryRuleEditable struct {
	CategoryID uuid.UUID `json:"categoryId" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"` // Category assigned by the rule
	Priority   uint      `json:"priority" example:"3"`                                      // Rules are evaluated by priority, lowest first
	Match      string    `json:"match" example:"*whole foods*"`                             // Glob pattern matched against the merchant name, ignoring case
}

// model returns the database resource for the API representation of the editable fields
func (editable CategoryRuleEditable) model(householdID uuid.UUID) models.CategoryRule {
	return models.CategoryRule{
		HouseholdID: householdID,
		CategoryID:  editable.CategoryID,
		Priority:    editable.Priority,
		Match:       editable.Match,
	}
}

type CategoryRuleLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/category-rules/95685c82-53c6-455d-b235-f49960b73b21"` // The category rule itself
}

// CategoryRule is the representation of a CategoryRule in API v1.
type CategoryRule struct {
	models.CategoryRule
	Links CategoryRuleLinks `json:"links"`
}

// newCategoryRule returns the API v1 representation of the resource
func newCategoryRule(c *gin.Context, model models.CategoryRule) CategoryRule {
	url := c.GetString(string(models.DBContextURL))

	return CategoryRule{
		CategoryRule: model,
		Links: CategoryRuleLinks{
			Self: fmt.Sprintf("%s/v1/category-rules/%s", url, model.ID),
		},
	}
}

type CategoryRuleListResponse struct {
	Data       []CategoryRule `json:"data"`                                                          // List of category rules
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination    `json:"pagination"`                                                    // Pagination information
}

type CategoryRuleCreateResponse struct {
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []CategoryRuleResponse `json:"data"`                                                          // List of created category rules
}

func (r *CategoryRuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, CategoryRuleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type CategoryRuleResponse struct {
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this category rule
	Data  *CategoryRule `json:"data"`                                                          // Data for the category rule
}

// RegisterCategoryRuleRoutes registers the routes for category rules with
// the RouterGroup that is passed.
func RegisterCategoryRuleRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsCategoryRuleList)
		r.OPTIONS("/:id", OptionsCategoryRuleDetail)
	}

	authed := r.Group("", RequireUser, RequireHousehold)

	// Root group
	{
		authed.GET("", GetCategoryRules)
		authed.POST("", CreateCategoryRules)
	}

	// Category rule with ID
	{
		authed.GET("/:id", GetCategoryRule)
		authed.PATCH("/:id", UpdateCategoryRule)
		authed.DELETE("/:id", DeleteCategoryRule)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Category Rules
// @Success		204
// @Router			/v1/category-rules [options]
func OptionsCategoryRuleList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Category Rules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/category-rules/{id} [options]
func OptionsCategoryRuleDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.CategoryRule{})
}

// @Summary		Create category rules
// @Description	Creates category rules for the household
// @Tags			Category Rules
// @Accept			json
// @Produce		json
// @Success		201		{object}	CategoryRuleCreateResponse
// @Failure		400		{object}	CategoryRuleCreateResponse
// @Failure		401		{object}	httpError
// @Failure		500		{object}	CategoryRuleCreateResponse
// @Param			rules	body		[]CategoryRuleEditable	true	"Category rules"
// @Router			/v1/category-rules [post]
func CreateCategoryRules(c *gin.Context) {
	var editables []CategoryRuleEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := CategoryRuleCreateResponse{}

	for _, editable := range editables {
		rule := editable.model(householdID(c))

		err = checkCategory(rule.HouseholdID, &rule.CategoryID)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = models.DB.Create(&rule).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newCategoryRule(c, rule)
		r.Data = append(r.Data, CategoryRuleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get category rules
// @Description	Returns the category rules of the household, ordered by priority
// @Tags			Category Rules
// @Produce		json
// @Success		200		{object}	CategoryRuleListResponse
// @Failure		400		{object}	CategoryRuleListResponse
// @Failure		401		{object}	httpError
// @Failure		500		{object}	CategoryRuleListResponse
// @Param			offset	query		uint	false	"The offset of the first category rule returned. Defaults to 0."
// @Param			limit	query		int		false	"Maximum number of category rules to return. Defaults to 50."
// @Router			/v1/category-rules [get]
func GetCategoryRules(c *gin.Context) {
	var q QueryPage
	err := c.ShouldBindQuery(&q)
	if err != nil {
		e := httputil.ErrInvalidQueryString.Error()
		c.JSON(http.StatusBadRequest, CategoryRuleListResponse{Error: &e})
		return
	}

	rules, err := models.HouseholdCategoryRules(models.DB, householdID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleListResponse{Error: &e})
		return
	}

	rules, pagination := page(rules, q)

	data := make([]CategoryRule, 0, len(rules))
	for _, rule := range rules {
		data = append(data, newCategoryRule(c, rule))
	}

	c.JSON(http.StatusOK, CategoryRuleListResponse{
		Data:       data,
		Pagination: &pagination,
	})
}

// @Summary		Get category rule
// @Description	Returns a specific category rule
// @Tags			Category Rules
// @Produce		json
// @Success		200	{object}	CategoryRuleResponse
// @Failure		400	{object}	httpError
// @Failure		401	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/category-rules/{id} [get]
func GetCategoryRule(c *gin.Context) {
	rule, ok := householdResource[models.CategoryRule](c)
	if !ok {
		return
	}

	data := newCategoryRule(c, rule)
	c.JSON(http.StatusOK, CategoryRuleResponse{Data: &data})
}

// @Summary		Update category rule
// @Description	Updates a category rule. Only values to be updated need to be specified.
// @Tags			Category Rules
// @Accept			json
// @Produce		json
// @Success		200		{object}	CategoryRuleResponse
// @Failure		400		{object}	CategoryRuleResponse
// @Failure		401		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	CategoryRuleResponse
// @Param			id		path		URIID					true	"ID formatted as string"
// @Param			rule	body		CategoryRuleEditable	true	"Category rule"
// @Router			/v1/category-rules/{id} [patch]
func UpdateCategoryRule(c *gin.Context) {
	rule, ok := householdResource[models.CategoryRule](c)
	if !ok {
		return
	}

	updateFields, err := httputil.GetBodyFields(c, CategoryRuleEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryRuleResponse{Error: &s})
		return
	}

	var data CategoryRuleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryRuleResponse{Error: &s})
		return
	}

	if slices.Contains(updateFields, "CategoryID") {
		err = checkCategory(rule.HouseholdID, &data.CategoryID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), CategoryRuleResponse{Error: &s})
			return
		}

		rule.CategoryID = data.CategoryID
	}

	if slices.Contains(updateFields, "Priority") {
		rule.Priority = data.Priority
	}

	if slices.Contains(updateFields, "Match") {
		rule.Match = data.Match
	}

	err = models.DB.Save(&rule).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryRuleResponse{Error: &s})
		return
	}

	d := newCategoryRule(c, rule)
	c.JSON(http.StatusOK, CategoryRuleResponse{Data: &d})
}

// @Summary		Delete category rule
// @Description	Deletes a category rule
// @Tags			Category Rules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		401	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/category-rules/{id} [delete]
func DeleteCategoryRule(c *gin.Context) {
	deleteResource[models.CategoryRule](c)
}
