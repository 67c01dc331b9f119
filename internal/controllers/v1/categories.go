package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

type CategoryEditable struct {
	Name  string `json:"name" example:"Groceries"` // Name of the category, unique for the household
	Icon  string `json:"icon" example:"🛒"`         // Emoji shown with the category
	Color string `json:"color" example:"#22c55e"`  // Color of the category
}

// model returns the database resource for the API representation of the editable fields
func (editable CategoryEditable) model(householdID uuid.UUID) models.Category {
	return models.Category{
		HouseholdID: &householdID,
		Name:        editable.Name,
		Icon:        editable.Icon,
		Color:       editable.Color,
	}
}

type CategoryLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/categories/8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"`                                   // The category itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?category=8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d&range=all-time"` // Transactions of the category
}

// Category is the representation of a Category in API v1.
type Category struct {
	models.Category
	Links CategoryLinks `json:"links"`
}

// newCategory returns the API v1 representation of the resource
func newCategory(c *gin.Context, model models.Category) Category {
	url := c.GetString(string(models.DBContextURL))

	return Category{
		Category: model,
		Links: CategoryLinks{
			Self:         fmt.Sprintf("%s/v1/categories/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/transactions?category=%s&range=all-time", url, model.ID),
		},
	}
}

type CategoryListResponse struct {
	Data       []Category  `json:"data"`                                                          // List of categories
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type CategoryCreateResponse struct {
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []CategoryResponse `json:"data"`                                                          // List of created Categories
}

func (r *CategoryCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, CategoryResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type CategoryResponse struct {
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this category
	Data  *Category `json:"data"`                                                          // Data for the category
}

type CategoryDeleteQuery struct {
	ReassignTo string `form:"reassignTo" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"` // Category the transactions of the deleted category are moved to
}

// RegisterCategoryRoutes registers the routes for categories with
// the RouterGroup that is passed.
func RegisterCategoryRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsCategoryList)
		r.OPTIONS("/:id", OptionsCategoryDetail)
	}

	authed := r.Group("", RequireUser, RequireHousehold)

	// Root group
	{
		authed.GET("", GetCategories)
		authed.POST("", CreateCategories)
	}

	// Category with ID
	{
		authed.GET("/:id", GetCategory)
		authed.PATCH("/:id", UpdateCategory)
		authed.DELETE("/:id", DeleteCategory)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Router			/v1/categories [options]
func OptionsCategoryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/categories/{id} [options]
func OptionsCategoryDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Category{})
}

// @Summary		Create categories
// @Description	Creates new categories for the household
// @Tags			Categories
// @Accept			json
// @Produce		json
// @Success		201			{object}	CategoryCreateResponse
// @Failure		400			{object}	CategoryCreateResponse
// @Failure		401			{object}	httpError
// @Failure		409			{object}	CategoryCreateResponse
// @Failure		500			{object}	CategoryCreateResponse
// @Param			categories	body		[]CategoryEditable	true	"Categories"
// @Router			/v1/categories [post]
func CreateCategories(c *gin.Context) {
	var editables []CategoryEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := CategoryCreateResponse{}

	for _, editable := range editables {
		category := editable.model(householdID(c))

		taken, err := models.CategoryNameTaken(models.DB, householdID(c), category.Name, uuid.Nil)
		if err == nil && taken {
			err = models.ErrCategoryNameNotUnique
		}
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = models.DB.Create(&category).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newCategory(c, category)
		r.Data = append(r.Data, CategoryResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get categories
// @Description	Returns the default categories and the categories of the household
// @Tags			Categories
// @Produce		json
// @Success		200		{object}	CategoryListResponse
// @Failure		400		{object}	CategoryListResponse
// @Failure		401		{object}	httpError
// @Failure		500		{object}	CategoryListResponse
// @Param			offset	query		uint	false	"The offset of the first Category returned. Defaults to 0."
// @Param			limit	query		int		false	"Maximum number of Categories to return. Defaults to 50."
// @Router			/v1/categories [get]
func GetCategories(c *gin.Context) {
	var q QueryPage
	err := c.ShouldBindQuery(&q)
	if err != nil {
		e := httputil.ErrInvalidQueryString.Error()
		c.JSON(http.StatusBadRequest, CategoryListResponse{Error: &e})
		return
	}

	categories, err := models.HouseholdCategories(models.DB, householdID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryListResponse{Error: &e})
		return
	}

	categories, pagination := page(categories, q)

	data := make([]Category, 0, len(categories))
	for _, category := range categories {
		data = append(data, newCategory(c, category))
	}

	c.JSON(http.StatusOK, CategoryListResponse{
		Data:       data,
		Pagination: &pagination,
	})
}

// visibleCategory returns the category with the ID from the URI if the
// household of the request can use it. Otherwise, the error response is
// sent and the boolean is false.
func visibleCategory(c *gin.Context) (models.Category, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return models.Category{}, false
	}

	var category models.Category
	err = models.DB.Where("id = ?", uri.ID.UUID).First(&category).Error
	if err == nil && !category.VisibleTo(householdID(c)) {
		err = notFound("category")
	}
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return models.Category{}, false
	}

	return category, true
}

// editableCategory is visibleCategory for categories the household may
// change. Default categories are forbidden.
func editableCategory(c *gin.Context) (models.Category, bool) {
	category, ok := visibleCategory(c)
	if !ok {
		return category, false
	}

	if !category.EditableBy(householdID(c)) {
		c.JSON(http.StatusForbidden, httpError{Error: models.ErrForbidden.Error()})
		return category, false
	}

	return category, true
}

// @Summary		Get category
// @Description	Returns a specific category
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	CategoryResponse
// @Failure		400	{object}	CategoryResponse
// @Failure		401	{object}	httpError
// @Failure		404	{object}	CategoryResponse
// @Failure		500	{object}	CategoryResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/categories/{id} [get]
func GetCategory(c *gin.Context) {
	category, ok := visibleCategory(c)
	if !ok {
		return
	}

	data := newCategory(c, category)
	c.JSON(http.StatusOK, CategoryResponse{Data: &data})
}

// @Summary		Update category
// @Description	Updates a category of the household. Only values to be updated need to be specified.
// @Tags			Categories
// @Accept			json
// @Produce		json
// @Success		200			{object}	CategoryResponse
// @Failure		400			{object}	CategoryResponse
// @Failure		401			{object}	httpError
// @Failure		403			{object}	CategoryResponse
// @Failure		404			{object}	CategoryResponse
// @Failure		409			{object}	CategoryResponse
// @Failure		500			{object}	CategoryResponse
// @Param			id			path		URIID				true	"ID formatted as string"
// @Param			category	body		CategoryEditable	true	"Category"
// @Router			/v1/categories/{id} [patch]
func UpdateCategory(c *gin.Context) {
	category, ok := editableCategory(c)
	if !ok {
		return
	}

	updateFields, err := httputil.GetBodyFields(c, CategoryEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	var data CategoryEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	if slices.Contains(updateFields, "Name") {
		taken, err := models.CategoryNameTaken(models.DB, householdID(c), data.Name, category.ID)
		if err == nil && taken {
			err = models.ErrCategoryNameNotUnique
		}
		if err != nil {
			s := err.Error()
			c.JSON(status(err), CategoryResponse{Error: &s})
			return
		}

		category.Name = data.Name
	}

	if slices.Contains(updateFields, "Icon") {
		category.Icon = data.Icon
	}

	if slices.Contains(updateFields, "Color") {
		category.Color = data.Color
	}

	err = models.DB.Save(&category).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	d := newCategory(c, category)
	c.JSON(http.StatusOK, CategoryResponse{Data: &d})
}

// @Summary		Delete category
// @Description	Deletes a category of the household with its rules and budget. Its transactions are moved to the category given in reassignTo or are uncategorized.
// @Tags			Categories
// @Success		204
// @Failure		400			{object}	httpError
// @Failure		401			{object}	httpError
// @Failure		403			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		500			{object}	httpError
// @Param			id			path		URIID	true	"ID formatted as string"
// @Param			reassignTo	query		string	false	"ID of the category the transactions are moved to"
// @Router			/v1/categories/{id} [delete]
func DeleteCategory(c *gin.Context) {
	category, ok := editableCategory(c)
	if !ok {
		return
	}

	var q CategoryDeleteQuery
	_ = c.ShouldBindQuery(&q)

	reassignTo, err := httputil.UUIDFromString(q.ReassignTo)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var target *uuid.UUID
	if reassignTo != uuid.Nil {
		if reassignTo == category.ID {
			c.JSON(http.StatusBadRequest, httpError{Error: errReassignToSelf.Error()})
			return
		}

		err = checkCategory(householdID(c), &reassignTo)
		if err != nil {
			c.JSON(status(err), httpError{Error: err.Error()})
			return
		}

		target = &reassignTo
	}

	err = models.DeleteCategory(models.DB, category, target)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// checkCategory returns an error if the category cannot be used by the
// household. A nil ID is valid.
func checkCategory(householdID uuid.UUID, id *uuid.UUID) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}

	var category models.Category
	err := models.DB.Where("id = ?", *id).First(&category).Error
	if errors.Is(err, models.ErrResourceNotFound) || (err == nil && !category.VisibleTo(householdID)) {
		return errCategoryNotVisible
	}

	return err
}
