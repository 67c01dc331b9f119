package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/duo-finance/backend/internal/categorize"
	"github.com/duo-finance/backend/internal/events"
	"github.com/duo-finance/backend/internal/export"
	"github.com/duo-finance/backend/internal/filter"
	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// TransactionCreate are the fields of a new transaction. New transactions
// are always personal and entered manually.
type TransactionCreate struct {
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"14.03"`               // The amount, must be positive
	Date         types.Date      `json:"date" swaggertype:"string" example:"2024-05-13"`            // Date of the transaction in YYYY-MM-DD format
	MerchantName string          `json:"merchantName" example:"Whole Foods"`                        // Name of the merchant
	Description  string          `json:"description" example:"Groceries for the week"`              // Defaults to the merchant name
	CategoryID   *uuid.UUID      `json:"categoryId" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"` // ID of the category
}

// model returns the database resource for the API representation of the editable fields
func (editable TransactionCreate) model(householdID, userID uuid.UUID) models.Transaction {
	return models.Transaction{
		HouseholdID:  householdID,
		UserID:       userID,
		Amount:       editable.Amount,
		Date:         editable.Date,
		MerchantName: editable.MerchantName,
		Description:  editable.Description,
		CategoryID:   editable.CategoryID,
		Source:       models.SourceManual,
	}
}

// TransactionEditable are the fields of a transaction that can be updated.
type TransactionEditable struct {
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"14.03"`
	Date         types.Date      `json:"date" swaggertype:"string" example:"2024-05-13"`
	MerchantName string          `json:"merchantName" example:"Whole Foods"`
	Description  string          `json:"description" example:"Groceries for the week"`
	CategoryID   *uuid.UUID      `json:"categoryId" example:"8e0fda3c-6f0b-47b4-8b58-6d1a8b1a1a2d"`
	IsJoint      bool            `json:"isJoint" example:"true"`
	IsHidden     bool            `json:"isHidden" example:"false"`
}

type TransactionLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/transactions/3b1ea324-d438-4419-882a-2fc91d71772f"`                     // The transaction itself
	ToggleJoint string `json:"toggleJoint" example:"https://example.com/api/v1/transactions/3b1ea324-d438-4419-882a-2fc91d71772f/toggle-joint"` // Marks the transaction as joint or personal
}

// Transaction is the representation of a Transaction in API v1.
type Transaction struct {
	models.Transaction
	Links TransactionLinks `json:"links"`
}

// newTransaction returns the API v1 representation of the resource
func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))
	self := fmt.Sprintf("%s/v1/transactions/%s", url, model.ID)

	return Transaction{
		Transaction: model,
		Links: TransactionLinks{
			Self:        self,
			ToggleJoint: fmt.Sprintf("%s/toggle-joint", self),
		},
	}
}

// FilterInfo describes the filter a transaction list was selected with.
type FilterInfo struct {
	Label  string     `json:"label" example:"This Month"`                      // Name of the date range
	Active bool       `json:"active" example:"true"`                           // If anything but the default filter is set
	Query  string     `json:"query" example:"range=last-month"`                // Query string that selects the same transactions
	From   types.Date `json:"from" swaggertype:"string" example:"2024-05-01"`  // First day of the date range, empty for open ranges
	Until  types.Date `json:"until" swaggertype:"string" example:"2024-05-31"` // Last day of the date range, empty for open ranges
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
	Filter     *FilterInfo   `json:"filter"`                                                        // The filter that was applied
}

type TransactionCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []TransactionResponse `json:"data"`                                                          // List of created transactions
}

func (r *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, TransactionResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TransactionResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this transaction
	Data  *Transaction `json:"data"`                                                          // Data for the transaction
}

// TransactionToggle sets whether a transaction is shared.
type TransactionToggle struct {
	IsJoint *bool `json:"isJoint" example:"true"` // Whether the transaction is a joint expense
}

// CategorizeRequest selects the transactions to categorize.
type CategorizeRequest struct {
	TransactionIDs []uuid.UUID `json:"transactionIds"` // Transactions to categorize. Without IDs, the uncategorized transactions are used.
}

type CategorizeResponse struct {
	Error *string             `json:"error" example:"at most 50 transactions can be categorized at once"` // The error, if any occurred
	Data  *categorize.Summary `json:"data"`                                                               // Result of the categorization
}

// ExportQuery selects the transactions to export.
type ExportQuery struct {
	Start string `form:"start" example:"2024-05-01"` // First day to export
	End   string `form:"end" example:"2024-05-31"`   // Last day to export
	Type  string `form:"type" example:"joint"`       // One of all, personal, joint
}

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsTransactionList)
		r.OPTIONS("/categorize", OptionsTransactionCategorize)
		r.OPTIONS("/export", OptionsTransactionExport)
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.OPTIONS("/:id/toggle-joint", OptionsTransactionToggleJoint)
	}

	authed := r.Group("", RequireUser, RequireHousehold)

	// Root group
	{
		authed.GET("", GetTransactions)
		authed.POST("", CreateTransactions)
		authed.POST("/categorize", CategorizeTransactions)
		authed.GET("/export", ExportTransactions)
	}

	// Transaction with ID
	{
		authed.GET("/:id", GetTransaction)
		authed.PATCH("/:id", UpdateTransaction)
		authed.DELETE("/:id", DeleteTransaction)
		authed.POST("/:id/toggle-joint", ToggleJoint)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/categorize [options]
func OptionsTransactionCategorize(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/export [options]
func OptionsTransactionExport(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Transaction{})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Param			id	path	URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id}/toggle-joint [options]
func OptionsTransactionToggleJoint(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create transactions
// @Description	Creates personal transactions for the current user. The partner is notified and the budgets are checked.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201				{object}	TransactionCreateResponse
// @Failure		400				{object}	TransactionCreateResponse
// @Failure		401				{object}	httpError
// @Failure		500				{object}	TransactionCreateResponse
// @Param			transactions	body		[]TransactionCreate	true	"Transactions"
// @Router			/v1/transactions [post]
func CreateTransactions(c *gin.Context) {
	var editables []TransactionCreate

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionCreateResponse{
			Error: &e,
		})
		return
	}

	user := currentUser(c)

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := TransactionCreateResponse{}

	for _, editable := range editables {
		transaction := editable.model(householdID(c), user.ID)

		err = checkCategory(transaction.HouseholdID, transaction.CategoryID)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = models.DB.Create(&transaction).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		services.Dispatcher.TransactionCreated(c.Request.Context(), user, transaction)

		data := newTransaction(c, transaction)
		r.Data = append(r.Data, TransactionResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get transactions
// @Description	Returns the visible transactions of the household matching the filter, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200			{object}	TransactionListResponse
// @Failure		400			{object}	TransactionListResponse
// @Failure		401			{object}	httpError
// @Failure		500			{object}	TransactionListResponse
// @Param			q			query		string	false	"Search text, matched against merchant and description"
// @Param			range		query		string	false	"One of this-month, last-month, last-3-months, last-6-months, this-year, custom, all-time"
// @Param			from		query		string	false	"First day of a custom range"
// @Param			to			query		string	false	"Last day of a custom range"
// @Param			category	query		string	false	"Filter by category ID"
// @Param			type		query		string	false	"One of all, personal, joint"
// @Param			min			query		string	false	"Minimum amount"
// @Param			max			query		string	false	"Maximum amount"
// @Param			offset		query		uint	false	"The offset of the first transaction returned. Defaults to 0."
// @Param			limit		query		int		false	"Maximum number of transactions to return. Defaults to 50."
// @Router			/v1/transactions [get]
func GetTransactions(c *gin.Context) {
	var q QueryPage
	err := c.ShouldBindQuery(&q)
	if err != nil {
		e := httputil.ErrInvalidQueryString.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{Error: &e})
		return
	}

	state, err := filter.ParseQuery(c.Request.URL.Query())
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{Error: &e})
		return
	}

	t := now()
	from, until := state.Bounds(t)

	transactions, err := models.HouseholdTransactions(models.DB, householdID(c), from, until)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &e})
		return
	}

	matching := make([]models.Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		if state.Matches(transaction.FilterTransaction(), t) {
			matching = append(matching, transaction)
		}
	}

	matching, pagination := page(matching, q)

	data := make([]Transaction, 0, len(matching))
	for _, transaction := range matching {
		data = append(data, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data:       data,
		Pagination: &pagination,
		Filter: &FilterInfo{
			Label:  state.Label(),
			Active: state.HasActiveFilters(),
			Query:  state.Encode().Encode(),
			From:   from,
			Until:  until,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	httpError
// @Failure		401	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [get]
func GetTransaction(c *gin.Context) {
	transaction, ok := householdResource[models.Transaction](c)
	if !ok {
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Update transaction
// @Description	Updates a transaction. Only values to be updated need to be specified.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		401			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		500			{object}	TransactionResponse
// @Param			id			path		URIID				true	"ID formatted as string"
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions/{id} [patch]
func UpdateTransaction(c *gin.Context) {
	transaction, ok := householdResource[models.Transaction](c)
	if !ok {
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TransactionEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &s})
		return
	}

	var data TransactionEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &s})
		return
	}

	if slices.Contains(updateFields, "CategoryID") {
		err = checkCategory(transaction.HouseholdID, data.CategoryID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransactionResponse{Error: &s})
			return
		}

		transaction.CategoryID = data.CategoryID
	}

	if slices.Contains(updateFields, "Amount") {
		transaction.Amount = data.Amount
	}

	if slices.Contains(updateFields, "Date") {
		transaction.Date = data.Date
	}

	if slices.Contains(updateFields, "MerchantName") {
		transaction.MerchantName = data.MerchantName
	}

	if slices.Contains(updateFields, "Description") {
		transaction.Description = data.Description
	}

	if slices.Contains(updateFields, "IsHidden") {
		transaction.IsHidden = data.IsHidden
	}

	toggled := slices.Contains(updateFields, "IsJoint") && data.IsJoint != transaction.IsJoint
	if toggled {
		transaction.IsJoint = data.IsJoint
	}

	err = models.DB.Save(&transaction).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &s})
		return
	}

	if toggled {
		services.Dispatcher.TransactionToggled(c.Request.Context(), currentUser(c), transaction)
	} else {
		services.Dispatcher.SpendingChanged(c.Request.Context(), transaction.HouseholdID, events.ReasonTransactionUpdated)
	}

	d := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &d})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		401	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [delete]
func DeleteTransaction(c *gin.Context) {
	transaction, ok := deleteResource[models.Transaction](c)
	if !ok {
		return
	}

	services.Dispatcher.SpendingChanged(c.Request.Context(), transaction.HouseholdID, events.ReasonTransactionDeleted)
}

// @Summary		Mark as joint or personal
// @Description	Marks a transaction as joint or personal expense. The partner is notified and the budgets are checked.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200		{object}	TransactionResponse
// @Failure		400		{object}	TransactionResponse
// @Failure		401		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	TransactionResponse
// @Param			id		path		URIID				true	"ID formatted as string"
// @Param			toggle	body		TransactionToggle	true	"New value"
// @Router			/v1/transactions/{id}/toggle-joint [post]
func ToggleJoint(c *gin.Context) {
	transaction, ok := householdResource[models.Transaction](c)
	if !ok {
		return
	}

	var data TransactionToggle
	err := httputil.BindData(c, &data)
	if err == nil && data.IsJoint == nil {
		err = errIsJointMissing
	}
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &s})
		return
	}

	transaction.IsJoint = *data.IsJoint
	err = models.DB.Model(&transaction).UpdateColumn("is_joint", transaction.IsJoint).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &s})
		return
	}

	services.Dispatcher.TransactionToggled(c.Request.Context(), currentUser(c), transaction)

	d := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &d})
}

// @Summary		Categorize transactions
// @Description	Assigns categories with the category rules of the household, then with the AI if it is configured.
// @Description	Without transaction IDs, up to 50 uncategorized transactions are categorized.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200		{object}	CategorizeResponse
// @Failure		400		{object}	CategorizeResponse
// @Failure		401		{object}	httpError
// @Failure		500		{object}	CategorizeResponse
// @Param			request	body		CategorizeRequest	false	"Transactions to categorize"
// @Router			/v1/transactions/categorize [post]
func CategorizeTransactions(c *gin.Context) {
	var data CategorizeRequest
	err := httputil.BindData(c, &data)
	if err != nil && !errors.Is(err, httputil.ErrRequestBodyEmpty) {
		s := err.Error()
		c.JSON(status(err), CategorizeResponse{Error: &s})
		return
	}

	if len(data.TransactionIDs) > categorize.BatchLimit {
		s := errCategorizeTooMany.Error()
		c.JSON(status(errCategorizeTooMany), CategorizeResponse{Error: &s})
		return
	}

	service := categorizer()
	summary, err := service.Categorize(c.Request.Context(), householdID(c), data.TransactionIDs)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategorizeResponse{Error: &s})
		return
	}

	if summary.Categorized > 0 {
		services.Dispatcher.SpendingChanged(c.Request.Context(), householdID(c), events.ReasonTransactionUpdated)
	}

	c.JSON(http.StatusOK, CategorizeResponse{Data: &summary})
}

// @Summary		Export transactions
// @Description	Returns the visible transactions of the household in the date range as CSV file, newest first
// @Tags			Transactions
// @Produce		text/csv
// @Success		200		{string}	string
// @Failure		400		{object}	httpError
// @Failure		401		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			start	query		string	true	"First day to export, YYYY-MM-DD"
// @Param			end		query		string	true	"Last day to export, YYYY-MM-DD"
// @Param			type	query		string	false	"One of all, personal, joint"
// @Router			/v1/transactions/export [get]
func ExportTransactions(c *gin.Context) {
	state, err := exportFilter(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	hid := householdID(c)
	transactions, err := models.HouseholdTransactions(models.DB.Preload("Category"), hid, state.StartDate, state.EndDate)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	members, err := models.Household{DefaultModel: models.DefaultModel{ID: hid}}.Members(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	names := make(map[uuid.UUID]string, len(members))
	for _, m := range members {
		names[m.ID] = m.FullName
	}

	rows := make([]export.Row, 0, len(transactions))
	for _, t := range transactions {
		if !state.Matches(t.FilterTransaction(), now()) {
			continue
		}

		row := export.Row{
			Date:     t.Date,
			Merchant: t.MerchantName,
			Amount:   t.Amount,
			IsJoint:  t.IsJoint,
			AddedBy:  names[t.UserID],
			Notes:    t.Description,
		}

		if t.Category != nil {
			row.Category = t.Category.Name
		}

		rows = append(rows, row)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(state.Type, state.StartDate, state.EndDate)))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	err = export.Write(c.Writer, rows)
	if err != nil {
		_ = c.Error(err)
	}
}

// exportFilter returns the filter for the export query of the request.
func exportFilter(c *gin.Context) (filter.State, error) {
	var q ExportQuery
	err := c.ShouldBindQuery(&q)
	if err != nil {
		return filter.State{}, httputil.ErrInvalidQueryString
	}

	if q.Start == "" || q.End == "" {
		return filter.State{}, errExportRangeMissing
	}

	state := filter.State{
		Range: filter.RangeCustom,
		Type:  filter.Type(q.Type),
	}

	if state.StartDate, err = types.ParseDate(q.Start); err != nil {
		return filter.State{}, err
	}

	if state.EndDate, err = types.ParseDate(q.End); err != nil {
		return filter.State{}, err
	}

	if state.StartDate > state.EndDate {
		return filter.State{}, errExportRangeOrder
	}

	return state, state.Validate()
}
