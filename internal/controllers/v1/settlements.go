package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/settlement"
	"github.com/duo-finance/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// historyLimit is the number of settled months returned by the history.
const historyLimit = 12

// SettlementSummary is the settlement of one month as seen by the user of
// the request.
type SettlementSummary struct {
	Month               types.Month     `json:"month" swaggertype:"string" example:"2024-05"`
	JointTotal          decimal.Decimal `json:"jointTotal" swaggertype:"string" example:"150"`            // Sum of all joint expenses
	FairShare           decimal.Decimal `json:"fairShare" swaggertype:"string" example:"75"`              // Half of the joint total
	MyContribution      decimal.Decimal `json:"myContribution" swaggertype:"string" example:"100"`        // Joint expenses paid by the user
	PartnerContribution decimal.Decimal `json:"partnerContribution" swaggertype:"string" example:"50"`    // Joint expenses paid by the partner
	MyShare             decimal.Decimal `json:"myShare" swaggertype:"string" example:"66.67"`             // Contribution of the user in percent of the joint total
	PartnerShare        decimal.Decimal `json:"partnerShare" swaggertype:"string" example:"33.33"`        // Contribution of the partner in percent of the joint total
	Balance             decimal.Decimal `json:"balance" swaggertype:"string" example:"25"`                // Positive when the partner owes the user, negative when the user owes the partner
	Owed                decimal.Decimal `json:"owed" swaggertype:"string" example:"25"`                   // Amount to transfer, zero when squared up
	PartnerID           *uuid.UUID      `json:"partnerId" example:"0b3a7e4c-1f6d-4e5a-9c8b-2d7f6a5e4b31"` // Empty without partner
	PartnerName         string          `json:"partnerName" example:"Alex"`                               // Display name of the partner
	HasPartner          bool            `json:"hasPartner" example:"true"`                                // Whether the household has a second member
	SquaredUp           bool            `json:"squaredUp" example:"false"`                                // Whether the balance is below one cent
	IsSettled           bool            `json:"isSettled" example:"false"`                                // Whether the month has been marked as settled
	CanSettle           bool            `json:"canSettle" example:"true"`                                 // Whether the month can be marked as settled now
	SettledAt           *time.Time      `json:"settledAt" example:"2024-06-02T08:15:00Z"`                 // Time the month was marked as settled
	SettledBy           *uuid.UUID      `json:"settledBy" example:"0b3a7e4c-1f6d-4e5a-9c8b-2d7f6a5e4b31"` // User who marked the month as settled
}

type SettlementResponse struct {
	Error *string            `json:"error" example:"settling requires two household members"` // The error, if any occurred
	Data  *SettlementSummary `json:"data"`                                                    // The settlement summary
}

type SettlementListResponse struct {
	Error *string             `json:"error" example:"the query string contains unparseable data. Please check the values"` // The error, if any occurred
	Data  []SettlementSummary `json:"data"`                                                                                // Settled months, newest first
}

// SettlementCreate selects the month to settle.
type SettlementCreate struct {
	Month types.Month `json:"month" swaggertype:"string" example:"2024-05"` // The month to settle. Defaults to the current month.
}

// RegisterSettlementRoutes registers the routes for settlements with
// the RouterGroup that is passed.
func RegisterSettlementRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsSettlementList)
		r.OPTIONS("/current", OptionsSettlementMonth)
		r.OPTIONS("/history", OptionsSettlementMonth)
		r.OPTIONS("/:month", OptionsSettlementMonth)
	}

	authed := r.Group("", RequireUser, RequireHousehold)
	{
		authed.POST("", CreateSettlement)
		authed.GET("/current", GetCurrentSettlement)
		authed.GET("/history", GetSettlementHistory)
		authed.GET("/:month", GetSettlement)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Settlements
// @Success		204
// @Router			/v1/settlements [options]
func OptionsSettlementList(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Settlements
// @Success		204
// @Param			month	path	string	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/settlements/current [options]
// @Router			/v1/settlements/history [options]
// @Router			/v1/settlements/{month} [options]
func OptionsSettlementMonth(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Settle month
// @Description	Marks the month as settled. The joint spending of the month is frozen at its current state.
// @Tags			Settlements
// @Accept			json
// @Produce		json
// @Success		201			{object}	SettlementResponse
// @Failure		400			{object}	SettlementResponse
// @Failure		401			{object}	httpError
// @Failure		500			{object}	SettlementResponse
// @Param			settlement	body		SettlementCreate	false	"Month to settle"
// @Router			/v1/settlements [post]
func CreateSettlement(c *gin.Context) {
	var data SettlementCreate
	err := httputil.BindData(c, &data)
	if err != nil && !errors.Is(err, httputil.ErrRequestBodyEmpty) {
		s := err.Error()
		c.JSON(status(err), SettlementResponse{Error: &s})
		return
	}

	month := data.Month
	if month.IsZero() {
		month = types.MonthOf(now())
	}

	user := currentUser(c)
	summary, err := settle(models.DB, user, month)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettlementResponse{Error: &s})
		return
	}

	c.JSON(http.StatusCreated, SettlementResponse{Data: &summary})
}

// @Summary		Get current settlement
// @Description	Returns the settlement of the current month. Settled months show the frozen values.
// @Tags			Settlements
// @Produce		json
// @Success		200	{object}	SettlementResponse
// @Failure		401	{object}	httpError
// @Failure		500	{object}	SettlementResponse
// @Router			/v1/settlements/current [get]
func GetCurrentSettlement(c *gin.Context) {
	respondSettlement(c, types.MonthOf(now()))
}

// @Summary		Get settlement
// @Description	Returns the settlement of a month. Settled months show the frozen values.
// @Tags			Settlements
// @Produce		json
// @Success		200		{object}	SettlementResponse
// @Failure		400		{object}	SettlementResponse
// @Failure		401		{object}	httpError
// @Failure		500		{object}	SettlementResponse
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/settlements/{month} [get]
func GetSettlement(c *gin.Context) {
	var uri URIMonth
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, SettlementResponse{Error: &s})
		return
	}

	respondSettlement(c, uri.Month)
}

// @Summary		Get settlement history
// @Description	Returns the 12 most recent settled months before the current month
// @Tags			Settlements
// @Produce		json
// @Success		200	{object}	SettlementListResponse
// @Failure		401	{object}	httpError
// @Failure		500	{object}	SettlementListResponse
// @Router			/v1/settlements/history [get]
func GetSettlementHistory(c *gin.Context) {
	user := currentUser(c)

	partner, hasPartner, err := models.Partner(models.DB, user)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettlementListResponse{Error: &s})
		return
	}

	settlements, err := models.SettlementHistory(models.DB, householdID(c), types.MonthOf(now()), historyLimit)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettlementListResponse{Error: &s})
		return
	}

	data := make([]SettlementSummary, 0, len(settlements))
	for _, stored := range settlements {
		r, err := stored.Snapshot().Result()
		if err != nil {
			s := err.Error()
			c.JSON(status(err), SettlementListResponse{Error: &s})
			return
		}

		summary := newSettlementSummary(stored.Month, r.For(user.ID), partner, hasPartner)
		summary.markSettled(stored)
		data = append(data, summary)
	}

	c.JSON(http.StatusOK, SettlementListResponse{Data: data})
}

func respondSettlement(c *gin.Context, month types.Month) {
	summary, err := summarize(models.DB, currentUser(c), month)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettlementResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, SettlementResponse{Data: &summary})
}

// summarize returns the settlement of the month for the user. Settled
// months use the frozen snapshot, all others the current joint expenses.
func summarize(db *gorm.DB, user models.User, month types.Month) (SettlementSummary, error) {
	partner, hasPartner, err := models.Partner(db, user)
	if err != nil {
		return SettlementSummary{}, err
	}

	stored, found, err := models.FindSettlement(db, *user.HouseholdID, month)
	if err != nil {
		return SettlementSummary{}, err
	}

	if found && stored.IsSettled() {
		r, err := stored.Snapshot().Result()
		if err != nil {
			return SettlementSummary{}, err
		}

		summary := newSettlementSummary(month, r.For(user.ID), partner, hasPartner)
		summary.markSettled(stored)
		return summary, nil
	}

	r, err := live(db, user, partner, month)
	if err != nil {
		return SettlementSummary{}, err
	}

	return newSettlementSummary(month, r, partner, hasPartner), nil
}

// live computes the settlement from the joint expenses of the month. A
// household without partner has all expenses attributed to the user.
func live(db *gorm.DB, user, partner models.User, month types.Month) (settlement.Result, error) {
	expenses, err := models.JointExpenses(db, *user.HouseholdID, month)
	if err != nil {
		return settlement.Result{}, err
	}

	if partner.ID == uuid.Nil {
		total := decimal.Zero
		for _, e := range expenses {
			total = total.Add(e.Amount)
		}

		return settlement.Result{
			UserA:         user.ID,
			JointTotal:    total,
			ContributionA: total,
			ContributionB: decimal.Zero,
			FairShare:     total.Div(decimal.NewFromInt(2)),
			Balance:       decimal.Zero,
		}, nil
	}

	return settlement.Calculate(expenses, user.ID, partner.ID)
}

// settle freezes the joint spending of the month for the household of the user.
func settle(db *gorm.DB, user models.User, month types.Month) (SettlementSummary, error) {
	partner, hasPartner, err := models.Partner(db, user)
	if err != nil {
		return SettlementSummary{}, err
	}

	if !hasPartner {
		return SettlementSummary{}, settlement.ErrMemberMissing
	}

	r, err := live(db, user, partner, month)
	if err != nil {
		return SettlementSummary{}, err
	}

	stored, err := models.Settle(db, *user.HouseholdID, user.ID, settlement.SnapshotOf(month, r), now())
	if err != nil {
		return SettlementSummary{}, err
	}

	summary := newSettlementSummary(month, r, partner, true)
	summary.markSettled(stored)
	return summary, nil
}

// newSettlementSummary returns the summary for a result seen from the user.
func newSettlementSummary(month types.Month, r settlement.Result, partner models.User, hasPartner bool) SettlementSummary {
	myShare, partnerShare := r.Shares()

	summary := SettlementSummary{
		Month:               month,
		JointTotal:          r.JointTotal,
		FairShare:           r.FairShare,
		MyContribution:      r.ContributionA,
		PartnerContribution: r.ContributionB,
		MyShare:             myShare,
		PartnerShare:        partnerShare,
		Balance:             r.Balance,
		Owed:                r.Owed(),
		PartnerName:         "Partner",
		HasPartner:          hasPartner,
		SquaredUp:           r.SquaredUp(),
	}

	if hasPartner {
		summary.PartnerID = &partner.ID
		summary.PartnerName = partner.DisplayName()
	}

	summary.CanSettle = hasPartner && !summary.SquaredUp
	return summary
}

func (s *SettlementSummary) markSettled(stored models.Settlement) {
	s.IsSettled = stored.IsSettled()
	s.SettledAt = stored.SettledAt
	s.SettledBy = stored.SettledBy
	s.CanSettle = s.CanSettle && !s.IsSettled
}
