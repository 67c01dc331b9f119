package v1

import (
	"net/http"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type HouseholdCreate struct {
	Name string `json:"name" example:"The Does"` // Name of the household, at least 2 characters
}

type HouseholdEditable struct {
	Name           string `json:"name" example:"The Does"`       // Name of the household, at least 2 characters
	ShowSettlement bool   `json:"showSettlement" example:"true"` // Show the settlement of joint expenses on the dashboard
}

type HouseholdJoin struct {
	InviteCode string `json:"inviteCode" example:"JOIN-7KX2QM"` // Invite code shared by the partner
}

// Member is a member of a household as shown to the other members.
type Member struct {
	ID            uuid.UUID `json:"id" example:"0b3a7e4c-1f6d-4e5a-9c8b-2d7f6a5e4b31"`
	FullName      string    `json:"fullName" example:"Alex Doe"`
	Email         string    `json:"email" example:"alex@example.com"`
	DisplayName   string    `json:"displayName" example:"Alex"`   // Name shown to the partner
	IsCurrentUser bool      `json:"isCurrentUser" example:"true"` // Is this the user of the request?
}

// Household is the representation of a household in API v1.
type Household struct {
	models.Household
	Members     []Member `json:"members"`                   // Members of the household, ordered by the time they joined
	PartnerName *string  `json:"partnerName" example:"Sam"` // Display name of the partner, null without a partner
}

type HouseholdResponse struct {
	Data  *Household `json:"data"`                                                          // Data for the household
	Error *string    `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// Invite is the household an invite code belongs to.
type Invite struct {
	HouseholdID uuid.UUID `json:"householdId" example:"f6a1b5e7-0c2e-4a8b-8e3c-5a9d2b1c7e44"`
	Name        string    `json:"name" example:"The Does"`
	MemberCount int       `json:"memberCount" example:"1"`
	IsFull      bool      `json:"isFull" example:"false"` // A full household cannot be joined
}

type InviteResponse struct {
	Data  *Invite `json:"data"`                                         // Data for the invite
	Error *string `json:"error" example:"the invite code is not valid"` // The error, if any occurred
}

type URICode struct {
	Code string `uri:"code" binding:"required" example:"JOIN-7KX2QM"` // Invite code
}

// newHousehold returns the API v1 representation of the household as seen
// by the user.
func newHousehold(db *gorm.DB, household models.Household, user models.User) (Household, error) {
	members, err := household.Members(db)
	if err != nil {
		return Household{}, err
	}

	h := Household{
		Household: household,
		Members:   make([]Member, 0, len(members)),
	}

	for _, m := range members {
		h.Members = append(h.Members, Member{
			ID:            m.ID,
			FullName:      m.FullName,
			Email:         m.Email,
			DisplayName:   m.DisplayName(),
			IsCurrentUser: m.ID == user.ID,
		})

		if m.ID != user.ID {
			name := m.DisplayName()
			h.PartnerName = &name
		}
	}

	return h, nil
}

// RegisterHouseholdRoutes registers the routes for households with
// the RouterGroup that is passed.
func RegisterHouseholdRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsHouseholdList)
		r.OPTIONS("/current", OptionsHouseholdCurrent)
		r.OPTIONS("/invites/:code", OptionsHouseholdInvite)
		r.OPTIONS("/join", OptionsHouseholdJoin)
	}

	authed := r.Group("", RequireUser)
	{
		authed.POST("", CreateHousehold)
		authed.GET("/invites/:code", GetHouseholdInvite)
		authed.POST("/join", JoinHousehold)
	}

	member := authed.Group("", RequireHousehold)
	{
		member.GET("/current", GetHousehold)
		member.PATCH("/current", UpdateHousehold)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Households
// @Success		204
// @Router			/v1/households [options]
func OptionsHouseholdList(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Households
// @Success		204
// @Router			/v1/households/current [options]
func OptionsHouseholdCurrent(c *gin.Context) {
	httputil.OptionsGetPatch(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Households
// @Success		204
// @Param			code	path	string	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/households/invites/{code} [options]
func OptionsHouseholdInvite(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Households
// @Success		204
// @Router			/v1/households/join [options]
func OptionsHouseholdJoin(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create household
// @Description	Creates a new household with the user of the request as its first member
// @Tags			Households
// @Accept			json
// @Produce		json
// @Success		201			{object}	HouseholdResponse
// @Failure		400			{object}	HouseholdResponse
// @Failure		401			{object}	httpError
// @Failure		409			{object}	HouseholdResponse
// @Failure		500			{object}	HouseholdResponse
// @Param			household	body		HouseholdCreate	true	"Household"
// @Router			/v1/households [post]
func CreateHousehold(c *gin.Context) {
	user := currentUser(c)

	var data HouseholdCreate
	err := httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	household, err := models.CreateHousehold(models.DB, &user, data.Name)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	respondHousehold(c, http.StatusCreated, household, user)
}

// @Summary		Get household
// @Description	Returns the household of the user of the request with its members
// @Tags			Households
// @Produce		json
// @Success		200	{object}	HouseholdResponse
// @Failure		400	{object}	httpError
// @Failure		401	{object}	httpError
// @Failure		500	{object}	HouseholdResponse
// @Router			/v1/households/current [get]
func GetHousehold(c *gin.Context) {
	var household models.Household
	err := models.DB.Where("id = ?", householdID(c)).First(&household).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	respondHousehold(c, http.StatusOK, household, currentUser(c))
}

// @Summary		Update household
// @Description	Updates the household of the user of the request. Only values to be updated need to be specified.
// @Tags			Households
// @Accept			json
// @Produce		json
// @Success		200			{object}	HouseholdResponse
// @Failure		400			{object}	HouseholdResponse
// @Failure		401			{object}	httpError
// @Failure		500			{object}	HouseholdResponse
// @Param			household	body		HouseholdEditable	true	"Household"
// @Router			/v1/households/current [patch]
func UpdateHousehold(c *gin.Context) {
	var household models.Household
	err := models.DB.Where("id = ?", householdID(c)).First(&household).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, HouseholdEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	var data HouseholdEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	if slices.Contains(updateFields, "Name") {
		household.Name = data.Name
	}

	if slices.Contains(updateFields, "ShowSettlement") {
		household.ShowSettlement = data.ShowSettlement
	}

	err = models.DB.Save(&household).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	respondHousehold(c, http.StatusOK, household, currentUser(c))
}

// @Summary		Validate invite code
// @Description	Returns the household an invite code belongs to
// @Tags			Households
// @Produce		json
// @Success		200		{object}	InviteResponse
// @Failure		401		{object}	httpError
// @Failure		404		{object}	InviteResponse
// @Failure		500		{object}	InviteResponse
// @Param			code	path		string	true	"Invite code"
// @Router			/v1/households/invites/{code} [get]
func GetHouseholdInvite(c *gin.Context) {
	var uri URICode
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InviteResponse{Error: &e})
		return
	}

	household, err := models.HouseholdByInviteCode(models.DB, uri.Code)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InviteResponse{Error: &e})
		return
	}

	members, err := household.Members(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InviteResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, InviteResponse{Data: &Invite{
		HouseholdID: household.ID,
		Name:        household.Name,
		MemberCount: len(members),
		IsFull:      len(members) >= models.MaxMembers,
	}})
}

// @Summary		Join household
// @Description	Adds the user of the request to the household of the invite code
// @Tags			Households
// @Accept			json
// @Produce		json
// @Success		200		{object}	HouseholdResponse
// @Failure		400		{object}	HouseholdResponse
// @Failure		401		{object}	httpError
// @Failure		404		{object}	HouseholdResponse
// @Failure		409		{object}	HouseholdResponse
// @Failure		500		{object}	HouseholdResponse
// @Param			invite	body		HouseholdJoin	true	"Invite"
// @Router			/v1/households/join [post]
func JoinHousehold(c *gin.Context) {
	user := currentUser(c)

	var data HouseholdJoin
	err := httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	household, err := models.JoinHousehold(models.DB, &user, data.InviteCode)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	respondHousehold(c, http.StatusOK, household, user)
}

func respondHousehold(c *gin.Context, code int, household models.Household, user models.User) {
	data, err := newHousehold(models.DB, household, user)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), HouseholdResponse{Error: &e})
		return
	}

	c.JSON(code, HouseholdResponse{Data: &data})
}
