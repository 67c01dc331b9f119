package v1_test

import (
	"fmt"
	"net/http"
	"strings"

	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/test"
)

func (suite *TestSuiteStandard) TestHouseholdsCreate() {
	alex := createTestUser(suite.T(), "Alex Doe")
	household := createTestHousehold(suite.T(), alex)

	suite.Assert().Equal("The Testers", household.Data.Name)
	suite.Assert().True(strings.HasPrefix(household.Data.InviteCode, "JOIN-"), household.Data.InviteCode)
	suite.Assert().Len(household.Data.InviteCode, len("JOIN-")+6)
	suite.Assert().True(household.Data.ShowSettlement)
	suite.Assert().Len(household.Data.Members, 1)
	suite.Assert().True(household.Data.Members[0].IsCurrentUser)
	suite.Assert().Nil(household.Data.PartnerName)

	// A user can only be a member of one household
	createTestHousehold(suite.T(), alex, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestHouseholdsCreateFails() {
	alex := createTestUser(suite.T(), "Alex Doe")

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/households", v1.HouseholdCreate{Name: " A "}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/households", v1.HouseholdCreate{Name: "The Does"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusUnauthorized)
}

func (suite *TestSuiteStandard) TestHouseholdsJoin() {
	alex := createTestUser(suite.T(), "Alex Doe")
	sam := createTestUser(suite.T(), "Sam Smith")
	household := createTestHousehold(suite.T(), alex)

	joined := joinTestHousehold(suite.T(), sam, household.Data.InviteCode)
	suite.Assert().Equal(household.Data.ID, joined.Data.ID)
	suite.Assert().Len(joined.Data.Members, 2)
	suite.Require().NotNil(joined.Data.PartnerName)
	suite.Assert().Equal("Alex", *joined.Data.PartnerName)

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/households/current", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var current v1.HouseholdResponse
	test.DecodeResponse(suite.T(), &r, &current)
	suite.Require().NotNil(current.Data.PartnerName)
	suite.Assert().Equal("Sam", *current.Data.PartnerName)
	suite.Assert().Equal(alex.ID, current.Data.Members[0].ID, "members are ordered by the time they joined")
}

func (suite *TestSuiteStandard) TestHouseholdsJoinFails() {
	alex, sam := createTestCouple(suite.T())
	household := joinTestHousehold(suite.T(), createTestUser(suite.T(), "Kim"), "JOIN-XXXXXX", http.StatusNotFound)
	suite.Assert().NotNil(household.Error)

	current := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/households/current", "", test.User(alex.ID))
	var response v1.HouseholdResponse
	test.DecodeResponse(suite.T(), &current, &response)
	code := response.Data.InviteCode

	// The household is full
	joinTestHousehold(suite.T(), createTestUser(suite.T(), "Kim"), code, http.StatusConflict)

	// Members cannot join another household
	joinTestHousehold(suite.T(), sam, code, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestHouseholdsInvite() {
	alex := createTestUser(suite.T(), "Alex Doe")
	household := createTestHousehold(suite.T(), alex)
	kim := createTestUser(suite.T(), "Kim")

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/households/invites/%s", household.Data.InviteCode), "", test.User(kim.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var invite v1.InviteResponse
	test.DecodeResponse(suite.T(), &r, &invite)
	suite.Assert().Equal(household.Data.ID, invite.Data.HouseholdID)
	suite.Assert().Equal(1, invite.Data.MemberCount)
	suite.Assert().False(invite.Data.IsFull)

	joinTestHousehold(suite.T(), createTestUser(suite.T(), "Sam"), household.Data.InviteCode)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/households/invites/%s", household.Data.InviteCode), "", test.User(kim.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &invite)
	suite.Assert().True(invite.Data.IsFull)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/households/invites/JOIN-NOPE22", "", test.User(kim.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestHouseholdsUpdate() {
	alex, sam := createTestCouple(suite.T())

	r := test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/households/current", map[string]any{"showSettlement": false}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.HouseholdResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().False(response.Data.ShowSettlement)
	suite.Assert().Equal("The Testers", response.Data.Name)

	r = test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/households/current", map[string]any{"name": "The Does"}, test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("The Does", response.Data.Name)
	suite.Assert().False(response.Data.ShowSettlement)

	r = test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/households/current", map[string]any{"name": "x"}, test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestHouseholdsNotMember() {
	kim := createTestUser(suite.T(), "Kim")

	for _, path := range []string{
		"http://example.com/v1/households/current",
		"http://example.com/v1/categories",
		"http://example.com/v1/transactions",
		"http://example.com/v1/budgets",
		"http://example.com/v1/settlements/current",
	} {
		r := test.Request(suite.T(), http.MethodGet, path, "", test.User(kim.ID))
		test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

		var response struct {
			Error string `json:"error"`
		}
		test.DecodeResponse(suite.T(), &r, &response)
		suite.Assert().Equal("you are not a member of a household", response.Error, path)
	}
}
