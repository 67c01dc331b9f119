package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func createTestCategoryRule(t *testing.T, user models.User, rule v1.CategoryRuleEditable, expectedStatus ...int) v1.CategoryRuleResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/category-rules", []v1.CategoryRuleEditable{rule}, test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.CategoryRuleCreateResponse
	test.DecodeResponse(t, &r, &response)
	return response.Data[0]
}

func (suite *TestSuiteStandard) TestCategoryRulesCreate() {
	alex, sam := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")

	rule := createTestCategoryRule(suite.T(), alex, v1.CategoryRuleEditable{CategoryID: groceries.ID, Priority: 2, Match: " *whole foods* "})
	suite.Assert().Equal("*whole foods*", rule.Data.Match)
	suite.Assert().Equal(uint(2), rule.Data.Priority)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/category-rules/%s", rule.Data.ID), rule.Data.Links.Self)

	// The partner sees the rule
	r := test.Request(suite.T(), http.MethodGet, rule.Data.Links.Self, "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestCategoryRulesCreateFails() {
	alex, _ := createTestCouple(suite.T())

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)
	foreign := createTestCategory(suite.T(), other, v1.CategoryEditable{Name: "Boats"})

	groceries := defaultCategory(suite.T(), "Groceries")

	tests := []struct {
		name string
		rule v1.CategoryRuleEditable
	}{
		{"Empty match", v1.CategoryRuleEditable{CategoryID: groceries.ID, Match: "  "}},
		{"No category", v1.CategoryRuleEditable{Match: "*shop*"}},
		{"Category of other household", v1.CategoryRuleEditable{CategoryID: foreign.Data.ID, Match: "*boat*"}},
		{"Unknown category", v1.CategoryRuleEditable{CategoryID: uuid.New(), Match: "*boat*"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			rule := createTestCategoryRule(t, alex, tt.rule, http.StatusBadRequest)
			assert.NotNil(t, rule.Error)
			assert.Nil(t, rule.Data)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoryRulesList() {
	alex, sam := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")
	dining := defaultCategory(suite.T(), "Dining Out")

	createTestCategoryRule(suite.T(), alex, v1.CategoryRuleEditable{CategoryID: dining.ID, Priority: 5, Match: "*cafe*"})
	createTestCategoryRule(suite.T(), alex, v1.CategoryRuleEditable{CategoryID: groceries.ID, Priority: 1, Match: "*market*"})

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)
	createTestCategoryRule(suite.T(), other, v1.CategoryRuleEditable{CategoryID: groceries.ID, Match: "*"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/category-rules", "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryRuleListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal("*market*", response.Data[0].Match, "rules are ordered by priority")
	suite.Assert().Equal("*cafe*", response.Data[1].Match)
	suite.Assert().Equal(int64(2), response.Pagination.Total)
}

func (suite *TestSuiteStandard) TestCategoryRulesUpdate() {
	alex, _ := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")
	travel := defaultCategory(suite.T(), "Travel")

	rule := createTestCategoryRule(suite.T(), alex, v1.CategoryRuleEditable{CategoryID: groceries.ID, Match: "*market*"})

	r := test.Request(suite.T(), http.MethodPatch, rule.Data.Links.Self, map[string]any{"categoryId": travel.ID, "priority": 7}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryRuleResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(travel.ID, response.Data.CategoryID)
	suite.Assert().Equal(uint(7), response.Data.Priority)
	suite.Assert().Equal("*market*", response.Data.Match, "fields not in the body are kept")

	r = test.Request(suite.T(), http.MethodPatch, rule.Data.Links.Self, map[string]any{"match": ""}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodPatch, rule.Data.Links.Self, map[string]any{"categoryId": uuid.New()}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCategoryRulesOtherHousehold() {
	alex, _ := createTestCouple(suite.T())
	rule := createTestCategoryRule(suite.T(), alex, v1.CategoryRuleEditable{CategoryID: defaultCategory(suite.T(), "Other").ID, Match: "*"})

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		suite.T().Run(method, func(t *testing.T) {
			r := test.Request(t, method, rule.Data.Links.Self, map[string]any{"priority": 1}, test.User(other.ID))
			test.AssertHTTPStatus(t, &r, http.StatusNotFound)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoryRulesDelete() {
	alex, _ := createTestCouple(suite.T())
	rule := createTestCategoryRule(suite.T(), alex, v1.CategoryRuleEditable{CategoryID: defaultCategory(suite.T(), "Other").ID, Match: "*"})

	r := test.Request(suite.T(), http.MethodDelete, rule.Data.Links.Self, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, rule.Data.Links.Self, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
