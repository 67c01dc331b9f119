package v1_test

import (
	"net/http"
	"testing"

	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestUsersCreate() {
	user := createTestUser(suite.T(), "Alex Doe")

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/users/me", "", test.User(user.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.UserResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Assert().Equal(user.ID, response.Data.ID)
	suite.Assert().Equal("Alex Doe", response.Data.FullName)
	suite.Assert().Nil(response.Data.HouseholdID)
	suite.Assert().Nil(response.Data.OnboardingCompletedAt)
	suite.Assert().True(response.Data.Notifications.PushEnabled)
	suite.Assert().True(response.Data.Notifications.BudgetAlert)
}

func (suite *TestSuiteStandard) TestUsersCreateFails() {
	user := createTestUser(suite.T(), "Alex Doe")

	tests := []struct {
		name    string
		headers map[string]string
		body    any
		status  int
	}{
		{"No header", map[string]string{}, v1.UserEditable{FullName: "Sam", Email: "sam@example.com"}, http.StatusUnauthorized},
		{"Invalid header", map[string]string{v1.UserHeader: "sam"}, v1.UserEditable{FullName: "Sam", Email: "sam@example.com"}, http.StatusUnauthorized},
		{"Already registered", test.User(user.ID), v1.UserEditable{FullName: "Alex", Email: "alex@example.com"}, http.StatusConflict},
		{"Email taken", test.User(uuid.New()), v1.UserEditable{FullName: "Sam", Email: user.Email}, http.StatusConflict},
		{"Email missing", test.User(uuid.New()), v1.UserEditable{FullName: "Sam"}, http.StatusBadRequest},
		{"Broken body", test.User(uuid.New()), `{ "fullName": 2 }`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/users", tt.body, tt.headers)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.UserResponse
			test.DecodeResponse(t, &r, &response)
			assert.NotNil(t, response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestUsersUnknown() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/users/me", "", test.User(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusUnauthorized)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/users/me", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusUnauthorized)
}

func (suite *TestSuiteStandard) TestUsersUpdate() {
	user := createTestUser(suite.T(), "Alex Doe")

	r := test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/users/me", map[string]any{"fullName": "  Alexandra Doe "}, test.User(user.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.UserResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Assert().Equal("Alexandra Doe", response.Data.FullName)
	suite.Assert().Equal(user.Email, response.Data.Email, "fields not in the body must not change")
}

func (suite *TestSuiteStandard) TestUsersUpdateFails() {
	user := createTestUser(suite.T(), "Alex Doe")

	r := test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/users/me", map[string]any{"email": " "}, test.User(user.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/users/me", "", test.User(user.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestUsersOnboarding() {
	user := createTestUser(suite.T(), "Alex Doe")

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/users/me/onboarding", "", test.User(user.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.UserResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().NotNil(response.Data.OnboardingCompletedAt)

	r = test.Request(suite.T(), http.MethodDelete, "http://example.com/v1/users/me/onboarding", "", test.User(user.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Nil(response.Data.OnboardingCompletedAt)
}
