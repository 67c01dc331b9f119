package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/test"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestRoot() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Assert().Equal("http://example.com/v1/users", response.Links.Users)
	suite.Assert().Equal("http://example.com/v1/category-rules", response.Links.CategoryRules)
	suite.Assert().Equal("http://example.com/v1/settlements", response.Links.Settlements)
}

func (suite *TestSuiteStandard) TestCleanup() {
	alex, sam := createTestCouple(suite.T())
	createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Plants"})
	createTestTransaction(suite.T(), alex, transactionAt("2024-05-03"))
	createTestTransaction(suite.T(), sam, transactionAt("2024-05-04"))

	kim, lee := createTestCouple(suite.T())
	createTestCategory(suite.T(), kim, v1.CategoryEditable{Name: "Plants"})
	kept := createTestTransaction(suite.T(), lee, transactionAt("2024-05-05"))

	r := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var households, users, transactions, categories int64
	models.DB.Model(&models.Household{}).Count(&households)
	models.DB.Model(&models.User{}).Count(&users)
	models.DB.Model(&models.Transaction{}).Count(&transactions)
	models.DB.Model(&models.Category{}).Count(&categories)
	suite.Assert().Equal(int64(1), households)
	suite.Assert().Equal(int64(2), users)
	suite.Assert().Equal(int64(1), transactions)
	suite.Assert().Equal(int64(len(models.DefaultCategories)+1), categories)

	for _, user := range []models.User{alex, sam} {
		r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/users/me", "", test.User(user.ID))
		test.AssertHTTPStatus(suite.T(), &r, http.StatusUnauthorized)
	}

	// The other household is untouched
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions/%s", kept.Data.ID), "", test.User(kim.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestCleanupRequiresHousehold() {
	alex, _ := createTestCouple(suite.T())
	loner := createTestUser(suite.T(), "Robin Roe")

	tests := []struct {
		name    string
		headers []map[string]string
		status  int
	}{
		{"No user", nil, http.StatusUnauthorized},
		{"Unknown user", []map[string]string{test.User(uuid.New())}, http.StatusUnauthorized},
		{"No household", []map[string]string{test.User(loner.ID)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "", tt.headers...)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}

	var users, households int64
	models.DB.Model(&models.User{}).Count(&users)
	models.DB.Model(&models.Household{}).Count(&households)
	suite.Assert().Equal(int64(3), users)
	suite.Assert().Equal(int64(1), households)

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/users/me", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestCleanupFails() {
	alex, _ := createTestCouple(suite.T())

	r := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=not-sure", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCleanupDBClosed() {
	alex, _ := createTestCouple(suite.T())
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
}
