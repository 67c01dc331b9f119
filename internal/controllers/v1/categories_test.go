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

func (suite *TestSuiteStandard) TestCategoriesCreate() {
	alex, _ := createTestCouple(suite.T())

	category := createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: " Plants ", Icon: "🌱", Color: "#00ff00"})
	suite.Assert().Equal("Plants", category.Data.Name)
	suite.Assert().False(category.Data.IsDefault)
	suite.Assert().Equal(householdOf(suite.T(), alex), *category.Data.HouseholdID)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID), category.Data.Links.Self)
}

func (suite *TestSuiteStandard) TestCategoriesCreateFails() {
	alex, _ := createTestCouple(suite.T())
	createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Plants"})

	tests := []struct {
		name     string
		category v1.CategoryEditable
		status   int
	}{
		{"Duplicate name", v1.CategoryEditable{Name: "plants"}, http.StatusConflict},
		{"Default name", v1.CategoryEditable{Name: "GROCERIES"}, http.StatusConflict},
		{"Empty name", v1.CategoryEditable{Name: "   "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/categories", []v1.CategoryEditable{tt.category}, test.User(alex.ID))
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.CategoryCreateResponse
			test.DecodeResponse(t, &r, &response)
			assert.NotNil(t, response.Data[0].Error)
		})
	}

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/categories", `{ "name": "Plants" }`, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCategoriesList() {
	alex, sam := createTestCouple(suite.T())
	createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Plants"})

	// Categories of other households are not visible
	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)
	createTestCategory(suite.T(), other, v1.CategoryEditable{Name: "Boats"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/categories", "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Assert().Len(response.Data, len(models.DefaultCategories)+1)
	suite.Assert().Equal(int64(len(models.DefaultCategories)+1), response.Pagination.Total)
	suite.Assert().True(response.Data[0].IsDefault, "default categories are listed first")
	suite.Assert().Equal("Plants", response.Data[len(response.Data)-1].Name)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/categories?offset=8&limit=2", "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Len(response.Data, 2)
	suite.Assert().Equal(2, response.Pagination.Count)
	suite.Assert().Equal(uint(8), response.Pagination.Offset)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/categories?offset=-1", "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCategoriesGet() {
	alex, _ := createTestCouple(suite.T())
	category := createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Plants"})

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)

	tests := []struct {
		name   string
		user   models.User
		id     string
		status int
	}{
		{"Own category", alex, category.Data.ID.String(), http.StatusOK},
		{"Default category", other, defaultCategory(suite.T(), "Travel").ID.String(), http.StatusOK},
		{"Other household", other, category.Data.ID.String(), http.StatusNotFound},
		{"Unknown", alex, uuid.NewString(), http.StatusNotFound},
		{"Invalid ID", alex, "plants", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/categories/%s", tt.id), "", test.User(tt.user.ID))
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesUpdate() {
	alex, sam := createTestCouple(suite.T())
	category := createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Plants", Icon: "🌱"})
	createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Pets"})

	path := fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID)

	r := test.Request(suite.T(), http.MethodPatch, path, map[string]any{"name": "House Plants"}, test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("House Plants", response.Data.Name)
	suite.Assert().Equal("🌱", response.Data.Icon)

	// Changing the case of the own name is fine
	r = test.Request(suite.T(), http.MethodPatch, path, map[string]any{"name": "house plants"}, test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodPatch, path, map[string]any{"name": "PETS"}, test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)

	r = test.Request(suite.T(), http.MethodPatch, path, map[string]any{"name": ""}, test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCategoriesDefaultReadOnly() {
	alex, _ := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")
	path := fmt.Sprintf("http://example.com/v1/categories/%s", groceries.ID)

	r := test.Request(suite.T(), http.MethodPatch, path, map[string]any{"name": "Food"}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusForbidden)

	r = test.Request(suite.T(), http.MethodDelete, path, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestCategoriesDelete() {
	alex, _ := createTestCouple(suite.T())
	category := createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Plants"})
	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{CategoryID: &category.Data.ID})

	rule := models.CategoryRule{HouseholdID: householdOf(suite.T(), alex), CategoryID: category.Data.ID, Match: "*garden*"}
	suite.Require().Nil(models.DB.Create(&rule).Error)

	budget := models.Budget{HouseholdID: rule.HouseholdID, CategoryID: &category.Data.ID, MonthlyLimit: d("50")}
	suite.Require().Nil(models.DB.Create(&budget).Error)

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID), "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var stored models.Transaction
	suite.Require().Nil(models.DB.Where("id = ?", transaction.Data.ID).First(&stored).Error)
	suite.Assert().Nil(stored.CategoryID, "transactions of deleted categories are uncategorized")

	var rules, budgets int64
	models.DB.Unscoped().Model(&models.CategoryRule{}).Count(&rules)
	models.DB.Unscoped().Model(&models.Budget{}).Count(&budgets)
	suite.Assert().Zero(rules)
	suite.Assert().Zero(budgets)
}

func (suite *TestSuiteStandard) TestCategoriesDeleteReassign() {
	alex, _ := createTestCouple(suite.T())
	category := createTestCategory(suite.T(), alex, v1.CategoryEditable{Name: "Plants"})
	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{CategoryID: &category.Data.ID})
	other := defaultCategory(suite.T(), "Other")

	path := fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID)

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("%s?reassignTo=%s", path, category.Data.ID), "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("%s?reassignTo=%s", path, uuid.New()), "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("%s?reassignTo=not-a-uuid", path), "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("%s?reassignTo=%s", path, other.ID), "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var stored models.Transaction
	suite.Require().Nil(models.DB.Where("id = ?", transaction.Data.ID).First(&stored).Error)
	suite.Require().NotNil(stored.CategoryID)
	suite.Assert().Equal(other.ID, *stored.CategoryID)
}

func (suite *TestSuiteStandard) TestCategoriesDBClosed() {
	alex, _ := createTestCouple(suite.T())
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/categories", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)

	var response struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(models.ErrGeneral.Error(), response.Error)
}
