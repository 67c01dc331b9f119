package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/duo-finance/backend/internal/alerts"
	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/types"
	"github.com/duo-finance/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// upsertTestBudget creates or updates a budget for the household of the user.
func upsertTestBudget(t *testing.T, user models.User, budget v1.BudgetEditable, expectedStatus ...int) v1.BudgetResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusOK)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/budgets", budget, test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.BudgetResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

func budgetStatus(t *testing.T, user models.User, query string, expectedStatus ...int) v1.BudgetStatusResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusOK)
	}

	r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets/status?%s", query), "", test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.BudgetStatusResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

func (suite *TestSuiteStandard) TestBudgetsUpsert() {
	alex, sam := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")

	total := upsertTestBudget(suite.T(), alex, v1.BudgetEditable{MonthlyLimit: d("2000")})
	suite.Assert().Equal(models.TotalBudgetName, total.Data.Name)
	suite.Assert().Nil(total.Data.CategoryID)
	suite.Assert().Equal(alerts.DefaultThreshold, total.Data.AlertThreshold)

	category := upsertTestBudget(suite.T(), sam, v1.BudgetEditable{CategoryID: &groceries.ID, MonthlyLimit: d("400"), AlertThreshold: 90})
	suite.Assert().Equal("Groceries", category.Data.Name)
	suite.Assert().Equal(90, category.Data.AlertThreshold)

	// Upserting again updates the existing budget
	updated := upsertTestBudget(suite.T(), alex, v1.BudgetEditable{CategoryID: &groceries.ID, MonthlyLimit: d("450"), AlertThreshold: 75})
	suite.Assert().Equal(category.Data.ID, updated.Data.ID)
	suite.Assert().True(d("450").Equal(updated.Data.MonthlyLimit))
	suite.Assert().Equal(75, updated.Data.AlertThreshold)

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/budgets", "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 2)
	suite.Assert().Equal(models.TotalBudgetName, list.Data[0].Name, "the household total is listed first")
	suite.Assert().Equal("Groceries", list.Data[1].Name)

	r = test.Request(suite.T(), http.MethodGet, list.Data[1].Links.Self, "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var single v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &single)
	suite.Assert().Equal("Groceries", single.Data.Name)
}

func (suite *TestSuiteStandard) TestBudgetsUpsertFails() {
	alex, _ := createTestCouple(suite.T())

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)
	foreign := createTestCategory(suite.T(), other, v1.CategoryEditable{Name: "Boats"})

	unknown := uuid.New()

	tests := []struct {
		name   string
		budget v1.BudgetEditable
	}{
		{"Negative limit", v1.BudgetEditable{MonthlyLimit: d("-1")}},
		{"Threshold too high", v1.BudgetEditable{MonthlyLimit: d("100"), AlertThreshold: 101}},
		{"Threshold negative", v1.BudgetEditable{MonthlyLimit: d("100"), AlertThreshold: -5}},
		{"Category of other household", v1.BudgetEditable{CategoryID: &foreign.Data.ID, MonthlyLimit: d("100")}},
		{"Unknown category", v1.BudgetEditable{CategoryID: &unknown, MonthlyLimit: d("100")}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			response := upsertTestBudget(t, alex, tt.budget, http.StatusBadRequest)
			assert.NotNil(t, response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsStatus() {
	alex, sam := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")
	dining := defaultCategory(suite.T(), "Dining Out")
	travel := defaultCategory(suite.T(), "Travel")

	upsertTestBudget(suite.T(), alex, v1.BudgetEditable{MonthlyLimit: d("1000")})
	upsertTestBudget(suite.T(), alex, v1.BudgetEditable{CategoryID: &groceries.ID, MonthlyLimit: d("200")})
	upsertTestBudget(suite.T(), alex, v1.BudgetEditable{CategoryID: &dining.ID, MonthlyLimit: d("100")})
	upsertTestBudget(suite.T(), alex, v1.BudgetEditable{CategoryID: &travel.ID, MonthlyLimit: d("0")})

	createTestTransaction(suite.T(), alex, v1.TransactionCreate{Amount: d("170.5"), CategoryID: &groceries.ID})
	createTestTransaction(suite.T(), sam, v1.TransactionCreate{Amount: d("120"), CategoryID: &dining.ID})
	createTestTransaction(suite.T(), sam, v1.TransactionCreate{Amount: d("15")})

	// Spending of other months does not count
	createTestTransaction(suite.T(), sam, v1.TransactionCreate{Amount: d("500"), CategoryID: &groceries.ID, Date: "2024-04-30"})

	response := budgetStatus(suite.T(), alex, "")
	suite.Assert().Equal("2024-05", response.Month.String())
	suite.Require().Len(response.Data, 4)

	tests := []struct {
		name       string
		spent      string
		remaining  string
		percentage string
		level      alerts.Level
		severity   string
	}{
		{models.TotalBudgetName, "305.5", "694.5", "30.6", alerts.LevelNone, "info"},
		{"Groceries", "170.5", "29.5", "85.3", alerts.LevelWarning, "warning"},
		{"Dining Out", "120", "-20", "120", alerts.LevelExceeded, "error"},
		{"Travel", "0", "0", "0", alerts.LevelNone, "info"},
	}

	for i, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			status := response.Data[i]
			assert.Equal(t, tt.name, status.Budget.Name)
			assert.True(t, d(tt.spent).Equal(status.Spent), "spent: %s", status.Spent)
			assert.True(t, d(tt.remaining).Equal(status.Remaining), "remaining: %s", status.Remaining)
			assert.True(t, d(tt.percentage).Equal(status.Percentage), "percentage: %s", status.Percentage)
			assert.Equal(t, tt.level, status.Level)
			assert.Equal(t, tt.severity, status.Severity)
		})
	}

	april := budgetStatus(suite.T(), sam, "month=2024-04")
	suite.Assert().Equal("2024-04", april.Month.String())
	suite.Assert().Equal(alerts.LevelExceeded, april.Data[1].Level)
}

func (suite *TestSuiteStandard) TestBudgetsStatusInvalidMonth() {
	alex, _ := createTestCouple(suite.T())

	for _, month := range []string{"2024-13", "May", "05/2024"} {
		suite.T().Run(month, func(t *testing.T) {
			response := budgetStatus(t, alex, fmt.Sprintf("month=%s", month), http.StatusBadRequest)
			assert.NotNil(t, response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsDelete() {
	alex, _ := createTestCouple(suite.T())
	budget := upsertTestBudget(suite.T(), alex, v1.BudgetEditable{MonthlyLimit: d("1000")})

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)

	r := test.Request(suite.T(), http.MethodDelete, budget.Data.Links.Self, "", test.User(other.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	suite.Require().Nil(models.DB.Create(&models.BudgetAlertState{BudgetID: budget.Data.ID, Month: types.NewMonth(2024, time.May), LastPercentage: 80}).Error)

	r = test.Request(suite.T(), http.MethodDelete, budget.Data.Links.Self, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, budget.Data.Links.Self, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	var states int64
	models.DB.Unscoped().Model(&models.BudgetAlertState{}).Count(&states)
	suite.Assert().Zero(states, "alert states are deleted with the budget")
}
