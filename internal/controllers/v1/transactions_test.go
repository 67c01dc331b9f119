package v1_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/types"
	"github.com/duo-finance/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func listTransactions(t *testing.T, user models.User, query string, expectedStatus ...int) v1.TransactionListResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusOK)
	}

	r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?%s", query), "", test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.TransactionListResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

func (suite *TestSuiteStandard) TestTransactionsCreate() {
	alex, _ := createTestCouple(suite.T())

	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{
		Amount:       d("14.03"),
		Date:         "2024-05-13",
		MerchantName: " Whole Foods ",
	})

	suite.Assert().Equal("Whole Foods", transaction.Data.MerchantName)
	suite.Assert().Equal("Whole Foods", transaction.Data.Description, "the description defaults to the merchant name")
	suite.Assert().True(d("14.03").Equal(transaction.Data.Amount))
	suite.Assert().Equal(types.Date("2024-05-13"), transaction.Data.Date)
	suite.Assert().Equal(alex.ID, transaction.Data.UserID)
	suite.Assert().Equal(models.SourceManual, transaction.Data.Source)
	suite.Assert().False(transaction.Data.IsJoint, "new transactions are personal")
	suite.Assert().Nil(transaction.Data.CategoryID)
	suite.Assert().Equal(fmt.Sprintf("%s/toggle-joint", transaction.Data.Links.Self), transaction.Data.Links.ToggleJoint)
}

func (suite *TestSuiteStandard) TestTransactionsCreateFails() {
	alex, _ := createTestCouple(suite.T())

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)
	foreign := createTestCategory(suite.T(), other, v1.CategoryEditable{Name: "Boats"})

	tests := []struct {
		name        string
		transaction v1.TransactionCreate
	}{
		{"Negative amount", v1.TransactionCreate{Amount: d("-5")}},
		{"Invalid date", v1.TransactionCreate{Date: "2024-02-30"}},
		{"Blank merchant", v1.TransactionCreate{MerchantName: "   "}},
		{"Category of other household", v1.TransactionCreate{CategoryID: &foreign.Data.ID}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/transactions", []map[string]any{transactionBody(tt.transaction)}, test.User(alex.ID))
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.TransactionCreateResponse
			test.DecodeResponse(t, &r, &response)
			assert.NotNil(t, response.Data[0].Error)
		})
	}

	// Without a household, transactions cannot be created
	single := createTestUser(suite.T(), "Robin")
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions", []v1.TransactionCreate{{Amount: d("1"), Date: "2024-05-01", MerchantName: "Shop"}}, test.User(single.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

// transactionBody returns the request body for a new transaction with
// the defaults of createTestTransaction for all fields that are not set.
func transactionBody(c v1.TransactionCreate) map[string]any {
	body := map[string]any{
		"amount":       "10",
		"date":         "2024-05-10",
		"merchantName": "Corner Store",
	}

	if !c.Amount.IsZero() {
		body["amount"] = c.Amount.String()
	}

	if c.Date != "" {
		body["date"] = c.Date
	}

	if c.MerchantName != "" {
		body["merchantName"] = c.MerchantName
	}

	if c.CategoryID != nil {
		body["categoryId"] = c.CategoryID
	}

	return body
}

func (suite *TestSuiteStandard) TestTransactionsListFilters() {
	alex, sam := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")

	may := createTestTransaction(suite.T(), alex, v1.TransactionCreate{MerchantName: "Farmers Market", Date: "2024-05-02", Amount: d("30"), CategoryID: &groceries.ID})
	createTestTransaction(suite.T(), sam, v1.TransactionCreate{MerchantName: "Cinema", Date: "2024-05-12", Amount: d("12")})
	createTestTransaction(suite.T(), sam, v1.TransactionCreate{MerchantName: "Bakery", Date: "2024-04-20", Amount: d("4")})
	createTestTransaction(suite.T(), alex, v1.TransactionCreate{MerchantName: "Hotel", Date: "2023-08-01", Amount: d("300")})
	createTestTransaction(suite.T(), alex, v1.TransactionCreate{MerchantName: "Concert", Date: "2024-05-20", Amount: d("60")})
	setJoint(suite.T(), sam, may.Data.ID, true)

	tests := []struct {
		name      string
		query     string
		merchants []string
		label     string
		active    bool
	}{
		{"Default is this month", "", []string{"Cinema", "Farmers Market"}, "This Month", false},
		{"All time", "range=all-time", []string{"Concert", "Cinema", "Farmers Market", "Bakery", "Hotel"}, "All Time", true},
		{"Last month", "range=last-month", []string{"Bakery"}, "Last Month", true},
		{"This year", "range=this-year", []string{"Cinema", "Farmers Market", "Bakery"}, "This Year", true},
		{"Custom", "from=2023-01-01&to=2023-12-31", []string{"Hotel"}, "Custom Range", true},
		{"Custom with one bound", "from=2024-05-01", []string{"Concert", "Cinema", "Farmers Market", "Bakery", "Hotel"}, "Custom Range", true},
		{"Joint", "range=all-time&type=joint", []string{"Farmers Market"}, "All Time", true},
		{"Personal", "type=personal", []string{"Cinema"}, "This Month", true},
		{"Search ignores case", "range=all-time&q=BAKE", []string{"Bakery"}, "All Time", true},
		{"Category", fmt.Sprintf("category=%s", groceries.ID), []string{"Farmers Market"}, "This Month", true},
		{"Amount range", "range=all-time&min=5&max=50", []string{"Cinema", "Farmers Market"}, "All Time", true},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			response := listTransactions(t, alex, tt.query)

			merchants := make([]string, 0, len(response.Data))
			for _, transaction := range response.Data {
				merchants = append(merchants, transaction.MerchantName)
			}

			assert.Equal(t, tt.merchants, merchants)
			assert.Equal(t, tt.label, response.Filter.Label)
			assert.Equal(t, tt.active, response.Filter.Active)
			assert.Equal(t, int64(len(tt.merchants)), response.Pagination.Total)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsListFilterInfo() {
	alex, _ := createTestCouple(suite.T())

	response := listTransactions(suite.T(), alex, "")
	suite.Assert().Equal(types.Date("2024-05-01"), response.Filter.From)
	suite.Assert().Equal(types.Date("2024-05-15"), response.Filter.Until)
	suite.Assert().Equal("", response.Filter.Query)

	response = listTransactions(suite.T(), alex, "range=all-time&type=joint")
	suite.Assert().True(response.Filter.From.IsZero())
	suite.Assert().True(response.Filter.Until.IsZero())
	suite.Assert().Equal("range=all-time&type=joint", response.Filter.Query)
}

func (suite *TestSuiteStandard) TestTransactionsListFails() {
	alex, _ := createTestCouple(suite.T())

	for _, query := range []string{"range=forever", "type=shared", "from=yesterday", "category=groceries", "min=a-lot", "offset=-1"} {
		suite.T().Run(query, func(t *testing.T) {
			response := listTransactions(t, alex, query, http.StatusBadRequest)
			assert.NotNil(t, response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsOtherHousehold() {
	alex, _ := createTestCouple(suite.T())
	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{})

	other := createTestUser(suite.T(), "Kim")
	createTestHousehold(suite.T(), other)

	suite.Assert().Empty(listTransactions(suite.T(), other, "range=all-time").Data)

	r := test.Request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "", test.User(other.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodPost, transaction.Data.Links.ToggleJoint, map[string]bool{"isJoint": true}, test.User(other.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTransactionsToggleJoint() {
	alex, sam := createTestCouple(suite.T())
	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{})

	// The partner can toggle transactions of the other member
	toggled := setJoint(suite.T(), sam, transaction.Data.ID, true)
	suite.Assert().True(toggled.Data.IsJoint)

	toggled = setJoint(suite.T(), alex, transaction.Data.ID, false)
	suite.Assert().False(toggled.Data.IsJoint)

	r := test.Request(suite.T(), http.MethodPost, transaction.Data.Links.ToggleJoint, map[string]any{}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("the isJoint field must be set", *response.Error)
}

func (suite *TestSuiteStandard) TestTransactionsUpdate() {
	alex, _ := createTestCouple(suite.T())
	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{MerchantName: "Bakery", Amount: d("4.50")})
	dining := defaultCategory(suite.T(), "Dining Out")

	r := test.Request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{
		"amount":     "5.25",
		"categoryId": dining.ID,
		"isJoint":    true,
	}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().True(d("5.25").Equal(response.Data.Amount))
	suite.Assert().Equal(dining.ID, *response.Data.CategoryID)
	suite.Assert().True(response.Data.IsJoint)
	suite.Assert().Equal("Bakery", response.Data.MerchantName)

	r = test.Request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"categoryId": nil}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Nil(response.Data.CategoryID)

	r = test.Request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"amount": "0"}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"categoryId": uuid.New()}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTransactionsHide() {
	alex, _ := createTestCouple(suite.T())
	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{})
	suite.Require().Len(listTransactions(suite.T(), alex, "").Data, 1)

	r := test.Request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"isHidden": true}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	suite.Assert().Empty(listTransactions(suite.T(), alex, "").Data, "hidden transactions are not listed")

	// Hidden transactions can still be fetched directly
	r = test.Request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestTransactionsDelete() {
	alex, sam := createTestCouple(suite.T())
	transaction := createTestTransaction(suite.T(), alex, v1.TransactionCreate{})

	r := test.Request(suite.T(), http.MethodDelete, transaction.Data.Links.Self, "", test.User(sam.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodDelete, transaction.Data.Links.Self, "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTransactionsCategorize() {
	alex, _ := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")
	createTestCategoryRule(suite.T(), alex, v1.CategoryRuleEditable{CategoryID: groceries.ID, Match: "*market*"})

	market := createTestTransaction(suite.T(), alex, v1.TransactionCreate{MerchantName: "Farmers Market"})
	createTestTransaction(suite.T(), alex, v1.TransactionCreate{MerchantName: "Mystery Shop"})

	// Without an AI, only rules categorize transactions
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/categorize", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategorizeResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(1, response.Data.Categorized)
	suite.Assert().Equal(2, response.Data.Total)
	suite.Require().Len(response.Data.Results, 1)
	suite.Assert().Equal(market.Data.ID, response.Data.Results[0].TransactionID)
	suite.Assert().Equal("Groceries", response.Data.Results[0].Category)

	r = test.Request(suite.T(), http.MethodGet, market.Data.Links.Self, "", test.User(alex.ID))
	var transaction v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &transaction)
	suite.Assert().Equal(groceries.ID, *transaction.Data.CategoryID)

	// Selected by ID
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/categorize", v1.CategorizeRequest{TransactionIDs: []uuid.UUID{market.Data.ID}}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(1, response.Data.Total)
}

func (suite *TestSuiteStandard) TestTransactionsCategorizeTooMany() {
	alex, _ := createTestCouple(suite.T())

	ids := make([]uuid.UUID, 51)
	for i := range ids {
		ids[i] = uuid.New()
	}

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/categorize", v1.CategorizeRequest{TransactionIDs: ids}, test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTransactionsExport() {
	alex, sam := createTestCouple(suite.T())
	groceries := defaultCategory(suite.T(), "Groceries")

	market := createTestTransaction(suite.T(), alex, v1.TransactionCreate{MerchantName: "Market, Downtown", Date: "2024-05-02", Amount: d("30"), CategoryID: &groceries.ID})
	createTestTransaction(suite.T(), sam, v1.TransactionCreate{MerchantName: "Cinema", Date: "2024-05-12", Amount: d("12.5")})
	createTestTransaction(suite.T(), sam, v1.TransactionCreate{MerchantName: "Bakery", Date: "2024-04-20"})
	setJoint(suite.T(), sam, market.Data.ID, true)

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions/export?start=2024-05-01&end=2024-05-31", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	suite.Assert().Equal(`attachment; filename="duo-transactions-2024-05-01-to-2024-05-31.csv"`, r.Header().Get("Content-Disposition"))
	suite.Assert().Contains(r.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(r.Body.String(), "\n")
	suite.Require().Len(lines, 3)
	suite.Assert().Equal("Date,Merchant,Category,Amount,Type,Added By,Notes", lines[0])
	suite.Assert().Equal("2024-05-12,Cinema,Uncategorized,12.50,Personal,Sam Doe,Cinema", lines[1])
	suite.Assert().Equal(`2024-05-02,"Market, Downtown",Groceries,30.00,Joint,Alex Doe,"Market, Downtown"`, lines[2])

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions/export?start=2024-05-01&end=2024-05-31&type=joint", "", test.User(alex.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().Equal(`attachment; filename="duo-transactions-joint-2024-05-01-to-2024-05-31.csv"`, r.Header().Get("Content-Disposition"))
	suite.Assert().Len(strings.Split(r.Body.String(), "\n"), 2)
}

func (suite *TestSuiteStandard) TestTransactionsExportFails() {
	alex, _ := createTestCouple(suite.T())

	tests := []struct {
		name  string
		query string
	}{
		{"Missing start", "end=2024-05-31"},
		{"Missing end", "start=2024-05-01"},
		{"Start after end", "start=2024-06-01&end=2024-05-31"},
		{"Invalid date", "start=2024-13-01&end=2024-05-31"},
		{"Unknown type", "start=2024-05-01&end=2024-05-31&type=shared"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions/export?%s", tt.query), "", test.User(alex.ID))
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}
