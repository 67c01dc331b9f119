package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/types"
	"github.com/duo-finance/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// createTestUser registers a new user with a random ID.
func createTestUser(t *testing.T, fullName string) models.User {
	id := uuid.New()
	body := v1.UserEditable{
		FullName: fullName,
		Email:    fmt.Sprintf("%s@example.com", id),
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/users", body, test.User(id))
	test.AssertHTTPStatus(t, &r, http.StatusCreated)

	var response v1.UserResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)

	return *response.Data
}

// createTestHousehold creates a household for the user.
func createTestHousehold(t *testing.T, user models.User, expectedStatus ...int) v1.HouseholdResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/households", v1.HouseholdCreate{Name: "The Testers"}, test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.HouseholdResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

// joinTestHousehold joins the user to the household with the invite code.
func joinTestHousehold(t *testing.T, user models.User, code string, expectedStatus ...int) v1.HouseholdResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusOK)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/households/join", v1.HouseholdJoin{InviteCode: code}, test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.HouseholdResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

// createTestCouple creates a household with two members.
func createTestCouple(t *testing.T) (models.User, models.User) {
	alex := createTestUser(t, "Alex Doe")
	sam := createTestUser(t, "Sam Doe")

	household := createTestHousehold(t, alex)
	joinTestHousehold(t, sam, household.Data.InviteCode)

	return alex, sam
}

// createTestCategory creates a category for the household of the user.
func createTestCategory(t *testing.T, user models.User, c v1.CategoryEditable, expectedStatus ...int) v1.CategoryResponse {
	if c.Name == "" {
		c.Name = uuid.NewString()
	}

	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/categories", []v1.CategoryEditable{c}, test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.CategoryCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.CategoryResponse{}
}

// createTestTransaction creates a transaction for the user.
func createTestTransaction(t *testing.T, user models.User, c v1.TransactionCreate, expectedStatus ...int) v1.TransactionResponse {
	if c.MerchantName == "" {
		c.MerchantName = "Corner Store"
	}

	if c.Date == "" {
		c.Date = "2024-05-10"
	}

	if c.Amount.IsZero() {
		c.Amount = decimal.NewFromInt(10)
	}

	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/transactions", []v1.TransactionCreate{c}, test.User(user.ID))
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.TransactionCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.TransactionResponse{}
}

// setJoint marks the transaction as joint or personal.
func setJoint(t *testing.T, user models.User, id uuid.UUID, joint bool) v1.TransactionResponse {
	r := test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/transactions/%s/toggle-joint", id), map[string]bool{"isJoint": joint}, test.User(user.ID))
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

// defaultCategory returns the default category with the name.
func defaultCategory(t *testing.T, name string) models.Category {
	var category models.Category
	err := models.DB.Where("household_id IS NULL AND name = ?", name).First(&category).Error
	require.Nil(t, err)
	return category
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// transactionAt returns a transaction on the date.
func transactionAt(date string) v1.TransactionCreate {
	return v1.TransactionCreate{Date: types.Date(date)}
}

// householdOf returns the ID of the household the user is a member of.
func householdOf(t *testing.T, user models.User) uuid.UUID {
	var stored models.User
	require.Nil(t, models.DB.Where("id = ?", user.ID).First(&stored).Error)
	require.NotNil(t, stored.HouseholdID, "user is not a member of a household")

	return *stored.HouseholdID
}
