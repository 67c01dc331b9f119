package models_test

import (
	"github.com/duo-finance/backend/internal/models"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestCategoryBeforeSave() {
	_, _, household := suite.createCouple()

	category := models.Category{HouseholdID: &household.ID, Name: " Plants ", Icon: " 🌱 "}
	suite.Require().Nil(models.DB.Create(&category).Error)
	suite.Assert().Equal("Plants", category.Name)
	suite.Assert().Equal("🌱", category.Icon)

	err := models.DB.Create(&models.Category{HouseholdID: &household.ID, Name: "  "}).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryNameMissing)

	err = models.DB.Create(&models.Category{HouseholdID: &household.ID, Name: "Plants"}).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryNameNotUnique)
}

func (suite *TestSuiteStandard) TestCategoryPermissions() {
	own := uuid.New()
	other := uuid.New()

	custom := models.Category{HouseholdID: &own, Name: "Plants"}
	suite.Assert().True(custom.EditableBy(own))
	suite.Assert().True(custom.VisibleTo(own))
	suite.Assert().False(custom.EditableBy(other))
	suite.Assert().False(custom.VisibleTo(other))

	shared := models.Category{Name: "Groceries", IsDefault: true}
	suite.Assert().False(shared.EditableBy(own))
	suite.Assert().True(shared.VisibleTo(own))
	suite.Assert().True(shared.VisibleTo(other))
}

func (suite *TestSuiteStandard) TestCategoryNameTaken() {
	_, _, household := suite.createCouple()

	plants := models.Category{HouseholdID: &household.ID, Name: "Plants"}
	suite.Require().Nil(models.DB.Create(&plants).Error)

	tests := []struct {
		name    string
		exclude uuid.UUID
		taken   bool
	}{
		{"PLANTS", uuid.Nil, true},
		{" plants ", uuid.Nil, true},
		{"plants", plants.ID, false},
		{"groceries", uuid.Nil, true},
		{"Boats", uuid.Nil, false},
	}

	for _, tt := range tests {
		taken, err := models.CategoryNameTaken(models.DB, household.ID, tt.name, tt.exclude)
		suite.Assert().Nil(err)
		suite.Assert().Equal(tt.taken, taken, tt.name)
	}

	// Names are unique per household only
	taken, err := models.CategoryNameTaken(models.DB, uuid.New(), "Plants", uuid.Nil)
	suite.Assert().Nil(err)
	suite.Assert().False(taken)
}

func (suite *TestSuiteStandard) TestHouseholdCategories() {
	_, _, household := suite.createCouple()

	suite.Require().Nil(models.DB.Create(&models.Category{HouseholdID: &household.ID, Name: "Plants"}).Error)
	other := uuid.New()
	suite.Require().Nil(models.DB.Create(&models.Household{DefaultModel: models.DefaultModel{ID: other}, Name: "Others", InviteCode: "JOIN-OTHERS"}).Error)
	suite.Require().Nil(models.DB.Create(&models.Category{HouseholdID: &other, Name: "Boats"}).Error)

	categories, err := models.HouseholdCategories(models.DB, household.ID)
	suite.Require().Nil(err)
	suite.Require().Len(categories, len(models.DefaultCategories)+1)
	suite.Assert().True(categories[0].IsDefault)
	suite.Assert().Equal("Plants", categories[len(categories)-1].Name)
}

func (suite *TestSuiteStandard) TestDeleteCategory() {
	alex, _, household := suite.createCouple()

	plants := models.Category{HouseholdID: &household.ID, Name: "Plants"}
	suite.Require().Nil(models.DB.Create(&plants).Error)

	pets := models.Category{HouseholdID: &household.ID, Name: "Pets"}
	suite.Require().Nil(models.DB.Create(&pets).Error)

	transaction := suite.createTransaction(models.Transaction{HouseholdID: household.ID, UserID: alex.ID, Amount: d("12"), CategoryID: &plants.ID})

	rule := models.CategoryRule{HouseholdID: household.ID, CategoryID: plants.ID, Match: "*garden*"}
	suite.Require().Nil(models.DB.Create(&rule).Error)

	budget := models.Budget{HouseholdID: household.ID, CategoryID: &plants.ID, MonthlyLimit: d("50")}
	suite.Require().Nil(models.DB.Create(&budget).Error)
	suite.Require().Nil(models.DB.Create(&models.BudgetAlertState{HouseholdID: household.ID, BudgetID: budget.ID, Month: may, LastPercentage: 80}).Error)

	suite.Require().Nil(models.DeleteCategory(models.DB, plants, &pets.ID))

	var stored models.Transaction
	suite.Require().Nil(models.DB.Where("id = ?", transaction.ID).First(&stored).Error)
	suite.Assert().Equal(pets.ID, *stored.CategoryID)

	var categories, rules, budgets, states int64
	models.DB.Unscoped().Model(&models.Category{}).Where("id = ?", plants.ID).Count(&categories)
	models.DB.Unscoped().Model(&models.CategoryRule{}).Where("id = ?", rule.ID).Count(&rules)
	models.DB.Unscoped().Model(&models.Budget{}).Where("id = ?", budget.ID).Count(&budgets)
	models.DB.Unscoped().Model(&models.BudgetAlertState{}).Where("budget_id = ?", budget.ID).Count(&states)
	suite.Assert().Zero(categories)
	suite.Assert().Zero(rules)
	suite.Assert().Zero(budgets)
	suite.Assert().Zero(states)

	// Without a target, transactions are uncategorized
	suite.Require().Nil(models.DeleteCategory(models.DB, pets, nil))

	var uncategorized models.Transaction
	suite.Require().Nil(models.DB.Where("id = ?", transaction.ID).First(&uncategorized).Error)
	suite.Assert().Nil(uncategorized.CategoryID)
}
