package categorize

import (
	"context"
	"strings"

	"github.com/duo-finance/backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// BatchLimit is the maximum number of transactions categorized at once.
const BatchLimit = 50

// Source is what categorized a transaction.
type Source string

const (
	SourceRule Source = "rule"
	SourceAI   Source = "ai"
)

// Outcome is the categorization of one transaction.
type Outcome struct {
	TransactionID uuid.UUID  `json:"transactionId"`
	MerchantName  string     `json:"merchantName"`
	CategoryID    *uuid.UUID `json:"categoryId"`
	Category      string     `json:"category"`
	Confidence    Confidence `json:"confidence"`
	Source        Source     `json:"source"`
}

// Summary is the result of a categorization run.
type Summary struct {
	Categorized int       `json:"categorized"`
	Total       int       `json:"total"`
	Results     []Outcome `json:"results"`
}

// Service categorizes the transactions of a household. Rules are applied
// first. Transactions no rule matches are sent to the AI if one is set.
type Service struct {
	DB *gorm.DB
	AI *AI
}

// Categorize categorizes the transactions with the given IDs. Without IDs,
// the uncategorized transactions of the household are used. At most
// BatchLimit transactions are processed.
func (s *Service) Categorize(ctx context.Context, householdID uuid.UUID, ids []uuid.UUID) (Summary, error) {
	db := s.DB.WithContext(ctx)

	q := db.Where(&models.Transaction{HouseholdID: householdID})
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	} else {
		q = q.Where("category_id IS NULL")
	}

	var transactions []models.Transaction
	err := q.Order("date DESC, created_at DESC").Limit(BatchLimit).Find(&transactions).Error
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Total:   len(transactions),
		Results: []Outcome{},
	}

	if len(transactions) == 0 {
		return summary, nil
	}

	rules, err := models.HouseholdCategoryRules(db, householdID)
	if err != nil {
		return Summary{}, err
	}

	categories, err := models.HouseholdCategories(db, householdID)
	if err != nil {
		return Summary{}, err
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var remaining []models.Transaction
	for _, t := range transactions {
		rule, ok := MatchRule(rules, t.MerchantName)
		if !ok {
			remaining = append(remaining, t)
			continue
		}

		categoryID := rule.CategoryID
		t.CategoryID = &categoryID
		if err := db.Save(&t).Error; err != nil {
			return Summary{}, err
		}

		summary.Categorized++
		summary.Results = append(summary.Results, Outcome{
			TransactionID: t.ID,
			MerchantName:  t.MerchantName,
			CategoryID:    t.CategoryID,
			Category:      names[categoryID],
			Confidence:    ConfidenceHigh,
			Source:        SourceRule,
		})
	}

	if len(remaining) == 0 || s.AI == nil {
		return summary, nil
	}

	inputs := make([]Input, 0, len(remaining))
	for _, t := range remaining {
		inputs = append(inputs, Input{ID: t.ID, Description: t.Description, Amount: t.Amount})
	}

	suggestions, err := s.AI.Suggest(ctx, inputs, defaultNames())
	if err != nil {
		log.Warn().Err(err).Str("household", householdID.String()).Msg("AI categorization failed, using fallbacks")
	}

	byName := defaultIDs(categories)
	for i, t := range remaining {
		suggestion := suggestions[i]

		categoryID, ok := byName[strings.ToLower(suggestion.Category)]
		if !ok {
			categoryID = byName[strings.ToLower(FallbackCategory)]
		}

		t.MerchantName = suggestion.MerchantName
		if categoryID != uuid.Nil {
			t.CategoryID = &categoryID
		}

		if err := db.Save(&t).Error; err != nil {
			return Summary{}, err
		}

		summary.Categorized++
		summary.Results = append(summary.Results, Outcome{
			TransactionID: t.ID,
			MerchantName:  t.MerchantName,
			CategoryID:    t.CategoryID,
			Category:      names[categoryID],
			Confidence:    suggestion.Confidence,
			Source:        SourceAI,
		})
	}

	return summary, nil
}

func defaultNames() []string {
	names := make([]string, 0, len(models.DefaultCategories))
	for _, c := range models.DefaultCategories {
		names = append(names, c.Name)
	}

	return names
}

// defaultIDs maps the lowercased names of the default categories to their IDs.
func defaultIDs(categories []models.Category) map[string]uuid.UUID {
	ids := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		if c.IsDefault {
			ids[strings.ToLower(c.Name)] = c.ID
		}
	}

	return ids
}
