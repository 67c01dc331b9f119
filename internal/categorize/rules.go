// Package categorize assigns categories to transactions, first with the
// glob rules of the household and then with an AI model.
package categorize

import (
	"strings"

	"github.com/duo-finance/backend/internal/models"
	"github.com/ryanuber/go-glob"
)

// MatchRule returns the first rule whose pattern matches the merchant name.
// Matching ignores case. Rules must be ordered by priority.
func MatchRule(rules []models.CategoryRule, merchant string) (models.CategoryRule, bool) {
	name := strings.ToLower(strings.TrimSpace(merchant))
	if name == "" {
		return models.CategoryRule{}, false
	}

	for _, rule := range rules {
		if glob.Glob(strings.ToLower(rule.Match), name) {
			return rule, true
		}
	}

	return models.CategoryRule{}, false
}
