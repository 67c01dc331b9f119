package notify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/duo-finance/backend/internal/alerts"
)

// Message is the payload delivered to the service worker.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

var whitespace = regexp.MustCompile(`\s`)

// NewTransactionMessage tells the partner about an expense the actor added.
func NewTransactionMessage(actor, amount, merchant string) Message {
	return Message{
		Title: "New expense added",
		Body:  fmt.Sprintf("%s added %s at %s", actor, amount, merchant),
		URL:   "/dashboard",
		Tag:   "new-transaction",
	}
}

// ToggleChangeMessage tells the partner that the actor marked an expense as
// joint or personal.
func ToggleChangeMessage(actor, amount, merchant string, joint bool) Message {
	status := "Personal"
	if joint {
		status = "Joint"
	}

	return Message{
		Title: "Expense marked " + status,
		Body:  fmt.Sprintf("%s marked %s %s as %s", actor, amount, merchant, status),
		URL:   "/dashboard",
		Tag:   "toggle-change",
	}
}

// BudgetAlertMessage warns about a budget that reached its threshold or
// its limit.
func BudgetAlertMessage(a alerts.Alert, currency Currency) Message {
	title := "⚠️ Budget Alert"
	if a.Level == alerts.LevelExceeded {
		title = "🚨 Budget Exceeded!"
	}

	name := a.Budget.Name
	return Message{
		Title: title,
		Body: fmt.Sprintf("%s spending is at %s%% (%s/%s)",
			name,
			a.Percentage.Round(0).String(),
			currency.Whole(a.Spent),
			currency.Whole(a.Budget.MonthlyLimit),
		),
		URL: "/settings",
		Tag: "budget-alert-" + whitespace.ReplaceAllString(strings.ToLower(name), "-"),
	}
}
