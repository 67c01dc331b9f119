// Package monitor checks household budgets after spending changes and
// dispatches the side effects of transaction mutations.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/duo-finance/backend/internal/alerts"
	"github.com/duo-finance/backend/internal/config"
	"github.com/duo-finance/backend/internal/events"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/notify"
	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var firedAlerts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "budget_alerts_fired_total",
		Help: "Budget alerts that crossed a new tier, partitioned by level.",
	},
	[]string{"level"},
)

// Metrics are the Prometheus collectors of the package.
var Metrics = []prometheus.Collector{firedAlerts}

// NewStore returns the alert state store for the dedup mode.
func NewStore(mode string, db *gorm.DB, ttl time.Duration) alerts.Store {
	if mode == config.AlertDedupMemory {
		return alerts.NewMemoryStore(ttl)
	}

	return models.AlertStore{DB: db}
}

// Monitor evaluates the budgets of a household and notifies its members
// about newly crossed tiers.
type Monitor struct {
	DB       *gorm.DB
	Checker  alerts.Checker
	Notifier *notify.Notifier
}

// New returns a monitor. The notifier may be nil.
func New(db *gorm.DB, store alerts.Store, notifier *notify.Notifier) *Monitor {
	return &Monitor{
		DB:       db,
		Checker:  alerts.Checker{Store: store},
		Notifier: notifier,
	}
}

// Check evaluates all budgets of the household for the month and returns
// the alerts that fired.
func (m *Monitor) Check(ctx context.Context, householdID uuid.UUID, month types.Month) ([]alerts.Alert, error) {
	db := m.DB.WithContext(ctx)

	budgets, err := models.HouseholdBudgets(db, householdID)
	if err != nil {
		return nil, fmt.Errorf("could not load budgets: %w", err)
	}

	if len(budgets) == 0 {
		return nil, nil
	}

	spending, err := models.Spending(db, householdID, month)
	if err != nil {
		return nil, fmt.Errorf("could not sum up spending: %w", err)
	}

	evaluated := make([]alerts.Budget, 0, len(budgets))
	for _, b := range budgets {
		evaluated = append(evaluated, b.Alerts())
	}

	fired, err := m.Checker.Check(ctx, householdID, month, evaluated, spending)
	if err != nil {
		return fired, err
	}

	for _, a := range fired {
		firedAlerts.WithLabelValues(string(a.Level)).Inc()
		log.Info().
			Str("household", householdID.String()).
			Str("budget", a.Budget.Name).
			Str("level", string(a.Level)).
			Int("percentage", a.WholePercentage()).
			Msg("Budget alert")
	}

	if len(fired) > 0 && m.Notifier.Enabled() {
		report, err := m.Notifier.BudgetAlerts(ctx, householdID, fired)
		if err != nil {
			return fired, fmt.Errorf("could not send budget alerts: %w", err)
		}

		log.Debug().Int("sent", report.Sent).Int("failed", report.Failed).Msg("Budget alerts delivered")
	}

	return fired, nil
}

// HandleActivity checks the budgets for an activity message.
func (m *Monitor) HandleActivity(ctx context.Context, msg events.ActivityMessage) error {
	_, err := m.Check(ctx, msg.HouseholdID, msg.Month)
	return err
}
