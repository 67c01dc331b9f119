// Package notify delivers web push notifications to household members.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/duo-finance/backend/internal/alerts"
	"github.com/duo-finance/backend/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// concurrency is the number of subscriptions of a user notified in parallel.
const concurrency = 4

var deliveries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "push_deliveries_total",
		Help: "Push notification deliveries, partitioned by kind and result.",
	},
	[]string{"kind", "result"},
)

// Metrics are the Prometheus collectors of the package.
var Metrics = []prometheus.Collector{deliveries}

// Report counts the outcome of sending a message to all subscriptions.
type Report struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Removed int `json:"removed"`
}

func (r *Report) add(o Report) {
	r.Sent += o.Sent
	r.Failed += o.Failed
	r.Removed += o.Removed
}

// Notifier looks up recipients, their preferences and subscriptions and
// sends messages to them.
type Notifier struct {
	DB       *gorm.DB
	Sender   Sender
	Currency Currency
}

// New returns a notifier. A nil sender disables delivery.
func New(db *gorm.DB, sender Sender, currency Currency) *Notifier {
	return &Notifier{
		DB:       db,
		Sender:   sender,
		Currency: currency,
	}
}

// Enabled reports whether messages are delivered at all.
func (n *Notifier) Enabled() bool {
	return n != nil && n.Sender != nil
}

// NewTransaction notifies the partner of the actor about a new expense.
func (n *Notifier) NewTransaction(ctx context.Context, actor models.User, t models.Transaction) (Report, error) {
	if !n.Enabled() {
		return Report{}, nil
	}

	msg := NewTransactionMessage(actor.ActorName(), n.Currency.Amount(t.Amount), t.MerchantName)
	return n.notifyPartner(ctx, actor, models.KindNewTransaction, msg)
}

// ToggleChange notifies the partner of the actor that an expense was marked
// joint or personal.
func (n *Notifier) ToggleChange(ctx context.Context, actor models.User, t models.Transaction) (Report, error) {
	if !n.Enabled() {
		return Report{}, nil
	}

	msg := ToggleChangeMessage(actor.ActorName(), n.Currency.Amount(t.Amount), t.MerchantName, t.IsJoint)
	return n.notifyPartner(ctx, actor, models.KindToggleChange, msg)
}

// BudgetAlerts sends one message per alert to every member of the household.
func (n *Notifier) BudgetAlerts(ctx context.Context, householdID uuid.UUID, fired []alerts.Alert) (Report, error) {
	var report Report
	if !n.Enabled() || len(fired) == 0 {
		return report, nil
	}

	members, err := models.Household{DefaultModel: models.DefaultModel{ID: householdID}}.Members(n.DB.WithContext(ctx))
	if err != nil {
		return report, errors.Wrap(err, "could not load household members")
	}

	for _, a := range fired {
		msg := BudgetAlertMessage(a, n.Currency)
		for _, m := range members {
			if !m.Notifications.Allows(models.KindBudgetAlert) {
				continue
			}

			r, err := n.SendToUser(ctx, m.ID, models.KindBudgetAlert, msg)
			report.add(r)
			if err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

func (n *Notifier) notifyPartner(ctx context.Context, actor models.User, kind models.Kind, msg Message) (Report, error) {
	if !n.Enabled() {
		return Report{}, nil
	}

	partner, ok, err := models.Partner(n.DB.WithContext(ctx), actor)
	if err != nil {
		return Report{}, errors.Wrap(err, "could not look up partner")
	}

	if !ok || !partner.Notifications.Allows(kind) {
		return Report{}, nil
	}

	return n.SendToUser(ctx, partner.ID, kind, msg)
}

// SendToUser sends the message to all subscriptions of the user.
//
// Failed deliveries are counted, not returned. Subscriptions the push
// service reports as gone are deleted.
func (n *Notifier) SendToUser(ctx context.Context, userID uuid.UUID, kind models.Kind, msg Message) (Report, error) {
	var report Report
	if !n.Enabled() {
		return report, nil
	}

	subscriptions, err := models.UserPushSubscriptions(n.DB.WithContext(ctx), userID)
	if err != nil {
		return report, errors.Wrap(err, "could not load push subscriptions")
	}

	if len(subscriptions) == 0 {
		return report, nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return report, errors.Wrap(err, "could not encode notification")
	}

	var (
		mu    sync.Mutex
		stale []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, s := range subscriptions {
		g.Go(func() error {
			status, err := n.Sender.Send(gctx, Subscription{
				Endpoint: s.Endpoint,
				P256dh:   s.P256dh,
				Auth:     s.Auth,
			}, payload)

			mu.Lock()
			defer mu.Unlock()

			if err == nil && status >= 200 && status < 300 {
				report.Sent++
				return nil
			}

			report.Failed++
			if status == http.StatusNotFound || status == http.StatusGone {
				stale = append(stale, s.ID)
			}

			log.Warn().Err(err).Int("status", status).Str("subscription", s.ID.String()).Str("kind", string(kind)).Msg("Push delivery failed")
			return nil
		})
	}

	// Deliveries never return errors, failures are counted instead
	_ = g.Wait()

	if len(stale) > 0 {
		err = n.DB.WithContext(ctx).Unscoped().Delete(&models.PushSubscription{}, "id IN ?", stale).Error
		if err != nil {
			return report, errors.Wrap(err, "could not delete expired push subscriptions")
		}
		report.Removed = len(stale)
	}

	deliveries.WithLabelValues(string(kind), "sent").Add(float64(report.Sent))
	deliveries.WithLabelValues(string(kind), "failed").Add(float64(report.Failed))
	deliveries.WithLabelValues(string(kind), "removed").Add(float64(report.Removed))

	return report, nil
}
