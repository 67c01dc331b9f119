package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/duo-finance/backend/internal/events"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/notify"
	"github.com/duo-finance/backend/internal/reporting"
	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// backgroundTimeout bounds the side effects of one request.
const backgroundTimeout = 30 * time.Second

// Dispatcher runs the side effects of transaction mutations without
// blocking the request: partner notifications and budget checks.
//
// With a publisher, budget checks are published for the alert worker.
// Otherwise they run in-process.
type Dispatcher struct {
	Notifier  *notify.Notifier
	Monitor   *Monitor
	Publisher events.Publisher
	Now       func() time.Time

	wg sync.WaitGroup
}

// TransactionCreated notifies the partner and checks the budgets.
func (d *Dispatcher) TransactionCreated(ctx context.Context, actor models.User, t models.Transaction) {
	if d == nil {
		return
	}

	d.background(ctx, func(ctx context.Context) error {
		_, err := d.Notifier.NewTransaction(ctx, actor, t)
		return err
	})
	d.checkBudgets(ctx, t.HouseholdID, events.ReasonTransactionCreated)
}

// TransactionToggled notifies the partner and checks the budgets.
func (d *Dispatcher) TransactionToggled(ctx context.Context, actor models.User, t models.Transaction) {
	if d == nil {
		return
	}

	d.background(ctx, func(ctx context.Context) error {
		_, err := d.Notifier.ToggleChange(ctx, actor, t)
		return err
	})
	d.checkBudgets(ctx, t.HouseholdID, events.ReasonTransactionToggled)
}

// SpendingChanged checks the budgets of the household.
func (d *Dispatcher) SpendingChanged(ctx context.Context, householdID uuid.UUID, reason events.Reason) {
	if d == nil {
		return
	}

	d.checkBudgets(ctx, householdID, reason)
}

// Wait blocks until all side effects started so far are done.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}

	d.wg.Wait()
}

func (d *Dispatcher) checkBudgets(ctx context.Context, householdID uuid.UUID, reason events.Reason) {
	msg := events.NewActivityMessage(householdID, types.MonthOf(d.now()), reason)

	d.background(ctx, func(ctx context.Context) error {
		if d.Publisher != nil {
			err := d.Publisher.PublishActivity(ctx, msg)
			if err == nil {
				return nil
			}

			log.Warn().Err(err).Msg("Publishing household activity failed, checking budgets in-process")
		}

		if d.Monitor == nil {
			return nil
		}

		return d.Monitor.HandleActivity(ctx, msg)
	})
}

// background runs f detached from the cancellation of the request.
func (d *Dispatcher) background(ctx context.Context, f func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()

		if err := f(ctx); err != nil {
			log.Error().Err(err).Msg("Side effect failed")
			reporting.CaptureError(ctx, err)
		}
	}()
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}

	return d.Now()
}
