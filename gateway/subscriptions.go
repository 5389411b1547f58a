package gateway

import (
	"time"

	"github.com/robertjwhitney/fake-braintree/models"
	"github.com/robertjwhitney/fake-braintree/store"
)

// SubscriptionRequest creates a subscription billed to a vaulted card.
type SubscriptionRequest struct {
	ID                    string
	PlanID                string
	PaymentMethodToken    string
	Price                 string
	NumberOfBillingCycles int
	FirstBillingDate      time.Time
}

// SubscriptionUpdate carries the mutable subscription fields. Zero values are
// left unchanged.
type SubscriptionUpdate struct {
	PlanID                string
	PaymentMethodToken    string
	Price                 string
	NumberOfBillingCycles int
}

// CreateSubscription starts a subscription and charges its first billing
// cycle. The charge follows the same decline rules as a sale; a declined
// charge stores the transaction but not the subscription.
func (g *Gateway) CreateSubscription(req SubscriptionRequest) (models.Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if req.PlanID == "" {
		g.record("create", store.KindSubscription, req.ID, "", store.OutcomeInvalid, "plan id is required")
		return failed(WithValidationError("plan_id", models.CodePlanIDRequired, "Plan ID is required.")), nil
	}
	card, err := g.registry.CreditCards.Find(req.PaymentMethodToken)
	if err != nil {
		g.record("create", store.KindSubscription, req.ID, "", store.OutcomeInvalid, err.Error())
		return failed(WithValidationError("payment_method_token", models.CodePaymentMethodTokenInvalid, "Payment method token is invalid.")), nil
	}

	now := g.now()
	id := req.ID
	if id == "" {
		id = g.newID()
	}
	price := req.Price
	if price == "" {
		price = "0.00"
	}

	approved := g.declines.Approves(card.Number)
	status := models.StatusProcessorDeclined
	if approved {
		status = models.StatusSubmittedForSettlement
	}
	tx := g.GenerateTransaction(TransactionOptions{
		Amount:         price,
		Status:         status,
		CreatedAt:      now,
		SubscriptionID: id,
		CustomerID:     card.CustomerID,
		CreditCard:     card,
	})
	g.registry.Transactions.Insert(tx.ID, tx)

	if !approved {
		g.log.Info("subscription charge declined", "subscription_id", id, "transaction_id", tx.ID)
		g.record("create", store.KindSubscription, id, price, store.OutcomeDeclined, tx.ID)
		return failed(WithTransaction(tx)), nil
	}

	start := req.FirstBillingDate
	if start.IsZero() {
		start = now
	}
	start = truncateDay(start)
	sub := models.Subscription{
		ID:                     id,
		PlanID:                 req.PlanID,
		PaymentMethodToken:     card.Token,
		Price:                  price,
		Status:                 models.SubscriptionActive,
		BillingDayOfMonth:      start.Day(),
		BillingPeriodStartDate: start,
		BillingPeriodEndDate:   addMonths(start, 1).AddDate(0, 0, -1),
		FirstBillingDate:       start,
		NextBillingDate:        addMonths(start, 1),
		CurrentBillingCycle:    1,
		NumberOfBillingCycles:  req.NumberOfBillingCycles,
		NeverExpires:           req.NumberOfBillingCycles == 0,
		Transactions:           []models.Transaction{tx},
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	g.registry.Subscriptions.Insert(sub.ID, sub)

	g.log.Info("subscription created", "subscription_id", id, "plan_id", sub.PlanID, "transaction_id", tx.ID)
	g.record("create", store.KindSubscription, id, price, store.OutcomeSuccess, tx.ID)
	return models.Result{Success: true, Subscription: &sub}, nil
}

// FindSubscription returns the subscription stored under id.
func (g *Gateway) FindSubscription(id string) (models.Subscription, error) {
	sub, err := g.registry.Subscriptions.Find(id)
	if err != nil {
		return models.Subscription{}, g.recordErr("find", store.KindSubscription, id, err)
	}
	g.record("find", store.KindSubscription, id, sub.Price, store.OutcomeSuccess, "")
	return sub, nil
}

// UpdateSubscription applies u. Moving to another payment method requires the
// new token to be vaulted.
func (g *Gateway) UpdateSubscription(id string, u SubscriptionUpdate) (models.Subscription, error) {
	if u.PaymentMethodToken != "" {
		if _, err := g.registry.CreditCards.Find(u.PaymentMethodToken); err != nil {
			return models.Subscription{}, g.recordErr("update", store.KindSubscription, id, err)
		}
	}
	now := g.now()
	sub, err := g.registry.Subscriptions.Update(id, func(s *models.Subscription) error {
		setIf(&s.PlanID, u.PlanID)
		setIf(&s.PaymentMethodToken, u.PaymentMethodToken)
		setIf(&s.Price, u.Price)
		if u.NumberOfBillingCycles > 0 {
			s.NumberOfBillingCycles = u.NumberOfBillingCycles
			s.NeverExpires = false
		}
		s.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Subscription{}, g.recordErr("update", store.KindSubscription, id, err)
	}
	g.record("update", store.KindSubscription, id, sub.Price, store.OutcomeSuccess, "")
	return sub, nil
}

// CancelSubscription stops billing. Canceling twice is rejected the way the
// gateway rejects it.
func (g *Gateway) CancelSubscription(id string) (models.Result, error) {
	var already bool
	now := g.now()
	sub, err := g.registry.Subscriptions.Update(id, func(s *models.Subscription) error {
		if s.Status == models.SubscriptionCanceled {
			already = true
			return nil
		}
		s.Status = models.SubscriptionCanceled
		s.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Result{}, g.recordErr("cancel", store.KindSubscription, id, err)
	}
	if already {
		g.record("cancel", store.KindSubscription, id, "", store.OutcomeInvalid, "already canceled")
		return failed(WithValidationError("status", models.CodeSubscriptionCanceled, "Subscription has already been canceled.")), nil
	}

	g.log.Info("subscription canceled", "subscription_id", id)
	g.record("cancel", store.KindSubscription, id, "", store.OutcomeSuccess, "")
	return models.Result{Success: true, Subscription: &sub}, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// addMonths moves t by n calendar months, clamping the day to the end of the
// target month: Jan 31 plus one month is Feb 28 (or 29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(d, last), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
