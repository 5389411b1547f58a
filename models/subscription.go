package models

import "time"

// SubscriptionStatus values use the gateway's capitalised spelling.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "Active"
	SubscriptionCanceled SubscriptionStatus = "Canceled"
	SubscriptionExpired  SubscriptionStatus = "Expired"
	SubscriptionPastDue  SubscriptionStatus = "Past Due"
	SubscriptionPending  SubscriptionStatus = "Pending"
)

// DateLayout is the date-only format used by billing fields.
const DateLayout = "2006-01-02"

// Subscription is a recurring charge against a vaulted card.
type Subscription struct {
	ID                     string             `json:"id"`
	PlanID                 string             `json:"planId"`
	PaymentMethodToken     string             `json:"paymentMethodToken"`
	Price                  string             `json:"price"`
	Status                 SubscriptionStatus `json:"status"`
	BillingDayOfMonth      int                `json:"billingDayOfMonth"`
	BillingPeriodStartDate time.Time          `json:"billingPeriodStartDate"`
	BillingPeriodEndDate   time.Time          `json:"billingPeriodEndDate"`
	FirstBillingDate       time.Time          `json:"firstBillingDate"`
	NextBillingDate        time.Time          `json:"nextBillingDate"`
	CurrentBillingCycle    int                `json:"currentBillingCycle"`
	NumberOfBillingCycles  int                `json:"numberOfBillingCycles,omitempty"`
	NeverExpires           bool               `json:"neverExpires"`
	FailureCount           int                `json:"failureCount"`

	// Transactions is ordered newest first.
	Transactions []Transaction `json:"transactions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy.
func (s Subscription) Clone() Subscription {
	txs := make([]Transaction, len(s.Transactions))
	for i, t := range s.Transactions {
		txs[i] = t.Clone()
	}
	s.Transactions = txs
	return s
}
