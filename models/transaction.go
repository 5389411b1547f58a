// Package models defines the payment entities the fake gateway stores and
// serves: transactions, vaulted credit cards, customers and subscriptions.
package models

import "time"

// Status is the lifecycle state of a transaction as reported by the gateway.
type Status string

const (
	StatusAuthorizing            Status = "authorizing"
	StatusAuthorized             Status = "authorized"
	StatusAuthorizationExpired   Status = "authorization_expired"
	StatusSubmittedForSettlement Status = "submitted_for_settlement"
	StatusSettling               Status = "settling"
	StatusSettlementPending      Status = "settlement_pending"
	StatusSettled                Status = "settled"
	StatusSettlementDeclined     Status = "settlement_declined"
	StatusFailed                 Status = "failed"
	StatusVoided                 Status = "voided"
	StatusGatewayRejected        Status = "gateway_rejected"
	StatusProcessorDeclined      Status = "processor_declined"
)

// Declined reports whether the status is a terminal business failure, as
// opposed to a transaction that went through.
func (s Status) Declined() bool {
	switch s {
	case StatusFailed, StatusGatewayRejected, StatusProcessorDeclined, StatusSettlementDeclined:
		return true
	}
	return false
}

// TransactionType distinguishes charges from refunds.
type TransactionType string

const (
	TypeSale   TransactionType = "sale"
	TypeCredit TransactionType = "credit"
)

// Processor response codes mirrored from the sandbox.
const (
	ResponseCodeApproved   = "1000"
	ResponseTextApproved   = "Approved"
	ResponseCodeDoNotHonor = "2000"
	ResponseTextDoNotHonor = "Do Not Honor"
)

const (
	DefaultCurrencyISOCode = "USD"
	DefaultTransactionUser = "xxx"
	DefaultTransactionSrc  = "api"
)

// StatusEvent is one entry of a transaction's status history.
type StatusEvent struct {
	Status            Status    `json:"status"`
	Amount            string    `json:"amount"`
	Timestamp         time.Time `json:"timestamp"`
	User              string    `json:"user"`
	TransactionSource string    `json:"transactionSource"`
}

// Transaction is the central entity of the gateway.
type Transaction struct {
	// ID is unique within the registry. Generated when the caller leaves it
	// empty.
	ID string `json:"id"`

	Type TransactionType `json:"type"`

	// Amount is kept as the decimal string the client sent (e.g. "10.00") so
	// it round-trips byte for byte.
	Amount string `json:"amount"`

	Status Status `json:"status"`

	// StatusHistory is ordered newest first. Its head always carries the
	// current Status and Amount.
	StatusHistory []StatusEvent `json:"statusHistory"`

	CurrencyISOCode       string `json:"currencyIsoCode"`
	ProcessorResponseCode string `json:"processorResponseCode"`
	ProcessorResponseText string `json:"processorResponseText"`

	OrderID           string `json:"orderId,omitempty"`
	MerchantAccountID string `json:"merchantAccountId,omitempty"`
	CustomerID        string `json:"customerId,omitempty"`
	SubscriptionID    string `json:"subscriptionId,omitempty"`

	RefundedTransactionID string   `json:"refundedTransactionId,omitempty"`
	RefundIDs             []string `json:"refundIds,omitempty"`

	CreditCard CreditCard `json:"creditCard"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transition moves the transaction to status and pushes a matching event on
// the head of the history.
func (t *Transaction) Transition(status Status, at time.Time) {
	t.Status = status
	t.UpdatedAt = at
	t.StatusHistory = append([]StatusEvent{{
		Status:            status,
		Amount:            t.Amount,
		Timestamp:         at,
		User:              DefaultTransactionUser,
		TransactionSource: DefaultTransactionSrc,
	}}, t.StatusHistory...)
}

// Clone returns a deep copy so callers never share slices with the registry.
func (t Transaction) Clone() Transaction {
	t.StatusHistory = append([]StatusEvent(nil), t.StatusHistory...)
	t.RefundIDs = append([]string(nil), t.RefundIDs...)
	return t
}
