package gateway

import (
	"time"

	"github.com/robertjwhitney/fake-braintree/models"
)

// TransactionOptions overrides fields of a generated transaction. Every field
// is optional:
//
//   - ID defaults to a fresh unique identifier.
//   - Type defaults to sale.
//   - Amount defaults to "0.00".
//   - Status defaults to authorized, or processor_declined while the gateway
//     is declining all cards.
//   - CreatedAt defaults to the current time, read once per call. The first
//     status event uses the same instant.
//
// The remaining fields are copied as given.
type TransactionOptions struct {
	ID                    string
	Type                  models.TransactionType
	Amount                string
	Status                models.Status
	CreatedAt             time.Time
	SubscriptionID        string
	CustomerID            string
	OrderID               string
	MerchantAccountID     string
	RefundedTransactionID string
	CreditCard            models.CreditCard
}

// GenerateTransaction builds a complete transaction from opts. It does not
// store it.
func (g *Gateway) GenerateTransaction(opts TransactionOptions) models.Transaction {
	return generateTransaction(opts, g.IsDeclining(), g.now(), g.newID)
}

func generateTransaction(opts TransactionOptions, declining bool, now time.Time, newID func() string) models.Transaction {
	id := opts.ID
	if id == "" {
		id = newID()
	}
	typ := opts.Type
	if typ == "" {
		typ = models.TypeSale
	}
	amount := opts.Amount
	if amount == "" {
		amount = "0.00"
	}
	status := opts.Status
	if status == "" {
		status = models.StatusAuthorized
		if declining {
			status = models.StatusProcessorDeclined
		}
	}
	createdAt := opts.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	code, text := models.ResponseCodeApproved, models.ResponseTextApproved
	if status.Declined() {
		code, text = models.ResponseCodeDoNotHonor, models.ResponseTextDoNotHonor
	}

	return models.Transaction{
		ID:     id,
		Type:   typ,
		Amount: amount,
		Status: status,
		StatusHistory: []models.StatusEvent{{
			Status:            status,
			Amount:            amount,
			Timestamp:         createdAt,
			User:              models.DefaultTransactionUser,
			TransactionSource: models.DefaultTransactionSrc,
		}},
		CurrencyISOCode:       models.DefaultCurrencyISOCode,
		ProcessorResponseCode: code,
		ProcessorResponseText: text,
		OrderID:               opts.OrderID,
		MerchantAccountID:     opts.MerchantAccountID,
		CustomerID:            opts.CustomerID,
		SubscriptionID:        opts.SubscriptionID,
		RefundedTransactionID: opts.RefundedTransactionID,
		CreditCard:            opts.CreditCard,
		CreatedAt:             createdAt,
		UpdatedAt:             createdAt,
	}
}
