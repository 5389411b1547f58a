package gateway

import (
	"github.com/robertjwhitney/fake-braintree/models"
	"github.com/robertjwhitney/fake-braintree/store"
)

// SaleRequest is a charge against either a vaulted card (PaymentMethodToken)
// or a raw card (CreditCard.Number).
type SaleRequest struct {
	Amount             string
	PaymentMethodToken string
	CreditCard         models.CreditCard
	CustomerID         string
	OrderID            string
	MerchantAccountID  string

	SubmitForSettlement bool
	StoreInVault        bool
}

// Sale charges a card. Declines are reported through Result.Success; the
// declined transaction is still stored and can be found by id. Requests the
// gateway rejects outright (no amount, unknown token, malformed card number)
// store nothing.
func (g *Gateway) Sale(req SaleRequest) (models.Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if req.Amount == "" {
		g.record("sale", store.KindTransaction, "", "", store.OutcomeInvalid, "amount is required")
		return failed(WithValidationError("amount", models.CodeAmountRequired, "Amount is required.")), nil
	}

	card := req.CreditCard
	if req.PaymentMethodToken != "" {
		vaulted, err := g.registry.CreditCards.Find(req.PaymentMethodToken)
		if err != nil {
			g.record("sale", store.KindTransaction, "", req.Amount, store.OutcomeInvalid, err.Error())
			return failed(WithValidationError("payment_method_token", models.CodePaymentMethodTokenInvalid, "Payment method token is invalid.")), nil
		}
		card = vaulted
	} else {
		card.SetNumber(card.Number)
		if !card.WellFormedNumber() {
			g.record("sale", store.KindTransaction, "", req.Amount, store.OutcomeInvalid, "credit card number is invalid")
			return failed(WithValidationError("number", models.CodeCreditCardNumberInvalid, "Credit card number is invalid.")), nil
		}
	}

	customerID := req.CustomerID
	if customerID == "" {
		customerID = card.CustomerID
	}

	now := g.now()
	status := models.StatusProcessorDeclined
	approved := g.declines.Approves(card.Number)
	if approved {
		status = models.StatusAuthorized
	}

	if approved && req.StoreInVault && card.Token == "" {
		card.CustomerID = customerID
		card = g.vault(card)
	}

	tx := g.GenerateTransaction(TransactionOptions{
		Amount:            req.Amount,
		Status:            status,
		CreatedAt:         now,
		CustomerID:        customerID,
		OrderID:           req.OrderID,
		MerchantAccountID: req.MerchantAccountID,
		CreditCard:        card,
	})
	if approved && req.SubmitForSettlement {
		tx.Transition(models.StatusSubmittedForSettlement, now)
	}
	g.registry.Transactions.Insert(tx.ID, tx)

	if !approved {
		g.log.Info("sale declined", "transaction_id", tx.ID, "amount", tx.Amount, "declining", g.IsDeclining())
		g.record("sale", store.KindTransaction, tx.ID, tx.Amount, store.OutcomeDeclined, string(tx.Status))
		return failed(WithTransaction(tx)), nil
	}

	g.log.Info("sale created", "transaction_id", tx.ID, "amount", tx.Amount, "status", tx.Status)
	g.record("sale", store.KindTransaction, tx.ID, tx.Amount, store.OutcomeSuccess, string(tx.Status))
	return models.Result{Success: true, Transaction: &tx}, nil
}

// Find returns the transaction stored under id, or store.ErrNotFound.
func (g *Gateway) Find(id string) (models.Transaction, error) {
	tx, err := g.registry.Transactions.Find(id)
	if err != nil {
		return models.Transaction{}, g.recordErr("find", store.KindTransaction, id, err)
	}
	g.record("find", store.KindTransaction, id, tx.Amount, store.OutcomeSuccess, "")
	return tx, nil
}

// Refund issues a credit transaction against id. An empty amount refunds the
// full original amount. Refunds always succeed for a known transaction.
func (g *Gateway) Refund(id, amount string) (models.Result, error) {
	orig, err := g.registry.Transactions.Find(id)
	if err != nil {
		return models.Result{}, g.recordErr("refund", store.KindTransaction, id, err)
	}
	if amount == "" {
		amount = orig.Amount
	}

	now := g.now()
	credit := g.GenerateTransaction(TransactionOptions{
		Type:                  models.TypeCredit,
		Amount:                amount,
		Status:                models.StatusSubmittedForSettlement,
		CreatedAt:             now,
		CustomerID:            orig.CustomerID,
		OrderID:               orig.OrderID,
		MerchantAccountID:     orig.MerchantAccountID,
		RefundedTransactionID: orig.ID,
		CreditCard:            orig.CreditCard,
	})
	g.registry.Transactions.Insert(credit.ID, credit)
	if _, err := g.registry.Refund(orig.ID, credit.ID, now); err != nil {
		return models.Result{}, g.recordErr("refund", store.KindTransaction, id, err)
	}

	g.log.Info("transaction refunded", "transaction_id", id, "refund_id", credit.ID, "amount", amount)
	g.record("refund", store.KindTransaction, id, amount, store.OutcomeSuccess, credit.ID)
	return models.Result{Success: true, Transaction: &credit}, nil
}

// Void cancels an unsettled transaction.
func (g *Gateway) Void(id string) (models.Result, error) {
	tx, err := g.registry.Void(id, g.now())
	if err != nil {
		return models.Result{}, g.recordErr("void", store.KindTransaction, id, err)
	}
	g.log.Info("transaction voided", "transaction_id", id)
	g.record("void", store.KindTransaction, id, tx.Amount, store.OutcomeSuccess, string(tx.Status))
	return models.Result{Success: true, Transaction: &tx}, nil
}

// SubmitForSettlement captures an authorized transaction, optionally for a
// smaller amount.
func (g *Gateway) SubmitForSettlement(id, amount string) (models.Result, error) {
	tx, err := g.registry.SubmitForSettlement(id, amount, g.now())
	if err != nil {
		return models.Result{}, g.recordErr("submit_for_settlement", store.KindTransaction, id, err)
	}
	g.log.Info("transaction submitted for settlement", "transaction_id", id, "amount", tx.Amount)
	g.record("submit_for_settlement", store.KindTransaction, id, tx.Amount, store.OutcomeSuccess, string(tx.Status))
	return models.Result{Success: true, Transaction: &tx}, nil
}

// SettleTransaction marks a transaction settled, as the processor's nightly
// batch would. The real gateway has no such call; tests use it to move time
// forward.
func (g *Gateway) SettleTransaction(id string) (models.Transaction, error) {
	tx, err := g.registry.Settle(id, g.now())
	if err != nil {
		return models.Transaction{}, g.recordErr("settle", store.KindTransaction, id, err)
	}
	g.log.Info("transaction settled", "transaction_id", id)
	g.record("settle", store.KindTransaction, id, tx.Amount, store.OutcomeSuccess, string(tx.Status))
	return tx, nil
}
