package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robertjwhitney/fake-braintree/gateway"
	"github.com/robertjwhitney/fake-braintree/models"
)

// sale handles POST /transactions.
//
// Approved → 201 with the transaction. Declined → 422 api-error-response that
// still carries the stored transaction, so the client can find it later.
func (h *Handler) sale(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}
	if req.Type == string(models.TypeCredit) {
		// Stand-alone credits are not emulated; refunds go through /refund.
		writeError(w, http.StatusBadRequest, "unsupported transaction type")
		return
	}

	res, err := h.gw.Sale(gateway.SaleRequest{
		Amount:              req.Amount,
		PaymentMethodToken:  req.PaymentMethodToken,
		CreditCard:          req.CreditCard.model(),
		CustomerID:          req.CustomerID,
		OrderID:             req.OrderID,
		MerchantAccountID:   req.MerchantAccountID,
		SubmitForSettlement: req.Options.SubmitForSettlement,
		StoreInVault:        req.Options.StoreInVault,
	})
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	if !res.Success {
		writeFailure(w, res)
		return
	}
	annotate(r, "transaction.id", res.Transaction.ID)
	writeXML(w, http.StatusCreated, toXMLTransaction(*res.Transaction))
}

// findTransaction handles GET /transactions/{id}.
func (h *Handler) findTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "transaction.id", id)

	tx, err := h.gw.Find(id)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLTransaction(tx))
}

// refund handles POST /transactions/{id}/refund. The body is optional; without
// an amount the full transaction is refunded. Responds with the new credit
// transaction.
func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "transaction.id", id)

	var req transactionRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}

	res, err := h.gw.Refund(id, req.Amount)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusCreated, toXMLTransaction(*res.Transaction))
}

// void handles PUT /transactions/{id}/void.
func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "transaction.id", id)

	res, err := h.gw.Void(id)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLTransaction(*res.Transaction))
}

// submitForSettlement handles PUT /transactions/{id}/submit_for_settlement.
func (h *Handler) submitForSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "transaction.id", id)

	var req transactionRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}

	res, err := h.gw.SubmitForSettlement(id, req.Amount)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLTransaction(*res.Transaction))
}
