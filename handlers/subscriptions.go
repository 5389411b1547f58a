package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robertjwhitney/fake-braintree/gateway"
	"github.com/robertjwhitney/fake-braintree/models"
)

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}
	var first time.Time
	if req.FirstBillingDate != "" {
		d, err := time.Parse(models.DateLayout, req.FirstBillingDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid first-billing-date")
			return
		}
		first = d
	}

	res, err := h.gw.CreateSubscription(gateway.SubscriptionRequest{
		ID:                    req.ID,
		PlanID:                req.PlanID,
		PaymentMethodToken:    req.PaymentMethodToken,
		Price:                 req.Price,
		NumberOfBillingCycles: req.NumberOfBillingCycles,
		FirstBillingDate:      first,
	})
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	if !res.Success {
		writeFailure(w, res)
		return
	}
	annotate(r, "subscription.id", res.Subscription.ID)
	writeXML(w, http.StatusCreated, toXMLSubscription(*res.Subscription))
}

func (h *Handler) findSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "subscription.id", id)

	sub, err := h.gw.FindSubscription(id)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLSubscription(sub))
}

func (h *Handler) updateSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "subscription.id", id)

	var req subscriptionRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}

	sub, err := h.gw.UpdateSubscription(id, gateway.SubscriptionUpdate{
		PlanID:                req.PlanID,
		PaymentMethodToken:    req.PaymentMethodToken,
		Price:                 req.Price,
		NumberOfBillingCycles: req.NumberOfBillingCycles,
	})
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLSubscription(sub))
}

// cancelSubscription handles PUT /subscriptions/{id}/cancel. Canceling a
// canceled subscription is a 422, not a no-op.
func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "subscription.id", id)

	res, err := h.gw.CancelSubscription(id)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	if !res.Success {
		writeFailure(w, res)
		return
	}
	writeXML(w, http.StatusOK, toXMLSubscription(*res.Subscription))
}
