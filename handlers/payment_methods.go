package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robertjwhitney/fake-braintree/gateway"
	"github.com/robertjwhitney/fake-braintree/models"
)

func (h *Handler) createCreditCard(w http.ResponseWriter, r *http.Request) {
	var req creditCardRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}

	card, err := h.gw.CreateCreditCard(req.model())
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	annotate(r, "credit_card.token", card.Token)
	writeXML(w, http.StatusCreated, toXMLCreditCard(card))
}

func (h *Handler) findCreditCard(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	annotate(r, "credit_card.token", token)

	card, err := h.gw.FindCreditCard(token)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLCreditCard(card))
}

func (h *Handler) updateCreditCard(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	annotate(r, "credit_card.token", token)

	var req creditCardRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}

	card, err := h.gw.UpdateCreditCard(token, gateway.CreditCardUpdate{
		Number:         req.Number,
		ExpirationDate: req.expirationDate(),
		CardholderName: req.CardholderName,
	})
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLCreditCard(card))
}

func (h *Handler) deleteCreditCard(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	annotate(r, "credit_card.token", token)

	if err := h.gw.DeleteCreditCard(token); err != nil {
		h.writeGatewayError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// createCustomer handles POST /customers. A card in the body is verified and
// a decline rejects the whole customer with 422.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}

	var card *models.CreditCard
	if req.CreditCard != nil {
		c := req.CreditCard.model()
		card = &c
	}
	res, err := h.gw.CreateCustomer(models.Customer{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
	}, card)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	if !res.Success {
		writeFailure(w, res)
		return
	}
	annotate(r, "customer.id", res.Customer.ID)
	writeXML(w, http.StatusCreated, toXMLCustomer(*res.Customer))
}

func (h *Handler) findCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "customer.id", id)

	c, err := h.gw.FindCustomer(id)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLCustomer(c))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "customer.id", id)

	var req customerRequest
	if err := readXML(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML body")
		return
	}

	c, err := h.gw.UpdateCustomer(id, gateway.CustomerUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeXML(w, http.StatusOK, toXMLCustomer(c))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "customer.id", id)

	if err := h.gw.DeleteCustomer(id); err != nil {
		h.writeGatewayError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
