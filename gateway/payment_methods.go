package gateway

import (
	"slices"
	"strings"

	"github.com/robertjwhitney/fake-braintree/models"
	"github.com/robertjwhitney/fake-braintree/store"
)

// CreditCardUpdate carries the mutable card fields. Empty fields are left
// unchanged.
type CreditCardUpdate struct {
	Number         string
	ExpirationDate string
	CardholderName string
}

// CreateCreditCard vaults card. A customer id, if given, must exist; the
// customer's first card becomes its default.
func (g *Gateway) CreateCreditCard(card models.CreditCard) (models.CreditCard, error) {
	if card.CustomerID != "" {
		if _, err := g.registry.Customers.Find(card.CustomerID); err != nil {
			return models.CreditCard{}, g.recordErr("create", store.KindCreditCard, card.Token, err)
		}
		card.Default = len(g.cardsOf(card.CustomerID)) == 0
	}
	card = g.vault(card)

	g.log.Info("credit card vaulted", "token", card.Token, "customer_id", card.CustomerID)
	g.record("create", store.KindCreditCard, card.Token, "", store.OutcomeSuccess, card.MaskedNumber)
	return card, nil
}

// FindCreditCard returns the card vaulted under token.
func (g *Gateway) FindCreditCard(token string) (models.CreditCard, error) {
	card, err := g.registry.CreditCards.Find(token)
	if err != nil {
		return models.CreditCard{}, g.recordErr("find", store.KindCreditCard, token, err)
	}
	g.record("find", store.KindCreditCard, token, "", store.OutcomeSuccess, "")
	return card, nil
}

// UpdateCreditCard applies the non-empty fields of u.
func (g *Gateway) UpdateCreditCard(token string, u CreditCardUpdate) (models.CreditCard, error) {
	now := g.now()
	card, err := g.registry.CreditCards.Update(token, func(c *models.CreditCard) error {
		if u.Number != "" {
			c.SetNumber(u.Number)
		}
		if u.ExpirationDate != "" {
			c.ExpirationDate = u.ExpirationDate
		}
		if u.CardholderName != "" {
			c.CardholderName = u.CardholderName
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.CreditCard{}, g.recordErr("update", store.KindCreditCard, token, err)
	}
	g.record("update", store.KindCreditCard, token, "", store.OutcomeSuccess, "")
	return card, nil
}

// DeleteCreditCard removes the card vaulted under token.
func (g *Gateway) DeleteCreditCard(token string) error {
	if err := g.registry.CreditCards.Delete(token); err != nil {
		return g.recordErr("delete", store.KindCreditCard, token, err)
	}
	g.record("delete", store.KindCreditCard, token, "", store.OutcomeSuccess, "")
	return nil
}

// CustomerUpdate carries the mutable customer fields. Empty fields are left
// unchanged.
type CustomerUpdate struct {
	FirstName string
	LastName  string
	Company   string
	Email     string
	Phone     string
}

// CreateCustomer stores c. When card is non-nil it is verified like a
// sale: while declining, or for a non-sandbox number, nothing is stored and
// the result carries the decline.
func (g *Gateway) CreateCustomer(c models.Customer, card *models.CreditCard) (models.Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if card != nil {
		card.SetNumber(card.Number)
		if !card.WellFormedNumber() {
			g.record("create", store.KindCustomer, c.ID, "", store.OutcomeInvalid, "credit card number is invalid")
			return failed(WithValidationError("credit_card.number", models.CodeCreditCardNumberInvalid, "Credit card number is invalid.")), nil
		}
		if !g.declines.Approves(card.Number) {
			g.log.Info("customer card declined", "customer_id", c.ID, "declining", g.IsDeclining())
			g.record("create", store.KindCustomer, c.ID, "", store.OutcomeDeclined, card.MaskedNumber)
			return failed(), nil
		}
	}

	now := g.now()
	if c.ID == "" {
		c.ID = g.newID()
	}
	c.CreatedAt, c.UpdatedAt = now, now
	c.CreditCards = nil
	g.registry.Customers.Insert(c.ID, c)

	if card != nil {
		card.CustomerID = c.ID
		card.Default = true
		g.vault(*card)
	}
	c.CreditCards = g.cardsOf(c.ID)

	g.log.Info("customer created", "customer_id", c.ID)
	g.record("create", store.KindCustomer, c.ID, "", store.OutcomeSuccess, "")
	return models.Result{Success: true, Customer: &c}, nil
}

// FindCustomer returns the customer with its vaulted cards.
func (g *Gateway) FindCustomer(id string) (models.Customer, error) {
	c, err := g.registry.Customers.Find(id)
	if err != nil {
		return models.Customer{}, g.recordErr("find", store.KindCustomer, id, err)
	}
	c.CreditCards = g.cardsOf(id)
	g.record("find", store.KindCustomer, id, "", store.OutcomeSuccess, "")
	return c, nil
}

// UpdateCustomer applies the non-empty fields of u.
func (g *Gateway) UpdateCustomer(id string, u CustomerUpdate) (models.Customer, error) {
	now := g.now()
	c, err := g.registry.Customers.Update(id, func(c *models.Customer) error {
		setIf(&c.FirstName, u.FirstName)
		setIf(&c.LastName, u.LastName)
		setIf(&c.Company, u.Company)
		setIf(&c.Email, u.Email)
		setIf(&c.Phone, u.Phone)
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Customer{}, g.recordErr("update", store.KindCustomer, id, err)
	}
	c.CreditCards = g.cardsOf(id)
	g.record("update", store.KindCustomer, id, "", store.OutcomeSuccess, "")
	return c, nil
}

// DeleteCustomer removes the customer and its vaulted cards.
func (g *Gateway) DeleteCustomer(id string) error {
	if err := g.registry.Customers.Delete(id); err != nil {
		return g.recordErr("delete", store.KindCustomer, id, err)
	}
	for _, card := range g.cardsOf(id) {
		_ = g.registry.CreditCards.Delete(card.Token)
	}
	g.record("delete", store.KindCustomer, id, "", store.OutcomeSuccess, "")
	return nil
}

func (g *Gateway) vault(card models.CreditCard) models.CreditCard {
	now := g.now()
	if card.Token == "" {
		card.Token = g.newID()
	}
	card.SetNumber(card.Number)
	card.CreatedAt, card.UpdatedAt = now, now
	g.registry.CreditCards.Insert(card.Token, card)
	return card
}

// cardsOf returns the customer's cards, default card first, then oldest
// first with the token breaking ties.
func (g *Gateway) cardsOf(customerID string) []models.CreditCard {
	cards := []models.CreditCard{}
	for _, c := range g.registry.CreditCards.All() {
		if c.CustomerID == customerID {
			cards = append(cards, c)
		}
	}
	slices.SortFunc(cards, func(a, b models.CreditCard) int {
		if a.Default != b.Default {
			if a.Default {
				return -1
			}
			return 1
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Token, b.Token)
	})
	return cards
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
