package models

import "time"

// Customer owns zero or more vaulted credit cards.
type Customer struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty"`
	Company     string       `json:"company,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	CreditCards []CreditCard `json:"creditCards"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Clone returns a copy that does not share the card slice.
func (c Customer) Clone() Customer {
	c.CreditCards = append([]CreditCard(nil), c.CreditCards...)
	return c
}
