package models

import (
	"strings"
	"time"
)

// Card networks as the gateway names them in the card-type field.
const (
	CardTypeVisa            = "Visa"
	CardTypeMasterCard      = "MasterCard"
	CardTypeAmericanExpress = "American Express"
	CardTypeDiscover        = "Discover"
	CardTypeJCB             = "JCB"
	CardTypeUnknown         = "Unknown"
)

// CreditCard is a vaulted payment method. Number is kept for the sandbox
// allow-list check and is never serialised.
type CreditCard struct {
	Token          string    `json:"token,omitempty"`
	CustomerID     string    `json:"customerId,omitempty"`
	Number         string    `json:"-"`
	BIN            string    `json:"bin"`
	Last4          string    `json:"last4"`
	MaskedNumber   string    `json:"maskedNumber"`
	CardType       string    `json:"cardType"`
	ExpirationDate string    `json:"expirationDate,omitempty"`
	CardholderName string    `json:"cardholderName,omitempty"`
	Default        bool      `json:"default"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SetNumber stores number and recomputes the masked fields derived from it.
func (c *CreditCard) SetNumber(number string) {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	c.Number = number
	c.CardType = CardTypeFor(number)
	c.BIN, c.Last4, c.MaskedNumber = "", "", ""
	if len(number) >= 6 {
		c.BIN = number[:6]
	}
	if len(number) >= 4 {
		c.Last4 = number[len(number)-4:]
	}
	if len(number) >= 10 {
		c.MaskedNumber = c.BIN + strings.Repeat("*", len(number)-10) + c.Last4
	}
}

// WellFormedNumber reports whether the stored number is 12 to 19 digits.
// It says nothing about whether the gateway will approve it.
func (c CreditCard) WellFormedNumber() bool {
	if len(c.Number) < 12 || len(c.Number) > 19 {
		return false
	}
	for _, r := range c.Number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExpirationMonth returns the MM part of an MM/YYYY expiration date.
func (c CreditCard) ExpirationMonth() string {
	m, _, _ := strings.Cut(c.ExpirationDate, "/")
	return m
}

// ExpirationYear returns the YYYY part of an MM/YYYY expiration date.
func (c CreditCard) ExpirationYear() string {
	_, y, _ := strings.Cut(c.ExpirationDate, "/")
	return y
}

// CardTypeFor guesses the network from the leading digits.
func CardTypeFor(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return CardTypeVisa
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return CardTypeMasterCard
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return CardTypeAmericanExpress
	case strings.HasPrefix(number, "6011"), strings.HasPrefix(number, "65"):
		return CardTypeDiscover
	case strings.HasPrefix(number, "35"):
		return CardTypeJCB
	}
	return CardTypeUnknown
}
