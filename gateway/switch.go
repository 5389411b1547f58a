package gateway

import (
	"sync/atomic"

	"github.com/robertjwhitney/fake-braintree/models"
)

// Switch is the decline-all-cards failure mode. The zero value accepts cards.
type Switch struct {
	on atomic.Bool
}

// DeclineAll turns the failure mode on.
func (s *Switch) DeclineAll() { s.on.Store(true) }

// Reset turns the failure mode off.
func (s *Switch) Reset() { s.on.Store(false) }

// Declining reports whether the failure mode is on.
func (s *Switch) Declining() bool { return s.on.Load() }

// Approves reports whether a charge against number goes through: never while
// declining, otherwise only for sandbox numbers.
func (s *Switch) Approves(number string) bool {
	if s.Declining() {
		return false
	}
	return models.IsValidCreditCard(number)
}
