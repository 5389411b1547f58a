package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robertjwhitney/fake-braintree/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Entity kinds, used to partition the registry and in error messages.
const (
	KindTransaction  = "transaction"
	KindCreditCard   = "credit card"
	KindCustomer     = "customer"
	KindSubscription = "subscription"
)

// Registry is the in-memory store for every entity the gateway has created.
// All partitions share one lock, so Clear is atomic across kinds.
//
// Insert overwrites an existing record with the same id. Ids are generated,
// and overwriting keeps re-creation in tests idempotent.
type Registry struct {
	mu sync.RWMutex

	Transactions  *Partition[models.Transaction]
	CreditCards   *Partition[models.CreditCard]
	Customers     *Partition[models.Customer]
	Subscriptions *Partition[models.Subscription]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Transactions = newPartition(&r.mu, KindTransaction, models.Transaction.Clone)
	r.CreditCards = newPartition[models.CreditCard](&r.mu, KindCreditCard, nil)
	r.Customers = newPartition(&r.mu, KindCustomer, models.Customer.Clone)
	r.Subscriptions = newPartition(&r.mu, KindSubscription, models.Subscription.Clone)
	return r
}

// Clear empties every partition.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Transactions.reset()
	r.CreditCards.reset()
	r.Customers.reset()
	r.Subscriptions.reset()
}

// Len returns the total number of stored entities.
func (r *Registry) Len() int {
	return r.Transactions.Len() + r.CreditCards.Len() + r.Customers.Len() + r.Subscriptions.Len()
}

// Settle moves a transaction to settled. The new history head carries the
// transaction's existing amount.
func (r *Registry) Settle(id string, at time.Time) (models.Transaction, error) {
	return r.transition(id, models.StatusSettled, at)
}

// Void moves a transaction to voided.
func (r *Registry) Void(id string, at time.Time) (models.Transaction, error) {
	return r.transition(id, models.StatusVoided, at)
}

// SubmitForSettlement moves a transaction to submitted_for_settlement. A
// non-empty amount replaces the authorized amount first, as a partial
// capture would.
func (r *Registry) SubmitForSettlement(id, amount string, at time.Time) (models.Transaction, error) {
	return r.Transactions.Update(id, func(t *models.Transaction) error {
		if amount != "" {
			t.Amount = amount
		}
		t.Transition(models.StatusSubmittedForSettlement, at)
		return nil
	})
}

// Refund records refundID against the original transaction. The refund
// itself is a separate credit transaction stored by the caller.
func (r *Registry) Refund(id, refundID string, at time.Time) (models.Transaction, error) {
	return r.Transactions.Update(id, func(t *models.Transaction) error {
		t.RefundIDs = append(t.RefundIDs, refundID)
		t.UpdatedAt = at
		return nil
	})
}

func (r *Registry) transition(id string, status models.Status, at time.Time) (models.Transaction, error) {
	return r.Transactions.Update(id, func(t *models.Transaction) error {
		t.Transition(status, at)
		return nil
	})
}

// Partition maps id to record for one entity kind.
type Partition[T any] struct {
	mu      *sync.RWMutex
	kind    string
	clone   func(T) T
	records map[string]T
}

func newPartition[T any](mu *sync.RWMutex, kind string, clone func(T) T) *Partition[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Partition[T]{mu: mu, kind: kind, clone: clone, records: make(map[string]T)}
}

func (p *Partition[T]) reset() {
	p.records = make(map[string]T)
}

func (p *Partition[T]) notFound(id string) error {
	return fmt.Errorf("%s %q: %w", p.kind, id, ErrNotFound)
}

// Insert stores record under id, replacing any previous record.
func (p *Partition[T]) Insert(id string, record T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[id] = p.clone(record)
}

// Find returns a copy of the record stored under id.
func (p *Partition[T]) Find(id string) (T, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.records[id]
	if !ok {
		var zero T
		return zero, p.notFound(id)
	}
	return p.clone(v), nil
}

// Update applies mutate to the stored record in place. If mutate returns an
// error the record is left unchanged.
func (p *Partition[T]) Update(id string, mutate func(*T) error) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	v, ok := p.records[id]
	if !ok {
		return zero, p.notFound(id)
	}
	v = p.clone(v)
	if err := mutate(&v); err != nil {
		return zero, err
	}
	p.records[id] = v
	return p.clone(v), nil
}

// Delete removes the record stored under id.
func (p *Partition[T]) Delete(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.records[id]; !ok {
		return p.notFound(id)
	}
	delete(p.records, id)
	return nil
}

// All returns copies of every record in no particular order. It returns an
// empty slice rather than nil so JSON encodes [] instead of null.
func (p *Partition[T]) All() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]T, 0, len(p.records))
	for _, v := range p.records {
		out = append(out, p.clone(v))
	}
	return out
}

// Len returns the number of stored records.
func (p *Partition[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records)
}
