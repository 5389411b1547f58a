// Package gateway is the fake payment gateway itself: the handle that owns the
// entity registry, the decline-all-cards switch, the clock and the log state,
// and the operations the HTTP layer maps wire requests onto.
//
// One Gateway stands in for the whole remote service. Tests call Clear between
// cases so that no registry entries, switch state or log lines leak across.
package gateway

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robertjwhitney/fake-braintree/store"
)

// Journal records every operation the gateway performs.
type Journal interface {
	Append(e store.Entry) (store.Entry, error)
	List() ([]store.Entry, error)
	Clear() error
}

// LogFile is the truncatable file the gateway logger writes to.
type LogFile interface {
	Clear() error
}

// Gateway holds all state of one fake gateway.
type Gateway struct {
	// mu is held for writing by Clear and for reading by every operation
	// that consults the decline switch, so a charge decided before a Clear
	// cannot be stored after it.
	mu sync.RWMutex

	log      *slog.Logger
	registry *store.Registry
	declines Switch
	now      func() time.Time
	newID    func() string
	journal  Journal
	logFile  LogFile
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// WithClock replaces time.Now, letting tests freeze time.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithIDs replaces the identifier source.
func WithIDs(newID func() string) Option {
	return func(g *Gateway) { g.newID = newID }
}

// WithJournal records every operation in j.
func WithJournal(j Journal) Option {
	return func(g *Gateway) { g.journal = j }
}

// WithLogFile makes ClearLog truncate f.
func WithLogFile(f LogFile) Option {
	return func(g *Gateway) { g.logFile = f }
}

// New returns a gateway with an empty registry that accepts sandbox cards.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		registry: store.NewRegistry(),
		now:      time.Now,
		newID:    NewID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewID returns a process-unique identifier in the gateway's alphanumeric
// style.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Registry exposes the underlying store so tests can inspect state directly.
func (g *Gateway) Registry() *store.Registry {
	return g.registry
}

// DeclineAllCards makes every subsequent charge fail until Clear.
func (g *Gateway) DeclineAllCards() {
	g.declines.DeclineAll()
	g.log.Info("declining all cards")
}

// IsDeclining reports whether DeclineAllCards is in effect.
func (g *Gateway) IsDeclining() bool {
	return g.declines.Declining()
}

// Clear resets the gateway to its initial state: the registry is emptied, the
// decline switch is turned off, and the log file and journal are truncated.
// Registry and switch are always reset; an error only reports log state that
// could not be cleared.
func (g *Gateway) Clear() error {
	g.mu.Lock()
	g.declines.Reset()
	g.registry.Clear()
	g.mu.Unlock()

	var errs []error
	if err := g.ClearLog(); err != nil {
		errs = append(errs, err)
	}
	if g.journal != nil {
		if err := g.journal.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearLog truncates the gateway log file, if one is configured.
func (g *Gateway) ClearLog() error {
	if g.logFile == nil {
		return nil
	}
	return g.logFile.Clear()
}

// Journal returns the recorded operations, oldest first.
func (g *Gateway) Journal() ([]store.Entry, error) {
	if g.journal == nil {
		return []store.Entry{}, nil
	}
	return g.journal.List()
}

// Stats summarises the gateway state.
type Stats struct {
	Declining     bool `json:"declining"`
	Transactions  int  `json:"transactions"`
	CreditCards   int  `json:"creditCards"`
	Customers     int  `json:"customers"`
	Subscriptions int  `json:"subscriptions"`
}

// Stats returns the switch state and the number of stored entities per kind.
func (g *Gateway) Stats() Stats {
	return Stats{
		Declining:     g.IsDeclining(),
		Transactions:  g.registry.Transactions.Len(),
		CreditCards:   g.registry.CreditCards.Len(),
		Customers:     g.registry.Customers.Len(),
		Subscriptions: g.registry.Subscriptions.Len(),
	}
}

func (g *Gateway) record(op, kind, id, amount string, outcome store.Outcome, msg string) {
	if g.journal == nil {
		return
	}
	_, err := g.journal.Append(store.Entry{
		Operation: op,
		Kind:      kind,
		EntityID:  id,
		Amount:    amount,
		Outcome:   outcome,
		Message:   msg,
		Time:      g.now().UTC(),
	})
	if err != nil {
		g.log.Error("journal append failed", "operation", op, "err", err)
	}
}

// recordErr journals a failed lookup and passes err through unchanged.
func (g *Gateway) recordErr(op, kind, id string, err error) error {
	outcome := store.OutcomeInvalid
	if errors.Is(err, store.ErrNotFound) {
		outcome = store.OutcomeNotFound
	}
	g.record(op, kind, id, "", outcome, err.Error())
	return err
}
