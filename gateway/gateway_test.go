package gateway_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robertjwhitney/fake-braintree/gateway"
	"github.com/robertjwhitney/fake-braintree/logging"
	"github.com/robertjwhitney/fake-braintree/models"
	"github.com/robertjwhitney/fake-braintree/store"
)

var frozen = time.Date(2012, 6, 15, 12, 30, 0, 0, time.UTC)

type testEnv struct {
	gw      *gateway.Gateway
	logFile *logging.File
	journal *store.Journal
}

func newTestGateway(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	lf, err := logging.OpenFile(filepath.Join(dir, "tmp", "log"))
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	t.Cleanup(func() { lf.Close() })

	j, err := store.OpenJournal(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })

	gw := gateway.New(
		gateway.WithLogger(logging.New(lf, logging.ParseLevel("info"))),
		gateway.WithClock(func() time.Time { return frozen }),
		gateway.WithLogFile(lf),
		gateway.WithJournal(j),
	)
	return &testEnv{gw: gw, logFile: lf, journal: j}
}

// ccToken vaults a sandbox card and returns its token.
func ccToken(t *testing.T, gw *gateway.Gateway) string {
	t.Helper()
	card, err := gw.CreateCreditCard(models.CreditCard{Number: "4111111111111111", ExpirationDate: "04/2016"})
	if err != nil {
		t.Fatalf("failed to vault card: %v", err)
	}
	return card.Token
}

func createSale(t *testing.T, gw *gateway.Gateway, token, amount string) models.Result {
	t.Helper()
	res, err := gw.Sale(gateway.SaleRequest{PaymentMethodToken: token, Amount: amount})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	return res
}

func TestDeclineAllCards(t *testing.T) {
	env := newTestGateway(t)
	token := ccToken(t, env.gw)
	env.gw.DeclineAllCards()

	if !env.gw.IsDeclining() {
		t.Fatal("expected gateway to be declining")
	}
	if res := createSale(t, env.gw, token, "10.00"); res.Success {
		t.Fatal("expected sale to be declined")
	}
}

func TestClearStopsDeclining(t *testing.T) {
	env := newTestGateway(t)
	env.gw.DeclineAllCards()

	if err := env.gw.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if env.gw.IsDeclining() {
		t.Fatal("expected switch to be reset by clear")
	}

	token := ccToken(t, env.gw)
	if res := createSale(t, env.gw, token, "10.00"); !res.Success {
		t.Fatalf("expected sale to succeed after clear, got %+v", res.Errors)
	}
}

func TestClearDuringConcurrentSales(t *testing.T) {
	gw := gateway.New()
	gw.DeclineAllCards()

	var (
		wg      sync.WaitGroup
		stop    = make(chan struct{})
		started = make(chan struct{}, 8)
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, _ = gw.Sale(gateway.SaleRequest{
					Amount:     "1.00",
					CreditCard: models.CreditCard{Number: "4111111111111111"},
				})
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-started
	}
	time.Sleep(10 * time.Millisecond)

	if err := gw.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	close(stop)
	wg.Wait()

	// The switch stays off after Clear, so any declined sale still on record
	// was decided before Clear and stored after it.
	for _, tx := range gw.Registry().Transactions.All() {
		if tx.Status.Declined() {
			t.Fatalf("declined transaction %s survived clear", tx.ID)
		}
	}
}

func TestClearEmptiesRegistryLogAndJournal(t *testing.T) {
	env := newTestGateway(t)
	token := ccToken(t, env.gw)
	res := createSale(t, env.gw, token, "10.00")

	if err := env.gw.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if n := env.gw.Registry().Len(); n != 0 {
		t.Fatalf("expected empty registry, got %d entities", n)
	}
	if _, err := env.gw.Find(res.Transaction.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}

	// The failed find above was journaled after the clear.
	entries, err := env.gw.Journal()
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 1 || entries[0].Outcome != store.OutcomeNotFound {
		t.Fatalf("expected only the post-clear lookup in the journal, got %+v", entries)
	}

	data, err := os.ReadFile(env.logFile.Path())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "sale created") {
		t.Fatalf("expected log to be cleared, got %q", data)
	}
}

func TestClearLog(t *testing.T) {
	env := newTestGateway(t)
	env.gw.DeclineAllCards()

	data, _ := os.ReadFile(env.logFile.Path())
	if len(data) == 0 {
		t.Fatal("expected something in the log before clearing")
	}
	if err := env.gw.ClearLog(); err != nil {
		t.Fatalf("ClearLog failed: %v", err)
	}
	data, _ = os.ReadFile(env.logFile.Path())
	if string(data) != "" {
		t.Fatalf("expected empty log, got %q", data)
	}
	if !env.gw.IsDeclining() {
		t.Fatal("ClearLog must not reset the switch")
	}
}

func TestValidCreditCards(t *testing.T) {
	want := []string{
		"4111111111111111", "4005519200000004",
		"4009348888881881", "4012000033330026",
		"4012000077777777", "4012888888881881",
		"4217651111111119", "4500600000000061",
		"5555555555554444", "378282246310005",
		"371449635398431", "6011111111111117",
		"3530111333300000",
	}
	got := append([]string(nil), models.ValidCreditCards...)
	sort.Strings(got)
	sort.Strings(want)

	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("sandbox cards mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestStats(t *testing.T) {
	env := newTestGateway(t)
	token := ccToken(t, env.gw)
	createSale(t, env.gw, token, "10.00")
	env.gw.DeclineAllCards()

	s := env.gw.Stats()
	if !s.Declining || s.Transactions != 1 || s.CreditCards != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gateway.NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		if strings.Contains(id, "-") {
			t.Fatalf("id should be alphanumeric, got %q", id)
		}
		seen[id] = true
	}
}
