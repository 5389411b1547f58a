package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/robertjwhitney/fake-braintree/store"
)

func newTestJournal(t *testing.T) *store.Journal {
	t.Helper()
	dir := t.TempDir()
	j, err := store.OpenJournal(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("failed to open test journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalListEmpty(t *testing.T) {
	j := newTestJournal(t)
	items, err := j.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(items))
	}
}

func TestJournalAppendKeepsOrder(t *testing.T) {
	j := newTestJournal(t)

	ops := []string{"sale", "find", "void", "settle"}
	for _, op := range ops {
		if _, err := j.Append(store.Entry{Operation: op, Kind: store.KindTransaction, Outcome: store.OutcomeSuccess}); err != nil {
			t.Fatalf("append %s: %v", op, err)
		}
	}

	items, err := j.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != len(ops) {
		t.Fatalf("expected %d entries, got %d", len(ops), len(items))
	}
	for i, e := range items {
		if e.Operation != ops[i] {
			t.Fatalf("entry %d: expected %q, got %q", i, ops[i], e.Operation)
		}
		if e.Seq != uint64(i+1) {
			t.Fatalf("entry %d: expected seq %d, got %d", i, i+1, e.Seq)
		}
	}
}

func TestJournalAppendStampsTime(t *testing.T) {
	j := newTestJournal(t)

	e, err := j.Append(store.Entry{Operation: "sale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Time.IsZero() {
		t.Fatal("expected time to be stamped")
	}

	at := time.Date(2012, 1, 2, 3, 4, 5, 0, time.UTC)
	e, err = j.Append(store.Entry{Operation: "sale", Time: at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Time.Equal(at) {
		t.Fatalf("expected supplied time %v, got %v", at, e.Time)
	}
}

func TestJournalClear(t *testing.T) {
	j := newTestJournal(t)

	_, _ = j.Append(store.Entry{Operation: "sale"})
	_, _ = j.Append(store.Entry{Operation: "refund"})

	if err := j.Clear(); err != nil {
		t.Fatalf("unexpected error on clear: %v", err)
	}
	items, err := j.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty journal after clear, got %d", len(items))
	}

	// Clearing twice must still succeed, and the sequence restarts.
	if err := j.Clear(); err != nil {
		t.Fatalf("unexpected error on second clear: %v", err)
	}
	e, err := j.Append(store.Entry{Operation: "sale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Seq != 1 {
		t.Fatalf("expected sequence to restart at 1, got %d", e.Seq)
	}
}

func TestJournalReopenStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	j, err := store.OpenJournal(path)
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	if j.Path() != path {
		t.Fatalf("expected path %q, got %q", path, j.Path())
	}
	if _, err := j.Append(store.Entry{Operation: "sale"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}

	j, err = store.OpenJournal(path)
	if err != nil {
		t.Fatalf("failed to reopen journal: %v", err)
	}
	defer j.Close()

	items, err := j.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected entries from the previous run to be dropped, got %d", len(items))
	}
	e, err := j.Append(store.Entry{Operation: "sale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Seq != 1 {
		t.Fatalf("expected sequence to restart at 1, got %d", e.Seq)
	}
}
