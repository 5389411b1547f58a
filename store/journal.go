// Package store holds the gateway's state: the in-memory Registry of payment
// entities and a BoltDB-backed Journal of the requests the gateway served.
//
// The Registry is process-lifetime only. The Journal lives in a single Bolt
// file so a developer can inspect what a test run sent after the fact; it is
// emptied together with the Registry on every clear.
package store

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "github.com/boltdb/bolt"
)

const journalBucket = "journal"

// Outcome classifies how the gateway answered a request.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDeclined Outcome = "declined"
	OutcomeNotFound Outcome = "not_found"
	OutcomeInvalid  Outcome = "invalid"
)

// Entry is one journal record.
type Entry struct {
	Seq       uint64    `json:"seq"`
	Operation string    `json:"operation"`
	Kind      string    `json:"kind"`
	EntityID  string    `json:"entityId,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Message   string    `json:"message,omitempty"`
	Time      time.Time `json:"time"`
}

// Journal wraps a BoltDB database holding Entries in insertion order.
type Journal struct {
	db *bolt.DB
}

// OpenJournal opens (or creates) a BoltDB database at path with an empty
// journal bucket. Entries left by an earlier process are dropped so the
// journal never outlives the registry it describes.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	j := &Journal{db: db}
	if err := j.Clear(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the database file lock.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the file backing the journal.
func (j *Journal) Path() string {
	return j.db.Path()
}

// Append stores e under the next sequence number and returns it with Seq set.
func (j *Journal) Append(e Entry) (Entry, error) {
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(journalBucket))

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		e.Seq = seq
		if e.Time.IsZero() {
			e.Time = time.Now().UTC()
		}

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns every entry, oldest first.
func (j *Journal) List() ([]Entry, error) {
	var items []Entry

	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(journalBucket))
		return b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			items = append(items, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []Entry{}
	}
	return items, nil
}

// Clear drops every entry and restarts the sequence.
func (j *Journal) Clear() error {
	return j.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(journalBucket)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket([]byte(journalBucket))
		return err
	})
}

// seqKey encodes seq big-endian so Bolt's byte ordering matches insertion
// order.
func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
