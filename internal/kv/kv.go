// Package kv defines the revisioned key-value contract the note stores are
// built on, together with its backends (memory, SQLite, Redis, MongoDB).
//
// Every record carries an opaque revision that changes on each successful
// write. Writers must present the revision they last read; a stale revision
// fails with ErrConflict.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("kv: not found")
	ErrConflict    = errors.New("kv: revision conflict")
	ErrUnavailable = errors.New("kv: backing store unavailable")
)

// HighSentinel is appended to a prefix to form the exclusive upper bound of a
// prefix range scan.
const HighSentinel = "￿"

// Record is one stored value.
type Record struct {
	Key  string
	Rev  string
	Body []byte
}

// Store is the backing database consumed by the entity stores.
type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (*Record, error)
	// Put creates the record when rec.Rev is empty and replaces it when
	// rec.Rev matches the stored revision. It returns the new revision.
	Put(ctx context.Context, rec *Record) (string, error)
	// Remove deletes key if rev is still current.
	Remove(ctx context.Context, key, rev string) error
	// Range returns records with start <= key < end ordered by key. An empty
	// end is unbounded.
	Range(ctx context.Context, start, end string) ([]*Record, error)
	Close() error
}

// PrefixEnd returns the exclusive upper bound for scanning prefix.
func PrefixEnd(prefix string) string {
	return prefix + HighSentinel
}

// NextRevision derives the revision that follows prev ("" for a new record).
// Revisions have the form "<generation>-<32 hex chars>".
func NextRevision(prev string) string {
	gen := 0
	if prev != "" {
		if head, _, ok := strings.Cut(prev, "-"); ok {
			gen, _ = strconv.Atoi(head)
		}
	}
	return fmt.Sprintf("%d-%s", gen+1, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func inRange(key, start, end string) bool {
	return key >= start && (end == "" || key < end)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

func copyRecord(r *Record) *Record {
	body := make([]byte, len(r.Body))
	copy(body, r.Body)
	return &Record{Key: r.Key, Rev: r.Rev, Body: body}
}
