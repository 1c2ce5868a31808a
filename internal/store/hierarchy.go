package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

// parentOf returns the stored parent of id, looking at lists first and then
// documents. found is false when id names nothing.
func parentOf(ctx context.Context, s kv.Store, id string) (parent string, found bool, err error) {
	for _, key := range []string{listKey(id), id} {
		rec, err := s.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", false, err
		}
		var p struct {
			ParentID string `json:"parentId"`
		}
		// an unreadable body ends the walk like a missing parent
		if err := json.Unmarshal(rec.Body, &p); err != nil {
			return "", true, nil
		}
		return p.ParentID, true, nil
	}
	return "", false, nil
}

// checkParent fails with ErrCycle when giving id the parent parentID would
// make id its own ancestor. Dangling parents are accepted.
func checkParent(ctx context.Context, s kv.Store, id, parentID string) error {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id {
			return ErrCycle
		}
		// a cycle above id that does not include it was stored earlier
		if seen[cur] {
			return nil
		}
		seen[cur] = true
		next, found, err := parentOf(ctx, s, cur)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		cur = next
	}
	return nil
}

// replace writes body over key at the expected revision. An empty rev means
// the caller never read the record, so the live revision is fetched first.
// A conflict against a record that has since disappeared is reported as
// not found.
func replace(ctx context.Context, s kv.Store, key, rev string, body []byte) (string, error) {
	if rev == "" {
		cur, err := s.Get(ctx, key)
		if err != nil {
			return "", err
		}
		rev = cur.Rev
	}
	newRev, err := s.Put(ctx, &kv.Record{Key: key, Rev: rev, Body: body})
	if errors.Is(err, kv.ErrConflict) {
		if _, gerr := s.Get(ctx, key); errors.Is(gerr, kv.ErrNotFound) {
			return "", kv.ErrNotFound
		}
	}
	return newRev, err
}

// remove deletes key at its live revision. It reports false when the key is
// already gone.
func remove(ctx context.Context, s kv.Store, key string) (bool, error) {
	cur, err := s.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = s.Remove(ctx, key, cur.Rev)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
