// Package backup exports the whole record table to a portable JSON snapshot
// and restores it again. Snapshots carry bodies only; revisions are issued
// fresh on import.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/store"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
)

// SnapshotVersion is written into every snapshot; Import rejects others.
const SnapshotVersion = 1

var ErrVersion = errors.New("backup: unsupported snapshot version")

// Snapshot is the exported form of the table.
type Snapshot struct {
	Version   int     `json:"version"`
	CreatedAt string  `json:"createdAt"`
	Records   []Entry `json:"records"`
}

// Entry is one record. Body is the stored JSON as is.
type Entry struct {
	Key  string          `json:"key"`
	Body json.RawMessage `json:"body"`
}

// Export reads every record in key order.
func Export(ctx context.Context, s kv.Store) ([]byte, error) {
	recs, err := s.Range(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	snap := Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: models.FormatTimestamp(time.Now()),
		Records:   make([]Entry, 0, len(recs)),
	}
	for _, r := range recs {
		if !json.Valid(r.Body) {
			return nil, fmt.Errorf("export %s: %w", r.Key, store.ErrSerialization)
		}
		snap.Records = append(snap.Records, Entry{Key: r.Key, Body: r.Body})
	}
	return json.Marshal(snap)
}

// Options control Import.
type Options struct {
	// Overwrite replaces records whose key already exists instead of failing.
	Overwrite bool
}

// Result counts what Import wrote.
type Result struct {
	Created  int
	Replaced int
}

// Import writes every record of data into s. Without Overwrite the first
// existing key stops the import with store.ErrConflict; records written
// before it stay.
func Import(ctx context.Context, s kv.Store, data []byte, opts Options) (Result, error) {
	var res Result
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return res, fmt.Errorf("import: %w: %v", store.ErrSerialization, err)
	}
	if snap.Version != SnapshotVersion {
		return res, fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}
	for _, e := range snap.Records {
		_, err := s.Put(ctx, &kv.Record{Key: e.Key, Body: e.Body})
		if err == nil {
			res.Created++
			continue
		}
		if !errors.Is(err, kv.ErrConflict) {
			return res, fmt.Errorf("import %s: %w", e.Key, err)
		}
		if !opts.Overwrite {
			return res, fmt.Errorf("import %s: %w", e.Key, store.ErrConflict)
		}
		cur, err := s.Get(ctx, e.Key)
		if err != nil {
			return res, fmt.Errorf("import %s: %w", e.Key, err)
		}
		if _, err := s.Put(ctx, &kv.Record{Key: e.Key, Rev: cur.Rev, Body: e.Body}); err != nil {
			return res, fmt.Errorf("import %s: %w", e.Key, err)
		}
		res.Replaced++
	}
	logger.Infof("import finished: %d created, %d replaced", res.Created, res.Replaced)
	return res, nil
}

// Stats summarizes the table.
type Stats struct {
	Records   int `json:"records"`
	Documents int `json:"documents"`
	Lists     int `json:"lists"`
}

// Info counts the records per namespace.
func Info(ctx context.Context, s kv.Store) (Stats, error) {
	recs, err := s.Range(ctx, "", "")
	if err != nil {
		return Stats{}, fmt.Errorf("info: %w", err)
	}
	st := Stats{Records: len(recs)}
	for _, r := range recs {
		if strings.HasPrefix(r.Key, store.ListPrefix) {
			st.Lists++
		} else {
			st.Documents++
		}
	}
	return st, nil
}

// Purge removes every record and returns how many were deleted. Records
// changed concurrently are skipped.
func Purge(ctx context.Context, s kv.Store) (int, error) {
	recs, err := s.Range(ctx, "", "")
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	n := 0
	for _, r := range recs {
		err := s.Remove(ctx, r.Key, r.Rev)
		switch {
		case err == nil:
			n++
		case errors.Is(err, kv.ErrNotFound), errors.Is(err, kv.ErrConflict):
			logger.Warnf("purge: skipped %s: %v", r.Key, err)
		default:
			return n, fmt.Errorf("purge %s: %w", r.Key, err)
		}
	}
	return n, nil
}
