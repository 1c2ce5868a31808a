// Package store persists documents and lists in one revisioned key-value
// table. Documents live under their raw id, lists under ListPrefix + id.
//
// The stores hold no locks of their own. Concurrent writers to the same
// entity are serialized by the revision check of the backing store and the
// loser gets ErrConflict. Nothing is retried automatically.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/query"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/metrics"
)

// DocumentStore reads and writes documents.
type DocumentStore struct {
	kv kv.Store
}

func NewDocumentStore(s kv.Store) *DocumentStore {
	return &DocumentStore{kv: s}
}

// Create persists a new document and returns it as stored.
func (s *DocumentStore) Create(ctx context.Context, d *models.Document) (*models.Document, error) {
	if err := checkParent(ctx, s.kv, d.ID(), d.ParentID()); err != nil {
		return nil, opError("create", kindDocument, d.ID(), err)
	}
	body, err := encodeDocument(d)
	if err != nil {
		return nil, opError("create", kindDocument, d.ID(), ErrSerialization)
	}
	rev, err := s.kv.Put(ctx, &kv.Record{Key: d.ID(), Body: body})
	if err != nil {
		return nil, opError("create", kindDocument, d.ID(), err)
	}
	metrics.EntityWrites.WithLabelValues(kindDocument, "create").Inc()
	return decodeDocument(d.ID(), rev, body)
}

// Read returns nil, nil when id does not exist.
func (s *DocumentStore) Read(ctx context.Context, id string) (*models.Document, error) {
	if strings.HasPrefix(id, ListPrefix) {
		return nil, nil
	}
	rec, err := s.kv.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, opError("read", kindDocument, id, err)
	}
	d, err := decodeDocument(id, rec.Rev, rec.Body)
	if err != nil {
		return nil, opError("read", kindDocument, id, err)
	}
	return d, nil
}

// Update writes d over the stored document. The revision d was read at is
// the expected one; a document built without a revision is written over
// whatever revision is live.
func (s *DocumentStore) Update(ctx context.Context, d *models.Document) (*models.Document, error) {
	if err := checkParent(ctx, s.kv, d.ID(), d.ParentID()); err != nil {
		return nil, opError("update", kindDocument, d.ID(), err)
	}
	body, err := encodeDocument(d)
	if err != nil {
		return nil, opError("update", kindDocument, d.ID(), ErrSerialization)
	}
	rev, err := replace(ctx, s.kv, d.ID(), d.Revision(), body)
	if err != nil {
		return nil, opError("update", kindDocument, d.ID(), err)
	}
	metrics.EntityWrites.WithLabelValues(kindDocument, "update").Inc()
	return decodeDocument(d.ID(), rev, body)
}

// Delete removes id and reports whether it existed.
func (s *DocumentStore) Delete(ctx context.Context, id string) (bool, error) {
	if strings.HasPrefix(id, ListPrefix) {
		return false, nil
	}
	ok, err := remove(ctx, s.kv, id)
	if err != nil {
		return false, opError("delete", kindDocument, id, err)
	}
	if ok {
		metrics.EntityWrites.WithLabelValues(kindDocument, "delete").Inc()
	}
	return ok, nil
}

// List returns every document in key order.
func (s *DocumentStore) List(ctx context.Context) ([]*models.Document, error) {
	return s.scan(ctx, "list", func(*models.Document) bool { return true })
}

// GetByParentID returns the documents whose parent is exactly parentID. An
// empty parentID selects root-level documents.
func (s *DocumentStore) GetByParentID(ctx context.Context, parentID string) ([]*models.Document, error) {
	return s.scan(ctx, "getByParentId", func(d *models.Document) bool {
		return d.ParentID() == parentID
	})
}

// Search matches q case-insensitively against title or content.
func (s *DocumentStore) Search(ctx context.Context, q string) ([]*models.Document, error) {
	q = strings.ToLower(q)
	return s.scan(ctx, "search", func(d *models.Document) bool {
		return strings.Contains(strings.ToLower(d.Title()), q) ||
			strings.Contains(strings.ToLower(d.Content()), q)
	})
}

// Filter returns the documents p accepts.
func (s *DocumentStore) Filter(ctx context.Context, p *query.Program) ([]*models.Document, error) {
	var evalErr error
	out, err := s.scan(ctx, "filter", func(d *models.Document) bool {
		if evalErr != nil {
			return false
		}
		ok, err := p.MatchDocument(d)
		if err != nil {
			evalErr = err
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	if evalErr != nil {
		return nil, evalErr
	}
	return out, nil
}

func (s *DocumentStore) scan(ctx context.Context, op string, keep func(*models.Document) bool) ([]*models.Document, error) {
	recs, err := s.kv.Range(ctx, "", "")
	if err != nil {
		return nil, opError(op, kindDocument, "", err)
	}
	out := make([]*models.Document, 0, len(recs))
	for _, rec := range recs {
		if strings.HasPrefix(rec.Key, ListPrefix) {
			continue
		}
		d, err := decodeDocument(rec.Key, rec.Rev, rec.Body)
		if err != nil {
			return nil, opError(op, kindDocument, rec.Key, err)
		}
		if keep(d) {
			out = append(out, d)
		}
	}
	return out, nil
}
