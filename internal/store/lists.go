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

// ListStore reads and writes lists. Ids passed in and returned never carry
// ListPrefix.
type ListStore struct {
	kv kv.Store
}

func NewListStore(s kv.Store) *ListStore {
	return &ListStore{kv: s}
}

// Create persists a new list and returns it as stored.
func (s *ListStore) Create(ctx context.Context, l *models.List) (*models.List, error) {
	if err := checkParent(ctx, s.kv, l.ID(), l.ParentID()); err != nil {
		return nil, opError("create", kindList, l.ID(), err)
	}
	body, err := encodeList(l)
	if err != nil {
		return nil, opError("create", kindList, l.ID(), ErrSerialization)
	}
	rev, err := s.kv.Put(ctx, &kv.Record{Key: listKey(l.ID()), Body: body})
	if err != nil {
		return nil, opError("create", kindList, l.ID(), err)
	}
	metrics.EntityWrites.WithLabelValues(kindList, "create").Inc()
	return decodeList(l.ID(), rev, body)
}

// Read returns nil, nil when id does not exist.
func (s *ListStore) Read(ctx context.Context, id string) (*models.List, error) {
	rec, err := s.kv.Get(ctx, listKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, opError("read", kindList, id, err)
	}
	l, err := decodeList(id, rec.Rev, rec.Body)
	if err != nil {
		return nil, opError("read", kindList, id, err)
	}
	return l, nil
}

// Update writes the full state of l, parentId included, over the stored
// list. Revision handling matches DocumentStore.Update.
func (s *ListStore) Update(ctx context.Context, l *models.List) (*models.List, error) {
	if err := checkParent(ctx, s.kv, l.ID(), l.ParentID()); err != nil {
		return nil, opError("update", kindList, l.ID(), err)
	}
	body, err := encodeList(l)
	if err != nil {
		return nil, opError("update", kindList, l.ID(), ErrSerialization)
	}
	rev, err := replace(ctx, s.kv, listKey(l.ID()), l.Revision(), body)
	if err != nil {
		return nil, opError("update", kindList, l.ID(), err)
	}
	metrics.EntityWrites.WithLabelValues(kindList, "update").Inc()
	return decodeList(l.ID(), rev, body)
}

// Delete removes the list and reports whether it existed. Members and
// children are left in place.
func (s *ListStore) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := remove(ctx, s.kv, listKey(id))
	if err != nil {
		return false, opError("delete", kindList, id, err)
	}
	if ok {
		metrics.EntityWrites.WithLabelValues(kindList, "delete").Inc()
	}
	return ok, nil
}

// List returns every list in id order.
func (s *ListStore) List(ctx context.Context) ([]*models.List, error) {
	return s.scan(ctx, "list", func(*models.List) bool { return true })
}

// GetByParentID returns the lists whose parent is exactly parentID. An empty
// parentID selects root-level lists.
func (s *ListStore) GetByParentID(ctx context.Context, parentID string) ([]*models.List, error) {
	return s.scan(ctx, "getByParentId", func(l *models.List) bool {
		return l.ParentID() == parentID
	})
}

// Search matches q case-insensitively against the name.
func (s *ListStore) Search(ctx context.Context, q string) ([]*models.List, error) {
	q = strings.ToLower(q)
	return s.scan(ctx, "search", func(l *models.List) bool {
		return strings.Contains(strings.ToLower(l.Name()), q)
	})
}

// Filter returns the lists p accepts.
func (s *ListStore) Filter(ctx context.Context, p *query.Program) ([]*models.List, error) {
	var evalErr error
	out, err := s.scan(ctx, "filter", func(l *models.List) bool {
		if evalErr != nil {
			return false
		}
		ok, err := p.MatchList(l)
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

// Favorites returns the favorites list, creating it on first use. If several
// exist the first in id order wins.
func (s *ListStore) Favorites(ctx context.Context) (*models.List, error) {
	found, err := s.scan(ctx, "favorites", func(l *models.List) bool {
		return l.Type() == models.ListFavorites
	})
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return found[0], nil
	}
	return s.Create(ctx, models.NewList(models.ListFavorites, ""))
}

func (s *ListStore) scan(ctx context.Context, op string, keep func(*models.List) bool) ([]*models.List, error) {
	recs, err := s.kv.Range(ctx, ListPrefix, kv.PrefixEnd(ListPrefix))
	if err != nil {
		return nil, opError(op, kindList, "", err)
	}
	out := make([]*models.List, 0, len(recs))
	for _, rec := range recs {
		id := strings.TrimPrefix(rec.Key, ListPrefix)
		l, err := decodeList(id, rec.Rev, rec.Body)
		if err != nil {
			return nil, opError(op, kindList, id, err)
		}
		if keep(l) {
			out = append(out, l)
		}
	}
	return out, nil
}
