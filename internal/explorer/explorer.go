// Package explorer exposes folder semantics on top of the list store: a
// folder is a custom list, and its contents are the lists and documents whose
// parent is the folder.
package explorer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/store"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
)

// DefaultFolderName is used when a folder is created without a name.
const DefaultFolderName = "New Folder"

// ListStore is the subset of store.ListStore the explorer needs.
type ListStore interface {
	Create(ctx context.Context, l *models.List) (*models.List, error)
	Read(ctx context.Context, id string) (*models.List, error)
	Update(ctx context.Context, l *models.List) (*models.List, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*models.List, error)
	GetByParentID(ctx context.Context, parentID string) ([]*models.List, error)
}

// DocumentStore is the subset of store.DocumentStore the explorer needs.
type DocumentStore interface {
	GetByParentID(ctx context.Context, parentID string) ([]*models.Document, error)
}

// Explorer owns no storage; every call goes through the stores.
type Explorer struct {
	lists ListStore
	docs  DocumentStore
}

func New(lists ListStore, docs DocumentStore) *Explorer {
	return &Explorer{lists: lists, docs: docs}
}

// CreateFolder creates a root-level folder.
func (e *Explorer) CreateFolder(ctx context.Context, name string) (*models.List, error) {
	return e.CreateFolderIn(ctx, name, "")
}

// CreateFolderIn creates a folder under parentID ("" for the root).
func (e *Explorer) CreateFolderIn(ctx context.Context, name, parentID string) (*models.List, error) {
	if name == "" {
		name = DefaultFolderName
	}
	f := models.NewList(models.ListCustom, name)
	if parentID != "" {
		f.SetParentID(parentID)
	}
	saved, err := e.lists.Create(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	logger.Infof("folder created: %s (%s)", saved.Name(), saved.ID())
	return saved, nil
}

// ListFolders returns every custom list.
func (e *Explorer) ListFolders(ctx context.Context) ([]*models.List, error) {
	all, err := e.lists.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders(all), nil
}

// RenameFolder renames id. Favorites keep their fixed name.
func (e *Explorer) RenameFolder(ctx context.Context, id, name string) (*models.List, error) {
	f, err := e.lists.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("rename folder %s: %w", id, store.ErrNotFound)
	}
	f.SetName(name)
	updated, err := e.lists.Update(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}
	return updated, nil
}

// DeleteFolder removes id and reports whether it existed. Contents are not
// touched.
func (e *Explorer) DeleteFolder(ctx context.Context, id string) (bool, error) {
	ok, err := e.lists.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete folder: %w", err)
	}
	if ok {
		logger.Infof("folder deleted: %s", id)
	}
	return ok, nil
}

// Listing is the content of one folder.
type Listing struct {
	ParentID  string
	Folders   []*models.List
	Documents []*models.Document
}

// Items returns the listing as explorer rows, folders first.
func (l *Listing) Items() []Item {
	out := make([]Item, 0, len(l.Folders)+len(l.Documents))
	out = append(out, FolderItems(l.Folders)...)
	return append(out, DocumentItems(l.Documents)...)
}

// Contents returns the folders and documents directly under parentID ("" for
// the root). Both scans run concurrently.
func (e *Explorer) Contents(ctx context.Context, parentID string) (*Listing, error) {
	out := &Listing{ParentID: parentID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ls, err := e.lists.GetByParentID(gctx, parentID)
		if err != nil {
			return err
		}
		out.Folders = folders(ls)
		return nil
	})
	g.Go(func() error {
		ds, err := e.docs.GetByParentID(gctx, parentID)
		if err != nil {
			return err
		}
		out.Documents = ds
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("folder contents: %w", err)
	}
	return out, nil
}

// Walk visits the tree below parentID depth-first, calling fn with the depth
// of each item (0 for direct children). A folder already visited is not
// entered again.
func (e *Explorer) Walk(ctx context.Context, parentID string, fn func(depth int, item Item) error) error {
	return e.walk(ctx, parentID, 0, map[string]bool{parentID: true}, fn)
}

func (e *Explorer) walk(ctx context.Context, parentID string, depth int, seen map[string]bool, fn func(int, Item) error) error {
	listing, err := e.Contents(ctx, parentID)
	if err != nil {
		return err
	}
	for _, it := range listing.Items() {
		if err := fn(depth, it); err != nil {
			return err
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		// documents can parent other documents too
		if err := e.walk(ctx, it.ID, depth+1, seen, fn); err != nil {
			return err
		}
	}
	return nil
}

func folders(in []*models.List) []*models.List {
	out := make([]*models.List, 0, len(in))
	for _, l := range in {
		if l.IsFolder() {
			out = append(out, l)
		}
	}
	return out
}
