package explorer

import "github.com/manuscriptos/manuscript/backend/go-services/internal/models"

type ItemKind string

const (
	KindList     ItemKind = "list"
	KindDocument ItemKind = "document"
)

// Item is one row of the explorer view.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     ItemKind `json:"kind"`
	IsFolder bool     `json:"isFolder"`
}

// FolderItems converts lists to rows. Unnamed lists show as "Untitled List".
func FolderItems(lists []*models.List) []Item {
	out := make([]Item, 0, len(lists))
	for _, l := range lists {
		name := l.Name()
		if name == "" {
			name = "Untitled List"
		}
		out = append(out, Item{ID: l.ID(), Name: name, Kind: KindList, IsFolder: true})
	}
	return out
}

// DocumentItems converts documents to rows. Untitled documents show as
// "Untitled Document".
func DocumentItems(docs []*models.Document) []Item {
	out := make([]Item, 0, len(docs))
	for _, d := range docs {
		name := d.Title()
		if name == "" {
			name = "Untitled Document"
		}
		out = append(out, Item{ID: d.ID(), Name: name, Kind: KindDocument})
	}
	return out
}
