package models

import (
	"encoding/json"
	"slices"
	"time"
)

// ListType distinguishes the single favorites list from user folders.
type ListType string

const (
	ListFavorites ListType = "favorites"
	ListCustom    ListType = "custom"
)

// FavoritesName is the fixed name of the favorites list.
const FavoritesName = "favorites"

// ListData is the plain serialized form of a List.
type ListData struct {
	ID        string    `json:"id" bson:"id"`
	Type      ListType  `json:"type" bson:"type"`
	Name      string    `json:"name" bson:"name"`
	ItemIDs   []string  `json:"itemIds" bson:"itemIds"`
	ParentID  string    `json:"parentId,omitempty" bson:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	Revision  string    `json:"revision,omitempty" bson:"-"`
}

// List is an ordered, duplicate-free set of entity ids. Custom lists double
// as folders.
type List struct {
	id        string
	listType  ListType
	name      string
	itemIDs   []string
	parentID  string
	createdAt time.Time
	updatedAt time.Time
	revision  string
}

// NewList builds an unpersisted list. Favorites lists ignore name.
func NewList(t ListType, name string) *List {
	ts := now()
	if t == ListFavorites {
		name = FavoritesName
	}
	return &List{
		id:        newID(),
		listType:  t,
		name:      name,
		itemIDs:   []string{},
		createdAt: ts,
		updatedAt: ts,
	}
}

// ListFromData rebuilds a list from its serialized form.
func ListFromData(d ListData) *List {
	name := d.Name
	if d.Type == ListFavorites {
		name = FavoritesName
	}
	items := make([]string, len(d.ItemIDs))
	copy(items, d.ItemIDs)
	return &List{
		id:        d.ID,
		listType:  d.Type,
		name:      name,
		itemIDs:   items,
		parentID:  d.ParentID,
		createdAt: normalize(d.CreatedAt),
		updatedAt: normalize(d.UpdatedAt),
		revision:  d.Revision,
	}
}

func (l *List) ID() string           { return l.id }
func (l *List) Type() ListType       { return l.listType }
func (l *List) Name() string         { return l.name }
func (l *List) ParentID() string     { return l.parentID }
func (l *List) CreatedAt() time.Time { return l.createdAt }
func (l *List) UpdatedAt() time.Time { return l.updatedAt }
func (l *List) Revision() string     { return l.revision }

// IsFolder reports whether the list is a user folder.
func (l *List) IsFolder() bool { return l.listType == ListCustom }

// ItemIDs returns a copy of the members in insertion order.
func (l *List) ItemIDs() []string {
	return slices.Clone(l.itemIDs)
}

// SetName renames a custom list. It is a no-op for favorites.
func (l *List) SetName(name string) {
	if l.listType != ListCustom {
		return
	}
	l.name = name
	l.touch()
}

// SetParentID nests the list under another list; empty means root.
func (l *List) SetParentID(parentID string) {
	l.parentID = parentID
	l.touch()
}

// AddItem appends id unless it is already a member.
func (l *List) AddItem(id string) {
	if l.HasItem(id) {
		return
	}
	l.itemIDs = append(l.itemIDs, id)
	l.touch()
}

// RemoveItem drops id if present.
func (l *List) RemoveItem(id string) {
	i := slices.Index(l.itemIDs, id)
	if i < 0 {
		return
	}
	l.itemIDs = slices.Delete(l.itemIDs, i, i+1)
	l.touch()
}

func (l *List) HasItem(id string) bool {
	return slices.Contains(l.itemIDs, id)
}

// ClearItems empties the list.
func (l *List) ClearItems() {
	l.itemIDs = []string{}
	l.touch()
}

func (l *List) touch() {
	l.updatedAt = now()
}

// Data returns the serialized form.
func (l *List) Data() ListData {
	return ListData{
		ID:        l.id,
		Type:      l.listType,
		Name:      l.name,
		ItemIDs:   l.ItemIDs(),
		ParentID:  l.parentID,
		CreatedAt: l.createdAt,
		UpdatedAt: l.updatedAt,
		Revision:  l.revision,
	}
}

// Clone returns an independent copy.
func (l *List) Clone() *List {
	return ListFromData(l.Data())
}

func (l *List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Data())
}

func (l *List) UnmarshalJSON(b []byte) error {
	var data ListData
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	*l = *ListFromData(data)
	return nil
}
