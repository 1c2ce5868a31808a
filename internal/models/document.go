package models

import (
	"encoding/json"
	"time"
)

// DocumentData is the plain serialized form of a Document.
type DocumentData struct {
	ID        string    `json:"id" bson:"id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	ParentID  string    `json:"parentId,omitempty" bson:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	// Revision is the backing-store revision the value was read at. Empty for
	// documents that were never persisted.
	Revision string `json:"revision,omitempty" bson:"-"`
}

// Document is a single note. Its ID is fixed at construction; every content
// mutation refreshes UpdatedAt.
type Document struct {
	id        string
	title     string
	content   string
	parentID  string
	createdAt time.Time
	updatedAt time.Time
	revision  string
}

// NewDocument builds an unpersisted document with a fresh ID. An empty title
// is replaced by a time-based one.
func NewDocument(title, content string) *Document {
	ts := now()
	if title == "" {
		title = TimeBasedTitle(time.Now())
	}
	return &Document{
		id:        newID(),
		title:     title,
		content:   content,
		createdAt: ts,
		updatedAt: ts,
	}
}

// DocumentFromData rebuilds a document from its serialized form.
func DocumentFromData(d DocumentData) *Document {
	return &Document{
		id:        d.ID,
		title:     d.Title,
		content:   d.Content,
		parentID:  d.ParentID,
		createdAt: normalize(d.CreatedAt),
		updatedAt: normalize(d.UpdatedAt),
		revision:  d.Revision,
	}
}

func (d *Document) ID() string           { return d.id }
func (d *Document) Title() string        { return d.title }
func (d *Document) Content() string      { return d.content }
func (d *Document) ParentID() string     { return d.parentID }
func (d *Document) CreatedAt() time.Time { return d.createdAt }
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }
func (d *Document) Revision() string     { return d.revision }

// SetTitle replaces the title.
func (d *Document) SetTitle(title string) {
	d.title = title
	d.touch()
}

// SetContent replaces the body.
func (d *Document) SetContent(content string) {
	d.content = content
	d.touch()
}

// SetParentID moves the document under another list or document. An empty
// id moves it to the root.
func (d *Document) SetParentID(parentID string) {
	d.parentID = parentID
	d.touch()
}

func (d *Document) touch() {
	d.updatedAt = now()
}

// Data returns the serialized form.
func (d *Document) Data() DocumentData {
	return DocumentData{
		ID:        d.id,
		Title:     d.title,
		Content:   d.content,
		ParentID:  d.parentID,
		CreatedAt: d.createdAt,
		UpdatedAt: d.updatedAt,
		Revision:  d.revision,
	}
}

// Clone returns an independent copy.
func (d *Document) Clone() *Document {
	return DocumentFromData(d.Data())
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data())
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var data DocumentData
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	*d = *DocumentFromData(data)
	return nil
}
