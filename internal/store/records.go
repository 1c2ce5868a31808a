package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
)

// ListPrefix namespaces list records inside the shared table.
const ListPrefix = "list:"

func listKey(id string) string { return ListPrefix + id }

// documentRecord is the stored body of a document. The id lives in the key.
type documentRecord struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ParentID  string `json:"parentId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// listRecord is the stored body of a list. ItemIDs stays raw so a malformed
// legacy value can be tolerated on read.
type listRecord struct {
	Type      models.ListType `json:"type"`
	Name      string          `json:"name"`
	ItemIDs   json.RawMessage `json:"itemIds"`
	ParentID  string          `json:"parentId,omitempty"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

func encodeDocument(d *models.Document) ([]byte, error) {
	return json.Marshal(documentRecord{
		Title:     d.Title(),
		Content:   d.Content(),
		ParentID:  d.ParentID(),
		CreatedAt: models.FormatTimestamp(d.CreatedAt()),
		UpdatedAt: models.FormatTimestamp(d.UpdatedAt()),
	})
}

func decodeDocument(id, rev string, body []byte) (*models.Document, error) {
	var rec documentRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	created, err := models.ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: createdAt: %v", ErrSerialization, err)
	}
	updated, err := models.ParseTimestamp(rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: updatedAt: %v", ErrSerialization, err)
	}
	return models.DocumentFromData(models.DocumentData{
		ID:        id,
		Title:     rec.Title,
		Content:   rec.Content,
		ParentID:  rec.ParentID,
		CreatedAt: created,
		UpdatedAt: updated,
		Revision:  rev,
	}), nil
}

func encodeList(l *models.List) ([]byte, error) {
	items, err := json.Marshal(l.ItemIDs())
	if err != nil {
		return nil, err
	}
	return json.Marshal(listRecord{
		Type:      l.Type(),
		Name:      l.Name(),
		ItemIDs:   items,
		ParentID:  l.ParentID(),
		CreatedAt: models.FormatTimestamp(l.CreatedAt()),
		UpdatedAt: models.FormatTimestamp(l.UpdatedAt()),
	})
}

func decodeList(id, rev string, body []byte) (*models.List, error) {
	var rec listRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	created, err := models.ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: createdAt: %v", ErrSerialization, err)
	}
	updated, err := models.ParseTimestamp(rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: updatedAt: %v", ErrSerialization, err)
	}
	return models.ListFromData(models.ListData{
		ID:        id,
		Type:      rec.Type,
		Name:      rec.Name,
		ItemIDs:   decodeItemIDs(id, rec.ItemIDs),
		ParentID:  rec.ParentID,
		CreatedAt: created,
		UpdatedAt: updated,
		Revision:  rev,
	}), nil
}

// decodeItemIDs reads the member ids. Missing, null or non-array values
// become an empty list.
func decodeItemIDs(id string, raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warnw("list has malformed itemIds, treating as empty", "list", id, "error", err)
		return []string{}
	}
	return items
}
