package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

type documentJSON struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
	Revision string `json:"revision"`
}

func TestCreateUpdateGetDocument(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())

	// CREATE
	w := do(g, http.MethodPost, "/api/documents", `{"title":"Draft","content":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[documentJSON](t, w)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.Revision)

	// PATCH
	w = do(g, http.MethodPatch, "/api/documents/"+created.ID, `{"content":"updated content"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	updated := decode[documentJSON](t, w)
	assert.NotEqual(t, created.Revision, updated.Revision)
	assert.Equal(t, "Draft", updated.Title)

	// GET (single)
	w = do(g, http.MethodGet, "/api/documents/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "updated content", decode[documentJSON](t, w).Content)

	// LIST
	w = do(g, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]documentJSON](t, w)
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)

	// DELETE
	assert.Equal(t, http.StatusNoContent, do(g, http.MethodDelete, "/api/documents/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(g, http.MethodDelete, "/api/documents/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(g, http.MethodGet, "/api/documents/"+created.ID, "").Code)

	w = do(g, http.MethodGet, "/api/documents", "")
	assert.Equal(t, "[]", w.Body.String())
}

func TestCreateDocumentWithoutTitle(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())
	w := do(g, http.MethodPost, "/api/documents", `{}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, decode[documentJSON](t, w).Title)
}

func TestUpdateDocumentStaleRevision(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())
	created := decode[documentJSON](t, do(g, http.MethodPost, "/api/documents", `{"title":"a"}`))

	w := do(g, http.MethodPatch, "/api/documents/"+created.ID,
		fmt.Sprintf(`{"title":"b","revision":%q}`, created.Revision))
	require.Equal(t, http.StatusOK, w.Code)

	// second writer still holds the first revision
	w = do(g, http.MethodPatch, "/api/documents/"+created.ID,
		fmt.Sprintf(`{"title":"c","revision":%q}`, created.Revision))
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(g, http.MethodGet, "/api/documents/"+created.ID, "")
	assert.Equal(t, "b", decode[documentJSON](t, w).Title)
}

func TestUpdateMissingDocument(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())
	require.Equal(t, http.StatusNotFound, do(g, http.MethodPatch, "/api/documents/nope", `{"title":"x"}`).Code)
}

func TestListDocumentsQueries(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())
	do(g, http.MethodPost, "/api/documents", `{"title":"Shopping","content":"milk"}`)
	do(g, http.MethodPost, "/api/documents", `{"title":"Ideas","content":"a novel","parentId":"folder-1"}`)
	do(g, http.MethodPost, "/api/documents", `{"title":"Todo","content":"call Bob","parentId":"folder-1"}`)

	titles := func(path string) []string {
		w := do(g, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []string
		for _, d := range decode[[]documentJSON](t, w) {
			out = append(out, d.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Ideas", "Todo"}, titles("/api/documents?parentId=folder-1"))
	assert.ElementsMatch(t, []string{"Shopping"}, titles("/api/documents?root=true"))
	assert.ElementsMatch(t, []string{"Todo"}, titles("/api/documents?q=BOB"))
	assert.ElementsMatch(t, []string{"Shopping"}, titles(`/api/documents?filter=content+contains+%22milk%22`))
}
