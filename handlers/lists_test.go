package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

type listJSON struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	ItemIDs  []string `json:"itemIds"`
	ParentID string   `json:"parentId"`
	Revision string   `json:"revision"`
}

func TestListLifecycle(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())

	w := do(g, http.MethodPost, "/api/lists", `{"name":"Reading","itemIds":["d1","d2","d1"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	l := decode[listJSON](t, w)
	assert.Equal(t, "custom", l.Type)
	assert.Equal(t, []string{"d1", "d2"}, l.ItemIDs)

	w = do(g, http.MethodPost, "/api/lists/"+l.ID+"/items", `{"itemId":"d3"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"d1", "d2", "d3"}, decode[listJSON](t, w).ItemIDs)

	w = do(g, http.MethodDelete, "/api/lists/"+l.ID+"/items/d1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"d2", "d3"}, decode[listJSON](t, w).ItemIDs)

	w = do(g, http.MethodPatch, "/api/lists/"+l.ID, `{"name":"Later"}`)
	require.Equal(t, http.StatusOK, w.Code)
	renamed := decode[listJSON](t, w)
	assert.Equal(t, "Later", renamed.Name)
	assert.Equal(t, []string{"d2", "d3"}, renamed.ItemIDs)

	w = do(g, http.MethodGet, "/api/lists/"+l.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Later", decode[listJSON](t, w).Name)

	require.Equal(t, http.StatusNoContent, do(g, http.MethodDelete, "/api/lists/"+l.ID, "").Code)
	require.Equal(t, http.StatusNotFound, do(g, http.MethodGet, "/api/lists/"+l.ID, "").Code)
	require.Equal(t, http.StatusNotFound, do(g, http.MethodPost, "/api/lists/"+l.ID+"/items", `{"itemId":"x"}`).Code)
}

func TestAddItemRequiresItemID(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())
	l := decode[listJSON](t, do(g, http.MethodPost, "/api/lists", `{"name":"a"}`))
	require.Equal(t, http.StatusBadRequest, do(g, http.MethodPost, "/api/lists/"+l.ID+"/items", `{}`).Code)
}

func TestAddItemStaleRevision(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())
	l := decode[listJSON](t, do(g, http.MethodPost, "/api/lists", `{"name":"a"}`))
	require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/api/lists/"+l.ID+"/items", `{"itemId":"x"}`).Code)

	w := do(g, http.MethodPost, "/api/lists/"+l.ID+"/items", fmt.Sprintf(`{"itemId":"y","revision":%q}`, l.Revision))
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestFavoritesEndpoint(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())

	w := do(g, http.MethodGet, "/api/lists/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[listJSON](t, w)
	assert.Equal(t, "favorites", first.Type)
	assert.Equal(t, "favorites", first.Name)

	w = do(g, http.MethodGet, "/api/lists/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.ID, decode[listJSON](t, w).ID)

	// the fixed name survives a rename attempt
	w = do(g, http.MethodPatch, "/api/lists/"+first.ID, `{"name":"mine"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "favorites", decode[listJSON](t, w).Name)
}

func TestListParentCycleIs422(t *testing.T) {
	g := newRouter(kv.NewMemoryStore())
	a := decode[listJSON](t, do(g, http.MethodPost, "/api/lists", `{"name":"a"}`))
	b := decode[listJSON](t, do(g, http.MethodPost, "/api/lists", fmt.Sprintf(`{"name":"b","parentId":%q}`, a.ID)))

	w := do(g, http.MethodPatch, "/api/lists/"+a.ID, fmt.Sprintf(`{"parentId":%q}`, b.ID))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(g, http.MethodGet, "/api/lists?parentId="+a.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	children := decode[[]listJSON](t, w)
	require.Len(t, children, 1)
	assert.Equal(t, b.ID, children[0].ID)
}
