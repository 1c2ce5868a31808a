package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
)

func (a *API) listLists(c *gin.Context) {
	var q scanQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	prog, err := q.program()
	if err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	var out []*models.List
	switch {
	case prog != nil:
		out, err = a.lists.Filter(ctx, prog)
	case q.Q != "":
		out, err = a.lists.Search(ctx, q.Q)
	case q.byParent():
		out, err = a.lists.GetByParentID(ctx, q.ParentID)
	default:
		out, err = a.lists.List(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// createList accepts { type, name, parentId, itemIds }; type defaults to custom.
func (a *API) createList(c *gin.Context) {
	var req struct {
		Type     models.ListType `json:"type"`
		Name     string          `json:"name"`
		ParentID string          `json:"parentId"`
		ItemIDs  []string        `json:"itemIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	switch req.Type {
	case "":
		req.Type = models.ListCustom
	case models.ListCustom, models.ListFavorites:
	default:
		badRequest(c, fmt.Errorf("unknown list type %q", req.Type))
		return
	}
	l := models.NewList(req.Type, req.Name)
	if req.ParentID != "" {
		l.SetParentID(req.ParentID)
	}
	for _, id := range req.ItemIDs {
		l.AddItem(id)
	}
	saved, err := a.lists.Create(c.Request.Context(), l)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (a *API) favorites(c *gin.Context) {
	l, err := a.lists.Favorites(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (a *API) getList(c *gin.Context) {
	l, err := a.lists.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if l == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, l)
}

// loadList reads :id and pins it to revision when one is given.
func (a *API) loadList(c *gin.Context, revision string) (*models.List, bool) {
	l, err := a.lists.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if l == nil {
		notFound(c)
		return nil, false
	}
	if revision != "" {
		data := l.Data()
		data.Revision = revision
		l = models.ListFromData(data)
	}
	return l, true
}

func (a *API) saveList(c *gin.Context, l *models.List) {
	updated, err := a.lists.Update(c.Request.Context(), l)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *API) updateList(c *gin.Context) {
	var req struct {
		Name     *string `json:"name"`
		ParentID *string `json:"parentId"`
		Revision string  `json:"revision"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, ok := a.loadList(c, req.Revision)
	if !ok {
		return
	}
	if req.Name != nil {
		l.SetName(*req.Name)
	}
	if req.ParentID != nil {
		l.SetParentID(*req.ParentID)
	}
	a.saveList(c, l)
}

func (a *API) deleteList(c *gin.Context) {
	ok, err := a.lists.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		notFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}

// addItem accepts { itemId, revision }. Adding a present id changes nothing
// but still writes.
func (a *API) addItem(c *gin.Context) {
	var req struct {
		ItemID   string `json:"itemId" binding:"required"`
		Revision string `json:"revision"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, ok := a.loadList(c, req.Revision)
	if !ok {
		return
	}
	l.AddItem(req.ItemID)
	a.saveList(c, l)
}

func (a *API) removeItem(c *gin.Context) {
	l, ok := a.loadList(c, c.Query("revision"))
	if !ok {
		return
	}
	l.RemoveItem(c.Param("itemId"))
	a.saveList(c, l)
}
