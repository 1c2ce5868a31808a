package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
)

// listDocuments supports ?filter=, ?q=, ?parentId= and ?root=true.
func (a *API) listDocuments(c *gin.Context) {
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
	var out []*models.Document
	switch {
	case prog != nil:
		out, err = a.docs.Filter(ctx, prog)
	case q.Q != "":
		out, err = a.docs.Search(ctx, q.Q)
	case q.byParent():
		out, err = a.docs.GetByParentID(ctx, q.ParentID)
	default:
		out, err = a.docs.List(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// createDocument accepts { title, content, parentId }. An empty title gets a
// time-based one.
func (a *API) createDocument(c *gin.Context) {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ParentID string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d := models.NewDocument(req.Title, req.Content)
	if req.ParentID != "" {
		d.SetParentID(req.ParentID)
	}
	saved, err := a.docs.Create(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (a *API) getDocument(c *gin.Context) {
	d, err := a.docs.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if d == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, d)
}

// updateDocument applies the given fields. A revision in the body makes the
// write conditional on it; without one the current revision is used.
func (a *API) updateDocument(c *gin.Context) {
	var req struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		ParentID *string `json:"parentId"`
		Revision string  `json:"revision"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	d, err := a.docs.Read(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if d == nil {
		notFound(c)
		return
	}
	if req.Revision != "" {
		data := d.Data()
		data.Revision = req.Revision
		d = models.DocumentFromData(data)
	}
	if req.Title != nil {
		d.SetTitle(*req.Title)
	}
	if req.Content != nil {
		d.SetContent(*req.Content)
	}
	if req.ParentID != nil {
		d.SetParentID(*req.ParentID)
	}
	updated, err := a.docs.Update(ctx, d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *API) deleteDocument(c *gin.Context) {
	ok, err := a.docs.Delete(c.Request.Context(), c.Param("id"))
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
