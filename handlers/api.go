package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/explorer"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/query"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/store"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
)

// API serves the notes stores over HTTP. It never touches backing-store keys.
type API struct {
	docs     *store.DocumentStore
	lists    *store.ListStore
	explorer *explorer.Explorer
}

func NewAPI(docs *store.DocumentStore, lists *store.ListStore, exp *explorer.Explorer) *API {
	return &API{docs: docs, lists: lists, explorer: exp}
}

// Register mounts every notes route on rg (normally the /api group).
func (a *API) Register(rg *gin.RouterGroup) {
	rg.GET("/documents", a.listDocuments)
	rg.POST("/documents", a.createDocument)
	rg.GET("/documents/:id", a.getDocument)
	rg.PATCH("/documents/:id", a.updateDocument)
	rg.DELETE("/documents/:id", a.deleteDocument)

	rg.GET("/lists", a.listLists)
	rg.POST("/lists", a.createList)
	rg.GET("/lists/favorites", a.favorites)
	rg.GET("/lists/:id", a.getList)
	rg.PATCH("/lists/:id", a.updateList)
	rg.DELETE("/lists/:id", a.deleteList)
	rg.POST("/lists/:id/items", a.addItem)
	rg.DELETE("/lists/:id/items/:itemId", a.removeItem)

	rg.GET("/folders", a.listFolders)
	rg.POST("/folders", a.createFolder)
	rg.PATCH("/folders/:id", a.renameFolder)
	rg.DELETE("/folders/:id", a.deleteFolder)
	rg.GET("/explorer", a.contents)
}

// writeError maps store failures onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrCycle):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, store.ErrSerialization):
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// scanQuery holds the shared listing parameters. Precedence when several are
// given: filter, then q, then parentId/root.
type scanQuery struct {
	Filter   string `form:"filter"`
	Q        string `form:"q"`
	ParentID string `form:"parentId"`
	Root     bool   `form:"root"`
}

func (s scanQuery) byParent() bool { return s.Root || s.ParentID != "" }

func (s scanQuery) program() (*query.Program, error) {
	if s.Filter == "" {
		return nil, nil
	}
	return query.Compile(s.Filter)
}
