package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) listFolders(c *gin.Context) {
	fs, err := a.explorer.ListFolders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fs)
}

// createFolder accepts { name, parentId }; an empty name becomes "New Folder".
func (a *API) createFolder(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := a.explorer.CreateFolderIn(c.Request.Context(), req.Name, req.ParentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (a *API) renameFolder(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := a.explorer.RenameFolder(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (a *API) deleteFolder(c *gin.Context) {
	ok, err := a.explorer.DeleteFolder(c.Request.Context(), c.Param("id"))
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

// contents returns the explorer rows under ?parentId= (root when empty).
func (a *API) contents(c *gin.Context) {
	parentID := c.Query("parentId")
	listing, err := a.explorer.Contents(c.Request.Context(), parentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parentId": parentID, "items": listing.Items()})
}
