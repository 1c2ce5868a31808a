package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a small Swagger UI page and the OpenAPI document for
// the notes API.
//   - GET /swagger/index.html
//   - GET /swagger/doc.json
func RegisterSwagger(r *gin.Engine) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>notes — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "notes", "version": "v0.1.0" },
  "paths": {
    "/api/documents": {
      "get": {
        "summary": "List documents",
        "parameters": [
          {"name":"parentId","in":"query","schema":{"type":"string"}},
          {"name":"root","in":"query","schema":{"type":"boolean"}},
          {"name":"q","in":"query","schema":{"type":"string"}},
          {"name":"filter","in":"query","schema":{"type":"string"}}
        ],
        "responses": { "200": { "description": "documents" }, "400": { "description": "bad filter" } }
      },
      "post": {
        "summary": "Create a document",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"content":{"type":"string"},"parentId":{"type":"string"}}}}}},
        "responses": { "201": { "description": "created" } }
      }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Read a document", "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } },
      "patch": {
        "summary": "Update a document",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"content":{"type":"string"},"parentId":{"type":"string"},"revision":{"type":"string"}}}}}},
        "responses": { "200": { "description": "updated" }, "404": { "description": "not found" }, "409": { "description": "revision conflict" } }
      },
      "delete": { "summary": "Delete a document", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/lists": {
      "get": { "summary": "List lists", "responses": { "200": { "description": "lists" } } },
      "post": {
        "summary": "Create a list",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"type":{"type":"string","enum":["custom","favorites"]},"name":{"type":"string"},"parentId":{"type":"string"},"itemIds":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": { "201": { "description": "created" }, "422": { "description": "parent cycle" } }
      }
    },
    "/api/lists/favorites": {
      "get": { "summary": "Get or create the favorites list", "responses": { "200": { "description": "favorites" } } }
    },
    "/api/lists/{id}": {
      "get": { "summary": "Read a list", "responses": { "200": { "description": "list" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Rename or move a list", "responses": { "200": { "description": "updated" }, "409": { "description": "revision conflict" }, "422": { "description": "parent cycle" } } },
      "delete": { "summary": "Delete a list", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/lists/{id}/items": {
      "post": { "summary": "Add an item id", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"itemId":{"type":"string"},"revision":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated" } } }
    },
    "/api/lists/{id}/items/{itemId}": {
      "delete": { "summary": "Remove an item id", "responses": { "200": { "description": "updated" } } }
    },
    "/api/folders": {
      "get": { "summary": "List folders", "responses": { "200": { "description": "folders" } } },
      "post": { "summary": "Create a folder", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"parentId":{"type":"string"}}}}}}, "responses": { "201": { "description": "created" } } }
    },
    "/api/folders/{id}": {
      "patch": { "summary": "Rename a folder", "responses": { "200": { "description": "renamed" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a folder", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/explorer": {
      "get": { "summary": "Folders and documents under a parent", "parameters": [{"name":"parentId","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "rows" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
