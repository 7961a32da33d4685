// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance.
// allowDeletion gates the file deletion endpoint.
func RegisterRoutes(e *echo.Echo, h *Handler, allowDeletion bool) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", h.HandleHealth)

	// File management
	apiGroup.POST("/files/upload", h.HandleUploadFile)
	apiGroup.GET("/files/recent", h.HandleRecentFiles)
	apiGroup.GET("/files/:id", h.HandleGetFile)
	apiGroup.PUT("/files/:id", h.HandleRenameFile)
	if allowDeletion {
		apiGroup.DELETE("/files/:id", h.HandleDeleteFile)
	}

	// Load sessions
	apiGroup.POST("/load", h.HandleStartLoad)
	apiGroup.GET("/load/:sessionId/status", h.HandleLoadStatus)
	apiGroup.GET("/load/:sessionId/progress", h.HandleLoadProgressStream)
	apiGroup.POST("/load/:sessionId/keepalive", h.HandleSessionKeepAlive)
	apiGroup.GET("/load/:sessionId/entries", h.HandleGetEntries)
	apiGroup.GET("/load/:sessionId/entries/:entryId", h.HandleGetEntry)
	apiGroup.GET("/load/:sessionId/entries/:entryId/series", h.HandleGetSeries)
	apiGroup.GET("/load/:sessionId/entries/:entryId/series/msgpack", h.HandleGetSeriesMsgpack)
	apiGroup.GET("/load/:sessionId/tree", h.HandleGetTree)
	apiGroup.POST("/load/:sessionId/export", h.HandleExport)

	// Channel-group presets
	apiGroup.GET("/presets", h.HandleGetPresets)
	apiGroup.POST("/presets", h.HandleUploadPresets)
}
