package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/datalog-visualizer/backend/internal/export"
	"github.com/datalog-visualizer/backend/internal/models"
	"github.com/datalog-visualizer/backend/internal/presets"
)

var exportOpts = export.DefaultOptions()

// SetExportOptions overrides the DuckDB export tuning for all handlers.
func SetExportOptions(opts export.Options) {
	exportOpts = opts
}

// HandleExport writes a completed session's channels and series to a DuckDB
// database file in the export directory.
func (h *Handler) HandleExport(c echo.Context) error {
	id := c.Param("sessionId")

	lf, ok := h.session.GetLog(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found or not complete"})
	}
	h.session.TouchSession(id)

	name := fmt.Sprintf("export_%s_%s.duckdb", shortID(id), time.Now().Format("20060102_150405"))
	dbPath := filepath.Join(h.exportDir, name)

	if err := export.ToDuckDB(lf, dbPath, exportOpts); err != nil {
		os.Remove(dbPath)
		return MapDomainError(fmt.Errorf("export failed: %w", err))
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "export file missing after write"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"name":       name,
		"path":       dbPath,
		"size":       info.Size(),
		"entryCount": lf.EntryCount(),
	})
}

// HandleGetPresets returns the currently active channel-group presets.
func (h *Handler) HandleGetPresets(c echo.Context) error {
	if h.currentPresetID == "" || h.currentPresets == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"presets": []interface{}{},
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":      h.currentPresetID,
		"presets": h.currentPresets.Presets,
	})
}

// HandleUploadPresets accepts a YAML presets file as base64 JSON and sets it
// as the active preset list.
func (h *Handler) HandleUploadPresets(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		Data string `json:"data"` // Base64-encoded file content
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	}

	if req.Name == "" || req.Data == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and data are required"})
	}

	// Decode base64
	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid base64 data"})
	}

	// Parse the YAML to validate it
	list, err := presets.LoadFromReader(strings.NewReader(string(decoded)))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid YAML format: %v", err)})
	}

	h.currentPresetID = req.Name
	h.currentPresets = list

	return c.JSON(http.StatusCreated, models.PresetList{Presets: list.Presets})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
