package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/datalog-visualizer/backend/internal/models"
	"github.com/datalog-visualizer/backend/internal/presets"
	"github.com/datalog-visualizer/backend/internal/session"
	"github.com/datalog-visualizer/backend/internal/storage"
)

// Handler handles API requests.
type Handler struct {
	store           storage.Store
	session         *session.Manager
	exportDir       string
	defaultsDir     string
	allowedExts     []string
	currentPresetID string
	currentPresets  *models.PresetList
}

// NewHandler creates a new API handler. allowedExts is the list of file
// extensions accepted for upload (e.g. ".wpilog").
func NewHandler(store storage.Store, session *session.Manager, exportDir, defaultsDir string, allowedExts []string) *Handler {
	return &Handler{
		store:       store,
		session:     session,
		exportDir:   exportDir,
		defaultsDir: defaultsDir,
		allowedExts: allowedExts,
	}
}

// LoadDefaultPresets loads the default presets.yaml file if it exists.
func (h *Handler) LoadDefaultPresets() error {
	presetsPath := filepath.Join(h.defaultsDir, "presets.yaml")
	if _, err := os.Stat(presetsPath); os.IsNotExist(err) {
		return nil // No default presets file
	}

	list, err := presets.Load(presetsPath)
	if err != nil {
		return fmt.Errorf("failed to load default presets: %w", err)
	}

	h.currentPresetID = "default:presets.yaml"
	h.currentPresets = list
	return nil
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *Handler) extensionAllowed(name string) bool {
	if len(h.allowedExts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range h.allowedExts {
		if strings.HasSuffix(lower, strings.ToLower(strings.TrimSpace(ext))) {
			return true
		}
	}
	return false
}

// HandleUploadFile accepts a data log file as base64 JSON and saves it to storage.
func (h *Handler) HandleUploadFile(c echo.Context) error {
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

	if !h.extensionAllowed(req.Name) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unsupported file type, allowed: %s", strings.Join(h.allowedExts, ", ")),
		})
	}

	// Decode base64
	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid base64 data"})
	}

	info, err := h.store.Save(req.Name, bytes.NewReader(decoded))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to save file: %v", err)})
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleRecentFiles returns a list of recently uploaded data log files.
func (h *Handler) HandleRecentFiles(c echo.Context) error {
	files, err := h.store.List(20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list files"})
	}
	if files == nil {
		files = []*models.FileInfo{}
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file.
func (h *Handler) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile removes a file from storage.
func (h *Handler) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found or could not be deleted"})
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the name of a file.
func (h *Handler) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found or could not be renamed"})
	}

	return c.JSON(http.StatusOK, info)
}
