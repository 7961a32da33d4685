package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/datalog-visualizer/backend/internal/models"
)

// HandleStartLoad starts a load session for an uploaded data log file.
func (h *Handler) HandleStartLoad(c echo.Context) error {
	var req struct {
		FileID string `json:"fileId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.FileID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "fileId is required"})
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("file not found: %s", req.FileID)})
	}

	path, err := h.store.GetFilePath(info.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to get file path for: %s", info.ID)})
	}

	sess, err := h.session.StartLoad(info.ID, path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to start session: %v", err)})
	}

	return c.JSON(http.StatusAccepted, sess)
}

// HandleLoadStatus returns the status of a load session.
func (h *Handler) HandleLoadStatus(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.session.GetSession(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	// Touch session to prevent cleanup while being viewed
	h.session.TouchSession(id)
	return c.JSON(http.StatusOK, sess)
}

// HandleLoadProgressStream streams load progress via SSE for real-time updates.
// This provides smooth progress transitions (10% → 89.9% → 100%) without polling.
func (h *Handler) HandleLoadProgressStream(c echo.Context) error {
	id := c.Param("sessionId")

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	sess, ok := h.session.GetSession(id)
	if !ok {
		data, _ := json.Marshal(map[string]string{"error": "session not found"})
		fmt.Fprintf(c.Response(), "data: %s\n\n", data)
		c.Response().Flush()
		return nil
	}

	// Stream progress updates until the load completes or errors
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastProgress := -1.0
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
			sess, ok = h.session.GetSession(id)
			if !ok {
				data, _ := json.Marshal(map[string]string{"error": "session not found"})
				fmt.Fprintf(c.Response(), "data: %s\n\n", data)
				c.Response().Flush()
				return nil
			}

			// Only send update if progress changed
			if sess.Progress != lastProgress {
				lastProgress = sess.Progress

				data, err := json.Marshal(map[string]interface{}{
					"status":      sess.Status,
					"progress":    sess.Progress,
					"entryCount":  sess.EntryCount,
					"recordCount": sess.RecordCount,
					"error":       sess.Error,
				})
				if err != nil {
					continue
				}

				fmt.Fprintf(c.Response(), "data: %s\n\n", data)
				c.Response().Flush()
			}

			// Stop if complete or error
			if sess.Status == models.SessionStatusComplete || sess.Status == models.SessionStatusError {
				return nil
			}
		}
	}
}

// HandleSessionKeepAlive allows clients to explicitly keep a session alive.
// Useful for long-running chart views where the user may not be making data
// requests but is still actively viewing the session.
func (h *Handler) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.session.TouchSession(id) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetEntries returns all channels of a session, sorted by name, with
// record counts.
func (h *Handler) HandleGetEntries(c echo.Context) error {
	id := c.Param("sessionId")
	entries, ok := h.session.Entries(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found or not complete"})
	}
	// Touch session to prevent cleanup while being actively viewed
	h.session.TouchSession(id)
	if entries == nil {
		entries = []models.EntryInfo{}
	}
	return c.JSON(http.StatusOK, entries)
}

// HandleGetEntry returns a single channel's registry entry.
func (h *Handler) HandleGetEntry(c echo.Context) error {
	id := c.Param("sessionId")
	entryID, err := strconv.Atoi(c.Param("entryId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
	}

	entry, ok := h.session.Entry(id, entryID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session or entry not found"})
	}
	h.session.TouchSession(id)
	return c.JSON(http.StatusOK, entry)
}

// HandleGetSeries returns a channel's full time series as [timestampMs, value]
// pairs.
func (h *Handler) HandleGetSeries(c echo.Context) error {
	id := c.Param("sessionId")
	entryID, err := strconv.Atoi(c.Param("entryId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
	}

	series, ok := h.session.Series(id, entryID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session or entry not found"})
	}
	h.session.TouchSession(id)

	count, _ := h.session.RecordCount(id, entryID)
	if series == nil {
		series = []models.SeriesPoint{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entryId":     entryID,
		"recordCount": count,
		"points":      series,
	})
}

// HandleGetSeriesMsgpack returns a channel's time series in MessagePack
// format. MessagePack is 30-50% smaller than JSON for series data.
func (h *Handler) HandleGetSeriesMsgpack(c echo.Context) error {
	id := c.Param("sessionId")
	entryID, err := strconv.Atoi(c.Param("entryId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
	}

	series, ok := h.session.Series(id, entryID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session or entry not found"})
	}
	h.session.TouchSession(id)

	count, _ := h.session.RecordCount(id, entryID)
	points := make([][2]interface{}, len(series))
	for i, p := range series {
		points[i] = [2]interface{}{p.Time.UnixMilli(), p.Value.Any()}
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"entryId":     entryID,
		"recordCount": count,
		"points":      points,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to encode msgpack"})
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetTree returns the channel namespace tree for a session, optionally
// filtered by the "filter" query parameter (case-insensitive substring).
func (h *Handler) HandleGetTree(c echo.Context) error {
	id := c.Param("sessionId")
	filter := c.QueryParam("filter")

	tree, ok := h.session.Tree(id, filter)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found or not complete"})
	}
	h.session.TouchSession(id)

	if tree == nil {
		// Filter matched nothing
		return c.JSON(http.StatusOK, map[string]interface{}{"tree": nil})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tree": tree})
}
