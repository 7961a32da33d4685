package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/datalog-visualizer/backend/internal/logfile"
	"github.com/datalog-visualizer/backend/internal/models"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion.
const MaxSessions = 10

// SessionKeepAliveWindow is how long to keep sessions that are actively
// being viewed, regardless of age.
const SessionKeepAliveWindow = 5 * time.Minute

// Manager handles active data log load sessions. A session's LogFile is
// immutable once the session reaches complete status; query methods only
// ever see completed logs.
type Manager struct {
	sessions map[string]*sessionState
	mu       sync.RWMutex
}

type sessionState struct {
	Session      *models.LoadSession
	Log          *logfile.LogFile
	LastAccessed time.Time
}

// NewManager creates a new session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*sessionState),
	}
}

// StartLoad begins the aggregation pass for an uploaded file in the
// background and returns the pending session.
func (m *Manager) StartLoad(fileID, filePath string) (*models.LoadSession, error) {
	m.cleanupIfAtCapacity()

	sessionID := uuid.New().String()
	sess := models.NewLoadSession(sessionID, fileID)
	sess.Status = models.SessionStatusLoading

	m.mu.Lock()
	m.sessions[sessionID] = &sessionState{
		Session:      sess,
		LastAccessed: time.Now(),
	}
	m.mu.Unlock()

	go m.runLoad(sessionID, filePath)

	// Copy so the caller never shares the struct the load goroutine mutates.
	snapshot := *sess
	return &snapshot, nil
}

func (m *Manager) runLoad(sessionID, filePath string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("session", short(sessionID)).
				Interface("panic", r).Msg("load panicked")
			m.failSession(sessionID, fmt.Sprintf("load panicked: %v", r))
		}
	}()

	start := time.Now()
	log.Info().Str("session", short(sessionID)).
		Str("path", filePath).Msg("starting data log load")

	onProgress := func(records int, bytesRead, totalBytes int64) {
		var progress float64
		if totalBytes > 0 {
			progress = 10.0 + float64(bytesRead)*80.0/float64(totalBytes)
		} else {
			progress = 10.0
		}
		// 90-100% is reserved for finalization.
		if progress > 89.9 {
			progress = 89.9
		}

		m.mu.Lock()
		if state, ok := m.sessions[sessionID]; ok {
			state.Session.Progress = progress
			state.Session.RecordCount = records
		}
		m.mu.Unlock()
	}

	lf, err := logfile.LoadWithProgress(filePath, onProgress)
	if err != nil {
		log.Error().Str("session", short(sessionID)).Err(err).Msg("load failed")
		m.failSession(sessionID, err.Error())
		return
	}

	elapsed := time.Since(start).Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Log = lf
	state.Session.Status = models.SessionStatusComplete
	state.Session.Progress = 100
	state.Session.EntryCount = lf.EntryCount()
	state.Session.RecordCount = lf.TotalRecords()
	state.Session.ProcessingTimeMs = elapsed

	tr := lf.TimeRange()
	state.Session.StartTime = tr.Start.UnixMilli()
	state.Session.EndTime = tr.End.UnixMilli()

	log.Info().Str("session", short(sessionID)).
		Int("entries", lf.EntryCount()).
		Int("records", lf.TotalRecords()).
		Int64("elapsedMs", elapsed).
		Msg("data log load complete")
}

func (m *Manager) failSession(sessionID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	state.Session.Status = models.SessionStatusError
	state.Session.Error = reason
}

// cleanupIfAtCapacity removes completed or errored sessions when the
// session map is full.
func (m *Manager) cleanupIfAtCapacity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	toFree := len(m.sessions) - MaxSessions + 1
	for id, state := range m.sessions {
		if toFree == 0 {
			break
		}
		if state.Session.Status == models.SessionStatusComplete ||
			state.Session.Status == models.SessionStatusError {
			delete(m.sessions, id)
			toFree--
			log.Info().Str("session", short(id)).Msg("evicted session to free memory")
		}
	}
}

// CleanupOldSessions removes completed sessions older than maxAge, keeping
// ones accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			log.Info().Str("session", short(id)).Msg("cleaned up aged session")
		}
	}
}

// GetSession returns a snapshot of a session by ID. The copy keeps callers
// (the progress stream in particular) from reading fields the load goroutine
// is still mutating.
func (m *Manager) GetSession(id string) (*models.LoadSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	sess := *state.Session
	return &sess, true
}

// TouchSession updates the LastAccessed timestamp so an actively viewed
// session is not cleaned up.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// GetLog returns the completed LogFile for a session. The returned value is
// immutable and safe for concurrent queries.
func (m *Manager) GetLog(id string) (*logfile.LogFile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Log == nil {
		return nil, false
	}
	return state.Log, true
}

// Entries lists the channels of a completed session, sorted by name.
func (m *Manager) Entries(id string) ([]models.EntryInfo, bool) {
	lf, ok := m.GetLog(id)
	if !ok {
		return nil, false
	}
	return lf.Entries(), true
}

// Entry returns a single channel's registry entry.
func (m *Manager) Entry(id string, entryID int) (*models.Entry, bool) {
	lf, ok := m.GetLog(id)
	if !ok {
		return nil, false
	}
	return lf.Entry(entryID)
}

// Series returns a channel's full time series.
func (m *Manager) Series(id string, entryID int) ([]models.SeriesPoint, bool) {
	lf, ok := m.GetLog(id)
	if !ok {
		return nil, false
	}
	return lf.Series(entryID)
}

// RecordCount returns a channel's record count, excluding the sentinel.
func (m *Manager) RecordCount(id string, entryID int) (int, bool) {
	lf, ok := m.GetLog(id)
	if !ok {
		return 0, false
	}
	return lf.RecordCount(entryID), true
}

// Tree builds the filtered channel namespace tree for a session.
func (m *Manager) Tree(id, filter string) (*models.TreeNode, bool) {
	lf, ok := m.GetLog(id)
	if !ok {
		return nil, false
	}
	return lf.EntryTree(filter), true
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
