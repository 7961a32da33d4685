package models

// SessionStatus represents the status of a load session.
type SessionStatus string

const (
	SessionStatusPending  SessionStatus = "pending"
	SessionStatusLoading  SessionStatus = "loading"
	SessionStatusComplete SessionStatus = "complete"
	SessionStatusError    SessionStatus = "error"
)

// LoadSession represents one aggregation pass over an uploaded data log.
type LoadSession struct {
	ID               string        `json:"id"`
	FileID           string        `json:"fileId"`
	Status           SessionStatus `json:"status"`
	Progress         float64       `json:"progress"` // 0-100
	EntryCount       int           `json:"entryCount,omitempty"`
	RecordCount      int           `json:"recordCount,omitempty"`
	ProcessingTimeMs int64         `json:"processingTimeMs,omitempty"`
	StartTime        int64         `json:"startTime,omitempty"` // Unix ms
	EndTime          int64         `json:"endTime,omitempty"`   // Unix ms
	Error            string        `json:"error,omitempty"`
}

// NewLoadSession creates a new LoadSession in pending status.
func NewLoadSession(id, fileID string) *LoadSession {
	return &LoadSession{
		ID:     id,
		FileID: fileID,
		Status: SessionStatusPending,
	}
}
