package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
)

// SyncResult is the outcome of a push or pull
type SyncResult struct {
	RecordID    uuid.UUID  `json:"record_id"`
	Direction   string     `json:"direction"`
	MemberID    *uuid.UUID `json:"member_id,omitempty"`
	AMNetID     string     `json:"amnet_id,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	FieldErrors []string   `json:"field_errors,omitempty"`
	// Created is set when a push created the AM.net person
	Created    bool          `json:"created,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Duration   time.Duration `json:"duration_ms"`
}

func toSyncResult(r *integration.SyncRecord) *SyncResult {
	return &SyncResult{
		RecordID:    r.ID,
		Direction:   string(r.Direction),
		MemberID:    r.MemberID,
		AMNetID:     r.AMNetID,
		Status:      string(r.Status),
		Error:       r.Error,
		FieldErrors: r.FieldErrors,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Duration:    r.Duration() / time.Millisecond,
	}
}

// SyncRecordResponse lists a member's sync history
type SyncRecordResponse struct {
	Records []SyncResult `json:"records"`
}
