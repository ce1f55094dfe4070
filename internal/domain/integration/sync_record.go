package integration

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/shared"
)

// SyncDirection names what a sync attempt did
type SyncDirection string

const (
	SyncDirectionPush        SyncDirection = "push"
	SyncDirectionPull        SyncDirection = "pull"
	SyncDirectionLegislative SyncDirection = "legislative"
	SyncDirectionMembership  SyncDirection = "membership"
	SyncDirectionTerms       SyncDirection = "terms"
	SyncDirectionFirms       SyncDirection = "firms"
)

// SyncStatus is the outcome of a sync attempt
type SyncStatus string

const (
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusSkipped   SyncStatus = "skipped"
)

const maxSyncErrorLength = 2000

// SyncRecord is the audit trail of one sync attempt
type SyncRecord struct {
	shared.BaseEntity
	Direction   SyncDirection
	MemberID    *uuid.UUID
	AMNetID     string
	Status      SyncStatus
	Error       string
	FieldErrors []string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// StartSync opens a sync record
func StartSync(direction SyncDirection, memberID *uuid.UUID, amnetID string) *SyncRecord {
	return &SyncRecord{
		BaseEntity: shared.NewBaseEntity(),
		Direction:  direction,
		MemberID:   memberID,
		AMNetID:    amnetID,
		StartedAt:  time.Now(),
	}
}

// AddFieldError notes a field that could not be mapped; the sync continues
func (r *SyncRecord) AddFieldError(field string, err error) {
	r.FieldErrors = append(r.FieldErrors, field+": "+err.Error())
}

// Succeed closes the record as succeeded
func (r *SyncRecord) Succeed() {
	r.finish(SyncStatusSucceeded, "")
}

// Skip closes the record as skipped with a reason
func (r *SyncRecord) Skip(reason string) {
	r.finish(SyncStatusSkipped, reason)
}

// Fail closes the record as failed
func (r *SyncRecord) Fail(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.finish(SyncStatusFailed, msg)
}

// Duration returns how long the attempt took, zero while still open
func (r *SyncRecord) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *SyncRecord) finish(status SyncStatus, msg string) {
	now := time.Now()
	r.Status = status
	if len(msg) > maxSyncErrorLength {
		msg = msg[:maxSyncErrorLength]
	}
	r.Error = strings.TrimSpace(msg)
	r.FinishedAt = &now
	r.UpdatedAt = now
}

// SyncRecordRepository persists sync records
type SyncRecordRepository interface {
	Save(ctx context.Context, record *SyncRecord) error
	// FindByMember returns the latest records for a member, newest first
	FindByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]SyncRecord, error)
	// FindRecent returns the latest records of a direction, newest first
	FindRecent(ctx context.Context, direction SyncDirection, limit int) ([]SyncRecord, error)
	// LastSucceededAt returns when the direction last succeeded, nil if never
	LastSucceededAt(ctx context.Context, direction SyncDirection) (*time.Time, error)
}
