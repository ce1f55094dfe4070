package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/legislative"
)

// LegislativeContactModel is the persistence model for a legislative Contact.
type LegislativeContactModel struct {
	BaseModel
	MemberID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Slot           legislative.Slot `gorm:"type:varchar(10);not null"`
	LegislatorID   string           `gorm:"type:varchar(30);not null"`
	LegislatorName string           `gorm:"type:varchar(200)"`
	District       string           `gorm:"type:varchar(30)"`
	Relationships  []string         `gorm:"type:jsonb;serializer:json"`
	Notes          string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LegislativeContactModel) TableName() string {
	return "legislative_contacts"
}

// ToDomain converts the persistence model to a domain Contact.
func (m *LegislativeContactModel) ToDomain() *legislative.Contact {
	return &legislative.Contact{
		BaseEntity:     m.BaseModel.ToDomain(),
		MemberID:       m.MemberID,
		Slot:           m.Slot,
		LegislatorID:   m.LegislatorID,
		LegislatorName: m.LegislatorName,
		District:       m.District,
		Relationships:  m.Relationships,
		Notes:          m.Notes,
	}
}

// LegislativeContactModelFromDomain creates a persistence model from a domain Contact.
func LegislativeContactModelFromDomain(c *legislative.Contact) *LegislativeContactModel {
	model := &LegislativeContactModel{
		MemberID:       c.MemberID,
		Slot:           c.Slot,
		LegislatorID:   c.LegislatorID,
		LegislatorName: c.LegislatorName,
		District:       c.District,
		Relationships:  c.Relationships,
		Notes:          c.Notes,
	}
	model.FromDomainBaseEntity(c.BaseEntity)
	return model
}

// SyncRecordModel is the persistence model for a SyncRecord.
type SyncRecordModel struct {
	BaseModel
	Direction   integration.SyncDirection `gorm:"type:varchar(20);not null;index:idx_sync_direction_started,priority:1"`
	MemberID    *uuid.UUID                `gorm:"type:uuid;index"`
	AMNetID     string                    `gorm:"column:amnet_id;type:varchar(20)"`
	Status      integration.SyncStatus    `gorm:"type:varchar(20)"`
	Error       string                    `gorm:"type:text"`
	FieldErrors []string                  `gorm:"type:jsonb;serializer:json"`
	StartedAt   time.Time                 `gorm:"not null;index:idx_sync_direction_started,priority:2"`
	FinishedAt  *time.Time
}

// TableName returns the table name for GORM
func (SyncRecordModel) TableName() string {
	return "sync_records"
}

// ToDomain converts the persistence model to a domain SyncRecord.
func (m *SyncRecordModel) ToDomain() *integration.SyncRecord {
	return &integration.SyncRecord{
		BaseEntity:  m.BaseModel.ToDomain(),
		Direction:   m.Direction,
		MemberID:    m.MemberID,
		AMNetID:     m.AMNetID,
		Status:      m.Status,
		Error:       m.Error,
		FieldErrors: m.FieldErrors,
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
	}
}

// SyncRecordModelFromDomain creates a persistence model from a domain SyncRecord.
func SyncRecordModelFromDomain(r *integration.SyncRecord) *SyncRecordModel {
	model := &SyncRecordModel{
		Direction:   r.Direction,
		MemberID:    r.MemberID,
		AMNetID:     r.AMNetID,
		Status:      r.Status,
		Error:       r.Error,
		FieldErrors: r.FieldErrors,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
	model.FromDomainBaseEntity(r.BaseEntity)
	return model
}

// AllModels returns every persistence model, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&MemberModel{},
		&LicenseModel{},
		&TermModel{},
		&FirmModel{},
		&LegislativeContactModel{},
		&SyncRecordModel{},
	}
}
