package models

import (
	"time"

	"github.com/vscpa/backend/internal/domain/firm"
	"github.com/vscpa/backend/internal/domain/taxonomy"
)

// TermModel is the persistence model for a taxonomy Term.
type TermModel struct {
	BaseModel
	Vocabulary taxonomy.Vocabulary `gorm:"type:varchar(30);not null;uniqueIndex:idx_term_vocabulary_code,priority:1"`
	Code       string              `gorm:"type:varchar(30);not null;uniqueIndex:idx_term_vocabulary_code,priority:2"`
	Name       string              `gorm:"type:varchar(200);not null"`
	Active     bool                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TermModel) TableName() string {
	return "terms"
}

// ToDomain converts the persistence model to a domain Term.
func (m *TermModel) ToDomain() *taxonomy.Term {
	return &taxonomy.Term{
		BaseEntity: m.BaseModel.ToDomain(),
		Vocabulary: m.Vocabulary,
		Code:       m.Code,
		Name:       m.Name,
		Active:     m.Active,
	}
}

// TermModelFromDomain creates a persistence model from a domain Term.
func TermModelFromDomain(t *taxonomy.Term) *TermModel {
	model := &TermModel{
		Vocabulary: t.Vocabulary,
		Code:       t.Code,
		Name:       t.Name,
		Active:     t.Active,
	}
	model.FromDomainBaseEntity(t.BaseEntity)
	return model
}

// FirmModel is the persistence model for a Firm.
type FirmModel struct {
	BaseModel
	Code         string       `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name         string       `gorm:"type:varchar(200);not null"`
	Address      AddressModel `gorm:"embedded;embeddedPrefix:address_"`
	Phone        string       `gorm:"type:varchar(30)"`
	BillingClass string       `gorm:"type:varchar(10)"`
	PeerReview   bool         `gorm:"not null;default:false"`
	Active       bool         `gorm:"not null"`
	ChangedAt    *time.Time
}

// TableName returns the table name for GORM
func (FirmModel) TableName() string {
	return "firms"
}

// ToDomain converts the persistence model to a domain Firm.
func (m *FirmModel) ToDomain() *firm.Firm {
	return &firm.Firm{
		BaseEntity:   m.BaseModel.ToDomain(),
		Code:         m.Code,
		Name:         m.Name,
		Address:      m.Address.toDomain(),
		Phone:        m.Phone,
		BillingClass: m.BillingClass,
		PeerReview:   m.PeerReview,
		Active:       m.Active,
		ChangedAt:    m.ChangedAt,
	}
}

// FirmModelFromDomain creates a persistence model from a domain Firm.
func FirmModelFromDomain(f *firm.Firm) *FirmModel {
	model := &FirmModel{
		Code:         f.Code,
		Name:         f.Name,
		Address:      addressModelFrom(f.Address),
		Phone:        f.Phone,
		BillingClass: f.BillingClass,
		PeerReview:   f.PeerReview,
		Active:       f.Active,
		ChangedAt:    f.ChangedAt,
	}
	model.FromDomainBaseEntity(f.BaseEntity)
	return model
}
