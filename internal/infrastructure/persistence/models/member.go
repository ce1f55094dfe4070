package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/domain/shared/valueobject"
)

// AddressModel is an embedded postal address
type AddressModel struct {
	Line1 string `gorm:"type:varchar(200)"`
	Line2 string `gorm:"type:varchar(200)"`
	City  string `gorm:"type:varchar(100)"`
	State string `gorm:"type:varchar(2)"`
	Zip   string `gorm:"type:varchar(10)"`
}

func addressModelFrom(a valueobject.Address) AddressModel {
	return AddressModel{Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, Zip: a.Zip}
}

func (a AddressModel) toDomain() valueobject.Address {
	return valueobject.Address{Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, Zip: a.Zip}
}

// MemberModel is the persistence model for the Member aggregate.
type MemberModel struct {
	AggregateModel
	Email   string `gorm:"type:varchar(254);not null;uniqueIndex"`
	AMNetID string `gorm:"column:amnet_id;type:varchar(20);index"`

	FirstName      string       `gorm:"type:varchar(100)"`
	MiddleName     string       `gorm:"type:varchar(100)"`
	LastName       string       `gorm:"type:varchar(100);index"`
	Suffix         string       `gorm:"type:varchar(20)"`
	Nickname       string       `gorm:"type:varchar(100)"`
	Gender         string       `gorm:"type:varchar(1)"`
	BirthDate      *time.Time   `gorm:"type:date"`
	SecondaryEmail string       `gorm:"type:varchar(254)"`
	HomePhone      string       `gorm:"type:varchar(30)"`
	MobilePhone    string       `gorm:"type:varchar(30)"`
	WorkPhone      string       `gorm:"type:varchar(30)"`
	HomeAddress    AddressModel `gorm:"embedded;embeddedPrefix:home_"`
	HomeCountyID   *uuid.UUID   `gorm:"type:uuid"`
	WorkAddress    AddressModel `gorm:"embedded;embeddedPrefix:work_"`
	JobTitle       string       `gorm:"type:varchar(200)"`
	PositionID     *uuid.UUID   `gorm:"type:uuid"`
	FirmCode       string       `gorm:"type:varchar(20);index"`
	CertNumber     string       `gorm:"type:varchar(30)"`
	CertDate       *time.Time   `gorm:"type:date"`
	CertState      string       `gorm:"type:varchar(2)"`
	CollegeID      *uuid.UUID   `gorm:"type:uuid"`
	GraduationDate *time.Time   `gorm:"type:date"`
	InterestIDs    []uuid.UUID  `gorm:"type:jsonb;serializer:json"`
	EmailOptOut    bool         `gorm:"not null;default:false"`
	MailOptOut     bool         `gorm:"not null;default:false"`
	TextOptIn      bool         `gorm:"not null;default:false"`
	Retired        bool         `gorm:"not null;default:false"`
	Student        bool         `gorm:"not null;default:false"`

	MemberStatus    membership.StatusCode `gorm:"type:varchar(10);not null;default:'N';index"`
	DuesPaidThrough int                   `gorm:"not null;default:0"`
	BillingClass    string                `gorm:"type:varchar(10)"`
	JoinDate        *time.Time            `gorm:"type:date"`
	Roles           []string              `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the persistence model to a domain Member.
func (m *MemberModel) ToDomain() *membership.Member {
	roles := m.Roles
	if roles == nil {
		roles = []string{}
	}
	return &membership.Member{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Email:   m.Email,
		AMNetID: m.AMNetID,
		Profile: membership.Profile{
			FirstName:      m.FirstName,
			MiddleName:     m.MiddleName,
			LastName:       m.LastName,
			Suffix:         m.Suffix,
			Nickname:       m.Nickname,
			Gender:         m.Gender,
			BirthDate:      m.BirthDate,
			SecondaryEmail: m.SecondaryEmail,
			HomePhone:      m.HomePhone,
			MobilePhone:    m.MobilePhone,
			WorkPhone:      m.WorkPhone,
			HomeAddress:    m.HomeAddress.toDomain(),
			HomeCountyID:   m.HomeCountyID,
			WorkAddress:    m.WorkAddress.toDomain(),
			JobTitle:       m.JobTitle,
			PositionID:     m.PositionID,
			FirmCode:       m.FirmCode,
			CertNumber:     m.CertNumber,
			CertDate:       m.CertDate,
			CertState:      m.CertState,
			CollegeID:      m.CollegeID,
			GraduationDate: m.GraduationDate,
			InterestIDs:    m.InterestIDs,
			EmailOptOut:    m.EmailOptOut,
			MailOptOut:     m.MailOptOut,
			TextOptIn:      m.TextOptIn,
			Retired:        m.Retired,
			Student:        m.Student,
		},
		MemberStatus:    m.MemberStatus,
		DuesPaidThrough: m.DuesPaidThrough,
		BillingClass:    m.BillingClass,
		JoinDate:        m.JoinDate,
		Roles:           roles,
	}
}

// MemberModelFromDomain creates a persistence model from a domain Member.
func MemberModelFromDomain(m *membership.Member) *MemberModel {
	model := &MemberModel{
		Email:           m.Email,
		AMNetID:         m.AMNetID,
		FirstName:       m.FirstName,
		MiddleName:      m.MiddleName,
		LastName:        m.LastName,
		Suffix:          m.Suffix,
		Nickname:        m.Nickname,
		Gender:          m.Gender,
		BirthDate:       m.BirthDate,
		SecondaryEmail:  m.SecondaryEmail,
		HomePhone:       m.HomePhone,
		MobilePhone:     m.MobilePhone,
		WorkPhone:       m.WorkPhone,
		HomeAddress:     addressModelFrom(m.HomeAddress),
		HomeCountyID:    m.HomeCountyID,
		WorkAddress:     addressModelFrom(m.WorkAddress),
		JobTitle:        m.JobTitle,
		PositionID:      m.PositionID,
		FirmCode:        m.FirmCode,
		CertNumber:      m.CertNumber,
		CertDate:        m.CertDate,
		CertState:       m.CertState,
		CollegeID:       m.CollegeID,
		GraduationDate:  m.GraduationDate,
		InterestIDs:     m.InterestIDs,
		EmailOptOut:     m.EmailOptOut,
		MailOptOut:      m.MailOptOut,
		TextOptIn:       m.TextOptIn,
		Retired:         m.Retired,
		Student:         m.Student,
		MemberStatus:    m.MemberStatus,
		DuesPaidThrough: m.DuesPaidThrough,
		BillingClass:    m.BillingClass,
		JoinDate:        m.JoinDate,
		Roles:           m.Roles,
	}
	model.FromDomainAggregateRoot(m.BaseAggregateRoot)
	return model
}

// LicenseModel is the persistence model for a membership License.
// The unique index keeps one license per member and type.
type LicenseModel struct {
	BaseModel
	MemberID       uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_license_member_type,priority:1"`
	Type           membership.LicenseType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_license_member_type,priority:2"`
	Status         membership.LicenseStatus `gorm:"type:varchar(20);not null"`
	Expiry         time.Time                `gorm:"not null"`
	LicensedEntity string                   `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (LicenseModel) TableName() string {
	return "licenses"
}

// ToDomain converts the persistence model to a domain License.
func (m *LicenseModel) ToDomain() *membership.License {
	return &membership.License{
		BaseEntity:     m.BaseModel.ToDomain(),
		MemberID:       m.MemberID,
		Type:           m.Type,
		Status:         m.Status,
		Expiry:         m.Expiry,
		LicensedEntity: m.LicensedEntity,
	}
}

// LicenseModelFromDomain creates a persistence model from a domain License.
func LicenseModelFromDomain(l *membership.License) *LicenseModel {
	model := &LicenseModel{
		MemberID:       l.MemberID,
		Type:           l.Type,
		Status:         l.Status,
		Expiry:         l.Expiry,
		LicensedEntity: l.LicensedEntity,
	}
	model.FromDomainBaseEntity(l.BaseEntity)
	return model
}
