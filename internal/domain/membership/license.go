package membership

import (
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/shared"
)

// LicenseType distinguishes license kinds. Only membership licenses are
// managed here.
type LicenseType string

const LicenseTypeMembership LicenseType = "membership"

// LicenseStatus is the lifecycle state of a license
type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "active"
	LicenseStatusExpired   LicenseStatus = "expired"
	LicenseStatusSuspended LicenseStatus = "suspended"
	LicenseStatusRevoked   LicenseStatus = "revoked"
)

// License is a member's entitlement to membership benefits until Expiry.
// A member has at most one membership license.
type License struct {
	shared.BaseEntity
	MemberID       uuid.UUID
	Type           LicenseType
	Status         LicenseStatus
	Expiry         time.Time
	LicensedEntity string
}

// NewMembershipLicense creates an active membership license
func NewMembershipLicense(memberID uuid.UUID, expiry time.Time) *License {
	return &License{
		BaseEntity:     shared.NewBaseEntity(),
		MemberID:       memberID,
		Type:           LicenseTypeMembership,
		Status:         LicenseStatusActive,
		Expiry:         expiry,
		LicensedEntity: RoleMember,
	}
}

// IsActive reports whether the license grants benefits at now
func (l *License) IsActive(now time.Time) bool {
	if l == nil {
		return false
	}
	return l.Status == LicenseStatusActive && now.Before(l.Expiry)
}

// Renew activates the license until expiry. Returns true if anything changed.
func (l *License) Renew(expiry time.Time) bool {
	if l.Status == LicenseStatusActive && l.Expiry.Equal(expiry) {
		return false
	}
	l.Status = LicenseStatusActive
	l.Expiry = expiry
	l.UpdatedAt = time.Now()
	return true
}

// Transition moves the license to a non-active status, keeping the expiry.
// Returns true if the status changed.
func (l *License) Transition(status LicenseStatus) bool {
	if l.Status == status {
		return false
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return true
}

// LicenseChangedEvent is published when a membership license is created or changes status
type LicenseChangedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID     `json:"member_id"`
	Status   LicenseStatus `json:"status"`
	Expiry   time.Time     `json:"expiry"`
}

// NewLicenseChangedEvent creates a LicenseChangedEvent
func NewLicenseChangedEvent(l *License) *LicenseChangedEvent {
	return &LicenseChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLicenseChanged, AggregateTypeMember, l.MemberID),
		MemberID:        l.MemberID,
		Status:          l.Status,
		Expiry:          l.Expiry,
	}
}
