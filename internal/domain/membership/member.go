package membership

import (
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/domain/shared/valueobject"
)

// Origin records who caused a member change, so event handlers can tell a
// local edit from a save performed by an AM.net pull.
type Origin string

const (
	OriginLocal Origin = "local"
	OriginAMNet Origin = "amnet"
)

// Profile holds the personal fields mirrored to and from the AM.net Person
type Profile struct {
	FirstName      string
	MiddleName     string
	LastName       string
	Suffix         string
	Nickname       string
	Gender         string
	BirthDate      *time.Time
	SecondaryEmail string
	HomePhone      string
	MobilePhone    string
	WorkPhone      string
	HomeAddress    valueobject.Address
	HomeCountyID   *uuid.UUID
	WorkAddress    valueobject.Address
	JobTitle       string
	PositionID     *uuid.UUID
	FirmCode       string
	CertNumber     string
	CertDate       *time.Time
	CertState      string
	CollegeID      *uuid.UUID
	GraduationDate *time.Time
	InterestIDs    []uuid.UUID
	EmailOptOut    bool
	MailOptOut     bool
	TextOptIn      bool
	Retired        bool
	Student        bool
}

// IsCPA reports whether the member holds a CPA certificate
func (p Profile) IsCPA() bool {
	return strings.TrimSpace(p.CertNumber) != ""
}

// Member is the local user account and the aggregate root of the
// membership context.
type Member struct {
	shared.BaseAggregateRoot
	Email   string
	AMNetID string
	Profile

	MemberStatus    StatusCode
	DuesPaidThrough int
	BillingClass    string
	JoinDate        *time.Time
	Roles           []string
}

// SyncLockKey is the lock held while a member is being synced with AM.net
func SyncLockKey(id uuid.UUID) string {
	return "member." + id.String() + ".locked"
}

// NewMember creates a member with a unique email and a name
func NewMember(email, firstName, lastName string) (*Member, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Member must have a first or last name")
	}

	m := &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Profile: Profile{
			FirstName: strings.TrimSpace(firstName),
			LastName:  strings.TrimSpace(lastName),
		},
		MemberStatus: StatusNonMember,
		Roles:        []string{},
	}
	m.AddDomainEvent(NewMemberCreatedEvent(m))
	return m, nil
}

// FullName returns "First Middle Last Suffix" without empty parts
func (m *Member) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{m.FirstName, m.MiddleName, m.LastName, m.Suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ChangeEmail sets the primary email
func (m *Member) ChangeEmail(email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	m.Email = email
	return nil
}

// UpdateProfile replaces the profile after validating it
func (m *Member) UpdateProfile(p Profile, origin Origin) error {
	if err := p.HomeAddress.Validate(); err != nil {
		return err
	}
	if err := p.WorkAddress.Validate(); err != nil {
		return err
	}
	if p.SecondaryEmail != "" {
		if _, err := normalizeEmail(p.SecondaryEmail); err != nil {
			return err
		}
	}
	if p.Gender != "" && p.Gender != "M" && p.Gender != "F" && p.Gender != "X" {
		return shared.NewDomainError("INVALID_GENDER", "Gender must be M, F or X")
	}

	m.Profile = p
	m.Touch()
	m.AddDomainEvent(NewMemberUpdatedEvent(m, origin))
	return nil
}

// LinkAMNet records the AM.net Names ID for the member
func (m *Member) LinkAMNet(namesID string) error {
	namesID = strings.TrimSpace(namesID)
	if namesID == "" {
		return shared.NewDomainError("INVALID_AMNET_ID", "AM.net ID cannot be empty")
	}
	if m.AMNetID != "" && m.AMNetID != namesID {
		return shared.NewDomainError("AMNET_ID_CONFLICT", "Member is already linked to a different AM.net record")
	}
	m.AMNetID = namesID
	return nil
}

// IsLinked reports whether the member has an AM.net record
func (m *Member) IsLinked() bool {
	return m.AMNetID != ""
}

// ApplyRemoteMembership copies the membership fields reported by AM.net
func (m *Member) ApplyRemoteMembership(status StatusCode, billingClass string, paidThrough int, joinDate *time.Time) {
	old := m.MemberStatus
	m.MemberStatus = status
	m.BillingClass = billingClass
	m.DuesPaidThrough = paidThrough
	m.JoinDate = joinDate
	m.Touch()
	if old != status {
		m.AddDomainEvent(NewMemberStatusChangedEvent(m, old, status))
	}
}

// ApplyPulled replaces the member's data with what was mapped from AM.net
func (m *Member) ApplyPulled(p Pulled) error {
	if err := m.ChangeEmail(p.Email); err != nil {
		return err
	}
	if err := m.UpdateProfile(p.Profile, OriginAMNet); err != nil {
		return err
	}
	m.ApplyRemoteMembership(p.MemberStatus, p.BillingClass, p.DuesPaidThrough, p.JoinDate)
	return nil
}

// HasRole reports whether the member holds role
func (m *Member) HasRole(role string) bool {
	return slices.Contains(m.Roles, role)
}

// GrantRole adds role. Returns false when it was already held.
func (m *Member) GrantRole(role string) bool {
	if m.HasRole(role) {
		return false
	}
	m.Roles = append(m.Roles, role)
	m.Touch()
	m.AddDomainEvent(NewMemberRoleChangedEvent(m, role, true))
	return true
}

// RevokeRole removes role. Returns false when it was not held.
func (m *Member) RevokeRole(role string) bool {
	i := slices.Index(m.Roles, role)
	if i < 0 {
		return false
	}
	m.Roles = slices.Delete(m.Roles, i, i+1)
	m.Touch()
	m.AddDomainEvent(NewMemberRoleChangedEvent(m, role, false))
	return true
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email is not a valid address")
	}
	return email, nil
}
