package membership

import (
	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/shared"
)

// AggregateTypeMember is the aggregate type of member events
const AggregateTypeMember = "Member"

// Event type constants
const (
	EventTypeMemberCreated       = "member.created"
	EventTypeMemberUpdated       = "member.updated"
	EventTypeMemberStatusChanged = "member.status_changed"
	EventTypeMemberRoleChanged   = "member.role_changed"
	EventTypeLicenseChanged      = "license.changed"
)

// MemberCreatedEvent is published when a member is created
type MemberCreatedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID `json:"member_id"`
	Email    string    `json:"email"`
}

// NewMemberCreatedEvent creates a MemberCreatedEvent
func NewMemberCreatedEvent(m *Member) *MemberCreatedEvent {
	return &MemberCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberCreated, AggregateTypeMember, m.ID),
		MemberID:        m.ID,
		Email:           m.Email,
	}
}

// MemberUpdatedEvent is published when a member's profile changes
type MemberUpdatedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID `json:"member_id"`
	AMNetID  string    `json:"amnet_id,omitempty"`
	Origin   Origin    `json:"origin"`
}

// NewMemberUpdatedEvent creates a MemberUpdatedEvent
func NewMemberUpdatedEvent(m *Member, origin Origin) *MemberUpdatedEvent {
	return &MemberUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberUpdated, AggregateTypeMember, m.ID),
		MemberID:        m.ID,
		AMNetID:         m.AMNetID,
		Origin:          origin,
	}
}

// MemberStatusChangedEvent is published when the AM.net status code changes
type MemberStatusChangedEvent struct {
	shared.BaseDomainEvent
	MemberID  uuid.UUID  `json:"member_id"`
	OldStatus StatusCode `json:"old_status"`
	NewStatus StatusCode `json:"new_status"`
}

// NewMemberStatusChangedEvent creates a MemberStatusChangedEvent
func NewMemberStatusChangedEvent(m *Member, oldStatus, newStatus StatusCode) *MemberStatusChangedEvent {
	return &MemberStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberStatusChanged, AggregateTypeMember, m.ID),
		MemberID:        m.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// MemberRoleChangedEvent is published when a role is granted or revoked
type MemberRoleChangedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID `json:"member_id"`
	Role     string    `json:"role"`
	Granted  bool      `json:"granted"`
}

// NewMemberRoleChangedEvent creates a MemberRoleChangedEvent
func NewMemberRoleChangedEvent(m *Member, role string, granted bool) *MemberRoleChangedEvent {
	return &MemberRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberRoleChanged, AggregateTypeMember, m.ID),
		MemberID:        m.ID,
		Role:            role,
		Granted:         granted,
	}
}
