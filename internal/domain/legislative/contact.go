package legislative

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/shared"
)

// Slot is the member field a relationship occupies
type Slot string

const (
	SlotSenator  Slot = "senator"
	SlotDelegate Slot = "delegate"
	SlotOther    Slot = "other"
)

// ContactType maps a slot back to the AM.net contact type
func (s Slot) ContactType() integration.LegislativeContactType {
	switch s {
	case SlotSenator:
		return integration.LegislativeContactSenator
	case SlotDelegate:
		return integration.LegislativeContactDelegate
	}
	return integration.LegislativeContactOther
}

// Contact is one constituent to legislator relationship held by a member
type Contact struct {
	shared.BaseEntity
	MemberID       uuid.UUID
	Slot           Slot
	LegislatorID   string
	LegislatorName string
	District       string
	Relationships  []string
	Notes          string
}

// NewContact creates a contact for the member from an AM.net entry
func NewContact(memberID uuid.UUID, slot Slot, remote integration.LegislativeContact) *Contact {
	c := &Contact{
		BaseEntity:   shared.NewBaseEntity(),
		MemberID:     memberID,
		Slot:         slot,
		LegislatorID: strings.TrimSpace(remote.LegislatorID),
	}
	c.copyFrom(remote)
	return c
}

func (c *Contact) copyFrom(remote integration.LegislativeContact) {
	c.LegislatorName = strings.TrimSpace(remote.LegislatorName)
	c.District = strings.TrimSpace(remote.District)
	c.Relationships = slices.Clone(remote.Relationships)
	c.Notes = remote.Notes
}

// matches reports whether the contact already holds the remote values in slot
func (c *Contact) matches(slot Slot, remote integration.LegislativeContact) bool {
	return c.Slot == slot &&
		c.LegislatorName == strings.TrimSpace(remote.LegislatorName) &&
		c.District == strings.TrimSpace(remote.District) &&
		slices.Equal(c.Relationships, remote.Relationships) &&
		c.Notes == remote.Notes
}

// apply updates the contact in place. Returns true if anything changed.
func (c *Contact) apply(slot Slot, remote integration.LegislativeContact) bool {
	if c.matches(slot, remote) {
		return false
	}
	c.Slot = slot
	c.copyFrom(remote)
	c.UpdatedAt = time.Now()
	return true
}

// ToRemote converts the contact to the AM.net representation
func (c *Contact) ToRemote() integration.LegislativeContact {
	return integration.LegislativeContact{
		LegislatorID:   c.LegislatorID,
		LegislatorName: c.LegislatorName,
		Type:           c.Slot.ContactType(),
		District:       c.District,
		Relationships:  slices.Clone(c.Relationships),
		Notes:          c.Notes,
	}
}

// ToRemote converts a member's contacts to the list AM.net expects,
// senator first, then delegate, then others.
func ToRemote(contacts []Contact) []integration.LegislativeContact {
	sorted := slices.Clone(contacts)
	slices.SortStableFunc(sorted, func(a, b Contact) int {
		return slotOrder(a.Slot) - slotOrder(b.Slot)
	})
	out := make([]integration.LegislativeContact, 0, len(sorted))
	for i := range sorted {
		out = append(out, sorted[i].ToRemote())
	}
	return out
}

func slotOrder(s Slot) int {
	switch s {
	case SlotSenator:
		return 0
	case SlotDelegate:
		return 1
	}
	return 2
}
