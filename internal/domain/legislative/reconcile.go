package legislative

import (
	"strings"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
)

// Plan is the set of changes that brings a member's contacts in line with AM.net
type Plan struct {
	Create []*Contact
	Update []*Contact
	Delete []Contact
	// Kept holds the final contact set after the plan is applied
	Kept []Contact
}

// IsEmpty reports whether the plan changes nothing
func (p Plan) IsEmpty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Senator returns the contact in the senator slot after the plan, if any
func (p Plan) Senator() *Contact { return p.slot(SlotSenator) }

// Delegate returns the contact in the delegate slot after the plan, if any
func (p Plan) Delegate() *Contact { return p.slot(SlotDelegate) }

// Others returns the contacts in the other slot after the plan
func (p Plan) Others() []Contact {
	var out []Contact
	for _, c := range p.Kept {
		if c.Slot == SlotOther {
			out = append(out, c)
		}
	}
	return out
}

func (p Plan) slot(s Slot) *Contact {
	for i := range p.Kept {
		if p.Kept[i].Slot == s {
			return &p.Kept[i]
		}
	}
	return nil
}

// Reconcile diffs local contacts against the remote list by legislator ID.
//
// The first SEN entry takes the senator slot and the first DEL entry the
// delegate slot; further SEN or DEL entries and all OTH entries go to the
// other slot. Remote entries without a legislator ID are ignored, as are
// repeated IDs after the first. Local contacts whose legislator no longer
// appears remotely are deleted, including duplicates of a kept legislator.
func Reconcile(memberID uuid.UUID, local []Contact, remote []integration.LegislativeContact) Plan {
	existing := make(map[string]*Contact, len(local))
	var plan Plan
	for i := range local {
		c := local[i]
		if _, dup := existing[c.LegislatorID]; dup || c.LegislatorID == "" {
			plan.Delete = append(plan.Delete, c)
			continue
		}
		existing[c.LegislatorID] = &c
	}

	seen := make(map[string]bool, len(remote))
	senatorTaken, delegateTaken := false, false
	for _, r := range remote {
		id := strings.TrimSpace(r.LegislatorID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		slot := SlotOther
		switch {
		case r.Type == integration.LegislativeContactSenator && !senatorTaken:
			slot, senatorTaken = SlotSenator, true
		case r.Type == integration.LegislativeContactDelegate && !delegateTaken:
			slot, delegateTaken = SlotDelegate, true
		}

		if c, ok := existing[id]; ok {
			if c.apply(slot, r) {
				plan.Update = append(plan.Update, c)
			}
			plan.Kept = append(plan.Kept, *c)
			continue
		}
		c := NewContact(memberID, slot, r)
		plan.Create = append(plan.Create, c)
		plan.Kept = append(plan.Kept, *c)
	}

	for i := range local {
		c := local[i]
		if kept, ok := existing[c.LegislatorID]; ok && kept.ID == c.ID && !seen[c.LegislatorID] {
			plan.Delete = append(plan.Delete, c)
		}
	}
	return plan
}
