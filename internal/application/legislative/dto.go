package legislative

import (
	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/legislative"
)

// ContactResponse is a legislative contact in API responses
type ContactResponse struct {
	ID             uuid.UUID `json:"id"`
	LegislatorID   string    `json:"legislator_id"`
	LegislatorName string    `json:"legislator_name"`
	District       string    `json:"district,omitempty"`
	Relationships  []string  `json:"relationships"`
	Notes          string    `json:"notes,omitempty"`
}

func toContactResponse(c *legislative.Contact) *ContactResponse {
	if c == nil {
		return nil
	}
	rels := c.Relationships
	if rels == nil {
		rels = []string{}
	}
	return &ContactResponse{
		ID:             c.ID,
		LegislatorID:   c.LegislatorID,
		LegislatorName: c.LegislatorName,
		District:       c.District,
		Relationships:  rels,
		Notes:          c.Notes,
	}
}

// ContactsResponse is a member's contacts grouped by slot
type ContactsResponse struct {
	MemberID uuid.UUID         `json:"member_id"`
	Senator  *ContactResponse  `json:"senator"`
	Delegate *ContactResponse  `json:"delegate"`
	Others   []ContactResponse `json:"others"`
}

func toContactsResponse(memberID uuid.UUID, contacts []legislative.Contact) *ContactsResponse {
	resp := &ContactsResponse{MemberID: memberID, Others: []ContactResponse{}}
	for i := range contacts {
		c := &contacts[i]
		switch {
		case c.Slot == legislative.SlotSenator && resp.Senator == nil:
			resp.Senator = toContactResponse(c)
		case c.Slot == legislative.SlotDelegate && resp.Delegate == nil:
			resp.Delegate = toContactResponse(c)
		default:
			resp.Others = append(resp.Others, *toContactResponse(c))
		}
	}
	return resp
}

// SyncResponse reports what a reconcile changed
type SyncResponse struct {
	ContactsResponse
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Deleted int    `json:"deleted"`
	Status  string `json:"status"`
}
