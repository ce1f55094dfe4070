package amnet

import "github.com/vscpa/backend/internal/domain/integration"

// createPersonResponse is the POST /Person body
type createPersonResponse struct {
	NamesID string `json:"NamesId"`
}

// errorResponse is the body AM.net sends with 4xx/5xx answers
type errorResponse struct {
	Message          string `json:"Message"`
	ExceptionMessage string `json:"ExceptionMessage"`
}

func (e errorResponse) text() string {
	if e.ExceptionMessage != "" {
		return e.ExceptionMessage
	}
	return e.Message
}

// legislativeContactsRequest is the PUT /Person/{id}/legislativecontacts body
type legislativeContactsRequest struct {
	NamesID  string                           `json:"NamesId"`
	Contacts []integration.LegislativeContact `json:"Contacts"`
}
