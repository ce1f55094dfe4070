package reference

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefreshResult summarizes a reference-data refresh
type RefreshResult struct {
	Kind      string         `json:"kind"`
	Fetched   int            `json:"fetched"`
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	PerList   map[string]int `json:"per_list,omitempty"`
	Since     *time.Time     `json:"since,omitempty"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
}

// EventResponse is an AM.net event as the API returns it
type EventResponse struct {
	Code      string           `json:"code"`
	Title     string           `json:"title"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
	Location  string           `json:"location,omitempty"`
	Credits   *decimal.Decimal `json:"credits"`
}

// ProductResponse is an AM.net product as the API returns it
type ProductResponse struct {
	Code        string           `json:"code"`
	Title       string           `json:"title"`
	Type        string           `json:"type"`
	MemberPrice *decimal.Decimal `json:"member_price"`
	ListPrice   *decimal.Decimal `json:"list_price"`
}
