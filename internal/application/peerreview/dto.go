package peerreview

import (
	"github.com/shopspring/decimal"
	"github.com/vscpa/backend/internal/domain/peerreview"
)

// InfoResponse is a firm's netted peer-review billing
type InfoResponse struct {
	FirmCode     string `json:"firm_code"`
	FirmName     string `json:"firm_name"`
	BillingClass string `json:"billing_class"`
	FiscalYear   int    `json:"fiscal_year"`
	// Balance and Credit cover every year in the ledger
	Balance      decimal.Decimal          `json:"balance"`
	Credit       decimal.Decimal          `json:"credit"`
	CurrentYear  *peerreview.YearBalance  `json:"current_year,omitempty"`
	Years        []peerreview.YearBalance `json:"years"`
	Transactions []peerreview.Transaction `json:"transactions"`
	Rate         *decimal.Decimal         `json:"rate,omitempty"`
	ClassChanged bool                     `json:"class_changed"`
	Skipped      int                      `json:"skipped_lines,omitempty"`
}
