package integration

// DuesTransactionType classifies a dues ledger line
type DuesTransactionType string

const (
	DuesTransactionInvoice    DuesTransactionType = "Invoice"
	DuesTransactionPayment    DuesTransactionType = "Payment"
	DuesTransactionAdjustment DuesTransactionType = "Adjustment"
	DuesTransactionWriteOff   DuesTransactionType = "WriteOff"
)

// DuesTransaction is one line of /Person/{id}/dues
type DuesTransaction struct {
	Type       DuesTransactionType `json:"TransactionTypeCode"`
	Amount     Amount              `json:"Amount"`
	FiscalYear int                 `json:"Year"`
	Date       Date                `json:"Date"`
	Note       string              `json:"Note"`
}

// Dues is the /Person/{id}/dues response
type Dues struct {
	NamesID          string            `json:"NamesId"`
	FiscalYear       int               `json:"Year"`
	BillingClassCode string            `json:"BillingClassCode"`
	Balance          Amount            `json:"Balance"`
	Transactions     []DuesTransaction `json:"Transactions"`
}

// PaymentPlan is one entry of /Person/{id}/paymentplans
type PaymentPlan struct {
	ID                    string `json:"PlanId"`
	Status                string `json:"Status"`
	StartDate             Date   `json:"StartDate"`
	EndDate               Date   `json:"EndDate"`
	Balance               Amount `json:"Balance"`
	InstallmentsRemaining int    `json:"InstallmentsRemaining"`
}

// IsActive reports whether the plan is currently in force
func (p PaymentPlan) IsActive() bool {
	return p.Status == "Active" || p.Status == "A"
}

// LegislativeContactType is AM.net's relationship kind
type LegislativeContactType string

const (
	LegislativeContactSenator  LegislativeContactType = "SEN"
	LegislativeContactDelegate LegislativeContactType = "DEL"
	LegislativeContactOther    LegislativeContactType = "OTH"
)

// LegislativeContact is one entry of /Person/{id}/legislativecontacts
type LegislativeContact struct {
	LegislatorID   string                 `json:"LegislatorId"`
	LegislatorName string                 `json:"LegislatorName"`
	Type           LegislativeContactType `json:"ContactTypeCode"`
	District       string                 `json:"District"`
	Relationships  []string               `json:"RelationshipCodes"`
	Notes          string                 `json:"Notes"`
}

// Rate is one entry of /DuesRates or /PeerReviewRates
type Rate struct {
	BillingClassCode string `json:"BillingClassCode"`
	Description      string `json:"Description"`
	Amount           Amount `json:"Amount"`
	FiscalYear       int    `json:"Year"`
}

// PeerReviewTransaction is an AM.net peer-review billing-ledger line
type PeerReviewTransaction struct {
	TransactionTypeCode string `json:"TransactionTypeCode"`
	Amount              Amount `json:"Amount"`
	Year                int    `json:"Year"`
	Note                string `json:"Note"`
	Date                Date   `json:"Date"`
	BillingClassCode    string `json:"BillingClassCode"`
}

// FirmPeerReview is the /firm/{id}/peerreview response
type FirmPeerReview struct {
	FirmCode         string                  `json:"FirmCode"`
	FirmName         string                  `json:"FirmName"`
	BillingClassCode string                  `json:"BillingClassCode"`
	Transactions     []PeerReviewTransaction `json:"Transactions"`
}

// FirmChange is one entry of /FirmChanges
type FirmChange struct {
	FirmCode         string        `json:"FirmCode"`
	Name             string        `json:"Name"`
	Address          PersonAddress `json:"Address"`
	Phone            string        `json:"Phone"`
	BillingClassCode string        `json:"BillingClassCode"`
	PeerReview       bool          `json:"PeerReviewEnrolled"`
	Deleted          bool          `json:"Deleted"`
	ChangedAt        Date          `json:"ChangeDate"`
}

// ListItem is one entry of a /Lists code list
type ListItem struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
	Active      bool   `json:"Active"`
}

// Event is the /Event response
type Event struct {
	Code      string `json:"EventCode"`
	Title     string `json:"Title"`
	StartDate Date   `json:"StartDate"`
	EndDate   Date   `json:"EndDate"`
	Location  string `json:"Location"`
	Credits   Amount `json:"Credits"`
}

// Product is the /Product response
type Product struct {
	Code        string `json:"ProductCode"`
	Title       string `json:"Title"`
	Type        string `json:"ProductTypeCode"`
	MemberPrice Amount `json:"MemberPrice"`
	ListPrice   Amount `json:"NonMemberPrice"`
}
