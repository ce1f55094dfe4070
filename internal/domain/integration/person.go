package integration

import "strings"

// PersonAddress is an address block on a Person record
type PersonAddress struct {
	Line1      string `json:"Line1"`
	Line2      string `json:"Line2"`
	City       string `json:"City"`
	State      string `json:"State"`
	Zip        string `json:"Zip"`
	CountyCode string `json:"CountyCode,omitempty"`
}

// Person is the AM.net profile record identified by a Names ID
type Person struct {
	NamesID    string `json:"NamesId"`
	FirstName  string `json:"FirstName"`
	MiddleName string `json:"MiddleName"`
	LastName   string `json:"LastName"`
	Suffix     string `json:"Suffix"`
	Nickname   string `json:"NickName"`
	Gender     string `json:"Gender"`
	BirthDate  Date   `json:"BirthDate"`

	Email          string `json:"Email"`
	SecondaryEmail string `json:"Email2"`
	HomePhone      string `json:"HomePhone"`
	MobilePhone    string `json:"MobilePhone"`
	WorkPhone      string `json:"WorkPhone"`

	HomeAddress PersonAddress `json:"HomeAddress"`
	WorkAddress PersonAddress `json:"WorkAddress"`

	JobTitle     string `json:"JobTitle"`
	PositionCode string `json:"PositionCode"`
	FirmCode     string `json:"FirmCode"`

	CertNumber     string   `json:"CertificateNumber"`
	CertDate       Date     `json:"CertificateDate"`
	CertState      string   `json:"CertificateState"`
	CollegeCode    string   `json:"CollegeCode"`
	GraduationDate Date     `json:"GraduationDate"`
	InterestCodes  []string `json:"InterestCodes"`

	EmailOptOut bool `json:"EmailOptOut"`
	MailOptOut  bool `json:"MailOptOut"`
	TextOptIn   bool `json:"TextOptIn"`
	Retired     bool `json:"IsRetired"`
	Student     bool `json:"IsStudent"`

	MemberStatusCode string `json:"MemberStatusCode"`
	BillingClassCode string `json:"BillingClassCode"`
	DuesPaidThrough  int    `json:"DuesPaidThru"`
	JoinDate         Date   `json:"JoinDate"`

	ExcludeFromWeb bool `json:"ExcludeFromWeb"`
	LastChanged    Date `json:"LastChanged"`
}

// IsNew reports whether the person has not been created in AM.net yet
func (p *Person) IsNew() bool {
	return strings.TrimSpace(p.NamesID) == ""
}

// CheckSyncable returns ErrRecordExcluded for records flagged as excluded
func (p *Person) CheckSyncable() error {
	if p.ExcludeFromWeb {
		return ErrRecordExcluded
	}
	return nil
}

// PersonSearchQuery are the /PersonSearch filters. Empty fields are omitted.
type PersonSearchQuery struct {
	Email        string
	FirstName    string
	LastName     string
	ChangedSince Date
}

// PersonSummary is one /PersonSearch hit
type PersonSummary struct {
	NamesID     string `json:"NamesId"`
	FirstName   string `json:"FirstName"`
	LastName    string `json:"LastName"`
	Email       string `json:"Email"`
	LastChanged Date   `json:"LastChanged"`
}
