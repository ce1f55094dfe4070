package membership

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared/valueobject"
)

// =============================================================================
// Member DTOs
// =============================================================================

// AddressDTO is a postal address in requests and responses
type AddressDTO struct {
	Line1 string `json:"line1" binding:"max=200"`
	Line2 string `json:"line2" binding:"max=200"`
	City  string `json:"city" binding:"max=100"`
	State string `json:"state" binding:"omitempty,len=2"`
	Zip   string `json:"zip" binding:"max=10"`
}

func toAddressDTO(a valueobject.Address) AddressDTO {
	return AddressDTO{Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, Zip: a.Zip}
}

func (a AddressDTO) toValue() (valueobject.Address, error) {
	return valueobject.NewAddress(a.Line1, a.Line2, a.City, a.State, a.Zip)
}

// UpdateProfileRequest is a local profile edit. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName      *string      `json:"first_name" binding:"omitempty,max=100"`
	MiddleName     *string      `json:"middle_name" binding:"omitempty,max=100"`
	LastName       *string      `json:"last_name" binding:"omitempty,max=100"`
	Suffix         *string      `json:"suffix" binding:"omitempty,max=20"`
	Nickname       *string      `json:"nickname" binding:"omitempty,max=100"`
	Gender         *string      `json:"gender" binding:"omitempty,oneof=M F X"`
	BirthDate      *time.Time   `json:"birth_date"`
	SecondaryEmail *string      `json:"secondary_email" binding:"omitempty,email,max=200"`
	HomePhone      *string      `json:"home_phone" binding:"omitempty,max=30"`
	MobilePhone    *string      `json:"mobile_phone" binding:"omitempty,max=30"`
	WorkPhone      *string      `json:"work_phone" binding:"omitempty,max=30"`
	HomeAddress    *AddressDTO  `json:"home_address"`
	HomeCountyID   *uuid.UUID   `json:"home_county_id"`
	WorkAddress    *AddressDTO  `json:"work_address"`
	JobTitle       *string      `json:"job_title" binding:"omitempty,max=200"`
	PositionID     *uuid.UUID   `json:"position_id"`
	FirmCode       *string      `json:"firm_code" binding:"omitempty,max=20"`
	CertNumber     *string      `json:"cert_number" binding:"omitempty,max=30"`
	CertDate       *time.Time   `json:"cert_date"`
	CertState      *string      `json:"cert_state" binding:"omitempty,len=2"`
	CollegeID      *uuid.UUID   `json:"college_id"`
	GraduationDate *time.Time   `json:"graduation_date"`
	InterestIDs    *[]uuid.UUID `json:"interest_ids"`
	EmailOptOut    *bool        `json:"email_opt_out"`
	MailOptOut     *bool        `json:"mail_opt_out"`
	TextOptIn      *bool        `json:"text_opt_in"`
	Retired        *bool        `json:"retired"`
	Student        *bool        `json:"student"`
}

// apply returns p with the request's non-nil fields applied
func (r UpdateProfileRequest) apply(p membership.Profile) (membership.Profile, error) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.FirstName, r.FirstName)
	set(&p.MiddleName, r.MiddleName)
	set(&p.LastName, r.LastName)
	set(&p.Suffix, r.Suffix)
	set(&p.Nickname, r.Nickname)
	set(&p.Gender, r.Gender)
	set(&p.SecondaryEmail, r.SecondaryEmail)
	set(&p.HomePhone, r.HomePhone)
	set(&p.MobilePhone, r.MobilePhone)
	set(&p.WorkPhone, r.WorkPhone)
	set(&p.JobTitle, r.JobTitle)
	set(&p.FirmCode, r.FirmCode)
	set(&p.CertNumber, r.CertNumber)
	set(&p.CertState, r.CertState)

	if r.BirthDate != nil {
		p.BirthDate = r.BirthDate
	}
	if r.CertDate != nil {
		p.CertDate = r.CertDate
	}
	if r.GraduationDate != nil {
		p.GraduationDate = r.GraduationDate
	}
	if r.HomeCountyID != nil {
		p.HomeCountyID = r.HomeCountyID
	}
	if r.PositionID != nil {
		p.PositionID = r.PositionID
	}
	if r.CollegeID != nil {
		p.CollegeID = r.CollegeID
	}
	if r.InterestIDs != nil {
		p.InterestIDs = *r.InterestIDs
	}
	if r.HomeAddress != nil {
		a, err := r.HomeAddress.toValue()
		if err != nil {
			return p, err
		}
		p.HomeAddress = a
	}
	if r.WorkAddress != nil {
		a, err := r.WorkAddress.toValue()
		if err != nil {
			return p, err
		}
		p.WorkAddress = a
	}

	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&p.EmailOptOut, r.EmailOptOut)
	setBool(&p.MailOptOut, r.MailOptOut)
	setBool(&p.TextOptIn, r.TextOptIn)
	setBool(&p.Retired, r.Retired)
	setBool(&p.Student, r.Student)
	return p, nil
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	ID              uuid.UUID   `json:"id"`
	Email           string      `json:"email"`
	AMNetID         string      `json:"amnet_id,omitempty"`
	FullName        string      `json:"full_name"`
	FirstName       string      `json:"first_name"`
	MiddleName      string      `json:"middle_name,omitempty"`
	LastName        string      `json:"last_name"`
	Suffix          string      `json:"suffix,omitempty"`
	Nickname        string      `json:"nickname,omitempty"`
	Gender          string      `json:"gender,omitempty"`
	BirthDate       *time.Time  `json:"birth_date,omitempty"`
	SecondaryEmail  string      `json:"secondary_email,omitempty"`
	HomePhone       string      `json:"home_phone,omitempty"`
	MobilePhone     string      `json:"mobile_phone,omitempty"`
	WorkPhone       string      `json:"work_phone,omitempty"`
	HomeAddress     AddressDTO  `json:"home_address"`
	HomeCountyID    *uuid.UUID  `json:"home_county_id,omitempty"`
	WorkAddress     AddressDTO  `json:"work_address"`
	JobTitle        string      `json:"job_title,omitempty"`
	PositionID      *uuid.UUID  `json:"position_id,omitempty"`
	FirmCode        string      `json:"firm_code,omitempty"`
	CertNumber      string      `json:"cert_number,omitempty"`
	CertDate        *time.Time  `json:"cert_date,omitempty"`
	CertState       string      `json:"cert_state,omitempty"`
	CollegeID       *uuid.UUID  `json:"college_id,omitempty"`
	GraduationDate  *time.Time  `json:"graduation_date,omitempty"`
	InterestIDs     []uuid.UUID `json:"interest_ids"`
	EmailOptOut     bool        `json:"email_opt_out"`
	MailOptOut      bool        `json:"mail_opt_out"`
	TextOptIn       bool        `json:"text_opt_in"`
	Retired         bool        `json:"retired"`
	Student         bool        `json:"student"`
	MemberStatus    string      `json:"member_status"`
	BillingClass    string      `json:"billing_class,omitempty"`
	DuesPaidThrough int         `json:"dues_paid_through,omitempty"`
	JoinDate        *time.Time  `json:"join_date,omitempty"`
	Roles           []string    `json:"roles"`
	Version         int         `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ToMemberResponse converts a domain Member to MemberResponse
func ToMemberResponse(m *membership.Member) MemberResponse {
	interests := m.InterestIDs
	if interests == nil {
		interests = []uuid.UUID{}
	}
	roles := m.Roles
	if roles == nil {
		roles = []string{}
	}
	return MemberResponse{
		ID:              m.ID,
		Email:           m.Email,
		AMNetID:         m.AMNetID,
		FullName:        m.FullName(),
		FirstName:       m.FirstName,
		MiddleName:      m.MiddleName,
		LastName:        m.LastName,
		Suffix:          m.Suffix,
		Nickname:        m.Nickname,
		Gender:          m.Gender,
		BirthDate:       m.BirthDate,
		SecondaryEmail:  m.SecondaryEmail,
		HomePhone:       m.HomePhone,
		MobilePhone:     m.MobilePhone,
		WorkPhone:       m.WorkPhone,
		HomeAddress:     toAddressDTO(m.HomeAddress),
		HomeCountyID:    m.HomeCountyID,
		WorkAddress:     toAddressDTO(m.WorkAddress),
		JobTitle:        m.JobTitle,
		PositionID:      m.PositionID,
		FirmCode:        m.FirmCode,
		CertNumber:      m.CertNumber,
		CertDate:        m.CertDate,
		CertState:       m.CertState,
		CollegeID:       m.CollegeID,
		GraduationDate:  m.GraduationDate,
		InterestIDs:     interests,
		EmailOptOut:     m.EmailOptOut,
		MailOptOut:      m.MailOptOut,
		TextOptIn:       m.TextOptIn,
		Retired:         m.Retired,
		Student:         m.Student,
		MemberStatus:    string(m.MemberStatus),
		BillingClass:    m.BillingClass,
		DuesPaidThrough: m.DuesPaidThrough,
		JoinDate:        m.JoinDate,
		Roles:           roles,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// MemberListFilter are the query parameters of the member list
type MemberListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=M A T N"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at last_name email"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Membership DTOs
// =============================================================================

// LicenseResponse represents the membership license
type LicenseResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
	Expiry time.Time `json:"expiry"`
}

// MembershipStateResponse is the derived membership state of a member
type MembershipStateResponse struct {
	MemberID          uuid.UUID        `json:"member_id"`
	State             string           `json:"state"`
	MemberStatus      string           `json:"member_status"`
	FiscalYear        int              `json:"fiscal_year"`
	DuesPaidThrough   int              `json:"dues_paid_through"`
	HasMemberRole     bool             `json:"has_member_role"`
	ActivePaymentPlan bool             `json:"active_payment_plan"`
	License           *LicenseResponse `json:"license,omitempty"`
	// Pending is the license change Recompute would make, "none" when in sync
	Pending string `json:"pending_license_action"`
}

// DuesBalanceResponse is the member's dues balance. Known is false when
// AM.net did not report a usable balance.
type DuesBalanceResponse struct {
	MemberID   uuid.UUID        `json:"member_id"`
	FiscalYear int              `json:"fiscal_year"`
	Known      bool             `json:"known"`
	Balance    *decimal.Decimal `json:"balance,omitempty"`
}

// DuesRateResponse is the dues rate for the member's billing class
type DuesRateResponse struct {
	MemberID     uuid.UUID        `json:"member_id"`
	FiscalYear   int              `json:"fiscal_year"`
	BillingClass string           `json:"billing_class"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
}

func toLicenseResponse(l *membership.License) *LicenseResponse {
	if l == nil {
		return nil
	}
	return &LicenseResponse{ID: l.ID, Status: string(l.Status), Expiry: l.Expiry}
}
