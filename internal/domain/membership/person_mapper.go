package membership

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/shared/valueobject"
	"github.com/vscpa/backend/internal/domain/taxonomy"
)

// TermLookup resolves taxonomy term codes used on AM.net records
type TermLookup interface {
	ID(vocabulary taxonomy.Vocabulary, code string) (uuid.UUID, bool)
	Code(vocabulary taxonomy.Vocabulary, id uuid.UUID) (string, bool)
}

// FieldError is a single field that could not be mapped. Field errors do not
// stop the rest of the mapping.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

// PersonMapper translates between the local Member and the AM.net Person
type PersonMapper struct {
	Terms    TermLookup
	Calendar FiscalCalendar
}

// NewPersonMapper creates a PersonMapper
func NewPersonMapper(terms TermLookup, calendar FiscalCalendar) *PersonMapper {
	return &PersonMapper{Terms: terms, Calendar: calendar}
}

// ToPerson maps the member onto a copy of base, leaving fields AM.net owns
// (membership status, dues, join date) untouched. base may be nil for a
// person that does not exist in AM.net yet, in which case a billing class is
// derived for it. A term that cannot be resolved keeps base's code.
func (pm *PersonMapper) ToPerson(m *Member, base *integration.Person, now time.Time) (*integration.Person, []FieldError) {
	var p integration.Person
	if base != nil {
		p = *base
		p.InterestCodes = slices.Clone(base.InterestCodes)
	}
	var errs []FieldError

	p.NamesID = m.AMNetID
	p.FirstName = m.FirstName
	p.MiddleName = m.MiddleName
	p.LastName = m.LastName
	p.Suffix = m.Suffix
	p.Nickname = m.Nickname
	p.Gender = m.Gender
	p.BirthDate = integration.DateFrom(m.BirthDate)

	p.Email = m.Email
	p.SecondaryEmail = m.SecondaryEmail
	p.HomePhone = m.HomePhone
	p.MobilePhone = m.MobilePhone
	p.WorkPhone = m.WorkPhone

	baseCounty := p.HomeAddress.CountyCode
	p.HomeAddress = toPersonAddress(m.HomeAddress)
	p.HomeAddress.CountyCode = pm.codeOf(taxonomy.VocabularyCounties, "HomeAddress.CountyCode", m.HomeCountyID, baseCounty, &errs)
	p.WorkAddress = toPersonAddress(m.WorkAddress)

	p.JobTitle = m.JobTitle
	p.PositionCode = pm.codeOf(taxonomy.VocabularyPositions, "PositionCode", m.PositionID, p.PositionCode, &errs)
	p.FirmCode = m.FirmCode

	p.CertNumber = m.CertNumber
	p.CertDate = integration.DateFrom(m.CertDate)
	p.CertState = m.CertState
	p.CollegeCode = pm.codeOf(taxonomy.VocabularyColleges, "CollegeCode", m.CollegeID, p.CollegeCode, &errs)
	p.GraduationDate = integration.DateFrom(m.GraduationDate)

	codes := make([]string, 0, len(m.InterestIDs))
	unresolved := false
	for _, id := range m.InterestIDs {
		code, ok := pm.Terms.Code(taxonomy.VocabularyInterests, id)
		if !ok {
			errs = append(errs, unknownTermID("InterestCodes", id))
			unresolved = true
			continue
		}
		codes = append(codes, code)
	}
	if unresolved {
		// base codes may be the ones we could not resolve
		for _, code := range p.InterestCodes {
			if !slices.Contains(codes, code) {
				codes = append(codes, code)
			}
		}
	}
	p.InterestCodes = codes

	p.EmailOptOut = m.EmailOptOut
	p.MailOptOut = m.MailOptOut
	p.TextOptIn = m.TextOptIn
	p.Retired = m.Retired
	p.Student = m.Student

	if base == nil && p.BillingClassCode == "" {
		p.BillingClassCode = DeriveBillingClass(m.Profile, pm.Calendar, now)
	}
	return &p, errs
}

// codeOf resolves id to its code. An unknown id keeps current.
func (pm *PersonMapper) codeOf(v taxonomy.Vocabulary, field string, id *uuid.UUID, current string, errs *[]FieldError) string {
	if id == nil {
		return ""
	}
	code, ok := pm.Terms.Code(v, *id)
	if !ok {
		*errs = append(*errs, unknownTermID(field, *id))
		return current
	}
	return code
}

// Pulled is the result of mapping a Person onto a member
type Pulled struct {
	Email           string
	Profile         Profile
	MemberStatus    StatusCode
	BillingClass    string
	DuesPaidThrough int
	JoinDate        *time.Time
}

// FromPerson maps a Person onto the member's current profile. Fields that
// fail to map keep their current value and are reported.
func (pm *PersonMapper) FromPerson(m *Member, p *integration.Person, now time.Time) (Pulled, []FieldError) {
	var errs []FieldError
	prof := m.Profile
	prof.InterestIDs = slices.Clone(m.InterestIDs)

	prof.FirstName = strings.TrimSpace(p.FirstName)
	prof.MiddleName = strings.TrimSpace(p.MiddleName)
	prof.LastName = strings.TrimSpace(p.LastName)
	prof.Suffix = strings.TrimSpace(p.Suffix)
	prof.Nickname = strings.TrimSpace(p.Nickname)
	switch g := strings.ToUpper(strings.TrimSpace(p.Gender)); g {
	case "", "M", "F", "X":
		prof.Gender = g
	default:
		errs = append(errs, FieldError{Field: "Gender", Err: fmt.Errorf("unsupported value %q", p.Gender)})
	}
	prof.BirthDate = p.BirthDate.Ptr()

	email := m.Email
	if e := strings.TrimSpace(p.Email); e != "" {
		if normalized, err := normalizeEmail(e); err == nil {
			email = normalized
		} else {
			errs = append(errs, FieldError{Field: "Email", Err: err})
		}
	}
	prof.SecondaryEmail = ""
	if e := strings.TrimSpace(p.SecondaryEmail); e != "" {
		if normalized, err := normalizeEmail(e); err == nil {
			prof.SecondaryEmail = normalized
		} else {
			errs = append(errs, FieldError{Field: "Email2", Err: err})
		}
	}
	prof.HomePhone = strings.TrimSpace(p.HomePhone)
	prof.MobilePhone = strings.TrimSpace(p.MobilePhone)
	prof.WorkPhone = strings.TrimSpace(p.WorkPhone)

	if a, err := fromPersonAddress(p.HomeAddress); err == nil {
		prof.HomeAddress = a
	} else {
		errs = append(errs, FieldError{Field: "HomeAddress", Err: err})
	}
	prof.HomeCountyID = pm.idOf(taxonomy.VocabularyCounties, "HomeAddress.CountyCode", p.HomeAddress.CountyCode, prof.HomeCountyID, &errs)
	if a, err := fromPersonAddress(p.WorkAddress); err == nil {
		prof.WorkAddress = a
	} else {
		errs = append(errs, FieldError{Field: "WorkAddress", Err: err})
	}

	prof.JobTitle = strings.TrimSpace(p.JobTitle)
	prof.PositionID = pm.idOf(taxonomy.VocabularyPositions, "PositionCode", p.PositionCode, prof.PositionID, &errs)
	prof.FirmCode = strings.TrimSpace(p.FirmCode)

	prof.CertNumber = strings.TrimSpace(p.CertNumber)
	prof.CertDate = p.CertDate.Ptr()
	prof.CertState = strings.ToUpper(strings.TrimSpace(p.CertState))
	prof.CollegeID = pm.idOf(taxonomy.VocabularyColleges, "CollegeCode", p.CollegeCode, prof.CollegeID, &errs)
	prof.GraduationDate = p.GraduationDate.Ptr()

	interests := make([]uuid.UUID, 0, len(p.InterestCodes))
	unresolved := false
	for _, code := range p.InterestCodes {
		id, ok := pm.Terms.ID(taxonomy.VocabularyInterests, code)
		if !ok {
			errs = append(errs, unknownTermCode("InterestCodes", code))
			unresolved = true
			continue
		}
		if !slices.Contains(interests, id) {
			interests = append(interests, id)
		}
	}
	if unresolved {
		// a code we cannot resolve may stand for an interest already held
		for _, id := range prof.InterestIDs {
			if !slices.Contains(interests, id) {
				interests = append(interests, id)
			}
		}
	}
	prof.InterestIDs = interests

	prof.EmailOptOut = p.EmailOptOut
	prof.MailOptOut = p.MailOptOut
	prof.TextOptIn = p.TextOptIn
	prof.Retired = p.Retired
	prof.Student = p.Student

	status := StatusCode(strings.ToUpper(strings.TrimSpace(p.MemberStatusCode)))
	if !status.IsValid() {
		if status != "" {
			errs = append(errs, FieldError{Field: "MemberStatusCode", Err: fmt.Errorf("unknown code %q", p.MemberStatusCode)})
		}
		status = StatusNonMember
	}
	billing := strings.TrimSpace(p.BillingClassCode)
	if billing == "" {
		billing = DeriveBillingClass(prof, pm.Calendar, now)
	}

	return Pulled{
		Email:           email,
		Profile:         prof,
		MemberStatus:    status,
		BillingClass:    billing,
		DuesPaidThrough: p.DuesPaidThrough,
		JoinDate:        p.JoinDate.Ptr(),
	}, errs
}

// idOf resolves code to a term ID. An unknown code keeps current.
func (pm *PersonMapper) idOf(v taxonomy.Vocabulary, field, code string, current *uuid.UUID, errs *[]FieldError) *uuid.UUID {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	id, ok := pm.Terms.ID(v, code)
	if !ok {
		*errs = append(*errs, unknownTermCode(field, code))
		return current
	}
	return &id
}

func toPersonAddress(a valueobject.Address) integration.PersonAddress {
	return integration.PersonAddress{
		Line1: a.Line1,
		Line2: a.Line2,
		City:  a.City,
		State: a.State,
		Zip:   a.Zip,
	}
}

func fromPersonAddress(a integration.PersonAddress) (valueobject.Address, error) {
	return valueobject.NewAddress(a.Line1, a.Line2, a.City, a.State, a.Zip)
}

func unknownTermID(field string, id uuid.UUID) FieldError {
	return FieldError{Field: field, Err: fmt.Errorf("no term with id %s", id)}
}

func unknownTermCode(field, code string) FieldError {
	return FieldError{Field: field, Err: fmt.Errorf("unknown code %q", code)}
}
