package membership

import "time"

// Standing is what the checker needs to know about a member at a point in time
type Standing struct {
	Member  *Member
	License *License // nil when the member has none
	// HasActivePaymentPlan keeps a member with an open balance entitled
	HasActivePaymentPlan bool
	Now                  time.Time
}

// LicenseAction is the change the checker wants applied to the license
type LicenseAction string

const (
	LicenseActionNone    LicenseAction = "none"
	LicenseActionCreate  LicenseAction = "create"
	LicenseActionRenew   LicenseAction = "renew"
	LicenseActionExpire  LicenseAction = "expire"
	LicenseActionRevoke  LicenseAction = "revoke"
	LicenseActionSuspend LicenseAction = "suspend"
)

// Decision is the checker's verdict for one member
type Decision struct {
	State         State
	MemberRole    bool // whether the member role should be held
	LicenseAction LicenseAction
	LicenseExpiry time.Time // set for create and renew
}

// Checker derives membership state, the member role and the license
// change from the AM.net status code, dues-paid-through year and license.
type Checker struct {
	Calendar FiscalCalendar
}

// NewChecker creates a Checker
func NewChecker(calendar FiscalCalendar) *Checker {
	return &Checker{Calendar: calendar}
}

// State derives the membership state.
// A member ("M") is in good standing when their license is active or their
// dues are paid through the current fiscal year; otherwise they owe dues.
func (c *Checker) State(s Standing) State {
	switch s.Member.MemberStatus {
	case StatusTerminated:
		return StateTerminated
	case StatusApplicant:
		return StateApplicant
	case StatusMember:
		if s.License.IsActive(s.Now) || s.Member.DuesPaidThrough >= c.Calendar.FiscalYear(s.Now) {
			return StateGoodStanding
		}
		return StateDuesBalance
	default:
		return StateNonMember
	}
}

// Evaluate returns the full decision for a member
func (c *Checker) Evaluate(s Standing) Decision {
	state := c.State(s)
	d := Decision{State: state, LicenseAction: LicenseActionNone}

	entitled := state == StateGoodStanding ||
		(state == StateDuesBalance && s.HasActivePaymentPlan)

	if entitled {
		d.MemberRole = true
		d.LicenseExpiry = c.Calendar.LicenseExpiration(s.Now, s.Member.DuesPaidThrough)
		switch {
		case s.License == nil:
			d.LicenseAction = LicenseActionCreate
		case !s.License.IsActive(s.Now) || !s.License.Expiry.Equal(d.LicenseExpiry):
			d.LicenseAction = LicenseActionRenew
		}
		return d
	}

	if s.License == nil {
		return d
	}
	switch state {
	case StateTerminated:
		if s.License.Status != LicenseStatusRevoked {
			d.LicenseAction = LicenseActionRevoke
		}
	case StateApplicant:
		if s.License.Status == LicenseStatusActive {
			d.LicenseAction = LicenseActionSuspend
		}
	default:
		if s.License.Status == LicenseStatusActive {
			d.LicenseAction = LicenseActionExpire
		}
	}
	return d
}

// Apply mutates the member and license to match the decision. It returns
// the license to persist (new, changed, or nil when untouched) and whether
// the member changed.
func (c *Checker) Apply(s Standing, d Decision) (license *License, memberChanged bool) {
	if d.MemberRole {
		memberChanged = s.Member.GrantRole(RoleMember)
	} else {
		memberChanged = s.Member.RevokeRole(RoleMember)
	}

	changed := false
	switch d.LicenseAction {
	case LicenseActionCreate:
		license = NewMembershipLicense(s.Member.ID, d.LicenseExpiry)
		changed = true
	case LicenseActionRenew:
		license = s.License
		changed = license.Renew(d.LicenseExpiry)
	case LicenseActionExpire:
		license = s.License
		changed = license.Transition(LicenseStatusExpired)
	case LicenseActionSuspend:
		license = s.License
		changed = license.Transition(LicenseStatusSuspended)
	case LicenseActionRevoke:
		license = s.License
		changed = license.Transition(LicenseStatusRevoked)
	}

	if !changed {
		return nil, memberChanged
	}
	s.Member.AddDomainEvent(NewLicenseChangedEvent(license))
	return license, memberChanged
}
