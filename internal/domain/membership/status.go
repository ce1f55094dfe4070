package membership

// StatusCode is the AM.net member status code mirrored on the member
type StatusCode string

const (
	StatusMember     StatusCode = "M"
	StatusApplicant  StatusCode = "A"
	StatusTerminated StatusCode = "T"
	StatusNonMember  StatusCode = "N"
)

// IsValid returns true for codes AM.net is known to send
func (s StatusCode) IsValid() bool {
	switch s {
	case StatusMember, StatusApplicant, StatusTerminated, StatusNonMember:
		return true
	}
	return false
}

// State is the derived membership state of a member
type State string

const (
	StateGoodStanding State = "good_standing"
	StateDuesBalance  State = "dues_balance"
	StateTerminated   State = "terminated"
	StateApplicant    State = "applicant"
	StateNonMember    State = "non_member"
)

// RoleMember is the role held by members entitled to member benefits
const RoleMember = "member"
