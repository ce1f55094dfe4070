package membership

import "github.com/vscpa/backend/internal/domain/shared"

// ErrMemberNotFound signals that no local member matches an AM.net Names ID.
// Pull branches on it to create the member on first sync.
var ErrMemberNotFound = shared.NewDomainError("MEMBER_NOT_FOUND", "No member matches the AM.net record")

// ErrLicenseNotFound signals that a member has no membership license yet
var ErrLicenseNotFound = shared.NewDomainError("LICENSE_NOT_FOUND", "Member has no membership license")

// ErrEmailLinkedElsewhere signals that a pulled person's email belongs to a
// member already linked to a different AM.net record
var ErrEmailLinkedElsewhere = shared.NewDomainError("EMAIL_LINKED_ELSEWHERE", "The email belongs to a member linked to another AM.net record")

// ErrInvalidEmail matches any rejected email address
var ErrInvalidEmail = shared.NewDomainError("INVALID_EMAIL", "Email is not a valid address")
