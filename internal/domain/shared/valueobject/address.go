package valueobject

import (
	"regexp"
	"strings"

	"github.com/vscpa/backend/internal/domain/shared"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Address is a US postal address
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// NewAddress trims and validates the given parts.
// An entirely empty address is valid and means "not on file".
func NewAddress(line1, line2, city, state, zip string) (Address, error) {
	a := Address{
		Line1: strings.TrimSpace(line1),
		Line2: strings.TrimSpace(line2),
		City:  strings.TrimSpace(city),
		State: strings.ToUpper(strings.TrimSpace(state)),
		Zip:   strings.TrimSpace(zip),
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Validate checks field formats of a non-empty address
func (a Address) Validate() error {
	if a.IsEmpty() {
		return nil
	}
	if a.Line1 == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address line 1 is required")
	}
	if len(a.Line1) > 200 || len(a.Line2) > 200 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address lines cannot exceed 200 characters")
	}
	if a.State != "" && len(a.State) != 2 {
		return shared.NewDomainError("INVALID_ADDRESS", "State must be a two-letter code")
	}
	if a.Zip != "" && !zipPattern.MatchString(a.Zip) {
		return shared.NewDomainError("INVALID_ADDRESS", "Zip must be 5 digits or ZIP+4")
	}
	return nil
}

// IsEmpty reports whether no part of the address is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Zip5 returns the five-digit part of the zip code
func (a Address) Zip5() string {
	if len(a.Zip) >= 5 {
		return a.Zip[:5]
	}
	return a.Zip
}

// String formats the address on one line
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Line1, a.Line2, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	tail := strings.TrimSpace(a.State + " " + a.Zip)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}
