package taxonomy

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/shared"
)

// Vocabulary names a set of terms mirrored from an AM.net code list
type Vocabulary string

const (
	VocabularyCounties  Vocabulary = "counties"
	VocabularyPositions Vocabulary = "positions"
	VocabularyColleges  Vocabulary = "colleges"
	VocabularyInterests Vocabulary = "interests"
)

// Vocabularies lists every vocabulary kept in sync
var Vocabularies = []Vocabulary{
	VocabularyCounties,
	VocabularyPositions,
	VocabularyColleges,
	VocabularyInterests,
}

// AMNetList returns the /Lists name AM.net uses for the vocabulary
func (v Vocabulary) AMNetList() string {
	switch v {
	case VocabularyCounties:
		return "County"
	case VocabularyPositions:
		return "EmploymentPosition"
	case VocabularyColleges:
		return "College"
	case VocabularyInterests:
		return "Interest"
	}
	return ""
}

// ErrTermNotFound is returned when no term matches
var ErrTermNotFound = shared.NewDomainError("TERM_NOT_FOUND", "Term not found")

// Term is a taxonomy term keyed by its AM.net code within a vocabulary
type Term struct {
	shared.BaseEntity
	Vocabulary Vocabulary
	Code       string
	Name       string
	Active     bool
}

// NewTerm creates an active term
func NewTerm(vocabulary Vocabulary, code, name string) (*Term, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_TERM", "Term code cannot be empty")
	}
	if vocabulary.AMNetList() == "" {
		return nil, shared.NewDomainError("INVALID_TERM", "Unknown vocabulary: "+string(vocabulary))
	}
	return &Term{
		BaseEntity: shared.NewBaseEntity(),
		Vocabulary: vocabulary,
		Code:       code,
		Name:       strings.TrimSpace(name),
		Active:     true,
	}, nil
}

// Refresh copies remote values onto the term. Returns true if anything changed.
func (t *Term) Refresh(name string, active bool) bool {
	name = strings.TrimSpace(name)
	if t.Name == name && t.Active == active {
		return false
	}
	t.Name = name
	t.Active = active
	t.UpdatedAt = time.Now()
	return true
}

// TermRepository defines the interface for term persistence
type TermRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Term, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Term, error)
	// FindByCode returns ErrTermNotFound when the code is unknown
	FindByCode(ctx context.Context, vocabulary Vocabulary, code string) (*Term, error)
	FindByVocabulary(ctx context.Context, vocabulary Vocabulary) ([]Term, error)
	// UpsertBatch inserts or updates terms keyed by vocabulary and code
	UpsertBatch(ctx context.Context, terms []*Term) error
}
