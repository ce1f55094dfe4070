package taxonomy

import (
	"strings"

	"github.com/google/uuid"
)

type termKey struct {
	vocabulary Vocabulary
	code       string
}

// Index resolves terms by code and by ID in memory. Vocabularies are small
// enough to load whole for the duration of one sync.
type Index struct {
	byCode map[termKey]uuid.UUID
	byID   map[uuid.UUID]Term
}

// NewIndex builds an index over terms. Inactive terms resolve by ID but not by code.
func NewIndex(terms []Term) *Index {
	idx := &Index{
		byCode: make(map[termKey]uuid.UUID, len(terms)),
		byID:   make(map[uuid.UUID]Term, len(terms)),
	}
	for _, t := range terms {
		idx.byID[t.ID] = t
		if t.Active {
			idx.byCode[termKey{t.Vocabulary, strings.ToUpper(t.Code)}] = t.ID
		}
	}
	return idx
}

// ID returns the term ID for a code in vocabulary
func (i *Index) ID(vocabulary Vocabulary, code string) (uuid.UUID, bool) {
	id, ok := i.byCode[termKey{vocabulary, strings.ToUpper(strings.TrimSpace(code))}]
	return id, ok
}

// Code returns the code of the term with id, provided it belongs to vocabulary
func (i *Index) Code(vocabulary Vocabulary, id uuid.UUID) (string, bool) {
	t, ok := i.byID[id]
	if !ok || t.Vocabulary != vocabulary {
		return "", false
	}
	return t.Code, true
}

// Len returns the number of indexed terms
func (i *Index) Len() int {
	return len(i.byID)
}
