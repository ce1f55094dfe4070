package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscpa/backend/internal/domain/firm"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/domain/taxonomy"
)

func newTestTerm(t *testing.T, vocabulary taxonomy.Vocabulary, code, name string) *taxonomy.Term {
	term, err := taxonomy.NewTerm(vocabulary, code, name)
	require.NoError(t, err)
	return term
}

func TestGormTermRepository_UpsertBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTermRepository(db)
	ctx := context.Background()

	henrico := newTestTerm(t, taxonomy.VocabularyCounties, "087", "Henrico")
	fairfax := newTestTerm(t, taxonomy.VocabularyCounties, "059", "Fairfax")
	tax := newTestTerm(t, taxonomy.VocabularyInterests, "087", "Taxation")
	require.NoError(t, repo.UpsertBatch(ctx, []*taxonomy.Term{henrico, fairfax, tax}))

	t.Run("same code in another vocabulary is distinct", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, taxonomy.VocabularyInterests, "087")
		require.NoError(t, err)
		assert.Equal(t, "Taxation", found.Name)
	})

	t.Run("conflict updates in place and keeps the id", func(t *testing.T) {
		renamed := newTestTerm(t, taxonomy.VocabularyCounties, "087", "Henrico County")
		renamed.Active = false
		require.NoError(t, repo.UpsertBatch(ctx, []*taxonomy.Term{renamed}))

		found, err := repo.FindByCode(ctx, taxonomy.VocabularyCounties, "087")
		require.NoError(t, err)
		assert.Equal(t, henrico.ID, found.ID)
		assert.Equal(t, "Henrico County", found.Name)
		assert.False(t, found.Active)
	})

	t.Run("vocabulary listing is ordered by name", func(t *testing.T) {
		terms, err := repo.FindByVocabulary(ctx, taxonomy.VocabularyCounties)
		require.NoError(t, err)
		require.Len(t, terms, 2)
		assert.Equal(t, "Fairfax", terms[0].Name)
	})

	t.Run("lookups by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, fairfax.ID)
		require.NoError(t, err)
		assert.Equal(t, "059", found.Code)

		terms, err := repo.FindByIDs(ctx, []uuid.UUID{fairfax.ID, tax.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, terms, 2)

		terms, err = repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, terms)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := repo.FindByCode(ctx, taxonomy.VocabularyColleges, "X")
		assert.ErrorIs(t, err, taxonomy.ErrTermNotFound)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.UpsertBatch(ctx, nil))
	})
}

func TestGormFirmRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormFirmRepository(db)
	ctx := context.Background()

	acme := &firm.Firm{BaseEntity: shared.NewBaseEntity(), Code: "F100", Name: "Acme CPAs", Active: true}
	acme.Address.City = "Richmond"
	other := &firm.Firm{BaseEntity: shared.NewBaseEntity(), Code: "F200", Name: "Other LLP", Active: true}
	require.NoError(t, repo.UpsertBatch(ctx, []*firm.Firm{acme, other}))

	updated := &firm.Firm{BaseEntity: shared.NewBaseEntity(), Code: "F100", Name: "Acme & Co", PeerReview: true}
	updated.Address.City = "Norfolk"
	require.NoError(t, repo.UpsertBatch(ctx, []*firm.Firm{updated}))

	found, err := repo.FindByCode(ctx, "F100")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, found.ID)
	assert.Equal(t, "Acme & Co", found.Name)
	assert.Equal(t, "Norfolk", found.Address.City)
	assert.True(t, found.PeerReview)
	assert.False(t, found.Active)

	firms, err := repo.FindByCodes(ctx, []string{"F200", "F100", "F999"})
	require.NoError(t, err)
	require.Len(t, firms, 2)
	assert.Equal(t, "F100", firms[0].Code)

	_, err = repo.FindByCode(ctx, "F999")
	assert.ErrorIs(t, err, firm.ErrFirmNotFound)
}
