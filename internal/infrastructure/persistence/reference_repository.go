package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/firm"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/domain/taxonomy"
	"github.com/vscpa/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize bounds the rows sent per INSERT ... ON CONFLICT statement
const upsertBatchSize = 200

// GormTermRepository implements taxonomy.TermRepository using GORM
type GormTermRepository struct {
	db *gorm.DB
}

// NewGormTermRepository creates a new GormTermRepository
func NewGormTermRepository(db *gorm.DB) *GormTermRepository {
	return &GormTermRepository{db: db}
}

// FindByID finds a term by its ID
func (r *GormTermRepository) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.Term, error) {
	var model models.TermModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the terms with the given IDs; unknown IDs are skipped
func (r *GormTermRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]taxonomy.Term, error) {
	if len(ids) == 0 {
		return []taxonomy.Term{}, nil
	}
	var rows []models.TermModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return termsToDomain(rows), nil
}

// FindByCode finds a term by vocabulary and code
func (r *GormTermRepository) FindByCode(ctx context.Context, vocabulary taxonomy.Vocabulary, code string) (*taxonomy.Term, error) {
	var model models.TermModel
	if err := r.db.WithContext(ctx).
		Where("vocabulary = ? AND code = ?", vocabulary, strings.TrimSpace(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taxonomy.ErrTermNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByVocabulary lists a vocabulary's terms ordered by name
func (r *GormTermRepository) FindByVocabulary(ctx context.Context, vocabulary taxonomy.Vocabulary) ([]taxonomy.Term, error) {
	var rows []models.TermModel
	if err := r.db.WithContext(ctx).
		Where("vocabulary = ?", vocabulary).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return termsToDomain(rows), nil
}

// UpsertBatch inserts or updates terms keyed by vocabulary and code.
// Existing rows keep their ID so member references stay valid.
func (r *GormTermRepository) UpsertBatch(ctx context.Context, terms []*taxonomy.Term) error {
	if len(terms) == 0 {
		return nil
	}
	rows := make([]*models.TermModel, len(terms))
	for i, t := range terms {
		rows[i] = models.TermModelFromDomain(t)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vocabulary"}, {Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "active", "updated_at"}),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
}

func termsToDomain(rows []models.TermModel) []taxonomy.Term {
	terms := make([]taxonomy.Term, len(rows))
	for i := range rows {
		terms[i] = *rows[i].ToDomain()
	}
	return terms
}

// GormFirmRepository implements firm.Repository using GORM
type GormFirmRepository struct {
	db *gorm.DB
}

// NewGormFirmRepository creates a new GormFirmRepository
func NewGormFirmRepository(db *gorm.DB) *GormFirmRepository {
	return &GormFirmRepository{db: db}
}

// FindByCode finds a firm by its AM.net code
func (r *GormFirmRepository) FindByCode(ctx context.Context, code string) (*firm.Firm, error) {
	var model models.FirmModel
	if err := r.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, firm.ErrFirmNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCodes finds the firms with the given codes; unknown codes are skipped
func (r *GormFirmRepository) FindByCodes(ctx context.Context, codes []string) ([]firm.Firm, error) {
	if len(codes) == 0 {
		return []firm.Firm{}, nil
	}
	var rows []models.FirmModel
	if err := r.db.WithContext(ctx).Where("code IN ?", codes).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	firms := make([]firm.Firm, len(rows))
	for i := range rows {
		firms[i] = *rows[i].ToDomain()
	}
	return firms, nil
}

// UpsertBatch inserts or updates firms keyed by code
func (r *GormFirmRepository) UpsertBatch(ctx context.Context, firms []*firm.Firm) error {
	if len(firms) == 0 {
		return nil
	}
	rows := make([]*models.FirmModel, len(firms))
	for i, f := range firms {
		rows[i] = models.FirmModelFromDomain(f)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "address_line1", "address_line2", "address_city", "address_state", "address_zip",
				"phone", "billing_class", "peer_review", "active", "changed_at", "updated_at",
			}),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
}

var (
	_ taxonomy.TermRepository = (*GormTermRepository)(nil)
	_ firm.Repository         = (*GormFirmRepository)(nil)
)
