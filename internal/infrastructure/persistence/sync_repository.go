package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/legislative"
	"github.com/vscpa/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSyncRecordLimit = 50

// GormLegislativeContactRepository implements legislative.ContactRepository using GORM
type GormLegislativeContactRepository struct {
	db *gorm.DB
}

// NewGormLegislativeContactRepository creates a new GormLegislativeContactRepository
func NewGormLegislativeContactRepository(db *gorm.DB) *GormLegislativeContactRepository {
	return &GormLegislativeContactRepository{db: db}
}

// FindByMember returns the member's contacts: senator, delegate, then others
func (r *GormLegislativeContactRepository) FindByMember(ctx context.Context, memberID uuid.UUID) ([]legislative.Contact, error) {
	var rows []models.LegislativeContactModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE slot WHEN ? THEN 0 WHEN ? THEN 1 ELSE 2 END, created_at ASC",
			Vars:               []any{legislative.SlotSenator, legislative.SlotDelegate},
			WithoutParentheses: true,
		}}).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	contacts := make([]legislative.Contact, len(rows))
	for i := range rows {
		contacts[i] = *rows[i].ToDomain()
	}
	return contacts, nil
}

// ApplyPlan creates, updates and deletes contacts in one transaction
func (r *GormLegislativeContactRepository) ApplyPlan(ctx context.Context, plan legislative.Plan) error {
	if plan.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(plan.Delete) > 0 {
			ids := make([]uuid.UUID, len(plan.Delete))
			for i, c := range plan.Delete {
				ids[i] = c.ID
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.LegislativeContactModel{}).Error; err != nil {
				return err
			}
		}
		for _, c := range plan.Update {
			if err := tx.Save(models.LegislativeContactModelFromDomain(c)).Error; err != nil {
				return err
			}
		}
		for _, c := range plan.Create {
			if err := tx.Create(models.LegislativeContactModelFromDomain(c)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormSyncRecordRepository implements integration.SyncRecordRepository using GORM
type GormSyncRecordRepository struct {
	db *gorm.DB
}

// NewGormSyncRecordRepository creates a new GormSyncRecordRepository
func NewGormSyncRecordRepository(db *gorm.DB) *GormSyncRecordRepository {
	return &GormSyncRecordRepository{db: db}
}

// Save creates or updates a sync record
func (r *GormSyncRecordRepository) Save(ctx context.Context, record *integration.SyncRecord) error {
	return r.db.WithContext(ctx).Save(models.SyncRecordModelFromDomain(record)).Error
}

// FindByMember returns the latest records for a member, newest first
func (r *GormSyncRecordRepository) FindByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]integration.SyncRecord, error) {
	return r.find(r.db.WithContext(ctx).Where("member_id = ?", memberID), limit)
}

// FindRecent returns the latest records of a direction, newest first
func (r *GormSyncRecordRepository) FindRecent(ctx context.Context, direction integration.SyncDirection, limit int) ([]integration.SyncRecord, error) {
	return r.find(r.db.WithContext(ctx).Where("direction = ?", direction), limit)
}

// LastSucceededAt returns when the direction last succeeded, nil if never
func (r *GormSyncRecordRepository) LastSucceededAt(ctx context.Context, direction integration.SyncDirection) (*time.Time, error) {
	var model models.SyncRecordModel
	err := r.db.WithContext(ctx).
		Where("direction = ? AND status = ?", direction, integration.SyncStatusSucceeded).
		Order("started_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	startedAt := model.StartedAt
	return &startedAt, nil
}

func (r *GormSyncRecordRepository) find(query *gorm.DB, limit int) ([]integration.SyncRecord, error) {
	if limit <= 0 {
		limit = defaultSyncRecordLimit
	}
	var rows []models.SyncRecordModel
	if err := query.Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]integration.SyncRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

var (
	_ legislative.ContactRepository    = (*GormLegislativeContactRepository)(nil)
	_ integration.SyncRecordRepository = (*GormSyncRecordRepository)(nil)
)
