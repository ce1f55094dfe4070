package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMemberRepository implements membership.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member by its ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAMNetID finds the member linked to an AM.net Names ID
func (r *GormMemberRepository) FindByAMNetID(ctx context.Context, namesID string) (*membership.Member, error) {
	namesID = strings.TrimSpace(namesID)
	if namesID == "" {
		return nil, membership.ErrMemberNotFound
	}
	return r.findOne(ctx, "amnet_id = ?", namesID)
}

// FindByEmail finds a member by primary email
func (r *GormMemberRepository) FindByEmail(ctx context.Context, email string) (*membership.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, membership.ErrMemberNotFound
	}
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormMemberRepository) findOne(ctx context.Context, query string, arg any) (*membership.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membership.ErrMemberNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds members matching the filter, with the total match count
func (r *GormMemberRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Member, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MemberModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, MemberSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.MemberModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return membersToDomain(rows), total, nil
}

// FindLinked returns members with an AM.net ID, in ID order after the cursor
func (r *GormMemberRepository) FindLinked(ctx context.Context, after uuid.UUID, limit int) ([]membership.Member, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("amnet_id <> '' AND id > ?", after).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return membersToDomain(rows), nil
}

// CountByStatus returns the number of members per member_status
func (r *GormMemberRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		MemberStatus string
		Count        int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.MemberModel{}).
		Select("member_status, COUNT(*) AS count").
		Group("member_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.MemberStatus] = row.Count
	}
	return counts, nil
}

// Save inserts a new member or updates an existing one.
// Updates are conditional on the stored version matching the member's; a
// concurrent change yields shared.ErrConcurrencyConflict.
func (r *GormMemberRepository) Save(ctx context.Context, member *membership.Member) error {
	model := models.MemberModelFromDomain(member)
	model.Version = member.Version + 1

	result := r.db.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("id = ? AND version = ?", member.ID, member.Version).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateUniqueViolation(result.Error)
	}
	if result.RowsAffected > 0 {
		member.IncrementVersion()
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MemberModel{}).Where("id = ?", member.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}

	model.Version = member.Version
	return translateUniqueViolation(r.db.WithContext(ctx).Create(model).Error)
}

func (r *GormMemberRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR email LIKE ? OR amnet_id = ?",
			pattern, pattern, pattern, s)
	}
	for key, value := range filter.Filters {
		switch key {
		case "member_status":
			query = query.Where("member_status = ?", value)
		case "billing_class":
			query = query.Where("billing_class = ?", value)
		case "firm_code":
			query = query.Where("firm_code = ?", value)
		case "linked":
			if value == true {
				query = query.Where("amnet_id <> ''")
			} else {
				query = query.Where("amnet_id = ''")
			}
		}
	}
	return query
}

func membersToDomain(rows []models.MemberModel) []membership.Member {
	members := make([]membership.Member, len(rows))
	for i := range rows {
		members[i] = *rows[i].ToDomain()
	}
	return members
}

// translateUniqueViolation maps a duplicate-key error to shared.ErrAlreadyExists
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return shared.ErrAlreadyExists
	}
	return err
}

// GormLicenseRepository implements membership.LicenseRepository using GORM
type GormLicenseRepository struct {
	db *gorm.DB
}

// NewGormLicenseRepository creates a new GormLicenseRepository
func NewGormLicenseRepository(db *gorm.DB) *GormLicenseRepository {
	return &GormLicenseRepository{db: db}
}

// FindMembership returns the member's membership license
func (r *GormLicenseRepository) FindMembership(ctx context.Context, memberID uuid.UUID) (*membership.License, error) {
	var model models.LicenseModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ? AND type = ?", memberID, membership.LicenseTypeMembership).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membership.ErrLicenseNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a license
func (r *GormLicenseRepository) Save(ctx context.Context, license *membership.License) error {
	return translateUniqueViolation(r.db.WithContext(ctx).Save(models.LicenseModelFromDomain(license)).Error)
}

// GormUnitOfWork implements membership.UnitOfWork over a GORM transaction
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn inside one transaction; any error rolls everything back
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(members membership.MemberRepository, licenses membership.LicenseRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormMemberRepository(tx), NewGormLicenseRepository(tx))
	})
}

var (
	_ membership.MemberRepository  = (*GormMemberRepository)(nil)
	_ membership.LicenseRepository = (*GormLicenseRepository)(nil)
	_ membership.UnitOfWork        = (*GormUnitOfWork)(nil)
)
