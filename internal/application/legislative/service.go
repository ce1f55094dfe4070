package legislative

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/legislative"
	"github.com/vscpa/backend/internal/domain/membership"
	"go.uber.org/zap"
)

// ErrMemberNotLinked is returned for members without an AM.net record
var ErrMemberNotLinked = errors.New("legislative: member has no AM.net record")

// Service keeps members' legislative contacts in line with AM.net
type Service struct {
	memberRepo  membership.MemberRepository
	contactRepo legislative.ContactRepository
	syncRepo    integration.SyncRecordRepository
	gateway     integration.LegislativeGateway
	logger      *zap.Logger
}

// NewService creates a new legislative Service
func NewService(
	memberRepo membership.MemberRepository,
	contactRepo legislative.ContactRepository,
	syncRepo integration.SyncRecordRepository,
	gateway integration.LegislativeGateway,
	logger *zap.Logger,
) *Service {
	return &Service{
		memberRepo:  memberRepo,
		contactRepo: contactRepo,
		syncRepo:    syncRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

// Get returns the member's stored contacts
func (s *Service) Get(ctx context.Context, memberID uuid.UUID) (*ContactsResponse, error) {
	m, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.FindByMember(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return toContactsResponse(m.ID, contacts), nil
}

// SyncFromAMNet replaces the member's contacts with the AM.net list
func (s *Service) SyncFromAMNet(ctx context.Context, memberID uuid.UUID) (*SyncResponse, error) {
	m, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	record := integration.StartSync(integration.SyncDirectionLegislative, &m.ID, m.AMNetID)
	if !m.IsLinked() {
		return nil, s.finish(ctx, record, ErrMemberNotLinked)
	}

	remote, err := s.gateway.GetLegislativeContacts(ctx, m.AMNetID)
	if err != nil {
		return nil, s.finish(ctx, record, err)
	}
	local, err := s.contactRepo.FindByMember(ctx, m.ID)
	if err != nil {
		return nil, s.finish(ctx, record, err)
	}

	plan := legislative.Reconcile(m.ID, local, remote)
	if !plan.IsEmpty() {
		if err := s.contactRepo.ApplyPlan(ctx, plan); err != nil {
			return nil, s.finish(ctx, record, err)
		}
	}
	s.logger.Info("legislative contacts reconciled",
		zap.String("member_id", m.ID.String()),
		zap.Int("created", len(plan.Create)),
		zap.Int("updated", len(plan.Update)),
		zap.Int("deleted", len(plan.Delete)),
	)
	_ = s.finish(ctx, record, nil)

	return &SyncResponse{
		ContactsResponse: *toContactsResponse(m.ID, plan.Kept),
		Created:          len(plan.Create),
		Updated:          len(plan.Update),
		Deleted:          len(plan.Delete),
		Status:           string(record.Status),
	}, nil
}

// PushToAMNet sends the member's stored contacts to AM.net
func (s *Service) PushToAMNet(ctx context.Context, memberID uuid.UUID) error {
	m, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !m.IsLinked() {
		return ErrMemberNotLinked
	}
	contacts, err := s.contactRepo.FindByMember(ctx, m.ID)
	if err != nil {
		return err
	}
	if err := s.gateway.UpdateLegislativeContacts(ctx, m.AMNetID, legislative.ToRemote(contacts)); err != nil {
		s.logger.Warn("legislative contacts push failed",
			zap.String("member_id", m.ID.String()),
			zap.String("amnet_id", m.AMNetID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) finish(ctx context.Context, record *integration.SyncRecord, cause error) error {
	if cause != nil {
		record.Fail(cause)
		s.logger.Warn("legislative sync failed",
			zap.String("amnet_id", record.AMNetID),
			zap.Error(cause),
		)
	} else {
		record.Succeed()
	}
	if err := s.syncRepo.Save(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Error("failed to save sync record", zap.String("record_id", record.ID.String()), zap.Error(err))
	}
	return cause
}
