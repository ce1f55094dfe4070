package membership

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles member profile and membership-state operations
type Service struct {
	memberRepo     membership.MemberRepository
	licenseRepo    membership.LicenseRepository
	uow            membership.UnitOfWork
	dues           integration.DuesGateway
	checker        *membership.Checker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new membership Service
func NewService(
	memberRepo membership.MemberRepository,
	licenseRepo membership.LicenseRepository,
	uow membership.UnitOfWork,
	dues integration.DuesGateway,
	calendar membership.FiscalCalendar,
	logger *zap.Logger,
) *Service {
	return &Service{
		memberRepo:  memberRepo,
		licenseRepo: licenseRepo,
		uow:         uow,
		dues:        dues,
		checker:     membership.NewChecker(calendar),
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Calendar returns the fiscal calendar in use
func (s *Service) Calendar() membership.FiscalCalendar {
	return s.checker.Calendar
}

func (s *Service) publishDomainEvents(ctx context.Context, m *membership.Member) {
	events := m.GetDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		m.ClearDomainEvents()
		return
	}
	// errors are logged by the event bus
	_ = s.eventPublisher.Publish(ctx, events...)
	m.ClearDomainEvents()
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// GetMember retrieves a member by ID
func (s *Service) GetMember(ctx context.Context, id uuid.UUID) (*MemberResponse, error) {
	m, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMemberResponse(m)
	return &resp, nil
}

// ListMembers lists members page by page
func (s *Service) ListMembers(ctx context.Context, f MemberListFilter) (*shared.Paginated[MemberResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Status != "" {
		filter.Filters["member_status"] = f.Status
	}

	members, total, err := s.memberRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]MemberResponse, 0, len(members))
	for i := range members {
		items = append(items, ToMemberResponse(&members[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateProfile applies a local profile edit. The resulting member.updated
// event carries the local origin so the change is pushed to AM.net.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*MemberResponse, error) {
	m, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := req.apply(m.Profile)
	if err != nil {
		return nil, err
	}
	if err := m.UpdateProfile(profile, membership.OriginLocal); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, m)

	resp := ToMemberResponse(m)
	return &resp, nil
}

// ---------------------------------------------------------------------------
// Membership state
// ---------------------------------------------------------------------------

// State returns the member's derived membership state without changing anything
func (s *Service) State(ctx context.Context, id uuid.UUID) (*MembershipStateResponse, error) {
	m, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	license, err := s.findLicense(ctx, s.licenseRepo, m.ID)
	if err != nil {
		return nil, err
	}
	standing := s.standing(m, license, s.hasActivePaymentPlan(ctx, m))
	decision := s.checker.Evaluate(standing)
	return s.stateResponse(standing, decision), nil
}

// Recompute derives the membership state and applies the member role and
// license change in one transaction. Payment plans are fetched from AM.net
// before the transaction opens; the member and license are re-read inside it.
func (s *Service) Recompute(ctx context.Context, id uuid.UUID) (*MembershipStateResponse, error) {
	loaded, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	hasPlan := s.hasActivePaymentPlan(ctx, loaded)

	var (
		resp   *MembershipStateResponse
		member *membership.Member
	)
	err = s.uow.Do(ctx, func(members membership.MemberRepository, licenses membership.LicenseRepository) error {
		m, err := members.FindByID(ctx, id)
		if err != nil {
			return err
		}
		current, err := s.findLicense(ctx, licenses, m.ID)
		if err != nil {
			return err
		}

		standing := s.standing(m, current, hasPlan)
		decision := s.checker.Evaluate(standing)
		changed, memberChanged := s.checker.Apply(standing, decision)

		if memberChanged {
			if err := members.Save(ctx, m); err != nil {
				return err
			}
		}
		if changed != nil {
			if err := licenses.Save(ctx, changed); err != nil {
				return err
			}
			standing.License = changed
		}

		member = m
		resp = s.stateResponse(standing, s.checker.Evaluate(standing))
		s.logger.Info("membership recomputed",
			zap.String("member_id", m.ID.String()),
			zap.String("state", string(decision.State)),
			zap.String("license_action", string(decision.LicenseAction)),
			zap.Bool("member_role", decision.MemberRole),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, member)
	return resp, nil
}

func (s *Service) standing(m *membership.Member, license *membership.License, hasPlan bool) membership.Standing {
	return membership.Standing{Member: m, License: license, HasActivePaymentPlan: hasPlan, Now: s.now()}
}

// hasActivePaymentPlan asks AM.net whether a linked member has a plan in
// force. A failed lookup counts as no active plan.
func (s *Service) hasActivePaymentPlan(ctx context.Context, m *membership.Member) bool {
	if s.dues == nil || !m.IsLinked() || m.MemberStatus != membership.StatusMember {
		return false
	}
	plans, err := s.dues.GetPaymentPlans(ctx, m.AMNetID)
	if err != nil {
		s.logger.Warn("payment plan lookup failed, assuming none",
			zap.String("member_id", m.ID.String()),
			zap.String("amnet_id", m.AMNetID),
			zap.Error(err),
		)
		return false
	}
	return membership.HasActivePaymentPlan(plans)
}

func (s *Service) findLicense(ctx context.Context, repo membership.LicenseRepository, memberID uuid.UUID) (*membership.License, error) {
	l, err := repo.FindMembership(ctx, memberID)
	if errors.Is(err, membership.ErrLicenseNotFound) {
		return nil, nil
	}
	return l, err
}

func (s *Service) stateResponse(st membership.Standing, d membership.Decision) *MembershipStateResponse {
	return &MembershipStateResponse{
		MemberID:          st.Member.ID,
		State:             string(d.State),
		MemberStatus:      string(st.Member.MemberStatus),
		FiscalYear:        s.checker.Calendar.FiscalYear(st.Now),
		DuesPaidThrough:   st.Member.DuesPaidThrough,
		HasMemberRole:     st.Member.HasRole(membership.RoleMember),
		ActivePaymentPlan: st.HasActivePaymentPlan,
		License:           toLicenseResponse(st.License),
		Pending:           string(d.LicenseAction),
	}
}

// ---------------------------------------------------------------------------
// Dues
// ---------------------------------------------------------------------------

// DuesBalance returns the member's dues balance. AM.net failures yield an
// unknown balance rather than an error.
func (s *Service) DuesBalance(ctx context.Context, id uuid.UUID) (*DuesBalanceResponse, error) {
	m, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &DuesBalanceResponse{MemberID: m.ID, FiscalYear: s.checker.Calendar.FiscalYear(s.now())}
	if !m.IsLinked() || s.dues == nil {
		return resp, nil
	}

	dues, err := s.dues.GetDues(ctx, m.AMNetID)
	if err != nil {
		s.logger.Warn("dues lookup failed",
			zap.String("member_id", m.ID.String()),
			zap.String("amnet_id", m.AMNetID),
			zap.Error(err),
		)
		return resp, nil
	}
	if balance, ok := membership.DuesBalance(dues, m.MemberStatus); ok {
		resp.Known = true
		resp.Balance = &balance
	}
	return resp, nil
}

// DuesRate returns the current-year dues rate for the member's billing
// class, deriving the class when AM.net has none on file.
func (s *Service) DuesRate(ctx context.Context, id uuid.UUID) (*DuesRateResponse, error) {
	m, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	fy := s.checker.Calendar.FiscalYear(now)
	class := m.BillingClass
	if class == "" {
		class = membership.DeriveBillingClass(m.Profile, s.checker.Calendar, now)
	}
	resp := &DuesRateResponse{MemberID: m.ID, FiscalYear: fy, BillingClass: class}
	if s.dues == nil {
		return resp, nil
	}

	rates, err := s.dues.GetDuesRates(ctx, fy)
	if err != nil {
		s.logger.Warn("dues rate lookup failed", zap.Int("fiscal_year", fy), zap.Error(err))
		return resp, nil
	}
	for _, r := range rates {
		if strings.TrimSpace(r.BillingClassCode) != class {
			continue
		}
		if amount, ok := r.Amount.Decimal(); ok {
			resp.Amount = &amount
		}
		break
	}
	return resp, nil
}
