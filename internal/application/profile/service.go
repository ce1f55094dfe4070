package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/domain/taxonomy"
	"go.uber.org/zap"
)

// ErrSyncInProgress is returned when another sync holds the member's lock
var ErrSyncInProgress = shared.NewDomainError("SYNC_IN_PROGRESS", "A sync for this member is already in progress")

// MembershipRecomputer re-derives membership state after a pull
type MembershipRecomputer interface {
	Recompute(ctx context.Context, memberID uuid.UUID) error
}

// RecomputeFunc adapts a function to MembershipRecomputer
type RecomputeFunc func(ctx context.Context, memberID uuid.UUID) error

// Recompute calls f
func (f RecomputeFunc) Recompute(ctx context.Context, memberID uuid.UUID) error {
	return f(ctx, memberID)
}

// Service pushes local member profiles to AM.net and pulls AM.net persons
// onto local members.
type Service struct {
	memberRepo     membership.MemberRepository
	termRepo       taxonomy.TermRepository
	syncRepo       integration.SyncRecordRepository
	persons        integration.PersonGateway
	locker         shared.Locker
	lockTTL        time.Duration
	calendar       membership.FiscalCalendar
	archive        integration.PayloadArchive
	recomputer     MembershipRecomputer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new profile sync Service
func NewService(
	memberRepo membership.MemberRepository,
	termRepo taxonomy.TermRepository,
	syncRepo integration.SyncRecordRepository,
	persons integration.PersonGateway,
	locker shared.Locker,
	lockTTL time.Duration,
	calendar membership.FiscalCalendar,
	logger *zap.Logger,
) *Service {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &Service{
		memberRepo: memberRepo,
		termRepo:   termRepo,
		syncRepo:   syncRepo,
		persons:    persons,
		locker:     locker,
		lockTTL:    lockTTL,
		calendar:   calendar,
		logger:     logger,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPayloadArchive enables archiving of the Person payloads exchanged
func (s *Service) SetPayloadArchive(archive integration.PayloadArchive) {
	s.archive = archive
}

// SetMembershipRecomputer enables membership recomputation after a pull
func (s *Service) SetMembershipRecomputer(r MembershipRecomputer) {
	s.recomputer = r
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ---------------------------------------------------------------------------
// Push
// ---------------------------------------------------------------------------

// Push sends the member's profile to AM.net, creating the person when the
// member is not linked yet.
func (s *Service) Push(ctx context.Context, memberID uuid.UUID) (*SyncResult, error) {
	m, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	record := integration.StartSync(integration.SyncDirectionPush, &m.ID, m.AMNetID)

	release, err := s.lock(ctx, m.ID)
	if err != nil {
		return s.finish(ctx, record, err)
	}
	defer release()

	terms, err := s.termIndex(ctx)
	if err != nil {
		return s.finish(ctx, record, err)
	}
	mapper := membership.NewPersonMapper(terms, s.calendar)

	var base *integration.Person
	if m.IsLinked() {
		base, err = s.persons.GetPerson(ctx, m.AMNetID)
		if err != nil {
			return s.finish(ctx, record, err)
		}
		if err := base.CheckSyncable(); err != nil {
			return s.finish(ctx, record, err)
		}
	}

	person, fieldErrs := mapper.ToPerson(m, base, s.now())
	s.noteFieldErrors(record, fieldErrs)

	created := false
	if person.IsNew() {
		namesID, err := s.persons.CreatePerson(ctx, person)
		if err != nil {
			return s.finish(ctx, record, err)
		}
		person.NamesID = namesID
		if err := m.LinkAMNet(namesID); err != nil {
			return s.finish(ctx, record, err)
		}
		if err := s.memberRepo.Save(ctx, m); err != nil {
			return s.finish(ctx, record, fmt.Errorf("person %s created but member not linked: %w", namesID, err))
		}
		record.AMNetID = namesID
		created = true
	} else if err := s.persons.UpdatePerson(ctx, person); err != nil {
		return s.finish(ctx, record, err)
	}

	s.archivePerson(ctx, person)
	res, err := s.finish(ctx, record, nil)
	res.Created = created
	return res, err
}

// ---------------------------------------------------------------------------
// Pull
// ---------------------------------------------------------------------------

// Pull fetches an AM.net person and applies it to the linked member, falling
// back to an unlinked member with the same email. When neither exists the
// member is created from the person. Returns integration.ErrRecordExcluded
// for persons excluded from web sync and membership.ErrEmailLinkedElsewhere
// when the email belongs to a member linked to another person.
func (s *Service) Pull(ctx context.Context, namesID string) (*SyncResult, error) {
	record := integration.StartSync(integration.SyncDirectionPull, nil, namesID)

	person, err := s.persons.GetPerson(ctx, namesID)
	if err != nil {
		return s.finish(ctx, record, err)
	}
	s.archivePerson(ctx, person)
	if err := person.CheckSyncable(); err != nil {
		return s.finish(ctx, record, err)
	}

	m, err := s.findMemberFor(ctx, person)
	if err != nil {
		return s.finish(ctx, record, err)
	}
	record.MemberID = &m.ID

	release, err := s.lock(ctx, m.ID)
	if err != nil {
		return s.finish(ctx, record, err)
	}
	defer release()

	terms, err := s.termIndex(ctx)
	if err != nil {
		return s.finish(ctx, record, err)
	}
	mapper := membership.NewPersonMapper(terms, s.calendar)

	pulled, fieldErrs := mapper.FromPerson(m, person, s.now())
	s.noteFieldErrors(record, fieldErrs)

	if pulled.Email != m.Email {
		if other, err := s.memberRepo.FindByEmail(ctx, pulled.Email); err == nil && other.ID != m.ID {
			record.AddFieldError("Email", fmt.Errorf("%s already belongs to another member", pulled.Email))
			pulled.Email = m.Email
		}
	}
	if err := m.LinkAMNet(person.NamesID); err != nil {
		return s.finish(ctx, record, err)
	}
	if err := m.ApplyPulled(pulled); err != nil {
		return s.finish(ctx, record, err)
	}
	if err := s.memberRepo.Save(ctx, m); err != nil {
		return s.finish(ctx, record, err)
	}
	// published while the lock is held so the push handler skips it
	s.publishDomainEvents(ctx, m)

	if s.recomputer != nil {
		if err := s.recomputer.Recompute(ctx, m.ID); err != nil {
			s.logger.Warn("membership recompute after pull failed",
				zap.String("member_id", m.ID.String()),
				zap.Error(err),
			)
		}
	}
	return s.finish(ctx, record, nil)
}

func (s *Service) findMemberFor(ctx context.Context, person *integration.Person) (*membership.Member, error) {
	m, err := s.memberRepo.FindByAMNetID(ctx, person.NamesID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, membership.ErrMemberNotFound) {
		return nil, err
	}
	if person.Email != "" {
		m, err = s.memberRepo.FindByEmail(ctx, person.Email)
		switch {
		case err == nil && m.IsLinked() && m.AMNetID != person.NamesID:
			return nil, membership.ErrEmailLinkedElsewhere
		case err == nil:
			return m, nil
		case !errors.Is(err, membership.ErrMemberNotFound):
			return nil, err
		}
	}

	// first sync of this person
	m, err = membership.NewMember(person.Email, person.FirstName, person.LastName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("creating member from AM.net person",
		zap.String("member_id", m.ID.String()),
		zap.String("amnet_id", person.NamesID),
	)
	return m, nil
}

// History returns the member's latest sync records
func (s *Service) History(ctx context.Context, memberID uuid.UUID, limit int) (*SyncRecordResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := s.syncRepo.FindByMember(ctx, memberID, limit)
	if err != nil {
		return nil, err
	}
	resp := &SyncRecordResponse{Records: make([]SyncResult, 0, len(records))}
	for i := range records {
		resp.Records = append(resp.Records, *toSyncResult(&records[i]))
	}
	return resp, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// lock takes the member's sync lock and returns its release func
func (s *Service) lock(ctx context.Context, memberID uuid.UUID) (func(), error) {
	key := membership.SyncLockKey(memberID)
	ok, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}
	return func() {
		// the caller's context may already be cancelled
		if err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("failed to release sync lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *Service) termIndex(ctx context.Context) (*taxonomy.Index, error) {
	var all []taxonomy.Term
	for _, v := range taxonomy.Vocabularies {
		terms, err := s.termRepo.FindByVocabulary(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("load %s terms: %w", v, err)
		}
		all = append(all, terms...)
	}
	return taxonomy.NewIndex(all), nil
}

func (s *Service) noteFieldErrors(record *integration.SyncRecord, errs []membership.FieldError) {
	for _, fe := range errs {
		record.AddFieldError(fe.Field, fe.Err)
		s.logger.Warn("field skipped during sync",
			zap.String("direction", string(record.Direction)),
			zap.String("amnet_id", record.AMNetID),
			zap.String("field", fe.Field),
			zap.Error(fe.Err),
		)
	}
}

// finish closes and stores the sync record. Excluded records and lock
// contention are recorded as skipped.
func (s *Service) finish(ctx context.Context, record *integration.SyncRecord, cause error) (*SyncResult, error) {
	switch {
	case cause == nil:
		record.Succeed()
	case errors.Is(cause, integration.ErrRecordExcluded), errors.Is(cause, ErrSyncInProgress):
		record.Skip(cause.Error())
	default:
		record.Fail(cause)
	}

	if err := s.syncRepo.Save(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Error("failed to save sync record", zap.String("record_id", record.ID.String()), zap.Error(err))
	}

	fields := []zap.Field{
		zap.String("direction", string(record.Direction)),
		zap.String("status", string(record.Status)),
		zap.String("amnet_id", record.AMNetID),
		zap.Duration("duration", record.Duration()),
		zap.Int("field_errors", len(record.FieldErrors)),
	}
	if record.MemberID != nil {
		fields = append(fields, zap.String("member_id", record.MemberID.String()))
	}
	if cause != nil {
		s.logger.Warn("member sync did not complete", append(fields, zap.Error(cause))...)
	} else {
		s.logger.Info("member sync completed", fields...)
	}
	return toSyncResult(record), cause
}

func (s *Service) archivePerson(ctx context.Context, person *integration.Person) {
	if s.archive == nil || person == nil {
		return
	}
	payload, err := json.Marshal(person)
	if err != nil {
		return
	}
	if err := s.archive.Archive(ctx, "person", person.NamesID, payload); err != nil {
		s.logger.Warn("failed to archive person payload", zap.String("amnet_id", person.NamesID), zap.Error(err))
	}
}

func (s *Service) publishDomainEvents(ctx context.Context, m *membership.Member) {
	events := m.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	m.ClearDomainEvents()
}
