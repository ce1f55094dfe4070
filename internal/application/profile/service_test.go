package profile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/domain/taxonomy"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
// =============================================================================

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByAMNetID(ctx context.Context, namesID string) (*membership.Member, error) {
	args := m.Called(ctx, namesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByEmail(ctx context.Context, email string) (*membership.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockMemberRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Member, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]membership.Member), args.Get(1).(int64), args.Error(2)
}

func (m *MockMemberRepository) FindLinked(ctx context.Context, after uuid.UUID, limit int) ([]membership.Member, error) {
	args := m.Called(ctx, after, limit)
	return args.Get(0).([]membership.Member), args.Error(1)
}

func (m *MockMemberRepository) Save(ctx context.Context, member *membership.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

type MockTermRepository struct {
	mock.Mock
}

func (m *MockTermRepository) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.Term, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Term), args.Error(1)
}

func (m *MockTermRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]taxonomy.Term, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]taxonomy.Term), args.Error(1)
}

func (m *MockTermRepository) FindByCode(ctx context.Context, v taxonomy.Vocabulary, code string) (*taxonomy.Term, error) {
	args := m.Called(ctx, v, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Term), args.Error(1)
}

func (m *MockTermRepository) FindByVocabulary(ctx context.Context, v taxonomy.Vocabulary) ([]taxonomy.Term, error) {
	args := m.Called(ctx, v)
	return args.Get(0).([]taxonomy.Term), args.Error(1)
}

func (m *MockTermRepository) UpsertBatch(ctx context.Context, terms []*taxonomy.Term) error {
	args := m.Called(ctx, terms)
	return args.Error(0)
}

type MockSyncRecordRepository struct {
	mock.Mock
}

func (m *MockSyncRecordRepository) Save(ctx context.Context, record *integration.SyncRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSyncRecordRepository) FindByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]integration.SyncRecord, error) {
	args := m.Called(ctx, memberID, limit)
	return args.Get(0).([]integration.SyncRecord), args.Error(1)
}

func (m *MockSyncRecordRepository) FindRecent(ctx context.Context, direction integration.SyncDirection, limit int) ([]integration.SyncRecord, error) {
	args := m.Called(ctx, direction, limit)
	return args.Get(0).([]integration.SyncRecord), args.Error(1)
}

func (m *MockSyncRecordRepository) LastSucceededAt(ctx context.Context, direction integration.SyncDirection) (*time.Time, error) {
	args := m.Called(ctx, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

type MockPersonGateway struct {
	mock.Mock
}

func (m *MockPersonGateway) GetPerson(ctx context.Context, namesID string) (*integration.Person, error) {
	args := m.Called(ctx, namesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Person), args.Error(1)
}

func (m *MockPersonGateway) CreatePerson(ctx context.Context, person *integration.Person) (string, error) {
	args := m.Called(ctx, person)
	return args.String(0), args.Error(1)
}

func (m *MockPersonGateway) UpdatePerson(ctx context.Context, person *integration.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonGateway) SearchPersons(ctx context.Context, q integration.PersonSearchQuery) ([]integration.PersonSummary, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]integration.PersonSummary), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLocker) IsLocked(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockPayloadArchive struct {
	mock.Mock
}

func (m *MockPayloadArchive) Archive(ctx context.Context, kind, id string, payload []byte) error {
	args := m.Called(ctx, kind, id, payload)
	return args.Error(0)
}

// =============================================================================
// Helpers
// =============================================================================

type profileFixture struct {
	service *Service
	members *MockMemberRepository
	terms   *MockTermRepository
	records *MockSyncRecordRepository
	persons *MockPersonGateway
	locker  *MockLocker
	events  *MockEventPublisher
	county  *taxonomy.Term
}

func newProfileFixture(t *testing.T) profileFixture {
	t.Helper()
	county, err := taxonomy.NewTerm(taxonomy.VocabularyCounties, "760", "Richmond City")
	require.NoError(t, err)

	f := profileFixture{
		members: new(MockMemberRepository),
		terms:   new(MockTermRepository),
		records: new(MockSyncRecordRepository),
		persons: new(MockPersonGateway),
		locker:  new(MockLocker),
		events:  new(MockEventPublisher),
		county:  county,
	}
	for _, v := range taxonomy.Vocabularies {
		terms := []taxonomy.Term{}
		if v == taxonomy.VocabularyCounties {
			terms = append(terms, *county)
		}
		f.terms.On("FindByVocabulary", mock.Anything, v).Return(terms, nil).Maybe()
	}
	f.records.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.service = NewService(f.members, f.terms, f.records, f.persons, f.locker, time.Minute,
		membership.NewFiscalCalendar(1, time.UTC), zap.NewNop())
	f.service.SetEventPublisher(f.events)
	return f
}

func (f profileFixture) expectLock(m *membership.Member) {
	key := membership.SyncLockKey(m.ID)
	f.locker.On("Acquire", mock.Anything, key, time.Minute).Return(true, nil).Once()
	f.locker.On("Release", mock.Anything, key).Return(nil).Once()
}

func newMember(t *testing.T) *membership.Member {
	t.Helper()
	m, err := membership.NewMember("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)
	m.ClearDomainEvents()
	return m
}

// =============================================================================
// Push
// =============================================================================

func TestService_Push_CreatesPerson(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)
	m.HomeCountyID = &f.county.ID

	f.members.On("FindByID", ctx, m.ID).Return(m, nil)
	f.expectLock(m)
	f.persons.On("CreatePerson", ctx, mock.MatchedBy(func(p *integration.Person) bool {
		return p.IsNew() && p.Email == "jane@example.com" && p.HomeAddress.CountyCode == "760" &&
			p.BillingClassCode == membership.BillingClassAssociate
	})).Return("100234", nil)
	f.members.On("Save", ctx, m).Return(nil)

	res, err := f.service.Push(ctx, m.ID)

	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "succeeded", res.Status)
	assert.Equal(t, "100234", res.AMNetID)
	assert.Equal(t, "100234", m.AMNetID)
	f.persons.AssertNotCalled(t, "UpdatePerson", mock.Anything, mock.Anything)
	f.locker.AssertExpectations(t)
}

func TestService_Push_UpdatesLinkedPerson(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)
	require.NoError(t, m.LinkAMNet("100234"))
	m.JobTitle = "Controller"
	remote := &integration.Person{NamesID: "100234", MemberStatusCode: "M", DuesPaidThrough: 2026, JobTitle: "Clerk"}

	archive := new(MockPayloadArchive)
	archive.On("Archive", ctx, "person", "100234", mock.Anything).Return(nil)
	f.service.SetPayloadArchive(archive)

	f.members.On("FindByID", ctx, m.ID).Return(m, nil)
	f.expectLock(m)
	f.persons.On("GetPerson", ctx, "100234").Return(remote, nil)
	f.persons.On("UpdatePerson", ctx, mock.MatchedBy(func(p *integration.Person) bool {
		return p.NamesID == "100234" && p.JobTitle == "Controller" && p.MemberStatusCode == "M" && p.DuesPaidThrough == 2026
	})).Return(nil)

	res, err := f.service.Push(ctx, m.ID)

	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "Clerk", remote.JobTitle)
	archive.AssertExpectations(t)
}

func TestService_Push_Excluded(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)
	require.NoError(t, m.LinkAMNet("100234"))

	f.members.On("FindByID", ctx, m.ID).Return(m, nil)
	f.expectLock(m)
	f.persons.On("GetPerson", ctx, "100234").Return(&integration.Person{NamesID: "100234", ExcludeFromWeb: true}, nil)

	res, err := f.service.Push(ctx, m.ID)

	assert.ErrorIs(t, err, integration.ErrRecordExcluded)
	assert.Equal(t, "skipped", res.Status)
	f.persons.AssertNotCalled(t, "UpdatePerson", mock.Anything, mock.Anything)
}

func TestService_Push_LockHeld(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)

	f.members.On("FindByID", ctx, m.ID).Return(m, nil)
	f.locker.On("Acquire", mock.Anything, membership.SyncLockKey(m.ID), time.Minute).Return(false, nil)

	res, err := f.service.Push(ctx, m.ID)

	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Equal(t, "skipped", res.Status)
	f.locker.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestService_Push_AMNetFailureIsRecorded(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)
	require.NoError(t, m.LinkAMNet("100234"))

	f.members.On("FindByID", ctx, m.ID).Return(m, nil)
	f.expectLock(m)
	f.persons.On("GetPerson", ctx, "100234").Return(nil, integration.ErrAMNetUnavailable)

	res, err := f.service.Push(ctx, m.ID)

	assert.ErrorIs(t, err, integration.ErrAMNetUnavailable)
	assert.Equal(t, "failed", res.Status)
	assert.Contains(t, res.Error, "unavailable")
	f.records.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

// =============================================================================
// Pull
// =============================================================================

func TestService_Pull_UpdatesLinkedMember(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)
	require.NoError(t, m.LinkAMNet("100234"))
	person := &integration.Person{
		NamesID:          "100234",
		FirstName:        "Janet",
		LastName:         "Doe",
		Email:            "jane@example.com",
		HomeAddress:      integration.PersonAddress{Line1: "1 Main St", City: "Richmond", State: "VA", Zip: "23219", CountyCode: "760"},
		InterestCodes:    []string{"GONE"},
		MemberStatusCode: "M",
		BillingClassCode: "REG",
		DuesPaidThrough:  2026,
	}

	var recomputed uuid.UUID
	f.service.SetMembershipRecomputer(RecomputeFunc(func(_ context.Context, id uuid.UUID) error {
		recomputed = id
		return nil
	}))

	f.persons.On("GetPerson", ctx, "100234").Return(person, nil)
	f.members.On("FindByAMNetID", ctx, "100234").Return(m, nil)
	f.expectLock(m)
	f.members.On("Save", ctx, m).Return(nil)
	f.events.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		for _, e := range events {
			if u, ok := e.(*membership.MemberUpdatedEvent); ok {
				return u.Origin == membership.OriginAMNet
			}
		}
		return false
	})).Return(nil)

	res, err := f.service.Pull(ctx, "100234")

	require.NoError(t, err)
	assert.Equal(t, "succeeded", res.Status)
	assert.Equal(t, []string{`InterestCodes: unknown code "GONE"`}, res.FieldErrors)
	assert.Equal(t, "Janet", m.FirstName)
	assert.Equal(t, membership.StatusMember, m.MemberStatus)
	require.NotNil(t, m.HomeCountyID)
	assert.Equal(t, f.county.ID, *m.HomeCountyID)
	assert.Equal(t, m.ID, recomputed)
	f.events.AssertExpectations(t)
}

func TestService_Pull_FallsBackToEmail(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)
	person := &integration.Person{NamesID: "555", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}

	f.persons.On("GetPerson", ctx, "555").Return(person, nil)
	f.members.On("FindByAMNetID", ctx, "555").Return(nil, membership.ErrMemberNotFound)
	f.members.On("FindByEmail", ctx, "jane@example.com").Return(m, nil)
	f.expectLock(m)
	f.members.On("Save", ctx, m).Return(nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	_, err := f.service.Pull(ctx, "555")

	require.NoError(t, err)
	assert.Equal(t, "555", m.AMNetID)
}

func TestService_Pull_CreatesMemberOnFirstSync(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	person := &integration.Person{
		NamesID:          "777",
		FirstName:        "Nia",
		LastName:         "Newman",
		Email:            "New.Member@example.com",
		HomeAddress:      integration.PersonAddress{Line1: "9 Broad St", City: "Richmond", State: "VA", Zip: "23219", CountyCode: "760"},
		MemberStatusCode: "M",
		BillingClassCode: "NEW",
		DuesPaidThrough:  2026,
	}

	f.persons.On("GetPerson", ctx, "777").Return(person, nil)
	f.members.On("FindByAMNetID", ctx, "777").Return(nil, membership.ErrMemberNotFound)
	f.members.On("FindByEmail", ctx, "New.Member@example.com").Return(nil, membership.ErrMemberNotFound)
	isLockKey := mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "member.") })
	f.locker.On("Acquire", mock.Anything, isLockKey, time.Minute).Return(true, nil).Once()
	f.locker.On("Release", mock.Anything, isLockKey).Return(nil).Once()

	var saved *membership.Member
	f.members.On("Save", ctx, mock.AnythingOfType("*membership.Member")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*membership.Member) }).
		Return(nil).Once()

	var published []shared.DomainEvent
	f.events.On("Publish", ctx, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]shared.DomainEvent) }).
		Return(nil)

	res, err := f.service.Pull(ctx, "777")

	require.NoError(t, err)
	assert.Equal(t, "succeeded", res.Status)
	require.NotNil(t, saved)
	assert.Equal(t, "777", saved.AMNetID)
	assert.Equal(t, "new.member@example.com", saved.Email)
	assert.Equal(t, "Nia", saved.FirstName)
	assert.Equal(t, membership.StatusMember, saved.MemberStatus)
	assert.Equal(t, "NEW", saved.BillingClass)
	require.NotNil(t, saved.HomeCountyID)
	assert.Equal(t, f.county.ID, *saved.HomeCountyID)
	require.NotNil(t, res.MemberID)
	assert.Equal(t, saved.ID, *res.MemberID)

	types := make([]string, 0, len(published))
	for _, e := range published {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, membership.EventTypeMemberCreated)
	f.locker.AssertExpectations(t)
}

func TestService_Pull_PersonWithoutEmailIsNotCreated(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	person := &integration.Person{NamesID: "778", FirstName: "No", LastName: "Email"}

	f.persons.On("GetPerson", ctx, "778").Return(person, nil)
	f.members.On("FindByAMNetID", ctx, "778").Return(nil, membership.ErrMemberNotFound)

	res, err := f.service.Pull(ctx, "778")

	assert.ErrorIs(t, err, membership.ErrInvalidEmail)
	assert.Equal(t, "failed", res.Status)
	f.members.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	f.members.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Pull_EmailLinkedElsewhere(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	m := newMember(t)
	require.NoError(t, m.LinkAMNet("999"))
	person := &integration.Person{NamesID: "555", Email: "jane@example.com"}

	f.persons.On("GetPerson", ctx, "555").Return(person, nil)
	f.members.On("FindByAMNetID", ctx, "555").Return(nil, membership.ErrMemberNotFound)
	f.members.On("FindByEmail", ctx, "jane@example.com").Return(m, nil)

	res, err := f.service.Pull(ctx, "555")

	assert.ErrorIs(t, err, membership.ErrEmailLinkedElsewhere)
	assert.Equal(t, "failed", res.Status)
	f.members.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Pull_Excluded(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	f.persons.On("GetPerson", ctx, "555").Return(&integration.Person{NamesID: "555", ExcludeFromWeb: true}, nil)

	res, err := f.service.Pull(ctx, "555")

	assert.ErrorIs(t, err, integration.ErrRecordExcluded)
	assert.Equal(t, "skipped", res.Status)
	f.members.AssertNotCalled(t, "FindByAMNetID", mock.Anything, mock.Anything)
}

func TestService_History(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	id := uuid.New()
	rec := integration.StartSync(integration.SyncDirectionPull, &id, "100234")
	rec.Succeed()

	f.records.On("FindByMember", ctx, id, 20).Return([]integration.SyncRecord{*rec}, nil)

	resp, err := f.service.History(ctx, id, 0)

	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "pull", resp.Records[0].Direction)
}
