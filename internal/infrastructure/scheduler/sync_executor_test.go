package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"go.uber.org/zap"
)

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.PersonSummary), args.Error(1)
}

type recordingSubmitter struct {
	pulls []string
	err   error
}

func (r *recordingSubmitter) SubmitPull(namesID string) error {
	if r.err != nil {
		return r.err
	}
	r.pulls = append(r.pulls, namesID)
	return nil
}

func TestSyncExecutor_PullMember(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("AM.net unavailable")

	tests := []struct {
		name    string
		pullErr error
		wantErr error
	}{
		{"success", nil, nil},
		{"excluded is done", integration.ErrRecordExcluded, nil},
		{"email linked to another person is done", membership.ErrEmailLinkedElsewhere, nil},
		{"person without usable email is done", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty"), nil},
		{"transport error is retried", boom, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pulled string
			exec := NewSyncExecutor(SyncTasks{
				PullMember: func(_ context.Context, id string) error {
					pulled = id
					return tt.pullErr
				},
			}, nil, time.Hour, zap.NewNop())

			err := exec.Execute(ctx, NewPullMemberJob("100234", 0))

			assert.Equal(t, "100234", pulled)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSyncExecutor_DispatchesReferenceJobs(t *testing.T) {
	ctx := context.Background()
	var terms, firms int
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	exec := NewSyncExecutor(SyncTasks{
		RefreshTerms: func(context.Context) error { terms++; return nil },
		SyncFirmChanges: func(_ context.Context, s *time.Time) error {
			firms++
			assert.Equal(t, since, *s)
			return nil
		},
	}, nil, time.Hour, zap.NewNop())

	require.NoError(t, exec.Execute(ctx, NewJob(JobTypeRefreshTerms, 0)))
	job := NewJob(JobTypeFirmChanges, 0)
	job.Since = &since
	require.NoError(t, exec.Execute(ctx, job))

	assert.Equal(t, 1, terms)
	assert.Equal(t, 1, firms)
	assert.ErrorIs(t, exec.Execute(ctx, NewJob("NOPE", 0)), ErrUnknownJobType)
}

func TestSyncExecutor_SweepChangedPersons(t *testing.T) {
	ctx := context.Background()
	persons := new(MockPersonGateway)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exec := NewSyncExecutor(SyncTasks{}, persons, time.Hour, zap.NewNop())
	exec.now = func() time.Time { return now }
	exec.lastSweep = now.Add(-time.Hour)
	sub := &recordingSubmitter{}
	exec.SetSubmitter(sub)

	persons.On("SearchPersons", ctx, integration.PersonSearchQuery{ChangedSince: integration.NewDate(now.Add(-time.Hour))}).
		Return([]integration.PersonSummary{{NamesID: "1"}, {NamesID: "2"}, {NamesID: "1"}, {NamesID: ""}}, nil).Once()

	require.NoError(t, exec.Execute(ctx, NewJob(JobTypeChangedPersons, 0)))
	assert.Equal(t, []string{"1", "2"}, sub.pulls)
	assert.Equal(t, now, exec.lastSweep)
}

func TestSyncExecutor_SweepKeepsCursorOnFailure(t *testing.T) {
	ctx := context.Background()
	persons := new(MockPersonGateway)
	start := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	exec := NewSyncExecutor(SyncTasks{}, persons, time.Hour, zap.NewNop())
	exec.lastSweep = start
	exec.SetSubmitter(&recordingSubmitter{err: ErrJobQueueFull})

	persons.On("SearchPersons", ctx, mock.Anything).Return([]integration.PersonSummary{{NamesID: "1"}}, nil)

	err := exec.Execute(ctx, NewJob(JobTypeChangedPersons, 0))

	assert.ErrorIs(t, err, ErrJobQueueFull)
	assert.Equal(t, start, exec.lastSweep)
}
