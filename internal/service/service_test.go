package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/compliance"
	"github.com/debdutta1777/AuraProcure/internal/config"
	"github.com/debdutta1777/AuraProcure/internal/directory"
	"github.com/debdutta1777/AuraProcure/internal/drafter"
	"github.com/debdutta1777/AuraProcure/internal/hitl"
	"github.com/debdutta1777/AuraProcure/internal/llm"
	"github.com/debdutta1777/AuraProcure/internal/orchestrator"
	"github.com/debdutta1777/AuraProcure/internal/parser"
	"github.com/debdutta1777/AuraProcure/internal/sourcing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// steadyRand always takes the healthy branch of the sourcing engine.
type steadyRand struct{}

func (steadyRand) Float64() float64 { return 0.9 }

// recordingArchiver captures archived mission contexts.
type recordingArchiver struct {
	mu       sync.Mutex
	archived []schemas.MissionStatus
	err      error
}

func (a *recordingArchiver) ArchiveMission(_ context.Context, mctx *schemas.MissionContext) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.archived = append(a.archived, mctx.Mission.Status)
	return nil
}

func (a *recordingArchiver) statuses() []schemas.MissionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]schemas.MissionStatus(nil), a.archived...)
}

func newService(t *testing.T, archive Archiver) *Service {
	t.Helper()
	cfg := config.NewDefaultConfig()
	logger := zap.NewNop()

	dir, err := directory.Load("", "")
	require.NoError(t, err)

	coord, err := orchestrator.New(
		cfg,
		logger,
		parser.New(llm.Disabled{}, logger).WithClock(func() time.Time { return fixedNow }),
		sourcing.New(steadyRand{}, logger),
		compliance.New(logger),
		hitl.New(cfg.Approval, logger).WithClock(func() time.Time { return fixedNow }),
		drafter.New(cfg.Documents, logger).WithClock(func() time.Time { return fixedNow }),
		steadyRand{},
	)
	require.NoError(t, err)

	svc, err := New(cfg, logger, dir, coord, archive)
	require.NoError(t, err)
	return svc
}

func TestLaunchCompletesCheapMission(t *testing.T) {
	archive := &recordingArchiver{}
	svc := newService(t, archive)

	outcome, err := svc.Launch(context.Background(), "5 ergonomic chairs for the office")
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)

	assert.Equal(t, schemas.MissionCompleted, outcome.Result.Status)
	assert.Empty(t, svc.Suspended())
	assert.Equal(t, []schemas.MissionStatus{schemas.MissionCompleted}, archive.statuses())
}

func TestLaunchSuspendsExpensiveMission(t *testing.T) {
	svc := newService(t, nil)

	// 4 servers at a 5000 reference price lands well above the general
	// approval threshold.
	outcome, err := svc.Launch(context.Background(), "4 servers for the data center")
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)

	assert.Equal(t, schemas.MissionAwaitingApproval, outcome.Result.Status)
	assert.True(t, outcome.Result.NeedsApproval)

	suspended := svc.Suspended()
	require.Len(t, suspended, 1)
	assert.Equal(t, outcome.Result.MissionID, suspended[0].ID)
}

func TestLaunchReturnsClarification(t *testing.T) {
	svc := newService(t, nil)

	outcome, err := svc.Launch(context.Background(), "we need some things")
	require.NoError(t, err)
	require.NotNil(t, outcome.Clarification)

	assert.Equal(t, schemas.ClarificationStatus, outcome.Clarification.Status)
	assert.Empty(t, svc.Suspended())
}

func TestApproveResumesSuspendedMission(t *testing.T) {
	archive := &recordingArchiver{}
	svc := newService(t, archive)

	outcome, err := svc.Launch(context.Background(), "4 servers for the data center")
	require.NoError(t, err)
	missionID := outcome.Result.MissionID

	result, err := svc.Approve(context.Background(), missionID, "alex@auraprocure.test", true)
	require.NoError(t, err)

	assert.Equal(t, schemas.MissionCompleted, result.Status)
	assert.NotEmpty(t, result.Documents)
	assert.Empty(t, svc.Suspended())
	assert.Equal(t, []schemas.MissionStatus{schemas.MissionAwaitingApproval, schemas.MissionCompleted}, archive.statuses())

	_, err = svc.Approve(context.Background(), missionID, "alex@auraprocure.test", true)
	require.Error(t, err, "a resolved mission leaves the suspension registry")
}

func TestApproveRejectsSuspendedMission(t *testing.T) {
	svc := newService(t, nil)

	outcome, err := svc.Launch(context.Background(), "4 servers for the data center")
	require.NoError(t, err)

	result, err := svc.Approve(context.Background(), outcome.Result.MissionID, "casey@auraprocure.test", false)
	require.NoError(t, err)

	assert.Equal(t, schemas.MissionFailed, result.Status)
	assert.False(t, result.Success)
	assert.Empty(t, svc.Suspended())
}

func TestApproveUnknownMission(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.Approve(context.Background(), "nope", "alex@auraprocure.test", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "awaiting approval")
}

func TestLaunchAllRunsConcurrently(t *testing.T) {
	svc := newService(t, nil)

	requests := []string{
		"5 ergonomic chairs for the office",
		"2 monitors for the design team",
		"we need some things",
	}
	outcomes, err := svc.LaunchAll(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, schemas.MissionCompleted, outcomes[0].Result.Status)
	assert.Equal(t, schemas.MissionCompleted, outcomes[1].Result.Status)
	assert.NotNil(t, outcomes[2].Clarification, "outcomes keep request order")
}

func TestArchiveFailureDoesNotFailTheMission(t *testing.T) {
	archive := &recordingArchiver{err: errors.New("archive down")}
	svc := newService(t, archive)

	outcome, err := svc.Launch(context.Background(), "5 ergonomic chairs for the office")
	require.NoError(t, err)
	assert.Equal(t, schemas.MissionCompleted, outcome.Result.Status)
}
