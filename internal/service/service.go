// File: internal/service/service.go
// Description: The mission runner. Owns the vendor directory, drives missions
// through the coordinator with a concurrency bound, keeps suspended missions
// until a human decision arrives, and archives to the store when configured.

package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/config"
	"github.com/debdutta1777/AuraProcure/internal/directory"
	"github.com/debdutta1777/AuraProcure/internal/orchestrator"
)

// Archiver is the persistence collaborator. Optional: a nil Archiver skips
// archiving entirely.
type Archiver interface {
	ArchiveMission(ctx context.Context, mctx *schemas.MissionContext) error
}

// Service runs procurement missions.
type Service struct {
	cfg     *config.Config
	logger  *zap.Logger
	dir     *directory.Directory
	coord   *orchestrator.Coordinator
	archive Archiver

	mu        sync.Mutex
	suspended map[string]*schemas.MissionContext
}

// New creates the mission runner. archive may be nil.
func New(cfg *config.Config, logger *zap.Logger, dir *directory.Directory, coord *orchestrator.Coordinator, archive Archiver) (*Service, error) {
	if cfg == nil || logger == nil || dir == nil || coord == nil {
		return nil, fmt.Errorf("cannot initialize service with nil dependencies")
	}
	return &Service{
		cfg:       cfg,
		logger:    logger.Named("service"),
		dir:       dir,
		coord:     coord,
		archive:   archive,
		suspended: make(map[string]*schemas.MissionContext),
	}, nil
}

// Launch runs one mission end to end. Missions that suspend on the approval
// gate are retained until Approve is called with a decision.
func (s *Service) Launch(ctx context.Context, requestText string) (*orchestrator.Outcome, error) {
	mctx := s.coord.NewMission(requestText, s.dir.Vendors(), s.dir.ActivePolicies())
	outcome, err := s.coord.Run(ctx, mctx)
	if err != nil {
		return nil, err
	}
	if outcome.Clarification != nil {
		return outcome, nil
	}

	if outcome.Result.Status == schemas.MissionAwaitingApproval {
		s.mu.Lock()
		s.suspended[mctx.Mission.ID] = mctx
		s.mu.Unlock()
		s.logger.Info("Mission suspended pending approval",
			zap.String("mission_id", mctx.Mission.ID),
			zap.Int64("total_amount", outcome.Result.TotalAmount))
	}

	s.archiveMission(ctx, mctx)
	return outcome, nil
}

// LaunchAll runs a batch of requests concurrently, bounded by the configured
// mission limit. Outcomes are returned in request order.
func (s *Service) LaunchAll(ctx context.Context, requests []string) ([]*orchestrator.Outcome, error) {
	outcomes := make([]*orchestrator.Outcome, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	if limit := s.cfg.Engine.MaxConcurrentMissions; limit > 0 {
		g.SetLimit(limit)
	}
	for i, requestText := range requests {
		g.Go(func() error {
			outcome, err := s.Launch(gctx, requestText)
			if err != nil {
				return fmt.Errorf("mission %d: %w", i+1, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Approve routes a human decision to a suspended mission and finishes it.
func (s *Service) Approve(ctx context.Context, missionID, approver string, approved bool) (*schemas.MissionResult, error) {
	s.mu.Lock()
	mctx, ok := s.suspended[missionID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no mission %s is awaiting approval", missionID)
	}

	result, err := s.coord.Resume(ctx, mctx, approver, approved)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.suspended, missionID)
	s.mu.Unlock()

	s.archiveMission(ctx, mctx)
	return result, nil
}

// Suspended lists the missions currently waiting on a human decision, ordered
// by creation time.
func (s *Service) Suspended() []schemas.Mission {
	s.mu.Lock()
	defer s.mu.Unlock()

	missions := make([]schemas.Mission, 0, len(s.suspended))
	for _, mctx := range s.suspended {
		missions = append(missions, mctx.Mission)
	}
	sort.Slice(missions, func(i, j int) bool {
		if missions[i].CreatedAt.Equal(missions[j].CreatedAt) {
			return missions[i].ID < missions[j].ID
		}
		return missions[i].CreatedAt.Before(missions[j].CreatedAt)
	})
	return missions
}

// Directory exposes the vendor and policy directory for read-only commands.
func (s *Service) Directory() *directory.Directory { return s.dir }

// archiveMission persists the mission record set. Archive failures are logged
// and swallowed: persistence is best-effort and never fails a mission.
func (s *Service) archiveMission(ctx context.Context, mctx *schemas.MissionContext) {
	if s.archive == nil {
		return
	}
	if err := s.archive.ArchiveMission(ctx, mctx); err != nil {
		s.logger.Warn("Failed to archive mission",
			zap.String("mission_id", mctx.Mission.ID),
			zap.Error(err))
	}
}
