package services

import (
	"context"

	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/internal/models"
	"github.com/abrezinsky/mvpboard/internal/repository"
)

// UsageNotice is the read model behind the usage banner: raw counters
// plus the MVP percentage of the student population, clamped to 100.
type UsageNotice struct {
	ClassCount   int `json:"class_count"`
	StudentCount int `json:"student_count"`
	MVPCount     int `json:"mvp_count"`
	Percent      int `json:"percent"`
}

// StatsService maintains the global usage counters. The counters feed
// the usage notice only and never influence selection.
type StatsService struct {
	log         logger.Logger
	repo        repository.StatsRepository
	broadcaster Broadcaster
}

// NewStatsService creates a new StatsService
func NewStatsService(log logger.Logger, repo repository.StatsRepository) *StatsService {
	return &StatsService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *StatsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Get returns the raw global counters.
func (s *StatsService) Get(ctx context.Context) (models.GlobalStats, error) {
	return s.repo.GetStats(ctx)
}

// Notice builds the usage banner read model.
func (s *StatsService) Notice(ctx context.Context) (UsageNotice, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return UsageNotice{}, err
	}
	return UsageNotice{
		ClassCount:   stats.ClassCount,
		StudentCount: stats.StudentCount,
		MVPCount:     stats.MVPCount,
		Percent:      usagePercent(stats.MVPCount, stats.StudentCount),
	}, nil
}

// AdjustClasses shifts the class counter by delta.
func (s *StatsService) AdjustClasses(ctx context.Context, delta int) {
	if err := s.repo.AdjustClassCount(ctx, delta); err != nil {
		s.log.Warn("Failed to adjust class count", "delta", delta, "error", err)
		return
	}
	s.broadcastNotice(ctx)
}

// SetStudents overwrites the student counter with a fresh recount.
func (s *StatsService) SetStudents(ctx context.Context, count int) {
	if err := s.repo.SetStudentCount(ctx, count); err != nil {
		s.log.Warn("Failed to set student count", "error", err)
		return
	}
	s.broadcastNotice(ctx)
}

// SetMVPs overwrites the MVP counter with a fresh recount.
func (s *StatsService) SetMVPs(ctx context.Context, count int) {
	if err := s.repo.SetMVPCount(ctx, count); err != nil {
		s.log.Warn("Failed to set MVP count", "error", err)
		return
	}
	s.broadcastNotice(ctx)
}

// Broadcast pushes the current usage notice to connected clients.
func (s *StatsService) Broadcast(ctx context.Context) {
	s.broadcastNotice(ctx)
}

func (s *StatsService) broadcastNotice(ctx context.Context) {
	if s.broadcaster == nil {
		return
	}
	notice, err := s.Notice(ctx)
	if err != nil {
		s.log.Warn("Failed to load usage stats", "error", err)
		return
	}
	s.broadcaster.BroadcastMessage("stats", notice)
}

func usagePercent(mvps, students int) int {
	if students <= 0 {
		return 0
	}
	pct := mvps * 100 / students
	if pct > 100 {
		pct = 100
	}
	return pct
}
