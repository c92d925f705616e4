package services

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/internal/models"
	"github.com/abrezinsky/mvpboard/internal/ranking"
	"github.com/abrezinsky/mvpboard/internal/repository"
	"github.com/abrezinsky/mvpboard/internal/session"
)

// RankingService handles the weekly-winners ledger: appends after a
// draw, user-initiated removals, and syncing the store to persistence.
type RankingService struct {
	log         logger.Logger
	clock       clockwork.Clock
	repo        repository.FullRepository
	session     *session.State
	stats       *StatsService
	broadcaster Broadcaster
}

// NewRankingService creates a new RankingService
func NewRankingService(log logger.Logger, clock clockwork.Clock, repo repository.FullRepository, sess *session.State, statsSvc *StatsService) *RankingService {
	return &RankingService{
		log:     log,
		clock:   clock,
		repo:    repo,
		session: sess,
		stats:   statsSvc,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *RankingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Rows returns the labeled ledger for a scope, sorted and tagged W1..Wn.
func (s *RankingService) Rows(scope models.Scope) []models.RankingRow {
	return ranking.Label(s.session.Entries(scope))
}

// ActiveRows returns the labeled ledger for the active scope.
func (s *RankingService) ActiveRows() []models.RankingRow {
	return s.Rows(s.session.ActiveScope())
}

// Append records a winner under a scope, stamped with the current time.
func (s *RankingService) Append(ctx context.Context, scope models.Scope, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.session.AppendEntry(scope, models.RankingEntry{Name: name, TS: s.clock.Now().UnixMilli()})
	s.persist(ctx, scope)
	s.broadcast(scope)
}

// Remove deletes the entry with the exact timestamp from the active scope.
func (s *RankingService) Remove(ctx context.Context, ts int64) error {
	scope := s.session.ActiveScope()
	if !s.session.RemoveEntry(scope, ts) {
		return ErrEntryNotFound
	}
	s.persist(ctx, scope)
	s.broadcast(scope)
	return nil
}

// Clear empties the active scope's ledger.
func (s *RankingService) Clear(ctx context.Context) error {
	scope := s.session.ActiveScope()
	s.session.ClearScope(scope)
	s.persist(ctx, scope)
	s.broadcast(scope)
	return nil
}

// ApplyRemote merges a remotely-changed ledger into the session.
// Returns false, with no broadcast, when the lists already match.
func (s *RankingService) ApplyRemote(scope models.Scope, entries []models.RankingEntry) bool {
	if ranking.Equal(s.session.Entries(scope), entries) {
		return false
	}
	s.session.SetEntries(scope, entries)
	s.stats.SetMVPs(context.Background(), s.session.TotalEntries())
	s.broadcast(scope)
	return true
}

// SyncStore writes the whole ranking store through and refreshes the
// MVP counter. Used after bulk changes such as a class delete.
func (s *RankingService) SyncStore(ctx context.Context) {
	uid := s.session.UID()
	if uid == "" {
		return
	}
	if err := s.repo.SaveUserState(ctx, uid, repository.UserStatePatch{Ranking: s.session.RankingStore()}); err != nil {
		s.log.Warn("Failed to persist ranking store", "error", err)
	}
	s.stats.SetMVPs(ctx, s.session.TotalEntries())
}

// persist writes the store through and mirrors class-scope ledgers
// into their class document. Failures are logged, never surfaced, so
// the local ledger stays usable offline.
func (s *RankingService) persist(ctx context.Context, scope models.Scope) {
	uid := s.session.UID()
	if uid == "" {
		return
	}
	if err := s.repo.SaveUserState(ctx, uid, repository.UserStatePatch{Ranking: s.session.RankingStore()}); err != nil {
		s.log.Warn("Failed to persist ranking store", "error", err)
	}
	if !scope.IsGlobal() {
		if err := s.repo.SetClassWeekly(ctx, uid, scope.ClassID(), s.session.Entries(scope)); err != nil {
			s.log.Warn("Failed to mirror class ledger", "class_id", scope.ClassID(), "error", err)
		}
	}
	s.stats.SetMVPs(ctx, s.session.TotalEntries())
}

func (s *RankingService) broadcast(scope models.Scope) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastMessage("ranking", map[string]interface{}{
		"scope": scope.Key(),
		"rows":  s.Rows(scope),
	})
}
