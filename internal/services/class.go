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

// ClassService handles class roster management and the cascades a
// roster change sets off: counter updates, ledger-scope pruning, and
// winner reconciliation.
type ClassService struct {
	log         logger.Logger
	clock       clockwork.Clock
	repo        repository.FullRepository
	session     *session.State
	picker      *PickerService
	ranking     *RankingService
	stats       *StatsService
	broadcaster Broadcaster
}

// NewClassService creates a new ClassService
func NewClassService(log logger.Logger, clock clockwork.Clock, repo repository.FullRepository, sess *session.State, picker *PickerService, rankingSvc *RankingService, statsSvc *StatsService) *ClassService {
	return &ClassService{
		log:     log,
		clock:   clock,
		repo:    repo,
		session: sess,
		picker:  picker,
		ranking: rankingSvc,
		stats:   statsSvc,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *ClassService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// List returns the loaded classes.
func (s *ClassService) List() []models.Class {
	return s.session.Classes()
}

// Add creates a class. A name matching an existing class
// case-insensitively is refused with ErrDuplicateClassName unless
// allowDuplicate is set, so the client can ask the user to confirm.
func (s *ClassService) Add(ctx context.Context, name string, students []string, allowDuplicate bool) (models.Class, error) {
	uid := s.session.UID()
	if uid == "" {
		return models.Class{}, ErrNotSignedIn
	}

	if !allowDuplicate {
		for _, c := range s.session.Classes() {
			if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
				return models.Class{}, ErrDuplicateClassName
			}
		}
	}

	class, err := s.repo.CreateClass(ctx, uid, name, students)
	if err != nil {
		return models.Class{}, err
	}

	if err := s.reload(ctx, uid); err != nil {
		return class, err
	}
	s.stats.AdjustClasses(ctx, 1)
	s.stats.SetStudents(ctx, s.countStudents())
	s.broadcastClasses()
	s.log.Info("Class created", "class_id", class.ID, "name", class.Name, "students", len(class.Students))
	return class, nil
}

// EditStudents replaces a class roster. Editing the selected class can
// invalidate the preset winner, so the winner is reconciled after.
func (s *ClassService) EditStudents(ctx context.Context, id string, students []string) error {
	uid := s.session.UID()
	if uid == "" {
		return ErrNotSignedIn
	}

	err := s.repo.UpdateClassStudents(ctx, uid, id, students)
	if err == repository.ErrNotFound {
		return ErrUnknownClass
	}
	if err != nil {
		return err
	}

	s.session.UpdateClassStudents(id, students)
	s.stats.SetStudents(ctx, s.countStudents())
	if s.session.SelectedClassID() == id {
		s.picker.Reconcile(ctx)
		s.picker.RenderIdle()
	}
	s.broadcastClasses()
	return nil
}

// Delete removes a class, its ledger scope, and its share of the
// counters. When the deleted class was selected the session falls back
// to the first remaining class or the global scope.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	uid := s.session.UID()
	if uid == "" {
		return ErrNotSignedIn
	}

	err := s.repo.DeleteClass(ctx, uid, id)
	if err == repository.ErrNotFound {
		return ErrUnknownClass
	}
	if err != nil {
		return err
	}

	selectedBefore := s.session.SelectedClassID()
	s.session.RemoveClass(id)
	s.ranking.SyncStore(ctx)
	s.stats.AdjustClasses(ctx, -1)
	s.stats.SetStudents(ctx, s.countStudents())

	if selectedBefore == id {
		s.picker.ReloadScopeWinner(ctx)
		s.picker.RenderIdle()
	}
	s.broadcastClasses()
	s.log.Info("Class deleted", "class_id", id)
	return nil
}

// Refresh re-reads the user's classes from the store and folds them
// into the session: rosters, per-class winners, weekly ledgers, and
// the pruning of scopes whose class disappeared remotely. Used at
// sign-in and whenever the change feed reports a class write.
func (s *ClassService) Refresh(ctx context.Context) error {
	uid := s.session.UID()
	if uid == "" {
		return ErrNotSignedIn
	}
	if err := s.reload(ctx, uid); err != nil {
		return err
	}
	s.picker.RenderIdle()
	s.broadcastClasses()
	return nil
}

// reload replaces session classes from the store and applies each
// class's ledger; selection fallback triggers a winner reload.
func (s *ClassService) reload(ctx context.Context, uid string) error {
	records, err := s.repo.ListClasses(ctx, uid)
	if err != nil {
		return err
	}

	classes := make([]models.Class, len(records))
	keep := make(map[string]bool, len(records))
	for i, rec := range records {
		classes[i] = models.Class{
			ID:            rec.ID,
			Name:          rec.Name,
			Students:      rec.Students,
			CurrentWinner: rec.CurrentWinner,
		}
		keep[rec.ID] = true
	}

	selectionChanged := s.session.SetClasses(classes)
	s.session.PruneClassScopes(keep)
	for _, rec := range records {
		entries := ranking.Normalize(rec.WeeklyRaw, s.clock.Now())
		s.ranking.ApplyRemote(models.ClassScope(rec.ID), entries)
	}

	if selectionChanged {
		s.picker.ReloadScopeWinner(ctx)
		s.picker.RenderIdle()
	}
	return nil
}

func (s *ClassService) countStudents() int {
	total := 0
	for _, c := range s.session.Classes() {
		total += len(c.Students)
	}
	return total
}

func (s *ClassService) broadcastClasses() {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastMessage("classes", map[string]interface{}{
		"classes":           s.session.Classes(),
		"selected_class_id": s.session.SelectedClassID(),
	})
}
