package services

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/mvpboard/internal/engine"
	"github.com/abrezinsky/mvpboard/internal/errors"
	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/internal/models"
	"github.com/abrezinsky/mvpboard/internal/pool"
	"github.com/abrezinsky/mvpboard/internal/ranking"
	"github.com/abrezinsky/mvpboard/internal/repository"
	"github.com/abrezinsky/mvpboard/internal/session"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastMessage(msgType string, payload interface{})
}

// Drawer runs the shuffle/reveal animation. Satisfied by *engine.Engine.
type Drawer interface {
	Start(ctx context.Context, req engine.Request) error
	Busy() bool
	Frame() string
	ShowFrame(text string, width int)
}

// ConsumptionPolicy controls when a finished draw clears the preset
// winner. The default clears after every reveal; PolicyPresetOnly
// keeps the preset when a random fallback was shown instead.
type ConsumptionPolicy string

const (
	PolicyAlways     ConsumptionPolicy = "always"
	PolicyPresetOnly ConsumptionPolicy = "preset-only"
)

// ParseConsumptionPolicy maps a config string to a policy, defaulting
// to PolicyAlways for anything unrecognized.
func ParseConsumptionPolicy(s string) ConsumptionPolicy {
	if ConsumptionPolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyPresetOnly {
		return PolicyPresetOnly
	}
	return PolicyAlways
}

// ReadyFrame is the idle display shown between draws.
const ReadyFrame = "READY"

// SetWinnerOptions tunes a winner write. Persist writes through to the
// store; SkipReconcile suppresses the pool-membership check (used when
// the reconciliation itself is doing the clearing).
type SetWinnerOptions struct {
	Persist       bool
	SkipReconcile bool
}

// PickerService owns the winner state, the pool read models, and the
// start path of a draw.
type PickerService struct {
	log         logger.Logger
	clock       clockwork.Clock
	repo        repository.FullRepository
	session     *session.State
	drawer      Drawer
	ranking     *RankingService
	stats       *StatsService
	policy      ConsumptionPolicy
	broadcaster Broadcaster
}

// NewPickerService creates a new PickerService
func NewPickerService(log logger.Logger, clock clockwork.Clock, repo repository.FullRepository, sess *session.State, drawer Drawer, rankingSvc *RankingService, statsSvc *StatsService, policy ConsumptionPolicy) *PickerService {
	return &PickerService{
		log:     log,
		clock:   clock,
		repo:    repo,
		session: sess,
		drawer:  drawer,
		ranking: rankingSvc,
		stats:   statsSvc,
		policy:  policy,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *PickerService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SignIn resolves the display name to a stable user, binds the session
// to it, and loads the user's state. The session is reset first so one
// user's data never bleeds into the next sign-in.
func (s *PickerService) SignIn(ctx context.Context, displayName, email string) (models.User, error) {
	user, err := s.repo.GetOrCreateUser(ctx, displayName, email)
	if err != nil {
		return models.User{}, err
	}
	s.session.Reset()
	s.session.SetUID(user.UID)
	if err := s.Load(ctx); err != nil {
		return user, err
	}
	return user, nil
}

// SignOut returns the session to signed-out defaults.
func (s *PickerService) SignOut() {
	s.session.Reset()
	s.RenderIdle()
}

// Load pulls the signed-in user's state document into the session:
// names, preset winner, and the normalized ranking store. A user with
// no document yet keeps the session defaults.
func (s *PickerService) Load(ctx context.Context) error {
	uid := s.session.UID()
	if uid == "" {
		return ErrNotSignedIn
	}

	rec, err := s.repo.GetUserState(ctx, uid)
	if err == repository.ErrNotFound {
		s.RenderIdle()
		return nil
	}
	if err != nil {
		return err
	}

	if len(rec.Names) > 0 {
		s.session.SetNames(rec.Names)
	}
	s.session.ReplaceRankingStore(ranking.NormalizeStore(rec.RankingRaw, s.clock.Now()))
	s.session.SetDefaultWinner(rec.FixedWinner)
	s.session.SetActiveWinner(rec.FixedWinner)
	s.Reconcile(ctx)
	s.RenderIdle()
	return nil
}

// SetWinner stores (or clears, for a blank name) the preset winner of
// the active scope. A class winner is mirrored into the class document;
// the global winner is written to the user state document and also
// remembered as the fallback restored when a class is deselected.
func (s *PickerService) SetWinner(ctx context.Context, name string, opts SetWinnerOptions) error {
	name = strings.TrimSpace(name)
	s.session.SetActiveWinner(name)
	scope := s.session.ActiveScope()

	if scope.IsGlobal() {
		s.session.SetDefaultWinner(name)
	}

	if opts.Persist {
		if uid := s.session.UID(); uid != "" {
			var err error
			if scope.IsGlobal() {
				winner := name
				err = s.repo.SaveUserState(ctx, uid, repository.UserStatePatch{FixedWinner: &winner})
			} else {
				err = s.repo.SetClassWinner(ctx, uid, scope.ClassID(), name)
			}
			if err != nil {
				s.log.Warn("Failed to persist winner", "scope", scope.Key(), "error", err)
			}
		}
	}

	if !opts.SkipReconcile {
		s.Reconcile(ctx)
		return nil
	}
	s.broadcastWinner()
	return nil
}

// Reconcile clears the preset winner when it is no longer in the
// active pool, writing the clear through so other devices agree.
func (s *PickerService) Reconcile(ctx context.Context) {
	winner := s.session.FixedWinner()
	if winner != "" && !pool.Contains(s.session.ActivePool(), winner) {
		s.SetWinner(ctx, "", SetWinnerOptions{Persist: true, SkipReconcile: true})
		return
	}
	s.broadcastWinner()
}

// SetNames replaces the global name list from newline-separated text
// and writes it through. An empty list restores the defaults.
func (s *PickerService) SetNames(ctx context.Context, text string) []string {
	s.session.SetNames(pool.ParseNames(text))
	names := s.session.Names()

	if uid := s.session.UID(); uid != "" {
		if err := s.repo.SaveUserState(ctx, uid, repository.UserStatePatch{Names: &names}); err != nil {
			s.log.Warn("Failed to persist names", "error", err)
		}
	}

	s.Reconcile(ctx)
	s.RenderIdle()
	return names
}

// SetShuffleSeconds stores the clamped shuffle duration and returns it.
func (s *PickerService) SetShuffleSeconds(seconds int) int {
	return s.session.SetShuffleSeconds(seconds)
}

// SelectClass switches the active scope. An empty id activates the
// global scope. The winner is reloaded from the new scope without a
// write-through, then reconciled against the new pool.
func (s *PickerService) SelectClass(ctx context.Context, id string) error {
	if s.session.SelectedClassID() == "" {
		// Leaving the global scope: remember its preset for later.
		s.session.SetDefaultWinner(s.session.FixedWinner())
	}
	if !s.session.SelectClass(id) {
		return ErrUnknownClass
	}
	s.ReloadScopeWinner(ctx)
	s.RenderIdle()
	s.broadcastClasses()
	return nil
}

// ReloadScopeWinner re-derives the preset winner from the active
// scope's own record: the class document's winner for a class, the
// remembered global preset otherwise. No write-through.
func (s *PickerService) ReloadScopeWinner(ctx context.Context) {
	winner := s.session.DefaultWinner()
	if c := s.session.SelectedClass(); c != nil {
		winner = c.CurrentWinner
	}
	s.SetWinner(ctx, winner, SetWinnerOptions{})
}

// Start begins a draw over the active pool. When a class is selected
// the class document is re-read so the preset winner reflects the
// latest remote write rather than the cached copy. A draw never starts
// without a resolved winner: a missing preset is refused, and a preset
// that fell out of the pool is cleared (with write-through) and refused.
func (s *PickerService) Start(ctx context.Context) error {
	if s.drawer.Busy() {
		return errors.Conflict("a draw is already running")
	}

	winner := s.session.FixedWinner()
	scope := s.session.ActiveScope()
	if !scope.IsGlobal() {
		if uid := s.session.UID(); uid != "" {
			rec, err := s.repo.GetClass(ctx, uid, scope.ClassID())
			switch {
			case err == nil:
				winner = strings.TrimSpace(rec.CurrentWinner)
				s.session.SetClassWinner(scope.ClassID(), winner)
				s.broadcastWinner()
			case err != repository.ErrNotFound:
				s.log.Warn("Failed to re-read class winner, using cached value", "class_id", scope.ClassID(), "error", err)
			}
		}
	}

	if winner == "" {
		return errors.Validation("select a winner before starting the shuffle")
	}
	if !pool.Contains(s.session.ActivePool(), winner) {
		s.SetWinner(ctx, "", SetWinnerOptions{Persist: true, SkipReconcile: true})
		return errors.Validation("the selected winner is not in the pool")
	}

	req := engine.Request{
		Pool:     s.session.ActivePool(),
		Width:    s.session.DisplayWidth(),
		Winner:   winner,
		Duration: time.Duration(s.session.ShuffleSeconds()) * time.Second,
	}
	// The animation outlives the HTTP request that started it.
	return s.drawer.Start(context.WithoutCancel(ctx), req)
}

// DrawCompleted records the outcome of a finished draw: the winner is
// appended to the active scope's ledger and the preset is consumed
// according to the configured policy.
func (s *PickerService) DrawCompleted(name string, presetUsed bool) {
	ctx := context.Background()
	scope := s.session.ActiveScope()
	s.ranking.Append(ctx, scope, name)

	if s.policy == PolicyAlways || presetUsed {
		s.SetWinner(ctx, "", SetWinnerOptions{Persist: true, SkipReconcile: true})
	}
}

// BoardState is the full read model a client needs to render the page.
type BoardState struct {
	Frame           string              `json:"frame"`
	Width           int                 `json:"width"`
	Busy            bool                `json:"busy"`
	Winner          string              `json:"winner,omitempty"`
	Names           []string            `json:"names"`
	Pool            []string            `json:"pool"`
	Rows            []models.RankingRow `json:"rows"`
	Classes         []models.Class      `json:"classes"`
	SelectedClassID string              `json:"selected_class_id,omitempty"`
	ShuffleSeconds  int                 `json:"shuffle_seconds"`
	Stats           UsageNotice         `json:"stats"`
}

// Board assembles the read model for the current session.
func (s *PickerService) Board(ctx context.Context) (*BoardState, error) {
	notice, err := s.stats.Notice(ctx)
	if err != nil {
		s.log.Warn("Failed to load usage stats", "error", err)
		notice = UsageNotice{}
	}
	frame := s.drawer.Frame()
	width := s.session.DisplayWidth()
	if frame == "" {
		frame = pool.Center(ReadyFrame, width)
	}
	return &BoardState{
		Frame:           frame,
		Width:           width,
		Busy:            s.drawer.Busy(),
		Winner:          s.session.FixedWinner(),
		Names:           s.session.Names(),
		Pool:            s.session.ActivePool(),
		Rows:            ranking.Label(s.session.Entries(s.session.ActiveScope())),
		Classes:         s.session.Classes(),
		SelectedClassID: s.session.SelectedClassID(),
		ShuffleSeconds:  s.session.ShuffleSeconds(),
		Stats:           notice,
	}, nil
}

// RenderIdle redraws the idle frame at the current width. A running
// draw owns the board and is never repainted over.
func (s *PickerService) RenderIdle() {
	if s.drawer.Busy() {
		return
	}
	if len(s.session.ActivePool()) == 0 {
		s.drawer.ShowFrame(engine.NoNamesFrame, s.session.DisplayWidth())
		return
	}
	s.drawer.ShowFrame(ReadyFrame, s.session.DisplayWidth())
}

func (s *PickerService) broadcastWinner() {
	if s.broadcaster == nil {
		return
	}
	winner := s.session.FixedWinner()
	s.broadcaster.BroadcastMessage("winner_status", map[string]interface{}{
		"winner":     winner,
		"has_winner": winner != "",
		"scope":      s.session.ActiveScope().Key(),
	})
}

func (s *PickerService) broadcastClasses() {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastMessage("classes", map[string]interface{}{
		"classes":           s.session.Classes(),
		"selected_class_id": s.session.SelectedClassID(),
	})
}
