// Package dispatch owns the single goroutine that consumes the
// repository change feed and folds remote writes back into the live
// session. All remote updates flow through here, so ordering is the
// feed's ordering and merges are last-write-wins. State changes never
// interrupt a running draw; the engine plays on and the next idle
// frame reflects the new state.
package dispatch

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/internal/models"
	"github.com/abrezinsky/mvpboard/internal/ranking"
	"github.com/abrezinsky/mvpboard/internal/repository"
	"github.com/abrezinsky/mvpboard/internal/services"
	"github.com/abrezinsky/mvpboard/internal/session"
)

// Feed is the subscription half of the repository.
type Feed interface {
	Subscribe(buffer int) (<-chan repository.ChangeEvent, func())
	GetUserState(ctx context.Context, uid string) (*repository.UserStateRecord, error)
}

// Dispatcher routes change events to the services that apply them.
type Dispatcher struct {
	log     logger.Logger
	clock   clockwork.Clock
	feed    Feed
	session *session.State
	picker  *services.PickerService
	classes *services.ClassService
	ranking *services.RankingService
	stats   *services.StatsService
}

// New creates a Dispatcher.
func New(log logger.Logger, clock clockwork.Clock, feed Feed, sess *session.State, picker *services.PickerService, classes *services.ClassService, rankingSvc *services.RankingService, statsSvc *services.StatsService) *Dispatcher {
	return &Dispatcher{
		log:     log,
		clock:   clock,
		feed:    feed,
		session: sess,
		picker:  picker,
		classes: classes,
		ranking: rankingSvc,
		stats:   statsSvc,
	}
}

// Run subscribes to the change feed and applies events until ctx ends.
func (d *Dispatcher) Run(ctx context.Context) {
	events, cancel := d.feed.Subscribe(64)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			d.apply(ctx, event)
		}
	}
}

func (d *Dispatcher) apply(ctx context.Context, event repository.ChangeEvent) {
	switch event.Kind {
	case repository.ChangeUserState:
		if event.UID == d.session.UID() {
			d.applyUserState(ctx, event.UID)
		}
	case repository.ChangeClass:
		if event.UID == d.session.UID() {
			if err := d.classes.Refresh(ctx); err != nil {
				d.log.Warn("Failed to refresh classes from change feed", "error", err)
			}
		}
	case repository.ChangeStats:
		// Counters carry no session state; just re-broadcast the notice.
		d.stats.Broadcast(ctx)
	}
}

// applyUserState merges a remote user-state write into the session:
// names, the global preset winner, and every ranking scope. Writes are
// never issued from here apart from the reconciliation clear, which
// converges after a single pass.
func (d *Dispatcher) applyUserState(ctx context.Context, uid string) {
	rec, err := d.feed.GetUserState(ctx, uid)
	if err != nil {
		if err != repository.ErrNotFound {
			d.log.Warn("Failed to re-read user state from change feed", "error", err)
		}
		return
	}

	if len(rec.Names) > 0 && !equalNames(rec.Names, d.session.Names()) {
		d.session.SetNames(rec.Names)
		d.picker.Reconcile(ctx)
		d.picker.RenderIdle()
	}

	if d.session.ActiveScope().IsGlobal() && rec.FixedWinner != d.session.FixedWinner() {
		d.picker.SetWinner(ctx, rec.FixedWinner, services.SetWinnerOptions{})
	} else {
		d.session.SetDefaultWinner(rec.FixedWinner)
	}

	store := ranking.NormalizeStore(rec.RankingRaw, d.clock.Now())
	for key, entries := range store {
		d.ranking.ApplyRemote(models.ParseScopeKey(key), entries)
	}
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
