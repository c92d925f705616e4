package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/mvpboard/internal/engine"
	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/internal/pool"
	"github.com/abrezinsky/mvpboard/internal/repository/mock"
	"github.com/abrezinsky/mvpboard/internal/session"
	"github.com/abrezinsky/mvpboard/internal/testutil"
)

// fakeDrawer is a Drawer that records requests instead of animating.
type fakeDrawer struct {
	mu       sync.Mutex
	busy     bool
	frame    string
	started  []engine.Request
	startErr error
}

func (d *fakeDrawer) Start(ctx context.Context, req engine.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.startErr != nil {
		return d.startErr
	}
	d.started = append(d.started, req)
	return nil
}

func (d *fakeDrawer) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

func (d *fakeDrawer) Frame() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

func (d *fakeDrawer) ShowFrame(text string, width int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = pool.Center(strings.ToUpper(text), width)
}

func (d *fakeDrawer) lastRequest(t *testing.T) engine.Request {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.started) == 0 {
		t.Fatal("expected a draw to have been started")
	}
	return d.started[len(d.started)-1]
}

// fakeBroadcaster records broadcast messages by type.
type fakeBroadcaster struct {
	mu   sync.Mutex
	msgs []broadcastMsg
}

type broadcastMsg struct {
	msgType string
	payload interface{}
}

func (b *fakeBroadcaster) BroadcastMessage(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, broadcastMsg{msgType, payload})
}

func (b *fakeBroadcaster) countOf(msgType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.msgs {
		if m.msgType == msgType {
			n++
		}
	}
	return n
}

func (b *fakeBroadcaster) lastOf(msgType string) (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.msgs) - 1; i >= 0; i-- {
		if b.msgs[i].msgType == msgType {
			return b.msgs[i].payload, true
		}
	}
	return nil, false
}

// testEnv wires the full service graph over an in-memory store.
type testEnv struct {
	repo    *mock.Repository
	sess    *session.State
	clock   *clockwork.FakeClock
	drawer  *fakeDrawer
	hub     *fakeBroadcaster
	picker  *PickerService
	classes *ClassService
	ranking *RankingService
	stats   *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.New()
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	sess := session.New()
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1700000000000))
	drawer := &fakeDrawer{}
	hub := &fakeBroadcaster{}

	statsSvc := NewStatsService(log, repo)
	rankingSvc := NewRankingService(log, clock, repo, sess, statsSvc)
	pickerSvc := NewPickerService(log, clock, repo, sess, drawer, rankingSvc, statsSvc, PolicyAlways)
	classSvc := NewClassService(log, clock, repo, sess, pickerSvc, rankingSvc, statsSvc)

	statsSvc.SetBroadcaster(hub)
	rankingSvc.SetBroadcaster(hub)
	pickerSvc.SetBroadcaster(hub)
	classSvc.SetBroadcaster(hub)

	return &testEnv{
		repo:    repo,
		sess:    sess,
		clock:   clock,
		drawer:  drawer,
		hub:     hub,
		picker:  pickerSvc,
		classes: classSvc,
		ranking: rankingSvc,
		stats:   statsSvc,
	}
}

// signIn signs a test user in and returns their uid.
func (e *testEnv) signIn(t *testing.T) string {
	t.Helper()
	user, err := e.picker.SignIn(context.Background(), "Ms. Rivera", "")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return user.UID
}

// addClass creates a class through the service and returns it.
func (e *testEnv) addClass(t *testing.T, name string, students ...string) string {
	t.Helper()
	class, err := e.classes.Add(context.Background(), name, students, false)
	if err != nil {
		t.Fatalf("Add class %q failed: %v", name, err)
	}
	return class.ID
}
