// Package engine runs the split-flap draw: a timed shuffle through the
// pool followed by a per-character reveal cascade that locks in the
// winner. The whole animation is a precomputed discrete-event timeline
// played on an injectable clock, so tests drive it with a fake clock
// instead of wall-time waits.
package engine

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/mvpboard/internal/audio"
	"github.com/abrezinsky/mvpboard/internal/errors"
	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/internal/pool"
)

// State is the engine phase.
type State int

const (
	StateIdle State = iota
	StateShuffling
	StateRevealing
)

// Timing contract of the animation. The shuffle duration itself is
// configurable per draw; everything else is fixed.
const (
	TickInterval     = 75 * time.Millisecond
	TickToneInterval = 95 * time.Millisecond
	FlipsPerChar     = 7
	FlipStepDelay    = 18 * time.Millisecond
	CascadeDelay     = 55 * time.Millisecond
	LockExtraDelay   = 12 * time.Millisecond
	SettleDelay      = 50 * time.Millisecond
)

// Flap character set shown during random flips.
const flapChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "

// NoNamesFrame is the terminal display for an empty pool.
const NoNamesFrame = "NO NAMES"

// Broadcaster pushes board updates to connected clients.
type Broadcaster interface {
	BroadcastMessage(msgType string, payload interface{})
}

// Recorder is told the outcome of a finished draw. presetUsed reports
// whether the revealed name was the preset winner rather than a random
// fallback pick.
type Recorder interface {
	DrawCompleted(name string, presetUsed bool)
}

// Request describes one draw.
type Request struct {
	Pool     []string
	Width    int
	Winner   string // preset winner, may be empty
	Duration time.Duration
}

// Engine is the shuffle/reveal state machine. A single draw runs at a
// time; the busy state is the only mutual exclusion and a second start
// while busy is refused.
type Engine struct {
	log   logger.Logger
	clock clockwork.Clock
	rng   *rand.Rand
	hub   Broadcaster
	audio audio.Player

	mu        sync.Mutex
	state     State
	lastFrame string
	recorder  Recorder
}

// New creates an engine. The recorder is attached later via SetRecorder
// because the picker service and the engine reference each other.
func New(log logger.Logger, clock clockwork.Clock, rng *rand.Rand, hub Broadcaster, player audio.Player) *Engine {
	return &Engine{
		log:   log,
		clock: clock,
		rng:   rng,
		hub:   hub,
		audio: player,
	}
}

// SetRecorder wires the completion sink.
func (e *Engine) SetRecorder(r Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = r
}

// Busy reports whether a draw is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != StateIdle
}

// Frame returns the last rendered board text.
func (e *Engine) Frame() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastFrame
}

// ShowFrame renders a static frame outside of a draw (READY, NO NAMES).
func (e *Engine) ShowFrame(text string, width int) {
	e.setFrame(pool.Center(strings.ToUpper(text), width))
}

// Start begins a draw. It refuses when busy or when the pool is empty;
// an empty pool also renders the terminal NO NAMES frame. The animation
// runs on its own goroutine until completion; there is no mid-draw
// cancellation short of ctx being done.
func (e *Engine) Start(ctx context.Context, req Request) error {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return errors.Conflict("a draw is already running")
	}
	if len(req.Pool) == 0 {
		e.mu.Unlock()
		e.ShowFrame(NoNamesFrame, req.Width)
		return errors.Validation("no names in the pool")
	}
	e.state = StateShuffling
	e.mu.Unlock()

	e.broadcastBusy(true)
	e.audio.StartAmbientNoise()

	go e.run(ctx, req)
	return nil
}

// run plays the full timeline: shuffle ticks, the reveal cascade, and
// the completion sequence.
func (e *Engine) run(ctx context.Context, req Request) {
	defer func() {
		e.setState(StateIdle)
		e.broadcastBusy(false)
	}()

	last, ok := e.playTimeline(ctx, e.shuffleTimeline(req))
	e.audio.StopAmbientNoise()
	if !ok {
		return
	}

	winner, presetUsed := e.resolveWinner(req)
	e.setState(StateRevealing)

	if _, ok := e.playTimeline(ctx, e.revealTimeline(winner, req.Width, last)); !ok {
		return
	}

	e.audio.PlayTones(audio.Congrats())
	e.mu.Lock()
	recorder := e.recorder
	e.mu.Unlock()
	if recorder != nil {
		recorder.DrawCompleted(winner, presetUsed)
	}

	e.wait(ctx, SettleDelay)
	e.log.Info("Draw complete", "winner", winner, "preset_used", presetUsed)
}

// resolveWinner picks the reveal target: the preset winner when it is
// still in the pool (case-insensitive), otherwise a uniform random pick.
func (e *Engine) resolveWinner(req Request) (string, bool) {
	if req.Winner != "" {
		if match := pool.Find(req.Pool, req.Winner); match != "" {
			return match, true
		}
	}
	return req.Pool[e.rng.Intn(len(req.Pool))], false
}

// event is one step of the animation timeline. A flip event mutates a
// single board position; a frame event replaces the whole board.
type event struct {
	at   time.Duration
	text string // full frame to render
	flip bool   // single-position mutation
	pos  int
	char rune
	tick bool // percussive shuffle tick
}

// shuffleTimeline produces random pool-member frames every tick plus
// percussive tick tones, covering the configured shuffle duration.
func (e *Engine) shuffleTimeline(req Request) []event {
	var events []event
	for at := time.Duration(0); at < req.Duration; at += TickInterval {
		name := req.Pool[e.rng.Intn(len(req.Pool))]
		events = append(events, event{at: at, text: pool.Center(strings.ToUpper(name), req.Width)})
	}
	for at := TickToneInterval; at < req.Duration; at += TickToneInterval {
		events = append(events, event{at: at, tick: true})
	}
	sortEvents(events)
	return events
}

// revealTimeline builds the cascade: for each position left to right,
// FlipsPerChar random flips at FlipStepDelay spacing staggered by
// CascadeDelay per position, then the final character locks. Timing is
// deterministic; only the intermediate characters are random. Flips are
// resolved into full frames in time order, so the last event always
// leaves the complete target locked in.
func (e *Engine) revealTimeline(winner string, width int, fromFrame string) []event {
	// Iterate over the centered target, not the requested width: a
	// name longer than the board (or one whose uppercase form gains a
	// rune) must never index past the target.
	target := []rune(pool.Center(strings.ToUpper(winner), width))

	var events []event
	for i := range target {
		startAt := time.Duration(i) * CascadeDelay
		for f := 0; f < FlipsPerChar; f++ {
			events = append(events, event{
				at:   startAt + time.Duration(f)*FlipStepDelay,
				flip: true, pos: i, char: e.randChar(),
			})
		}
		events = append(events, event{
			at:   startAt + FlipsPerChar*FlipStepDelay + LockExtraDelay,
			flip: true, pos: i, char: target[i],
		})
	}
	sortEvents(events)

	board := make([]rune, len(target))
	for i := range board {
		board[i] = ' '
	}
	copy(board, []rune(fromFrame))
	for idx := range events {
		board[events[idx].pos] = events[idx].char
		events[idx].text = string(board)
	}
	return events
}

// playTimeline executes events in order against the clock, broadcasting
// frames and emitting tick tones. Returns the last rendered frame and
// whether the timeline ran to completion.
func (e *Engine) playTimeline(ctx context.Context, events []event) (string, bool) {
	elapsed := time.Duration(0)
	last := e.Frame()
	for _, ev := range events {
		if !e.wait(ctx, ev.at-elapsed) {
			return last, false
		}
		elapsed = ev.at
		if ev.tick {
			e.audio.PlayTones([]audio.Tone{audio.ShuffleTick(e.rng)})
			continue
		}
		last = ev.text
		e.setFrame(ev.text)
	}
	return last, true
}

// wait sleeps d on the engine clock; false means ctx ended first.
func (e *Engine) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-e.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) randChar() rune {
	return rune(flapChars[e.rng.Intn(len(flapChars))])
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) setFrame(text string) {
	e.mu.Lock()
	e.lastFrame = text
	e.mu.Unlock()
	e.hub.BroadcastMessage("board_frame", map[string]interface{}{"text": text})
}

func (e *Engine) broadcastBusy(busy bool) {
	e.hub.BroadcastMessage("busy", map[string]interface{}{"busy": busy})
}

func sortEvents(events []event) {
	// Insertion sort keeps equal-time events in construction order,
	// which matters for interleaved flips and locks.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].at < events[j-1].at; j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}
