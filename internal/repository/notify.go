package repository

import "sync"

// ChangeKind classifies a store change.
type ChangeKind int

const (
	ChangeUserState ChangeKind = iota
	ChangeClass
	ChangeStats
)

// ChangeEvent is pushed to subscribers after a successful write. It is
// the local stand-in for a remote document store's live subscription:
// consumers get a notification and re-read whatever they care about.
type ChangeEvent struct {
	Kind    ChangeKind
	UID     string
	ClassID string
}

type notifier struct {
	mu   sync.Mutex
	subs map[int]chan ChangeEvent
	next int
}

// Subscribe registers a change feed. The returned function cancels the
// subscription and closes the channel. Events are dropped, never
// blocked on, when a subscriber falls behind.
func (r *Repository) Subscribe(buffer int) (<-chan ChangeEvent, func()) {
	r.notifier.mu.Lock()
	defer r.notifier.mu.Unlock()
	if r.notifier.subs == nil {
		r.notifier.subs = make(map[int]chan ChangeEvent)
	}
	id := r.notifier.next
	r.notifier.next++
	ch := make(chan ChangeEvent, buffer)
	r.notifier.subs[id] = ch

	return ch, func() {
		r.notifier.mu.Lock()
		defer r.notifier.mu.Unlock()
		if sub, ok := r.notifier.subs[id]; ok {
			delete(r.notifier.subs, id)
			close(sub)
		}
	}
}

func (r *Repository) publish(event ChangeEvent) {
	r.notifier.mu.Lock()
	defer r.notifier.mu.Unlock()
	for _, ch := range r.notifier.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
