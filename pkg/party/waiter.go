package party

import (
	"context"

	"coincherelay/pkg/coinche"
)

// Waiter is a one-shot completion handle resolved with an Event, modeled
// on the teacher's NotificationStream{done chan struct{}} pattern but
// carrying a single value instead of signaling only completion. complete
// is idempotent: completing an already-resolved (or timed-out) Waiter is
// a no-op, matching spec.md §5's "duplicate completion must be a no-op".
type Waiter struct {
	pos    coinche.PlayerPos
	result chan Event
}

// newWaiter allocates a Waiter with room for exactly one value, so a
// completer never blocks even if nobody is left listening. pos records
// which seat is waiting, so a later broadcast can relativize the event
// before handing it off.
func newWaiter(pos coinche.PlayerPos) *Waiter {
	return &Waiter{pos: pos, result: make(chan Event, 1)}
}

// complete resolves the waiter. Only the first call delivers a value; a
// later call finds the one-slot buffer full and drops its event.
func (w *Waiter) complete(ev Event) {
	select {
	case w.result <- ev:
	default:
	}
}

// wait blocks until the waiter is completed or ctx is done. A context
// deadline or cancellation is how the bounded wait timeout (spec.md §4.4,
// recommended 15s) is implemented by the caller.
func (w *Waiter) wait(ctx context.Context) (Event, bool) {
	select {
	case ev := <-w.result:
		return ev, true
	case <-ctx.Done():
		return Event{}, false
	}
}
