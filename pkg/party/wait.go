package party

import (
	"context"

	"coincherelay/pkg/coinche"
)

// Wait implements the long-poll protocol of spec.md §4.4. It is ported
// from the original GameManager::get_wait_result/wait, but the
// check-and-register step here holds the party's read lock for its
// entire duration (rather than releasing it before registering the
// waiter, as the original briefly appears to): that's what makes the
// ordering guarantee in spec.md §5 hold — no append can slip in between
// the fast-path miss and the waiter's registration, since append requires
// the write lock and a held RLock blocks any writer.
func (p *Party) Wait(ctx context.Context, pos coinche.PlayerPos, eventID int) (Event, error) {
	p.mu.RLock()

	n := len(p.events)
	switch {
	case eventID > n:
		p.mu.RUnlock()
		return Event{}, ErrBadEventID
	case eventID < n:
		ev := p.events[eventID].relativize(pos)
		p.mu.RUnlock()
		return Event{EventType: ev, ID: eventID}, nil
	}

	// eventID == n: nothing appended yet at this id.
	if pos == p.nextPlayerLocked() {
		p.mu.RUnlock()
		return Event{EventType: EventType{Kind: KindYourTurn}, ID: eventID - 1}, nil
	}

	w := newWaiter(pos)
	p.observersMu.Lock()
	p.observers = append(p.observers, w)
	p.observersMu.Unlock()
	p.mu.RUnlock()

	ev, ok := w.wait(ctx)
	if !ok {
		return Event{}, ctx.Err()
	}
	return ev, nil
}
