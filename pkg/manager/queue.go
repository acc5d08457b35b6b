package manager

import (
	"sync"

	"coincherelay/pkg/coinche"
)

// NewPartyInfo is handed back to a player once a table of four has been
// assembled, naming their seat and the id they'll use for every further
// request.
type NewPartyInfo struct {
	PlayerID  uint32
	PlayerPos coinche.PlayerPos
}

// joinWaiter is a one-shot handle for a queued join, completed exactly
// once by the matchmaker that seats it.
type joinWaiter struct {
	result chan NewPartyInfo
}

func newJoinWaiter() *joinWaiter {
	return &joinWaiter{result: make(chan NewPartyInfo, 1)}
}

func (w *joinWaiter) complete(info NewPartyInfo) {
	w.result <- info
}

// joinQueue holds players waiting for a fourth. Grounded on
// GameManager.waiting_list in server/game_manager.rs; the "pop 3 and
// create" step is the only place more than one waiter is touched, and it
// happens entirely under this queue's own mutex, never under a Party lock.
type joinQueue struct {
	mu      sync.Mutex
	waiting []*joinWaiter
}

func newJoinQueue() *joinQueue {
	return &joinQueue{}
}

// popThreeOrEnqueue either atomically removes three already-queued waiters
// (the caller becomes the fourth seat) or enqueues a new waiter for the
// caller to block on. The bool is true when three waiters were popped (the
// array holds them, the waiter is nil) and false when a waiter was enqueued.
func (q *joinQueue) popThreeOrEnqueue() ([3]*joinWaiter, *joinWaiter, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) >= 3 {
		n := len(q.waiting)
		var others [3]*joinWaiter
		others[0] = q.waiting[n-1]
		others[1] = q.waiting[n-2]
		others[2] = q.waiting[n-3]
		q.waiting = q.waiting[:n-3]
		return others, nil, true
	}

	w := newJoinWaiter()
	q.waiting = append(q.waiting, w)
	return [3]*joinWaiter{}, w, false
}

// cancel removes w from the queue if it is still waiting (timeout path).
// A no-op if w has already been popped by a concurrent join.
func (q *joinQueue) cancel(w *joinWaiter) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, other := range q.waiting {
		if other == w {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}
