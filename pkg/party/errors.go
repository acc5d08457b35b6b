package party

import "errors"

// Phase-mismatch errors: an action was attempted against the wrong half
// of the game union. Never indicate a bug; they are a normal rejection.
var (
	ErrBidInGame     = errors.New("party: auction is already over")
	ErrPlayInAuction = errors.New("party: auction is still open")
)

// ErrBadEventID is returned by Wait when event_id is further ahead than
// the log has ever been, per spec.md §4.4 rule 3.
var ErrBadEventID = errors.New("party: event id is ahead of the log")
