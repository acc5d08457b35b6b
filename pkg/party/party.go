package party

import (
	"math/rand"
	"sync"

	"github.com/decred/slog"

	"coincherelay/pkg/coinche"
)

// Party serializes every mutation for one table: it owns the authoritative
// game (auction or deal), the append-only event log, and the set of
// blocked waiters. Ported from the teacher's per-aggregate RWMutex
// discipline (pkg/poker.Game) applied to the original Rust Party struct
// (server/game_manager.rs).
type Party struct {
	log slog.Logger

	mu      sync.RWMutex // protects everything below except observers
	first   coinche.PlayerPos
	auction *coinche.Auction // nil once the deal is in the Playing phase
	game    *coinche.GameState
	scores  [2]int
	events  []EventType
	cancelled bool

	// observers has its own lock, nested inside mu, so that Wait's
	// fast path (an RLock held across the check-then-register step, see
	// Wait) never has to fight a writer for the observer list itself.
	observersMu sync.Mutex
	observers   []*Waiter

	rng *rand.Rand
}

// New deals a fresh auction starting at first and opens a party for it.
// The NewGame event (internal, unrelativized) is event id 0.
func New(first coinche.PlayerPos, rng *rand.Rand, log slog.Logger) *Party {
	auction := coinche.NewAuction(first, rng)
	p := &Party{
		log:     log,
		first:   first,
		auction: auction,
		rng:     rng,
	}
	p.events = []EventType{{Kind: KindNewGame, First: first, Hands: auction.Hands()}}
	return p
}

// Bid places a bid on behalf of pos.
func (p *Party) Bid(pos coinche.PlayerPos, trump coinche.Suit, target coinche.Target) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debugf("bid from %s: %s on %s", pos, target, trump)

	if p.auction == nil {
		p.log.Warnf("bid rejected from %s: auction already closed", pos)
		return Event{}, ErrBidInGame
	}
	state, err := p.auction.Bid(pos, trump, target)
	if err != nil {
		p.log.Warnf("bid rejected from %s: %v", pos, err)
		return Event{}, err
	}

	main := p.append(EventType{
		Kind: KindFromPlayer, Pos: pos,
		Player: PlayerEvent{Kind: PlayerBidded, Suit: trump, Target: target},
	})
	if state == coinche.StateOver {
		p.completeAuction()
	}
	return main, nil
}

// Pass records a pass on behalf of pos.
func (p *Party) Pass(pos coinche.PlayerPos) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debugf("pass from %s", pos)

	if p.auction == nil {
		p.log.Warnf("pass rejected from %s: auction already closed", pos)
		return Event{}, ErrBidInGame
	}
	state, err := p.auction.Pass(pos)
	if err != nil {
		p.log.Warnf("pass rejected from %s: %v", pos, err)
		return Event{}, err
	}

	main := p.append(EventType{Kind: KindFromPlayer, Pos: pos, Player: PlayerEvent{Kind: PlayerPassed}})
	switch state {
	case coinche.StateOver:
		p.completeAuction()
	case coinche.StateCancelled:
		p.append(EventType{Kind: KindBidCancelled})
		p.nextGame()
	}
	return main, nil
}

// Coinche doubles (or redoubles) the current contract on behalf of pos.
func (p *Party) Coinche(pos coinche.PlayerPos) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debugf("coinche from %s", pos)

	if p.auction == nil {
		p.log.Warnf("coinche rejected from %s: auction already closed", pos)
		return Event{}, ErrBidInGame
	}
	state, err := p.auction.Coinche(pos)
	if err != nil {
		p.log.Warnf("coinche rejected from %s: %v", pos, err)
		return Event{}, err
	}

	main := p.append(EventType{Kind: KindFromPlayer, Pos: pos, Player: PlayerEvent{Kind: PlayerCoinched}})
	if state == coinche.StateOver {
		p.completeAuction()
	}
	return main, nil
}

// PlayCard plays a card on behalf of pos.
func (p *Party) PlayCard(pos coinche.PlayerPos, card coinche.Card) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debugf("play from %s: %s", pos, card)

	if p.game == nil {
		p.log.Warnf("play rejected from %s: auction still open", pos)
		return Event{}, ErrPlayInAuction
	}
	result, err := p.game.PlayCard(pos, card)
	if err != nil {
		p.log.Warnf("play rejected from %s: %v", pos, err)
		return Event{}, err
	}

	main := p.append(EventType{
		Kind: KindFromPlayer, Pos: pos,
		Player: PlayerEvent{Kind: PlayerCardPlayed, Card: card},
	})
	if result.TrickOver {
		p.log.Debugf("trick over, winner %s", result.Winner)
		p.append(EventType{Kind: KindTrickOver, Winner: result.Winner})
		if over := result.GameOver; over != nil {
			p.scores[0] += over.Scores[0]
			p.scores[1] += over.Scores[1]
			p.log.Infof("game over: points=%v winner=%v scores=%v, running totals %v",
				over.Points, over.Winner, over.Scores, p.scores)
			p.append(EventType{
				Kind: KindGameOver, Points: over.Points,
				GameWinner: over.Winner, Scores: over.Scores,
			})
			p.nextGame()
		}
	}
	return main, nil
}

// Cancel terminates the party with msg. Idempotent: PartyCancelled is a
// terminal event and a second Cancel call is a no-op.
func (p *Party) Cancel(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancelled {
		p.log.Debugf("cancel ignored, already cancelled: %s", msg)
		return
	}
	p.log.Infof("party cancelled: %s", msg)
	p.cancelled = true
	p.append(EventType{Kind: KindPartyCancelled, Msg: msg})
}

// completeAuction installs the finished deal. Panics if the game is
// already in the Playing phase, which would mean the auction signaled
// Over twice — an invariant violation, not a legality rejection.
func (p *Party) completeAuction() {
	if p.game != nil {
		p.log.Errorf("completeAuction called while already playing")
		panic("party: completeAuction called while already playing")
	}
	game := p.auction.Complete()
	p.log.Debugf("bid over: %v", game.Contract())
	p.append(EventType{Kind: KindBidOver, Contract: game.Contract()})
	p.auction = nil
	p.game = game
}

// nextGame rotates the dealer and opens a fresh auction.
func (p *Party) nextGame() {
	p.first = p.first.Next()
	auction := coinche.NewAuction(p.first, p.rng)
	p.log.Debugf("dealing next game, first=%s", p.first)
	p.game = nil
	p.auction = auction
	p.append(EventType{Kind: KindNewGame, First: p.first, Hands: auction.Hands()})
}

// append assigns the next id, stores the event, and drains every
// registered observer, relativizing the event for each one individually.
// Must be called with mu held for writing.
func (p *Party) append(ev EventType) Event {
	id := len(p.events)
	p.events = append(p.events, ev)

	p.observersMu.Lock()
	waiting := p.observers
	p.observers = nil
	p.observersMu.Unlock()

	for _, w := range waiting {
		w.complete(Event{EventType: ev.relativize(w.pos), ID: id})
	}

	return Event{EventType: ev, ID: id}
}

// SnapshotHand returns pos's current hand.
func (p *Party) SnapshotHand(pos coinche.PlayerPos) coinche.Hand {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.auction != nil {
		return p.auction.Hands()[pos]
	}
	return p.game.Hands()[pos]
}

// SnapshotTrick returns the trick currently in progress.
func (p *Party) SnapshotTrick() (coinche.Trick, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.game == nil {
		return coinche.Trick{}, ErrPlayInAuction
	}
	return p.game.CurrentTrick(), nil
}

// SnapshotLastTrick returns the most recently completed trick.
func (p *Party) SnapshotLastTrick() (coinche.Trick, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.game == nil {
		return coinche.Trick{}, ErrPlayInAuction
	}
	return p.game.LastTrick()
}

// SnapshotScores returns the running scores across completed deals.
func (p *Party) SnapshotScores() [2]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scores
}

// NextPlayer returns the seat expected to act next, in either phase.
func (p *Party) NextPlayer() coinche.PlayerPos {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nextPlayerLocked()
}

func (p *Party) nextPlayerLocked() coinche.PlayerPos {
	if p.auction != nil {
		return p.auction.NextPlayer()
	}
	return p.game.NextPlayer()
}
