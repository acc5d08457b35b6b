package coinche

import "math/rand"

// AuctionPhase is the lifecycle state of an Auction.
type AuctionPhase int

const (
	Bidding AuctionPhase = iota
	Over
	Cancelled
)

// AuctionState reports the transition produced by a successful bid, pass
// or coinche call, so the caller (Party) knows whether to keep bidding or
// move to the next phase.
type AuctionState int

const (
	StateContinue AuctionState = iota
	StateOver
	StateCancelled
)

// Auction runs the bidding phase of one deal: four pre-dealt hands and a
// monotonically increasing sequence of contracts.
type Auction struct {
	first     PlayerPos
	hands     [4]Hand
	current   PlayerPos
	history   []Contract
	passCount int
	phase     AuctionPhase
}

// NewAuction starts a fresh auction with hands dealt from rng, seated so
// that first bids first.
func NewAuction(first PlayerPos, rng *rand.Rand) *Auction {
	return &Auction{
		first:   first,
		hands:   DealHands(rng),
		current: first,
		phase:   Bidding,
	}
}

// Hands returns the four hands as dealt. Hands never change during the
// auction; only GameState's hands shrink as cards are played.
func (a *Auction) Hands() [4]Hand { return a.hands }

// NextPlayer returns the seat expected to act next.
func (a *Auction) NextPlayer() PlayerPos { return a.current }

// CurrentContract returns the highest contract bid so far, if any.
func (a *Auction) CurrentContract() (Contract, bool) {
	if len(a.history) == 0 {
		return Contract{}, false
	}
	return a.history[len(a.history)-1], true
}

// Phase reports the auction's lifecycle state.
func (a *Auction) Phase() AuctionPhase { return a.phase }

// Bid attempts to raise the contract to trump/target on behalf of pos.
func (a *Auction) Bid(pos PlayerPos, trump Suit, target Target) (AuctionState, error) {
	if a.phase != Bidding {
		return StateContinue, ErrAuctionClosed
	}
	if pos != a.current {
		return StateContinue, ErrTurnOrder
	}
	if current, ok := a.CurrentContract(); ok && !current.Target.Less(target) {
		return StateContinue, ErrNonRaisedTarget
	}

	a.history = append(a.history, Contract{Trump: trump, Author: pos, Target: target})
	a.passCount = 0

	if target == TargetCapot {
		a.phase = Over
		return StateOver, nil
	}

	a.current = a.current.Next()
	return StateContinue, nil
}

// Pass records a pass on behalf of pos.
func (a *Auction) Pass(pos PlayerPos) (AuctionState, error) {
	if a.phase != Bidding {
		return StateContinue, ErrAuctionClosed
	}
	if pos != a.current {
		return StateContinue, ErrTurnOrder
	}

	a.passCount++
	_, hasContract := a.CurrentContract()

	if !hasContract && a.passCount == 4 {
		a.phase = Cancelled
		return StateCancelled, nil
	}
	if hasContract && a.passCount == 3 {
		a.phase = Over
		return StateOver, nil
	}

	a.current = a.current.Next()
	return StateContinue, nil
}

// Coinche doubles (or redoubles) the current contract on behalf of pos.
func (a *Auction) Coinche(pos PlayerPos) (AuctionState, error) {
	if a.phase != Bidding {
		return StateContinue, ErrAuctionClosed
	}
	if pos != a.current {
		return StateContinue, ErrTurnOrder
	}
	contract, ok := a.CurrentContract()
	if !ok {
		return StateContinue, ErrNoContract
	}

	var level CoincheLevel
	switch contract.CoincheLevel {
	case NotCoinched:
		if !pos.Opponent(contract.Author) {
			return StateContinue, ErrWrongPlayerOrder
		}
		level = Coinched
	case Coinched:
		if pos.Opponent(contract.Author) {
			return StateContinue, ErrAlreadyCoinched
		}
		level = SurCoinched
	default:
		return StateContinue, ErrAlreadyCoinched
	}

	contract.CoincheLevel = level
	a.history[len(a.history)-1] = contract
	a.passCount = 0

	if level == SurCoinched {
		a.phase = Over
		return StateOver, nil
	}

	a.current = a.current.Next()
	return StateContinue, nil
}

// Complete freezes the auction into a GameState once it has transitioned
// to Over. Calling Complete on an auction that is not Over, or that has no
// contract, is a programming error in the caller (Party never does this)
// and panics rather than returning an error.
func (a *Auction) Complete() *GameState {
	if a.phase != Over {
		panic("coinche: Complete called on an auction that is not Over")
	}
	contract, ok := a.CurrentContract()
	if !ok {
		panic("coinche: Complete called on an auction with no contract")
	}

	return &GameState{
		hands:   a.hands,
		current: a.first,
		contract: contract,
		tricks:  []Trick{newTrick(a.first)},
	}
}
