// Package driver captures the architectural seam between a decision-maker
// (human or bot) and the game core, without committing to any transport.
// It has no I/O of its own: a CLI, a bot, or an HTTP gateway supplies a
// Backend (talking to a GameManager) and a Frontend (talking to a human or
// a strategy) and wires them together with Drive.
package driver

import (
	"context"

	"coincherelay/pkg/coinche"
	"coincherelay/pkg/party"
)

// Backend is the set of calls a driven session needs from the game core.
// A thin adapter over *manager.GameManager bound to one player id
// satisfies this without the driver package importing pkg/manager
// directly, keeping the capability split the original's Backend trait
// describes.
type Backend interface {
	Wait(ctx context.Context, eventID int) (party.Event, error)
	Bid(trump coinche.Suit, target coinche.Target) (party.Event, error)
	Pass() (party.Event, error)
	Coinche() (party.Event, error)
	PlayCard(card coinche.Card) (party.Event, error)
	Leave() error
}

// Frontend is the set of calls a driven session needs from whatever is
// making decisions: a human terminal, a scripted bot, a test double.
type Frontend interface {
	// ShowEvent is called once per event, in order, including synthetic
	// YourTurn events, so the frontend can update its own view of the
	// table before being asked for a decision.
	ShowEvent(ev party.Event)

	// AskAuctionAction is called only when it is this seat's turn during
	// the auction. The returned action is forwarded to the Backend
	// verbatim.
	AskAuctionAction(ctx context.Context, hand coinche.Hand) (AuctionAction, error)

	// AskGameAction is called only when it is this seat's turn during
	// play.
	AskGameAction(ctx context.Context, hand coinche.Hand) (GameAction, error)
}

// AuctionActionKind discriminates the shape of an AuctionAction.
type AuctionActionKind int

const (
	AuctionLeave AuctionActionKind = iota
	AuctionPass
	AuctionCoinche
	AuctionBid
)

// AuctionAction is a frontend's decision during the bidding phase.
// Trump/Target are only meaningful when Kind is AuctionBid.
type AuctionAction struct {
	Kind   AuctionActionKind
	Trump  coinche.Suit
	Target coinche.Target
}

// GameActionKind discriminates the shape of a GameAction.
type GameActionKind int

const (
	GameLeave GameActionKind = iota
	GamePlayCard
)

// GameAction is a frontend's decision during the playing phase. Card is
// only meaningful when Kind is GamePlayCard.
type GameAction struct {
	Kind GameActionKind
	Card coinche.Card
}

// Drive runs one player's session to completion: it long-polls Backend for
// events, replays each to Frontend, and whenever the event stream puts the
// ball back in this seat's court (a YourTurn event), asks Frontend for a decision
// and forwards it to Backend. Drive returns when ctx is cancelled, the
// frontend asks to leave, or the backend reports the party has been
// cancelled.
//
// This mirrors the original client loop's shape (wait, dispatch on
// EventType, ask the frontend, send the decision, repeat) without
// depending on any particular transport.
func Drive(ctx context.Context, b Backend, f Frontend) error {
	nextID := 0
	var lastHand coinche.Hand
	inAuction := true

	for {
		ev, err := b.Wait(ctx, nextID)
		if err != nil {
			return err
		}
		f.ShowEvent(ev)

		switch ev.Kind {
		case party.KindNewGameRelative:
			lastHand = ev.Hand
			inAuction = true
		case party.KindBidOver:
			inAuction = false
		case party.KindPartyCancelled:
			return nil
		case party.KindYourTurn:
			if err := act(ctx, b, f, inAuction, lastHand); err != nil {
				return err
			}
		}

		// YourTurn is synthetic and never occupies a real id (see
		// pkg/party); every other event advances the log by one.
		if ev.Kind != party.KindYourTurn {
			nextID = ev.ID + 1
		}
	}
}

func act(ctx context.Context, b Backend, f Frontend, inAuction bool, hand coinche.Hand) error {
	if inAuction {
		action, err := f.AskAuctionAction(ctx, hand)
		if err != nil {
			return err
		}
		switch action.Kind {
		case AuctionLeave:
			return b.Leave()
		case AuctionPass:
			_, err = b.Pass()
		case AuctionCoinche:
			_, err = b.Coinche()
		case AuctionBid:
			_, err = b.Bid(action.Trump, action.Target)
		}
		return err
	}

	action, err := f.AskGameAction(ctx, hand)
	if err != nil {
		return err
	}
	switch action.Kind {
	case GameLeave:
		return b.Leave()
	case GamePlayCard:
		_, err = b.PlayCard(action.Card)
	}
	return err
}
