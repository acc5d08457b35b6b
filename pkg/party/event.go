// Package party implements the per-table state machine: the event log,
// the blocked-waiter broadcast, and the Bidding/Playing game union.
package party

import (
	"encoding/json"
	"fmt"

	"coincherelay/pkg/coinche"
)

// PlayerEventKind discriminates the FromPlayer sub-events.
type PlayerEventKind string

const (
	PlayerBidded     PlayerEventKind = "Bidded"
	PlayerPassed     PlayerEventKind = "Passed"
	PlayerCoinched   PlayerEventKind = "Coinched"
	PlayerCardPlayed PlayerEventKind = "CardPlayed"
)

// PlayerEvent is the payload of a FromPlayer event: one action taken by
// one seat during an auction or a deal.
type PlayerEvent struct {
	Kind  PlayerEventKind
	Suit  coinche.Suit
	Target coinche.Target
	Card  coinche.Card
}

type playerEventWire struct {
	Type   PlayerEventKind `json:"type"`
	Suit   *coinche.Suit   `json:"suit,omitempty"`
	Target *coinche.Target `json:"target,omitempty"`
	Card   *coinche.Card   `json:"card,omitempty"`
}

// MarshalJSON renders the tagged-union wire shape from spec.md §6/§3:
// {"type": "<Kind>", ...fields}.
func (e PlayerEvent) MarshalJSON() ([]byte, error) {
	wire := playerEventWire{Type: e.Kind}
	switch e.Kind {
	case PlayerBidded:
		wire.Suit = &e.Suit
		wire.Target = &e.Target
	case PlayerCardPlayed:
		wire.Card = &e.Card
	}
	return json.Marshal(wire)
}

func (e *PlayerEvent) UnmarshalJSON(data []byte) error {
	var wire playerEventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	e.Kind = wire.Type
	if wire.Suit != nil {
		e.Suit = *wire.Suit
	}
	if wire.Target != nil {
		e.Target = *wire.Target
	}
	if wire.Card != nil {
		e.Card = *wire.Card
	}
	return nil
}

// Kind discriminates an EventType.
type Kind string

const (
	KindNewGame         Kind = "NewGameGlobal" // internal only, never relativized onto the wire
	KindNewGameRelative Kind = "NewGame"
	KindFromPlayer      Kind = "FromPlayer"
	KindBidOver         Kind = "BidOver"
	KindBidCancelled    Kind = "BidCancelled"
	KindTrickOver       Kind = "TrickOver"
	KindGameOver        Kind = "GameOver"
	KindPartyCancelled  Kind = "PartyCancelled"
	KindYourTurn        Kind = "YourTurn"
)

// EventType is the sum type described in spec.md §3. Exactly the fields
// relevant to Kind are populated; the rest are zero.
type EventType struct {
	Kind Kind

	// NewGame / NewGameRelative
	First coinche.PlayerPos
	Hands [4]coinche.Hand // only set for the internal NewGame
	Hand  coinche.Hand    // only set for NewGameRelative

	// FromPlayer
	Pos    coinche.PlayerPos
	Player PlayerEvent

	// BidOver
	Contract coinche.Contract

	// TrickOver
	Winner coinche.PlayerPos

	// GameOver
	Points [2]int
	GameWinner coinche.Team
	Scores [2]int

	// PartyCancelled
	Msg string
}

// relativize projects an EventType to the view of the given seat. Only
// the internal NewGame event differs across viewers; every other event
// passes through unchanged, per spec.md §4.4.
func (e EventType) relativize(pos coinche.PlayerPos) EventType {
	if e.Kind != KindNewGame {
		return e
	}
	return EventType{
		Kind:  KindNewGameRelative,
		First: e.First,
		Hand:  e.Hands[pos],
	}
}

// Event pairs an EventType with its position in the party's event log.
type Event struct {
	EventType
	ID int
}

type eventWire struct {
	Type     Kind                `json:"type"`
	First    *coinche.PlayerPos  `json:"first,omitempty"`
	Hands    *[4]coinche.Hand    `json:"hands,omitempty"`
	Hand     *coinche.Hand       `json:"cards,omitempty"`
	Pos      *coinche.PlayerPos  `json:"pos,omitempty"`
	Event    *PlayerEvent        `json:"event,omitempty"`
	Contract *coinche.Contract   `json:"contract,omitempty"`
	Winner   *coinche.PlayerPos  `json:"winner,omitempty"`
	Points   *[2]int             `json:"points,omitempty"`
	GameWinner *coinche.Team     `json:"gameWinner,omitempty"`
	Scores   *[2]int             `json:"scores,omitempty"`
	Msg      *string             `json:"msg,omitempty"`
}

// MarshalJSON renders the tagged-union shape spec.md §6 requires of every
// event crossing the wire. Callers must relativize an event before
// marshaling it; a bare internal NewGame refuses to marshal since it is
// documented as never sent over the network.
func (e EventType) MarshalJSON() ([]byte, error) {
	wire := eventWire{Type: e.Kind}
	switch e.Kind {
	case KindNewGame:
		return nil, fmt.Errorf("party: internal NewGame event must be relativized before marshaling")
	case KindNewGameRelative:
		wire.First = &e.First
		wire.Hand = &e.Hand
	case KindFromPlayer:
		wire.Pos = &e.Pos
		wire.Event = &e.Player
	case KindBidOver:
		wire.Contract = &e.Contract
	case KindTrickOver:
		wire.Winner = &e.Winner
	case KindGameOver:
		wire.Points = &e.Points
		wire.GameWinner = &e.GameWinner
		wire.Scores = &e.Scores
	case KindPartyCancelled:
		wire.Msg = &e.Msg
	case KindBidCancelled, KindYourTurn:
		// tag only
	}
	return json.Marshal(wire)
}

func (e *EventType) UnmarshalJSON(data []byte) error {
	var wire eventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = EventType{Kind: wire.Type}
	if wire.First != nil {
		e.First = *wire.First
	}
	if wire.Hand != nil {
		e.Hand = *wire.Hand
	}
	if wire.Pos != nil {
		e.Pos = *wire.Pos
	}
	if wire.Event != nil {
		e.Player = *wire.Event
	}
	if wire.Contract != nil {
		e.Contract = *wire.Contract
	}
	if wire.Winner != nil {
		e.Winner = *wire.Winner
	}
	if wire.Points != nil {
		e.Points = *wire.Points
	}
	if wire.GameWinner != nil {
		e.GameWinner = *wire.GameWinner
	}
	if wire.Scores != nil {
		e.Scores = *wire.Scores
	}
	if wire.Msg != nil {
		e.Msg = *wire.Msg
	}
	return nil
}
