package coinche

import "errors"

// ErrNoLastTrick is returned by LastTrick before any trick has completed.
var ErrNoLastTrick = errors.New("coinche: no trick has completed yet")

const totalCardPoints = 162
const capotBonus = 90
const chuteValue = 160
const dixDeDer = 10

// GameState is the trick-play phase of one deal: hands shrink as cards are
// played, tricks accumulate, and the last entry in tricks is always the
// one currently in progress.
type GameState struct {
	hands       [4]Hand
	current     PlayerPos
	contract    Contract
	tricks      []Trick
	trickPoints [2]int
}

// Hands returns the four hands in their current (shrinking) state.
func (g *GameState) Hands() [4]Hand { return g.hands }

// NextPlayer returns the seat expected to play next.
func (g *GameState) NextPlayer() PlayerPos { return g.current }

// Contract returns the contract this deal is being played under.
func (g *GameState) Contract() Contract { return g.contract }

// CurrentTrick returns the trick in progress.
func (g *GameState) CurrentTrick() Trick { return g.tricks[len(g.tricks)-1] }

// LastTrick returns the most recently completed trick.
func (g *GameState) LastTrick() (Trick, error) {
	for i := len(g.tricks) - 1; i >= 0; i-- {
		if g.tricks[i].Complete() {
			return g.tricks[i], nil
		}
	}
	return Trick{}, ErrNoLastTrick
}

// GameOverResult is the outcome of a completed deal.
type GameOverResult struct {
	Points [2]int
	Winner Team
	Scores [2]int
}

// TrickResult is the outcome of a single PlayCard call.
type TrickResult struct {
	TrickOver bool
	Winner    PlayerPos
	GameOver  *GameOverResult
}

// PlayCard attempts to play card on behalf of pos, per spec.md §4.1's
// card-play legality list.
func (g *GameState) PlayCard(pos PlayerPos, card Card) (TrickResult, error) {
	if pos != g.current {
		return TrickResult{}, ErrTurnOrder
	}
	hand := g.hands[pos]
	if !hand.Contains(card) {
		return TrickResult{}, ErrCardMissing
	}

	trick := g.CurrentTrick()
	trump := g.contract.Trump

	if pos != trick.First {
		if err := g.checkFollowSuit(pos, hand, trick, card, trump); err != nil {
			return TrickResult{}, err
		}
	}
	if card.Suit == trump {
		if err := checkOverTrump(hand, trick, trump, card); err != nil {
			return TrickResult{}, err
		}
	}

	g.hands[pos] = hand.Remove(card)
	trick.play(pos, card, trump)
	g.tricks[len(g.tricks)-1] = trick

	if !trick.Complete() {
		g.current = pos.Next()
		return TrickResult{}, nil
	}

	winner := trick.Winner
	g.trickPoints[winner.Team()] += trick.Score(trump)
	g.current = winner

	result := TrickResult{TrickOver: true, Winner: winner}

	if g.allHandsEmpty() {
		// dix-de-der: the last trick's winner collects an extra 10 points,
		// bringing the raw 152-point deck up to the standard 162.
		g.trickPoints[winner.Team()] += dixDeDer
		result.GameOver = g.computeGameOver()
	} else {
		g.tricks = append(g.tricks, newTrick(winner))
	}

	return result, nil
}

func (g *GameState) allHandsEmpty() bool {
	for _, h := range g.hands {
		if h != 0 {
			return false
		}
	}
	return true
}

// checkFollowSuit enforces suit-following, the forced-trump ("piss") rule,
// in that order, per spec.md §4.1.
func (g *GameState) checkFollowSuit(pos PlayerPos, hand Hand, trick Trick, card Card, trump Suit) error {
	lead, ok := trick.LeadSuit()
	if !ok {
		return nil
	}

	if hand.HasAnyOfSuit(lead) {
		if card.Suit != lead {
			return ErrIncorrectSuit
		}
		return nil
	}

	if lead == trump {
		// No trump held: nothing left to constrain.
		return nil
	}

	if trick.Winner.Team() == pos.Team() {
		// Partner is currently winning the trick: any card is fine.
		return nil
	}

	if hand.HasAnyOfSuit(trump) && card.Suit != trump {
		return ErrInvalidPiss
	}
	return nil
}

// checkOverTrump enforces the over-trump rule: a player choosing to play
// trump must beat the best trump currently in the trick whenever their hand
// holds a trump that can.
func checkOverTrump(hand Hand, trick Trick, trump Suit, card Card) error {
	best, any := highestTrumpInTrick(trick, trump)
	if !any {
		return nil
	}
	if card.Strength(trump) > best.Strength(trump) {
		return nil
	}
	if higher, ok := hand.HighestTrump(trump); ok && higher.Strength(trump) > best.Strength(trump) {
		return ErrNonRaisedTrump
	}
	return nil
}

func highestTrumpInTrick(trick Trick, trump Suit) (Card, bool) {
	best := Card{}
	found := false
	for _, pos := range []PlayerPos{P0, P1, P2, P3} {
		c, ok := trick.CardAt(pos)
		if !ok || c.Suit != trump {
			continue
		}
		if !found || c.Strength(trump) > best.Strength(trump) {
			best = c
			found = true
		}
	}
	return best, found
}

// computeGameOver scores the finished deal. See DESIGN.md "Scoring formula"
// for the reasoning behind the capot-bonus and chute (failed contract)
// conventions used here.
func (g *GameState) computeGameOver() *GameOverResult {
	contractTeam := g.contract.Author.Team()
	defenseTeam := other(contractTeam)
	multiplier := g.contract.CoincheLevel.Multiplier()

	points := g.trickPoints
	swept := Team(-1)
	if points[Team0] == totalCardPoints {
		swept = Team0
	} else if points[Team1] == totalCardPoints {
		swept = Team1
	}
	if swept >= 0 {
		points[swept] += capotBonus
	}

	made := g.trickPoints[contractTeam] >= g.contract.Target.RequiredPoints()

	var scores [2]int
	if made {
		value := g.contract.Target.Value()
		if swept == contractTeam && g.contract.Target != TargetCapot {
			value += capotBonus
		}
		scores[contractTeam] = value * multiplier
	} else {
		value := chuteValue
		if swept == defenseTeam {
			value = TargetCapot.Value()
		}
		scores[defenseTeam] = value * multiplier
	}

	winner := contractTeam
	if !made {
		winner = defenseTeam
	}

	return &GameOverResult{Points: points, Winner: winner, Scores: scores}
}

func other(t Team) Team {
	if t == Team0 {
		return Team1
	}
	return Team0
}
