package coinche

// Trick is one round of four cards, one per seat, led by First. Winner is
// recomputed after each card is played and is authoritative once the trick
// is Complete.
type Trick struct {
	cards  [4]*Card
	First  PlayerPos
	Winner PlayerPos
}

func newTrick(first PlayerPos) Trick {
	return Trick{First: first, Winner: first}
}

// Complete reports whether all four seats have played into the trick.
func (t Trick) Complete() bool {
	for _, c := range t.cards {
		if c == nil {
			return false
		}
	}
	return true
}

// CardAt returns the card played by pos, if any yet.
func (t Trick) CardAt(pos PlayerPos) (Card, bool) {
	if c := t.cards[pos]; c != nil {
		return *c, true
	}
	return Card{}, false
}

// LeadSuit returns the suit of the trick's first card, if played.
func (t Trick) LeadSuit() (Suit, bool) {
	if c := t.cards[t.First]; c != nil {
		return c.Suit, true
	}
	return 0, false
}

// Score returns the trick's total point value under trump.
func (t Trick) Score(trump Suit) int {
	score := 0
	for _, c := range t.cards {
		if c != nil {
			score += c.Points(trump)
		}
	}
	return score
}

// play records pos's card and recomputes the running winner over the cards
// played so far.
func (t *Trick) play(pos PlayerPos, c Card, trump Suit) {
	t.cards[pos] = &c
	t.recomputeWinner(trump)
}

// recomputeWinner scans every played card and keeps the strongest,
// comparing trumps against trumps and, absent any trump, comparing
// same-lead-suit cards against each other (off-suit discards never win).
func (t *Trick) recomputeWinner(trump Suit) {
	lead, ok := t.LeadSuit()
	if !ok {
		return
	}

	best := t.First
	bestCard := *t.cards[t.First]
	for _, pos := range []PlayerPos{P0, P1, P2, P3} {
		if pos == t.First {
			continue
		}
		c := t.cards[pos]
		if c == nil {
			continue
		}
		if beats(*c, bestCard, lead, trump) {
			best = pos
			bestCard = *c
		}
	}
	t.Winner = best
}

// beats reports whether challenger wins the trick over current, given the
// lead suit and trump.
func beats(challenger, current Card, lead, trump Suit) bool {
	challengerTrump := challenger.Suit == trump
	currentTrump := current.Suit == trump

	switch {
	case challengerTrump && currentTrump:
		return challenger.Strength(trump) > current.Strength(trump)
	case challengerTrump && !currentTrump:
		return true
	case !challengerTrump && currentTrump:
		return false
	default:
		// Neither is trump: only a card following the lead suit can
		// possibly win; off-suit discards never take the trick.
		if challenger.Suit != lead {
			return false
		}
		if current.Suit != lead {
			return true
		}
		return challenger.Strength(trump) > current.Strength(trump)
	}
}
