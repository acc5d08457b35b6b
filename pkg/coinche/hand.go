package coinche

import "math/rand"

// Hand is a set of cards represented as a 32-bit mask, bit i set meaning
// the card with code i is held. This keeps add/remove/contains O(1) and
// partition checks (deal invariant) a simple bitwise comparison.
type Hand uint32

// fullDeck has all 32 bits set, one per (suit, rank) combination.
const fullDeck Hand = 1<<32 - 1

// Add returns the hand with card added.
func (h Hand) Add(c Card) Hand {
	return h | (1 << c.code())
}

// Remove returns the hand with card removed.
func (h Hand) Remove(c Card) Hand {
	return h &^ (1 << c.code())
}

// Contains reports whether the hand holds card.
func (h Hand) Contains(c Card) bool {
	return h&(1<<c.code()) != 0
}

// HasAnyOfSuit reports whether the hand holds any card of the given suit.
func (h Hand) HasAnyOfSuit(s Suit) bool {
	mask := Hand(0xFF) << (uint(s) * 8)
	return h&mask != 0
}

// Count returns the number of cards held.
func (h Hand) Count() int {
	n := 0
	for v := h; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// ListInOrder returns the held cards ordered by suit then rank, matching
// the canonical deck ordering used for deterministic display.
func (h Hand) ListInOrder() []Card {
	out := make([]Card, 0, h.Count())
	for code := uint(0); code < 32; code++ {
		if h&(1<<code) != 0 {
			out = append(out, cardFromCode(code))
		}
	}
	return out
}

// HighestTrump returns the strongest trump in the hand, if any.
func (h Hand) HighestTrump(trump Suit) (Card, bool) {
	best := Card{}
	found := false
	for _, c := range h.ListInOrder() {
		if c.Suit != trump {
			continue
		}
		if !found || c.Strength(trump) > best.Strength(trump) {
			best = c
			found = true
		}
	}
	return best, found
}

// DealHands randomly partitions the full 32-card deck into four disjoint
// 8-card hands.
func DealHands(rng *rand.Rand) [4]Hand {
	deck := make([]Card, 0, 32)
	for code := uint(0); code < 32; code++ {
		deck = append(deck, cardFromCode(code))
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	var hands [4]Hand
	for i, c := range deck {
		hands[i/8] = hands[i/8].Add(c)
	}
	return hands
}
