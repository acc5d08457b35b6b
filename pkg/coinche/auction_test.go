package coinche

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestAuction() *Auction {
	return NewAuction(P0, rand.New(rand.NewSource(7)))
}

func TestAuctionFourPassesCancel(t *testing.T) {
	a := newTestAuction()
	for i, pos := range []PlayerPos{P0, P1, P2} {
		state, err := a.Pass(pos)
		require.NoError(t, err, "pass %d", i)
		require.Equal(t, StateContinue, state)
	}
	state, err := a.Pass(P3)
	require.NoError(t, err)
	require.Equal(t, StateCancelled, state)
	require.Equal(t, Cancelled, a.Phase())
}

func TestAuctionThreePassesAfterBidEndsIt(t *testing.T) {
	a := newTestAuction()
	state, err := a.Bid(P0, Hearts, Target80)
	require.NoError(t, err)
	require.Equal(t, StateContinue, state)

	for _, pos := range []PlayerPos{P1, P2} {
		state, err = a.Pass(pos)
		require.NoError(t, err)
		require.Equal(t, StateContinue, state)
	}
	state, err = a.Pass(P3)
	require.NoError(t, err)
	require.Equal(t, StateOver, state)
	require.Equal(t, Over, a.Phase())

	contract, ok := a.CurrentContract()
	require.True(t, ok)
	require.Equal(t, Target80, contract.Target)
	require.Equal(t, Hearts, contract.Trump)
	require.Equal(t, P0, contract.Author)
}

func TestAuctionMustRaiseTarget(t *testing.T) {
	a := newTestAuction()
	_, err := a.Bid(P0, Hearts, Target100)
	require.NoError(t, err)

	_, err = a.Bid(P1, Spades, Target100)
	require.ErrorIs(t, err, ErrNonRaisedTarget)

	_, err = a.Bid(P1, Spades, Target90)
	require.ErrorIs(t, err, ErrNonRaisedTarget)
}

func TestAuctionTurnOrderEnforced(t *testing.T) {
	a := newTestAuction()
	_, err := a.Bid(P1, Hearts, Target80)
	require.ErrorIs(t, err, ErrTurnOrder)

	_, err = a.Pass(P2)
	require.ErrorIs(t, err, ErrTurnOrder)
}

func TestAuctionCapotEndsImmediately(t *testing.T) {
	a := newTestAuction()
	state, err := a.Bid(P0, Hearts, TargetCapot)
	require.NoError(t, err)
	require.Equal(t, StateOver, state)
	require.Equal(t, Over, a.Phase())
}

func TestAuctionCoincheAndSurCoinche(t *testing.T) {
	a := newTestAuction()
	_, err := a.Bid(P0, Spades, Target100)
	require.NoError(t, err)

	state, err := a.Coinche(P1)
	require.NoError(t, err)
	require.Equal(t, StateContinue, state)
	contract, _ := a.CurrentContract()
	require.Equal(t, Coinched, contract.CoincheLevel)

	state, err = a.Coinche(P2)
	require.NoError(t, err)
	require.Equal(t, StateOver, state)
	contract, _ = a.CurrentContract()
	require.Equal(t, SurCoinched, contract.CoincheLevel)
}

func TestAuctionCoincheRejectsOwnTeam(t *testing.T) {
	a := newTestAuction()
	_, err := a.Bid(P0, Spades, Target100)
	require.NoError(t, err)
	_, err = a.Pass(P1)
	require.NoError(t, err)
	_, err = a.Coinche(P2)
	require.ErrorIs(t, err, ErrWrongPlayerOrder)
}

func TestAuctionCoincheWithoutContract(t *testing.T) {
	a := newTestAuction()
	_, err := a.Coinche(P0)
	require.ErrorIs(t, err, ErrNoContract)
}

func TestAuctionCompleteFreezesHands(t *testing.T) {
	a := newTestAuction()
	hands := a.Hands()
	_, err := a.Bid(P0, Hearts, Target80)
	require.NoError(t, err)
	for _, pos := range []PlayerPos{P1, P2, P3} {
		_, err = a.Pass(pos)
		require.NoError(t, err)
	}
	game := a.Complete()
	require.Equal(t, hands, game.Hands())
	require.Equal(t, P0, game.NextPlayer())
	require.Len(t, game.tricks, 1)
}
