package party

import (
	"context"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"coincherelay/pkg/coinche"
)

func testLogger() slog.Logger {
	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("PARTY")
	log.SetLevel(slog.LevelError)
	return log
}

func newTestParty() *Party {
	return New(coinche.P0, rand.New(rand.NewSource(3)), testLogger())
}

func TestNewPartyStartsWithInternalNewGame(t *testing.T) {
	p := newTestParty()
	ev, err := p.Wait(context.Background(), coinche.P0, 0)
	require.NoError(t, err)
	require.Equal(t, 0, ev.ID)
	require.Equal(t, KindNewGameRelative, ev.Kind)
	require.Equal(t, p.SnapshotHand(coinche.P0), ev.Hand)
}

func TestRelativizationHidesOtherHands(t *testing.T) {
	p := newTestParty()
	for _, pos := range []coinche.PlayerPos{coinche.P0, coinche.P1, coinche.P2, coinche.P3} {
		ev, err := p.Wait(context.Background(), pos, 0)
		require.NoError(t, err)
		require.Equal(t, KindNewGameRelative, ev.Kind)
		require.Equal(t, p.SnapshotHand(pos), ev.Hand)
	}
}

func TestFourPassCancelStartsNewDeal(t *testing.T) {
	p := newTestParty()
	for i, pos := range []coinche.PlayerPos{coinche.P0, coinche.P1, coinche.P2, coinche.P3} {
		ev, err := p.Pass(pos)
		require.NoError(t, err, "pass %d", i)
		require.Equal(t, KindFromPlayer, ev.Kind)
		require.Equal(t, PlayerPassed, ev.Player.Kind)
	}

	cancelled, err := p.Wait(context.Background(), coinche.P0, 5)
	require.NoError(t, err)
	require.Equal(t, KindBidCancelled, cancelled.Kind)

	redeal, err := p.Wait(context.Background(), coinche.P0, 6)
	require.NoError(t, err)
	require.Equal(t, KindNewGameRelative, redeal.Kind)
	require.Equal(t, coinche.P1, redeal.First, "dealer rotates after a cancelled auction")

	require.Equal(t, [2]int{0, 0}, p.SnapshotScores())
}

func TestBidOverTransitionsToPlaying(t *testing.T) {
	p := newTestParty()
	_, err := p.Bid(coinche.P0, coinche.Hearts, coinche.Target80)
	require.NoError(t, err)
	for _, pos := range []coinche.PlayerPos{coinche.P1, coinche.P2} {
		_, err := p.Pass(pos)
		require.NoError(t, err)
	}
	bidOver, err := p.Pass(coinche.P3)
	require.NoError(t, err)
	require.Equal(t, PlayerPassed, bidOver.Player.Kind)

	over, err := p.Wait(context.Background(), coinche.P0, 5)
	require.NoError(t, err)
	require.Equal(t, KindBidOver, over.Kind)
	require.Equal(t, coinche.Target80, over.Contract.Target)
	require.Equal(t, coinche.P0, over.Contract.Author)

	_, err = p.Bid(coinche.P0, coinche.Hearts, coinche.Target90)
	require.ErrorIs(t, err, ErrBidInGame)
}

func TestPlayCardRejectedDuringAuction(t *testing.T) {
	p := newTestParty()
	hand := p.SnapshotHand(coinche.P0)
	card := hand.ListInOrder()[0]
	_, err := p.PlayCard(coinche.P0, card)
	require.ErrorIs(t, err, ErrPlayInAuction)
}

func TestWaitReturnsYourTurnAtTipOfLogForCurrentPlayer(t *testing.T) {
	p := newTestParty()
	ev, err := p.Wait(context.Background(), coinche.P0, 1)
	require.NoError(t, err)
	require.Equal(t, KindYourTurn, ev.Kind)
	require.Equal(t, 0, ev.ID, "synthetic YourTurn is stamped with id = requested-1")
}

func TestWaitBadEventIDWhenTooFarAhead(t *testing.T) {
	p := newTestParty()
	_, err := p.Wait(context.Background(), coinche.P0, 5)
	require.ErrorIs(t, err, ErrBadEventID)
}

// TestWakeAllWakesEveryBlockedWaiter reproduces spec.md §8's wake-all
// property: K waiters blocked on the same not-yet-appended id all receive
// that event once it lands, and none of them time out.
func TestWakeAllWakesEveryBlockedWaiter(t *testing.T) {
	p := newTestParty()
	defer dumpOnFailure(t, p)
	// P1 is not next to act (P0 is), so P1 blocks rather than getting a
	// synthetic YourTurn.
	type outcome struct {
		ev  Event
		err error
	}
	results := make(chan outcome, 3)
	for i := 0; i < 3; i++ {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			ev, err := p.Wait(ctx, coinche.P1, 1)
			results <- outcome{ev, err}
		}()
	}
	time.Sleep(20 * time.Millisecond) // let the waiters register

	_, err := p.Pass(coinche.P0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out := <-results
		require.NoError(t, out.err)
		require.Equal(t, 1, out.ev.ID)
		require.Equal(t, KindFromPlayer, out.ev.Kind)
	}
}

// TestLongPollOrdering reproduces spec.md §8 scenario 6: a waiter
// registered for id 3 resolves with the event at id 3, not a later one
// appended concurrently, and a subsequent Wait for id 4 returns
// immediately without blocking.
func TestLongPollOrdering(t *testing.T) {
	p := newTestParty()
	defer dumpOnFailure(t, p)
	// Get to event id 3: NewGame(0), then two passes (1,2) leave P2 next.
	_, err := p.Pass(coinche.P0)
	require.NoError(t, err)
	_, err = p.Pass(coinche.P1)
	require.NoError(t, err)

	type outcome struct {
		ev  Event
		err error
	}
	results := make(chan outcome, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ev, err := p.Wait(ctx, coinche.P0, 3)
		results <- outcome{ev, err}
	}()
	time.Sleep(20 * time.Millisecond)

	_, err = p.Pass(coinche.P2) // appends id 3
	require.NoError(t, err)
	_, err = p.Pass(coinche.P3) // appends id 4, cancels the auction
	require.NoError(t, err)

	out := <-results
	require.NoError(t, out.err)
	require.Equal(t, 3, out.ev.ID)
	require.Equal(t, PlayerPassed, out.ev.Player.Kind)
	require.Equal(t, coinche.P2, out.ev.Pos)

	immediate, err := p.Wait(context.Background(), coinche.P0, 4)
	require.NoError(t, err)
	require.Equal(t, 4, immediate.ID)
	require.Equal(t, coinche.P3, immediate.Pos)
}

// TestFullDealTransitionsBackToBidding plays a complete, randomly-dealt
// deal to completion using a "first legal card" bot (the rules library
// guarantees at least one legal card is always available), then checks
// that the party accumulates scores and rotates the dealer into a fresh
// auction, exercising the full Bidding -> Playing -> Bidding cycle of
// spec.md §4.2's phase transitions.
func TestFullDealTransitionsBackToBidding(t *testing.T) {
	p := newTestParty()

	_, err := p.Bid(coinche.P0, coinche.Hearts, coinche.Target80)
	require.NoError(t, err)
	for _, pos := range []coinche.PlayerPos{coinche.P1, coinche.P2, coinche.P3} {
		_, err := p.Pass(pos)
		require.NoError(t, err)
	}

	for i := 0; i < 32; i++ {
		pos := p.NextPlayer()
		hand := p.SnapshotHand(pos)
		played := false
		for _, c := range hand.ListInOrder() {
			if _, err := p.PlayCard(pos, c); err == nil {
				played = true
				break
			}
		}
		require.True(t, played, "play %d: no legal card found for %s", i, pos)
	}

	var gameOver *EventType
	for i := range p.events {
		if p.events[i].Kind == KindGameOver {
			gameOver = &p.events[i]
			break
		}
	}
	require.NotNil(t, gameOver, "a GameOver event should have been appended")
	require.Equal(t, gameOver.Scores, p.SnapshotScores())
	require.Equal(t, coinche.P1, p.first, "dealer rotates to the next seat after a completed deal")
	require.NotNil(t, p.auction, "a new auction should be open after the deal completes")
	require.Equal(t, KindNewGame, p.events[len(p.events)-1].Kind)
}

func TestCancelIsTerminalAndIdempotent(t *testing.T) {
	p := newTestParty()
	p.Cancel("player left: 0")
	p.Cancel("player left: 0")

	ev, err := p.Wait(context.Background(), coinche.P0, 1)
	require.NoError(t, err)
	require.Equal(t, KindPartyCancelled, ev.Kind)

	_, err = p.Wait(context.Background(), coinche.P0, 3)
	require.ErrorIs(t, err, ErrBadEventID)
}
