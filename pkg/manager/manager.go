package manager

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/decred/slog"

	"coincherelay/pkg/coinche"
	"coincherelay/pkg/party"
)

// Config configures a GameManager. Embedders construct it directly; no
// file or env parsing lives in this package.
type Config struct {
	// InactivityThreshold is how long a player can go without a request
	// before the background reaper leaves them (and cancels their
	// table). Zero disables eviction.
	InactivityThreshold time.Duration
	// EvictionInterval is how often the reaper scans the registry.
	EvictionInterval time.Duration
	// LogBackend mints the manager's own "MANAGER" logger plus a
	// "PARTY" logger per table, the same per-subsystem split the
	// teacher's Server does for "TABLE"/"GAME". Nil gets a discarding
	// backend.
	LogBackend *slog.Backend
}

// GameManager is the matchmaking and request-routing entry point: the Go
// port of GameManager in server/game_manager.rs. It owns the player
// registry and the join queue, and dispatches every per-player request to
// the right Party after translating a player id into a seat.
type GameManager struct {
	log        slog.Logger
	logBackend *slog.Backend
	registry   *playerRegistry
	queue      *joinQueue

	rngMu sync.Mutex
	rng   *rand.Rand

	threshold time.Duration
	interval  time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

// New builds a GameManager and starts its inactivity reaper if
// cfg.InactivityThreshold is non-zero. Callers should call Close to stop
// the reaper.
func New(cfg Config) *GameManager {
	backend := cfg.LogBackend
	if backend == nil {
		backend = slog.NewBackend(io.Discard)
	}
	m := &GameManager{
		log:        backend.Logger("MANAGER"),
		logBackend: backend,
		registry:   newPlayerRegistry(),
		queue:      newJoinQueue(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		threshold:  cfg.InactivityThreshold,
		interval:   cfg.EvictionInterval,
		stop:       make(chan struct{}),
	}
	if m.threshold > 0 {
		m.wg.Add(1)
		go m.reapLoop()
	}
	return m
}

// Close stops the background reaper. Safe to call once.
func (m *GameManager) Close() {
	close(m.stop)
	m.wg.Wait()
}

func (m *GameManager) reapLoop() {
	defer m.wg.Done()
	interval := m.interval
	if interval <= 0 {
		interval = m.threshold / 4
	}
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			evicted := m.registry.evictIdle(now, m.threshold)
			if evicted > 0 {
				m.log.Infof("inactivity eviction: %d player(s) removed", evicted)
			}
		}
	}
}

// Join blocks until a table of four is assembled, either seating the
// caller as the fourth of three already-waiting players or waiting for
// three more to arrive. Ported from GameManager::join/get_join_result.
func (m *GameManager) Join(ctx context.Context) (NewPartyInfo, error) {
	m.log.Debugf("join requested")
	others, self, ready := m.queue.popThreeOrEnqueue()
	if ready {
		return m.makeParty(others), nil
	}

	select {
	case info := <-self.result:
		return info, nil
	case <-ctx.Done():
		m.queue.cancel(self)
		// self may have already been popped by a concurrent join that
		// raced the cancel; draining non-blockingly covers that case
		// without leaking the completion.
		select {
		case info := <-self.result:
			return info, nil
		default:
		}
		m.log.Debugf("join cancelled: %v", ctx.Err())
		return NewPartyInfo{}, ctx.Err()
	}
}

// makeParty mints 4 ids for a fresh table, registers all four PlayerInfos,
// wakes the three queued waiters, and returns the fourth seat's
// NewPartyInfo to the caller who completed the quartet.
func (m *GameManager) makeParty(others [3]*joinWaiter) NewPartyInfo {
	m.rngMu.Lock()
	partyRNG := rand.New(rand.NewSource(m.rng.Int63()))
	m.rngMu.Unlock()

	// Each table gets its own "PARTY"-scoped logger, distinct from the
	// manager's own "MANAGER" logger, mirroring the teacher's Server
	// minting a "TABLE"/"GAME" logger per component instead of handing
	// out its own "SERVER" logger everywhere.
	p := party.New(coinche.P0, partyRNG, m.logBackend.Logger("PARTY"))

	m.registry.mu.Lock()
	ids := m.registry.makeIDs(m.rng)
	for i := 0; i < 4; i++ {
		m.registry.insert(ids[i], newPlayerInfo(p, coinche.PlayerPos(i)))
	}
	m.registry.mu.Unlock()

	m.log.Debugf("party ready: %v", ids)

	for i, w := range others {
		w.complete(NewPartyInfo{PlayerID: ids[i], PlayerPos: coinche.PlayerPos(i)})
	}
	return NewPartyInfo{PlayerID: ids[3], PlayerPos: coinche.P3}
}

// Leave cancels the player's party (naming their seat) and removes all
// four registry entries for that table. A later Leave for any of the four
// seats changes nothing and returns ErrBadPlayerID, since their ids are gone.
func (m *GameManager) Leave(playerID uint32) error {
	m.log.Debugf("player leaving: %d", playerID)
	if err := m.registry.remove(playerID); err != nil {
		m.log.Warnf("leave rejected for player %d: %v", playerID, err)
		return err
	}
	return nil
}

// lookup resolves playerID to its PlayerInfo, logging a rejection for the
// identity-layer errors spec.md §4.5 assigns to the manager (BadPlayerId).
func (m *GameManager) lookup(playerID uint32) (*PlayerInfo, error) {
	info, err := m.registry.get(playerID)
	if err != nil {
		m.log.Warnf("request rejected for player %d: %v", playerID, err)
	}
	return info, err
}

// Bid places a bid on behalf of playerID.
func (m *GameManager) Bid(playerID uint32, trump coinche.Suit, target coinche.Target) (party.Event, error) {
	m.log.Debugf("bid request from player %d: %s on %s", playerID, target, trump)
	info, err := m.lookup(playerID)
	if err != nil {
		return party.Event{}, err
	}
	return info.Party.Bid(info.Pos, trump, target)
}

// Pass records a pass on behalf of playerID.
func (m *GameManager) Pass(playerID uint32) (party.Event, error) {
	m.log.Debugf("pass request from player %d", playerID)
	info, err := m.lookup(playerID)
	if err != nil {
		return party.Event{}, err
	}
	return info.Party.Pass(info.Pos)
}

// Coinche doubles (or redoubles) on behalf of playerID.
func (m *GameManager) Coinche(playerID uint32) (party.Event, error) {
	m.log.Debugf("coinche request from player %d", playerID)
	info, err := m.lookup(playerID)
	if err != nil {
		return party.Event{}, err
	}
	return info.Party.Coinche(info.Pos)
}

// PlayCard plays a card on behalf of playerID.
func (m *GameManager) PlayCard(playerID uint32, card coinche.Card) (party.Event, error) {
	m.log.Debugf("play request from player %d: %s", playerID, card)
	info, err := m.lookup(playerID)
	if err != nil {
		return party.Event{}, err
	}
	return info.Party.PlayCard(info.Pos, card)
}

// SeeHand returns playerID's current hand.
func (m *GameManager) SeeHand(playerID uint32) (coinche.Hand, error) {
	info, err := m.lookup(playerID)
	if err != nil {
		return 0, err
	}
	return info.Party.SnapshotHand(info.Pos), nil
}

// SeeTrick returns the trick currently in progress at playerID's table.
func (m *GameManager) SeeTrick(playerID uint32) (coinche.Trick, error) {
	info, err := m.lookup(playerID)
	if err != nil {
		return coinche.Trick{}, err
	}
	return info.Party.SnapshotTrick()
}

// SeeLastTrick returns the most recently completed trick at playerID's
// table.
func (m *GameManager) SeeLastTrick(playerID uint32) (coinche.Trick, error) {
	info, err := m.lookup(playerID)
	if err != nil {
		return coinche.Trick{}, err
	}
	return info.Party.SnapshotLastTrick()
}

// SeeScores returns the running scores across completed deals.
func (m *GameManager) SeeScores(playerID uint32) ([2]int, error) {
	info, err := m.lookup(playerID)
	if err != nil {
		return [2]int{}, err
	}
	return info.Party.SnapshotScores(), nil
}

// SeePos returns playerID's seat at their table.
func (m *GameManager) SeePos(playerID uint32) (coinche.PlayerPos, error) {
	info, err := m.lookup(playerID)
	if err != nil {
		return 0, err
	}
	return info.Pos, nil
}

// Wait blocks until eventID is available for playerID, or ctx is done.
func (m *GameManager) Wait(ctx context.Context, playerID uint32, eventID int) (party.Event, error) {
	info, err := m.lookup(playerID)
	if err != nil {
		return party.Event{}, err
	}
	return info.Party.Wait(ctx, info.Pos, eventID)
}
