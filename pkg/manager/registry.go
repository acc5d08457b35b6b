package manager

import (
	"math/rand"
	"sync"
	"time"

	"coincherelay/pkg/coinche"
	"coincherelay/pkg/party"
)

// PlayerInfo is everything the manager needs to route a request from a
// player id to the party they're seated at. Ported from PlayerInfo in
// server/game_manager.rs.
type PlayerInfo struct {
	Party *party.Party
	Pos   coinche.PlayerPos

	activeMu   sync.Mutex
	lastActive time.Time
}

func newPlayerInfo(p *party.Party, pos coinche.PlayerPos) *PlayerInfo {
	return &PlayerInfo{Party: p, Pos: pos, lastActive: time.Now()}
}

func (info *PlayerInfo) touch() {
	info.activeMu.Lock()
	info.lastActive = time.Now()
	info.activeMu.Unlock()
}

func (info *PlayerInfo) idleSince(now time.Time) time.Duration {
	info.activeMu.Lock()
	defer info.activeMu.Unlock()
	return now.Sub(info.lastActive)
}

// playerRegistry maps player ids to PlayerInfo, guarded by a single
// reader-writer lock acquired before any Party lock (spec.md §5's lock
// ordering table). Grounded on PlayerList in server/game_manager.rs.
type playerRegistry struct {
	mu   sync.RWMutex
	byID map[uint32]*PlayerInfo
}

func newPlayerRegistry() *playerRegistry {
	return &playerRegistry{byID: make(map[uint32]*PlayerInfo)}
}

// get looks up id, touching its last-active timestamp. The lookup and the
// touch happen under the same held read lock, per spec.md §4.3's
// inactivity-eviction note and §5's resource table ("fine-grained, inside
// registry read lock"): evictIdle can only run under the write lock, so it
// can never observe a lastActive timestamp that is stale with respect to
// an in-flight lookup racing it.
func (r *playerRegistry) get(id uint32) (*PlayerInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byID[id]
	if !ok {
		return nil, ErrBadPlayerID
	}
	info.touch()
	return info, nil
}

// makeIDs mints 4 ids, avoiding collisions with both the registry and the
// other ids minted in the same batch. Must be called with mu held for
// writing.
func (r *playerRegistry) makeIDs(rng *rand.Rand) [4]uint32 {
	var ids [4]uint32
	for i := range ids {
		for {
			id := rng.Uint32()
			if _, taken := r.byID[id]; taken {
				continue
			}
			dup := false
			for j := 0; j < i; j++ {
				if ids[j] == id {
					dup = true
					break
				}
			}
			if !dup {
				ids[i] = id
				break
			}
		}
	}
	return ids
}

// insert must be called with mu held for writing.
func (r *playerRegistry) insert(id uint32, info *PlayerInfo) {
	r.byID[id] = info
}

// remove cancels info's party (naming the leaving seat) and drops every
// registry entry that points at the same party, mirroring
// PlayerList::remove's all-four-at-once cleanup.
func (r *playerRegistry) remove(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.byID[id]
	if !ok {
		return ErrBadPlayerID
	}
	info.Party.Cancel("player left: " + info.Pos.String())
	for otherID, otherInfo := range r.byID {
		if otherInfo.Party == info.Party {
			delete(r.byID, otherID)
		}
	}
	return nil
}

// evictIdle leave-s every player whose last-active time is older than
// threshold, as of now. Leaving one seat of a party cancels the whole party
// and drops all four of its registry entries (the same all-at-once cleanup
// as remove), so a single idle player brings the rest of the table down
// with them, matching spec.md §4.3. Run periodically by GameManager's
// reaper.
func (r *playerRegistry) evictIdle(now time.Time, threshold time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []*party.Party
	for _, info := range r.byID {
		if info.idleSince(now) > threshold {
			stale = append(stale, info.Party)
		}
	}
	removed := 0
	for _, p := range stale {
		p.Cancel("inactivity eviction")
		for id, info := range r.byID {
			if info.Party == p {
				delete(r.byID, id)
				removed++
			}
		}
	}
	return removed
}
