package game

import (
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/drawdash/server/internal"
)

// PlayerRegistry maps transport sessions and player ids to players. Both
// indices are kept in step so every lookup is O(1).
type PlayerRegistry struct {
	mu        sync.RWMutex
	bySession map[string]*internal.Player
	byID      map[string]*internal.Player
}

func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{
		bySession: make(map[string]*internal.Player),
		byID:      make(map[string]*internal.Player),
	}
}

// Connect mints a player for a fresh transport session. The default name is
// "Player" plus a zero-padded 3-digit suffix.
func (pr *PlayerRegistry) Connect(session string, client internal.Client) *internal.Player {
	p := &internal.Player{
		ID:      uuid.NewString(),
		Session: session,
		Name:    fmt.Sprintf("Player%03d", rand.IntN(1000)),
		Client:  client,
	}

	pr.mu.Lock()
	pr.bySession[session] = p
	pr.byID[p.ID] = p
	pr.mu.Unlock()

	log.Printf("[PlayerRegistry] connected player %s (%s) session=%s", p.ID, p.Name, session)
	return p
}

// SetName validates and applies a rename. The name is trimmed and must be
// 1-20 characters afterwards.
func (pr *PlayerRegistry) SetName(playerID, raw string) error {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > internal.MaxNameLen {
		return internal.Errf(internal.ErrInvalidName, "Name must be 1-20 characters")
	}

	pr.mu.Lock()
	defer pr.mu.Unlock()
	p, ok := pr.byID[playerID]
	if !ok {
		return internal.Errf(internal.ErrNotFound, "Player not found")
	}
	p.Name = name
	return nil
}

// NameOf returns the player's current display name. Name is guarded by the
// registry lock, so every reader on a broadcast path must come through here
// rather than touching Player.Name directly.
func (pr *PlayerRegistry) NameOf(playerID string) string {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	if p, ok := pr.byID[playerID]; ok {
		return p.Name
	}
	return ""
}

// SetRoom records which room the player belongs to ("" clears it).
func (pr *PlayerRegistry) SetRoom(playerID, roomCode string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if p, ok := pr.byID[playerID]; ok {
		p.RoomCode = roomCode
	}
}

// Remove drops the player for a disconnecting session. Removing an unknown
// session is a no-op.
func (pr *PlayerRegistry) Remove(session string) *internal.Player {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	p, ok := pr.bySession[session]
	if !ok {
		return nil
	}
	delete(pr.bySession, session)
	delete(pr.byID, p.ID)
	return p
}

// BySession looks a player up by transport session handle.
func (pr *PlayerRegistry) BySession(session string) (*internal.Player, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	p, ok := pr.bySession[session]
	return p, ok
}

// ByID looks a player up by id.
func (pr *PlayerRegistry) ByID(id string) (*internal.Player, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	p, ok := pr.byID[id]
	return p, ok
}
