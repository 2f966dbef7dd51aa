package game

import (
	"log"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/drawdash/server/internal"
)

const roomCodeAttempts = 100

// RoomRegistry owns room lifecycle and membership. Codes are stored
// uppercase; lookups are case-insensitive. Lock order is registry before
// room, never the reverse.
type RoomRegistry struct {
	mu      sync.RWMutex
	rooms   map[string]*internal.Room
	players *PlayerRegistry
}

func NewRoomRegistry(players *PlayerRegistry) *RoomRegistry {
	return &RoomRegistry{
		rooms:   make(map[string]*internal.Room),
		players: players,
	}
}

// mintCode draws 6-char codes from A-Z0-9 until one is free, giving up
// after roomCodeAttempts. Caller holds rr.mu.
func (rr *RoomRegistry) mintCode() (string, error) {
	buf := make([]byte, internal.RoomCodeLen)
	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		for i := range buf {
			buf[i] = internal.RoomCodeAlphabet[rand.IntN(len(internal.RoomCodeAlphabet))]
		}
		code := string(buf)
		if _, taken := rr.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", internal.Errf(internal.ErrIDExhausted, "Could not allocate a room code")
}

// Create validates settings by clamping, mints a code and inserts the owner
// as the first member.
func (rr *RoomRegistry) Create(ownerID string, in *internal.SettingsInput) (*internal.Room, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	owner, ok := rr.players.ByID(ownerID)
	if !ok {
		return nil, internal.Errf(internal.ErrNotFound, "Player not found")
	}
	if owner.RoomCode != "" {
		return nil, internal.Errf(internal.ErrAlreadyIn, "Already in a room")
	}

	code, err := rr.mintCode()
	if err != nil {
		return nil, err
	}

	room := &internal.Room{
		Code:      code,
		OwnerID:   ownerID,
		PlayerIDs: []string{ownerID},
		Settings:  in.Clamped(internal.DefaultSettings()),
		Status:    internal.StatusWaiting,
	}
	rr.rooms[code] = room
	rr.players.SetRoom(ownerID, code)

	log.Printf("[RoomRegistry] created room %s owner=%s", code, ownerID)
	return room, nil
}

// Get resolves a room code case-insensitively.
func (rr *RoomRegistry) Get(code string) (*internal.Room, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	room, ok := rr.rooms[strings.ToUpper(strings.TrimSpace(code))]
	return room, ok
}

// Join adds the player to the room, enforcing the waiting-only, capacity
// and single-membership rules.
func (rr *RoomRegistry) Join(playerID, code string) (*internal.Room, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room, ok := rr.rooms[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, internal.Errf(internal.ErrNotFound, "Room not found")
	}
	player, ok := rr.players.ByID(playerID)
	if !ok {
		return nil, internal.Errf(internal.ErrNotFound, "Player not found")
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if player.RoomCode == room.Code {
		return nil, internal.Errf(internal.ErrDuplicate, "Already in this room")
	}
	if player.RoomCode != "" {
		return nil, internal.Errf(internal.ErrAlreadyIn, "Already in a room")
	}
	if room.Status != internal.StatusWaiting {
		return nil, internal.Errf(internal.ErrNotWaiting, "Game already in progress")
	}
	if len(room.PlayerIDs) >= room.Settings.MaxPlayers {
		return nil, internal.Errf(internal.ErrFull, "Room is full")
	}

	room.PlayerIDs = append(room.PlayerIDs, playerID)
	player.RoomCode = room.Code

	log.Printf("[RoomRegistry] player %s joined room %s (%d/%d)",
		playerID, room.Code, len(room.PlayerIDs), room.Settings.MaxPlayers)
	return room, nil
}

// LeaveResult describes what a leave did to the room.
type LeaveResult struct {
	Room         *internal.Room
	RemovedIndex int
	RoomDeleted  bool
	OwnerChanged bool
}

// Leave removes the player. An empty room is deleted; otherwise the first
// remaining member inherits ownership if the owner left.
func (rr *RoomRegistry) Leave(playerID, code string) (LeaveResult, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room, ok := rr.rooms[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return LeaveResult{}, internal.Errf(internal.ErrNotFound, "Room not found")
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	idx := room.IndexOf(playerID)
	if idx < 0 {
		return LeaveResult{}, internal.Errf(internal.ErrNotFound, "Player is not in this room")
	}

	room.PlayerIDs = append(room.PlayerIDs[:idx], room.PlayerIDs[idx+1:]...)
	rr.players.SetRoom(playerID, "")

	res := LeaveResult{Room: room, RemovedIndex: idx}
	if len(room.PlayerIDs) == 0 {
		delete(rr.rooms, room.Code)
		res.RoomDeleted = true
		log.Printf("[RoomRegistry] room %s deleted (empty)", room.Code)
		return res, nil
	}
	if room.OwnerID == playerID {
		room.OwnerID = room.PlayerIDs[0]
		res.OwnerChanged = true
		log.Printf("[RoomRegistry] room %s owner left, promoted %s", room.Code, room.OwnerID)
	}
	return res, nil
}

// UpdateSettings clamps and applies new settings. Owner-only, waiting-only,
// and maxPlayers may not drop below the current member count.
func (rr *RoomRegistry) UpdateSettings(room *internal.Room, playerID string, in *internal.SettingsInput) error {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.OwnerID != playerID {
		return internal.Errf(internal.ErrNotOwner, "Only the room owner can change settings")
	}
	if room.Status != internal.StatusWaiting {
		return internal.Errf(internal.ErrNotWaiting, "Settings are locked during a game")
	}

	next := in.Clamped(room.Settings)
	if next.MaxPlayers < len(room.PlayerIDs) {
		return internal.Errf(internal.ErrTooSmall, "Max players cannot be below the current player count")
	}
	room.Settings = next
	return nil
}

// Serialize builds the client-safe room snapshot. The secret word is not
// part of any room serialization by construction (see internal.RoomView).
func (rr *RoomRegistry) Serialize(room *internal.Room) internal.RoomView {
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	return rr.serializeLocked(room)
}

// serializeLocked is Serialize for callers already holding the room lock.
func (rr *RoomRegistry) serializeLocked(room *internal.Room) internal.RoomView {
	players := make([]internal.PlayerView, 0, len(room.PlayerIDs))
	for _, id := range room.PlayerIDs {
		p, ok := rr.players.ByID(id)
		if !ok {
			continue
		}
		players = append(players, internal.PlayerView{
			ID:      p.ID,
			Name:    rr.players.NameOf(id),
			IsOwner: id == room.OwnerID,
			Score:   p.Score,
		})
	}
	return internal.RoomView{
		Code:     room.Code,
		OwnerID:  room.OwnerID,
		Players:  players,
		Settings: room.Settings,
		Status:   room.Status,
	}
}
