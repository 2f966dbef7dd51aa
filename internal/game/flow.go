package game

import (
	"log"

	"github.com/drawdash/server/internal"
)

// GameEngine drives the round/rotation state machine. All methods assume the
// caller holds the room lock; none of them performs I/O or touches timers.
type GameEngine struct {
	players *PlayerRegistry
}

func NewGameEngine(players *PlayerRegistry) *GameEngine {
	return &GameEngine{players: players}
}

// StartGame validates the start and installs a fresh Game with round 1 and
// the first member as drawer. Scores are zeroed.
func (ge *GameEngine) StartGame(room *internal.Room, playerID string) error {
	if room.OwnerID != playerID {
		return internal.Errf(internal.ErrNotOwner, "Only the room owner can start the game")
	}
	if room.Status != internal.StatusWaiting {
		return internal.Errf(internal.ErrNotWaiting, "Game already in progress")
	}
	if len(room.PlayerIDs) < internal.MinPlayersPerRoom {
		return internal.Errf(internal.ErrTooFewPlayers, "Need at least 2 players to start")
	}

	for _, id := range room.PlayerIDs {
		if p, ok := ge.players.ByID(id); ok {
			p.Score = 0
		}
	}

	room.Status = internal.StatusInGame
	room.Game = &internal.Game{
		Phase:        internal.PhaseWordSelect,
		CurrentRound: 1,
		TotalRounds:  room.Settings.Rounds,
		DrawerIndex:  0,
		DrawerID:     room.PlayerIDs[0],
		Guessed:      make(map[string]*internal.GuessRecord),
	}

	log.Printf("[GameEngine] room %s started, %d players, %d rounds",
		room.Code, len(room.PlayerIDs), room.Game.TotalRounds)
	return nil
}

// StartRound resets per-round state for the current drawer and enters
// word_select.
func (ge *GameEngine) StartRound(room *internal.Room) {
	g := room.Game
	g.ResetRound()
	g.DrawerID = room.PlayerIDs[g.DrawerIndex]
}

// EndRound moves to the round_end phase and reports whether this round was
// the game's last (last drawer of the last round).
func (ge *GameEngine) EndRound(room *internal.Room) (gameEnded bool) {
	g := room.Game
	g.Phase = internal.PhaseRoundEnd

	lastDrawer := g.DrawerIndex >= len(room.PlayerIDs)-1
	lastRound := g.CurrentRound >= g.TotalRounds
	return lastDrawer && lastRound
}

// ProgressToNextDrawer advances the rotation, wrapping into the next round
// when the last drawer finishes. A collapsed rotation (the drawer left and
// the index already points at the successor) is consumed instead.
func (ge *GameEngine) ProgressToNextDrawer(room *internal.Room) (roundIncremented bool) {
	g := room.Game
	if g.ConsumeCollapsedRotation() {
		if g.DrawerIndex >= len(room.PlayerIDs) {
			g.DrawerIndex = 0
		}
		g.DrawerID = room.PlayerIDs[g.DrawerIndex]
		return false
	}

	g.DrawerIndex++
	if g.DrawerIndex >= len(room.PlayerIDs) {
		g.DrawerIndex = 0
		g.CurrentRound++
		roundIncremented = true
	}
	g.DrawerID = room.PlayerIDs[g.DrawerIndex]
	return roundIncremented
}

// TransitionPhase applies a phase change on behalf of callers outside the
// normal round flow, rejecting unknown phase values.
func (ge *GameEngine) TransitionPhase(g *internal.Game, phase internal.GamePhase) error {
	switch phase {
	case internal.PhaseWordSelect, internal.PhaseDrawing, internal.PhaseRoundEnd, internal.PhaseGameEnd:
		g.Phase = phase
		return nil
	default:
		return internal.Errf(internal.ErrWrongPhase, "Unknown phase")
	}
}

// EndGame finalizes the game and returns the number of rounds played.
func (ge *GameEngine) EndGame(room *internal.Room) (roundsPlayed int) {
	g := room.Game
	g.Phase = internal.PhaseGameEnd
	g.ClearWordSelection()
	room.Status = internal.StatusFinished

	roundsPlayed = g.CurrentRound
	if roundsPlayed > g.TotalRounds {
		roundsPlayed = g.TotalRounds
	}
	log.Printf("[GameEngine] room %s game ended after %d rounds", room.Code, roundsPlayed)
	return roundsPlayed
}

// ResetGame returns a finished (or aborted) room to the waiting lobby state.
// Scores are zeroed so the lobby shows a clean slate.
func (ge *GameEngine) ResetGame(room *internal.Room) {
	room.Game = nil
	room.Status = internal.StatusWaiting
	for _, id := range room.PlayerIDs {
		if p, ok := ge.players.ByID(id); ok {
			p.Score = 0
		}
	}
	log.Printf("[GameEngine] room %s reset to waiting", room.Code)
}

// AdjustRotationAfterLeave repairs the drawer rotation after the member at
// removedIdx was removed. It reports whether the departing player was the
// current drawer and whether the repair wrapped into a new round.
func (ge *GameEngine) AdjustRotationAfterLeave(room *internal.Room, removedIdx int) (wasDrawer, wrapped bool) {
	g := room.Game
	if g == nil {
		return false, false
	}

	switch {
	case removedIdx < g.DrawerIndex:
		g.DrawerIndex--
	case removedIdx == g.DrawerIndex:
		wasDrawer = true
		// The successor has shifted into the drawer's slot; the index is
		// already correct unless it fell off the end.
		g.CollapseRotation()
		if g.DrawerIndex >= len(room.PlayerIDs) {
			g.DrawerIndex = 0
			g.CurrentRound++
			wrapped = true
		}
	}
	if len(room.PlayerIDs) > 0 {
		g.DrawerID = room.PlayerIDs[g.DrawerIndex]
	}
	return wasDrawer, wrapped
}
