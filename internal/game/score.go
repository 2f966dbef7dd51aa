package game

import (
	"math"
	"sort"
	"time"

	"github.com/drawdash/server/internal"
)

const (
	guessBaseScore       = 100
	guessTimeBonus       = 100
	guessFloorScore      = 10
	drawerPerGuessReward = 50
)

// ScoreEngine computes and applies awards. Methods assume the caller holds
// the room lock.
type ScoreEngine struct {
	players *PlayerRegistry
}

func NewScoreEngine(players *PlayerRegistry) *ScoreEngine {
	return &ScoreEngine{players: players}
}

// GuesserAward pays a correct guesser by how early they got the word:
// 100 base plus up to 100 time bonus scaling linearly down across the draw
// time, floored at 10. Paying the same guess twice is a no-op.
func (se *ScoreEngine) GuesserAward(room *internal.Room, playerID string, at time.Time) int {
	g := room.Game
	rec, ok := g.Guessed[playerID]
	if !ok {
		return 0
	}
	if rec.Points != 0 {
		return rec.Points
	}

	elapsed := at.Sub(g.RoundStartTime).Seconds()
	ratio := elapsed / float64(room.Settings.DrawTime)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	points := int(math.Floor(guessBaseScore + guessTimeBonus*(1-ratio)))
	if points < guessFloorScore {
		points = guessFloorScore
	}

	rec.Points = points
	if p, ok := se.players.ByID(playerID); ok {
		p.Score += points
	}
	return points
}

// DrawerAward pays the drawer 50 per correct guesser, once per round.
func (se *ScoreEngine) DrawerAward(room *internal.Room) int {
	g := room.Game
	if g.DrawerAwarded() {
		return 0
	}
	g.MarkDrawerAwarded()

	points := drawerPerGuessReward * len(g.Guessed)
	if points == 0 {
		return 0
	}
	if p, ok := se.players.ByID(g.DrawerID); ok {
		p.Score += points
	}
	return points
}

// Leaderboard returns members by score descending; ties keep the room's
// insertion order.
func (se *ScoreEngine) Leaderboard(room *internal.Room) []internal.LeaderboardEntry {
	entries := make([]internal.LeaderboardEntry, 0, len(room.PlayerIDs))
	for _, id := range room.PlayerIDs {
		p, ok := se.players.ByID(id)
		if !ok {
			continue
		}
		entries = append(entries, internal.LeaderboardEntry{
			PlayerID: p.ID,
			Name:     se.players.NameOf(id),
			Score:    p.Score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
