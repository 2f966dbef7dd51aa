package internal

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	MinPlayersPerRoom = 2
	MaxPlayersPerRoom = 12
	DefaultMaxPlayers = 8

	MinDrawTimeSeconds     = 30
	MaxDrawTimeSeconds     = 120
	DefaultDrawTimeSeconds = 80

	MinRounds     = 1
	MaxRounds     = 10
	DefaultRounds = 3

	MaxCustomWords   = 50
	MaxCustomWordLen = 50

	MaxNameLen  = 20
	MaxGuessLen = 50

	WordSelectDuration = 15 * time.Second
	RoundPauseDuration = 3 * time.Second

	RoomCodeLen      = 6
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusInGame   RoomStatus = "in_game"
	StatusFinished RoomStatus = "finished"
)

type GamePhase string

const (
	PhaseWordSelect GamePhase = "word_select"
	PhaseDrawing    GamePhase = "drawing"
	PhaseRoundEnd   GamePhase = "round_end"
	PhaseGameEnd    GamePhase = "game_end"
)

type TimerKind string

const (
	TimerWordSelection TimerKind = "word_selection"
	TimerDrawing       TimerKind = "drawing"
	TimerRoundPause    TimerKind = "round_pause"
)

// Client is the directed-send half of the transport. The websocket session
// implements it; tests substitute a capturing fake.
type Client interface {
	Send(msg Message[any])
}

// Player is a connected identity. It belongs to at most one room; RoomCode
// is empty otherwise. Name is guarded by the registry lock and must be read
// through PlayerRegistry.NameOf on any path that can run concurrently with a
// rename; Score and RoomCode are mutated under the owning room's lock (or
// the registry lock while roomless).
type Player struct {
	ID       string `json:"id"`
	Session  string `json:"-"`
	Name     string `json:"name"`
	RoomCode string `json:"-"`
	Score    int    `json:"score"`

	Client Client `json:"-"`
}

// Settings is the validated room configuration. Raw client input is clamped
// into range, never rejected.
type Settings struct {
	MaxPlayers  int      `json:"maxPlayers"`
	DrawTime    int      `json:"drawTime"`
	Rounds      int      `json:"rounds"`
	Hints       bool     `json:"hints"`
	CustomWords []string `json:"customWords"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:  DefaultMaxPlayers,
		DrawTime:    DefaultDrawTimeSeconds,
		Rounds:      DefaultRounds,
		Hints:       true,
		CustomWords: []string{},
	}
}

// SettingsInput is the raw client payload. Absent fields keep their current
// values; present fields are clamped.
type SettingsInput struct {
	MaxPlayers  *int     `json:"maxPlayers,omitempty"`
	DrawTime    *int     `json:"drawTime,omitempty"`
	Rounds      *int     `json:"rounds,omitempty"`
	Hints       *bool    `json:"hints,omitempty"`
	CustomWords []string `json:"customWords,omitempty"`
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamped merges in over base, clamping numeric fields into range and
// normalizing custom words (trim, lowercase, dedupe, drop empties, cap the
// list and the entry length).
func (in *SettingsInput) Clamped(base Settings) Settings {
	out := base
	if in == nil {
		return out
	}
	if in.MaxPlayers != nil {
		out.MaxPlayers = clampInt(*in.MaxPlayers, MinPlayersPerRoom, MaxPlayersPerRoom)
	}
	if in.DrawTime != nil {
		out.DrawTime = clampInt(*in.DrawTime, MinDrawTimeSeconds, MaxDrawTimeSeconds)
	}
	if in.Rounds != nil {
		out.Rounds = clampInt(*in.Rounds, MinRounds, MaxRounds)
	}
	if in.Hints != nil {
		out.Hints = *in.Hints
	}
	if in.CustomWords != nil {
		seen := make(map[string]struct{}, len(in.CustomWords))
		words := make([]string, 0, len(in.CustomWords))
		for _, raw := range in.CustomWords {
			w := strings.ToLower(strings.TrimSpace(raw))
			if w == "" || utf8.RuneCountInString(w) > MaxCustomWordLen {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
			if len(words) == MaxCustomWords {
				break
			}
		}
		out.CustomWords = words
	}
	return out
}

// GuessRecord tracks a correct guess within the current round. At is the
// wall time of the guess; Points is filled exactly once by the score engine.
type GuessRecord struct {
	At     time.Time
	Points int
}

// Game is the per-game state present while a room is in_game or finished.
// The secret word is unexported: it is set and matched through methods and
// is unreachable from the view types.
type Game struct {
	Phase          GamePhase
	CurrentRound   int
	TotalRounds    int
	DrawerIndex    int
	DrawerID       string
	RoundStartTime time.Time
	MaskedWord     string

	// Guessed holds every player that guessed correctly this round.
	Guessed map[string]*GuessRecord

	word          string
	drawerAwarded bool

	// rotationCollapsed is set when the current drawer left the room and
	// DrawerIndex already points at their successor; the next progression
	// must not advance again.
	rotationCollapsed bool
}

// BeginDrawing stores the selected word and transitions to the drawing
// phase, stamping the round start time.
func (g *Game) BeginDrawing(word, masked string, now time.Time) {
	g.word = word
	g.MaskedWord = masked
	g.Phase = PhaseDrawing
	g.RoundStartTime = now
}

// WordIsSet reports whether a secret word is currently stored.
func (g *Game) WordIsSet() bool { return g.word != "" }

// MatchesWord compares a normalized guess against the normalized secret.
func (g *Game) MatchesWord(normalizedGuess string) bool {
	if g.word == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(g.word)) == normalizedGuess
}

// RevealWord returns the secret word. Callers compose it only into the
// drawer's view or into round_ended, after which the selection is cleared.
func (g *Game) RevealWord() string { return g.word }

// ClearWordSelection nulls the secret and its mask.
func (g *Game) ClearWordSelection() {
	g.word = ""
	g.MaskedWord = ""
}

// HasGuessed reports whether the player already guessed correctly this round.
func (g *Game) HasGuessed(playerID string) bool {
	_, ok := g.Guessed[playerID]
	return ok
}

// GuessedIDs returns the ids of correct guessers in no particular order.
func (g *Game) GuessedIDs() []string {
	ids := make([]string, 0, len(g.Guessed))
	for id := range g.Guessed {
		ids = append(ids, id)
	}
	return ids
}

// DrawerAwarded reports whether the drawer got their round-end award.
func (g *Game) DrawerAwarded() bool { return g.drawerAwarded }

// MarkDrawerAwarded records that the drawer award was paid this round.
func (g *Game) MarkDrawerAwarded() { g.drawerAwarded = true }

// ResetRound clears per-round state ahead of a new word_select phase.
func (g *Game) ResetRound() {
	g.Guessed = make(map[string]*GuessRecord)
	g.drawerAwarded = false
	g.ClearWordSelection()
	g.RoundStartTime = time.Time{}
	g.Phase = PhaseWordSelect
}

// CollapseRotation marks that the drawer slot already points at the
// departing drawer's successor.
func (g *Game) CollapseRotation() { g.rotationCollapsed = true }

// ConsumeCollapsedRotation reports and clears the collapsed-rotation flag.
func (g *Game) ConsumeCollapsedRotation() bool {
	v := g.rotationCollapsed
	g.rotationCollapsed = false
	return v
}

// Room is a game room. PlayerIDs is insertion-ordered and doubles as the
// drawer rotation order. Game is non-nil iff Status is in_game or finished.
type Room struct {
	Mu sync.RWMutex

	Code      string
	OwnerID   string
	PlayerIDs []string
	Settings  Settings
	Status    RoomStatus
	Game      *Game
}

// IndexOf returns the rotation index of the player, or -1. Caller holds Mu.
func (r *Room) IndexOf(playerID string) int {
	for i, id := range r.PlayerIDs {
		if id == playerID {
			return i
		}
	}
	return -1
}

// HasPlayer reports membership. Caller holds Mu.
func (r *Room) HasPlayer(playerID string) bool {
	return r.IndexOf(playerID) >= 0
}

// MatchRecord is the write-only archive row stored when a game finishes.
type MatchRecord struct {
	RoomCode    string             `json:"roomCode"`
	Rounds      int                `json:"rounds"`
	Players     int                `json:"players"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	FinishedAt  time.Time          `json:"finishedAt"`
}
