package internal

// View types are the only shapes ever serialized to clients. None of them
// carries the secret word field, so a guesser-bound payload physically
// cannot leak it; the drawer's copy adds it explicitly via DrawerStateView.

type PlayerView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsOwner bool   `json:"isOwner"`
	Score   int    `json:"score"`
}

type RoomView struct {
	Code     string       `json:"code"`
	OwnerID  string       `json:"ownerId"`
	Players  []PlayerView `json:"players"`
	Settings Settings     `json:"settings"`
	Status   RoomStatus   `json:"status"`
}

type GameStateView struct {
	Phase          GamePhase `json:"phase"`
	CurrentRound   int       `json:"currentRound"`
	TotalRounds    int       `json:"totalRounds"`
	DrawerID       string    `json:"drawerId"`
	DrawerIndex    int       `json:"drawerIndex"`
	GuessedPlayers []string  `json:"guessedPlayers"`
	MaskedWord     string    `json:"maskedWord"`
}

// DrawerStateView is the drawing_started variant sent to the drawer only.
type DrawerStateView struct {
	GameStateView
	Word string `json:"word"`
}

type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// NewGameStateView snapshots the client-safe game state. Caller holds the
// room lock.
func NewGameStateView(g *Game) GameStateView {
	guessed := g.GuessedIDs()
	if guessed == nil {
		guessed = []string{}
	}
	return GameStateView{
		Phase:          g.Phase,
		CurrentRound:   g.CurrentRound,
		TotalRounds:    g.TotalRounds,
		DrawerID:       g.DrawerID,
		DrawerIndex:    g.DrawerIndex,
		GuessedPlayers: guessed,
		MaskedWord:     g.MaskedWord,
	}
}
