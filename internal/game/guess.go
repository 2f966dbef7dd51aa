package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/drawdash/server/internal"
)

// GuessEngine adjudicates guesses. Methods assume the caller holds the room
// lock.
type GuessEngine struct{}

func NewGuessEngine() *GuessEngine {
	return &GuessEngine{}
}

// Normalize trims whitespace and lowercases; matching is exact after this.
func (gu *GuessEngine) Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Evaluate validates the guess and, when correct, records it against the
// round at the given time. A wrong guess returns (false, nil): it is not an
// error, it becomes chat.
func (gu *GuessEngine) Evaluate(room *internal.Room, playerID, raw string, at time.Time) (correct bool, err error) {
	g := room.Game
	if g == nil || g.Phase != internal.PhaseDrawing {
		return false, internal.Errf(internal.ErrWrongPhase, "No round in progress")
	}
	if g.DrawerID == playerID {
		return false, internal.Errf(internal.ErrDrawerCannotGuess, "The drawer cannot guess")
	}
	if g.HasGuessed(playerID) {
		return false, internal.Errf(internal.ErrAlreadyGuessed, "You already guessed the word")
	}
	if !g.WordIsSet() {
		return false, internal.Errf(internal.ErrNoWord, "No word has been selected")
	}

	guess := gu.Normalize(raw)
	if guess == "" {
		return false, internal.Errf(internal.ErrTooShort, "Guess cannot be empty")
	}
	if utf8.RuneCountInString(guess) > internal.MaxGuessLen {
		return false, internal.Errf(internal.ErrTooLong, "Guess is too long")
	}

	if !g.MatchesWord(guess) {
		return false, nil
	}
	g.Guessed[playerID] = &internal.GuessRecord{At: at}
	return true, nil
}

// AllGuessersGuessed reports whether every non-drawer member has guessed
// correctly this round.
func (gu *GuessEngine) AllGuessersGuessed(room *internal.Room) bool {
	g := room.Game
	if g == nil {
		return false
	}
	return len(g.Guessed) >= len(room.PlayerIDs)-1
}
