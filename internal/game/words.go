package game

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/drawdash/server/internal"
)

const wordOptionCount = 3

// WordEngine picks word options, applies the selection and builds masks.
// Methods that touch room state assume the caller holds the room lock.
type WordEngine struct {
	builtin []string
}

func NewWordEngine(builtin []string) *WordEngine {
	return &WordEngine{builtin: builtin}
}

// DefaultWordEngine uses the bundled word list.
func DefaultWordEngine() *WordEngine {
	return NewWordEngine(builtinWords)
}

// Pool is the builtin list merged with the room's custom words, deduped.
func (we *WordEngine) Pool(settings internal.Settings) []string {
	seen := make(map[string]struct{}, len(we.builtin)+len(settings.CustomWords))
	pool := make([]string, 0, len(we.builtin)+len(settings.CustomWords))
	for _, w := range we.builtin {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}
	for _, w := range settings.CustomWords {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}
	return pool
}

// GenerateOptions draws up to 3 distinct words from the pool.
func (we *WordEngine) GenerateOptions(settings internal.Settings) []string {
	pool := we.Pool(settings)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	n := wordOptionCount
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

// SelectWord applies the drawer's pick and flips the game into the drawing
// phase. Any non-empty word is accepted.
func (we *WordEngine) SelectWord(room *internal.Room, playerID, raw string, now time.Time) error {
	g := room.Game
	if g == nil || g.Phase != internal.PhaseWordSelect {
		return internal.Errf(internal.ErrWrongPhase, "Not selecting a word right now")
	}
	if g.DrawerID != playerID {
		return internal.Errf(internal.ErrNotDrawer, "Only the drawer can select a word")
	}
	word := strings.ToLower(strings.TrimSpace(raw))
	if word == "" {
		return internal.Errf(internal.ErrNoWord, "Word cannot be empty")
	}
	g.BeginDrawing(word, MaskWord(word), now)
	return nil
}

// AutoSelect picks a word on the drawer's behalf after the selection timer
// expires.
func (we *WordEngine) AutoSelect(room *internal.Room, now time.Time) string {
	options := we.GenerateOptions(room.Settings)
	word := options[0]
	room.Game.BeginDrawing(word, MaskWord(word), now)
	return word
}

// MaskWord replaces every letter with an underscore. Letters within a word
// are joined by single spaces and words by double spaces, so "ice cream"
// masks to "_ _ _  _ _ _ _ _".
func MaskWord(word string) string {
	parts := strings.Split(word, " ")
	masked := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		letters := make([]string, len([]rune(part)))
		for i := range letters {
			letters[i] = "_"
		}
		masked = append(masked, strings.Join(letters, " "))
	}
	return strings.Join(masked, "  ")
}

// HintSchedule returns reveal offsets into the word for each quarter of the
// draw time. Quarter k reveals positions congruent to (2,3,1,0) mod 4 in
// turn; spaces are never revealed.
func HintSchedule(word string) [][]int {
	runes := []rune(word)
	starts := []int{2, 3, 1, 0}
	schedule := make([][]int, len(starts))
	for q, start := range starts {
		var idxs []int
		for i := start; i < len(runes); i += 4 {
			if runes[i] == ' ' {
				continue
			}
			idxs = append(idxs, i)
		}
		schedule[q] = idxs
	}
	return schedule
}
