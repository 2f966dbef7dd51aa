package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/server/internal"
)

func TestMaskWord(t *testing.T) {
	assert.Equal(t, "_ _ _", MaskWord("cat"))
	assert.Equal(t, "_ _ _ _ _", MaskWord("zebra"))
	assert.Equal(t, "_ _ _  _ _ _ _ _", MaskWord("ice cream"))
	assert.Equal(t, "", MaskWord(""))
}

func TestGenerateOptionsDistinct(t *testing.T) {
	we := NewWordEngine([]string{"cat", "dog", "owl", "bee", "fox"})
	settings := internal.DefaultSettings()

	opts := we.GenerateOptions(settings)
	require.Len(t, opts, 3)
	seen := map[string]bool{}
	for _, w := range opts {
		assert.False(t, seen[w], "option %q repeated", w)
		seen[w] = true
		assert.Contains(t, we.Pool(settings), w)
	}
}

func TestGenerateOptionsIncludesCustomWords(t *testing.T) {
	we := NewWordEngine([]string{"cat"})
	settings := internal.DefaultSettings()
	settings.CustomWords = []string{"spaceship", "cat"}

	pool := we.Pool(settings)
	assert.ElementsMatch(t, []string{"cat", "spaceship"}, pool)
}

func TestSelectWordGuards(t *testing.T) {
	we := NewWordEngine([]string{"cat"})
	room := &internal.Room{
		Settings: internal.DefaultSettings(),
		Game: &internal.Game{
			Phase:    internal.PhaseWordSelect,
			DrawerID: "drawer",
			Guessed:  make(map[string]*internal.GuessRecord),
		},
	}

	err := we.SelectWord(room, "guesser", "cat", time.Now())
	e, _ := internal.AsGameError(err)
	assert.Equal(t, internal.ErrNotDrawer, e.Code)

	err = we.SelectWord(room, "drawer", "   ", time.Now())
	e, _ = internal.AsGameError(err)
	assert.Equal(t, internal.ErrNoWord, e.Code)

	now := time.Now()
	require.NoError(t, we.SelectWord(room, "drawer", "  CaT ", now))
	g := room.Game
	assert.Equal(t, internal.PhaseDrawing, g.Phase)
	assert.True(t, g.MatchesWord("cat"))
	assert.Equal(t, "_ _ _", g.MaskedWord)
	assert.Equal(t, now, g.RoundStartTime)

	err = we.SelectWord(room, "drawer", "dog", time.Now())
	e, _ = internal.AsGameError(err)
	assert.Equal(t, internal.ErrWrongPhase, e.Code)
}

func TestAutoSelect(t *testing.T) {
	we := NewWordEngine([]string{"cat"})
	room := &internal.Room{
		Settings: internal.DefaultSettings(),
		Game: &internal.Game{
			Phase:    internal.PhaseWordSelect,
			DrawerID: "drawer",
			Guessed:  make(map[string]*internal.GuessRecord),
		},
	}

	word := we.AutoSelect(room, time.Now())
	assert.Equal(t, "cat", word)
	assert.Equal(t, internal.PhaseDrawing, room.Game.Phase)
	assert.True(t, room.Game.WordIsSet())
}

func TestHintSchedule(t *testing.T) {
	schedule := HintSchedule("cat")
	require.Len(t, schedule, 4)
	assert.Equal(t, []int{2}, schedule[0])
	assert.Empty(t, schedule[1])
	assert.Equal(t, []int{1}, schedule[2])
	assert.Equal(t, []int{0}, schedule[3])

	// Spaces are never revealed.
	for _, quarter := range HintSchedule("ice cream") {
		assert.NotContains(t, quarter, 3)
	}
}
