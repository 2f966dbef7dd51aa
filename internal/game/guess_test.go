package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/server/internal"
)

func drawingRoom(t *testing.T, word string) *internal.Room {
	t.Helper()
	room := &internal.Room{
		PlayerIDs: []string{"drawer", "g1", "g2"},
		Settings:  internal.DefaultSettings(),
		Status:    internal.StatusInGame,
		Game: &internal.Game{
			Phase:    internal.PhaseWordSelect,
			DrawerID: "drawer",
			Guessed:  make(map[string]*internal.GuessRecord),
		},
	}
	if word != "" {
		room.Game.BeginDrawing(word, MaskWord(word), time.Now())
	} else {
		room.Game.Phase = internal.PhaseDrawing
	}
	return room
}

func TestEvaluateValidationOrder(t *testing.T) {
	gu := NewGuessEngine()

	room := drawingRoom(t, "cat")
	room.Game.Phase = internal.PhaseWordSelect
	_, err := gu.Evaluate(room, "g1", "cat", time.Now())
	e, _ := internal.AsGameError(err)
	assert.Equal(t, internal.ErrWrongPhase, e.Code)

	room = drawingRoom(t, "cat")
	_, err = gu.Evaluate(room, "drawer", "cat", time.Now())
	e, _ = internal.AsGameError(err)
	assert.Equal(t, internal.ErrDrawerCannotGuess, e.Code)

	room.Game.Guessed["g1"] = &internal.GuessRecord{At: time.Now()}
	_, err = gu.Evaluate(room, "g1", "cat", time.Now())
	e, _ = internal.AsGameError(err)
	assert.Equal(t, internal.ErrAlreadyGuessed, e.Code)

	noWord := drawingRoom(t, "")
	_, err = gu.Evaluate(noWord, "g1", "cat", time.Now())
	e, _ = internal.AsGameError(err)
	assert.Equal(t, internal.ErrNoWord, e.Code)

	room = drawingRoom(t, "cat")
	_, err = gu.Evaluate(room, "g1", "   ", time.Now())
	e, _ = internal.AsGameError(err)
	assert.Equal(t, internal.ErrTooShort, e.Code)

	_, err = gu.Evaluate(room, "g1", strings.Repeat("a", internal.MaxGuessLen+1), time.Now())
	e, _ = internal.AsGameError(err)
	assert.Equal(t, internal.ErrTooLong, e.Code)
}

func TestEvaluateGuessLengthCountsRunes(t *testing.T) {
	gu := NewGuessEngine()
	room := drawingRoom(t, "cat")

	// 50 multi-byte runes are within the limit even though the byte count
	// is not.
	correct, err := gu.Evaluate(room, "g1", strings.Repeat("ñ", internal.MaxGuessLen), time.Now())
	require.NoError(t, err)
	assert.False(t, correct)

	_, err = gu.Evaluate(room, "g2", strings.Repeat("ñ", internal.MaxGuessLen+1), time.Now())
	e, _ := internal.AsGameError(err)
	assert.Equal(t, internal.ErrTooLong, e.Code)
}

func TestEvaluateWrongGuessIsNotAnError(t *testing.T) {
	gu := NewGuessEngine()
	room := drawingRoom(t, "cat")

	correct, err := gu.Evaluate(room, "g1", "zebra", time.Now())
	require.NoError(t, err)
	assert.False(t, correct)
	assert.False(t, room.Game.HasGuessed("g1"))
}

func TestEvaluateCorrectGuessRecorded(t *testing.T) {
	gu := NewGuessEngine()
	room := drawingRoom(t, "cat")
	at := time.Now()

	correct, err := gu.Evaluate(room, "g1", "  CAT ", at)
	require.NoError(t, err)
	assert.True(t, correct)
	require.True(t, room.Game.HasGuessed("g1"))
	assert.Equal(t, at, room.Game.Guessed["g1"].At)

	assert.False(t, gu.AllGuessersGuessed(room))
	correct, err = gu.Evaluate(room, "g2", "cat", time.Now())
	require.NoError(t, err)
	assert.True(t, correct)
	assert.True(t, gu.AllGuessersGuessed(room))
}
