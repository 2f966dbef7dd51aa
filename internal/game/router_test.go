package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/server/internal"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	rt := NewRouter(NewWordEngine([]string{"cat"}), nil)
	rt.wordSelectTimeout = 5 * time.Second
	rt.roundPause = 20 * time.Millisecond
	t.Cleanup(rt.Shutdown)
	return rt
}

func dispatch(t *testing.T, rt *Router, session, event string, payload any) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = b
	}
	rt.HandleEvent(session, event, raw)
}

func waitFor(t *testing.T, c *fakeClient, event string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.count(event) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d %s", n, event)
}

// twoPlayerGame connects Alice (owner) and Bob into a started game and
// returns the room code.
func twoPlayerGame(t *testing.T, rt *Router, settings *internal.SettingsInput) (pa, pb *internal.Player, ca, cb *fakeClient, code string) {
	t.Helper()
	ca, cb = &fakeClient{}, &fakeClient{}
	pa = rt.Connect("sa", ca)
	pb = rt.Connect("sb", cb)
	dispatch(t, rt, "sa", internal.EvtSetPlayerName, internal.SetNamePayload{Name: "Alice"})
	dispatch(t, rt, "sb", internal.EvtSetPlayerName, internal.SetNamePayload{Name: "Bob"})

	dispatch(t, rt, "sa", internal.EvtCreateRoom, internal.CreateRoomPayload{Settings: settings})
	created, ok := ca.last(internal.EvtRoomCreated)
	require.True(t, ok)
	code = created.Data.(internal.RoomView).Code

	dispatch(t, rt, "sb", internal.EvtJoinRoom, internal.JoinRoomPayload{RoomID: code})
	require.Equal(t, 1, cb.count(internal.EvtRoomJoined))

	dispatch(t, rt, "sa", internal.EvtStartGame, nil)
	return pa, pb, ca, cb, code
}

func TestConnectGreetsWithIdentity(t *testing.T) {
	rt := newTestRouter(t)
	c := &fakeClient{}
	p := rt.Connect("s1", c)

	msg, ok := c.last(internal.EvtConnected)
	require.True(t, ok)
	data := msg.Data.(internal.ConnectedData)
	assert.Equal(t, p.ID, data.PlayerID)
	assert.Equal(t, p.Name, data.Name)
}

func TestJoinNotifiesExistingMembers(t *testing.T) {
	rt := newTestRouter(t)
	ca, cb := &fakeClient{}, &fakeClient{}
	rt.Connect("sa", ca)
	rt.Connect("sb", cb)

	dispatch(t, rt, "sa", internal.EvtCreateRoom, nil)
	created, _ := ca.last(internal.EvtRoomCreated)
	code := created.Data.(internal.RoomView).Code

	dispatch(t, rt, "sb", internal.EvtJoinRoom, internal.JoinRoomPayload{RoomID: code})

	joined, ok := cb.last(internal.EvtRoomJoined)
	require.True(t, ok)
	assert.Len(t, joined.Data.(internal.RoomView).Players, 2)

	updated, ok := ca.last(internal.EvtRoomUpdated)
	require.True(t, ok)
	assert.Len(t, updated.Data.(internal.RoomView).Players, 2)
}

func TestJoinUnknownRoom(t *testing.T) {
	rt := newTestRouter(t)
	c := &fakeClient{}
	rt.Connect("s1", c)

	dispatch(t, rt, "s1", internal.EvtJoinRoom, internal.JoinRoomPayload{RoomID: "NOPE99"})
	msg, ok := c.last(internal.EvtRoomError)
	require.True(t, ok)
	assert.Equal(t, internal.ErrNotFound, msg.Data.(internal.ErrorData).Code)
}

func TestFullTwoPlayerGame(t *testing.T) {
	rt := newTestRouter(t)
	pa, pb, ca, cb, code := twoPlayerGame(t, rt, &internal.SettingsInput{
		Rounds:   intPtr(1),
		DrawTime: intPtr(80),
	})

	// Round 1: Alice draws.
	require.Equal(t, 1, ca.count(internal.EvtGameStarted))
	require.Equal(t, 1, ca.count(internal.EvtWordOptions))
	assert.Equal(t, 0, cb.count(internal.EvtWordOptions), "options leaked to a guesser")

	opts, _ := ca.last(internal.EvtWordOptions)
	assert.Equal(t, []string{"cat"}, opts.Data.(internal.WordOptionsData).Options)

	dispatch(t, rt, "sa", internal.EvtSelectWord, internal.SelectWordPayload{Word: "cat"})

	sel, ok := cb.last(internal.EvtWordSelected)
	require.True(t, ok)
	assert.Equal(t, "_ _ _", sel.Data.(internal.WordSelectedData).MaskedWord)
	assert.False(t, sel.Data.(internal.WordSelectedData).AutoSelected)

	started, ok := ca.last(internal.EvtDrawingStarted)
	require.True(t, ok)
	assert.Equal(t, "cat", started.Data.(internal.DrawerStateView).Word)
	guesserStarted, ok := cb.last(internal.EvtDrawingStarted)
	require.True(t, ok)
	_, isPublic := guesserStarted.Data.(internal.GameStateView)
	assert.True(t, isPublic, "guesser got the drawer view")

	// Bob guesses wrong, then right 10s into the round.
	room, ok := rt.rooms.Get(code)
	require.True(t, ok)
	room.Mu.Lock()
	room.Game.RoundStartTime = time.Now().Add(-10 * time.Second)
	room.Mu.Unlock()

	dispatch(t, rt, "sb", internal.EvtGuess, internal.GuessPayload{Guess: "zebra"})
	chat, ok := ca.last(internal.EvtChatMessage)
	require.True(t, ok)
	assert.Equal(t, "*****", chat.Data.(internal.ChatMessageData).Message)
	assert.False(t, chat.Data.(internal.ChatMessageData).IsCorrect)

	dispatch(t, rt, "sb", internal.EvtGuess, internal.GuessPayload{Guess: "cat"})
	correct, ok := cb.last(internal.EvtCorrectGuess)
	require.True(t, ok)
	assert.Equal(t, pb.ID, correct.Data.(internal.CorrectGuessData).PlayerID)
	assert.Equal(t, 187, correct.Data.(internal.CorrectGuessData).Score)

	// Everyone guessed, so the round ends at once.
	ended, ok := cb.last(internal.EvtRoundEnded)
	require.True(t, ok)
	endedData := ended.Data.(internal.RoundEndedData)
	assert.Equal(t, "cat", endedData.Word)
	assert.Equal(t, pa.ID, endedData.DrawerID)
	assert.Equal(t, 50, endedData.DrawerScore)
	assert.Equal(t, 1, endedData.Round)
	assert.False(t, endedData.GameEnded)

	// The word never reaches a guesser before the reveal. round_ended carries
	// the reveal itself and word_options only ever goes to the drawer, which
	// Bob becomes in round 2.
	for _, msg := range cb.all() {
		switch msg.Type {
		case internal.EvtRoundEnded, internal.EvtGameEnded, internal.EvtWordOptions:
			continue
		}
		b, err := json.Marshal(msg)
		require.NoError(t, err)
		assert.NotContains(t, string(b), `"cat"`,
			"event %s leaked the word", msg.Type)
	}

	// Round 2 after the pause: Bob draws, Alice guesses right away.
	waitFor(t, cb, internal.EvtWordOptions, 1)
	dispatch(t, rt, "sb", internal.EvtSelectWord, internal.SelectWordPayload{Word: "cat"})
	dispatch(t, rt, "sa", internal.EvtGuess, internal.GuessPayload{Guess: "cat"})

	final, ok := ca.last(internal.EvtRoundEnded)
	require.True(t, ok)
	assert.True(t, final.Data.(internal.RoundEndedData).GameEnded)

	over, ok := ca.last(internal.EvtGameEnded)
	require.True(t, ok)
	overData := over.Data.(internal.GameEndedData)
	assert.Equal(t, 1, overData.RoundsPlayed)
	require.Len(t, overData.Leaderboard, 2)
	assert.Equal(t, pa.ID, overData.Leaderboard[0].PlayerID, "near-instant guess should outscore")
	assert.Equal(t, 237, overData.Leaderboard[1].Score)

	// Only the owner can send everyone back to the lobby.
	dispatch(t, rt, "sb", internal.EvtPlayAgain, nil)
	msg, ok := cb.last(internal.EvtGameError)
	require.True(t, ok)
	assert.Equal(t, internal.ErrNotOwner, msg.Data.(internal.ErrorData).Code)

	dispatch(t, rt, "sa", internal.EvtPlayAgain, nil)
	reset, ok := cb.last(internal.EvtGameReset)
	require.True(t, ok)
	view := reset.Data.(internal.RoomView)
	assert.Equal(t, internal.StatusWaiting, view.Status)
	for _, p := range view.Players {
		assert.Zero(t, p.Score)
	}
}

func TestOnlyDrawerCanDraw(t *testing.T) {
	rt := newTestRouter(t)
	_, _, ca, cb, _ := twoPlayerGame(t, rt, nil)
	dispatch(t, rt, "sa", internal.EvtSelectWord, internal.SelectWordPayload{Word: "cat"})

	dispatch(t, rt, "sb", internal.EvtDrawStart, map[string]string{"color": "red"})
	msg, ok := cb.last(internal.EvtGameError)
	require.True(t, ok)
	assert.Equal(t, internal.ErrNotDrawer, msg.Data.(internal.ErrorData).Code)
	assert.Equal(t, "Only drawer can draw", msg.Data.(internal.ErrorData).Error)

	drawsBefore := ca.count(internal.EvtDrawStart)
	dispatch(t, rt, "sa", internal.EvtDrawStart, map[string]string{"color": "red"})
	dispatch(t, rt, "sa", internal.EvtDrawMove, map[string]int{"x": 1, "y": 2})

	waitFor(t, cb, internal.EvtDrawMove, 1)
	assert.Equal(t, 1, cb.count(internal.EvtDrawStart))
	assert.Equal(t, drawsBefore, ca.count(internal.EvtDrawStart), "relay echoed to the drawer")

	move, _ := cb.last(internal.EvtDrawMove)
	batch, ok := move.Data.([]json.RawMessage)
	require.True(t, ok)
	require.Len(t, batch, 1)
	assert.JSONEq(t, `{"x":1,"y":2}`, string(batch[0]))
}

func TestGuessRejectedOutsideRound(t *testing.T) {
	rt := newTestRouter(t)
	_, _, _, cb, _ := twoPlayerGame(t, rt, nil)

	// Still in word_select.
	dispatch(t, rt, "sb", internal.EvtGuess, internal.GuessPayload{Guess: "cat"})
	msg, ok := cb.last(internal.EvtGameError)
	require.True(t, ok)
	assert.Equal(t, internal.ErrWrongPhase, msg.Data.(internal.ErrorData).Code)
}

func TestWordAutoSelectedOnTimeout(t *testing.T) {
	rt := newTestRouter(t)
	rt.wordSelectTimeout = 30 * time.Millisecond
	_, _, ca, cb, _ := twoPlayerGame(t, rt, nil)

	waitFor(t, cb, internal.EvtWordSelected, 1)
	sel, _ := cb.last(internal.EvtWordSelected)
	assert.True(t, sel.Data.(internal.WordSelectedData).AutoSelected)

	started, ok := ca.last(internal.EvtDrawingStarted)
	require.True(t, ok)
	assert.Equal(t, "cat", started.Data.(internal.DrawerStateView).Word)
}

func TestDrawerLeavingEndsRoundEarly(t *testing.T) {
	rt := newTestRouter(t)
	ca, cb, cc := &fakeClient{}, &fakeClient{}, &fakeClient{}
	pa := rt.Connect("sa", ca)
	pb := rt.Connect("sb", cb)
	rt.Connect("sc", cc)

	dispatch(t, rt, "sa", internal.EvtCreateRoom, nil)
	created, _ := ca.last(internal.EvtRoomCreated)
	code := created.Data.(internal.RoomView).Code
	dispatch(t, rt, "sb", internal.EvtJoinRoom, internal.JoinRoomPayload{RoomID: code})
	dispatch(t, rt, "sc", internal.EvtJoinRoom, internal.JoinRoomPayload{RoomID: code})
	dispatch(t, rt, "sa", internal.EvtStartGame, nil)
	dispatch(t, rt, "sa", internal.EvtSelectWord, internal.SelectWordPayload{Word: "cat"})

	dispatch(t, rt, "sa", internal.EvtLeaveRoom, nil)

	ended, ok := cb.last(internal.EvtRoundEnded)
	require.True(t, ok)
	endedData := ended.Data.(internal.RoundEndedData)
	assert.Equal(t, pa.ID, endedData.DrawerID)
	assert.Zero(t, endedData.DrawerScore)
	assert.False(t, endedData.GameEnded)

	// Ownership moved and the next round goes to the successor drawer.
	updated, _ := cb.last(internal.EvtRoomUpdated)
	assert.Equal(t, pb.ID, updated.Data.(internal.RoomView).OwnerID)
	waitFor(t, cb, internal.EvtWordOptions, 1)
	assert.Equal(t, 0, cc.count(internal.EvtWordOptions))
}

func TestGameAbandonedBelowMinimumPlayers(t *testing.T) {
	rt := newTestRouter(t)
	_, _, ca, _, code := twoPlayerGame(t, rt, nil)
	dispatch(t, rt, "sa", internal.EvtSelectWord, internal.SelectWordPayload{Word: "cat"})

	rt.Disconnect("sb")

	reset, ok := ca.last(internal.EvtGameReset)
	require.True(t, ok)
	assert.Equal(t, internal.StatusWaiting, reset.Data.(internal.RoomView).Status)

	room, ok := rt.rooms.Get(code)
	require.True(t, ok)
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.Nil(t, room.Game)
	assert.Len(t, room.PlayerIDs, 1)
}

func TestEmptyRoomIsDeletedOnDisconnect(t *testing.T) {
	rt := newTestRouter(t)
	c := &fakeClient{}
	rt.Connect("s1", c)
	dispatch(t, rt, "s1", internal.EvtCreateRoom, nil)
	created, _ := c.last(internal.EvtRoomCreated)
	code := created.Data.(internal.RoomView).Code

	rt.Disconnect("s1")
	_, ok := rt.rooms.Get(code)
	assert.False(t, ok)
}
