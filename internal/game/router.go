package game

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/drawdash/server/internal"
)

// Archive records finished matches. Implementations must be safe for
// concurrent use; a nil Archive disables recording.
type Archive interface {
	SaveMatch(ctx context.Context, rec internal.MatchRecord) error
}

// Router owns the engines and turns inbound events into state changes and
// fan-out. Handlers lock a room, run engine calls, snapshot the outbound
// payloads, unlock, and only then touch timers and sockets. Timer callbacks
// re-enter through the same pattern.
type Router struct {
	players *PlayerRegistry
	rooms   *RoomRegistry
	flow    *GameEngine
	words   *WordEngine
	guesses *GuessEngine
	scores  *ScoreEngine
	timers  *TimerService
	relay   *DrawingRelay
	archive Archive

	wordSelectTimeout time.Duration
	roundPause        time.Duration
}

func NewRouter(words *WordEngine, archive Archive) *Router {
	players := NewPlayerRegistry()
	rt := &Router{
		players: players,
		rooms:   NewRoomRegistry(players),
		flow:    NewGameEngine(players),
		words:   words,
		guesses: NewGuessEngine(),
		scores:  NewScoreEngine(players),
		timers:  NewTimerService(),
		archive: archive,

		wordSelectTimeout: internal.WordSelectDuration,
		roundPause:        internal.RoundPauseDuration,
	}
	rt.relay = NewDrawingRelay(rt.relaySend)
	return rt
}

// Shutdown cancels every running timer.
func (rt *Router) Shutdown() {
	rt.timers.StopAll()
}

// Connect registers a fresh session and greets it with its identity.
func (rt *Router) Connect(session string, client internal.Client) *internal.Player {
	p := rt.players.Connect(session, client)
	rt.sendTo(p, internal.EvtConnected, internal.ConnectedData{PlayerID: p.ID, Name: p.Name})
	return p
}

// Disconnect tears the session down, running the leave flow if the player
// was in a room.
func (rt *Router) Disconnect(session string) {
	p := rt.players.Remove(session)
	if p == nil {
		return
	}
	if p.RoomCode != "" {
		rt.playerLeft(p, p.RoomCode, false)
	}
	log.Printf("[Router] session %s disconnected (player %s)", session, p.ID)
}

// HandleEvent dispatches one inbound event. Malformed payloads are logged
// and dropped; domain failures go back to the sender as error events.
func (rt *Router) HandleEvent(session, msgType string, raw json.RawMessage) {
	p, ok := rt.players.BySession(session)
	if !ok {
		log.Printf("[Router] event %q from unknown session %s", msgType, session)
		return
	}

	switch msgType {
	case internal.EvtSetPlayerName:
		rt.handleSetName(p, raw)
	case internal.EvtCreateRoom:
		rt.handleCreateRoom(p, raw)
	case internal.EvtJoinRoom:
		rt.handleJoinRoom(p, raw)
	case internal.EvtLeaveRoom:
		rt.handleLeaveRoom(p)
	case internal.EvtUpdateSettings:
		rt.handleUpdateSettings(p, raw)
	case internal.EvtStartGame:
		rt.handleStartGame(p)
	case internal.EvtSelectWord:
		rt.handleSelectWord(p, raw)
	case internal.EvtDrawStart, internal.EvtDrawMove, internal.EvtDrawEnd, internal.EvtClearCanvas:
		rt.handleDraw(p, msgType, raw)
	case internal.EvtGuess:
		rt.handleGuess(p, raw)
	case internal.EvtPlayAgain:
		rt.handlePlayAgain(p)
	default:
		log.Printf("[Router] unknown event %q from player %s", msgType, p.ID)
	}
}

// ---- lobby handlers ----

func (rt *Router) handleSetName(p *internal.Player, raw json.RawMessage) {
	var payload internal.SetNamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("[Router] bad set_player_name payload from %s: %v", p.ID, err)
		return
	}
	if err := rt.players.SetName(p.ID, payload.Name); err != nil {
		rt.sendError(p, internal.EvtGameError, err)
		return
	}
	rt.sendTo(p, internal.EvtPlayerUpdated, internal.ConnectedData{
		PlayerID: p.ID,
		Name:     rt.players.NameOf(p.ID),
	})

	if p.RoomCode != "" {
		if room, ok := rt.rooms.Get(p.RoomCode); ok {
			rt.broadcastRoomUpdated(room)
		}
	}
}

func (rt *Router) handleCreateRoom(p *internal.Player, raw json.RawMessage) {
	var payload internal.CreateRoomPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			log.Printf("[Router] bad create_room payload from %s: %v", p.ID, err)
			return
		}
	}
	room, err := rt.rooms.Create(p.ID, payload.Settings)
	if err != nil {
		rt.sendError(p, internal.EvtRoomError, err)
		return
	}
	rt.sendTo(p, internal.EvtRoomCreated, rt.rooms.Serialize(room))
}

func (rt *Router) handleJoinRoom(p *internal.Player, raw json.RawMessage) {
	var payload internal.JoinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("[Router] bad join_room payload from %s: %v", p.ID, err)
		return
	}
	room, err := rt.rooms.Join(p.ID, payload.RoomID)
	if err != nil {
		rt.sendError(p, internal.EvtRoomError, err)
		return
	}

	view := rt.rooms.Serialize(room)
	rt.sendTo(p, internal.EvtRoomJoined, view)
	rt.broadcastExcept(room, p.ID, internal.EvtRoomUpdated, view)
}

func (rt *Router) handleLeaveRoom(p *internal.Player) {
	if p.RoomCode == "" {
		rt.sendError(p, internal.EvtRoomError,
			internal.Errf(internal.ErrNotFound, "You are not in a room"))
		return
	}
	code := p.RoomCode
	rt.playerLeft(p, code, true)
}

func (rt *Router) handleUpdateSettings(p *internal.Player, raw json.RawMessage) {
	var payload internal.UpdateSettingsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("[Router] bad update_room_settings payload from %s: %v", p.ID, err)
		return
	}
	room, ok := rt.rooms.Get(p.RoomCode)
	if !ok {
		rt.sendError(p, internal.EvtRoomSettingsError,
			internal.Errf(internal.ErrNotFound, "You are not in a room"))
		return
	}
	if err := rt.rooms.UpdateSettings(room, p.ID, payload.Settings); err != nil {
		rt.sendError(p, internal.EvtRoomSettingsError, err)
		return
	}

	room.Mu.RLock()
	settings := room.Settings
	ids := append([]string(nil), room.PlayerIDs...)
	room.Mu.RUnlock()
	rt.sendToIDs(ids, internal.EvtRoomSettingsUpdated, settings)
}

// ---- game handlers ----

func (rt *Router) handleStartGame(p *internal.Player) {
	room, ok := rt.rooms.Get(p.RoomCode)
	if !ok {
		rt.sendError(p, internal.EvtGameError,
			internal.Errf(internal.ErrNotFound, "You are not in a room"))
		return
	}

	room.Mu.Lock()
	if err := rt.flow.StartGame(room, p.ID); err != nil {
		room.Mu.Unlock()
		rt.sendError(p, internal.EvtGameError, err)
		return
	}
	view := rt.rooms.serializeLocked(room)
	state := internal.NewGameStateView(room.Game)
	ids := append([]string(nil), room.PlayerIDs...)
	room.Mu.Unlock()

	rt.sendToIDs(ids, internal.EvtGameStarted, state)
	rt.sendToIDs(ids, internal.EvtRoomUpdated, view)
	rt.enterWordSelect(room)
}

// enterWordSelect opens the word_select phase for the current drawer:
// round_started to everyone, the options to the drawer only, and the
// selection timer armed. Call with the room unlocked.
func (rt *Router) enterWordSelect(room *internal.Room) {
	room.Mu.Lock()
	g := room.Game
	if g == nil || g.Phase != internal.PhaseWordSelect {
		room.Mu.Unlock()
		return
	}
	options := rt.words.GenerateOptions(room.Settings)
	state := internal.NewGameStateView(g)
	drawerID := g.DrawerID
	ids := append([]string(nil), room.PlayerIDs...)
	code := room.Code
	room.Mu.Unlock()

	rt.sendToIDs(ids, internal.EvtRoundStarted, state)
	if drawer, ok := rt.players.ByID(drawerID); ok {
		rt.sendTo(drawer, internal.EvtWordOptions, internal.WordOptionsData{
			Options: options,
			Timeout: int(rt.wordSelectTimeout.Seconds()),
		})
	}
	rt.timers.Start(code, internal.TimerWordSelection, rt.wordSelectTimeout,
		rt.tickBroadcast(internal.TimerWordSelection), rt.onWordSelectExpired)
}

func (rt *Router) handleSelectWord(p *internal.Player, raw json.RawMessage) {
	var payload internal.SelectWordPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("[Router] bad select_word payload from %s: %v", p.ID, err)
		return
	}
	room, ok := rt.rooms.Get(p.RoomCode)
	if !ok {
		rt.sendError(p, internal.EvtGameError,
			internal.Errf(internal.ErrNotFound, "You are not in a room"))
		return
	}

	room.Mu.Lock()
	if err := rt.words.SelectWord(room, p.ID, payload.Word, time.Now()); err != nil {
		room.Mu.Unlock()
		rt.sendError(p, internal.EvtGameError, err)
		return
	}
	room.Mu.Unlock()

	rt.startDrawing(room, false)
}

// onWordSelectExpired auto-selects a word for a drawer who ran the clock out.
func (rt *Router) onWordSelectExpired(code string) {
	room, ok := rt.rooms.Get(code)
	if !ok {
		return
	}
	room.Mu.Lock()
	g := room.Game
	if g == nil || g.Phase != internal.PhaseWordSelect {
		room.Mu.Unlock()
		return
	}
	word := rt.words.AutoSelect(room, time.Now())
	room.Mu.Unlock()

	log.Printf("[Router] room %s auto-selected a word (%d letters)", code, len(word))
	rt.startDrawing(room, true)
}

// startDrawing fans out the freshly started drawing phase: word_selected to
// everyone, the full state (with the word) to the drawer, the masked state to
// the rest, and the draw clock armed. Call with the room unlocked.
func (rt *Router) startDrawing(room *internal.Room, autoSelected bool) {
	room.Mu.Lock()
	g := room.Game
	if g == nil || g.Phase != internal.PhaseDrawing {
		room.Mu.Unlock()
		return
	}
	state := internal.NewGameStateView(g)
	drawerState := internal.DrawerStateView{GameStateView: state, Word: g.RevealWord()}
	masked := g.MaskedWord
	drawerID := g.DrawerID
	drawTime := time.Duration(room.Settings.DrawTime) * time.Second
	ids := append([]string(nil), room.PlayerIDs...)
	code := room.Code
	room.Mu.Unlock()

	rt.sendToIDs(ids, internal.EvtWordSelected, internal.WordSelectedData{
		MaskedWord:   masked,
		AutoSelected: autoSelected,
	})
	for _, id := range ids {
		member, ok := rt.players.ByID(id)
		if !ok {
			continue
		}
		if id == drawerID {
			rt.sendTo(member, internal.EvtDrawingStarted, drawerState)
		} else {
			rt.sendTo(member, internal.EvtDrawingStarted, state)
		}
	}
	rt.timers.Start(code, internal.TimerDrawing, drawTime,
		rt.tickBroadcast(internal.TimerDrawing), rt.onDrawExpired)
}

func (rt *Router) handleDraw(p *internal.Player, event string, raw json.RawMessage) {
	room, ok := rt.rooms.Get(p.RoomCode)
	if !ok {
		rt.sendError(p, internal.EvtGameError,
			internal.Errf(internal.ErrNotFound, "You are not in a room"))
		return
	}

	room.Mu.RLock()
	g := room.Game
	var err *internal.GameError
	switch {
	case g == nil || g.Phase != internal.PhaseDrawing:
		err = internal.Errf(internal.ErrWrongPhase, "No round in progress")
	case g.DrawerID != p.ID:
		err = internal.Errf(internal.ErrNotDrawer, "Only drawer can draw")
	}
	code := room.Code
	room.Mu.RUnlock()

	if err != nil {
		rt.sendError(p, internal.EvtGameError, err)
		return
	}
	if event == internal.EvtDrawMove {
		rt.relay.Move(code, raw)
		return
	}
	rt.relay.Interrupt(code, event, raw)
}

func (rt *Router) handleGuess(p *internal.Player, raw json.RawMessage) {
	var payload internal.GuessPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("[Router] bad guess payload from %s: %v", p.ID, err)
		return
	}
	room, ok := rt.rooms.Get(p.RoomCode)
	if !ok {
		rt.sendError(p, internal.EvtGameError,
			internal.Errf(internal.ErrNotFound, "You are not in a room"))
		return
	}

	now := time.Now()
	name := rt.players.NameOf(p.ID)
	room.Mu.Lock()
	correct, err := rt.guesses.Evaluate(room, p.ID, payload.Guess, now)
	if err != nil {
		room.Mu.Unlock()
		rt.sendError(p, internal.EvtGameError, err)
		return
	}
	ids := append([]string(nil), room.PlayerIDs...)

	if !correct {
		guessLen := len([]rune(rt.guesses.Normalize(payload.Guess)))
		room.Mu.Unlock()
		rt.sendToIDs(ids, internal.EvtChatMessage, internal.ChatMessageData{
			PlayerID:  p.ID,
			Name:      name,
			Message:   strings.Repeat("*", guessLen),
			IsCorrect: false,
		})
		return
	}

	points := rt.scores.GuesserAward(room, p.ID, now)
	leaderboard := rt.scores.Leaderboard(room)
	allGuessed := rt.guesses.AllGuessersGuessed(room)
	room.Mu.Unlock()

	rt.sendToIDs(ids, internal.EvtCorrectGuess, internal.CorrectGuessData{
		PlayerID: p.ID,
		Name:     name,
		Score:    points,
	})
	rt.sendToIDs(ids, internal.EvtLeaderboardUpdate, leaderboard)

	if allGuessed {
		rt.endRound(room)
	}
}

// onDrawExpired ends the round when the draw clock runs out.
func (rt *Router) onDrawExpired(code string) {
	room, ok := rt.rooms.Get(code)
	if !ok {
		return
	}
	rt.endRound(room)
}

// endRound closes the active round: drawer award, reveal, leaderboard, and
// either the inter-round pause or the end of the game. Safe to call twice;
// only an active round is closed. Call with the room unlocked.
func (rt *Router) endRound(room *internal.Room) {
	room.Mu.Lock()
	g := room.Game
	if g == nil || (g.Phase != internal.PhaseDrawing && g.Phase != internal.PhaseWordSelect) {
		room.Mu.Unlock()
		return
	}
	drawerScore := rt.scores.DrawerAward(room)
	word := g.RevealWord()
	drawerID := g.DrawerID
	round := g.CurrentRound
	gameEnded := rt.flow.EndRound(room)
	leaderboard := rt.scores.Leaderboard(room)
	g.ClearWordSelection()
	ids := append([]string(nil), room.PlayerIDs...)
	code := room.Code
	room.Mu.Unlock()

	rt.timers.Stop(code)
	rt.relay.Reset(code)

	rt.sendToIDs(ids, internal.EvtRoundEnded, internal.RoundEndedData{
		Word:        word,
		DrawerID:    drawerID,
		DrawerScore: drawerScore,
		Round:       round,
		GameEnded:   gameEnded,
	})
	rt.sendToIDs(ids, internal.EvtLeaderboardUpdate, leaderboard)

	if gameEnded {
		rt.finishGame(room)
		return
	}
	rt.timers.Start(code, internal.TimerRoundPause, rt.roundPause, nil, rt.onPauseExpired)
}

// onPauseExpired advances the rotation and opens the next word_select.
func (rt *Router) onPauseExpired(code string) {
	room, ok := rt.rooms.Get(code)
	if !ok {
		return
	}
	room.Mu.Lock()
	g := room.Game
	if g == nil || room.Status != internal.StatusInGame {
		room.Mu.Unlock()
		return
	}
	rt.flow.ProgressToNextDrawer(room)
	rt.flow.StartRound(room)
	room.Mu.Unlock()

	rt.enterWordSelect(room)
}

// finishGame closes the match: final leaderboard out, timers down, and the
// record handed to the archive. Call with the room unlocked.
func (rt *Router) finishGame(room *internal.Room) {
	room.Mu.Lock()
	roundsPlayed := rt.flow.EndGame(room)
	leaderboard := rt.scores.Leaderboard(room)
	rec := internal.MatchRecord{
		RoomCode:    room.Code,
		Rounds:      roundsPlayed,
		Players:     len(room.PlayerIDs),
		Leaderboard: leaderboard,
		FinishedAt:  time.Now(),
	}
	ids := append([]string(nil), room.PlayerIDs...)
	code := room.Code
	room.Mu.Unlock()

	rt.timers.Stop(code)
	rt.relay.Reset(code)

	rt.sendToIDs(ids, internal.EvtGameEnded, internal.GameEndedData{
		RoundsPlayed: roundsPlayed,
		Leaderboard:  leaderboard,
	})

	if rt.archive != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rt.archive.SaveMatch(ctx, rec); err != nil {
				log.Printf("[Router] archiving match for room %s failed: %v", rec.RoomCode, err)
			}
		}()
	}
}

func (rt *Router) handlePlayAgain(p *internal.Player) {
	room, ok := rt.rooms.Get(p.RoomCode)
	if !ok {
		rt.sendError(p, internal.EvtGameError,
			internal.Errf(internal.ErrNotFound, "You are not in a room"))
		return
	}

	room.Mu.Lock()
	if room.Status != internal.StatusFinished {
		room.Mu.Unlock()
		rt.sendError(p, internal.EvtGameError,
			internal.Errf(internal.ErrWrongPhase, "Game is not finished"))
		return
	}
	if room.OwnerID != p.ID {
		room.Mu.Unlock()
		rt.sendError(p, internal.EvtGameError,
			internal.Errf(internal.ErrNotOwner, "Only the room owner can restart"))
		return
	}
	rt.flow.ResetGame(room)
	view := rt.rooms.serializeLocked(room)
	ids := append([]string(nil), room.PlayerIDs...)
	code := room.Code
	room.Mu.Unlock()

	rt.timers.Stop(code)
	rt.relay.Reset(code)
	rt.sendToIDs(ids, internal.EvtGameReset, view)
}

// ---- leave / disconnect ----

// playerLeft runs the shared leave flow. notify controls whether the leaver
// still has a live session to receive room_left.
func (rt *Router) playerLeft(p *internal.Player, code string, notify bool) {
	res, err := rt.rooms.Leave(p.ID, code)
	if err != nil {
		if notify {
			rt.sendError(p, internal.EvtRoomError, err)
		}
		return
	}
	if notify {
		rt.sendTo(p, internal.EvtRoomLeft, struct {
			RoomCode string `json:"roomCode"`
		}{RoomCode: code})
	}

	if res.RoomDeleted {
		rt.timers.Stop(code)
		rt.relay.Reset(code)
		return
	}

	room := res.Room
	room.Mu.Lock()
	g := room.Game
	if g == nil || room.Status != internal.StatusInGame {
		view := rt.rooms.serializeLocked(room)
		ids := append([]string(nil), room.PlayerIDs...)
		room.Mu.Unlock()
		rt.sendToIDs(ids, internal.EvtRoomUpdated, view)
		return
	}

	// Too few players to keep playing: abandon the game.
	if len(room.PlayerIDs) < internal.MinPlayersPerRoom {
		rt.flow.ResetGame(room)
		view := rt.rooms.serializeLocked(room)
		ids := append([]string(nil), room.PlayerIDs...)
		room.Mu.Unlock()

		rt.timers.Stop(code)
		rt.relay.Reset(code)
		rt.sendToIDs(ids, internal.EvtGameReset, view)
		return
	}

	phase := g.Phase
	wasDrawer, wrapped := rt.flow.AdjustRotationAfterLeave(room, res.RemovedIndex)
	gameOver := wrapped && g.CurrentRound > g.TotalRounds
	view := rt.rooms.serializeLocked(room)
	ids := append([]string(nil), room.PlayerIDs...)

	// The drawer walking out mid-round ends the round with no drawer award.
	if wasDrawer && (phase == internal.PhaseWordSelect || phase == internal.PhaseDrawing) {
		word := g.RevealWord()
		round := g.CurrentRound
		if wrapped {
			round--
		}
		if err := rt.flow.TransitionPhase(g, internal.PhaseRoundEnd); err != nil {
			log.Printf("[Router] room %s phase transition failed: %v", code, err)
		}
		g.ClearWordSelection()
		leaderboard := rt.scores.Leaderboard(room)
		room.Mu.Unlock()

		rt.timers.Stop(code)
		rt.relay.Reset(code)
		rt.sendToIDs(ids, internal.EvtRoomUpdated, view)
		rt.sendToIDs(ids, internal.EvtRoundEnded, internal.RoundEndedData{
			Word:        word,
			DrawerID:    p.ID,
			DrawerScore: 0,
			Round:       round,
			GameEnded:   gameOver,
		})
		rt.sendToIDs(ids, internal.EvtLeaderboardUpdate, leaderboard)

		if gameOver {
			rt.finishGame(room)
			return
		}
		rt.timers.Start(code, internal.TimerRoundPause, rt.roundPause, nil, rt.onPauseExpired)
		return
	}

	// A guesser left; the round may now be complete without them.
	roundDone := phase == internal.PhaseDrawing && rt.guesses.AllGuessersGuessed(room)
	room.Mu.Unlock()

	rt.sendToIDs(ids, internal.EvtRoomUpdated, view)
	if roundDone {
		rt.endRound(room)
	}
}

// ---- fan-out helpers ----

func (rt *Router) sendTo(p *internal.Player, event string, data any) {
	if p == nil || p.Client == nil {
		return
	}
	p.Client.Send(internal.Envelope{Type: event, Data: data})
}

func (rt *Router) sendToIDs(ids []string, event string, data any) {
	for _, id := range ids {
		if p, ok := rt.players.ByID(id); ok {
			rt.sendTo(p, event, data)
		}
	}
}

func (rt *Router) broadcastExcept(room *internal.Room, exceptID, event string, data any) {
	room.Mu.RLock()
	ids := make([]string, 0, len(room.PlayerIDs))
	for _, id := range room.PlayerIDs {
		if id != exceptID {
			ids = append(ids, id)
		}
	}
	room.Mu.RUnlock()
	rt.sendToIDs(ids, event, data)
}

func (rt *Router) broadcastRoomUpdated(room *internal.Room) {
	view := rt.rooms.Serialize(room)
	room.Mu.RLock()
	ids := append([]string(nil), room.PlayerIDs...)
	room.Mu.RUnlock()
	rt.sendToIDs(ids, internal.EvtRoomUpdated, view)
}

func (rt *Router) sendError(p *internal.Player, event string, err error) {
	ge, ok := internal.AsGameError(err)
	if !ok {
		ge = internal.Errf(internal.ErrInvalidPayload, err.Error())
	}
	rt.sendTo(p, event, internal.ErrorData{Code: ge.Code, Error: ge.Message})
}

// relaySend resolves the room's current non-drawers and delivers one relay
// event to them. Wired into the DrawingRelay at construction.
func (rt *Router) relaySend(roomCode, event string, data any) {
	room, ok := rt.rooms.Get(roomCode)
	if !ok {
		return
	}
	room.Mu.RLock()
	drawerID := ""
	if room.Game != nil {
		drawerID = room.Game.DrawerID
	}
	ids := make([]string, 0, len(room.PlayerIDs))
	for _, id := range room.PlayerIDs {
		if id != drawerID {
			ids = append(ids, id)
		}
	}
	room.Mu.RUnlock()
	rt.sendToIDs(ids, event, data)
}

// tickBroadcast builds the once-per-second countdown fan-out for a timer.
func (rt *Router) tickBroadcast(kind internal.TimerKind) func(string, int) {
	return func(code string, remaining int) {
		room, ok := rt.rooms.Get(code)
		if !ok {
			return
		}
		room.Mu.RLock()
		ids := append([]string(nil), room.PlayerIDs...)
		room.Mu.RUnlock()
		rt.sendToIDs(ids, internal.EvtTimerTick, internal.TimerTickData{
			Remaining: remaining,
			Type:      kind,
		})
	}
}
