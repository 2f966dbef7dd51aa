package internal

// Message is the envelope for every event crossing the transport, inbound
// and outbound alike.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Envelope is the concrete outbound form.
type Envelope = Message[any]

// Inbound event names.
const (
	EvtSetPlayerName  = "set_player_name"
	EvtCreateRoom     = "create_room"
	EvtJoinRoom       = "join_room"
	EvtLeaveRoom      = "leave_room"
	EvtUpdateSettings = "update_room_settings"
	EvtStartGame      = "start_game"
	EvtSelectWord     = "select_word"
	EvtDrawStart      = "draw_start"
	EvtDrawMove       = "draw_move"
	EvtDrawEnd        = "draw_end"
	EvtClearCanvas    = "clear_canvas"
	EvtGuess          = "guess"
	EvtPlayAgain      = "play_again"
)

// Outbound event names.
const (
	EvtConnected           = "connected"
	EvtPlayerUpdated       = "player_updated"
	EvtRoomUpdated         = "room_updated"
	EvtRoomCreated         = "room_created"
	EvtRoomJoined          = "room_joined"
	EvtRoomLeft            = "room_left"
	EvtRoomError           = "room_error"
	EvtRoomSettingsUpdated = "room_settings_updated"
	EvtRoomSettingsError   = "room_settings_error"
	EvtGameStarted         = "game_started"
	EvtGameError           = "game_error"
	EvtWordOptions         = "word_options"
	EvtWordSelected        = "word_selected"
	EvtRoundStarted        = "round_started"
	EvtDrawingStarted      = "drawing_started"
	EvtTimerTick           = "timer_tick"
	EvtChatMessage         = "chat_message"
	EvtCorrectGuess        = "correct_guess"
	EvtLeaderboardUpdate   = "leaderboard_update"
	EvtRoundEnded          = "round_ended"
	EvtGameEnded           = "game_ended"
	EvtGameReset           = "game_reset"
)

// Inbound payloads.

type SetNamePayload struct {
	Name string `json:"name"`
}

type CreateRoomPayload struct {
	Settings *SettingsInput `json:"settings,omitempty"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type UpdateSettingsPayload struct {
	Settings *SettingsInput `json:"settings"`
}

type SelectWordPayload struct {
	Word string `json:"word"`
}

type GuessPayload struct {
	Guess string `json:"guess"`
}

// Outbound payloads.

type ConnectedData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type ErrorData struct {
	Code  ErrorCode `json:"code"`
	Error string    `json:"error"`
}

type WordOptionsData struct {
	Options []string `json:"options"`
	Timeout int      `json:"timeout"`
}

type WordSelectedData struct {
	MaskedWord   string `json:"maskedWord"`
	AutoSelected bool   `json:"autoSelected"`
}

type TimerTickData struct {
	Remaining int       `json:"remaining"`
	Type      TimerKind `json:"type"`
}

type ChatMessageData struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	IsCorrect bool   `json:"isCorrect"`
}

type CorrectGuessData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

type RoundEndedData struct {
	Word        string `json:"word"`
	DrawerID    string `json:"drawerId"`
	DrawerScore int    `json:"drawerScore"`
	Round       int    `json:"round"`
	GameEnded   bool   `json:"gameEnded"`
}

type GameEndedData struct {
	RoundsPlayed int                `json:"roundsPlayed"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard"`
}
