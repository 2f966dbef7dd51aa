package internal

import "errors"

// ErrorCode identifies an expected game error. These are normal outcomes of
// adversarial or racy client input and are surfaced to the originating
// client only, never to the rest of the room.
type ErrorCode string

const (
	ErrInvalidPayload    ErrorCode = "invalid_payload"
	ErrNotFound          ErrorCode = "not_found"
	ErrAlreadyIn         ErrorCode = "already_in"
	ErrNotWaiting        ErrorCode = "not_waiting"
	ErrFull              ErrorCode = "full"
	ErrDuplicate         ErrorCode = "duplicate"
	ErrTooSmall          ErrorCode = "too_small"
	ErrNotOwner          ErrorCode = "not_owner"
	ErrTooFewPlayers     ErrorCode = "too_few_players"
	ErrWrongPhase        ErrorCode = "wrong_phase"
	ErrNotDrawer         ErrorCode = "not_drawer"
	ErrDrawerCannotGuess ErrorCode = "drawer_cannot_guess"
	ErrAlreadyGuessed    ErrorCode = "already_guessed"
	ErrInvalidName       ErrorCode = "invalid_name"
	ErrTooShort          ErrorCode = "too_short"
	ErrTooLong           ErrorCode = "too_long"
	ErrNoWord            ErrorCode = "no_word"
	ErrIDExhausted       ErrorCode = "id_exhausted"
)

// GameError carries an error code plus a human-readable message for the
// client. Anything that is not a *GameError is treated as an internal fault.
type GameError struct {
	Code    ErrorCode
	Message string
}

func (e *GameError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Errf builds a *GameError for the given code.
func Errf(code ErrorCode, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// AsGameError unwraps err into a *GameError if it is one.
func AsGameError(err error) (*GameError, bool) {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
