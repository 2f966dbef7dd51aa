package game

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/drawdash/server/internal"
)

const (
	// moveEmitInterval caps draw_move fan-out at 30 emissions per second.
	moveEmitInterval = time.Second / 30
	// batchWindow is how long over-rate moves wait before being flushed as
	// one batch.
	batchWindow = 50 * time.Millisecond
)

// SendFunc delivers a relay event to every current non-drawer in the room.
// The router supplies it so membership is resolved at send time.
type SendFunc func(roomCode, event string, data any)

// DrawingRelay forwards drawing events from the drawer to the rest of the
// room. Payloads are opaque; only draw_move is throttled. Moves beyond the
// rate are buffered in order and flushed as a single array, so nothing is
// ever dropped.
type DrawingRelay struct {
	mu    sync.Mutex
	rooms map[string]*relayState
	send  SendFunc
}

type relayState struct {
	lastEmit   time.Time
	pending    []json.RawMessage
	flushTimer *time.Timer
}

func NewDrawingRelay(send SendFunc) *DrawingRelay {
	return &DrawingRelay{
		rooms: make(map[string]*relayState),
		send:  send,
	}
}

func (dr *DrawingRelay) state(roomCode string) *relayState {
	st, ok := dr.rooms[roomCode]
	if !ok {
		st = &relayState{}
		dr.rooms[roomCode] = st
	}
	return st
}

// Move relays one draw_move payload, batching when the room is over rate.
func (dr *DrawingRelay) Move(roomCode string, payload json.RawMessage) {
	dr.mu.Lock()
	st := dr.state(roomCode)

	now := time.Now()
	if len(st.pending) == 0 && now.Sub(st.lastEmit) >= moveEmitInterval {
		st.lastEmit = now
		dr.mu.Unlock()
		dr.send(roomCode, internal.EvtDrawMove, []json.RawMessage{payload})
		return
	}

	st.pending = append(st.pending, payload)

	// A pending batch rides out on the first non-throttled arrival, or on
	// the window timer, whichever comes first.
	if now.Sub(st.lastEmit) >= moveEmitInterval {
		batch := st.pending
		st.pending = nil
		st.lastEmit = now
		st.clearTimerLocked()
		dr.mu.Unlock()
		dr.send(roomCode, internal.EvtDrawMove, batch)
		return
	}
	if st.flushTimer == nil {
		st.flushTimer = time.AfterFunc(batchWindow, func() { dr.flush(roomCode) })
	}
	dr.mu.Unlock()
}

// Interrupt relays a non-move drawing event (draw_start, draw_end,
// clear_canvas). Any pending move batch is flushed first so ordering holds.
func (dr *DrawingRelay) Interrupt(roomCode, event string, payload json.RawMessage) {
	dr.flush(roomCode)
	dr.send(roomCode, event, payload)
}

// flush emits the room's pending moves as one ordered batch.
func (dr *DrawingRelay) flush(roomCode string) {
	dr.mu.Lock()
	st, ok := dr.rooms[roomCode]
	if !ok || len(st.pending) == 0 {
		if ok {
			st.clearTimerLocked()
		}
		dr.mu.Unlock()
		return
	}
	batch := st.pending
	st.pending = nil
	st.lastEmit = time.Now()
	st.clearTimerLocked()
	dr.mu.Unlock()

	dr.send(roomCode, internal.EvtDrawMove, batch)
}

func (st *relayState) clearTimerLocked() {
	if st.flushTimer != nil {
		st.flushTimer.Stop()
		st.flushTimer = nil
	}
}

// Reset drops any buffered moves for the room; called at round boundaries
// and when a room goes away.
func (dr *DrawingRelay) Reset(roomCode string) {
	dr.mu.Lock()
	if st, ok := dr.rooms[roomCode]; ok {
		st.clearTimerLocked()
		delete(dr.rooms, roomCode)
	}
	dr.mu.Unlock()
}
