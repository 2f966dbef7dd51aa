package game

import (
	"log"
	"sync"
	"time"

	"github.com/drawdash/server/internal"
)

// TimerService runs at most one countdown per room. Starting a timer for a
// room replaces any previous one. Stop guarantees that no callback fires
// after it returns; the expiry callback itself may call Start for the same
// room because the timer is unregistered before the callback runs.
type TimerService struct {
	mu     sync.Mutex
	timers map[string]*roomTimer
}

type roomTimer struct {
	roomCode string
	kind     internal.TimerKind
	cancel   chan struct{}

	// fireMu serializes callbacks against Stop; stopped is checked under it
	// before every callback so a stopped timer never fires again.
	fireMu  sync.Mutex
	stopped bool
}

func NewTimerService() *TimerService {
	return &TimerService{timers: make(map[string]*roomTimer)}
}

// Start begins a countdown of the given duration. onTick fires once per
// second with the whole seconds remaining; onExpiry fires when the countdown
// reaches zero. Either callback may be nil.
func (ts *TimerService) Start(roomCode string, kind internal.TimerKind, duration time.Duration,
	onTick func(roomCode string, remaining int), onExpiry func(roomCode string)) {

	t := &roomTimer{
		roomCode: roomCode,
		kind:     kind,
		cancel:   make(chan struct{}),
	}

	ts.mu.Lock()
	if prev, ok := ts.timers[roomCode]; ok {
		prev.markStopped()
		close(prev.cancel)
	}
	ts.timers[roomCode] = t
	ts.mu.Unlock()

	go ts.run(t, duration, onTick, onExpiry)
}

func (ts *TimerService) run(t *roomTimer, duration time.Duration,
	onTick func(string, int), onExpiry func(string)) {

	deadline := time.Now().Add(duration)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	expire := time.NewTimer(duration)
	defer expire.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			remaining := int(time.Until(deadline).Round(time.Second).Seconds())
			if remaining < 0 {
				remaining = 0
			}
			if onTick != nil && !t.fire(func() { onTick(t.roomCode, remaining) }) {
				return
			}
		case <-expire.C:
			// Unregister before the callback so the expiry handler can start
			// the room's next timer without racing this one.
			ts.mu.Lock()
			if ts.timers[t.roomCode] == t {
				delete(ts.timers, t.roomCode)
			}
			ts.mu.Unlock()
			if onExpiry != nil {
				t.fire(func() { onExpiry(t.roomCode) })
			}
			return
		}
	}
}

// fire runs fn unless the timer was stopped; it reports whether fn ran.
func (t *roomTimer) fire(fn func()) bool {
	t.fireMu.Lock()
	defer t.fireMu.Unlock()
	if t.stopped {
		return false
	}
	fn()
	return true
}

func (t *roomTimer) markStopped() {
	t.fireMu.Lock()
	t.stopped = true
	t.fireMu.Unlock()
}

// Stop cancels the room's timer if one is running. It blocks until any
// in-flight callback has returned. Stopping an idle room is a no-op.
func (ts *TimerService) Stop(roomCode string) {
	ts.mu.Lock()
	t, ok := ts.timers[roomCode]
	if ok {
		delete(ts.timers, roomCode)
	}
	ts.mu.Unlock()
	if !ok {
		return
	}
	t.markStopped()
	close(t.cancel)
	log.Printf("[TimerService] stopped %s timer for room %s", t.kind, roomCode)
}

// StopAll cancels every running timer; used on shutdown.
func (ts *TimerService) StopAll() {
	ts.mu.Lock()
	timers := make([]*roomTimer, 0, len(ts.timers))
	for _, t := range ts.timers {
		timers = append(timers, t)
	}
	ts.timers = make(map[string]*roomTimer)
	ts.mu.Unlock()

	for _, t := range timers {
		t.markStopped()
		close(t.cancel)
	}
}

// Kind reports the kind of the room's running timer, if any.
func (ts *TimerService) Kind(roomCode string) (internal.TimerKind, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.timers[roomCode]
	if !ok {
		return "", false
	}
	return t.kind, true
}
