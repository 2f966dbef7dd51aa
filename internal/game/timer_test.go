package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/server/internal"
)

func TestTimerExpires(t *testing.T) {
	ts := NewTimerService()
	defer ts.StopAll()

	done := make(chan string, 1)
	ts.Start("ROOM01", internal.TimerRoundPause, 20*time.Millisecond, nil,
		func(code string) { done <- code })

	select {
	case code := <-done:
		assert.Equal(t, "ROOM01", code)
	case <-time.After(time.Second):
		t.Fatal("timer never expired")
	}

	_, running := ts.Kind("ROOM01")
	assert.False(t, running)
}

func TestTimerStopPreventsCallbacks(t *testing.T) {
	ts := NewTimerService()
	defer ts.StopAll()

	var fired atomic.Int32
	ts.Start("ROOM01", internal.TimerDrawing, 30*time.Millisecond, nil,
		func(string) { fired.Add(1) })
	ts.Stop("ROOM01")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// Stopping an idle room is a no-op.
	ts.Stop("ROOM01")
}

func TestTimerStartReplacesPrevious(t *testing.T) {
	ts := NewTimerService()
	defer ts.StopAll()

	fired := make(chan internal.TimerKind, 2)
	ts.Start("ROOM01", internal.TimerWordSelection, 40*time.Millisecond, nil,
		func(string) { fired <- internal.TimerWordSelection })
	ts.Start("ROOM01", internal.TimerDrawing, 15*time.Millisecond, nil,
		func(string) { fired <- internal.TimerDrawing })

	select {
	case kind := <-fired:
		assert.Equal(t, internal.TimerDrawing, kind)
	case <-time.After(time.Second):
		t.Fatal("replacement timer never expired")
	}

	select {
	case kind := <-fired:
		t.Fatalf("replaced timer fired: %s", kind)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestTimerExpiryMayChainNextTimer(t *testing.T) {
	ts := NewTimerService()
	defer ts.StopAll()

	second := make(chan struct{})
	ts.Start("ROOM01", internal.TimerRoundPause, 10*time.Millisecond, nil, func(code string) {
		ts.Start(code, internal.TimerWordSelection, 10*time.Millisecond, nil,
			func(string) { close(second) })
	})

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("chained timer never expired")
	}
}

func TestTimerTicksCountDown(t *testing.T) {
	if testing.Short() {
		t.Skip("tick cadence is one second")
	}
	ts := NewTimerService()
	defer ts.StopAll()

	ticks := make(chan int, 4)
	done := make(chan struct{})
	ts.Start("ROOM01", internal.TimerDrawing, 2100*time.Millisecond,
		func(_ string, remaining int) { ticks <- remaining },
		func(string) { close(done) })

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("timer never expired")
	}

	close(ticks)
	var seen []int
	for r := range ticks {
		seen = append(seen, r)
	}
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i], seen[i-1])
	}
}
