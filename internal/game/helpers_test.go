package game

import (
	"fmt"
	"sync"

	"github.com/drawdash/server/internal"
)

// fakeClient captures everything sent to one player.
type fakeClient struct {
	mu   sync.Mutex
	msgs []internal.Envelope
}

func (c *fakeClient) Send(msg internal.Envelope) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *fakeClient) all() []internal.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]internal.Envelope(nil), c.msgs...)
}

func (c *fakeClient) typed(event string) []internal.Envelope {
	var out []internal.Envelope
	for _, m := range c.all() {
		if m.Type == event {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeClient) count(event string) int {
	return len(c.typed(event))
}

func (c *fakeClient) last(event string) (internal.Envelope, bool) {
	msgs := c.typed(event)
	if len(msgs) == 0 {
		return internal.Envelope{}, false
	}
	return msgs[len(msgs)-1], true
}

// seedRoom registers n players and hands back a waiting room with all of
// them as members, first one owning it.
func seedRoom(pr *PlayerRegistry, n int) (*internal.Room, []string) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p := pr.Connect(fmt.Sprintf("sess-%d", i), &fakeClient{})
		ids = append(ids, p.ID)
	}
	room := &internal.Room{
		Code:      "TEST01",
		OwnerID:   ids[0],
		PlayerIDs: append([]string(nil), ids...),
		Settings:  internal.DefaultSettings(),
		Status:    internal.StatusWaiting,
	}
	for _, id := range ids {
		pr.SetRoom(id, room.Code)
	}
	return room, ids
}

func intPtr(v int) *int { return &v }
