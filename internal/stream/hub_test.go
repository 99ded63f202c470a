package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gaugeRecorder struct {
	mu   sync.Mutex
	last int
}

func (g *gaugeRecorder) SetStreamClients(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = n
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	gauge := &gaugeRecorder{}
	hub := NewHub(4, nil, gauge)

	a := hub.Register("user-a")
	b := hub.Register("user-b")
	assert.Equal(t, 2, hub.Count())
	assert.Equal(t, 2, gauge.last)

	delivered := hub.Broadcast([]byte(`{"type":"event_created"}`))
	assert.Equal(t, 2, delivered)

	assert.Equal(t, `{"type":"event_created"}`, string(<-a.Outbound()))
	assert.Equal(t, `{"type":"event_created"}`, string(<-b.Outbound()))
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	hub := NewHub(1, nil, nil)
	c := hub.Register("user")

	hub.Unregister(c)
	hub.Unregister(c)

	_, open := <-c.Outbound()
	assert.False(t, open)
	assert.Zero(t, hub.Count())
	assert.False(t, hub.SendTo(c, []byte("x")))
}

func TestHub_DropsSlowClient(t *testing.T) {
	gauge := &gaugeRecorder{}
	hub := NewHub(1, nil, gauge)
	slow := hub.Register("slow")
	fast := hub.Register("fast")

	require.Equal(t, 2, hub.Broadcast([]byte("1")))
	<-fast.Outbound()

	assert.Equal(t, 1, hub.Broadcast([]byte("2")))
	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, 1, gauge.last)

	assert.Equal(t, "1", string(<-slow.Outbound()))
	_, open := <-slow.Outbound()
	assert.False(t, open, "slow client queue is closed after being dropped")
}

func TestHub_SendTo(t *testing.T) {
	hub := NewHub(1, nil, nil)
	c := hub.Register("user")

	assert.True(t, hub.SendTo(c, []byte("pong")))
	assert.False(t, hub.SendTo(c, []byte("overflow")))
	assert.Equal(t, "pong", string(<-c.Outbound()))
}

func TestHub_ConcurrentUse(t *testing.T) {
	hub := NewHub(64, nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := hub.Register("u")
			hub.Broadcast([]byte("x"))
			hub.Unregister(c)
		}()
	}
	wg.Wait()
	assert.Zero(t, hub.Count())
}
