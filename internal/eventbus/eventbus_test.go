package eventbus

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) first() *Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[0]
}

func TestMemoryBusFilters(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var blocks, all collector
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeBlockDestroyed}}, blocks.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)

	ev, err := NewEnvelope(TypeBlockDestroyed, 1, BlockDestroyedPayload{Kind: "stone"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	cmd, err := NewEnvelope(TypeCommand, 1, CommandPayload{Command: "drop"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), cmd))

	require.Eventually(t, func() bool { return all.len() == 2 && blocks.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, TypeBlockDestroyed, blocks.first().EventType)

	require.Eventually(t, func() bool { return bus.Metrics().Consumed == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	var c collector
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, err := NewEnvelope(TypeCommand, 1, CommandPayload{Command: "reset"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	require.Eventually(t, func() bool { return bus.Metrics().InFlight == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, c.len())
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(4)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ev, err := NewEnvelope(TypeCommand, 1, CommandPayload{})
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestEnvelopeDecode(t *testing.T) {
	ev, err := NewEnvelope(TypeBlockDestroyed, 5, BlockDestroyedPayload{Kind: "diamond_ore", Depth: 12, HasBonus: true})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, Source, ev.Source)

	p, err := Decode[BlockDestroyedPayload](ev)
	require.NoError(t, err)
	assert.Equal(t, "diamond_ore", p.Kind)
	assert.Equal(t, 12, p.Depth)
	assert.True(t, p.HasBonus)

	ev.Payload = []byte("{")
	_, err = Decode[BlockDestroyedPayload](ev)
	assert.Error(t, err)
}

func TestDestructionPublisher(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeBlockDestroyed}}, c.handle)
	require.NoError(t, err)

	pub := NewDestructionPublisher(bus, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	pub.OnBlockDestroyed(world.BlockDestroyed{Kind: block.DiamondOre, HasBonus: true, Depth: 30})

	require.Eventually(t, func() bool { return c.len() == 1 }, time.Second, 5*time.Millisecond)
	ev := c.first()
	assert.Equal(t, 5, ev.Priority)

	p, err := Decode[BlockDestroyedPayload](ev)
	require.NoError(t, err)
	assert.Equal(t, "diamond_ore", p.Kind)
	assert.Equal(t, "diamond", p.Resource)
	assert.Equal(t, 30, p.Depth)
}

func TestDestructionPublisherDropsWhenFull(t *testing.T) {
	bus := NewMemoryBus(1)
	defer bus.Close()

	pub := NewDestructionPublisher(bus, 1)
	pub.OnBlockDestroyed(world.BlockDestroyed{Kind: block.Stone})
	pub.OnBlockDestroyed(world.BlockDestroyed{Kind: block.Stone})
	assert.Equal(t, uint64(1), pub.Dropped())
}

func TestGlobalPublish(t *testing.T) {
	Init(nil)
	assert.NoError(t, Publish(context.Background(), &Envelope{}))

	bus := NewMemoryBus(4)
	defer bus.Close()
	Init(bus)
	defer Init(nil)

	assert.Same(t, bus, Global())
	require.NoError(t, Publish(context.Background(), &Envelope{EventType: TypeCommand}))
	assert.Equal(t, uint64(1), bus.Metrics().Published)
}

func TestMetricsExporter(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	reg := prometheus.NewRegistry()
	me, err := NewMetricsExporter(bus, reg, 5*time.Millisecond)
	require.NoError(t, err)

	_, err = NewMetricsExporter(bus, reg, time.Second)
	assert.Error(t, err, "повторная регистрация")

	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: TypeCommand}))
	me.Start()
	me.Stop()

	assert.Equal(t, 1.0, testutil.ToFloat64(me.published))
}

func TestJetStreamBus(t *testing.T) {
	url := os.Getenv("BNB_TEST_NATS")
	if url == "" {
		t.Skipf("BNB_TEST_NATS не задан")
	}

	bus, err := NewJetStreamBus(url, "BNB_TEST", time.Minute)
	require.NoError(t, err)
	defer bus.Close()

	var c collector
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{TypeCommand}}, c.handle)
	require.NoError(t, err)

	ev, err := NewEnvelope(TypeCommand, 1, CommandPayload{Command: "drop"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	require.Eventually(t, func() bool { return c.len() >= 1 }, 5*time.Second, 10*time.Millisecond)
}
