package eventbus

import (
	"context"
	"sync/atomic"

	"github.com/annel0/breaknblocks/internal/logging"
	"github.com/annel0/breaknblocks/internal/world"
)

// DestructionPublisher пересылает разрушения блоков в шину.
// OnBlockDestroyed вызывается из цикла симуляции и никогда не блокирует:
// при переполнении очереди событие отбрасывается.
type DestructionPublisher struct {
	bus     EventBus
	queue   chan world.BlockDestroyed
	dropped atomic.Uint64
	log     *logging.Logger
}

// NewDestructionPublisher создаёт публикатор с очередью заданного размера
func NewDestructionPublisher(bus EventBus, queue int) *DestructionPublisher {
	if queue <= 0 {
		queue = 256
	}
	return &DestructionPublisher{
		bus:   bus,
		queue: make(chan world.BlockDestroyed, queue),
		log:   logging.GetComponentLogger("eventbus"),
	}
}

// OnBlockDestroyed ставит событие в очередь
func (p *DestructionPublisher) OnBlockDestroyed(ev world.BlockDestroyed) {
	select {
	case p.queue <- ev:
	default:
		p.dropped.Add(1)
	}
}

// Dropped возвращает число отброшенных событий
func (p *DestructionPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Run публикует события до отмены контекста
func (p *DestructionPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.queue:
			p.publish(ctx, ev)
		}
	}
}

func (p *DestructionPublisher) publish(ctx context.Context, ev world.BlockDestroyed) {
	priority := 1
	if ev.HasBonus {
		priority = 5
	}
	env, err := NewEnvelope(TypeBlockDestroyed, priority, BlockDestroyedPayload{
		Kind:        ev.Kind.String(),
		Resource:    string(ev.Kind.Resource()),
		X:           ev.X,
		Y:           ev.Y,
		Depth:       ev.Depth,
		HasBonus:    ev.HasBonus,
		FromAbility: ev.FromAbility,
	})
	if err != nil {
		p.log.Error("Не удалось упаковать событие: %v", err)
		return
	}
	if err := p.bus.Publish(ctx, env); err != nil {
		p.log.Warn("Не удалось опубликовать %s: %v", env.EventType, err)
	}
}
