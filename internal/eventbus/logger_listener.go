package eventbus

import (
	"context"

	"github.com/annel0/breaknblocks/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог шины.
// Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus) error {
	log := logging.GetComponentLogger("eventbus")
	_, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		switch ev.EventType {
		case TypeBlockDestroyed:
			if p, err := Decode[BlockDestroyedPayload](ev); err == nil && p.HasBonus {
				log.Info("Бонус найден в блоке %s на глубине %d", p.Kind, p.Depth)
				return
			}
		case TypeCommand:
			if p, err := Decode[CommandPayload](ev); err == nil {
				log.Info("Команда %s %s", p.Command, p.Name)
				return
			}
		}
		log.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return err
	}
	log.Info("LoggingListener: подписка на все события активирована")
	return nil
}
