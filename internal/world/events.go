package world

import (
	"github.com/annel0/breaknblocks/internal/world/block"
)

// BlockDestroyed описывает разрушение блока
type BlockDestroyed struct {
	Kind        block.Kind
	HasBonus    bool    // В блоке был бонус
	FromAbility bool    // Блок разрушен способностью или снарядом, а не киркой
	X, Y        float64 // Центр блока
	Depth       int     // Номер строки
}

// DestructionListener получает уведомления о разрушении блоков.
// Вызывается синхронно из цикла симуляции.
type DestructionListener interface {
	OnBlockDestroyed(ev BlockDestroyed)
}

// ListenerFunc позволяет использовать функцию как DestructionListener
type ListenerFunc func(ev BlockDestroyed)

// OnBlockDestroyed вызывает f(ev)
func (f ListenerFunc) OnBlockDestroyed(ev BlockDestroyed) {
	f(ev)
}
