package block

import (
	"math"

	"github.com/annel0/breaknblocks/internal/vec"
)

// DamageStages - число спрайтов трещин, которые рисует рендерер
const DamageStages = 10

// Block представляет собой блок шахты
type Block struct {
	vec.Rect              // Позиция (левый верхний угол) и размер
	Kind        Kind    // Тип блока
	Health      float64 // Текущая прочность
	MaxHealth   float64 // Начальная прочность
	Destroyed   bool    // Блок разрушен и должен быть убран из индекса
	HasBonus    bool    // В блоке спрятан бонус (бутылочка опыта)
	DamageState int     // Стадия трещин 0..DamageStages
}

// New создаёт блок указанного типа в позиции (x, y)
func New(x, y, size float64, kind Kind) *Block {
	def := Get(kind)
	return &Block{
		Rect:      vec.Rect{X: x, Y: y, W: size, H: size},
		Kind:      kind,
		Health:    def.Health,
		MaxHealth: def.Health,
	}
}

// Breakable сообщает, может ли блок быть разрушен
func (b *Block) Breakable() bool {
	return !math.IsInf(b.MaxHealth, 1)
}

// TakeDamage наносит урон и возвращает true, если блок был разрушен этим ударом
func (b *Block) TakeDamage(amount float64) bool {
	if b.Destroyed || !b.Breakable() || amount <= 0 {
		return false
	}
	b.Health -= amount

	ratio := math.Max(0, 1-b.Health/b.MaxHealth)
	b.DamageState = int(math.Min(DamageStages, math.Floor(ratio*(DamageStages+1))))

	if b.Health <= 0 {
		b.Health = 0
		b.Destroyed = true
		return true
	}
	return false
}

// Destroy разрушает блок мгновенно (аура огненного стержня).
// Возвращает false для неразрушаемых и уже разрушенных блоков.
func (b *Block) Destroy() bool {
	if b.Destroyed || !b.Breakable() {
		return false
	}
	b.Health = 0
	b.DamageState = DamageStages
	b.Destroyed = true
	return true
}
