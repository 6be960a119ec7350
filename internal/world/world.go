package world

import (
	"fmt"
	"math"

	"github.com/annel0/breaknblocks/internal/logging"
	"github.com/annel0/breaknblocks/internal/vec"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// World - состояние шахты: блоки, сетка столкновений, генератор и снаряды.
// Принадлежит циклу симуляции и не защищён мьютексами.
type World struct {
	cfg  GeneratorConfig
	rng  RandomSource
	grid *Grid
	gen  *Generator

	Blocks      []*block.Block // Все блоки, включая разрушенные в текущем тике
	Projectiles []*Projectile
	Particles   []*Particle

	listeners []DestructionListener
	log       *logging.Logger
}

// Stats - сводка по миру для снимков и метрик
type Stats struct {
	Blocks        int       `json:"blocks"`
	Grid          GridStats `json:"grid"`
	Projectiles   int       `json:"projectiles"`
	Particles     int       `json:"particles"`
	GeneratedRows int       `json:"generated_rows"`
	QueuedRows    int       `json:"queued_rows"`
}

// New создаёт мир. rng используется генератором и физикой снарядов,
// seed задаёт поле шума летних пластов.
func New(cfg GeneratorConfig, rng RandomSource, seed int64) (*World, error) {
	grid := NewGrid(cfg.BlockSize * 2)
	gen, err := NewGenerator(cfg, rng, grid, seed)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	w := &World{
		cfg:  cfg,
		rng:  rng,
		grid: grid,
		gen:  gen,
		log:  logging.GetWorldLogger(),
	}
	gen.OnBlock(func(b *block.Block) {
		w.Blocks = append(w.Blocks, b)
	})
	return w, nil
}

// Config возвращает параметры генерации
func (w *World) Config() GeneratorConfig { return w.cfg }

// Grid возвращает сетку столкновений
func (w *World) Grid() *Grid { return w.grid }

// Generator возвращает генератор шахты
func (w *World) Generator() *Generator { return w.gen }

// AddListener подписывает обработчик на разрушение блоков
func (w *World) AddListener(l DestructionListener) {
	w.listeners = append(w.listeners, l)
}

// Initialize пересоздаёт шахту под ширину экрана. Снаряды и частицы удаляются.
func (w *World) Initialize(viewportWidth float64, summer bool) error {
	w.Blocks = w.Blocks[:0]
	w.Projectiles = nil
	w.Particles = nil
	w.gen.SetSummer(summer)

	if err := w.gen.Initialize(viewportWidth); err != nil {
		return fmt.Errorf("initialize world: %w", err)
	}
	w.log.Info("Мир создан: %d блоков, %s", len(w.Blocks), w.grid.Stats())
	return nil
}

// Extend ставит в очередь новые строки, если камера подошла к концу шахты
func (w *World) Extend(cameraY, viewportHeight float64) int {
	return w.gen.Extend(cameraY, viewportHeight)
}

// Commit материализует часть очереди генерации
func (w *World) Commit() (int, error) {
	return w.gen.Commit()
}

// InnerBounds возвращает X внутренних граней левой и правой стены
func (w *World) InnerBounds() (left, right float64) {
	s := &w.gen.state
	return s.LeftBarrierX + w.cfg.BarrierWidth, s.RightBarrierX
}

// DepthAt переводит координату Y в номер строки (не меньше нуля)
func (w *World) DepthAt(y float64) int {
	return int(math.Max(0, math.Floor((y-w.cfg.TopY)/w.cfg.BlockSize)))
}

// DamageBlock наносит урон блоку и обрабатывает разрушение.
// Возвращает true, если блок был разрушен этим ударом.
func (w *World) DamageBlock(b *block.Block, amount float64, fromAbility bool) bool {
	if !b.TakeDamage(amount) {
		return false
	}
	w.HandleDestruction(b, fromAbility)
	return true
}

// HandleDestruction убирает разрушенный блок из сетки и уведомляет подписчиков.
// Блок остаётся в списке до PruneDestroyed. Повторный вызов ничего не делает.
func (w *World) HandleDestruction(b *block.Block, fromAbility bool) {
	if !b.Destroyed {
		return
	}
	if !w.grid.Remove(b) {
		return
	}

	c := b.Center()
	ev := BlockDestroyed{
		Kind:        b.Kind,
		HasBonus:    b.HasBonus,
		FromAbility: fromAbility,
		X:           c.X,
		Y:           c.Y,
		Depth:       w.DepthAt(b.Y),
	}
	for _, l := range w.listeners {
		l.OnBlockDestroyed(ev)
	}
}

// PruneDestroyed удаляет разрушенные блоки из списка. Возвращает число удалённых.
func (w *World) PruneDestroyed() int {
	kept := w.Blocks[:0]
	for _, b := range w.Blocks {
		if !b.Destroyed {
			kept = append(kept, b)
		}
	}
	removed := len(w.Blocks) - len(kept)
	for i := len(kept); i < len(w.Blocks); i++ {
		w.Blocks[i] = nil
	}
	w.Blocks = kept
	return removed
}

// BreakRadius мгновенно разрушает блоки, центр которых ближе radius к точке.
// Бедрок не разрушается. Возвращает число разрушенных блоков.
func (w *World) BreakRadius(x, y, radius float64) int {
	candidates := w.grid.QueryRegion(x-radius, y-radius, radius*2, radius*2)
	broken := 0
	for _, b := range candidates {
		if b.Kind == block.Bedrock || b.Center().DistanceTo(vec.Vec2Float{X: x, Y: y}) >= radius {
			continue
		}
		if b.Destroy() {
			w.HandleDestruction(b, true)
			broken++
		}
	}
	return broken
}

// Recenter сдвигает шахту под новую ширину экрана. Сдвиг меньше пикселя
// игнорируется. Возвращает true, если шахта была сдвинута.
func (w *World) Recenter(viewportWidth float64) bool {
	if !w.gen.state.Initialized {
		return false
	}

	deltaX := w.gen.centeredStartX(viewportWidth) - w.gen.state.StartX
	if math.Abs(deltaX) < 1 {
		return false
	}

	w.gen.shift(deltaX)

	// Живые блоки сдвигает сетка, разрушенные в ней уже не числятся
	for _, b := range w.Blocks {
		if b.Destroyed {
			b.X += deltaX
		}
	}
	w.grid.RecenterAll(deltaX)

	for _, p := range w.Projectiles {
		p.X += deltaX
	}
	for _, p := range w.Particles {
		p.X += deltaX
	}

	w.log.Debug("Шахта сдвинута на %.1f", deltaX)
	return true
}

// Stats возвращает сводку по миру
func (w *World) Stats() Stats {
	return Stats{
		Blocks:        len(w.Blocks),
		Grid:          w.grid.Stats(),
		Projectiles:   len(w.Projectiles),
		Particles:     len(w.Particles),
		GeneratedRows: w.gen.state.GeneratedRows,
		QueuedRows:    len(w.gen.state.Queue),
	}
}
