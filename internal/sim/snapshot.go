package sim

import (
	"sync"
	"time"

	"github.com/annel0/breaknblocks/internal/economy"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// BlockView - неизменяемое представление блока для читателей
type BlockView struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	Kind        string  `json:"kind"`
	Breakable   bool    `json:"breakable"`
	Health      float64 `json:"health,omitempty"`
	MaxHealth   float64 `json:"max_health,omitempty"`
	DamageState int     `json:"damage_state"`
	HasBonus    bool    `json:"has_bonus,omitempty"`
}

func viewOf(b *block.Block) BlockView {
	v := BlockView{
		X:           b.X,
		Y:           b.Y,
		Size:        b.W,
		Kind:        b.Kind.String(),
		Breakable:   b.Breakable(),
		DamageState: b.DamageState,
		HasBonus:    b.HasBonus,
	}
	if v.Breakable {
		v.Health = b.Health
		v.MaxHealth = b.MaxHealth
	}
	return v
}

// PickaxeView - состояние кирки в снимке
type PickaxeView struct {
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Size              float64 `json:"size"`
	VX                float64 `json:"vx"`
	VY                float64 `json:"vy"`
	Rotation          float64 `json:"rotation"`
	Variant           string  `json:"variant"`
	Durability        float64 `json:"durability"`
	DurabilityPercent float64 `json:"durability_percent"`
	Dropped           bool    `json:"dropped"`
	Broken            bool    `json:"broken"`
	SizeBuff          float64 `json:"size_buff,omitempty"`
	AbilityPhase      string  `json:"ability_phase,omitempty"`
}

// ProjectileView - снаряд в снимке
type ProjectileView struct {
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Rotation float64 `json:"rotation"`
	Bounces  int     `json:"bounces"`
}

// Snapshot - неизменяемый снимок состояния после кадра.
// Передаётся читателям по указателю и не копируется.
type Snapshot struct {
	Frame          uint64           `json:"frame"`
	Time           time.Time        `json:"time"`
	CameraY        float64          `json:"camera_y"`
	ViewportWidth  float64          `json:"viewport_width"`
	ViewportHeight float64          `json:"viewport_height"`
	GameOver       bool             `json:"game_over"`
	Pickaxe        PickaxeView      `json:"pickaxe"`
	Projectiles    []ProjectileView `json:"projectiles"`
	Particles      int              `json:"particles"`
	World          world.Stats      `json:"world"`
	Economy        economy.State    `json:"economy"`

	blocks   []block.Block
	cellSize float64
	gridOnce sync.Once
	grid     *world.Grid
}

// Snapshot собирает снимок текущего состояния. Вызывается из горутины цикла.
func (g *Game) Snapshot() *Snapshot {
	p := g.pickaxe
	s := &Snapshot{
		Frame:          g.frames,
		Time:           time.Now(),
		CameraY:        g.camera.Y,
		ViewportWidth:  g.viewportW,
		ViewportHeight: g.viewportH,
		GameOver:       g.gameOver,
		Pickaxe: PickaxeView{
			X:                 p.X,
			Y:                 p.Y,
			Size:              p.W,
			VX:                p.VX,
			VY:                p.VY,
			Rotation:          p.Rotation,
			Variant:           p.Variant().Name,
			Durability:        p.Durability(),
			DurabilityPercent: p.DurabilityPercent(),
			Dropped:           p.Dropped,
			Broken:            p.Broken,
			SizeBuff:          p.SizeBuffRemaining(),
		},
		Particles: len(g.world.Particles),
		World:     g.world.Stats(),
		Economy:   g.econ.Snapshot(),
		cellSize:  g.world.Grid().CellSize(),
	}
	if g.ability.Enabled() {
		s.Pickaxe.AbilityPhase = g.ability.Phase().String()
	}

	s.Projectiles = make([]ProjectileView, 0, len(g.world.Projectiles))
	for _, pr := range g.world.Projectiles {
		s.Projectiles = append(s.Projectiles, ProjectileView{
			Kind:     pr.Kind.String(),
			X:        pr.X,
			Y:        pr.Y,
			Size:     pr.W,
			Rotation: pr.Rotation,
			Bounces:  pr.Bounces,
		})
	}

	// Порядок вставки в сетку сохраняет порядок генерации
	s.blocks = make([]block.Block, 0, len(g.world.Blocks))
	for _, b := range g.world.Blocks {
		if !b.Destroyed {
			s.blocks = append(s.blocks, *b)
		}
	}
	return s
}

// BlockCount возвращает число живых блоков в снимке
func (s *Snapshot) BlockCount() int { return len(s.blocks) }

// QueryRegion возвращает блоки, пересекающие прямоугольник, в порядке генерации.
// Сетка снимка строится при первом запросе.
func (s *Snapshot) QueryRegion(x, y, w, h float64) []BlockView {
	s.gridOnce.Do(func() {
		s.grid = world.NewGrid(s.cellSize)
		for i := range s.blocks {
			s.grid.Insert(&s.blocks[i])
		}
	})

	found := s.grid.QueryRegion(x, y, w, h)
	out := make([]BlockView, 0, len(found))
	for _, b := range found {
		out = append(out, viewOf(b))
	}
	return out
}
