package pickaxe

import (
	"fmt"
	"math"

	"github.com/annel0/breaknblocks/internal/physics"
	"github.com/annel0/breaknblocks/internal/vec"
	"github.com/annel0/breaknblocks/internal/world"
)

// Константы движения кирки
const (
	DefaultSize     = 50.0
	DefaultStartY   = 50.0
	swaySpeed       = 0.03
	maxSwayWidth    = 300.0
	swayShare       = 0.4
	spinDecay       = 0.99
	topBounceSpeed  = -14.0
	topBounceChaos  = 10.0
	topBounceSpin   = 0.5
	sweepMargin     = 5.0
	SizeBuffScale   = 1.5
	SizeBuffSeconds = 5.0
)

// Pickaxe - падающая кирка игрока
type Pickaxe struct {
	X, Y            float64
	PrevX, PrevY    float64
	W, H            float64
	VX, VY          float64
	Rotation        float64
	AngularVelocity float64
	Dropped         bool
	Broken          bool
	Current         int // Индекс в Variants

	durability []float64

	swayAngle     float64
	swayCenter    float64
	swayAmplitude float64

	buffTimer float64 // Остаток увеличения размера
}

// New создаёт кирку в позиции (x, y)
func New(x, y float64) *Pickaxe {
	p := &Pickaxe{durability: make([]float64, len(Variants))}
	p.Reset(x, y)
	return p
}

// Variant возвращает текущий вид кирки
func (p *Pickaxe) Variant() Variant {
	return Variants[p.Current]
}

// SetVariant переключает вид кирки
func (p *Pickaxe) SetVariant(index int) error {
	if index < 0 || index >= len(Variants) {
		return fmt.Errorf("%w: pickaxe variant %d", world.ErrInvalidArgument, index)
	}
	p.Current = index
	return nil
}

// NextUnlocked переключает на следующий открытый вид. До броска и только до него.
func (p *Pickaxe) NextUnlocked(isUnlocked func(name string) bool) bool {
	if p.Dropped {
		return false
	}
	next := (p.Current + 1) % len(Variants)
	for i := 0; i < len(Variants); i++ {
		if isUnlocked(Variants[next].Name) {
			p.Current = next
			return true
		}
		next = (next + 1) % len(Variants)
	}
	return false
}

// SetSwayForViewport задаёт диапазон раскачивания до броска под ширину экрана
func (p *Pickaxe) SetSwayForViewport(viewportWidth float64) {
	centerX := viewportWidth / 2
	width := math.Min(maxSwayWidth, viewportWidth*swayShare)
	minX := centerX - p.W/2 - width/2
	maxX := centerX - p.W/2 + width/2
	p.SetSwayRange(minX, maxX)
}

// SetSwayRange задаёт границы раскачивания
func (p *Pickaxe) SetSwayRange(minX, maxX float64) {
	p.swayAmplitude = (maxX - minX) / 2
	p.swayCenter = minX + p.swayAmplitude
}

// Drop бросает кирку вниз с небольшим случайным вращением
func (p *Pickaxe) Drop(rng world.RandomSource) bool {
	if p.Dropped || p.Broken {
		return false
	}
	p.Dropped = true
	p.VX, p.VY = 0, 1
	p.AngularVelocity = (rng.Float64() - 0.5) * 0.2
	return true
}

// Update продвигает кирку на один тик: раскачивание до броска, затем
// гравитация, движение и затухание вращения.
func (p *Pickaxe) Update(dt float64) {
	p.PrevX, p.PrevY = p.X, p.Y

	if !p.Dropped {
		p.swayAngle += swaySpeed
		p.X = p.swayCenter + math.Sin(p.swayAngle)*p.swayAmplitude
		return
	}
	if p.Broken {
		return
	}

	p.VY += p.Variant().Gravity
	p.X += p.VX
	p.Y += p.VY

	p.Rotation += p.AngularVelocity
	p.AngularVelocity *= spinDecay

	p.updateBuff(dt)
}

// Rect возвращает текущий прямоугольник кирки
func (p *Pickaxe) Rect() vec.Rect {
	return vec.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// Center возвращает центр кирки
func (p *Pickaxe) Center() vec.Vec2Float {
	return p.Rect().Center()
}

// SweepBox возвращает область, пройденную киркой за тик, с запасом
func (p *Pickaxe) SweepBox() vec.Rect {
	body := physics.Body{X: p.PrevX, Y: p.PrevY, W: p.W, H: p.H, VX: p.X - p.PrevX, VY: p.Y - p.PrevY}
	return body.SweepBounds(sweepMargin)
}

// ClampToWalls отражает кирку от внутренних граней стен. Возвращает true при касании.
func (p *Pickaxe) ClampToWalls(left, right float64) bool {
	hit := false
	bounce := p.Variant().Bounce
	if p.X < left {
		p.X = left
		p.VX *= -bounce
		hit = true
	}
	if p.X+p.W > right {
		p.X = right - p.W
		p.VX *= -bounce
		hit = true
	}
	return hit
}

// ResolveBlockHit выталкивает кирку из блока по нормали и отражает скорость.
// Удар сверху подбрасывает кирку с разбросом, зависящим от устойчивости.
func (p *Pickaxe) ResolveBlockHit(res physics.OverlapResult, rng world.RandomSource) {
	if !res.Hit {
		return
	}
	v := p.Variant()

	if res.NormalX != 0 {
		p.X += res.NormalX * res.OverlapX
		p.VX *= -v.Bounce
		p.AngularVelocity += (p.VY / 50) * signOf(p.VX)
	}
	if res.NormalY != 0 {
		p.Y += res.NormalY * res.OverlapY
		if res.NormalY < 0 {
			stability := v.Stability
			if stability <= 0 {
				stability = 1
			}
			p.VY = topBounceSpeed
			p.VX += (rng.Float64() - 0.5) * topBounceChaos / stability
			p.AngularVelocity += (rng.Float64() - 0.5) * topBounceSpin / stability
		} else {
			p.VY *= -v.Bounce
		}
	}
}

// TakeDamage уменьшает прочность текущего вида. Возвращает true, если кирка сломалась.
func (p *Pickaxe) TakeDamage(amount float64) bool {
	if p.Broken {
		return false
	}
	p.durability[p.Current] -= amount
	if p.durability[p.Current] <= 0 {
		p.durability[p.Current] = 0
		p.Broken = true
		return true
	}
	return false
}

// Durability возвращает текущую прочность
func (p *Pickaxe) Durability() float64 {
	return p.durability[p.Current]
}

// DurabilityPercent возвращает долю оставшейся прочности
func (p *Pickaxe) DurabilityPercent() float64 {
	limit := p.Variant().MaxDurability
	if limit == 0 {
		return 1
	}
	return p.durability[p.Current] / limit
}

// ApplySizeBuff временно увеличивает кирку. Повторный вызов продлевает таймер.
func (p *Pickaxe) ApplySizeBuff() {
	p.W = DefaultSize * SizeBuffScale
	p.H = DefaultSize * SizeBuffScale
	p.buffTimer = SizeBuffSeconds
}

// SizeBuffRemaining возвращает остаток действия увеличения
func (p *Pickaxe) SizeBuffRemaining() float64 {
	return p.buffTimer
}

func (p *Pickaxe) updateBuff(dt float64) {
	if p.buffTimer <= 0 {
		return
	}
	p.buffTimer -= dt
	if p.buffTimer <= 0 {
		p.buffTimer = 0
		p.W, p.H = DefaultSize, DefaultSize
	}
}

// Reset возвращает кирку в исходное состояние и восстанавливает прочность всех видов
func (p *Pickaxe) Reset(x, y float64) {
	p.X, p.Y = x, y
	p.PrevX, p.PrevY = x, y
	p.W, p.H = DefaultSize, DefaultSize
	p.VX, p.VY = 0, 0
	p.Rotation, p.AngularVelocity = 0, 0
	p.Dropped, p.Broken = false, false
	p.swayAngle = 0
	p.buffTimer = 0
	for i, v := range Variants {
		p.durability[i] = v.MaxDurability
	}
}

func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
