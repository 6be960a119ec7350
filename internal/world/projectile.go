package world

import (
	"math"

	"github.com/annel0/breaknblocks/internal/physics"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// ProjectileKind - вид снаряда
type ProjectileKind uint8

const (
	BouncyBall ProjectileKind = iota // Мяч рыбной кирки
	BlazeRod                         // Огненный стержень
)

// String возвращает имя вида снаряда
func (k ProjectileKind) String() string {
	switch k {
	case BouncyBall:
		return "bouncy_ball"
	case BlazeRod:
		return "blaze_rod"
	default:
		return "unknown"
	}
}

// Физика снарядов
const (
	bounceFactor     = 0.9
	topBounceSpeed   = -14.0
	topBounceChaos   = 10.0
	topBounceSpin    = 0.5
	removeBelowSlack = 100.0

	blazeRodCount    = 5
	lavaParticleLife = 2.0
	lavaParticles    = 20
	lavaDamage       = 0.5
	lavaGravity      = 0.1
	lavaRemoveSlack  = 50.0
)

type projectilePhysics struct {
	gravity  float64
	friction float64
}

var projectileTable = map[ProjectileKind]projectilePhysics{
	BouncyBall: {gravity: 0.3, friction: 0.99},
	BlazeRod:   {gravity: 0.4, friction: 0.98},
}

// Projectile - движущийся снаряд, отскакивающий от стен и блоков
type Projectile struct {
	Kind            ProjectileKind
	X, Y            float64
	W, H            float64
	VX, VY          float64
	Rotation        float64
	AngularVelocity float64
	Bounces         int
	MaxBounces      int
	Damage          float64
	AOEDamage       float64 // Урон соседним блокам (только мяч)
}

// Capped сообщает, исчерпал ли снаряд лимит отскоков
func (p *Projectile) Capped() bool {
	return p.Bounces >= p.MaxBounces
}

// NewBouncyBall создаёт мяч с центром в (x, y)
func NewBouncyBall(x, y float64, rng RandomSource) *Projectile {
	return &Projectile{
		Kind:            BouncyBall,
		X:               x - 30,
		Y:               y - 30,
		W:               60,
		H:               60,
		VX:              (rng.Float64() - 0.5) * 8,
		VY:              -8 - rng.Float64()*4,
		AngularVelocity: (rng.Float64() - 0.5) * 0.2,
		MaxBounces:      8,
		Damage:          2,
		AOEDamage:       1,
	}
}

// NewBlazeRod создаёт огненный стержень в указанной позиции
func NewBlazeRod(x, y float64, rng RandomSource) *Projectile {
	return &Projectile{
		Kind:            BlazeRod,
		X:               x,
		Y:               y,
		W:               40,
		H:               40,
		VX:              (rng.Float64() - 0.5) * 2,
		VY:              5 + rng.Float64()*3,
		Rotation:        rng.Float64() * math.Pi * 2,
		AngularVelocity: (rng.Float64() - 0.5) * 0.1,
		MaxBounces:      2,
		Damage:          1.5,
	}
}

// Particle - частица лавы, наносящая урон первому задетому блоку
type Particle struct {
	X, Y   float64
	VX, VY float64
	Life   float64
}

// SpawnBouncyBall выпускает мяч с центром в (x, y)
func (w *World) SpawnBouncyBall(x, y float64) {
	w.Projectiles = append(w.Projectiles, NewBouncyBall(x, y, w.rng))
}

// SpawnBlazeRods выпускает пять стержней над точкой centerY в пределах шахты
func (w *World) SpawnBlazeRods(centerY float64) {
	span := float64(w.cfg.GridWidth) * w.cfg.BlockSize
	startX := w.gen.state.StartX
	for i := 0; i < blazeRodCount; i++ {
		x := startX + w.rng.Float64()*span
		y := centerY - 200 - w.rng.Float64()*200
		w.Projectiles = append(w.Projectiles, NewBlazeRod(x, y, w.rng))
	}
}

// SpawnLavaParticles выпускает частицы лавы из точки (x, y)
func (w *World) SpawnLavaParticles(x, y float64) {
	for i := 0; i < lavaParticles; i++ {
		w.Particles = append(w.Particles, &Particle{
			X:    x + (w.rng.Float64()-0.5)*20,
			Y:    y,
			VX:   (w.rng.Float64() - 0.5) * 4,
			VY:   -w.rng.Float64() * 5,
			Life: lavaParticleLife,
		})
	}
}

// UpdateProjectiles продвигает снаряды на один тик. Снаряды с исчерпанным
// лимитом отскоков удаляются до движения, остальные - после, если лимит
// исчерпан или снаряд ушёл ниже cameraBottom.
func (w *World) UpdateProjectiles(cameraBottom float64) {
	kept := w.Projectiles[:0]
	for _, p := range w.Projectiles {
		if p.Capped() {
			continue
		}
		w.stepProjectile(p)
		if p.Capped() || p.Y > cameraBottom+removeBelowSlack {
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(w.Projectiles); i++ {
		w.Projectiles[i] = nil
	}
	w.Projectiles = kept
}

func (w *World) stepProjectile(p *Projectile) {
	phys := projectileTable[p.Kind]
	p.VY += phys.gravity
	p.VX *= phys.friction

	prevX, prevY := p.X, p.Y
	p.X += p.VX
	p.Y += p.VY
	p.Rotation += p.AngularVelocity

	left, right := w.InnerBounds()
	if p.X < left {
		p.X = left
		p.VX *= -bounceFactor
		p.Bounces++
		if p.Kind == BouncyBall {
			p.AngularVelocity *= -1
		}
	}
	if p.X+p.W > right {
		p.X = right - p.W
		p.VX *= -bounceFactor
		p.Bounces++
		if p.Kind == BouncyBall {
			p.AngularVelocity *= -1
		}
	}

	body := physics.Body{X: prevX, Y: prevY, W: p.W, H: p.H, VX: p.VX, VY: p.VY}
	candidates := w.grid.QueryRegion(body.X, body.Y, body.W+math.Abs(body.VX), body.H+math.Abs(body.VY))

	var (
		hit     *block.Block
		closest = physics.SweptResult{Time: math.Inf(1)}
	)
	for _, b := range candidates {
		res := physics.SweptAABB(body, b.Rect)
		if res.Hit && res.Time < closest.Time {
			closest, hit = res, b
		}
	}
	if hit == nil || closest.Time >= 1 {
		return
	}

	p.Bounces++
	p.X = prevX + p.VX*closest.Time
	p.Y = prevY + p.VY*closest.Time

	if closest.NormalX != 0 {
		p.VX *= -bounceFactor
		p.AngularVelocity += (p.VY / 50) * sign(p.VX)
	}
	if closest.NormalY != 0 {
		if p.VY > 0 {
			p.VY = topBounceSpeed
			p.VX += (w.rng.Float64() - 0.5) * topBounceChaos
			p.AngularVelocity += (w.rng.Float64() - 0.5) * topBounceSpin
		} else {
			p.VY *= -bounceFactor
		}
	}

	w.DamageBlock(hit, p.Damage, true)

	if p.AOEDamage > 0 {
		// Соседи ищутся по центрам клеток: угол блока принадлежит сразу нескольким блокам
		size := w.cfg.BlockSize
		c := hit.Center()
		offsets := [4][2]float64{{-size, 0}, {size, 0}, {0, -size}, {0, size}}
		for _, o := range offsets {
			adj := w.grid.QueryPoint(c.X+o[0], c.Y+o[1])
			if adj != nil && !adj.Destroyed {
				w.DamageBlock(adj, p.AOEDamage, true)
			}
		}
	}
}

// UpdateParticles продвигает частицы лавы. Частица исчезает по истечении
// времени жизни, ниже камеры или при попадании в блок.
func (w *World) UpdateParticles(dt, cameraBottom float64) {
	kept := w.Particles[:0]
	for _, p := range w.Particles {
		p.VY += lavaGravity
		p.X += p.VX
		p.Y += p.VY
		p.Life -= dt

		if p.Life <= 0 || p.Y > cameraBottom+lavaRemoveSlack {
			continue
		}
		if b := w.grid.QueryPoint(p.X, p.Y); b != nil {
			w.DamageBlock(b, lavaDamage, true)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(w.Particles); i++ {
		w.Particles[i] = nil
	}
	w.Particles = kept
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
