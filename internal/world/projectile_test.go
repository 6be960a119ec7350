package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCappedProjectileRemovedBeforeMoving(t *testing.T) {
	w := newTestWorld(t, 10)
	p := &Projectile{Kind: BouncyBall, X: 300, Y: 100, W: 60, H: 60, VY: 5, Bounces: 8, MaxBounces: 8}
	w.Projectiles = append(w.Projectiles, p)

	w.UpdateProjectiles(1000)
	assert.Empty(t, w.Projectiles)
	assert.Equal(t, 100.0, p.Y, "снаряд не двигался")
}

func TestProjectileRemovedBelowCamera(t *testing.T) {
	w := newTestWorld(t, 11)
	w.Projectiles = append(w.Projectiles, &Projectile{Kind: BlazeRod, X: 300, Y: 5000, W: 40, H: 40, MaxBounces: 2})

	w.UpdateProjectiles(1000)
	assert.Empty(t, w.Projectiles)
}

func TestBallBouncesOffBlockTop(t *testing.T) {
	w := newTestWorld(t, 12)
	left, _ := w.InnerBounds()
	ball := &Projectile{Kind: BouncyBall, X: left + 100, Y: 200, W: 60, H: 60, VY: 45, MaxBounces: 8, Damage: 2, AOEDamage: 1}
	w.Projectiles = append(w.Projectiles, ball)

	target := w.Grid().QueryPoint(left+100, 320)
	require.NotNil(t, target)

	w.UpdateProjectiles(1000)
	require.Len(t, w.Projectiles, 1)

	// vy = 45 + 0.3, контакт через (300-260)/45.3 тика
	assert.Equal(t, 1, ball.Bounces)
	assert.Equal(t, -14.0, ball.VY)
	assert.InDelta(t, 240.0, ball.Y, 1e-9)
	assert.Less(t, target.Health, target.MaxHealth)
}

func TestWallBounce(t *testing.T) {
	w := newTestWorld(t, 13)
	left, _ := w.InnerBounds()
	rod := &Projectile{Kind: BlazeRod, X: left + 2, Y: 100, W: 40, H: 40, VX: -10, MaxBounces: 2}
	w.Projectiles = append(w.Projectiles, rod)

	w.UpdateProjectiles(1000)
	assert.Equal(t, left, rod.X)
	assert.Equal(t, 1, rod.Bounces)
	assert.Greater(t, rod.VX, 0.0)
}

func TestSpawnBlazeRods(t *testing.T) {
	w := newTestWorld(t, 14)
	w.SpawnBlazeRods(1000)

	require.Len(t, w.Projectiles, 5)
	left, right := w.InnerBounds()
	for _, p := range w.Projectiles {
		assert.Equal(t, BlazeRod, p.Kind)
		assert.Equal(t, 2, p.MaxBounces)
		assert.GreaterOrEqual(t, p.X, left)
		assert.LessOrEqual(t, p.X, right)
		assert.GreaterOrEqual(t, p.Y, 600.0)
		assert.LessOrEqual(t, p.Y, 800.0)
	}
}

func TestLavaParticleDamagesBlock(t *testing.T) {
	w := newTestWorld(t, 15)
	b := w.Blocks[20]
	c := b.Center()
	w.Particles = append(w.Particles, &Particle{X: c.X, Y: c.Y, Life: 2})

	w.UpdateParticles(1.0/144, 10000)
	assert.Empty(t, w.Particles)
	assert.InDelta(t, b.MaxHealth-0.5, b.Health, 1e-9)

	w.SpawnLavaParticles(400, 100)
	assert.Len(t, w.Particles, 20)
}
