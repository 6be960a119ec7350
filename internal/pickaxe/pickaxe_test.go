package pickaxe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/breaknblocks/internal/physics"
	"github.com/annel0/breaknblocks/internal/vec"
)

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func TestVariants(t *testing.T) {
	require.Len(t, Variants, 10)
	assert.Equal(t, "wooden", Variants[0].Name)
	assert.Equal(t, AbilityLavaParticles, Variants[7].Ability)
	assert.Equal(t, 5.0, Variants[8].AbilityCooldown)

	idx, ok := VariantIndex("fish")
	assert.True(t, ok)
	assert.Equal(t, 9, idx)
	_, ok = VariantIndex("plastic")
	assert.False(t, ok)
}

func TestNewPickaxe(t *testing.T) {
	p := New(380, DefaultStartY)
	assert.Equal(t, 380.0, p.X)
	assert.Equal(t, DefaultSize, p.W)
	assert.Equal(t, 35.0, p.Durability())
	assert.Equal(t, 1.0, p.DurabilityPercent())
	assert.False(t, p.Dropped)

	assert.Error(t, p.SetVariant(10))
	require.NoError(t, p.SetVariant(4))
	assert.Equal(t, 200.0, p.Durability())
}

func TestSwayStaysInRange(t *testing.T) {
	p := New(0, DefaultStartY)
	p.SetSwayForViewport(800)

	for i := 0; i < 500; i++ {
		p.Update(1.0 / 144)
		assert.GreaterOrEqual(t, p.X, 225.0-1e-9)
		assert.LessOrEqual(t, p.X, 525.0+1e-9)
		assert.Equal(t, DefaultStartY, p.Y, "До броска кирка не падает")
	}
}

func TestDropAndFall(t *testing.T) {
	p := New(100, 50)
	require.True(t, p.Drop(fixedRand(0.5)))
	assert.False(t, p.Drop(fixedRand(0.5)), "Повторный бросок невозможен")
	assert.Equal(t, 1.0, p.VY)
	assert.Equal(t, 0.0, p.AngularVelocity)

	p.Update(1.0 / 144)
	assert.InDelta(t, 1.4, p.VY, 1e-9)
	assert.InDelta(t, 51.4, p.Y, 1e-9)
	assert.Equal(t, 50.0, p.PrevY)
}

func TestNextUnlocked(t *testing.T) {
	p := New(0, 0)
	unlocked := map[string]bool{"wooden": true, "iron": true}
	isUnlocked := func(name string) bool { return unlocked[name] }

	assert.True(t, p.NextUnlocked(isUnlocked))
	assert.Equal(t, 2, p.Current)
	assert.True(t, p.NextUnlocked(isUnlocked))
	assert.Equal(t, 0, p.Current, "Переключение идёт по кругу")

	p.Drop(fixedRand(0.5))
	assert.False(t, p.NextUnlocked(isUnlocked), "После броска вид не меняется")
	assert.Equal(t, 0, p.Current)
}

func TestTakeDamageAndReset(t *testing.T) {
	p := New(0, 0)
	assert.False(t, p.TakeDamage(10))
	assert.InDelta(t, 25.0/35.0, p.DurabilityPercent(), 1e-9)
	assert.True(t, p.TakeDamage(30))
	assert.True(t, p.Broken)
	assert.Equal(t, 0.0, p.Durability())
	assert.False(t, p.TakeDamage(1), "Сломанная кирка не получает урон")

	p.Reset(10, 20)
	assert.False(t, p.Broken)
	assert.Equal(t, 35.0, p.Durability())
	assert.Equal(t, 10.0, p.X)
}

func TestResolveTopHit(t *testing.T) {
	p := New(0, 35)
	p.VY = 6
	box := vec.Rect{X: 0, Y: 80, W: 40, H: 40}

	res := physics.StaticOverlap(p.Rect(), box)
	require.True(t, res.Hit)
	p.ResolveBlockHit(res, fixedRand(0.5))

	assert.InDelta(t, 30.0, p.Y, 1e-9)
	assert.Equal(t, -14.0, p.VY)
	assert.Equal(t, 0.0, p.VX)
}

func TestResolveSideHit(t *testing.T) {
	p := New(-45, 80)
	p.VX = 3
	box := vec.Rect{X: 0, Y: 80, W: 40, H: 40}

	res := physics.StaticOverlap(p.Rect(), box)
	require.True(t, res.Hit)
	p.ResolveBlockHit(res, fixedRand(0.5))

	assert.InDelta(t, -50.0, p.X, 1e-9)
	assert.InDelta(t, -1.5, p.VX, 1e-9)
}

func TestResolveBottomHit(t *testing.T) {
	p := New(0, 115)
	p.VY = -4
	box := vec.Rect{X: 0, Y: 80, W: 40, H: 40}

	res := physics.StaticOverlap(p.Rect(), box)
	require.True(t, res.Hit)
	require.Equal(t, 1.0, res.NormalY)
	p.ResolveBlockHit(res, fixedRand(0.5))

	assert.InDelta(t, 120.0, p.Y, 1e-9)
	assert.InDelta(t, 2.0, p.VY, 1e-9)
}

func TestClampToWalls(t *testing.T) {
	p := New(10, 0)
	p.VX = -4
	assert.True(t, p.ClampToWalls(40, 320))
	assert.Equal(t, 40.0, p.X)
	assert.InDelta(t, 2.0, p.VX, 1e-9)

	p.X = 300
	p.VX = 4
	assert.True(t, p.ClampToWalls(40, 320))
	assert.Equal(t, 270.0, p.X)

	p.X = 100
	assert.False(t, p.ClampToWalls(40, 320))
}

func TestSweepBox(t *testing.T) {
	p := New(10, 0)
	p.X, p.Y = 20, 5

	box := p.SweepBox()
	assert.Equal(t, vec.Rect{X: 5, Y: -5, W: 70, H: 65}, box)
}

func TestSizeBuffExpires(t *testing.T) {
	p := New(0, 0)
	p.Drop(fixedRand(0.5))
	p.ApplySizeBuff()
	assert.Equal(t, DefaultSize*SizeBuffScale, p.W)

	p.Update(4)
	assert.Equal(t, DefaultSize*SizeBuffScale, p.W)
	p.Update(1.5)
	assert.Equal(t, DefaultSize, p.W)
	assert.Equal(t, 0.0, p.SizeBuffRemaining())
}
