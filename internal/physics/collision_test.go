package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/breaknblocks/internal/vec"
)

var testBlock = vec.Rect{X: 120, Y: 90, W: 40, H: 40}

func TestSweptAABBStationary(t *testing.T) {
	body := Body{X: 100, Y: 100, W: 10, H: 10}
	assert.False(t, SweptAABB(body, testBlock).Hit, "неподвижное тело не сталкивается")
}

func TestSweptAABBHorizontalHit(t *testing.T) {
	body := Body{X: 100, Y: 100, W: 10, H: 10, VX: 50}
	res := SweptAABB(body, testBlock)

	assert.True(t, res.Hit)
	assert.InDelta(t, 0.2, res.Time, 1e-9)
	assert.Equal(t, -1.0, res.NormalX)
	assert.Equal(t, 0.0, res.NormalY)
}

func TestSweptAABBZeroAxisMustOverlap(t *testing.T) {
	// Движение по X, но по Y тело проходит выше блока
	body := Body{X: 100, Y: 40, W: 10, H: 10, VX: 50}
	assert.False(t, SweptAABB(body, testBlock).Hit)
}

func TestSweptAABBTooFar(t *testing.T) {
	body := Body{X: 0, Y: 100, W: 10, H: 10, VX: 50}
	assert.False(t, SweptAABB(body, testBlock).Hit, "контакт за пределами тика")
}

func TestSweptAABBFallingOnTop(t *testing.T) {
	body := Body{X: 130, Y: 60, W: 20, H: 20, VY: 20}
	res := SweptAABB(body, testBlock)

	assert.True(t, res.Hit)
	assert.InDelta(t, 0.5, res.Time, 1e-9)
	assert.Equal(t, -1.0, res.NormalY)
	assert.Equal(t, 0.0, res.NormalX)
}

func TestSweptAABBMovingUpExitUsesBodyHeight(t *testing.T) {
	// Высокое тело под блоком летит вверх
	body := Body{X: 130, Y: 140, W: 10, H: 60, VY: -20}
	res := SweptAABB(body, testBlock)

	assert.True(t, res.Hit)
	assert.InDelta(t, 0.5, res.Time, 1e-9)
	assert.Equal(t, 1.0, res.NormalY)
}

func TestSweptAABBTieIsVertical(t *testing.T) {
	body := Body{X: 100, Y: 70, W: 10, H: 10, VX: 20, VY: 20}
	res := SweptAABB(body, testBlock)

	assert.True(t, res.Hit)
	assert.InDelta(t, 0.5, res.Time, 1e-9)
	assert.Equal(t, 0.0, res.NormalX)
	assert.Equal(t, -1.0, res.NormalY)
}

func TestSweptAABBDoesNotMutate(t *testing.T) {
	body := Body{X: 100, Y: 100, W: 10, H: 10, VX: 50}
	box := testBlock
	SweptAABB(body, box)
	assert.Equal(t, Body{X: 100, Y: 100, W: 10, H: 10, VX: 50}, body)
	assert.Equal(t, testBlock, box)
}

func TestSweepBounds(t *testing.T) {
	body := Body{X: 100, Y: 100, W: 10, H: 10, VX: -20, VY: 5}
	r := body.SweepBounds(5)
	assert.Equal(t, vec.Rect{X: 75, Y: 95, W: 40, H: 25}, r)
}

func TestStaticOverlapMiss(t *testing.T) {
	body := vec.Rect{X: 0, Y: 0, W: 50, H: 50}
	assert.False(t, StaticOverlap(body, testBlock).Hit)

	// Касание гранью не считается пересечением
	touching := vec.Rect{X: 70, Y: 90, W: 50, H: 50}
	assert.False(t, StaticOverlap(touching, testBlock).Hit)
}

func TestStaticOverlapFromAbove(t *testing.T) {
	body := vec.Rect{X: 115, Y: 45, W: 50, H: 50}
	res := StaticOverlap(body, testBlock)

	assert.True(t, res.Hit)
	assert.Equal(t, 5.0, res.OverlapY)
	assert.Equal(t, 45.0, res.OverlapX)
	assert.Equal(t, -1.0, res.NormalY)
	assert.Equal(t, 0.0, res.NormalX)
}

func TestStaticOverlapFromSide(t *testing.T) {
	body := vec.Rect{X: 155, Y: 85, W: 50, H: 50}
	res := StaticOverlap(body, testBlock)

	assert.True(t, res.Hit)
	assert.Equal(t, 5.0, res.OverlapX)
	assert.Equal(t, 1.0, res.NormalX)
	assert.Equal(t, 0.0, res.NormalY)
}
