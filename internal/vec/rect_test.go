package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 40, H: 40}
	assert.True(t, r.Contains(10, 20), "левый верхний угол")
	assert.True(t, r.Contains(50, 60), "правый нижний угол")
	assert.False(t, r.Contains(50.1, 30))
}

func TestRectOverlapsAndIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 40, H: 40}
	b := Rect{X: 40, Y: 0, W: 40, H: 40}

	assert.False(t, a.Overlaps(b), "касание не пересечение")
	assert.True(t, a.Intersects(b), "касание учитывается")
	assert.True(t, a.Overlaps(Rect{X: 39, Y: 39, W: 5, H: 5}))
}

func TestRectCenterAndTranslate(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 40, H: 60}
	assert.Equal(t, Vec2Float{X: 30, Y: 50}, r.Center())
	assert.Equal(t, Rect{X: 15, Y: 10, W: 40, H: 60}, r.Translate(5, -10))
	assert.Equal(t, 50.0, r.Right())
	assert.Equal(t, 80.0, r.Bottom())
}

func TestDistanceTo(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 20, H: 20}.Center()
	assert.Equal(t, 5.0, a.DistanceTo(Vec2Float{X: 13, Y: 14}))
	assert.Zero(t, a.DistanceTo(a))
}
