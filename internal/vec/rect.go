package vec

// Rect представляет осевой прямоугольник (AABB): левый верхний угол и размер.
// Ось Y направлена вниз, как в экранных координатах.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right возвращает правую границу
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom возвращает нижнюю границу
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center возвращает центр прямоугольника
func (r Rect) Center() Vec2Float {
	return Vec2Float{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains проверяет, лежит ли точка внутри прямоугольника (границы включительно)
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Overlaps проверяет строгое пересечение (касание гранями не считается)
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() &&
		r.Right() > other.X &&
		r.Y < other.Bottom() &&
		r.Bottom() > other.Y
}

// Intersects проверяет пересечение с учётом касания гранями
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.Right() &&
		r.Right() >= other.X &&
		r.Y <= other.Bottom() &&
		r.Bottom() >= other.Y
}

// Translate возвращает прямоугольник, сдвинутый на (dx, dy)
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}
