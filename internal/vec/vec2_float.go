package vec

import "math"

// Vec2Float - точка на экране в пикселях
type Vec2Float struct {
	X, Y float64
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}
