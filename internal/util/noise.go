package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума по умолчанию
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = 3   // Количество октав
)

// Noise - детерминированное поле шума Перлина для заданного сида
type Noise struct {
	p     *perlin.Perlin
	scale float64
}

// NewNoise создаёт поле шума. scale задаёт масштаб координат (меньше - крупнее пятна).
func NewNoise(seed int64, scale float64) *Noise {
	if scale <= 0 {
		scale = 1
	}
	return &Noise{
		p:     perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		scale: scale,
	}
}

// At возвращает значение шума в точке (x, y), приведённое к диапазону [0, 1]
func (n *Noise) At(x, y float64) float64 {
	v := (n.p.Noise2D(x*n.scale, y*n.scale) + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
