package physics

import (
	"math"

	"github.com/annel0/breaknblocks/internal/vec"
)

// Body описывает движущееся тело: прямоугольник (левый верхний угол + размер)
// и скорость в пикселях за тик.
type Body struct {
	X, Y   float64
	W, H   float64
	VX, VY float64
}

// Rect возвращает ограничивающий прямоугольник тела
func (b Body) Rect() vec.Rect {
	return vec.Rect{X: b.X, Y: b.Y, W: b.W, H: b.H}
}

// SweepBounds возвращает прямоугольник, покрывающий тело в начале и в конце тика,
// расширенный на margin с каждой стороны. Используется для широкой фазы.
func (b Body) SweepBounds(margin float64) vec.Rect {
	minX := math.Min(b.X, b.X+b.VX) - margin
	minY := math.Min(b.Y, b.Y+b.VY) - margin
	maxX := math.Max(b.X, b.X+b.VX) + b.W + margin
	maxY := math.Max(b.Y, b.Y+b.VY) + b.H + margin
	return vec.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// SweptResult - результат непрерывной проверки столкновения
type SweptResult struct {
	Hit     bool
	Time    float64 // Доля тика до контакта, [0, 1]
	NormalX float64
	NormalY float64
}

// OverlapResult - результат статической проверки пересечения
type OverlapResult struct {
	Hit      bool
	NormalX  float64
	NormalY  float64
	OverlapX float64
	OverlapY float64
}

// SweptAABB находит момент входа движущегося тела в неподвижный блок в пределах
// одного тика. Нормаль берётся по оси с более поздним входом, при равенстве по
// вертикали. Входные значения не изменяются.
func SweptAABB(body Body, box vec.Rect) SweptResult {
	if body.VX == 0 && body.VY == 0 {
		return SweptResult{}
	}

	entryX, exitX, okX := axisTimes(body.X, body.W, body.VX, box.X, box.W)
	entryY, exitY, okY := axisTimes(body.Y, body.H, body.VY, box.Y, box.H)
	if !okX || !okY {
		return SweptResult{}
	}

	entry := math.Max(entryX, entryY)
	exit := math.Min(exitX, exitY)

	if entry > exit || (entryX < 0 && entryY < 0) || entry > 1 {
		return SweptResult{}
	}

	res := SweptResult{Hit: true, Time: entry}
	if entryX > entryY {
		res.NormalX = -sign(body.VX)
	} else {
		res.NormalY = -sign(body.VY)
	}
	return res
}

// axisTimes считает время входа и выхода по одной оси. Для неподвижной оси
// столкновение возможно только если проекции уже пересекаются, иначе ok=false.
func axisTimes(pos, size, vel, boxPos, boxSize float64) (entry, exit float64, ok bool) {
	if vel == 0 {
		if pos < boxPos+boxSize && pos+size > boxPos {
			return math.Inf(-1), math.Inf(1), true
		}
		return 0, 0, false
	}

	var invEntry, invExit float64
	if vel > 0 {
		invEntry = boxPos - (pos + size)
		invExit = (boxPos + boxSize) - pos
	} else {
		invEntry = (boxPos + boxSize) - pos
		invExit = boxPos - (pos + size)
	}
	return invEntry / vel, invExit / vel, true
}

// StaticOverlap проверяет пересечение двух прямоугольников. Ось разделения -
// ось с наименьшим перекрытием, нормаль определяется положением центра тела
// относительно центра блока.
func StaticOverlap(body, box vec.Rect) OverlapResult {
	if !body.Overlaps(box) {
		return OverlapResult{}
	}

	overlapX := math.Min(body.Right()-box.X, box.Right()-body.X)
	overlapY := math.Min(body.Bottom()-box.Y, box.Bottom()-body.Y)

	res := OverlapResult{Hit: true, OverlapX: overlapX, OverlapY: overlapY}
	bc, kc := body.Center(), box.Center()

	if overlapX < overlapY {
		if bc.X < kc.X {
			res.NormalX = -1
		} else {
			res.NormalX = 1
		}
	} else {
		if bc.Y < kc.Y {
			res.NormalY = -1
		} else {
			res.NormalY = 1
		}
	}
	return res
}

func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	return -1
}
