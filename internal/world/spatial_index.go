package world

import (
	"fmt"
	"math"
	"sort"

	"github.com/annel0/breaknblocks/internal/vec"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// cellKey представляет ключ ячейки в пространственной сетке
type cellKey struct {
	x, y int
}

// gridEntry хранит блок и порядковый номер его вставки
type gridEntry struct {
	b   *block.Block
	seq uint64
}

// Grid - равномерная сетка для широкой фазы столкновений. Каждый живой блок
// лежит ровно в одной ячейке: той, где находится его левый верхний угол.
// Сетка не потокобезопасна и изменяется только из цикла симуляции.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]gridEntry
	count    int
	nextSeq  uint64
}

// GridStats - сводка по заполненности сетки
type GridStats struct {
	Blocks          int     `json:"blocks"`
	Cells           int     `json:"cells"`
	AvgBlocksInCell float64 `json:"avg_blocks_per_cell"`
	MaxBlocksInCell int     `json:"max_blocks_per_cell"`
}

// String возвращает статистику в читаемом виде
func (s GridStats) String() string {
	return fmt.Sprintf("Grid Stats: %d blocks, %d cells, avg %.2f blocks/cell, max %d blocks/cell",
		s.Blocks, s.Cells, s.AvgBlocksInCell, s.MaxBlocksInCell)
}

// NewGrid создаёт сетку с указанным размером ячейки. Поиск точки корректен,
// пока ребро блока не превышает размер ячейки.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 80
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]gridEntry),
	}
}

// CellSize возвращает размер ячейки
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

func (g *Grid) keyFor(x, y float64) cellKey {
	return cellKey{
		x: int(math.Floor(x / g.cellSize)),
		y: int(math.Floor(y / g.cellSize)),
	}
}

// Insert добавляет блок в ячейку его левого верхнего угла.
// Повторная вставка того же блока не проверяется.
func (g *Grid) Insert(b *block.Block) {
	key := g.keyFor(b.X, b.Y)
	g.cells[key] = append(g.cells[key], gridEntry{b: b, seq: g.nextSeq})
	g.nextSeq++
	g.count++
}

// Remove удаляет блок из сетки. Возвращает false, если блока в сетке не было.
func (g *Grid) Remove(b *block.Block) bool {
	key := g.keyFor(b.X, b.Y)
	cell, ok := g.cells[key]
	if !ok {
		return false
	}

	for i, e := range cell {
		if e.b != b {
			continue
		}
		cell = append(cell[:i], cell[i+1:]...)
		if len(cell) == 0 {
			delete(g.cells, key)
		} else {
			g.cells[key] = cell
		}
		g.count--
		return true
	}
	return false
}

// QueryPoint возвращает живой блок, замкнутый прямоугольник которого содержит точку.
// Кроме ячейки точки проверяются соседние сверху и слева: блок, начавшийся
// там, может заходить в ячейку точки. При нескольких совпадениях побеждает
// блок, вставленный раньше.
func (g *Grid) QueryPoint(x, y float64) *block.Block {
	key := g.keyFor(x, y)

	var (
		found    *block.Block
		foundSeq uint64
	)
	for dx := -1; dx <= 0; dx++ {
		for dy := -1; dy <= 0; dy++ {
			for _, e := range g.cells[cellKey{x: key.x + dx, y: key.y + dy}] {
				if e.b.Destroyed || !e.b.Contains(x, y) {
					continue
				}
				if found == nil || e.seq < foundSeq {
					found, foundSeq = e.b, e.seq
				}
			}
		}
	}
	return found
}

// QueryRegion возвращает живые блоки, пересекающие прямоугольник (касание
// гранью считается пересечением), в порядке вставки. Нижняя граница диапазона
// ячеек расширяется на одну ячейку, чтобы учесть блоки из соседних ячеек.
func (g *Grid) QueryRegion(x, y, w, h float64) []*block.Block {
	minKey := g.keyFor(x, y)
	maxKey := g.keyFor(x+w, y+h)
	region := vec.Rect{X: x, Y: y, W: w, H: h}

	seen := make(map[*block.Block]struct{})
	entries := make([]gridEntry, 0, 16)

	collect := func(list []gridEntry) {
		for _, e := range list {
			if e.b.Destroyed {
				continue
			}
			if _, dup := seen[e.b]; dup {
				continue
			}
			if !e.b.Rect.Intersects(region) {
				continue
			}
			seen[e.b] = struct{}{}
			entries = append(entries, e)
		}
	}

	// Диапазон больше числа занятых ячеек: обходим карту, а не пустые индексы
	span := (float64(maxKey.x) - float64(minKey.x) + 2) * (float64(maxKey.y) - float64(minKey.y) + 2)
	if span > float64(len(g.cells)) {
		for key, list := range g.cells {
			if key.x >= minKey.x-1 && key.x <= maxKey.x && key.y >= minKey.y-1 && key.y <= maxKey.y {
				collect(list)
			}
		}
	} else {
		for cx := minKey.x - 1; cx <= maxKey.x; cx++ {
			for cy := minKey.y - 1; cy <= maxKey.y; cy++ {
				collect(g.cells[cellKey{x: cx, y: cy}])
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	result := make([]*block.Block, len(entries))
	for i, e := range entries {
		result[i] = e.b
	}
	return result
}

// RecenterAll сдвигает все блоки сетки по X и перестраивает ячейки.
// Разрушенные блоки при перестройке отбрасываются.
func (g *Grid) RecenterAll(deltaX float64) {
	entries := g.sortedEntries()
	g.cells = make(map[cellKey][]gridEntry, len(g.cells))
	g.count = 0

	for _, e := range entries {
		if e.b.Destroyed {
			continue
		}
		e.b.X += deltaX
		key := g.keyFor(e.b.X, e.b.Y)
		g.cells[key] = append(g.cells[key], e)
		g.count++
	}
}

// All возвращает все блоки сетки в порядке вставки
func (g *Grid) All() []*block.Block {
	entries := g.sortedEntries()
	result := make([]*block.Block, len(entries))
	for i, e := range entries {
		result[i] = e.b
	}
	return result
}

// Len возвращает количество блоков в сетке
func (g *Grid) Len() int {
	return g.count
}

// CellCount возвращает количество непустых ячеек
func (g *Grid) CellCount() int {
	return len(g.cells)
}

// Clear удаляет все блоки
func (g *Grid) Clear() {
	g.cells = make(map[cellKey][]gridEntry)
	g.count = 0
}

// Stats возвращает статистику сетки
func (g *Grid) Stats() GridStats {
	stats := GridStats{Blocks: g.count, Cells: len(g.cells)}
	for _, cell := range g.cells {
		if len(cell) > stats.MaxBlocksInCell {
			stats.MaxBlocksInCell = len(cell)
		}
	}
	if stats.Cells > 0 {
		stats.AvgBlocksInCell = float64(stats.Blocks) / float64(stats.Cells)
	}
	return stats
}

func (g *Grid) sortedEntries() []gridEntry {
	entries := make([]gridEntry, 0, g.count)
	for _, cell := range g.cells {
		entries = append(entries, cell...)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}
