package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/breaknblocks/internal/world/block"
)

func TestGridInsertQueryRemove(t *testing.T) {
	g := NewGrid(80)
	b := block.New(120, 300, 40, block.Stone)
	g.Insert(b)

	assert.Same(t, b, g.QueryPoint(140, 320))
	assert.Same(t, b, g.QueryPoint(120, 300), "грань входит в блок")
	assert.Equal(t, 1, g.Len())

	assert.True(t, g.Remove(b))
	assert.Nil(t, g.QueryPoint(140, 320))
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.CellCount())

	assert.False(t, g.Remove(b), "повторное удаление - no-op")
}

func TestGridQueryPointSpillsIntoNeighbourCell(t *testing.T) {
	g := NewGrid(80)
	// Блок начинается в ячейке (0, 3) и заходит в ячейку (1, 4)
	b := block.New(60, 300, 40, block.Stone)
	g.Insert(b)

	assert.Same(t, b, g.QueryPoint(90, 330))
}

func TestGridQueryPointSkipsDestroyed(t *testing.T) {
	g := NewGrid(80)
	b := block.New(0, 0, 40, block.Stone)
	g.Insert(b)
	b.Destroyed = true

	assert.Nil(t, g.QueryPoint(20, 20))
	assert.Empty(t, g.QueryRegion(0, 0, 100, 100))
}

func TestGridQueryPointTieByInsertionOrder(t *testing.T) {
	g := NewGrid(80)
	first := block.New(40, 0, 40, block.Stone)
	second := block.New(80, 0, 40, block.Granite)
	g.Insert(first)
	g.Insert(second)

	// Точка на общей грани принадлежит обоим блокам
	assert.Same(t, first, g.QueryPoint(80, 20))
}

func TestGridQueryRegion(t *testing.T) {
	g := NewGrid(80)
	var all []*block.Block
	for row := 0; row < 5; row++ {
		for col := 0; col < 7; col++ {
			b := block.New(260+float64(col)*40, 300+float64(row)*40, 40, block.Stone)
			g.Insert(b)
			all = append(all, b)
		}
	}
	all[3].Destroyed = true

	got := g.QueryRegion(260, 300, 280, 200)
	var alive []*block.Block
	for _, b := range all {
		if !b.Destroyed {
			alive = append(alive, b)
		}
	}
	assert.Equal(t, alive, got, "полный регион возвращает все живые блоки в порядке вставки")

	// Узкий регион внутри одного блока, который начинается в соседней ячейке
	small := g.QueryRegion(305, 345, 2, 2)
	require.Len(t, small, 1)
	assert.Equal(t, 300.0, small[0].X)
	assert.Equal(t, 340.0, small[0].Y)
}

func TestGridQueryRegionHugeRectangle(t *testing.T) {
	g := NewGrid(80)
	spill := block.New(300, 340, 40, block.Stone)
	far := block.New(4e7, 300, 40, block.CoalOre)
	g.Insert(spill)
	g.Insert(far)

	// Ширина в миллионы ячеек: обход идёт по занятым ячейкам
	got := g.QueryRegion(305, 300, 1e8, 80)
	assert.Equal(t, []*block.Block{spill, far}, got)

	got = g.QueryRegion(305, 345, 1e7, 2)
	assert.Equal(t, []*block.Block{spill}, got, "блок из соседней ячейки слева")

	assert.Empty(t, g.QueryRegion(-1e9, -1e9, 1e8, 1e8))

	far.Destroyed = true
	assert.Equal(t, []*block.Block{spill}, g.QueryRegion(0, 0, 1e9, 1e9))
}

func TestGridRecenterAll(t *testing.T) {
	g := NewGrid(80)
	a := block.New(0, 0, 40, block.Stone)
	b := block.New(40, 0, 40, block.Stone)
	dead := block.New(80, 0, 40, block.Stone)
	g.Insert(a)
	g.Insert(b)
	g.Insert(dead)
	dead.Destroyed = true

	g.RecenterAll(100)
	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, 140.0, b.X)
	assert.Equal(t, 2, g.Len(), "разрушенный блок не возвращается в сетку")
	assert.Same(t, a, g.QueryPoint(120, 20))

	g.RecenterAll(-100)
	assert.Equal(t, 0.0, a.X)
	assert.Equal(t, 40.0, b.X)
	assert.Same(t, b, g.QueryPoint(60, 20))
	assert.Equal(t, []*block.Block{a, b}, g.All())
}

func TestGridStats(t *testing.T) {
	g := NewGrid(80)
	g.Insert(block.New(0, 0, 40, block.Stone))
	g.Insert(block.New(40, 0, 40, block.Stone))
	g.Insert(block.New(200, 0, 40, block.Stone))

	s := g.Stats()
	assert.Equal(t, 3, s.Blocks)
	assert.Equal(t, 2, s.Cells)
	assert.Equal(t, 2, s.MaxBlocksInCell)
	assert.InDelta(t, 1.5, s.AvgBlocksInCell, 1e-9)
	assert.Contains(t, s.String(), "3 blocks")

	g.Clear()
	assert.Equal(t, 0, g.Len())
}
