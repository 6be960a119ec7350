package world

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/annel0/breaknblocks/internal/logging"
	"github.com/annel0/breaknblocks/internal/util"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// ErrInvalidArgument возвращается при недопустимых координатах строки или столбца
var ErrInvalidArgument = errors.New("invalid argument")

// Пороги переходной полосы глубинного сланца
const (
	deepslateLowWeight  = 0.2 // Вес в первой половине полосы
	deepslateHighBase   = 0.8 // Базовый шанс во второй половине полосы
	stoneAndesiteCutoff = 0.15
	stoneDioriteCutoff  = 0.30
	stoneGraniteCutoff  = 0.45
	generateAheadFactor = 1.5 // Генерировать, когда до конца шахты меньше 1.5 экрана
)

// RandomSource - источник случайных чисел в [0, 1). *rand.Rand подходит напрямую,
// тесты подставляют заранее заданные последовательности.
type RandomSource interface {
	Float64() float64
}

// GenerationState описывает прогресс генерации шахты
type GenerationState struct {
	GeneratedRows int     // Сколько строк выдано (включая стоящие в очереди)
	Queue         []int   // Строки, ожидающие материализации
	StartX        float64 // X левого столбца
	LeftBarrierX  float64 // X левой стены
	RightBarrierX float64 // X правой стены
	Initialized   bool
}

// Generator генерирует строки шахты и ведёт очередь генерации
type Generator struct {
	cfg     GeneratorConfig
	ores    []oreEntry
	rng     RandomSource
	grid    *Grid
	strata  *util.Noise
	summer  bool
	state   GenerationState
	onBlock func(*block.Block)
	log     *logging.Logger
}

// NewGenerator создаёт генератор. seed задаёт поле шума для летних пластов песка.
func NewGenerator(cfg GeneratorConfig, rng RandomSource, grid *Grid, seed int64) (*Generator, error) {
	ores, err := cfg.oreTable()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is nil", ErrInvalidArgument)
	}
	if grid == nil {
		grid = NewGrid(cfg.BlockSize * 2)
	}

	return &Generator{
		cfg:    cfg,
		ores:   ores,
		rng:    rng,
		grid:   grid,
		strata: util.NewNoise(seed, cfg.SummerStrataScale),
		log:    logging.GetWorldLogger(),
	}, nil
}

// OnBlock задаёт функцию, получающую каждый созданный блок
func (g *Generator) OnBlock(fn func(*block.Block)) {
	g.onBlock = fn
}

// SetSummer включает режим летнего события (песок вместо камня)
func (g *Generator) SetSummer(active bool) {
	g.summer = active
}

// Summer сообщает, включён ли летний режим
func (g *Generator) Summer() bool {
	return g.summer
}

// Grid возвращает сетку, в которую генератор добавляет блоки
func (g *Generator) Grid() *Grid {
	return g.grid
}

// State возвращает копию состояния генерации
func (g *Generator) State() GenerationState {
	s := g.state
	s.Queue = append([]int(nil), g.state.Queue...)
	return s
}

// RowY возвращает Y верхней грани строки
func (g *Generator) RowY(row int) float64 {
	return g.cfg.TopY + float64(row)*g.cfg.BlockSize
}

// ColumnX возвращает X левой грани столбца
func (g *Generator) ColumnX(col int) float64 {
	return g.state.StartX + float64(col)*g.cfg.BlockSize
}

// IsDeepslateLayer решает, относится ли глубина к слою глубинного сланца.
// В переходной полосе выполняется ровно одно обращение к генератору случайных чисел.
func (g *Generator) IsDeepslateLayer(depth int) bool {
	if depth < g.cfg.DeepslateStart {
		return false
	}
	if depth >= g.cfg.DeepslateBandEnd {
		return true
	}

	band := float64(g.cfg.DeepslateBandEnd - g.cfg.DeepslateStart)
	transition := float64(depth-g.cfg.DeepslateStart) / band
	r := g.rng.Float64()

	if depth < g.cfg.DeepslateFull {
		return r < transition*deepslateLowWeight
	}
	return r < deepslateHighBase+transition*deepslateLowWeight
}

// ChooseOreByDepth выбирает руду по кумулятивному распределению, отсортированному
// по убыванию шанса. false означает, что выпал пустой хвост распределения.
func (g *Generator) ChooseOreByDepth(depth int) (block.Ore, bool) {
	depthMultiplier := 1 + float64(depth)*g.cfg.DepthScale

	type weighted struct {
		ore    block.Ore
		chance float64
	}
	chances := make([]weighted, len(g.ores))
	for i, e := range g.ores {
		chances[i] = weighted{ore: e.ore, chance: e.base * depthMultiplier * e.multiplier}
	}
	sort.SliceStable(chances, func(i, j int) bool { return chances[i].chance > chances[j].chance })

	r := g.rng.Float64()
	cumulative := 0.0
	for _, w := range chances {
		if r < cumulative+w.chance {
			return w.ore, true
		}
		cumulative += w.chance
	}
	return 0, false
}

// DetermineBlockType выбирает тип блока для ячейки (row, col).
// Порядок проверок фиксирован, каждая проверка делает собственную выборку.
func (g *Generator) DetermineBlockType(row, col int) (block.Kind, error) {
	if err := g.checkCell(row, col); err != nil {
		return 0, err
	}

	depth := row
	deepslate := g.IsDeepslateLayer(depth)

	nearCoal := g.hasAdjacent(row, col, block.CoalOre, block.DeepslateCoalOre)
	nearAndesite := g.hasAdjacent(row, col, block.Andesite)
	nearDiorite := g.hasAdjacent(row, col, block.Diorite)
	nearGranite := g.hasAdjacent(row, col, block.Granite)

	if !deepslate {
		if nearAndesite && g.rng.Float64() < g.cfg.StoneClusterChance {
			return block.Andesite, nil
		}
		if nearDiorite && g.rng.Float64() < g.cfg.StoneClusterChance {
			return block.Diorite, nil
		}
		if nearGranite && g.rng.Float64() < g.cfg.StoneClusterChance {
			return block.Granite, nil
		}
	}
	if nearCoal && g.rng.Float64() < g.cfg.CoalClusterChance {
		return block.OreCoal.Kind(deepslate), nil
	}

	obsidianChance := 0.0
	if depth > g.cfg.ObsidianFloor {
		obsidianChance = float64(depth-g.cfg.ObsidianFloor) * g.cfg.ObsidianStep
	}
	if g.rng.Float64() < obsidianChance {
		return block.Obsidian, nil
	}

	if ore, ok := g.ChooseOreByDepth(depth); ok && g.rng.Float64() < g.cfg.OreGate {
		return ore.Kind(deepslate), nil
	}

	if deepslate {
		return block.Deepslate, nil
	}

	r := g.rng.Float64()
	switch {
	case r < stoneAndesiteCutoff:
		return block.Andesite, nil
	case r < stoneDioriteCutoff:
		return block.Diorite, nil
	case r < stoneGraniteCutoff:
		return block.Granite, nil
	default:
		return block.Stone, nil
	}
}

// hasAdjacent проверяет соседей слева, справа и сверху на совпадение с одним из типов
func (g *Generator) hasAdjacent(row, col int, kinds ...block.Kind) bool {
	neighbours := [3][2]int{{row, col - 1}, {row, col + 1}, {row - 1, col}}
	half := g.cfg.BlockSize / 2

	for _, n := range neighbours {
		r, c := n[0], n[1]
		if r < 0 || c < 0 || c >= g.cfg.GridWidth {
			continue
		}

		x, y := g.ColumnX(c), g.RowY(r)
		b := g.grid.QueryPoint(x+half, y+half)
		if b == nil || math.Abs(b.X-x) >= 1 || math.Abs(b.Y-y) >= 1 {
			continue
		}
		for _, k := range kinds {
			if b.Kind == k {
				return true
			}
		}
	}
	return false
}

func (g *Generator) checkCell(row, col int) error {
	if row < 0 {
		return fmt.Errorf("%w: row %d is negative", ErrInvalidArgument, row)
	}
	if col < 0 || col >= g.cfg.GridWidth {
		return fmt.Errorf("%w: column %d outside [0, %d)", ErrInvalidArgument, col, g.cfg.GridWidth)
	}
	return nil
}

// GenerateRow создаёт строку из GridWidth блоков, добавляет их в сетку
// и передаёт обработчику OnBlock.
func (g *Generator) GenerateRow(row int) ([]*block.Block, error) {
	if row < 0 {
		return nil, fmt.Errorf("%w: row %d is negative", ErrInvalidArgument, row)
	}

	y := g.RowY(row)
	blocks := make([]*block.Block, 0, g.cfg.GridWidth)

	for col := 0; col < g.cfg.GridWidth; col++ {
		x := g.ColumnX(col)

		var b *block.Block
		if g.summer {
			b = block.New(x, y, g.cfg.BlockSize, g.summerKind(row, col))
		} else {
			kind, err := g.DetermineBlockType(row, col)
			if err != nil {
				return blocks, fmt.Errorf("generate row %d: %w", row, err)
			}
			b = block.New(x, y, g.cfg.BlockSize, kind)

			if g.rng.Float64() < g.cfg.BonusChance && kind != block.Bedrock && kind != block.Obsidian {
				b.HasBonus = true
			}
		}

		g.grid.Insert(b)
		if g.onBlock != nil {
			g.onBlock(b)
		}
		blocks = append(blocks, b)
	}

	return blocks, nil
}

// summerKind выбирает песок или песчаник. Поле шума смещает шанс песка,
// поэтому песчаник собирается в пласты.
func (g *Generator) summerKind(row, col int) block.Kind {
	bias := (g.strata.At(float64(col), float64(row)) - 0.5) * g.cfg.SummerStrataBias
	if g.rng.Float64() < g.cfg.SummerSandChance+bias {
		return block.Sand
	}
	return block.Sandstone
}

// Initialize центрирует шахту по ширине экрана, сбрасывает состояние
// и синхронно генерирует начальные строки.
func (g *Generator) Initialize(viewportWidth float64) error {
	g.grid.Clear()

	gridPixelWidth := float64(g.cfg.GridWidth) * g.cfg.BlockSize
	startX := viewportWidth/2 - gridPixelWidth/2

	g.state = GenerationState{
		StartX:        startX,
		LeftBarrierX:  startX - g.cfg.BarrierWidth,
		RightBarrierX: startX + gridPixelWidth,
		Initialized:   true,
	}

	rows := g.cfg.InitialRows
	if g.summer {
		rows = g.cfg.SummerInitialRows
	}
	for row := 0; row < rows; row++ {
		if _, err := g.GenerateRow(row); err != nil {
			return err
		}
	}
	g.state.GeneratedRows = rows

	g.log.Debug("Шахта инициализирована: startX=%.1f, строк=%d, лето=%v", startX, rows, g.summer)
	return nil
}

// Extend ставит в очередь следующую партию строк, если камера приблизилась
// к концу шахты. Возвращает количество добавленных в очередь строк.
func (g *Generator) Extend(cameraY, viewportHeight float64) int {
	cameraBottom := cameraY + viewportHeight
	lastRowY := g.RowY(g.state.GeneratedRows)

	if cameraBottom <= lastRowY-viewportHeight*generateAheadFactor || len(g.state.Queue) >= g.cfg.QueueCap {
		return 0
	}

	for i := 0; i < g.cfg.BatchRows; i++ {
		g.state.Queue = append(g.state.Queue, g.state.GeneratedRows+i)
	}
	g.state.GeneratedRows += g.cfg.BatchRows

	g.log.Trace("В очередь добавлено %d строк, всего выдано %d", g.cfg.BatchRows, g.state.GeneratedRows)
	return g.cfg.BatchRows
}

// Commit материализует не более RowsPerTick строк из очереди
func (g *Generator) Commit() (int, error) {
	done := 0
	for done < g.cfg.RowsPerTick && len(g.state.Queue) > 0 {
		row := g.state.Queue[0]
		g.state.Queue = g.state.Queue[1:]

		if _, err := g.GenerateRow(row); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// ClearQueue отбрасывает строки, ожидающие генерации
func (g *Generator) ClearQueue() {
	g.state.Queue = nil
}

// shift сдвигает шахту по X при изменении ширины экрана
func (g *Generator) shift(deltaX float64) {
	g.state.StartX += deltaX
	g.state.LeftBarrierX += deltaX
	g.state.RightBarrierX += deltaX
}

// centeredStartX возвращает X левого столбца для указанной ширины экрана
func (g *Generator) centeredStartX(viewportWidth float64) float64 {
	return viewportWidth/2 - float64(g.cfg.GridWidth)*g.cfg.BlockSize/2
}
