package world

import (
	"fmt"

	"github.com/annel0/breaknblocks/internal/world/block"
)

// OreSetting задаёт базовый шанс и множитель глубины для одной руды
type OreSetting struct {
	Name       string  `yaml:"name"`
	Base       float64 `yaml:"base"`
	Multiplier float64 `yaml:"multiplier"`
}

// GeneratorConfig содержит параметры генерации шахты
type GeneratorConfig struct {
	BlockSize    float64 `yaml:"block_size"`
	GridWidth    int     `yaml:"grid_width"`
	BarrierWidth float64 `yaml:"barrier_width"`
	TopY         float64 `yaml:"top_y"`

	CoalClusterChance  float64 `yaml:"coal_cluster_chance"`
	StoneClusterChance float64 `yaml:"stone_cluster_chance"`

	DeepslateStart   int `yaml:"deepslate_start"`
	DeepslateFull    int `yaml:"deepslate_full"`
	DeepslateBandEnd int `yaml:"deepslate_band_end"`

	ObsidianFloor int     `yaml:"obsidian_floor"`
	ObsidianStep  float64 `yaml:"obsidian_step"`

	OreGate     float64      `yaml:"ore_gate"`
	BonusChance float64      `yaml:"bonus_chance"`
	DepthScale  float64      `yaml:"depth_scale"`
	Ores        []OreSetting `yaml:"ores"`

	InitialRows       int `yaml:"initial_rows"`
	SummerInitialRows int `yaml:"summer_initial_rows"`
	RowsPerTick       int `yaml:"rows_per_tick"`
	BatchRows         int `yaml:"batch_rows"`
	QueueCap          int `yaml:"queue_cap"`

	SummerSandChance  float64 `yaml:"summer_sand_chance"`
	SummerStrataScale float64 `yaml:"summer_strata_scale"`
	SummerStrataBias  float64 `yaml:"summer_strata_bias"`
}

// DefaultGeneratorConfig возвращает параметры оригинальной игры
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		BlockSize:    40,
		GridWidth:    7,
		BarrierWidth: 40,
		TopY:         300,

		CoalClusterChance:  0.4,
		StoneClusterChance: 0.6,

		DeepslateStart:   40,
		DeepslateFull:    45,
		DeepslateBandEnd: 50,

		ObsidianFloor: 70,
		ObsidianStep:  0.0005,

		OreGate:     0.55,
		BonusChance: 0.01,
		DepthScale:  0.008,
		Ores: []OreSetting{
			{Name: "coal", Base: 0.12, Multiplier: 0.9},
			{Name: "copper", Base: 0.10, Multiplier: 1.0},
			{Name: "iron", Base: 0.08, Multiplier: 1.0},
			{Name: "gold", Base: 0.06, Multiplier: 1.5},
			{Name: "redstone", Base: 0.05, Multiplier: 1.8},
			{Name: "diamond", Base: 0.03, Multiplier: 2.5},
			{Name: "lapis", Base: 0.04, Multiplier: 1.2},
			{Name: "emerald", Base: 0.025, Multiplier: 2.0},
		},

		InitialRows:       30,
		SummerInitialRows: 50,
		RowsPerTick:       2,
		BatchRows:         20,
		QueueCap:          40,

		SummerSandChance:  0.7,
		SummerStrataScale: 0.15,
		SummerStrataBias:  0.6,
	}
}

// oreEntry - разобранная строка таблицы руд
type oreEntry struct {
	ore        block.Ore
	base       float64
	multiplier float64
}

// Validate проверяет конфигурацию генератора
func (c GeneratorConfig) Validate() error {
	_, err := c.oreTable()
	return err
}

func (c GeneratorConfig) oreTable() ([]oreEntry, error) {
	if c.BlockSize <= 0 {
		return nil, fmt.Errorf("%w: block_size must be positive, got %v", ErrInvalidArgument, c.BlockSize)
	}
	if c.GridWidth <= 0 {
		return nil, fmt.Errorf("%w: grid_width must be positive, got %d", ErrInvalidArgument, c.GridWidth)
	}
	if c.DeepslateBandEnd <= c.DeepslateStart {
		return nil, fmt.Errorf("%w: deepslate band [%d, %d) is empty", ErrInvalidArgument, c.DeepslateStart, c.DeepslateBandEnd)
	}
	if c.RowsPerTick <= 0 || c.BatchRows <= 0 {
		return nil, fmt.Errorf("%w: rows_per_tick and batch_rows must be positive", ErrInvalidArgument)
	}

	table := make([]oreEntry, 0, len(c.Ores))
	for _, s := range c.Ores {
		ore, err := block.ParseOre(s.Name)
		if err != nil {
			return nil, fmt.Errorf("ore table: %w", err)
		}
		table = append(table, oreEntry{ore: ore, base: s.Base, multiplier: s.Multiplier})
	}
	return table, nil
}
