package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/breaknblocks/internal/world"
)

// SimMetrics собирает метрики цикла симуляции и разрушений.
// Реализует наблюдателя кадров и DestructionListener.
type SimMetrics struct {
	frames        prometheus.Counter
	steps         prometheus.Counter
	frameDuration prometheus.Histogram
	blocks        prometheus.Gauge
	projectiles   prometheus.Gauge
	particles     prometheus.Gauge
	generatedRows prometheus.Gauge
	gridCells     prometheus.Gauge
	destroyed     *prometheus.CounterVec
	bonuses       prometheus.Counter
	maxDepth      prometheus.Gauge

	deepest int // Вызовы приходят из одной горутины цикла
}

// NewSimMetrics создаёт и регистрирует метрики симуляции
func NewSimMetrics(reg prometheus.Registerer) (*SimMetrics, error) {
	m := &SimMetrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "breaknblocks",
			Subsystem: "sim",
			Name:      "frames_total",
			Help:      "Обработанные кадры.",
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "breaknblocks",
			Subsystem: "sim",
			Name:      "steps_total",
			Help:      "Выполненные фиксированные шаги.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "breaknblocks",
			Subsystem: "sim",
			Name:      "frame_duration_seconds",
			Help:      "Время обработки кадра.",
			Buckets:   []float64{.0001, .0005, .001, .002, .005, .01, .02, .05},
		}),
		blocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "blocks",
			Help:      "Блоки в мире.",
		}),
		projectiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "projectiles",
			Help:      "Активные снаряды.",
		}),
		particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "particles",
			Help:      "Активные частицы.",
		}),
		generatedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "generated_rows",
			Help:      "Сгенерированные строки шахты.",
		}),
		gridCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "grid_cells",
			Help:      "Непустые ячейки сетки столкновений.",
		}),
		destroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "blocks_destroyed_total",
			Help:      "Разрушенные блоки по типу и причине.",
		}, []string{"kind", "cause"}),
		bonuses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "bonuses_total",
			Help:      "Найденные бонусы.",
		}),
		maxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "breaknblocks",
			Subsystem: "world",
			Name:      "max_destroyed_depth",
			Help:      "Наибольшая глубина разрушенного блока.",
		}),
	}

	collectors := []prometheus.Collector{
		m.frames, m.steps, m.frameDuration, m.blocks, m.projectiles,
		m.particles, m.generatedRows, m.gridCells, m.destroyed, m.bonuses, m.maxDepth,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveFrame обновляет метрики после кадра
func (m *SimMetrics) ObserveFrame(steps int, elapsed time.Duration, stats world.Stats) {
	m.frames.Inc()
	m.steps.Add(float64(steps))
	m.frameDuration.Observe(elapsed.Seconds())
	m.blocks.Set(float64(stats.Blocks))
	m.projectiles.Set(float64(stats.Projectiles))
	m.particles.Set(float64(stats.Particles))
	m.generatedRows.Set(float64(stats.GeneratedRows))
	m.gridCells.Set(float64(stats.Grid.Cells))
}

// OnBlockDestroyed учитывает разрушение блока
func (m *SimMetrics) OnBlockDestroyed(ev world.BlockDestroyed) {
	cause := "pickaxe"
	if ev.FromAbility {
		cause = "ability"
	}
	m.destroyed.WithLabelValues(ev.Kind.String(), cause).Inc()
	if ev.HasBonus {
		m.bonuses.Inc()
	}
	if ev.Depth > m.deepest {
		m.deepest = ev.Depth
		m.maxDepth.Set(float64(ev.Depth))
	}
}
