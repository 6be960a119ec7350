package sim

// LoopConfig задаёт параметры цикла с фиксированным шагом
type LoopConfig struct {
	FixedDelta     float64 `yaml:"fixed_delta"`     // Длительность шага, секунды
	MaxSteps       int     `yaml:"max_steps"`       // Шагов за кадр, не больше
	MaxAccumulated float64 `yaml:"max_accumulated"` // Предел накопленного времени
}

// DefaultLoopConfig возвращает 144 шага в секунду, до 5 шагов за кадр
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		FixedDelta:     1.0 / 144.0,
		MaxSteps:       5,
		MaxAccumulated: 0.1,
	}
}

// Loop накапливает время кадров и раскладывает его на фиксированные шаги
type Loop struct {
	cfg         LoopConfig
	accumulator float64
}

// NewLoop создаёт цикл. Нулевые поля конфигурации заменяются значениями по умолчанию.
func NewLoop(cfg LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if cfg.FixedDelta <= 0 {
		cfg.FixedDelta = def.FixedDelta
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	if cfg.MaxAccumulated <= 0 {
		cfg.MaxAccumulated = def.MaxAccumulated
	}
	return &Loop{cfg: cfg}
}

// Config возвращает параметры цикла
func (l *Loop) Config() LoopConfig { return l.cfg }

// Accumulated возвращает ещё не отработанное время
func (l *Loop) Accumulated() float64 { return l.accumulator }

// Advance добавляет время кадра (не больше MaxAccumulated) и выполняет step
// не более MaxSteps раз. Если после этого накоплено больше предела, остаток
// отбрасывается. Возвращает число выполненных шагов.
func (l *Loop) Advance(frameDt float64, step func(dt float64)) int {
	if frameDt > 0 {
		l.accumulator += min(frameDt, l.cfg.MaxAccumulated)
	}

	steps := 0
	for l.accumulator >= l.cfg.FixedDelta && steps < l.cfg.MaxSteps {
		step(l.cfg.FixedDelta)
		l.accumulator -= l.cfg.FixedDelta
		steps++
	}

	if l.accumulator > l.cfg.MaxAccumulated {
		l.accumulator = 0
	}
	return steps
}

// Reset обнуляет накопленное время
func (l *Loop) Reset() {
	l.accumulator = 0
}
