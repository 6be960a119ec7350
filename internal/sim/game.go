package sim

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/breaknblocks/internal/economy"
	"github.com/annel0/breaknblocks/internal/entity"
	"github.com/annel0/breaknblocks/internal/logging"
	"github.com/annel0/breaknblocks/internal/physics"
	"github.com/annel0/breaknblocks/internal/pickaxe"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

const (
	// Бонус урона за уровень эффективности
	efficiencyPerLevel = 0.5
	// Радиус мгновенного разрушения вокруг огненной кирки
	blazeAuraRadius = 100.0
)

// Config - параметры игры
type Config struct {
	World            world.GeneratorConfig `yaml:"world"`
	Loop             LoopConfig            `yaml:"loop"`
	ViewportWidth    float64               `yaml:"viewport_width"`
	ViewportHeight   float64               `yaml:"viewport_height"`
	AutoSaveInterval float64               `yaml:"auto_save_interval"` // Секунды
	StatsSaveChance  float64               `yaml:"stats_save_chance"`  // Шанс сохранить статистику при разрушении
	Seed             int64                 `yaml:"seed"`
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		World:            world.DefaultGeneratorConfig(),
		Loop:             DefaultLoopConfig(),
		ViewportWidth:    800,
		ViewportHeight:   600,
		AutoSaveInterval: 30,
		StatsSaveChance:  0.1,
		Seed:             1,
	}
}

// FrameObserver получает сводку после каждого кадра
type FrameObserver interface {
	ObserveFrame(steps int, elapsed time.Duration, stats world.Stats)
}

// Game связывает мир, кирку, камеру, экономику и способности.
// Не потокобезопасна: все вызовы идут из одной горутины цикла.
type Game struct {
	cfg     Config
	rng     world.RandomSource
	world   *world.World
	pickaxe *pickaxe.Pickaxe
	camera  Camera
	econ    *economy.Economy
	ability *entity.AbilityMachine
	loop    *Loop

	viewportW, viewportH float64

	gameOver      bool
	autoSaveTimer float64
	statsDirty    bool
	frames        uint64

	observer FrameObserver
	tracer   trace.Tracer
	log      *logging.Logger
}

// NewGame создаёт игру и первую шахту
func NewGame(cfg Config, econ *economy.Economy, rng world.RandomSource) (*Game, error) {
	if econ == nil || rng == nil {
		return nil, fmt.Errorf("%w: economy and random source are required", world.ErrInvalidArgument)
	}
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		return nil, fmt.Errorf("%w: viewport %.0fx%.0f", world.ErrInvalidArgument, cfg.ViewportWidth, cfg.ViewportHeight)
	}

	w, err := world.New(cfg.World, rng, cfg.Seed)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:       cfg,
		rng:       rng,
		world:     w,
		econ:      econ,
		loop:      NewLoop(cfg.Loop),
		viewportW: cfg.ViewportWidth,
		viewportH: cfg.ViewportHeight,
		tracer:    otel.Tracer("github.com/annel0/breaknblocks/internal/sim"),
		log:       logging.GetSimLogger(),
	}
	g.ability = entity.NewAbilityMachine(entity.Timing{}, g.fireAbility)
	g.pickaxe = pickaxe.New(g.startX(), pickaxe.DefaultStartY)
	g.pickaxe.SetSwayForViewport(g.viewportW)

	// Экономика первой: удача тянет случайные числа раньше износа кирки
	w.AddListener(econ)
	w.AddListener(world.ListenerFunc(g.onBlockDestroyed))

	g.syncPickaxe()
	if err := w.Initialize(g.viewportW, econ.SummerEvent()); err != nil {
		return nil, err
	}
	return g, nil
}

// SetObserver подключает наблюдателя кадров
func (g *Game) SetObserver(o FrameObserver) { g.observer = o }

// World возвращает мир
func (g *Game) World() *world.World { return g.world }

// Pickaxe возвращает кирку
func (g *Game) Pickaxe() *pickaxe.Pickaxe { return g.pickaxe }

// Economy возвращает экономику
func (g *Game) Economy() *economy.Economy { return g.econ }

// Camera возвращает камеру
func (g *Game) Camera() Camera { return g.camera }

// Ability возвращает автомат способности текущей кирки
func (g *Game) Ability() *entity.AbilityMachine { return g.ability }

// GameOver сообщает, сломалась ли кирка
func (g *Game) GameOver() bool { return g.gameOver }

// Frames возвращает число обработанных кадров
func (g *Game) Frames() uint64 { return g.frames }

func (g *Game) startX() float64 {
	return g.viewportW/2 - pickaxe.DefaultSize/2
}

// Frame обрабатывает кадр длительностью frameDt секунд. Возвращает число шагов.
func (g *Game) Frame(ctx context.Context, frameDt float64) int {
	ctx, span := g.tracer.Start(ctx, "sim.Frame")
	defer span.End()

	start := time.Now()
	steps := g.loop.Advance(frameDt, func(dt float64) {
		g.Step(ctx, dt)
	})
	g.frames++

	span.SetAttributes(
		attribute.Int("sim.steps", steps),
		attribute.Int("sim.blocks", len(g.world.Blocks)),
		attribute.Bool("sim.game_over", g.gameOver),
	)
	if g.observer != nil {
		g.observer.ObserveFrame(steps, time.Since(start), g.world.Stats())
	}
	return steps
}

// Step выполняет один фиксированный шаг симуляции
func (g *Game) Step(ctx context.Context, dt float64) {
	if g.gameOver {
		return
	}

	g.autoSaveTimer += dt
	if g.autoSaveTimer >= g.cfg.AutoSaveInterval {
		g.autoSaveTimer = 0
		if err := g.econ.SaveAll(ctx); err != nil {
			g.log.Warn("Автосохранение не удалось: %v", err)
		}
	}
	g.econ.AddPlayTime(dt)

	p := g.pickaxe
	p.Update(dt)
	if p.Dropped && !p.Broken {
		g.ability.Advance(dt)
	}
	if p.Dropped {
		g.econ.RecordDepth(g.world.DepthAt(p.Y))
	}

	g.camera.Follow(p.Y, g.viewportH)
	g.world.Extend(g.camera.Y, g.viewportH)
	if _, err := g.world.Commit(); err != nil {
		g.log.Error("Ошибка генерации строк: %v", err)
	}

	g.checkCollisions()

	bottom := g.camera.Bottom(g.viewportH)
	g.world.UpdateProjectiles(bottom)
	g.world.UpdateParticles(dt, bottom)
	g.world.PruneDestroyed()

	if g.statsDirty {
		g.statsDirty = false
		if err := g.econ.SaveStats(ctx); err != nil {
			g.log.Warn("Не удалось сохранить статистику: %v", err)
		}
	}
}

// checkCollisions отражает кирку от стен и блоков
func (g *Game) checkCollisions() {
	p := g.pickaxe
	if p.Broken || !p.Dropped {
		return
	}

	left, right := g.world.InnerBounds()
	p.ClampToWalls(left, right)

	sweep := p.SweepBox()
	for _, b := range g.world.Grid().QueryRegion(sweep.X, sweep.Y, sweep.W, sweep.H) {
		if b.Destroyed {
			continue
		}
		res := physics.StaticOverlap(p.Rect(), b.Rect)
		if !res.Hit {
			continue
		}
		p.ResolveBlockHit(res, g.rng)
		g.HandleBlockHit(b)
	}
}

// HandleBlockHit наносит блоку урон кирки с учётом эффективности
func (g *Game) HandleBlockHit(b *block.Block) bool {
	power := g.pickaxe.Variant().Power + efficiencyPerLevel*float64(g.econ.Level(economy.Efficiency))
	return g.world.DamageBlock(b, power, false)
}

// onBlockDestroyed применяет последствия разрушения к кирке
func (g *Game) onBlockDestroyed(ev world.BlockDestroyed) {
	if ev.HasBonus {
		g.pickaxe.ApplySizeBuff()
	}

	if !ev.FromAbility {
		chance := 1 / float64(g.econ.Level(economy.Unbreaking)+1)
		if g.rng.Float64() < chance && g.pickaxe.TakeDamage(1) {
			g.gameOver = true
			g.log.Info("Кирка %s сломалась на глубине %d", g.pickaxe.Variant().Name, ev.Depth)
		}
	}

	if g.rng.Float64() < g.cfg.StatsSaveChance {
		g.statsDirty = true
	}
}

// fireAbility срабатывает при переходе способности в активную фазу
func (g *Game) fireAbility() {
	c := g.pickaxe.Center()
	switch g.pickaxe.Variant().Ability {
	case pickaxe.AbilityLavaParticles:
		g.world.SpawnLavaParticles(c.X, c.Y)
	case pickaxe.AbilityBlazeRodRain:
		g.world.SpawnBlazeRods(c.Y)
		g.world.BreakRadius(c.X, c.Y, blazeAuraRadius)
	case pickaxe.AbilityBouncyBall:
		g.world.SpawnBouncyBall(c.X, c.Y)
	}
}

// configureAbility перенастраивает автомат под текущую кирку
func (g *Game) configureAbility() {
	v := g.pickaxe.Variant()
	if v.Ability == pickaxe.AbilityNone {
		g.ability.Reset(entity.Timing{})
		return
	}
	g.ability.Reset(entity.DefaultTiming(v.AbilityCooldown))
}

// syncPickaxe выбирает кирку, сохранённую в экономике. Некупленная заменяется деревянной.
func (g *Game) syncPickaxe() {
	idx := g.econ.CurrentVariant()
	if idx < 0 || idx >= len(pickaxe.Variants) || !g.econ.IsUnlocked(pickaxe.Variants[idx].Name) {
		idx = 0
	}
	_ = g.pickaxe.SetVariant(idx)
	g.configureAbility()
}

// Drop бросает кирку
func (g *Game) Drop() bool {
	if g.gameOver {
		return false
	}
	return g.pickaxe.Drop(g.rng)
}

// NextVariant переключает кирку на следующую купленную до броска
func (g *Game) NextVariant() bool {
	if !g.pickaxe.NextUnlocked(g.econ.IsUnlocked) {
		return false
	}
	if err := g.econ.Equip(g.pickaxe.Current); err != nil {
		g.log.Warn("Не удалось выбрать кирку: %v", err)
	}
	g.configureAbility()
	return true
}

// Equip выбирает купленную кирку по индексу
func (g *Game) Equip(index int) error {
	if err := g.econ.Equip(index); err != nil {
		return err
	}
	if err := g.pickaxe.SetVariant(index); err != nil {
		return err
	}
	g.configureAbility()
	return nil
}

// Reset начинает новый заход. Сломанная кирка учитывается в статистике.
func (g *Game) Reset() error {
	if g.gameOver {
		g.econ.RecordPickaxeBroken()
	}

	g.gameOver = false
	g.statsDirty = false
	g.pickaxe.Reset(g.startX(), pickaxe.DefaultStartY)
	g.pickaxe.SetSwayForViewport(g.viewportW)
	g.camera = Camera{}
	g.configureAbility()
	g.loop.Reset()

	if err := g.world.Initialize(g.viewportW, g.econ.SummerEvent()); err != nil {
		return fmt.Errorf("reset world: %w", err)
	}
	return nil
}

// Resize подстраивает шахту и раскачивание под новый размер экрана
func (g *Game) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: viewport %.0fx%.0f", world.ErrInvalidArgument, width, height)
	}
	g.viewportW, g.viewportH = width, height
	g.world.Recenter(width)
	if !g.pickaxe.Dropped {
		g.pickaxe.SetSwayForViewport(width)
	}
	return nil
}

// SetSummer включает или выключает летнее событие и пересоздаёт шахту
func (g *Game) SetSummer(ctx context.Context, active bool) error {
	g.econ.SetSummerEvent(active)
	if err := g.econ.SaveAll(ctx); err != nil {
		g.log.Warn("Не удалось сохранить прогресс: %v", err)
	}
	return g.Reset()
}

// ResetProgress стирает прогресс игрока и возвращает деревянную кирку
func (g *Game) ResetProgress(ctx context.Context) error {
	g.econ.ResetProgress()
	g.syncPickaxe()
	g.pickaxe.Reset(g.startX(), pickaxe.DefaultStartY)
	g.pickaxe.SetSwayForViewport(g.viewportW)
	return g.econ.SaveAll(ctx)
}
