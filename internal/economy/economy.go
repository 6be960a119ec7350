package economy

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/annel0/breaknblocks/internal/logging"
	"github.com/annel0/breaknblocks/internal/storage"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

var (
	// ErrInsufficient - не хватает денег или ресурсов
	ErrInsufficient = errors.New("economy: insufficient funds or resources")
	// ErrMaxLevel - зачарование уже на максимальном уровне
	ErrMaxLevel = errors.New("economy: enchantment at max level")
	// ErrUnknownResource - ресурс, зачарование или кирка не существуют или не продаются
	ErrUnknownResource = errors.New("economy: unknown resource")
	// ErrSummerOnly - кирка продаётся только во время летнего события
	ErrSummerOnly = errors.New("economy: available during summer event only")
	// ErrAlreadyUnlocked - кирка уже куплена
	ErrAlreadyUnlocked = errors.New("economy: pickaxe already unlocked")
	// ErrLocked - кирка ещё не куплена
	ErrLocked = errors.New("economy: pickaxe locked")
)

// Шанс срабатывания удачи за уровень
const fortuneChancePerLevel = 0.3

// Economy хранит прогресс игрока и реализует world.DestructionListener.
// Все методы безопасны для вызова из разных горутин.
type Economy struct {
	mu    sync.RWMutex
	state State
	store storage.KV
	rng   world.RandomSource
	log   *logging.Logger
}

// New создаёт экономику с состоянием по умолчанию. store может быть nil:
// тогда прогресс живёт только в памяти.
func New(store storage.KV, rng world.RandomSource) (*Economy, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", world.ErrInvalidArgument)
	}
	return &Economy{
		state: DefaultState(),
		store: store,
		rng:   rng,
		log:   logging.GetEconomyLogger(),
	}, nil
}

// Snapshot возвращает копию текущего состояния
func (e *Economy) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Money возвращает баланс
func (e *Economy) Money() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Money
}

// Level возвращает уровень зачарования
func (e *Economy) Level(kind Enchantment) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Enchantments.Level(kind)
}

// SummerEvent возвращает признак летнего события
func (e *Economy) SummerEvent() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.SummerEvent
}

// SetSummerEvent включает или выключает летнее событие
func (e *Economy) SetSummerEvent(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.SummerEvent = active
}

// OnBlockDestroyed начисляет статистику и ресурсы за разрушенный блок
func (e *Economy) OnBlockDestroyed(ev world.BlockDestroyed) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := &e.state.Stats
	st.TotalBlocksBroken++
	st.BlocksBrokenByType[ev.Kind.String()]++

	if res := ev.Kind.Resource(); res != block.ResourceNone {
		amount := 1
		if fortune := e.state.Enchantments.Fortune; fortune > 0 &&
			e.rng.Float64() < fortuneChancePerLevel*float64(fortune) {
			amount += int(math.Floor(e.rng.Float64()*float64(fortune))) + 1
		}
		e.state.Resources[res] += amount
		st.ResourcesCollected[string(res)] += amount
	}

	if ev.HasBonus {
		e.state.BonusPickups++
	}
}

// RecordDepth обновляет рекорд глубины
func (e *Economy) RecordDepth(depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if depth > e.state.Stats.DeepestDepth {
		e.state.Stats.DeepestDepth = depth
	}
}

// AddPlayTime прибавляет игровое время в секундах
func (e *Economy) AddPlayTime(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Stats.PlayTime += seconds
}

// RecordPickaxeBroken увеличивает счётчик сломанных кирок
func (e *Economy) RecordPickaxeBroken() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Stats.PickaxesBroken++
}

// Sell продаёт amount единиц сырья. Возвращает выручку.
func (e *Economy) Sell(res block.Resource, amount int) (int, error) {
	price, ok := sellPrices[res]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not sellable", ErrUnknownResource, res)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 || e.state.Resources[res] < amount {
		return 0, fmt.Errorf("%w: sell %d %s, have %d", ErrInsufficient, amount, res, e.state.Resources[res])
	}

	earned := amount * price
	e.state.Resources[res] -= amount
	e.earn(earned)
	return earned, nil
}

// SellAll продаёт всё сырьё (кроме обсидиана) и все слитки.
// Возвращает число проданных предметов и выручку.
func (e *Economy) SellAll() (items, earned int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, res := range sellOrder {
		if n := e.state.Resources[res]; n > 0 {
			earned += n * sellPrices[res]
			items += n
			e.state.Resources[res] = 0
		}
	}
	for _, res := range SmeltableResources() {
		if n := e.state.Smelted[res]; n > 0 {
			earned += n * smeltedPrices[res]
			items += n
			e.state.Smelted[res] = 0
		}
	}

	if earned > 0 {
		e.earn(earned)
		e.log.Info("Продано %d предметов за %d монет", items, earned)
	}
	return items, earned
}

// Smelt переплавляет amount единиц руды в слитки за уголь
func (e *Economy) Smelt(res block.Resource, amount int) error {
	if _, ok := smeltedPrices[res]; !ok {
		return fmt.Errorf("%w: %q is not smeltable", ErrUnknownResource, res)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	coal := amount * coalPerSmelt
	if amount <= 0 || e.state.Resources[res] < amount || e.state.Resources[block.ResourceCoal] < coal {
		return fmt.Errorf("%w: smelt %d %s", ErrInsufficient, amount, res)
	}

	e.state.Resources[res] -= amount
	e.state.Resources[block.ResourceCoal] -= coal
	e.state.Smelted[res] += amount
	return nil
}

// SmeltAll переплавляет столько, сколько позволяют руда и уголь.
// Возвращает число полученных слитков.
func (e *Economy) SmeltAll(res block.Resource) (int, error) {
	e.mu.RLock()
	n := e.state.Resources[res]
	if byCoal := e.state.Resources[block.ResourceCoal] / coalPerSmelt; byCoal < n {
		n = byCoal
	}
	e.mu.RUnlock()

	if err := e.Smelt(res, n); err != nil {
		return 0, err
	}
	return n, nil
}

// SellSmelted продаёт слитки. Возвращает выручку.
func (e *Economy) SellSmelted(res block.Resource, amount int) (int, error) {
	price, ok := smeltedPrices[res]
	if !ok {
		return 0, fmt.Errorf("%w: no %q ingots", ErrUnknownResource, res)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 || e.state.Smelted[res] < amount {
		return 0, fmt.Errorf("%w: sell %d %s ingots", ErrInsufficient, amount, res)
	}

	earned := amount * price
	e.state.Smelted[res] -= amount
	e.earn(earned)
	return earned, nil
}

// earn зачисляет выручку. Вызывается под блокировкой.
func (e *Economy) earn(amount int) {
	e.state.Money += amount
	e.state.Stats.MoneyEarned += amount
}

// Cost - цена покупки
type Cost struct {
	Money int `json:"money"`
	Lapis int `json:"lapis"`
}

// EnchantmentCost возвращает цену перехода с уровня level на следующий
func EnchantmentCost(kind Enchantment, level int) (Cost, error) {
	info, ok := enchantments[kind]
	if !ok {
		return Cost{}, fmt.Errorf("%w: enchantment %q", ErrUnknownResource, kind)
	}
	return Cost{
		Money: int(math.Floor(info.baseMoney * math.Pow(enchantmentPriceGrowth, float64(level)))),
		Lapis: int(math.Floor(info.baseLapis * float64(level+1))),
	}, nil
}

// MaxLevel возвращает максимальный уровень зачарования
func MaxLevel(kind Enchantment) int {
	return enchantments[kind].maxLevel
}

// BuyEnchantment повышает уровень зачарования за деньги и лазурит
func (e *Economy) BuyEnchantment(kind Enchantment) error {
	info, ok := enchantments[kind]
	if !ok {
		return fmt.Errorf("%w: enchantment %q", ErrUnknownResource, kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	level := e.state.Enchantments.Level(kind)
	if level >= info.maxLevel {
		return fmt.Errorf("%w: %s %d", ErrMaxLevel, kind, level)
	}

	cost, _ := EnchantmentCost(kind, level)
	if e.state.Money < cost.Money || e.state.Resources[block.ResourceLapis] < cost.Lapis {
		return fmt.Errorf("%w: %s needs %d coins and %d lapis", ErrInsufficient, kind, cost.Money, cost.Lapis)
	}

	e.state.Money -= cost.Money
	e.state.Resources[block.ResourceLapis] -= cost.Lapis
	e.state.Enchantments.raise(kind)
	e.log.Info("Зачарование %s повышено до %d", kind, level+1)
	return nil
}

// IsUnlocked проверяет, куплена ли кирка
func (e *Economy) IsUnlocked(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Unlocks[name]
}

// CanAffordPickaxe проверяет, можно ли купить кирку прямо сейчас
func (e *Economy) CanAffordPickaxe(name string) bool {
	offer, ok := offerByName(name)
	if !ok {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checkOffer(offer) == nil
}

// checkOffer вызывается под блокировкой
func (e *Economy) checkOffer(offer PickaxeOffer) error {
	if e.state.Unlocks[offer.Name] {
		return fmt.Errorf("%w: %s", ErrAlreadyUnlocked, offer.Name)
	}
	if offer.SummerOnly && !e.state.SummerEvent {
		return fmt.Errorf("%w: %s", ErrSummerOnly, offer.Name)
	}
	if e.state.Money < offer.Price {
		return fmt.Errorf("%w: %s costs %d", ErrInsufficient, offer.Name, offer.Price)
	}
	for _, req := range offer.Requirements {
		if e.have(req) < req.Amount {
			return fmt.Errorf("%w: %s needs %d %s", ErrInsufficient, offer.Name, req.Amount, req.Resource)
		}
	}
	return nil
}

func (e *Economy) have(req Requirement) int {
	if req.Ingot {
		return e.state.Smelted[req.Resource]
	}
	return e.state.Resources[req.Resource]
}

// BuyPickaxe покупает кирку: списывает деньги и требуемые предметы
func (e *Economy) BuyPickaxe(name string) error {
	offer, ok := offerByName(name)
	if !ok {
		return fmt.Errorf("%w: pickaxe %q", ErrUnknownResource, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOffer(offer); err != nil {
		return err
	}

	e.state.Money -= offer.Price
	for _, req := range offer.Requirements {
		if req.Ingot {
			e.state.Smelted[req.Resource] -= req.Amount
		} else {
			e.state.Resources[req.Resource] -= req.Amount
		}
	}
	e.state.Unlocks[name] = true
	e.log.Info("Куплена кирка %s", name)
	return nil
}

// CurrentVariant возвращает индекс выбранной кирки
func (e *Economy) CurrentVariant() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.CurrentVariant
}

// Equip выбирает купленную кирку по индексу
func (e *Economy) Equip(index int) error {
	if index < 0 || index >= len(Offers) {
		return fmt.Errorf("%w: pickaxe index %d", ErrUnknownResource, index)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Unlocks[Offers[index].Name] {
		return fmt.Errorf("%w: %s", ErrLocked, Offers[index].Name)
	}
	e.state.CurrentVariant = index
	return nil
}

// ResetProgress сбрасывает весь прогресс, кроме настроек и летнего события
func (e *Economy) ResetProgress() {
	e.mu.Lock()
	defer e.mu.Unlock()

	fresh := DefaultState()
	fresh.Settings = e.state.Settings
	fresh.SummerEvent = e.state.SummerEvent
	e.state = fresh
	e.log.Warn("Прогресс игрока сброшен")
}
