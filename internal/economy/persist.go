package economy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/annel0/breaknblocks/internal/storage"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// Ключи хранилища профиля
const (
	KeyResources      = "pickaxe_resources"
	KeySmelted        = "pickaxe_smelted_resources"
	KeyMoney          = "pickaxe_money"
	KeyStats          = "game_stats"
	KeyEnchantments   = "enchantments"
	KeySettings       = "game_settings"
	KeyUnlocks        = "pickaxe_unlocks"
	KeySummerEvent    = "summer_event_active"
	KeyCurrentVariant = "current_pickaxe_variant"
)

// Load читает прогресс из хранилища. Отсутствующие и повреждённые значения
// заменяются значениями по умолчанию с предупреждением в логе.
// Ошибку возвращает только отменённый контекст.
func (e *Economy) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	st := DefaultState()

	var resources map[string]int
	if e.loadJSON(ctx, KeyResources, &resources) {
		mergeResources(st.Resources, resources)
	}

	var smelted map[string]int
	if e.loadJSON(ctx, KeySmelted, &smelted) {
		mergeResources(st.Smelted, smelted)
	}

	if raw, ok := e.loadRaw(ctx, KeyMoney); ok {
		money, err := strconv.Atoi(string(raw))
		if err != nil || money < 0 {
			e.log.Warn("Повреждённое значение %s=%q, используется 0", KeyMoney, raw)
		} else {
			st.Money = money
		}
	}

	var stats Stats
	if e.loadJSON(ctx, KeyStats, &stats) {
		if stats.BlocksBrokenByType == nil {
			stats.BlocksBrokenByType = map[string]int{}
		}
		if stats.ResourcesCollected == nil {
			stats.ResourcesCollected = map[string]int{}
		}
		st.Stats = stats
	}

	var ench Enchantments
	if e.loadJSON(ctx, KeyEnchantments, &ench) {
		st.Enchantments = clampEnchantments(ench)
	}

	var settings Settings
	if e.loadJSON(ctx, KeySettings, &settings) {
		st.Settings = settings
	}

	var unlocks map[string]bool
	if e.loadJSON(ctx, KeyUnlocks, &unlocks) {
		for name, unlocked := range unlocks {
			if _, known := st.Unlocks[name]; known {
				st.Unlocks[name] = unlocked
			}
		}
	}

	var summer bool
	if e.loadJSON(ctx, KeySummerEvent, &summer) {
		st.SummerEvent = summer
	}

	if raw, ok := e.loadRaw(ctx, KeyCurrentVariant); ok {
		idx, err := strconv.Atoi(string(raw))
		switch {
		case err != nil || idx < 0 || idx >= len(Offers):
			e.log.Warn("Повреждённое значение %s=%q, выбрана деревянная кирка", KeyCurrentVariant, raw)
		case !st.Unlocks[Offers[idx].Name]:
			e.log.Warn("Кирка %s не куплена, выбрана деревянная", Offers[idx].Name)
		default:
			st.CurrentVariant = idx
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()

	e.log.Info("Прогресс загружен: %d монет, кирка %s", st.Money, Offers[st.CurrentVariant].Name)
	return nil
}

// loadRaw читает ключ. false означает отсутствие значения или ошибку хранилища.
func (e *Economy) loadRaw(ctx context.Context, key string) ([]byte, bool) {
	raw, err := e.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		e.log.Warn("Не удалось прочитать %s: %v", key, err)
		return nil, false
	}
	return raw, true
}

func (e *Economy) loadJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, ok := e.loadRaw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		e.log.Warn("Повреждённое значение %s: %v, используются значения по умолчанию", key, err)
		return false
	}
	return true
}

func mergeResources(dst map[block.Resource]int, src map[string]int) {
	for name, n := range src {
		if _, known := dst[block.Resource(name)]; !known || n < 0 {
			continue
		}
		dst[block.Resource(name)] = n
	}
}

func clampEnchantments(e Enchantments) Enchantments {
	clamp := func(v int, kind Enchantment) int {
		if v < 0 {
			return 0
		}
		if limit := MaxLevel(kind); v > limit {
			return limit
		}
		return v
	}
	return Enchantments{
		Efficiency: clamp(e.Efficiency, Efficiency),
		Unbreaking: clamp(e.Unbreaking, Unbreaking),
		Fortune:    clamp(e.Fortune, Fortune),
	}
}

// SaveAll записывает весь прогресс. Ошибки отдельных ключей собираются вместе.
func (e *Economy) SaveAll(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	st := e.Snapshot()
	values := map[string]interface{}{
		KeyResources:    resourceNames(st.Resources),
		KeySmelted:      resourceNames(st.Smelted),
		KeyStats:        st.Stats,
		KeyEnchantments: st.Enchantments,
		KeySettings:     st.Settings,
		KeyUnlocks:      st.Unlocks,
		KeySummerEvent:  st.SummerEvent,
	}

	var errs []error
	for key, v := range values {
		if err := e.saveJSON(ctx, key, v); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.store.Set(ctx, KeyMoney, []byte(strconv.Itoa(st.Money))); err != nil {
		errs = append(errs, fmt.Errorf("save %s: %w", KeyMoney, err))
	}
	if err := e.store.Set(ctx, KeyCurrentVariant, []byte(strconv.Itoa(st.CurrentVariant))); err != nil {
		errs = append(errs, fmt.Errorf("save %s: %w", KeyCurrentVariant, err))
	}

	if err := errors.Join(errs...); err != nil {
		e.log.Error("Ошибка сохранения прогресса: %v", err)
		return err
	}
	e.log.Debug("Прогресс сохранён")
	return nil
}

// SaveStats записывает только статистику
func (e *Economy) SaveStats(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	e.mu.RLock()
	stats := e.state.Clone().Stats
	e.mu.RUnlock()
	return e.saveJSON(ctx, KeyStats, stats)
}

func (e *Economy) saveJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := e.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func resourceNames(m map[block.Resource]int) map[string]int {
	out := make(map[string]int, len(m))
	for r, n := range m {
		out[string(r)] = n
	}
	return out
}
