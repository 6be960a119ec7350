package economy

import (
	"github.com/annel0/breaknblocks/internal/world/block"
)

// Stats - накопленная статистика игрока
type Stats struct {
	TotalBlocksBroken  int            `json:"totalBlocksBroken"`
	BlocksBrokenByType map[string]int `json:"blocksBrokenByType"`
	ResourcesCollected map[string]int `json:"resourcesCollected"`
	DeepestDepth       int            `json:"deepestDepth"`
	PlayTime           float64        `json:"playTime"` // Секунды
	PickaxesBroken     int            `json:"pickaxesBroken"`
	MoneyEarned        int            `json:"moneyEarned"`
}

// Settings - пользовательские настройки
type Settings struct {
	MusicVolume float64 `json:"musicVolume"`
	SfxVolume   float64 `json:"sfxVolume"`
	Language    string  `json:"language"`
}

// Enchantments - уровни зачарований
type Enchantments struct {
	Efficiency int `json:"efficiency"`
	Unbreaking int `json:"unbreaking"`
	Fortune    int `json:"fortune"`
}

// Level возвращает уровень зачарования
func (e Enchantments) Level(kind Enchantment) int {
	switch kind {
	case Efficiency:
		return e.Efficiency
	case Unbreaking:
		return e.Unbreaking
	case Fortune:
		return e.Fortune
	}
	return 0
}

func (e *Enchantments) raise(kind Enchantment) {
	switch kind {
	case Efficiency:
		e.Efficiency++
	case Unbreaking:
		e.Unbreaking++
	case Fortune:
		e.Fortune++
	}
}

// State - полное состояние прогресса игрока
type State struct {
	Resources      map[block.Resource]int `json:"resources"`
	Smelted        map[block.Resource]int `json:"smelted"`
	Money          int                    `json:"money"`
	Stats          Stats                  `json:"stats"`
	Enchantments   Enchantments           `json:"enchantments"`
	Settings       Settings               `json:"settings"`
	SummerEvent    bool                   `json:"summer_event"`
	Unlocks        map[string]bool        `json:"unlocks"`
	CurrentVariant int                    `json:"current_variant"`
	BonusPickups   int                    `json:"bonus_pickups"` // За сессию, не сохраняется
}

func defaultResources() map[block.Resource]int {
	return map[block.Resource]int{
		block.ResourceCoal: 0, block.ResourceCopper: 0, block.ResourceIron: 0,
		block.ResourceGold: 0, block.ResourceRedstone: 0, block.ResourceDiamond: 0,
		block.ResourceLapis: 0, block.ResourceEmerald: 0, block.ResourceStone: 0,
		block.ResourceObsidian: 0, block.ResourceSand: 0, block.ResourceSandstone: 0,
	}
}

func defaultSmelted() map[block.Resource]int {
	return map[block.Resource]int{
		block.ResourceCopper: 0, block.ResourceIron: 0, block.ResourceGold: 0,
	}
}

// DefaultStats возвращает пустую статистику
func DefaultStats() Stats {
	return Stats{
		BlocksBrokenByType: map[string]int{},
		ResourcesCollected: map[string]int{},
	}
}

// DefaultSettings возвращает настройки по умолчанию
func DefaultSettings() Settings {
	return Settings{MusicVolume: 1, SfxVolume: 1, Language: "en"}
}

func defaultUnlocks() map[string]bool {
	unlocks := make(map[string]bool, len(Offers))
	for _, o := range Offers {
		unlocks[o.Name] = o.Name == "wooden"
	}
	return unlocks
}

// DefaultState возвращает состояние нового игрока
func DefaultState() State {
	return State{
		Resources: defaultResources(),
		Smelted:   defaultSmelted(),
		Stats:     DefaultStats(),
		Settings:  DefaultSettings(),
		Unlocks:   defaultUnlocks(),
	}
}

// Clone возвращает глубокую копию состояния
func (s State) Clone() State {
	out := s
	out.Resources = cloneMap(s.Resources)
	out.Smelted = cloneMap(s.Smelted)
	out.Unlocks = cloneMap(s.Unlocks)
	out.Stats.BlocksBrokenByType = cloneMap(s.Stats.BlocksBrokenByType)
	out.Stats.ResourcesCollected = cloneMap(s.Stats.ResourcesCollected)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
