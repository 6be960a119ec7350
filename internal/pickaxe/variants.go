package pickaxe

// Ability - способность кирки
type Ability string

const (
	AbilityNone          Ability = ""
	AbilityLavaParticles Ability = "lava_particles"
	AbilityBlazeRodRain  Ability = "blaze_rod_rain"
	AbilityBouncyBall    Ability = "bouncy_ball"
)

// Variant описывает вид кирки
type Variant struct {
	Name            string
	Power           float64 // Урон по блоку за удар
	Bounce          float64 // Коэффициент отскока от стен и низа блоков
	Gravity         float64 // Ускорение за тик
	MaxDurability   float64
	Stability       float64 // Чем больше, тем меньше разброс при отскоке
	Ability         Ability
	AbilityCooldown float64 // Секунды
}

// Variants - все виды кирок в порядке переключения
var Variants = []Variant{
	{Name: "wooden", Power: 1, Bounce: 0.5, Gravity: 0.4, MaxDurability: 35, Stability: 1},
	{Name: "stone", Power: 1, Bounce: 0.6, Gravity: 0.45, MaxDurability: 70, Stability: 1.5},
	{Name: "iron", Power: 2, Bounce: 0.7, Gravity: 0.5, MaxDurability: 100, Stability: 2},
	{Name: "golden", Power: 5, Bounce: 0.9, Gravity: 0.3, MaxDurability: 50, Stability: 1.2},
	{Name: "diamond", Power: 3, Bounce: 0.8, Gravity: 0.55, MaxDurability: 200, Stability: 2.5},
	{Name: "obsidian", Power: 3.5, Bounce: 0.75, Gravity: 0.58, MaxDurability: 250, Stability: 2.2},
	{Name: "netherite", Power: 4, Bounce: 0.8, Gravity: 0.6, MaxDurability: 350, Stability: 3},
	{Name: "lava", Power: 6, Bounce: 0.9, Gravity: 0.4, MaxDurability: 200, Stability: 1.8,
		Ability: AbilityLavaParticles, AbilityCooldown: 2},
	{Name: "blaze", Power: 4, Bounce: 0.7, Gravity: 0.3, MaxDurability: 300, Stability: 2.0,
		Ability: AbilityBlazeRodRain, AbilityCooldown: 5},
	{Name: "fish", Power: 3, Bounce: 0.95, Gravity: 0.4, MaxDurability: 150, Stability: 2.0,
		Ability: AbilityBouncyBall, AbilityCooldown: 2},
}

// VariantIndex возвращает индекс вида по имени
func VariantIndex(name string) (int, bool) {
	for i, v := range Variants {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}
