package economy

import (
	"github.com/annel0/breaknblocks/internal/world/block"
)

// Enchantment - тип зачарования кирки
type Enchantment string

const (
	Efficiency Enchantment = "efficiency"
	Unbreaking Enchantment = "unbreaking"
	Fortune    Enchantment = "fortune"
)

// AllEnchantments возвращает зачарования в порядке витрины
func AllEnchantments() []Enchantment {
	return []Enchantment{Efficiency, Unbreaking, Fortune}
}

type enchantmentInfo struct {
	maxLevel  int
	baseMoney float64
	baseLapis float64
}

var enchantments = map[Enchantment]enchantmentInfo{
	Efficiency: {maxLevel: 5, baseMoney: 150, baseLapis: 5},
	Unbreaking: {maxLevel: 3, baseMoney: 250, baseLapis: 8},
	Fortune:    {maxLevel: 3, baseMoney: 400, baseLapis: 12},
}

// Рост цены зачарования с каждым уровнем
const enchantmentPriceGrowth = 2.8

// Цены продажи сырья. Обсидиан не продаётся.
var sellPrices = map[block.Resource]int{
	block.ResourceCoal:      3,
	block.ResourceCopper:    10,
	block.ResourceIron:      18,
	block.ResourceGold:      35,
	block.ResourceRedstone:  22,
	block.ResourceDiamond:   70,
	block.ResourceLapis:     14,
	block.ResourceEmerald:   45,
	block.ResourceStone:     1,
	block.ResourceSand:      2,
	block.ResourceSandstone: 3,
}

// Цены продажи слитков
var smeltedPrices = map[block.Resource]int{
	block.ResourceCopper: 18,
	block.ResourceIron:   28,
	block.ResourceGold:   55,
}

// Угля на один слиток
const coalPerSmelt = 1

// Порядок продажи при SellAll
var sellOrder = []block.Resource{
	block.ResourceCoal, block.ResourceCopper, block.ResourceIron, block.ResourceGold,
	block.ResourceRedstone, block.ResourceDiamond, block.ResourceLapis, block.ResourceEmerald,
	block.ResourceStone, block.ResourceSand, block.ResourceSandstone,
}

// SmeltableResources возвращает ресурсы, которые можно переплавить
func SmeltableResources() []block.Resource {
	return []block.Resource{block.ResourceCopper, block.ResourceIron, block.ResourceGold}
}

// SellPrice возвращает цену продажи ресурса
func SellPrice(r block.Resource) (int, bool) {
	p, ok := sellPrices[r]
	return p, ok
}

// SmeltedPrice возвращает цену продажи слитка
func SmeltedPrice(r block.Resource) (int, bool) {
	p, ok := smeltedPrices[r]
	return p, ok
}

// Requirement - предмет, который нужно отдать при покупке кирки
type Requirement struct {
	Resource block.Resource
	Ingot    bool // Требуется слиток, а не сырьё
	Amount   int
}

// PickaxeOffer - условия покупки вида кирки
type PickaxeOffer struct {
	Name         string
	Price        int
	Requirements []Requirement
	SummerOnly   bool // Доступна только во время летнего события
}

// Offers - условия покупки в порядке видов кирки
var Offers = []PickaxeOffer{
	{Name: "wooden"},
	{Name: "stone", Price: 50, Requirements: []Requirement{{Resource: block.ResourceStone, Amount: 20}}},
	{Name: "iron", Price: 100, Requirements: []Requirement{{Resource: block.ResourceIron, Ingot: true, Amount: 5}}},
	{Name: "golden", Price: 80, Requirements: []Requirement{{Resource: block.ResourceGold, Ingot: true, Amount: 3}}},
	{Name: "diamond", Price: 200, Requirements: []Requirement{{Resource: block.ResourceDiamond, Amount: 3}}},
	{Name: "obsidian", Price: 350, Requirements: []Requirement{
		{Resource: block.ResourceDiamond, Amount: 2},
		{Resource: block.ResourceObsidian, Amount: 10},
	}},
	{Name: "netherite", Price: 500, Requirements: []Requirement{
		{Resource: block.ResourceDiamond, Amount: 4},
		{Resource: block.ResourceGold, Ingot: true, Amount: 4},
	}},
	{Name: "lava", Price: 500, SummerOnly: true},
	{Name: "blaze", Price: 750, SummerOnly: true},
	{Name: "fish", Price: 600, SummerOnly: true},
}

func offerByName(name string) (PickaxeOffer, bool) {
	for _, o := range Offers {
		if o.Name == name {
			return o, true
		}
	}
	return PickaxeOffer{}, false
}
