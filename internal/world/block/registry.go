package block

import (
	"errors"
	"fmt"
	"math"
)

// Kind представляет тип блока шахты. Перечисление закрыто: любой Kind вне
// диапазона [0, kindCount) считается ошибкой программиста.
type Kind uint8

// Константы типов блоков
const (
	// Камни
	Stone Kind = iota
	Andesite
	Diorite
	Granite
	Deepslate
	Obsidian
	Sand
	Sandstone
	Bedrock

	// Руды
	CoalOre
	CopperOre
	IronOre
	GoldOre
	RedstoneOre
	LapisOre
	DiamondOre
	EmeraldOre

	// Глубинносланцевые руды
	DeepslateCoalOre
	DeepslateCopperOre
	DeepslateIronOre
	DeepslateGoldOre
	DeepslateRedstoneOre
	DeepslateLapisOre
	DeepslateDiamondOre
	DeepslateEmeraldOre

	kindCount
)

// Resource - ресурс, который выпадает из разрушенного блока
type Resource string

// Ресурсы экономики
const (
	ResourceNone      Resource = ""
	ResourceStone     Resource = "stone"
	ResourceCoal      Resource = "coal"
	ResourceCopper    Resource = "copper"
	ResourceIron      Resource = "iron"
	ResourceGold      Resource = "gold"
	ResourceRedstone  Resource = "redstone"
	ResourceDiamond   Resource = "diamond"
	ResourceLapis     Resource = "lapis"
	ResourceEmerald   Resource = "emerald"
	ResourceObsidian  Resource = "obsidian"
	ResourceSand      Resource = "sand"
	ResourceSandstone Resource = "sandstone"
)

// Definition описывает статические свойства типа блока
type Definition struct {
	Name                string   // Строковый ключ типа (coal_ore, deepslate_coal_ore...)
	Health              float64  // Прочность; +Inf для неразрушаемых блоков
	TextureKey          string   // Ключ текстуры для рендерера
	FallbackColor       string   // Цвет, если текстура не загрузилась
	IsDeepslate         bool     // Блок относится к глубинному слою
	HasDeepslateVariant bool     // У руды есть глубинносланцевый вариант
	Resource            Resource // Выпадающий ресурс
}

// ErrUnknownKind возвращается при разборе неизвестного ключа блока
var ErrUnknownKind = errors.New("unknown block kind")

// definitions индексируется по Kind. Размер массива привязан к kindCount,
// поэтому добавление нового Kind без записи в таблице ловится TestDefinitionsComplete.
var definitions = [kindCount]Definition{
	Stone:     {Name: "stone", Health: 3, TextureKey: "stoneImage", FallbackColor: "#8B8B8B", Resource: ResourceStone},
	Andesite:  {Name: "andesite", Health: 3, TextureKey: "andesiteImage", FallbackColor: "#A0A0A0", Resource: ResourceStone},
	Diorite:   {Name: "diorite", Health: 3, TextureKey: "dioriteImage", FallbackColor: "#C0C0C0", Resource: ResourceStone},
	Granite:   {Name: "granite", Health: 3, TextureKey: "graniteImage", FallbackColor: "#C8997A", Resource: ResourceStone},
	Deepslate: {Name: "deepslate", Health: 5, TextureKey: "deepslateImage", FallbackColor: "#2C2C2C", IsDeepslate: true, Resource: ResourceStone},
	Obsidian:  {Name: "obsidian", Health: 50, TextureKey: "obsidianImage", FallbackColor: "#1e1b29", Resource: ResourceObsidian},
	Sand:      {Name: "sand", Health: 1.5, TextureKey: "sandImage", FallbackColor: "#F4E4BC", Resource: ResourceSand},
	Sandstone: {Name: "sandstone", Health: 2.5, TextureKey: "sandstoneImage", FallbackColor: "#F2D2A7", Resource: ResourceSandstone},
	Bedrock:   {Name: "bedrock", Health: math.Inf(1), TextureKey: "bedrockImage", FallbackColor: "#4A4A4A", Resource: ResourceNone},

	CoalOre:     {Name: "coal_ore", Health: 5, TextureKey: "coalOreImage", FallbackColor: "#2C2C2C", HasDeepslateVariant: true, Resource: ResourceCoal},
	CopperOre:   {Name: "copper_ore", Health: 5, TextureKey: "copperOreImage", FallbackColor: "#B87333", HasDeepslateVariant: true, Resource: ResourceCopper},
	IronOre:     {Name: "iron_ore", Health: 6, TextureKey: "ironOreImage", FallbackColor: "#D4A574", HasDeepslateVariant: true, Resource: ResourceIron},
	GoldOre:     {Name: "gold_ore", Health: 8, TextureKey: "goldOreImage", FallbackColor: "#FFD700", HasDeepslateVariant: true, Resource: ResourceGold},
	RedstoneOre: {Name: "redstone_ore", Health: 6, TextureKey: "redstoneOreImage", FallbackColor: "#FF4444", HasDeepslateVariant: true, Resource: ResourceRedstone},
	LapisOre:    {Name: "lapis_ore", Health: 6, TextureKey: "lapisOreImage", FallbackColor: "#1E90FF", HasDeepslateVariant: true, Resource: ResourceLapis},
	DiamondOre:  {Name: "diamond_ore", Health: 12, TextureKey: "diamondOreImage", FallbackColor: "#40E0D0", HasDeepslateVariant: true, Resource: ResourceDiamond},
	EmeraldOre:  {Name: "emerald_ore", Health: 10, TextureKey: "emeraldOreImage", FallbackColor: "#2ecc71", HasDeepslateVariant: true, Resource: ResourceEmerald},

	DeepslateCoalOre:     {Name: "deepslate_coal_ore", Health: 6, TextureKey: "deepslateCoalOreImage", FallbackColor: "#2C2C2C", IsDeepslate: true, Resource: ResourceCoal},
	DeepslateCopperOre:   {Name: "deepslate_copper_ore", Health: 6, TextureKey: "deepslateCopperOreImage", FallbackColor: "#B87333", IsDeepslate: true, Resource: ResourceCopper},
	DeepslateIronOre:     {Name: "deepslate_iron_ore", Health: 8, TextureKey: "deepslateIronOreImage", FallbackColor: "#D4A574", IsDeepslate: true, Resource: ResourceIron},
	DeepslateGoldOre:     {Name: "deepslate_gold_ore", Health: 10, TextureKey: "deepslateGoldOreImage", FallbackColor: "#FFD700", IsDeepslate: true, Resource: ResourceGold},
	DeepslateRedstoneOre: {Name: "deepslate_redstone_ore", Health: 8, TextureKey: "deepslateRedstoneOreImage", FallbackColor: "#FF4444", IsDeepslate: true, Resource: ResourceRedstone},
	DeepslateLapisOre:    {Name: "deepslate_lapis_ore", Health: 8, TextureKey: "deepslateLapisOreImage", FallbackColor: "#1E90FF", IsDeepslate: true, Resource: ResourceLapis},
	DeepslateDiamondOre:  {Name: "deepslate_diamond_ore", Health: 15, TextureKey: "deepslateDiamondOreImage", FallbackColor: "#40E0D0", IsDeepslate: true, Resource: ResourceDiamond},
	DeepslateEmeraldOre:  {Name: "deepslate_emerald_ore", Health: 12, TextureKey: "deepslateEmeraldOreImage", FallbackColor: "#2ecc71", IsDeepslate: true, Resource: ResourceEmerald},
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		m[definitions[k].Name] = k
	}
	return m
}()

// Get возвращает определение для указанного типа
func Get(k Kind) Definition {
	if !k.Valid() {
		panic(fmt.Sprintf("block: invalid kind %d", k))
	}
	return definitions[k]
}

// Valid проверяет, входит ли значение в перечисление
func (k Kind) Valid() bool {
	return k < kindCount
}

// String возвращает строковый ключ типа
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", k)
	}
	return definitions[k].Name
}

// IsDeepslate сообщает, принадлежит ли тип глубинному слою
func (k Kind) IsDeepslate() bool { return Get(k).IsDeepslate }

// Resource возвращает ресурс, выпадающий из блока
func (k Kind) Resource() Resource { return Get(k).Resource }

// ParseKind разбирает строковый ключ типа
func ParseKind(name string) (Kind, error) {
	k, ok := kindsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// AllKinds возвращает все типы в порядке объявления
func AllKinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Ore перечисляет виды руды, участвующие в таблице генерации
type Ore uint8

// Порядок совпадает с порядком таблицы шансов: при равных шансах
// сортировка по убыванию сохраняет именно его.
const (
	OreCoal Ore = iota
	OreCopper
	OreIron
	OreGold
	OreRedstone
	OreDiamond
	OreLapis
	OreEmerald

	oreCount
)

var oreKinds = [oreCount][2]Kind{
	OreCoal:     {CoalOre, DeepslateCoalOre},
	OreCopper:   {CopperOre, DeepslateCopperOre},
	OreIron:     {IronOre, DeepslateIronOre},
	OreGold:     {GoldOre, DeepslateGoldOre},
	OreRedstone: {RedstoneOre, DeepslateRedstoneOre},
	OreDiamond:  {DiamondOre, DeepslateDiamondOre},
	OreLapis:    {LapisOre, DeepslateLapisOre},
	OreEmerald:  {EmeraldOre, DeepslateEmeraldOre},
}

// AllOres возвращает все виды руды
func AllOres() []Ore {
	ores := make([]Ore, 0, oreCount)
	for o := Ore(0); o < oreCount; o++ {
		ores = append(ores, o)
	}
	return ores
}

// Kind возвращает тип блока руды. Глубинный вариант выбирается только если
// он определён для этой руды.
func (o Ore) Kind(deepslate bool) Kind {
	kinds := oreKinds[o]
	if deepslate && Get(kinds[0]).HasDeepslateVariant {
		return kinds[1]
	}
	return kinds[0]
}

// String возвращает имя руды без суффикса
func (o Ore) String() string {
	if o >= oreCount {
		return fmt.Sprintf("ore(%d)", o)
	}
	return string(Get(oreKinds[o][0]).Resource)
}

// ParseOre разбирает имя руды (coal, copper, ...)
func ParseOre(name string) (Ore, error) {
	for o := Ore(0); o < oreCount; o++ {
		if o.String() == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: ore %q", ErrUnknownKind, name)
}
