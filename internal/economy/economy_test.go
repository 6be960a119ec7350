package economy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/breaknblocks/internal/storage"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// seqRand выдаёт заранее заданные значения, затем fallback
type seqRand struct {
	values   []float64
	fallback float64
}

func (r *seqRand) Float64() float64 {
	if len(r.values) == 0 {
		return r.fallback
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v
}

func newTestEconomy(t *testing.T, store storage.KV, values ...float64) *Economy {
	t.Helper()
	e, err := New(store, &seqRand{values: values, fallback: 0.99})
	require.NoError(t, err)
	return e
}

func TestNewRequiresRandom(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, world.ErrInvalidArgument)
}

func TestDefaultState(t *testing.T) {
	e := newTestEconomy(t, nil)
	st := e.Snapshot()

	assert.Len(t, st.Resources, 12)
	assert.Len(t, st.Smelted, 3)
	assert.True(t, st.Unlocks["wooden"])
	assert.False(t, st.Unlocks["stone"])
	assert.Equal(t, DefaultSettings(), st.Settings)
	assert.Equal(t, 0, st.CurrentVariant)
}

func TestOnBlockDestroyed(t *testing.T) {
	e := newTestEconomy(t, nil)

	e.OnBlockDestroyed(world.BlockDestroyed{Kind: block.DeepslateCoalOre, HasBonus: true})
	e.OnBlockDestroyed(world.BlockDestroyed{Kind: block.Granite})
	e.OnBlockDestroyed(world.BlockDestroyed{Kind: block.Bedrock})

	st := e.Snapshot()
	assert.Equal(t, 3, st.Stats.TotalBlocksBroken)
	assert.Equal(t, 1, st.Stats.BlocksBrokenByType["deepslate_coal_ore"])
	assert.Equal(t, 1, st.Resources[block.ResourceCoal])
	assert.Equal(t, 1, st.Resources[block.ResourceStone], "Гранит даёт камень")
	assert.Equal(t, 1, st.Stats.ResourcesCollected["coal"])
	assert.Equal(t, 1, st.BonusPickups)
}

func TestFortuneBonus(t *testing.T) {
	// 0.1 < 0.6 - удача сработала; floor(0.9*2)+1 = 2 сверху
	e := newTestEconomy(t, nil, 0.1, 0.9)
	e.state.Enchantments.Fortune = 2

	e.OnBlockDestroyed(world.BlockDestroyed{Kind: block.DiamondOre})
	assert.Equal(t, 3, e.Snapshot().Resources[block.ResourceDiamond])

	// fallback 0.99 - удача не срабатывает
	e.OnBlockDestroyed(world.BlockDestroyed{Kind: block.DiamondOre})
	assert.Equal(t, 4, e.Snapshot().Resources[block.ResourceDiamond])
}

func TestSell(t *testing.T) {
	e := newTestEconomy(t, nil)
	e.state.Resources[block.ResourceCoal] = 5
	e.state.Resources[block.ResourceObsidian] = 3

	earned, err := e.Sell(block.ResourceCoal, 3)
	require.NoError(t, err)
	assert.Equal(t, 9, earned)
	assert.Equal(t, 9, e.Money())
	assert.Equal(t, 9, e.Snapshot().Stats.MoneyEarned)

	_, err = e.Sell(block.ResourceCoal, 3)
	assert.ErrorIs(t, err, ErrInsufficient)
	_, err = e.Sell(block.ResourceCoal, 0)
	assert.ErrorIs(t, err, ErrInsufficient)
	_, err = e.Sell(block.ResourceObsidian, 1)
	assert.ErrorIs(t, err, ErrUnknownResource, "Обсидиан не продаётся")
}

func TestSellAll(t *testing.T) {
	e := newTestEconomy(t, nil)
	e.state.Resources[block.ResourceCoal] = 2
	e.state.Resources[block.ResourceDiamond] = 1
	e.state.Resources[block.ResourceObsidian] = 4
	e.state.Smelted[block.ResourceIron] = 2

	items, earned := e.SellAll()
	assert.Equal(t, 5, items)
	assert.Equal(t, 2*3+70+2*28, earned)

	st := e.Snapshot()
	assert.Equal(t, earned, st.Money)
	assert.Equal(t, 4, st.Resources[block.ResourceObsidian])
	assert.Equal(t, 0, st.Smelted[block.ResourceIron])

	items, earned = e.SellAll()
	assert.Zero(t, items)
	assert.Zero(t, earned)
}

func TestSmelt(t *testing.T) {
	e := newTestEconomy(t, nil)
	e.state.Resources[block.ResourceIron] = 3
	e.state.Resources[block.ResourceCoal] = 2

	assert.ErrorIs(t, e.Smelt(block.ResourceIron, 3), ErrInsufficient, "Не хватает угля")
	require.NoError(t, e.Smelt(block.ResourceIron, 2))

	st := e.Snapshot()
	assert.Equal(t, 1, st.Resources[block.ResourceIron])
	assert.Equal(t, 0, st.Resources[block.ResourceCoal])
	assert.Equal(t, 2, st.Smelted[block.ResourceIron])

	assert.ErrorIs(t, e.Smelt(block.ResourceDiamond, 1), ErrUnknownResource)

	earned, err := e.SellSmelted(block.ResourceIron, 2)
	require.NoError(t, err)
	assert.Equal(t, 56, earned)
	_, err = e.SellSmelted(block.ResourceIron, 1)
	assert.ErrorIs(t, err, ErrInsufficient)
}

func TestSmeltAll(t *testing.T) {
	e := newTestEconomy(t, nil)
	e.state.Resources[block.ResourceGold] = 7
	e.state.Resources[block.ResourceCoal] = 4

	n, err := e.SmeltAll(block.ResourceGold)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 3, e.Snapshot().Resources[block.ResourceGold])
}

func TestEnchantmentCost(t *testing.T) {
	cost, err := EnchantmentCost(Efficiency, 0)
	require.NoError(t, err)
	assert.Equal(t, Cost{Money: 150, Lapis: 5}, cost)

	cost, err = EnchantmentCost(Efficiency, 1)
	require.NoError(t, err)
	assert.Equal(t, Cost{Money: 420, Lapis: 10}, cost)

	cost, err = EnchantmentCost(Fortune, 1)
	require.NoError(t, err)
	assert.Equal(t, Cost{Money: 1120, Lapis: 24}, cost)

	_, err = EnchantmentCost("sharpness", 0)
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestBuyEnchantment(t *testing.T) {
	e := newTestEconomy(t, nil)
	e.state.Money = 150
	e.state.Resources[block.ResourceLapis] = 5

	require.NoError(t, e.BuyEnchantment(Efficiency))
	assert.Equal(t, 1, e.Level(Efficiency))
	assert.Equal(t, 0, e.Money())
	assert.Equal(t, 0, e.Snapshot().Resources[block.ResourceLapis])

	assert.ErrorIs(t, e.BuyEnchantment(Efficiency), ErrInsufficient)

	e.state.Enchantments.Unbreaking = MaxLevel(Unbreaking)
	assert.ErrorIs(t, e.BuyEnchantment(Unbreaking), ErrMaxLevel)
}

func TestBuyPickaxe(t *testing.T) {
	e := newTestEconomy(t, nil)
	e.state.Money = 1000
	e.state.Resources[block.ResourceStone] = 25

	assert.True(t, e.CanAffordPickaxe("stone"))
	require.NoError(t, e.BuyPickaxe("stone"))
	assert.True(t, e.IsUnlocked("stone"))
	assert.Equal(t, 950, e.Money())
	assert.Equal(t, 5, e.Snapshot().Resources[block.ResourceStone])
	assert.ErrorIs(t, e.BuyPickaxe("stone"), ErrAlreadyUnlocked)

	assert.False(t, e.CanAffordPickaxe("iron"), "Нужны железные слитки")
	assert.ErrorIs(t, e.BuyPickaxe("iron"), ErrInsufficient)
	e.state.Smelted[block.ResourceIron] = 5
	require.NoError(t, e.BuyPickaxe("iron"))
	assert.Equal(t, 0, e.Snapshot().Smelted[block.ResourceIron])

	assert.ErrorIs(t, e.BuyPickaxe("lava"), ErrSummerOnly)
	e.SetSummerEvent(true)
	require.NoError(t, e.BuyPickaxe("lava"))
	assert.Equal(t, 350, e.Money())

	assert.ErrorIs(t, e.BuyPickaxe("plastic"), ErrUnknownResource)
}

func TestEquip(t *testing.T) {
	e := newTestEconomy(t, nil)
	assert.ErrorIs(t, e.Equip(2), ErrLocked)
	assert.ErrorIs(t, e.Equip(42), ErrUnknownResource)

	e.state.Unlocks["iron"] = true
	require.NoError(t, e.Equip(2))
	assert.Equal(t, 2, e.CurrentVariant())
}

func TestResetProgress(t *testing.T) {
	e := newTestEconomy(t, nil)
	e.state.Money = 500
	e.state.Unlocks["diamond"] = true
	e.state.CurrentVariant = 4
	e.state.Settings.Language = "ru"
	e.SetSummerEvent(true)

	e.ResetProgress()
	st := e.Snapshot()
	assert.Zero(t, st.Money)
	assert.False(t, st.Unlocks["diamond"])
	assert.Equal(t, 0, st.CurrentVariant)
	assert.Equal(t, "ru", st.Settings.Language)
	assert.True(t, st.SummerEvent)
}

func TestSnapshotIsCopy(t *testing.T) {
	e := newTestEconomy(t, nil)
	st := e.Snapshot()
	st.Resources[block.ResourceCoal] = 100
	st.Stats.BlocksBrokenByType["stone"] = 7

	again := e.Snapshot()
	assert.Zero(t, again.Resources[block.ResourceCoal])
	assert.Zero(t, again.Stats.BlocksBrokenByType["stone"])
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryKV()

	e := newTestEconomy(t, store)
	e.state.Money = 120
	e.state.Resources[block.ResourceLapis] = 7
	e.state.Smelted[block.ResourceGold] = 2
	e.state.Enchantments.Fortune = 1
	e.state.Unlocks["golden"] = true
	e.state.CurrentVariant = 3
	e.state.Stats.DeepestDepth = 42
	e.SetSummerEvent(true)
	require.NoError(t, e.SaveAll(ctx))

	raw, err := store.Get(ctx, KeyMoney)
	require.NoError(t, err)
	assert.Equal(t, "120", string(raw))

	loaded := newTestEconomy(t, store)
	require.NoError(t, loaded.Load(ctx))

	want := e.Snapshot()
	want.BonusPickups = 0
	assert.Equal(t, want, loaded.Snapshot())
}

func TestLoadCorruptValuesFallBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryKV()
	require.NoError(t, store.Set(ctx, KeyMoney, []byte("lots")))
	require.NoError(t, store.Set(ctx, KeyStats, []byte("{")))
	require.NoError(t, store.Set(ctx, KeyResources, []byte(`{"coal":5,"unobtainium":3}`)))
	require.NoError(t, store.Set(ctx, KeyUnlocks, []byte(`{"stone":true,"plastic":true}`)))
	require.NoError(t, store.Set(ctx, KeyCurrentVariant, []byte("3")))
	require.NoError(t, store.Set(ctx, KeyEnchantments, []byte(`{"efficiency":9}`)))

	e := newTestEconomy(t, store)
	require.NoError(t, e.Load(ctx))

	st := e.Snapshot()
	assert.Zero(t, st.Money)
	assert.Equal(t, DefaultStats(), st.Stats)
	assert.Equal(t, 5, st.Resources[block.ResourceCoal])
	assert.Len(t, st.Resources, 12, "Неизвестные ресурсы отбрасываются")
	assert.True(t, st.Unlocks["stone"])
	assert.NotContains(t, st.Unlocks, "plastic")
	assert.Equal(t, 0, st.CurrentVariant, "Золотая кирка не куплена")
	assert.Equal(t, 5, st.Enchantments.Efficiency)
}

func TestSaveStats(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryKV()
	e := newTestEconomy(t, store)

	e.OnBlockDestroyed(world.BlockDestroyed{Kind: block.Stone})
	require.NoError(t, e.SaveStats(ctx))

	raw, err := store.Get(ctx, KeyStats)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalBlocksBroken":1`)

	_, err = store.Get(ctx, KeyMoney)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
