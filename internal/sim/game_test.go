package sim

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/breaknblocks/internal/economy"
	"github.com/annel0/breaknblocks/internal/pickaxe"
	"github.com/annel0/breaknblocks/internal/storage"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

func newTestGame(t *testing.T) (*Game, *storage.MemoryKV) {
	t.Helper()
	store := storage.NewMemoryKV()
	rng := rand.New(rand.NewSource(7))
	econ, err := economy.New(store, rng)
	require.NoError(t, err)
	g, err := NewGame(DefaultConfig(), econ, rng)
	require.NoError(t, err)
	return g, store
}

func firstBreakable(t *testing.T, g *Game) *block.Block {
	t.Helper()
	for _, b := range g.World().Blocks {
		if b.Breakable() && !b.Destroyed {
			return b
		}
	}
	t.Fatal("no breakable block")
	return nil
}

func TestNewGameValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := NewGame(DefaultConfig(), nil, rng)
	assert.ErrorIs(t, err, world.ErrInvalidArgument)

	econ, err := economy.New(storage.NewMemoryKV(), rng)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.ViewportWidth = 0
	_, err = NewGame(cfg, econ, rng)
	assert.ErrorIs(t, err, world.ErrInvalidArgument)
}

func TestNewGameInitialState(t *testing.T) {
	g, _ := newTestGame(t)

	p := g.Pickaxe()
	assert.Equal(t, "wooden", p.Variant().Name)
	assert.False(t, p.Dropped)
	assert.InDelta(t, 375, p.X, 1e-9)
	assert.InDelta(t, pickaxe.DefaultStartY, p.Y, 1e-9)
	assert.NotEmpty(t, g.World().Blocks)
	assert.False(t, g.Ability().Enabled())
	assert.False(t, g.GameOver())
}

func TestDropAndFall(t *testing.T) {
	g, _ := newTestGame(t)
	ctx := context.Background()

	require.True(t, g.Drop())
	assert.False(t, g.Drop())

	startY := g.Pickaxe().Y
	for i := 0; i < 10; i++ {
		g.Frame(ctx, 1.0/60.0)
	}
	assert.Greater(t, g.Pickaxe().Y, startY)
	assert.Equal(t, uint64(10), g.Frames())
	assert.Greater(t, g.Economy().Snapshot().Stats.PlayTime, 0.0)
}

func TestHandleBlockHitDestroysBlock(t *testing.T) {
	g, _ := newTestGame(t)
	b := firstBreakable(t, g)

	destroyed := false
	for i := 0; i < 100 && !destroyed; i++ {
		destroyed = g.HandleBlockHit(b)
	}
	require.True(t, destroyed)

	st := g.Economy().Snapshot()
	assert.Equal(t, 1, st.Stats.TotalBlocksBroken)
	assert.Equal(t, 1, st.Stats.BlocksBrokenByType[b.Kind.String()])
	assert.LessOrEqual(t, g.Pickaxe().Durability(), pickaxe.Variants[0].MaxDurability)
}

func TestResetCountsBrokenPickaxe(t *testing.T) {
	g, _ := newTestGame(t)

	require.NoError(t, g.Reset())
	assert.Zero(t, g.Economy().Snapshot().Stats.PickaxesBroken)

	g.Drop()
	g.gameOver = true
	require.NoError(t, g.Reset())

	assert.Equal(t, 1, g.Economy().Snapshot().Stats.PickaxesBroken)
	assert.False(t, g.GameOver())
	assert.False(t, g.Pickaxe().Dropped)
	assert.Zero(t, g.Camera().Y)
}

func TestGameOverStopsSteps(t *testing.T) {
	g, _ := newTestGame(t)
	g.Drop()
	g.gameOver = true

	y := g.Pickaxe().Y
	g.Frame(context.Background(), 0.05)
	assert.Equal(t, y, g.Pickaxe().Y)
	assert.False(t, g.Drop())
}

func TestResizeRecentersMine(t *testing.T) {
	g, _ := newTestGame(t)
	b := firstBreakable(t, g)
	x := b.X

	assert.ErrorIs(t, g.Resize(0, 600), world.ErrInvalidArgument)

	require.NoError(t, g.Resize(1000, 700))
	assert.InDelta(t, x+100, b.X, 1e-9)

	s := g.Snapshot()
	assert.Equal(t, 1000.0, s.ViewportWidth)
	assert.Equal(t, 700.0, s.ViewportHeight)
}

func TestAbilities(t *testing.T) {
	cases := []struct {
		variant     string
		particles   bool
		projectiles bool
	}{
		{variant: "lava", particles: true},
		{variant: "blaze", projectiles: true},
		{variant: "fish", projectiles: true},
	}

	for _, tc := range cases {
		t.Run(tc.variant, func(t *testing.T) {
			g, _ := newTestGame(t)
			idx, ok := pickaxe.VariantIndex(tc.variant)
			require.True(t, ok)
			require.NoError(t, g.Pickaxe().SetVariant(idx))
			g.configureAbility()
			assert.True(t, g.Ability().Enabled())

			g.fireAbility()
			assert.Equal(t, tc.particles, len(g.World().Particles) > 0)
			assert.Equal(t, tc.projectiles, len(g.World().Projectiles) > 0)
		})
	}
}

func TestNextVariantNeedsUnlock(t *testing.T) {
	g, _ := newTestGame(t)

	// Куплена только деревянная кирка
	assert.False(t, g.NextVariant())
	assert.ErrorIs(t, g.Equip(3), economy.ErrLocked)
}

func TestApplyCommands(t *testing.T) {
	g, store := newTestGame(t)
	ctx := context.Background()

	res, err := g.Apply(ctx, Command{Kind: CmdDrop})
	require.NoError(t, err)
	assert.True(t, res.Applied)

	res, err = g.Apply(ctx, Command{Kind: CmdDrop})
	require.NoError(t, err)
	assert.False(t, res.Applied)

	res, err = g.Apply(ctx, Command{Kind: CmdSellAll})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Zero(t, res.Earned)
	// Прогресс сохранён сразу после торговой команды
	assert.Positive(t, store.Len())

	_, err = g.Apply(ctx, Command{Kind: CmdBuyPickaxe, Name: "stone"})
	assert.ErrorIs(t, err, economy.ErrInsufficient)

	_, err = g.Apply(ctx, Command{Kind: CommandKind(200)})
	assert.ErrorIs(t, err, world.ErrInvalidArgument)
	assert.Equal(t, "command(200)", CommandKind(200).String())

	res, err = g.Apply(ctx, Command{Kind: CmdReset})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.False(t, g.Pickaxe().Dropped)
}

func TestSetSummerRebuildsMine(t *testing.T) {
	g, _ := newTestGame(t)
	ctx := context.Background()

	_, err := g.Apply(ctx, Command{Kind: CmdSetSummer, Flag: true})
	require.NoError(t, err)
	assert.True(t, g.Economy().SummerEvent())

	_, err = g.Apply(ctx, Command{Kind: CmdResetProgress})
	require.NoError(t, err)
	assert.True(t, g.Economy().SummerEvent())
	assert.Equal(t, "wooden", g.Pickaxe().Variant().Name)
}

func TestSnapshot(t *testing.T) {
	g, _ := newTestGame(t)
	s := g.Snapshot()

	assert.Equal(t, "wooden", s.Pickaxe.Variant)
	assert.Equal(t, len(g.World().Blocks), s.BlockCount())
	assert.Empty(t, s.Pickaxe.AbilityPhase)

	all := s.QueryRegion(-1e6, -1e6, 2e6, 2e6)
	assert.Len(t, all, s.BlockCount())
	for _, v := range all {
		if v.Kind == "bedrock" {
			assert.False(t, v.Breakable)
			assert.Zero(t, v.MaxHealth)
		}
	}

	// Снимок не меняется вместе с миром
	b := firstBreakable(t, g)
	before := s.QueryRegion(b.X, b.Y, 1, 1)
	broken := false
	for i := 0; i < 100 && !broken; i++ {
		broken = g.HandleBlockHit(b)
	}
	require.True(t, broken)
	assert.Equal(t, before, s.QueryRegion(b.X, b.Y, 1, 1))
}
