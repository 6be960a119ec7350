package sim

import (
	"context"
	"fmt"

	"github.com/annel0/breaknblocks/internal/economy"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// CommandKind - тип команды игрока
type CommandKind uint8

const (
	CmdDrop CommandKind = iota
	CmdNextVariant
	CmdEquip
	CmdReset
	CmdResize
	CmdSell
	CmdSellAll
	CmdSmelt
	CmdSmeltAll
	CmdSellSmelted
	CmdEnchant
	CmdBuyPickaxe
	CmdSetSummer
	CmdResetProgress
	CmdSave
)

var commandNames = [...]string{
	CmdDrop:          "drop",
	CmdNextVariant:   "next_variant",
	CmdEquip:         "equip",
	CmdReset:         "reset",
	CmdResize:        "resize",
	CmdSell:          "sell",
	CmdSellAll:       "sell_all",
	CmdSmelt:         "smelt",
	CmdSmeltAll:      "smelt_all",
	CmdSellSmelted:   "sell_smelted",
	CmdEnchant:       "enchant",
	CmdBuyPickaxe:    "buy_pickaxe",
	CmdSetSummer:     "set_summer",
	CmdResetProgress: "reset_progress",
	CmdSave:          "save",
}

// String возвращает имя команды
func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("command(%d)", k)
}

// Command - действие игрока. Применяется в начале кадра в горутине цикла.
type Command struct {
	Kind     CommandKind
	Resource block.Resource // sell, smelt, sell_smelted
	Amount   int
	Name     string // Зачарование или кирка
	Index    int    // equip
	Width    float64
	Height   float64
	Flag     bool // set_summer
}

// Result - итог команды
type Result struct {
	Applied bool `json:"applied"`
	Items   int  `json:"items,omitempty"`
	Earned  int  `json:"earned,omitempty"`
}

// Apply выполняет команду
func (g *Game) Apply(ctx context.Context, cmd Command) (Result, error) {
	var (
		res Result
		err error
	)

	switch cmd.Kind {
	case CmdDrop:
		res.Applied = g.Drop()
	case CmdNextVariant:
		res.Applied = g.NextVariant()
	case CmdEquip:
		err = g.Equip(cmd.Index)
	case CmdReset:
		err = g.Reset()
	case CmdResize:
		err = g.Resize(cmd.Width, cmd.Height)
	case CmdSell:
		res.Earned, err = g.econ.Sell(cmd.Resource, cmd.Amount)
	case CmdSellAll:
		res.Items, res.Earned = g.econ.SellAll()
	case CmdSmelt:
		err = g.econ.Smelt(cmd.Resource, cmd.Amount)
		res.Items = cmd.Amount
	case CmdSmeltAll:
		res.Items, err = g.econ.SmeltAll(cmd.Resource)
	case CmdSellSmelted:
		res.Earned, err = g.econ.SellSmelted(cmd.Resource, cmd.Amount)
	case CmdEnchant:
		err = g.econ.BuyEnchantment(economy.Enchantment(cmd.Name))
	case CmdBuyPickaxe:
		err = g.econ.BuyPickaxe(cmd.Name)
	case CmdSetSummer:
		err = g.SetSummer(ctx, cmd.Flag)
	case CmdResetProgress:
		err = g.ResetProgress(ctx)
	case CmdSave:
		err = g.econ.SaveAll(ctx)
	default:
		err = fmt.Errorf("%w: unknown command %s", world.ErrInvalidArgument, cmd.Kind)
	}

	if err != nil {
		g.log.Debug("Команда %s отклонена: %v", cmd.Kind, err)
		return Result{}, err
	}
	if !isPassive(cmd.Kind) {
		res.Applied = true
	}
	if res.Applied && economyMutation(cmd.Kind) {
		if err := g.econ.SaveAll(ctx); err != nil {
			g.log.Warn("Не удалось сохранить прогресс после %s: %v", cmd.Kind, err)
		}
	}
	return res, nil
}

// isPassive - команды, у которых Applied отражает, изменилось ли состояние
func isPassive(k CommandKind) bool {
	return k == CmdDrop || k == CmdNextVariant
}

// economyMutation - команды, после которых прогресс сохраняется сразу
func economyMutation(k CommandKind) bool {
	switch k {
	case CmdSell, CmdSellAll, CmdSmelt, CmdSmeltAll, CmdSellSmelted, CmdEnchant, CmdBuyPickaxe, CmdEquip, CmdNextVariant:
		return true
	}
	return false
}
