package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annel0/breaknblocks/internal/economy"
	"github.com/annel0/breaknblocks/internal/eventbus"
	"github.com/annel0/breaknblocks/internal/middleware"
	"github.com/annel0/breaknblocks/internal/sim"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

// Пределы области запроса /api/world, в пикселях мира
const (
	maxRegionWidth  = 4000
	maxRegionHeight = 20000
	maxCoordinate   = 1e9
)

// binder превращает тело запроса в команду
type binder func(c *gin.Context) (sim.Command, error)

// command ставит команду в очередь цикла и отвечает её результатом
func (rs *RestServer) command(bind binder) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmd, err := bind(c)
		if err != nil {
			rs.fail(c, err)
			return
		}

		res, err := rs.game.Submit(c.Request.Context(), cmd)
		if err != nil {
			rs.fail(c, err)
			return
		}

		rs.publishCommand(c, cmd, res)
		c.JSON(http.StatusOK, GenericResponse{
			Success: true,
			Message: cmd.Kind.String(),
			Data:    res,
		})
	}
}

func (rs *RestServer) publishCommand(c *gin.Context, cmd sim.Command, res sim.Result) {
	if !res.Applied {
		return
	}
	ev, err := eventbus.NewEnvelope(eventbus.TypeCommand, 3, eventbus.CommandPayload{
		Command: cmd.Kind.String(),
		Name:    cmd.Name + string(cmd.Resource),
		Items:   res.Items,
		Earned:  res.Earned,
		Remote:  c.ClientIP(),
	})
	if err != nil {
		return
	}
	ev.CorrelationID = c.GetString(middleware.TraceIDKey)
	if err := eventbus.Publish(c.Request.Context(), ev); err != nil {
		rs.log.Warn("Не удалось опубликовать команду %s: %v", cmd.Kind, err)
	}
}

// fail отвечает ошибкой с кодом по её виду
func (rs *RestServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		rs.log.Error("Ошибка %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, GenericResponse{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, economy.ErrInsufficient),
		errors.Is(err, economy.ErrMaxLevel),
		errors.Is(err, economy.ErrSummerOnly),
		errors.Is(err, economy.ErrAlreadyUnlocked),
		errors.Is(err, economy.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, economy.ErrUnknownResource),
		errors.Is(err, world.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", world.ErrInvalidArgument, err)
}

type tradeRequest struct {
	Resource string `json:"resource" binding:"required"`
	Amount   int    `json:"amount"`
}

func bindTrade(kind sim.CommandKind) binder {
	return func(c *gin.Context) (sim.Command, error) {
		var req tradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return sim.Command{}, badRequest(err)
		}
		return sim.Command{Kind: kind, Resource: block.Resource(req.Resource), Amount: req.Amount}, nil
	}
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func bindName(kind sim.CommandKind) binder {
	return func(c *gin.Context) (sim.Command, error) {
		var req nameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return sim.Command{}, badRequest(err)
		}
		return sim.Command{Kind: kind, Name: req.Name}, nil
	}
}

func bindEquip(c *gin.Context) (sim.Command, error) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return sim.Command{}, badRequest(err)
	}
	return sim.Command{Kind: sim.CmdEquip, Index: *req.Index}, nil
}

func bindResize(c *gin.Context) (sim.Command, error) {
	var req struct {
		Width  float64 `json:"width" binding:"required"`
		Height float64 `json:"height" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return sim.Command{}, badRequest(err)
	}
	return sim.Command{Kind: sim.CmdResize, Width: req.Width, Height: req.Height}, nil
}

func bindSummer(c *gin.Context) (sim.Command, error) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return sim.Command{}, badRequest(err)
	}
	return sim.Command{Kind: sim.CmdSetSummer, Flag: *req.Active}, nil
}

// handleWorld отдаёт блоки в прямоугольнике; по умолчанию видимую область камеры
func (rs *RestServer) handleWorld(c *gin.Context) {
	snap := rs.game.Snapshot()

	x, errX := queryFloat(c, "x", 0)
	y, errY := queryFloat(c, "y", snap.CameraY)
	w, errW := queryFloat(c, "w", snap.ViewportWidth)
	h, errH := queryFloat(c, "h", snap.ViewportHeight)
	if err := errors.Join(errX, errY, errW, errH); err != nil {
		rs.fail(c, badRequest(err))
		return
	}
	if !(w > 0 && w <= maxRegionWidth && h > 0 && h <= maxRegionHeight) {
		rs.fail(c, badRequest(fmt.Errorf("region %.0fx%.0f exceeds %dx%d", w, h, maxRegionWidth, maxRegionHeight)))
		return
	}
	if math.Abs(x) > maxCoordinate || math.Abs(y) > maxCoordinate {
		rs.fail(c, badRequest(fmt.Errorf("region origin (%.0f, %.0f) out of range", x, y)))
		return
	}

	blocks := snap.QueryRegion(x, y, w, h)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Блоки области",
		Data: gin.H{
			"frame":       snap.Frame,
			"region":      gin.H{"x": x, "y": y, "w": w, "h": h},
			"blocks":      blocks,
			"projectiles": snap.Projectiles,
			"pickaxe":     snap.Pickaxe,
		},
	})
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: not a finite number", key)
	}
	return v, nil
}

// handleStats отдаёт сводку мира и статистику игрока
func (rs *RestServer) handleStats(c *gin.Context) {
	snap := rs.game.Snapshot()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data: gin.H{
			"frame":     snap.Frame,
			"time":      snap.Time,
			"game_over": snap.GameOver,
			"camera_y":  snap.CameraY,
			"world":     snap.World,
			"particles": snap.Particles,
			"player":    snap.Economy.Stats,
		},
	})
}

func (rs *RestServer) handlePickaxe(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Кирка",
		Data:    rs.game.Snapshot().Pickaxe,
	})
}

type enchantmentView struct {
	Name     economy.Enchantment `json:"name"`
	Level    int                 `json:"level"`
	MaxLevel int                 `json:"max_level"`
	NextCost *economy.Cost       `json:"next_cost,omitempty"`
}

type requirementView struct {
	Resource block.Resource `json:"resource"`
	Ingot    bool           `json:"ingot,omitempty"`
	Amount   int            `json:"amount"`
}

type offerView struct {
	Name         string            `json:"name"`
	Price        int               `json:"price"`
	Requirements []requirementView `json:"requirements,omitempty"`
	SummerOnly   bool              `json:"summer_only,omitempty"`
	Unlocked     bool              `json:"unlocked"`
}

// handleEconomy отдаёт прогресс игрока, цены зачарований и магазин кирок
func (rs *RestServer) handleEconomy(c *gin.Context) {
	state := rs.game.Snapshot().Economy

	enchants := make([]enchantmentView, 0, len(economy.AllEnchantments()))
	for _, kind := range economy.AllEnchantments() {
		v := enchantmentView{Name: kind, Level: state.Enchantments.Level(kind), MaxLevel: economy.MaxLevel(kind)}
		if v.Level < v.MaxLevel {
			if cost, err := economy.EnchantmentCost(kind, v.Level); err == nil {
				v.NextCost = &cost
			}
		}
		enchants = append(enchants, v)
	}

	offers := make([]offerView, 0, len(economy.Offers))
	for _, o := range economy.Offers {
		v := offerView{Name: o.Name, Price: o.Price, SummerOnly: o.SummerOnly, Unlocked: state.Unlocks[o.Name]}
		for _, r := range o.Requirements {
			v.Requirements = append(v.Requirements, requirementView{Resource: r.Resource, Ingot: r.Ingot, Amount: r.Amount})
		}
		offers = append(offers, v)
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Экономика",
		Data: gin.H{
			"state":        state,
			"enchantments": enchants,
			"pickaxes":     offers,
		},
	})
}
