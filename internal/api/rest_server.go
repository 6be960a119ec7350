package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/breaknblocks/internal/auth"
	"github.com/annel0/breaknblocks/internal/logging"
	"github.com/annel0/breaknblocks/internal/metrics"
	"github.com/annel0/breaknblocks/internal/middleware"
	"github.com/annel0/breaknblocks/internal/sim"
)

// Version - версия API в /api/server
const Version = "v1.0.0"

// Commander принимает команды для цикла симуляции и отдаёт последний снимок
type Commander interface {
	Submit(ctx context.Context, cmd sim.Command) (sim.Result, error)
	Snapshot() *sim.Snapshot
}

// RestServer представляет REST API сервер
type RestServer struct {
	router   *gin.Engine
	server   *http.Server
	game     Commander
	userRepo auth.UserRepository
	tokens   *auth.TokenIssuer
	process  *metrics.ProcessCollector
	started  time.Time
	log      *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Addr     string                    // Адрес, например ":8088"
	Game     Commander                 // Цикл симуляции
	UserRepo auth.UserRepository       // Операторы для /api/auth/login
	Tokens   *auth.TokenIssuer         // Подпись токенов; nil отключает админские маршруты
	Registry *prometheus.Registry      // Реестр метрик HTTP и /metrics
	Process  *metrics.ProcessCollector // Необязательно, для /api/server
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(cfg Config) (*RestServer, error) {
	if cfg.Game == nil {
		return nil, errors.New("rest server requires a game")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8088"
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	router := gin.New() // без стандартного logger/recovery
	router.Use(gin.Recovery())
	router.Use(middleware.NewRequestLogger().Handler())
	router.Use(otelgin.Middleware("rest_api"))

	promMw, err := middleware.NewPrometheusMiddleware("rest_api", cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, cfg.Registry)

	rs := &RestServer{
		router:   router,
		game:     cfg.Game,
		userRepo: cfg.UserRepo,
		tokens:   cfg.Tokens,
		process:  cfg.Process,
		started:  time.Now(),
		log:      logging.GetAPILogger(),
	}
	rs.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.setupRoutes()
	return rs, nil
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler { return rs.router }

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	api.GET("/server", rs.handleServerInfo)
	api.GET("/world", rs.handleWorld)
	api.GET("/stats", rs.handleStats)
	api.GET("/economy", rs.handleEconomy)
	api.GET("/pickaxe", rs.handlePickaxe)

	api.POST("/pickaxe/drop", rs.command(func(*gin.Context) (sim.Command, error) {
		return sim.Command{Kind: sim.CmdDrop}, nil
	}))
	api.POST("/pickaxe/next", rs.command(func(*gin.Context) (sim.Command, error) {
		return sim.Command{Kind: sim.CmdNextVariant}, nil
	}))
	api.POST("/pickaxe/equip", rs.command(bindEquip))
	api.POST("/reset", rs.command(func(*gin.Context) (sim.Command, error) {
		return sim.Command{Kind: sim.CmdReset}, nil
	}))
	api.POST("/resize", rs.command(bindResize))

	economy := api.Group("/economy")
	{
		economy.POST("/sell", rs.command(bindTrade(sim.CmdSell)))
		economy.POST("/sell-all", rs.command(func(*gin.Context) (sim.Command, error) {
			return sim.Command{Kind: sim.CmdSellAll}, nil
		}))
		economy.POST("/smelt", rs.command(bindTrade(sim.CmdSmelt)))
		economy.POST("/smelt-all", rs.command(bindTrade(sim.CmdSmeltAll)))
		economy.POST("/sell-smelted", rs.command(bindTrade(sim.CmdSellSmelted)))
		economy.POST("/enchant", rs.command(bindName(sim.CmdEnchant)))
		economy.POST("/buy-pickaxe", rs.command(bindName(sim.CmdBuyPickaxe)))
	}

	api.POST("/auth/login", rs.handleLogin)

	if rs.tokens != nil {
		admin := api.Group("/admin")
		admin.Use(rs.jwtMiddleware(), rs.adminMiddleware())
		{
			admin.POST("/reset-progress", rs.command(func(*gin.Context) (sim.Command, error) {
				return sim.Command{Kind: sim.CmdResetProgress}, nil
			}))
			admin.POST("/summer", rs.command(bindSummer))
			admin.POST("/save", rs.command(func(*gin.Context) (sim.Command, error) {
				return sim.Command{Kind: sim.CmdSave}, nil
			}))
		}
	}
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse представляет ответ на вход
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
	UserID  uint64 `json:"user_id,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

// handleLogin выдаёт токен оператору
func (rs *RestServer) handleLogin(c *gin.Context) {
	if rs.tokens == nil || rs.userRepo == nil {
		c.JSON(http.StatusNotFound, LoginResponse{Message: "Авторизация отключена"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{Message: "Неверный формат запроса"})
		return
	}

	user, err := rs.userRepo.ValidateCredentials(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, LoginResponse{Message: "Неверное имя пользователя или пароль"})
		return
	}
	if err != nil {
		rs.log.Error("Ошибка проверки пользователя %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, LoginResponse{Message: "Внутренняя ошибка сервера"})
		return
	}

	token, err := rs.tokens.Generate(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, LoginResponse{Message: "Ошибка генерации токена"})
		return
	}

	rs.log.Info("Оператор %s вошёл", user.Username)
	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		Message: "Успешная авторизация",
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	snap := rs.game.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
		"frame":  snap.Frame,
	})
}

// handleServerInfo возвращает информацию о процессе
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	info := map[string]interface{}{
		"version":    Version,
		"name":       "Break'n'Blocks",
		"status":     "running",
		"uptime":     metrics.FormatUptime(time.Since(rs.started)),
		"memory_mb":  fmt.Sprintf("%.1f", float64(ms.Alloc)/1024/1024),
		"goroutines": runtime.NumGoroutine(),
	}
	if rs.process != nil {
		if pct, err := rs.process.CPUPercent(); err == nil {
			info["cpu_percent"] = fmt.Sprintf("%.1f", pct)
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

// Start запускает REST сервер и блокируется до остановки
func (rs *RestServer) Start() error {
	rs.log.Info("REST API слушает %s", rs.server.Addr)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop завершает сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}
