package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/breaknblocks/internal/api"
	"github.com/annel0/breaknblocks/internal/auth"
	"github.com/annel0/breaknblocks/internal/config"
	"github.com/annel0/breaknblocks/internal/economy"
	"github.com/annel0/breaknblocks/internal/eventbus"
	"github.com/annel0/breaknblocks/internal/logging"
	"github.com/annel0/breaknblocks/internal/metrics"
	"github.com/annel0/breaknblocks/internal/observability"
	"github.com/annel0/breaknblocks/internal/sim"
	"github.com/annel0/breaknblocks/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или BREAKNBLOCKS_CONFIG)")
	hashPassword := flag.Bool("hash-password", false, "прочитать пароль из stdin и напечатать bcrypt-хеш для auth.admins")
	flag.Parse()

	if *hashPassword {
		if err := printPasswordHash(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Ошибка хеширования пароля: %v", err)
		}
		return
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()
	logging.SetDefaultLevel(logging.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("Сервер остановлен с ошибкой: %v", err)
		os.Exit(1)
	}
	logging.Info("Сервер успешно остановлен")
}

func run(parent context.Context, cfg *config.Config) error {
	logging.Info("Запуск Break'n'Blocks")

	ctx, cancelRun := context.WithCancel(parent)
	defer cancelRun()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, "breaknblocks", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	bus, err := openBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()
	eventbus.Init(bus)
	if err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		return fmt.Errorf("logging listener: %w", err)
	}

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	process, err := metrics.NewProcessCollector()
	if err != nil {
		logging.Warn("Метрики процесса недоступны: %v", err)
	} else {
		reg.MustRegister(process)
	}
	simMetrics, err := metrics.NewSimMetrics(reg)
	if err != nil {
		return fmt.Errorf("sim metrics: %w", err)
	}
	busMetrics, err := eventbus.NewMetricsExporter(bus, reg, time.Second)
	if err != nil {
		return fmt.Errorf("eventbus metrics: %w", err)
	}
	busMetrics.Start()
	defer busMetrics.Stop()

	// === ИГРА ===
	simCfg := cfg.SimConfig()
	rng := rand.New(rand.NewSource(simCfg.Seed))

	econ, err := economy.New(store, rng)
	if err != nil {
		return err
	}
	if err := econ.Load(ctx); err != nil {
		return err
	}
	if cfg.Game.SummerEvent != nil {
		econ.SetSummerEvent(*cfg.Game.SummerEvent)
	}

	game, err := sim.NewGame(simCfg, econ, rng)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	game.SetObserver(simMetrics)
	game.World().AddListener(simMetrics)

	publisher := eventbus.NewDestructionPublisher(bus, 256)
	game.World().AddListener(publisher)
	go publisher.Run(ctx)

	runner := sim.NewRunner(game, cfg.FrameInterval(), cfg.Game.CommandQueue)
	go func() {
		if err := runner.Run(ctx); err != nil {
			logging.Error("Цикл симуляции: %v", err)
		}
	}()

	// === REST API ===
	users, tokens, err := setupAuth(cfg.Auth)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	rest, err := api.NewRestServer(api.Config{
		Addr:     fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Game:     runner,
		UserRepo: users,
		Tokens:   tokens,
		Registry: reg,
		Process:  process,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() { errCh <- rest.Start() }()
	go func() { errCh <- metrics.Serve(ctx, fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), reg) }()

	logging.Info("Все сервисы запущены: REST :%d, metrics :%d", cfg.Server.GetRESTPort(), cfg.Server.GetMetricsPort())

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("Получен сигнал завершения")
	case runErr = <-errCh:
		logging.Error("HTTP сервер остановлен: %v", runErr)
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки REST API: %v", err)
	}

	// Цикл сохраняет прогресс перед выходом
	cancelRun()
	<-runner.Done()
	return runErr
}

func openBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.Backend != config.EventBusJetStream {
		return eventbus.NewMemoryBus(cfg.Capacity), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	logging.Info("Шина событий: JetStream %s", cfg.URL)
	return bus, nil
}

// setupAuth создаёт операторов из конфигурации. Без операторов админские маршруты выключены.
func setupAuth(cfg config.AuthConfig) (auth.UserRepository, *auth.TokenIssuer, error) {
	repo := auth.NewMemoryUserRepo()
	if len(cfg.Admins) == 0 {
		logging.Info("Операторы не заданы, админские маршруты отключены")
		return repo, nil, nil
	}

	for _, a := range cfg.Admins {
		if _, err := repo.CreateUser(a.Username, a.PasswordHash, true); err != nil {
			return nil, nil, fmt.Errorf("admin %s: %w", a.Username, err)
		}
	}

	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := auth.GenerateSecureSecret()
		if err != nil {
			return nil, nil, err
		}
		secret = generated
		logging.Warn("jwt_secret не задан, токены не переживут перезапуск")
	}
	tokens, err := auth.NewTokenIssuerFromBase64(secret, cfg.TokenTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("jwt: %w", err)
	}
	return repo, tokens, nil
}

// printPasswordHash читает первую строку из r и печатает её bcrypt-хеш
func printPasswordHash(r io.Reader, w io.Writer) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}
