package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/breaknblocks/internal/observability"
	"github.com/annel0/breaknblocks/internal/sim"
	"github.com/annel0/breaknblocks/internal/storage"
	"github.com/annel0/breaknblocks/internal/world"
)

// EnvConfigPath - переменная окружения с путём к файлу конфигурации
const EnvConfigPath = "BREAKNBLOCKS_CONFIG"

// Config корневая структура конфигурации приложения.
type Config struct {
	World     world.GeneratorConfig `yaml:"world"`
	Loop      sim.LoopConfig        `yaml:"loop"`
	Game      GameConfig            `yaml:"game"`
	Storage   storage.Config        `yaml:"storage"`
	EventBus  EventBusConfig        `yaml:"eventbus"`
	Server    ServerConfig          `yaml:"server"`
	Auth      AuthConfig            `yaml:"auth"`
	Telemetry observability.Config  `yaml:"telemetry"`
	Logging   LoggingConfig         `yaml:"logging"`
}

// GameConfig - параметры игры вне генератора и цикла
type GameConfig struct {
	ViewportWidth    float64 `yaml:"viewport_width"`
	ViewportHeight   float64 `yaml:"viewport_height"`
	AutoSaveInterval float64 `yaml:"auto_save_interval"`
	StatsSaveChance  float64 `yaml:"stats_save_chance"`
	Seed             int64   `yaml:"seed"`       // 0 = от текущего времени
	FrameRate        int     `yaml:"frame_rate"` // Кадров в секунду у Runner
	CommandQueue     int     `yaml:"command_queue"`
	SummerEvent      *bool   `yaml:"summer_event"` // Если задано, переопределяет сохранённый флаг
}

// Поддерживаемые шины событий
const (
	EventBusMemory    = "memory"
	EventBusJetStream = "jetstream"
)

type EventBusConfig struct {
	Backend   string `yaml:"backend"`
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Capacity  int    `yaml:"capacity"` // Буфер in-memory шины
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// AdminAccount - учётная запись оператора с bcrypt-хэшем пароля
type AdminAccount struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

type AuthConfig struct {
	JWTSecret     string         `yaml:"jwt_secret"` // base64, не меньше 32 байт
	TokenTTLHours int            `yaml:"token_ttl_hours"`
	Admins        []AdminAccount `yaml:"admins"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	game := sim.DefaultConfig()
	return &Config{
		World: game.World,
		Loop:  game.Loop,
		Game: GameConfig{
			ViewportWidth:    game.ViewportWidth,
			ViewportHeight:   game.ViewportHeight,
			AutoSaveInterval: game.AutoSaveInterval,
			StatsSaveChance:  game.StatsSaveChance,
			FrameRate:        60,
			CommandQueue:     64,
		},
		Storage: storage.DefaultConfig(),
		EventBus: EventBusConfig{
			Backend:   EventBusMemory,
			URL:       "nats://127.0.0.1:4222",
			Retention: 24,
			Capacity:  1024,
		},
		Auth:      AuthConfig{TokenTTLHours: 24},
		Telemetry: observability.DefaultConfig(),
		Logging:   LoggingConfig{Level: "INFO", Dir: "logs"},
	}
}

// SimConfig собирает параметры игры для sim.NewGame
func (c *Config) SimConfig() sim.Config {
	seed := c.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return sim.Config{
		World:            c.World,
		Loop:             c.Loop,
		ViewportWidth:    c.Game.ViewportWidth,
		ViewportHeight:   c.Game.ViewportHeight,
		AutoSaveInterval: c.Game.AutoSaveInterval,
		StatsSaveChance:  c.Game.StatsSaveChance,
		Seed:             seed,
	}
}

// FrameInterval возвращает период кадра Runner
func (c *Config) FrameInterval() time.Duration {
	if c.Game.FrameRate <= 0 {
		return sim.DefaultFrameInterval
	}
	return time.Second / time.Duration(c.Game.FrameRate)
}

// TokenTTL возвращает срок жизни токена оператора
func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// Validate проверяет значения, которые нельзя исправить молча
func (c *Config) Validate() error {
	if err := c.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if c.Game.ViewportWidth <= 0 || c.Game.ViewportHeight <= 0 {
		return fmt.Errorf("game: viewport %.0fx%.0f", c.Game.ViewportWidth, c.Game.ViewportHeight)
	}
	switch c.EventBus.Backend {
	case "", EventBusMemory, EventBusJetStream:
	default:
		return fmt.Errorf("eventbus: unknown backend %q", c.EventBus.Backend)
	}
	return nil
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "BNB_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "BNB_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берёт путь из BREAKNBLOCKS_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return nil, nil // конфиг не задан, используются значения по умолчанию
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault возвращает загруженную конфигурацию или значения по умолчанию
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return Default(), nil
	}
	return cfg, nil
}
