package storage

import (
	"context"
	"fmt"

	"github.com/annel0/breaknblocks/internal/logging"
)

// Поддерживаемые бэкенды
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMaria  = "maria"
	BackendMongo  = "mongo"
	BackendGdata  = "gdata"
)

// Config описывает выбор и настройки хранилища профиля
type Config struct {
	Backend  string      `yaml:"backend"`
	DataPath string      `yaml:"data_path"` // Каталог BadgerDB
	Prefix   string      `yaml:"prefix"`    // Префикс ключей BadgerDB
	Redis    RedisConfig `yaml:"redis"`
	MariaDSN string      `yaml:"maria_dsn"`
	Mongo    MongoConfig `yaml:"mongo"`
	AppName  string      `yaml:"app_name"` // Имя приложения для gdata
	Compress bool        `yaml:"compress"` // Сжимать значения zstd
}

// DefaultConfig возвращает хранилище в памяти
func DefaultConfig() Config {
	return Config{
		Backend:  BackendMemory,
		DataPath: "data",
		AppName:  "breaknblocks",
		Redis:    *DefaultRedisConfig(),
	}
}

// Open создаёт хранилище по конфигурации
func Open(ctx context.Context, cfg Config) (KV, error) {
	var (
		kv  KV
		err error
	)

	switch cfg.Backend {
	case "", BackendMemory:
		kv = NewMemoryKV()
	case BackendBadger:
		kv, err = NewBadgerKV(cfg.DataPath, cfg.Prefix)
	case BackendRedis:
		redisCfg := cfg.Redis
		kv, err = NewRedisKV(ctx, &redisCfg)
	case BackendMaria:
		kv, err = NewMariaKV(ctx, cfg.MariaDSN)
	case BackendMongo:
		kv, err = NewMongoKV(ctx, cfg.Mongo)
	case BackendGdata:
		kv, err = NewGdataKV(cfg.AppName)
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранилища: %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть хранилище %s: %w", cfg.Backend, err)
	}

	if cfg.Compress {
		compressed, err := NewCompressedKV(kv)
		if err != nil {
			kv.Close()
			return nil, err
		}
		kv = compressed
	}

	logging.GetStorageLogger().Info("Хранилище профиля: %s (сжатие: %v)", cfg.Backend, cfg.Compress)
	return kv, nil
}
