package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// BadgerKV хранит профиль в локальной базе BadgerDB
type BadgerKV struct {
	db      *badger.DB
	prefix  []byte
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerKV открывает (или создаёт) базу в каталоге dataPath/profile
func NewBadgerKV(dataPath, prefix string) (*BadgerKV, error) {
	dbPath := filepath.Join(dataPath, "profile")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerKV{
		db:      db,
		prefix:  []byte(prefix),
		isReady: true,
	}, nil
}

func (b *BadgerKV) key(k string) []byte {
	out := make([]byte, 0, len(b.prefix)+len(k))
	out = append(out, b.prefix...)
	return append(out, k...)
}

// Get читает значение ключа
func (b *BadgerKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	if !b.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %q из BadgerDB: %w", key, err)
	}
	return value, nil
}

// Set записывает значение ключа
func (b *BadgerKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	if !b.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(key), value)
	})
	if err != nil {
		return fmt.Errorf("ошибка записи %q в BadgerDB: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ
func (b *BadgerKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	if !b.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
}

// Close закрывает базу
func (b *BadgerKV) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.isReady {
		return nil
	}

	b.isReady = false
	return b.db.Close()
}
