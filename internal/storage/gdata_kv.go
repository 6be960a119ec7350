package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/quasilyte/gdata/v2"
)

// Объект gdata, под которым лежат все ключи профиля
const gdataProfileObject = "profile"

// GdataKV хранит профиль в пользовательском каталоге данных приложения через gdata.
// Аналог localStorage браузера: один файл на ключ.
type GdataKV struct {
	mu      sync.Mutex
	manager *gdata.Manager
}

// NewGdataKV открывает хранилище приложения appName
func NewGdataKV(appName string) (*GdataKV, error) {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata storage: %w", err)
	}
	return &GdataKV{manager: manager}, nil
}

// Get читает значение ключа. Пустое значение считается удалённым.
func (g *GdataKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.manager.ObjectPropExists(gdataProfileObject, key) {
		return nil, ErrNotFound
	}
	data, err := g.manager.LoadObjectProp(gdataProfileObject, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", key, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// Set записывает значение ключа
func (g *GdataKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.manager.SaveObjectProp(gdataProfileObject, key, value); err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

// Delete затирает значение пустым содержимым
func (g *GdataKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.manager.ObjectPropExists(gdataProfileObject, key) {
		return nil
	}
	if err := g.manager.SaveObjectProp(gdataProfileObject, key, nil); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close ничего не делает: gdata не держит открытых дескрипторов
func (g *GdataKV) Close() error { return nil }
