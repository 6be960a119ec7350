package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище
var ErrNotFound = errors.New("storage: key not found")

// KV определяет простое хранилище ключ-значение для профиля игрока.
// Значения - непрозрачные байты, формат выбирает вызывающая сторона.
type KV interface {
	// Get возвращает значение ключа или ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set записывает значение, перезаписывая предыдущее
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет ключ. Удаление отсутствующего ключа не ошибка.
	Delete(ctx context.Context, key string) error

	// Close освобождает ресурсы хранилища
	Close() error
}
