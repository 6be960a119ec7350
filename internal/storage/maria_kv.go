package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaKV реализует KV поверх таблицы profile_kv в MariaDB/MySQL
type MariaKV struct {
	db *sql.DB
}

// NewMariaKV подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaKV(ctx context.Context, dsn string) (*MariaKV, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaKV{db: db}
	if err := repo.createTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}

	return repo, nil
}

func (r *MariaKV) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS profile_kv (
			k          VARCHAR(128) PRIMARY KEY,
			v          MEDIUMBLOB   NOT NULL,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы profile_kv: %w", err)
	}
	return nil
}

// Get читает значение ключа
func (r *MariaKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT v FROM profile_kv WHERE k = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %q: %w", key, err)
	}
	return value, nil
}

// Set записывает значение через INSERT ... ON DUPLICATE KEY UPDATE
func (r *MariaKV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO profile_kv (k, v) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v)
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("ошибка записи %q: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ
func (r *MariaKV) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profile_kv WHERE k = ?`, key); err != nil {
		return fmt.Errorf("ошибка удаления %q: %w", key, err)
	}
	return nil
}

// Close закрывает соединение с базой
func (r *MariaKV) Close() error {
	return r.db.Close()
}
