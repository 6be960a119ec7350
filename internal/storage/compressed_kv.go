package storage

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressedKV сжимает значения zstd перед записью во вложенное хранилище
type CompressedKV struct {
	inner        KV
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

// NewCompressedKV оборачивает inner
func NewCompressedKV(inner KV) (*CompressedKV, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &CompressedKV{inner: inner, compressor: enc, decompressor: dec}, nil
}

// Get читает и распаковывает значение
func (c *CompressedKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	out, err := c.decompressor.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %q: %w", key, err)
	}
	return out, nil
}

// Set сжимает и записывает значение
func (c *CompressedKV) Set(ctx context.Context, key string, value []byte) error {
	return c.inner.Set(ctx, key, c.compressor.EncodeAll(value, nil))
}

// Delete удаляет ключ во вложенном хранилище
func (c *CompressedKV) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Close закрывает кодеки и вложенное хранилище
func (c *CompressedKV) Close() error {
	c.compressor.Close()
	c.decompressor.Close()
	return c.inner.Close()
}
