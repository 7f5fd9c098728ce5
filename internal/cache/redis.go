// Package cache реализует клиент redis и примитивы счётчиков попыток
// входа: инкремент с окном, чтение и сброс ключа.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/task-tracker/internal/config"
	"github.com/redis/go-redis/v9"
)

// Cache обертка над клиентом redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Incr увеличивает счётчик и при первом инкременте выставляет окно жизни.
// Возвращает новое значение счётчика.
func (c *Cache) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	const op = "cache.Incr"
	val, err := c.Db.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if val == 1 {
		if err := c.Db.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	return val, nil
}

// Count возвращает текущее значение счётчика, 0 — если ключа нет.
func (c *Cache) Count(ctx context.Context, key string) (int64, error) {
	const op = "cache.Count"
	val, err := c.Db.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}

// TTL возвращает остаток окна для ключа.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	const op = "cache.TTL"
	ttl, err := c.Db.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ttl, nil
}

// Del удаляет ключ.
func (c *Cache) Del(ctx context.Context, key string) error {
	const op = "cache.Del"
	if err := c.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
