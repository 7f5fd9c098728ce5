// Package ratelimit реализует ограничение попыток входа по ключу
// адрес+источник. Счётчики живут во внешнем хранилище за интерфейсом
// Counter, чтобы лимит работал на несколько экземпляров сервиса
// и подменялся в тестах.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const keyPrefix = "login_attempts:"

// Counter контракт хранилища счётчиков: инкремент с окном жизни,
// чтение, остаток окна и сброс.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Del(ctx context.Context, key string) error
}

// Limiter ограничитель попыток входа. Блокировка действует на пару
// (адрес, источник), а не на учётную запись: злоумышленник не может
// запереть чужой аккаунт.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
}

// New создает Limiter с порогом limit попыток в окне window.
func New(counter Counter, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
	}
}

// Key собирает ключ счётчика из адреса в нижнем регистре и источника.
func Key(email, origin string) string {
	return keyPrefix + strings.ToLower(email) + ":" + origin
}

// TooManyAttempts сообщает, исчерпан ли лимит для ключа, и остаток окна
// блокировки. Заблокированный запрос новый счётчик не накручивает.
func (l *Limiter) TooManyAttempts(ctx context.Context, email, origin string) (bool, time.Duration, error) {
	const op = "ratelimit.TooManyAttempts"
	key := Key(email, origin)

	count, err := l.counter.Count(ctx, key)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	if count < l.limit {
		return false, 0, nil
	}

	ttl, err := l.counter.TTL(ctx, key)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	return true, ttl, nil
}

// Hit фиксирует неудачную попытку входа.
func (l *Limiter) Hit(ctx context.Context, email, origin string) error {
	const op = "ratelimit.Hit"
	if _, err := l.counter.Incr(ctx, Key(email, origin), l.window); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear сбрасывает счётчик после успешного входа.
func (l *Limiter) Clear(ctx context.Context, email, origin string) error {
	const op = "ratelimit.Clear"
	if err := l.counter.Del(ctx, Key(email, origin)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
