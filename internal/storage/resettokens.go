package storage

import (
	"context"
	"fmt"
	"time"
)

// UpsertResetToken сохраняет дайджест токена сброса для адреса.
// На адрес действует не больше одного токена: повторный запрос
// замещает предыдущий.
func (s *Storage) UpsertResetToken(ctx context.Context, email, digest string) error {
	const op = "storage.UpsertResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO password_reset_tokens (email, token_hash, created_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (email)
			  DO UPDATE SET token_hash = EXCLUDED.token_hash, created_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query, email, digest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetResetToken возвращает дайджест и время создания токена сброса.
func (s *Storage) GetResetToken(ctx context.Context, email string) (string, time.Time, error) {
	const op = "storage.GetResetToken"
	select {
	case <-ctx.Done():
		return "", time.Time{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token_hash, created_at FROM password_reset_tokens WHERE email = $1`
	var digest string
	var createdAt time.Time
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(&digest, &createdAt); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return digest, createdAt, nil
}

// DeleteResetToken удаляет токен сброса: использованный или просроченный
// токен второй раз не срабатывает.
func (s *Storage) DeleteResetToken(ctx context.Context, email string) error {
	const op = "storage.DeleteResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE email = $1`, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
