package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// CreateToken сохраняет дайджест выданного токена доступа.
// Уникальный индекс по token_hash исключает коллизии дайджестов.
func (s *Storage) CreateToken(ctx context.Context, digest, userUID string) error {
	const op = "storage.CreateToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO access_tokens (token_hash, user_uid)
			  VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, digest, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindUserByTokenDigest ищет живой токен по дайджесту и возвращает его
// владельца с ролями. Обновляет время последнего использования.
// Отозванный токен найден не будет: отзыв — удаление строки.
func (s *Storage) FindUserByTokenDigest(ctx context.Context, digest string) (*models.User, error) {
	const op = "storage.FindUserByTokenDigest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE access_tokens
		      SET last_used_at = NOW()
			  WHERE token_hash = $1
			  RETURNING user_uid`
	var userUID string
	if err := s.DB.QueryRowContext(ctx, query, digest).Scan(&userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// DeleteToken отзывает один токен по дайджесту. Возвращает количество
// удалённых строк.
func (s *Storage) DeleteToken(ctx context.Context, digest string) (int64, error) {
	const op = "storage.DeleteToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM access_tokens WHERE token_hash = $1`, digest)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// DeleteAllTokensForUser отзывает все токены пользователя. Используется
// при смене и сбросе пароля: ни одна выданная ранее сессия не переживает
// смену пароля.
func (s *Storage) DeleteAllTokensForUser(ctx context.Context, userUID string) (int64, error) {
	const op = "storage.DeleteAllTokensForUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM access_tokens WHERE user_uid = $1`, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// ListTokensForUser возвращает записи о токенах пользователя без самих
// значений: хранится только дайджест.
func (s *Storage) ListTokensForUser(ctx context.Context, userUID string) ([]*models.AccessToken, error) {
	const op = "storage.ListTokensForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, token_hash, user_uid, created_at, last_used_at
			  FROM access_tokens
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AccessToken
	for rows.Next() {
		var item models.AccessToken
		var lastUsed sql.NullTime
		if err := rows.Scan(&item.ID, &item.TokenHash, &item.UserUID,
			&item.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if lastUsed.Valid {
			item.LastUsedAt = &lastUsed.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
