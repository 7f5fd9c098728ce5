package models

import "time"

// AccessToken запись о выданном токене доступа. В базе хранится только
// SHA-256 дайджест, исходное значение возвращается клиенту один раз
// при выдаче и восстановлению не подлежит.
type AccessToken struct {
	ID         int        // Идентификатор записи
	TokenHash  string     // SHA-256 дайджест токена в hex
	UserUID    string     // UUID владельца
	CreatedAt  time.Time  // Время выдачи
	LastUsedAt *time.Time // Время последней успешной проверки (nil — не использовался)
}
