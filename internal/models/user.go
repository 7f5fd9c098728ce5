// Package models содержит доменные структуры: пользователи, роли,
// токены доступа и задания на отправку писем.
package models

import (
	"slices"
	"time"
)

// Role типизированная роль пользователя. Фиксированный набор значений,
// любая проверка доступа идёт через сравнение с этими константами,
// строковые срезы в обработчиках запрещены.
type Role string

const (
	// RoleAdmin роль администратора.
	RoleAdmin Role = "admin"
	// RoleDeveloper роль разработчика.
	RoleDeveloper Role = "developer"
	// RoleClient роль клиента, выдаётся по умолчанию при регистрации.
	RoleClient Role = "client"
)

// KnownRole сообщает, входит ли имя в фиксированный набор ролей.
func KnownRole(name string) bool {
	switch Role(name) {
	case RoleAdmin, RoleDeveloper, RoleClient:
		return true
	}
	return false
}

// User представляет пользователя сервиса. PasswordHash хранит только
// bcrypt-хэш, исходный пароль нигде не сохраняется и не логируется.
// EmailVerifiedAt равен nil, пока адрес не подтверждён; после установки
// значение больше не сбрасывается.
type User struct {
	UID             string     // UUID пользователя
	Username        string     // Уникальное имя пользователя
	Email           string     // Уникальный адрес, хранится в нижнем регистре
	PasswordHash    string     // bcrypt-хэш пароля
	EmailVerifiedAt *time.Time // Время подтверждения адреса (nil — не подтверждён)
	CreatedAt       time.Time  // Время создания записи
	Roles           []Role     // Назначенные роли, всегда не пусто
}

// HasRole сообщает, назначена ли пользователю роль.
func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}

// Verified сообщает, подтверждён ли адрес пользователя.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// RoleEntry строка справочника ролей.
type RoleEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
