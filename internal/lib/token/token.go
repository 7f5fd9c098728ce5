// Package token реализует генерацию непрозрачных токенов доступа
// и вычисление их дайджеста для хранения.
//
// Исходное значение токена выдаётся клиенту один раз, в базе хранится
// только SHA-256 дайджест: утечка таблицы токенов не даёт рабочих сессий.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const rawLen = 32 // 256 бит энтропии

// New возвращает новый токен: 32 случайных байта в base64url без паддинга.
func New() (string, error) {
	const op = "token.New"
	buf := make([]byte, rawLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Digest возвращает hex-представление SHA-256 от исходного токена.
// Именно это значение хранится в базе и используется для поиска.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Equal сравнивает два дайджеста за постоянное время.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
