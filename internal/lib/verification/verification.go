// Package verification реализует подпись и проверку ссылок подтверждения
// почтового адреса.
//
// Подпись — HMAC-SHA256 от пары uid|email на выделенном секрете:
// ссылку нельзя подделать, зная только адрес, а смена адреса делает
// старые ссылки недействительными.
package verification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer подписывает и проверяет ссылки подтверждения.
type Signer struct {
	secret []byte
}

// NewSigner создает Signer с заданным секретом.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign возвращает hex HMAC-SHA256 для пары uid и email.
func (s *Signer) Sign(userUID, email string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(userUID + "|" + email))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify проверяет предъявленную подпись за постоянное время.
func (s *Signer) Verify(userUID, email, presented string) bool {
	expected := s.Sign(userUID, email)
	return hmac.Equal([]byte(expected), []byte(presented))
}

// Link собирает полную ссылку подтверждения для письма.
func (s *Signer) Link(baseURL, userUID, email string) string {
	return fmt.Sprintf("%s/api/v1/email/verify/%s/%s", baseURL, userUID, s.Sign(userUID, email))
}
