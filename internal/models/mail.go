package models

// Виды почтовых заданий.
const (
	// MailKindVerify письмо со ссылкой подтверждения адреса.
	MailKindVerify = "verify"
	// MailKindReset письмо со ссылкой сброса пароля.
	MailKindReset = "reset"
)

// MailJob задание на отправку письма, публикуется API в очередь
// и обрабатывается воркером отправки. Для заданий сброса пароля
// воркер сам ищет пользователя и генерирует токен, поэтому Link
// и Username могут быть пустыми.
type MailJob struct {
	ID       string `json:"id"`                 // UUID задания
	Kind     string `json:"kind"`               // Вид письма: verify или reset
	Email    string `json:"email"`              // Адрес получателя
	Username string `json:"username,omitempty"` // Имя получателя для текста письма
	Link     string `json:"link,omitempty"`     // Готовая ссылка (для verify)
}
