// Package auth содержит логику бизнес-уровня для регистрации,
// входа, выдачи и отзыва токенов, подтверждения почты и сброса пароля.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/task-tracker/internal/lib/password"
	"github.com/magabrotheeeer/task-tracker/internal/lib/token"
	"github.com/magabrotheeeer/task-tracker/internal/lib/verification"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Ошибки бизнес-уровня. Обработчики сопоставляют их с HTTP-статусами.
var (
	// ErrInvalidCredentials неверная пара адрес-пароль.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTooManyAttempts лимит попыток входа исчерпан.
	ErrTooManyAttempts = errors.New("too many login attempts")
	// ErrEmailNotVerified адрес не подтверждён, вход запрещён.
	ErrEmailNotVerified = errors.New("email is not verified")
	// ErrEmailTaken адрес уже занят.
	ErrEmailTaken = errors.New("email is already taken")
	// ErrUsernameTaken имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrUnknownRole запрошенная роль отсутствует в справочнике.
	ErrUnknownRole = errors.New("unknown role")
	// ErrRoleNotAllowed назначать роли может только администратор.
	ErrRoleNotAllowed = errors.New("only admin can assign roles")
	// ErrUnauthenticated токен не найден или отозван.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidVerificationLink подпись ссылки подтверждения не сходится.
	ErrInvalidVerificationLink = errors.New("invalid verification link")
	// ErrAlreadyVerified адрес уже подтверждён.
	ErrAlreadyVerified = errors.New("email is already verified")
	// ErrInvalidResetToken токен сброса не найден, просрочен или не совпал.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// ThrottledError несёт срок блокировки вместе с ErrTooManyAttempts:
// обработчик входа отдаёт его клиенту в заголовке Retry-After.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%v, retry after %s", ErrTooManyAttempts, e.RetryAfter)
}

func (e *ThrottledError) Unwrap() error { return ErrTooManyAttempts }

// UserRepository контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User, role models.Role) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetEmailVerified(ctx context.Context, userUID string) (bool, error)
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
}

// TokenRepository контракт хранилища токенов доступа.
type TokenRepository interface {
	CreateToken(ctx context.Context, digest, userUID string) error
	FindUserByTokenDigest(ctx context.Context, digest string) (*models.User, error)
	DeleteToken(ctx context.Context, digest string) (int64, error)
	DeleteAllTokensForUser(ctx context.Context, userUID string) (int64, error)
}

// ResetTokenRepository контракт хранилища токенов сброса пароля.
type ResetTokenRepository interface {
	GetResetToken(ctx context.Context, email string) (string, time.Time, error)
	DeleteResetToken(ctx context.Context, email string) error
}

// AttemptLimiter контракт ограничителя попыток входа.
type AttemptLimiter interface {
	TooManyAttempts(ctx context.Context, email, origin string) (bool, time.Duration, error)
	Hit(ctx context.Context, email, origin string) error
	Clear(ctx context.Context, email, origin string) error
}

// MailPublisher контракт публикации почтовых заданий в очередь.
type MailPublisher interface {
	Publish(job models.MailJob) error
}

// Service отвечает за весь жизненный цикл аутентификации.
type Service struct {
	users    UserRepository
	tokens   TokenRepository
	resets   ResetTokenRepository
	limiter  AttemptLimiter
	signer   *verification.Signer
	mail     MailPublisher
	baseURL  string
	resetTTL time.Duration
}

// New создает новый экземпляр Service.
func New(users UserRepository, tokens TokenRepository, resets ResetTokenRepository,
	limiter AttemptLimiter, signer *verification.Signer, mail MailPublisher,
	baseURL string, resetTTL time.Duration) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		resets:   resets,
		limiter:  limiter,
		signer:   signer,
		mail:     mail,
		baseURL:  baseURL,
		resetTTL: resetTTL,
	}
}

// Register создает пользователя с ролью client и отправляет письмо
// подтверждения. Роль из запроса учитывается только если caller —
// администратор; токен при регистрации не выдаётся, сначала
// подтверждение адреса.
func (s *Service) Register(ctx context.Context, username, email, rawPassword, roleName string, caller *models.User) (string, error) {
	const op = "services.auth.Register"
	email = strings.ToLower(email)

	role := models.RoleClient
	if roleName != "" {
		if caller == nil || !caller.HasRole(models.RoleAdmin) {
			return "", ErrRoleNotAllowed
		}
		if !models.KnownRole(roleName) {
			return "", ErrUnknownRole
		}
		role = models.Role(roleName)
	}

	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return "", ErrUsernameTaken
	}
	taken, err = s.users.EmailExists(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return "", ErrEmailTaken
	}

	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UID:          uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user, role); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.publishVerification(user.UID, username, email); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return user.UID, nil
}

// Login проверяет лимит попыток, пароль и подтверждение адреса,
// затем выдаёт новый токен доступа. Заблокированный запрос до проверки
// пароля не доходит и счётчик не накручивает.
func (s *Service) Login(ctx context.Context, email, rawPassword, origin string) (string, error) {
	const op = "services.auth.Login"
	email = strings.ToLower(email)

	blocked, retryAfter, err := s.limiter.TooManyAttempts(ctx, email, origin)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if blocked {
		return "", &ThrottledError{RetryAfter: retryAfter}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if hitErr := s.limiter.Hit(ctx, email, origin); hitErr != nil {
				return "", fmt.Errorf("%s: %w", op, hitErr)
			}
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if hitErr := s.limiter.Hit(ctx, email, origin); hitErr != nil {
			return "", fmt.Errorf("%s: %w", op, hitErr)
		}
		return "", ErrInvalidCredentials
	}

	if !user.Verified() {
		return "", ErrEmailNotVerified
	}

	plaintext, err := s.issueToken(ctx, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.limiter.Clear(ctx, email, origin); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return plaintext, nil
}

// ValidateToken проверяет предъявленный токен и возвращает владельца
// и дайджест токена. Неизвестный или отозванный токен — ErrUnauthenticated.
func (s *Service) ValidateToken(ctx context.Context, plaintext string) (*models.User, string, error) {
	const op = "services.auth.ValidateToken"
	digest := token.Digest(plaintext)

	user, err := s.tokens.FindUserByTokenDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, digest, nil
}

// Logout отзывает ровно предъявленный токен, остальные сессии
// пользователя продолжают жить.
func (s *Service) Logout(ctx context.Context, digest string) error {
	const op = "services.auth.Logout"
	deleted, err := s.tokens.DeleteToken(ctx, digest)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		return ErrUnauthenticated
	}
	return nil
}

// VerifyEmail проверяет подпись ссылки и отмечает адрес подтверждённым.
// Для уже подтверждённого адреса возвращает alreadyVerified без ошибки
// и без изменения состояния. Первое подтверждение выдаёт токен, чтобы
// пользователь сразу оказался в системе.
func (s *Service) VerifyEmail(ctx context.Context, userUID, presentedMAC string) (alreadyVerified bool, accessToken string, err error) {
	const op = "services.auth.VerifyEmail"

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, "", ErrInvalidVerificationLink
		}
		return false, "", fmt.Errorf("%s: %w", op, err)
	}

	if !s.signer.Verify(user.UID, user.Email, presentedMAC) {
		return false, "", ErrInvalidVerificationLink
	}

	first, err := s.users.SetEmailVerified(ctx, user.UID)
	if err != nil {
		return false, "", fmt.Errorf("%s: %w", op, err)
	}
	if !first {
		return true, "", nil
	}

	plaintext, err := s.issueToken(ctx, user.UID)
	if err != nil {
		return false, "", fmt.Errorf("%s: %w", op, err)
	}
	return false, plaintext, nil
}

// ResendVerification повторно публикует письмо подтверждения.
func (s *Service) ResendVerification(ctx context.Context, user *models.User) error {
	const op = "services.auth.ResendVerification"
	if user.Verified() {
		return ErrAlreadyVerified
	}
	if err := s.publishVerification(user.UID, user.Username, user.Email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RequestPasswordReset публикует задание на сброс пароля. Ответ всегда
// одинаков: существование адреса не раскрывается ни текстом, ни
// временем ответа — поиск пользователя делает воркер.
func (s *Service) RequestPasswordReset(_ context.Context, email string) error {
	const op = "services.auth.RequestPasswordReset"
	job := models.MailJob{
		ID:    uuid.NewString(),
		Kind:  models.MailKindReset,
		Email: strings.ToLower(email),
	}
	if err := s.mail.Publish(job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPassword проверяет токен сброса, меняет пароль и отзывает все
// токены доступа пользователя: ни одна старая сессия не переживает сброс.
func (s *Service) ResetPassword(ctx context.Context, email, plainToken, newPassword string) error {
	const op = "services.auth.ResetPassword"
	email = strings.ToLower(email)

	digest, createdAt, err := s.resets.GetResetToken(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if time.Since(createdAt) > s.resetTTL {
		if err := s.resets.DeleteResetToken(ctx, email); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return ErrInvalidResetToken
	}
	if !token.Equal(token.Digest(plainToken), digest) {
		return ErrInvalidResetToken
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, user.UID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.resets.DeleteResetToken(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.tokens.DeleteAllTokensForUser(ctx, user.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangePassword проверяет текущий пароль, ставит новый хэш и отзывает
// все токены пользователя, включая предъявленный: клиент входит заново.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	const op = "services.auth.ChangePassword"

	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, user.UID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.tokens.DeleteAllTokensForUser(ctx, user.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) issueToken(ctx context.Context, userUID string) (string, error) {
	plaintext, err := token.New()
	if err != nil {
		return "", err
	}
	if err := s.tokens.CreateToken(ctx, token.Digest(plaintext), userUID); err != nil {
		return "", err
	}
	return plaintext, nil
}

func (s *Service) publishVerification(userUID, username, email string) error {
	return s.mail.Publish(models.MailJob{
		ID:       uuid.NewString(),
		Kind:     models.MailKindVerify,
		Email:    email,
		Username: username,
		Link:     s.signer.Link(s.baseURL, userUID, email),
	})
}
