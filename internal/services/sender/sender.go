// Package sender обрабатывает почтовые задания из очереди: собирает
// письма подтверждения адреса и сброса пароля и отправляет их по SMTP.
package sender

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/task-tracker/internal/lib/token"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// UserFinder контракт поиска пользователя по адресу.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ResetTokenWriter контракт сохранения дайджеста токена сброса.
type ResetTokenWriter interface {
	UpsertResetToken(ctx context.Context, email, digest string) error
}

// Service воркер отправки писем.
type Service struct {
	transport smtp.TransportInterface
	users     UserFinder
	resets    ResetTokenWriter
	log       *slog.Logger
	baseURL   string
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, users UserFinder, resets ResetTokenWriter,
	log *slog.Logger, baseURL string) *Service {
	return &Service{
		transport: transport,
		users:     users,
		resets:    resets,
		log:       log,
		baseURL:   baseURL,
	}
}

// HandleMailJob обрабатывает одно задание из очереди. Контекст приходит
// от потребителя: при остановке воркера обращения к базе прерываются.
func (s *Service) HandleMailJob(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleMailJob"
	var job models.MailJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal mail job", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	switch job.Kind {
	case models.MailKindVerify:
		return s.sendVerification(job)
	case models.MailKindReset:
		return s.sendPasswordReset(ctx, job)
	default:
		// Неизвестный вид письма подтверждаем без отправки, иначе
		// сообщение будет вечно крутиться в очереди.
		s.log.Error("unknown mail job kind", slog.String("kind", job.Kind), slog.String("job_id", job.ID))
		return nil
	}
}

func (s *Service) sendVerification(job models.MailJob) error {
	subject := "Подтверждение адреса на Task-tracker"
	bodyText := fmt.Sprintf(`Здравствуйте, %s!

Чтобы подтвердить адрес и активировать учётную запись, перейдите по ссылке: %s

Если вы не регистрировались на Task-tracker, просто проигнорируйте это письмо.`,
		job.Username, job.Link)

	return s.sendEmail([]string{job.Email}, subject, bodyText)
}

// sendPasswordReset сам ищет пользователя: API отвечает на запрос сброса
// одинаково для любого адреса, письма для несуществующих адресов просто
// не отправляются.
func (s *Service) sendPasswordReset(ctx context.Context, job models.MailJob) error {
	const op = "services.sender.sendPasswordReset"

	user, err := s.users.GetUserByEmail(ctx, job.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Info("password reset requested for unknown email, dropping job",
				slog.String("job_id", job.ID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	plaintext, err := token.New()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.resets.UpsertResetToken(ctx, job.Email, token.Digest(plaintext)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s",
		s.baseURL, url.QueryEscape(job.Email), plaintext)
	subject := "Сброс пароля на Task-tracker"
	bodyText := fmt.Sprintf(`Здравствуйте, %s!

Для вашей учётной записи запрошен сброс пароля. Чтобы задать новый пароль, перейдите по ссылке: %s

Ссылка действует один час. Если вы не запрашивали сброс, проигнорируйте это письмо.`,
		user.Username, link)

	return s.sendEmail([]string{job.Email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
