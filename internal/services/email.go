package services

import (
	"context"
	"dentalcms/internal/config"
	"dentalcms/internal/logger"
	"dentalcms/internal/utils/helpers"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

type EmailJob struct {
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}

var ErrEmailQueueFull = errors.New("email queue is full")

type EmailService struct {
	auth  smtp.Auth
	from  string
	host  string
	port  string
	queue chan EmailJob
	// send подменяется в тестах
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg *config.Config) *EmailService {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth:  auth,
		from:  cfg.SMTPUser,
		host:  cfg.SMTPHost,
		port:  cfg.SMTPPort,
		queue: make(chan EmailJob, 100), // очередь на 100 писем
		send:  smtp.SendMail,
	}
}

func (s *EmailService) Send(to []string, subject, body string) error {
	return s.deliver(to, subject, "text/plain", body)
}

func (s *EmailService) SendHTML(to []string, subject, body string) error {
	return s.deliver(to, subject, "text/html", body)
}

func (s *EmailService) deliver(to []string, subject, contentType, body string) error {
	if s.host == "" {
		return errors.New("smtp is not configured")
	}
	msg := []byte("To: " + strings.Join(to, ", ") + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: " + contentType + "; charset=\"utf-8\"\r\n\r\n" +
		body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.send(addr, s.auth, s.from, to, msg)
}

// Enqueue ставит письмо в очередь, не блокируя запрос.
func (s *EmailService) Enqueue(job EmailJob) error {
	select {
	case s.queue <- job:
		return nil
	default:
		return ErrEmailQueueFull
	}
}

// SendPasswordReset ставит в очередь письмо со ссылкой на сброс.
func (s *EmailService) SendPasswordReset(_ context.Context, to, resetLink string, ttl time.Duration) error {
	return s.Enqueue(EmailJob{
		To:      []string{to},
		Subject: "Сброс пароля",
		Body:    helpers.BuildPasswordResetHTML(resetLink, ttl),
		IsHTML:  true,
	})
}

// SendPasswordChanged ставит в очередь уведомление о смене пароля.
func (s *EmailService) SendPasswordChanged(_ context.Context, to string, at time.Time) error {
	return s.Enqueue(EmailJob{
		To:      []string{to},
		Subject: "Пароль изменён",
		Body:    helpers.BuildPasswordChangedHTML(at),
		IsHTML:  true,
	})
}

// StartWorkers запускает n воркеров, разбирающих очередь до отмены ctx.
func (s *EmailService) StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go s.worker(ctx)
	}
}

func (s *EmailService) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			var err error
			if job.IsHTML {
				err = s.SendHTML(job.To, job.Subject, job.Body)
			} else {
				err = s.Send(job.To, job.Subject, job.Body)
			}
			if err != nil {
				logger.Log.Error("Не удалось отправить письмо", zap.String("subject", job.Subject), zap.Error(err))
			}
		}
	}
}
