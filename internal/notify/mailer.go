package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"storefront-system/internal/config"
	"storefront-system/internal/logger"
)

// Mailer отправляет транзакционные письма.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
	Close() error
}

// SMTPMailer — почтовый клиент поверх net/smtp. Создается явно и
// передается зависимостью, без глобального состояния.
type SMTPMailer struct {
	cfg  *config.SMTPConfig
	log  *logger.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer создает почтовый клиент по конфигурации.
func NewSMTPMailer(cfg *config.SMTPConfig, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:  cfg,
		log:  log,
		send: smtp.SendMail,
	}
}

// Send отправляет HTML-письмо. Возвращает ошибку, если SMTP не настроен.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	if err := m.send(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.log.WithField("to", to).Info("Email sent")
	return nil
}

// Close завершает работу клиента. net/smtp не держит соединений,
// метод существует ради явного жизненного цикла зависимости.
func (m *SMTPMailer) Close() error {
	return nil
}
