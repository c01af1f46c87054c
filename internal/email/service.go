package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/config"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name, tempPassword string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewService(cfg config.EmailConfig, logger *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name, tempPassword string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour clinic account has been created.\nTemporary password: %s\n\nPlease change it after your first login.",
		name, tempPassword,
	)
	return s.send(ctx, to, "Welcome to the clinic", body)
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset token: %s\n\nThe token expires in one hour. If you did not request this, ignore this email.",
		token,
	)
	return s.send(ctx, to, "Password reset", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}
