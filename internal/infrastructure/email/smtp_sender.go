package email

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"dvlottery.backend/internal/config"
	"dvlottery.backend/internal/domain/entities"
)

var dialAndSend = func(d *gomail.Dialer, m *gomail.Message) error {
	return d.DialAndSend(m)
}

// SMTPSender delivers mail through an SMTP relay
type SMTPSender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
	d      *gomail.Dialer
}

func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg.SMTPHost == "" || cfg.SMTPPort == 0 || cfg.FromAddress == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}

	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	dialer.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	dialer.SSL = cfg.SMTPUseSSL

	return &SMTPSender{
		cfg:    cfg,
		logger: logger.Named("SMTPSender"),
		d:      dialer,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg entities.EmailMessage) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("no recipient provided for email")
	}
	if msg.HTML == "" {
		return "", fmt.Errorf("email body must be provided")
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.SMTPHost)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/html", msg.HTML)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- dialAndSend(s.d, m)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("Email sending cancelled or timed out",
			zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(ctx.Err()))
		return "", fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.logger.Error("Failed to send email", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
			return "", fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.logger.Info("Email sent successfully", zap.String("to", msg.To), zap.String("messageId", messageID))
	return messageID, nil
}
