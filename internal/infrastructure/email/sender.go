package email

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dvlottery.backend/internal/config"
	"dvlottery.backend/internal/domain/entities"
)

// Sender delivers one email and returns the transport's delivery id
type Sender interface {
	Send(ctx context.Context, msg entities.EmailMessage) (string, error)
}

// NewSender builds the transport selected by EMAIL_PROVIDER
func NewSender(cfg config.EmailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPSender(cfg, logger)
	case "mailersend":
		return NewMailerSendSender(cfg, logger)
	case "", "log":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// LogSender writes emails to the log instead of delivering them. Used in development.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("LogSender")}
}

func (s *LogSender) Send(_ context.Context, msg entities.EmailMessage) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("no recipient provided for email")
	}
	id := "log-" + uuid.NewString()
	s.logger.Info("Email captured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("deliveryId", id),
	)
	return id, nil
}
