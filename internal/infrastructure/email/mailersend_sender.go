package email

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mailersend/mailersend-go"
	"go.uber.org/zap"

	"dvlottery.backend/internal/config"
	"dvlottery.backend/internal/domain/entities"
)

// MailerSendSender delivers mail through the MailerSend SDK
type MailerSendSender struct {
	ms     *mailersend.Mailersend
	from   mailersend.From
	logger *zap.Logger
}

func NewMailerSendSender(cfg config.EmailConfig, logger *zap.Logger) (*MailerSendSender, error) {
	if cfg.MailerSendAPIKey == "" || cfg.FromAddress == "" {
		return nil, fmt.Errorf("MailerSend API key and sender email must be configured")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if base := strings.TrimRight(cfg.MailerSendBaseURL, "/"); base != "" && base != mailersend.APIBase {
		target, err := url.Parse(base)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid MailerSend base URL %q", cfg.MailerSendBaseURL)
		}
		client.Transport = rerouteTransport{target: target, next: http.DefaultTransport}
	}

	ms := mailersend.NewMailersend(cfg.MailerSendAPIKey)
	ms.SetClient(client)

	return &MailerSendSender{
		ms:     ms,
		from:   mailersend.From{Email: cfg.FromAddress, Name: cfg.FromName},
		logger: logger.Named("MailerSendSender"),
	}, nil
}

func (s *MailerSendSender) Send(ctx context.Context, msg entities.EmailMessage) (string, error) {
	message := s.ms.Email.NewMessage()
	message.SetFrom(s.from)
	message.SetRecipients([]mailersend.Recipient{{Email: msg.To}})
	message.SetSubject(msg.Subject)
	message.SetHTML(msg.HTML)

	res, err := s.ms.Email.Send(ctx, message)
	if err != nil {
		s.logger.Error("MailerSend API request failed", zap.String("to", msg.To), zap.Error(err))
		return "", fmt.Errorf("MailerSend API request failed: %w", err)
	}

	messageID := res.Header.Get("X-Message-Id")
	s.logger.Info("Email sent via MailerSend", zap.String("to", msg.To), zap.String("messageId", messageID))
	return messageID, nil
}

// rerouteTransport sends SDK requests to a sandbox or mock API host.
// The SDK's /v1 prefix is replaced by the target's path.
type rerouteTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t rerouteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.URL.Path = t.target.Path + strings.TrimPrefix(req.URL.Path, "/v1")
	out.Host = t.target.Host
	return t.next.RoundTrip(out)
}
