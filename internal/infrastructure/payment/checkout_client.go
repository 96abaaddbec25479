package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"

	"dvlottery.backend/internal/config"
	"dvlottery.backend/internal/domain/entities"
)

var providerNetworkRetries int64 = 2

// CheckoutClient opens and reads hosted checkout sessions through stripe-go
type CheckoutClient struct {
	sessions session.Client
	logger   *zap.Logger
}

func NewCheckoutClient(cfg config.PaymentConfig, logger *zap.Logger) *CheckoutClient {
	logger = logger.Named("CheckoutClient")
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(apiBaseURL(cfg.ProviderBaseURL)),
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(providerNetworkRetries),
		LeveledLogger:     logger.Sugar(),
	})
	return &CheckoutClient{
		sessions: session.Client{B: backend, Key: cfg.APIKey},
		logger:   logger,
	}
}

// apiBaseURL drops a trailing /v1; the SDK prefixes every path with it
func apiBaseURL(raw string) string {
	base := strings.TrimSuffix(strings.TrimRight(raw, "/"), "/v1")
	if base == "" {
		return stripe.APIURL
	}
	return base
}

// CreateCheckoutSession opens a hosted checkout for one package purchase
func (c *CheckoutClient) CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (*entities.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.ClientReferenceID),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("DV Lottery " + string(req.PackageType) + " package"),
				},
			},
		}},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("package_type", string(req.PackageType))
	params.AddMetadata("user_id", req.ClientReferenceID)
	params.Context = ctx

	s, err := c.sessions.New(params)
	if err != nil {
		return nil, c.providerError("create", err)
	}
	if s.ID == "" || s.URL == "" {
		return nil, fmt.Errorf("checkout provider returned an incomplete session")
	}

	c.logger.Info("Checkout session created",
		zap.String("sessionId", s.ID),
		zap.String("clientReferenceId", req.ClientReferenceID),
		zap.Int64("amountCents", req.AmountCents),
	)
	return toCheckoutSession(s), nil
}

// GetCheckoutSession fetches the provider's view of a session
func (c *CheckoutClient) GetCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.sessions.Get(sessionID, params)
	if err != nil {
		return nil, c.providerError("get", err)
	}
	return toCheckoutSession(s), nil
}

func (c *CheckoutClient) providerError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		c.logger.Error("Checkout provider returned error",
			zap.String("op", op),
			zap.Int("statusCode", se.HTTPStatusCode),
			zap.String("type", string(se.Type)),
			zap.String("message", se.Msg),
		)
		return fmt.Errorf("checkout provider returned status %d: %s", se.HTTPStatusCode, se.Msg)
	}
	c.logger.Error("Checkout provider request failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("checkout provider request failed: %w", err)
}

func toCheckoutSession(s *stripe.CheckoutSession) *entities.CheckoutSession {
	out := &entities.CheckoutSession{
		ID:                s.ID,
		URL:               s.URL,
		ClientReferenceID: s.ClientReferenceID,
		PaymentStatus:     string(s.PaymentStatus),
		Status:            string(s.Status),
		AmountTotal:       s.AmountTotal,
		Currency:          string(s.Currency),
		Metadata:          s.Metadata,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	return out
}
