package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/pkg/logger"
	"dvlottery.backend/pkg/utils"
)

const (
	cancelNotice = "Payment was cancelled. You can restart checkout at any time."
	paidNotice   = "Payment was already completed."
)

// PaymentConfig holds checkout pricing and redirect settings
type PaymentConfig struct {
	Prices      entities.PriceList
	Currency    string
	FrontendURL string
}

// PaymentUsecase starts checkouts and reconciles provider confirmations
type PaymentUsecase struct {
	userRepo repositories.UserRepository
	appRepo  repositories.ApplicationRepository
	txRepo   repositories.TransactionRepository
	provider CheckoutProvider
	metrics  Metrics
	events   EventPublisher
	cfg      PaymentConfig
}

func NewPaymentUsecase(
	userRepo repositories.UserRepository,
	appRepo repositories.ApplicationRepository,
	txRepo repositories.TransactionRepository,
	provider CheckoutProvider,
	metrics Metrics,
	events EventPublisher,
	cfg PaymentConfig,
) *PaymentUsecase {
	if cfg.Prices == nil {
		cfg.Prices = entities.DefaultPrices()
	}
	if cfg.Currency == "" {
		cfg.Currency = entities.DefaultCurrency
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &PaymentUsecase{
		userRepo: userRepo,
		appRepo:  appRepo,
		txRepo:   txRepo,
		provider: provider,
		metrics:  orNoopMetrics(metrics),
		events:   orNoopPublisher(events),
		cfg:      cfg,
	}
}

// CreateCheckout opens a hosted checkout and records it as a pending transaction
func (u *PaymentUsecase) CreateCheckout(ctx context.Context, userID uuid.UUID, pkg entities.PackageType) (string, error) {
	ctx, span := otel.Tracer("dvlottery/usecases").Start(ctx, "PaymentUsecase.CreateCheckout")
	defer span.End()

	amount, ok := u.cfg.Prices.Price(pkg)
	if !ok {
		return "", domainerrors.ErrInvalidInput
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.PaymentStatus == entities.PaymentStatusCompleted {
		return "", domainerrors.ErrAlreadyPaid
	}

	session, err := u.provider.CreateCheckoutSession(ctx, entities.CheckoutSessionRequest{
		ClientReferenceID: user.ID.String(),
		CustomerEmail:     user.Email,
		PackageType:       pkg,
		AmountCents:       amount,
		Currency:          u.cfg.Currency,
		SuccessURL:        u.cfg.FrontendURL + "/dashboard?payment=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         u.cfg.FrontendURL + "/dashboard?payment=cancelled&session_id={CHECKOUT_SESSION_ID}",
	})
	if err != nil {
		logger.Error(ctx, "Checkout session creation failed", zap.String("userId", userID.String()), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domainerrors.ErrPaymentProvider, err)
	}
	span.SetAttributes(attribute.String("checkout.session_id", session.ID))

	err = u.txRepo.Create(ctx, &entities.Transaction{
		UserID:      user.ID,
		AmountCents: amount,
		Currency:    u.cfg.Currency,
		PackageType: pkg,
		Status:      entities.TransactionPending,
		ExternalRef: session.ID,
	})
	if err != nil {
		return "", err
	}
	if err := u.userRepo.UpdatePackage(ctx, user.ID, pkg); err != nil {
		return "", err
	}
	if err := u.appRepo.SetPaymentStep(ctx, user.ID, entities.StepInProgress); err != nil {
		return "", err
	}

	return session.URL, nil
}

// ConfirmPayment records a successful payment exactly once per session.
// The transaction row is written first; the user and application updates are
// idempotent and re-run on duplicates so a partially applied call self-heals.
func (u *PaymentUsecase) ConfirmPayment(ctx context.Context, in entities.ConfirmPaymentInput) (*entities.ReconcileResult, error) {
	ctx, span := otel.Tracer("dvlottery/usecases").Start(ctx, "PaymentUsecase.ConfirmPayment")
	defer span.End()
	span.SetAttributes(attribute.String("checkout.session_id", in.SessionID))

	if in.SessionID == "" || in.UserID == uuid.Nil {
		return nil, domainerrors.ErrInvalidInput
	}

	tx, duplicate, err := u.settle(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.MarkPaymentCompleted(ctx, tx.UserID, in.CustomerID); err != nil {
		return nil, err
	}
	if err := u.appRepo.SetPaymentStep(ctx, tx.UserID, entities.StepCompleted); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Bool("payment.duplicate", duplicate))
	u.metrics.PaymentReconciled(string(tx.PackageType), duplicate)
	if !duplicate {
		logger.Info(ctx, "Payment reconciled",
			zap.String("userId", tx.UserID.String()),
			zap.String("sessionId", tx.ExternalRef),
			zap.String("amount", tx.Amount()),
		)
		publish(ctx, u.events, EventPaymentCompleted, PaymentEvent{
			UserID:      tx.UserID,
			SessionID:   tx.ExternalRef,
			PackageType: string(tx.PackageType),
			Amount:      tx.Amount(),
			Currency:    tx.Currency,
		})
	}

	return &entities.ReconcileResult{Transaction: tx, Duplicate: duplicate}, nil
}

// settle moves the session's transaction to completed. Of any number of racing
// callers exactly one observes duplicate=false.
func (u *PaymentUsecase) settle(ctx context.Context, in entities.ConfirmPaymentInput) (*entities.Transaction, bool, error) {
	existing, err := u.txRepo.GetByExternalRef(ctx, in.SessionID)
	if err == nil {
		return u.settleExisting(ctx, in, existing)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, err
	}

	tx, err := u.completedTransaction(in)
	if err != nil {
		return nil, false, err
	}
	if err := u.txRepo.Create(ctx, tx); err != nil {
		if !errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, false, err
		}
		existing, err := u.txRepo.GetByExternalRef(ctx, in.SessionID)
		if err != nil {
			return nil, false, err
		}
		return u.settleExisting(ctx, in, existing)
	}
	return tx, false, nil
}

func (u *PaymentUsecase) settleExisting(ctx context.Context, in entities.ConfirmPaymentInput, tx *entities.Transaction) (*entities.Transaction, bool, error) {
	if tx.UserID != in.UserID {
		return nil, false, domainerrors.ErrForbidden
	}

	switch tx.Status {
	case entities.TransactionCompleted:
		return tx, true, nil
	case entities.TransactionPending:
		completed, err := u.txRepo.CompletePending(ctx, in.SessionID)
		if err != nil {
			return nil, false, err
		}
		if completed {
			tx.Status = entities.TransactionCompleted
			return tx, false, nil
		}
		// lost the race; the winner decides what the row became
		current, err := u.txRepo.GetByExternalRef(ctx, in.SessionID)
		if err != nil {
			return nil, false, err
		}
		if current.Status == entities.TransactionCompleted {
			return current, true, nil
		}
		tx = current
	}
	return nil, false, fmt.Errorf("%w: transaction %s is %s", domainerrors.ErrPaymentNotCompleted, tx.ExternalRef, tx.Status)
}

// completedTransaction builds the row for a confirmation that arrives without a prior checkout record
func (u *PaymentUsecase) completedTransaction(in entities.ConfirmPaymentInput) (*entities.Transaction, error) {
	pkg := in.PackageType
	price, ok := u.cfg.Prices.Price(pkg)
	if !ok {
		return nil, domainerrors.ErrInvalidInput
	}
	amount := in.AmountCents
	if amount <= 0 {
		amount = price
	}
	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = u.cfg.Currency
	}
	return &entities.Transaction{
		UserID:      in.UserID,
		AmountCents: amount,
		Currency:    currency,
		PackageType: pkg,
		Status:      entities.TransactionCompleted,
		ExternalRef: in.SessionID,
	}, nil
}

// ConfirmFromRedirect reconciles the session the client was redirected back with.
// The provider is the source of truth for whether it was paid.
func (u *PaymentUsecase) ConfirmFromRedirect(ctx context.Context, userID uuid.UUID, sessionID string) (*entities.ReconcileResult, error) {
	session, err := u.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		logger.Error(ctx, "Checkout session lookup failed", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrPaymentProvider, err)
	}
	if session.ClientReferenceID != userID.String() {
		return nil, domainerrors.ErrForbidden
	}
	if session.PaymentStatus != entities.SessionPaymentPaid {
		return nil, domainerrors.ErrPaymentNotCompleted
	}
	return u.ConfirmPayment(ctx, confirmInput(userID, session))
}

// CancelCheckout backs the cancel redirect. The transaction fails only when the
// provider reports the session expired and a session paid meanwhile is reconciled.
// Otherwise the transaction stays pending and the application returns to pending.
func (u *PaymentUsecase) CancelCheckout(ctx context.Context, userID uuid.UUID, sessionID string) (*entities.CancelResult, error) {
	result := &entities.CancelResult{Notice: cancelNotice}
	if sessionID == "" {
		return result, nil
	}

	tx, err := u.txRepo.GetByExternalRef(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return result, nil
		}
		return nil, err
	}
	if userID != uuid.Nil && tx.UserID != userID {
		return nil, domainerrors.ErrForbidden
	}
	if tx.Status == entities.TransactionCompleted {
		result.Notice = paidNotice
		return result, nil
	}
	if tx.Status == entities.TransactionFailed {
		return result, u.resetPaymentStep(ctx, tx.UserID)
	}

	session, err := u.provider.GetCheckoutSession(ctx, sessionID)
	switch {
	case err != nil:
		logger.Warn(ctx, "Checkout session lookup failed on cancel, keeping transaction pending",
			zap.String("sessionId", sessionID), zap.Error(err))
	case session.PaymentStatus == entities.SessionPaymentPaid:
		if _, err := u.ConfirmPayment(ctx, confirmInput(tx.UserID, session)); err != nil {
			return nil, err
		}
		result.Notice = paidNotice
		return result, nil
	case session.Status == entities.SessionStatusExpired:
		if err := u.failCheckout(ctx, tx); err != nil {
			return nil, err
		}
		return result, nil
	}

	u.metrics.CheckoutCancelled()
	if err := u.resetPaymentStep(ctx, tx.UserID); err != nil {
		return nil, err
	}
	return result, nil
}

// expireCheckout applies a provider-final failure (expiry or a declined async payment)
func (u *PaymentUsecase) expireCheckout(ctx context.Context, sessionID string) error {
	tx, err := u.txRepo.GetByExternalRef(ctx, sessionID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if tx.Status != entities.TransactionPending {
		return nil
	}
	return u.failCheckout(ctx, tx)
}

func (u *PaymentUsecase) failCheckout(ctx context.Context, tx *entities.Transaction) error {
	failed, err := u.txRepo.FailPending(ctx, tx.ExternalRef)
	if err != nil {
		return err
	}
	if !failed {
		return nil
	}
	u.metrics.CheckoutCancelled()
	return u.resetPaymentStep(ctx, tx.UserID)
}

// resetPaymentStep returns the application to pending unless the user has paid
func (u *PaymentUsecase) resetPaymentStep(ctx context.Context, userID uuid.UUID) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PaymentStatus == entities.PaymentStatusCompleted {
		return nil
	}
	return u.appRepo.SetPaymentStep(ctx, userID, entities.StepPending)
}

// HandleWebhook applies a verified provider event
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, event *entities.WebhookEvent) error {
	session := event.Data.Object

	switch event.Type {
	case entities.EventCheckoutCompleted, entities.EventCheckoutAsyncSucceeded:
		if session.PaymentStatus != entities.SessionPaymentPaid {
			logger.Info(ctx, "Checkout completed without payment yet, awaiting async result",
				zap.String("sessionId", session.ID), zap.String("type", event.Type))
			return nil
		}
		userID, err := utils.ParseID(session.ClientReferenceID)
		if err != nil {
			return domainerrors.ErrInvalidInput
		}
		_, err = u.ConfirmPayment(ctx, confirmInput(userID, &session))
		return err
	case entities.EventCheckoutExpired, entities.EventCheckoutAsyncFailed:
		return u.expireCheckout(ctx, session.ID)
	default:
		logger.Debug(ctx, "Ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

func confirmInput(userID uuid.UUID, session *entities.CheckoutSession) entities.ConfirmPaymentInput {
	return entities.ConfirmPaymentInput{
		UserID:      userID,
		SessionID:   session.ID,
		CustomerID:  session.CustomerID,
		PackageType: entities.PackageType(session.Metadata["package_type"]),
		AmountCents: session.AmountTotal,
		Currency:    session.Currency,
	}
}
