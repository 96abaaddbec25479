package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiredCredentialStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CredentialCleanupJob purges expired verification codes and reset tokens
type CredentialCleanupJob struct {
	codes    expiredCredentialStore
	tokens   expiredCredentialStore
	interval time.Duration
	stop     chan struct{}
	logger   *zap.Logger
	now      func() time.Time
}

func NewCredentialCleanupJob(codes, tokens expiredCredentialStore, interval time.Duration, logger *zap.Logger) *CredentialCleanupJob {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CredentialCleanupJob{
		codes:    codes,
		tokens:   tokens,
		interval: interval,
		stop:     make(chan struct{}),
		logger:   logger.Named("CredentialCleanupJob"),
		now:      time.Now,
	}
}

func (j *CredentialCleanupJob) Start(ctx context.Context) {
	j.logger.Info("Starting credential cleanup job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Credential cleanup job stopped (context cancelled)")
			return
		case <-j.stop:
			j.logger.Info("Credential cleanup job stopped")
			return
		case <-ticker.C:
			j.purgeExpired(ctx)
		}
	}
}

func (j *CredentialCleanupJob) Stop() {
	close(j.stop)
}

func (j *CredentialCleanupJob) purgeExpired(ctx context.Context) {
	now := j.now()

	codes, err := j.codes.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("Error purging expired verification codes", zap.Error(err))
	}

	tokens, err := j.tokens.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("Error purging expired reset tokens", zap.Error(err))
	}

	if codes+tokens > 0 {
		j.logger.Info("Purged expired credentials", zap.Int64("codes", codes), zap.Int64("resetTokens", tokens))
	}
}
