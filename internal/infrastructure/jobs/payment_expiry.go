package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"avilegal.backend/pkg/logger"
)

const (
	defaultExpiryInterval = 10 * time.Minute
	defaultPendingTTL     = 72 * time.Hour
	expiryBatchSize       = 100
)

type stalePaymentRepository interface {
	ExpirePending(ctx context.Context, olderThan time.Time, limit int) (int64, error)
}

// PaymentExpiryJob fails payments left pending longer than the TTL. The
// applications they belong to stay in pending_payment.
type PaymentExpiryJob struct {
	repo     stalePaymentRepository
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPaymentExpiryJob(repo stalePaymentRepository, interval, ttl time.Duration) *PaymentExpiryJob {
	if interval <= 0 {
		interval = defaultExpiryInterval
	}
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	return &PaymentExpiryJob{
		repo:     repo,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (j *PaymentExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting payment expiry job",
		zap.Duration("interval", j.interval),
		zap.Duration("ttl", j.ttl),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Payment expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Payment expiry job stopped")
			return
		case <-ticker.C:
			j.expireStale(ctx)
		}
	}
}

func (j *PaymentExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// expireStale works through stale payments in batches and returns how many
// were failed.
func (j *PaymentExpiryJob) expireStale(ctx context.Context) int64 {
	cutoff := j.now().Add(-j.ttl)
	var total int64
	for {
		n, err := j.repo.ExpirePending(ctx, cutoff, expiryBatchSize)
		if err != nil {
			logger.Error(ctx, "Error expiring stale payments", zap.Error(err))
			break
		}
		total += n
		if n < expiryBatchSize || ctx.Err() != nil {
			break
		}
	}
	if total > 0 {
		logger.Info(ctx, "Expired stale payments", zap.Int64("count", total))
	}
	return total
}
