package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchLoader writes audit events to their destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.EstimateEvent) error
}

// AuditPublisher buffers estimate events and writes them in batches from a
// single background loop. Publish never blocks; a full buffer drops the event.
type AuditPublisher struct {
	events        chan domain.EstimateEvent
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool
}

// NewAuditPublisher creates a publisher holding up to 4*batchSize pending events.
func NewAuditPublisher(loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *AuditPublisher {
	if batchSize < 1 {
		batchSize = 1
	}
	return &AuditPublisher{
		events:        make(chan domain.EstimateEvent, 4*batchSize),
		loader:        loader,
		logger:        logger,
		metrics:       metrics,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Publish implements EventSink.
func (p *AuditPublisher) Publish(event domain.EstimateEvent) {
	select {
	case p.events <- event:
	default:
		p.metrics.AuditDropped.Inc()
		p.logger.Warn("audit buffer full, dropping estimate event", "id", event.ID)
	}
}

// CheckReadiness reports whether the publish loop is running.
func (p *AuditPublisher) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("audit publisher is not running")
	}
	return nil
}

// Run drains the buffer until the context is cancelled. Failed batches are
// retried with exponential backoff; events still pending at shutdown are dropped.
func (p *AuditPublisher) Run(ctx context.Context) error {
	p.logger.Info("audit publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.running.Store(true)
	defer p.running.Store(false)

	for {
		batch, ok := p.nextBatch(ctx)
		if !ok {
			p.dropPending()
			p.logger.Info("audit publisher stopping", "reason", ctx.Err())
			return nil
		}
		if !p.load(ctx, batch) {
			p.metrics.AuditDropped.Add(float64(len(batch)))
			p.dropPending()
			return nil
		}
	}
}

// nextBatch blocks for the first event, then collects more until the batch is
// full or the flush interval elapses. Returns false once the context is done.
func (p *AuditPublisher) nextBatch(ctx context.Context) ([]domain.EstimateEvent, bool) {
	var first domain.EstimateEvent
	select {
	case <-ctx.Done():
		return nil, false
	case first = <-p.events:
	}

	batch := make([]domain.EstimateEvent, 0, p.batchSize)
	batch = append(batch, first)

	timer := time.NewTimer(p.flushInterval)
	defer timer.Stop()
	for len(batch) < p.batchSize {
		select {
		case ev := <-p.events:
			batch = append(batch, ev)
		case <-timer.C:
			return batch, true
		case <-ctx.Done():
			return batch, true
		}
	}
	return batch, true
}

// load writes one batch, retrying until it succeeds. Returns false if the
// context was cancelled first.
func (p *AuditPublisher) load(ctx context.Context, batch []domain.EstimateEvent) bool {
	backoff := initialBackoff
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.AuditPublished.Add(float64(len(batch)))
			p.metrics.AuditBatchSize.Observe(float64(len(batch)))
			return true
		}

		p.metrics.AuditErrors.Inc()
		p.logger.Error("audit batch write failed", "error", err, "batch_size", len(batch))
		if ctx.Err() != nil || !retry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (p *AuditPublisher) dropPending() {
	n := len(p.events)
	for range n {
		<-p.events
	}
	if n > 0 {
		p.metrics.AuditDropped.Add(float64(n))
		p.logger.Warn("dropped pending audit events at shutdown", "count", n)
	}
}
