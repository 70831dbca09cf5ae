package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw report messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a raw message into a normalized, geocoded report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Report, error)
}

// BatchLoader writes multiple reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.Report) error
}

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultHoldLimit      = 5
)

var errNotReady = errors.New("pipeline has not loaded any reports yet")

// Pipeline moves reviewed reports from the source topic to the sink topic,
// geocoding each one on the way. Offsets are committed only after the
// reports are published.
//
// A batch in which every geocoding attempt hit a provider error is held:
// it is transformed again after a backoff instead of being published with
// geo_status "failed". After the hold limit the batch is published as is so
// the partition keeps moving and the review workflow can enter coordinates.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	initialBackoff time.Duration
	maxBackoff     time.Duration
	holdLimit      int

	ready atomic.Bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBackoff sets the first and the longest pause after a failed cycle.
func WithBackoff(initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
	}
}

// WithHoldLimit sets how many times a batch is geocoded again while the
// provider is failing. Zero publishes failed batches immediately.
func WithHoldLimit(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.holdLimit = n
		}
	}
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:      e,
		transformer:    t,
		loader:         l,
		logger:         logger,
		metrics:        metrics,
		batchSize:      batchSize,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		holdLimit:      defaultHoldLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the pipeline has loaded its first batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errNotReady
	}
	return nil
}

// batch is a set of fetched messages that has not been committed yet.
type batch struct {
	raws    []domain.RawEvent // messages still to be published
	reports []domain.Report   // transformed raws, nil until transformed
	holds   int
	started time.Time
}

// geoTally counts the geocoding outcomes of a transformed batch.
type geoTally struct {
	attempted int
	failed    int
}

// providerDown reports whether every lookup in the batch failed at the provider.
func (g geoTally) providerDown() bool {
	return g.failed > 0 && g.failed == g.attempted
}

// Run executes the enrichment loop until the context is cancelled. A batch
// that could not be published is retried in place rather than re-fetched.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "hold_limit", p.holdLimit)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := retryDelay{initial: p.initialBackoff, max: p.maxBackoff}
	delay.reset()

	var current *batch
	for ctx.Err() == nil {
		if current == nil {
			next, err := p.fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				p.logger.Error("extract batch failed", "error", err)
				if !delay.wait(ctx) {
					break
				}
				continue
			}
			if next == nil {
				continue
			}
			current = next
		}

		if p.advance(ctx, current) {
			current = nil
			delay.reset()
			continue
		}
		if !delay.wait(ctx) {
			break
		}
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

func (p *Pipeline) fetch(ctx context.Context) (*batch, error) {
	raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil || len(raws) == 0 {
		return nil, err
	}
	p.metrics.MessagesConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))
	return &batch{raws: raws, started: time.Now()}, nil
}

// advance moves b one step towards being published. It returns true when b
// is finished and false when the caller should back off and call again.
func (p *Pipeline) advance(ctx context.Context, b *batch) bool {
	if b.reports == nil {
		tally := p.transform(ctx, b)
		if len(b.raws) == 0 {
			return true
		}
		if tally.providerDown() && b.holds < p.holdLimit {
			b.holds++
			b.reports = nil
			p.metrics.BatchesHeld.Inc()
			p.logger.Warn("geocoding provider failing, holding batch",
				"reports", len(b.raws),
				"hold", b.holds,
				"hold_limit", p.holdLimit,
			)
			return false
		}
	}

	if err := p.loader.LoadBatch(ctx, b.reports); err != nil {
		p.logger.Error("load reports failed", "error", err, "batch_size", len(b.reports))
		return false
	}

	p.metrics.MessagesProduced.Add(float64(len(b.reports)))
	for _, raw := range b.raws {
		p.commitOffset(ctx, raw)
	}
	p.metrics.BatchProcessingDuration.Observe(time.Since(b.started).Seconds())
	p.ready.Store(true)
	return true
}

// transform fills b.reports. Messages that cannot be parsed are committed
// and dropped from b so a single bad payload cannot block the partition or
// be counted twice when the batch is held.
func (p *Pipeline) transform(ctx context.Context, b *batch) geoTally {
	var tally geoTally
	kept := b.raws[:0]
	reports := make([]domain.Report, 0, len(b.raws))

	for _, raw := range b.raws {
		report, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("report rejected, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}

		switch report.GeoStatus {
		case domain.GeoStatusFailed:
			tally.failed++
			tally.attempted++
		case domain.GeoStatusFound, domain.GeoStatusNotFound:
			tally.attempted++
		}
		kept = append(kept, raw)
		reports = append(reports, report)
	}

	b.raws = kept
	b.reports = reports
	return tally
}

func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retryDelay doubles from initial up to max across consecutive failures.
type retryDelay struct {
	initial time.Duration
	max     time.Duration
	next    time.Duration
}

func (d *retryDelay) reset() { d.next = d.initial }

// wait sleeps for the current delay and doubles it. It returns false if ctx
// ended first.
func (d *retryDelay) wait(ctx context.Context) bool {
	current := d.next
	d.next = min(d.next*2, d.max)
	if current <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(current)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
