package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
)

// ReadingPublisher writes one frame's readings to the destination.
type ReadingPublisher interface {
	PublishBatch(ctx context.Context, readings []domain.Reading) error
}

// FrameArchiver persists raw frame images for later replay.
type FrameArchiver interface {
	Store(ctx context.Context, frame domain.Frame) error
}

// Settings control which frame stream the pipeline follows and how far
// behind the wall clock it samples. FrameDelay absorbs the monitor's
// publication lag; a frame for second T is usually online at T+1..T+2.
type Settings struct {
	Kind          domain.DataKind
	Borehole      bool
	FetchInterval time.Duration
	FrameDelay    time.Duration
}

// catchupWindow bounds how much backlog the pipeline replays after an
// outage. Frames older than this are dropped so output stays near realtime.
const catchupWindow = 30 * time.Second

// Pipeline orchestrates the fetch-analyze-publish loop.
type Pipeline struct {
	fetcher   domain.FrameFetcher
	registry  *domain.Registry
	publisher ReadingPublisher
	archiver  FrameArchiver
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	settings  Settings

	ready atomic.Bool
	next  time.Time // oldest unprocessed frame second; Run goroutine only
}

// New creates a Pipeline with the given stages and observability. Pass a
// nil archiver to disable raw frame archiving.
func New(fetcher domain.FrameFetcher, registry *domain.Registry, publisher ReadingPublisher, archiver FrameArchiver, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, settings Settings) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		registry:  registry,
		publisher: publisher,
		archiver:  archiver,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		settings:  settings,
	}
}

// CheckReadiness returns nil once the pipeline has processed at least one
// frame, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any frames yet")
	}
	return nil
}

// Ready reports whether at least one frame has been fully processed.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run executes the frame loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"data_kind", p.settings.Kind,
		"borehole", p.settings.Borehole,
		"fetch_interval", p.settings.FetchInterval,
		"frame_delay", p.settings.FrameDelay,
		"stations", p.registry.Len(),
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	ticker := p.clock.NewTicker(p.settings.FetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}

		if !p.drainDue(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

type frameOutcome int

const (
	frameProcessed frameOutcome = iota
	frameNotReady
	frameFailed
	pipelineStopped
)

// drainDue processes every frame second that has fallen due, oldest first.
// Returns false if the pipeline should stop.
func (p *Pipeline) drainDue(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		target, due := p.nextDue()
		if !due {
			return true
		}

		switch p.processFrame(ctx, target) {
		case frameProcessed:
			*backoff = 200 * time.Millisecond
		case frameNotReady:
			// The monitor has not published this second yet; wait for
			// the next tick rather than hammering it.
			return true
		case frameFailed:
			return p.backoffOrStop(ctx, backoff, maxBackoff)
		case pipelineStopped:
			return false
		}
	}
}

// nextDue returns the oldest unprocessed frame second. When the pipeline
// has fallen further behind than catchupWindow it jumps to the live edge;
// a gap in the stream is preferable to permanently stale output.
func (p *Pipeline) nextDue() (time.Time, bool) {
	ideal := p.clock.Now().Add(-p.settings.FrameDelay).Truncate(time.Second)
	if p.next.IsZero() {
		p.next = ideal
	}
	if lag := ideal.Sub(p.next); lag > catchupWindow {
		p.logger.Warn("pipeline fell behind, skipping to live edge",
			"lag", lag,
			"dropped_frames", int(lag/time.Second),
		)
		p.next = ideal
	}
	if p.next.After(ideal) {
		return time.Time{}, false
	}
	return p.next, true
}

// processFrame runs one fetch-analyze-publish cycle for the given frame second.
func (p *Pipeline) processFrame(ctx context.Context, target time.Time) frameOutcome {
	start := time.Now()

	frame, err := p.fetcher.FetchFrame(ctx, target, p.settings.Kind, p.settings.Borehole)
	if err != nil {
		if ctx.Err() != nil {
			return pipelineStopped
		}
		if errors.Is(err, domain.ErrFrameNotReady) {
			p.metrics.FramesNotReady.Inc()
			p.logger.Debug("frame not published yet", "frame_time", target)
			return frameNotReady
		}
		p.metrics.FrameFetchErrors.Inc()
		p.logger.Error("frame fetch failed", "frame_time", target, "error", err)
		return frameFailed
	}
	p.metrics.FrameFetchSeconds.Observe(time.Since(start).Seconds())

	results := domain.Analyze(p.registry.Points(), frame.Grid, p.logger)
	readings := p.collectReadings(results, frame)

	if err := p.publisher.PublishBatch(ctx, readings); err != nil {
		if ctx.Err() != nil {
			return pipelineStopped
		}
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish readings failed",
			"frame_time", target, "readings", len(readings), "error", err)
		return frameFailed
	}
	p.metrics.ReadingsProduced.Add(float64(len(readings)))

	p.archiveFrame(ctx, frame)

	p.next = target.Add(time.Second)
	p.metrics.FramesProcessed.Inc()
	p.metrics.FrameCycleSeconds.Observe(time.Since(start).Seconds())
	p.metrics.FrameLagSeconds.Set(p.clock.Now().Sub(target).Seconds())
	p.ready.Store(true)

	p.logger.Debug("frame processed", "frame_time", target, "readings", len(readings))
	return frameProcessed
}

// collectReadings projects classified results into sink readings and
// tallies every analysis outcome. Skipped and unclassifiable stations are
// counted but not published.
func (p *Pipeline) collectReadings(results []domain.AnalysisResult, frame domain.Frame) []domain.Reading {
	readings := make([]domain.Reading, 0, len(results))
	for i := range results {
		p.metrics.StationsAnalyzed.WithLabelValues(results[i].Status.String()).Inc()
		if results[i].Status != domain.StatusClassified {
			continue
		}
		readings = append(readings, domain.BuildReading(results[i], frame))
	}
	return readings
}

// archiveFrame stores the raw image when archiving is enabled. Archive
// failures never abort a cycle; the readings are already published.
func (p *Pipeline) archiveFrame(ctx context.Context, frame domain.Frame) {
	if p.archiver == nil {
		return
	}
	if err := p.archiver.Store(ctx, frame); err != nil {
		p.metrics.ArchiveErrors.Inc()
		p.logger.Warn("archive frame failed", "frame_time", frame.Time, "error", err)
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !p.sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (p *Pipeline) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
