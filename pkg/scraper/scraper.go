package scraper

import (
	"context"
	"fmt"
	"time"

	"boardharvest/internal/downloader"
	"boardharvest/pkg/collector"
	"boardharvest/pkg/config"
	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/naming"
	"boardharvest/pkg/pinterest"
	"boardharvest/pkg/status"
	"boardharvest/pkg/storage"
)

// Report summarizes one finished run
type Report struct {
	Board    string
	Found    int
	Target   string
	Outcome  storage.Outcome
	Duration time.Duration
}

// Scraper orchestrates harvest, fetch and persistence for one board
type Scraper struct {
	harvester *collector.Harvester
	pool      *downloader.Pool
	fetcher   downloader.Fetcher
	storage   *storage.Strategy
	status    status.Sink
	logger    logger.Logger
}

// New wires a scraper from configuration. fetcher retrieves payloads and
// strategy decides where they are written.
func New(cfg *config.Config, fetcher downloader.Fetcher, strategy *storage.Strategy, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	c := collector.NewCollector(pinterest.NormalizeURL)
	c.MinWidth = cfg.Harvest.MinImageWidth

	h := collector.NewHarvester(c, log)
	if cfg.Harvest.TickInterval > 0 {
		h.TickInterval = cfg.Harvest.TickInterval
	}
	if cfg.Harvest.StallThreshold > 0 {
		h.StallThreshold = cfg.Harvest.StallThreshold
	}

	return &Scraper{
		harvester: h,
		pool:      downloader.NewPool(cfg.Download.Concurrency, fetcher, log),
		fetcher:   fetcher,
		storage:   strategy,
		status:    status.Discard,
		logger:    log.WithField("component", "scraper"),
	}
}

// SetStatusSink sets where run status is reported
func (s *Scraper) SetStatusSink(sink status.Sink) {
	if sink == nil {
		sink = status.Discard
	}
	s.status = sink
}

// DownloadBoard harvests every image of host, fetches the payloads and
// persists them. It returns errors.ErrEmptyHarvest when the board has no
// items and an error matching errors.ErrCancelled when the run is
// interrupted while scrolling or directory access is declined.
func (s *Scraper) DownloadBoard(ctx context.Context, host collector.Host) (*Report, error) {
	start := time.Now()
	tracker := status.NewTracker(s.status)
	tracker.Update(status.ScrollingStatus(0))

	h := *s.harvester
	h.Status = tracker

	logger.LogComponentStart(s.logger, "harvest", map[string]interface{}{
		"tick_interval":   h.TickInterval.String(),
		"stall_threshold": h.StallThreshold,
	})
	set, err := h.Run(ctx, host)
	if err != nil {
		tracker.Update(status.CancelledStatus())
		logger.LogComponentStop(s.logger, "harvest", "interrupted")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrCancelled, err)
	}
	logger.LogComponentStop(s.logger, "harvest", "list exhausted")

	report := &Report{Found: set.Len()}
	if set.Len() == 0 {
		s.logger.Warn("No images found on the board")
		report.Duration = time.Since(start)
		return report, apperrors.ErrEmptyHarvest
	}

	title, err := host.Title(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Could not read page title, using default folder name")
	}
	container := naming.ContainerName(title)
	report.Board = container

	target, err := s.storage.Open(ctx, container)
	if err != nil {
		if apperrors.IsCancelled(err) {
			tracker.Update(status.CancelledStatus())
		}
		return report, err
	}
	report.Target = target.Kind()

	// the batch is committed once a target is chosen
	batchCtx := context.WithoutCancel(ctx)

	items := set.Items()
	total := len(items)
	tracker.Update(status.FetchingStatus(0, total))
	results := s.pool.FetchAll(batchCtx, set.URLs(), func(completed, total int) {
		tracker.Update(status.FetchingStatus(completed, total))
	})

	tracker.Update(status.PersistingStatus())
	report.Outcome = s.storage.Persist(batchCtx, target, container, items, results)
	tracker.Update(status.DoneStatus(report.Outcome.Saved, total))

	report.Duration = time.Since(start)
	logger.LogOutcome(s.logger, container, report.Outcome.Saved, report.Outcome.Attempted)
	return report, nil
}
