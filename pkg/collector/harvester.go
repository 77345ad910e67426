package collector

import (
	"context"
	"fmt"
	"time"

	"boardharvest/pkg/logger"
	"boardharvest/pkg/status"
)

const (
	// DefaultTickInterval leaves lazy loading time to render the next page
	DefaultTickInterval = 900 * time.Millisecond

	// DefaultStallThreshold is the number of consecutive ticks without
	// growth after which the board is considered fully loaded
	DefaultStallThreshold = 12
)

// Host is the page being harvested. Nodes it reports may be destroyed as
// soon as the page scrolls, so every call returns a fresh snapshot.
type Host interface {
	// Images returns the images rendered right now
	Images(ctx context.Context) ([]Image, error)

	// ScrollPosition returns the current vertical scroll offset
	ScrollPosition(ctx context.Context) (float64, error)

	// ScrollTo scrolls the viewport to vertical offset y
	ScrollTo(ctx context.Context, y float64) error

	// ScrollHeight returns the total scrollable height of the document
	ScrollHeight(ctx context.Context) (float64, error)

	// Title returns the document title
	Title(ctx context.Context) (string, error)
}

// Harvester scrolls a host to the end of its list, collecting items on
// every tick until the content height stops growing
type Harvester struct {
	Collector      *Collector
	TickInterval   time.Duration
	StallThreshold int
	Status         status.Sink
	Logger         logger.Logger
}

// NewHarvester creates a harvester with the default tick and stall settings
func NewHarvester(c *Collector, log logger.Logger) *Harvester {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Harvester{
		Collector:      c,
		TickInterval:   DefaultTickInterval,
		StallThreshold: DefaultStallThreshold,
		Status:         status.Discard,
		Logger:         log,
	}
}

// Run harvests host and returns every item found in first-seen order. The
// viewport is put back where it was before returning. If ctx is cancelled
// while scrolling, Run returns the items found so far together with
// ctx.Err().
func (h *Harvester) Run(ctx context.Context, host Host) (*Set, error) {
	set := NewSet()
	log := h.Logger.WithField("component", "harvester")

	origin, err := host.ScrollPosition(ctx)
	if err != nil {
		log.WithError(err).Warn("Could not read scroll position, will restore to top")
		origin = 0
	}

	ticker := time.NewTicker(h.TickInterval)
	defer ticker.Stop()

	lastHeight := -1.0
	stall := 0

	for stall < h.StallThreshold {
		select {
		case <-ctx.Done():
			h.restore(ctx, host, origin)
			return set, fmt.Errorf("harvest interrupted after %d items: %w", set.Len(), ctx.Err())
		case <-ticker.C:
		}
		if err := ctx.Err(); err != nil {
			h.restore(ctx, host, origin)
			return set, fmt.Errorf("harvest interrupted after %d items: %w", set.Len(), err)
		}

		// collect first: scrolling further may recycle the nodes on screen
		added := h.collect(ctx, host, set)

		height, err := h.scrollToEnd(ctx, host)
		switch {
		case err != nil:
			log.WithError(err).Warn("Scroll tick failed, counting as stalled")
			stall++
		case height == lastHeight:
			stall++
		default:
			stall = 0
			lastHeight = height
		}

		logger.LogHarvestProgress(log, set.Len(), added, stall)
		h.Status.Update(status.ScrollingStatus(set.Len()))
	}

	// items rendered by the last scroll have not been seen by a tick yet
	if added := h.collect(ctx, host, set); added > 0 {
		h.Status.Update(status.ScrollingStatus(set.Len()))
	}
	h.restore(ctx, host, origin)

	log.InfoWithFields("Harvest finished", map[string]interface{}{
		"items": set.Len(),
	})
	return set, nil
}

func (h *Harvester) collect(ctx context.Context, host Host, set *Set) int {
	images, err := host.Images(ctx)
	if err != nil {
		h.Logger.WithError(err).Warn("Snapshot failed")
		return 0
	}
	return h.Collector.Collect(images, set)
}

// scrollToEnd scrolls to the bottom and returns the resulting content height
func (h *Harvester) scrollToEnd(ctx context.Context, host Host) (float64, error) {
	bottom, err := host.ScrollHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	if err := host.ScrollTo(ctx, bottom); err != nil {
		return 0, fmt.Errorf("failed to scroll: %w", err)
	}
	height, err := host.ScrollHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	return height, nil
}

func (h *Harvester) restore(ctx context.Context, host Host, origin float64) {
	if err := host.ScrollTo(context.WithoutCancel(ctx), origin); err != nil {
		h.Logger.WithError(err).Warn("Failed to restore scroll position")
	}
}
