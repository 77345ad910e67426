package scraper

import (
	"context"
	"fmt"
	"time"

	"boardharvest/pkg/classify"
	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/naming"
	"boardharvest/pkg/pinterest"
	"boardharvest/pkg/storage"
)

const (
	// PinContainer groups single pin downloads
	PinContainer = "pinterest-pins"

	pinTokenLength = 15
)

// PinHost is a pin close-up page
type PinHost interface {
	MainImage(ctx context.Context) (pinterest.PinImage, error)
	PinTitle(ctx context.Context) (string, error)
}

// DownloadPin saves the main image of a pin page. The file is named after
// the pin title, or pin-<random> when the pin has none.
func (s *Scraper) DownloadPin(ctx context.Context, host PinHost) (*Report, error) {
	start := time.Now()

	img, err := host.MainImage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to locate pin image: %w", err)
	}
	url := pinterest.MainImageURL(img)
	if url == "" {
		return nil, apperrors.New(apperrors.ErrorTypeHost, "pin page has no main image")
	}

	title, err := host.PinTitle(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("Pin title unavailable")
	}
	name, ok := naming.Sanitize(title)
	if !ok {
		name = "pin-" + naming.RandomToken(pinTokenLength)
	}

	target, err := s.storage.Open(ctx, PinContainer)
	if err != nil {
		return nil, err
	}

	payload, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pin image: %w", err)
	}
	file := name + classify.Detect(payload).Extension()

	report := &Report{
		Board:   PinContainer,
		Found:   1,
		Target:  target.Kind(),
		Outcome: storage.Outcome{Attempted: 1},
	}
	if err := target.Write(ctx, file, payload); err != nil {
		return report, fmt.Errorf("failed to save %s: %w", file, err)
	}
	report.Outcome.Saved = 1
	report.Duration = time.Since(start)

	s.logger.InfoWithFields("Pin saved", map[string]interface{}{
		"file":   file,
		"target": target.Kind(),
	})
	return report, nil
}
