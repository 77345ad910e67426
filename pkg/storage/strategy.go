package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"boardharvest/internal/downloader"
	"boardharvest/pkg/classify"
	"boardharvest/pkg/collector"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/naming"
	"boardharvest/pkg/ratelimit"
)

// DefaultSettleDelay separates consecutive fallback downloads
const DefaultSettleDelay = 300 * time.Millisecond

// Target receives the files of one run
type Target interface {
	Kind() string
	Write(ctx context.Context, name string, data []byte) error
}

// Outcome counts a persisted batch. Attempted is the size of the batch,
// Saved the number of files written; Saved <= Attempted.
type Outcome struct {
	Attempted int
	Saved     int
}

// Strategy chooses where a run is persisted and writes its files
type Strategy struct {
	// Picker is the directory-access capability; nil means there is none
	Picker DirectoryPicker

	// Downloader serves the fallback path
	Downloader Downloader

	// Settle paces fallback downloads
	Settle ratelimit.Limiter

	Logger logger.Logger
}

// NewStrategy creates a strategy with the default settling delay. picker
// may be nil.
func NewStrategy(picker DirectoryPicker, dl Downloader, log logger.Logger) *Strategy {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Strategy{
		Picker:     picker,
		Downloader: dl,
		Settle:     ratelimit.NewInterval(DefaultSettleDelay),
		Logger:     log.WithField("component", "storage"),
	}
}

// Open selects the target for a run. It returns ErrDeclined (matching
// errors.ErrCancelled) when the user refuses directory access, in which case
// nothing must be written.
func (s *Strategy) Open(ctx context.Context, container string) (Target, error) {
	if s.Picker != nil {
		dir, err := s.Picker.Pick(ctx, container)
		switch {
		case err == nil:
			s.Logger.InfoWithFields("Saving into directory", map[string]interface{}{
				"path": dir.Path(),
			})
			return dir, nil
		case stderrors.Is(err, ErrDeclined):
			return nil, fmt.Errorf("failed to open output directory: %w", err)
		default:
			s.Logger.WithError(err).Warn("Directory access unavailable, falling back to downloads")
		}
	}

	if s.Downloader == nil {
		return nil, fmt.Errorf("no output target available for %q", container)
	}

	settle := s.Settle
	if settle == nil {
		settle = ratelimit.NewInterval(DefaultSettleDelay)
	}
	return &downloadTarget{container: container, downloader: s.Downloader, settle: settle}, nil
}

// Persist writes every successfully fetched payload of items to target.
// Failed fetches and failed writes are skipped and only lower Saved.
func (s *Strategy) Persist(ctx context.Context, target Target, container string, items []collector.Item, results []downloader.Result) Outcome {
	out := Outcome{Attempted: len(items)}

	for i, item := range items {
		if i >= len(results) || results[i].Failed() {
			continue
		}
		payload := results[i].Payload

		name := naming.FileName(container, item.DisplayName, classify.Detect(payload).Extension())
		err := target.Write(ctx, name, payload)
		logger.LogPersist(s.Logger, target.Kind(), name, err)
		if err != nil {
			continue
		}
		out.Saved++
	}
	return out
}

// downloadTarget sends each file through a Downloader, grouped under the
// container name
type downloadTarget struct {
	container  string
	downloader Downloader
	settle     ratelimit.Limiter
}

func (t *downloadTarget) Kind() string {
	return "downloads"
}

func (t *downloadTarget) Write(ctx context.Context, name string, data []byte) error {
	if err := t.settle.Wait(ctx); err != nil {
		return err
	}
	return t.downloader.Trigger(ctx, t.container+"/"+name, data)
}
