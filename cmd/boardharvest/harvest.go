package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/pinterest"
	"boardharvest/pkg/scraper"
	"boardharvest/pkg/ui"
	"boardharvest/pkg/ui/tui"
)

var (
	tickInterval   time.Duration
	stallThreshold int
)

var harvestCmd = &cobra.Command{
	Use:     "harvest <board-url>",
	Aliases: []string{"board"},
	Short:   "Download every image of a board",
	Long: `Open a board, scroll it to the end while collecting every image, then
fetch and save all of them.

Scrolling stops once the page height has not grown for --stall ticks in a
row. Slow connections may need a longer --tick.`,
	Example: `  # Ask where to save, then download
  boardharvest harvest https://www.pinterest.com/someone/cats/

  # Save into ./cats without asking, 8 fetches at a time
  boardharvest harvest https://www.pinterest.com/someone/cats/ -o ./cats -y --concurrency 8

  # Use a Chrome you already started with --remote-debugging-port
  boardharvest harvest https://www.pinterest.com/someone/cats/ --browser-url ws://127.0.0.1:9222/devtools/browser/...`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	addRunFlags(harvestCmd)
	harvestCmd.Flags().IntVar(&concurrency, "concurrency", 5, "number of concurrent fetches")
	harvestCmd.Flags().DurationVar(&tickInterval, "tick", 900*time.Millisecond, "delay between scroll steps")
	harvestCmd.Flags().IntVar(&stallThreshold, "stall", 12, "scroll steps without growth before stopping")
	harvestCmd.Flags().BoolVar(&useTUI, "tui", false, "full-screen progress view")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	boardURL := strings.TrimSpace(args[0])
	ctx := cmd.Context()

	cfg, log, err := setup(cmd)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return err
	}
	log = log.WithField("board_url", boardURL)

	if !pinterest.IsBoardURL(boardURL) && fromHTML == "" {
		ui.PrintWarning("This does not look like a board URL, harvesting it anyway")
	}

	client := newClient(cfg, log)
	host, live, closeHost, err := openHost(ctx, cfg, client, boardURL, log)
	if err != nil {
		ui.PrintError("Failed to open page", err)
		return err
	}
	defer closeHost()

	s := scraper.New(cfg, client, newStrategy(cfg, live, log), log)
	notifier := ui.NewNotifier(cfg.Notifications.Enabled, cfg.Notifications.OnComplete, cfg.Notifications.OnError)

	var report *scraper.Report
	if useTUI {
		report, err = harvestWithTUI(ctx, s, host, boardURL)
	} else {
		if !quiet {
			ui.PrintBanner()
			ui.PrintInfo("Board", boardURL)
			s.SetStatusSink(ui.NewStatusLine(os.Stdout, ""))
		}
		report, err = s.DownloadBoard(ctx, host)
	}

	return finishHarvest(log, notifier, boardURL, report, err)
}

// harvestWithTUI runs the board download behind the full-screen view. The
// download runs in its own goroutine; the view quits once it finishes.
func harvestWithTUI(ctx context.Context, s *scraper.Scraper, host pageHost, boardURL string) (*scraper.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := tui.NewTUI(boardURL, cancel)
	s.SetStatusSink(view)

	type result struct {
		report *scraper.Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := s.DownloadBoard(ctx, host)
		if report != nil && report.Board != "" {
			view.SetBoard(report.Board)
		}
		view.Finish(err)
		done <- result{report, err}
	}()

	if err := view.Run(); err != nil {
		cancel()
		r := <-done
		return r.report, err
	}
	r := <-done
	return r.report, r.err
}

func finishHarvest(log logger.Logger, notifier *ui.Notifier, boardURL string, report *scraper.Report, err error) error {
	switch {
	case err == nil:
		notifier.Complete(report.Board, report.Outcome.Saved, report.Outcome.Attempted)
		return nil
	case apperrors.IsEmptyHarvest(err):
		ui.PrintNotice("No images found on this board")
		return nil
	case apperrors.IsCancelled(err):
		ui.PrintWarning("Cancelled, nothing was saved")
		return err
	default:
		log.WithError(err).Error("Harvest failed")
		notifier.Failed(boardURL, err)
		return fmt.Errorf("harvest failed: %w", err)
	}
}
