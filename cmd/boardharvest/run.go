package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"boardharvest/pkg/browser"
	"boardharvest/pkg/collector"
	"boardharvest/pkg/config"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/pinterest"
	"boardharvest/pkg/ratelimit"
	"boardharvest/pkg/scraper"
	"boardharvest/pkg/session"
	"boardharvest/pkg/storage"
)

// Run flags shared by harvest and pin
var (
	outputDir   string
	outputMode  string
	assumeYes   bool
	concurrency int
	browserURL  string
	headful     bool
	accountName string
	fromHTML    string
	static      bool
	useTUI      bool
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to save into (asked for when not given)")
	cmd.Flags().StringVar(&outputMode, "mode", "", "output mode: auto, directory or downloads")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "save into the output directory without asking")
	cmd.Flags().StringVar(&browserURL, "browser-url", "", "DevTools URL of a running Chrome instead of launching one")
	cmd.Flags().BoolVar(&headful, "headful", false, "show the browser window")
	cmd.Flags().StringVarP(&accountName, "account", "a", "", "stored session to use")
	cmd.Flags().StringVar(&fromHTML, "from-html", "", "read a saved page instead of opening a browser")
	cmd.Flags().BoolVar(&static, "static", false, "fetch the page over HTTP without a browser (first screen only)")
}

// flagMap collects the flags the user set so they override other sources
func flagMap(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[name] = value
		}
	}

	set("output", outputDir)
	set("mode", outputMode)
	set("yes", assumeYes)
	set("concurrency", concurrency)
	set("browser-url", browserURL)
	set("headful", headful)
	set("tick", tickInterval)
	set("stall", stallThreshold)
	set("account", accountName)
	set("notifications", notifications)
	set("log-level", logLevel)
	return flags
}

// setup loads configuration, initializes logging and resolves the session
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile, flagMap(cmd))
	if err != nil {
		return nil, nil, err
	}
	switch {
	case useTUI:
		// the TUI owns the terminal
		cfg.Logging.Level = "disabled"
	case quiet:
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("boardharvest starting")

	resolveSession(cfg, log)
	return cfg, log, nil
}

// resolveSession fills the session cookie from the session store when the
// configuration does not carry one. A missing session is not an error:
// public boards work without it.
func resolveSession(cfg *config.Config, log logger.Logger) {
	if cfg.Pinterest.SessionCookie != "" {
		return
	}
	mgr, err := session.NewManager()
	if err != nil {
		log.WithError(err).Debug("Session store unavailable")
		return
	}
	s, err := mgr.Load(cfg.Pinterest.Account)
	if err != nil {
		log.WithField("account", cfg.Pinterest.Account).Debug("No stored session, continuing anonymously")
		return
	}
	cfg.Pinterest.SessionCookie = s.Cookie
	if s.UserAgent != "" {
		cfg.Pinterest.UserAgent = s.UserAgent
	}
	log.WithField("account", s.Account).Info("Using stored session")
}

// newClient builds the HTTP client that fetches payloads
func newClient(cfg *config.Config, log logger.Logger) *pinterest.Client {
	c := pinterest.NewClient(cfg.Download.RequestTimeout, log)
	c.SetBaseURL(cfg.Pinterest.BaseURL)
	c.SetUserAgent(cfg.Pinterest.UserAgent)
	c.SetSession(cfg.Pinterest.SessionCookie)
	if cfg.Download.RequestsPerMinute > 0 {
		c.SetLimiter(ratelimit.PerMinute(cfg.Download.RequestsPerMinute))
	}
	return c
}

// pageHost is what both the live and the static page offer
type pageHost interface {
	collector.Host
	scraper.PinHost
}

// openHost opens the page at url: from a saved file, over plain HTTP, or in
// Chrome. The returned live page is nil unless a browser was started.
func openHost(ctx context.Context, cfg *config.Config, client *pinterest.Client, url string, log logger.Logger) (pageHost, *browser.Page, func(), error) {
	switch {
	case fromHTML != "":
		f, err := os.Open(fromHTML)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open saved page: %w", err)
		}
		defer f.Close()
		p, err := browser.NewStaticPage(f)
		if err != nil {
			return nil, nil, nil, err
		}
		return p, nil, func() {}, nil

	case static:
		body, err := client.FetchPage(ctx, url)
		if err != nil {
			return nil, nil, nil, err
		}
		p, err := browser.NewStaticPage(bytes.NewReader(body))
		if err != nil {
			return nil, nil, nil, err
		}
		return p, nil, func() {}, nil
	}

	b, err := browser.Launch(ctx, browser.OptionsFromConfig(cfg), log)
	if err != nil {
		return nil, nil, nil, err
	}
	page, err := b.Open(ctx, url)
	if err != nil {
		_ = b.Close()
		return nil, nil, nil, err
	}
	closeFn := func() {
		_ = page.Close()
		_ = b.Close()
	}
	return page, page, closeFn, nil
}

// newStrategy selects the directory picker and the fallback downloader for
// the configured output mode
func newStrategy(cfg *config.Config, live *browser.Page, log logger.Logger) *storage.Strategy {
	var picker storage.DirectoryPicker
	if cfg.Output.Mode != config.OutputModeDownloads {
		dir := cfg.Output.Directory
		if dir == "" {
			dir, _ = os.Getwd()
		}
		switch {
		case cfg.Output.AssumeYes:
			picker = storage.FixedPicker{Path: dir}
		case useTUI:
			// the prompt cannot share the terminal with the TUI
			if cfg.Output.Directory != "" || cfg.Output.Mode == config.OutputModeDirectory {
				picker = storage.FixedPicker{Path: dir}
			}
		default:
			picker = storage.NewPromptPicker(dir)
		}
	}

	var dl storage.Downloader
	if cfg.Output.Mode != config.OutputModeDirectory {
		if live != nil {
			dl = browser.NewDownloadTrigger(live, cfg.Output.DownloadsDirectory)
		} else {
			dl = &storage.DownloadsFolder{Root: cfg.Output.DownloadsDirectory}
		}
	}

	s := storage.NewStrategy(picker, dl, log)
	if cfg.Output.SettleDelay > 0 {
		s.Settle = ratelimit.NewInterval(cfg.Output.SettleDelay)
	}
	return s
}
