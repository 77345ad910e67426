package browser

import (
	"context"
	"fmt"
	"time"

	"boardharvest/pkg/config"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/pinterest"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Options configures the Chrome instance
type Options struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. Empty
	// launches a local one.
	RemoteURL         string
	Headless          bool
	Stealth           bool
	NavigationTimeout time.Duration
	UserAgent         string
	SessionCookie     string
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RemoteURL:         cfg.Browser.RemoteURL,
		Headless:          cfg.Browser.Headless,
		Stealth:           cfg.Browser.Stealth,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		UserAgent:         cfg.Pinterest.UserAgent,
		SessionCookie:     cfg.Pinterest.SessionCookie,
	}
}

// Browser is a connected Chrome instance
type Browser struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	opts     Options
	logger   logger.Logger
}

// Launch starts a local Chrome, or connects to opts.RemoteURL
func Launch(ctx context.Context, opts Options, log logger.Logger) (*Browser, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "browser")

	b := &Browser{opts: opts, logger: log}

	wsURL := opts.RemoteURL
	if wsURL != "" {
		log.WithField("url", wsURL).Info("Connecting to remote Chrome")
	} else {
		l := launcher.New().
			Context(ctx).
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch chrome: %w", err)
		}
		wsURL = u
		b.launcher = l
		log.InfoWithFields("Launched local Chrome", map[string]interface{}{
			"headless": opts.Headless,
			"stealth":  opts.Stealth,
		})
	}

	r := rod.New().ControlURL(wsURL)
	if err := r.Connect(); err != nil {
		b.cleanup()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}
	b.rod = r

	if opts.SessionCookie != "" {
		err := r.SetCookies([]*proto.NetworkCookieParam{{
			Name:     pinterest.SessionCookieName,
			Value:    opts.SessionCookie,
			Domain:   ".pinterest.com",
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
		}})
		if err != nil {
			log.WithError(err).Warn("Failed to install session cookie")
		}
	}

	return b, nil
}

// Open creates a tab, navigates to url and waits for the page to load
func (b *Browser) Open(ctx context.Context, url string) (*Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if b.opts.Stealth {
		page, err = stealth.Page(b.rod)
	} else {
		page, err = b.rod.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tab: %w", err)
	}

	if b.opts.UserAgent != "" && !b.opts.Stealth {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent}); err != nil {
			b.logger.WithError(err).Warn("Failed to override user agent")
		}
	}

	timeout := b.opts.NavigationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		b.logger.WithError(err).WithField("url", url).Warn("Page load did not finish in time")
	}

	b.logger.WithField("url", url).Debug("Page opened")
	return &Page{page: page, browser: b.rod}, nil
}

// Close shuts the browser down
func (b *Browser) Close() error {
	b.cleanup()
	return nil
}

func (b *Browser) cleanup() {
	if b.rod != nil {
		if b.launcher != nil {
			b.rod.Close()
		}
		b.rod = nil
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
		b.launcher = nil
	}
}
