package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"boardharvest/pkg/storage"

	"github.com/go-rod/rod/lib/proto"
)

// DefaultDownloadTimeout bounds how long one synthesized download may take
const DefaultDownloadTimeout = time.Minute

// clickJS turns the payload into a blob URL and clicks a download link for
// it, like a user saving the file
const clickJS = `(b64, name) => {
	const bin = atob(b64);
	const bytes = new Uint8Array(bin.length);
	for (let i = 0; i < bin.length; i++) bytes[i] = bin.charCodeAt(i);
	const a = document.createElement('a');
	a.href = URL.createObjectURL(new Blob([bytes]));
	a.download = name;
	document.body.appendChild(a);
	a.click();
	a.remove();
	setTimeout(() => URL.revokeObjectURL(a.href), 100);
}`

// DownloadTrigger saves files through the browser's own download manager.
// The folder part of a name ("board/file.jpg") becomes a folder under Root.
type DownloadTrigger struct {
	page    *Page
	root    string
	timeout time.Duration
}

var _ storage.Downloader = (*DownloadTrigger)(nil)

// NewDownloadTrigger creates a trigger clicking links inside page and
// saving under root
func NewDownloadTrigger(page *Page, root string) *DownloadTrigger {
	return &DownloadTrigger{page: page, root: root, timeout: DefaultDownloadTimeout}
}

// Trigger downloads data as name and waits for the browser to finish
func (d *DownloadTrigger) Trigger(ctx context.Context, name string, data []byte) error {
	dir, file := path.Split(name)
	target := filepath.Join(d.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create download folder: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	b := d.page.browser.Context(ctx)

	err := proto.BrowserSetDownloadBehavior{
		Behavior:      proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath:  target,
		EventsEnabled: true,
	}.Call(b)
	if err != nil {
		return fmt.Errorf("failed to set download folder: %w", err)
	}

	var state proto.BrowserDownloadProgressState
	wait := b.EachEvent(func(e *proto.BrowserDownloadProgress) bool {
		if e.State == proto.BrowserDownloadProgressStateInProgress {
			return false
		}
		state = e.State
		return true
	})

	encoded := base64.StdEncoding.EncodeToString(data)
	if _, err := d.page.page.Context(ctx).Eval(clickJS, encoded, file); err != nil {
		return fmt.Errorf("failed to start download: %w", err)
	}
	wait()

	switch {
	case state == proto.BrowserDownloadProgressStateCompleted:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("download of %s did not finish: %w", name, ctx.Err())
	default:
		return fmt.Errorf("download of %s was %s", name, state)
	}
}
