package scraper

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"boardharvest/internal/downloader"
	"boardharvest/pkg/collector"
	"boardharvest/pkg/config"
	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/pinterest"
	"boardharvest/pkg/ratelimit"
	"boardharvest/pkg/status"
	"boardharvest/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{1}, 16)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{2}, 16)...)
)

// boardHost is a board whose rendered images never change
type boardHost struct {
	mu     sync.Mutex
	images []collector.Image
	title  string
	pos    float64
}

func (b *boardHost) Images(ctx context.Context) ([]collector.Image, error) {
	return b.images, nil
}

func (b *boardHost) ScrollPosition(ctx context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos, nil
}

func (b *boardHost) ScrollTo(ctx context.Context, y float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pos = y
	return nil
}

func (b *boardHost) ScrollHeight(ctx context.Context) (float64, error) {
	return 2000, nil
}

func (b *boardHost) Title(ctx context.Context) (string, error) {
	return b.title, nil
}

// pinHost is a pin close-up page
type pinHost struct {
	image pinterest.PinImage
	title string
}

func (p *pinHost) MainImage(ctx context.Context) (pinterest.PinImage, error) {
	return p.image, nil
}

func (p *pinHost) PinTitle(ctx context.Context) (string, error) {
	return p.title, nil
}

// MockFetcher serves payloads by URL and counts calls
type MockFetcher struct {
	mu       sync.Mutex
	payloads map[string][]byte
	calls    int
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if p, ok := m.payloads[url]; ok {
		return p, nil
	}
	return nil, apperrors.FromStatusCode(404)
}

// statusRecorder keeps every status it receives
type statusRecorder struct {
	mu   sync.Mutex
	seen []status.Status
}

func (r *statusRecorder) Update(s status.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, s)
}

func (r *statusRecorder) all() []status.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]status.Status(nil), r.seen...)
}

func (r *statusRecorder) last() status.Status {
	all := r.all()
	return all[len(all)-1]
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Harvest.TickInterval = time.Millisecond
	cfg.Harvest.StallThreshold = 2
	return cfg
}

func newTestScraper(fetcher downloader.Fetcher, picker storage.DirectoryPicker, dl storage.Downloader) (*Scraper, *statusRecorder) {
	log := logger.NewTestLogger()
	strategy := storage.NewStrategy(picker, dl, log)
	strategy.Settle = ratelimit.NewInterval(time.Millisecond)

	s := New(testConfig(), fetcher, strategy, log)
	rec := &statusRecorder{}
	s.SetStatusSink(rec)
	return s, rec
}

func boardImages(n int) []collector.Image {
	names := []string{"Lake", "Forest", "Desert", "Glacier", "Canyon"}
	images := make([]collector.Image, n)
	for i := range images {
		images[i] = collector.Image{
			URL:          "https://img.test/" + names[i] + ".jpg",
			Alt:          names[i],
			NaturalWidth: 236,
		}
	}
	return images
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func assertMonotonic(t *testing.T, seen []status.Status) {
	t.Helper()
	for i := 1; i < len(seen); i++ {
		prev, cur := seen[i-1], seen[i]
		require.GreaterOrEqual(t, int(cur.Phase), int(prev.Phase), "phase regressed at %d", i)
		if cur.Phase == prev.Phase {
			require.GreaterOrEqual(t, cur.Count, prev.Count, "count regressed at %d", i)
		}
	}
}

func TestDownloadBoardStableBoard(t *testing.T) {
	dir := t.TempDir()
	host := &boardHost{images: boardImages(3), title: "Landscapes - Pinterest", pos: 150}
	fetcher := &MockFetcher{payloads: map[string][]byte{
		"https://img.test/Lake.jpg":   pngBytes,
		"https://img.test/Forest.jpg": jpegBytes,
		"https://img.test/Desert.jpg": jpegBytes,
	}}
	s, rec := newTestScraper(fetcher, storage.FixedPicker{Path: dir}, nil)

	report, err := s.DownloadBoard(context.Background(), host)
	require.NoError(t, err)

	assert.Equal(t, "Landscapes", report.Board)
	assert.Equal(t, 3, report.Found)
	assert.Equal(t, storage.Outcome{Attempted: 3, Saved: 3}, report.Outcome)
	assert.Equal(t, "directory", report.Target)

	seen := rec.all()
	assert.Equal(t, status.ScrollingStatus(0), seen[0])
	assert.Equal(t, status.DoneStatus(3, 3), rec.last())
	assertMonotonic(t, seen)

	assert.Equal(t, []string{
		"Landscapes - Desert.jpg",
		"Landscapes - Forest.jpg",
		"Landscapes - Lake.png",
	}, listDir(t, dir))
	assert.Equal(t, 150.0, host.pos)
}

func TestDownloadBoardPartialFailure(t *testing.T) {
	dir := t.TempDir()
	host := &boardHost{images: boardImages(5), title: "Trips"}
	payloads := map[string][]byte{}
	for _, img := range boardImages(5) {
		payloads[img.URL] = jpegBytes
	}
	delete(payloads, "https://img.test/Desert.jpg")
	fetcher := &MockFetcher{payloads: payloads}
	s, rec := newTestScraper(fetcher, storage.FixedPicker{Path: dir}, nil)

	report, err := s.DownloadBoard(context.Background(), host)
	require.NoError(t, err)

	assert.Equal(t, 5, fetcher.calls)
	assert.Equal(t, storage.Outcome{Attempted: 5, Saved: 4}, report.Outcome)
	assert.Equal(t, status.DoneStatus(4, 5), rec.last())
	assert.Len(t, listDir(t, dir), 4)
}

func TestDownloadBoardDeclined(t *testing.T) {
	host := &boardHost{images: boardImages(2), title: "Trips"}
	fetcher := &MockFetcher{payloads: map[string][]byte{}}
	declined := pickerFunc(func(ctx context.Context, container string) (*storage.Directory, error) {
		return nil, storage.ErrDeclined
	})
	dl := &recordingDownloader{}
	s, rec := newTestScraper(fetcher, declined, dl)

	_, err := s.DownloadBoard(context.Background(), host)
	require.Error(t, err)
	assert.True(t, apperrors.IsCancelled(err))
	assert.Equal(t, status.CancelledStatus(), rec.last())
	assert.Zero(t, fetcher.calls)
	assert.Empty(t, dl.names)
}

func TestDownloadBoardEmpty(t *testing.T) {
	host := &boardHost{title: "Nothing here"}
	fetcher := &MockFetcher{}
	s, rec := newTestScraper(fetcher, storage.FixedPicker{Path: t.TempDir()}, nil)

	report, err := s.DownloadBoard(context.Background(), host)
	assert.ErrorIs(t, err, apperrors.ErrEmptyHarvest)
	assert.False(t, apperrors.IsCancelled(err))
	require.NotNil(t, report)
	assert.Zero(t, report.Found)
	assert.Zero(t, fetcher.calls)

	for _, st := range rec.all() {
		assert.Equal(t, status.Scrolling, st.Phase)
	}
}

func TestDownloadBoardInterruptedWhileScrolling(t *testing.T) {
	host := &boardHost{images: boardImages(2), title: "Trips"}
	fetcher := &MockFetcher{}
	s, rec := newTestScraper(fetcher, storage.FixedPicker{Path: t.TempDir()}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.DownloadBoard(ctx, host)
	assert.True(t, apperrors.IsCancelled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, status.CancelledStatus(), rec.last())
	assert.Zero(t, fetcher.calls)
}

func TestDownloadBoardFallsBackToDownloads(t *testing.T) {
	host := &boardHost{images: boardImages(2), title: ""}
	fetcher := &MockFetcher{payloads: map[string][]byte{
		"https://img.test/Lake.jpg":   jpegBytes,
		"https://img.test/Forest.jpg": jpegBytes,
	}}
	dl := &recordingDownloader{}
	s, _ := newTestScraper(fetcher, nil, dl)

	report, err := s.DownloadBoard(context.Background(), host)
	require.NoError(t, err)
	assert.Equal(t, "downloads", report.Target)
	assert.Equal(t, []string{
		"pinterest-board/pinterest-board - Lake.jpg",
		"pinterest-board/pinterest-board - Forest.jpg",
	}, dl.names)
}

func TestDownloadPinUsesTitle(t *testing.T) {
	dir := t.TempDir()
	host := &pinHost{
		image: pinterest.PinImage{Srcset: "https://img.test/s.jpg 236w, https://img.test/l.jpg 736w"},
		title: "Sunset over the bay",
	}
	fetcher := &MockFetcher{payloads: map[string][]byte{"https://img.test/l.jpg": pngBytes}}
	s, _ := newTestScraper(fetcher, storage.FixedPicker{Path: dir}, nil)

	report, err := s.DownloadPin(context.Background(), host)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Outcome.Saved)
	assert.Equal(t, []string{"Sunset over the bay.png"}, listDir(t, dir))
}

func TestDownloadPinWithoutTitle(t *testing.T) {
	dir := t.TempDir()
	host := &pinHost{image: pinterest.PinImage{Src: "https://img.test/p.jpg"}}
	fetcher := &MockFetcher{payloads: map[string][]byte{"https://img.test/p.jpg": jpegBytes}}
	s, _ := newTestScraper(fetcher, storage.FixedPicker{Path: dir}, nil)

	_, err := s.DownloadPin(context.Background(), host)
	require.NoError(t, err)

	files := listDir(t, dir)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0], "pin-"))
	assert.Equal(t, len("pin-")+pinTokenLength+len(".jpg"), len(files[0]))
	assert.Equal(t, ".jpg", filepath.Ext(files[0]))
}

func TestDownloadPinFetchFailure(t *testing.T) {
	host := &pinHost{image: pinterest.PinImage{Src: "https://img.test/missing.jpg"}, title: "x"}
	s, _ := newTestScraper(&MockFetcher{}, storage.FixedPicker{Path: t.TempDir()}, nil)

	_, err := s.DownloadPin(context.Background(), host)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeHTTPStatus, apperrors.TypeOf(err))
}

func TestDownloadPinWithoutImage(t *testing.T) {
	s, _ := newTestScraper(&MockFetcher{}, storage.FixedPicker{Path: t.TempDir()}, nil)
	_, err := s.DownloadPin(context.Background(), &pinHost{})
	assert.Equal(t, apperrors.ErrorTypeHost, apperrors.TypeOf(err))
}

type pickerFunc func(ctx context.Context, container string) (*storage.Directory, error)

func (f pickerFunc) Pick(ctx context.Context, container string) (*storage.Directory, error) {
	return f(ctx, container)
}

type recordingDownloader struct {
	mu    sync.Mutex
	names []string
}

func (r *recordingDownloader) Trigger(ctx context.Context, name string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	return nil
}
