package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"boardharvest/internal/downloader"
	"boardharvest/pkg/collector"
	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{1}, 16)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{2}, 16)...)
	gifBytes  = append([]byte("GIF89a"), bytes.Repeat([]byte{3}, 16)...)
)

type pickerFunc func(ctx context.Context, container string) (*Directory, error)

func (f pickerFunc) Pick(ctx context.Context, container string) (*Directory, error) {
	return f(ctx, container)
}

// MockDownloader records triggered downloads
type MockDownloader struct {
	mu    sync.Mutex
	names []string
	fail  map[string]bool
}

func (m *MockDownloader) Trigger(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[name] {
		return errors.New("download blocked")
	}
	m.names = append(m.names, name)
	return nil
}

func newTestStrategy(picker DirectoryPicker, dl Downloader) *Strategy {
	s := NewStrategy(picker, dl, logger.NewTestLogger())
	s.Settle = ratelimit.NewInterval(time.Millisecond)
	return s
}

func batch() ([]collector.Item, []downloader.Result) {
	items := []collector.Item{
		{URL: "u0", DisplayName: "Lake"},
		{URL: "u1", DisplayName: "Forest"},
		{URL: "u2", DisplayName: ""},
		{URL: "u3", DisplayName: "Desert"},
	}
	results := []downloader.Result{
		{Index: 0, Payload: pngBytes},
		{Index: 1, Err: errors.New("unexpected status 404")},
		{Index: 2, Payload: gifBytes},
		{Index: 3, Payload: jpegBytes},
	}
	return items, results
}

func TestPersistToDirectory(t *testing.T) {
	dir := t.TempDir()
	s := newTestStrategy(FixedPicker{Path: dir}, nil)

	target, err := s.Open(context.Background(), "Nature")
	require.NoError(t, err)
	assert.Equal(t, "directory", target.Kind())

	items, results := batch()
	out := s.Persist(context.Background(), target, "Nature", items, results)
	assert.Equal(t, Outcome{Attempted: 4, Saved: 3}, out)

	data, err := os.ReadFile(filepath.Join(dir, "Nature - Lake.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.FileExists(t, filepath.Join(dir, "Nature - Desert.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "Nature - Forest.jpg"))

	matches, err := filepath.Glob(filepath.Join(dir, "Nature - *.gif"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Regexp(t, `Nature - [a-z0-9]{8}\.gif$`, matches[0])

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, leftovers)
}

func TestPersistOverwritesOnCollision(t *testing.T) {
	dir := t.TempDir()
	s := newTestStrategy(FixedPicker{Path: dir}, nil)
	target, err := s.Open(context.Background(), "Twins")
	require.NoError(t, err)

	items := []collector.Item{{URL: "a", DisplayName: "Same"}, {URL: "b", DisplayName: "Same"}}
	results := []downloader.Result{{Index: 0, Payload: jpegBytes}, {Index: 1, Payload: bytes.Clone(jpegBytes[:len(jpegBytes)-1])}}

	out := s.Persist(context.Background(), target, "Twins", items, results)
	assert.Equal(t, 2, out.Saved)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, _ := os.ReadFile(filepath.Join(dir, "Twins - Same.jpg"))
	assert.Len(t, data, len(jpegBytes)-1)
}

func TestOpenDeclinedCancels(t *testing.T) {
	dl := &MockDownloader{}
	s := newTestStrategy(pickerFunc(func(context.Context, string) (*Directory, error) {
		return nil, ErrDeclined
	}), dl)

	target, err := s.Open(context.Background(), "Board")
	assert.Nil(t, target)
	assert.True(t, apperrors.IsCancelled(err))
	assert.Empty(t, dl.names)
}

func TestOpenFallsBackWhenPickerUnavailable(t *testing.T) {
	dl := &MockDownloader{}
	tl := logger.NewTestLogger()
	s := newTestStrategy(pickerFunc(func(context.Context, string) (*Directory, error) {
		return nil, ErrNoTerminal
	}), dl)
	s.Logger = tl

	target, err := s.Open(context.Background(), "Board")
	require.NoError(t, err)
	assert.Equal(t, "downloads", target.Kind())
	assert.True(t, tl.HasMessage("Directory access unavailable, falling back to downloads"))
}

func TestPersistThroughDownloads(t *testing.T) {
	dl := &MockDownloader{fail: map[string]bool{"Board/Board - Desert.jpg": true}}
	s := newTestStrategy(nil, dl)

	target, err := s.Open(context.Background(), "Board")
	require.NoError(t, err)

	items, results := batch()
	out := s.Persist(context.Background(), target, "Board", items, results)

	assert.Equal(t, Outcome{Attempted: 4, Saved: 2}, out)
	require.Len(t, dl.names, 2)
	assert.Equal(t, "Board/Board - Lake.png", dl.names[0])
	assert.True(t, strings.HasPrefix(dl.names[1], "Board/Board - "))
}

func TestFallbackDownloadsAreSpaced(t *testing.T) {
	dl := &MockDownloader{}
	s := newTestStrategy(nil, dl)
	s.Settle = ratelimit.NewInterval(20 * time.Millisecond)

	target, err := s.Open(context.Background(), "Board")
	require.NoError(t, err)

	start := time.Now()
	items, results := batch()
	s.Persist(context.Background(), target, "Board", items, results)

	// three writes, two gaps
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestOpenWithoutAnyTarget(t *testing.T) {
	_, err := newTestStrategy(nil, nil).Open(context.Background(), "Board")
	assert.Error(t, err)
	assert.False(t, apperrors.IsCancelled(err))
}

func TestDownloadsFolderGroupsByContainer(t *testing.T) {
	root := t.TempDir()
	f := &DownloadsFolder{Root: root}

	require.NoError(t, f.Trigger(context.Background(), "Board/Board - a.png", pngBytes))
	assert.FileExists(t, filepath.Join(root, "Board", "Board - a.png"))
}

func TestPromptPicker(t *testing.T) {
	base := t.TempDir()
	other := filepath.Join(t.TempDir(), "elsewhere")

	tests := []struct {
		name    string
		input   string
		wantDir string
		wantErr error
	}{
		{"accept default", "\n", base, nil},
		{"yes", "Y\n", base, nil},
		{"decline", "n\n", "", ErrDeclined},
		{"other path", other + "\n", other, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := &PromptPicker{
				Default:     base,
				In:          strings.NewReader(tt.input),
				Out:         &out,
				Interactive: func() bool { return true },
			}

			dir, err := p.Pick(context.Background(), "Cats")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, dir.Path())
			assert.DirExists(t, tt.wantDir)
			assert.Contains(t, out.String(), `"Cats"`)
		})
	}
}

func TestPromptPickerWithoutTerminal(t *testing.T) {
	p := &PromptPicker{Default: t.TempDir(), Interactive: func() bool { return false }}
	_, err := p.Pick(context.Background(), "Cats")
	assert.ErrorIs(t, err, ErrNoTerminal)
}
