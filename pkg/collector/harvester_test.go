package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"boardharvest/pkg/logger"
	"boardharvest/pkg/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost scripts a board whose rendered images and height depend on how
// many times it has been scrolled
type fakeHost struct {
	mu        sync.Mutex
	scrolled  int
	position  float64
	scrolls   []float64
	snapshots int

	images    func(scrolled int) []Image
	height    func(scrolled int) float64
	heightErr error
}

func (f *fakeHost) Images(ctx context.Context) ([]Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	return f.images(f.scrolled), nil
}

func (f *fakeHost) ScrollPosition(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

func (f *fakeHost) ScrollTo(ctx context.Context, y float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = y
	f.scrolls = append(f.scrolls, y)
	f.scrolled++
	return nil
}

func (f *fakeHost) ScrollHeight(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.heightErr != nil {
		return 0, f.heightErr
	}
	return f.height(f.scrolled), nil
}

func (f *fakeHost) Title(ctx context.Context) (string, error) {
	return "Board - Pinterest", nil
}

func img(url string) Image {
	return Image{URL: url, Alt: url, NaturalWidth: 236}
}

func newTestHarvester(sink status.Sink) *Harvester {
	h := NewHarvester(NewCollector(nil), logger.NewTestLogger())
	h.TickInterval = time.Millisecond
	h.Status = sink
	return h
}

func TestHarvestStableBoard(t *testing.T) {
	host := &fakeHost{
		position: 250,
		images:   func(int) []Image { return []Image{img("a"), img("b"), img("c")} },
		height:   func(int) float64 { return 3000 },
	}

	var counts []int
	h := newTestHarvester(status.SinkFunc(func(s status.Status) {
		assert.Equal(t, status.Scrolling, s.Phase)
		counts = append(counts, s.Count)
	}))

	set, err := h.Run(context.Background(), host)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, set.URLs())
	// one growing tick then twelve stalled ones
	assert.Len(t, counts, 1+DefaultStallThreshold)
	assert.Equal(t, 3, counts[0])
	assert.Equal(t, 1+DefaultStallThreshold+1, host.snapshots)
	assert.Equal(t, 250.0, host.position)
}

func TestHarvestGrowingListThenStall(t *testing.T) {
	host := &fakeHost{
		images: func(scrolled int) []Image {
			if scrolled < 3 {
				return []Image{img("first"), img("second")}
			}
			// the first node has been recycled by now
			return []Image{img("second"), img("third")}
		},
		height: func(scrolled int) float64 {
			if scrolled < 3 {
				return 1000
			}
			return 2000
		},
	}

	set, err := newTestHarvester(status.Discard).Run(context.Background(), host)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, set.URLs())
	assert.Equal(t, 0.0, host.position)
}

func TestHarvestHostErrorsCountAsStall(t *testing.T) {
	host := &fakeHost{
		images:    func(int) []Image { return []Image{img("only")} },
		height:    func(int) float64 { return 0 },
		heightErr: errors.New("page crashed"),
	}

	tl := logger.NewTestLogger()
	h := newTestHarvester(status.Discard)
	h.Logger = tl
	h.StallThreshold = 3

	set, err := h.Run(context.Background(), host)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 3)
}

func TestHarvestCancelRestoresViewport(t *testing.T) {
	grow := 0.0
	host := &fakeHost{
		position: 40,
		images:   func(int) []Image { return []Image{img("a")} },
		height: func(scrolled int) float64 {
			grow += 100
			return grow
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	set, err := newTestHarvester(status.Discard).Run(ctx, host)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, set.Len())

	host.mu.Lock()
	defer host.mu.Unlock()
	assert.Equal(t, 40.0, host.position)
}
