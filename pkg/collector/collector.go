// Package collector discovers the images of a virtualized board. A Collector
// snapshots what is rendered right now; a Harvester scrolls the board and
// keeps snapshotting until the list stops growing.
package collector

import "boardharvest/pkg/naming"

// DefaultMinWidth skips avatars and UI glyphs
const DefaultMinWidth = 80

// Image is one currently rendered image as reported by the host
type Image struct {
	URL          string
	Alt          string
	NaturalWidth int
	Width        int
}

// IntrinsicWidth returns the natural width, else the layout width, else 0
// when the host does not know it yet
func (img Image) IntrinsicWidth() int {
	if img.NaturalWidth > 0 {
		return img.NaturalWidth
	}
	return img.Width
}

// NormalizeFunc maps an image URL to its canonical, highest-quality form
type NormalizeFunc func(string) string

// Collector extracts unseen items from a snapshot of rendered images
type Collector struct {
	MinWidth  int
	Normalize NormalizeFunc
}

// NewCollector creates a collector with the default width threshold
func NewCollector(normalize NormalizeFunc) *Collector {
	return &Collector{MinWidth: DefaultMinWidth, Normalize: normalize}
}

// Collect adds every image of the snapshot that is large enough (or of
// unknown size) and not yet in set. It returns the number of items added.
func (c *Collector) Collect(images []Image, set *Set) int {
	added := 0
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if w := img.IntrinsicWidth(); w > 0 && w < c.MinWidth {
			continue
		}

		url := img.URL
		if c.Normalize != nil {
			url = c.Normalize(url)
		}
		if set.Contains(url) {
			continue
		}

		name, _ := naming.Sanitize(img.Alt)
		if set.Add(Item{URL: url, DisplayName: name}) {
			added++
		}
	}
	return added
}
