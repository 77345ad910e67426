package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toOriginals(url string) string {
	return strings.Replace(url, "/236x/", "/originals/", 1)
}

func TestSetRejectsDuplicates(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(Item{URL: "a", DisplayName: "first"}))
	assert.False(t, s.Add(Item{URL: "a", DisplayName: "second"}))
	assert.True(t, s.Add(Item{URL: "b"}))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.URLs())
	assert.Equal(t, "first", s.Items()[0].DisplayName)
}

func TestSetItemsIsACopy(t *testing.T) {
	s := NewSet()
	s.Add(Item{URL: "a"})
	items := s.Items()
	items[0].URL = "mutated"
	assert.True(t, s.Contains("a"))
	assert.Equal(t, "a", s.Items()[0].URL)
}

func TestCollectDedupsNormalizedURLs(t *testing.T) {
	c := NewCollector(toOriginals)
	set := NewSet()

	first := []Image{
		{URL: "https://i.pinimg.com/236x/aa/bb/cc/1.jpg", Alt: "Lake", NaturalWidth: 236},
		{URL: "https://i.pinimg.com/236x/aa/bb/cc/2.jpg", Alt: "", NaturalWidth: 236},
	}
	second := []Image{
		{URL: "https://i.pinimg.com/originals/aa/bb/cc/1.jpg", Alt: "Renamed lake", NaturalWidth: 1200},
		{URL: "https://i.pinimg.com/236x/aa/bb/cc/3.jpg", Alt: `Forest: "green"`, NaturalWidth: 236},
	}

	assert.Equal(t, 2, c.Collect(first, set))
	assert.Equal(t, 1, c.Collect(second, set))
	assert.Equal(t, 0, c.Collect(append(first, second...), set))

	items := set.Items()
	require.Len(t, items, 3)
	assert.Equal(t, Item{URL: "https://i.pinimg.com/originals/aa/bb/cc/1.jpg", DisplayName: "Lake"}, items[0])
	assert.Equal(t, "", items[1].DisplayName)
	assert.Equal(t, "Forest green", items[2].DisplayName)
}

func TestCollectWidthThreshold(t *testing.T) {
	c := NewCollector(nil)
	set := NewSet()

	images := []Image{
		{URL: "avatar", NaturalWidth: 30},
		{URL: "glyph", Width: 40},
		{URL: "natural wins", NaturalWidth: 200, Width: 20},
		{URL: "exactly 80", NaturalWidth: 80},
		{URL: "unknown size"},
		{URL: ""},
	}

	assert.Equal(t, 3, c.Collect(images, set))
	assert.Equal(t, []string{"natural wins", "exactly 80", "unknown size"}, set.URLs())
}

func TestCollectDedupProperty(t *testing.T) {
	c := NewCollector(toOriginals)
	set := NewSet()
	firstName := map[string]string{}

	for round := 0; round < 20; round++ {
		var snap []Image
		for i := 0; i < 10; i++ {
			id := (round*3 + i) % 17
			tier := "236x"
			if i%2 == 0 {
				tier = "originals"
			}
			url := "https://i.pinimg.com/" + tier + "/x/" + string(rune('a'+id)) + ".jpg"
			alt := "name " + string(rune('a'+round))
			snap = append(snap, Image{URL: url, Alt: alt})

			key := toOriginals(url)
			if _, ok := firstName[key]; !ok {
				firstName[key] = alt
			}
		}
		c.Collect(snap, set)
	}

	seen := map[string]bool{}
	for _, item := range set.Items() {
		assert.False(t, seen[item.URL], "duplicate %s", item.URL)
		seen[item.URL] = true
		assert.Equal(t, firstName[item.URL], item.DisplayName)
	}
	assert.Len(t, seen, len(firstName))
}
