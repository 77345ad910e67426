package collector

// Item is one image discovered on a board. URL is already normalized and is
// the identity of the item; an empty DisplayName means the image had no
// usable accessible text.
type Item struct {
	URL         string
	DisplayName string
}

// Set is an insertion-ordered collection of items with no two items sharing
// a URL. The first name seen for a URL is kept.
type Set struct {
	items []Item
	seen  map[string]struct{}
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add inserts item unless its URL is already present and reports whether it
// was added
func (s *Set) Add(item Item) bool {
	if _, ok := s.seen[item.URL]; ok {
		return false
	}
	s.seen[item.URL] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// Contains reports whether url is in the set
func (s *Set) Contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

// Len returns the number of items
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns the items in first-seen order
func (s *Set) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// URLs returns the item URLs in first-seen order
func (s *Set) URLs() []string {
	out := make([]string, len(s.items))
	for i, item := range s.items {
		out[i] = item.URL
	}
	return out
}
